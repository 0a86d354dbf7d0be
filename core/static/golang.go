package static

import (
	"go/ast"
	"go/parser"
	"go/token"
	"strconv"
	"strings"
)

// goStructure parses Go source and returns imports, loop depth and recursion.
func goStructure(path string, content []byte) ([]string, int, bool, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, path, content, parser.SkipObjectResolution)
	if err != nil {
		return nil, 0, false, err
	}

	libs := make([]string, 0, len(file.Imports))
	for _, spec := range file.Imports {
		importPath, err := strconv.Unquote(spec.Path.Value)
		if err != nil {
			continue
		}
		libs = append(libs, goPackageName(importPath))
	}

	return libs, goLoopDepth(file), goHasRecursion(file), nil
}

// goPackageName reduces an import path. Hosted module paths keep the repository
// root ("github.com/x/y/z" is "github.com/x/y"), standard library paths keep their
// last element ("net/http" is "http").
func goPackageName(importPath string) string {
	parts := strings.Split(importPath, "/")
	if strings.Contains(parts[0], ".") {
		if len(parts) > 3 {
			parts = parts[:3]
		}
		return strings.Join(parts, "/")
	}
	return parts[len(parts)-1]
}

// goLoopDepth returns the deepest nesting of for and range statements.
func goLoopDepth(file *ast.File) int {
	var (
		stack    []ast.Node
		depth    int
		maxDepth int
	)
	ast.Inspect(file, func(n ast.Node) bool {
		if n == nil {
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if isLoop(top) {
				depth--
			}
			return true
		}
		stack = append(stack, n)
		if isLoop(n) {
			depth++
			maxDepth = max(maxDepth, depth)
		}
		return true
	})
	return maxDepth
}

func isLoop(n ast.Node) bool {
	switch n.(type) {
	case *ast.ForStmt, *ast.RangeStmt:
		return true
	}
	return false
}

// goHasRecursion reports whether any function calls itself by name or any
// method calls itself through its own receiver.
func goHasRecursion(file *ast.File) bool {
	for _, decl := range file.Decls {
		fn, ok := decl.(*ast.FuncDecl)
		if !ok || fn.Body == nil {
			continue
		}
		name := fn.Name.Name
		isMethod := fn.Recv != nil
		recv := receiverName(fn)
		found := false
		ast.Inspect(fn.Body, func(n ast.Node) bool {
			if found {
				return false
			}
			call, ok := n.(*ast.CallExpr)
			if !ok {
				return true
			}
			switch f := call.Fun.(type) {
			case *ast.Ident:
				found = !isMethod && f.Name == name
			case *ast.SelectorExpr:
				x, ok := f.X.(*ast.Ident)
				found = ok && recv != "" && x.Name == recv && f.Sel.Name == name
			}
			return !found
		})
		if found {
			return true
		}
	}
	return false
}

// receiverName returns the receiver identifier of a method, or "" when the
// declaration is a plain function or the receiver is unnamed.
func receiverName(fn *ast.FuncDecl) string {
	if fn.Recv == nil || len(fn.Recv.List) == 0 || len(fn.Recv.List[0].Names) == 0 {
		return ""
	}
	if name := fn.Recv.List[0].Names[0].Name; name != "_" {
		return name
	}
	return ""
}
