package static

import (
	"regexp"
	"strings"
)

var (
	jsRequireRe = regexp.MustCompile(`\brequire\(\s*['"]([^'"]+)['"]\s*\)`)
	jsImportRe  = regexp.MustCompile(`(?m)^\s*(?:import|export)\s+(?:[^'";]*?\s+from\s+)?['"]([^'"]+)['"]`)
	jsDynamicRe = regexp.MustCompile(`\bimport\(\s*['"]([^'"]+)['"]\s*\)`)
	jsFuncRe    = regexp.MustCompile(`\bfunction\s*\*?\s*([A-Za-z_$][\w$]*)\s*\(`)
	jsArrowRe   = regexp.MustCompile(`\b(?:const|let|var)\s+([A-Za-z_$][\w$]*)\s*=\s*(?:async\s+)?(?:function\b|\([^)]*\)\s*=>|[A-Za-z_$][\w$]*\s*=>)`)
)

// javascriptImports returns the package of every require and import specifier.
func javascriptImports(text string) []string {
	var libs []string
	for _, re := range []*regexp.Regexp{jsRequireRe, jsImportRe, jsDynamicRe} {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			if name := jsPackageName(m[1]); name != "" {
				libs = append(libs, name)
			}
		}
	}
	return libs
}

// jsPackageName reduces a module specifier to its package. Relative specifiers
// are dropped and scoped packages keep their scope.
func jsPackageName(spec string) string {
	if spec == "" || strings.HasPrefix(spec, ".") || strings.HasPrefix(spec, "/") {
		return ""
	}
	spec = strings.TrimPrefix(spec, "node:")
	parts := strings.Split(spec, "/")
	if strings.HasPrefix(spec, "@") && len(parts) >= 2 {
		return parts[0] + "/" + parts[1]
	}
	return parts[0]
}

// javascriptStructure derives loop nesting depth from braces and recursion from
// named function bodies.
func javascriptStructure(text string) (int, bool) {
	code := stripJavaScript(text)
	return jsLoopDepth(code), jsHasRecursion(code)
}

// jsLoopDepth tracks which open braces belong to loop bodies.
func jsLoopDepth(code string) int {
	var (
		braces   []bool // true when the brace opened a loop body
		loops    int
		maxDepth int
		pending  bool
		parens   int
	)
	for i := 0; i < len(code); i++ {
		c := code[i]
		switch {
		case c == '(':
			parens++
		case c == ')':
			parens = max(0, parens-1)
		case c == '{':
			braces = append(braces, pending)
			if pending {
				loops++
				pending = false
			}
		case c == '}':
			if len(braces) > 0 {
				if braces[len(braces)-1] {
					loops--
				}
				braces = braces[:len(braces)-1]
			}
		case c == ';' && parens == 0:
			pending = false
		case isIdentByte(c) && (i == 0 || !isIdentByte(code[i-1])):
			word := readWord(code, i)
			if word == "for" || word == "while" || word == "do" {
				pending = true
				maxDepth = max(maxDepth, loops+1)
			}
			i += len(word) - 1
		}
	}
	return maxDepth
}

func readWord(code string, start int) string {
	end := start
	for end < len(code) && isIdentByte(code[end]) {
		end++
	}
	return code[start:end]
}

// jsHasRecursion reports whether a named function calls itself inside its body.
func jsHasRecursion(code string) bool {
	for _, re := range []*regexp.Regexp{jsFuncRe, jsArrowRe} {
		for _, loc := range re.FindAllStringSubmatchIndex(code, -1) {
			name := code[loc[2]:loc[3]]
			body := braceBody(code, loc[1])
			if body != "" && callsName(body, name, "this") {
				return true
			}
		}
	}
	return false
}

// braceBody returns the text between the first '{' at or after start and its match.
func braceBody(code string, start int) string {
	open := strings.IndexByte(code[start:], '{')
	if open < 0 {
		return ""
	}
	open += start
	depth := 0
	for i := open; i < len(code); i++ {
		switch code[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return code[open+1 : i]
			}
		}
	}
	return code[open+1:]
}

// stripJavaScript blanks comments and string literals so braces inside them
// do not count. Newlines are preserved.
func stripJavaScript(text string) string {
	out := []byte(text)
	for i := 0; i < len(out); i++ {
		switch {
		case out[i] == '/' && i+1 < len(out) && out[i+1] == '/':
			for i < len(out) && out[i] != '\n' {
				out[i] = ' '
				i++
			}
		case out[i] == '/' && i+1 < len(out) && out[i+1] == '*':
			for i < len(out) && !(out[i] == '*' && i+1 < len(out) && out[i+1] == '/') {
				if out[i] != '\n' {
					out[i] = ' '
				}
				i++
			}
			if i+1 < len(out) {
				out[i], out[i+1] = ' ', ' '
				i++
			}
		case out[i] == '"' || out[i] == '\'' || out[i] == '`':
			quote := out[i]
			i++
			for i < len(out) && out[i] != quote {
				if out[i] == '\\' && i+1 < len(out) {
					out[i] = ' '
					i++
				}
				if out[i] != '\n' {
					out[i] = ' '
				}
				i++
			}
		}
	}
	return string(out)
}
