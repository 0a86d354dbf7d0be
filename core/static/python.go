package static

import (
	"regexp"
	"strings"
)

var (
	pyImportRe = regexp.MustCompile(`(?m)^[ \t]*import[ \t]+([\w.]+(?:[ \t]+as[ \t]+\w+)?(?:[ \t]*,[ \t]*[\w.]+(?:[ \t]+as[ \t]+\w+)?)*)`)
	pyFromRe   = regexp.MustCompile(`(?m)^[ \t]*from[ \t]+([\w.]+)[ \t]+import\b`)
	pyLoopRe   = regexp.MustCompile(`^(?:async\s+)?(?:for|while)\b`)
	pyDefRe    = regexp.MustCompile(`^(?:async\s+)?def\s+(\w+)\s*\(`)
	pyClassRe  = regexp.MustCompile(`^class\s+\w+`)
)

// pythonImports returns the top-level package of every absolute import.
func pythonImports(text string) []string {
	var libs []string
	for _, m := range pyImportRe.FindAllStringSubmatch(text, -1) {
		for part := range strings.SplitSeq(m[1], ",") {
			fields := strings.Fields(part)
			if len(fields) == 0 {
				continue
			}
			libs = append(libs, topLevelDotted(fields[0]))
		}
	}
	for _, m := range pyFromRe.FindAllStringSubmatch(text, -1) {
		if strings.HasPrefix(m[1], ".") {
			continue // relative import
		}
		libs = append(libs, topLevelDotted(m[1]))
	}
	return libs
}

// topLevelDotted reduces "a.b.c" to "a".
func topLevelDotted(name string) string {
	top, _, _ := strings.Cut(name, ".")
	return top
}

type pyFunc struct {
	name   string
	indent int
	method bool
}

// pyReceivers are the qualifiers through which a method can call itself.
var pyReceivers = []string{"self", "cls"}

// pythonStructure derives loop nesting depth and recursion from indentation blocks.
func pythonStructure(text string) (int, bool) {
	var (
		loops     []int
		funcs     []pyFunc
		classes   []int
		maxDepth  int
		recursive bool
		inString  bool
	)

	for raw := range strings.SplitSeq(text, "\n") {
		line := strings.TrimSpace(raw)
		quotes := strings.Count(line, `"""`) + strings.Count(line, `'''`)
		if inString {
			if quotes%2 == 1 {
				inString = false
			}
			continue
		}
		if quotes%2 == 1 {
			inString = true
		}
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		indent := indentWidth(raw)
		for len(loops) > 0 && loops[len(loops)-1] >= indent {
			loops = loops[:len(loops)-1]
		}
		for len(funcs) > 0 && funcs[len(funcs)-1].indent >= indent {
			funcs = funcs[:len(funcs)-1]
		}
		for len(classes) > 0 && classes[len(classes)-1] >= indent {
			classes = classes[:len(classes)-1]
		}

		if pyClassRe.MatchString(line) {
			classes = append(classes, indent)
			continue
		}
		if m := pyDefRe.FindStringSubmatch(line); m != nil {
			// A def is a method when its innermost enclosing block is a class.
			method := len(classes) > 0 && (len(funcs) == 0 || funcs[len(funcs)-1].indent < classes[len(classes)-1])
			funcs = append(funcs, pyFunc{name: m[1], indent: indent, method: method})
			continue
		}
		if !recursive {
			for _, fn := range funcs {
				var receivers []string
				if fn.method {
					receivers = pyReceivers
				}
				if callsName(line, fn.name, receivers...) {
					recursive = true
					break
				}
			}
		}
		if pyLoopRe.MatchString(line) {
			loops = append(loops, indent)
			maxDepth = max(maxDepth, len(loops))
		}
	}
	return maxDepth, recursive
}

// indentWidth measures leading whitespace with tabs expanded to 8 columns.
func indentWidth(line string) int {
	width := 0
	for _, r := range line {
		switch r {
		case ' ':
			width++
		case '\t':
			width += 8 - width%8
		default:
			return width
		}
	}
	return width
}
