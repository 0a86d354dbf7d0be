// Package static extracts lightweight facts from one file's source text.
package static

import (
	"bytes"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/huangsam/footprint/schema"
	"github.com/src-d/enry/v2"
)

// family groups languages that share an extraction strategy.
type family int

const (
	familyUnknown family = iota
	familyPython
	familyGo
	familyJavaScript
)

// familyByLanguage maps enry language names to extraction families.
var familyByLanguage = map[string]family{
	"Python":     familyPython,
	"Go":         familyGo,
	"JavaScript": familyJavaScript,
	"JSX":        familyJavaScript,
	"TypeScript": familyJavaScript,
	"TSX":        familyJavaScript,
}

// familyByExtension is consulted when enry cannot name the language.
var familyByExtension = map[string]family{
	".py":  familyPython,
	".go":  familyGo,
	".js":  familyJavaScript,
	".jsx": familyJavaScript,
	".mjs": familyJavaScript,
	".cjs": familyJavaScript,
	".ts":  familyJavaScript,
	".tsx": familyJavaScript,
}

// Extract parses one file into StaticMetrics. It never fails: text that cannot be
// parsed structurally yields a degraded result with no libraries and a naive line count.
func Extract(path string, content []byte) schema.StaticMetrics {
	language := enry.GetLanguage(filepath.Base(path), content)
	fam, ok := familyByLanguage[language]
	if !ok {
		fam = familyByExtension[strings.ToLower(filepath.Ext(path))]
	}

	if !utf8.Valid(content) || bytes.IndexByte(content, 0) >= 0 {
		return degraded(language, content)
	}
	text := string(content)

	var (
		libs      []string
		depth     int
		recursive bool
	)
	switch fam {
	case familyPython:
		libs = pythonImports(text)
		depth, recursive = pythonStructure(text)
	case familyGo:
		var err error
		libs, depth, recursive, err = goStructure(path, content)
		if err != nil {
			return degraded(language, content)
		}
	case familyJavaScript:
		libs = javascriptImports(text)
		depth, recursive = javascriptStructure(text)
	}

	return schema.StaticMetrics{
		LinesOfCode:  countLines(text, fam),
		Libraries:    dedupe(libs),
		LoopDepth:    depth,
		HasRecursion: recursive,
		Language:     language,
	}
}

// degraded is the partial result for text we could not parse.
func degraded(language string, content []byte) schema.StaticMetrics {
	lines := 0
	if len(content) > 0 {
		lines = len(strings.Split(string(content), "\n"))
	}
	return schema.StaticMetrics{
		LinesOfCode: lines,
		Libraries:   []string{},
		Language:    language,
		Degraded:    true,
	}
}

// countLines counts lines that are neither blank nor a whole-line comment.
func countLines(text string, fam family) int {
	count := 0
	inBlock := false
	for line := range strings.SplitSeq(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		switch fam {
		case familyPython:
			if strings.HasPrefix(line, "#") {
				continue
			}
		case familyGo, familyJavaScript:
			if inBlock {
				if strings.Contains(line, "*/") {
					inBlock = false
				}
				continue
			}
			if strings.HasPrefix(line, "//") {
				continue
			}
			if strings.HasPrefix(line, "/*") {
				inBlock = !strings.Contains(line, "*/")
				continue
			}
		}
		count++
	}
	return count
}

// dedupe returns the sorted set of non-empty names.
func dedupe(names []string) []string {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		if n != "" {
			set[n] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for n := range set {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// isIdentByte reports whether b can appear in an identifier.
func isIdentByte(b byte) bool {
	return b == '_' || b == '$' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

// callsName reports whether line contains a call of name that is not part of a
// longer identifier, e.g. "walk(" but not "rewalk(". A qualified call such as
// "self.walk(" counts only when the qualifier is one of receivers.
func callsName(line, name string, receivers ...string) bool {
	if name == "" {
		return false
	}
	for i := 0; i < len(line); {
		j := strings.Index(line[i:], name)
		if j < 0 {
			return false
		}
		start := i + j
		end := start + len(name)
		i = end
		if start > 0 && isIdentByte(line[start-1]) {
			continue
		}
		if start > 0 && line[start-1] == '.' && !slices.Contains(receivers, qualifierBefore(line, start-1)) {
			continue
		}
		rest := strings.TrimLeft(line[end:], " \t")
		if strings.HasPrefix(rest, "(") {
			return true
		}
	}
	return false
}

// qualifierBefore returns the identifier ending just before the dot at line[dot].
// A chained qualifier like "a.self" yields "".
func qualifierBefore(line string, dot int) string {
	start := dot
	for start > 0 && isIdentByte(line[start-1]) {
		start--
	}
	if start > 0 && line[start-1] == '.' {
		return ""
	}
	return line[start:dot]
}
