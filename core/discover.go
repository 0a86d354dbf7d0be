package core

import (
	"io/fs"
	"path/filepath"
	"slices"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/src-d/enry/v2"

	"github.com/huangsam/footprint/internal/contract"
)

// rootDir is the structure key of the repository root.
const rootDir = "/"

// DiscoverOptions selects the eligible source files of a tree.
type DiscoverOptions struct {
	Extensions   []string // lowercase suffixes including the dot
	SkipPatterns []string // test files and build entry points
	Excludes     []string // path patterns, see contract.ShouldIgnore
}

// DiscoverFiles walks root and returns the eligible files as sorted,
// slash-separated paths relative to root. Hidden directories and vendored
// paths are never entered.
func DiscoverFiles(root string, opts DiscoverOptions) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable entries are skipped, not fatal
			logrus.WithField("path", path).WithError(err).Debug("Skipping unreadable path")
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil || rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") || enry.IsVendor(rel+"/") || contract.ShouldIgnore(rel+"/", opts.Excludes) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if IsEligible(rel, opts) {
			files = append(files, rel)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.Sort(files)
	return files, nil
}

// IsEligible reports whether a repository-relative path is a source file to analyze.
func IsEligible(rel string, opts DiscoverOptions) bool {
	name := filepath.Base(rel)
	if !hasExtension(name, opts.Extensions) {
		return false
	}
	if contract.MatchesSkipPattern(name, opts.SkipPatterns) {
		return false
	}
	if enry.IsVendor(rel) || contract.ShouldIgnore(rel, opts.Excludes) {
		return false
	}
	return true
}

func hasExtension(name string, extensions []string) bool {
	lower := strings.ToLower(name)
	for _, ext := range extensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// BuildStructure groups slash-separated relative paths by directory. Files at
// the repository root are listed under "/". File names are sorted.
func BuildStructure(files []string) map[string][]string {
	structure := make(map[string][]string)
	for _, f := range files {
		dir, name := splitDir(f)
		structure[dir] = append(structure[dir], name)
	}
	for dir := range structure {
		slices.Sort(structure[dir])
	}
	return structure
}

func splitDir(rel string) (string, string) {
	idx := strings.LastIndex(rel, "/")
	if idx < 0 {
		return rootDir, rel
	}
	return rel[:idx], rel[idx+1:]
}
