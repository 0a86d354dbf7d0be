package core

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huangsam/footprint/internal/contract"
)

func defaultDiscoverOptions() DiscoverOptions {
	return DiscoverOptions{
		Extensions:   contract.DefaultExtensions,
		SkipPatterns: contract.DefaultSkipPatterns,
		Excludes:     []string{"node_modules/", "dist/", "build/", ".min.js"},
	}
}

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		full := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}
}

// TestDiscoverFiles tests that discovery keeps only eligible source files.
func TestDiscoverFiles(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"app.py":                   "print('hi')\n",
		"lib/util.go":              "package lib\n",
		"lib/util_test.go":         "package lib\n",
		"web/index.js":             "console.log(1)\n",
		"web/app.config.js":        "module.exports = {}\n",
		"web/button.spec.ts":       "test()\n",
		"web/vendor.min.js":        "x\n",
		"setup.py":                 "setup()\n",
		"conftest.py":              "\n",
		"README.md":                "# readme\n",
		".git/hooks/pre-commit.py": "\n",
		".venv/lib/site.py":        "\n",
		"node_modules/left/pad.js": "\n",
		"build/generated/out.py":   "\n",
		"services/api/handler.tsx": "export {}\n",
		"services/api/HANDLER2.PY": "x = 1\n",
	})

	files, err := DiscoverFiles(root, defaultDiscoverOptions())
	require.NoError(t, err)
	assert.Equal(t, []string{
		"app.py",
		"lib/util.go",
		"services/api/HANDLER2.PY",
		"services/api/handler.tsx",
		"web/index.js",
	}, files)
}

// TestDiscoverFilesEmptyTree tests discovery of a tree without source files.
func TestDiscoverFilesEmptyTree(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"notes.txt": "nothing\n"})

	files, err := DiscoverFiles(root, defaultDiscoverOptions())
	require.NoError(t, err)
	assert.Empty(t, files)
}

// TestDiscoverFilesMissingRoot tests that a missing root yields no files.
func TestDiscoverFilesMissingRoot(t *testing.T) {
	files, err := DiscoverFiles(filepath.Join(t.TempDir(), "missing"), defaultDiscoverOptions())
	assert.NoError(t, err)
	assert.Empty(t, files)
}

func TestIsEligible(t *testing.T) {
	opts := defaultDiscoverOptions()
	tests := []struct {
		path string
		want bool
	}{
		{"main.go", true},
		{"pkg/server.py", true},
		{"ui/App.jsx", true},
		{"ui/App.TSX", true},
		{"README.md", false},
		{"pkg/server_test.go", false},
		{"test_server.py", false},
		{"setup.py", false},
		{"conftest.py", false},
		{"ui/App.spec.ts", false},
		{"webpack.config.js", false},
		{"node_modules/a/index.js", false},
		{"dist/bundle.js", false},
		{"static/jquery.min.js", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, IsEligible(tt.path, opts))
		})
	}
}

func TestIsEligibleNoSkipPatterns(t *testing.T) {
	opts := defaultDiscoverOptions()
	opts.SkipPatterns = nil
	assert.True(t, IsEligible("pkg/server_test.go", opts))
	assert.True(t, IsEligible("setup.py", opts))
}

// TestBuildStructure tests grouping of paths by directory.
func TestBuildStructure(t *testing.T) {
	structure := BuildStructure([]string{"b.py", "a.py", "pkg/z.go", "pkg/a.go", "pkg/sub/x.js"})
	assert.Equal(t, map[string][]string{
		"/":       {"a.py", "b.py"},
		"pkg":     {"a.go", "z.go"},
		"pkg/sub": {"x.js"},
	}, structure)

	assert.Empty(t, BuildStructure(nil))
}

func TestSplitDir(t *testing.T) {
	dir, name := splitDir("a/b/c.py")
	assert.Equal(t, "a/b", dir)
	assert.Equal(t, "c.py", name)

	dir, name = splitDir("c.py")
	assert.Equal(t, rootDir, dir)
	assert.Equal(t, "c.py", name)
}
