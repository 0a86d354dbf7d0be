package contract

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huangsam/footprint/schema"
)

func TestGetProvenanceLabel(t *testing.T) {
	assert.Contains(t, GetProvenanceLabel(schema.RemoteProvenance), "remote")
	assert.Contains(t, GetProvenanceLabel(schema.HeuristicProvenance), "heuristic")
	assert.Equal(t, "other", GetProvenanceLabel(schema.Provenance("other")))
}

func TestGetPriorityLabel(t *testing.T) {
	for _, d := range []schema.ScalingDimension{schema.ScaleMemory, schema.ScaleCPU, schema.ScaleBandwidth, schema.ScaleNone} {
		t.Run(string(d), func(t *testing.T) {
			assert.Contains(t, GetPriorityLabel(d), string(d))
		})
	}
}

func TestSelectOutputFile(t *testing.T) {
	t.Run("empty path returns stdout", func(t *testing.T) {
		file, err := SelectOutputFile("")
		require.NoError(t, err)
		assert.Equal(t, os.Stdout, file)
	})

	t.Run("valid path creates file", func(t *testing.T) {
		tempFile := filepath.Join(t.TempDir(), "test_output.txt")

		file, err := SelectOutputFile(tempFile)
		require.NoError(t, err)
		assert.NotNil(t, file)
		_ = file.Close()

		_, err = os.Stat(tempFile)
		assert.NoError(t, err)
	})
}

func TestShouldIgnore(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		excludes   []string
		wantIgnore bool
	}{
		{"empty excludes", "src/main.go", []string{}, false},
		{"prefix match", "node_modules/react/index.js", []string{"node_modules/"}, true},
		{"nested prefix match", "web/node_modules/react/index.js", []string{"node_modules/"}, true},
		{"suffix match", "dist/bundle.min.js", []string{".min.js"}, true},
		{"glob match basename", "src/file.min.js", []string{"*.min.js"}, true},
		{"substring match", "src/generated/code.go", []string{"generated"}, true},
		{"no match", "src/core/engine.go", []string{"vendor/", "node_modules/", ".min.js"}, false},
		{"partial segment is not a prefix", "mybuild/app.py", []string{"build/"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantIgnore, ShouldIgnore(tt.path, tt.excludes))
		})
	}
}

func TestMatchesSkipPattern(t *testing.T) {
	tests := []struct {
		name string
		file string
		want bool
	}{
		{"test substring", "pkg/test_models.py", true},
		{"test suffix", "tests_util.go", true},
		{"setup", "setup.py", true},
		{"conftest", "app/conftest.py", true},
		{"spec glob", "web/button.spec.tsx", true},
		{"config glob", "jest.config.js", true},
		{"case insensitive", "TestRunner.js", true},
		{"ordinary file", "app/models.py", false},
		{"directory named test does not matter", "src/app.py", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MatchesSkipPattern(tt.file, DefaultSkipPatterns))
		})
	}
	assert.False(t, MatchesSkipPattern("test_models.py", nil))
}

func TestDBFilePaths(t *testing.T) {
	homeDir, err := os.UserHomeDir()
	require.NoError(t, err)

	cache := GetCacheDBFilePath()
	assert.Contains(t, cache, ".footprint_cache.db")
	assert.True(t, strings.HasPrefix(cache, homeDir))

	history := GetHistoryDBFilePath()
	assert.Contains(t, history, ".footprint_history.db")
	assert.NotEqual(t, cache, history)
}

func TestNormalizeRepoPath(t *testing.T) {
	repoPath := "/home/user/project"

	tests := []struct {
		name        string
		userPath    string
		expected    string
		expectError bool
	}{
		{name: "relative path", userPath: "src/main.go", expected: "src/main.go"},
		{name: "relative path with dot", userPath: "./src/main.go", expected: "src/main.go"},
		{name: "absolute path within repo", userPath: "/home/user/project/src/main.go", expected: "src/main.go"},
		{name: "path with parent directory", userPath: "src/../lib/utils.go", expected: "lib/utils.go"},
		{name: "dotted file name", userPath: "..hidden.py", expected: "..hidden.py"},
		{name: "absolute path outside repo", userPath: "/tmp/file.go", expectError: true},
		{name: "path going outside repo", userPath: "../../../outside.go", expectError: true},
		{name: "root path", userPath: ".", expected: "."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := NormalizeRepoPath(repoPath, tt.userPath)
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestTruncatePath(t *testing.T) {
	assert.Equal(t, "short.go", TruncatePath("short.go", 20))
	assert.Equal(t, "...ep/file.py", TruncatePath("very/deep/file.py", 13))
	assert.Equal(t, "abcdef", TruncatePath("abcdef", 3), "tiny widths leave the path alone")
}

func TestParseBoolString(t *testing.T) {
	for _, s := range []string{"yes", "TRUE", "1"} {
		v, err := ParseBoolString(s)
		require.NoError(t, err)
		assert.True(t, v)
	}
	for _, s := range []string{"no", "False", "0"} {
		v, err := ParseBoolString(s)
		require.NoError(t, err)
		assert.False(t, v)
	}
	_, err := ParseBoolString("maybe")
	assert.Error(t, err)
}

func TestInitLogger(t *testing.T) {
	assert.NoError(t, InitLogger("debug", "text"))
	assert.NoError(t, InitLogger("", "json"))
	assert.NoError(t, InitLogger("warn", ""))
	assert.Error(t, InitLogger("loud", "text"))
	assert.Error(t, InitLogger("info", "xml"))
	require.NoError(t, InitLogger("info", "text"))
}
