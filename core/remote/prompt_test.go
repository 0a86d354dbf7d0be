package remote

import (
	"fmt"
	"strings"
	"testing"

	"github.com/huangsam/footprint/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTruncateLines(t *testing.T) {
	text := "a\nb\nc\nd\n"

	out, truncated := truncateLines(text, 2)
	assert.Equal(t, "a\nb\n", out)
	assert.True(t, truncated)

	out, truncated = truncateLines(text, 4)
	assert.Equal(t, text, out)
	assert.False(t, truncated)

	out, truncated = truncateLines("a\nb", 5)
	assert.Equal(t, "a\nb", out)
	assert.False(t, truncated)

	out, truncated = truncateLines(text, 0)
	assert.Equal(t, text, out)
	assert.False(t, truncated)
}

func TestBuildPrompt(t *testing.T) {
	req := Request{
		Path:      "app/main.py",
		Content:   "import os\nprint(1)\nprint(2)\n",
		Structure: map[string][]string{"/": {"setup.cfg"}, "app": {"main.py"}},
		Metrics:   schema.StaticMetrics{LinesOfCode: 3, Libraries: []string{"os"}},
	}
	prompt, err := buildPrompt(req, 1)
	require.NoError(t, err)

	assert.Contains(t, prompt, "[INPUT JSON]")
	assert.Contains(t, prompt, `"file_path": "app/main.py"`)
	assert.Contains(t, prompt, `"truncated": true`)
	assert.Contains(t, prompt, `"libraries": [`)
	assert.NotContains(t, prompt, "print(2)")
}

func TestSummarizeStructure(t *testing.T) {
	structure := make(map[string][]string)
	for i := range 5 {
		structure[fmt.Sprintf("dir%d", i)] = []string{"f.py"}
	}
	out := summarizeStructure(structure, 3)
	assert.Len(t, out, 3)
	for dir := range out {
		assert.True(t, strings.Compare(dir, "dir3") < 0)
	}
	assert.Equal(t, structure, summarizeStructure(structure, 10))
}
