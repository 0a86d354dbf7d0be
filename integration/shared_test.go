//go:build basic || database

package integration

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"testing"
)

var (
	// sharedFootprintPath holds the path to a shared footprint binary built once for all tests.
	sharedFootprintPath string

	// buildOnce ensures we only build the binary once.
	buildOnce sync.Once

	// buildMutex protects the shared binary path.
	buildMutex sync.Mutex

	// tempDir holds the temp directory for cleanup.
	tempDir string
)

// TestMain handles setup and cleanup for all integration tests.
func TestMain(m *testing.M) {
	// Run all tests
	code := m.Run()

	// Cleanup the shared binary after all tests
	if tempDir != "" {
		_ = os.RemoveAll(tempDir)
	}

	os.Exit(code)
}

// getFootprintBinary returns the path to the footprint binary, building it once if needed.
func getFootprintBinary() string {
	buildMutex.Lock()
	defer buildMutex.Unlock()

	buildOnce.Do(func() {
		// Create a temp directory for the binary
		var err error
		tempDir, err = os.MkdirTemp("", "footprint-integration-*")
		if err != nil {
			panic(fmt.Sprintf("failed to create temp dir: %v", err))
		}

		footprintPath := filepath.Join(tempDir, "footprint")
		buildCmd := exec.Command("go", "build", "-o", footprintPath, ".")
		buildCmd.Dir = ".." // Build from parent directory (project root)
		err = buildCmd.Run()
		if err != nil {
			panic(fmt.Sprintf("failed to build footprint: %v", err))
		}

		sharedFootprintPath = footprintPath
	})

	return sharedFootprintPath
}

// writeSampleRepo creates a small repository with one Python and one Go file.
func writeSampleRepo(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"jobs/load.py": "import pandas as pd\nimport requests\n\n\ndef load(url):\n    frame = pd.read_csv(url)\n    for row in frame.itertuples():\n        requests.post(url, json=row)\n",
		"cmd/main.go":  "package main\n\nimport \"net/http\"\n\nfunc main() {\n\tfor i := 0; i < 3; i++ {\n\t\t_, _ = http.Get(\"http://example.com\")\n\t}\n}\n",
		"README.md":    "# sample\n",
	}
	for name, content := range files {
		path := filepath.Join(root, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

// runFootprint runs the binary with local-only estimation and returns its stdout.
func runFootprint(t *testing.T, env []string, args ...string) ([]byte, error) {
	t.Helper()
	cmd := exec.Command(getFootprintBinary(), args...)
	cmd.Env = append(os.Environ(), "FOOTPRINT_PROVIDER=none")
	cmd.Env = append(cmd.Env, env...)
	var stderr []byte
	output, err := cmd.Output()
	if exitErr, ok := err.(*exec.ExitError); ok {
		stderr = exitErr.Stderr
	}
	if err != nil {
		t.Logf("Command failed: %s\nStderr: %s", cmd.String(), string(stderr))
	}
	return output, err
}
