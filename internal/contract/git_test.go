package contract

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// skipIfGitNotAvailable skips the test if git binary is not found in PATH
func skipIfGitNotAvailable(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skipf("git binary not found in PATH: %v", err)
	}
}

// initTestRepo creates a throwaway repository with one commit and an origin remote.
func initTestRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	run := func(args ...string) {
		cmd := exec.Command("git", append([]string{"-C", dir}, args...)...)
		cmd.Env = append(os.Environ(),
			"GIT_AUTHOR_NAME=test", "GIT_AUTHOR_EMAIL=test@example.com",
			"GIT_COMMITTER_NAME=test", "GIT_COMMITTER_EMAIL=test@example.com",
		)
		out, err := cmd.CombinedOutput()
		require.NoError(t, err, string(out))
	}
	run("init", "-q")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.py"), []byte("print('hi')\n"), 0o644))
	run("add", ".")
	run("commit", "-q", "-m", "initial")
	run("remote", "add", "origin", "https://example.com/acme/app.git")
	return dir
}

func TestNewLocalGitClient(t *testing.T) {
	client := NewLocalGitClient()
	assert.NotNil(t, client)
	assert.IsType(t, &LocalGitClient{}, client)
}

func TestLocalGitClient_Run(t *testing.T) {
	skipIfGitNotAvailable(t)
	client := NewLocalGitClient()
	ctx := context.Background()
	repo := initTestRepo(t)

	_, err := client.Run(ctx, "/nonexistent/path", "status")
	assert.Error(t, err)

	_, err = client.Run(ctx, repo, "invalid-command")
	assert.Error(t, err)

	out, err := client.Run(ctx, repo, "status", "--porcelain")
	assert.NoError(t, err)
	assert.Empty(t, out)
}

func TestLocalGitClient_GetRepoRoot(t *testing.T) {
	skipIfGitNotAvailable(t)
	client := NewLocalGitClient()
	ctx := context.Background()
	repo := initTestRepo(t)

	sub := filepath.Join(repo, "pkg")
	require.NoError(t, os.Mkdir(sub, 0o755))

	root, err := client.GetRepoRoot(ctx, sub)
	require.NoError(t, err)
	want, err := filepath.EvalSymlinks(repo)
	require.NoError(t, err)
	got, err := filepath.EvalSymlinks(root)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	_, err = client.GetRepoRoot(ctx, t.TempDir())
	assert.Error(t, err, "a plain directory is not a repository")
}

func TestLocalGitClient_GetRepoHashAndRemote(t *testing.T) {
	skipIfGitNotAvailable(t)
	client := NewLocalGitClient()
	ctx := context.Background()
	repo := initTestRepo(t)

	hash, err := client.GetRepoHash(ctx, repo)
	require.NoError(t, err)
	assert.Len(t, hash, 40)

	url, err := client.GetRemoteURL(ctx, repo)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/acme/app.git", url)

	_, err = client.GetRemoteURL(ctx, t.TempDir())
	assert.Error(t, err)
}
