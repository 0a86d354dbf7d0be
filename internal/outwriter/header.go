package outwriter

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/huangsam/footprint/internal/contract"
	"github.com/huangsam/footprint/schema"
)

// LogProfileHeader prints a concise, 2-line header before a profile run.
// It goes to stderr so that stdout stays parseable.
func LogProfileHeader(repo schema.RepositoryContext, provider string, cfg *contract.Config) {
	writeProfileHeader(os.Stderr, repo, provider, cfg)
}

func writeProfileHeader(w io.Writer, repo schema.RepositoryContext, provider string, cfg *contract.Config) {
	repoName := filepath.Base(repo.Root)
	if repoName == "" || repoName == "." {
		repoName = "current"
	}

	// Line 1: The repository and its revision
	_, _ = fmt.Fprintf(w, "🔎 Repo: %s (Revision: %s)\n", repoName, shortRevision(repo.Revision))

	// Line 2: Who produces the estimates
	_, _ = fmt.Fprintf(w, "🧮 Estimator: %s (workers: %d)\n", provider, cfg.Workers)
}
