package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/huangsam/footprint/core"
	"github.com/huangsam/footprint/internal/contract"
)

// runExecutor runs one pipeline executor and exits on failure.
func runExecutor(executeFunc core.ExecutorFunc, failure string) {
	if err := executeFunc(rootCtx, cfg, storeManager); err != nil {
		contract.LogFatal(failure, err)
	}
}

// profileCmd runs the full pipeline on a repository.
var profileCmd = &cobra.Command{
	Use:   "profile [repo-path]",
	Short: "Estimate the resource needs of a repository and recommend sizing.",
	Long: `Estimate memory, CPU and network bandwidth for every eligible source file,
fold the estimates into a repository profile and print deployment sizing
recommendations.

Each file is sent to the configured remote provider when one is available and
falls back to local heuristics otherwise. When a history backend is configured
the analysis is stored and compared with the previous one.

Examples:
  # Profile the current repository
  footprint profile

  # Show per-file estimates without touching the history
  footprint profile ./services/api --detail --dry-run

  # Machine-readable output for manifest templating
  footprint profile --output json --output-file footprint.json`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		runExecutor(core.ExecuteProfile, "Cannot profile repository")
	},
}

// estimateCmd analyzes one file.
var estimateCmd = &cobra.Command{
	Use:   "estimate <file>",
	Short: "Estimate the resource needs of a single source file.",
	Long: `Estimate one source file the same way profile does for each file of a repository.
The static facts extracted from the file are printed next to the estimate.

Examples:
  footprint estimate app/jobs.py
  footprint estimate web/server.ts --provider none --output json`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		runExecutor(core.ExecuteEstimate, "Cannot estimate file")
	},
}

// compareCmd profiles and compares without storing.
var compareCmd = &cobra.Command{
	Use:   "compare [repo-path]",
	Short: "Compare the repository with its latest stored analysis.",
	Long: `Profile the repository and report what changed since the latest stored analysis:
revision, added and removed files, memory and bandwidth beyond the change
threshold, CPU cores and estimate sources. The recommendation sets are shown as
a line diff. Nothing is stored.

Examples:
  footprint compare
  footprint compare --change-threshold 0.25`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteCompare(rootCtx, cfg, storeManager); err != nil {
			if errors.Is(err, core.ErrNoHistory) {
				contract.LogFatal("Cannot compare repository", errors.New("comparison needs a history backend; set --history-backend"))
			}
			contract.LogFatal("Cannot compare repository", err)
		}
	},
}

// heuristicsCmd prints the active heuristic tables.
var heuristicsCmd = &cobra.Command{
	Use:   "heuristics",
	Short: "Print the heuristic impact tables used for local estimates.",
	Long: `Print the library impacts, structural patterns and network patterns used when no
remote provider is available. Text output is YAML and can be edited and passed
back with --heuristics-file.

Examples:
  footprint heuristics > heuristics.yaml
  footprint heuristics --heuristics-file heuristics.yaml --output csv`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		runExecutor(core.ExecuteHeuristics, "Cannot load heuristics")
	},
}
