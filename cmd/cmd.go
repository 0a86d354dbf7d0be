// Package cmd defines the command-line interface for footprint.
package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/huangsam/footprint/internal/contract"
	"github.com/huangsam/footprint/schema"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(estimateCmd)
	rootCmd.AddCommand(compareCmd)
	rootCmd.AddCommand(heuristicsCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(versionCmd)

	// Add the history subcommands to the parent history command
	historyCmd.AddCommand(historyStatusCmd)
	historyCmd.AddCommand(historyChangesCmd)
	historyCmd.AddCommand(historyExportCmd)
	historyCmd.AddCommand(historyClearCmd)
	historyCmd.AddCommand(historyMigrateCmd)

	// Add the cache subcommands to the parent cache command
	cacheCmd.AddCommand(cacheStatusCmd)
	cacheCmd.AddCommand(cacheClearCmd)

	// Bind all persistent flags of rootCmd to Viper
	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "Path to config file")
	flags.Bool("detail", false, "Print per-file estimates")
	flags.String("exclude", "", "Comma-separated list of path prefixes or patterns to ignore")
	flags.String("extensions", "", "Comma-separated list of source file extensions (default .py,.go,.js,.jsx,.ts,.tsx)")
	flags.String("skip-patterns", "", "Comma-separated file name patterns to skip, or 'none'")
	flags.String("output", string(schema.TextOut), "Output format: text or csv or json")
	flags.String("output-file", "", "Optional path to write output to")
	flags.Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	flags.String("profile", "", "Enable profiling and write profiles to files with this prefix")
	flags.Int("workers", contract.DefaultWorkers, "Number of concurrent workers")
	flags.Int("width", 0, "Terminal width override (0 = auto-detect)")
	flags.String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	flags.String("log-level", "info", "Log level: debug or info or warn or error")
	flags.String("log-format", contract.LogFormatText, "Log format: text or json")
	flags.String("metrics-file", "", "Write Prometheus counters to this textfile when the command ends")

	flags.String("provider", string(schema.AutoProvider), "Remote estimation provider: auto or anthropic or gemini or ollama or none")
	flags.String("model", "", "Model name for the remote provider (provider default when empty)")
	flags.String("ollama-host", "", "Ollama server URL (default http://localhost:11434)")
	flags.Int("max-prompt-lines", contract.DefaultMaxPromptLines, "Maximum number of source lines sent to the remote provider")
	flags.Int("remote-attempts", contract.DefaultRemoteAttempts, "Attempts per file before falling back to heuristics")
	flags.String("remote-backoff", contract.DefaultRemoteBackoff.String(), "Initial wait between remote attempts")
	flags.String("remote-timeout", contract.DefaultRemoteTimeout.String(), "Timeout of a single remote attempt")
	flags.Float64("remote-rps", 0, "Maximum remote requests per second (0 = unlimited)")
	flags.Int("remote-concurrency", 0, "Maximum concurrent remote requests (0 = workers)")

	flags.Float64("memory-floor-mb", 0, "Minimum accepted memory estimate in MB")
	flags.Float64("min-base-mb", contract.DefaultMinBaseMB, "Base memory of every heuristic estimate in MB")
	flags.Float64("min-cores", 0, "Minimum accepted CPU cores per estimate (default 0.5)")
	flags.Float64("bandwidth-floor-mbps", 0, "Minimum accepted bandwidth per estimate in Mbps")
	flags.Float64("recommend-floor-mb", contract.DefaultRecommendFloorMB, "Smallest recommended memory allocation in MB")
	flags.Float64("change-threshold", contract.DefaultChangeThreshold, "Relative change that counts as a memory or bandwidth change")
	flags.String("heuristics-file", "", "YAML file overriding the heuristic impact tables")
	flags.Int("cache-size", contract.DefaultCacheSize, "Entries in the in-process estimate cache")

	flags.String("cache-backend", string(schema.NoneBackend), "Persistent estimate cache: sqlite or mysql or postgresql or none")
	flags.String("cache-db-connect", "", "Database connection string for the estimate cache")
	flags.String("history-backend", string(schema.SQLiteBackend), "Analysis history: sqlite or mysql or postgresql or none")
	flags.String("history-db-connect", "", "Database connection string for analysis history (SQLite files must differ from the cache file)")
	flags.String("repo-id", "", "Repository identity override used for history")
	if err := viper.BindPFlags(flags); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of profileCmd to Viper
	profileCmd.Flags().Bool("dry-run", false, "Report changes without storing the analysis")
	if err := viper.BindPFlags(profileCmd.Flags()); err != nil {
		contract.LogFatal("Error binding profile flags", err)
	}

	// Bind all flags of historyChangesCmd to Viper
	historyChangesCmd.Flags().Int("limit", 20, "Number of change log entries to display (0 = all)")
	if err := viper.BindPFlags(historyChangesCmd.Flags()); err != nil {
		contract.LogFatal("Error binding history changes flags", err)
	}

	// Bind all flags of historyMigrateCmd to Viper
	historyMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(historyMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding history migrate flags", err)
	}
}
