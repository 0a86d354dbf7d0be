package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/huangsam/footprint/core"
	"github.com/huangsam/footprint/internal/contract"
	"github.com/huangsam/footprint/internal/iocache"
	"github.com/huangsam/footprint/schema"
)

// historyBackend reads the history backend settings without full validation.
func historyBackend() (schema.DatabaseBackend, string, error) {
	if err := loadConfigFile(); err != nil {
		return "", "", err
	}
	backend := schema.DatabaseBackend(viper.GetString("history-backend"))
	if backend == "" {
		backend = schema.SQLiteBackend
	}
	if _, ok := schema.ValidDatabaseBackends[backend]; !ok {
		return "", "", fmt.Errorf("invalid history backend '%s'. must be sqlite, mysql, postgresql, none", backend)
	}
	connStr := viper.GetString("history-db-connect")
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return "", "", err
	}
	return backend, connStr, nil
}

// historySetup loads minimal configuration needed for history operations.
// This is used by commands that need the record store without full shared setup.
func historySetup(_ *cobra.Command, _ []string) error {
	backend, connStr, err := historyBackend()
	if err != nil {
		return err
	}

	// Initialize the record store only (no estimate cache for history commands)
	if err := iocache.InitStores(schema.NoneBackend, "", backend, connStr); err != nil {
		return fmt.Errorf("failed to initialize history: %w", err)
	}

	cfg.HistoryBackend = backend
	cfg.HistoryDBConnect = connStr
	cfg.OutputFile = viper.GetString("output-file")
	cfg.RepoID = viper.GetString("repo-id")
	return nil
}

// historyMigrateSetup loads the backend settings without opening the store, so
// that migrations can run on a fresh database.
func historyMigrateSetup(_ *cobra.Command, _ []string) error {
	backend, connStr, err := historyBackend()
	if err != nil {
		return err
	}
	cfg.HistoryBackend = backend
	cfg.HistoryDBConnect = connStr
	return nil
}

// requireRecordStore returns the record store or exits when history is disabled.
func requireRecordStore() contract.RecordStore {
	store := storeManager.GetRecordStore()
	if store == nil {
		contract.LogFatal("History is disabled", core.ErrNoHistory)
	}
	return store
}

// historyCmd focused on analysis history management.
//
// Note: most history subcommands use minimal initialization (historySetup)
// instead of the full sharedSetup, which avoids repository validation.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Manage stored analyses and the change log",
	Long: `Manage the analysis history used for change detection.

Every profile run stores an analysis record (profile, recommendations and file
tree) and appends detected changes to the change log.

Supported backends: SQLite (default), MySQL, PostgreSQL, or None (disabled)

Subcommands:
  status  - Show history statistics
  changes - List recorded changes of a repository
  export  - Export records and change logs to Parquet
  clear   - Remove all history
  migrate - Run database schema migrations`,
}

// historyStatusCmd shows record store status.
var historyStatusCmd = &cobra.Command{
	Use:     "status",
	Short:   "Display history statistics and connection details",
	PreRunE: historySetup,
	Run: func(_ *cobra.Command, _ []string) {
		status, err := requireRecordStore().GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get history status", err)
		}
		iocache.PrintHistoryStatus(os.Stdout, status)
	},
}

// historyChangesCmd lists change log entries of one repository.
var historyChangesCmd = &cobra.Command{
	Use:   "changes [repo-path]",
	Short: "List recorded resource changes of a repository, newest first",
	Long: `List the change log of the repository: the changes detected each time a profile
differed from the previous analysis.

Examples:
  footprint history changes
  footprint history changes ../shop --limit 5 --output csv`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteHistoryChanges(rootCtx, cfg, storeManager, viper.GetInt("limit")); err != nil {
			contract.LogFatal("Failed to list changes", err)
		}
	},
}

// historyExportCmd exports records and change logs to Parquet files.
var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export history to Parquet for BI tools and analytics",
	Long: `Export stored analyses to Parquet. Three files are written next to --output-file:
records, per-file components and change log entries. Use --repo-id to export a
single repository.

Examples:
  footprint history export --output-file footprint
  duckdb -c "SELECT * FROM read_parquet('footprint.records.parquet') LIMIT 10"`,
	PreRunE: historySetup,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ExecuteHistoryExport(rootCtx, os.Stdout, requireRecordStore(), cfg.OutputFile, cfg.RepoID); err != nil {
			contract.LogFatal("Failed to export history", err)
		}
	},
}

// historyClearCmd clears the analysis history.
var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all stored analyses and change log entries",
	Long: `Delete every analysis record and change log entry.

WARNING: This action cannot be undone. Consider exporting data first.`,
	PreRunE: historyMigrateSetup,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ClearHistory(rootCtx, cfg.HistoryBackend, cfg.HistoryDBConnect); err != nil {
			contract.LogFatal("Failed to clear history", err)
		}
		fmt.Println("History cleared successfully.")
	},
}

// historyMigrateCmd runs database migrations for the record store.
var historyMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage database schema versions of the history store.

By default, migrates to the latest version. Use --target-version for specific versions.

Examples:
  # Migrate to latest version (default)
  footprint history migrate

  # Rollback to the initial state
  footprint history migrate --target-version 0`,
	PreRunE: historyMigrateSetup,
	Run: func(_ *cobra.Command, _ []string) {
		if cfg.HistoryBackend == schema.NoneBackend {
			contract.LogFatal("Cannot migrate", errors.New("history backend is none"))
		}
		if err := iocache.MigrateHistory(os.Stdout, cfg.HistoryBackend, cfg.HistoryDBConnect, viper.GetInt("target-version")); err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
	},
}
