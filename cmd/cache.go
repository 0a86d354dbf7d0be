package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/huangsam/footprint/internal/contract"
	"github.com/huangsam/footprint/internal/iocache"
	"github.com/huangsam/footprint/schema"
)

// cacheSetup loads minimal configuration needed for cache operations.
// This is used by commands that need the estimate cache without full shared setup.
func cacheSetup(_ *cobra.Command, _ []string) error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	backend := schema.DatabaseBackend(viper.GetString("cache-backend"))
	if backend == "" {
		backend = schema.NoneBackend
	}
	if _, ok := schema.ValidDatabaseBackends[backend]; !ok {
		return fmt.Errorf("invalid cache backend '%s'. must be sqlite, mysql, postgresql, none", backend)
	}
	connStr := viper.GetString("cache-db-connect")
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}

	cfg.CacheBackend = backend
	cfg.CacheDBConnect = connStr
	return nil
}

// cacheCmd focused on persistent estimate cache management.
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the persistent estimate cache",
	Long: `Manage the persistent estimate cache.

Estimates are cached by file content hash, so an unchanged file is not sent to
the remote provider again. The cache is disabled unless --cache-backend is set.

Supported backends: SQLite, MySQL, PostgreSQL, or None (default)`,
}

// cacheStatusCmd shows cache status.
var cacheStatusCmd = &cobra.Command{
	Use:     "status",
	Short:   "Display estimate cache statistics",
	PreRunE: cacheSetup,
	Run: func(_ *cobra.Command, _ []string) {
		if cfg.CacheBackend == schema.NoneBackend {
			contract.LogFatal("Cache is disabled", errors.New("set --cache-backend to sqlite, mysql or postgresql"))
		}
		if err := iocache.InitStores(cfg.CacheBackend, cfg.CacheDBConnect, schema.NoneBackend, ""); err != nil {
			contract.LogFatal("Failed to initialize cache", err)
		}
		status, err := storeManager.GetCacheStore().GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get cache status", err)
		}
		iocache.PrintCacheStatus(os.Stdout, status)
	},
}

// cacheClearCmd clears the estimate cache.
var cacheClearCmd = &cobra.Command{
	Use:     "clear",
	Short:   "Remove all cached estimates",
	PreRunE: cacheSetup,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ClearCache(cfg.CacheBackend, cfg.CacheDBConnect); err != nil {
			contract.LogFatal("Failed to clear cache", err)
		}
		fmt.Println("Cache cleared successfully.")
	},
}
