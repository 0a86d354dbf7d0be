package iocache

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/huangsam/footprint/internal/contract"
	"github.com/huangsam/footprint/schema"
)

// estimateTable is the name of the table for persisted estimates.
const estimateTable = "footprint_estimate_cache"

// Global Manager instance for main logic.
var (
	Manager   = &StoreManager{}
	initOnce  sync.Once
	closeOnce sync.Once
)

// GetCacheDBFilePath returns the path to the SQLite DB file for estimate storage.
func GetCacheDBFilePath() string {
	return contract.GetCacheDBFilePath()
}

// GetHistoryDBFilePath returns the path to the SQLite DB file for analysis history.
func GetHistoryDBFilePath() string {
	return contract.GetHistoryDBFilePath()
}

// InitStores initializes the global manager with the estimate cache and record stores.
// An empty or none backend leaves the corresponding store unset.
func InitStores(cacheBackend schema.DatabaseBackend, cacheConnStr string, historyBackend schema.DatabaseBackend, historyConnStr string) error {
	var initErr error

	initOnce.Do(func() {
		var cacheStore contract.CacheStore
		if cacheBackend != "" && cacheBackend != schema.NoneBackend {
			store, err := NewCacheStore(estimateTable, cacheBackend, cacheConnStr)
			if err != nil {
				initErr = fmt.Errorf("failed to initialize estimate cache: %w", err)
				return
			}
			cacheStore = store
		}

		var recordStore contract.RecordStore
		if historyBackend != "" && historyBackend != schema.NoneBackend {
			store, err := NewRecordStore(historyBackend, historyConnStr)
			if err != nil {
				if cacheStore != nil {
					_ = cacheStore.Close()
				}
				initErr = fmt.Errorf("failed to initialize record store: %w", err)
				return
			}
			recordStore = store
		}

		Manager.Lock()
		defer Manager.Unlock()
		Manager.cache = cacheStore
		Manager.records = recordStore
	})

	return initErr
}

// CloseStores should be called on application shutdown.
func CloseStores() {
	closeOnce.Do(func() {
		Manager.Lock()
		defer Manager.Unlock()
		if Manager.cache != nil {
			_ = Manager.cache.Close()
		}
		if Manager.records != nil {
			_ = Manager.records.Close()
		}
	})
}

// ClearCache clears the persistent estimate cache. For SQLite it deletes the
// database file; for MySQL and PostgreSQL it deletes the rows.
func ClearCache(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend:
		return removeSQLiteFile(connStr, GetCacheDBFilePath())
	case schema.MySQLBackend, schema.PostgreSQLBackend:
		store, err := NewCacheStore(estimateTable, backend, connStr)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()
		return store.Clear()
	case schema.NoneBackend:
		return nil
	default:
		return fmt.Errorf("unsupported cache backend for clearing: %s", backend)
	}
}

// ClearHistory clears the analysis history. For SQLite it deletes the database
// file; for MySQL and PostgreSQL it deletes the rows of both history tables.
func ClearHistory(ctx context.Context, backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend:
		return removeSQLiteFile(connStr, GetHistoryDBFilePath())
	case schema.MySQLBackend, schema.PostgreSQLBackend:
		store, err := NewRecordStore(backend, connStr)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()
		return store.Clear(ctx)
	case schema.NoneBackend:
		return nil
	default:
		return fmt.Errorf("unsupported history backend for clearing: %s", backend)
	}
}

func removeSQLiteFile(connStr, defaultPath string) error {
	path := connStr
	if path == "" {
		path = defaultPath
	}
	if path == ":memory:" {
		return nil
	}
	// Remove the file; ignore if it doesn't exist
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove SQLite database file %s: %w", path, err)
	}
	return nil
}
