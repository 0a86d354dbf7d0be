// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"

	"github.com/huangsam/footprint/schema"
)

// RevisionClient resolves the identity and revision of a repository.
// This allows the core analysis logic to be tested without needing a real git executable.
type RevisionClient interface {
	// GetRepoRoot returns the absolute path to the root of the Git repository
	// containing the given context path.
	GetRepoRoot(ctx context.Context, contextPath string) (string, error)

	// GetRepoHash returns the current HEAD commit hash of the repository.
	GetRepoHash(ctx context.Context, repoPath string) (string, error)

	// GetRemoteURL returns the fetch URL of the origin remote.
	GetRemoteURL(ctx context.Context, repoPath string) (string, error)
}

// EstimateCache is the content-hash keyed estimate cache. Implementations must
// be safe for concurrent Get and Put.
type EstimateCache interface {
	Get(hash string) (schema.ResourceEstimate, bool)
	Put(hash string, est schema.ResourceEstimate)
}

// StoreManager defines the interface for managing persistent stores.
// This allows the storage layer to be mocked for testing.
type StoreManager interface {
	GetCacheStore() CacheStore
	GetRecordStore() RecordStore
}

// CacheStore defines the interface for persistent estimate storage.
// This allows mocking the store for testing.
type CacheStore interface {
	Get(key string) ([]byte, int, int64, error)
	Set(key string, value []byte, version int, timestamp int64) error
	GetStatus() (schema.CacheStatus, error)
	Clear() error
	Close() error
}

// RecordStore defines the interface for analysis history. Records and change
// log entries are append-only.
type RecordStore interface {
	// Store appends a record and returns its ID.
	Store(ctx context.Context, rec *schema.AnalysisRecord) (int64, error)

	// Latest returns the most recent record for a repository identity, or nil
	// when none exists.
	Latest(ctx context.Context, identity string) (*schema.AnalysisRecord, error)

	// AppendChangeLog appends one change log entry.
	AppendChangeLog(ctx context.Context, entry schema.ChangeLogEntry) error

	// ListRecords returns records oldest first. An empty identity lists every repository.
	ListRecords(ctx context.Context, identity string) ([]schema.AnalysisRecord, error)

	// ListChangeLogs returns change log entries newest first, at most limit of them.
	ListChangeLogs(ctx context.Context, identity string, limit int) ([]schema.ChangeLogEntry, error)

	// GetStatus returns status information about the record store.
	GetStatus() (schema.HistoryStatus, error)

	// Clear removes all records and change log entries.
	Clear(ctx context.Context) error

	// Close closes the underlying connection.
	Close() error
}
