package iocache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/huangsam/footprint/internal/contract"
	"github.com/huangsam/footprint/schema"
)

// Table names for analysis history.
const (
	recordsTable    = "footprint_analysis_records"
	changeLogsTable = "footprint_change_logs"
)

// RecordStoreImpl implements the RecordStore interface.
type RecordStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
}

var _ contract.RecordStore = &RecordStoreImpl{} // Compile-time check

// NewRecordStore creates a new RecordStore with the specified backend.
func NewRecordStore(backend schema.DatabaseBackend, connStr string) (*RecordStoreImpl, error) {
	if backend == schema.NoneBackend {
		// A no-op store for disabled history
		return &RecordStoreImpl{backend: backend}, nil
	}

	db, err := openDB(backend, connStr, GetHistoryDBFilePath())
	if err != nil {
		return nil, err
	}

	// Create the table schemas
	if err := createRecordTables(db, backend); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create history tables: %w", err)
	}

	return &RecordStoreImpl{db: db, backend: backend}, nil
}

// createRecordTables creates the history tables when they do not exist yet.
func createRecordTables(db *sql.DB, backend schema.DatabaseBackend) error {
	tables := []struct {
		name  string
		query string
	}{
		{recordsTable, getCreateRecordsQuery(backend)},
		{changeLogsTable, getCreateChangeLogsQuery(backend)},
	}
	for _, table := range tables {
		if _, err := db.Exec(table.query); err != nil {
			return fmt.Errorf("failed to create table %s: %w", table.name, err)
		}
	}
	return nil
}

// getCreateRecordsQuery returns the CREATE TABLE query for footprint_analysis_records.
func getCreateRecordsQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(recordsTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				record_id BIGINT AUTO_INCREMENT PRIMARY KEY,
				run_id VARCHAR(36) NOT NULL,
				repository_identity VARCHAR(512) NOT NULL,
				revision_id VARCHAR(128) NOT NULL,
				recorded_at DATETIME(6) NOT NULL,
				files_analyzed INT NOT NULL,
				file_tree LONGTEXT NOT NULL,
				profile LONGTEXT NOT NULL,
				recommendations TEXT NOT NULL
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				record_id BIGSERIAL PRIMARY KEY,
				run_id TEXT NOT NULL,
				repository_identity TEXT NOT NULL,
				revision_id TEXT NOT NULL,
				recorded_at TIMESTAMPTZ NOT NULL,
				files_analyzed INT NOT NULL,
				file_tree TEXT NOT NULL,
				profile TEXT NOT NULL,
				recommendations TEXT NOT NULL
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				record_id INTEGER PRIMARY KEY AUTOINCREMENT,
				run_id TEXT NOT NULL,
				repository_identity TEXT NOT NULL,
				revision_id TEXT NOT NULL,
				recorded_at TEXT NOT NULL,
				files_analyzed INTEGER NOT NULL,
				file_tree TEXT NOT NULL,
				profile TEXT NOT NULL,
				recommendations TEXT NOT NULL
			);
		`, quotedTableName)
	}
}

// getCreateChangeLogsQuery returns the CREATE TABLE query for footprint_change_logs.
func getCreateChangeLogsQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(changeLogsTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				entry_id BIGINT AUTO_INCREMENT PRIMARY KEY,
				repository_identity VARCHAR(512) NOT NULL,
				revision_id VARCHAR(128) NOT NULL,
				previous_revision VARCHAR(128) NOT NULL,
				recorded_at DATETIME(6) NOT NULL,
				changes TEXT NOT NULL
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				entry_id BIGSERIAL PRIMARY KEY,
				repository_identity TEXT NOT NULL,
				revision_id TEXT NOT NULL,
				previous_revision TEXT NOT NULL,
				recorded_at TIMESTAMPTZ NOT NULL,
				changes TEXT NOT NULL
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				entry_id INTEGER PRIMARY KEY AUTOINCREMENT,
				repository_identity TEXT NOT NULL,
				revision_id TEXT NOT NULL,
				previous_revision TEXT NOT NULL,
				recorded_at TEXT NOT NULL,
				changes TEXT NOT NULL
			);
		`, quotedTableName)
	}
}

// Store appends a record and returns its ID.
func (rs *RecordStoreImpl) Store(ctx context.Context, rec *schema.AnalysisRecord) (int64, error) {
	if rs.db == nil {
		return 0, nil
	}

	tree, err := json.Marshal(rec.FileTree)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal file tree: %w", err)
	}
	profile, err := json.Marshal(rec.Profile)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal profile: %w", err)
	}
	recs, err := json.Marshal(rec.Recommendations)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal recommendations: %w", err)
	}

	columns := "run_id, repository_identity, revision_id, recorded_at, files_analyzed, file_tree, profile, recommendations"
	args := []any{
		rec.RunID, rec.RepositoryIdentity, rec.RevisionID, formatTime(rec.Timestamp, rs.backend),
		rec.Profile.FilesAnalyzed, string(tree), string(profile), string(recs),
	}
	id, err := rs.insert(ctx, recordsTable, "record_id", columns, args)
	if err != nil {
		return 0, fmt.Errorf("failed to insert analysis record: %w", err)
	}
	rec.ID = id
	return id, nil
}

// insert runs an INSERT and returns the generated key.
func (rs *RecordStoreImpl) insert(ctx context.Context, table, idColumn, columns string, args []any) (int64, error) {
	placeholders := "?"
	for range len(args) - 1 {
		placeholders += ", ?"
	}
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", quoteTableName(table, rs.backend), columns, placeholders)

	if rs.backend == schema.PostgreSQLBackend {
		var id int64
		err := rs.db.QueryRowContext(ctx, rebind(query, rs.backend)+" RETURNING "+idColumn, args...).Scan(&id)
		return id, err
	}
	result, err := rs.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

const recordColumns = "record_id, run_id, repository_identity, revision_id, recorded_at, file_tree, profile, recommendations"

// Latest returns the most recent record for a repository identity, or nil.
func (rs *RecordStoreImpl) Latest(ctx context.Context, identity string) (*schema.AnalysisRecord, error) {
	if rs.db == nil {
		return nil, nil
	}
	query := rebind(fmt.Sprintf("SELECT %s FROM %s WHERE repository_identity = ? ORDER BY record_id DESC LIMIT 1",
		recordColumns, quoteTableName(recordsTable, rs.backend)), rs.backend)

	rec, err := scanRecord(rs.db.QueryRowContext(ctx, query, identity))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load latest record for %s: %w", identity, err)
	}
	return rec, nil
}

// ListRecords returns records oldest first. An empty identity lists every repository.
func (rs *RecordStoreImpl) ListRecords(ctx context.Context, identity string) ([]schema.AnalysisRecord, error) {
	if rs.db == nil {
		return nil, nil
	}
	query := fmt.Sprintf("SELECT %s FROM %s", recordColumns, quoteTableName(recordsTable, rs.backend))
	var args []any
	if identity != "" {
		query += " WHERE repository_identity = ?"
		args = append(args, identity)
	}
	query += " ORDER BY record_id"

	rows, err := rs.db.QueryContext(ctx, rebind(query, rs.backend), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query analysis records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.AnalysisRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan analysis record: %w", err)
		}
		results = append(results, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating analysis records: %w", err)
	}
	return results, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*schema.AnalysisRecord, error) {
	var rec schema.AnalysisRecord
	var recordedAt any
	var tree, profile, recs string
	if err := row.Scan(&rec.ID, &rec.RunID, &rec.RepositoryIdentity, &rec.RevisionID, &recordedAt, &tree, &profile, &recs); err != nil {
		return nil, err
	}
	ts, err := parseTimeValue(recordedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse recorded_at: %w", err)
	}
	rec.Timestamp = ts
	if err := json.Unmarshal([]byte(tree), &rec.FileTree); err != nil {
		return nil, fmt.Errorf("failed to decode file tree: %w", err)
	}
	if err := json.Unmarshal([]byte(profile), &rec.Profile); err != nil {
		return nil, fmt.Errorf("failed to decode profile: %w", err)
	}
	if err := json.Unmarshal([]byte(recs), &rec.Recommendations); err != nil {
		return nil, fmt.Errorf("failed to decode recommendations: %w", err)
	}
	return &rec, nil
}

// AppendChangeLog appends one change log entry.
func (rs *RecordStoreImpl) AppendChangeLog(ctx context.Context, entry schema.ChangeLogEntry) error {
	if rs.db == nil {
		return nil
	}
	changes, err := json.Marshal(entry.Changes)
	if err != nil {
		return fmt.Errorf("failed to marshal changes: %w", err)
	}
	columns := "repository_identity, revision_id, previous_revision, recorded_at, changes"
	args := []any{entry.RepositoryIdentity, entry.RevisionID, entry.PreviousRevision, formatTime(entry.Timestamp, rs.backend), string(changes)}
	if _, err := rs.insert(ctx, changeLogsTable, "entry_id", columns, args); err != nil {
		return fmt.Errorf("failed to insert change log entry: %w", err)
	}
	return nil
}

// ListChangeLogs returns change log entries newest first. A limit of zero or
// less returns every entry; an empty identity covers every repository.
func (rs *RecordStoreImpl) ListChangeLogs(ctx context.Context, identity string, limit int) ([]schema.ChangeLogEntry, error) {
	if rs.db == nil {
		return nil, nil
	}
	query := fmt.Sprintf("SELECT entry_id, repository_identity, revision_id, previous_revision, recorded_at, changes FROM %s",
		quoteTableName(changeLogsTable, rs.backend))
	var args []any
	if identity != "" {
		query += " WHERE repository_identity = ?"
		args = append(args, identity)
	}
	query += " ORDER BY entry_id DESC"
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := rs.db.QueryContext(ctx, rebind(query, rs.backend), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query change logs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.ChangeLogEntry
	for rows.Next() {
		var entry schema.ChangeLogEntry
		var recordedAt any
		var changes string
		if err := rows.Scan(&entry.ID, &entry.RepositoryIdentity, &entry.RevisionID, &entry.PreviousRevision, &recordedAt, &changes); err != nil {
			return nil, fmt.Errorf("failed to scan change log: %w", err)
		}
		if entry.Timestamp, err = parseTimeValue(recordedAt); err != nil {
			return nil, fmt.Errorf("failed to parse recorded_at: %w", err)
		}
		if err := json.Unmarshal([]byte(changes), &entry.Changes); err != nil {
			return nil, fmt.Errorf("failed to decode changes: %w", err)
		}
		results = append(results, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating change logs: %w", err)
	}
	return results, nil
}

// Clear removes all records and change log entries.
func (rs *RecordStoreImpl) Clear(ctx context.Context) error {
	if rs.db == nil {
		return nil
	}
	for _, table := range []string{changeLogsTable, recordsTable} {
		if _, err := rs.db.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s", quoteTableName(table, rs.backend))); err != nil {
			return fmt.Errorf("failed to clear table %s: %w", table, err)
		}
	}
	return nil
}

// Close closes the underlying connection.
func (rs *RecordStoreImpl) Close() error {
	if rs.db != nil {
		return rs.db.Close()
	}
	return nil
}

// GetStatus returns status information about the record store.
func (rs *RecordStoreImpl) GetStatus() (schema.HistoryStatus, error) {
	status := schema.HistoryStatus{
		Backend:    string(rs.backend),
		Connected:  rs.db != nil,
		TableSizes: make(map[string]int64),
	}
	if rs.db == nil {
		return status, nil
	}

	records := quoteTableName(recordsTable, rs.backend)
	row := rs.db.QueryRow(fmt.Sprintf("SELECT COUNT(*), COUNT(DISTINCT repository_identity) FROM %s", records))
	if err := row.Scan(&status.TotalRecords, &status.Repositories); err != nil {
		return status, fmt.Errorf("failed to get total records: %w", err)
	}

	if status.TotalRecords > 0 {
		// Get last record info
		var lastTime any
		row = rs.db.QueryRow(fmt.Sprintf("SELECT record_id, recorded_at FROM %s ORDER BY record_id DESC LIMIT 1", records))
		if err := row.Scan(&status.LastRecordID, &lastTime); err != nil {
			return status, fmt.Errorf("failed to get last record info: %w", err)
		}
		t, err := parseTimeValue(lastTime)
		if err != nil {
			return status, fmt.Errorf("failed to parse last record time: %w", err)
		}
		status.LastRecordTime = t

		// Get oldest record time
		var oldestTime any
		row = rs.db.QueryRow(fmt.Sprintf("SELECT recorded_at FROM %s ORDER BY record_id ASC LIMIT 1", records))
		if err := row.Scan(&oldestTime); err != nil {
			return status, fmt.Errorf("failed to get oldest record time: %w", err)
		}
		if status.OldestRecord, err = parseTimeValue(oldestTime); err != nil {
			return status, fmt.Errorf("failed to parse oldest record time: %w", err)
		}
	}

	// Get table sizes
	for _, table := range []string{recordsTable, changeLogsTable} {
		var count int64
		if err := rs.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteTableName(table, rs.backend))).Scan(&count); err != nil {
			return status, fmt.Errorf("failed to get count for table %s: %w", table, err)
		}
		status.TableSizes[table] = count
	}
	status.TotalChangeLogs = int(status.TableSizes[changeLogsTable])

	return status, nil
}
