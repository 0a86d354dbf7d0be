package schema

import "time"

// CacheStatus represents the status of the persistent estimate cache.
type CacheStatus struct {
	Backend         string    `json:"backend"`
	Connected       bool      `json:"connected"`
	TotalEntries    int       `json:"total_entries"`
	LastEntryTime   time.Time `json:"last_entry_time"`
	OldestEntryTime time.Time `json:"oldest_entry_time"`
	TableSizeBytes  int64     `json:"table_size_bytes"`
}

// HistoryStatus represents the status of the analysis record store.
type HistoryStatus struct {
	Backend         string           `json:"backend"`
	Connected       bool             `json:"connected"`
	TotalRecords    int              `json:"total_records"`
	TotalChangeLogs int              `json:"total_change_logs"`
	Repositories    int              `json:"repositories"`
	LastRecordID    int64            `json:"last_record_id"`
	LastRecordTime  time.Time        `json:"last_record_time"`
	OldestRecord    time.Time        `json:"oldest_record_time"`
	TableSizes      map[string]int64 `json:"table_sizes"`
}
