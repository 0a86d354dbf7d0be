package iocache

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huangsam/footprint/schema"
)

func newMemoryRecordStore(t *testing.T) *RecordStoreImpl {
	t.Helper()
	store, err := NewRecordStore(schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func sampleRecord(identity, revision string, ts time.Time) *schema.AnalysisRecord {
	profile := schema.RepositoryProfile{
		Memory:        schema.MemoryAggregate{BaseMB: 120, PeakMB: 300, ScalingFactor: 2.5},
		CPU:           schema.CPUAggregate{EstimatedCores: 2, Complexity: schema.ComplexityQuadratic, Parallelization: schema.ParallelHigh},
		Bandwidth:     schema.BandwidthAggregate{CallsPerExecution: 4, DataTransferMB: 1.5, BandwidthMbps: 3, TransferType: schema.TransferStreaming},
		Sources:       schema.SourceCounts{Heuristic: 2},
		FilesAnalyzed: 2,
	}
	recs := schema.RecommendationSet{
		Memory: schema.MemoryRecommendation{MinAllocation: "120MB", RecommendedAllocation: "300MB", ScalingStrategy: "vertical"},
		CPU:    schema.CPURecommendation{MinCores: 2, RecommendedCores: 3, CoreScaling: "horizontal"},
	}
	profile.Recommendations = recs
	return &schema.AnalysisRecord{
		RunID:              "run-" + revision,
		RepositoryIdentity: identity,
		RevisionID:         revision,
		Timestamp:          ts,
		FileTree:           map[string][]string{"/": {"main.py"}, "pkg": {"util.py"}},
		Profile:            profile,
		Recommendations:    recs,
	}
}

func TestRecordStore_StoreAndLatest(t *testing.T) {
	ctx := context.Background()
	store := newMemoryRecordStore(t)

	latest, err := store.Latest(ctx, "repo-a")
	require.NoError(t, err)
	assert.Nil(t, latest, "no record should exist yet")

	ts := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	first := sampleRecord("repo-a", "rev1", ts)
	id1, err := store.Store(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, id1, first.ID)

	second := sampleRecord("repo-a", "rev2", ts.Add(time.Hour))
	id2, err := store.Store(ctx, second)
	require.NoError(t, err)
	assert.Greater(t, id2, id1)

	_, err = store.Store(ctx, sampleRecord("repo-b", "other", ts))
	require.NoError(t, err)

	latest, err = store.Latest(ctx, "repo-a")
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, "rev2", latest.RevisionID)
	assert.Equal(t, "run-rev2", latest.RunID)
	assert.True(t, ts.Add(time.Hour).Equal(latest.Timestamp))
	assert.Equal(t, []string{"main.py", "pkg/util.py"}, latest.FilePaths())
	assert.Equal(t, second.Profile.Memory, latest.Profile.Memory)
	assert.Equal(t, schema.ComplexityQuadratic, latest.Profile.CPU.Complexity)
	assert.Equal(t, schema.TransferStreaming, latest.Profile.Bandwidth.TransferType)
	assert.Equal(t, second.Recommendations, latest.Recommendations)
}

func TestRecordStore_ListRecords(t *testing.T) {
	ctx := context.Background()
	store := newMemoryRecordStore(t)
	ts := time.Now().UTC()

	for _, rec := range []*schema.AnalysisRecord{
		sampleRecord("repo-a", "r1", ts),
		sampleRecord("repo-b", "r1", ts),
		sampleRecord("repo-a", "r2", ts),
	} {
		_, err := store.Store(ctx, rec)
		require.NoError(t, err)
	}

	all, err := store.ListRecords(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	onlyA, err := store.ListRecords(ctx, "repo-a")
	require.NoError(t, err)
	require.Len(t, onlyA, 2)
	assert.Equal(t, "r1", onlyA[0].RevisionID, "records are returned oldest first")
	assert.Equal(t, "r2", onlyA[1].RevisionID)
}

func TestRecordStore_ChangeLogs(t *testing.T) {
	ctx := context.Background()
	store := newMemoryRecordStore(t)
	ts := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	for i, rev := range []string{"r2", "r3", "r4"} {
		require.NoError(t, store.AppendChangeLog(ctx, schema.ChangeLogEntry{
			RepositoryIdentity: "repo-a",
			RevisionID:         rev,
			PreviousRevision:   "r1",
			Timestamp:          ts.Add(time.Duration(i) * time.Minute),
			Changes:            []string{"Git revision changed", "New files added: x.py"},
		}))
	}
	require.NoError(t, store.AppendChangeLog(ctx, schema.ChangeLogEntry{
		RepositoryIdentity: "repo-b", RevisionID: "b1", Timestamp: ts, Changes: []string{"Memory usage increased by 50.00%"},
	}))

	entries, err := store.ListChangeLogs(ctx, "repo-a", 0)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "r4", entries[0].RevisionID, "entries are returned newest first")
	assert.Equal(t, []string{"Git revision changed", "New files added: x.py"}, entries[0].Changes)
	assert.True(t, ts.Add(2*time.Minute).Equal(entries[0].Timestamp))

	limited, err := store.ListChangeLogs(ctx, "repo-a", 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)

	all, err := store.ListChangeLogs(ctx, "", 0)
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestRecordStore_StatusAndClear(t *testing.T) {
	ctx := context.Background()
	store := newMemoryRecordStore(t)

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.True(t, status.Connected)
	assert.Zero(t, status.TotalRecords)

	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	_, err = store.Store(ctx, sampleRecord("repo-a", "r1", ts))
	require.NoError(t, err)
	id, err := store.Store(ctx, sampleRecord("repo-b", "r1", ts.Add(time.Hour)))
	require.NoError(t, err)
	require.NoError(t, store.AppendChangeLog(ctx, schema.ChangeLogEntry{RepositoryIdentity: "repo-a", RevisionID: "r1", Timestamp: ts, Changes: []string{"x"}}))

	status, err = store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, 2, status.TotalRecords)
	assert.Equal(t, 2, status.Repositories)
	assert.Equal(t, 1, status.TotalChangeLogs)
	assert.Equal(t, id, status.LastRecordID)
	assert.True(t, ts.Add(time.Hour).Equal(status.LastRecordTime))
	assert.True(t, ts.Equal(status.OldestRecord))
	assert.Equal(t, int64(2), status.TableSizes[recordsTable])

	var buf bytes.Buffer
	PrintHistoryStatus(&buf, status)
	assert.Contains(t, buf.String(), "Total Records: 2")
	assert.Contains(t, buf.String(), recordsTable+": 2 rows")

	require.NoError(t, store.Clear(ctx))
	status, err = store.GetStatus()
	require.NoError(t, err)
	assert.Zero(t, status.TotalRecords)
	assert.Zero(t, status.TotalChangeLogs)
}

func TestRecordStore_NoneBackend(t *testing.T) {
	ctx := context.Background()
	store, err := NewRecordStore(schema.NoneBackend, "")
	require.NoError(t, err)

	id, err := store.Store(ctx, sampleRecord("repo", "r", time.Now()))
	require.NoError(t, err)
	assert.Zero(t, id)

	latest, err := store.Latest(ctx, "repo")
	require.NoError(t, err)
	assert.Nil(t, latest)

	assert.NoError(t, store.AppendChangeLog(ctx, schema.ChangeLogEntry{}))
	entries, err := store.ListChangeLogs(ctx, "repo", 0)
	require.NoError(t, err)
	assert.Empty(t, entries)

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.False(t, status.Connected)
	assert.NoError(t, store.Clear(ctx))
	assert.NoError(t, store.Close())
}

func TestRecordStore_CreateQueries(t *testing.T) {
	for _, backend := range []schema.DatabaseBackend{schema.SQLiteBackend, schema.MySQLBackend, schema.PostgreSQLBackend} {
		t.Run(string(backend), func(t *testing.T) {
			assert.Contains(t, getCreateRecordsQuery(backend), recordsTable)
			assert.Contains(t, getCreateChangeLogsQuery(backend), changeLogsTable)
		})
	}
	assert.Contains(t, getCreateRecordsQuery(schema.MySQLBackend), "AUTO_INCREMENT")
	assert.Contains(t, getCreateRecordsQuery(schema.PostgreSQLBackend), "BIGSERIAL")
	assert.Contains(t, getCreateRecordsQuery(schema.SQLiteBackend), "AUTOINCREMENT")
}
