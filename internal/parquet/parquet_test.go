package parquet

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huangsam/footprint/schema"
)

// readAll reads every row of a Parquet file written with T.
func readAll[T any](t *testing.T, path string) []T {
	t.Helper()
	file, err := os.Open(path)
	require.NoError(t, err)
	defer func() { _ = file.Close() }()

	reader := parquet.NewGenericReader[T](file)
	defer func() { _ = reader.Close() }()

	rows := make([]T, reader.NumRows())
	n, err := reader.Read(rows)
	if err != nil && err != io.EOF {
		require.NoError(t, err)
	}
	return rows[:n]
}

func sampleRecords() []schema.AnalysisRecord {
	ts := time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)
	return []schema.AnalysisRecord{
		{
			ID:                 7,
			RunID:              "0b6f5c3e-4c43-4b9b-9a0e-2f4c9d1f7a10",
			RepositoryIdentity: "https://example.com/acme/app.git",
			RevisionID:         "abc123",
			Timestamp:          ts,
			Profile: schema.RepositoryProfile{
				Memory:        schema.MemoryAggregate{BaseMB: 60, PeakMB: 110, ScalingFactor: 2},
				CPU:           schema.CPUAggregate{EstimatedCores: 2.5, Complexity: schema.ComplexityQuadratic, Parallelization: schema.ParallelMedium},
				Bandwidth:     schema.BandwidthAggregate{CallsPerExecution: 3, DataTransferMB: 0.7, BandwidthMbps: 0.56, TransferType: schema.TransferBulk},
				Sources:       schema.SourceCounts{Remote: 1, Heuristic: 1},
				FilesAnalyzed: 2,
				Components: []schema.FileEstimate{
					{Path: "app.py", Estimate: schema.ResourceEstimate{
						Memory:     schema.MemoryEstimate{BaseMB: 50, PeakMB: 100, ScalingFactor: 2},
						CPU:        schema.CPUEstimate{EstimatedCores: 2.5, Complexity: schema.ComplexityQuadratic},
						Bandwidth:  schema.BandwidthEstimate{BandwidthMbps: 0.1},
						Provenance: schema.HeuristicProvenance,
					}},
					{Path: "client.py", Estimate: schema.ResourceEstimate{
						Memory:     schema.MemoryEstimate{BaseMB: 10, PeakMB: 10, ScalingFactor: 1},
						CPU:        schema.CPUEstimate{EstimatedCores: 1},
						Bandwidth:  schema.BandwidthEstimate{BandwidthMbps: 0.46},
						Provenance: schema.RemoteProvenance,
					}},
				},
			},
			Recommendations: schema.RecommendationSet{
				Memory:    schema.MemoryRecommendation{RecommendedAllocation: "256MB"},
				CPU:       schema.CPURecommendation{RecommendedCores: 2},
				Bandwidth: schema.BandwidthRecommendation{PeakRequirement: "0.6Mbps"},
				Scaling:   schema.ScalingRecommendation{PriorityDimension: schema.ScaleMemory},
			},
		},
	}
}

func TestSchemaColumns(t *testing.T) {
	tests := []struct {
		name    string
		schema  *parquet.Schema
		columns []string
	}{
		{"records", parquet.SchemaOf(new(AnalysisRecord)), []string{"record_id", "run_id", "repository_identity", "recorded_at", "memory_base_mb", "estimated_cores", "complexity", "recommended_allocation", "priority_dimension"}},
		{"components", parquet.SchemaOf(new(Component)), []string{"record_id", "file_path", "provenance"}},
		{"change logs", parquet.SchemaOf(new(ChangeLog)), []string{"entry_id", "previous_revision", "changes"}},
	}
	_, ok := parquet.SchemaOf(new(ChangeLog)).Lookup("changes", "list", "element")
	assert.True(t, ok, "changes is a list of strings")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			names := make([]string, 0, len(tt.schema.Fields()))
			for _, f := range tt.schema.Fields() {
				names = append(names, f.Name())
			}
			for _, col := range tt.columns {
				assert.Contains(t, names, col, "column %s should exist", col)
			}
		})
	}
}

func TestWriteAnalysisRecordsParquet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.parquet")
	rows := ConvertAnalysisRecords(sampleRecords())
	require.NoError(t, WriteAnalysisRecordsParquet(rows, path))

	got := readAll[AnalysisRecord](t, path)
	require.Len(t, got, 1)
	assert.Equal(t, int64(7), got[0].RecordID)
	assert.Equal(t, "O(n^2)", got[0].Complexity)
	assert.Equal(t, "medium", got[0].Parallelization)
	assert.Equal(t, "bulk", got[0].TransferType)
	assert.Equal(t, int32(1), got[0].RemoteFiles)
	assert.Equal(t, "256MB", got[0].RecommendedAllocation)
	assert.Equal(t, "memory", got[0].PriorityDimension)
	assert.WithinDuration(t, rows[0].RecordedAt, got[0].RecordedAt, time.Nanosecond)
}

func TestWriteComponentsParquet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "components.parquet")
	rows := ConvertComponents(sampleRecords())
	require.Len(t, rows, 2)
	require.NoError(t, WriteComponentsParquet(rows, path))

	got := readAll[Component](t, path)
	require.Len(t, got, 2)
	assert.Equal(t, "app.py", got[0].FilePath)
	assert.Equal(t, "heuristic", got[0].Provenance)
	assert.Equal(t, "remote", got[1].Provenance)
}

func TestWriteChangeLogsParquet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "changes.parquet")
	entries := []schema.ChangeLogEntry{
		{ID: 1, RepositoryIdentity: "repo", RevisionID: "b", PreviousRevision: "a", Timestamp: time.Now(), Changes: []string{"New files: x.py"}},
		{ID: 2, RepositoryIdentity: "repo", RevisionID: "c", Timestamp: time.Now(), Changes: []string{"CPU cores: 1.0 -> 2.0", "Memory changed by 25.0%"}},
	}
	rows := ConvertChangeLogs(entries)
	require.NotNil(t, rows[0].PreviousRevision)
	assert.Nil(t, rows[1].PreviousRevision)
	require.NoError(t, WriteChangeLogsParquet(rows, path))

	got := readAll[ChangeLog](t, path)
	require.Len(t, got, 2)
	require.NotNil(t, got[0].PreviousRevision)
	assert.Equal(t, "a", *got[0].PreviousRevision)
	assert.Nil(t, got[1].PreviousRevision)
	assert.Equal(t, entries[1].Changes, got[1].Changes)
}

func TestWriteParquet_EmptyAndInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.parquet")
	require.NoError(t, WriteChangeLogsParquet(nil, path))
	assert.Empty(t, readAll[ChangeLog](t, path))

	err := WriteAnalysisRecordsParquet(nil, filepath.Join(t.TempDir(), "missing", "out.parquet"))
	assert.Error(t, err)
}
