package iocache

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/huangsam/footprint/schema"
)

func TestExecuteHistoryExport(t *testing.T) {
	ctx := context.Background()

	t.Run("requires output file", func(t *testing.T) {
		err := ExecuteHistoryExport(ctx, &bytes.Buffer{}, &MockRecordStore{}, "", "")
		assert.Error(t, err)
	})

	t.Run("requires store", func(t *testing.T) {
		err := ExecuteHistoryExport(ctx, &bytes.Buffer{}, nil, "out", "")
		assert.Error(t, err)
	})

	t.Run("empty history", func(t *testing.T) {
		store := &MockRecordStore{}
		store.On("GetStatus").Return(schema.HistoryStatus{Backend: "sqlite", Connected: true}, nil)
		err := ExecuteHistoryExport(ctx, &bytes.Buffer{}, store, "out", "")
		assert.ErrorContains(t, err, "no analysis history")
		store.AssertExpectations(t)
	})

	t.Run("list failure", func(t *testing.T) {
		store := &MockRecordStore{}
		store.On("GetStatus").Return(schema.HistoryStatus{Backend: "sqlite", TotalRecords: 1}, nil)
		store.On("ListRecords", mock.Anything, "repo").Return(nil, errors.New("boom"))
		err := ExecuteHistoryExport(ctx, &bytes.Buffer{}, store, "out", "repo")
		assert.ErrorContains(t, err, "boom")
	})

	t.Run("writes three files", func(t *testing.T) {
		ts := time.Date(2024, 2, 2, 0, 0, 0, 0, time.UTC)
		rec := *sampleRecord("repo", "r1", ts)
		rec.ID = 7
		rec.Profile.Components = []schema.FileEstimate{
			{Path: "main.py", Estimate: schema.DefaultEstimate(schema.DefaultBounds())},
		}

		store := &MockRecordStore{}
		store.On("GetStatus").Return(schema.HistoryStatus{Backend: "sqlite", TotalRecords: 1}, nil)
		store.On("ListRecords", mock.Anything, "").Return([]schema.AnalysisRecord{rec}, nil)
		store.On("ListChangeLogs", mock.Anything, "", 0).Return([]schema.ChangeLogEntry{
			{ID: 1, RepositoryIdentity: "repo", RevisionID: "r1", Timestamp: ts, Changes: []string{"Git revision changed"}},
		}, nil)

		out := filepath.Join(t.TempDir(), "history")
		var buf bytes.Buffer
		require.NoError(t, ExecuteHistoryExport(ctx, &buf, store, out, ""))
		assert.Contains(t, buf.String(), "Exported 1 analysis records")
		assert.Contains(t, buf.String(), "Exported 1 file components")
		assert.Contains(t, buf.String(), "Exported 1 change log entries")

		for _, suffix := range []string{".records.parquet", ".components.parquet", ".change_logs.parquet"} {
			info, err := os.Stat(out + suffix)
			require.NoError(t, err)
			assert.Positive(t, info.Size())
		}
		store.AssertExpectations(t)
	})
}
