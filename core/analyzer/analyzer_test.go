package analyzer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/huangsam/footprint/core/heuristic"
	"github.com/huangsam/footprint/core/remote"
	"github.com/huangsam/footprint/schema"
)

const remoteResponse = `{
  "memory": {"base_mb": 200, "peak_mb": 800, "scaling_factor": 4, "notes": "frames"},
  "cpu": {"estimated_cores": 2, "complexity": "O(n^2)", "parallelization_potential": "high", "notes": "nested"},
  "bandwidth": {"network_calls_per_execution": 2, "data_transfer_mb": 3, "bandwidth_mbps": 5, "transfer_type": "streaming", "notes": "ws"}
}`

const pythonSource = `import pandas as pd
import requests

def load(urls):
    for u in urls:
        for part in u.split("/"):
            requests.get(part)
    return pd.DataFrame()
`

type mockRemote struct {
	mock.Mock
}

func (m *mockRemote) Enabled() bool {
	return m.Called().Bool(0)
}

func (m *mockRemote) Estimate(ctx context.Context, req remote.Request) (schema.ResourceEstimate, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(schema.ResourceEstimate), args.Error(1)
}

func newHeuristic(t *testing.T) *heuristic.Estimator {
	t.Helper()
	table, err := heuristic.DefaultTable()
	require.NoError(t, err)
	est, err := heuristic.New(table, heuristic.Settings{MinBaseMB: 10, Bounds: schema.DefaultBounds()})
	require.NoError(t, err)
	return est
}

func newRemote(p remote.Provider) *remote.Estimator {
	return remote.NewEstimator(p, remote.Config{
		MaxPromptLines: 100,
		Bounds:         schema.DefaultBounds(),
		Policy: remote.RetryPolicy{
			MaxAttempts:    2,
			InitialBackoff: time.Millisecond,
			MaxBackoff:     2 * time.Millisecond,
			Multiplier:     2,
			Retryable:      remote.IsRetryable,
		},
	})
}

func testRepo() schema.RepositoryContext {
	return schema.RepositoryContext{
		Identity:  "repo",
		Structure: map[string][]string{"/": {"load.py"}},
	}
}

func TestAnalyzeContent_RemoteSuccess(t *testing.T) {
	p := &remote.MockProvider{}
	p.On("Complete", mock.Anything, mock.Anything, mock.Anything).Return(remoteResponse, nil).Once()

	cache, err := NewMemoryCache(16)
	require.NoError(t, err)
	a := New(newRemote(p), newHeuristic(t), cache, schema.DefaultBounds())

	est := a.AnalyzeContent(context.Background(), "load.py", []byte(pythonSource), testRepo())
	assert.Equal(t, schema.RemoteProvenance, est.Provenance)
	assert.InDelta(t, 200.0, est.Memory.BaseMB, 1e-9)
	assert.Equal(t, schema.ComplexityQuadratic, est.CPU.Complexity)
	assert.Equal(t, schema.TransferStreaming, est.Bandwidth.TransferType)
	assert.Equal(t, []string{"requests"}, est.Bandwidth.Libraries)
	assert.Equal(t, 1, cache.Len())
	p.AssertExpectations(t)
}

func TestAnalyzeContent_CacheHitSkipsEstimators(t *testing.T) {
	p := &remote.MockProvider{}
	p.On("Complete", mock.Anything, mock.Anything, mock.Anything).Return(remoteResponse, nil).Once()

	cache, err := NewMemoryCache(16)
	require.NoError(t, err)
	a := New(newRemote(p), newHeuristic(t), cache, schema.DefaultBounds())

	first := a.AnalyzeContent(context.Background(), "load.py", []byte(pythonSource), testRepo())
	second := a.AnalyzeContent(context.Background(), "copy/load.py", []byte(pythonSource), testRepo())
	assert.Equal(t, first, second, "identical content maps to the same estimate")
	p.AssertNumberOfCalls(t, "Complete", 1)
}

func TestAnalyzeContent_RemoteFailureFallsBack(t *testing.T) {
	p := &remote.MockProvider{}
	p.On("Complete", mock.Anything, mock.Anything, mock.Anything).
		Return("", &remote.ProviderError{Provider: "mock", StatusCode: 503, Err: errors.New("unavailable")})

	h := newHeuristic(t)
	a := New(newRemote(p), h, nil, schema.DefaultBounds())

	est := a.AnalyzeContent(context.Background(), "load.py", []byte(pythonSource), testRepo())
	assert.Equal(t, schema.HeuristicProvenance, est.Provenance)
	assert.NoError(t, est.Validate(schema.DefaultBounds()))
	p.AssertNumberOfCalls(t, "Complete", 2)
}

func TestAnalyzeContent_MalformedResponseFallsBack(t *testing.T) {
	p := &remote.MockProvider{}
	p.On("Complete", mock.Anything, mock.Anything, mock.Anything).Return("I think about 2GB?", nil)

	a := New(newRemote(p), newHeuristic(t), nil, schema.DefaultBounds())
	est := a.AnalyzeContent(context.Background(), "load.py", []byte(pythonSource), testRepo())
	assert.Equal(t, schema.HeuristicProvenance, est.Provenance)
}

func TestAnalyzeContent_RejectsEstimateOutsideBounds(t *testing.T) {
	bounds := schema.Bounds{MemoryFloorMB: 500, MinCores: 0.5, BandwidthFloorMbps: 0.1}
	r := &mockRemote{}
	r.On("Enabled").Return(true)
	r.On("Estimate", mock.Anything, mock.Anything).Return(schema.ResourceEstimate{
		Memory:    schema.MemoryEstimate{BaseMB: 100, PeakMB: 200, ScalingFactor: 2},
		CPU:       schema.CPUEstimate{EstimatedCores: 1, Complexity: schema.ComplexityLinear},
		Bandwidth: schema.BandwidthEstimate{BandwidthMbps: 1},
	}, nil)

	h := &mockHeuristic{est: schema.DefaultEstimate(bounds)}
	a := New(r, h, nil, bounds)

	est := a.AnalyzeContent(context.Background(), "load.py", []byte(pythonSource), testRepo())
	assert.Equal(t, schema.HeuristicProvenance, est.Provenance)
	assert.Equal(t, 1, h.calls)
	r.AssertExpectations(t)
}

func TestAnalyzeContent_DisabledRemoteUsesHeuristic(t *testing.T) {
	a := New(newRemote(nil), newHeuristic(t), nil, schema.DefaultBounds())
	est := a.AnalyzeContent(context.Background(), "load.py", []byte(pythonSource), testRepo())
	assert.Equal(t, schema.HeuristicProvenance, est.Provenance)
	assert.GreaterOrEqual(t, est.Memory.PeakMB, est.Memory.BaseMB)
}

func TestAnalyzeContent_CanceledContextSkipsCacheWrite(t *testing.T) {
	cache, err := NewMemoryCache(16)
	require.NoError(t, err)
	a := New(nil, newHeuristic(t), cache, schema.DefaultBounds())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	est := a.AnalyzeContent(ctx, "load.py", []byte(pythonSource), testRepo())
	assert.Equal(t, schema.HeuristicProvenance, est.Provenance)
	assert.Zero(t, cache.Len())
}

func TestAnalyze_ReadsRelativeToRoot(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "load.py"), []byte(pythonSource), 0o644))
	repo := testRepo()
	repo.Root = root

	h := &mockHeuristic{est: schema.DefaultEstimate(schema.DefaultBounds())}
	a := New(nil, h, nil, schema.DefaultBounds())
	est := a.Analyze(context.Background(), "load.py", repo)
	assert.Equal(t, schema.HeuristicProvenance, est.Provenance)
	assert.Equal(t, pythonSource, h.lastText)
	assert.Equal(t, []string{"pandas", "requests"}, h.lastMetrics.Libraries)
}

func TestAnalyze_UnreadableFileYieldsDefault(t *testing.T) {
	bounds := schema.DefaultBounds()
	h := &mockHeuristic{}
	a := New(nil, h, nil, bounds)

	est := a.Analyze(context.Background(), "missing.py", schema.RepositoryContext{Root: t.TempDir()})
	assert.Equal(t, schema.DefaultEstimate(bounds), est)
	assert.Zero(t, h.calls, "no estimator runs for unreadable files")
}

func TestContentHash(t *testing.T) {
	assert.Equal(t, ContentHash([]byte("abc")), ContentHash([]byte("abc")))
	assert.NotEqual(t, ContentHash([]byte("abc")), ContentHash([]byte("abd")))
	assert.Len(t, ContentHash(nil), 64)
}

func TestDisplayPath(t *testing.T) {
	root := filepath.Join(string(filepath.Separator), "repo")
	assert.Equal(t, "pkg/a.go", displayPath(filepath.Join(root, "pkg", "a.go"), root))
	assert.Equal(t, "pkg/a.go", displayPath("pkg/a.go", root))
	assert.Equal(t, "a.go", displayPath("a.go", ""))
}

type mockHeuristic struct {
	est         schema.ResourceEstimate
	calls       int
	lastText    string
	lastMetrics schema.StaticMetrics
}

func (m *mockHeuristic) Estimate(text string, metrics schema.StaticMetrics) schema.ResourceEstimate {
	m.calls++
	m.lastText = text
	m.lastMetrics = metrics
	return m.est
}

func (m *mockHeuristic) NetworkLibraries(libs []string) []string {
	return nil
}
