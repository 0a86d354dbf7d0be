package remote

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/huangsam/footprint/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestEstimator(p Provider) *Estimator {
	return NewEstimator(p, Config{
		MaxPromptLines: 50,
		Bounds:         schema.DefaultBounds(),
		Policy:         fastPolicy(3),
		MaxConcurrent:  2,
	})
}

func testRequest() Request {
	return Request{
		Path:      "worker.py",
		Content:   "import pandas\n",
		Structure: map[string][]string{"/": {"worker.py"}},
		Metrics:   schema.StaticMetrics{LinesOfCode: 1, Libraries: []string{"pandas"}},
	}
}

func TestEstimateSuccess(t *testing.T) {
	p := &MockProvider{}
	p.On("Complete", mock.Anything, systemPrompt, mock.Anything).Return(validResponse, nil).Once()

	est, err := newTestEstimator(p).Estimate(context.Background(), testRequest())
	require.NoError(t, err)
	assert.Equal(t, schema.RemoteProvenance, est.Provenance)
	assert.InDelta(t, 120.0, est.Memory.BaseMB, 1e-9)
	p.AssertExpectations(t)
}

func TestEstimateClampsImplausibleZeros(t *testing.T) {
	zeros := `{"memory": {"base_mb": 0, "peak_mb": 0, "scaling_factor": 0}, "cpu": {"estimated_cores": 0, "complexity": "O(n)", "parallelization_potential": "low"}, "bandwidth": {"network_calls_per_execution": 0, "data_transfer_mb": 0, "bandwidth_mbps": 0, "transfer_type": "bulk"}}`
	p := &MockProvider{}
	p.On("Complete", mock.Anything, mock.Anything, mock.Anything).Return(zeros, nil)

	bounds := schema.DefaultBounds()
	est, err := newTestEstimator(p).Estimate(context.Background(), testRequest())
	require.NoError(t, err)
	assert.InDelta(t, bounds.MemoryFloorMB, est.Memory.BaseMB, 1e-9)
	assert.InDelta(t, bounds.MinCores, est.CPU.EstimatedCores, 1e-9)
	assert.InDelta(t, bounds.BandwidthFloorMbps, est.Bandwidth.BandwidthMbps, 1e-9)
	assert.NoError(t, est.Validate(bounds))
}

func TestEstimateRejectsPeakBelowBase(t *testing.T) {
	inverted := `{"memory": {"base_mb": 500, "peak_mb": 100, "scaling_factor": 1}, "cpu": {"estimated_cores": 1, "complexity": "O(n)", "parallelization_potential": "low"}, "bandwidth": {"network_calls_per_execution": 0, "data_transfer_mb": 0, "bandwidth_mbps": 0, "transfer_type": "bulk"}}`
	p := &MockProvider{}
	p.On("Complete", mock.Anything, mock.Anything, mock.Anything).Return(inverted, nil)

	_, err := newTestEstimator(p).Estimate(context.Background(), testRequest())
	assert.ErrorIs(t, err, ErrInvalidResponse)
	assert.ErrorIs(t, err, schema.ErrPeakBelowBase)
}

func TestEstimateRetriesRateLimits(t *testing.T) {
	p := &MockProvider{}
	rateLimited := &ProviderError{Provider: "mock", StatusCode: 429, Err: errors.New("rate limited")}
	p.On("Complete", mock.Anything, mock.Anything, mock.Anything).Return("", rateLimited).Once()
	p.On("Complete", mock.Anything, mock.Anything, mock.Anything).Return(validResponse, nil).Once()

	e := newTestEstimator(p)
	est, err := e.Estimate(context.Background(), testRequest())
	require.NoError(t, err)
	assert.Equal(t, schema.RemoteProvenance, est.Provenance)
	assert.EqualValues(t, 2, e.Calls())
	p.AssertExpectations(t)
}

func TestEstimateDoesNotRetryAuthFailure(t *testing.T) {
	p := &MockProvider{}
	denied := &ProviderError{Provider: "mock", StatusCode: 401, Err: errors.New("invalid x-api-key")}
	p.On("Complete", mock.Anything, mock.Anything, mock.Anything).Return("", denied)

	e := newTestEstimator(p)
	_, err := e.Estimate(context.Background(), testRequest())
	assert.ErrorIs(t, err, ErrPermanent)
	assert.EqualValues(t, 1, e.Calls())
	p.AssertNumberOfCalls(t, "Complete", 1)
}

func TestEstimateDoesNotRetryMalformedResponse(t *testing.T) {
	p := &MockProvider{}
	p.On("Complete", mock.Anything, mock.Anything, mock.Anything).Return("not json at all", nil)

	e := newTestEstimator(p)
	_, err := e.Estimate(context.Background(), testRequest())
	assert.ErrorIs(t, err, ErrInvalidResponse)
	assert.EqualValues(t, 1, e.Calls())
}

func TestEstimateTruncatesPrompt(t *testing.T) {
	p := &MockProvider{}
	long := strings.Repeat("x = 1\n", 200) + "marker_line = 2\n"
	p.On("Complete", mock.Anything, mock.Anything, mock.MatchedBy(func(prompt string) bool {
		return !strings.Contains(prompt, "marker_line")
	})).Return(validResponse, nil).Once()

	req := testRequest()
	req.Content = long
	_, err := newTestEstimator(p).Estimate(context.Background(), req)
	require.NoError(t, err)
	p.AssertExpectations(t)
}

func TestEstimateDisabled(t *testing.T) {
	e := NewEstimator(nil, Config{Bounds: schema.DefaultBounds(), Policy: fastPolicy(1)})
	assert.False(t, e.Enabled())
	assert.Equal(t, "none", e.ProviderName())

	_, err := e.Estimate(context.Background(), testRequest())
	assert.ErrorIs(t, err, ErrDisabled)
	assert.True(t, IsDisabled(err))
}

func TestNewProviderNone(t *testing.T) {
	_, err := NewProvider(context.Background(), ProviderConfig{Name: schema.NoProvider})
	assert.ErrorIs(t, err, ErrDisabled)

	t.Setenv("ANTHROPIC_API_KEY", "")
	_, err = NewProvider(context.Background(), ProviderConfig{Name: schema.AnthropicProvider})
	assert.ErrorIs(t, err, ErrDisabled)

	_, err = NewProvider(context.Background(), ProviderConfig{Name: "carrier-pigeon"})
	assert.Error(t, err)
}

func TestDetectProvider(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "")
	t.Setenv("OLLAMA_HOST", "")
	assert.Equal(t, schema.NoProvider, detectProvider(ProviderConfig{}))
	assert.Equal(t, schema.OllamaProvider, detectProvider(ProviderConfig{OllamaHost: "http://localhost:11434"}))

	t.Setenv("GEMINI_API_KEY", "g")
	assert.Equal(t, schema.GeminiProvider, detectProvider(ProviderConfig{}))

	t.Setenv("ANTHROPIC_API_KEY", "a")
	assert.Equal(t, schema.AnthropicProvider, detectProvider(ProviderConfig{}))
}
