package remote

import (
	"testing"

	"github.com/huangsam/footprint/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validResponse = `{
  "memory": {"base_mb": 120, "peak_mb": 300, "scaling_factor": 1.5, "notes": "pandas frames"},
  "cpu": {"estimated_cores": 2.0, "complexity": "O(n log n)", "parallelization_potential": "Medium", "notes": "sorting"},
  "bandwidth": {"network_calls_per_execution": 3, "data_transfer_mb": 1.5, "bandwidth_mbps": 1.2, "transfer_type": "bulk", "notes": "api"}
}`

func TestParseResponse(t *testing.T) {
	est, err := ParseResponse(validResponse)
	require.NoError(t, err)

	assert.Equal(t, schema.RemoteProvenance, est.Provenance)
	assert.InDelta(t, 120.0, est.Memory.BaseMB, 1e-9)
	assert.InDelta(t, 300.0, est.Memory.PeakMB, 1e-9)
	assert.Equal(t, schema.ComplexityLinearithmic, est.CPU.Complexity)
	assert.Equal(t, schema.ParallelMedium, est.CPU.Parallelization)
	assert.Equal(t, 3, est.Bandwidth.CallsPerExecution)
	assert.Equal(t, schema.TransferBulk, est.Bandwidth.TransferType)
	assert.Equal(t, "sorting", est.CPU.Notes)
}

func TestParseResponseStripsFences(t *testing.T) {
	est, err := ParseResponse("```json\n" + validResponse + "\n```")
	require.NoError(t, err)
	assert.InDelta(t, 2.0, est.CPU.EstimatedCores, 1e-9)

	est, err = ParseResponse("Here is the estimate:\n" + validResponse + "\nHope this helps.")
	require.NoError(t, err)
	assert.InDelta(t, 1.2, est.Bandwidth.BandwidthMbps, 1e-9)
}

func TestParseResponseRejectsInvalidDocuments(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"prose only", "I cannot estimate this file."},
		{"truncated json", `{"memory": {"base_mb": 1`},
		{"missing section", `{"memory": {"base_mb": 1, "peak_mb": 2, "scaling_factor": 1}, "cpu": {"estimated_cores": 1, "complexity": "O(n)", "parallelization_potential": "low"}}`},
		{"missing numeric field", `{"memory": {"peak_mb": 2, "scaling_factor": 1}, "cpu": {"estimated_cores": 1, "complexity": "O(n)", "parallelization_potential": "low"}, "bandwidth": {"network_calls_per_execution": 0, "data_transfer_mb": 0, "bandwidth_mbps": 0, "transfer_type": "bulk"}}`},
		{"wrong type", `{"memory": {"base_mb": "lots", "peak_mb": 2, "scaling_factor": 1}, "cpu": {"estimated_cores": 1, "complexity": "O(n)", "parallelization_potential": "low"}, "bandwidth": {"network_calls_per_execution": 0, "data_transfer_mb": 0, "bandwidth_mbps": 0, "transfer_type": "bulk"}}`},
		{"unknown complexity", `{"memory": {"base_mb": 1, "peak_mb": 2, "scaling_factor": 1}, "cpu": {"estimated_cores": 1, "complexity": "O(2^n)", "parallelization_potential": "low"}, "bandwidth": {"network_calls_per_execution": 0, "data_transfer_mb": 0, "bandwidth_mbps": 0, "transfer_type": "bulk"}}`},
		{"unknown transfer", `{"memory": {"base_mb": 1, "peak_mb": 2, "scaling_factor": 1}, "cpu": {"estimated_cores": 1, "complexity": "O(n)", "parallelization_potential": "low"}, "bandwidth": {"network_calls_per_execution": 0, "data_transfer_mb": 0, "bandwidth_mbps": 0, "transfer_type": "carrier pigeon"}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			est, err := ParseResponse(tt.raw)
			var pe *ParseError
			require.ErrorAs(t, err, &pe)
			assert.ErrorIs(t, err, ErrInvalidResponse)
			assert.Equal(t, schema.ResourceEstimate{}, est)
		})
	}
}

func TestClampRaisesOnlyToMinimums(t *testing.T) {
	bounds := schema.DefaultBounds()
	zero := schema.ResourceEstimate{
		Bandwidth: schema.BandwidthEstimate{CallsPerExecution: -2, DataTransferMB: -1},
	}
	clamped := Clamp(zero, bounds)
	assert.InDelta(t, bounds.MemoryFloorMB, clamped.Memory.BaseMB, 1e-9)
	assert.InDelta(t, bounds.MemoryFloorMB, clamped.Memory.PeakMB, 1e-9)
	assert.InDelta(t, 1.0, clamped.Memory.ScalingFactor, 1e-9)
	assert.InDelta(t, 0.5, clamped.CPU.EstimatedCores, 1e-9)
	assert.Zero(t, clamped.Bandwidth.CallsPerExecution)
	assert.Zero(t, clamped.Bandwidth.DataTransferMB)
	assert.InDelta(t, bounds.BandwidthFloorMbps, clamped.Bandwidth.BandwidthMbps, 1e-9)
	assert.NoError(t, clamped.Validate(bounds))

	big, err := ParseResponse(validResponse)
	require.NoError(t, err)
	assert.Equal(t, big, Clamp(big, bounds))
}
