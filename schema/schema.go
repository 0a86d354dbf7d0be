// Package schema has the models shared by every part of footprint.
package schema

import (
	"errors"
	"fmt"
)

// StaticMetrics is the lightweight fact set extracted from one file's text.
// It is built once and never mutated.
type StaticMetrics struct {
	LinesOfCode  int      `json:"lines_of_code"`
	Libraries    []string `json:"libraries"` // sorted, deduplicated top-level names
	LoopDepth    int      `json:"loop_depth"`
	HasRecursion bool     `json:"has_recursion"`
	Language     string   `json:"language,omitempty"`
	Degraded     bool     `json:"degraded,omitempty"` // structural parse was impossible
}

// HasLibrary reports whether the library was imported.
func (m StaticMetrics) HasLibrary(name string) bool {
	for _, lib := range m.Libraries {
		if lib == name {
			return true
		}
	}
	return false
}

// MemoryEstimate describes memory needs in megabytes.
type MemoryEstimate struct {
	BaseMB        float64 `json:"base_mb"`
	PeakMB        float64 `json:"peak_mb"`
	ScalingFactor float64 `json:"scaling_factor"`
	Notes         string  `json:"notes"`
}

// CPUEstimate describes compute needs.
type CPUEstimate struct {
	EstimatedCores  float64         `json:"estimated_cores"`
	Complexity      Complexity      `json:"complexity"`
	Parallelization Parallelization `json:"parallelization_potential"`
	Notes           string          `json:"notes"`
}

// BandwidthEstimate describes network needs.
type BandwidthEstimate struct {
	CallsPerExecution int          `json:"network_calls_per_execution"`
	DataTransferMB    float64      `json:"data_transfer_mb"`
	BandwidthMbps     float64      `json:"bandwidth_mbps"`
	TransferType      TransferType `json:"transfer_type"`
	Libraries         []string     `json:"network_libraries,omitempty"` // network libraries the file imports
	Notes             string       `json:"notes"`
}

// ResourceEstimate is one file's predicted footprint plus its provenance.
type ResourceEstimate struct {
	Memory     MemoryEstimate    `json:"memory"`
	CPU        CPUEstimate       `json:"cpu"`
	Bandwidth  BandwidthEstimate `json:"bandwidth"`
	Provenance Provenance        `json:"provenance"`
}

// Bounds are the configured minimums every accepted estimate must respect.
type Bounds struct {
	MemoryFloorMB      float64 // base and peak memory must exceed this
	MinCores           float64 // 0.5 unless configured otherwise
	BandwidthFloorMbps float64
}

// DefaultBounds returns the bounds used when nothing is configured.
func DefaultBounds() Bounds {
	return Bounds{
		MemoryFloorMB:      1.0,
		MinCores:           0.5,
		BandwidthFloorMbps: 0.1,
	}
}

// Estimate validation failures.
var (
	ErrMemoryBelowFloor    = errors.New("memory below floor")
	ErrPeakBelowBase       = errors.New("peak memory below base memory")
	ErrScalingBelowOne     = errors.New("scaling factor below 1.0")
	ErrCoresBelowMinimum   = errors.New("estimated cores below minimum")
	ErrBandwidthBelowFloor = errors.New("bandwidth below floor")
	ErrUnknownEnum         = errors.New("unknown enumeration value")
)

// Validate checks the invariants of an accepted estimate against bounds.
func (e ResourceEstimate) Validate(b Bounds) error {
	if e.Memory.BaseMB < b.MemoryFloorMB || e.Memory.PeakMB < b.MemoryFloorMB {
		return fmt.Errorf("%w: base=%.2f peak=%.2f floor=%.2f", ErrMemoryBelowFloor, e.Memory.BaseMB, e.Memory.PeakMB, b.MemoryFloorMB)
	}
	if e.Memory.PeakMB < e.Memory.BaseMB {
		return fmt.Errorf("%w: base=%.2f peak=%.2f", ErrPeakBelowBase, e.Memory.BaseMB, e.Memory.PeakMB)
	}
	if e.Memory.ScalingFactor < 1.0 {
		return fmt.Errorf("%w: %.2f", ErrScalingBelowOne, e.Memory.ScalingFactor)
	}
	if e.CPU.EstimatedCores < b.MinCores {
		return fmt.Errorf("%w: %.2f < %.2f", ErrCoresBelowMinimum, e.CPU.EstimatedCores, b.MinCores)
	}
	if e.Bandwidth.BandwidthMbps < 0 || e.Bandwidth.BandwidthMbps < b.BandwidthFloorMbps {
		return fmt.Errorf("%w: %.3f < %.3f", ErrBandwidthBelowFloor, e.Bandwidth.BandwidthMbps, b.BandwidthFloorMbps)
	}
	if !e.CPU.Complexity.Valid() || !e.CPU.Parallelization.Valid() || !e.Bandwidth.TransferType.Valid() {
		return ErrUnknownEnum
	}
	return nil
}

// DefaultEstimate is the fixed conservative estimate used when a file cannot be read.
func DefaultEstimate(b Bounds) ResourceEstimate {
	base := max(50.0, b.MemoryFloorMB)
	return ResourceEstimate{
		Memory: MemoryEstimate{
			BaseMB:        base,
			PeakMB:        base,
			ScalingFactor: 1.0,
			Notes:         "Default estimate: file could not be read",
		},
		CPU: CPUEstimate{
			EstimatedCores:  max(1.0, b.MinCores),
			Complexity:      ComplexityLinear,
			Parallelization: ParallelLow,
			Notes:           "Default estimate: file could not be read",
		},
		Bandwidth: BandwidthEstimate{
			BandwidthMbps: b.BandwidthFloorMbps,
			TransferType:  TransferBulk,
			Notes:         "Default estimate: file could not be read",
		},
		Provenance: HeuristicProvenance,
	}
}

// FileEstimate pairs a repository-relative path with its estimate.
type FileEstimate struct {
	Path     string           `json:"path"`
	Estimate ResourceEstimate `json:"estimate"`
}

// RepositoryContext is what the repository collaborator supplies for one run.
type RepositoryContext struct {
	Root      string              `json:"root"`
	Identity  string              `json:"identity"`
	Revision  string              `json:"revision"`
	Structure map[string][]string `json:"structure"` // directory -> eligible file names, root is "/"
}
