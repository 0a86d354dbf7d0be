package core

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/huangsam/footprint/schema"
)

// Unit suffixes of the recommendation strings.
const (
	unitMB   = "MB"
	unitMbps = "Mbps"
	unitKbps = "Kbps"
)

// Scaling strategies and triggers.
const (
	StrategyStatic      = "Static"
	StrategyLinear      = "Linear scaling with data size"
	StrategyExponential = "Exponential scaling with data size"

	CoreScalingFixed    = "Fixed allocation"
	CoreScalingWorkload = "Scale with workload"

	TriggerDataSize    = "Data size"
	TriggerComputation = "Computation complexity"
	TriggerRequests    = "Request volume"
	TriggerNone        = "None required"
)

// RecommendConfig holds the floors and thresholds of the recommendation rules.
type RecommendConfig struct {
	FloorMB                float64 // recommended allocation never goes below this
	MinAllocationMB        float64 // min allocation never goes below this
	PerCallKbps            float64 // baseline bandwidth per network call
	LinearScalingAt        float64 // scaling factor where linear scaling starts
	ExponentialScalingAt   float64 // scaling factor where exponential scaling starts
	MemoryScalingThreshold float64 // scaling factor above which memory is the priority
	CoresThreshold         float64 // cores above which cpu is the priority
}

// DefaultRecommendConfig returns the standard recommendation rules.
func DefaultRecommendConfig() RecommendConfig {
	return RecommendConfig{
		FloorMB:                256,
		MinAllocationMB:        128,
		PerCallKbps:            10,
		LinearScalingAt:        1.2,
		ExponentialScalingAt:   1.8,
		MemoryScalingThreshold: 1.5,
		CoresThreshold:         1.0,
	}
}

// Recommend derives deployment sizing from a profile. It is a pure function
// of its inputs.
func Recommend(p schema.RepositoryProfile, cfg RecommendConfig) schema.RecommendationSet {
	var rec schema.RecommendationSet

	// 1. Memory
	rec.Memory.MinAllocation = FormatMB(max(cfg.MinAllocationMB, p.Memory.BaseMB))
	rec.Memory.RecommendedAllocation = FormatMB(max(cfg.FloorMB, p.Memory.BaseMB+p.Memory.PeakMB))
	switch sf := p.Memory.ScalingFactor; {
	case sf < cfg.LinearScalingAt:
		rec.Memory.ScalingStrategy = StrategyStatic
	case sf < cfg.ExponentialScalingAt:
		rec.Memory.ScalingStrategy = StrategyLinear
	default:
		rec.Memory.ScalingStrategy = StrategyExponential
	}

	// 2. CPU
	cpuBound := p.CPU.EstimatedCores > cfg.CoresThreshold
	rec.CPU.MinCores = 1
	rec.CPU.RecommendedCores = max(1, int(math.Round(p.CPU.EstimatedCores)))
	rec.CPU.CoreScaling = CoreScalingFixed
	if cpuBound {
		rec.CPU.CoreScaling = CoreScalingWorkload
	}

	// 3. Bandwidth
	rec.Bandwidth.BaselineRequirement = FormatKbps(float64(p.Bandwidth.CallsPerExecution) * cfg.PerCallKbps)
	rec.Bandwidth.PeakRequirement = FormatMbps(p.Bandwidth.BandwidthMbps)

	// 4. Single dominant scaling dimension by fixed precedence
	switch {
	case p.Memory.ScalingFactor > cfg.MemoryScalingThreshold:
		rec.Scaling = schema.ScalingRecommendation{PriorityDimension: schema.ScaleMemory, ScalingTrigger: TriggerDataSize}
	case cpuBound:
		rec.Scaling = schema.ScalingRecommendation{PriorityDimension: schema.ScaleCPU, ScalingTrigger: TriggerComputation}
	case p.Bandwidth.TransferType == schema.TransferStreaming:
		rec.Scaling = schema.ScalingRecommendation{PriorityDimension: schema.ScaleBandwidth, ScalingTrigger: TriggerRequests}
	default:
		rec.Scaling = schema.ScalingRecommendation{PriorityDimension: schema.ScaleNone, ScalingTrigger: TriggerNone}
	}
	return rec
}

// FormatMB renders megabytes rounded up to a whole number, e.g. "300MB".
func FormatMB(mb float64) string {
	return strconv.FormatFloat(math.Ceil(mb), 'f', 0, 64) + unitMB
}

// FormatMbps renders a bandwidth with one decimal, e.g. "2.5Mbps".
func FormatMbps(mbps float64) string {
	return strconv.FormatFloat(mbps, 'f', 1, 64) + unitMbps
}

// FormatKbps renders a bandwidth in whole kilobits, e.g. "40Kbps".
func FormatKbps(kbps float64) string {
	return strconv.FormatFloat(math.Round(kbps), 'f', 0, 64) + unitKbps
}

// ParseMB parses a value written by FormatMB.
func ParseMB(s string) (float64, error) {
	return parseUnit(s, unitMB)
}

// ParseMbps parses a value written by FormatMbps.
func ParseMbps(s string) (float64, error) {
	return parseUnit(s, unitMbps)
}

func parseUnit(s, unit string) (float64, error) {
	num, ok := strings.CutSuffix(strings.TrimSpace(s), unit)
	if !ok {
		return 0, fmt.Errorf("value %q lacks unit %s", s, unit)
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(num), 64)
	if err != nil {
		return 0, fmt.Errorf("value %q is not a number: %w", s, err)
	}
	if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("value %q is out of range", s)
	}
	return v, nil
}
