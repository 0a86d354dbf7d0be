package remote

import (
	_ "embed"
	"encoding/json"
	"errors"
	"strings"

	"github.com/huangsam/footprint/schema"
	"github.com/xeipuuv/gojsonschema"
)

//go:embed response_schema.json
var responseSchemaJSON []byte

var responseSchema = mustCompileSchema(responseSchemaJSON)

func mustCompileSchema(data []byte) *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(data))
	if err != nil {
		panic("remote: invalid response schema: " + err.Error())
	}
	return s
}

type wireEstimate struct {
	Memory struct {
		BaseMB        float64 `json:"base_mb"`
		PeakMB        float64 `json:"peak_mb"`
		ScalingFactor float64 `json:"scaling_factor"`
		Notes         string  `json:"notes"`
	} `json:"memory"`
	CPU struct {
		EstimatedCores  float64 `json:"estimated_cores"`
		Complexity      string  `json:"complexity"`
		Parallelization string  `json:"parallelization_potential"`
		Notes           string  `json:"notes"`
	} `json:"cpu"`
	Bandwidth struct {
		Calls          float64 `json:"network_calls_per_execution"`
		DataTransferMB float64 `json:"data_transfer_mb"`
		BandwidthMbps  float64 `json:"bandwidth_mbps"`
		TransferType   string  `json:"transfer_type"`
		Notes          string  `json:"notes"`
	} `json:"bandwidth"`
}

// ParseResponse turns a raw service response into a fully typed estimate or a
// *ParseError. It never returns a partially populated estimate.
func ParseResponse(raw string) (schema.ResourceEstimate, error) {
	doc := extractJSON(raw)
	if doc == "" {
		return schema.ResourceEstimate{}, &ParseError{Reason: "no JSON object in response", Raw: raw}
	}

	result, err := responseSchema.Validate(gojsonschema.NewStringLoader(doc))
	if err != nil {
		return schema.ResourceEstimate{}, &ParseError{Reason: "malformed JSON", Raw: raw, Err: err}
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, re := range result.Errors() {
			msgs = append(msgs, re.String())
		}
		return schema.ResourceEstimate{}, &ParseError{
			Reason: "response does not match schema",
			Raw:    raw,
			Err:    errors.New(strings.Join(msgs, "; ")),
		}
	}

	var w wireEstimate
	if err := json.Unmarshal([]byte(doc), &w); err != nil {
		return schema.ResourceEstimate{}, &ParseError{Reason: "decoding estimate", Raw: raw, Err: err}
	}

	complexity, err := schema.ParseComplexity(w.CPU.Complexity)
	if err != nil {
		return schema.ResourceEstimate{}, &ParseError{Reason: "cpu.complexity", Raw: raw, Err: err}
	}
	parallel, err := schema.ParseParallelization(w.CPU.Parallelization)
	if err != nil {
		return schema.ResourceEstimate{}, &ParseError{Reason: "cpu.parallelization_potential", Raw: raw, Err: err}
	}
	transfer, err := schema.ParseTransferType(w.Bandwidth.TransferType)
	if err != nil {
		return schema.ResourceEstimate{}, &ParseError{Reason: "bandwidth.transfer_type", Raw: raw, Err: err}
	}

	return schema.ResourceEstimate{
		Memory: schema.MemoryEstimate{
			BaseMB:        w.Memory.BaseMB,
			PeakMB:        w.Memory.PeakMB,
			ScalingFactor: w.Memory.ScalingFactor,
			Notes:         w.Memory.Notes,
		},
		CPU: schema.CPUEstimate{
			EstimatedCores:  w.CPU.EstimatedCores,
			Complexity:      complexity,
			Parallelization: parallel,
			Notes:           w.CPU.Notes,
		},
		Bandwidth: schema.BandwidthEstimate{
			CallsPerExecution: int(w.Bandwidth.Calls),
			DataTransferMB:    w.Bandwidth.DataTransferMB,
			BandwidthMbps:     w.Bandwidth.BandwidthMbps,
			TransferType:      transfer,
			Notes:             w.Bandwidth.Notes,
		},
		Provenance: schema.RemoteProvenance,
	}, nil
}

// extractJSON strips markdown code fences and surrounding prose.
func extractJSON(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		if nl := strings.IndexByte(s, '\n'); nl >= 0 {
			s = s[nl+1:]
		}
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start < 0 || end < start {
		return ""
	}
	return s[start : end+1]
}

// Clamp raises numeric fields to the configured minimums. Values above the
// minimums are left untouched.
func Clamp(est schema.ResourceEstimate, b schema.Bounds) schema.ResourceEstimate {
	est.Memory.BaseMB = max(est.Memory.BaseMB, b.MemoryFloorMB)
	est.Memory.PeakMB = max(est.Memory.PeakMB, b.MemoryFloorMB)
	est.Memory.ScalingFactor = max(est.Memory.ScalingFactor, 1.0)
	est.CPU.EstimatedCores = max(est.CPU.EstimatedCores, b.MinCores)
	est.Bandwidth.CallsPerExecution = max(est.Bandwidth.CallsPerExecution, 0)
	est.Bandwidth.DataTransferMB = max(est.Bandwidth.DataTransferMB, 0)
	est.Bandwidth.BandwidthMbps = max(est.Bandwidth.BandwidthMbps, b.BandwidthFloorMbps, 0)
	return est
}
