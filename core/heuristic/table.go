package heuristic

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// LibraryImpact is what importing one library adds to an estimate.
type LibraryImpact struct {
	MemoryBaseMB float64 `json:"memory_base_mb,omitempty" yaml:"memory_base_mb,omitempty"`
	MemoryPeakMB float64 `json:"memory_peak_mb,omitempty" yaml:"memory_peak_mb,omitempty"`
	Scaling      string  `json:"scaling,omitempty" yaml:"scaling,omitempty"`
	Calls        int     `json:"calls,omitempty" yaml:"calls,omitempty"`
	MBPerCall    float64 `json:"mb_per_call,omitempty" yaml:"mb_per_call,omitempty"`
	Streaming    bool    `json:"streaming,omitempty" yaml:"streaming,omitempty"`
}

// PatternGroup is a named set of structural regexes with shared contributions.
// Cores and parallelization apply once per matching group, peak memory per match.
type PatternGroup struct {
	Name            string   `json:"name" yaml:"name"`
	Regexes         []string `json:"regexes" yaml:"regexes"`
	Cores           float64  `json:"cores,omitempty" yaml:"cores,omitempty"`
	PeakMBPerMatch  float64  `json:"peak_mb_per_match,omitempty" yaml:"peak_mb_per_match,omitempty"`
	Parallelization string   `json:"parallelization,omitempty" yaml:"parallelization,omitempty"`
}

// NetworkPattern counts one network call per match.
type NetworkPattern struct {
	Regex     string  `json:"regex" yaml:"regex"`
	MBPerCall float64 `json:"mb_per_call" yaml:"mb_per_call"`
	Streaming bool    `json:"streaming,omitempty" yaml:"streaming,omitempty"`
}

// Table is the configurable set of impact weights.
type Table struct {
	BaseCores             float64                  `json:"base_cores" yaml:"base_cores"`
	TransferWindowSeconds float64                  `json:"transfer_window_seconds" yaml:"transfer_window_seconds"`
	CoresPerExtraDegree   float64                  `json:"cores_per_extra_degree" yaml:"cores_per_extra_degree"`
	ScalingClasses        map[string]float64       `json:"scaling_classes" yaml:"scaling_classes"`
	ComplexityCores       map[string]float64       `json:"complexity_cores" yaml:"complexity_cores"`
	Libraries             map[string]LibraryImpact `json:"libraries" yaml:"libraries"`
	Patterns              []PatternGroup           `json:"patterns" yaml:"patterns"`
	NetworkPatterns       []NetworkPattern         `json:"network_patterns" yaml:"network_patterns"`
}

// DefaultTable returns the embedded tables.
func DefaultTable() (*Table, error) {
	var table Table
	if err := yaml.Unmarshal(defaultsYAML, &table); err != nil {
		return nil, fmt.Errorf("parsing embedded heuristics: %w", err)
	}
	return &table, nil
}

// LoadTable reads a YAML override on top of the embedded tables. Map entries are
// merged by key, lists are replaced wholesale. An empty path returns the defaults.
func LoadTable(path string) (*Table, error) {
	table, err := DefaultTable()
	if err != nil {
		return nil, err
	}
	if path == "" {
		return table, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading heuristics file: %w", err)
	}
	if err := yaml.Unmarshal(data, table); err != nil {
		return nil, fmt.Errorf("parsing heuristics file: %w", err)
	}
	return table, nil
}

// YAML renders the table back to YAML.
func (t *Table) YAML() ([]byte, error) {
	return yaml.Marshal(t)
}
