package schema

// MemoryAggregate is the repository-wide memory fold.
type MemoryAggregate struct {
	BaseMB        float64 `json:"estimated_base_mb"`
	PeakMB        float64 `json:"estimated_peak_mb"`
	ScalingFactor float64 `json:"scaling_factor"`
}

// CPUAggregate is the repository-wide CPU fold.
type CPUAggregate struct {
	EstimatedCores  float64         `json:"estimated_cores"`
	Complexity      Complexity      `json:"complexity"`
	Parallelization Parallelization `json:"parallelization_potential"`
}

// BandwidthAggregate is the repository-wide bandwidth fold.
type BandwidthAggregate struct {
	CallsPerExecution int          `json:"network_calls_per_execution"`
	DataTransferMB    float64      `json:"data_transfer_mb"`
	BandwidthMbps     float64      `json:"bandwidth_mbps"`
	TransferType      TransferType `json:"transfer_type"`
}

// NetworkSummary condenses the network side of a profile.
type NetworkSummary struct {
	TotalCalls       int      `json:"total_network_calls"`
	DataTransferMB   float64  `json:"estimated_data_transfer_mb"`
	StreamingFiles   int      `json:"streaming_files"`
	NetworkLibraries []string `json:"network_libraries_used"`
}

// RepositoryProfile is the aggregate over every analyzed file.
type RepositoryProfile struct {
	Memory          MemoryAggregate    `json:"memory"`
	CPU             CPUAggregate       `json:"cpu"`
	Bandwidth       BandwidthAggregate `json:"bandwidth"`
	Sources         SourceCounts       `json:"sources_used"`
	FilesAnalyzed   int                `json:"files_analyzed"`
	FilesSkipped    int                `json:"files_skipped,omitempty"`
	Components      []FileEstimate     `json:"component_profiles,omitempty"`
	Network         NetworkSummary     `json:"network_summary"`
	Recommendations RecommendationSet  `json:"recommendations"`
}

// SourceCounts tallies analyzed files per provenance kind.
type SourceCounts struct {
	Remote    int `json:"remote"`
	Heuristic int `json:"heuristic"`
}

// Add increments the tally for p.
func (s *SourceCounts) Add(p Provenance) {
	switch p {
	case RemoteProvenance:
		s.Remote++
	case HeuristicProvenance:
		s.Heuristic++
	}
}

// Get returns the tally for p.
func (s SourceCounts) Get(p Provenance) int {
	switch p {
	case RemoteProvenance:
		return s.Remote
	case HeuristicProvenance:
		return s.Heuristic
	}
	return 0
}

// MemoryRecommendation carries memory sizing values.
type MemoryRecommendation struct {
	MinAllocation         string `json:"min_allocation"`
	RecommendedAllocation string `json:"recommended_allocation"`
	ScalingStrategy       string `json:"scaling_strategy"`
}

// CPURecommendation carries CPU sizing values.
type CPURecommendation struct {
	MinCores         int    `json:"min_cores"`
	RecommendedCores int    `json:"recommended_cores"`
	CoreScaling      string `json:"core_scaling"`
}

// BandwidthRecommendation carries bandwidth sizing values.
type BandwidthRecommendation struct {
	BaselineRequirement string `json:"baseline_requirement"`
	PeakRequirement     string `json:"peak_requirement"`
}

// ScalingRecommendation names the dominant scaling dimension and its trigger.
type ScalingRecommendation struct {
	PriorityDimension ScalingDimension `json:"priority_dimension"`
	ScalingTrigger    string           `json:"scaling_trigger"`
}

// RecommendationSet holds deployment sizing values. The JSON field names are
// consumed by manifest templating and must not change.
type RecommendationSet struct {
	Memory    MemoryRecommendation    `json:"memory"`
	CPU       CPURecommendation       `json:"cpu"`
	Bandwidth BandwidthRecommendation `json:"bandwidth"`
	Scaling   ScalingRecommendation   `json:"scaling"`
}
