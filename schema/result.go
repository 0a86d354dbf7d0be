package schema

// ProfileResult is the outcome of one profiling run.
type ProfileResult struct {
	Record  AnalysisRecord `json:"record"`
	Changes ChangeReport   `json:"changes"`
	Stored  bool           `json:"stored"` // false for dry runs and when no history backend is set
}

// ComparisonResult pairs a fresh analysis with the latest stored one.
type ComparisonResult struct {
	Current  AnalysisRecord  `json:"current"`
	Previous *AnalysisRecord `json:"previous,omitempty"`
	Changes  ChangeReport    `json:"changes"`
}

// EstimateResult is the estimate of a single file with its static facts.
type EstimateResult struct {
	Path     string           `json:"path"`
	Metrics  StaticMetrics    `json:"static_metrics"`
	Estimate ResourceEstimate `json:"estimate"`
}
