// Package observability keeps process counters for analysis runs.
package observability

import (
	"fmt"

	"github.com/huangsam/footprint/schema"
	"github.com/prometheus/client_golang/prometheus"
)

// Counter label values.
const (
	CacheHit  = "hit"
	CacheMiss = "miss"

	AttemptSuccess   = "success"
	AttemptTransient = "transient"
	AttemptFailure   = "failure"
)

var (
	registry = prometheus.NewRegistry()

	filesAnalyzed = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "footprint_files_analyzed_total",
		Help: "Files analyzed, by provenance of the accepted estimate.",
	}, []string{"provenance"})

	cacheLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "footprint_cache_lookups_total",
		Help: "Estimate cache lookups, by result.",
	}, []string{"result"})

	remoteAttempts = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "footprint_remote_attempts_total",
		Help: "Calls to the remote estimation service, by outcome.",
	}, []string{"outcome"})
)

func init() {
	registry.MustRegister(filesAnalyzed, cacheLookups, remoteAttempts)
}

// ObserveFileAnalyzed counts one accepted estimate.
func ObserveFileAnalyzed(p schema.Provenance) {
	filesAnalyzed.WithLabelValues(string(p)).Inc()
}

// ObserveCacheLookup counts one cache lookup.
func ObserveCacheLookup(hit bool) {
	if hit {
		cacheLookups.WithLabelValues(CacheHit).Inc()
		return
	}
	cacheLookups.WithLabelValues(CacheMiss).Inc()
}

// ObserveRemoteAttempt counts one remote call attempt.
func ObserveRemoteAttempt(outcome string) {
	remoteAttempts.WithLabelValues(outcome).Inc()
}

// WriteTextfile writes every counter in the Prometheus text format.
func WriteTextfile(path string) error {
	if path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, registry); err != nil {
		return fmt.Errorf("writing metrics file: %w", err)
	}
	return nil
}

// Gatherer exposes the registry to tests and exporters.
func Gatherer() prometheus.Gatherer {
	return registry
}
