// Package analyzer produces one validated resource estimate per source file.
package analyzer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/huangsam/footprint/core/remote"
	"github.com/huangsam/footprint/core/static"
	"github.com/huangsam/footprint/internal/contract"
	"github.com/huangsam/footprint/internal/observability"
	"github.com/huangsam/footprint/schema"
)

// RemoteEstimator is the remote estimation dependency.
type RemoteEstimator interface {
	Enabled() bool
	Estimate(ctx context.Context, req remote.Request) (schema.ResourceEstimate, error)
}

// HeuristicEstimator is the local fallback dependency. NetworkLibraries picks
// the network libraries out of a file's imports.
type HeuristicEstimator interface {
	Estimate(text string, metrics schema.StaticMetrics) schema.ResourceEstimate
	NetworkLibraries(libs []string) []string
}

// FileAnalyzer turns a file into an estimate. Remote estimation is tried first
// and the heuristic estimator covers every failure.
type FileAnalyzer struct {
	remote    RemoteEstimator
	heuristic HeuristicEstimator
	cache     contract.EstimateCache
	bounds    schema.Bounds
}

// New creates a FileAnalyzer. A nil cache disables caching.
func New(remote RemoteEstimator, heuristic HeuristicEstimator, cache contract.EstimateCache, bounds schema.Bounds) *FileAnalyzer {
	if cache == nil {
		cache = NoopCache{}
	}
	return &FileAnalyzer{
		remote:    remote,
		heuristic: heuristic,
		cache:     cache,
		bounds:    bounds,
	}
}

// ContentHash returns the cache key of a file's content.
func ContentHash(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// Analyze estimates the file at path. Relative paths are resolved against the
// repository root. Analyze never fails: an unreadable file yields the fixed
// default estimate.
func (a *FileAnalyzer) Analyze(ctx context.Context, path string, repo schema.RepositoryContext) schema.ResourceEstimate {
	fullPath := path
	if !filepath.IsAbs(fullPath) && repo.Root != "" {
		fullPath = filepath.Join(repo.Root, path)
	}
	content, err := os.ReadFile(fullPath)
	if err != nil {
		logrus.WithField("file", path).WithError(err).Warn("Cannot read file, using default estimate")
		observability.ObserveFileAnalyzed(schema.HeuristicProvenance)
		return schema.DefaultEstimate(a.bounds)
	}
	return a.AnalyzeContent(ctx, displayPath(path, repo.Root), content, repo)
}

// AnalyzeContent estimates content that was already read. path is used for
// language detection and as the identity shown to the remote service.
func (a *FileAnalyzer) AnalyzeContent(ctx context.Context, path string, content []byte, repo schema.RepositoryContext) schema.ResourceEstimate {
	log := logrus.WithField("file", path)

	// 1. Cache hit short-circuits everything
	hash := ContentHash(content)
	if est, ok := a.cache.Get(hash); ok {
		observability.ObserveCacheLookup(true)
		observability.ObserveFileAnalyzed(est.Provenance)
		log.WithField("provenance", est.Provenance).Debug("Cache hit")
		return est
	}
	observability.ObserveCacheLookup(false)

	// 2. Static facts feed both estimators
	metrics := static.Extract(path, content)

	// 3. Remote first, validated against the configured bounds
	est, ok := a.tryRemote(ctx, path, content, metrics, repo, log)

	// 4. Heuristic fallback on any failure
	if !ok {
		est = a.heuristic.Estimate(string(content), metrics)
		est.Provenance = schema.HeuristicProvenance
	}
	est.Bandwidth.Libraries = a.heuristic.NetworkLibraries(metrics.Libraries)

	// 5. Results computed under a dead context may be a forced fallback
	if ctx.Err() == nil {
		a.cache.Put(hash, est)
	}

	observability.ObserveFileAnalyzed(est.Provenance)
	log.WithField("provenance", est.Provenance).Debug("File analyzed")
	return est
}

// tryRemote returns the remote estimate and whether it was accepted.
func (a *FileAnalyzer) tryRemote(ctx context.Context, path string, content []byte, metrics schema.StaticMetrics, repo schema.RepositoryContext, log *logrus.Entry) (schema.ResourceEstimate, bool) {
	if a.remote == nil || !a.remote.Enabled() {
		return schema.ResourceEstimate{}, false
	}
	est, err := a.remote.Estimate(ctx, remote.Request{
		Path:      path,
		Content:   string(content),
		Structure: repo.Structure,
		Metrics:   metrics,
	})
	if err != nil {
		log.WithError(err).Info("Remote estimation failed, using heuristic estimate")
		return schema.ResourceEstimate{}, false
	}
	if err := est.Validate(a.bounds); err != nil {
		log.WithError(err).Info("Remote estimate rejected, using heuristic estimate")
		return schema.ResourceEstimate{}, false
	}
	est.Provenance = schema.RemoteProvenance
	return est, true
}

// displayPath makes path relative to root when possible, with forward slashes.
func displayPath(path, root string) string {
	if root != "" && filepath.IsAbs(path) {
		if rel, err := filepath.Rel(root, path); err == nil {
			path = rel
		}
	}
	return filepath.ToSlash(path)
}
