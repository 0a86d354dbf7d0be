package core

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/huangsam/footprint/core/analyzer"
	"github.com/huangsam/footprint/core/heuristic"
	"github.com/huangsam/footprint/core/remote"
	"github.com/huangsam/footprint/internal/contract"
	"github.com/huangsam/footprint/schema"
)

// maxRemoteBackoff caps the wait between remote attempts.
const maxRemoteBackoff = 30 * time.Second

// Pipeline holds the collaborators of one profiling run.
type Pipeline struct {
	Heuristic  *heuristic.Estimator
	Remote     *remote.Estimator
	Analyzer   *analyzer.FileAnalyzer
	Aggregator *Aggregator
	Discover   DiscoverOptions
}

// NewPipeline builds the estimators, caches and aggregator from the configuration.
// A nil manager runs without persistent stores.
func NewPipeline(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) (*Pipeline, error) {
	// 1. Heuristic tables, with optional overrides
	table, err := heuristic.LoadTable(cfg.HeuristicsFile)
	if err != nil {
		return nil, err
	}
	heur, err := heuristic.New(table, heuristic.Settings{MinBaseMB: cfg.MinBaseMB, Bounds: cfg.Bounds})
	if err != nil {
		return nil, fmt.Errorf("invalid heuristics: %w", err)
	}

	// 2. Remote provider, absent when disabled or without credentials
	provider, err := remote.NewProvider(ctx, remote.ProviderConfig{
		Name:       cfg.Provider,
		Model:      cfg.Model,
		OllamaHost: cfg.OllamaHost,
	})
	if err != nil {
		if !errors.Is(err, remote.ErrDisabled) {
			return nil, fmt.Errorf("failed to create %s provider: %w", cfg.Provider, err)
		}
		provider = nil
	}
	est := remote.NewEstimator(provider, remote.Config{
		MaxPromptLines: cfg.MaxPromptLines,
		Bounds:         cfg.Bounds,
		Policy: remote.RetryPolicy{
			MaxAttempts:    cfg.RemoteAttempts,
			InitialBackoff: cfg.RemoteBackoff,
			MaxBackoff:     maxRemoteBackoff,
			Multiplier:     2.0,
			AttemptTimeout: cfg.RemoteTimeout,
			Retryable:      remote.IsRetryable,
		},
		RequestsPerSecond: cfg.RemoteRPS,
		MaxConcurrent:     int64(cfg.RemoteConcurrency),
	})
	logrus.WithField("provider", est.ProviderName()).Debug("Remote estimation configured")

	// 3. Estimate cache, tiered over the persistent store when one exists
	cache, err := newEstimateCache(cfg.CacheSize, mgr)
	if err != nil {
		return nil, err
	}

	fa := analyzer.New(est, heur, cache, cfg.Bounds)
	recommend := DefaultRecommendConfig()
	if cfg.RecommendFloorMB > 0 {
		recommend.FloorMB = cfg.RecommendFloorMB
	}

	return &Pipeline{
		Heuristic:  heur,
		Remote:     est,
		Analyzer:   fa,
		Aggregator: NewAggregator(fa, cfg.Workers, cfg.Bounds, recommend),
		Discover: DiscoverOptions{
			Extensions:   cfg.Extensions,
			SkipPatterns: cfg.SkipPatterns,
			Excludes:     cfg.Excludes,
		},
	}, nil
}

// newEstimateCache returns the in-process LRU, backed by the persistent
// estimate store when one is configured.
func newEstimateCache(size int, mgr contract.StoreManager) (contract.EstimateCache, error) {
	if size <= 0 {
		size = contract.DefaultCacheSize
	}
	mem, err := analyzer.NewMemoryCache(size)
	if err != nil {
		return nil, err
	}
	if mgr == nil {
		return mem, nil
	}
	if store := mgr.GetCacheStore(); store != nil {
		return analyzer.NewTieredCache(mem, analyzer.NewStoreCache(store)), nil
	}
	return mem, nil
}

// ResolveRepository determines the identity and revision of the repository at
// cfg.RepoPath. The identity is the configured override, then the origin URL,
// then the absolute path. When cfg.RepoPath is a subdirectory of a Git
// checkout, the revision comes from the enclosing repository and the origin URL
// is suffixed with "//<subdir>" so that sibling directories keep separate
// histories. The revision is empty outside of Git.
func ResolveRepository(ctx context.Context, cfg *contract.Config, client contract.RevisionClient) schema.RepositoryContext {
	root, err := filepath.Abs(cfg.RepoPath)
	if err != nil {
		root = cfg.RepoPath
	}
	repo := schema.RepositoryContext{Root: root, Identity: root}

	if client != nil {
		gitRoot, subdir := root, ""
		if top, err := client.GetRepoRoot(ctx, root); err == nil && top != "" {
			if rel, err := filepath.Rel(top, root); err == nil && rel != "." && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
				gitRoot, subdir = top, filepath.ToSlash(rel)
			}
		}
		if hash, err := client.GetRepoHash(ctx, gitRoot); err == nil {
			repo.Revision = hash
		}
		if url, err := client.GetRemoteURL(ctx, gitRoot); err == nil && url != "" {
			repo.Identity = url
			if subdir != "" {
				repo.Identity = url + "//" + subdir
			}
		}
	}
	if cfg.RepoID != "" {
		repo.Identity = cfg.RepoID
	}
	return repo
}
