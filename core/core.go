// Package core has the profiling pipeline: discovery, aggregation,
// recommendations and change detection.
package core

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/huangsam/footprint/core/heuristic"
	"github.com/huangsam/footprint/core/static"
	"github.com/huangsam/footprint/internal/contract"
	"github.com/huangsam/footprint/internal/outwriter"
	"github.com/huangsam/footprint/schema"
)

// ExecutorFunc defines the function signature for executing different commands.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error

// ErrNoHistory is returned by operations that need a record store when none is configured.
var ErrNoHistory = errors.New("no history backend configured")

// ExecuteProfile profiles the repository, records the result and prints it.
// It serves as the main entry point for the 'profile' command.
func ExecuteProfile(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	start := time.Now()
	client := contract.NewLocalGitClient()
	result, err := RunProfile(ctx, cfg, client, mgr)
	if err != nil {
		return err
	}
	return outwriter.PrintProfileResult(result, cfg, time.Since(start))
}

// ExecuteEstimate analyzes the single file given on the command line.
func ExecuteEstimate(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	start := time.Now()
	result, err := RunEstimate(ctx, cfg, mgr, cfg.TargetPath)
	if err != nil {
		return err
	}
	return outwriter.PrintEstimateResult(result, cfg, time.Since(start))
}

// ExecuteCompare profiles the repository and compares it with the latest
// stored analysis without recording anything.
func ExecuteCompare(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	start := time.Now()
	client := contract.NewLocalGitClient()
	result, err := RunCompare(ctx, cfg, client, mgr)
	if err != nil {
		return err
	}
	return outwriter.PrintComparisonResult(result, cfg, time.Since(start))
}

// ExecuteHeuristics prints the active heuristic tables.
// This is a static display that does not read the repository.
func ExecuteHeuristics(_ context.Context, cfg *contract.Config, _ contract.StoreManager) error {
	table, err := heuristic.LoadTable(cfg.HeuristicsFile)
	if err != nil {
		return err
	}
	if _, err := heuristic.New(table, heuristic.Settings{MinBaseMB: cfg.MinBaseMB, Bounds: cfg.Bounds}); err != nil {
		return fmt.Errorf("invalid heuristics: %w", err)
	}
	return outwriter.PrintHeuristics(table, cfg)
}

// ExecuteHistoryChanges prints the most recent change log entries of the repository.
func ExecuteHistoryChanges(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager, limit int) error {
	store := recordStore(mgr)
	if store == nil {
		return ErrNoHistory
	}
	repo := ResolveRepository(ctx, cfg, contract.NewLocalGitClient())
	entries, err := store.ListChangeLogs(ctx, repo.Identity, limit)
	if err != nil {
		return fmt.Errorf("failed to list change logs: %w", err)
	}
	return outwriter.PrintChangeLogs(entries, repo.Identity, cfg)
}

// RunProfile runs the full pipeline: discovery, per-file estimation, folding,
// recommendations, change detection and persistence. Dry runs and runs
// without a history backend detect changes but store nothing.
func RunProfile(ctx context.Context, cfg *contract.Config, client contract.RevisionClient, mgr contract.StoreManager) (schema.ProfileResult, error) {
	rec, err := analyzeRepository(ctx, cfg, client, mgr)
	if err != nil {
		return schema.ProfileResult{}, err
	}
	result := schema.ProfileResult{Record: *rec}

	store := recordStore(mgr)
	if store == nil {
		result.Changes = schema.ChangeReport{Changes: []string{}, Message: schema.NoPreviousMessage}
		return result, nil
	}

	// 1. Change detection against the latest stored record
	detector := NewChangeDetector(store, cfg.ChangeThreshold)
	if cfg.DryRun {
		result.Changes, _, err = detector.Compare(ctx, rec)
	} else {
		result.Changes, err = detector.Detect(ctx, rec)
	}
	if err != nil {
		contract.LogWarn("Change detection failed", err)
		result.Changes = schema.ChangeReport{Changes: []string{}, Message: fmt.Sprintf("Change detection failed: %v", err)}
	}

	// 2. Append the new record
	if cfg.DryRun {
		return result, nil
	}
	id, err := store.Store(ctx, rec)
	if err != nil {
		return result, fmt.Errorf("failed to store analysis record: %w", err)
	}
	result.Record.ID = id
	result.Stored = true
	return result, nil
}

// RunCompare profiles the repository and compares it with the latest stored
// record. Nothing is written.
func RunCompare(ctx context.Context, cfg *contract.Config, client contract.RevisionClient, mgr contract.StoreManager) (schema.ComparisonResult, error) {
	store := recordStore(mgr)
	if store == nil {
		return schema.ComparisonResult{}, fmt.Errorf("compare needs stored analyses: %w", ErrNoHistory)
	}
	rec, err := analyzeRepository(ctx, cfg, client, mgr)
	if err != nil {
		return schema.ComparisonResult{}, err
	}
	report, prev, err := NewChangeDetector(store, cfg.ChangeThreshold).Compare(ctx, rec)
	if err != nil {
		return schema.ComparisonResult{}, err
	}
	return schema.ComparisonResult{Current: *rec, Previous: prev, Changes: report}, nil
}

// RunEstimate analyzes one file. Unlike repository runs, a file that cannot be
// read is an error here.
func RunEstimate(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager, path string) (schema.EstimateResult, error) {
	info, err := os.Stat(path)
	if err != nil {
		return schema.EstimateResult{}, fmt.Errorf("cannot estimate %q: %w", path, err)
	}
	if info.IsDir() {
		return schema.EstimateResult{}, fmt.Errorf("cannot estimate %q: is a directory", path)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return schema.EstimateResult{}, fmt.Errorf("cannot estimate %q: %w", path, err)
	}

	pipeline, err := NewPipeline(ctx, cfg, mgr)
	if err != nil {
		return schema.EstimateResult{}, err
	}
	repo := schema.RepositoryContext{Root: cfg.RepoPath}
	rel := relativePath(path, cfg.RepoPath)
	return schema.EstimateResult{
		Path:     rel,
		Metrics:  static.Extract(rel, content),
		Estimate: pipeline.Analyzer.AnalyzeContent(ctx, rel, content, repo),
	}, nil
}

// analyzeRepository discovers, estimates and folds the repository into a new
// unsaved record.
func analyzeRepository(ctx context.Context, cfg *contract.Config, client contract.RevisionClient, mgr contract.StoreManager) (*schema.AnalysisRecord, error) {
	// --- 1. Pipeline and repository context ---
	pipeline, err := NewPipeline(ctx, cfg, mgr)
	if err != nil {
		return nil, err
	}
	repo := ResolveRepository(ctx, cfg, client)
	if !shouldSuppressHeader(ctx) {
		outwriter.LogProfileHeader(repo, pipeline.Remote.ProviderName(), cfg)
	}

	// --- 2. Discovery ---
	files, err := DiscoverFiles(repo.Root, pipeline.Discover)
	if err != nil {
		return nil, fmt.Errorf("failed to discover files: %w", err)
	}
	repo.Structure = BuildStructure(files)

	// --- 3. Estimation and folding ---
	profile := pipeline.Aggregator.Profile(ctx, files, repo)

	return &schema.AnalysisRecord{
		RunID:              uuid.NewString(),
		RepositoryIdentity: repo.Identity,
		RevisionID:         repo.Revision,
		Timestamp:          time.Now().UTC(),
		FileTree:           repo.Structure,
		Profile:            profile,
		Recommendations:    profile.Recommendations,
	}, nil
}

// recordStore returns the configured record store or nil.
func recordStore(mgr contract.StoreManager) contract.RecordStore {
	if mgr == nil {
		return nil
	}
	return mgr.GetRecordStore()
}

// relativePath returns path relative to root in slash form, or path itself
// when it lies elsewhere.
func relativePath(path, root string) string {
	if rel, err := filepath.Rel(root, path); err == nil && !strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(rel)
	}
	return filepath.ToSlash(path)
}
