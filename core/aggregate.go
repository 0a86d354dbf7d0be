package core

import (
	"context"
	"slices"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/huangsam/footprint/schema"
)

// FileEstimator produces one estimate per file and never fails.
type FileEstimator interface {
	Analyze(ctx context.Context, path string, repo schema.RepositoryContext) schema.ResourceEstimate
}

// Aggregator analyzes files concurrently and folds their estimates into a
// repository profile.
type Aggregator struct {
	analyzer  FileEstimator
	workers   int
	bounds    schema.Bounds
	recommend RecommendConfig
}

// NewAggregator creates an Aggregator with a pool of workers. A worker count
// below one is treated as one.
func NewAggregator(analyzer FileEstimator, workers int, bounds schema.Bounds, recommend RecommendConfig) *Aggregator {
	return &Aggregator{
		analyzer:  analyzer,
		workers:   max(workers, 1),
		bounds:    bounds,
		recommend: recommend,
	}
}

// Profile analyzes files in parallel and returns the folded profile with its
// recommendations. Files still pending when ctx ends are counted as skipped
// and do not contribute.
func (a *Aggregator) Profile(ctx context.Context, files []string, repo schema.RepositoryContext) schema.RepositoryProfile {
	// Initialize channels based on the number of files to be processed.
	fileCh := make(chan string, len(files))
	resultCh := make(chan schema.FileEstimate, len(files))
	var wg sync.WaitGroup

	// Start worker pool
	for range min(a.workers, max(len(files), 1)) {
		wg.Go(func() {
			for path := range fileCh {
				if ctx.Err() != nil {
					continue // Drain without analyzing
				}
				est := a.analyzer.Analyze(ctx, path, repo)
				if ctx.Err() != nil {
					continue // Finished after the deadline
				}
				resultCh <- schema.FileEstimate{Path: path, Estimate: est}
			}
		})
	}

	// Send all files to be processed
	for _, f := range files {
		fileCh <- f
	}
	close(fileCh)

	wg.Wait()
	close(resultCh)

	components := make([]schema.FileEstimate, 0, len(files))
	for r := range resultCh {
		components = append(components, r)
	}
	// Arrival order is arbitrary
	slices.SortFunc(components, func(x, y schema.FileEstimate) int {
		switch {
		case x.Path < y.Path:
			return -1
		case x.Path > y.Path:
			return 1
		}
		return 0
	})

	profile := Fold(components, a.bounds)
	profile.FilesSkipped = len(files) - len(components)
	if profile.FilesSkipped > 0 {
		logrus.WithField("skipped", profile.FilesSkipped).Warn("Analysis deadline reached before every file was analyzed")
	}
	profile.Recommendations = Recommend(profile, a.recommend)
	return profile
}

// Fold combines file estimates into a profile. Every rule is commutative and
// associative, so the input order does not change the result:
//   - memory base and peak, network calls and data transfer are summed
//   - bandwidth is summed with each file contributing at least the floor
//   - scaling factor, cores, complexity and parallelization take the maximum
//   - streaming dominates bulk transfer
//
// No input yields the zero profile.
func Fold(components []schema.FileEstimate, bounds schema.Bounds) schema.RepositoryProfile {
	var p schema.RepositoryProfile
	libs := make(map[string]struct{})

	for _, c := range components {
		e := c.Estimate

		p.Memory.BaseMB += e.Memory.BaseMB
		p.Memory.PeakMB += e.Memory.PeakMB
		p.Memory.ScalingFactor = max(p.Memory.ScalingFactor, e.Memory.ScalingFactor)

		p.CPU.EstimatedCores = max(p.CPU.EstimatedCores, e.CPU.EstimatedCores)
		p.CPU.Complexity = max(p.CPU.Complexity, e.CPU.Complexity)
		p.CPU.Parallelization = max(p.CPU.Parallelization, e.CPU.Parallelization)

		p.Bandwidth.CallsPerExecution += e.Bandwidth.CallsPerExecution
		p.Bandwidth.DataTransferMB += e.Bandwidth.DataTransferMB
		p.Bandwidth.BandwidthMbps += max(e.Bandwidth.BandwidthMbps, bounds.BandwidthFloorMbps)
		if e.Bandwidth.TransferType == schema.TransferStreaming {
			p.Bandwidth.TransferType = schema.TransferStreaming
			p.Network.StreamingFiles++
		}
		for _, lib := range e.Bandwidth.Libraries {
			libs[lib] = struct{}{}
		}

		p.Sources.Add(e.Provenance)
		p.FilesAnalyzed++
	}

	p.Network.TotalCalls = p.Bandwidth.CallsPerExecution
	p.Network.DataTransferMB = p.Bandwidth.DataTransferMB
	p.Network.NetworkLibraries = make([]string, 0, len(libs))
	for lib := range libs {
		p.Network.NetworkLibraries = append(p.Network.NetworkLibraries, lib)
	}
	slices.Sort(p.Network.NetworkLibraries)

	if len(components) > 0 {
		p.Components = components
	}
	return p
}
