// Package heuristic derives resource estimates from static facts and impact tables.
package heuristic

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/huangsam/footprint/schema"
)

// Settings are the configured baselines.
type Settings struct {
	MinBaseMB float64
	Bounds    schema.Bounds
}

type compiledGroup struct {
	PatternGroup
	regexes         []*regexp.Regexp
	parallelization schema.Parallelization
}

type compiledNetwork struct {
	NetworkPattern
	regex *regexp.Regexp
}

// Estimator is the deterministic local estimator. It is safe for concurrent use.
type Estimator struct {
	table           *Table
	settings        Settings
	complexityCores map[schema.Complexity]float64
	groups          []compiledGroup
	network         []compiledNetwork
}

// New compiles a table into an Estimator.
func New(table *Table, settings Settings) (*Estimator, error) {
	if table == nil {
		return nil, fmt.Errorf("heuristic table is nil")
	}
	if table.TransferWindowSeconds <= 0 {
		return nil, fmt.Errorf("transfer_window_seconds must be positive, got %v", table.TransferWindowSeconds)
	}

	e := &Estimator{
		table:           table,
		settings:        settings,
		complexityCores: make(map[schema.Complexity]float64, len(table.ComplexityCores)),
	}

	for key, cores := range table.ComplexityCores {
		c, err := schema.ParseComplexity(key)
		if err != nil {
			return nil, fmt.Errorf("complexity_cores: %w", err)
		}
		e.complexityCores[c] = cores
	}

	for name, impact := range table.Libraries {
		if impact.Scaling == "" {
			continue
		}
		if _, ok := table.ScalingClasses[impact.Scaling]; !ok {
			return nil, fmt.Errorf("library %q: unknown scaling class %q", name, impact.Scaling)
		}
	}

	for _, group := range table.Patterns {
		cg := compiledGroup{PatternGroup: group}
		if group.Parallelization != "" {
			p, err := schema.ParseParallelization(group.Parallelization)
			if err != nil {
				return nil, fmt.Errorf("pattern group %q: %w", group.Name, err)
			}
			cg.parallelization = p
		}
		for _, expr := range group.Regexes {
			re, err := regexp.Compile(expr)
			if err != nil {
				return nil, fmt.Errorf("pattern group %q: %w", group.Name, err)
			}
			cg.regexes = append(cg.regexes, re)
		}
		e.groups = append(e.groups, cg)
	}

	for _, np := range table.NetworkPatterns {
		re, err := regexp.Compile(np.Regex)
		if err != nil {
			return nil, fmt.Errorf("network pattern %q: %w", np.Regex, err)
		}
		e.network = append(e.network, compiledNetwork{NetworkPattern: np, regex: re})
	}

	return e, nil
}

// Table returns the active impact tables.
func (e *Estimator) Table() *Table {
	return e.table
}

// Estimate derives a heuristic estimate. It never fails and its result always
// satisfies the estimate invariants for the configured bounds.
func (e *Estimator) Estimate(text string, metrics schema.StaticMetrics) schema.ResourceEstimate {
	bounds := e.settings.Bounds
	base := max(e.settings.MinBaseMB, bounds.MemoryFloorMB)

	mem := schema.MemoryEstimate{BaseMB: base, PeakMB: base, ScalingFactor: 1.0}
	bw := schema.BandwidthEstimate{TransferType: schema.TransferBulk}
	memNotes := []string{"Heuristic estimate"}
	cpuNotes := []string{"Heuristic estimate"}
	bwNotes := []string{"Heuristic estimate"}

	// 1. Library contributions
	for _, lib := range metrics.Libraries {
		impact, ok := e.table.Libraries[lib]
		if !ok {
			continue
		}
		if impact.MemoryBaseMB > 0 || impact.MemoryPeakMB > 0 {
			mem.BaseMB += impact.MemoryBaseMB
			mem.PeakMB += impact.MemoryPeakMB
			memNotes = append(memNotes, "Found "+lib)
		}
		if impact.Scaling != "" {
			mem.ScalingFactor = max(mem.ScalingFactor, e.table.ScalingClasses[impact.Scaling])
		}
		if impact.Calls > 0 {
			bw.CallsPerExecution += impact.Calls
			bw.DataTransferMB += float64(impact.Calls) * impact.MBPerCall
			bwNotes = append(bwNotes, "Found "+lib)
		}
		if impact.Streaming {
			bw.TransferType = schema.TransferStreaming
		}
	}

	// 2. Complexity from loop structure
	complexity := schema.ComplexityForLoopDepth(metrics.LoopDepth)
	cpuNotes = append(cpuNotes, fmt.Sprintf("Nested loops depth: %d", metrics.LoopDepth))
	if metrics.HasRecursion {
		complexity = schema.ComplexityLinearithmic
		cpuNotes = append(cpuNotes, "Recursion detected")
	}
	cores := e.coresFor(complexity)
	parallel := schema.ParallelLow

	// 3. Structural patterns
	for _, g := range e.groups {
		matches := 0
		for _, re := range g.regexes {
			matches += len(re.FindAllStringIndex(text, -1))
		}
		if matches == 0 {
			continue
		}
		cores += g.Cores
		mem.PeakMB += float64(matches) * g.PeakMBPerMatch
		parallel = max(parallel, g.parallelization)
		cpuNotes = append(cpuNotes, fmt.Sprintf("%s patterns: %d", g.Name, matches))
	}

	// 4. Network calls
	for _, np := range e.network {
		matches := len(np.regex.FindAllStringIndex(text, -1))
		if matches == 0 {
			continue
		}
		bw.CallsPerExecution += matches
		bw.DataTransferMB += float64(matches) * np.MBPerCall
		if np.Streaming {
			bw.TransferType = schema.TransferStreaming
		}
	}
	if bw.CallsPerExecution > 0 {
		bwNotes = append(bwNotes, fmt.Sprintf("Network calls: %d", bw.CallsPerExecution))
	} else {
		bwNotes = append(bwNotes, "no network activity")
	}

	// 5. Enforce invariants
	mem.PeakMB = max(mem.PeakMB, mem.BaseMB)
	bw.BandwidthMbps = max(bounds.BandwidthFloorMbps, bw.DataTransferMB*8/e.table.TransferWindowSeconds)

	bw.Libraries = e.NetworkLibraries(metrics.Libraries)
	mem.Notes = strings.Join(memNotes, "; ")
	bw.Notes = strings.Join(bwNotes, "; ")

	return schema.ResourceEstimate{
		Memory: mem,
		CPU: schema.CPUEstimate{
			EstimatedCores:  max(cores, bounds.MinCores),
			Complexity:      complexity,
			Parallelization: parallel,
			Notes:           strings.Join(cpuNotes, "; "),
		},
		Bandwidth:  bw,
		Provenance: schema.HeuristicProvenance,
	}
}

// NetworkLibraries returns the libraries of libs that the tables mark as
// making network calls, in input order.
func (e *Estimator) NetworkLibraries(libs []string) []string {
	var out []string
	for _, lib := range libs {
		if impact, ok := e.table.Libraries[lib]; ok && (impact.Calls > 0 || impact.Streaming) {
			out = append(out, lib)
		}
	}
	return out
}

// coresFor returns the core weight of a complexity class. Polynomial classes
// beyond the table grow by CoresPerExtraDegree per degree.
func (e *Estimator) coresFor(c schema.Complexity) float64 {
	if cores, ok := e.complexityCores[c]; ok {
		return max(cores, e.table.BaseCores)
	}
	if c.Degree() > 3 {
		if cubic, ok := e.complexityCores[schema.ComplexityCubic]; ok {
			return max(cubic+float64(c.Degree()-3)*e.table.CoresPerExtraDegree, e.table.BaseCores)
		}
	}
	return e.table.BaseCores
}
