package outwriter

import (
	"cmp"
	"encoding/csv"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/huangsam/footprint/internal/contract"
	"github.com/huangsam/footprint/schema"
)

// componentHeader names the columns of the per-file CSV.
var componentHeader = []string{
	"path",
	"base_mb",
	"peak_mb",
	"scaling_factor",
	"cores",
	"complexity",
	"parallelization",
	"network_calls",
	"data_transfer_mb",
	"bandwidth_mbps",
	"transfer_type",
	"provenance",
}

// PrintProfileResult outputs a profile run, dispatching based on the output format configured.
func PrintProfileResult(result schema.ProfileResult, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, intFmt := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, result)
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeComponentsCSV(w, result.Record.Profile.Components, fmtFloat, intFmt)
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeProfileText(w, result, cfg, fmtFloat, duration)
		}, "Wrote table")
	}
	return nil
}

// writeProfileText writes the human-readable profile.
func writeProfileText(w io.Writer, result schema.ProfileResult, cfg *contract.Config, fmtFloat func(float64) string, duration time.Duration) error {
	rec := result.Record
	profile := rec.Profile

	// --- 1. Summary and recommendations ---
	if err := writeResourceTable(w, profile, rec.Recommendations, fmtFloat); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(w, "Scaling priority: %s (trigger: %s)\n",
		priorityLabel(rec.Recommendations.Scaling.PriorityDimension, cfg), rec.Recommendations.Scaling.ScalingTrigger)

	// --- 2. Network summary ---
	libs := "none"
	if len(profile.Network.NetworkLibraries) > 0 {
		libs = strings.Join(profile.Network.NetworkLibraries, ", ")
	}
	_, _ = fmt.Fprintf(w, "Network: %s calls, %s MB per run, %d streaming files, libraries: %s\n",
		humanize.Comma(int64(profile.Network.TotalCalls)), fmtFloat(profile.Network.DataTransferMB), profile.Network.StreamingFiles, libs)

	// --- 3. Per-file breakdown ---
	if cfg.Detail && len(profile.Components) > 0 {
		if err := writeComponentTable(w, profile.Components, cfg, fmtFloat); err != nil {
			return err
		}
	}

	// --- 4. Changes since the previous analysis ---
	writeChangeReport(w, result.Changes, cfg)

	// --- 5. Footer ---
	_, _ = fmt.Fprintf(w, "Profiled %s files (%s skipped; remote: %d, heuristic: %d)\n",
		humanize.Comma(int64(profile.FilesAnalyzed)), humanize.Comma(int64(profile.FilesSkipped)),
		profile.Sources.Remote, profile.Sources.Heuristic)
	stored := "not stored"
	if result.Stored {
		stored = fmt.Sprintf("stored as record %d", rec.ID)
	}
	_, err := fmt.Fprintf(w, "Analysis completed in %v with %d workers. History backend: %s (%s)\n",
		duration, cfg.Workers, cfg.HistoryBackend, stored)
	return err
}

// writeResourceTable renders the aggregate next to its recommendation.
func writeResourceTable(w io.Writer, profile schema.RepositoryProfile, rec schema.RecommendationSet, fmtFloat func(float64) string) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Resource", "Estimate", "Minimum", "Recommended", "Scaling"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	data := [][]string{
		{
			"Memory",
			fmt.Sprintf("%s / %s MB (x%s)", fmtFloat(profile.Memory.BaseMB), fmtFloat(profile.Memory.PeakMB), fmtFloat(profile.Memory.ScalingFactor)),
			rec.Memory.MinAllocation,
			rec.Memory.RecommendedAllocation,
			rec.Memory.ScalingStrategy,
		},
		{
			"CPU",
			fmt.Sprintf("%s cores (%s, %s)", fmtFloat(profile.CPU.EstimatedCores), profile.CPU.Complexity, profile.CPU.Parallelization),
			strconv.Itoa(rec.CPU.MinCores),
			strconv.Itoa(rec.CPU.RecommendedCores),
			rec.CPU.CoreScaling,
		},
		{
			"Bandwidth",
			fmt.Sprintf("%s Mbps (%d calls, %s)", fmtFloat(profile.Bandwidth.BandwidthMbps), profile.Bandwidth.CallsPerExecution, profile.Bandwidth.TransferType),
			rec.Bandwidth.BaselineRequirement,
			rec.Bandwidth.PeakRequirement,
			"-",
		},
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

// writeComponentTable lists every file by descending peak memory.
func writeComponentTable(w io.Writer, components []schema.FileEstimate, cfg *contract.Config, fmtFloat func(float64) string) error {
	table := tablewriter.NewWriter(w)

	// 1. Define Headers
	table.Header([]string{"Rank", "Path", "Base MB", "Peak MB", "Scaling", "Cores", "Complexity", "Parallel", "Mbps", "Transfer", "Source"})

	// 2. Configure Alignment
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	// 3. Populate Rows
	ranked := rankComponents(components)
	maxWidth := GetMaxTablePathWidth(cfg)
	var data [][]string
	for i, c := range ranked {
		e := c.Estimate
		data = append(data, []string{
			strconv.Itoa(i + 1),
			contract.TruncatePath(c.Path, maxWidth),
			fmtFloat(e.Memory.BaseMB),
			fmtFloat(e.Memory.PeakMB),
			fmtFloat(e.Memory.ScalingFactor),
			fmtFloat(e.CPU.EstimatedCores),
			e.CPU.Complexity.String(),
			e.CPU.Parallelization.String(),
			fmtFloat(e.Bandwidth.BandwidthMbps),
			e.Bandwidth.TransferType.String(),
			provenanceLabel(e.Provenance, cfg),
		})
	}

	// 4. Render the table
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

// rankComponents orders a copy of components by peak memory, then path.
func rankComponents(components []schema.FileEstimate) []schema.FileEstimate {
	ranked := slices.Clone(components)
	slices.SortStableFunc(ranked, func(a, b schema.FileEstimate) int {
		if c := cmp.Compare(b.Estimate.Memory.PeakMB, a.Estimate.Memory.PeakMB); c != 0 {
			return c
		}
		return strings.Compare(a.Path, b.Path)
	})
	return ranked
}

// writeComponentsCSV writes one row per analyzed file.
func writeComponentsCSV(w io.Writer, components []schema.FileEstimate, fmtFloat func(float64) string, intFmt string) error {
	return writeCSVWithHeader(w, componentHeader, func(cw *csv.Writer) error {
		for _, c := range components {
			e := c.Estimate
			row := []string{
				c.Path,
				fmtFloat(e.Memory.BaseMB),
				fmtFloat(e.Memory.PeakMB),
				fmtFloat(e.Memory.ScalingFactor),
				fmtFloat(e.CPU.EstimatedCores),
				e.CPU.Complexity.String(),
				e.CPU.Parallelization.String(),
				fmt.Sprintf(intFmt, e.Bandwidth.CallsPerExecution),
				fmtFloat(e.Bandwidth.DataTransferMB),
				fmtFloat(e.Bandwidth.BandwidthMbps),
				e.Bandwidth.TransferType.String(),
				string(e.Provenance),
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
}

// writeChangeReport prints the change message and one line per change.
func writeChangeReport(w io.Writer, report schema.ChangeReport, cfg *contract.Config) {
	_, _, yellow := colorFuncs(cfg)
	_, _ = fmt.Fprintf(w, "Changes: %s\n", report.Message)
	for _, change := range report.Changes {
		_, _ = fmt.Fprintf(w, "  • %s\n", yellow(change))
	}
}
