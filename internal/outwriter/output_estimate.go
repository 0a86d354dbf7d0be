package outwriter

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/huangsam/footprint/internal/contract"
	"github.com/huangsam/footprint/schema"
)

// PrintEstimateResult outputs a single-file estimate, dispatching based on the output format configured.
func PrintEstimateResult(result schema.EstimateResult, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, intFmt := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, result)
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		components := []schema.FileEstimate{{Path: result.Path, Estimate: result.Estimate}}
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeComponentsCSV(w, components, fmtFloat, intFmt)
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeEstimateText(w, result, cfg, fmtFloat, duration)
		}, "Wrote table")
	}
	return nil
}

// writeEstimateText writes the static facts and the estimate of one file.
func writeEstimateText(w io.Writer, result schema.EstimateResult, cfg *contract.Config, fmtFloat func(float64) string, duration time.Duration) error {
	m := result.Metrics
	e := result.Estimate

	// --- 1. Static facts ---
	language := m.Language
	if language == "" {
		language = "unknown"
	}
	libs := "none"
	if len(m.Libraries) > 0 {
		libs = strings.Join(m.Libraries, ", ")
	}
	_, _ = fmt.Fprintf(w, "File: %s (%s, %d lines)\n", result.Path, language, m.LinesOfCode)
	_, _ = fmt.Fprintf(w, "Libraries: %s\n", libs)
	_, _ = fmt.Fprintf(w, "Loop depth: %d, recursion: %t\n", m.LoopDepth, m.HasRecursion)
	if m.Degraded {
		_, _ = fmt.Fprintln(w, "Structure could not be parsed; figures come from text patterns only")
	}

	// --- 2. Estimate table ---
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Resource", "Estimate", "Notes"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignLeft
	})
	data := [][]string{
		{
			"Memory",
			fmt.Sprintf("%s / %s MB (x%s)", fmtFloat(e.Memory.BaseMB), fmtFloat(e.Memory.PeakMB), fmtFloat(e.Memory.ScalingFactor)),
			e.Memory.Notes,
		},
		{
			"CPU",
			fmt.Sprintf("%s cores (%s, %s)", fmtFloat(e.CPU.EstimatedCores), e.CPU.Complexity, e.CPU.Parallelization),
			e.CPU.Notes,
		},
		{
			"Bandwidth",
			fmt.Sprintf("%s Mbps (%d calls, %s MB, %s)", fmtFloat(e.Bandwidth.BandwidthMbps), e.Bandwidth.CallsPerExecution,
				fmtFloat(e.Bandwidth.DataTransferMB), e.Bandwidth.TransferType),
			e.Bandwidth.Notes,
		},
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	// --- 3. Footer ---
	_, err := fmt.Fprintf(w, "Estimated by %s in %v\n", provenanceLabel(e.Provenance, cfg), duration)
	return err
}
