package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"

	"github.com/huangsam/footprint/core/heuristic"
	"github.com/huangsam/footprint/internal/contract"
	"github.com/huangsam/footprint/schema"
)

// PrintHeuristics displays the active heuristic tables. Text output is YAML so it
// can be saved and edited as a heuristics file.
func PrintHeuristics(table *heuristic.Table, cfg *contract.Config) error {
	fmtFloat, intFmt := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, table)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeLibrariesCSV(w, table, fmtFloat, intFmt)
		}, "Wrote CSV")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			data, err := table.YAML()
			if err != nil {
				return fmt.Errorf("failed to encode heuristics: %w", err)
			}
			_, err = w.Write(data)
			return err
		}, "Wrote YAML")
	}
}

// writeLibrariesCSV writes the library impact table sorted by name.
func writeLibrariesCSV(w io.Writer, table *heuristic.Table, fmtFloat func(float64) string, intFmt string) error {
	header := []string{"library", "memory_base_mb", "memory_peak_mb", "scaling", "calls", "mb_per_call", "streaming"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, name := range slices.Sorted(maps.Keys(table.Libraries)) {
			impact := table.Libraries[name]
			row := []string{
				name,
				fmtFloat(impact.MemoryBaseMB),
				fmtFloat(impact.MemoryPeakMB),
				impact.Scaling,
				fmt.Sprintf(intFmt, impact.Calls),
				fmtFloat(impact.MBPerCall),
				strconv.FormatBool(impact.Streaming),
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
}
