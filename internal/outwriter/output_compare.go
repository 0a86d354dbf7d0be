package outwriter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/huangsam/footprint/internal/contract"
	"github.com/huangsam/footprint/schema"
)

// diffLine is one line of a recommendation diff.
type diffLine struct {
	Op   diffmatchpatch.Operation
	Text string
}

// PrintComparisonResult outputs a comparison against the latest stored analysis,
// dispatching based on the output format configured.
func PrintComparisonResult(result schema.ComparisonResult, cfg *contract.Config, duration time.Duration) error {
	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, result)
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeComparisonCSV(w, result)
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeComparisonText(w, result, cfg, duration)
		}, "Wrote text")
	}
	return nil
}

// writeComparisonText writes the change report followed by a line diff of
// the recommendations.
func writeComparisonText(w io.Writer, result schema.ComparisonResult, cfg *contract.Config, duration time.Duration) error {
	// --- 1. What we compare against ---
	_, _ = fmt.Fprintf(w, "Repository: %s\n", result.Current.RepositoryIdentity)
	if result.Previous == nil {
		writeChangeReport(w, result.Changes, cfg)
		_, err := fmt.Fprintf(w, "Comparison completed in %v\n", duration)
		return err
	}
	prev := result.Previous
	_, _ = fmt.Fprintf(w, "Previous: record %d at %s (%s)\n",
		prev.ID, prev.Timestamp.Format(contract.DateTimeFormat), humanize.Time(prev.Timestamp))

	// --- 2. Change report ---
	writeChangeReport(w, result.Changes, cfg)

	// --- 3. Recommendation diff ---
	lines, err := recommendationDiff(prev.Recommendations, result.Current.Recommendations)
	if err != nil {
		return err
	}
	if !hasEdits(lines) {
		_, _ = fmt.Fprintln(w, "Recommendations: unchanged")
	} else {
		red, green, _ := colorFuncs(cfg)
		_, _ = fmt.Fprintln(w, "Recommendations:")
		for _, l := range lines {
			switch l.Op {
			case diffmatchpatch.DiffDelete:
				_, _ = fmt.Fprintln(w, red("- "+l.Text))
			case diffmatchpatch.DiffInsert:
				_, _ = fmt.Fprintln(w, green("+ "+l.Text))
			default:
				_, _ = fmt.Fprintln(w, "  "+l.Text)
			}
		}
	}

	_, err = fmt.Fprintf(w, "Comparison completed in %v\n", duration)
	return err
}

// recommendationDiff diffs the indented JSON form of two recommendation sets line by line.
func recommendationDiff(prev, cur schema.RecommendationSet) ([]diffLine, error) {
	before, err := json.MarshalIndent(prev, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode previous recommendations: %w", err)
	}
	after, err := json.MarshalIndent(cur, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode current recommendations: %w", err)
	}

	dmp := diffmatchpatch.New()
	src, dst, lineArray := dmp.DiffLinesToChars(string(before)+"\n", string(after)+"\n")
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(src, dst, false), lineArray)

	var lines []diffLine
	for _, d := range diffs {
		for text := range strings.SplitSeq(strings.TrimSuffix(d.Text, "\n"), "\n") {
			lines = append(lines, diffLine{Op: d.Type, Text: text})
		}
	}
	return lines, nil
}

func hasEdits(lines []diffLine) bool {
	for _, l := range lines {
		if l.Op != diffmatchpatch.DiffEqual {
			return true
		}
	}
	return false
}

// writeComparisonCSV writes one row per detected change.
func writeComparisonCSV(w io.Writer, result schema.ComparisonResult) error {
	previousRevision := ""
	if result.Previous != nil {
		previousRevision = result.Previous.RevisionID
	}
	header := []string{"index", "repository_identity", "revision_id", "previous_revision", "change"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for i, change := range result.Changes.Changes {
			row := []string{
				strconv.Itoa(i + 1),
				result.Current.RepositoryIdentity,
				result.Current.RevisionID,
				previousRevision,
				change,
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
}
