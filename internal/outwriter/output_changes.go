package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/huangsam/footprint/internal/contract"
	"github.com/huangsam/footprint/schema"
)

// PrintChangeLogs displays change log entries for one repository, newest first.
func PrintChangeLogs(entries []schema.ChangeLogEntry, identity string, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		if entries == nil {
			entries = []schema.ChangeLogEntry{}
		}
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, entries)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeChangeLogsCSV(w, entries)
		}, "Wrote CSV")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeChangeLogsTable(w, entries, identity, cfg)
		}, "Wrote table")
	}
}

// writeChangeLogsTable renders one row per change log entry.
func writeChangeLogsTable(w io.Writer, entries []schema.ChangeLogEntry, identity string, cfg *contract.Config) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintf(w, "No change log entries for %s\n", identity)
		return err
	}

	table := tablewriter.NewWriter(w)
	table.Header([]string{"ID", "When", "Revision", "Previous", "Changes"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignLeft
	})

	_, _, yellow := colorFuncs(cfg)
	var data [][]string
	for _, e := range entries {
		data = append(data, []string{
			strconv.FormatInt(e.ID, 10),
			humanize.Time(e.Timestamp),
			shortRevision(e.RevisionID),
			shortRevision(e.PreviousRevision),
			yellow(strings.Join(e.Changes, "\n")),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Showing %d change log entries for %s\n", len(entries), identity)
	return err
}

// writeChangeLogsCSV writes one row per change so the output stays flat.
func writeChangeLogsCSV(w io.Writer, entries []schema.ChangeLogEntry) error {
	header := []string{"id", "repository_identity", "revision_id", "previous_revision", "timestamp", "change"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, e := range entries {
			for _, change := range e.Changes {
				row := []string{
					strconv.FormatInt(e.ID, 10),
					e.RepositoryIdentity,
					e.RevisionID,
					e.PreviousRevision,
					e.Timestamp.Format(contract.DateTimeFormat),
					change,
				}
				if err := cw.Write(row); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// shortRevision abbreviates a revision the way git does, or returns "unknown".
func shortRevision(rev string) string {
	switch {
	case rev == "":
		return "unknown"
	case len(rev) > 7:
		return rev[:7]
	default:
		return rev
	}
}
