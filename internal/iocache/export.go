package iocache

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/huangsam/footprint/internal/contract"
	"github.com/huangsam/footprint/internal/parquet"
)

// ExecuteHistoryExport exports analysis records, their components and the
// change log to Parquet files named after outputFile.
func ExecuteHistoryExport(ctx context.Context, w io.Writer, store contract.RecordStore, outputFile, identity string) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}
	if store == nil {
		return errors.New("no history backend is configured")
	}

	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get history status: %w", err)
	}
	if status.TotalRecords == 0 {
		return errors.New("no analysis history found to export")
	}

	_, _ = fmt.Fprintf(w, "Exporting data from %s backend...\n", status.Backend)

	records, err := store.ListRecords(ctx, identity)
	if err != nil {
		return fmt.Errorf("failed to retrieve analysis records: %w", err)
	}
	changeLogs, err := store.ListChangeLogs(ctx, identity, 0)
	if err != nil {
		return fmt.Errorf("failed to retrieve change logs: %w", err)
	}

	recordRows := parquet.ConvertAnalysisRecords(records)
	recordsFile := outputFile + ".records.parquet"
	if err := parquet.WriteAnalysisRecordsParquet(recordRows, recordsFile); err != nil {
		return fmt.Errorf("failed to write analysis records: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d analysis records to: %s\n", len(recordRows), recordsFile)

	componentRows := parquet.ConvertComponents(records)
	componentsFile := outputFile + ".components.parquet"
	if err := parquet.WriteComponentsParquet(componentRows, componentsFile); err != nil {
		return fmt.Errorf("failed to write components: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d file components to: %s\n", len(componentRows), componentsFile)

	changeRows := parquet.ConvertChangeLogs(changeLogs)
	changesFile := outputFile + ".change_logs.parquet"
	if err := parquet.WriteChangeLogsParquet(changeRows, changesFile); err != nil {
		return fmt.Errorf("failed to write change logs: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d change log entries to: %s\n", len(changeRows), changesFile)

	return nil
}
