// Package parquet exports footprint analysis history to Parquet files using
// github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/parquet-go/parquet-go"

	"github.com/huangsam/footprint/schema"
)

// AnalysisRecord is one stored analysis flattened into columns.
// This struct maps to the footprint_analysis_records database table.
type AnalysisRecord struct {
	RecordID           int64     `parquet:"record_id,snappy"`
	RunID              string    `parquet:"run_id,snappy"`
	RepositoryIdentity string    `parquet:"repository_identity,snappy"`
	RevisionID         string    `parquet:"revision_id,snappy"`
	RecordedAt         time.Time `parquet:"recorded_at,snappy"`
	FilesAnalyzed      int32     `parquet:"files_analyzed,snappy"`
	FilesSkipped       int32     `parquet:"files_skipped,snappy"`

	MemoryBaseMB    float64 `parquet:"memory_base_mb,snappy"`
	MemoryPeakMB    float64 `parquet:"memory_peak_mb,snappy"`
	ScalingFactor   float64 `parquet:"scaling_factor,snappy"`
	EstimatedCores  float64 `parquet:"estimated_cores,snappy"`
	Complexity      string  `parquet:"complexity,snappy"`
	Parallelization string  `parquet:"parallelization,snappy"`
	NetworkCalls    int64   `parquet:"network_calls,snappy"`
	DataTransferMB  float64 `parquet:"data_transfer_mb,snappy"`
	BandwidthMbps   float64 `parquet:"bandwidth_mbps,snappy"`
	TransferType    string  `parquet:"transfer_type,snappy"`
	RemoteFiles     int32   `parquet:"remote_files,snappy"`
	HeuristicFiles  int32   `parquet:"heuristic_files,snappy"`

	// Recommendations keep the string encodings consumed by manifest templating
	RecommendedAllocation string `parquet:"recommended_allocation,snappy"`
	RecommendedCores      int32  `parquet:"recommended_cores,snappy"`
	PeakRequirement       string `parquet:"peak_requirement,snappy"`
	PriorityDimension     string `parquet:"priority_dimension,snappy"`
}

// Component is the estimate of one file inside a stored analysis.
type Component struct {
	RecordID       int64   `parquet:"record_id,snappy"`
	FilePath       string  `parquet:"file_path,snappy"`
	MemoryBaseMB   float64 `parquet:"memory_base_mb,snappy"`
	MemoryPeakMB   float64 `parquet:"memory_peak_mb,snappy"`
	EstimatedCores float64 `parquet:"estimated_cores,snappy"`
	Complexity     string  `parquet:"complexity,snappy"`
	BandwidthMbps  float64 `parquet:"bandwidth_mbps,snappy"`
	TransferType   string  `parquet:"transfer_type,snappy"`
	Provenance     string  `parquet:"provenance,snappy"`
}

// ChangeLog is one change log entry.
// This struct maps to the footprint_change_logs database table.
type ChangeLog struct {
	EntryID            int64     `parquet:"entry_id,snappy"`
	RepositoryIdentity string    `parquet:"repository_identity,snappy"`
	RevisionID         string    `parquet:"revision_id,snappy"`
	PreviousRevision   *string   `parquet:"previous_revision,optional,snappy"`
	RecordedAt         time.Time `parquet:"recorded_at,snappy"`
	Changes            []string  `parquet:"changes,list"`
}

// writeParquet writes rows to outputPath with a schema inferred from T.
func writeParquet[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := parquet.NewGenericWriter[T](file)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// WriteAnalysisRecordsParquet writes analysis records to a Parquet file.
func WriteAnalysisRecordsParquet(data []AnalysisRecord, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteComponentsParquet writes per-file components to a Parquet file.
func WriteComponentsParquet(data []Component, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteChangeLogsParquet writes change log entries to a Parquet file.
func WriteChangeLogsParquet(data []ChangeLog, outputPath string) error {
	return writeParquet(data, outputPath)
}

// ConvertAnalysisRecords flattens stored records for Parquet export.
func ConvertAnalysisRecords(records []schema.AnalysisRecord) []AnalysisRecord {
	result := make([]AnalysisRecord, len(records))
	for i, rec := range records {
		p := rec.Profile
		result[i] = AnalysisRecord{
			RecordID:              rec.ID,
			RunID:                 rec.RunID,
			RepositoryIdentity:    rec.RepositoryIdentity,
			RevisionID:            rec.RevisionID,
			RecordedAt:            rec.Timestamp,
			FilesAnalyzed:         int32(p.FilesAnalyzed),
			FilesSkipped:          int32(p.FilesSkipped),
			MemoryBaseMB:          p.Memory.BaseMB,
			MemoryPeakMB:          p.Memory.PeakMB,
			ScalingFactor:         p.Memory.ScalingFactor,
			EstimatedCores:        p.CPU.EstimatedCores,
			Complexity:            p.CPU.Complexity.String(),
			Parallelization:       p.CPU.Parallelization.String(),
			NetworkCalls:          int64(p.Bandwidth.CallsPerExecution),
			DataTransferMB:        p.Bandwidth.DataTransferMB,
			BandwidthMbps:         p.Bandwidth.BandwidthMbps,
			TransferType:          p.Bandwidth.TransferType.String(),
			RemoteFiles:           int32(p.Sources.Remote),
			HeuristicFiles:        int32(p.Sources.Heuristic),
			RecommendedAllocation: rec.Recommendations.Memory.RecommendedAllocation,
			RecommendedCores:      int32(rec.Recommendations.CPU.RecommendedCores),
			PeakRequirement:       rec.Recommendations.Bandwidth.PeakRequirement,
			PriorityDimension:     string(rec.Recommendations.Scaling.PriorityDimension),
		}
	}
	return result
}

// ConvertComponents flattens the per-file estimates of stored records.
func ConvertComponents(records []schema.AnalysisRecord) []Component {
	var result []Component
	for _, rec := range records {
		for _, c := range rec.Profile.Components {
			e := c.Estimate
			result = append(result, Component{
				RecordID:       rec.ID,
				FilePath:       c.Path,
				MemoryBaseMB:   e.Memory.BaseMB,
				MemoryPeakMB:   e.Memory.PeakMB,
				EstimatedCores: e.CPU.EstimatedCores,
				Complexity:     e.CPU.Complexity.String(),
				BandwidthMbps:  e.Bandwidth.BandwidthMbps,
				TransferType:   e.Bandwidth.TransferType.String(),
				Provenance:     string(e.Provenance),
			})
		}
	}
	return result
}

// ConvertChangeLogs converts change log entries for Parquet export. The first
// entry of a repository has no previous revision.
func ConvertChangeLogs(entries []schema.ChangeLogEntry) []ChangeLog {
	result := make([]ChangeLog, len(entries))
	for i, e := range entries {
		var prev *string
		if e.PreviousRevision != "" {
			p := e.PreviousRevision
			prev = &p
		}
		result[i] = ChangeLog{
			EntryID:            e.ID,
			RepositoryIdentity: e.RepositoryIdentity,
			RevisionID:         e.RevisionID,
			PreviousRevision:   prev,
			RecordedAt:         e.Timestamp,
			Changes:            e.Changes,
		}
	}
	return result
}
