package core

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/huangsam/footprint/internal/contract"
	"github.com/huangsam/footprint/schema"
)

// shortRevisionLen is how much of a revision hash change messages show.
const shortRevisionLen = 7

// ErrMalformedRecord marks a stored record whose recommendations cannot be read.
var ErrMalformedRecord = errors.New("malformed analysis record")

// CompareRecords lists the differences between the current record and the
// previous one. A nil previous record is the initial state, not an error.
// Checks run in a fixed order: revision, new files, removed files, memory,
// bandwidth, cores, provenance counts.
func CompareRecords(cur, prev *schema.AnalysisRecord, threshold float64) (schema.ChangeReport, error) {
	if prev == nil {
		return schema.ChangeReport{Changes: []string{}, Message: schema.NoPreviousMessage}, nil
	}
	if cur == nil {
		return schema.ChangeReport{}, errors.New("current record is nil")
	}

	changes := []string{}

	// 1. Revision
	if cur.RevisionID != prev.RevisionID {
		changes = append(changes, fmt.Sprintf("New revision: %s (prev: %s)", shortRevision(cur.RevisionID), shortRevision(prev.RevisionID)))
	}

	// 2. File sets in both directions
	curFiles, prevFiles := cur.FilePaths(), prev.FilePaths()
	if added := difference(curFiles, prevFiles); len(added) > 0 {
		changes = append(changes, "New files: "+strings.Join(added, ", "))
	}
	if removed := difference(prevFiles, curFiles); len(removed) > 0 {
		changes = append(changes, "Removed files: "+strings.Join(removed, ", "))
	}

	// 3. Memory and bandwidth by relative threshold
	curMem, prevMem, err := parsePair(ParseMB, cur.Recommendations.Memory.RecommendedAllocation, prev.Recommendations.Memory.RecommendedAllocation)
	if err != nil {
		return schema.ChangeReport{}, fmt.Errorf("memory recommendation: %w", err)
	}
	if exceedsThreshold(curMem, prevMem, threshold) {
		changes = append(changes, fmt.Sprintf("Memory: %s (prev: %s)", FormatMB(curMem), FormatMB(prevMem)))
	}

	curBW, prevBW, err := parsePair(ParseMbps, cur.Recommendations.Bandwidth.PeakRequirement, prev.Recommendations.Bandwidth.PeakRequirement)
	if err != nil {
		return schema.ChangeReport{}, fmt.Errorf("bandwidth recommendation: %w", err)
	}
	if exceedsThreshold(curBW, prevBW, threshold) {
		changes = append(changes, fmt.Sprintf("Bandwidth: %s (prev: %s)", FormatMbps(curBW), FormatMbps(prevBW)))
	}

	// 4. Cores are discrete, any difference counts
	if cur.Recommendations.CPU.RecommendedCores != prev.Recommendations.CPU.RecommendedCores {
		changes = append(changes, fmt.Sprintf("CPU cores: %d (prev: %d)", cur.Recommendations.CPU.RecommendedCores, prev.Recommendations.CPU.RecommendedCores))
	}

	// 5. Provenance counts
	for _, p := range schema.AllProvenances {
		c, pr := cur.Profile.Sources.Get(p), prev.Profile.Sources.Get(p)
		if c != pr {
			changes = append(changes, fmt.Sprintf("%s analysis: %d (prev: %d)", provenanceTitle(p), c, pr))
		}
	}

	message := schema.NoChangesMessage
	if len(changes) > 0 {
		message = schema.ChangesMessage
	}
	return schema.ChangeReport{Changes: changes, Message: message}, nil
}

// exceedsThreshold reports |cur-prev|/prev > threshold. A previous value of
// zero is never used as a divisor and never reports.
func exceedsThreshold(cur, prev, threshold float64) bool {
	if prev <= 0 {
		return false
	}
	return math.Abs(cur-prev)/prev > threshold
}

func parsePair(parse func(string) (float64, error), cur, prev string) (float64, float64, error) {
	c, err := parse(cur)
	if err != nil {
		return 0, 0, fmt.Errorf("current: %w", err)
	}
	p, err := parse(prev)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: previous: %w", ErrMalformedRecord, err)
	}
	return c, p, nil
}

// difference returns the sorted elements of a that are missing from b. Both
// inputs must be sorted.
func difference(a, b []string) []string {
	var out []string
	i, j := 0, 0
	for i < len(a) {
		switch {
		case j >= len(b) || a[i] < b[j]:
			out = append(out, a[i])
			i++
		case a[i] > b[j]:
			j++
		default:
			i++
			j++
		}
	}
	return out
}

func shortRevision(rev string) string {
	if rev == "" {
		return "unknown"
	}
	if len(rev) > shortRevisionLen {
		return rev[:shortRevisionLen]
	}
	return rev
}

func provenanceTitle(p schema.Provenance) string {
	s := string(p)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// ChangeDetector compares a new record against the latest stored record of
// the same repository and logs the changes it finds.
type ChangeDetector struct {
	store     contract.RecordStore
	threshold float64
	now       func() time.Time
}

// NewChangeDetector creates a ChangeDetector. A threshold of zero reports any
// memory or bandwidth change; a negative threshold uses the default.
func NewChangeDetector(store contract.RecordStore, threshold float64) *ChangeDetector {
	if threshold < 0 {
		threshold = contract.DefaultChangeThreshold
	}
	return &ChangeDetector{store: store, threshold: threshold, now: time.Now}
}

// Compare loads the latest record for cur's repository and compares without
// writing anything.
func (d *ChangeDetector) Compare(ctx context.Context, cur *schema.AnalysisRecord) (schema.ChangeReport, *schema.AnalysisRecord, error) {
	prev, err := d.store.Latest(ctx, cur.RepositoryIdentity)
	if err != nil {
		return schema.ChangeReport{}, nil, fmt.Errorf("failed to load previous analysis: %w", err)
	}
	report, err := CompareRecords(cur, prev, d.threshold)
	if err != nil {
		return schema.ChangeReport{}, prev, err
	}
	return report, prev, nil
}

// Detect compares cur against the latest stored record and appends a change
// log entry when anything changed.
func (d *ChangeDetector) Detect(ctx context.Context, cur *schema.AnalysisRecord) (schema.ChangeReport, error) {
	report, prev, err := d.Compare(ctx, cur)
	if err != nil {
		return schema.ChangeReport{}, err
	}
	if !report.HasChanges() {
		return report, nil
	}

	entry := schema.ChangeLogEntry{
		RepositoryIdentity: cur.RepositoryIdentity,
		RevisionID:         cur.RevisionID,
		PreviousRevision:   prev.RevisionID,
		Timestamp:          d.now().UTC(),
		Changes:            report.Changes,
	}
	if err := d.store.AppendChangeLog(ctx, entry); err != nil {
		return report, fmt.Errorf("failed to append change log: %w", err)
	}
	logrus.WithFields(logrus.Fields{"repository": cur.RepositoryIdentity, "changes": len(report.Changes)}).Info("Change log updated")
	return report, nil
}
