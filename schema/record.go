package schema

import (
	"sort"
	"time"
)

// AnalysisRecord is one persisted analysis of a repository. Records are
// append-only and never mutated after they are written.
type AnalysisRecord struct {
	ID                 int64               `json:"id"`
	RunID              string              `json:"run_id"`
	RepositoryIdentity string              `json:"repository_identity"`
	RevisionID         string              `json:"revision_id"`
	Timestamp          time.Time           `json:"timestamp"`
	FileTree           map[string][]string `json:"file_tree"`
	Profile            RepositoryProfile   `json:"profile"`
	Recommendations    RecommendationSet   `json:"recommendations"`
}

// FilePaths flattens the file tree into sorted slash-separated paths.
func (r AnalysisRecord) FilePaths() []string {
	return FlattenTree(r.FileTree)
}

// FlattenTree joins every directory with its file names. The root directory is "/".
func FlattenTree(tree map[string][]string) []string {
	var paths []string
	for dir, files := range tree {
		for _, f := range files {
			if dir == "/" || dir == "" {
				paths = append(paths, f)
			} else {
				paths = append(paths, dir+"/"+f)
			}
		}
	}
	sort.Strings(paths)
	return paths
}

// ChangeReport lists the differences between two analyses.
type ChangeReport struct {
	Changes []string `json:"changes"`
	Message string   `json:"message"`
}

// Change report messages.
const (
	NoPreviousMessage = "No previous analysis found."
	ChangesMessage    = "Changes detected."
	NoChangesMessage  = "No changes."
)

// HasChanges reports whether any change was detected.
func (c ChangeReport) HasChanges() bool {
	return len(c.Changes) > 0
}

// ChangeLogEntry is one row of the append-only change log.
type ChangeLogEntry struct {
	ID                 int64     `json:"id"`
	RepositoryIdentity string    `json:"repository_identity"`
	RevisionID         string    `json:"revision_id"`
	PreviousRevision   string    `json:"previous_revision"`
	Timestamp          time.Time `json:"timestamp"`
	Changes            []string  `json:"changes"`
}
