// internal/workers/catalog/import-scholarships/models.go
package importscholarships

import (
	"encoding/json"

	"scholarship-workers/internal/engine/dedup"
	"scholarship-workers/internal/store"
)

type Input struct {
	Candidates       []json.RawMessage `json:"candidates"`
	ChunkSize        *int              `json:"chunkSize,omitempty"`
	Threshold        *float64          `json:"threshold,omitempty"`
	SkipExpired      *bool             `json:"skipExpired,omitempty"`
	CheckExisting    *bool             `json:"checkExisting,omitempty"`
	CheckWithinArray *bool             `json:"checkWithinArray,omitempty"`
}

// InvalidRecord is a candidate rejected before deduplication.
type InvalidRecord struct {
	Index  int      `json:"index"`
	Errors []string `json:"errors"`
}

type SkippedRecord struct {
	Index  int    `json:"index"`
	Reason string `json:"reason"`
}

// ChunkReport extends a chunk result with the candidate position of the
// record that failed it.
type ChunkReport struct {
	store.ChunkResult
	FailedCandidate *int `json:"failedCandidate,omitempty"`
}

type Output struct {
	Received       int             `json:"received"`
	Accepted       int             `json:"accepted"`
	Invalid        []InvalidRecord `json:"invalid"`
	Skipped        []SkippedRecord `json:"skipped"`
	Duplicates     dedup.Summary   `json:"duplicates"`
	Created        int             `json:"created"`
	MergedExisting int             `json:"mergedExisting"`
	Folded         int             `json:"folded"`
	Chunks         []ChunkReport   `json:"chunks"`
	FailedChunks   int             `json:"failedChunks"`
	ImportedIDs    []string        `json:"importedIds"`
	Indexed        int             `json:"indexed"`
	IndexError     string          `json:"indexError,omitempty"`
}
