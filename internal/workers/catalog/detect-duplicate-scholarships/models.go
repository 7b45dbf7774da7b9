// internal/workers/catalog/detect-duplicate-scholarships/models.go
package detectduplicatescholarships

import (
	"scholarship-workers/internal/engine/dedup"
	"scholarship-workers/internal/ingest"
	"scholarship-workers/internal/models"
)

// Input options are optional; omitted ones take the detector defaults.
type Input struct {
	Candidates       []models.Scholarship `json:"candidates"`
	Threshold        *float64             `json:"threshold,omitempty"`
	CheckExisting    *bool                `json:"checkExisting,omitempty"`
	CheckWithinArray *bool                `json:"checkWithinArray,omitempty"`
	IncludeMerged    bool                 `json:"includeMerged,omitempty"`
}

type Output struct {
	Duplicates    []models.DuplicateMatch `json:"duplicates"`
	Summary       dedup.Summary           `json:"summary"`
	HasDuplicates bool                    `json:"hasDuplicates"`
	UniqueIndexes []int                   `json:"uniqueIndexes"`
	Merged        []ingest.MergedRecord   `json:"merged,omitempty"`
}
