// internal/workers/matching/score-scholarship-matches/models.go
package scorescholarshipmatches

import (
	"time"

	"scholarship-workers/internal/engine/eligibility"
	"scholarship-workers/internal/models"
)

type Input struct {
	StudentID      string          `json:"studentId"`
	Profile        *models.Profile `json:"profile,omitempty"`
	ScholarshipIDs []string        `json:"scholarshipIds,omitempty"`
	LookbackDays   *int            `json:"lookbackDays,omitempty"`
	EssayQuality   *float64        `json:"essayQuality,omitempty"`
	AsOf           *time.Time      `json:"asOf,omitempty"`
}

type Output struct {
	StudentID       string                  `json:"studentId"`
	ProfileStrength float64                 `json:"profileStrength"`
	Candidates      int                     `json:"candidates"`
	Scored          int                     `json:"scored"`
	Upserted        int                     `json:"upserted"`
	TierCounts      map[string]int          `json:"tierCounts"`
	Excluded        []eligibility.Exclusion `json:"excluded"`
	NotifiableIDs   []string                `json:"notifiableIds"`
	PriorityMatches []models.MatchSummary   `json:"priorityMatches"`
	HasPriority     bool                    `json:"hasPriorityMatches"`
}
