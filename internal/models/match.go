// internal/models/match.go
package models

import "time"

type PriorityTier string

const (
	TierMustApply   PriorityTier = "MUST_APPLY"
	TierShouldApply PriorityTier = "SHOULD_APPLY"
	TierConsider    PriorityTier = "CONSIDER"
	TierLowPriority PriorityTier = "LOW_PRIORITY"
	TierIneligible  PriorityTier = "INELIGIBLE"
)

// Rank orders tiers from INELIGIBLE (0) to MUST_APPLY (4).
func (t PriorityTier) Rank() int {
	switch t {
	case TierMustApply:
		return 4
	case TierShouldApply:
		return 3
	case TierConsider:
		return 2
	case TierLowPriority:
		return 1
	default:
		return 0
	}
}

// Notifiable reports whether a match in this tier may trigger outreach.
func (t PriorityTier) Notifiable() bool {
	return t == TierMustApply || t == TierShouldApply
}

type EffortLevel string

const (
	EffortLow    EffortLevel = "LOW"
	EffortMedium EffortLevel = "MEDIUM"
	EffortHigh   EffortLevel = "HIGH"
)

// DimensionScores holds the per-dimension fit. A nil score means the
// scholarship places no constraint on that dimension.
type DimensionScores struct {
	Academic    *float64 `json:"academic,omitempty"`
	Demographic *float64 `json:"demographic,omitempty"`
	Major       *float64 `json:"major,omitempty"`
	Experience  *float64 `json:"experience,omitempty"`
	Financial   *float64 `json:"financial,omitempty"`
	Special     *float64 `json:"special,omitempty"`
}

type SuccessProbability struct {
	Probability         float64 `json:"probability"`
	UsingDefaultProfile bool    `json:"usingDefaultProfile"`
	UsingDefaultMatch   bool    `json:"usingDefaultMatch"`
	UsingDefaultEssay   bool    `json:"usingDefaultEssay,omitempty"`
}

type Match struct {
	StudentID          string             `json:"studentId"`
	ScholarshipID      string             `json:"scholarshipId"`
	Dimensions         DimensionScores    `json:"dimensions"`
	OverallScore       float64            `json:"overallScore"`
	SuccessProbability SuccessProbability `json:"successProbability"`
	PriorityTier       PriorityTier       `json:"priorityTier"`
	StrategicValue     float64            `json:"strategicValue"`
	Effort             EffortLevel        `json:"effort"`
	EstimatedHours     float64            `json:"estimatedHours"`
	ComputedAt         time.Time          `json:"computedAt"`
}

type DuplicateSource string

const (
	DuplicateSourceCatalog DuplicateSource = "catalog"
	DuplicateSourceBatch   DuplicateSource = "batch"
)

// DuplicateMatch links an incoming record to a catalog record or to an
// earlier record in the same batch. It is never persisted.
type DuplicateMatch struct {
	Index      int             `json:"index"`
	ExistingID string          `json:"existingId,omitempty"`
	BatchIndex *int            `json:"batchIndex,omitempty"`
	Source     DuplicateSource `json:"source"`
	Similarity float64         `json:"similarity"`
	IsExact    bool            `json:"isExact"`
}

// MatchSummary is the compact view of a match handed to downstream process
// steps such as notifications.
type MatchSummary struct {
	ScholarshipID  string       `json:"scholarshipId"`
	Name           string       `json:"name"`
	Provider       string       `json:"provider"`
	PriorityTier   PriorityTier `json:"priorityTier"`
	OverallScore   float64      `json:"overallScore"`
	Probability    float64      `json:"probability"`
	StrategicValue float64      `json:"strategicValue"`
	AwardAmount    *int         `json:"awardAmount,omitempty"`
	Deadline       *time.Time   `json:"deadline,omitempty"`
}

// Summarize pairs a match with its scholarship.
func Summarize(m Match, s Scholarship) MatchSummary {
	return MatchSummary{
		ScholarshipID:  m.ScholarshipID,
		Name:           s.Name,
		Provider:       s.Provider,
		PriorityTier:   m.PriorityTier,
		OverallScore:   m.OverallScore,
		Probability:    m.SuccessProbability.Probability,
		StrategicValue: m.StrategicValue,
		AwardAmount:    s.AwardAmount,
		Deadline:       s.Deadline,
	}
}
