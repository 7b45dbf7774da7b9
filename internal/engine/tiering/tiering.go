// Package tiering assigns application priority tiers and estimates the
// strategic value and effort of a scholarship.
package tiering

import (
	"math"

	"scholarship-workers/internal/models"
)

// Match score thresholds. The lower bound of each tier is inclusive.
const (
	MustApplyThreshold   = 90.0
	ShouldApplyThreshold = 75.0
	ConsiderThreshold    = 60.0
)

// Adjustment thresholds.
const (
	LowProbabilityThreshold = 20.0
	PromoteStrategicValue   = 80.0
	PromoteProbability      = 50.0
)

// Assign maps a scored match to its tier. Scholarships that failed the
// eligibility filter never reach Assign; they are tiered INELIGIBLE by the
// caller. MUST_APPLY depends on the match score alone.
func Assign(matchScore, probability, strategicValue float64) models.PriorityTier {
	tier := base(matchScore)
	if tier == models.TierMustApply {
		return tier
	}

	switch {
	case probability < LowProbabilityThreshold:
		tier = demote(tier)
	case tier == models.TierConsider && strategicValue >= PromoteStrategicValue && probability >= PromoteProbability:
		tier = models.TierShouldApply
	}
	return tier
}

func base(matchScore float64) models.PriorityTier {
	switch {
	case matchScore >= MustApplyThreshold:
		return models.TierMustApply
	case matchScore >= ShouldApplyThreshold:
		return models.TierShouldApply
	case matchScore >= ConsiderThreshold:
		return models.TierConsider
	default:
		return models.TierLowPriority
	}
}

func demote(t models.PriorityTier) models.PriorityTier {
	switch t {
	case models.TierShouldApply:
		return models.TierConsider
	default:
		return models.TierLowPriority
	}
}

// Effort hours per application requirement.
const (
	hoursBase           = 1.0
	hoursPerEssay       = 3.0
	hoursPerRecommender = 1.0
	hoursTranscript     = 0.5
	hoursInterview      = 2.0

	lowEffortMaxHours    = 3.0
	mediumEffortMaxHours = 8.0
)

// Effort estimates the hours an application takes and buckets them.
func Effort(r models.ApplicationRequirements) (models.EffortLevel, float64) {
	hours := hoursBase

	essays := 0
	if r.EssayCount != nil && *r.EssayCount > 0 {
		essays = *r.EssayCount
	} else if r.EssayRequired != nil && *r.EssayRequired {
		essays = 1
	}
	hours += float64(essays) * hoursPerEssay

	if r.RecommendationsRequired != nil && *r.RecommendationsRequired > 0 {
		hours += float64(*r.RecommendationsRequired) * hoursPerRecommender
	}
	if r.TranscriptRequired != nil && *r.TranscriptRequired {
		hours += hoursTranscript
	}
	if r.InterviewRequired != nil && *r.InterviewRequired {
		hours += hoursInterview
	}

	switch {
	case hours <= lowEffortMaxHours:
		return models.EffortLow, hours
	case hours <= mediumEffortMaxHours:
		return models.EffortMedium, hours
	default:
		return models.EffortHigh, hours
	}
}

// Strategic value components (0-100 total).
const (
	amountPoints        = 60.0
	amountCap           = 10000.0
	unknownAmountPoints = 30.0
	renewablePoints     = 20.0
)

var effortPoints = map[models.EffortLevel]float64{
	models.EffortLow:    20,
	models.EffortMedium: 10,
	models.EffortHigh:   0,
}

// StrategicValue rates the payoff of applying: award size, renewability and
// how little effort the application takes.
func StrategicValue(s *models.Scholarship, effort models.EffortLevel) float64 {
	v := unknownAmountPoints
	if s.AwardAmount != nil {
		v = amountPoints * math.Max(0, math.Min(1, float64(*s.AwardAmount)/amountCap))
	}
	if s.Renewable != nil && *s.Renewable {
		v += renewablePoints
	}
	v += effortPoints[effort]
	return math.Round(math.Min(100, v)*10) / 10
}
