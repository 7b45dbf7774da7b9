// internal/models/scholarship.go
package models

import (
	"time"

	"scholarship-workers/internal/common/textutil"
)

type CompetitionLevel string

const (
	CompetitionLow    CompetitionLevel = "low"
	CompetitionMedium CompetitionLevel = "medium"
	CompetitionHigh   CompetitionLevel = "high"
)

type Scholarship struct {
	ID               string                  `json:"id"`
	Name             string                  `json:"name"`
	Provider         string                  `json:"provider"`
	Description      *string                 `json:"description,omitempty"`
	URL              *string                 `json:"url,omitempty"`
	AwardAmount      *int                    `json:"awardAmount,omitempty"`
	NumberOfAwards   *int                    `json:"numberOfAwards,omitempty"`
	Deadline         *time.Time              `json:"deadline,omitempty"`
	Renewable        *bool                   `json:"renewable,omitempty"`
	CompetitionLevel *CompetitionLevel       `json:"competitionLevel,omitempty"`
	Requirements     ApplicationRequirements `json:"requirements"`
	Eligibility      EligibilityCriteria     `json:"eligibility"`
	Tags             []string                `json:"tags,omitempty"`
	LastVerified     *time.Time              `json:"lastVerified,omitempty"`
	CreatedAt        time.Time               `json:"createdAt"`
	UpdatedAt        time.Time               `json:"updatedAt"`
}

type ApplicationRequirements struct {
	EssayRequired           *bool `json:"essayRequired,omitempty"`
	EssayCount              *int  `json:"essayCount,omitempty"`
	RecommendationsRequired *int  `json:"recommendationsRequired,omitempty"`
	TranscriptRequired      *bool `json:"transcriptRequired,omitempty"`
	InterviewRequired       *bool `json:"interviewRequired,omitempty"`
}

// EligibilityCriteria holds six independent blocks. A nil block places no
// constraint on its dimension.
type EligibilityCriteria struct {
	Academic    *AcademicCriteria    `json:"academic,omitempty"`
	Demographic *DemographicCriteria `json:"demographic,omitempty"`
	Major       *MajorCriteria       `json:"major,omitempty"`
	Experience  *ExperienceCriteria  `json:"experience,omitempty"`
	Financial   *FinancialCriteria   `json:"financial,omitempty"`
	Special     *SpecialCriteria     `json:"special,omitempty"`
}

type AcademicCriteria struct {
	MinGPA *float64 `json:"minGpa,omitempty"`
	MaxGPA *float64 `json:"maxGpa,omitempty"`
	MinSAT *int     `json:"minSat,omitempty"`
	MaxSAT *int     `json:"maxSat,omitempty"`
	MinACT *int     `json:"minAct,omitempty"`
	MaxACT *int     `json:"maxAct,omitempty"`
	// ClassRankPercentile admits students in the top N percent of their class.
	ClassRankPercentile *float64 `json:"classRankPercentile,omitempty"`
}

func (c *AcademicCriteria) HasConstraints() bool {
	return c != nil && (c.MinGPA != nil || c.MaxGPA != nil || c.MinSAT != nil || c.MaxSAT != nil ||
		c.MinACT != nil || c.MaxACT != nil || c.ClassRankPercentile != nil)
}

type DemographicCriteria struct {
	Gender         *string  `json:"gender,omitempty"`
	Ethnicities    []string `json:"ethnicities,omitempty"`
	MinAge         *int     `json:"minAge,omitempty"`
	MaxAge         *int     `json:"maxAge,omitempty"`
	States         []string `json:"states,omitempty"`
	ResidencyState *string  `json:"residencyState,omitempty"`
}

func (c *DemographicCriteria) HasConstraints() bool {
	return c != nil && (!textutil.IsBlank(c.Gender) || len(c.Ethnicities) > 0 || c.MinAge != nil ||
		c.MaxAge != nil || len(c.States) > 0 || !textutil.IsBlank(c.ResidencyState))
}

type MajorCriteria struct {
	EligibleMajors []string `json:"eligibleMajors,omitempty"`
	ExcludedMajors []string `json:"excludedMajors,omitempty"`
	RequiredField  *string  `json:"requiredField,omitempty"`
	CareerKeywords []string `json:"careerKeywords,omitempty"`
}

func (c *MajorCriteria) HasConstraints() bool {
	return c != nil && (len(c.EligibleMajors) > 0 || len(c.ExcludedMajors) > 0 ||
		!textutil.IsBlank(c.RequiredField) || len(c.CareerKeywords) > 0)
}

type ExperienceCriteria struct {
	MinVolunteerHours  *int     `json:"minVolunteerHours,omitempty"`
	RequiredActivities []string `json:"requiredActivities,omitempty"`
	LeadershipRequired *bool    `json:"leadershipRequired,omitempty"`
	MinWorkMonths      *int     `json:"minWorkMonths,omitempty"`
}

func (c *ExperienceCriteria) HasConstraints() bool {
	return c != nil && (c.MinVolunteerHours != nil || len(c.RequiredActivities) > 0 ||
		isTrue(c.LeadershipRequired) || c.MinWorkMonths != nil)
}

type FinancialCriteria struct {
	NeedRequired *bool               `json:"needRequired,omitempty"`
	MaxEFC       *int                `json:"maxEfc,omitempty"`
	PellRequired *bool               `json:"pellRequired,omitempty"`
	NeedLevel    *FinancialNeedLevel `json:"needLevel,omitempty"`
}

func (c *FinancialCriteria) HasConstraints() bool {
	return c != nil && (isTrue(c.NeedRequired) || c.MaxEFC != nil || isTrue(c.PellRequired) || c.NeedLevel != nil)
}

type SpecialCriteria struct {
	FirstGenRequired   *bool    `json:"firstGenRequired,omitempty"`
	MilitaryRequired   *bool    `json:"militaryRequired,omitempty"`
	DisabilityRequired *bool    `json:"disabilityRequired,omitempty"`
	Citizenship        []string `json:"citizenship,omitempty"`
	// OtherRequirements is free text shown to students; it is never evaluated.
	OtherRequirements *string `json:"otherRequirements,omitempty"`
}

func (c *SpecialCriteria) HasConstraints() bool {
	return c != nil && (isTrue(c.FirstGenRequired) || isTrue(c.MilitaryRequired) ||
		isTrue(c.DisabilityRequired) || len(c.Citizenship) > 0)
}

func isTrue(b *bool) bool {
	return b != nil && *b
}
