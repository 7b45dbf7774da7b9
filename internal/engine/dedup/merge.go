package dedup

import (
	"strings"
	"time"
	"unicode/utf8"

	"scholarship-workers/internal/common/textutil"
	"scholarship-workers/internal/models"
)

// Merger folds an incoming record into an existing one field by field.
type Merger struct {
	now func() time.Time
}

// NewMerger builds a Merger stamping LastVerified from now. A nil clock uses
// time.Now in UTC.
func NewMerger(now func() time.Time) *Merger {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Merger{now: now}
}

// Merge returns existing with incoming folded in. Identity fields (ID,
// CreatedAt) stay with existing.
func (m *Merger) Merge(existing, incoming models.Scholarship) models.Scholarship {
	stamp := m.now()

	out := models.Scholarship{
		ID:               firstNonBlank(existing.ID, incoming.ID),
		Name:             mergeString(existing.Name, incoming.Name),
		Provider:         mergeString(existing.Provider, incoming.Provider),
		Description:      mergeStringPtr(existing.Description, incoming.Description),
		URL:              mergeStringPtr(existing.URL, incoming.URL),
		AwardAmount:      mergeIntPtr(existing.AwardAmount, incoming.AwardAmount),
		NumberOfAwards:   mergeIntPtr(existing.NumberOfAwards, incoming.NumberOfAwards),
		Deadline:         incomingPtr(existing.Deadline, incoming.Deadline),
		Renewable:        incomingPtr(existing.Renewable, incoming.Renewable),
		CompetitionLevel: incomingPtr(existing.CompetitionLevel, incoming.CompetitionLevel),
		Requirements:     mergeRequirements(existing.Requirements, incoming.Requirements),
		Eligibility:      mergeEligibility(existing.Eligibility, incoming.Eligibility),
		Tags:             textutil.UnionFold(existing.Tags, incoming.Tags),
		LastVerified:     &stamp,
		CreatedAt:        existing.CreatedAt,
		UpdatedAt:        stamp,
	}
	if out.CreatedAt.IsZero() {
		out.CreatedAt = incoming.CreatedAt
	}
	return out
}

// String strategy: blank never overwrites, the longer value wins, incoming
// wins ties.
func mergeString(existing, incoming string) string {
	switch {
	case strings.TrimSpace(incoming) == "":
		return existing
	case strings.TrimSpace(existing) == "":
		return incoming
	case utf8.RuneCountInString(existing) > utf8.RuneCountInString(incoming):
		return existing
	default:
		return incoming
	}
}

func mergeStringPtr(existing, incoming *string) *string {
	switch {
	case textutil.IsBlank(incoming):
		return existing
	case textutil.IsBlank(existing):
		return incoming
	}
	v := mergeString(*existing, *incoming)
	return &v
}

// Number strategy: the larger value wins.
func mergeIntPtr(existing, incoming *int) *int {
	switch {
	case incoming == nil:
		return existing
	case existing == nil:
		return incoming
	}
	v := max(*existing, *incoming)
	return &v
}

func mergeFloatPtr(existing, incoming *float64) *float64 {
	switch {
	case incoming == nil:
		return existing
	case existing == nil:
		return incoming
	}
	v := max(*existing, *incoming)
	return &v
}

// incomingPtr takes the incoming value unless it is nil.
func incomingPtr[T any](existing, incoming *T) *T {
	if incoming != nil {
		return incoming
	}
	return existing
}

func firstNonBlank(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func mergeRequirements(existing, incoming models.ApplicationRequirements) models.ApplicationRequirements {
	return models.ApplicationRequirements{
		EssayRequired:           incomingPtr(existing.EssayRequired, incoming.EssayRequired),
		EssayCount:              mergeIntPtr(existing.EssayCount, incoming.EssayCount),
		RecommendationsRequired: mergeIntPtr(existing.RecommendationsRequired, incoming.RecommendationsRequired),
		TranscriptRequired:      incomingPtr(existing.TranscriptRequired, incoming.TranscriptRequired),
		InterviewRequired:       incomingPtr(existing.InterviewRequired, incoming.InterviewRequired),
	}
}

func mergeEligibility(existing, incoming models.EligibilityCriteria) models.EligibilityCriteria {
	return models.EligibilityCriteria{
		Academic:    mergeBlock(existing.Academic, incoming.Academic, mergeAcademic),
		Demographic: mergeBlock(existing.Demographic, incoming.Demographic, mergeDemographic),
		Major:       mergeBlock(existing.Major, incoming.Major, mergeMajor),
		Experience:  mergeBlock(existing.Experience, incoming.Experience, mergeExperience),
		Financial:   mergeBlock(existing.Financial, incoming.Financial, mergeFinancial),
		Special:     mergeBlock(existing.Special, incoming.Special, mergeSpecial),
	}
}

// mergeBlock recurses into a nested criteria block when both sides have one.
func mergeBlock[T any](existing, incoming *T, merge func(a, b *T) *T) *T {
	switch {
	case incoming == nil:
		return existing
	case existing == nil:
		return incoming
	}
	return merge(existing, incoming)
}

func mergeAcademic(a, b *models.AcademicCriteria) *models.AcademicCriteria {
	return &models.AcademicCriteria{
		MinGPA:              mergeFloatPtr(a.MinGPA, b.MinGPA),
		MaxGPA:              mergeFloatPtr(a.MaxGPA, b.MaxGPA),
		MinSAT:              mergeIntPtr(a.MinSAT, b.MinSAT),
		MaxSAT:              mergeIntPtr(a.MaxSAT, b.MaxSAT),
		MinACT:              mergeIntPtr(a.MinACT, b.MinACT),
		MaxACT:              mergeIntPtr(a.MaxACT, b.MaxACT),
		ClassRankPercentile: mergeFloatPtr(a.ClassRankPercentile, b.ClassRankPercentile),
	}
}

func mergeDemographic(a, b *models.DemographicCriteria) *models.DemographicCriteria {
	return &models.DemographicCriteria{
		Gender:         mergeStringPtr(a.Gender, b.Gender),
		Ethnicities:    textutil.UnionFold(a.Ethnicities, b.Ethnicities),
		MinAge:         mergeIntPtr(a.MinAge, b.MinAge),
		MaxAge:         mergeIntPtr(a.MaxAge, b.MaxAge),
		States:         textutil.UnionFold(a.States, b.States),
		ResidencyState: mergeStringPtr(a.ResidencyState, b.ResidencyState),
	}
}

func mergeMajor(a, b *models.MajorCriteria) *models.MajorCriteria {
	return &models.MajorCriteria{
		EligibleMajors: textutil.UnionFold(a.EligibleMajors, b.EligibleMajors),
		ExcludedMajors: textutil.UnionFold(a.ExcludedMajors, b.ExcludedMajors),
		RequiredField:  mergeStringPtr(a.RequiredField, b.RequiredField),
		CareerKeywords: textutil.UnionFold(a.CareerKeywords, b.CareerKeywords),
	}
}

func mergeExperience(a, b *models.ExperienceCriteria) *models.ExperienceCriteria {
	return &models.ExperienceCriteria{
		MinVolunteerHours:  mergeIntPtr(a.MinVolunteerHours, b.MinVolunteerHours),
		RequiredActivities: textutil.UnionFold(a.RequiredActivities, b.RequiredActivities),
		LeadershipRequired: incomingPtr(a.LeadershipRequired, b.LeadershipRequired),
		MinWorkMonths:      mergeIntPtr(a.MinWorkMonths, b.MinWorkMonths),
	}
}

func mergeFinancial(a, b *models.FinancialCriteria) *models.FinancialCriteria {
	return &models.FinancialCriteria{
		NeedRequired: incomingPtr(a.NeedRequired, b.NeedRequired),
		MaxEFC:       mergeIntPtr(a.MaxEFC, b.MaxEFC),
		PellRequired: incomingPtr(a.PellRequired, b.PellRequired),
		NeedLevel:    incomingPtr(a.NeedLevel, b.NeedLevel),
	}
}

func mergeSpecial(a, b *models.SpecialCriteria) *models.SpecialCriteria {
	return &models.SpecialCriteria{
		FirstGenRequired:   incomingPtr(a.FirstGenRequired, b.FirstGenRequired),
		MilitaryRequired:   incomingPtr(a.MilitaryRequired, b.MilitaryRequired),
		DisabilityRequired: incomingPtr(a.DisabilityRequired, b.DisabilityRequired),
		Citizenship:        textutil.UnionFold(a.Citizenship, b.Citizenship),
		OtherRequirements:  mergeStringPtr(a.OtherRequirements, b.OtherRequirements),
	}
}
