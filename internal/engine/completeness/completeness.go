// Package completeness measures how much of a student profile is filled in.
package completeness

import (
	"math"
	"sort"

	"scholarship-workers/internal/common/textutil"
	"scholarship-workers/internal/models"
)

const (
	RequiredWeight    = 70.0
	RecommendedWeight = 30.0
)

// Estimated strength-score gain from filling each recommended field.
const (
	ImpactLeadershipRoles     = 12.0
	ImpactExtracurriculars    = 10.0
	ImpactVolunteerHours      = 7.0
	ImpactWorkExperience      = 6.0
	ImpactFirstGeneration     = 6.0
	ImpactClassRank           = 5.0
	ImpactCareerGoals         = 4.0
	ImpactAwards              = 3.0
	ImpactFieldOfStudy        = 3.0
	ImpactMilitaryAffiliation = 2.0
	ImpactDisability          = 2.0
	ImpactEthnicity           = 1.0
	ImpactGender              = 1.0
)

type field struct {
	label  string
	impact float64
	filled func(p *models.Profile) bool
}

var requiredFields = []field{
	{label: "gpa", filled: func(p *models.Profile) bool { return p.GPA != nil }},
	{label: "testScore", filled: func(p *models.Profile) bool { return p.SATScore != nil || p.ACTScore != nil }},
	{label: "graduationYear", filled: func(p *models.Profile) bool { return p.GraduationYear != nil }},
	{label: "intendedMajor", filled: func(p *models.Profile) bool { return !textutil.IsBlank(p.IntendedMajor) }},
	{label: "state", filled: func(p *models.Profile) bool { return !textutil.IsBlank(p.State) }},
	{label: "citizenship", filled: func(p *models.Profile) bool { return !textutil.IsBlank(p.Citizenship) }},
	{label: "financialNeedLevel", filled: func(p *models.Profile) bool {
		return p.FinancialNeedLevel != nil && *p.FinancialNeedLevel != ""
	}},
}

var recommendedFields = []field{
	{label: "extracurriculars", impact: ImpactExtracurriculars, filled: func(p *models.Profile) bool { return len(p.Extracurriculars) > 0 }},
	{label: "leadershipRoles", impact: ImpactLeadershipRoles, filled: func(p *models.Profile) bool { return len(p.LeadershipRoles) > 0 }},
	{label: "volunteerHours", impact: ImpactVolunteerHours, filled: func(p *models.Profile) bool { return p.VolunteerHours != nil }},
	{label: "workExperience", impact: ImpactWorkExperience, filled: func(p *models.Profile) bool { return len(p.WorkExperience) > 0 }},
	{label: "classRank", impact: ImpactClassRank, filled: func(p *models.Profile) bool { return p.ClassRank != nil && p.ClassSize != nil }},
	{label: "awards", impact: ImpactAwards, filled: func(p *models.Profile) bool { return len(p.Awards) > 0 }},
	{label: "firstGeneration", impact: ImpactFirstGeneration, filled: func(p *models.Profile) bool { return p.FirstGeneration != nil }},
	{label: "careerGoals", impact: ImpactCareerGoals, filled: func(p *models.Profile) bool { return !textutil.IsBlank(p.CareerGoals) }},
	{label: "fieldOfStudy", impact: ImpactFieldOfStudy, filled: func(p *models.Profile) bool { return !textutil.IsBlank(p.FieldOfStudy) }},
	{label: "militaryAffiliation", impact: ImpactMilitaryAffiliation, filled: func(p *models.Profile) bool {
		return p.MilitaryAffiliation != nil && *p.MilitaryAffiliation != ""
	}},
	{label: "hasDisability", impact: ImpactDisability, filled: func(p *models.Profile) bool { return p.HasDisability != nil }},
	{label: "ethnicity", impact: ImpactEthnicity, filled: func(p *models.Profile) bool { return len(p.Ethnicity) > 0 }},
	{label: "gender", impact: ImpactGender, filled: func(p *models.Profile) bool { return !textutil.IsBlank(p.Gender) }},
}

type MissingField struct {
	Label  string  `json:"label"`
	Impact float64 `json:"impact"`
}

type Result struct {
	Percentage         int            `json:"completionPercentage"`
	MissingRequired    []string       `json:"missingRequired"`
	MissingRecommended []MissingField `json:"missingRecommended"`
}

// Calculate scores profile completeness. A nil profile is treated as empty.
// Missing required labels keep declaration order; missing recommended fields
// are ranked by impact, highest first.
func Calculate(p *models.Profile) Result {
	if p == nil {
		p = &models.Profile{}
	}

	res := Result{
		MissingRequired:    []string{},
		MissingRecommended: []MissingField{},
	}

	reqFilled := 0
	for _, f := range requiredFields {
		if f.filled(p) {
			reqFilled++
			continue
		}
		res.MissingRequired = append(res.MissingRequired, f.label)
	}

	recFilled := 0
	for _, f := range recommendedFields {
		if f.filled(p) {
			recFilled++
			continue
		}
		res.MissingRecommended = append(res.MissingRecommended, MissingField{Label: f.label, Impact: f.impact})
	}
	sort.SliceStable(res.MissingRecommended, func(i, j int) bool {
		return res.MissingRecommended[i].Impact > res.MissingRecommended[j].Impact
	})

	pct := float64(reqFilled)/float64(len(requiredFields))*RequiredWeight +
		float64(recFilled)/float64(len(recommendedFields))*RecommendedWeight
	res.Percentage = clampPercent(int(math.Round(pct)))
	return res
}

// Percentage is shorthand for Calculate(p).Percentage.
func Percentage(p *models.Profile) int {
	return Calculate(p).Percentage
}

// RequiredLabels lists every required field label in declaration order.
func RequiredLabels() []string {
	out := make([]string, len(requiredFields))
	for i, f := range requiredFields {
		out[i] = f.label
	}
	return out
}

func clampPercent(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
