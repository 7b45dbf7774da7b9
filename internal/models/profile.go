// internal/models/profile.go
package models

import "time"

type FinancialNeedLevel string

const (
	NeedLow      FinancialNeedLevel = "LOW"
	NeedModerate FinancialNeedLevel = "MODERATE"
	NeedHigh     FinancialNeedLevel = "HIGH"
	NeedVeryHigh FinancialNeedLevel = "VERY_HIGH"
)

// Rank orders need levels from LOW (1) to VERY_HIGH (4). Unknown levels are 0.
func (n FinancialNeedLevel) Rank() int {
	switch n {
	case NeedLow:
		return 1
	case NeedModerate:
		return 2
	case NeedHigh:
		return 3
	case NeedVeryHigh:
		return 4
	default:
		return 0
	}
}

type MilitaryAffiliation string

const (
	MilitaryNone       MilitaryAffiliation = "NONE"
	MilitaryActiveDuty MilitaryAffiliation = "ACTIVE_DUTY"
	MilitaryVeteran    MilitaryAffiliation = "VETERAN"
	MilitaryReserve    MilitaryAffiliation = "RESERVE"
	MilitaryDependent  MilitaryAffiliation = "DEPENDENT"
)

// Qualifies reports whether the affiliation counts as a military connection.
func (m MilitaryAffiliation) Qualifies() bool {
	return m != "" && m != MilitaryNone
}

// Profile is one student's snapshot. Every attribute is optional;
// CompletionPercentage and StrengthScore are outputs and never read back as
// inputs.
type Profile struct {
	StudentID string `json:"studentId"`

	// Academic
	GPA            *float64 `json:"gpa,omitempty" validate:"omitempty,gte=0,lte=100"`
	GPAScale       *float64 `json:"gpaScale,omitempty" validate:"omitempty,gt=0,lte=100"`
	SATScore       *int     `json:"satScore,omitempty" validate:"omitempty,gte=400,lte=1600"`
	ACTScore       *int     `json:"actScore,omitempty" validate:"omitempty,gte=1,lte=36"`
	ClassRank      *int     `json:"classRank,omitempty" validate:"omitempty,gte=1"`
	ClassSize      *int     `json:"classSize,omitempty" validate:"omitempty,gte=1"`
	GraduationYear *int     `json:"graduationYear,omitempty" validate:"omitempty,gte=1900,lte=2100"`

	// Demographic
	State       *string    `json:"state,omitempty"`
	Citizenship *string    `json:"citizenship,omitempty"`
	Gender      *string    `json:"gender,omitempty"`
	Ethnicity   []string   `json:"ethnicity,omitempty"`
	DateOfBirth *time.Time `json:"dateOfBirth,omitempty"`

	// Financial
	FinancialNeedLevel *FinancialNeedLevel `json:"financialNeedLevel,omitempty" validate:"omitempty,oneof=LOW MODERATE HIGH VERY_HIGH"`
	EFC                *int                `json:"efc,omitempty" validate:"omitempty,gte=0"`
	PellEligible       *bool               `json:"pellEligible,omitempty"`

	// Major and career
	IntendedMajor *string `json:"intendedMajor,omitempty"`
	FieldOfStudy  *string `json:"fieldOfStudy,omitempty"`
	CareerGoals   *string `json:"careerGoals,omitempty"`

	// Experience
	VolunteerHours   *int              `json:"volunteerHours,omitempty" validate:"omitempty,gte=0"`
	Extracurriculars []Extracurricular `json:"extracurriculars,omitempty" validate:"dive"`
	WorkExperience   []WorkExperience  `json:"workExperience,omitempty" validate:"dive"`
	LeadershipRoles  []LeadershipRole  `json:"leadershipRoles,omitempty" validate:"dive"`
	Awards           []Award           `json:"awards,omitempty" validate:"dive"`

	// Special circumstances
	FirstGeneration     *bool                `json:"firstGeneration,omitempty"`
	MilitaryAffiliation *MilitaryAffiliation `json:"militaryAffiliation,omitempty" validate:"omitempty,oneof=NONE ACTIVE_DUTY VETERAN RESERVE DEPENDENT"`
	HasDisability       *bool                `json:"hasDisability,omitempty"`

	// Derived
	CompletionPercentage *int     `json:"completionPercentage,omitempty"`
	StrengthScore        *float64 `json:"strengthScore,omitempty"`
}

type Extracurricular struct {
	Name           string  `json:"name" validate:"required"`
	Category       string  `json:"category" validate:"required"`
	Role           *string `json:"role,omitempty"`
	DurationMonths *int    `json:"durationMonths,omitempty" validate:"omitempty,gte=0"`
	Description    *string `json:"description,omitempty"`
}

type WorkExperience struct {
	Employer       string  `json:"employer" validate:"required"`
	Title          string  `json:"title" validate:"required"`
	DurationMonths *int    `json:"durationMonths,omitempty" validate:"omitempty,gte=0"`
	Description    *string `json:"description,omitempty"`
}

type LeadershipRole struct {
	Title          string  `json:"title" validate:"required"`
	Organization   string  `json:"organization" validate:"required"`
	DurationMonths *int    `json:"durationMonths,omitempty" validate:"omitempty,gte=0"`
	Description    *string `json:"description,omitempty"`
}

type Award struct {
	Name  string  `json:"name" validate:"required"`
	Level *string `json:"level,omitempty"`
	Year  *int    `json:"year,omitempty"`
}

// NormalizedGPA returns the GPA on a 4.0 scale. A missing or non-positive
// scale is treated as 4.0.
func (p *Profile) NormalizedGPA() (float64, bool) {
	if p.GPA == nil {
		return 0, false
	}
	if p.GPAScale == nil || *p.GPAScale <= 0 || *p.GPAScale == 4.0 {
		return *p.GPA, true
	}
	return *p.GPA / *p.GPAScale * 4.0, true
}

// TotalWorkMonths sums the recorded duration of every job.
func (p *Profile) TotalWorkMonths() int {
	total := 0
	for _, w := range p.WorkExperience {
		if w.DurationMonths != nil && *w.DurationMonths > 0 {
			total += *w.DurationMonths
		}
	}
	return total
}

// AgeAt returns the student's age in whole years at asOf.
func (p *Profile) AgeAt(asOf time.Time) (int, bool) {
	if p.DateOfBirth == nil {
		return 0, false
	}
	dob := p.DateOfBirth.UTC()
	asOf = asOf.UTC()
	age := asOf.Year() - dob.Year()
	if asOf.Month() < dob.Month() || (asOf.Month() == dob.Month() && asOf.Day() < dob.Day()) {
		age--
	}
	return age, true
}
