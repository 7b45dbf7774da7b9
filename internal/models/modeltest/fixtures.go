// Package modeltest provides profile and scholarship fixtures for tests.
package modeltest

import (
	"time"

	"scholarship-workers/internal/models"
)

var p = models.Ptr[string]

// FullProfile returns a profile with every tracked field populated.
func FullProfile() *models.Profile {
	return &models.Profile{
		StudentID:      "stu-full",
		GPA:            models.Ptr(3.8),
		GPAScale:       models.Ptr(4.0),
		SATScore:       models.Ptr(1450),
		ACTScore:       models.Ptr(32),
		ClassRank:      models.Ptr(10),
		ClassSize:      models.Ptr(200),
		GraduationYear: models.Ptr(2027),

		State:       p("CA"),
		Citizenship: p("US_CITIZEN"),
		Gender:      p("female"),
		Ethnicity:   []string{"Hispanic"},
		DateOfBirth: models.Ptr(time.Date(2009, time.March, 2, 0, 0, 0, 0, time.UTC)),

		FinancialNeedLevel: models.Ptr(models.NeedHigh),
		EFC:                models.Ptr(4000),
		PellEligible:       models.Ptr(true),

		IntendedMajor: p("Computer Science"),
		FieldOfStudy:  p("STEM"),
		CareerGoals:   p("Build accessible software for rural healthcare clinics"),

		VolunteerHours: models.Ptr(120),
		Extracurriculars: []models.Extracurricular{
			{Name: "Robotics Club", Category: "STEM", DurationMonths: models.Ptr(24)},
			{Name: "Debate", Category: "Academic", DurationMonths: models.Ptr(12)},
		},
		WorkExperience: []models.WorkExperience{
			{Employer: "City Library", Title: "Page", DurationMonths: models.Ptr(10)},
		},
		LeadershipRoles: []models.LeadershipRole{
			{Title: "Captain", Organization: "Robotics Club"},
			{Title: "Treasurer", Organization: "Student Council"},
		},
		Awards: []models.Award{
			{Name: "National Merit Commended"},
			{Name: "Science Fair 1st Place"},
		},

		FirstGeneration:     models.Ptr(true),
		MilitaryAffiliation: models.Ptr(models.MilitaryNone),
		HasDisability:       models.Ptr(false),
	}
}

// Scholarship returns a minimal catalog record with no eligibility criteria.
func Scholarship(id, name, provider string) models.Scholarship {
	return models.Scholarship{
		ID:        id,
		Name:      name,
		Provider:  provider,
		CreatedAt: time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC),
		UpdatedAt: time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC),
	}
}
