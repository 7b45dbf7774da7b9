package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateProfile(t *testing.T) {
	tests := []struct {
		name    string
		profile *Profile
		wantErr string
	}{
		{
			name:    "empty profile is valid",
			profile: &Profile{StudentID: "stu-1"},
		},
		{
			name: "rank within size",
			profile: &Profile{
				ClassRank: Ptr(5),
				ClassSize: Ptr(5),
			},
		},
		{
			name: "rank above size",
			profile: &Profile{
				ClassRank: Ptr(12),
				ClassSize: Ptr(10),
			},
			wantErr: "ClassRank failed ltefield",
		},
		{
			name:    "sat out of range",
			profile: &Profile{SATScore: Ptr(1700)},
			wantErr: "SATScore failed lte",
		},
		{
			name:    "unknown need level",
			profile: &Profile{FinancialNeedLevel: Ptr(FinancialNeedLevel("EXTREME"))},
			wantErr: "FinancialNeedLevel failed oneof",
		},
		{
			name: "sub-record missing required field",
			profile: &Profile{
				Extracurriculars: []Extracurricular{{Name: "Robotics"}},
			},
			wantErr: "Category failed required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateProfile(tt.profile)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	assert.Error(t, ValidateProfile(nil))
}

func TestProfileHelpers(t *testing.T) {
	p := &Profile{
		GPA:      Ptr(4.5),
		GPAScale: Ptr(5.0),
		WorkExperience: []WorkExperience{
			{Employer: "Cafe", Title: "Barista", DurationMonths: Ptr(6)},
			{Employer: "Library", Title: "Page", DurationMonths: Ptr(-2)},
			{Employer: "Camp", Title: "Counselor"},
		},
		DateOfBirth: Ptr(time.Date(2008, time.June, 15, 0, 0, 0, 0, time.UTC)),
	}

	gpa, ok := p.NormalizedGPA()
	require.True(t, ok)
	assert.InDelta(t, 3.6, gpa, 1e-9)

	assert.Equal(t, 6, p.TotalWorkMonths())

	age, ok := p.AgeAt(time.Date(2026, time.June, 14, 0, 0, 0, 0, time.UTC))
	require.True(t, ok)
	assert.Equal(t, 17, age)
	age, _ = p.AgeAt(time.Date(2026, time.June, 15, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, 18, age)

	_, ok = (&Profile{}).NormalizedGPA()
	assert.False(t, ok)
}

func TestCriteriaHasConstraints(t *testing.T) {
	var nilAcademic *AcademicCriteria
	assert.False(t, nilAcademic.HasConstraints())
	assert.False(t, (&AcademicCriteria{}).HasConstraints())
	assert.True(t, (&AcademicCriteria{MinGPA: Ptr(3.5)}).HasConstraints())

	assert.False(t, (&DemographicCriteria{Gender: Ptr("  ")}).HasConstraints())
	assert.False(t, (&DemographicCriteria{ResidencyState: Ptr("\u00a0\u2003")}).HasConstraints())
	assert.False(t, (&MajorCriteria{RequiredField: Ptr("\u00a0")}).HasConstraints())
	assert.True(t, (&MajorCriteria{RequiredField: Ptr("\u00a0Nursing")}).HasConstraints())
	assert.False(t, (&ExperienceCriteria{LeadershipRequired: Ptr(false)}).HasConstraints())
	assert.True(t, (&FinancialCriteria{MaxEFC: Ptr(0)}).HasConstraints())
	assert.False(t, (&SpecialCriteria{OtherRequirements: Ptr("Essay on service")}).HasConstraints())
}

func TestTierOrdering(t *testing.T) {
	assert.Greater(t, TierMustApply.Rank(), TierShouldApply.Rank())
	assert.Greater(t, TierShouldApply.Rank(), TierConsider.Rank())
	assert.Greater(t, TierConsider.Rank(), TierLowPriority.Rank())
	assert.Greater(t, TierLowPriority.Rank(), TierIneligible.Rank())

	assert.True(t, TierMustApply.Notifiable())
	assert.True(t, TierShouldApply.Notifiable())
	assert.False(t, TierConsider.Notifiable())
	assert.False(t, TierIneligible.Notifiable())
}
