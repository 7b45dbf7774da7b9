package matching

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scholarship-workers/internal/models"
	"scholarship-workers/internal/models/modeltest"
)

var asOf = time.Date(2026, time.October, 1, 0, 0, 0, 0, time.UTC)

func scholarshipWith(c models.EligibilityCriteria) *models.Scholarship {
	s := modeltest.Scholarship("s-1", "Test Award", "Test Fund")
	s.Eligibility = c
	return &s
}

func TestScore_NoCriteriaIsNeutral(t *testing.T) {
	dims, overall := Score(modeltest.FullProfile(), scholarshipWith(models.EligibilityCriteria{}), asOf)
	assert.Equal(t, models.DimensionScores{}, dims)
	assert.Equal(t, NeutralScore, overall)

	emptyBlocks := models.EligibilityCriteria{Academic: &models.AcademicCriteria{}, Special: &models.SpecialCriteria{}}
	dims, overall = Score(modeltest.FullProfile(), scholarshipWith(emptyBlocks), asOf)
	assert.Nil(t, dims.Academic)
	assert.Nil(t, dims.Special)
	assert.Equal(t, NeutralScore, overall)
}

func TestAcademic_DistanceFalloff(t *testing.T) {
	criteria := models.EligibilityCriteria{Academic: &models.AcademicCriteria{MinGPA: models.Ptr(3.5)}}

	tests := []struct {
		gpa  float64
		want float64
	}{
		{4.0, 100},
		{3.75, 85},
		{3.5, 70},
		{3.25, 35},
		{2.5, 0},
	}
	for _, tt := range tests {
		dims, overall := Score(&models.Profile{GPA: models.Ptr(tt.gpa)}, scholarshipWith(criteria), asOf)
		require.NotNil(t, dims.Academic)
		assert.Equal(t, tt.want, *dims.Academic, "gpa=%v", tt.gpa)
		assert.Equal(t, tt.want, overall)
	}

	dims, _ := Score(&models.Profile{}, scholarshipWith(criteria), asOf)
	assert.Equal(t, 0.0, *dims.Academic)
}

func TestAcademic_CombinedComponents(t *testing.T) {
	p := modeltest.FullProfile()
	p.GPA = models.Ptr(3.75)

	criteria := models.EligibilityCriteria{Academic: &models.AcademicCriteria{
		MinGPA: models.Ptr(3.5),
		MinSAT: models.Ptr(1300),
	}}
	dims, overall := Score(p, scholarshipWith(criteria), asOf)
	assert.Equal(t, 88.8, *dims.Academic)
	assert.Equal(t, 88.8, overall)
}

func TestOverall_ExcludesAbsentDimensions(t *testing.T) {
	p := modeltest.FullProfile()
	criteria := models.EligibilityCriteria{
		Academic: &models.AcademicCriteria{MinGPA: models.Ptr(3.0)},
		Special:  &models.SpecialCriteria{MilitaryRequired: models.Ptr(true)},
	}
	p.GPA = models.Ptr(3.5)

	dims, overall := Score(p, scholarshipWith(criteria), asOf)
	assert.Equal(t, 100.0, *dims.Academic)
	assert.Equal(t, 0.0, *dims.Special)
	assert.Nil(t, dims.Major)
	// (100*0.25 + 0*0.10) / 0.35
	assert.Equal(t, 71.4, overall)
}

func TestMajor_KeywordBoost(t *testing.T) {
	p := modeltest.FullProfile()

	withMajors := models.EligibilityCriteria{Major: &models.MajorCriteria{
		EligibleMajors: []string{"computer science"},
		CareerKeywords: []string{"Software", "law"},
	}}
	dims, _ := Score(p, scholarshipWith(withMajors), asOf)
	assert.Equal(t, 90.0, *dims.Major)

	keywordsOnly := models.EligibilityCriteria{Major: &models.MajorCriteria{
		CareerKeywords: []string{"healthcare", "law"},
	}}
	dims, _ = Score(p, scholarshipWith(keywordsOnly), asOf)
	assert.Equal(t, 75.0, *dims.Major)

	excluded := models.EligibilityCriteria{Major: &models.MajorCriteria{ExcludedMajors: []string{"Computer Science"}}}
	dims, _ = Score(p, scholarshipWith(excluded), asOf)
	assert.Equal(t, 0.0, *dims.Major)
}

func TestExperience_RatioCoverage(t *testing.T) {
	criteria := models.EligibilityCriteria{Experience: &models.ExperienceCriteria{
		MinVolunteerHours:  models.Ptr(240),
		LeadershipRequired: models.Ptr(true),
	}}
	dims, _ := Score(modeltest.FullProfile(), scholarshipWith(criteria), asOf)
	assert.Equal(t, 75.0, *dims.Experience)
}

func TestFinancial_NeedAlignment(t *testing.T) {
	criteria := models.EligibilityCriteria{Financial: &models.FinancialCriteria{
		NeedRequired: models.Ptr(true),
		MaxEFC:       models.Ptr(8000),
	}}
	dims, _ := Score(modeltest.FullProfile(), scholarshipWith(criteria), asOf)
	assert.Equal(t, 80.0, *dims.Financial)

	over := models.EligibilityCriteria{Financial: &models.FinancialCriteria{MaxEFC: models.Ptr(1000)}}
	dims, _ = Score(modeltest.FullProfile(), scholarshipWith(over), asOf)
	assert.Equal(t, 0.0, *dims.Financial)
}

func TestDemographic_FractionMatched(t *testing.T) {
	criteria := models.EligibilityCriteria{Demographic: &models.DemographicCriteria{
		States: []string{"CA"},
		Gender: models.Ptr("male"),
	}}
	dims, _ := Score(modeltest.FullProfile(), scholarshipWith(criteria), asOf)
	assert.Equal(t, 50.0, *dims.Demographic)

	ageOnly := models.EligibilityCriteria{Demographic: &models.DemographicCriteria{MaxAge: models.Ptr(18)}}
	dims, _ = Score(modeltest.FullProfile(), scholarshipWith(ageOnly), asOf)
	assert.Equal(t, 100.0, *dims.Demographic)
}

func TestScore_Deterministic(t *testing.T) {
	criteria := models.EligibilityCriteria{
		Academic:    &models.AcademicCriteria{MinGPA: models.Ptr(3.2), MinACT: models.Ptr(28)},
		Demographic: &models.DemographicCriteria{States: []string{"CA", "NV"}},
		Major:       &models.MajorCriteria{EligibleMajors: []string{"STEM"}, CareerKeywords: []string{"rural"}},
		Experience:  &models.ExperienceCriteria{MinWorkMonths: models.Ptr(12)},
		Financial:   &models.FinancialCriteria{NeedLevel: models.Ptr(models.NeedModerate)},
		Special:     &models.SpecialCriteria{FirstGenRequired: models.Ptr(true)},
	}
	s := scholarshipWith(criteria)
	p := modeltest.FullProfile()

	d1, o1 := Score(p, s, asOf)
	d2, o2 := Score(p, s, asOf)
	assert.Equal(t, d1, d2)
	assert.Equal(t, o1, o2)
	assert.GreaterOrEqual(t, o1, 0.0)
	assert.LessOrEqual(t, o1, 100.0)
}
