package eligibility

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scholarship-workers/internal/models"
	"scholarship-workers/internal/models/modeltest"
)

var asOf = time.Date(2026, time.October, 1, 0, 0, 0, 0, time.UTC)

func TestCheck_MinGPABoundary(t *testing.T) {
	criteria := models.EligibilityCriteria{
		Academic: &models.AcademicCriteria{MinGPA: models.Ptr(3.5)},
	}

	below := Check(&models.Profile{GPA: models.Ptr(3.4)}, criteria, asOf)
	assert.False(t, below.Eligible)
	assert.Equal(t, DimensionAcademic, below.FailedDimension)

	at := Check(&models.Profile{GPA: models.Ptr(3.5)}, criteria, asOf)
	assert.True(t, at.Eligible)
}

func TestCheck_NoCriteriaPasses(t *testing.T) {
	assert.True(t, Check(&models.Profile{}, models.EligibilityCriteria{}, asOf).Eligible)
	assert.True(t, Check(nil, models.EligibilityCriteria{}, asOf).Eligible)

	emptyBlocks := models.EligibilityCriteria{
		Academic:    &models.AcademicCriteria{},
		Demographic: &models.DemographicCriteria{},
		Major:       &models.MajorCriteria{},
		Experience:  &models.ExperienceCriteria{},
		Financial:   &models.FinancialCriteria{},
		Special:     &models.SpecialCriteria{},
	}
	assert.True(t, Check(&models.Profile{}, emptyBlocks, asOf).Eligible)
}

func TestCheck_ContradictoryCriteriaAlwaysFail(t *testing.T) {
	tests := []struct {
		name     string
		criteria models.EligibilityCriteria
		dim      Dimension
	}{
		{
			name:     "gpa",
			criteria: models.EligibilityCriteria{Academic: &models.AcademicCriteria{MinGPA: models.Ptr(3.8), MaxGPA: models.Ptr(3.0)}},
			dim:      DimensionAcademic,
		},
		{
			name:     "sat",
			criteria: models.EligibilityCriteria{Academic: &models.AcademicCriteria{MinSAT: models.Ptr(1400), MaxSAT: models.Ptr(1200)}},
			dim:      DimensionAcademic,
		},
		{
			name:     "age",
			criteria: models.EligibilityCriteria{Demographic: &models.DemographicCriteria{MinAge: models.Ptr(25), MaxAge: models.Ptr(18)}},
			dim:      DimensionDemographic,
		},
	}

	profiles := []*models.Profile{{}, modeltest.FullProfile()}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, p := range profiles {
				r := Check(p, tt.criteria, asOf)
				assert.False(t, r.Eligible)
				assert.Equal(t, tt.dim, r.FailedDimension)
				assert.Contains(t, r.Reason, "unsatisfiable")
			}
		})
	}
}

func TestCheck_Dimensions(t *testing.T) {
	full := modeltest.FullProfile()

	tests := []struct {
		name     string
		profile  *models.Profile
		criteria models.EligibilityCriteria
		eligible bool
		dim      Dimension
	}{
		{
			name:     "gpa on five point scale normalized",
			profile:  &models.Profile{GPA: models.Ptr(4.5), GPAScale: models.Ptr(5.0)},
			criteria: models.EligibilityCriteria{Academic: &models.AcademicCriteria{MinGPA: models.Ptr(3.5)}},
			eligible: true,
		},
		{
			name:     "missing sat under min sat fails",
			profile:  &models.Profile{ACTScore: models.Ptr(34)},
			criteria: models.EligibilityCriteria{Academic: &models.AcademicCriteria{MinSAT: models.Ptr(1200)}},
			dim:      DimensionAcademic,
		},
		{
			name:     "top ten percent",
			profile:  full,
			criteria: models.EligibilityCriteria{Academic: &models.AcademicCriteria{ClassRankPercentile: models.Ptr(10.0)}},
			eligible: true,
		},
		{
			name:     "outside top percent",
			profile:  full,
			criteria: models.EligibilityCriteria{Academic: &models.AcademicCriteria{ClassRankPercentile: models.Ptr(2.0)}},
			dim:      DimensionAcademic,
		},
		{
			name:    "state list case insensitive",
			profile: full,
			criteria: models.EligibilityCriteria{Demographic: &models.DemographicCriteria{
				States: []string{"ca", "OR"},
			}},
			eligible: true,
		},
		{
			name:     "residency mismatch",
			profile:  full,
			criteria: models.EligibilityCriteria{Demographic: &models.DemographicCriteria{ResidencyState: models.Ptr("TX")}},
			dim:      DimensionDemographic,
		},
		{
			name:     "age window",
			profile:  full,
			criteria: models.EligibilityCriteria{Demographic: &models.DemographicCriteria{MinAge: models.Ptr(16), MaxAge: models.Ptr(18)}},
			eligible: true,
		},
		{
			name:     "ethnicity intersect",
			profile:  full,
			criteria: models.EligibilityCriteria{Demographic: &models.DemographicCriteria{Ethnicities: []string{"hispanic", "Black"}}},
			eligible: true,
		},
		{
			name:     "excluded major",
			profile:  full,
			criteria: models.EligibilityCriteria{Major: &models.MajorCriteria{ExcludedMajors: []string{"computer science"}}},
			dim:      DimensionMajor,
		},
		{
			name:     "eligible via field of study",
			profile:  full,
			criteria: models.EligibilityCriteria{Major: &models.MajorCriteria{EligibleMajors: []string{"STEM", "Nursing"}}},
			eligible: true,
		},
		{
			name:     "career keywords are not a hard constraint",
			profile:  &models.Profile{},
			criteria: models.EligibilityCriteria{Major: &models.MajorCriteria{CareerKeywords: []string{"medicine"}}},
			eligible: true,
		},
		{
			name:    "required activity by category",
			profile: full,
			criteria: models.EligibilityCriteria{Experience: &models.ExperienceCriteria{
				RequiredActivities: []string{"stem"},
				LeadershipRequired: models.Ptr(true),
				MinWorkMonths:      models.Ptr(6),
			}},
			eligible: true,
		},
		{
			name:     "volunteer hours short",
			profile:  full,
			criteria: models.EligibilityCriteria{Experience: &models.ExperienceCriteria{MinVolunteerHours: models.Ptr(200)}},
			dim:      DimensionExperience,
		},
		{
			name:     "pell required",
			profile:  &models.Profile{PellEligible: models.Ptr(false)},
			criteria: models.EligibilityCriteria{Financial: &models.FinancialCriteria{PellRequired: models.Ptr(true)}},
			dim:      DimensionFinancial,
		},
		{
			name:    "need and efc satisfied",
			profile: full,
			criteria: models.EligibilityCriteria{Financial: &models.FinancialCriteria{
				NeedRequired: models.Ptr(true),
				MaxEFC:       models.Ptr(5000),
				NeedLevel:    models.Ptr(models.NeedModerate),
			}},
			eligible: true,
		},
		{
			name:     "low need fails need required",
			profile:  &models.Profile{FinancialNeedLevel: models.Ptr(models.NeedLow)},
			criteria: models.EligibilityCriteria{Financial: &models.FinancialCriteria{NeedRequired: models.Ptr(true)}},
			dim:      DimensionFinancial,
		},
		{
			name:     "military required",
			profile:  full,
			criteria: models.EligibilityCriteria{Special: &models.SpecialCriteria{MilitaryRequired: models.Ptr(true)}},
			dim:      DimensionSpecial,
		},
		{
			name:    "first gen and citizenship",
			profile: full,
			criteria: models.EligibilityCriteria{Special: &models.SpecialCriteria{
				FirstGenRequired: models.Ptr(true),
				Citizenship:      []string{"us_citizen", "PERMANENT_RESIDENT"},
			}},
			eligible: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Check(tt.profile, tt.criteria, asOf)
			assert.Equal(t, tt.eligible, r.Eligible, r.Reason)
			if !tt.eligible {
				assert.Equal(t, tt.dim, r.FailedDimension)
				assert.NotEmpty(t, r.Reason)
			}
		})
	}
}

func TestCheck_ReportsFirstFailingDimension(t *testing.T) {
	criteria := models.EligibilityCriteria{
		Demographic: &models.DemographicCriteria{States: []string{"NY"}},
		Special:     &models.SpecialCriteria{MilitaryRequired: models.Ptr(true)},
	}
	r := Check(modeltest.FullProfile(), criteria, asOf)
	assert.Equal(t, DimensionDemographic, r.FailedDimension)
}

func TestPartition(t *testing.T) {
	open := modeltest.Scholarship("s-open", "Open Award", "Fund A")
	strict := modeltest.Scholarship("s-strict", "Strict Award", "Fund B")
	strict.Eligibility.Academic = &models.AcademicCriteria{MinGPA: models.Ptr(3.9)}
	open2 := modeltest.Scholarship("s-open-2", "Second Award", "Fund C")

	eligible, excluded := Partition(modeltest.FullProfile(), []models.Scholarship{open, strict, open2}, asOf)

	require.Len(t, eligible, 2)
	assert.Equal(t, "s-open", eligible[0].ID)
	assert.Equal(t, "s-open-2", eligible[1].ID)
	require.Len(t, excluded, 1)
	assert.Equal(t, "s-strict", excluded[0].ScholarshipID)
	assert.Equal(t, DimensionAcademic, excluded[0].FailedDimension)
}
