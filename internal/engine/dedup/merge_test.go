package dedup

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scholarship-workers/internal/models"
	"scholarship-workers/internal/models/modeltest"
)

var verifiedAt = time.Date(2026, time.October, 18, 9, 0, 0, 0, time.UTC)

func fixedMerger() *Merger {
	return NewMerger(func() time.Time { return verifiedAt })
}

func recordA() models.Scholarship {
	s := modeltest.Scholarship("cat-1", "Hispanic Scholarship Fund", "HSF")
	s.Description = models.Ptr("Awards for Hispanic students.")
	s.AwardAmount = models.Ptr(5000)
	s.Tags = []string{"STEM", "Hispanic"}
	s.Eligibility.Academic = &models.AcademicCriteria{MinGPA: models.Ptr(3.0)}
	s.Eligibility.Demographic = &models.DemographicCriteria{States: []string{"CA", "TX"}}
	return s
}

func recordB() models.Scholarship {
	s := modeltest.Scholarship("", "Hispanic Scholarship Fund", "Hispanic Scholarship Fund Inc")
	s.Description = nil
	s.URL = models.Ptr("https://hsf.net")
	s.AwardAmount = models.Ptr(2500)
	s.Renewable = models.Ptr(true)
	s.Tags = []string{"stem", "First Generation"}
	s.Eligibility.Academic = &models.AcademicCriteria{MinGPA: models.Ptr(2.5), MinSAT: models.Ptr(1100)}
	s.Eligibility.Demographic = &models.DemographicCriteria{States: []string{"tx", "FL"}}
	s.Eligibility.Financial = &models.FinancialCriteria{PellRequired: models.Ptr(true)}
	return s
}

func TestMerge_FieldStrategies(t *testing.T) {
	got := fixedMerger().Merge(recordA(), recordB())

	assert.Equal(t, "cat-1", got.ID)
	assert.Equal(t, "Hispanic Scholarship Fund", got.Name)
	assert.Equal(t, "Hispanic Scholarship Fund Inc", got.Provider)
	require.NotNil(t, got.Description)
	assert.Equal(t, "Awards for Hispanic students.", *got.Description)
	assert.Equal(t, "https://hsf.net", *got.URL)
	assert.Equal(t, 5000, *got.AwardAmount)
	assert.True(t, *got.Renewable)
	assert.Equal(t, []string{"STEM", "Hispanic", "First Generation"}, got.Tags)

	assert.Equal(t, 3.0, *got.Eligibility.Academic.MinGPA)
	assert.Equal(t, 1100, *got.Eligibility.Academic.MinSAT)
	assert.Equal(t, []string{"CA", "TX", "FL"}, got.Eligibility.Demographic.States)
	assert.True(t, *got.Eligibility.Financial.PellRequired)

	require.NotNil(t, got.LastVerified)
	assert.Equal(t, verifiedAt, *got.LastVerified)
	assert.Equal(t, verifiedAt, got.UpdatedAt)
	assert.Equal(t, recordA().CreatedAt, got.CreatedAt)
}

func TestMerge_StringTiesPreferIncoming(t *testing.T) {
	assert.Equal(t, "abcd", mergeString("wxyz", "abcd"))
	assert.Equal(t, "longer", mergeString("longer", "short"))
	assert.Equal(t, "kept", mergeString("kept", "   "))
	assert.Equal(t, "new", mergeString("", "new"))
}

func TestMerge_Idempotent(t *testing.T) {
	m := fixedMerger()
	a, b := recordA(), recordB()

	once := m.Merge(a, b)
	twice := m.Merge(a, once)
	assert.Equal(t, once, twice)
}

func TestMerge_ChainIsSupersetSafe(t *testing.T) {
	m := fixedMerger()
	c := modeltest.Scholarship("cat-9", "HSF General", "HSF")
	c.Tags = []string{"Scholarship"}
	c.NumberOfAwards = models.Ptr(10)

	ab := m.Merge(recordB(), recordA())
	abc := m.Merge(c, ab)

	assert.Equal(t, []string{"Scholarship", "stem", "First Generation", "Hispanic"}, abc.Tags)
	assert.ElementsMatch(t, []string{"tx", "FL", "CA"}, abc.Eligibility.Demographic.States)
	assert.NotNil(t, abc.Description)
	assert.NotNil(t, abc.URL)
	assert.Equal(t, 10, *abc.NumberOfAwards)
	assert.Equal(t, 5000, *abc.AwardAmount)
	assert.Equal(t, "cat-9", abc.ID)
}

func TestNewMerger_DefaultClock(t *testing.T) {
	got := NewMerger(nil).Merge(models.Scholarship{}, models.Scholarship{Name: "x"})
	require.NotNil(t, got.LastVerified)
	assert.False(t, got.LastVerified.IsZero())
}
