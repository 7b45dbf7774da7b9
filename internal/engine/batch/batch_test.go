package batch

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scholarship-workers/internal/engine/eligibility"
	"scholarship-workers/internal/models"
	"scholarship-workers/internal/models/modeltest"
)

var asOf = time.Date(2026, time.October, 1, 0, 0, 0, 0, time.UTC)

func catalog(n int) []models.Scholarship {
	out := make([]models.Scholarship, 0, n)
	for i := 0; i < n; i++ {
		s := modeltest.Scholarship(fmt.Sprintf("s-%03d", i), fmt.Sprintf("Award %d", i), "Fund")
		switch i % 3 {
		case 0:
			s.Eligibility.Academic = &models.AcademicCriteria{MinGPA: models.Ptr(3.0 + float64(i%5)/10)}
		case 1:
			s.Eligibility.Major = &models.MajorCriteria{EligibleMajors: []string{"Computer Science"}, CareerKeywords: []string{"software"}}
		case 2:
			s.Eligibility.Financial = &models.FinancialCriteria{NeedRequired: models.Ptr(true)}
		}
		out = append(out, s)
	}
	return out
}

func TestRun_ExcludesIneligibleAndKeepsOrder(t *testing.T) {
	scholarships := catalog(6)
	blocked := modeltest.Scholarship("blocked", "Veterans Award", "VFW")
	blocked.Eligibility.Special = &models.SpecialCriteria{MilitaryRequired: models.Ptr(true)}
	scholarships = append([]models.Scholarship{blocked}, scholarships...)

	res, err := NewScorer(WithConcurrency(3)).Run(context.Background(), Input{
		Profile:      modeltest.FullProfile(),
		Scholarships: scholarships,
		AsOf:         asOf,
	})
	require.NoError(t, err)

	require.Len(t, res.Excluded, 1)
	assert.Equal(t, "blocked", res.Excluded[0].ScholarshipID)
	assert.Equal(t, eligibility.DimensionSpecial, res.Excluded[0].FailedDimension)

	require.Len(t, res.Matches, 6)
	for i, m := range res.Matches {
		assert.Equal(t, scholarships[i+1].ID, m.ScholarshipID)
		assert.Equal(t, "stu-full", m.StudentID)
		assert.Equal(t, asOf, m.ComputedAt)
		assert.True(t, m.SuccessProbability.UsingDefaultEssay)
		assert.NotEqual(t, models.TierIneligible, m.PriorityTier)
	}

	counts := res.TierCounts()
	assert.Equal(t, 1, counts[models.TierIneligible])
	total := 0
	for _, n := range counts {
		total += n
	}
	assert.Equal(t, 7, total)
}

func TestRun_Idempotent(t *testing.T) {
	in := Input{Profile: modeltest.FullProfile(), Scholarships: catalog(40), AsOf: asOf}

	first, err := NewScorer(WithConcurrency(8)).Run(context.Background(), in)
	require.NoError(t, err)
	second, err := NewScorer(WithConcurrency(1)).Run(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestRun_Notifiable(t *testing.T) {
	perfect := modeltest.Scholarship("perfect", "Perfect Fit", "Fund")
	perfect.Eligibility.Major = &models.MajorCriteria{EligibleMajors: []string{"Computer Science"}}
	perfect.AwardAmount = models.Ptr(10000)

	weak := modeltest.Scholarship("weak", "Weak Fit", "Fund")
	weak.Eligibility.Major = &models.MajorCriteria{CareerKeywords: []string{"law"}}

	res, err := NewScorer().Run(context.Background(), Input{
		Profile:      modeltest.FullProfile(),
		Scholarships: []models.Scholarship{weak, perfect},
		EssayQuality: models.Ptr(90.0),
		AsOf:         asOf,
	})
	require.NoError(t, err)
	require.Len(t, res.Matches, 2)

	assert.Equal(t, models.TierLowPriority, res.Matches[0].PriorityTier)
	assert.Equal(t, 100.0, res.Matches[1].OverallScore)
	assert.Equal(t, models.TierMustApply, res.Matches[1].PriorityTier)
	assert.Equal(t, []string{"perfect"}, res.Notifiable())
	assert.False(t, res.Matches[1].SuccessProbability.UsingDefaultEssay)
}

func TestRun_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewScorer().Run(ctx, Input{Profile: modeltest.FullProfile(), Scholarships: catalog(5), AsOf: asOf})
	assert.ErrorIs(t, err, context.Canceled)
}

type recordingHook struct {
	mu    sync.Mutex
	stats []Stats
}

func (h *recordingHook) BatchScored(_ context.Context, s Stats) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.stats = append(h.stats, s)
}

func TestRun_Hook(t *testing.T) {
	hook := &recordingHook{}
	_, err := NewScorer(WithHook(hook)).Run(context.Background(), Input{Profile: modeltest.FullProfile(), Scholarships: catalog(4), AsOf: asOf})
	require.NoError(t, err)

	require.Len(t, hook.stats, 1)
	assert.Equal(t, "stu-full", hook.stats[0].StudentID)
	assert.Equal(t, 4, hook.stats[0].Candidates)
	assert.Equal(t, 4, hook.stats[0].Scored)
}

func TestRun_NilProfile(t *testing.T) {
	res, err := NewScorer().Run(context.Background(), Input{Scholarships: []models.Scholarship{modeltest.Scholarship("open", "Open", "Fund")}, AsOf: asOf})
	require.NoError(t, err)
	require.Len(t, res.Matches, 1)
	assert.Equal(t, 50.0, res.Matches[0].OverallScore)
}
