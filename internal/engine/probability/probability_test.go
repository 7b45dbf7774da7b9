package probability

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"scholarship-workers/internal/models"
)

func f(v float64) *float64 { return &v }

func level(l models.CompetitionLevel) *models.CompetitionLevel { return &l }

func TestEstimate_Defaults(t *testing.T) {
	res := Estimate(Input{EssayQuality: f(93)})

	assert.True(t, res.UsingDefaultProfile)
	assert.True(t, res.UsingDefaultMatch)
	assert.False(t, res.UsingDefaultEssay)
	// (93*0.40 + 70*0.25 + 70*0.20) * 0.85 = 58.395
	assert.InDelta(t, 68.7, Raw(93, DefaultProfileStrength, DefaultMatchScore), 1e-9)
	assert.Equal(t, 58.4, res.Probability)
}

func TestEstimate_FlagsWhenEqualToDefault(t *testing.T) {
	res := Estimate(Input{EssayQuality: f(80), ProfileStrength: f(70), MatchScore: f(71)})
	assert.True(t, res.UsingDefaultProfile)
	assert.False(t, res.UsingDefaultMatch)
}

func TestEstimate_CompetitionMultiplier(t *testing.T) {
	tests := []struct {
		name  string
		level *models.CompetitionLevel
		want  float64
	}{
		{"low", level(models.CompetitionLow), 85},
		{"medium", level(models.CompetitionMedium), 72.3},
		{"high", level(models.CompetitionHigh), 59.5},
		{"omitted", nil, 72.3},
		{"unknown", level("extreme"), 72.3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Estimate(Input{EssayQuality: f(100), ProfileStrength: f(100), MatchScore: f(100), CompetitionLevel: tt.level})
			assert.Equal(t, tt.want, res.Probability)
		})
	}
}

func TestEstimate_WeightsNotRenormalized(t *testing.T) {
	assert.InDelta(t, 0.85, WeightEssay+WeightStrength+WeightMatch, 1e-12)
	res := Estimate(Input{EssayQuality: f(100), ProfileStrength: f(100), MatchScore: f(100), CompetitionLevel: level(models.CompetitionLow)})
	assert.Equal(t, 85.0, res.Probability)
}

func TestEstimate_GuardsInputs(t *testing.T) {
	res := Estimate(Input{EssayQuality: f(math.NaN()), ProfileStrength: f(250), MatchScore: f(-10)})
	assert.True(t, res.UsingDefaultEssay)
	assert.GreaterOrEqual(t, res.Probability, 0.0)
	assert.LessOrEqual(t, res.Probability, 100.0)
}
