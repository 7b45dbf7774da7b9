// Package probability estimates the chance that an application succeeds.
package probability

import (
	"math"

	"scholarship-workers/internal/models"
)

// Defaults for optional inputs. Profile strength and match score default to
// 70, not the midpoint, and the essay default applies to batch runs that
// carry no essay signal.
const (
	DefaultProfileStrength = 70.0
	DefaultMatchScore      = 70.0
	DefaultEssayQuality    = 70.0
)

// Input weights. They sum to 0.85 and are not renormalized.
const (
	WeightEssay    = 0.40
	WeightStrength = 0.25
	WeightMatch    = 0.20
)

const DefaultCompetition = models.CompetitionMedium

var multipliers = map[models.CompetitionLevel]float64{
	models.CompetitionLow:    1.0,
	models.CompetitionMedium: 0.85,
	models.CompetitionHigh:   0.70,
}

// Input carries the estimator arguments. Nil fields take their defaults.
type Input struct {
	EssayQuality     *float64
	ProfileStrength  *float64
	MatchScore       *float64
	CompetitionLevel *models.CompetitionLevel
}

// Multiplier returns the competition adjustment for level, falling back to
// the medium multiplier for unknown levels.
func Multiplier(level *models.CompetitionLevel) float64 {
	if level != nil {
		if m, ok := multipliers[*level]; ok {
			return m
		}
	}
	return multipliers[DefaultCompetition]
}

// Raw is the weighted sum before the competition multiplier.
func Raw(quality, strength, match float64) float64 {
	return quality*WeightEssay + strength*WeightStrength + match*WeightMatch
}

// Estimate computes the success probability in [0,100], rounded to one
// decimal. A default flag is set when its input was omitted or equals the
// default value.
func Estimate(in Input) models.SuccessProbability {
	quality, defEssay := orDefault(in.EssayQuality, DefaultEssayQuality)
	strength, defProfile := orDefault(in.ProfileStrength, DefaultProfileStrength)
	match, defMatch := orDefault(in.MatchScore, DefaultMatchScore)

	p := Raw(quality, strength, match) * Multiplier(in.CompetitionLevel)
	if math.IsNaN(p) || math.IsInf(p, 0) {
		p = 0
	}
	p = math.Max(0, math.Min(100, p))

	return models.SuccessProbability{
		Probability:         math.Round(p*10) / 10,
		UsingDefaultProfile: defProfile,
		UsingDefaultMatch:   defMatch,
		UsingDefaultEssay:   defEssay,
	}
}

func orDefault(v *float64, def float64) (float64, bool) {
	if v == nil || math.IsNaN(*v) {
		return def, true
	}
	c := math.Max(0, math.Min(100, *v))
	return c, c == def
}
