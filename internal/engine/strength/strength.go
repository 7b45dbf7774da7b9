// Package strength scores how competitive a student profile is and suggests
// the inputs that would raise the score the most.
package strength

import (
	"fmt"
	"math"
	"sort"

	"scholarship-workers/internal/engine/completeness"
	"scholarship-workers/internal/models"
)

// Dimension weights for the overall score.
const (
	WeightAcademic     = 0.35
	WeightExperience   = 0.25
	WeightLeadership   = 0.25
	WeightDemographics = 0.15
)

const MaxRecommendations = 5

const (
	CategoryProfile      = "profile"
	CategoryAcademic     = "academic"
	CategoryExperience   = "experience"
	CategoryLeadership   = "leadership"
	CategoryDemographics = "demographics"
)

type Breakdown struct {
	Academic             float64 `json:"academic"`
	Experience           float64 `json:"experience"`
	Leadership           float64 `json:"leadership"`
	Demographics         float64 `json:"demographics"`
	Overall              float64 `json:"overall"`
	Potential            float64 `json:"potential"`
	CompletionPercentage int     `json:"completionPercentage"`
}

type Recommendation struct {
	Priority int     `json:"priority"`
	Category string  `json:"category"`
	Field    string  `json:"field"`
	Message  string  `json:"message"`
	Impact   float64 `json:"impact"`
}

type Result struct {
	Breakdown       Breakdown        `json:"breakdown"`
	Recommendations []Recommendation `json:"recommendations"`
}

// Score computes the strength breakdown and recommendations. A nil profile is
// scored as empty.
func Score(p *models.Profile) Result {
	if p == nil {
		p = &models.Profile{}
	}
	b := Compute(p, completeness.Percentage(p))
	return Result{Breakdown: b, Recommendations: Recommend(p, b)}
}

// Compute scores each dimension and gates the overall score by completion.
func Compute(p *models.Profile, completionPct int) Breakdown {
	b := Breakdown{
		Academic:             Academic(p),
		Experience:           Experience(p),
		Leadership:           Leadership(p),
		Demographics:         Demographics(p),
		CompletionPercentage: completionPct,
	}

	weighted := b.Academic*WeightAcademic +
		b.Experience*WeightExperience +
		b.Leadership*WeightLeadership +
		b.Demographics*WeightDemographics
	weighted = finite(weighted)

	gate := float64(completionPct) / 100
	if gate < 0 {
		gate = 0
	} else if gate > 1 {
		gate = 1
	}

	b.Potential = round1(weighted)
	b.Overall = round1(weighted * gate)
	b.Academic = round1(b.Academic)
	b.Experience = round1(b.Experience)
	b.Leadership = round1(b.Leadership)
	b.Demographics = round1(b.Demographics)
	return b
}

func Academic(p *models.Profile) float64 {
	score := 0.0

	// GPA on a 4.0 scale (max 40 points)
	if gpa, ok := p.NormalizedGPA(); ok {
		score += finite(math.Min(gpa/4.0, 1) * 40)
	}

	// Best of SAT and ACT (max 30 points)
	testRatio := 0.0
	if p.SATScore != nil {
		testRatio = math.Max(testRatio, float64(*p.SATScore)/1600)
	}
	if p.ACTScore != nil {
		testRatio = math.Max(testRatio, float64(*p.ACTScore)/36)
	}
	score += finite(math.Min(testRatio, 1) * 30)

	// Class rank percentile (max 20 points)
	if p.ClassRank != nil && p.ClassSize != nil {
		pct := finite(1 - float64(*p.ClassRank)/float64(*p.ClassSize))
		score += math.Max(0, math.Min(pct, 1)) * 20
	}

	// Awards (2 points each, max 10)
	score += math.Min(float64(len(p.Awards))*2, 10)

	return clamp(score)
}

func Experience(p *models.Profile) float64 {
	score := math.Min(float64(len(p.Extracurriculars))*8, 40)
	score += volunteerPoints(p.VolunteerHours)
	score += math.Min(float64(len(p.WorkExperience))*15, 30)
	return clamp(score)
}

func volunteerPoints(hours *int) float64 {
	if hours == nil || *hours <= 0 {
		return 0
	}
	h := float64(*hours)
	switch {
	case h >= 200:
		return 30
	case h >= 100:
		return 20
	case h >= 50:
		return 10
	default:
		return h / 50 * 10
	}
}

func Leadership(p *models.Profile) float64 {
	switch n := len(p.LeadershipRoles); {
	case n >= 3:
		return 100
	case n == 2:
		return 75
	case n == 1:
		return 50
	default:
		return 0
	}
}

var needPoints = map[models.FinancialNeedLevel]float64{
	models.NeedVeryHigh: 30,
	models.NeedHigh:     20,
	models.NeedModerate: 10,
	models.NeedLow:      0,
}

func Demographics(p *models.Profile) float64 {
	score := 0.0
	if p.FirstGeneration != nil && *p.FirstGeneration {
		score += 40
	}
	if p.FinancialNeedLevel != nil {
		score += needPoints[*p.FinancialNeedLevel]
	}
	if p.MilitaryAffiliation != nil && p.MilitaryAffiliation.Qualifies() {
		score += 15
	}
	if p.HasDisability != nil && *p.HasDisability {
		score += 15
	}
	return clamp(score)
}

// Recommend derives up to MaxRecommendations suggestions, ordered by priority
// then by estimated overall-score gain.
func Recommend(p *models.Profile, b Breakdown) []Recommendation {
	var recs []Recommendation
	add := func(priority int, category, field, msg string, impact float64) {
		recs = append(recs, Recommendation{
			Priority: priority,
			Category: category,
			Field:    field,
			Message:  msg,
			Impact:   round1(math.Max(impact, 0)),
		})
	}

	if gain := b.Potential - b.Overall; b.CompletionPercentage < 100 && gain > 0 {
		add(1, CategoryProfile, "completionPercentage",
			fmt.Sprintf("Complete your profile (currently %d%%)", b.CompletionPercentage), gain)
	}

	if p.GPA == nil {
		add(1, CategoryAcademic, "gpa", "Add your GPA", 40*WeightAcademic*0.75)
	}
	if p.SATScore == nil && p.ACTScore == nil {
		add(1, CategoryAcademic, "testScore", "Add an SAT or ACT score", 30*WeightAcademic*0.75)
	}

	switch n := len(p.LeadershipRoles); {
	case n == 0:
		add(1, CategoryLeadership, "leadershipRoles", "Add a leadership role", 50*WeightLeadership)
	case n < 3:
		add(2, CategoryLeadership, "leadershipRoles", "Add another leadership role", 25*WeightLeadership)
	}

	if n := len(p.Extracurriculars); n < 5 {
		add(2, CategoryExperience, "extracurriculars", "Add an extracurricular activity", 8*WeightExperience)
	}

	if gain := nextVolunteerTierGain(p.VolunteerHours); gain > 0 {
		add(2, CategoryExperience, "volunteerHours", "Log more volunteer hours to reach the next tier", gain*WeightExperience)
	}

	if n := len(p.WorkExperience); n < 2 {
		add(3, CategoryExperience, "workExperience", "Add work experience", 15*WeightExperience)
	}

	if p.ClassRank == nil || p.ClassSize == nil {
		add(3, CategoryAcademic, "classRank", "Add your class rank and class size", 10*WeightAcademic)
	}

	if n := len(p.Awards); n < 5 {
		add(3, CategoryAcademic, "awards", "Add honors or awards", 2*WeightAcademic)
	}

	// Informational only; these are not actionable.
	if p.FirstGeneration == nil {
		add(3, CategoryDemographics, "firstGeneration", "Tell us whether you are a first-generation student", 0)
	}
	if p.FinancialNeedLevel == nil {
		add(3, CategoryDemographics, "financialNeedLevel", "Share your financial need level", 0)
	}

	sort.SliceStable(recs, func(i, j int) bool {
		if recs[i].Priority != recs[j].Priority {
			return recs[i].Priority < recs[j].Priority
		}
		return recs[i].Impact > recs[j].Impact
	})
	if len(recs) > MaxRecommendations {
		recs = recs[:MaxRecommendations]
	}
	if recs == nil {
		recs = []Recommendation{}
	}
	return recs
}

// nextVolunteerTierGain returns the experience points gained by reaching the
// next volunteer-hours tier.
func nextVolunteerTierGain(hours *int) float64 {
	current := volunteerPoints(hours)
	h := 0
	if hours != nil {
		h = *hours
	}
	switch {
	case h >= 200:
		return 0
	case h >= 100:
		return 30 - current
	case h >= 50:
		return 20 - current
	default:
		return 10 - current
	}
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func clamp(v float64) float64 {
	v = finite(v)
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func round1(v float64) float64 {
	return math.Round(finite(v)*10) / 10
}
