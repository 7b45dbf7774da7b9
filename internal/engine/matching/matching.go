// Package matching scores how well a profile fits each eligibility dimension
// of a scholarship and combines the dimensions into one match score.
package matching

import (
	"math"
	"strings"
	"time"

	"scholarship-workers/internal/common/textutil"
	"scholarship-workers/internal/engine/eligibility"
	"scholarship-workers/internal/models"
)

// Dimension weights. Only dimensions the scholarship constrains take part in
// the overall score, so the weights are renormalized per scholarship.
const (
	WeightAcademic    = 0.25
	WeightDemographic = 0.15
	WeightMajor       = 0.20
	WeightExperience  = 0.15
	WeightFinancial   = 0.15
	WeightSpecial     = 0.10
)

// NeutralScore is the overall score of a scholarship with no criteria at all.
const NeutralScore = 50.0

// Academic proximity: meeting a minimum earns passFloor, and the remaining
// points accrue linearly over one span of headroom.
const (
	passFloor = 70.0
	gpaSpan   = 0.5
	satSpan   = 200.0
	actSpan   = 5.0
)

// Major scoring: share of the score carried by career keyword matches when
// the scholarship also lists majors or a field.
const keywordShare = 0.2

// Score computes every dimension present on s and the overall weighted score.
// asOf anchors age windows.
func Score(p *models.Profile, s *models.Scholarship, asOf time.Time) (models.DimensionScores, float64) {
	if p == nil {
		p = &models.Profile{}
	}
	c := s.Eligibility
	var d models.DimensionScores

	if c.Academic.HasConstraints() {
		d.Academic = score(academic(p, c.Academic))
	}
	if c.Demographic.HasConstraints() {
		d.Demographic = score(demographic(p, c.Demographic, asOf))
	}
	if c.Major.HasConstraints() {
		d.Major = score(major(p, c.Major))
	}
	if c.Experience.HasConstraints() {
		d.Experience = score(experience(p, c.Experience))
	}
	if c.Financial.HasConstraints() {
		d.Financial = score(financial(p, c.Financial))
	}
	if c.Special.HasConstraints() {
		d.Special = score(special(p, c.Special))
	}
	return d, Overall(d)
}

// Overall is the weighted mean of the present dimensions, or NeutralScore
// when none are present.
func Overall(d models.DimensionScores) float64 {
	weighted := []struct {
		score  *float64
		weight float64
	}{
		{d.Academic, WeightAcademic},
		{d.Demographic, WeightDemographic},
		{d.Major, WeightMajor},
		{d.Experience, WeightExperience},
		{d.Financial, WeightFinancial},
		{d.Special, WeightSpecial},
	}

	sum, weights := 0.0, 0.0
	for _, w := range weighted {
		if w.score == nil {
			continue
		}
		sum += *w.score * w.weight
		weights += w.weight
	}
	if weights == 0 {
		return NeutralScore
	}
	return round1(sum / weights)
}

func academic(p *models.Profile, c *models.AcademicCriteria) float64 {
	var parts []float64

	if c.MinGPA != nil || c.MaxGPA != nil {
		gpa, ok := p.NormalizedGPA()
		parts = append(parts, rangeFit(gpa, ok, c.MinGPA, c.MaxGPA, gpaSpan))
	}
	if c.MinSAT != nil || c.MaxSAT != nil {
		parts = append(parts, rangeFit(intVal(p.SATScore), p.SATScore != nil, floatPtr(c.MinSAT), floatPtr(c.MaxSAT), satSpan))
	}
	if c.MinACT != nil || c.MaxACT != nil {
		parts = append(parts, rangeFit(intVal(p.ACTScore), p.ACTScore != nil, floatPtr(c.MinACT), floatPtr(c.MaxACT), actSpan))
	}
	if c.ClassRankPercentile != nil {
		parts = append(parts, rankFit(p, *c.ClassRankPercentile))
	}
	return mean(parts)
}

// rangeFit scores a value against optional bounds. Inside the bounds the
// score rises from passFloor toward 100 with headroom above the minimum;
// outside them it falls off to 0 over one span.
func rangeFit(v float64, ok bool, lo, hi *float64, span float64) float64 {
	if !ok {
		return 0
	}
	if lo != nil && hi != nil && *lo > *hi {
		return 0
	}
	if hi != nil && v > *hi {
		return falloff(v-*hi, span)
	}
	if lo == nil {
		return 100
	}
	if v < *lo {
		return falloff(*lo-v, span)
	}
	return passFloor + (100-passFloor)*math.Min(1, (v-*lo)/span)
}

func falloff(gap, span float64) float64 {
	return math.Max(0, passFloor*(1-gap/span))
}

func rankFit(p *models.Profile, topPercent float64) float64 {
	if p.ClassRank == nil || p.ClassSize == nil || *p.ClassSize <= 0 || topPercent <= 0 {
		return 0
	}
	top := float64(*p.ClassRank) / float64(*p.ClassSize) * 100
	if top > topPercent {
		return falloff(top-topPercent, topPercent)
	}
	return passFloor + (100-passFloor)*((topPercent-top)/topPercent)
}

func demographic(p *models.Profile, c *models.DemographicCriteria, asOf time.Time) float64 {
	present, matched := 0, 0
	tally := func(ok bool) {
		present++
		if ok {
			matched++
		}
	}

	if !textutil.IsBlank(c.Gender) {
		tally(textutil.KeyPtr(p.Gender) == textutil.KeyPtr(c.Gender))
	}
	if len(c.Ethnicities) > 0 {
		tally(anyIn(p.Ethnicity, textutil.KeySet(c.Ethnicities)))
	}
	if c.MinAge != nil || c.MaxAge != nil {
		r := eligibility.Check(p, models.EligibilityCriteria{Demographic: &models.DemographicCriteria{
			MinAge: c.MinAge,
			MaxAge: c.MaxAge,
		}}, asOf)
		tally(r.Eligible)
	}
	state := textutil.KeyPtr(p.State)
	if len(c.States) > 0 {
		_, ok := textutil.KeySet(c.States)[state]
		tally(ok && state != "")
	}
	if !textutil.IsBlank(c.ResidencyState) {
		tally(state != "" && state == textutil.KeyPtr(c.ResidencyState))
	}
	return fraction(matched, present)
}

func major(p *models.Profile, c *models.MajorCriteria) float64 {
	majors := eligibility.StudentMajors(p)

	var base []float64
	if len(c.EligibleMajors) > 0 {
		base = append(base, boolScore(anyIn(majors, textutil.KeySet(c.EligibleMajors))))
	}
	if !textutil.IsBlank(c.RequiredField) {
		base = append(base, boolScore(anyIn(majors, map[string]struct{}{textutil.KeyPtr(c.RequiredField): {}})))
	}
	if len(c.ExcludedMajors) > 0 {
		base = append(base, boolScore(!anyIn(majors, textutil.KeySet(c.ExcludedMajors))))
	}

	if len(c.CareerKeywords) == 0 {
		return mean(base)
	}

	frac := keywordFraction(p, c.CareerKeywords)
	if len(base) == 0 {
		return 50 + 50*frac
	}
	return mean(base)*(1-keywordShare) + 100*keywordShare*frac
}

// keywordFraction is the share of career keywords found in the student's
// career goals, intended major, or field of study.
func keywordFraction(p *models.Profile, keywords []string) float64 {
	haystack := strings.Join([]string{
		textutil.KeyPtr(p.CareerGoals),
		textutil.KeyPtr(p.IntendedMajor),
		textutil.KeyPtr(p.FieldOfStudy),
	}, " ")

	total, hits := 0, 0
	for _, kw := range keywords {
		k := textutil.Key(kw)
		if k == "" {
			continue
		}
		total++
		if strings.Contains(haystack, k) {
			hits++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total)
}

func experience(p *models.Profile, c *models.ExperienceCriteria) float64 {
	var parts []float64

	if c.MinVolunteerHours != nil {
		parts = append(parts, coverage(intVal(p.VolunteerHours), float64(*c.MinVolunteerHours)))
	}
	if len(c.RequiredActivities) > 0 {
		have := make(map[string]struct{}, len(p.Extracurriculars)*2)
		for _, e := range p.Extracurriculars {
			have[textutil.Key(e.Name)] = struct{}{}
			have[textutil.Key(e.Category)] = struct{}{}
		}
		total, hits := 0, 0
		for _, a := range c.RequiredActivities {
			k := textutil.Key(a)
			if k == "" {
				continue
			}
			total++
			if _, ok := have[k]; ok {
				hits++
			}
		}
		if total > 0 {
			parts = append(parts, 100*float64(hits)/float64(total))
		}
	}
	if c.LeadershipRequired != nil && *c.LeadershipRequired {
		parts = append(parts, boolScore(len(p.LeadershipRoles) > 0))
	}
	if c.MinWorkMonths != nil {
		parts = append(parts, coverage(float64(p.TotalWorkMonths()), float64(*c.MinWorkMonths)))
	}
	return mean(parts)
}

// coverage is have/need as a percentage, capped at 100. A non-positive need is
// always covered.
func coverage(have, need float64) float64 {
	if need <= 0 {
		return 100
	}
	return 100 * math.Max(0, math.Min(1, have/need))
}

func financial(p *models.Profile, c *models.FinancialCriteria) float64 {
	var parts []float64
	need := 0
	if p.FinancialNeedLevel != nil {
		need = p.FinancialNeedLevel.Rank()
	}

	if c.NeedRequired != nil && *c.NeedRequired {
		parts = append(parts, 100*float64(need)/float64(models.NeedVeryHigh.Rank()))
	}
	if c.MaxEFC != nil {
		parts = append(parts, efcFit(p.EFC, *c.MaxEFC))
	}
	if c.PellRequired != nil && *c.PellRequired {
		parts = append(parts, boolScore(p.PellEligible != nil && *p.PellEligible))
	}
	if c.NeedLevel != nil {
		parts = append(parts, needLevelFit(need, c.NeedLevel.Rank()))
	}
	return mean(parts)
}

// efcFit favors lower expected family contributions within the cap.
func efcFit(efc *int, maxEFC int) float64 {
	if efc == nil || *efc > maxEFC {
		return 0
	}
	if maxEFC <= 0 {
		return 100
	}
	return passFloor + (100-passFloor)*(1-float64(*efc)/float64(maxEFC))
}

func needLevelFit(have, want int) float64 {
	top := models.NeedVeryHigh.Rank()
	if have == 0 || have < want {
		return 0
	}
	if want >= top {
		return 100
	}
	return passFloor + (100-passFloor)*float64(have-want)/float64(top-want)
}

func special(p *models.Profile, c *models.SpecialCriteria) float64 {
	present, matched := 0, 0
	tally := func(ok bool) {
		present++
		if ok {
			matched++
		}
	}

	if c.FirstGenRequired != nil && *c.FirstGenRequired {
		tally(p.FirstGeneration != nil && *p.FirstGeneration)
	}
	if c.MilitaryRequired != nil && *c.MilitaryRequired {
		tally(p.MilitaryAffiliation != nil && p.MilitaryAffiliation.Qualifies())
	}
	if c.DisabilityRequired != nil && *c.DisabilityRequired {
		tally(p.HasDisability != nil && *p.HasDisability)
	}
	if len(c.Citizenship) > 0 {
		_, ok := textutil.KeySet(c.Citizenship)[textutil.KeyPtr(p.Citizenship)]
		tally(ok)
	}
	return fraction(matched, present)
}

func fraction(matched, present int) float64 {
	if present == 0 {
		return 100
	}
	return 100 * float64(matched) / float64(present)
}

func anyIn(values []string, set map[string]struct{}) bool {
	for _, v := range values {
		if _, ok := set[textutil.Key(v)]; ok {
			return true
		}
	}
	return false
}

func boolScore(ok bool) float64 {
	if ok {
		return 100
	}
	return 0
}

func mean(parts []float64) float64 {
	if len(parts) == 0 {
		return 100
	}
	sum := 0.0
	for _, v := range parts {
		sum += v
	}
	return sum / float64(len(parts))
}

func intVal(v *int) float64 {
	if v == nil {
		return 0
	}
	return float64(*v)
}

func floatPtr(v *int) *float64 {
	if v == nil {
		return nil
	}
	f := float64(*v)
	return &f
}

// score clamps, guards, and rounds a dimension score.
func score(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		v = 0
	}
	v = math.Max(0, math.Min(100, v))
	r := round1(v)
	return &r
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
