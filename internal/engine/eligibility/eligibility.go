// Package eligibility applies a scholarship's hard eligibility rules to a
// profile. Absent criteria blocks place no constraint; a constraint the
// profile has no value for fails.
package eligibility

import (
	"fmt"
	"time"

	"scholarship-workers/internal/common/textutil"
	"scholarship-workers/internal/models"
)

type Dimension string

const (
	DimensionAcademic    Dimension = "academic"
	DimensionDemographic Dimension = "demographic"
	DimensionMajor       Dimension = "major"
	DimensionExperience  Dimension = "experience"
	DimensionFinancial   Dimension = "financial"
	DimensionSpecial     Dimension = "special"
)

// Dimensions lists every dimension in evaluation order.
var Dimensions = []Dimension{
	DimensionAcademic,
	DimensionDemographic,
	DimensionMajor,
	DimensionExperience,
	DimensionFinancial,
	DimensionSpecial,
}

type Result struct {
	Eligible        bool      `json:"eligible"`
	FailedDimension Dimension `json:"failedDimension,omitempty"`
	Reason          string    `json:"reason,omitempty"`
}

var pass = Result{Eligible: true}

func fail(d Dimension, format string, args ...interface{}) Result {
	return Result{FailedDimension: d, Reason: fmt.Sprintf(format, args...)}
}

// Check evaluates every present block and reports the first failure. asOf
// anchors age calculations.
func Check(p *models.Profile, c models.EligibilityCriteria, asOf time.Time) Result {
	if p == nil {
		p = &models.Profile{}
	}
	checks := []func() Result{
		func() Result { return checkAcademic(p, c.Academic) },
		func() Result { return checkDemographic(p, c.Demographic, asOf) },
		func() Result { return checkMajor(p, c.Major) },
		func() Result { return checkExperience(p, c.Experience) },
		func() Result { return checkFinancial(p, c.Financial) },
		func() Result { return checkSpecial(p, c.Special) },
	}
	for _, check := range checks {
		if r := check(); !r.Eligible {
			return r
		}
	}
	return pass
}

// Exclusion records why a scholarship was dropped from a candidate set.
type Exclusion struct {
	ScholarshipID   string    `json:"scholarshipId"`
	FailedDimension Dimension `json:"failedDimension"`
	Reason          string    `json:"reason"`
}

// Partition splits scholarships into the eligible candidate set and the
// exclusions, preserving input order in both.
func Partition(p *models.Profile, scholarships []models.Scholarship, asOf time.Time) ([]models.Scholarship, []Exclusion) {
	eligible := make([]models.Scholarship, 0, len(scholarships))
	var excluded []Exclusion
	for _, s := range scholarships {
		r := Check(p, s.Eligibility, asOf)
		if r.Eligible {
			eligible = append(eligible, s)
			continue
		}
		excluded = append(excluded, Exclusion{
			ScholarshipID:   s.ID,
			FailedDimension: r.FailedDimension,
			Reason:          r.Reason,
		})
	}
	return eligible, excluded
}

func checkAcademic(p *models.Profile, c *models.AcademicCriteria) Result {
	if c == nil {
		return pass
	}

	if c.MinGPA != nil || c.MaxGPA != nil {
		if c.MinGPA != nil && c.MaxGPA != nil && *c.MinGPA > *c.MaxGPA {
			return fail(DimensionAcademic, "gpa range %.2f-%.2f is unsatisfiable", *c.MinGPA, *c.MaxGPA)
		}
		gpa, ok := p.NormalizedGPA()
		if !ok {
			return fail(DimensionAcademic, "gpa required")
		}
		if c.MinGPA != nil && gpa < *c.MinGPA {
			return fail(DimensionAcademic, "gpa %.2f below minimum %.2f", gpa, *c.MinGPA)
		}
		if c.MaxGPA != nil && gpa > *c.MaxGPA {
			return fail(DimensionAcademic, "gpa %.2f above maximum %.2f", gpa, *c.MaxGPA)
		}
	}

	if r := checkIntRange(DimensionAcademic, "sat", p.SATScore, c.MinSAT, c.MaxSAT); !r.Eligible {
		return r
	}
	if r := checkIntRange(DimensionAcademic, "act", p.ACTScore, c.MinACT, c.MaxACT); !r.Eligible {
		return r
	}

	if c.ClassRankPercentile != nil {
		if p.ClassRank == nil || p.ClassSize == nil || *p.ClassSize <= 0 {
			return fail(DimensionAcademic, "class rank required")
		}
		top := float64(*p.ClassRank) / float64(*p.ClassSize) * 100
		if top > *c.ClassRankPercentile {
			return fail(DimensionAcademic, "class rank in top %.1f%%, requires top %.1f%%", top, *c.ClassRankPercentile)
		}
	}
	return pass
}

func checkIntRange(d Dimension, name string, v, lo, hi *int) Result {
	if lo == nil && hi == nil {
		return pass
	}
	if lo != nil && hi != nil && *lo > *hi {
		return fail(d, "%s range %d-%d is unsatisfiable", name, *lo, *hi)
	}
	if v == nil {
		return fail(d, "%s required", name)
	}
	if lo != nil && *v < *lo {
		return fail(d, "%s %d below minimum %d", name, *v, *lo)
	}
	if hi != nil && *v > *hi {
		return fail(d, "%s %d above maximum %d", name, *v, *hi)
	}
	return pass
}

func checkDemographic(p *models.Profile, c *models.DemographicCriteria, asOf time.Time) Result {
	if c == nil {
		return pass
	}

	if !textutil.IsBlank(c.Gender) && textutil.KeyPtr(p.Gender) != textutil.KeyPtr(c.Gender) {
		return fail(DimensionDemographic, "gender must be %s", *c.Gender)
	}

	if len(c.Ethnicities) > 0 && !anyIn(p.Ethnicity, textutil.KeySet(c.Ethnicities)) {
		return fail(DimensionDemographic, "ethnicity not in eligible list")
	}

	if c.MinAge != nil || c.MaxAge != nil {
		if c.MinAge != nil && c.MaxAge != nil && *c.MinAge > *c.MaxAge {
			return fail(DimensionDemographic, "age range %d-%d is unsatisfiable", *c.MinAge, *c.MaxAge)
		}
		age, ok := p.AgeAt(asOf)
		if !ok {
			return fail(DimensionDemographic, "date of birth required")
		}
		if c.MinAge != nil && age < *c.MinAge {
			return fail(DimensionDemographic, "age %d below minimum %d", age, *c.MinAge)
		}
		if c.MaxAge != nil && age > *c.MaxAge {
			return fail(DimensionDemographic, "age %d above maximum %d", age, *c.MaxAge)
		}
	}

	state := textutil.KeyPtr(p.State)
	if len(c.States) > 0 {
		if _, ok := textutil.KeySet(c.States)[state]; !ok || state == "" {
			return fail(DimensionDemographic, "state not in eligible list")
		}
	}
	if !textutil.IsBlank(c.ResidencyState) && state != textutil.KeyPtr(c.ResidencyState) {
		return fail(DimensionDemographic, "residency in %s required", *c.ResidencyState)
	}
	return pass
}

func checkMajor(p *models.Profile, c *models.MajorCriteria) Result {
	if c == nil {
		return pass
	}
	majors := StudentMajors(p)

	if len(c.ExcludedMajors) > 0 && anyIn(majors, textutil.KeySet(c.ExcludedMajors)) {
		return fail(DimensionMajor, "major is excluded")
	}
	if len(c.EligibleMajors) > 0 && !anyIn(majors, textutil.KeySet(c.EligibleMajors)) {
		return fail(DimensionMajor, "major not in eligible list")
	}
	if !textutil.IsBlank(c.RequiredField) {
		if !anyIn(majors, map[string]struct{}{textutil.KeyPtr(c.RequiredField): {}}) {
			return fail(DimensionMajor, "field %s required", *c.RequiredField)
		}
	}
	return pass
}

// StudentMajors returns the profile's intended major and field of study.
func StudentMajors(p *models.Profile) []string {
	var out []string
	if !textutil.IsBlank(p.IntendedMajor) {
		out = append(out, *p.IntendedMajor)
	}
	if !textutil.IsBlank(p.FieldOfStudy) {
		out = append(out, *p.FieldOfStudy)
	}
	return out
}

func checkExperience(p *models.Profile, c *models.ExperienceCriteria) Result {
	if c == nil {
		return pass
	}

	if c.MinVolunteerHours != nil {
		if p.VolunteerHours == nil {
			return fail(DimensionExperience, "volunteer hours required")
		}
		if *p.VolunteerHours < *c.MinVolunteerHours {
			return fail(DimensionExperience, "volunteer hours %d below minimum %d", *p.VolunteerHours, *c.MinVolunteerHours)
		}
	}

	if len(c.RequiredActivities) > 0 {
		have := activityKeys(p)
		for _, req := range c.RequiredActivities {
			k := textutil.Key(req)
			if k == "" {
				continue
			}
			if _, ok := have[k]; !ok {
				return fail(DimensionExperience, "activity %s required", req)
			}
		}
	}

	if c.LeadershipRequired != nil && *c.LeadershipRequired && len(p.LeadershipRoles) == 0 {
		return fail(DimensionExperience, "leadership experience required")
	}

	if c.MinWorkMonths != nil {
		if months := p.TotalWorkMonths(); months < *c.MinWorkMonths {
			return fail(DimensionExperience, "work experience %d months below minimum %d", months, *c.MinWorkMonths)
		}
	}
	return pass
}

// activityKeys indexes extracurriculars by both name and category.
func activityKeys(p *models.Profile) map[string]struct{} {
	keys := make(map[string]struct{}, len(p.Extracurriculars)*2)
	for _, e := range p.Extracurriculars {
		if k := textutil.Key(e.Name); k != "" {
			keys[k] = struct{}{}
		}
		if k := textutil.Key(e.Category); k != "" {
			keys[k] = struct{}{}
		}
	}
	return keys
}

func checkFinancial(p *models.Profile, c *models.FinancialCriteria) Result {
	if c == nil {
		return pass
	}

	if c.NeedRequired != nil && *c.NeedRequired {
		if p.FinancialNeedLevel == nil || p.FinancialNeedLevel.Rank() <= models.NeedLow.Rank() {
			return fail(DimensionFinancial, "demonstrated financial need required")
		}
	}
	if c.MaxEFC != nil {
		if p.EFC == nil {
			return fail(DimensionFinancial, "expected family contribution required")
		}
		if *p.EFC > *c.MaxEFC {
			return fail(DimensionFinancial, "efc %d above maximum %d", *p.EFC, *c.MaxEFC)
		}
	}
	if c.PellRequired != nil && *c.PellRequired && (p.PellEligible == nil || !*p.PellEligible) {
		return fail(DimensionFinancial, "pell eligibility required")
	}
	if c.NeedLevel != nil {
		if p.FinancialNeedLevel == nil {
			return fail(DimensionFinancial, "financial need level required")
		}
		if p.FinancialNeedLevel.Rank() < c.NeedLevel.Rank() {
			return fail(DimensionFinancial, "need level %s below %s", *p.FinancialNeedLevel, *c.NeedLevel)
		}
	}
	return pass
}

func checkSpecial(p *models.Profile, c *models.SpecialCriteria) Result {
	if c == nil {
		return pass
	}

	if c.FirstGenRequired != nil && *c.FirstGenRequired && (p.FirstGeneration == nil || !*p.FirstGeneration) {
		return fail(DimensionSpecial, "first-generation status required")
	}
	if c.MilitaryRequired != nil && *c.MilitaryRequired &&
		(p.MilitaryAffiliation == nil || !p.MilitaryAffiliation.Qualifies()) {
		return fail(DimensionSpecial, "military affiliation required")
	}
	if c.DisabilityRequired != nil && *c.DisabilityRequired && (p.HasDisability == nil || !*p.HasDisability) {
		return fail(DimensionSpecial, "disability status required")
	}
	if len(c.Citizenship) > 0 {
		if _, ok := textutil.KeySet(c.Citizenship)[textutil.KeyPtr(p.Citizenship)]; !ok {
			return fail(DimensionSpecial, "citizenship not in eligible list")
		}
	}
	return pass
}

func anyIn(values []string, set map[string]struct{}) bool {
	for _, v := range values {
		if _, ok := set[textutil.Key(v)]; ok {
			return true
		}
	}
	return false
}
