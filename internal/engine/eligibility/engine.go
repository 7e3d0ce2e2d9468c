// internal/engine/eligibility/engine.go

// Package eligibility aggregates every applicable criterion of a scholarship
// into a pass/fail verdict and a 0–100 score. A criterion is applicable only
// if the scholarship defines it; absent criteria are skipped, not failed.
package eligibility

import (
	"math"

	"scholarship-engine/internal/common/logger"
	"scholarship-engine/internal/common/metrics"
	"scholarship-engine/internal/engine/condition"
	"scholarship-engine/internal/models"
)

// Engine evaluates applicant profiles against scholarship criteria. It is
// stateless and safe for unlimited concurrent use.
type Engine struct {
	logger logger.Logger
}

func NewEngine(log logger.Logger) *Engine {
	return &Engine{
		logger: log.WithFields(map[string]interface{}{"component": "eligibility"}),
	}
}

// Check runs every applicable condition and aggregates the results. The
// overall verdict is the AND over required-importance checks only; preferred
// and optional checks affect the score but never the verdict. A scholarship
// with no criteria at all admits everyone with a score of 100.
func (e *Engine) Check(applicant models.ApplicantProfile, criteria models.ScholarshipCriteria) models.EligibilityResult {
	metrics.EligibilityChecksTotal.Inc()

	conditions := e.buildConditions(applicant, criteria)

	checks := make([]models.CheckResult, 0, len(conditions)+len(criteria.CustomConditions))
	for _, c := range conditions {
		checks = append(checks, c.Evaluate())
	}

	// Custom administrator-defined conditions join the same aggregate under
	// the same importance-tier rule. A broken one becomes a failed check.
	for _, cc := range criteria.CustomConditions {
		checks = append(checks, e.evaluateCustom(applicant, cc))
	}

	result := aggregate(checks)

	e.logger.Debug("eligibility evaluated", map[string]interface{}{
		"applicantId":   applicant.ID,
		"scholarshipId": criteria.ScholarshipID,
		"passed":        result.Passed,
		"score":         result.Score,
		"checks":        len(result.Checks),
	})

	return result
}

func aggregate(checks []models.CheckResult) models.EligibilityResult {
	result := models.EligibilityResult{
		Checks:     checks,
		Categories: map[string]models.CategorySummary{},
	}

	if len(checks) == 0 {
		result.Passed = true
		result.Score = 100
		return result
	}

	passedCount := 0
	requiredFailed := false
	for _, check := range checks {
		summary := result.Categories[check.Category]
		summary.Total++
		if check.Passed {
			summary.Passed++
			passedCount++
		} else if check.Importance == models.ImportanceRequired {
			requiredFailed = true
		}
		result.Categories[check.Category] = summary
	}

	result.Passed = !requiredFailed
	result.Score = int(math.Round(100 * float64(passedCount) / float64(len(checks))))
	return result
}

// buildConditions translates the defined criteria into condition variants.
func (e *Engine) buildConditions(applicant models.ApplicantProfile, criteria models.ScholarshipCriteria) []condition.Condition {
	var conditions []condition.Condition

	// --- Academic ranges ---
	if criteria.MaxGWA != nil {
		conditions = append(conditions, condition.Range{
			Name:       "gwa",
			Category:   models.CategoryAcademic,
			Importance: models.ImportanceRequired,
			Value:      applicant.GWA,
			Op:         condition.RangeLTE,
			Threshold:  *criteria.MaxGWA,
		})
	}
	if criteria.MinGWA != nil {
		conditions = append(conditions, condition.Range{
			Name:       "gwaLowerBound",
			Category:   models.CategoryAcademic,
			Importance: models.ImportanceRequired,
			Value:      applicant.GWA,
			Op:         condition.RangeGTE,
			Threshold:  *criteria.MinGWA,
		})
	}
	if criteria.MinUnits != nil {
		conditions = append(conditions, condition.Range{
			Name:       "unitsEnrolled",
			Category:   models.CategoryAcademic,
			Importance: models.ImportanceRequired,
			Value:      intPtrToFloat(applicant.UnitsEnrolled),
			Op:         condition.RangeGTE,
			Threshold:  float64(*criteria.MinUnits),
		})
	}

	// --- Financial ranges ---
	if criteria.MaxIncome != nil {
		conditions = append(conditions, condition.Range{
			Name:       "annualFamilyIncome",
			Category:   models.CategoryFinancial,
			Importance: models.ImportanceRequired,
			Value:      applicant.AnnualFamilyIncome,
			Op:         condition.RangeLTE,
			Threshold:  *criteria.MaxIncome,
		})
	}
	if criteria.MinIncome != nil {
		conditions = append(conditions, condition.Range{
			Name:       "incomeLowerBound",
			Category:   models.CategoryFinancial,
			Importance: models.ImportanceRequired,
			Value:      applicant.AnnualFamilyIncome,
			Op:         condition.RangeGTE,
			Threshold:  *criteria.MinIncome,
		})
	}
	if len(criteria.EligibleSTBrackets) > 0 {
		conditions = append(conditions, condition.List{
			Name:       "stBracket",
			Category:   models.CategoryFinancial,
			Importance: models.ImportanceRequired,
			Values:     []string{applicant.STBracket},
			Op:         condition.ListIn,
			Required:   criteria.EligibleSTBrackets,
		})
	}

	// --- Academic lists (free text, fuzzy matched) ---
	if len(criteria.EligibleColleges) > 0 {
		conditions = append(conditions, condition.List{
			Name:       "college",
			Category:   models.CategoryAcademic,
			Importance: models.ImportanceRequired,
			Values:     []string{applicant.College},
			Op:         condition.ListMatchesAny,
			Required:   criteria.EligibleColleges,
		})
	}
	if len(criteria.EligibleCourses) > 0 {
		conditions = append(conditions, condition.List{
			Name:       "course",
			Category:   models.CategoryAcademic,
			Importance: models.ImportanceRequired,
			Values:     []string{applicant.Course},
			Op:         condition.ListMatchesAny,
			Required:   criteria.EligibleCourses,
		})
	}
	if len(criteria.EligibleMajors) > 0 {
		conditions = append(conditions, condition.List{
			Name:       "major",
			Category:   models.CategoryAcademic,
			Importance: models.ImportancePreferred,
			Values:     []string{applicant.Major},
			Op:         condition.ListMatchesAny,
			Required:   criteria.EligibleMajors,
		})
	}
	if len(criteria.EligibleClassifications) > 0 {
		conditions = append(conditions, condition.List{
			Name:       "classification",
			Category:   models.CategoryAcademic,
			Importance: models.ImportanceRequired,
			Values:     []string{applicant.Classification},
			Op:         condition.ListMatchesAny,
			Required:   criteria.EligibleClassifications,
		})
	}

	// --- Demographic / location lists ---
	if len(criteria.EligibleCitizenships) > 0 {
		conditions = append(conditions, condition.List{
			Name:       "citizenship",
			Category:   models.CategoryDemographic,
			Importance: models.ImportanceRequired,
			Values:     []string{applicant.Citizenship},
			Op:         condition.ListMatchesAny,
			Required:   criteria.EligibleCitizenships,
		})
	}
	if len(criteria.EligibleProvinces) > 0 {
		conditions = append(conditions, condition.List{
			Name:       "province",
			Category:   models.CategoryLocation,
			Importance: models.ImportanceRequired,
			Values:     []string{applicant.Province},
			Op:         condition.ListMatchesAny,
			Required:   criteria.EligibleProvinces,
		})
	}

	// --- Boolean requirements (must-not flags) ---
	conditions = appendFlagCondition(conditions, "noExistingScholarship", criteria.RequireNoExistingScholarship, applicant.HasExistingScholarship)
	conditions = appendFlagCondition(conditions, "noThesisGrant", criteria.RequireNoThesisGrant, applicant.HasThesisGrant)
	conditions = appendFlagCondition(conditions, "noDisciplinaryRecord", criteria.RequireNoDisciplinaryRecord, applicant.HasDisciplinaryRecord)
	conditions = appendFlagCondition(conditions, "noFailingGrades", criteria.RequireNoFailingGrades, applicant.HasFailingGrades)
	conditions = appendFlagCondition(conditions, "noIncompleteGrades", criteria.RequireNoIncompleteGrades, applicant.HasIncompleteGrades)
	conditions = appendFlagCondition(conditions, "notGraduating", criteria.RequireNotGraduating, applicant.IsGraduating)

	return conditions
}

// appendFlagCondition adds a must-not check when the scholarship requires the
// flag to be absent. A nil or false requirement imposes nothing.
func appendFlagCondition(conditions []condition.Condition, name string, required *bool, value bool) []condition.Condition {
	if required == nil || !*required {
		return conditions
	}
	return append(conditions, condition.Boolean{
		Name:       name,
		Category:   models.CategoryStatus,
		Importance: models.ImportanceRequired,
		Value:      value,
		Op:         condition.BoolIsFalse,
	})
}

func intPtrToFloat(v *int) *float64 {
	if v == nil {
		return nil
	}
	f := float64(*v)
	return &f
}
