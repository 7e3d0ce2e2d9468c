// internal/engine/features/extractor.go

// Package features maps (applicant, scholarship, application context) to the
// fixed numeric feature vector consumed by training and prediction. The
// mapping is deterministic and side-effect free; every feature lands in [0,1]
// under nominal inputs.
package features

import (
	"strings"

	"scholarship-engine/internal/engine/condition"
	"scholarship-engine/internal/engine/eligibility"
	"scholarship-engine/internal/models"
)

// Base feature names.
const (
	FeatureGWAScore             = "gwaScore"
	FeatureYearLevelMatch       = "yearLevelMatch"
	FeatureIncomeMatch          = "incomeMatch"
	FeatureSTBracketMatch       = "stBracketMatch"
	FeatureCollegeMatch         = "collegeMatch"
	FeatureCourseMatch          = "courseMatch"
	FeatureCitizenshipMatch     = "citizenshipMatch"
	FeatureDocumentCompleteness = "documentCompleteness"
	FeatureApplicationTiming    = "applicationTiming"
	FeatureEligibilityScore     = "eligibilityScore"
)

// Pairwise-interaction feature names.
const (
	FeatureAcademicStrength   = "academicStrength"
	FeatureFinancialNeed      = "financialNeed"
	FeatureProgramFit         = "programFit"
	FeatureApplicationQuality = "applicationQuality"
	FeatureOverallFit         = "overallFit"
)

// Names is the fixed feature order: 10 base features then 5 interactions.
// Training iterates weights in this order so runs are reproducible.
var Names = []string{
	FeatureGWAScore,
	FeatureYearLevelMatch,
	FeatureIncomeMatch,
	FeatureSTBracketMatch,
	FeatureCollegeMatch,
	FeatureCourseMatch,
	FeatureCitizenshipMatch,
	FeatureDocumentCompleteness,
	FeatureApplicationTiming,
	FeatureEligibilityScore,
	FeatureAcademicStrength,
	FeatureFinancialNeed,
	FeatureProgramFit,
	FeatureApplicationQuality,
	FeatureOverallFit,
}

// Vector is one computed feature vector, keyed by feature name. It is
// ephemeral: computed on demand, never persisted on its own.
type Vector map[string]float64

// Ordered returns the values in the canonical Names order.
func (v Vector) Ordered() []float64 {
	out := make([]float64, len(Names))
	for i, name := range Names {
		out[i] = v[name]
	}
	return out
}

// Placeholder values used at prediction time, when no submission exists yet
// and the document/timing features have nothing to measure.
const (
	PlaceholderDocumentCompleteness = 0.8
	PlaceholderApplicationTiming    = 0.7
)

// Neutral defaults for missing profile fields. Feature computation degrades
// to these instead of failing the whole prediction.
const (
	neutralGWAScore    = 0.5
	neutralIncomeScore = 0.5
	noIncomeCriterion  = 0.8
	noBracketCriterion = 0.8
	defaultNeedScore   = 0.8
)

// needScoreByBracket maps tuition-discount bracket labels to a need-intensity
// score. Higher discount implies higher financial need.
var needScoreByBracket = map[string]float64{
	"nd":  0.1,
	"st1": 0.3,
	"st2": 0.45,
	"st3": 0.6,
	"st4": 0.75,
	"st5": 0.9,
	"fd":  1.0,
	"fds": 1.0,
}

// Extractor computes feature vectors. It owns an eligibility engine because
// the eligibility score is itself a feature.
type Extractor struct {
	eligibility *eligibility.Engine
}

func NewExtractor(elig *eligibility.Engine) *Extractor {
	return &Extractor{eligibility: elig}
}

// Extract computes the full feature vector for one applicant against one
// scholarship. appCtx is nil at prediction time; the document and timing
// features then use fixed placeholders. The eligibility result is returned
// alongside so callers don't evaluate twice.
func (x *Extractor) Extract(applicant models.ApplicantProfile, criteria models.ScholarshipCriteria, appCtx *models.ApplicationContext) (Vector, models.EligibilityResult) {
	elig := x.eligibility.Check(applicant, criteria)

	v := Vector{
		FeatureGWAScore:         gwaScore(applicant.GWA, criteria.MaxGWA),
		FeatureYearLevelMatch:   yearLevelMatch(applicant.Classification, criteria.EligibleClassifications),
		FeatureIncomeMatch:      incomeMatch(applicant.AnnualFamilyIncome, criteria.MaxIncome),
		FeatureSTBracketMatch:   stBracketMatch(applicant.STBracket, criteria.EligibleSTBrackets),
		FeatureCollegeMatch:     listMatch(applicant.College, criteria.EligibleColleges),
		FeatureCourseMatch:      listMatch(applicant.Course, criteria.EligibleCourses),
		FeatureCitizenshipMatch: listMatch(applicant.Citizenship, criteria.EligibleCitizenships),
		FeatureEligibilityScore: float64(elig.Score) / 100,
	}

	if appCtx == nil {
		v[FeatureDocumentCompleteness] = PlaceholderDocumentCompleteness
		v[FeatureApplicationTiming] = PlaceholderApplicationTiming
	} else {
		v[FeatureDocumentCompleteness] = documentCompleteness(appCtx.SubmittedDocuments, criteria.RequiredDocuments)
		v[FeatureApplicationTiming] = applicationTiming(appCtx)
	}

	v[FeatureAcademicStrength] = v[FeatureGWAScore] * v[FeatureYearLevelMatch]
	v[FeatureFinancialNeed] = v[FeatureIncomeMatch] * v[FeatureSTBracketMatch]
	v[FeatureProgramFit] = v[FeatureCollegeMatch] * v[FeatureCourseMatch]
	v[FeatureApplicationQuality] = v[FeatureDocumentCompleteness] * v[FeatureApplicationTiming]
	v[FeatureOverallFit] = v[FeatureEligibilityScore] * v[FeatureAcademicStrength]

	return v, elig
}

// gwaScore rescales GWA (lower is better, 1.0–5.0) to [0,1], with a bonus of
// up to +0.2 proportional to how far the GWA sits below the scholarship's
// required threshold. Clipped to 1.0; missing GWA is neutral.
func gwaScore(gwa *float64, maxGWA *float64) float64 {
	if gwa == nil {
		return neutralGWAScore
	}

	score := (5.0 - *gwa) / 4.0

	if maxGWA != nil && *maxGWA > 0 && *gwa < *maxGWA {
		margin := (*maxGWA - *gwa) / *maxGWA
		score += 0.2 * margin
	}

	return clamp01(score)
}

// yearLevelMatch is binary: the normalized classification string must match
// (exact or substring) an eligible classification. No restriction matches
// everyone.
func yearLevelMatch(classification string, eligible []string) float64 {
	if len(eligible) == 0 {
		return 1.0
	}
	if condition.FuzzyContains(eligible, classification) {
		return 1.0
	}
	return 0.0
}

// incomeMatch rewards income further below the maximum-income threshold:
// 1.0 - 0.5*(income/threshold) inside the threshold, 0.0 above it. Without a
// threshold the feature is a neutral 0.8; with a threshold but no reported
// income it degrades to 0.5.
func incomeMatch(income *float64, maxIncome *float64) float64 {
	if maxIncome == nil || *maxIncome <= 0 {
		return noIncomeCriterion
	}
	if income == nil {
		return neutralIncomeScore
	}
	if *income > *maxIncome {
		return 0.0
	}
	return 1.0 - 0.5*(*income / *maxIncome)
}

// stBracketMatch looks the bracket up in the need-intensity table, gated by
// list membership when the scholarship restricts eligible brackets.
func stBracketMatch(bracket string, eligible []string) float64 {
	if len(eligible) == 0 {
		return noBracketCriterion
	}
	if !condition.FuzzyContains(eligible, bracket) {
		return 0.0
	}
	if score, ok := needScoreByBracket[normalizeBracket(bracket)]; ok {
		return score
	}
	return defaultNeedScore
}

func normalizeBracket(bracket string) string {
	return strings.ToLower(strings.TrimSpace(bracket))
}

// listMatch is the shared binary match over free-text list criteria, using
// the same containment rule as the condition evaluator. No restriction
// matches everyone.
func listMatch(value string, eligible []string) float64 {
	if len(eligible) == 0 {
		return 1.0
	}
	if condition.FuzzyContains(eligible, value) {
		return 1.0
	}
	return 0.0
}

// documentCompleteness is the fraction of required document types satisfied
// by the submitted documents, fuzzy-matched by name.
func documentCompleteness(submitted, required []string) float64 {
	if len(required) == 0 {
		return 1.0
	}

	satisfied := 0
	for _, req := range required {
		if condition.FuzzyContains(submitted, req) {
			satisfied++
		}
	}

	return float64(satisfied) / float64(len(required))
}

// applicationTiming decays from 1.0 (submitted before the window opened) to
// 0.1 (submitted at or after the deadline), linear in the elapsed fraction of
// the application window.
func applicationTiming(appCtx *models.ApplicationContext) float64 {
	window := appCtx.WindowClose.Sub(appCtx.WindowOpen)
	if window <= 0 {
		return PlaceholderApplicationTiming
	}

	if !appCtx.SubmittedAt.After(appCtx.WindowOpen) {
		return 1.0
	}
	if !appCtx.SubmittedAt.Before(appCtx.WindowClose) {
		return 0.1
	}

	elapsed := appCtx.SubmittedAt.Sub(appCtx.WindowOpen)
	frac := float64(elapsed) / float64(window)
	return 1.0 - 0.9*frac
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
