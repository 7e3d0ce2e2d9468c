// internal/models/results.go
package models

// CheckResult is the outcome of evaluating one eligibility criterion.
type CheckResult struct {
	Name           string `json:"name"`
	Category       string `json:"category"`
	Importance     string `json:"importance"`
	Passed         bool   `json:"passed"`
	ApplicantValue string `json:"applicantValue"`
	RequiredValue  string `json:"requiredValue"`
	Error          string `json:"error,omitempty"`
}

// CategorySummary aggregates check counts per category.
type CategorySummary struct {
	Total  int `json:"total"`
	Passed int `json:"passed"`
}

// EligibilityResult is the aggregate verdict over all applicable criteria of
// one scholarship. Passed is the AND over required-importance checks; the
// score counts every check regardless of importance.
type EligibilityResult struct {
	Passed     bool                       `json:"passed"`
	Score      int                        `json:"score"`
	Checks     []CheckResult              `json:"checks"`
	Categories map[string]CategorySummary `json:"categories"`
}

// Confidence buckets for a prediction, derived from the distance of the
// probability from 0.5.
const (
	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
	ConfidenceLow    = "low"
)

// Recommendation tiers derived from the adjusted probability.
const (
	RecommendationStrong   = "strong_match"
	RecommendationGood     = "good_match"
	RecommendationModerate = "moderate_match"
	RecommendationWeak     = "weak_match"
	RecommendationPoor     = "poor_match"
)

// FactorContribution is one feature's signed contribution (weight * value) to
// the prediction.
type FactorContribution struct {
	Feature      string  `json:"feature"`
	Value        float64 `json:"value"`
	Weight       float64 `json:"weight"`
	Contribution float64 `json:"contribution"`
}

// HistoryAdjustment records how the applicant's own prior outcomes shifted
// the base probability.
type HistoryAdjustment struct {
	PriorApprovals  int     `json:"priorApprovals"`
	PriorRejections int     `json:"priorRejections"`
	Delta           float64 `json:"delta"`
}

// PredictionResult is the decision-support output for one applicant against
// one scholarship.
type PredictionResult struct {
	Probability     float64              `json:"probability"`
	BaseProbability float64              `json:"baseProbability"`
	Approved        bool                 `json:"approved"`
	Confidence      string               `json:"confidence"`
	Recommendation  string               `json:"recommendation"`
	ModelID         string               `json:"modelId"`
	ModelScope      string               `json:"modelScope"`
	Contributions   []FactorContribution `json:"contributions"`
	History         HistoryAdjustment    `json:"history"`
	Eligibility     *EligibilityResult   `json:"eligibility,omitempty"`
}
