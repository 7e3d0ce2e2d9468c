// internal/models/scholarship.go
package models

// Importance tiers for eligibility criteria. Only required checks decide the
// overall pass/fail verdict; preferred and optional checks affect the score.
const (
	ImportanceRequired  = "required"
	ImportancePreferred = "preferred"
	ImportanceOptional  = "optional"
)

// Check categories used for grouping results.
const (
	CategoryAcademic    = "academic"
	CategoryFinancial   = "financial"
	CategoryStatus      = "status"
	CategoryLocation    = "location"
	CategoryDemographic = "demographic"
	CategoryCustom      = "custom"
)

// ScholarshipCriteria holds the per-scholarship thresholds and lists that the
// eligibility engine evaluates. A nil pointer or empty list means the
// scholarship imposes no restriction on that dimension.
type ScholarshipCriteria struct {
	ScholarshipID string `json:"scholarshipId"`
	Name          string `json:"name,omitempty"`

	// Range criteria
	MinGWA    *float64 `json:"minGwa,omitempty"`
	MaxGWA    *float64 `json:"maxGwa,omitempty"`
	MinIncome *float64 `json:"minIncome,omitempty"`
	MaxIncome *float64 `json:"maxIncome,omitempty"`
	MinUnits  *int     `json:"minUnits,omitempty"`

	// List criteria
	EligibleColleges        []string `json:"eligibleColleges,omitempty"`
	EligibleCourses         []string `json:"eligibleCourses,omitempty"`
	EligibleMajors          []string `json:"eligibleMajors,omitempty"`
	EligibleSTBrackets      []string `json:"eligibleStBrackets,omitempty"`
	EligibleProvinces       []string `json:"eligibleProvinces,omitempty"`
	EligibleCitizenships    []string `json:"eligibleCitizenships,omitempty"`
	EligibleClassifications []string `json:"eligibleClassifications,omitempty"`

	// Boolean requirements; nil means not required either way.
	RequireNoExistingScholarship *bool `json:"requireNoExistingScholarship,omitempty"`
	RequireNoThesisGrant         *bool `json:"requireNoThesisGrant,omitempty"`
	RequireNoDisciplinaryRecord  *bool `json:"requireNoDisciplinaryRecord,omitempty"`
	RequireNoFailingGrades       *bool `json:"requireNoFailingGrades,omitempty"`
	RequireNoIncompleteGrades    *bool `json:"requireNoIncompleteGrades,omitempty"`
	RequireNotGraduating         *bool `json:"requireNotGraduating,omitempty"`

	// Documents the applicant must submit.
	RequiredDocuments []string `json:"requiredDocuments,omitempty"`

	// Free-form administrator-defined conditions.
	CustomConditions []CustomCondition `json:"customConditions,omitempty"`
}

// CustomCondition is an administrator-defined condition over an applicant
// field path. It arrives as loosely structured data and is schema-validated
// before evaluation; a broken condition becomes a failed check, not an abort.
type CustomCondition struct {
	Name       string      `json:"name"`
	Field      string      `json:"field"`
	Operator   string      `json:"operator"`
	Value      interface{} `json:"value,omitempty"`
	Importance string      `json:"importance,omitempty"`
}
