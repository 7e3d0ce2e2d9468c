// internal/models/applicant.go
package models

// ApplicantProfile is the applicant record handed to the engine by the
// surrounding system. It is read-only here; profile updates happen elsewhere.
// Optional numeric fields are pointers so a missing value is distinguishable
// from a zero value.
type ApplicantProfile struct {
	ID string `json:"id"`

	// Academic
	GWA            *float64 `json:"gwa,omitempty"` // lower is better, 1.0–5.0
	Classification string   `json:"classification,omitempty"`
	College        string   `json:"college,omitempty"`
	Course         string   `json:"course,omitempty"`
	Major          string   `json:"major,omitempty"`
	UnitsEnrolled  *int     `json:"unitsEnrolled,omitempty"`
	UnitsPassed    *int     `json:"unitsPassed,omitempty"`

	// Financial
	AnnualFamilyIncome *float64 `json:"annualFamilyIncome,omitempty"`
	STBracket          string   `json:"stBracket,omitempty"`
	HouseholdSize      *int     `json:"householdSize,omitempty"`

	// Demographic
	Citizenship string `json:"citizenship,omitempty"`
	Province    string `json:"province,omitempty"`

	// Status flags
	HasExistingScholarship bool `json:"hasExistingScholarship"`
	HasThesisGrant         bool `json:"hasThesisGrant"`
	HasDisciplinaryRecord  bool `json:"hasDisciplinaryRecord"`
	HasFailingGrades       bool `json:"hasFailingGrades"`
	HasIncompleteGrades    bool `json:"hasIncompleteGrades"`
	IsGraduating           bool `json:"isGraduating"`
}
