// internal/engine/eligibility/engine_test.go
package eligibility

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scholarship-engine/internal/common/logger"
	"scholarship-engine/internal/models"
)

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }
func boolPtr(v bool) *bool        { return &v }

func testApplicant() models.ApplicantProfile {
	return models.ApplicantProfile{
		ID:                 "applicant-1",
		GWA:                floatPtr(1.75),
		Classification:     "Junior",
		College:            "College of Engineering",
		Course:             "BS Computer Science",
		Major:              "Software Engineering",
		UnitsEnrolled:      intPtr(18),
		AnnualFamilyIncome: floatPtr(250000),
		STBracket:          "ST1",
		Citizenship:        "Filipino",
		Province:           "Laguna",
	}
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	return NewEngine(logger.NewTestLogger(t))
}

func TestCheck_NoCriteriaAdmitsEveryone(t *testing.T) {
	engine := newTestEngine(t)

	result := engine.Check(models.ApplicantProfile{ID: "anyone"}, models.ScholarshipCriteria{})

	assert.True(t, result.Passed)
	assert.Equal(t, 100, result.Score)
	assert.Empty(t, result.Checks)
}

func TestCheck_AllRequiredPass(t *testing.T) {
	engine := newTestEngine(t)

	criteria := models.ScholarshipCriteria{
		MaxGWA:             floatPtr(2.0),
		MaxIncome:          floatPtr(300000),
		MinUnits:           intPtr(15),
		EligibleColleges:   []string{"Engineering"},
		EligibleSTBrackets: []string{"ST1", "ST2"},
	}

	result := engine.Check(testApplicant(), criteria)

	assert.True(t, result.Passed)
	assert.Equal(t, 100, result.Score)
	assert.Len(t, result.Checks, 5)
}

func TestCheck_RequiredFailureFailsVerdict(t *testing.T) {
	engine := newTestEngine(t)

	criteria := models.ScholarshipCriteria{
		MaxGWA:    floatPtr(1.5), // applicant has 1.75
		MaxIncome: floatPtr(300000),
	}

	result := engine.Check(testApplicant(), criteria)

	assert.False(t, result.Passed)
	assert.Equal(t, 50, result.Score)
}

func TestCheck_PreferredFailureAffectsScoreOnly(t *testing.T) {
	engine := newTestEngine(t)

	// Majors carry preferred importance; a mismatch lowers the score but
	// leaves the verdict intact.
	criteria := models.ScholarshipCriteria{
		MaxGWA:         floatPtr(2.0),
		EligibleMajors: []string{"Pure Mathematics"},
	}

	result := engine.Check(testApplicant(), criteria)

	assert.True(t, result.Passed)
	assert.Equal(t, 50, result.Score)

	var majorCheck *models.CheckResult
	for i := range result.Checks {
		if result.Checks[i].Name == "major" {
			majorCheck = &result.Checks[i]
		}
	}
	require.NotNil(t, majorCheck)
	assert.False(t, majorCheck.Passed)
	assert.Equal(t, models.ImportancePreferred, majorCheck.Importance)
}

func TestCheck_MissingRequiredValueFails(t *testing.T) {
	engine := newTestEngine(t)

	applicant := testApplicant()
	applicant.GWA = nil

	result := engine.Check(applicant, models.ScholarshipCriteria{MaxGWA: floatPtr(2.0)})

	assert.False(t, result.Passed)
	assert.Equal(t, "not provided", result.Checks[0].ApplicantValue)
}

func TestCheck_MustNotFlags(t *testing.T) {
	tests := []struct {
		name   string
		flag   bool
		passed bool
	}{
		{"absent flag passes", false, true},
		{"present flag fails", true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := newTestEngine(t)

			applicant := testApplicant()
			applicant.HasExistingScholarship = tt.flag

			criteria := models.ScholarshipCriteria{
				RequireNoExistingScholarship: boolPtr(true),
			}

			result := engine.Check(applicant, criteria)
			assert.Equal(t, tt.passed, result.Passed)
		})
	}
}

func TestCheck_FalseRequirementImposesNothing(t *testing.T) {
	engine := newTestEngine(t)

	applicant := testApplicant()
	applicant.HasDisciplinaryRecord = true

	criteria := models.ScholarshipCriteria{
		RequireNoDisciplinaryRecord: boolPtr(false),
	}

	result := engine.Check(applicant, criteria)
	assert.True(t, result.Passed)
	assert.Empty(t, result.Checks)
}

func TestCheck_CategorySummaries(t *testing.T) {
	engine := newTestEngine(t)

	criteria := models.ScholarshipCriteria{
		MaxGWA:             floatPtr(1.5), // fails
		MaxIncome:          floatPtr(300000),
		EligibleSTBrackets: []string{"ST1"},
	}

	result := engine.Check(testApplicant(), criteria)

	academic := result.Categories[models.CategoryAcademic]
	assert.Equal(t, 1, academic.Total)
	assert.Equal(t, 0, academic.Passed)

	financial := result.Categories[models.CategoryFinancial]
	assert.Equal(t, 2, financial.Total)
	assert.Equal(t, 2, financial.Passed)
}

// ==========================
// Custom Conditions
// ==========================

func TestCheck_CustomCondition(t *testing.T) {
	tests := []struct {
		name      string
		condition models.CustomCondition
		passed    bool
	}{
		{
			name: "numeric gte pass",
			condition: models.CustomCondition{
				Name:       "minHouseholdSize",
				Field:      "householdSize",
				Operator:   "gte",
				Value:      4.0,
				Importance: models.ImportanceRequired,
			},
			passed: true,
		},
		{
			name: "numeric lt fail",
			condition: models.CustomCondition{
				Name:       "smallHousehold",
				Field:      "householdSize",
				Operator:   "lt",
				Value:      3.0,
				Importance: models.ImportanceRequired,
			},
			passed: false,
		},
		{
			name: "dotted field path",
			condition: models.CustomCondition{
				Name:       "gwaCeiling",
				Field:      "academic.gwa",
				Operator:   "lte",
				Value:      2.0,
				Importance: models.ImportanceRequired,
			},
			passed: true,
		},
		{
			name: "between pair",
			condition: models.CustomCondition{
				Name:       "incomeBand",
				Field:      "annualFamilyIncome",
				Operator:   "between",
				Value:      []interface{}{100000.0, 300000.0},
				Importance: models.ImportanceRequired,
			},
			passed: true,
		},
		{
			name: "list membership",
			condition: models.CustomCondition{
				Name:       "provinceList",
				Field:      "province",
				Operator:   "in",
				Value:      []interface{}{"Laguna", "Batangas"},
				Importance: models.ImportanceRequired,
			},
			passed: true,
		},
		{
			name: "boolean isFalse",
			condition: models.CustomCondition{
				Name:       "notGraduatingYet",
				Field:      "isGraduating",
				Operator:   "isFalse",
				Importance: models.ImportanceRequired,
			},
			passed: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := newTestEngine(t)

			applicant := testApplicant()
			applicant.HouseholdSize = intPtr(5)

			criteria := models.ScholarshipCriteria{
				CustomConditions: []models.CustomCondition{tt.condition},
			}

			result := engine.Check(applicant, criteria)
			require.Len(t, result.Checks, 1)
			assert.Equal(t, tt.passed, result.Checks[0].Passed)
			assert.Equal(t, models.CategoryCustom, result.Checks[0].Category)
		})
	}
}

func TestCheck_MalformedCustomCondition(t *testing.T) {
	tests := []struct {
		name      string
		condition models.CustomCondition
	}{
		{
			name: "unknown operator",
			condition: models.CustomCondition{
				Name:     "bad",
				Field:    "gwa",
				Operator: "approximately",
				Value:    2.0,
			},
		},
		{
			name: "missing field",
			condition: models.CustomCondition{
				Name:     "bad",
				Operator: "lte",
				Value:    2.0,
			},
		},
		{
			name: "unknown field path",
			condition: models.CustomCondition{
				Name:     "bad",
				Field:    "shoeSize",
				Operator: "lte",
				Value:    2.0,
			},
		},
		{
			name: "wrong value type for numeric operator",
			condition: models.CustomCondition{
				Name:     "bad",
				Field:    "gwa",
				Operator: "lte",
				Value:    "two",
			},
		},
		{
			name: "between without pair",
			condition: models.CustomCondition{
				Name:     "bad",
				Field:    "gwa",
				Operator: "between",
				Value:    2.0,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := newTestEngine(t)

			criteria := models.ScholarshipCriteria{
				CustomConditions: []models.CustomCondition{tt.condition},
			}

			result := engine.Check(testApplicant(), criteria)
			require.Len(t, result.Checks, 1)
			assert.False(t, result.Checks[0].Passed)
			assert.NotEmpty(t, result.Checks[0].Error)
		})
	}
}

func TestCheck_MalformedCustomDoesNotStopOthers(t *testing.T) {
	engine := newTestEngine(t)

	criteria := models.ScholarshipCriteria{
		MaxGWA: floatPtr(2.0),
		CustomConditions: []models.CustomCondition{
			{Name: "bad", Field: "gwa", Operator: "approximately", Value: 2.0},
		},
	}

	result := engine.Check(testApplicant(), criteria)
	require.Len(t, result.Checks, 2)
	assert.True(t, result.Checks[0].Passed)  // gwa range still evaluated
	assert.False(t, result.Checks[1].Passed) // malformed custom recorded as failed
}
