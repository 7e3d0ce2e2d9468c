// internal/engine/eligibility/custom.go
package eligibility

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	stderrors "scholarship-engine/internal/common/errors"
	"scholarship-engine/internal/engine/condition"
	"scholarship-engine/internal/models"
)

// customConditionSchema validates administrator-defined conditions before
// evaluation. Operators outside the closed set are rejected here so the
// evaluator never sees an unknown operator string.
const customConditionSchema = `{
	"type": "object",
	"required": ["name", "field", "operator"],
	"properties": {
		"name": {"type": "string", "minLength": 1},
		"field": {"type": "string", "minLength": 1},
		"operator": {
			"type": "string",
			"enum": [
				"lt", "lte", "gt", "gte", "eq", "neq",
				"between", "betweenExclusive", "outside",
				"is", "isNot", "isTrue", "isFalse", "isTruthy", "isFalsy",
				"in", "notIn", "includes", "includesAny", "includesAll",
				"excludes", "excludesAll", "matchesAny", "matchesAll"
			]
		},
		"importance": {
			"type": "string",
			"enum": ["required", "preferred", "optional"]
		}
	}
}`

var customSchemaLoader = gojsonschema.NewStringLoader(customConditionSchema)

// evaluateCustom validates and evaluates one administrator-defined condition.
// Any malformation is reported as a failed check with an error annotation;
// evaluation of the remaining conditions continues at the caller.
func (e *Engine) evaluateCustom(applicant models.ApplicantProfile, cc models.CustomCondition) models.CheckResult {
	failed := func(details string) models.CheckResult {
		err := stderrors.NewInvalidCustomConditionError(cc.Name, details)
		e.logger.Warn("custom condition rejected", map[string]interface{}{
			"condition": cc.Name,
			"field":     cc.Field,
			"operator":  cc.Operator,
			"details":   details,
		})
		return models.CheckResult{
			Name:           cc.Name,
			Category:       models.CategoryCustom,
			Importance:     cc.Importance,
			Passed:         false,
			ApplicantValue: "",
			RequiredValue:  fmt.Sprintf("%v", cc.Value),
			Error:          err.Details,
		}
	}

	validation, err := gojsonschema.Validate(customSchemaLoader, gojsonschema.NewGoLoader(cc))
	if err != nil {
		return failed(fmt.Sprintf("schema validation error: %v", err))
	}
	if !validation.Valid() {
		details := make([]string, 0, len(validation.Errors()))
		for _, e := range validation.Errors() {
			details = append(details, e.String())
		}
		return failed(strings.Join(details, "; "))
	}

	fieldValue, ok := applicantField(applicant, cc.Field)
	if !ok {
		return failed(fmt.Sprintf("unknown field path %q", cc.Field))
	}

	cond, err := buildCustomCondition(cc, fieldValue)
	if err != nil {
		return failed(err.Error())
	}

	return cond.Evaluate()
}

// applicantField resolves a custom-condition field path against the profile.
// Dotted prefixes from the admin UI ("academic.gwa") are tolerated; only the
// final segment is significant.
func applicantField(a models.ApplicantProfile, path string) (interface{}, bool) {
	field := path
	if idx := strings.LastIndex(path, "."); idx >= 0 {
		field = path[idx+1:]
	}

	switch field {
	case "gwa":
		return floatPtrValue(a.GWA), true
	case "classification":
		return a.Classification, true
	case "college":
		return a.College, true
	case "course":
		return a.Course, true
	case "major":
		return a.Major, true
	case "unitsEnrolled":
		return intPtrValue(a.UnitsEnrolled), true
	case "unitsPassed":
		return intPtrValue(a.UnitsPassed), true
	case "annualFamilyIncome":
		return floatPtrValue(a.AnnualFamilyIncome), true
	case "stBracket":
		return a.STBracket, true
	case "householdSize":
		return intPtrValue(a.HouseholdSize), true
	case "citizenship":
		return a.Citizenship, true
	case "province":
		return a.Province, true
	case "hasExistingScholarship":
		return a.HasExistingScholarship, true
	case "hasThesisGrant":
		return a.HasThesisGrant, true
	case "hasDisciplinaryRecord":
		return a.HasDisciplinaryRecord, true
	case "hasFailingGrades":
		return a.HasFailingGrades, true
	case "hasIncompleteGrades":
		return a.HasIncompleteGrades, true
	case "isGraduating":
		return a.IsGraduating, true
	}
	return nil, false
}

// buildCustomCondition maps a validated custom condition onto the matching
// condition variant.
func buildCustomCondition(cc models.CustomCondition, fieldValue interface{}) (condition.Condition, error) {
	switch cc.Operator {
	case "lt", "lte", "gt", "gte", "eq", "neq":
		threshold, err := toNumber(cc.Value)
		if err != nil {
			return nil, fmt.Errorf("operator %q needs a numeric value: %w", cc.Operator, err)
		}
		return condition.Range{
			Name:       cc.Name,
			Category:   models.CategoryCustom,
			Importance: cc.Importance,
			Value:      numericField(fieldValue),
			Op:         rangeOps[cc.Operator],
			Threshold:  threshold,
		}, nil

	case "between", "betweenExclusive", "outside":
		lower, upper, err := toNumberPair(cc.Value)
		if err != nil {
			return nil, fmt.Errorf("operator %q needs a [min, max] value: %w", cc.Operator, err)
		}
		return condition.Range{
			Name:       cc.Name,
			Category:   models.CategoryCustom,
			Importance: cc.Importance,
			Value:      numericField(fieldValue),
			Op:         rangeOps[cc.Operator],
			Threshold:  lower,
			Upper:      upper,
		}, nil

	case "is", "isNot":
		expected, ok := cc.Value.(bool)
		if !ok {
			return nil, fmt.Errorf("operator %q needs a boolean value", cc.Operator)
		}
		return condition.Boolean{
			Name:       cc.Name,
			Category:   models.CategoryCustom,
			Importance: cc.Importance,
			Value:      fieldValue,
			Op:         boolOps[cc.Operator],
			Expected:   expected,
		}, nil

	case "isTrue", "isFalse", "isTruthy", "isFalsy":
		return condition.Boolean{
			Name:       cc.Name,
			Category:   models.CategoryCustom,
			Importance: cc.Importance,
			Value:      fieldValue,
			Op:         boolOps[cc.Operator],
		}, nil

	case "in", "notIn", "includes", "includesAny", "includesAll",
		"excludes", "excludesAll", "matchesAny", "matchesAll":
		required, err := toStringList(cc.Value)
		if err != nil {
			return nil, fmt.Errorf("operator %q needs a list value: %w", cc.Operator, err)
		}
		return condition.List{
			Name:       cc.Name,
			Category:   models.CategoryCustom,
			Importance: cc.Importance,
			Values:     stringField(fieldValue),
			Op:         listOps[cc.Operator],
			Required:   required,
		}, nil
	}

	return nil, fmt.Errorf("unsupported operator %q", cc.Operator)
}

var rangeOps = map[string]condition.RangeOp{
	"lt":               condition.RangeLT,
	"lte":              condition.RangeLTE,
	"gt":               condition.RangeGT,
	"gte":              condition.RangeGTE,
	"eq":               condition.RangeEQ,
	"neq":              condition.RangeNEQ,
	"between":          condition.RangeBetween,
	"betweenExclusive": condition.RangeBetweenExclusive,
	"outside":          condition.RangeOutside,
}

var boolOps = map[string]condition.BoolOp{
	"is":       condition.BoolIs,
	"isNot":    condition.BoolIsNot,
	"isTrue":   condition.BoolIsTrue,
	"isFalse":  condition.BoolIsFalse,
	"isTruthy": condition.BoolIsTruthy,
	"isFalsy":  condition.BoolIsFalsy,
}

var listOps = map[string]condition.ListOp{
	"in":          condition.ListIn,
	"notIn":       condition.ListNotIn,
	"includes":    condition.ListIncludes,
	"includesAny": condition.ListIncludesAny,
	"includesAll": condition.ListIncludesAll,
	"excludes":    condition.ListExcludes,
	"excludesAll": condition.ListExcludesAll,
	"matchesAny":  condition.ListMatchesAny,
	"matchesAll":  condition.ListMatchesAll,
}

// ==========================
// Value coercion helpers
// ==========================

func toNumber(v interface{}) (float64, error) {
	switch val := v.(type) {
	case float64:
		return val, nil
	case int:
		return float64(val), nil
	case int64:
		return float64(val), nil
	}
	return 0, fmt.Errorf("got %T", v)
}

func toNumberPair(v interface{}) (float64, float64, error) {
	list, ok := v.([]interface{})
	if !ok || len(list) != 2 {
		return 0, 0, fmt.Errorf("got %T", v)
	}
	lower, err := toNumber(list[0])
	if err != nil {
		return 0, 0, err
	}
	upper, err := toNumber(list[1])
	if err != nil {
		return 0, 0, err
	}
	return lower, upper, nil
}

func toStringList(v interface{}) ([]string, error) {
	switch val := v.(type) {
	case []string:
		return val, nil
	case []interface{}:
		out := make([]string, 0, len(val))
		for _, item := range val {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("non-string entry %T", item)
			}
			out = append(out, s)
		}
		return out, nil
	case string:
		return []string{val}, nil
	}
	return nil, fmt.Errorf("got %T", v)
}

// numericField extracts the numeric applicant side; nil means missing.
func numericField(v interface{}) *float64 {
	switch val := v.(type) {
	case float64:
		f := val
		return &f
	case int:
		f := float64(val)
		return &f
	case nil:
		return nil
	}
	return nil
}

// stringField extracts the string applicant side for list operators.
func stringField(v interface{}) []string {
	switch val := v.(type) {
	case string:
		if strings.TrimSpace(val) == "" {
			return nil
		}
		return []string{val}
	case []string:
		return val
	}
	return nil
}

func floatPtrValue(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func intPtrValue(v *int) interface{} {
	if v == nil {
		return nil
	}
	return *v
}
