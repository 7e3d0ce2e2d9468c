// internal/engine/condition/condition.go

// Package condition evaluates one eligibility criterion against one applicant
// value. Each criterion kind is a closed variant type with its own operator
// enum, so dispatch is an exhaustive switch instead of string comparison.
package condition

import (
	"fmt"
	"strconv"
	"strings"

	"scholarship-engine/internal/models"
)

// Condition is one evaluatable criterion. The three variants are Range,
// Boolean and List.
type Condition interface {
	Evaluate() models.CheckResult
}

const missingValueDisplay = "not provided"

// ==========================
// Range conditions
// ==========================

// RangeOp enumerates the numeric comparison operators.
type RangeOp int

const (
	RangeLT RangeOp = iota
	RangeLTE
	RangeGT
	RangeGTE
	RangeEQ
	RangeNEQ
	RangeBetween
	RangeBetweenExclusive
	RangeOutside
)

func (op RangeOp) String() string {
	switch op {
	case RangeLT:
		return "lt"
	case RangeLTE:
		return "lte"
	case RangeGT:
		return "gt"
	case RangeGTE:
		return "gte"
	case RangeEQ:
		return "eq"
	case RangeNEQ:
		return "neq"
	case RangeBetween:
		return "between"
	case RangeBetweenExclusive:
		return "betweenExclusive"
	case RangeOutside:
		return "outside"
	}
	return "unknown"
}

// Range compares a numeric applicant value against one or two thresholds.
// Value is nil when the applicant did not provide the field; a missing value
// fails a required check and neutrally passes a preferred/optional one.
type Range struct {
	Name       string
	Category   string
	Importance string
	Value      *float64
	Op         RangeOp
	Threshold  float64 // single threshold; lower bound for between/outside
	Upper      float64 // upper bound for between/outside
}

func (c Range) Evaluate() models.CheckResult {
	result := models.CheckResult{
		Name:          c.Name,
		Category:      c.Category,
		Importance:    importanceOrDefault(c.Importance),
		RequiredValue: c.requiredDisplay(),
	}

	if c.Value == nil {
		result.ApplicantValue = missingValueDisplay
		result.Passed = result.Importance != models.ImportanceRequired
		return result
	}

	v := *c.Value
	result.ApplicantValue = formatFloat(v)

	switch c.Op {
	case RangeLT:
		result.Passed = v < c.Threshold
	case RangeLTE:
		result.Passed = v <= c.Threshold
	case RangeGT:
		result.Passed = v > c.Threshold
	case RangeGTE:
		result.Passed = v >= c.Threshold
	case RangeEQ:
		result.Passed = v == c.Threshold
	case RangeNEQ:
		result.Passed = v != c.Threshold
	case RangeBetween:
		result.Passed = v >= c.Threshold && v <= c.Upper
	case RangeBetweenExclusive:
		result.Passed = v > c.Threshold && v < c.Upper
	case RangeOutside:
		result.Passed = v < c.Threshold || v > c.Upper
	}

	return result
}

func (c Range) requiredDisplay() string {
	switch c.Op {
	case RangeBetween, RangeBetweenExclusive:
		return fmt.Sprintf("%s – %s", formatFloat(c.Threshold), formatFloat(c.Upper))
	case RangeOutside:
		return fmt.Sprintf("outside %s – %s", formatFloat(c.Threshold), formatFloat(c.Upper))
	default:
		return fmt.Sprintf("%s %s", c.Op, formatFloat(c.Threshold))
	}
}

// ==========================
// Boolean conditions
// ==========================

// BoolOp enumerates the boolean operators. Is/IsNot compare against Expected;
// IsTrue/IsFalse are fixed comparisons; IsTruthy/IsFalsy accept loosely typed
// values from custom conditions.
type BoolOp int

const (
	BoolIs BoolOp = iota
	BoolIsNot
	BoolIsTrue
	BoolIsFalse
	BoolIsTruthy
	BoolIsFalsy
)

func (op BoolOp) String() string {
	switch op {
	case BoolIs:
		return "is"
	case BoolIsNot:
		return "isNot"
	case BoolIsTrue:
		return "isTrue"
	case BoolIsFalse:
		return "isFalse"
	case BoolIsTruthy:
		return "isTruthy"
	case BoolIsFalsy:
		return "isFalsy"
	}
	return "unknown"
}

// Boolean checks a flag-style requirement. A "must-not-X" scholarship rule
// becomes {Op: BoolIsFalse, Value: applicant.X}.
type Boolean struct {
	Name       string
	Category   string
	Importance string
	Value      interface{}
	Op         BoolOp
	Expected   bool
}

func (c Boolean) Evaluate() models.CheckResult {
	result := models.CheckResult{
		Name:       c.Name,
		Category:   c.Category,
		Importance: importanceOrDefault(c.Importance),
	}

	truthy := isTruthy(c.Value)
	result.ApplicantValue = formatBool(truthy)

	switch c.Op {
	case BoolIs:
		result.Passed = truthy == c.Expected
		result.RequiredValue = formatBool(c.Expected)
	case BoolIsNot:
		result.Passed = truthy != c.Expected
		result.RequiredValue = "not " + formatBool(c.Expected)
	case BoolIsTrue, BoolIsTruthy:
		result.Passed = truthy
		result.RequiredValue = formatBool(true)
	case BoolIsFalse, BoolIsFalsy:
		result.Passed = !truthy
		result.RequiredValue = formatBool(false)
	}

	return result
}

// isTruthy interprets loosely typed custom-condition values the way the
// admin UI sends them: booleans, numbers and non-empty strings.
func isTruthy(v interface{}) bool {
	switch val := v.(type) {
	case nil:
		return false
	case bool:
		return val
	case float64:
		return val != 0
	case int:
		return val != 0
	case string:
		lower := strings.ToLower(strings.TrimSpace(val))
		return lower != "" && lower != "false" && lower != "0" && lower != "no"
	default:
		return true
	}
}

// ==========================
// List conditions
// ==========================

// ListOp enumerates the list membership operators. In/NotIn test a single
// applicant value against the required list; Includes* and Excludes* test an
// applicant list; MatchesAny/MatchesAll use fuzzy containment for free-text
// fields like college and course names.
type ListOp int

const (
	ListIn ListOp = iota
	ListNotIn
	ListIncludes
	ListIncludesAny
	ListIncludesAll
	ListExcludes
	ListExcludesAll
	ListMatchesAny
	ListMatchesAll
)

func (op ListOp) String() string {
	switch op {
	case ListIn:
		return "in"
	case ListNotIn:
		return "notIn"
	case ListIncludes:
		return "includes"
	case ListIncludesAny:
		return "includesAny"
	case ListIncludesAll:
		return "includesAll"
	case ListExcludes:
		return "excludes"
	case ListExcludesAll:
		return "excludesAll"
	case ListMatchesAny:
		return "matchesAny"
	case ListMatchesAll:
		return "matchesAll"
	}
	return "unknown"
}

// List checks membership of applicant value(s) in a required list. Values
// holds the applicant side; for single-value operators only Values[0] is
// consulted. An empty applicant side counts as missing.
type List struct {
	Name       string
	Category   string
	Importance string
	Values     []string
	Op         ListOp
	Required   []string
}

func (c List) Evaluate() models.CheckResult {
	result := models.CheckResult{
		Name:          c.Name,
		Category:      c.Category,
		Importance:    importanceOrDefault(c.Importance),
		RequiredValue: strings.Join(c.Required, ", "),
	}

	values := nonEmpty(c.Values)
	if len(values) == 0 {
		result.ApplicantValue = missingValueDisplay
		result.Passed = result.Importance != models.ImportanceRequired
		return result
	}
	result.ApplicantValue = strings.Join(values, ", ")

	switch c.Op {
	case ListIn:
		result.Passed = containsExact(c.Required, values[0])
	case ListNotIn:
		result.Passed = !containsExact(c.Required, values[0])
	case ListIncludes:
		result.Passed = len(c.Required) > 0 && containsExact(values, c.Required[0])
	case ListIncludesAny:
		result.Passed = anyExact(values, c.Required)
	case ListIncludesAll:
		result.Passed = allExact(values, c.Required)
	case ListExcludes:
		result.Passed = len(c.Required) == 0 || !containsExact(values, c.Required[0])
	case ListExcludesAll:
		result.Passed = !anyExact(values, c.Required)
	case ListMatchesAny:
		result.Passed = anyFuzzy(values, c.Required)
	case ListMatchesAll:
		result.Passed = allFuzzy(values, c.Required)
	}

	return result
}

// ==========================
// Matching helpers
// ==========================

// FuzzyMatch reports whether two free-text values name the same thing:
// case-insensitive substring containment in either direction, tolerating
// naming variance between canonical lists and applicant-entered strings.
func FuzzyMatch(a, b string) bool {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

// FuzzyContains reports whether value fuzzy-matches any entry of list.
func FuzzyContains(list []string, value string) bool {
	for _, item := range list {
		if FuzzyMatch(item, value) {
			return true
		}
	}
	return false
}

func containsExact(list []string, value string) bool {
	for _, item := range list {
		if strings.EqualFold(strings.TrimSpace(item), strings.TrimSpace(value)) {
			return true
		}
	}
	return false
}

func anyExact(values, required []string) bool {
	for _, r := range required {
		if containsExact(values, r) {
			return true
		}
	}
	return false
}

func allExact(values, required []string) bool {
	for _, r := range required {
		if !containsExact(values, r) {
			return false
		}
	}
	return len(required) > 0
}

func anyFuzzy(values, required []string) bool {
	for _, v := range values {
		if FuzzyContains(required, v) {
			return true
		}
	}
	return false
}

func allFuzzy(values, required []string) bool {
	for _, r := range required {
		matched := false
		for _, v := range values {
			if FuzzyMatch(v, r) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	return len(required) > 0
}

func nonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			out = append(out, v)
		}
	}
	return out
}

func importanceOrDefault(importance string) string {
	switch importance {
	case models.ImportanceRequired, models.ImportancePreferred, models.ImportanceOptional:
		return importance
	default:
		return models.ImportanceRequired
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatBool(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
