package validation

import (
	"fmt"
	"net/mail"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

var (
	urlPattern       = regexp.MustCompile(`^https?://`)
	alphaPattern     = regexp.MustCompile(`^[a-zA-Z]+$`)
	alphaNumPattern  = regexp.MustCompile(`^[a-zA-Z0-9]+$`)
	alphaDashPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
)

// Errors is the validation message bag. JSON output:
// {"errors": {"field": ["msg1", "msg2"]}}
type Errors struct {
	Bag map[string][]string `json:"errors"`
}

func (e *Errors) add(field, msg string) {
	if e.Bag == nil {
		e.Bag = make(map[string][]string)
	}
	e.Bag[field] = append(e.Bag[field], msg)
}

// Has returns true if there are any errors.
func (e *Errors) Has() bool { return len(e.Bag) > 0 }

// First returns the first error message for a field, or "".
func (e *Errors) First(field string) string {
	if msgs := e.Bag[field]; len(msgs) > 0 {
		return msgs[0]
	}
	return ""
}

// Rules maps field name to a pipe-separated rule string, e.g.
// Rules{"email": "required|email", "age": "required|numeric|gte:18"}.
type Rules map[string]string

// Validator checks a flat map of input values against Rules.
type Validator struct {
	data   map[string]string
	rules  Rules
	errors *Errors
}

// Make creates a Validator over data and rules. Validation runs lazily on
// the first call to Fails or Passes.
func Make(data map[string]string, rules Rules) *Validator {
	return &Validator{data: data, rules: rules, errors: &Errors{}}
}

// Fails runs validation and returns true if any rule failed.
func (v *Validator) Fails() bool {
	v.run()
	return v.errors.Has()
}

// Passes runs validation and returns true if every rule passed.
func (v *Validator) Passes() bool { return !v.Fails() }

// Errors returns the error bag.
func (v *Validator) Errors() *Errors { return v.errors }

func (v *Validator) run() {
	for field, ruleStr := range v.rules {
		value := v.data[field]
		for _, rule := range strings.Split(ruleStr, "|") {
			rule = strings.TrimSpace(rule)
			if rule == "" {
				continue
			}
			name, param, _ := strings.Cut(rule, ":")
			if !v.check(field, value, name, param) {
				// first failure wins per field, like bail
				break
			}
		}
	}
}

func (v *Validator) addf(field, format string, args ...any) bool {
	v.errors.add(field, fmt.Sprintf(format, args...))
	return false
}

// check applies one rule and reports whether processing should continue
// for this field.
func (v *Validator) check(field, value, rule, param string) bool {
	switch rule {
	case "required":
		if strings.TrimSpace(value) == "" {
			return v.addf(field, "The %s field is required.", field)
		}

	case "string":
		// form input is always a string, nothing to verify

	case "numeric":
		if _, err := strconv.ParseFloat(value, 64); err != nil {
			return v.addf(field, "The %s must be a number.", field)
		}

	case "integer":
		if _, err := strconv.Atoi(value); err != nil {
			return v.addf(field, "The %s must be an integer.", field)
		}

	case "boolean":
		switch strings.ToLower(value) {
		case "true", "false", "1", "0", "yes", "no":
		default:
			return v.addf(field, "The %s field must be true or false.", field)
		}

	case "email":
		if _, err := mail.ParseAddress(value); err != nil {
			return v.addf(field, "The %s must be a valid email address.", field)
		}

	case "url":
		if !urlPattern.MatchString(value) {
			return v.addf(field, "The %s must be a valid URL.", field)
		}

	case "min":
		n, _ := strconv.Atoi(param)
		if utf8.RuneCountInString(value) < n {
			return v.addf(field, "The %s must be at least %d characters.", field, n)
		}

	case "max":
		n, _ := strconv.Atoi(param)
		if utf8.RuneCountInString(value) > n {
			return v.addf(field, "The %s may not be greater than %d characters.", field, n)
		}

	case "size":
		n, _ := strconv.Atoi(param)
		if utf8.RuneCountInString(value) != n {
			return v.addf(field, "The %s must be %d characters.", field, n)
		}

	case "between":
		lo, hi, ok := strings.Cut(param, ",")
		if !ok {
			break
		}
		min, _ := strconv.Atoi(strings.TrimSpace(lo))
		max, _ := strconv.Atoi(strings.TrimSpace(hi))
		if l := utf8.RuneCountInString(value); l < min || l > max {
			return v.addf(field, "The %s must be between %d and %d characters.", field, min, max)
		}

	case "in":
		if !listContains(param, value) {
			return v.addf(field, "The selected %s is invalid.", field)
		}

	case "not_in":
		if listContains(param, value) {
			return v.addf(field, "The selected %s is invalid.", field)
		}

	case "confirmed":
		if v.data[field+"_confirmation"] != value {
			return v.addf(field, "The %s confirmation does not match.", field)
		}

	case "same":
		if v.data[param] != value {
			return v.addf(field, "The %s and %s must match.", field, param)
		}

	case "different":
		if v.data[param] == value {
			return v.addf(field, "The %s and %s must be different.", field, param)
		}

	case "alpha":
		if !alphaPattern.MatchString(value) {
			return v.addf(field, "The %s may only contain letters.", field)
		}

	case "alpha_num":
		if !alphaNumPattern.MatchString(value) {
			return v.addf(field, "The %s may only contain letters and numbers.", field)
		}

	case "alpha_dash":
		if !alphaDashPattern.MatchString(value) {
			return v.addf(field, "The %s may only contain letters, numbers, dashes and underscores.", field)
		}

	case "regex":
		re, err := regexp.Compile(param)
		if err != nil || !re.MatchString(value) {
			return v.addf(field, "The %s format is invalid.", field)
		}

	case "nullable":
		// permits empty values, later rules still run on non-empty input

	case "sometimes":
		// absent field skips its remaining rules without an error
		if value == "" {
			return false
		}

	case "gt":
		if f, t := toFloat(value), toFloat(param); f <= t {
			return v.addf(field, "The %s must be greater than %s.", field, param)
		}

	case "gte":
		if f, t := toFloat(value), toFloat(param); f < t {
			return v.addf(field, "The %s must be greater than or equal to %s.", field, param)
		}

	case "lt":
		if f, t := toFloat(value), toFloat(param); f >= t {
			return v.addf(field, "The %s must be less than %s.", field, param)
		}

	case "lte":
		if f, t := toFloat(value), toFloat(param); f > t {
			return v.addf(field, "The %s must be less than or equal to %s.", field, param)
		}
	}

	return true
}

func listContains(csv, value string) bool {
	for _, item := range strings.Split(csv, ",") {
		if strings.TrimSpace(item) == value {
			return true
		}
	}
	return false
}

func toFloat(s string) float64 {
	f, _ := strconv.ParseFloat(s, 64)
	return f
}
