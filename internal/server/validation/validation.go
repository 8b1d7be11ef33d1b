// Package validation evaluates declarative per-field constraint tables
// against raw string input (form fields, JSON bodies flattened to strings)
// and produces field-level errors.
package validation

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"

	"github.com/campusvault/pyqhub/internal/common"
)

// Rule is the constraint set for one input field. Zero-value members are
// skipped, so a Rule only checks what it declares.
type Rule struct {
	Required   bool
	Pattern    *regexp.Regexp
	PatternMsg string
	// Int enables numeric parsing; Min/Max then bound the parsed value.
	Int      bool
	Min, Max int
	Enum     []string
	// Check runs last and returns a message for custom constraints,
	// or "" when the value passes.
	Check func(value string) string
}

// RuleSet maps field names to their constraints.
type RuleSet map[string]Rule

// Validate evaluates every rule against values and returns the collected
// field errors, ordered by field name for stable output. A missing optional
// field skips all further checks for that field.
func (rs RuleSet) Validate(values map[string]string) []common.FieldError {
	fields := make([]string, 0, len(rs))
	for name := range rs {
		fields = append(fields, name)
	}
	sort.Strings(fields)

	var errs []common.FieldError
	for _, name := range fields {
		rule := rs[name]
		value := values[name]

		if value == "" {
			if rule.Required {
				errs = append(errs, common.FieldError{Field: name, Message: "is required"})
			}
			continue
		}

		if rule.Pattern != nil && !rule.Pattern.MatchString(value) {
			msg := rule.PatternMsg
			if msg == "" {
				msg = "has invalid format"
			}
			errs = append(errs, common.FieldError{Field: name, Message: msg})
			continue
		}

		if rule.Int {
			n, err := strconv.Atoi(value)
			if err != nil {
				errs = append(errs, common.FieldError{Field: name, Message: "must be a number"})
				continue
			}
			if n < rule.Min || n > rule.Max {
				errs = append(errs, common.FieldError{
					Field:   name,
					Message: fmt.Sprintf("must be between %d and %d", rule.Min, rule.Max),
				})
				continue
			}
		}

		if len(rule.Enum) > 0 && !contains(rule.Enum, value) {
			errs = append(errs, common.FieldError{
				Field:   name,
				Message: fmt.Sprintf("must be one of %v", rule.Enum),
			})
			continue
		}

		if rule.Check != nil {
			if msg := rule.Check(value); msg != "" {
				errs = append(errs, common.FieldError{Field: name, Message: msg})
			}
		}
	}
	return errs
}

// Err wraps the result of Validate into a *common.ValidationError,
// or returns nil when the input passed.
func (rs RuleSet) Err(values map[string]string) error {
	if errs := rs.Validate(values); len(errs) > 0 {
		return common.NewValidationError(errs...)
	}
	return nil
}

func contains(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
