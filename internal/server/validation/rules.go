package validation

import (
	"regexp"
	"time"
	"unicode"

	"github.com/campusvault/pyqhub/internal/server/models"
)

var (
	rollNoPattern = regexp.MustCompile(`^[0-9]{2}[A-Za-z]{2,4}[0-9]{2,3}$`)
	emailPattern  = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	uuidPattern   = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)
)

// PasswordStrength requires at least 8 characters mixing upper, lower,
// digit and symbol classes.
func PasswordStrength(value string) string {
	if len(value) < 8 {
		return "must be at least 8 characters"
	}
	var upper, lower, digit, symbol bool
	for _, r := range value {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		default:
			symbol = true
		}
	}
	if !upper || !lower || !digit || !symbol {
		return "must contain upper, lower, digit and symbol characters"
	}
	return ""
}

// SignupRules is the constraint table for account registration.
func SignupRules() RuleSet {
	return RuleSet{
		"rollno": {
			Required:   true,
			Pattern:    rollNoPattern,
			PatternMsg: "must match the roll number format, e.g. 21CSE042",
		},
		"email": {
			Required:   true,
			Pattern:    emailPattern,
			PatternMsg: "must be a valid email address",
		},
		"password": {
			Required: true,
			Check:    PasswordStrength,
		},
	}
}

// UploadRules is the constraint table for paper upload metadata.
// The year upper bound moves with the clock, so the table is built per call.
func UploadRules(now time.Time) RuleSet {
	return RuleSet{
		"title": {Required: true},
		"year": {
			Required: true,
			Int:      true,
			Min:      2000,
			Max:      now.Year() + 1,
		},
		"semester": {
			Required: true,
			Int:      true,
			Min:      1,
			Max:      8,
		},
		"branch": {
			Required: true,
			Enum:     models.BranchStrings(),
		},
		"type": {
			Required: true,
			Enum:     models.PaperTypeStrings(),
		},
		"subject": {
			Required:   true,
			Pattern:    uuidPattern,
			PatternMsg: "must be a subject id",
		},
	}
}

// FeatureRequestRules is the constraint table for feedback submissions.
func FeatureRequestRules() RuleSet {
	return RuleSet{
		"category":     {Required: true},
		"featureTitle": {Required: true},
		"description":  {Required: true},
	}
}
