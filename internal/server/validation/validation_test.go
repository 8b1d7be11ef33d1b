package validation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fieldNames(t *testing.T, rs RuleSet, values map[string]string) []string {
	t.Helper()
	errs := rs.Validate(values)
	names := make([]string, 0, len(errs))
	for _, e := range errs {
		names = append(names, e.Field)
	}
	return names
}

func TestSignupRules(t *testing.T) {
	valid := map[string]string{
		"rollno":   "21CSE042",
		"email":    "jane@college.edu",
		"password": "Sup3r!secret",
	}
	require.Empty(t, SignupRules().Validate(valid))

	tests := []struct {
		name      string
		mutate    func(m map[string]string)
		badFields []string
	}{
		{"missing rollno", func(m map[string]string) { delete(m, "rollno") }, []string{"rollno"}},
		{"bad rollno", func(m map[string]string) { m["rollno"] = "CSE042" }, []string{"rollno"}},
		{"rollno too many letters", func(m map[string]string) { m["rollno"] = "21ABCDE042" }, []string{"rollno"}},
		{"bad email", func(m map[string]string) { m["email"] = "not-an-email" }, []string{"email"}},
		{"short password", func(m map[string]string) { m["password"] = "Ab1!" }, []string{"password"}},
		{"no symbol", func(m map[string]string) { m["password"] = "Password123" }, []string{"password"}},
		{"no upper", func(m map[string]string) { m["password"] = "password123!" }, []string{"password"}},
		{"everything missing", func(m map[string]string) {
			delete(m, "rollno")
			delete(m, "email")
			delete(m, "password")
		}, []string{"email", "password", "rollno"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			values := map[string]string{}
			for k, v := range valid {
				values[k] = v
			}
			tc.mutate(values)
			assert.Equal(t, tc.badFields, fieldNames(t, SignupRules(), values))
		})
	}
}

func TestUploadRules(t *testing.T) {
	now := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	valid := map[string]string{
		"title":    "Data Structures Mid Sem",
		"year":     "2024",
		"semester": "3",
		"branch":   "CSE",
		"type":     "Previous Year Question Paper",
		"subject":  "7d9f1b34-5a91-4a9e-8c0a-02f8f7f1a111",
	}
	require.Empty(t, UploadRules(now).Validate(valid))

	tests := []struct {
		name      string
		field     string
		value     string
		wantError bool
	}{
		{"year below range", "year", "1999", true},
		{"year at lower bound", "year", "2000", false},
		{"year next year ok", "year", "2026", false},
		{"year too far ahead", "year", "2027", true},
		{"year not a number", "year", "soon", true},
		{"semester zero", "semester", "0", true},
		{"semester nine", "semester", "9", true},
		{"unknown branch", "branch", "EEE", true},
		{"unknown type", "type", "Quiz", true},
		{"subject not uuid", "subject", "math-101", true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			values := map[string]string{}
			for k, v := range valid {
				values[k] = v
			}
			values[tc.field] = tc.value
			errs := UploadRules(now).Validate(values)
			if tc.wantError {
				require.Len(t, errs, 1)
				assert.Equal(t, tc.field, errs[0].Field)
			} else {
				assert.Empty(t, errs)
			}
		})
	}
}

func TestRuleSet_ErrReturnsValidationError(t *testing.T) {
	err := SignupRules().Err(map[string]string{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rollno")

	err = FeatureRequestRules().Err(map[string]string{
		"category":     "ui",
		"featureTitle": "dark mode",
		"description":  "please",
	})
	assert.NoError(t, err)
}
