package summary

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"
)

// ValidateAndSanitize coerces an arbitrary decoded value into a fully
// schema-conformant SurveySummary, recording every deviation as a
// violation. It never fails: whatever the shape of raw — missing, wrong
// top-level type, wrong field types — the returned summary satisfies the
// contract. valid is true iff no violations were recorded.
//
// Substitution policy: an absent or wrongly-typed field is replaced with
// its typed default and reported once. A present, correctly-typed field
// that merely misses a soft bound (short keyword list, out-of-range
// insight length) is flagged but kept as-is.
func ValidateAndSanitize(raw any) (valid bool, violations []string, sanitized SurveySummary) {
	data, _ := raw.(map[string]any)
	violations = []string{}

	for _, field := range RequiredFields {
		if _, ok := data[field]; !ok {
			violations = append(violations, "Missing required field: "+field)
		}
	}

	ints := []struct {
		name string
		dst  *int
	}{
		{"total_participants", &sanitized.TotalParticipants},
		{"completed_surveys", &sanitized.CompletedSurveys},
		{"in_progress_surveys", &sanitized.InProgressSurveys},
		{"positive_indicators", &sanitized.PositiveIndicators},
		{"negative_indicators", &sanitized.NegativeIndicators},
	}
	for _, f := range ints {
		v, ok := data[f.name]
		if !ok {
			continue // already reported missing; default is 0
		}
		n, ok := coerceInt(v)
		if !ok {
			violations = append(violations, f.name+" must be an integer")
			continue
		}
		*f.dst = n
	}

	if v, ok := data["completion_rate_percentage"]; ok {
		rate, ok := coerceFloat(v)
		switch {
		case !ok:
			violations = append(violations, "completion_rate_percentage must be a number")
		case rate < 0 || rate > 100:
			violations = append(violations, "completion_rate_percentage must be between 0 and 100")
		default:
			sanitized.CompletionRatePercentage = round2(rate)
		}
	}

	arrays := []struct {
		name string
		dst  *[]string
		min  int
	}{
		{"top_keywords", &sanitized.TopKeywords, minTopKeywords},
		{"key_pain_points", &sanitized.KeyPainPoints, minKeyPainPoints},
		{"common_workflows", &sanitized.CommonWorkflows, 0},
		{"technology_trends", &sanitized.TechnologyTrends, 0},
		{"main_bottlenecks", &sanitized.MainBottlenecks, 0},
		{"security_concerns", &sanitized.SecurityConcerns, 0},
		{"deployment_preferences", &sanitized.DeploymentPreferences, 0},
	}
	for _, f := range arrays {
		*f.dst = []string{}
		v, ok := data[f.name]
		if !ok {
			continue
		}
		list, ok := v.([]any)
		if !ok {
			violations = append(violations, f.name+" must be an array")
			continue
		}
		items := make([]string, 0, len(list))
		for _, item := range list {
			if truthy(item) {
				items = append(items, stringify(item))
			}
		}
		*f.dst = items
		if len(items) < f.min {
			violations = append(violations, fmt.Sprintf("%s should have at least %d items", f.name, f.min))
		}
	}

	texts := []struct {
		name    string
		dst     *string
		bounded bool
	}{
		{"budget_insights", &sanitized.BudgetInsights, false},
		{"key_insights", &sanitized.KeyInsights, true},
		{"recommendations", &sanitized.Recommendations, true},
	}
	for _, f := range texts {
		v, ok := data[f.name]
		if !ok {
			continue // default ""
		}
		s, ok := v.(string)
		if !ok {
			violations = append(violations, f.name+" must be a string")
			continue
		}
		s = strings.TrimSpace(s)
		*f.dst = s
		if f.bounded {
			switch n := utf8.RuneCountInString(s); {
			case n < minInsightLen:
				violations = append(violations, fmt.Sprintf("%s should be at least %d characters", f.name, minInsightLen))
			case n > maxInsightLen:
				violations = append(violations, fmt.Sprintf("%s should be at most %d characters", f.name, maxInsightLen))
			}
		}
	}

	return len(violations) == 0, violations, sanitized
}

// coerceInt accepts the numeric shapes a JSON decode (or a lenient
// model) can produce. Floats truncate toward zero; strings must parse
// as whole numbers.
func coerceInt(v any) (int, bool) {
	switch x := v.(type) {
	case int:
		return x, true
	case int64:
		return int(x), true
	case float64:
		return int(x), true
	case bool:
		if x {
			return 1, true
		}
		return 0, true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(x))
		if err != nil {
			return 0, false
		}
		return n, true
	}
	return 0, false
}

func coerceFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case bool:
		if x {
			return 1, true
		}
		return 0, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

// truthy reports whether a decoded JSON value is non-empty. Falsy array
// elements (empty strings, zero, null, empty containers) are dropped
// during sanitization.
func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		return x != ""
	case float64:
		return x != 0
	case []any:
		return len(x) > 0
	case map[string]any:
		return len(x) > 0
	}
	return true
}

func stringify(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}
