// Package summary implements the survey-summary synthesis pipeline:
// shaping per-customer response fragments into an analysis prompt,
// invoking the generative model under a strict output contract, and
// validating or repairing the model's output into a well-formed summary.
package summary

// SurveySummary is the output contract. Every value this package emits
// carries all sixteen fields, correctly typed; upstream omission or
// malformation is masked by typed defaults, never by dropping a field.
type SurveySummary struct {
	TotalParticipants        int      `json:"total_participants"`
	CompletedSurveys         int      `json:"completed_surveys"`
	InProgressSurveys        int      `json:"in_progress_surveys"`
	CompletionRatePercentage float64  `json:"completion_rate_percentage"`
	PositiveIndicators       int      `json:"positive_indicators"`
	NegativeIndicators       int      `json:"negative_indicators"`
	TopKeywords              []string `json:"top_keywords"`
	KeyPainPoints            []string `json:"key_pain_points"`
	CommonWorkflows          []string `json:"common_workflows"`
	TechnologyTrends         []string `json:"technology_trends"`
	MainBottlenecks          []string `json:"main_bottlenecks"`
	BudgetInsights           string   `json:"budget_insights"`
	SecurityConcerns         []string `json:"security_concerns"`
	DeploymentPreferences    []string `json:"deployment_preferences"`
	KeyInsights              string   `json:"key_insights"`
	Recommendations          string   `json:"recommendations"`
}

// RequiredFields lists the contract's field names in canonical order.
// Violation reporting follows this order so output is deterministic.
var RequiredFields = []string{
	"total_participants",
	"completed_surveys",
	"in_progress_surveys",
	"completion_rate_percentage",
	"positive_indicators",
	"negative_indicators",
	"top_keywords",
	"key_pain_points",
	"common_workflows",
	"technology_trends",
	"main_bottlenecks",
	"budget_insights",
	"security_concerns",
	"deployment_preferences",
	"key_insights",
	"recommendations",
}

// Bounds on the long-text fields, in Unicode code points.
const (
	minInsightLen = 50
	maxInsightLen = 500
)

// Soft minimum lengths. Shorter lists are flagged but kept as-is.
const (
	minTopKeywords   = 3
	minKeyPainPoints = 2
)

// Template returns the literal example value tree embedded in the
// analysis prompt so the model sees the exact structure it must return.
func Template() SurveySummary {
	return SurveySummary{
		TopKeywords:           []string{"keyword1", "keyword2", "keyword3"},
		KeyPainPoints:         []string{"pain point 1", "pain point 2", "pain point 3"},
		CommonWorkflows:       []string{"workflow1", "workflow2"},
		TechnologyTrends:      []string{"trend1", "trend2"},
		MainBottlenecks:       []string{"bottleneck1", "bottleneck2"},
		BudgetInsights:        "Summary of budget discussions...",
		SecurityConcerns:      []string{"concern1", "concern2"},
		DeploymentPreferences: []string{"preference1", "preference2"},
		KeyInsights:           "2-3 sentence summary of the most important findings...",
		Recommendations:       "2-3 sentence actionable recommendations based on the data...",
	}
}
