package summary

// DefaultSummary builds the safe placeholder summary substituted
// whenever the generative step cannot be trusted. It is deterministic
// and always schema-conformant. Inconsistent counts (completed > total)
// pass through and surface as a negative in-progress figure — a
// diagnostic signal, deliberately not clamped.
func DefaultSummary(totalParticipants, completed int) SurveySummary {
	var rate float64
	if totalParticipants > 0 {
		rate = round2(float64(completed) / float64(totalParticipants) * 100)
	}

	return SurveySummary{
		TotalParticipants:        totalParticipants,
		CompletedSurveys:         completed,
		InProgressSurveys:        totalParticipants - completed,
		CompletionRatePercentage: rate,
		TopKeywords:              []string{"No data available"},
		KeyPainPoints:            []string{"Insufficient data for analysis"},
		CommonWorkflows:          []string{},
		TechnologyTrends:         []string{},
		MainBottlenecks:          []string{},
		BudgetInsights:           "Insufficient data to provide budget insights.",
		SecurityConcerns:         []string{},
		DeploymentPreferences:    []string{},
		KeyInsights:              "Not enough survey responses to generate meaningful insights. Please wait for more participants to complete the survey.",
		Recommendations:          "Collect more survey responses before analyzing trends and making recommendations. Aim for at least 5-10 completed surveys.",
	}
}
