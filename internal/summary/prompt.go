package summary

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/parleylabs/canvass/internal/store"
)

// AnalysisInput aggregates everything the prompt needs for one summary
// request. It lives for the duration of the request only.
type AnalysisInput struct {
	SurveyTitle string
	CompanyName string
	Sector      string
	Products    string

	TotalParticipants int
	Completed         int
	InProgress        int

	Responses []CustomerResponses
}

// CustomerResponses bundles one customer's demographics with their full
// fragment sequence for serialization into the prompt.
type CustomerResponses struct {
	CustomerName string           `json:"customer_name"`
	Age          int              `json:"age"`
	Gender       string           `json:"gender"`
	Status       string           `json:"status"`
	Responses    []store.Fragment `json:"responses"`
}

const systemPrompt = `You are an expert market research analyst. You MUST respond with valid JSON only that exactly matches the provided schema. No markdown formatting, no code blocks, just pure JSON.`

const analysisPromptFormat = `You are an expert market research analyst. Analyze the following survey data and provide a comprehensive summary.

**Survey Context:**
%s

**Survey Data:**
Total Participants: %d
Completed Surveys: %d
In Progress: %d

**All Customer Responses:**
%s

**CRITICAL: You MUST return a JSON object with this EXACT structure (no additions, no omissions):**
%s

**Field Requirements:**
- total_participants, completed_surveys, in_progress_surveys: integers (exact counts from data)
- completion_rate_percentage: number 0-100 (percentage with decimals)
- positive_indicators, negative_indicators: integers (count sentiment in responses)
- top_keywords: array of 5-10 strings (most frequent themes)
- key_pain_points: array of 3-5 strings (main challenges identified)
- common_workflows, technology_trends, main_bottlenecks, security_concerns, deployment_preferences: arrays of strings
- budget_insights: string (brief summary)
- key_insights: string 50-500 chars (2-3 sentences on findings)
- recommendations: string 50-500 chars (2-3 sentences actionable advice)

**IMPORTANT:**
1. Return ONLY valid JSON matching the structure above
2. No markdown, no code fences, no extra text
3. All fields must be present
4. Use exact field names
5. Respect data types (numbers, strings, arrays)`

// BuildAnalysisPrompt renders the bounded analysis instruction: exact
// counts restated so the model cannot ignore ground truth, the full
// fragment data embedded as indented JSON, and the schema template
// embedded verbatim.
func BuildAnalysisPrompt(in AnalysisInput) string {
	var ctx []string
	ctx = append(ctx, "- Survey Title: "+in.SurveyTitle)
	ctx = append(ctx, "- Company: "+in.CompanyName)
	if in.Sector != "" {
		ctx = append(ctx, "- Sector: "+in.Sector)
	}
	if in.Products != "" {
		ctx = append(ctx, "- Products: "+in.Products)
	}

	responses := in.Responses
	if responses == nil {
		responses = []CustomerResponses{}
	}
	responsesJSON, _ := json.MarshalIndent(responses, "", "  ")
	templateJSON, _ := json.MarshalIndent(Template(), "", "  ")

	return fmt.Sprintf(analysisPromptFormat,
		strings.Join(ctx, "\n"),
		in.TotalParticipants,
		in.Completed,
		in.InProgress,
		responsesJSON,
		templateJSON,
	)
}
