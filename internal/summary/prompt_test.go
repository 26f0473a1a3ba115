package summary

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/parleylabs/canvass/internal/store"
)

func TestBuildAnalysisPrompt(t *testing.T) {
	in := AnalysisInput{
		SurveyTitle:       "Developer Tooling Survey",
		CompanyName:       "Acme Corp",
		Sector:            "Software",
		Products:          "CI platform",
		TotalParticipants: 3,
		Completed:         2,
		InProgress:        1,
		Responses: []CustomerResponses{
			{
				CustomerName: "Jordan",
				Age:          34,
				Gender:       "female",
				Status:       store.StatusCompleted,
				Responses: []store.Fragment{
					{BlockID: "block_1", Data: json.RawMessage(`{"q1":"too many manual steps"}`)},
				},
			},
		},
	}

	prompt := BuildAnalysisPrompt(in)

	for _, want := range []string{
		"- Survey Title: Developer Tooling Survey",
		"- Company: Acme Corp",
		"- Sector: Software",
		"- Products: CI platform",
		"Total Participants: 3",
		"Completed Surveys: 2",
		"In Progress: 1",
		`"customer_name": "Jordan"`,
		"too many manual steps",
		"Return ONLY valid JSON",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}

	// The schema template is embedded verbatim so the model sees every
	// field name it must produce.
	for _, field := range RequiredFields {
		if !strings.Contains(prompt, `"`+field+`"`) {
			t.Errorf("prompt missing schema field %q", field)
		}
	}
}

func TestBuildAnalysisPrompt_OmitsEmptyContext(t *testing.T) {
	prompt := BuildAnalysisPrompt(AnalysisInput{
		SurveyTitle: "Minimal",
		CompanyName: "NoSector Inc",
	})

	if strings.Contains(prompt, "- Sector:") {
		t.Error("sector line should be omitted when empty")
	}
	if strings.Contains(prompt, "- Products:") {
		t.Error("products line should be omitted when empty")
	}
	if !strings.Contains(prompt, "- Company: NoSector Inc") {
		t.Error("company line should always be present")
	}
}

func TestBuildAnalysisPrompt_NilResponses(t *testing.T) {
	prompt := BuildAnalysisPrompt(AnalysisInput{SurveyTitle: "Empty"})

	if !strings.Contains(prompt, "[]") {
		t.Error("nil responses should serialize as an empty JSON array")
	}
}
