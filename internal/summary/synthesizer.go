package summary

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/parleylabs/canvass/internal/store"
)

// ErrNoResponses is returned when a survey has no customer records.
// Synthesis requires at least one participant; zero data is a terminal
// not-found condition, not a fallback case.
var ErrNoResponses = errors.New("no customer data for survey")

// Store supplies the persisted inputs for a summary request.
type Store interface {
	SurveyByUUID(ctx context.Context, surveyUUID uuid.UUID) (*store.Survey, error)
	CompanyByUUID(ctx context.Context, companyUUID uuid.UUID) (*store.Company, error)
	CustomersBySurvey(ctx context.Context, surveyUUID uuid.UUID) ([]store.Customer, error)
}

// Generator is the generative model call: system + user instruction in,
// raw text (expected to be a JSON object) out.
type Generator interface {
	CompleteJSON(ctx context.Context, system, user string, maxTokens int, temperature float64) (string, error)
}

// Generation parameters: this is structured extraction, not open
// generation, so temperature stays low and output stays bounded.
const (
	maxSummaryTokens   = 2000
	summaryTemperature = 0.2
	rawExcerptLimit    = 500
)

// Envelope is the complete synthesis result. Identity fields and a full
// schema-conformant summary are always present; the remaining fields
// describe which terminal outcome occurred.
type Envelope struct {
	SurveyUUID       uuid.UUID     `json:"survey_uuid"`
	SurveyTitle      string        `json:"survey_title"`
	Company          string        `json:"company"`
	Summary          SurveySummary `json:"summary"`
	SchemaValidated  *bool         `json:"schema_validated,omitempty"`
	ValidationErrors []string      `json:"validation_errors,omitempty"`
	ValidationError  string        `json:"validation_error,omitempty"`
	AIRawResponse    string        `json:"ai_raw_response,omitempty"`
	Error            string        `json:"error,omitempty"`
	Fallback         bool          `json:"fallback,omitempty"`
}

type Synthesizer struct {
	store  Store
	llm    Generator
	logger *slog.Logger
}

func NewSynthesizer(s Store, llm Generator, logger *slog.Logger) *Synthesizer {
	return &Synthesizer{store: s, llm: llm, logger: logger}
}

// Synthesize runs the full pipeline for one survey: fetch inputs,
// assemble the prompt, invoke the model exactly once, and decide between
// the model's output, a sanitized repair, or the default fallback.
// Transient model failures degrade to the fallback rather than being
// retried; only not-found conditions return an error.
func (s *Synthesizer) Synthesize(ctx context.Context, surveyUUID uuid.UUID) (*Envelope, error) {
	survey, err := s.store.SurveyByUUID(ctx, surveyUUID)
	if err != nil {
		return nil, fmt.Errorf("load survey: %w", err)
	}

	customers, err := s.store.CustomersBySurvey(ctx, surveyUUID)
	if err != nil {
		return nil, fmt.Errorf("load customers: %w", err)
	}
	if len(customers) == 0 {
		return nil, ErrNoResponses
	}

	company, err := s.store.CompanyByUUID(ctx, survey.CompanyUUID)
	if errors.Is(err, store.ErrNotFound) {
		company = &store.Company{}
	} else if err != nil {
		return nil, fmt.Errorf("load company: %w", err)
	}

	completed, inProgress := 0, 0
	for _, c := range customers {
		switch c.Status {
		case store.StatusCompleted:
			completed++
		case store.StatusInProgress:
			inProgress++
		}
	}

	in := AnalysisInput{
		SurveyTitle:       survey.Title,
		CompanyName:       company.Name,
		Sector:            company.Sector,
		Products:          company.Products,
		TotalParticipants: len(customers),
		Completed:         completed,
		InProgress:        inProgress,
	}
	for _, c := range customers {
		if len(c.Fragments) == 0 {
			continue
		}
		in.Responses = append(in.Responses, CustomerResponses{
			CustomerName: c.Name,
			Age:          c.Age,
			Gender:       c.Gender,
			Status:       c.Status,
			Responses:    c.Fragments,
		})
	}

	env := &Envelope{
		SurveyUUID:  surveyUUID,
		SurveyTitle: survey.Title,
		Company:     company.Name,
	}

	raw, err := s.llm.CompleteJSON(ctx, systemPrompt, BuildAnalysisPrompt(in), maxSummaryTokens, summaryTemperature)
	if err != nil {
		s.logger.Error("summary generation failed", "survey_uuid", surveyUUID, "error", err)
		env.Summary = DefaultSummary(len(customers), completed)
		env.Error = "AI service error: " + err.Error()
		env.Fallback = true
		return env, nil
	}

	var decoded any
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		s.logger.Warn("model output was not valid JSON", "survey_uuid", surveyUUID, "error", err)
		env.Summary = DefaultSummary(len(customers), completed)
		env.ValidationError = "AI response was not valid JSON"
		env.AIRawResponse = excerpt(raw, rawExcerptLimit)
		return env, nil
	}

	valid, violations, sanitized := ValidateAndSanitize(decoded)
	env.Summary = sanitized
	env.SchemaValidated = &valid
	if !valid {
		s.logger.Warn("model output failed schema validation",
			"survey_uuid", surveyUUID, "violations", len(violations))
		env.ValidationErrors = violations
	}
	return env, nil
}

// excerpt truncates s to at most n code points for diagnostics.
func excerpt(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
