package summary

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/parleylabs/canvass/internal/store"
)

type fakeStore struct {
	survey    *store.Survey
	company   *store.Company
	customers []store.Customer

	surveyErr    error
	companyErr   error
	customersErr error
}

func (f *fakeStore) SurveyByUUID(_ context.Context, _ uuid.UUID) (*store.Survey, error) {
	return f.survey, f.surveyErr
}

func (f *fakeStore) CompanyByUUID(_ context.Context, _ uuid.UUID) (*store.Company, error) {
	return f.company, f.companyErr
}

func (f *fakeStore) CustomersBySurvey(_ context.Context, _ uuid.UUID) ([]store.Customer, error) {
	return f.customers, f.customersErr
}

type fakeGenerator struct {
	response string
	err      error

	lastSystem      string
	lastUser        string
	lastMaxTokens   int
	lastTemperature float64
	calls           int
}

func (f *fakeGenerator) CompleteJSON(_ context.Context, system, user string, maxTokens int, temperature float64) (string, error) {
	f.calls++
	f.lastSystem = system
	f.lastUser = user
	f.lastMaxTokens = maxTokens
	f.lastTemperature = temperature
	return f.response, f.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testStore() *fakeStore {
	surveyUUID := uuid.New()
	companyUUID := uuid.New()
	return &fakeStore{
		survey:  &store.Survey{UUID: surveyUUID, CompanyUUID: companyUUID, Title: "Q3 Feedback", Status: store.SurveyActive},
		company: &store.Company{UUID: companyUUID, Name: "Acme Corp", Sector: "Software"},
		customers: []store.Customer{
			{
				Name: "Jordan", Age: 34, Gender: "female", Status: store.StatusCompleted,
				Fragments: []store.Fragment{{BlockID: "block_1", Data: json.RawMessage(`{"q1":"slow builds"}`)}},
			},
			{
				Name: "Sam", Age: 29, Gender: "male", Status: store.StatusCompleted,
				Fragments: []store.Fragment{{BlockID: "block_1", Data: json.RawMessage(`{"q1":"flaky tests"}`)}},
			},
			{Name: "Robin", Age: 41, Gender: "other", Status: store.StatusInProgress},
		},
	}
}

func TestSynthesize_ValidModelOutput(t *testing.T) {
	st := testStore()
	body, err := json.Marshal(validInput())
	if err != nil {
		t.Fatal(err)
	}
	gen := &fakeGenerator{response: string(body)}

	synth := NewSynthesizer(st, gen, discardLogger())
	env, err := synth.Synthesize(context.Background(), st.survey.UUID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if env.SchemaValidated == nil || !*env.SchemaValidated {
		t.Error("expected schema_validated true")
	}
	if len(env.ValidationErrors) != 0 {
		t.Errorf("expected no validation errors, got %v", env.ValidationErrors)
	}
	if env.Fallback || env.Error != "" || env.ValidationError != "" || env.AIRawResponse != "" {
		t.Errorf("degraded-outcome fields should be clear on success: %+v", env)
	}
	if env.SurveyTitle != "Q3 Feedback" || env.Company != "Acme Corp" {
		t.Errorf("identity fields wrong: title=%q company=%q", env.SurveyTitle, env.Company)
	}
	if env.Summary.TotalParticipants != 3 {
		t.Errorf("total_participants = %d, want 3", env.Summary.TotalParticipants)
	}

	if gen.calls != 1 {
		t.Errorf("model should be invoked exactly once, got %d calls", gen.calls)
	}
	if gen.lastMaxTokens != 2000 || gen.lastTemperature != 0.2 {
		t.Errorf("generation params = (%d, %f)", gen.lastMaxTokens, gen.lastTemperature)
	}
	if !strings.Contains(gen.lastUser, "Total Participants: 3") {
		t.Error("prompt should restate the participant count")
	}
	if !strings.Contains(gen.lastUser, "Completed Surveys: 2") {
		t.Error("prompt should restate the completed count")
	}
	// Fragment-less customers contribute to counts but not to the
	// serialized responses.
	if strings.Contains(gen.lastUser, "Robin") {
		t.Error("customer without fragments should not appear in responses")
	}
}

func TestSynthesize_InvalidSchema(t *testing.T) {
	st := testStore()
	gen := &fakeGenerator{response: `{"total_participants": 3}`}

	synth := NewSynthesizer(st, gen, discardLogger())
	env, err := synth.Synthesize(context.Background(), st.survey.UUID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if env.SchemaValidated == nil || *env.SchemaValidated {
		t.Error("expected schema_validated false")
	}
	if len(env.ValidationErrors) == 0 {
		t.Error("expected validation errors for missing fields")
	}
	if env.Summary.TotalParticipants != 3 {
		t.Errorf("present fields should be kept, total = %d", env.Summary.TotalParticipants)
	}
	if env.Summary.TopKeywords == nil {
		t.Error("missing array fields should be substituted, not nil")
	}
	if env.Fallback || env.Error != "" {
		t.Error("schema violations are not a fallback outcome")
	}
}

func TestSynthesize_MalformedJSON(t *testing.T) {
	st := testStore()
	raw := "Sure! Here is the summary you asked for: " + strings.Repeat("x", 600)
	gen := &fakeGenerator{response: raw}

	synth := NewSynthesizer(st, gen, discardLogger())
	env, err := synth.Synthesize(context.Background(), st.survey.UUID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if env.ValidationError != "AI response was not valid JSON" {
		t.Errorf("validation_error = %q", env.ValidationError)
	}
	if len([]rune(env.AIRawResponse)) != 500 {
		t.Errorf("raw excerpt should be capped at 500 runes, got %d", len([]rune(env.AIRawResponse)))
	}
	if !strings.HasPrefix(raw, env.AIRawResponse) {
		t.Error("excerpt should be a prefix of the raw output")
	}
	if env.SchemaValidated != nil {
		t.Error("schema_validated must be absent when output never reached validation")
	}

	// Default summary carries the real participant counts.
	if env.Summary.TotalParticipants != 3 || env.Summary.CompletedSurveys != 2 {
		t.Errorf("default counts = (%d, %d)", env.Summary.TotalParticipants, env.Summary.CompletedSurveys)
	}
	if env.Summary.CompletionRatePercentage != 66.67 {
		t.Errorf("default rate = %f", env.Summary.CompletionRatePercentage)
	}
}

func TestSynthesize_GeneratorError(t *testing.T) {
	st := testStore()
	gen := &fakeGenerator{err: errors.New("connection refused")}

	synth := NewSynthesizer(st, gen, discardLogger())
	env, err := synth.Synthesize(context.Background(), st.survey.UUID)
	if err != nil {
		t.Fatalf("generator failure should degrade, not error: %v", err)
	}

	if !env.Fallback {
		t.Error("expected fallback true")
	}
	if env.Error != "AI service error: connection refused" {
		t.Errorf("error = %q", env.Error)
	}
	if env.SchemaValidated != nil {
		t.Error("schema_validated must be absent on fallback")
	}
	if env.Summary.TotalParticipants != 3 {
		t.Errorf("fallback summary should carry counts, got %d", env.Summary.TotalParticipants)
	}
	if gen.calls != 1 {
		t.Errorf("failed call must not be retried, got %d calls", gen.calls)
	}
}

func TestSynthesize_NoCustomers(t *testing.T) {
	st := testStore()
	st.customers = nil
	gen := &fakeGenerator{}

	synth := NewSynthesizer(st, gen, discardLogger())
	_, err := synth.Synthesize(context.Background(), st.survey.UUID)
	if !errors.Is(err, ErrNoResponses) {
		t.Fatalf("expected ErrNoResponses, got %v", err)
	}
	if gen.calls != 0 {
		t.Error("model must not be invoked without customer data")
	}
}

func TestSynthesize_SurveyNotFound(t *testing.T) {
	st := testStore()
	st.survey = nil
	st.surveyErr = store.ErrNotFound

	synth := NewSynthesizer(st, &fakeGenerator{}, discardLogger())
	_, err := synth.Synthesize(context.Background(), uuid.New())
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSynthesize_MissingCompany(t *testing.T) {
	st := testStore()
	st.company = nil
	st.companyErr = store.ErrNotFound
	body, _ := json.Marshal(validInput())
	gen := &fakeGenerator{response: string(body)}

	synth := NewSynthesizer(st, gen, discardLogger())
	env, err := synth.Synthesize(context.Background(), st.survey.UUID)
	if err != nil {
		t.Fatalf("missing company should not abort synthesis: %v", err)
	}
	if env.Company != "" {
		t.Errorf("company = %q, want empty", env.Company)
	}
	if !strings.Contains(gen.lastUser, "- Company:") {
		t.Error("prompt should still carry the company line")
	}
}
