package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/parleylabs/canvass/internal/events"
	"github.com/parleylabs/canvass/internal/store"
	"github.com/parleylabs/canvass/internal/summary"
)

type surveyRequest struct {
	UUID        string  `json:"uuid"`
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
}

func (s *Server) createSurvey(w http.ResponseWriter, r *http.Request) {
	companyUUID, ok := s.uuidParam(w, r, "companyUUID")
	if !ok {
		return
	}
	var req surveyRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	if req.UUID == "" {
		s.writeError(w, http.StatusBadRequest, errValidation, "Missing required field: uuid")
		return
	}
	if req.Title == nil || *req.Title == "" {
		s.writeError(w, http.StatusBadRequest, errValidation, "Missing required field: title")
		return
	}
	id, err := uuid.Parse(req.UUID)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, errValidation, "Invalid survey UUID format")
		return
	}

	if _, err := s.store.CompanyByUUID(r.Context(), companyUUID); err != nil {
		s.writeStoreError(w, err, "Company not found")
		return
	}
	if _, err := s.store.SurveyByUUID(r.Context(), id); err == nil {
		s.writeError(w, http.StatusConflict, errDuplicate, "Survey with this UUID already exists")
		return
	} else if !errors.Is(err, store.ErrNotFound) {
		s.writeStoreError(w, err, "")
		return
	}

	survey := &store.Survey{
		UUID:        id,
		CompanyUUID: companyUUID,
		Title:       *req.Title,
		Status:      store.SurveyActive,
	}
	if req.Description != nil {
		survey.Description = *req.Description
	}
	if req.Status != nil && *req.Status != "" {
		survey.Status = *req.Status
	}

	if err := s.store.CreateSurvey(r.Context(), survey); err != nil {
		s.writeStoreError(w, err, "")
		return
	}
	s.writeSuccess(w, http.StatusCreated, survey, "Survey created successfully")
}

func (s *Server) listCompanySurveys(w http.ResponseWriter, r *http.Request) {
	companyUUID, ok := s.uuidParam(w, r, "companyUUID")
	if !ok {
		return
	}
	if _, err := s.store.CompanyByUUID(r.Context(), companyUUID); err != nil {
		s.writeStoreError(w, err, "Company not found")
		return
	}
	surveys, err := s.store.SurveysByCompany(r.Context(), companyUUID)
	if err != nil {
		s.writeStoreError(w, err, "")
		return
	}
	if surveys == nil {
		surveys = []store.Survey{}
	}
	s.writeSuccess(w, http.StatusOK, map[string]any{
		"company_uuid": companyUUID.String(),
		"surveys":      surveys,
		"count":        len(surveys),
	}, "")
}

func (s *Server) getSurvey(w http.ResponseWriter, r *http.Request) {
	id, ok := s.uuidParam(w, r, "surveyUUID")
	if !ok {
		return
	}
	survey, err := s.store.SurveyByUUID(r.Context(), id)
	if err != nil {
		s.writeStoreError(w, err, "Survey not found")
		return
	}

	resp := struct {
		store.Survey
		Company map[string]string `json:"company,omitempty"`
	}{Survey: *survey}

	if company, err := s.store.CompanyByUUID(r.Context(), survey.CompanyUUID); err == nil {
		resp.Company = map[string]string{"name": company.Name, "sector": company.Sector}
	}
	s.writeSuccess(w, http.StatusOK, resp, "")
}

func (s *Server) updateSurvey(w http.ResponseWriter, r *http.Request) {
	id, ok := s.uuidParam(w, r, "surveyUUID")
	if !ok {
		return
	}
	var req surveyRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	if req.Title == nil && req.Description == nil && req.Status == nil {
		s.writeError(w, http.StatusBadRequest, errValidation, "No valid fields to update")
		return
	}

	survey, err := s.store.SurveyByUUID(r.Context(), id)
	if err != nil {
		s.writeStoreError(w, err, "Survey not found")
		return
	}
	if req.Title != nil {
		survey.Title = *req.Title
	}
	if req.Description != nil {
		survey.Description = *req.Description
	}
	if req.Status != nil {
		survey.Status = *req.Status
	}

	if err := s.store.UpdateSurvey(r.Context(), survey); err != nil {
		s.writeStoreError(w, err, "Survey not found")
		return
	}
	s.writeSuccess(w, http.StatusOK, survey, "Survey updated successfully")
}

func (s *Server) deleteSurvey(w http.ResponseWriter, r *http.Request) {
	id, ok := s.uuidParam(w, r, "surveyUUID")
	if !ok {
		return
	}
	if err := s.store.DeleteSurvey(r.Context(), id); err != nil {
		s.writeStoreError(w, err, "Survey not found")
		return
	}
	s.writeSuccess(w, http.StatusOK, map[string]string{"uuid": id.String()}, "Survey deleted successfully")
}

func (s *Server) surveyStats(w http.ResponseWriter, r *http.Request) {
	id, ok := s.uuidParam(w, r, "surveyUUID")
	if !ok {
		return
	}
	stats, err := s.store.StatsBySurvey(r.Context(), id)
	if err != nil {
		s.writeStoreError(w, err, "Survey not found")
		return
	}
	s.writeSuccess(w, http.StatusOK, map[string]any{
		"survey_uuid":     id.String(),
		"total_customers": stats.TotalCustomers,
		"total_messages":  stats.TotalMessages,
		"status":          stats.Status,
	}, "")
}

// surveyAISummary runs the synthesis pipeline. Degraded model outcomes
// still return 200 with an annotated envelope; only missing data is an
// error to the caller.
func (s *Server) surveyAISummary(w http.ResponseWriter, r *http.Request) {
	id, ok := s.uuidParam(w, r, "surveyUUID")
	if !ok {
		return
	}

	env, err := s.synth.Synthesize(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, summary.ErrNoResponses):
			s.writeError(w, http.StatusNotFound, errNotFound, "No customer data found for this survey")
		case errors.Is(err, store.ErrNotFound):
			s.writeError(w, http.StatusNotFound, errNotFound, "Survey not found")
		default:
			s.logger.Error("summary synthesis failed", "survey_uuid", id, "error", err)
			s.writeError(w, http.StatusInternalServerError, errServer, "Failed to generate survey summary")
		}
		return
	}

	if err := s.events.Publish(events.SubjectSummaryGenerated, events.SummaryGenerated{
		SurveyUUID:      id.String(),
		SchemaValidated: env.SchemaValidated != nil && *env.SchemaValidated,
		Fallback:        env.Fallback,
		ViolationCount:  len(env.ValidationErrors),
		GeneratedAt:     time.Now().UTC(),
	}); err != nil {
		s.logger.Warn("failed to publish summary event", "error", err)
	}

	s.writeSuccess(w, http.StatusOK, env, "")
}
