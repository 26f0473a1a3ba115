package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/parleylabs/canvass/internal/events"
	"github.com/parleylabs/canvass/internal/interviewer"
	"github.com/parleylabs/canvass/internal/store"
)

type registerRequest struct {
	UUID   string `json:"uuid"`
	Name   string `json:"name"`
	Age    any    `json:"age"` // number or numeric string
	Gender string `json:"gender"`
}

func (s *Server) registerCustomer(w http.ResponseWriter, r *http.Request) {
	surveyUUID, ok := s.uuidParam(w, r, "surveyUUID")
	if !ok {
		return
	}
	var req registerRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	required := []struct {
		name  string
		empty bool
	}{
		{"uuid", req.UUID == ""},
		{"name", req.Name == ""},
		{"age", req.Age == nil},
		{"gender", req.Gender == ""},
	}
	for _, f := range required {
		if f.empty {
			s.writeError(w, http.StatusBadRequest, errValidation, "Missing required field: "+f.name)
			return
		}
	}
	customerUUID, err := uuid.Parse(req.UUID)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, errValidation, "Invalid customer UUID format")
		return
	}
	age, ok := parseAge(req.Age)
	if !ok {
		s.writeError(w, http.StatusBadRequest, errValidation, "Age must be a valid number")
		return
	}
	if age < 1 || age > 150 {
		s.writeError(w, http.StatusBadRequest, errValidation, "Age must be between 1 and 150")
		return
	}

	survey, err := s.store.SurveyByUUID(r.Context(), surveyUUID)
	if err != nil {
		s.writeStoreError(w, err, "Survey not found")
		return
	}
	if survey.Status != store.SurveyActive {
		s.writeError(w, http.StatusBadRequest, errValidation, "Survey is not active")
		return
	}
	if _, err := s.store.CustomerByUUID(r.Context(), customerUUID); err == nil {
		s.writeError(w, http.StatusConflict, errDuplicate, "Customer with this UUID already exists")
		return
	} else if !errors.Is(err, store.ErrNotFound) {
		s.writeStoreError(w, err, "")
		return
	}

	var company *store.Company
	if c, err := s.store.CompanyByUUID(r.Context(), survey.CompanyUUID); err == nil {
		company = c
	}

	session, err := s.interviewer.StartSession(r.Context(), sessionContext(company, survey, req.Name, age, req.Gender))
	if err != nil {
		s.logger.Error("failed to start interview session", "customer_uuid", customerUUID, "error", err)
		s.writeError(w, http.StatusServiceUnavailable, errAIService, "Failed to start AI session: "+err.Error())
		return
	}

	customer := &store.Customer{
		UUID:       customerUUID,
		SurveyUUID: surveyUUID,
		Name:       req.Name,
		Age:        age,
		Gender:     req.Gender,
		SessionID:  session.SessionID,
		Status:     store.StatusInProgress,
		Fragments:  []store.Fragment{},
	}
	if err := s.store.CreateCustomer(r.Context(), customer); err != nil {
		s.writeStoreError(w, err, "")
		return
	}

	data := map[string]any{
		"customer": customer,
		"survey": map[string]any{
			"uuid":        survey.UUID.String(),
			"title":       survey.Title,
			"description": survey.Description,
		},
		"ai_session": map[string]any{
			"session_id":       session.SessionID,
			"initial_response": session.Response,
			"status":           session.Status,
		},
	}
	if company != nil {
		data["company"] = company
	}
	s.writeSuccess(w, http.StatusCreated, data, "Customer registered successfully. Chat can now begin.")
}

// sessionContext assembles the context string handed to the interviewer
// when a session starts.
func sessionContext(company *store.Company, survey *store.Survey, name string, age int, gender string) string {
	var parts []string
	if company != nil {
		parts = append(parts, "Company: "+company.Name)
		if company.Sector != "" {
			parts = append(parts, "Sector: "+company.Sector)
		}
		if company.Products != "" {
			parts = append(parts, "Products: "+company.Products)
		}
		if company.Details != "" {
			parts = append(parts, "Details: "+company.Details)
		}
	}
	parts = append(parts,
		"Customer: "+name,
		"Age: "+strconv.Itoa(age),
		"Gender: "+gender,
		"Survey: "+survey.Title,
	)
	if survey.Description != "" {
		parts = append(parts, "Survey Description: "+survey.Description)
	}
	return strings.Join(parts, " | ")
}

func parseAge(v any) (int, bool) {
	switch x := v.(type) {
	case float64:
		return int(x), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(x))
		if err != nil {
			return 0, false
		}
		return n, true
	}
	return 0, false
}

func (s *Server) listSurveyCustomers(w http.ResponseWriter, r *http.Request) {
	surveyUUID, ok := s.uuidParam(w, r, "surveyUUID")
	if !ok {
		return
	}
	if _, err := s.store.SurveyByUUID(r.Context(), surveyUUID); err != nil {
		s.writeStoreError(w, err, "Survey not found")
		return
	}
	customers, err := s.store.CustomersBySurvey(r.Context(), surveyUUID)
	if err != nil {
		s.writeStoreError(w, err, "")
		return
	}
	if customers == nil {
		customers = []store.Customer{}
	}
	s.writeSuccess(w, http.StatusOK, map[string]any{
		"survey_uuid": surveyUUID.String(),
		"customers":   customers,
		"count":       len(customers),
	}, "")
}

func (s *Server) getCustomer(w http.ResponseWriter, r *http.Request) {
	surveyUUID, ok := s.uuidParam(w, r, "surveyUUID")
	if !ok {
		return
	}
	customerUUID, ok := s.uuidParam(w, r, "customerUUID")
	if !ok {
		return
	}
	customer, err := s.store.SurveyCustomer(r.Context(), surveyUUID, customerUUID)
	if err != nil {
		s.writeStoreError(w, err, "Customer not found")
		return
	}
	s.writeSuccess(w, http.StatusOK, customer, "")
}

type chatRequest struct {
	Message string `json:"message"`
}

// chat runs one interview turn: persist the customer message, forward
// it to the interviewer, persist the reply, and fold any completed
// block into the customer's fragment sequence.
func (s *Server) chat(w http.ResponseWriter, r *http.Request) {
	surveyUUID, ok := s.uuidParam(w, r, "surveyUUID")
	if !ok {
		return
	}
	customerUUID, ok := s.uuidParam(w, r, "customerUUID")
	if !ok {
		return
	}
	var req chatRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	message := strings.TrimSpace(req.Message)
	if message == "" {
		s.writeError(w, http.StatusBadRequest, errValidation, "Message cannot be empty")
		return
	}

	customer, err := s.store.SurveyCustomer(r.Context(), surveyUUID, customerUUID)
	if err != nil {
		s.writeStoreError(w, err, "Customer not found for this survey")
		return
	}
	if customer.SessionID == "" {
		s.writeError(w, http.StatusBadRequest, errValidation, "No AI session found for this customer")
		return
	}

	userMsg := &store.ChatMessage{
		CustomerUUID: customerUUID,
		SurveyUUID:   surveyUUID,
		Sender:       store.SenderUser,
		Message:      message,
	}
	if err := s.store.InsertMessage(r.Context(), userMsg); err != nil {
		s.writeStoreError(w, err, "")
		return
	}

	reply, err := s.interviewer.Chat(r.Context(), customer.SessionID, message)
	if err != nil {
		s.logger.Error("interviewer chat failed", "customer_uuid", customerUUID, "error", err)
		s.writeError(w, http.StatusServiceUnavailable, errAIService, "Failed to get AI response: "+err.Error())
		return
	}

	aiMsg := &store.ChatMessage{
		CustomerUUID: customerUUID,
		SurveyUUID:   surveyUUID,
		Sender:       store.SenderAI,
		Message:      reply.Response,
	}
	if err := s.store.InsertMessage(r.Context(), aiMsg); err != nil {
		s.writeStoreError(w, err, "")
		return
	}

	schemaCompleted := false
	surveyCompleted := false

	switch {
	case reply.Status == interviewer.StatusBlockComplete && len(reply.Comments) > 0:
		if f, ok := decodeFragment(reply.Comments); ok {
			if err := s.store.AppendFragment(r.Context(), customerUUID, f); err != nil {
				// Turn already happened; losing one block is recoverable,
				// failing the whole request is not.
				s.logger.Error("failed to append fragment", "customer_uuid", customerUUID, "error", err)
			} else {
				schemaCompleted = true
			}
		} else {
			s.logger.Warn("block-complete reply missing block_id or data", "customer_uuid", customerUUID)
		}
	case reply.SurveyCompleted():
		surveyCompleted = true
		if err := s.store.SetCustomerStatus(r.Context(), customerUUID, store.StatusCompleted); err != nil {
			s.logger.Error("failed to mark survey completed", "customer_uuid", customerUUID, "error", err)
		}
		if err := s.events.Publish(events.SubjectCustomerCompleted, events.CustomerCompleted{
			SurveyUUID:   surveyUUID.String(),
			CustomerUUID: customerUUID.String(),
			SessionID:    customer.SessionID,
			CompletedAt:  time.Now().UTC(),
		}); err != nil {
			s.logger.Warn("failed to publish completion event", "error", err)
		}
	}

	data := map[string]any{
		"user_message":     userMsg,
		"ai_response":      aiMsg,
		"status":           reply.Status,
		"schema_completed": schemaCompleted,
		"survey_completed": surveyCompleted,
		"session_id":       customer.SessionID,
	}
	if len(reply.Comments) > 0 {
		data["comments"] = reply.Comments
	}
	s.writeSuccess(w, http.StatusOK, data, "")
}

// decodeFragment extracts a completed block from a block-complete reply.
// Comments may arrive as the object itself or as a JSON-encoded string
// holding it.
func decodeFragment(comments json.RawMessage) (store.Fragment, bool) {
	raw := comments
	var nested string
	if json.Unmarshal(raw, &nested) == nil {
		raw = []byte(nested)
	}

	var block struct {
		BlockID string          `json:"block_id"`
		Data    json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &block); err != nil || block.BlockID == "" || len(block.Data) == 0 {
		return store.Fragment{}, false
	}
	now := time.Now().UTC()
	return store.Fragment{BlockID: block.BlockID, Data: block.Data, CompletedAt: &now}, true
}

func (s *Server) chatHistory(w http.ResponseWriter, r *http.Request) {
	surveyUUID, ok := s.uuidParam(w, r, "surveyUUID")
	if !ok {
		return
	}
	customerUUID, ok := s.uuidParam(w, r, "customerUUID")
	if !ok {
		return
	}
	if _, err := s.store.SurveyCustomer(r.Context(), surveyUUID, customerUUID); err != nil {
		s.writeStoreError(w, err, "Customer not found for this survey")
		return
	}
	messages, err := s.store.MessagesByCustomer(r.Context(), customerUUID)
	if err != nil {
		s.writeStoreError(w, err, "")
		return
	}
	if messages == nil {
		messages = []store.ChatMessage{}
	}
	s.writeSuccess(w, http.StatusOK, map[string]any{
		"customer_uuid":  customerUUID.String(),
		"survey_uuid":    surveyUUID.String(),
		"messages":       messages,
		"total_messages": len(messages),
	}, "")
}

func (s *Server) customerMetadata(w http.ResponseWriter, r *http.Request) {
	surveyUUID, ok := s.uuidParam(w, r, "surveyUUID")
	if !ok {
		return
	}
	customerUUID, ok := s.uuidParam(w, r, "customerUUID")
	if !ok {
		return
	}
	customer, err := s.store.SurveyCustomer(r.Context(), surveyUUID, customerUUID)
	if err != nil {
		s.writeStoreError(w, err, "Customer not found for this survey")
		return
	}
	fragments := customer.Fragments
	if fragments == nil {
		fragments = []store.Fragment{}
	}
	s.writeSuccess(w, http.StatusOK, map[string]any{
		"customer_uuid":     customerUUID.String(),
		"customer_name":     customer.Name,
		"session_id":        customer.SessionID,
		"completed_schemas": fragments,
		"total_completed":   len(fragments),
	}, "")
}

func (s *Server) deleteCustomer(w http.ResponseWriter, r *http.Request) {
	surveyUUID, ok := s.uuidParam(w, r, "surveyUUID")
	if !ok {
		return
	}
	customerUUID, ok := s.uuidParam(w, r, "customerUUID")
	if !ok {
		return
	}
	if _, err := s.store.SurveyCustomer(r.Context(), surveyUUID, customerUUID); err != nil {
		s.writeStoreError(w, err, "Customer not found")
		return
	}
	if err := s.store.DeleteCustomer(r.Context(), customerUUID); err != nil {
		s.writeStoreError(w, err, "Customer not found")
		return
	}
	s.writeSuccess(w, http.StatusOK, map[string]string{"uuid": customerUUID.String()}, "Customer and chat history deleted successfully")
}
