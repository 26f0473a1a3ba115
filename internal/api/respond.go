package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/parleylabs/canvass/internal/store"
)

// Error types surfaced in the error envelope.
const (
	errValidation = "validation_error"
	errNotFound   = "not_found"
	errDuplicate  = "duplicate_error"
	errDatabase   = "database_error"
	errAIService  = "ai_service_error"
	errServer     = "server_error"
)

type successEnvelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data"`
	Message string `json:"message,omitempty"`
}

type errorEnvelope struct {
	Success   bool   `json:"success"`
	Error     string `json:"error"`
	ErrorType string `json:"error_type"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func (s *Server) writeSuccess(w http.ResponseWriter, status int, data any, message string) {
	writeJSON(w, status, successEnvelope{Success: true, Data: data, Message: message})
}

func (s *Server) writeError(w http.ResponseWriter, status int, errType, msg string) {
	writeJSON(w, status, errorEnvelope{Success: false, Error: msg, ErrorType: errType})
}

// writeStoreError maps a persistence failure to a response: not-found
// becomes 404 with the given message, anything else a logged 500.
func (s *Server) writeStoreError(w http.ResponseWriter, err error, notFoundMsg string) {
	if errors.Is(err, store.ErrNotFound) {
		s.writeError(w, http.StatusNotFound, errNotFound, notFoundMsg)
		return
	}
	s.logger.Error("store error", "error", err)
	s.writeError(w, http.StatusInternalServerError, errDatabase, "Database operation failed")
}

// uuidParam parses a UUID URL parameter, writing a validation error on
// failure.
func (s *Server) uuidParam(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, errValidation, "Invalid UUID format")
		return uuid.Nil, false
	}
	return id, true
}

func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		s.writeError(w, http.StatusBadRequest, errValidation, "Invalid JSON body")
		return false
	}
	return true
}
