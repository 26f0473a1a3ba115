// Package api exposes the HTTP surface: company/survey/customer CRUD,
// the interview chat flow, and the AI summary endpoint.
package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"

	"github.com/parleylabs/canvass/internal/events"
	"github.com/parleylabs/canvass/internal/interviewer"
	"github.com/parleylabs/canvass/internal/store"
	"github.com/parleylabs/canvass/internal/summary"
)

// Store is the persistence surface the handlers consume.
type Store interface {
	CreateCompany(ctx context.Context, c *store.Company) error
	CompanyByUUID(ctx context.Context, companyUUID uuid.UUID) (*store.Company, error)
	ListCompanies(ctx context.Context, limit, offset int) ([]store.Company, error)
	UpdateCompany(ctx context.Context, c *store.Company) error
	DeleteCompany(ctx context.Context, companyUUID uuid.UUID) error

	CreateSurvey(ctx context.Context, sv *store.Survey) error
	SurveyByUUID(ctx context.Context, surveyUUID uuid.UUID) (*store.Survey, error)
	SurveysByCompany(ctx context.Context, companyUUID uuid.UUID) ([]store.Survey, error)
	UpdateSurvey(ctx context.Context, sv *store.Survey) error
	DeleteSurvey(ctx context.Context, surveyUUID uuid.UUID) error
	StatsBySurvey(ctx context.Context, surveyUUID uuid.UUID) (*store.SurveyStats, error)

	CreateCustomer(ctx context.Context, c *store.Customer) error
	CustomerByUUID(ctx context.Context, customerUUID uuid.UUID) (*store.Customer, error)
	SurveyCustomer(ctx context.Context, surveyUUID, customerUUID uuid.UUID) (*store.Customer, error)
	CustomersBySurvey(ctx context.Context, surveyUUID uuid.UUID) ([]store.Customer, error)
	AppendFragment(ctx context.Context, customerUUID uuid.UUID, f store.Fragment) error
	SetCustomerStatus(ctx context.Context, customerUUID uuid.UUID, status string) error
	DeleteCustomer(ctx context.Context, customerUUID uuid.UUID) error

	InsertMessage(ctx context.Context, m *store.ChatMessage) error
	MessagesByCustomer(ctx context.Context, customerUUID uuid.UUID) ([]store.ChatMessage, error)
}

// Interviewer is the conversational AI microservice.
type Interviewer interface {
	StartSession(ctx context.Context, surveyContext string) (*interviewer.Session, error)
	Chat(ctx context.Context, sessionID, userInput string) (*interviewer.Reply, error)
}

// Synthesizer runs the survey-summary pipeline.
type Synthesizer interface {
	Synthesize(ctx context.Context, surveyUUID uuid.UUID) (*summary.Envelope, error)
}

type Server struct {
	router      *chi.Mux
	port        int
	store       Store
	interviewer Interviewer
	synth       Synthesizer
	events      *events.Publisher
	logger      *slog.Logger
}

func NewServer(port int, st Store, iv Interviewer, synth Synthesizer, ev *events.Publisher, corsOrigins []string, logger *slog.Logger) *Server {
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	s := &Server{
		router:      router,
		port:        port,
		store:       st,
		interviewer: iv,
		synth:       synth,
		events:      ev,
		logger:      logger,
	}

	router.Get("/health", s.health)

	router.Route("/api", func(r chi.Router) {
		r.Post("/companies", s.createCompany)
		r.Get("/companies", s.listCompanies)
		r.Get("/companies/{companyUUID}", s.getCompany)
		r.Put("/companies/{companyUUID}", s.updateCompany)
		r.Delete("/companies/{companyUUID}", s.deleteCompany)

		r.Post("/companies/{companyUUID}/surveys", s.createSurvey)
		r.Get("/companies/{companyUUID}/surveys", s.listCompanySurveys)

		r.Get("/surveys/{surveyUUID}", s.getSurvey)
		r.Put("/surveys/{surveyUUID}", s.updateSurvey)
		r.Delete("/surveys/{surveyUUID}", s.deleteSurvey)
		r.Get("/surveys/{surveyUUID}/stats", s.surveyStats)
		r.Get("/surveys/{surveyUUID}/ai-summary", s.surveyAISummary)

		r.Post("/surveys/{surveyUUID}/customers", s.registerCustomer)
		r.Get("/surveys/{surveyUUID}/customers", s.listSurveyCustomers)
		r.Get("/surveys/{surveyUUID}/customers/{customerUUID}", s.getCustomer)
		r.Delete("/surveys/{surveyUUID}/customers/{customerUUID}", s.deleteCustomer)
		r.Post("/surveys/{surveyUUID}/customers/{customerUUID}/chat", s.chat)
		r.Get("/surveys/{surveyUUID}/customers/{customerUUID}/history", s.chatHistory)
		r.Get("/surveys/{surveyUUID}/customers/{customerUUID}/metadata", s.customerMetadata)
	})

	return s
}

func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	s.logger.Info("API server starting", "addr", addr)
	return http.ListenAndServe(addr, s.router)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "canvass",
	})
}
