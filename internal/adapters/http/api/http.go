// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/okian/skinalyze/internal/adapters/repository"
	"github.com/okian/skinalyze/internal/domain/presentation"
	"github.com/okian/skinalyze/internal/domain/types"
	"github.com/okian/skinalyze/pkg/logger"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// PatientPage renders the patient page; failures come back as the
	// not-found page.
	PatientPage(ctx context.Context, id string, tab types.Tab) presentation.PatientPage

	// DiagnosisHistory and TreatmentProgress render a single tab.
	DiagnosisHistory(ctx context.Context, id string) (presentation.DiagnosisHistory, error)
	TreatmentProgress(ctx context.Context, id string) (presentation.TreatmentProgress, error)

	// Patients returns up to limit patient cards; 0 means the server maximum.
	Patients(ctx context.Context, limit int) ([]presentation.PatientCard, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	patientsHandler *PatientsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:   NewHealthHandler(),
		statsHandler:    NewStatsHandler(statsProvider),
		patientsHandler: NewPatientsHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/metrics", MetricsMiddleware(s.healthHandler.HandleHealth, "metrics"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/patients", MetricsMiddleware(s.patientsHandler.HandleList, "patients"))
	mux.HandleFunc("/patients/", s.patientsHandler.HandlePatient)
}

type errorResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	reqID := RequestIDFromContext(r.Context())
	if status >= http.StatusInternalServerError {
		logger.Named("api").Error(r.Context(), "request failed",
			logger.String("request_id", reqID),
			logger.String("path", r.URL.Path),
			logger.Error(err),
		)
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg, RequestID: reqID})
}

// isNotFound translates upstream not-found errors to 404.
func isNotFound(err error) bool {
	return errors.Is(err, repository.ErrNotFound) || errors.Is(err, ErrNotFound)
}
