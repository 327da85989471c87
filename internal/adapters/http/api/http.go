// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/speechwell/speechwell/internal/adapters/repository"
	"github.com/speechwell/speechwell/internal/domain/analysis"
	"github.com/speechwell/speechwell/internal/domain/dedupe"
	"github.com/speechwell/speechwell/internal/domain/model"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	dedupe.Deduper

	// Enqueue pushes a call for async analysis. Returns false on backpressure.
	Enqueue(ctx context.Context, c model.Call) bool

	// Read operations expose completed assessments.
	Assessment(ctx context.Context, conversationID string) (analysis.SessionSummary, error)
	RecentAssessments(ctx context.Context, n int) ([]analysis.SessionSummary, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	webhookHandler     *WebhookHandler
	assessmentsHandler *AssessmentsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, verifier *SignatureVerifier, maxAssessmentLimit int) *Server {
	return &Server{
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(statsProvider),
		webhookHandler:     NewWebhookHandler(deps, verifier),
		assessmentsHandler: NewAssessmentsHandler(deps, maxAssessmentLimit),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/webhook/elevenlabs", MetricsMiddleware(s.webhookHandler.HandlePostCall, "webhook"))
	mux.HandleFunc("/assessments", MetricsMiddleware(s.assessmentsHandler.HandleList, "assessments"))
	mux.HandleFunc("/assessments/", MetricsMiddleware(s.assessmentsHandler.HandleGet, "assessment"))
}

type ackResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate,omitempty"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// isNotFound translates upstream not-found errors to 404.
func isNotFound(err error) bool {
	return errors.Is(err, repository.ErrNotFound)
}
