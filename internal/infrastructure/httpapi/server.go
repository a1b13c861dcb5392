package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"DisasterWatch/internal/ports"
	"DisasterWatch/internal/usecase"
)

const apiVersion = "1.0.0"

// Deps wires the read-side collaborators into the HTTP server.
type Deps struct {
	Incidents ports.IncidentRepository
	Alerts    ports.AlertRepository
	Monitor   *usecase.Monitor
	Metrics   http.Handler
	Logger    *slog.Logger
}

// Server exposes the read/query surface over already-persisted data plus the
// monitoring endpoints.
type Server struct {
	incidents ports.IncidentRepository
	alerts    ports.AlertRepository
	monitor   *usecase.Monitor
	metrics   http.Handler
	logger    *slog.Logger
}

// NewServer builds the HTTP server component.
func NewServer(deps Deps) *Server {
	return &Server{
		incidents: deps.Incidents,
		alerts:    deps.Alerts,
		monitor:   deps.Monitor,
		metrics:   deps.Metrics,
		logger:    deps.Logger,
	}
}

// Handler assembles the chi router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/incidents", s.handleListIncidents)
		r.Get("/incidents/map", s.handleIncidentsMap)
		r.Get("/incidents/{id}", s.handleGetIncident)
		r.Get("/alerts", s.handleListAlerts)
		r.Get("/analytics/summary", s.handleAnalyticsSummary)
		r.Get("/analytics/locations", s.handleTopLocations)
		r.Get("/monitoring/status", s.handleMonitoringStatus)
		r.Post("/monitoring/process", s.handleTriggerProcess)
	})

	if s.metrics != nil {
		r.Handle("/metrics", s.metrics)
	}

	return r
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil && s.logger != nil {
		s.logger.Error("encode response", "error", err)
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, detail string) {
	s.respondJSON(w, status, map[string]string{"detail": detail})
}
