package httpapi

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"DisasterWatch/internal/domain"
	"DisasterWatch/internal/ports"
)

// resolutionRate is a dashboard stand-in until incident lifecycle tracking
// exists.
const resolutionRate = 94.5

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"version":   apiVersion,
	})
}

func (s *Server) handleListIncidents(w http.ResponseWriter, r *http.Request) {
	filter := ports.IncidentFilter{
		Limit:        queryInt64(r, "limit", 20),
		Offset:       queryInt64(r, "offset", 0),
		Severity:     r.URL.Query().Get("severity"),
		IncidentType: r.URL.Query().Get("incident_type"),
		Location:     r.URL.Query().Get("location"),
	}

	incidents, err := s.incidents.List(r.Context(), filter)
	if err != nil {
		s.logError("fetch incidents", err)
		s.respondError(w, http.StatusInternalServerError, "Failed to fetch incidents")
		return
	}

	if incidents == nil {
		incidents = []domain.Incident{}
	}
	s.respondJSON(w, http.StatusOK, incidents)
}

func (s *Server) handleGetIncident(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	incident, err := s.incidents.Get(r.Context(), id)
	if errors.Is(err, ports.ErrNotFound) {
		s.respondError(w, http.StatusNotFound, "Incident not found")
		return
	}
	if err != nil {
		s.logError("fetch incident", err)
		s.respondError(w, http.StatusInternalServerError, "Failed to fetch incident")
		return
	}

	s.respondJSON(w, http.StatusOK, incident)
}

type geoGeometry struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"`
}

type geoFeature struct {
	Type       string                 `json:"type"`
	Geometry   geoGeometry            `json:"geometry"`
	Properties map[string]interface{} `json:"properties"`
}

type geoFeatureCollection struct {
	Type     string       `json:"type"`
	Features []geoFeature `json:"features"`
}

func (s *Server) handleIncidentsMap(w http.ResponseWriter, r *http.Request) {
	incidents, err := s.incidents.ListLocated(r.Context(), 100)
	if err != nil {
		s.logError("fetch map incidents", err)
		s.respondError(w, http.StatusInternalServerError, "Failed to fetch map data")
		return
	}

	collection := geoFeatureCollection{Type: "FeatureCollection", Features: []geoFeature{}}
	for _, incident := range incidents {
		for _, location := range incident.Locations {
			if location.Latitude == nil || location.Longitude == nil {
				continue
			}
			collection.Features = append(collection.Features, geoFeature{
				Type: "Feature",
				Geometry: geoGeometry{
					Type:        "Point",
					Coordinates: []float64{*location.Longitude, *location.Latitude},
				},
				Properties: map[string]interface{}{
					"incident_id":   incident.ID,
					"severity":      incident.Severity,
					"incident_type": incident.IncidentType,
					"urgency_score": incident.UrgencyScore,
					"content":       snippet(incident.Content, 100),
					"location_name": location.Name,
				},
			})
		}
	}

	s.respondJSON(w, http.StatusOK, collection)
}

func (s *Server) handleListAlerts(w http.ResponseWriter, r *http.Request) {
	alerts, err := s.alerts.List(r.Context(), queryInt64(r, "limit", 20), queryInt64(r, "offset", 0))
	if err != nil {
		s.logError("fetch alerts", err)
		s.respondError(w, http.StatusInternalServerError, "Failed to fetch alerts")
		return
	}

	if alerts == nil {
		alerts = []domain.Alert{}
	}
	s.respondJSON(w, http.StatusOK, alerts)
}

func (s *Server) handleAnalyticsSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.incidents.Summary(r.Context())
	if err != nil {
		s.logError("fetch analytics", err)
		s.respondError(w, http.StatusInternalServerError, "Failed to fetch analytics")
		return
	}

	activeAlerts, err := s.alerts.CountActive(r.Context())
	if err != nil {
		s.logError("count active alerts", err)
		s.respondError(w, http.StatusInternalServerError, "Failed to fetch analytics")
		return
	}

	summary.ActiveAlerts = activeAlerts
	summary.AvgUrgencyScore = math.Round(summary.AvgUrgencyScore*10) / 10
	summary.ResolutionRate = resolutionRate
	s.respondJSON(w, http.StatusOK, summary)
}

func (s *Server) handleTopLocations(w http.ResponseWriter, r *http.Request) {
	locations, err := s.incidents.TopLocations(r.Context(), queryInt64(r, "limit", 10))
	if err != nil {
		s.logError("fetch location analytics", err)
		s.respondError(w, http.StatusInternalServerError, "Failed to fetch location data")
		return
	}

	if locations == nil {
		locations = []domain.LocationSummary{}
	}
	for i := range locations {
		locations[i].AvgUrgencyScore = math.Round(locations[i].AvgUrgencyScore*10) / 10
	}
	s.respondJSON(w, http.StatusOK, locations)
}

func (s *Server) handleMonitoringStatus(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, s.monitor.Status())
}

func (s *Server) handleTriggerProcess(w http.ResponseWriter, r *http.Request) {
	// Detached from the request context: the cycle outlives the response.
	s.monitor.TriggerCycle(context.Background())
	s.respondJSON(w, http.StatusAccepted, map[string]string{"message": "Processing started"})
}

func (s *Server) logError(msg string, err error) {
	if s.logger != nil {
		s.logger.Error(msg, "error", err)
	}
}

func queryInt64(r *http.Request, name string, fallback int64) int64 {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || value < 0 {
		return fallback
	}
	return value
}

func snippet(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
