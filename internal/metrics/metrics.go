package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "disasterwatch"

// Metrics contains all pipeline-level metrics.
type Metrics struct {
	FeedFetches      *prometheus.CounterVec
	ItemsSeen        prometheus.Counter
	IncidentsCreated *prometheus.CounterVec
	AlertsGenerated  prometheus.Counter
	AnalysisOutcomes *prometheus.CounterVec
	AnalysisDuration prometheus.Histogram
	CycleDuration    prometheus.Histogram

	registry *prometheus.Registry
}

// New creates a Metrics instance backed by its own registry.
func New() *Metrics {
	m := &Metrics{
		FeedFetches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "feeds",
				Name:      "fetches_total",
				Help:      "Total feed fetch attempts by outcome",
			},
			[]string{"feed", "status"},
		),
		ItemsSeen: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "items",
				Name:      "seen_total",
				Help:      "Total raw feed items examined",
			},
		),
		IncidentsCreated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "incidents",
				Name:      "created_total",
				Help:      "Total incidents persisted by type and severity",
			},
			[]string{"incident_type", "severity"},
		),
		AlertsGenerated: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "alerts",
				Name:      "generated_total",
				Help:      "Total alerts generated for high-urgency incidents",
			},
		),
		AnalysisOutcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "analysis",
				Name:      "outcomes_total",
				Help:      "Classification results by producing model (or fallback)",
			},
			[]string{"model"},
		),
		AnalysisDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "analysis",
				Name:      "duration_seconds",
				Help:      "Classification duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
		),
		CycleDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "monitor",
				Name:      "cycle_duration_seconds",
				Help:      "Ingestion cycle duration in seconds",
				Buckets:   []float64{1, 5, 10, 30, 60, 120, 300},
			},
		),
		registry: prometheus.NewRegistry(),
	}

	m.registry.MustRegister(
		m.FeedFetches,
		m.ItemsSeen,
		m.IncidentsCreated,
		m.AlertsGenerated,
		m.AnalysisOutcomes,
		m.AnalysisDuration,
		m.CycleDuration,
	)

	return m
}

// Handler exposes the registry for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
