package ports

import (
	"context"
	"errors"
	"time"

	"DisasterWatch/internal/domain"
)

// ErrNotFound is returned by repositories when a document does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicateFingerprint is returned by IncidentRepository.Insert when the
// store's uniqueness constraint rejects an already-ingested fingerprint.
var ErrDuplicateFingerprint = errors.New("duplicate fingerprint")

// FeedSource pulls the most recent raw items from one syndicated feed.
type FeedSource interface {
	Fetch(ctx context.Context, feed domain.FeedDescriptor) ([]domain.RawItem, error)
}

// IncidentFilter narrows incident listings.
type IncidentFilter struct {
	Limit        int64
	Offset       int64
	Severity     string
	IncidentType string
	Location     string
}

// IncidentRepository persists classified incidents and serves the read side.
type IncidentRepository interface {
	ExistsByFingerprint(ctx context.Context, fingerprint string) (bool, error)
	Insert(ctx context.Context, incident domain.Incident) error
	AttachAlert(ctx context.Context, incidentID, alertID string) error
	Get(ctx context.Context, id string) (domain.Incident, error)
	List(ctx context.Context, filter IncidentFilter) ([]domain.Incident, error)
	ListLocated(ctx context.Context, limit int64) ([]domain.Incident, error)
	Summary(ctx context.Context) (domain.AnalyticsSummary, error)
	TopLocations(ctx context.Context, limit int64) ([]domain.LocationSummary, error)
}

// AlertRepository persists generated alert records.
type AlertRepository interface {
	Insert(ctx context.Context, alert domain.Alert) error
	List(ctx context.Context, limit, offset int64) ([]domain.Alert, error)
	CountActive(ctx context.Context) (int64, error)
}

// Analyzer classifies content through the external analysis service. It is
// total: every input yields a validated, range-clamped result.
type Analyzer interface {
	Analyze(ctx context.Context, content, source string, publishedAt time.Time) domain.AnalysisResult
}

// AlertDrafter produces alert message text for a high-urgency incident,
// falling back to a deterministic template when the service fails.
type AlertDrafter interface {
	Draft(ctx context.Context, incident domain.Incident) domain.AlertDraft
}

// EngagementSampler supplies placeholder social counters for new incidents.
// Injectable so tests can use deterministic numbers.
type EngagementSampler interface {
	Sample() domain.Engagement
}

// RateSampler supplies placeholder delivery telemetry for sent alerts.
type RateSampler interface {
	Rates() (delivery, engagement float64)
}
