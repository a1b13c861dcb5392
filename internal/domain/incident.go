package domain

import "time"

// IncidentType categorizes the kind of disaster an item describes.
type IncidentType string

const (
	TypeFlood      IncidentType = "flood"
	TypeFire       IncidentType = "fire"
	TypeEarthquake IncidentType = "earthquake"
	TypeLandslide  IncidentType = "landslide"
	TypeStorm      IncidentType = "storm"
	TypeOther      IncidentType = "other"
)

// Severity grades how serious an incident is.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityModerate Severity = "moderate"
	SeveritySevere   Severity = "severe"
	SeverityCritical Severity = "critical"
)

// DistressLevel describes the emotional state read from content.
type DistressLevel string

const (
	DistressLow      DistressLevel = "low"
	DistressMedium   DistressLevel = "medium"
	DistressHigh     DistressLevel = "high"
	DistressCritical DistressLevel = "critical"
)

// AlertStatus tracks the alert delivery lifecycle.
type AlertStatus string

const (
	AlertStatusDraft AlertStatus = "draft"
	AlertScheduled   AlertStatus = "scheduled"
	AlertSending     AlertStatus = "sending"
	AlertSent        AlertStatus = "sent"
	AlertFailed      AlertStatus = "failed"
)

// Location is a place mentioned in analyzed content. Coordinates are
// optional; downstream map projections rely on them only when present.
type Location struct {
	Name       string   `bson:"name" json:"name"`
	Latitude   *float64 `bson:"latitude,omitempty" json:"latitude,omitempty"`
	Longitude  *float64 `bson:"longitude,omitempty" json:"longitude,omitempty"`
	Confidence float64  `bson:"confidence" json:"confidence"`
}

// Sentiment captures the emotional reading of analyzed content.
type Sentiment struct {
	DistressLevel DistressLevel `bson:"distress_level" json:"distress_level"`
	Emotions      []string      `bson:"emotions" json:"emotions"`
	HelpSeeking   bool          `bson:"help_seeking" json:"help_seeking"`
}

// AnalysisResult is the validated output of the AI classifier. Scores are
// always clamped into their ranges before this value leaves the analyzer.
type AnalysisResult struct {
	RelevanceScore     float64
	UrgencyScore       int
	CredibilityScore   float64
	Locations          []Location
	Sentiment          Sentiment
	IncidentType       IncidentType
	Severity           Severity
	KeyDetails         string
	AffectedPopulation string
	ImmediateActions   []string
	Reasoning          string
	ModelUsed          string
	ProcessingTime     time.Duration
}

// PrimaryLocation returns the name of the first extracted location, or a
// placeholder when none was found.
func (a AnalysisResult) PrimaryLocation() string {
	if len(a.Locations) > 0 {
		return a.Locations[0].Name
	}
	return "affected area"
}

// Engagement holds placeholder social counters attached to incidents.
type Engagement struct {
	Likes    int `bson:"likes" json:"likes"`
	Shares   int `bson:"shares" json:"shares"`
	Comments int `bson:"comments" json:"comments"`
}

// Incident is a persisted, classified disaster-relevant item. It is created
// once per unique fingerprint and mutated only to attach an alert.
type Incident struct {
	ID          string    `bson:"id" json:"id"`
	Fingerprint string    `bson:"content_id" json:"content_id"`
	Content     string    `bson:"content" json:"content"`
	Source      string    `bson:"source" json:"source"`
	SourceURL   string    `bson:"source_url,omitempty" json:"source_url,omitempty"`
	PublishedAt time.Time `bson:"published_at" json:"published_at"`
	ProcessedAt time.Time `bson:"processed_at" json:"processed_at"`

	RelevanceScore   float64 `bson:"relevance_score" json:"relevance_score"`
	UrgencyScore     int     `bson:"urgency_score" json:"urgency_score"`
	CredibilityScore float64 `bson:"credibility_score" json:"credibility_score"`

	Locations []Location `bson:"locations" json:"locations"`
	Sentiment Sentiment  `bson:"sentiment" json:"sentiment"`

	IncidentType       IncidentType `bson:"incident_type" json:"incident_type"`
	Severity           Severity     `bson:"severity" json:"severity"`
	AffectedPopulation string       `bson:"affected_population,omitempty" json:"affected_population,omitempty"`
	KeyDetails         string       `bson:"key_details,omitempty" json:"key_details,omitempty"`
	ImmediateActions   []string     `bson:"immediate_actions,omitempty" json:"immediate_actions,omitempty"`
	Reasoning          string       `bson:"reasoning,omitempty" json:"reasoning,omitempty"`

	Engagement Engagement `bson:"engagement" json:"engagement"`
	Image      string     `bson:"image,omitempty" json:"image,omitempty"`

	AlertGenerated bool   `bson:"alert_generated" json:"alert_generated"`
	AlertID        string `bson:"alert_id,omitempty" json:"alert_id,omitempty"`

	ModelUsed        string `bson:"model_used,omitempty" json:"model_used,omitempty"`
	ProcessingTimeMS int64  `bson:"processing_time_ms" json:"processing_time_ms"`
}

// Alert is a generated notification record linked to one incident. The
// auto-generation path creates alerts directly in the sent state; any other
// lifecycle belongs to an external delivery workflow.
type Alert struct {
	ID             string      `bson:"id" json:"id"`
	IncidentID     string      `bson:"incident_id" json:"incident_id"`
	Title          string      `bson:"title" json:"title"`
	Message        string      `bson:"message" json:"message"`
	Severity       Severity    `bson:"severity" json:"severity"`
	Audience       []string    `bson:"audience" json:"audience"`
	Status         AlertStatus `bson:"status" json:"status"`
	CreatedAt      time.Time   `bson:"created_at" json:"created_at"`
	SentAt         *time.Time  `bson:"sent_at,omitempty" json:"sent_at,omitempty"`
	DeliveryRate   float64     `bson:"delivery_rate" json:"delivery_rate"`
	EngagementRate float64     `bson:"engagement_rate" json:"engagement_rate"`
}

// AlertDraft carries the two message variants produced for an alert.
type AlertDraft struct {
	PublicMessage    string `json:"public_message"`
	EmergencyMessage string `json:"emergency_message"`
}

// AnalyticsSummary aggregates incident and alert statistics for dashboards.
type AnalyticsSummary struct {
	TotalIncidents    int64   `json:"total_incidents"`
	CriticalIncidents int64   `json:"critical_incidents"`
	ActiveAlerts      int64   `json:"active_alerts"`
	AvgUrgencyScore   float64 `json:"avg_urgency_score"`
	IncidentsToday    int64   `json:"incidents_today"`
	ResolutionRate    float64 `json:"resolution_rate"`
}

// LocationSummary ranks a location by how many incidents mention it.
type LocationSummary struct {
	LocationName    string  `json:"location_name"`
	IncidentCount   int64   `json:"incident_count"`
	CriticalCount   int64   `json:"critical_count"`
	AvgUrgencyScore float64 `json:"avg_urgency_score"`
}
