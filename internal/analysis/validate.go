package analysis

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"DisasterWatch/internal/domain"
)

type rawLocation struct {
	Name       string   `json:"name"`
	Latitude   *float64 `json:"latitude"`
	Longitude  *float64 `json:"longitude"`
	Confidence *float64 `json:"confidence"`
}

type rawSentiment struct {
	DistressLevel string   `json:"distress_level"`
	Emotions      []string `json:"emotions"`
	HelpSeeking   bool     `json:"help_seeking"`
}

type rawAnalysis struct {
	RelevanceScore     *float64      `json:"relevance_score"`
	UrgencyScore       *float64      `json:"urgency_score"`
	CredibilityScore   *float64      `json:"credibility_score"`
	Locations          []rawLocation `json:"locations"`
	Sentiment          *rawSentiment `json:"sentiment"`
	IncidentType       string        `json:"incident_type"`
	Severity           string        `json:"severity"`
	KeyDetails         string        `json:"key_details"`
	AffectedPopulation string        `json:"affected_population"`
	ImmediateActions   []string      `json:"immediate_actions"`
	Reasoning          string        `json:"reasoning"`
}

// extractJSON pulls the JSON object out of a response that may be wrapped in
// prose or code fences: everything from the first '{' to the last '}'.
func extractJSON(text string) (string, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end < start {
		return "", fmt.Errorf("no JSON object in response")
	}
	return text[start : end+1], nil
}

func parseAnalysis(text string) (rawAnalysis, error) {
	var parsed rawAnalysis

	jsonText, err := extractJSON(text)
	if err != nil {
		return parsed, err
	}

	if err := json.Unmarshal([]byte(jsonText), &parsed); err != nil {
		return parsed, fmt.Errorf("decode analysis JSON: %w", err)
	}

	return parsed, nil
}

// sanitize fills missing fields with defaults and clamps every score into
// its range. Every result read from the service goes through here.
func sanitize(raw rawAnalysis) domain.AnalysisResult {
	result := domain.AnalysisResult{
		RelevanceScore:     clamp01(valueOr(raw.RelevanceScore, 0.5)),
		UrgencyScore:       clampUrgency(valueOr(raw.UrgencyScore, 5)),
		CredibilityScore:   clamp01(valueOr(raw.CredibilityScore, 0.5)),
		Locations:          sanitizeLocations(raw.Locations),
		Sentiment:          sanitizeSentiment(raw.Sentiment),
		IncidentType:       sanitizeIncidentType(raw.IncidentType),
		Severity:           sanitizeSeverity(raw.Severity),
		KeyDetails:         raw.KeyDetails,
		AffectedPopulation: raw.AffectedPopulation,
		ImmediateActions:   raw.ImmediateActions,
		Reasoning:          raw.Reasoning,
	}
	return result
}

func sanitizeLocations(raw []rawLocation) []domain.Location {
	locations := make([]domain.Location, 0, len(raw))
	for _, loc := range raw {
		if strings.TrimSpace(loc.Name) == "" {
			continue
		}
		locations = append(locations, domain.Location{
			Name:       loc.Name,
			Latitude:   loc.Latitude,
			Longitude:  loc.Longitude,
			Confidence: valueOr(loc.Confidence, 0.5),
		})
	}
	return locations
}

func sanitizeSentiment(raw *rawSentiment) domain.Sentiment {
	sentiment := domain.Sentiment{
		DistressLevel: domain.DistressMedium,
		Emotions:      []string{},
	}
	if raw == nil {
		return sentiment
	}

	switch level := domain.DistressLevel(raw.DistressLevel); level {
	case domain.DistressLow, domain.DistressMedium, domain.DistressHigh, domain.DistressCritical:
		sentiment.DistressLevel = level
	}

	if raw.Emotions != nil {
		sentiment.Emotions = raw.Emotions
	}
	sentiment.HelpSeeking = raw.HelpSeeking

	return sentiment
}

func sanitizeIncidentType(value string) domain.IncidentType {
	switch t := domain.IncidentType(strings.ToLower(strings.TrimSpace(value))); t {
	case domain.TypeFlood, domain.TypeFire, domain.TypeEarthquake, domain.TypeLandslide, domain.TypeStorm:
		return t
	default:
		return domain.TypeOther
	}
}

func sanitizeSeverity(value string) domain.Severity {
	switch s := domain.Severity(strings.ToLower(strings.TrimSpace(value))); s {
	case domain.SeverityLow, domain.SeveritySevere, domain.SeverityCritical:
		return s
	default:
		return domain.SeverityModerate
	}
}

func valueOr(v *float64, fallback float64) float64 {
	if v == nil {
		return fallback
	}
	return *v
}

func clamp01(v float64) float64 {
	return math.Max(0.0, math.Min(1.0, v))
}

// clampUrgency rounds service-provided numbers (which sometimes arrive as
// floats) and clamps them into the 1..10 scale.
func clampUrgency(v float64) int {
	urgency := int(math.Round(v))
	if urgency < 1 {
		return 1
	}
	if urgency > 10 {
		return 10
	}
	return urgency
}
