package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode"

	"DisasterWatch/internal/domain"
)

const alertPromptTemplate = `Generate an emergency alert message based on this incident:

Incident Type: %s
Severity: %s
Location: %s
Urgency Score: %d/10
Details: %s

Create:
1. A public alert message (concise, actionable)
2. An emergency services message (detailed, technical)

Response format:
{
  "public_message": "Alert text for general public",
  "emergency_message": "Detailed alert for emergency services"
}`

// Draft asks the flash tier for public and emergency-services alert text,
// substituting a deterministic template when the call or its JSON fails.
func (a *Analyzer) Draft(ctx context.Context, incident domain.Incident) domain.AlertDraft {
	prompt := fmt.Sprintf(alertPromptTemplate,
		incident.IncidentType,
		incident.Severity,
		primaryLocationName(incident),
		incident.UrgencyScore,
		incident.KeyDetails,
	)

	raw, err := a.generate(ctx, a.flashModel, prompt)
	if err != nil {
		a.warn("alert draft failed", "incident", incident.ID, "error", err)
		return fallbackDraft(incident)
	}

	jsonText, err := extractJSON(raw)
	if err != nil {
		a.warn("alert draft returned no JSON", "incident", incident.ID)
		return fallbackDraft(incident)
	}

	var draft domain.AlertDraft
	if err := json.Unmarshal([]byte(jsonText), &draft); err != nil || draft.PublicMessage == "" {
		a.warn("alert draft JSON invalid", "incident", incident.ID)
		return fallbackDraft(incident)
	}

	return draft
}

func fallbackDraft(incident domain.Incident) domain.AlertDraft {
	location := primaryLocationName(incident)
	details := incident.KeyDetails
	if details == "" {
		details = "See incident report"
	}

	return domain.AlertDraft{
		PublicMessage: fmt.Sprintf("%s %s reported in %s. Follow local emergency guidelines.",
			TitleCase(string(incident.Severity)), incident.IncidentType, location),
		EmergencyMessage: fmt.Sprintf("Emergency Response: %s %s - Urgency %d/10. Location: %s. Details: %s",
			incident.Severity, incident.IncidentType, incident.UrgencyScore, location, details),
	}
}

func primaryLocationName(incident domain.Incident) string {
	if len(incident.Locations) > 0 && incident.Locations[0].Name != "" {
		return incident.Locations[0].Name
	}
	return "affected area"
}

// TitleCase upper-cases the first letter of each word, matching the
// presentation style of generated alert titles and messages.
func TitleCase(s string) string {
	var b strings.Builder
	upperNext := true
	for _, r := range s {
		if unicode.IsSpace(r) {
			upperNext = true
			b.WriteRune(r)
			continue
		}
		if upperNext {
			b.WriteRune(unicode.ToUpper(r))
			upperNext = false
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
