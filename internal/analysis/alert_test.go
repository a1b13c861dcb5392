package analysis

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"DisasterWatch/internal/domain"
)

func highUrgencyIncident() domain.Incident {
	return domain.Incident{
		ID:           "incident_1",
		IncidentType: domain.TypeFlood,
		Severity:     domain.SeverityCritical,
		UrgencyScore: 9,
		KeyDetails:   "river breached its banks",
		Locations:    []domain.Location{{Name: "Jakarta"}},
	}
}

func TestDraftUsesServiceResponse(t *testing.T) {
	t.Parallel()

	gen := &scriptedGenerator{responses: map[string]string{
		"flash": "```json\n" +
			`{"public_message": "Evacuate low-lying areas now.", "emergency_message": "Deploy boats to sector 4."}` +
			"\n```",
	}}

	draft := newAnalyzer(gen).Draft(context.Background(), highUrgencyIncident())

	assert.Equal(t, "Evacuate low-lying areas now.", draft.PublicMessage)
	assert.Equal(t, "Deploy boats to sector 4.", draft.EmergencyMessage)
}

func TestDraftFallsBackOnServiceError(t *testing.T) {
	t.Parallel()

	gen := &scriptedGenerator{errs: map[string]error{"flash": fmt.Errorf("unavailable")}}

	draft := newAnalyzer(gen).Draft(context.Background(), highUrgencyIncident())

	assert.Equal(t, "Critical flood reported in Jakarta. Follow local emergency guidelines.", draft.PublicMessage)
	assert.Contains(t, draft.EmergencyMessage, "Urgency 9/10")
	assert.Contains(t, draft.EmergencyMessage, "river breached its banks")
}

func TestDraftFallsBackOnNonJSONResponse(t *testing.T) {
	t.Parallel()

	gen := &scriptedGenerator{responses: map[string]string{"flash": "no structured output"}}

	draft := newAnalyzer(gen).Draft(context.Background(), highUrgencyIncident())

	assert.Contains(t, draft.PublicMessage, "Follow local emergency guidelines")
}

func TestDraftFallbackWithoutLocationOrDetails(t *testing.T) {
	t.Parallel()

	incident := highUrgencyIncident()
	incident.Locations = nil
	incident.KeyDetails = ""
	gen := &scriptedGenerator{errs: map[string]error{"flash": fmt.Errorf("unavailable")}}

	draft := newAnalyzer(gen).Draft(context.Background(), incident)

	assert.Contains(t, draft.PublicMessage, "reported in affected area")
	assert.Contains(t, draft.EmergencyMessage, "See incident report")
}

func TestTitleCase(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Critical", TitleCase("critical"))
	assert.Equal(t, "Red Cross Relief", TitleCase("red cross relief"))
	assert.Equal(t, "", TitleCase(""))
}
