package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"DisasterWatch/internal/domain"
	"DisasterWatch/internal/ports"
	"DisasterWatch/internal/usecase"
)

type fakeIncidents struct {
	incidents  []domain.Incident
	located    []domain.Incident
	summary    domain.AnalyticsSummary
	locations  []domain.LocationSummary
	lastFilter ports.IncidentFilter
}

func (f *fakeIncidents) ExistsByFingerprint(context.Context, string) (bool, error) { return false, nil }
func (f *fakeIncidents) Insert(context.Context, domain.Incident) error             { return nil }
func (f *fakeIncidents) AttachAlert(context.Context, string, string) error         { return nil }

func (f *fakeIncidents) Get(_ context.Context, id string) (domain.Incident, error) {
	for _, incident := range f.incidents {
		if incident.ID == id {
			return incident, nil
		}
	}
	return domain.Incident{}, ports.ErrNotFound
}

func (f *fakeIncidents) List(_ context.Context, filter ports.IncidentFilter) ([]domain.Incident, error) {
	f.lastFilter = filter
	return f.incidents, nil
}

func (f *fakeIncidents) ListLocated(context.Context, int64) ([]domain.Incident, error) {
	return f.located, nil
}

func (f *fakeIncidents) Summary(context.Context) (domain.AnalyticsSummary, error) {
	return f.summary, nil
}

func (f *fakeIncidents) TopLocations(context.Context, int64) ([]domain.LocationSummary, error) {
	return f.locations, nil
}

type fakeAlerts struct {
	alerts []domain.Alert
	active int64
}

func (f *fakeAlerts) Insert(context.Context, domain.Alert) error { return nil }

func (f *fakeAlerts) List(context.Context, int64, int64) ([]domain.Alert, error) {
	return f.alerts, nil
}

func (f *fakeAlerts) CountActive(context.Context) (int64, error) { return f.active, nil }

func newTestServer(incidents *fakeIncidents, alerts *fakeAlerts) *httptest.Server {
	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Incidents: incidents,
		Alerts:    alerts,
	})
	monitor := usecase.NewMonitor(pipeline, time.Hour, time.Hour, nil, nil)

	server := NewServer(Deps{
		Incidents: incidents,
		Alerts:    alerts,
		Monitor:   monitor,
	})
	return httptest.NewServer(server.Handler())
}

func getJSON(t *testing.T, url string, wantStatus int, into interface{}) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, wantStatus, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	require.NoError(t, json.NewDecoder(resp.Body).Decode(into))
}

func TestHealth(t *testing.T) {
	t.Parallel()

	ts := newTestServer(&fakeIncidents{}, &fakeAlerts{})
	defer ts.Close()

	var body map[string]string
	getJSON(t, ts.URL+"/api/health", http.StatusOK, &body)

	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, apiVersion, body["version"])
	_, err := time.Parse(time.RFC3339, body["timestamp"])
	assert.NoError(t, err)
}

func TestListIncidents(t *testing.T) {
	t.Parallel()

	incidents := &fakeIncidents{incidents: []domain.Incident{
		{ID: "incident_1", Severity: domain.SeverityCritical},
		{ID: "incident_2", Severity: domain.SeverityModerate},
	}}
	ts := newTestServer(incidents, &fakeAlerts{})
	defer ts.Close()

	var body []domain.Incident
	getJSON(t, ts.URL+"/api/incidents?limit=5&severity=critical&location=jakarta", http.StatusOK, &body)

	require.Len(t, body, 2)
	assert.Equal(t, "incident_1", body[0].ID)

	assert.Equal(t, int64(5), incidents.lastFilter.Limit)
	assert.Equal(t, int64(0), incidents.lastFilter.Offset)
	assert.Equal(t, "critical", incidents.lastFilter.Severity)
	assert.Equal(t, "jakarta", incidents.lastFilter.Location)
}

func TestListIncidentsEmptyIsArray(t *testing.T) {
	t.Parallel()

	ts := newTestServer(&fakeIncidents{}, &fakeAlerts{})
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/incidents")
	require.NoError(t, err)
	defer resp.Body.Close()

	var raw json.RawMessage
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&raw))
	assert.JSONEq(t, "[]", string(raw), "empty result must serialize as [], not null")
}

func TestGetIncident(t *testing.T) {
	t.Parallel()

	incidents := &fakeIncidents{incidents: []domain.Incident{{ID: "incident_42", UrgencyScore: 7}}}
	ts := newTestServer(incidents, &fakeAlerts{})
	defer ts.Close()

	var body domain.Incident
	getJSON(t, ts.URL+"/api/incidents/incident_42", http.StatusOK, &body)
	assert.Equal(t, 7, body.UrgencyScore)

	var errBody map[string]string
	getJSON(t, ts.URL+"/api/incidents/missing", http.StatusNotFound, &errBody)
	assert.Equal(t, "Incident not found", errBody["detail"])
}

func TestIncidentsMap(t *testing.T) {
	t.Parallel()

	lat, lon := -6.2, 106.8
	incidents := &fakeIncidents{located: []domain.Incident{
		{
			ID:           "incident_geo",
			Severity:     domain.SeveritySevere,
			IncidentType: domain.TypeFlood,
			UrgencyScore: 8,
			Content:      "Flooding in Jakarta",
			Locations: []domain.Location{
				{Name: "Jakarta", Latitude: &lat, Longitude: &lon},
				{Name: "unresolved place"},
			},
		},
	}}
	ts := newTestServer(incidents, &fakeAlerts{})
	defer ts.Close()

	var body geoFeatureCollection
	getJSON(t, ts.URL+"/api/incidents/map", http.StatusOK, &body)

	assert.Equal(t, "FeatureCollection", body.Type)
	require.Len(t, body.Features, 1, "locations without coordinates must be skipped")

	feature := body.Features[0]
	assert.Equal(t, "Point", feature.Geometry.Type)
	assert.Equal(t, []float64{lon, lat}, feature.Geometry.Coordinates, "GeoJSON order is lon, lat")
	assert.Equal(t, "incident_geo", feature.Properties["incident_id"])
	assert.Equal(t, "Jakarta", feature.Properties["location_name"])
}

func TestListAlerts(t *testing.T) {
	t.Parallel()

	alerts := &fakeAlerts{alerts: []domain.Alert{{ID: "alert_1", Title: "Severe Flood Alert"}}}
	ts := newTestServer(&fakeIncidents{}, alerts)
	defer ts.Close()

	var body []domain.Alert
	getJSON(t, ts.URL+"/api/alerts", http.StatusOK, &body)
	require.Len(t, body, 1)
	assert.Equal(t, "Severe Flood Alert", body[0].Title)
}

func TestAnalyticsSummary(t *testing.T) {
	t.Parallel()

	incidents := &fakeIncidents{summary: domain.AnalyticsSummary{
		TotalIncidents:    12,
		CriticalIncidents: 3,
		AvgUrgencyScore:   6.6666,
		IncidentsToday:    2,
	}}
	alerts := &fakeAlerts{active: 4}
	ts := newTestServer(incidents, alerts)
	defer ts.Close()

	var body domain.AnalyticsSummary
	getJSON(t, ts.URL+"/api/analytics/summary", http.StatusOK, &body)

	assert.Equal(t, int64(12), body.TotalIncidents)
	assert.Equal(t, int64(4), body.ActiveAlerts)
	assert.InDelta(t, 6.7, body.AvgUrgencyScore, 1e-9, "average urgency is rounded to one decimal")
	assert.InDelta(t, resolutionRate, body.ResolutionRate, 1e-9)
}

func TestTopLocations(t *testing.T) {
	t.Parallel()

	incidents := &fakeIncidents{locations: []domain.LocationSummary{
		{LocationName: "Jakarta", IncidentCount: 5, AvgUrgencyScore: 7.4444},
	}}
	ts := newTestServer(incidents, &fakeAlerts{})
	defer ts.Close()

	var body []domain.LocationSummary
	getJSON(t, ts.URL+"/api/analytics/locations", http.StatusOK, &body)

	require.Len(t, body, 1)
	assert.Equal(t, "Jakarta", body[0].LocationName)
	assert.InDelta(t, 7.4, body[0].AvgUrgencyScore, 1e-9)
}

func TestMonitoringStatus(t *testing.T) {
	t.Parallel()

	ts := newTestServer(&fakeIncidents{}, &fakeAlerts{})
	defer ts.Close()

	var body usecase.MonitorStatus
	getJSON(t, ts.URL+"/api/monitoring/status", http.StatusOK, &body)

	assert.False(t, body.Active)
	assert.Zero(t, body.FeedCount)
	assert.Nil(t, body.LastCycle)
}

func TestTriggerProcess(t *testing.T) {
	t.Parallel()

	ts := newTestServer(&fakeIncidents{}, &fakeAlerts{})
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/api/monitoring/process", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "Processing started", body["message"])
}
