package analysis

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"DisasterWatch/internal/domain"
)

type scriptedGenerator struct {
	responses map[string]string
	errs      map[string]error
	calls     []string
}

func (g *scriptedGenerator) Generate(_ context.Context, model, _ string) (string, error) {
	g.calls = append(g.calls, model)
	if err, ok := g.errs[model]; ok {
		return "", err
	}
	return g.responses[model], nil
}

func newAnalyzer(gen TextGenerator) *Analyzer {
	return NewAnalyzer(gen, "flash", "pro", nil)
}

func TestAnalyzePrimaryTierSuccess(t *testing.T) {
	t.Parallel()

	gen := &scriptedGenerator{responses: map[string]string{
		"flash": `{"relevance_score": 0.9, "urgency_score": 9, "credibility_score": 0.7,
			"locations": [{"name": "Jakarta", "latitude": -6.2, "longitude": 106.8, "confidence": 0.9}],
			"sentiment": {"distress_level": "high", "emotions": ["fear"], "help_seeking": true},
			"incident_type": "flood", "severity": "severe", "key_details": "major flooding"}`,
	}}

	result := newAnalyzer(gen).Analyze(context.Background(), "Flood in Jakarta", "test-feed", time.Now())

	assert.Equal(t, []string{"flash"}, gen.calls)
	assert.Equal(t, "flash", result.ModelUsed)
	assert.InDelta(t, 0.9, result.RelevanceScore, 1e-9)
	assert.Equal(t, 9, result.UrgencyScore)
	assert.Equal(t, domain.TypeFlood, result.IncidentType)
	assert.Equal(t, domain.SeveritySevere, result.Severity)
	require.Len(t, result.Locations, 1)
	assert.Equal(t, "Jakarta", result.Locations[0].Name)
	require.NotNil(t, result.Locations[0].Latitude)
	assert.InDelta(t, -6.2, *result.Locations[0].Latitude, 1e-9)
	assert.True(t, result.Sentiment.HelpSeeking)
}

func TestAnalyzeEscalatesToProTier(t *testing.T) {
	t.Parallel()

	gen := &scriptedGenerator{
		errs: map[string]error{"flash": fmt.Errorf("rate limited")},
		responses: map[string]string{
			"pro": `{"relevance_score": 0.8, "urgency_score": 6, "incident_type": "fire", "severity": "moderate"}`,
		},
	}

	result := newAnalyzer(gen).Analyze(context.Background(), "Fire downtown", "test-feed", time.Now())

	assert.Equal(t, []string{"flash", "pro"}, gen.calls)
	assert.Equal(t, "pro", result.ModelUsed)
	assert.Equal(t, domain.TypeFire, result.IncidentType)
}

func TestAnalyzeToleratesProseWrappedJSON(t *testing.T) {
	t.Parallel()

	gen := &scriptedGenerator{responses: map[string]string{
		"flash": "Sure! Here is the analysis you asked for:\n```json\n" +
			`{"relevance_score": 0.75, "urgency_score": 4, "incident_type": "storm"}` +
			"\n```\nLet me know if you need anything else.",
	}}

	result := newAnalyzer(gen).Analyze(context.Background(), "Storm coming", "test-feed", time.Now())

	assert.Equal(t, "flash", result.ModelUsed)
	assert.InDelta(t, 0.75, result.RelevanceScore, 1e-9)
	assert.Equal(t, domain.TypeStorm, result.IncidentType)
}

func TestAnalyzeClampsOutOfRangeScores(t *testing.T) {
	t.Parallel()

	gen := &scriptedGenerator{responses: map[string]string{
		"flash": "```json\n" +
			`{"relevance_score": 1.5, "urgency_score": 0, "credibility_score": -0.2}` +
			"\n```",
	}}

	result := newAnalyzer(gen).Analyze(context.Background(), "content", "test-feed", time.Now())

	assert.InDelta(t, 1.0, result.RelevanceScore, 1e-9)
	assert.Equal(t, 1, result.UrgencyScore)
	assert.InDelta(t, 0.0, result.CredibilityScore, 1e-9)
}

func TestAnalyzeDefaultsMissingFields(t *testing.T) {
	t.Parallel()

	gen := &scriptedGenerator{responses: map[string]string{"flash": `{}`}}

	result := newAnalyzer(gen).Analyze(context.Background(), "content", "test-feed", time.Now())

	assert.InDelta(t, 0.5, result.RelevanceScore, 1e-9)
	assert.Equal(t, 5, result.UrgencyScore)
	assert.InDelta(t, 0.5, result.CredibilityScore, 1e-9)
	assert.Empty(t, result.Locations)
	assert.Equal(t, domain.DistressMedium, result.Sentiment.DistressLevel)
	assert.Equal(t, domain.TypeOther, result.IncidentType)
	assert.Equal(t, domain.SeverityModerate, result.Severity)
}

func TestAnalyzeFiltersNamelessLocations(t *testing.T) {
	t.Parallel()

	gen := &scriptedGenerator{responses: map[string]string{
		"flash": `{"relevance_score": 0.7, "locations": [
			{"name": "", "latitude": 1.0, "longitude": 2.0},
			{"name": "Osaka"},
			{"latitude": 3.0}
		]}`,
	}}

	result := newAnalyzer(gen).Analyze(context.Background(), "content", "test-feed", time.Now())

	require.Len(t, result.Locations, 1)
	assert.Equal(t, "Osaka", result.Locations[0].Name)
	assert.Nil(t, result.Locations[0].Latitude)
	assert.InDelta(t, 0.5, result.Locations[0].Confidence, 1e-9)
}

func TestAnalyzeRoundsFloatUrgency(t *testing.T) {
	t.Parallel()

	gen := &scriptedGenerator{responses: map[string]string{
		"flash": `{"urgency_score": 7.6}`,
	}}

	result := newAnalyzer(gen).Analyze(context.Background(), "content", "test-feed", time.Now())
	assert.Equal(t, 8, result.UrgencyScore)
}

func TestAnalyzeFallbackWhenBothTiersFail(t *testing.T) {
	t.Parallel()

	gen := &scriptedGenerator{errs: map[string]error{
		"flash": fmt.Errorf("unavailable"),
		"pro":   fmt.Errorf("unavailable"),
	}}

	content := "Massive flood evacuation underway, rescue teams deployed"
	result := newAnalyzer(gen).Analyze(context.Background(), content, "test-feed", time.Now())

	assert.Equal(t, []string{"flash", "pro"}, gen.calls)
	assert.Equal(t, FallbackModel, result.ModelUsed)
	assert.InDelta(t, 0.8, result.RelevanceScore, 1e-9)
	assert.Equal(t, 8, result.UrgencyScore, "evacuate/rescue are urgency keywords")
	assert.InDelta(t, 0.6, result.CredibilityScore, 1e-9)
	assert.Equal(t, domain.TypeFlood, result.IncidentType)
	assert.Equal(t, "unknown", result.AffectedPopulation)
	assert.Equal(t, []string{"monitor situation"}, result.ImmediateActions)
}

func TestAnalyzeFallbackOnUnparseableResponses(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"empty":         "",
		"prose only":    "I cannot analyze this content.",
		"truncated":     `{"relevance_score": 0.9, "urgency`,
		"braces only":   "}{",
		"invalid types": `{"relevance_score": {"nested": true}}`,
	}

	for name, response := range cases {
		response := response
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			gen := &scriptedGenerator{responses: map[string]string{
				"flash": response,
				"pro":   response,
			}}

			result := newAnalyzer(gen).Analyze(context.Background(), "quiet day in town", "test-feed", time.Now())

			assert.Equal(t, FallbackModel, result.ModelUsed)
			assert.GreaterOrEqual(t, result.RelevanceScore, 0.0)
			assert.LessOrEqual(t, result.RelevanceScore, 1.0)
			assert.GreaterOrEqual(t, result.UrgencyScore, 1)
			assert.LessOrEqual(t, result.UrgencyScore, 10)
		})
	}
}

func TestAnalyzeNilGeneratorStillTotal(t *testing.T) {
	t.Parallel()

	result := NewAnalyzer(nil, "flash", "pro", nil).Analyze(context.Background(), "fire spreading, please help", "test-feed", time.Now())

	assert.Equal(t, FallbackModel, result.ModelUsed)
	assert.Equal(t, domain.TypeFire, result.IncidentType)
	assert.True(t, result.Sentiment.HelpSeeking)
}

func TestFallbackTruncatesKeyDetails(t *testing.T) {
	t.Parallel()

	long := make([]byte, 0, 300)
	for i := 0; i < 300; i++ {
		long = append(long, 'a')
	}
	content := "flood " + string(long)

	result := fallbackAnalysis(content)

	require.Greater(t, len(content), 200)
	assert.Len(t, []rune(result.KeyDetails), 203)
	assert.Equal(t, "...", result.KeyDetails[len(result.KeyDetails)-3:])
}

func TestExtractJSON(t *testing.T) {
	t.Parallel()

	jsonText, err := extractJSON(`noise {"a": {"b": 1}} trailing`)
	require.NoError(t, err)
	assert.Equal(t, `{"a": {"b": 1}}`, jsonText)

	_, err = extractJSON("no braces here")
	assert.Error(t, err)

	_, err = extractJSON("} backwards {")
	assert.Error(t, err)
}
