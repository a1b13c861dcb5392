package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"DisasterWatch/internal/domain"
	"DisasterWatch/internal/ports"
)

// FallbackModel labels results produced by the deterministic heuristic.
const FallbackModel = "fallback"

const analysisPromptTemplate = `You are an expert disaster management AI assistant. Analyze the following content for emergency response purposes.

CONTENT:
%s

PUBLISHED: %s
SOURCE: %s

Analyze and provide a JSON response with:

1. RELEVANCE: Is this disaster/emergency related? (0.0-1.0 score)
2. LOCATIONS: Extract all mentioned locations with estimated coordinates
3. URGENCY: Rate urgency 1-10 considering:
   - Life-threatening situations (9-10)
   - Major property/infrastructure damage (7-8)
   - General distress (4-6)
   - Informational (1-3)
4. SENTIMENT: Analyze emotional state and distress level
5. VERIFICATION: Assess credibility (0.0-1.0)
6. INCIDENT_TYPE: Categorize (flood, fire, earthquake, etc.)
7. KEY_DETAILS: Extract critical information

Response format (valid JSON only):
{
  "relevance_score": 0.0-1.0,
  "urgency_score": 1-10,
  "credibility_score": 0.0-1.0,
  "locations": [
    {"name": "", "latitude": 0.0, "longitude": 0.0, "confidence": 0.0}
  ],
  "sentiment": {
    "distress_level": "low|medium|high|critical",
    "emotions": ["fear", "panic"],
    "help_seeking": true/false
  },
  "incident_type": "flood|fire|earthquake|landslide|storm|other",
  "severity": "low|moderate|severe|critical",
  "key_details": "Brief summary",
  "affected_population": "estimation",
  "immediate_actions": ["action1", "action2"],
  "reasoning": "Brief explanation"
}`

// TextGenerator abstracts the external text-analysis service. The analyzer
// only needs a prompt-in, text-out call per model tier.
type TextGenerator interface {
	Generate(ctx context.Context, model, prompt string) (string, error)
}

// Analyzer orchestrates classification: primary tier, one escalation to the
// higher-capability tier, then a deterministic heuristic. It never returns
// an error to its caller.
type Analyzer struct {
	generator  TextGenerator
	flashModel string
	proModel   string
	logger     *slog.Logger
}

var _ ports.Analyzer = (*Analyzer)(nil)
var _ ports.AlertDrafter = (*Analyzer)(nil)

// NewAnalyzer wires a text generator with its two model tiers.
func NewAnalyzer(generator TextGenerator, flashModel, proModel string, logger *slog.Logger) *Analyzer {
	return &Analyzer{
		generator:  generator,
		flashModel: flashModel,
		proModel:   proModel,
		logger:     logger,
	}
}

// Analyze classifies content, escalating from the flash tier to the pro tier
// on any failure and falling back to keyword heuristics when both fail. The
// returned result is always validated and range-clamped.
func (a *Analyzer) Analyze(ctx context.Context, content, source string, publishedAt time.Time) domain.AnalysisResult {
	start := time.Now()
	prompt := fmt.Sprintf(analysisPromptTemplate, content, publishedAt.UTC().Format(time.RFC3339), source)

	for _, model := range []string{a.flashModel, a.proModel} {
		raw, err := a.generate(ctx, model, prompt)
		if err != nil {
			a.warn("analysis attempt failed", "model", model, "error", err)
			continue
		}

		parsed, err := parseAnalysis(raw)
		if err != nil {
			a.warn("unparseable analysis response", "model", model, "error", err)
			continue
		}

		result := sanitize(parsed)
		result.ModelUsed = model
		result.ProcessingTime = time.Since(start)
		return result
	}

	result := fallbackAnalysis(content)
	result.ProcessingTime = time.Since(start)
	return result
}

func (a *Analyzer) generate(ctx context.Context, model, prompt string) (string, error) {
	if a.generator == nil {
		return "", fmt.Errorf("text generator is not configured")
	}
	return a.generator.Generate(ctx, model, prompt)
}

// fallbackAnalysis produces a deterministic result when both model tiers
// failed, so classification stays total.
func fallbackAnalysis(content string) domain.AnalysisResult {
	lower := strings.ToLower(content)

	relevance := 0.3
	if containsAny(lower, fallbackDisasterKeywords) {
		relevance = 0.8
	}

	urgency := 5
	if containsAny(lower, fallbackUrgencyKeywords) {
		urgency = 8
	}

	incidentType := domain.TypeOther
	for _, candidate := range []domain.IncidentType{domain.TypeFlood, domain.TypeFire, domain.TypeEarthquake, domain.TypeStorm} {
		if strings.Contains(lower, string(candidate)) {
			incidentType = candidate
			break
		}
	}

	return domain.AnalysisResult{
		RelevanceScore:   relevance,
		UrgencyScore:     urgency,
		CredibilityScore: 0.6,
		Locations:        []domain.Location{},
		Sentiment: domain.Sentiment{
			DistressLevel: domain.DistressMedium,
			Emotions:      []string{"concern"},
			HelpSeeking:   strings.Contains(lower, "help"),
		},
		IncidentType:       incidentType,
		Severity:           domain.SeverityModerate,
		KeyDetails:         truncate(content, 200),
		AffectedPopulation: "unknown",
		ImmediateActions:   []string{"monitor situation"},
		Reasoning:          "Fallback analysis due to AI processing error",
		ModelUsed:          FallbackModel,
	}
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}

func (a *Analyzer) warn(msg string, args ...interface{}) {
	if a.logger != nil {
		a.logger.Warn(msg, args...)
	}
}
