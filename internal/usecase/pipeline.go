package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"DisasterWatch/internal/analysis"
	"DisasterWatch/internal/domain"
	"DisasterWatch/internal/metrics"
	"DisasterWatch/internal/ports"
)

const (
	defaultRelevanceThreshold    = 0.6
	defaultAlertUrgencyThreshold = 8
)

// PipelineDeps wires all driven adapters into the ingestion pipeline.
type PipelineDeps struct {
	Feeds      []domain.FeedDescriptor
	Source     ports.FeedSource
	Incidents  ports.IncidentRepository
	Alerts     ports.AlertRepository
	Analyzer   ports.Analyzer
	Drafter    ports.AlertDrafter
	Engagement ports.EngagementSampler
	Rates      ports.RateSampler
	Metrics    *metrics.Metrics
	Logger     *slog.Logger

	RelevanceThreshold    float64
	AlertUrgencyThreshold int
}

// Pipeline implements the ingestion workflow for one cycle: fetch, dedup,
// prefilter, classify, gate, persist, alert.
type Pipeline struct {
	feeds      []domain.FeedDescriptor
	source     ports.FeedSource
	incidents  ports.IncidentRepository
	alerts     ports.AlertRepository
	analyzer   ports.Analyzer
	drafter    ports.AlertDrafter
	engagement ports.EngagementSampler
	rates      ports.RateSampler
	metrics    *metrics.Metrics
	logger     *slog.Logger

	relevanceThreshold    float64
	alertUrgencyThreshold int
}

// NewPipeline constructs the orchestration component. Samplers default to
// the random placeholders when not injected.
func NewPipeline(deps PipelineDeps) *Pipeline {
	if deps.Engagement == nil {
		deps.Engagement = RandomEngagementSampler{}
	}
	if deps.Rates == nil {
		deps.Rates = RandomRateSampler{}
	}
	if deps.RelevanceThreshold <= 0 {
		deps.RelevanceThreshold = defaultRelevanceThreshold
	}
	if deps.AlertUrgencyThreshold <= 0 {
		deps.AlertUrgencyThreshold = defaultAlertUrgencyThreshold
	}

	return &Pipeline{
		feeds:                 deps.Feeds,
		source:                deps.Source,
		incidents:             deps.Incidents,
		alerts:                deps.Alerts,
		analyzer:              deps.Analyzer,
		drafter:               deps.Drafter,
		engagement:            deps.Engagement,
		rates:                 deps.Rates,
		metrics:               deps.Metrics,
		logger:                deps.Logger,
		relevanceThreshold:    deps.RelevanceThreshold,
		alertUrgencyThreshold: deps.AlertUrgencyThreshold,
	}
}

// FeedCount reports how many feeds are registered.
func (p *Pipeline) FeedCount() int {
	return len(p.feeds)
}

// ProcessAllFeeds fans out one task per registered feed and waits for all of
// them. A failing feed is logged and skipped; it never aborts its siblings.
// Returns the number of new incidents persisted this cycle.
func (p *Pipeline) ProcessAllFeeds(ctx context.Context) int {
	p.info("processing feeds", "count", len(p.feeds))

	var (
		wg        sync.WaitGroup
		processed atomic.Int64
		succeeded atomic.Int64
	)

	for _, feed := range p.feeds {
		wg.Add(1)
		go func(feed domain.FeedDescriptor) {
			defer wg.Done()

			count, err := p.processFeed(ctx, feed)
			if err != nil {
				p.error("feed processing failed", "feed", feed.Name, "error", err)
				p.countFetch(feed.Name, "error")
				return
			}
			p.countFetch(feed.Name, "ok")
			processed.Add(int64(count))
			succeeded.Add(1)
		}(feed)
	}

	wg.Wait()
	p.info("cycle complete", "feeds_ok", succeeded.Load(), "feeds_total", len(p.feeds), "new_incidents", processed.Load())
	return int(processed.Load())
}

func (p *Pipeline) processFeed(ctx context.Context, feed domain.FeedDescriptor) (int, error) {
	items, err := p.source.Fetch(ctx, feed)
	if err != nil {
		return 0, fmt.Errorf("fetch: %w", err)
	}

	processed := 0
	for _, item := range items {
		stored, err := p.processItem(ctx, feed, item)
		if err != nil {
			p.error("item processing failed", "feed", feed.Name, "title", item.Title, "error", err)
			continue
		}
		if stored {
			processed++
		}
	}

	return processed, nil
}

// processItem runs one raw item through dedup, prefilter, classification and
// the severity gate. Returns true when a new incident was persisted.
func (p *Pipeline) processItem(ctx context.Context, feed domain.FeedDescriptor, item domain.RawItem) (bool, error) {
	if p.metrics != nil {
		p.metrics.ItemsSeen.Inc()
	}

	content := domain.BuildContent(item.Title, item.Summary)
	fingerprint := domain.NewFingerprint(content)

	exists, err := p.incidents.ExistsByFingerprint(ctx, fingerprint)
	if err != nil {
		return false, fmt.Errorf("check fingerprint: %w", err)
	}
	if exists {
		return false, nil
	}

	if !analysis.PotentiallyRelevant(content) {
		p.debug("skipping non-relevant content", "title", item.Title)
		return false, nil
	}

	p.info("analyzing new content", "feed", feed.Name, "title", item.Title)

	result := p.analyzer.Analyze(ctx, content, feed.Name, item.PublishedAt)
	if p.metrics != nil {
		p.metrics.AnalysisOutcomes.WithLabelValues(result.ModelUsed).Inc()
		p.metrics.AnalysisDuration.Observe(result.ProcessingTime.Seconds())
	}

	if result.RelevanceScore < p.relevanceThreshold {
		p.debug("content relevance too low", "title", item.Title, "relevance", result.RelevanceScore)
		return false, nil
	}

	incident := p.buildIncident(feed, item, content, fingerprint, result)

	if err := p.incidents.Insert(ctx, incident); err != nil {
		if errors.Is(err, ports.ErrDuplicateFingerprint) {
			// Lost the cross-feed race; the other writer owns this fingerprint.
			return false, nil
		}
		return false, fmt.Errorf("insert incident: %w", err)
	}

	if p.metrics != nil {
		p.metrics.IncidentsCreated.WithLabelValues(string(incident.IncidentType), string(incident.Severity)).Inc()
	}

	if incident.UrgencyScore >= p.alertUrgencyThreshold {
		p.generateAlert(ctx, incident)
	}

	p.info("new incident stored",
		"id", incident.ID,
		"severity", incident.Severity,
		"incident_type", incident.IncidentType,
		"urgency", incident.UrgencyScore,
	)
	return true, nil
}

func (p *Pipeline) buildIncident(feed domain.FeedDescriptor, item domain.RawItem, content, fingerprint string, result domain.AnalysisResult) domain.Incident {
	return domain.Incident{
		ID:          domain.NewIncidentID(),
		Fingerprint: fingerprint,
		Content:     content,
		Source:      feed.Name,
		SourceURL:   item.Link,
		PublishedAt: item.PublishedAt,
		ProcessedAt: time.Now().UTC(),

		RelevanceScore:   result.RelevanceScore,
		UrgencyScore:     result.UrgencyScore,
		CredibilityScore: result.CredibilityScore,

		Locations: result.Locations,
		Sentiment: result.Sentiment,

		IncidentType:       result.IncidentType,
		Severity:           result.Severity,
		AffectedPopulation: result.AffectedPopulation,
		KeyDetails:         result.KeyDetails,
		ImmediateActions:   result.ImmediateActions,
		Reasoning:          result.Reasoning,

		Engagement: p.engagement.Sample(),
		Image:      domain.ImageForType(result.IncidentType),

		ModelUsed:        result.ModelUsed,
		ProcessingTimeMS: result.ProcessingTime.Milliseconds(),
	}
}

// generateAlert stages an alert record for an external delivery mechanism
// and links it back to the incident. Failures are logged, never surfaced:
// the incident stays persisted either way.
func (p *Pipeline) generateAlert(ctx context.Context, incident domain.Incident) {
	draft := p.drafter.Draft(ctx, incident)

	now := time.Now().UTC()
	delivery, engagement := p.rates.Rates()
	alert := domain.Alert{
		ID:         domain.NewAlertID(),
		IncidentID: incident.ID,
		Title: fmt.Sprintf("%s %s Alert",
			analysis.TitleCase(string(incident.Severity)),
			analysis.TitleCase(string(incident.IncidentType)),
		),
		Message:        draft.PublicMessage,
		Severity:       incident.Severity,
		Audience:       []string{"public", "emergency_services"},
		Status:         domain.AlertSent,
		CreatedAt:      now,
		SentAt:         &now,
		DeliveryRate:   delivery,
		EngagementRate: engagement,
	}

	if err := p.alerts.Insert(ctx, alert); err != nil {
		p.error("failed to store alert", "incident", incident.ID, "error", err)
		return
	}

	if err := p.incidents.AttachAlert(ctx, incident.ID, alert.ID); err != nil {
		p.error("failed to link alert to incident", "incident", incident.ID, "alert", alert.ID, "error", err)
		return
	}

	if p.metrics != nil {
		p.metrics.AlertsGenerated.Inc()
	}
	p.info("alert generated", "incident", incident.ID, "alert", alert.ID)
}

func (p *Pipeline) countFetch(feed, status string) {
	if p.metrics != nil {
		p.metrics.FeedFetches.WithLabelValues(feed, status).Inc()
	}
}

func (p *Pipeline) debug(msg string, args ...interface{}) {
	if p.logger != nil {
		p.logger.Debug(msg, args...)
	}
}

func (p *Pipeline) info(msg string, args ...interface{}) {
	if p.logger != nil {
		p.logger.Info(msg, args...)
	}
}

func (p *Pipeline) error(msg string, args ...interface{}) {
	if p.logger != nil {
		p.logger.Error(msg, args...)
	}
}
