package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"DisasterWatch/internal/analysis"
	"DisasterWatch/internal/config"
	"DisasterWatch/internal/domain"
	"DisasterWatch/internal/infrastructure/feeds"
	"DisasterWatch/internal/infrastructure/gemini"
	"DisasterWatch/internal/infrastructure/httpapi"
	"DisasterWatch/internal/infrastructure/storage"
	"DisasterWatch/internal/logging"
	"DisasterWatch/internal/metrics"
	"DisasterWatch/internal/usecase"
)

const shutdownTimeout = 5 * time.Second

// Application wires configuration to the ingestion pipeline and the HTTP
// read surface, and owns their lifecycle.
type Application struct {
	cfg    config.Config
	logger *slog.Logger
}

// New builds a runnable application instance.
func New(cfg config.Config, baseLogger *slog.Logger) *Application {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}
	return &Application{cfg: cfg, logger: baseLogger}
}

// Run connects storage, starts the monitor and the HTTP server, and blocks
// until the context is cancelled.
func (a *Application) Run(ctx context.Context) error {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(a.cfg.Database.URI))
	if err != nil {
		return fmt.Errorf("connect mongodb: %w", err)
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := client.Disconnect(disconnectCtx); err != nil {
			a.logger.Error("mongodb disconnect failed", "error", err)
		}
	}()

	if err := client.Ping(connectCtx, nil); err != nil {
		return fmt.Errorf("ping mongodb: %w", err)
	}

	db := client.Database(a.cfg.Database.Name)
	if err := storage.EnsureIndexes(connectCtx, db); err != nil {
		return fmt.Errorf("ensure indexes: %w", err)
	}

	m := metrics.New()
	incidents := storage.NewIncidentRepository(db)
	alerts := storage.NewAlertRepository(db)

	geminiClient := gemini.NewClient(a.cfg.Gemini)
	analyzer := analysis.NewAnalyzer(
		geminiClient,
		a.cfg.Gemini.FlashModel,
		a.cfg.Gemini.ProModel,
		a.logger.With("component", "analyzer"),
	)

	fetcher := feeds.NewFetcher(
		&http.Client{Timeout: a.cfg.Monitor.FetchTimeout()},
		a.cfg.Monitor.MaxItemsPerFeed,
		a.logger.With("component", "fetcher"),
	)

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Feeds:                 toFeedDescriptors(a.cfg.Feeds),
		Source:                fetcher,
		Incidents:             incidents,
		Alerts:                alerts,
		Analyzer:              analyzer,
		Drafter:               analyzer,
		Metrics:               m,
		Logger:                a.logger.With("component", "pipeline"),
		RelevanceThreshold:    a.cfg.Monitor.RelevanceThreshold,
		AlertUrgencyThreshold: a.cfg.Monitor.AlertUrgencyThreshold,
	})

	monitor := usecase.NewMonitor(
		pipeline,
		a.cfg.Monitor.CycleInterval(),
		a.cfg.Monitor.ErrorBackoff(),
		m,
		a.logger.With("component", "monitor"),
	)
	monitor.Start(ctx)
	defer monitor.Stop()

	api := httpapi.NewServer(httpapi.Deps{
		Incidents: incidents,
		Alerts:    alerts,
		Monitor:   monitor,
		Metrics:   m.Handler(),
		Logger:    a.logger.With("component", "httpapi"),
	})

	server := &http.Server{
		Addr:    a.cfg.Server.Addr,
		Handler: api.Handler(),
	}

	serverErr := make(chan error, 1)
	go func() {
		a.logger.Info("http server listening", "addr", a.cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	a.logger.Info("shutting down")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}

	return nil
}

func toFeedDescriptors(cfg []config.FeedConfig) []domain.FeedDescriptor {
	descriptors := make([]domain.FeedDescriptor, 0, len(cfg))
	for _, feed := range cfg {
		descriptors = append(descriptors, domain.FeedDescriptor{
			Name:          feed.Name,
			URL:           feed.URL,
			Category:      feed.Category,
			CheckInterval: time.Duration(feed.CheckIntervalMinutes) * time.Minute,
		})
	}
	return descriptors
}
