package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"DisasterWatch/internal/metrics"
)

// MonitorStatus is a read-only snapshot of the ingestion loop.
type MonitorStatus struct {
	Active         bool       `json:"active"`
	FeedCount      int        `json:"feeds_count"`
	LastCycle      *time.Time `json:"last_check,omitempty"`
	TotalProcessed int64      `json:"total_processed"`
}

// Monitor drives repeated ingestion cycles. Cycles never overlap; a failing
// cycle backs off for a shorter interval and the loop never terminates on
// error. All counter state is written only by the loop goroutine.
type Monitor struct {
	pipeline *Pipeline
	interval time.Duration
	backoff  time.Duration
	metrics  *metrics.Metrics
	logger   *slog.Logger

	mu             sync.Mutex
	running        bool
	stop           chan struct{}
	lastCycle      time.Time
	totalProcessed int64
}

// NewMonitor wires the pipeline with its cycle and backoff intervals.
func NewMonitor(pipeline *Pipeline, interval, backoff time.Duration, m *metrics.Metrics, logger *slog.Logger) *Monitor {
	return &Monitor{
		pipeline: pipeline,
		interval: interval,
		backoff:  backoff,
		metrics:  m,
		logger:   logger,
	}
}

// Start launches the ingestion loop. Idempotent: a second call while running
// is a no-op.
func (m *Monitor) Start(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return
	}

	m.running = true
	m.stop = make(chan struct{})
	go m.run(ctx, m.stop)
	m.info("monitoring started", "feeds", m.pipeline.FeedCount(), "interval", m.interval)
}

// Stop flips the running flag. Cooperative: in-flight work in the current
// cycle runs to completion.
func (m *Monitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return
	}

	m.running = false
	close(m.stop)
	m.stop = nil
	m.info("monitoring stopped")
}

// Status returns an advisory snapshot; readers may observe slightly stale
// values while a cycle is finishing.
func (m *Monitor) Status() MonitorStatus {
	m.mu.Lock()
	defer m.mu.Unlock()

	status := MonitorStatus{
		Active:         m.running,
		FeedCount:      m.pipeline.FeedCount(),
		TotalProcessed: m.totalProcessed,
	}
	if !m.lastCycle.IsZero() {
		last := m.lastCycle
		status.LastCycle = &last
	}
	return status
}

// TriggerCycle runs one ingestion cycle in the background, for manual
// processing requests.
func (m *Monitor) TriggerCycle(ctx context.Context) {
	go func() {
		if err := m.runCycle(ctx); err != nil {
			m.error("manual cycle failed", "error", err)
		}
	}()
}

func (m *Monitor) run(ctx context.Context, stop <-chan struct{}) {
	for {
		delay := m.interval
		if err := m.runCycle(ctx); err != nil {
			m.error("ingestion cycle failed", "error", err)
			delay = m.backoff
		}

		select {
		case <-time.After(delay):
		case <-stop:
			return
		case <-ctx.Done():
			return
		}
	}
}

// runCycle executes one full pass over all feeds and updates the cycle
// counters. A panic in cycle orchestration is converted to an error so the
// loop can back off instead of dying.
func (m *Monitor) runCycle(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("cycle panic: %v", r)
		}
	}()

	start := time.Now()
	processed := m.pipeline.ProcessAllFeeds(ctx)
	if m.metrics != nil {
		m.metrics.CycleDuration.Observe(time.Since(start).Seconds())
	}

	m.mu.Lock()
	m.lastCycle = time.Now().UTC()
	m.totalProcessed += int64(processed)
	m.mu.Unlock()

	return nil
}

func (m *Monitor) info(msg string, args ...interface{}) {
	if m.logger != nil {
		m.logger.Info(msg, args...)
	}
}

func (m *Monitor) error(msg string, args ...interface{}) {
	if m.logger != nil {
		m.logger.Error(msg, args...)
	}
}
