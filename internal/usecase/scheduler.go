package usecase

import (
	"context"
	"log/slog"
	"time"

	"NewsSearchEngine/internal/ports"
)

// WatchQuery is a search repeated on every scheduler tick.
type WatchQuery struct {
	Query    string
	Language string
}

// Scheduler wires the cron driver with the search pipeline and a notifier.
type Scheduler struct {
	driver   ports.Scheduler
	pipeline *Pipeline
	notifier ports.Notifier
	queries  []WatchQuery
	logger   *slog.Logger
}

// NewScheduler returns a helper to start/stop recurring searches. notifier may be nil.
func NewScheduler(driver ports.Scheduler, pipeline *Pipeline, notifier ports.Notifier, queries []WatchQuery, log *slog.Logger) *Scheduler {
	if log == nil {
		log = slog.Default()
	}
	return &Scheduler{
		driver:   driver,
		pipeline: pipeline,
		notifier: notifier,
		queries:  queries,
		logger:   log,
	}
}

// Start registers the watch job with the driver.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.pipeline == nil || len(s.queries) == 0 {
		return nil
	}

	job := func(trigger time.Time) {
		s.RunOnce(ctx, trigger)
	}
	return s.driver.Start(ctx, job)
}

// RunOnce executes every watch query and publishes one digest per query.
// It returns the number of digests delivered.
func (s *Scheduler) RunOnce(ctx context.Context, trigger time.Time) int {
	delivered := 0
	for _, q := range s.queries {
		if ctx.Err() != nil {
			return delivered
		}

		report := s.pipeline.Search(ctx, q.Query, q.Language)
		s.logger.Info("watch search done",
			"trigger", trigger.Format(time.RFC3339),
			"query", q.Query,
			"language", q.Language,
			"articles", report.Total,
		)

		if s.notifier == nil || report.Total == 0 {
			continue
		}
		if err := s.notifier.PublishDigest(ctx, s.pipeline.Digest(report)); err != nil {
			s.logger.Warn("publish digest failed", "query", q.Query, "error", err)
			continue
		}
		delivered++
	}
	return delivered
}

// Stop gracefully tears down the underlying scheduler.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}
	return s.driver.Stop(ctx)
}
