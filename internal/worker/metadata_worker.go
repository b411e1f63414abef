package worker

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/openintel/achboard/internal/config"
	"github.com/openintel/achboard/internal/domain"
	"github.com/openintel/achboard/internal/events"
	"github.com/openintel/achboard/internal/observability"
	"github.com/openintel/achboard/internal/persistence"
	"github.com/openintel/achboard/internal/repository"
	"github.com/openintel/achboard/internal/scrape"
)

// MetadataJob is a queued request to fetch a source's page metadata.
type MetadataJob struct {
	SourceID string `json:"source_id"`
	URL      string `json:"url"`
	Attempt  int    `json:"attempt"`
}

// RegisterMetadataEnqueue pushes a fetch job whenever a source is added.
func RegisterMetadataEnqueue(dispatcher events.Dispatcher, queue *persistence.Redis, queueKey string, logger *zap.Logger) {
	dispatcher.Subscribe(events.EventSourceAdded, func(ctx context.Context, event events.Event) error {
		payload, ok := event.Payload.(events.SourceAddedPayload)
		if !ok || !payload.NeedsFetch {
			return nil
		}
		job := MetadataJob{SourceID: payload.SourceID, URL: payload.URL}
		if err := queue.PushQueue(ctx, queueKey, job); err != nil {
			logger.Warn("failed to enqueue metadata fetch",
				zap.Error(err),
				zap.String("source_id", payload.SourceID))
		}
		return nil
	})
}

// MetadataWorker consumes the fetch queue and fills in source titles and
// descriptions.
type MetadataWorker struct {
	queue    *persistence.Redis
	queueKey string
	fetcher  *scrape.Fetcher
	evidence repository.EvidenceRepository
	retries  int
	metrics  *observability.Metrics
	logger   *zap.Logger
}

// NewMetadataWorker constructs the worker.
func NewMetadataWorker(queue *persistence.Redis, cfg config.ScraperConfig, evidence repository.EvidenceRepository, metrics *observability.Metrics, logger *zap.Logger) *MetadataWorker {
	return &MetadataWorker{
		queue:    queue,
		queueKey: cfg.QueueKey,
		fetcher:  scrape.NewFetcher(cfg),
		evidence: evidence,
		retries:  cfg.MaxRetries,
		metrics:  metrics,
		logger:   logger,
	}
}

// Run consumes jobs until the context is cancelled.
func (w *MetadataWorker) Run(ctx context.Context) {
	w.logger.Info("metadata worker started", zap.String("queue", w.queueKey))
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("metadata worker stopped")
			return
		default:
		}

		var job MetadataJob
		ok, err := w.queue.PopQueue(ctx, w.queueKey, 5*time.Second, &job)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			w.logger.Warn("metadata queue pop failed", zap.Error(err))
			time.Sleep(time.Second)
			continue
		}
		if !ok {
			continue
		}
		w.process(ctx, job)
	}
}

func (w *MetadataWorker) process(ctx context.Context, job MetadataJob) {
	meta, err := w.fetcher.Fetch(ctx, job.URL)
	if err != nil {
		w.logger.Warn("metadata fetch failed",
			zap.Error(err),
			zap.String("source_id", job.SourceID),
			zap.Int("attempt", job.Attempt))
		if w.metrics != nil {
			w.metrics.MetadataFetches.WithLabelValues("error").Inc()
		}
		if job.Attempt+1 < w.retries {
			job.Attempt++
			if err := w.queue.PushQueue(ctx, w.queueKey, job); err != nil {
				w.logger.Warn("metadata retry enqueue failed", zap.Error(err))
			}
		}
		return
	}

	source, err := w.evidence.GetSourceByID(ctx, job.SourceID)
	if err != nil {
		w.logger.Warn("source lookup failed", zap.Error(err), zap.String("source_id", job.SourceID))
		return
	}

	changed := false
	if source.Title == "" && meta.Title != "" {
		source.Title = truncate(meta.Title, domain.SourceTitleMaxLength)
		changed = true
	}
	if source.Description == "" && meta.Description != "" {
		source.Description = truncate(meta.Description, domain.SourceDescriptionMaxLength)
		changed = true
	}
	if changed {
		if err := w.evidence.UpdateSource(ctx, source); err != nil {
			w.logger.Warn("source update failed", zap.Error(err), zap.String("source_id", job.SourceID))
			return
		}
	}
	if w.metrics != nil {
		w.metrics.MetadataFetches.WithLabelValues("ok").Inc()
	}
}

func truncate(s string, max int) string {
	s = strings.TrimSpace(s)
	if len(s) <= max {
		return s
	}
	return s[:max]
}
