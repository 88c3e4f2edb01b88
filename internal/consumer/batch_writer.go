package consumer

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/cosmium2004/Customer-Insights-sub000/internal/domain"
	"github.com/cosmium2004/Customer-Insights-sub000/internal/metrics"
	"github.com/cosmium2004/Customer-Insights-sub000/internal/repository"
)

// BatchWriterConfig configures the batch writer
type BatchWriterConfig struct {
	MaxBatchSize int
	FlushTimeout time.Duration
}

// BatchWriter groups result envelopes and applies each group in one relational transaction
type BatchWriter struct {
	results     repository.ResultStore
	analytics   repository.AnalyticsRepository
	invalidator CacheInvalidator
	metrics     *metrics.Metrics
	config      BatchWriterConfig
	log         *zap.Logger
}

// NewBatchWriter creates the stage that persists results in batches and acks them after the write
func NewBatchWriter(
	results repository.ResultStore,
	analytics repository.AnalyticsRepository,
	invalidator CacheInvalidator,
	m *metrics.Metrics,
	config BatchWriterConfig,
	log *zap.Logger,
) *BatchWriter {
	if config.MaxBatchSize <= 0 {
		config.MaxBatchSize = 100
	}
	if config.FlushTimeout <= 0 {
		config.FlushTimeout = 5 * time.Second
	}
	return &BatchWriter{
		results:     results,
		analytics:   analytics,
		invalidator: invalidator,
		metrics:     m,
		config:      config,
		log:         log,
	}
}

// Start consumes envelopes until in closes or ctx is done. A pending batch is flushed on exit.
func (w *BatchWriter) Start(ctx context.Context, in <-chan *Envelope) {
	ticker := time.NewTicker(w.config.FlushTimeout)
	defer ticker.Stop()

	batch := make([]*Envelope, 0, w.config.MaxBatchSize)

	flushFinal := func() {
		if len(batch) == 0 {
			return
		}
		w.log.Info("Flushing final batch", zap.Int("envelope_count", len(batch)))
		w.processBatch(context.WithoutCancel(ctx), batch)
	}

	for {
		select {
		case <-ctx.Done():
			w.log.Info("Batch writer shutting down")
			flushFinal()
			return

		case envelope, ok := <-in:
			if !ok {
				w.log.Info("Batch writer input channel closed")
				flushFinal()
				return
			}

			batch = append(batch, envelope)

			if len(batch) >= w.config.MaxBatchSize {
				w.log.Debug("Batch size threshold reached", zap.Int("batch_size", len(batch)))
				w.processBatch(ctx, batch)
				batch = make([]*Envelope, 0, w.config.MaxBatchSize)
				ticker.Reset(w.config.FlushTimeout)
			}

		case <-ticker.C:
			if len(batch) > 0 {
				w.log.Debug("Batch timeout reached", zap.Int("envelope_count", len(batch)))
				w.processBatch(ctx, batch)
				batch = make([]*Envelope, 0, w.config.MaxBatchSize)
			}
		}
	}
}

// processBatch applies the results, settles the messages, then runs the best-effort follow-ups
func (w *BatchWriter) processBatch(ctx context.Context, envelopes []*Envelope) {
	if len(envelopes) == 0 {
		return
	}

	results := make([]*domain.AnalysisResult, len(envelopes))
	for i, env := range envelopes {
		results[i] = env.Result
	}

	applied, err := w.results.ApplyAnalysisResults(ctx, results)
	if err != nil {
		w.log.Error("Failed to apply analysis results",
			zap.Error(err),
			zap.Int("result_count", len(results)))
		w.metrics.ResultsHandled(metrics.ResultError, len(results))
		w.nackAll(ctx, envelopes)
		return
	}

	skipped := len(results) - len(applied)
	w.metrics.ResultsHandled(metrics.ResultApplied, len(applied))
	w.metrics.ResultsHandled(metrics.ResultSkipped, skipped)
	if skipped > 0 {
		w.log.Warn("Skipped results for unknown interactions", zap.Int("skipped", skipped))
	}
	w.log.Info("Applied analysis results",
		zap.Int("applied", len(applied)),
		zap.Int("skipped", skipped))

	w.ackAll(ctx, envelopes)

	if len(applied) == 0 {
		return
	}
	w.mirror(ctx, applied)
	w.invalidate(ctx, applied)
}

func (w *BatchWriter) mirror(ctx context.Context, rows []*domain.AnalyzedInteraction) {
	if w.analytics == nil {
		return
	}
	inserted, err := w.analytics.InsertBatch(ctx, rows)
	if err != nil {
		w.log.Warn("Failed to mirror analyzed interactions",
			zap.Error(err),
			zap.Int("row_count", len(rows)))
		return
	}
	w.log.Debug("Mirrored analyzed interactions", zap.Int("count", inserted))
}

func (w *BatchWriter) invalidate(ctx context.Context, rows []*domain.AnalyzedInteraction) {
	if w.invalidator == nil {
		return
	}
	customers := make([]string, len(rows))
	organizations := make([]string, len(rows))
	for i, row := range rows {
		customers[i] = row.CustomerID
		organizations[i] = row.OrganizationID
	}
	if err := w.invalidator.InvalidateAll(ctx, customers, organizations); err != nil {
		w.log.Warn("Failed to invalidate views after write-back", zap.Error(err))
	}
}

func (w *BatchWriter) ackAll(ctx context.Context, envelopes []*Envelope) {
	for _, env := range envelopes {
		if err := env.Ack(ctx); err != nil {
			w.log.Error("Failed to ack envelope",
				zap.String("interaction_id", env.Result.InteractionID),
				zap.Error(err))
		}
	}
}

func (w *BatchWriter) nackAll(ctx context.Context, envelopes []*Envelope) {
	for _, env := range envelopes {
		if err := env.Nack(ctx); err != nil {
			w.log.Error("Failed to nack envelope",
				zap.String("interaction_id", env.Result.InteractionID),
				zap.Error(err))
		}
	}
}
