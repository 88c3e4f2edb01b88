package ingestion

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/cosmium2004/Customer-Insights-sub000/internal/domain"
	"github.com/cosmium2004/Customer-Insights-sub000/internal/metrics"
	"github.com/cosmium2004/Customer-Insights-sub000/internal/repository"
)

const (
	// MaxChunkSize bounds the items committed by one transaction
	MaxChunkSize = 100

	dispatchConcurrency = 8

	errPersistItem = "failed to persist interaction"
	errCancelled   = "request cancelled before chunk started"
)

// BatchOrchestrator ingests a list of interactions in sequential chunks, each chunk one atomic unit
type BatchOrchestrator struct {
	c         *Coordinator
	chunkSize int
}

// NewBatchOrchestrator shares the collaborators of c. chunkSize is clamped to 1..MaxChunkSize.
func NewBatchOrchestrator(c *Coordinator, chunkSize int) *BatchOrchestrator {
	if chunkSize <= 0 || chunkSize > MaxChunkSize {
		chunkSize = MaxChunkSize
	}
	return &BatchOrchestrator{c: c, chunkSize: chunkSize}
}

// IngestBatch processes inputs in order. An item counts as successful only once its chunk
// committed; every item of an aborted chunk counts as failed.
func (b *BatchOrchestrator) IngestBatch(ctx context.Context, inputs []domain.InteractionInput) domain.BatchResult {
	start := time.Now()
	result := domain.BatchResult{Errors: []domain.BatchItemError{}}

	for offset := 0; offset < len(inputs); offset += b.chunkSize {
		end := min(offset+b.chunkSize, len(inputs))
		chunk := inputs[offset:end]

		if ctx.Err() != nil {
			result.Merge(failAll(offset, len(chunk), errCancelled))
			b.c.metrics.Ingested(metrics.ModeBatch, metrics.OutcomeFailed, len(chunk))
			continue
		}
		result.Merge(b.runChunk(ctx, offset, chunk))
	}

	b.c.metrics.ObserveDuration(metrics.ModeBatch, time.Since(start).Seconds())
	b.c.log.Info("Batch ingested",
		zap.Int("total", result.Total),
		zap.Int("successful", result.Successful),
		zap.Int("failed", result.Failed))

	return result
}

// runChunk validates every item of the chunk, then enriches and persists them inside one transaction
func (b *BatchOrchestrator) runChunk(ctx context.Context, offset int, chunk []domain.InteractionInput) domain.BatchResult {
	// Validation needs no store access, so an invalid chunk is aborted before a transaction opens
	var itemErrs []domain.BatchItemError
	for i, in := range chunk {
		if res := b.c.validator.Validate(in); !res.Valid {
			itemErrs = append(itemErrs, domain.BatchItemError{Index: offset + i, Error: res.Err().Error()})
		}
	}
	if len(itemErrs) > 0 {
		b.c.metrics.Ingested(metrics.ModeBatch, metrics.OutcomeRejected, len(itemErrs))
		return b.abort(offset, len(chunk), itemErrs)
	}

	txCtx := context.WithoutCancel(ctx)
	var committed []*domain.Interaction
	var failed *domain.BatchItemError

	err := b.c.store.WithTx(txCtx, func(tx repository.InteractionTx) error {
		committed = committed[:0]
		enricher := b.c.enricher.Using(tx)

		for i, in := range chunk {
			enriched, err := enricher.Enrich(txCtx, in)
			if err != nil {
				failed = &domain.BatchItemError{Index: offset + i, Error: itemMessage(err)}
				return err
			}
			interaction, err := persist(txCtx, tx, enriched)
			if err != nil {
				failed = &domain.BatchItemError{Index: offset + i, Error: errPersistItem}
				return err
			}
			committed = append(committed, interaction)
		}
		return nil
	})
	if err != nil {
		var enrichErr *domain.EnrichmentError
		if errors.As(err, &enrichErr) {
			b.c.metrics.Ingested(metrics.ModeBatch, metrics.OutcomeRejected, 1)
		} else {
			b.c.metrics.Ingested(metrics.ModeBatch, metrics.OutcomeFailed, 1)
		}

		b.c.log.Warn("Batch chunk rolled back",
			zap.Int("offset", offset),
			zap.Int("size", len(chunk)),
			zap.Error(err))

		if failed == nil {
			// begin or commit failed: no item is to blame
			b.c.metrics.Ingested(metrics.ModeBatch, metrics.OutcomeFailed, len(chunk)-1)
			b.c.metrics.Chunk(metrics.ChunkAborted)
			return failAll(offset, len(chunk), errPersistItem)
		}
		return b.abort(offset, len(chunk), []domain.BatchItemError{*failed})
	}

	b.c.metrics.Chunk(metrics.ChunkCommitted)
	b.c.metrics.Ingested(metrics.ModeBatch, metrics.OutcomeDone, len(committed))
	b.afterCommit(ctx, committed)

	return domain.BatchResult{
		Total:      len(chunk),
		Successful: len(committed),
		Errors:     []domain.BatchItemError{},
	}
}

// abort reports itemErrs for their items and a rollback error for every other item of the chunk
func (b *BatchOrchestrator) abort(offset, size int, itemErrs []domain.BatchItemError) domain.BatchResult {
	b.c.metrics.Chunk(metrics.ChunkAborted)

	byIndex := make(map[int]string, len(itemErrs))
	for _, e := range itemErrs {
		byIndex[e.Index] = e.Error
	}
	rolledBack := fmt.Sprintf("chunk rolled back: item %d failed", itemErrs[0].Index)

	result := domain.BatchResult{Total: size, Failed: size, Errors: make([]domain.BatchItemError, 0, size)}
	for i := offset; i < offset+size; i++ {
		msg, ok := byIndex[i]
		if !ok {
			msg = rolledBack
		}
		result.Errors = append(result.Errors, domain.BatchItemError{Index: i, Error: msg})
	}

	b.c.metrics.Ingested(metrics.ModeBatch, metrics.OutcomeFailed, size-len(itemErrs))
	return result
}

// afterCommit enqueues low-priority analysis jobs for the chunk and evicts each affected
// partition once. Batches are not broadcast.
func (b *BatchOrchestrator) afterCommit(ctx context.Context, committed []*domain.Interaction) {
	sideCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), b.c.sideEffectTimeout)
	defer cancel()

	customers := make([]string, 0, len(committed))
	organizations := make([]string, 0, 1)
	for _, i := range committed {
		customers = append(customers, i.CustomerID)
		organizations = append(organizations, i.OrganizationID)
	}

	var g errgroup.Group
	g.Go(func() error {
		var jobs errgroup.Group
		jobs.SetLimit(dispatchConcurrency)
		for _, interaction := range committed {
			if !hasContent(interaction.Content) {
				continue
			}
			jobs.Go(func() error {
				if err := b.c.jobs.EnqueueAnalysis(sideCtx, analysisJob(interaction), domain.PriorityLow); err != nil {
					b.c.metrics.SideEffectFailed(metrics.StepDispatch)
					b.c.log.Warn("Failed to dispatch analysis job",
						zap.String("interaction_id", interaction.ID),
						zap.String("organization_id", interaction.OrganizationID),
						zap.Error(err))
				}
				return nil
			})
		}
		return jobs.Wait()
	})
	g.Go(func() error {
		if err := b.c.invalidator.InvalidateAll(sideCtx, customers, organizations); err != nil {
			b.c.metrics.SideEffectFailed(metrics.StepInvalidate)
			b.c.log.Warn("Failed to invalidate cache for batch chunk", zap.Error(err))
		}
		return nil
	})

	wait(sideCtx, &g, b.c.log, []zap.Field{zap.Int("committed", len(committed))})
}

func failAll(offset, size int, msg string) domain.BatchResult {
	result := domain.BatchResult{Total: size, Failed: size, Errors: make([]domain.BatchItemError, 0, size)}
	for i := offset; i < offset+size; i++ {
		result.Errors = append(result.Errors, domain.BatchItemError{Index: i, Error: msg})
	}
	return result
}

// itemMessage is the client-facing error of one failing item
func itemMessage(err error) string {
	var enrichErr *domain.EnrichmentError
	if errors.As(err, &enrichErr) {
		return enrichErr.Error()
	}
	return errPersistItem
}
