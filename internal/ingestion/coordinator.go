package ingestion

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/cosmium2004/Customer-Insights-sub000/internal/domain"
	"github.com/cosmium2004/Customer-Insights-sub000/internal/enrichment"
	"github.com/cosmium2004/Customer-Insights-sub000/internal/metrics"
	"github.com/cosmium2004/Customer-Insights-sub000/internal/queue"
	"github.com/cosmium2004/Customer-Insights-sub000/internal/repository"
	"github.com/cosmium2004/Customer-Insights-sub000/internal/validation"
)

const defaultSideEffectTimeout = 2 * time.Second

// Result describes how one ingestion ended
type Result struct {
	// Interaction is set once the interaction committed
	Interaction *domain.Interaction
	State       State
	Trace       []State
}

// Coordinator runs validate, enrich, persist and the post-commit steps for one interaction
type Coordinator struct {
	validator         *validation.Validator
	enricher          *enrichment.Enricher
	store             repository.InteractionStore
	jobs              queue.JobSink
	invalidator       CacheInvalidator
	publisher         EventPublisher
	sideEffectTimeout time.Duration
	metrics           *metrics.Metrics
	log               *zap.Logger
}

// NewCoordinator creates a new ingestion coordinator
func NewCoordinator(
	validator *validation.Validator,
	enricher *enrichment.Enricher,
	store repository.InteractionStore,
	jobs queue.JobSink,
	invalidator CacheInvalidator,
	publisher EventPublisher,
	sideEffectTimeout time.Duration,
	m *metrics.Metrics,
	log *zap.Logger,
) *Coordinator {
	if sideEffectTimeout <= 0 {
		sideEffectTimeout = defaultSideEffectTimeout
	}
	return &Coordinator{
		validator:         validator,
		enricher:          enricher,
		store:             store,
		jobs:              jobs,
		invalidator:       invalidator,
		publisher:         publisher,
		sideEffectTimeout: sideEffectTimeout,
		metrics:           m,
		log:               log,
	}
}

// Ingest validates, enriches and commits one interaction, then dispatches its analysis job,
// invalidates the affected cache partitions and broadcasts it.
// Once the interaction committed Ingest returns no error, whatever the post-commit steps do.
func (c *Coordinator) Ingest(ctx context.Context, in domain.InteractionInput) (*Result, error) {
	start := time.Now()
	r := newRun(c.log)
	defer func() {
		c.metrics.ObserveDuration(metrics.ModeSingle, time.Since(start).Seconds())
		c.metrics.Ingested(metrics.ModeSingle, outcomeOf(r.state), 1)
	}()

	if res := c.validator.Validate(in); !res.Valid {
		r.advance(StateRejected)
		return r.result(nil), res.Err()
	}
	r.advance(StateValidated)

	enriched, err := c.enricher.Enrich(ctx, in)
	if err != nil {
		r.advance(StateRejected)
		c.log.Info("Interaction rejected during enrichment",
			zap.String("customer_id", in.CustomerID),
			zap.Error(err))
		return r.result(nil), err
	}
	r.advance(StateEnriched)

	// The unit runs to commit or rollback even if the caller goes away
	var interaction *domain.Interaction
	err = c.store.WithTx(context.WithoutCancel(ctx), func(tx repository.InteractionTx) error {
		var err error
		interaction, err = persist(context.WithoutCancel(ctx), tx, enriched)
		return err
	})
	if err != nil {
		r.advance(StateFailed)
		c.log.Error("Failed to persist interaction",
			zap.String("customer_id", enriched.CustomerID),
			zap.String("organization_id", enriched.OrganizationID),
			zap.Error(err))
		return r.result(nil), &domain.PersistenceError{Op: "persist interaction", Err: err}
	}
	r.advance(StateCommitted)

	c.afterCommit(ctx, interaction)
	r.advance(StateDispatched)
	r.advance(StateDone)

	c.log.Debug("Interaction ingested",
		zap.String("interaction_id", interaction.ID),
		zap.String("organization_id", interaction.OrganizationID))

	return r.result(interaction), nil
}

// persist is the atomic unit: the new row plus the customer's counter and last-seen update
func persist(ctx context.Context, tx repository.InteractionTx, in *domain.EnrichedInteraction) (*domain.Interaction, error) {
	interaction, err := tx.InsertInteraction(ctx, in)
	if err != nil {
		return nil, err
	}
	if err := tx.TouchCustomer(ctx, in.CustomerID, in.OrganizationID, in.Timestamp); err != nil {
		return nil, err
	}
	return interaction, nil
}

// afterCommit runs dispatch, invalidation and broadcast concurrently and waits for them at most
// sideEffectTimeout. Failures are logged and counted only.
func (c *Coordinator) afterCommit(ctx context.Context, interaction *domain.Interaction) {
	sideCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.sideEffectTimeout)
	defer cancel()

	logFields := []zap.Field{
		zap.String("interaction_id", interaction.ID),
		zap.String("customer_id", interaction.CustomerID),
		zap.String("organization_id", interaction.OrganizationID),
	}

	var g errgroup.Group
	g.Go(func() error {
		if !hasContent(interaction.Content) {
			return nil
		}
		if err := c.jobs.EnqueueAnalysis(sideCtx, analysisJob(interaction), domain.PriorityHigh); err != nil {
			c.metrics.SideEffectFailed(metrics.StepDispatch)
			c.log.Warn("Failed to dispatch analysis job", append(logFields, zap.Error(err))...)
		}
		return nil
	})
	g.Go(func() error {
		if err := c.invalidator.Invalidate(sideCtx, interaction.CustomerID, interaction.OrganizationID); err != nil {
			c.metrics.SideEffectFailed(metrics.StepInvalidate)
			c.log.Warn("Failed to invalidate cache", append(logFields, zap.Error(err))...)
		}
		return nil
	})
	g.Go(func() error {
		if err := c.publisher.Publish(sideCtx, domain.NewInteractionCreatedEvent(interaction)); err != nil {
			c.metrics.SideEffectFailed(metrics.StepBroadcast)
			c.log.Warn("Failed to broadcast interaction", append(logFields, zap.Error(err))...)
		}
		return nil
	})

	wait(sideCtx, &g, c.log, logFields)
}

// wait returns when g finishes or ctx expires, whichever comes first
func wait(ctx context.Context, g *errgroup.Group, log *zap.Logger, fields []zap.Field) {
	done := make(chan struct{})
	go func() {
		_ = g.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			log.Warn("Post-commit steps did not finish in time", fields...)
		}
	}
}

func (r *run) result(interaction *domain.Interaction) *Result {
	return &Result{Interaction: interaction, State: r.state, Trace: r.trace}
}

func analysisJob(i *domain.Interaction) domain.AnalysisJob {
	return domain.AnalysisJob{
		InteractionID:  i.ID,
		Content:        i.Content,
		CustomerID:     i.CustomerID,
		OrganizationID: i.OrganizationID,
	}
}

func hasContent(s string) bool {
	return strings.TrimSpace(s) != ""
}

func outcomeOf(s State) string {
	switch {
	case s == StateRejected:
		return metrics.OutcomeRejected
	case s.Committed():
		return metrics.OutcomeDone
	default:
		return metrics.OutcomeFailed
	}
}
