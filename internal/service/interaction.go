package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/cosmium2004/Customer-Insights-sub000/internal/domain"
	"github.com/cosmium2004/Customer-Insights-sub000/internal/dto"
)

// InteractionService represents the ingestion service
type InteractionService struct {
	ingester      Ingester
	batch         BatchIngester
	maxBatchItems int
	log           *zap.Logger
}

// NewInteractionService creates a new interaction service
func NewInteractionService(ingester Ingester, batch BatchIngester, maxBatchItems int, log *zap.Logger) *InteractionService {
	return &InteractionService{
		ingester:      ingester,
		batch:         batch,
		maxBatchItems: maxBatchItems,
		log:           log,
	}
}

// Ingest ingests one interaction and returns its id. Errors are the typed domain errors of
// the pipeline: *domain.ValidationError, *domain.EnrichmentError or *domain.PersistenceError.
func (s *InteractionService) Ingest(ctx context.Context, req *dto.InteractionRequest) (string, error) {
	result, err := s.ingester.Ingest(ctx, req.Input())
	if err != nil {
		return "", err
	}
	return result.Interaction.ID, nil
}

// IngestBatch ingests up to maxBatchItems interactions
func (s *InteractionService) IngestBatch(ctx context.Context, reqs []dto.InteractionRequest) (*dto.BatchIngestResponse, error) {
	if len(reqs) == 0 {
		return nil, fmt.Errorf("%w: interactions must not be empty", ErrInvalidRequest)
	}
	if s.maxBatchItems > 0 && len(reqs) > s.maxBatchItems {
		s.log.Warn("Batch too large",
			zap.Int("items", len(reqs)),
			zap.Int("max_items", s.maxBatchItems))
		return nil, fmt.Errorf("%w: batch holds %d interactions, max %d", ErrInvalidRequest, len(reqs), s.maxBatchItems)
	}

	inputs := make([]domain.InteractionInput, len(reqs))
	for i, req := range reqs {
		inputs[i] = req.Input()
	}

	return dto.NewBatchIngestResponse(s.batch.IngestBatch(ctx, inputs)), nil
}
