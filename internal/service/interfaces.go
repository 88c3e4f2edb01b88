package service

import (
	"context"
	"errors"

	"github.com/cosmium2004/Customer-Insights-sub000/internal/domain"
	"github.com/cosmium2004/Customer-Insights-sub000/internal/dto"
	"github.com/cosmium2004/Customer-Insights-sub000/internal/ingestion"
)

// ErrInvalidRequest marks requests rejected by the service before reaching a collaborator
var ErrInvalidRequest = errors.New("invalid request")

// InteractionServicer defines the interface for interaction ingestion
type InteractionServicer interface {
	Ingest(ctx context.Context, req *dto.InteractionRequest) (string, error)
	IngestBatch(ctx context.Context, reqs []dto.InteractionRequest) (*dto.BatchIngestResponse, error)
}

// InsightsServicer defines the interface for the read views
type InsightsServicer interface {
	GetCustomerProfile(ctx context.Context, customerID, organizationID string) (*domain.CustomerProfile, error)
	GetDashboard(ctx context.Context, req *dto.DashboardRequest) (*dto.DashboardResponse, error)
}

// Ingester runs the single-interaction pipeline
type Ingester interface {
	Ingest(ctx context.Context, in domain.InteractionInput) (*ingestion.Result, error)
}

// BatchIngester runs the chunked batch pipeline
type BatchIngester interface {
	IngestBatch(ctx context.Context, inputs []domain.InteractionInput) domain.BatchResult
}
