package consumer

import (
	"context"

	"github.com/cosmium2004/Customer-Insights-sub000/internal/domain"
)

// MessageParser turns a raw results-queue body into an analysis result
type MessageParser interface {
	Parse(body []byte) (*domain.AnalysisResult, error)
}

// CacheInvalidator evicts the views touched by a batch of write-backs
type CacheInvalidator interface {
	InvalidateAll(ctx context.Context, customerIDs, organizationIDs []string) error
}
