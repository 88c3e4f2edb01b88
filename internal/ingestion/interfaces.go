package ingestion

import (
	"context"

	"github.com/cosmium2004/Customer-Insights-sub000/internal/domain"
)

// CacheInvalidator evicts cached views after a commit
type CacheInvalidator interface {
	Invalidate(ctx context.Context, customerID, organizationID string) error
	InvalidateAll(ctx context.Context, customerIDs, organizationIDs []string) error
}

// EventPublisher broadcasts creation notifications
type EventPublisher interface {
	Publish(ctx context.Context, event domain.InteractionCreatedEvent) error
}
