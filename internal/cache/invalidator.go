package cache

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Invalidator evicts customer and organization partitions after writes
type Invalidator struct {
	store Store
	log   *zap.Logger
}

// NewInvalidator creates a new cache invalidator
func NewInvalidator(store Store, log *zap.Logger) *Invalidator {
	return &Invalidator{store: store, log: log}
}

// Invalidate evicts the partitions of one customer and its organization
func (i *Invalidator) Invalidate(ctx context.Context, customerID, organizationID string) error {
	return i.InvalidateAll(ctx, []string{customerID}, []string{organizationID})
}

// InvalidateAll evicts every listed customer partition, then every listed organization partition.
// Each partition's generation is bumped before its keys are deleted so loads already in flight
// do not cache what they read. A failing partition does not stop the others; all failures are
// logged and returned joined.
func (i *Invalidator) InvalidateAll(ctx context.Context, customerIDs, organizationIDs []string) error {
	var errs []error

	evict := func(genKey, pattern string) {
		if err := i.store.Bump(ctx, genKey); err != nil {
			i.log.Warn("Failed to bump cache partition generation",
				zap.String("generation", genKey),
				zap.Error(err))
			errs = append(errs, fmt.Errorf("failed to bump %s: %w", genKey, err))
		}

		n, err := i.store.DeleteMatching(ctx, pattern)
		if err != nil {
			i.log.Warn("Failed to invalidate cache partition",
				zap.String("pattern", pattern),
				zap.Error(err))
			errs = append(errs, fmt.Errorf("failed to invalidate %s: %w", pattern, err))
			return
		}
		i.log.Debug("Cache partition invalidated",
			zap.String("pattern", pattern),
			zap.Int("keys", n))
	}

	for _, id := range unique(customerIDs) {
		evict(CustomerGeneration(id), CustomerPartition(id))
	}
	for _, id := range unique(organizationIDs) {
		evict(OrganizationGeneration(id), OrganizationPartition(id))
	}

	return errors.Join(errs...)
}

func unique(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
