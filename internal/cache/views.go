package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Views serves JSON read models from the cache, loading them on a miss.
// Concurrent misses for one key share a single load. A load that overlaps an invalidation
// of its partition is returned but not cached.
type Views struct {
	store Store
	ttl   time.Duration
	group singleflight.Group
	log   *zap.Logger
}

// NewViews creates a read-through view cache
func NewViews(store Store, ttl time.Duration, log *zap.Logger) *Views {
	return &Views{store: store, ttl: ttl, log: log}
}

// GetOrLoad returns the view cached under key, calling load and caching its result on a miss.
// Cache failures degrade to calling load directly.
func GetOrLoad[T any](ctx context.Context, v *Views, key string, load func(ctx context.Context) (T, error)) (T, error) {
	var zero T

	data, err := v.store.Get(ctx, key)
	if err == nil {
		var cached T
		if err := json.Unmarshal(data, &cached); err == nil {
			return cached, nil
		}
		v.log.Warn("Discarding undecodable cached view", zap.String("key", key))
	} else if !errors.Is(err, ErrMiss) {
		v.log.Warn("Failed to read cached view", zap.String("key", key), zap.Error(err))
	}

	result, err, _ := v.group.Do(key, func() (any, error) {
		genKey := generationOf(key)
		var gen int64
		cacheable := true
		if genKey != "" {
			var genErr error
			if gen, genErr = v.store.Generation(ctx, genKey); genErr != nil {
				v.log.Warn("Failed to read partition generation", zap.String("key", key), zap.Error(genErr))
				cacheable = false
			}
		}

		value, err := load(ctx)
		if err != nil {
			return nil, err
		}
		if !cacheable {
			return value, nil
		}

		encoded, err := json.Marshal(value)
		if err != nil {
			v.log.Warn("Failed to encode view for cache", zap.String("key", key), zap.Error(err))
			return value, nil
		}
		v.put(ctx, key, encoded, genKey, gen)
		return value, nil
	})
	if err != nil {
		return zero, err
	}
	return result.(T), nil
}

func (v *Views) put(ctx context.Context, key string, encoded []byte, genKey string, gen int64) {
	if genKey == "" {
		if err := v.store.Set(ctx, key, encoded, v.ttl); err != nil {
			v.log.Warn("Failed to cache view", zap.String("key", key), zap.Error(err))
		}
		return
	}

	stored, err := v.store.SetIfGeneration(ctx, key, encoded, v.ttl, genKey, gen)
	if err != nil {
		v.log.Warn("Failed to cache view", zap.String("key", key), zap.Error(err))
		return
	}
	if !stored {
		v.log.Debug("Skipping cache of view invalidated during load", zap.String("key", key))
	}
}
