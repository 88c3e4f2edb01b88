package cache

import (
	"context"
	"errors"
	"time"
)

// ErrMiss is returned by Store.Get when the key holds no value
var ErrMiss = errors.New("cache miss")

// Store is a key/value cache with pattern deletion and partition generations
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Generation reads a generation counter; an absent counter is 0
	Generation(ctx context.Context, genKey string) (int64, error)
	// Bump advances a generation counter
	Bump(ctx context.Context, genKey string) error
	// SetIfGeneration stores value only while genKey still holds gen and reports whether it did
	SetIfGeneration(ctx context.Context, key string, value []byte, ttl time.Duration, genKey string, gen int64) (bool, error)

	// DeleteMatching removes every key matching a glob pattern and returns how many were removed
	DeleteMatching(ctx context.Context, pattern string) (int, error)
}
