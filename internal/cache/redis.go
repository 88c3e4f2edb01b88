package cache

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/cosmium2004/Customer-Insights-sub000/internal/config"
)

const scanCount = 100

// NewRedisClient connects to Valkey and verifies the connection
func NewRedisClient(ctx context.Context, cfg config.Valkey, log *zap.Logger) (*redis.Client, error) {
	addr := net.JoinHostPort(cfg.Host, cfg.Port)
	log.Info("Connecting to Valkey", zap.String("addr", addr), zap.Int("db", cfg.DB))

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		log.Error("Failed to ping Valkey", zap.Error(err))
		return nil, fmt.Errorf("failed to ping Valkey: %w", err)
	}

	log.Info("Valkey connection established successfully")
	return client, nil
}

// RedisStore implements Store on a Redis-protocol server
type RedisStore struct {
	client redis.UniversalClient
}

// NewRedisStore creates a new Redis backed cache store
func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s: %w", key, err)
	}
	return data, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := s.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}

// setIfGeneration writes KEYS[1] only when the counter KEYS[2] still equals ARGV[2]
var setIfGeneration = redis.NewScript(`
local current = redis.call("GET", KEYS[2]) or "0"
if current ~= ARGV[2] then
	return 0
end
if tonumber(ARGV[3]) > 0 then
	redis.call("SET", KEYS[1], ARGV[1], "PX", ARGV[3])
else
	redis.call("SET", KEYS[1], ARGV[1])
end
return 1
`)

func (s *RedisStore) Generation(ctx context.Context, genKey string) (int64, error) {
	gen, err := s.client.Get(ctx, genKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read generation %s: %w", genKey, err)
	}
	return gen, nil
}

func (s *RedisStore) Bump(ctx context.Context, genKey string) error {
	if err := s.client.Incr(ctx, genKey).Err(); err != nil {
		return fmt.Errorf("failed to bump generation %s: %w", genKey, err)
	}
	return nil
}

func (s *RedisStore) SetIfGeneration(ctx context.Context, key string, value []byte, ttl time.Duration, genKey string, gen int64) (bool, error) {
	stored, err := setIfGeneration.Run(ctx, s.client, []string{key, genKey}, value, gen, ttl.Milliseconds()).Int()
	if err != nil {
		return false, fmt.Errorf("failed to set %s: %w", key, err)
	}
	return stored == 1, nil
}

// DeleteMatching collects every key matching pattern with SCAN, then deletes them in
// batches of scanCount. Keys are not deleted mid-scan so the cursor stays valid on
// servers that use offset cursors.
func (s *RedisStore) DeleteMatching(ctx context.Context, pattern string) (int, error) {
	var keys []string
	var cursor uint64
	for {
		page, next, err := s.client.Scan(ctx, cursor, pattern, scanCount).Result()
		if err != nil {
			return 0, fmt.Errorf("failed to scan %s: %w", pattern, err)
		}
		keys = append(keys, page...)
		if next == 0 {
			break
		}
		cursor = next
	}

	deleted := 0
	for start := 0; start < len(keys); start += scanCount {
		end := min(start+scanCount, len(keys))
		n, err := s.client.Del(ctx, keys[start:end]...).Result()
		if err != nil {
			return deleted, fmt.Errorf("failed to delete keys matching %s: %w", pattern, err)
		}
		deleted += int(n)
	}
	return deleted, nil
}
