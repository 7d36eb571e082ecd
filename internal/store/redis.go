package store

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"jobwatch/internal/model"
)

const redisKeyPrefix = "jobwatch:seen:"

// RedisStore tracks seen signatures as Redis keys. Retention is enforced
// by key TTL, so Cleanup has nothing left to do. Meant for setups where
// several hosts share one watch state.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore connects to the Redis instance named by redisURL
// (redis://[user:pass@]host:port/db) and verifies it responds. A ttl of
// zero keeps signatures forever.
func NewRedisStore(ctx context.Context, redisURL string, ttl time.Duration) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}

	return &RedisStore{client: client, ttl: ttl}, nil
}

var _ model.SeenStore = (*RedisStore)(nil)

// HasSeen returns true if the signature key exists.
func (s *RedisStore) HasSeen(ctx context.Context, signature string) (bool, error) {
	n, err := s.client.Exists(ctx, redisKeyPrefix+signature).Result()
	if err != nil {
		return false, fmt.Errorf("checking seen status: %w", err)
	}
	return n > 0, nil
}

// MarkSeen records the signature with the configured TTL.
func (s *RedisStore) MarkSeen(ctx context.Context, signature string) error {
	value := time.Now().UTC().Format(time.RFC3339)
	if err := s.client.Set(ctx, redisKeyPrefix+signature, value, s.ttl).Err(); err != nil {
		return fmt.Errorf("marking signature as seen: %w", err)
	}
	return nil
}

// Cleanup is a no-op: expiry rides on the key TTL set at MarkSeen time.
func (s *RedisStore) Cleanup(context.Context, time.Duration) error {
	return nil
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
