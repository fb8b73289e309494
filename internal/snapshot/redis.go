package snapshot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/lueurxax/fakenews-web/internal/core/errors"
)

const redisKeyPrefix = "fakenews:snapshot:"

// RedisStore keeps slots as Redis strings.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisStore connects to url. A zero ttl keeps slots until overwritten.
func NewRedisStore(url string, ttl time.Duration) (*RedisStore, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	return &RedisStore{rdb: redis.NewClient(opt), ttl: ttl}, nil
}

// Save writes payload under key.
func (r *RedisStore) Save(ctx context.Context, key string, payload []byte) error {
	if err := r.rdb.Set(ctx, redisKeyPrefix+key, payload, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}

	return nil
}

// Load reads the payload stored under key.
func (r *RedisStore) Load(ctx context.Context, key string) ([]byte, error) {
	payload, err := r.rdb.Get(ctx, redisKeyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, apperrors.ErrSnapshotNotFound
		}

		return nil, fmt.Errorf("redis get: %w", err)
	}

	return payload, nil
}

// Ping checks the connection.
func (r *RedisStore) Ping(ctx context.Context) error {
	if err := r.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}

	return nil
}

// Close releases the client.
func (r *RedisStore) Close() error {
	return r.rdb.Close()
}
