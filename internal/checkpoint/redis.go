package checkpoint

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/go-redis/redis/v8"
)

const defaultRedisKey = "pipeline:last_ingested"

// RedisStore keeps the checkpoint under a single Redis key, for deployments
// where a Redis instance is already part of the stack.
type RedisStore struct {
	client *goredis.Client
	key    string
}

// NewRedisStore creates a Redis-backed store. An empty key falls back to
// defaultRedisKey.
func NewRedisStore(addr, password, key string) *RedisStore {
	if key == "" {
		key = defaultRedisKey
	}
	return &RedisStore{
		client: goredis.NewClient(&goredis.Options{
			Addr:     addr,
			Password: password,
		}),
		key: key,
	}
}

// NewRedisStoreWithClient wraps an existing client; used by tests.
func NewRedisStoreWithClient(client *goredis.Client, key string) *RedisStore {
	if key == "" {
		key = defaultRedisKey
	}
	return &RedisStore{client: client, key: key}
}

func (r *RedisStore) Load() (float64, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	v, err := r.client.Get(ctx, r.key).Float64()
	if err == goredis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("checkpoint: redis load: %w", err)
	}
	return v, true, nil
}

func (r *RedisStore) Save(ts float64) error {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := r.client.Set(ctx, r.key, ts, 0).Err(); err != nil {
		return fmt.Errorf("checkpoint: redis save: %w", err)
	}
	return nil
}

// Close releases the Redis client.
func (r *RedisStore) Close() error {
	return r.client.Close()
}
