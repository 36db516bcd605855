package store

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// RedisCounter keeps per-device analysis counts in Redis so several mock
// servers behind one panel report the same numbers.
type RedisCounter struct {
	client *redis.Client
	prefix string
}

func NewRedisCounter(client *redis.Client, prefix string) *RedisCounter {
	if prefix == "" {
		prefix = "aeye"
	}
	return &RedisCounter{
		client: client,
		prefix: prefix,
	}
}

func (r *RedisCounter) Increment(ctx context.Context, deviceID string) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, r.deviceKey(deviceID))
		pipe.Incr(ctx, r.totalKey())
		return nil
	})
	return err
}

func (r *RedisCounter) Count(ctx context.Context, deviceID string) (int64, error) {
	return r.get(ctx, r.deviceKey(deviceID))
}

func (r *RedisCounter) Total(ctx context.Context) (int64, error) {
	return r.get(ctx, r.totalKey())
}

func (r *RedisCounter) get(ctx context.Context, key string) (int64, error) {
	n, err := r.client.Get(ctx, key).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil // No usage yet
	}
	return n, err
}

func (r *RedisCounter) deviceKey(deviceID string) string {
	return r.prefix + ":analyses:device:" + deviceID
}

func (r *RedisCounter) totalKey() string {
	return r.prefix + ":analyses:total"
}
