package store

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// RedisSlot stores values as plain Redis strings.
type RedisSlot struct {
	client *redis.Client
	prefix string
}

// NewRedisSlot wraps an existing client. Keys are stored under prefix.
func NewRedisSlot(client *redis.Client, prefix string) *RedisSlot {
	return &RedisSlot{client: client, prefix: prefix}
}

func (s *RedisSlot) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	return v, err
}

func (s *RedisSlot) Set(ctx context.Context, key string, value []byte) error {
	return s.client.Set(ctx, s.prefix+key, value, 0).Err()
}

func (s *RedisSlot) Name() string { return "redis" }

func (s *RedisSlot) Close() error { return s.client.Close() }
