package kv

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// redisStore keeps each record as a plain string value under prefix+key.
type redisStore struct {
	client *redis.Client
	prefix string
}

// NewRedis constructs a Store on an existing client. prefix namespaces all keys.
func NewRedis(client *redis.Client, prefix string) Store {
	return &redisStore{client: client, prefix: prefix}
}

func (r *redisStore) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("kv: redis get %s: %w", key, err)
	}
	return v, nil
}

func (r *redisStore) Set(ctx context.Context, key string, value []byte) error {
	if err := r.client.Set(ctx, r.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("kv: redis set %s: %w", key, err)
	}
	return nil
}

func (r *redisStore) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.prefix+key).Err(); err != nil {
		return fmt.Errorf("kv: redis del %s: %w", key, err)
	}
	return nil
}
