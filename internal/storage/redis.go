package storage

import (
	"context"

	"visa-tracker/internal/common/database"
)

// Redis stores every key as a plain string value under prefix+key.
type Redis struct {
	client *database.RedisClient
	prefix string
}

func NewRedis(client *database.RedisClient, prefix string) *Redis {
	return &Redis{client: client, prefix: prefix}
}

func (r *Redis) Name() string { return "redis" }

func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return r.client.GetBytes(ctx, r.prefix+key)
}

func (r *Redis) Set(ctx context.Context, key string, value []byte) error {
	return r.client.Set(ctx, r.prefix+key, value)
}

func (r *Redis) Ping(ctx context.Context) error { return r.client.Ping(ctx) }
func (r *Redis) Close() error                   { return r.client.Close() }
