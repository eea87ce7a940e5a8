// Package redis stores snapshots and sessions in Redis.
package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/Rrens/meeting-buddy/internal/config"
	"github.com/Rrens/meeting-buddy/internal/storage"
)

// Client wraps the Redis client
type Client struct {
	rdb *redis.Client
}

// NewClient creates a new Redis client
func NewClient(cfg config.RedisConfig) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Verify connection
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Redis returns the underlying Redis client
func (c *Client) Redis() *redis.Client {
	return c.rdb
}

// KV implements storage.Backend on top of Redis strings
type KV struct {
	client *Client
	prefix string
}

// NewKV creates a KV that namespaces every key with prefix
func NewKV(client *Client, prefix string) *KV {
	return &KV{client: client, prefix: prefix}
}

// Open is the storage.Factory for the redis backend
func Open(_ context.Context, cfg *config.Config) (storage.Backend, error) {
	client, err := NewClient(cfg.Redis)
	if err != nil {
		return nil, err
	}
	return NewKV(client, cfg.Redis.KeyPrefix), nil
}

func (k *KV) Name() string { return "redis" }

// Get retrieves a value
func (k *KV) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := k.client.rdb.Get(ctx, k.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get %s: %w", key, err)
	}
	return value, true, nil
}

// Set stores a value without expiry
func (k *KV) Set(ctx context.Context, key, value string) error {
	if err := k.client.rdb.Set(ctx, k.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}

// Remove deletes a value
func (k *KV) Remove(ctx context.Context, key string) error {
	if err := k.client.rdb.Del(ctx, k.prefix+key).Err(); err != nil {
		return fmt.Errorf("failed to remove %s: %w", key, err)
	}
	return nil
}

func (k *KV) HealthCheck(ctx context.Context) error {
	return k.client.rdb.Ping(ctx).Err()
}

func (k *KV) Close() error {
	return k.client.Close()
}

// Client returns the connection shared with other Redis users
func (k *KV) Client() *Client {
	return k.client
}
