package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisPrefix = "counsel:"

// RedisCache uses key expiry for the TTL.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(ctx context.Context, redisURL string, ttl time.Duration) (*RedisCache, error) {
	if redisURL == "" {
		return nil, fmt.Errorf("REDIS_URL not set")
	}
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	return NewRedisCacheWithClient(ctx, redis.NewClient(opts), ttl)
}

// NewRedisCacheWithClient wraps an existing client after a ping.
func NewRedisCacheWithClient(ctx context.Context, client *redis.Client, ttl time.Duration) (*RedisCache, error) {
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return &RedisCache{client: client, ttl: ttl}, nil
}

func (c *RedisCache) Get(ctx context.Context, key string, dst interface{}) (bool, error) {
	data, err := c.client.Get(ctx, redisPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		recordLookup("redis", false, nil)
		return false, nil
	}
	if err != nil {
		recordLookup("redis", false, err)
		return false, fmt.Errorf("failed to get cached result: %w", err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		recordLookup("redis", false, err)
		return false, fmt.Errorf("failed to unmarshal cached result: %w", err)
	}
	recordLookup("redis", true, nil)
	return true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}
	if err := c.client.Set(ctx, redisPrefix+key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set cached result: %w", err)
	}
	return nil
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}
