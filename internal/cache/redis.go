package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"latex-speech/internal/types"
)

// RedisCache is a Cache backed by a Redis instance, for sharing rewrite
// results across processes. Values are JSON-encoded SpeechText.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// ConnectRedis creates a Redis client from a URL and verifies it with a
// ping.
func ConnectRedis(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, types.NewAppError(types.ErrCache, "parse redis URL", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, types.NewAppError(types.ErrCache, "ping redis", err)
	}
	return client, nil
}

// NewRedisCache wraps a Redis client as a Cache. A non-positive ttl falls
// back to DefaultTTL.
func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisCache{client: client, ttl: ttl}
}

// Get implements Cache. A corrupt value is treated as a miss after being
// deleted, so one bad entry cannot wedge a key forever.
func (c *RedisCache) Get(ctx context.Context, key string) (*types.SpeechText, bool, error) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, types.NewAppError(types.ErrCache, "redis get", err)
	}

	var result types.SpeechText
	if err := json.Unmarshal(raw, &result); err != nil {
		c.client.Del(ctx, key)
		return nil, false, nil
	}
	return &result, true, nil
}

// Set implements Cache.
func (c *RedisCache) Set(ctx context.Context, key string, result *types.SpeechText) error {
	raw, err := json.Marshal(result)
	if err != nil {
		return types.NewAppError(types.ErrCache, "encode cached result", err)
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		return types.NewAppError(types.ErrCache, "redis set", err)
	}
	return nil
}

// Close releases the underlying client.
func (c *RedisCache) Close() error {
	return c.client.Close()
}
