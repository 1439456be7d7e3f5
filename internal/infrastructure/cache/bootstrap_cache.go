// Package cache fronts the widget-bootstrap lookup with Redis. Every
// storefront page load hits the bootstrap endpoint, so the hot path should
// not reach the database.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"quell-core-api/internal/domain"
	"quell-core-api/internal/ports"

	"github.com/redis/go-redis/v9"
)

const bootstrapTTL = 5 * time.Minute

// RedisBootstrapCache implements ports.BootstrapCache on go-redis
type RedisBootstrapCache struct {
	client *redis.Client
}

// NewRedisBootstrapCache creates a new Redis-backed bootstrap cache
func NewRedisBootstrapCache(client *redis.Client) *RedisBootstrapCache {
	return &RedisBootstrapCache{client: client}
}

func bootstrapKey(widgetToken string) string {
	return "bootstrap:" + widgetToken
}

// Get returns the cached payload, (nil, nil) on a miss
func (c *RedisBootstrapCache) Get(ctx context.Context, widgetToken string) (*domain.WidgetBootstrap, error) {
	raw, err := c.client.Get(ctx, bootstrapKey(widgetToken)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read bootstrap cache: %w", err)
	}

	var bootstrap domain.WidgetBootstrap
	if err := json.Unmarshal(raw, &bootstrap); err != nil {
		// A corrupt entry behaves like a miss.
		return nil, nil
	}
	return &bootstrap, nil
}

// Set stores the payload with a short TTL
func (c *RedisBootstrapCache) Set(ctx context.Context, widgetToken string, bootstrap *domain.WidgetBootstrap) error {
	raw, err := json.Marshal(bootstrap)
	if err != nil {
		return fmt.Errorf("failed to encode bootstrap payload: %w", err)
	}
	if err := c.client.Set(ctx, bootstrapKey(widgetToken), raw, bootstrapTTL).Err(); err != nil {
		return fmt.Errorf("failed to write bootstrap cache: %w", err)
	}
	return nil
}

// Invalidate drops the cached payload for a token
func (c *RedisBootstrapCache) Invalidate(ctx context.Context, widgetToken string) error {
	if err := c.client.Del(ctx, bootstrapKey(widgetToken)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate bootstrap cache: %w", err)
	}
	return nil
}

var _ ports.BootstrapCache = (*RedisBootstrapCache)(nil)

// NoopBootstrapCache is used when Redis is not configured; every Get is a miss.
type NoopBootstrapCache struct{}

func (NoopBootstrapCache) Get(context.Context, string) (*domain.WidgetBootstrap, error) {
	return nil, nil
}
func (NoopBootstrapCache) Set(context.Context, string, *domain.WidgetBootstrap) error { return nil }
func (NoopBootstrapCache) Invalidate(context.Context, string) error                   { return nil }

var _ ports.BootstrapCache = NoopBootstrapCache{}
