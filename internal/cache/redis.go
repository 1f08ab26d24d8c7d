package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"storefront-gateway/internal/domain"
	"storefront-gateway/internal/observability"
)

// RedisCache is the Redis-backed snapshot cache.
type RedisCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisCache connects to Redis at addr and verifies the connection.
func NewRedisCache(addr string) (*RedisCache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisCache{rdb: rdb, ttl: DefaultTTL}, nil
}

func cartKey(sessionID string) string     { return "cart:" + sessionID }
func wishlistKey(sessionID string) string { return "wishlist:" + sessionID }

func (c *RedisCache) GetCart(ctx context.Context, sessionID string) (*domain.CartSnapshot, error) {
	var snapshot domain.CartSnapshot
	if err := c.get(ctx, cartKey(sessionID), &snapshot); err != nil {
		return nil, err
	}
	return &snapshot, nil
}

func (c *RedisCache) SetCart(ctx context.Context, sessionID string, snapshot *domain.CartSnapshot) error {
	return c.set(ctx, cartKey(sessionID), snapshot)
}

func (c *RedisCache) GetWishlist(ctx context.Context, sessionID string) (*domain.WishlistSnapshot, error) {
	var snapshot domain.WishlistSnapshot
	if err := c.get(ctx, wishlistKey(sessionID), &snapshot); err != nil {
		return nil, err
	}
	return &snapshot, nil
}

func (c *RedisCache) SetWishlist(ctx context.Context, sessionID string, snapshot *domain.WishlistSnapshot) error {
	return c.set(ctx, wishlistKey(sessionID), snapshot)
}

// DropSession removes all mirrored snapshots for a session. Called on
// logout and on forced session expiry.
func (c *RedisCache) DropSession(ctx context.Context, sessionID string) error {
	if err := c.rdb.Del(ctx, cartKey(sessionID), wishlistKey(sessionID)).Err(); err != nil {
		observability.CacheOperations.WithLabelValues("del", "error").Inc()
		return fmt.Errorf("failed to drop session snapshots: %w", err)
	}
	observability.CacheOperations.WithLabelValues("del", "ok").Inc()
	return nil
}

func (c *RedisCache) get(ctx context.Context, key string, target any) error {
	data, err := c.rdb.Get(ctx, key).Bytes()
	if err == redis.Nil {
		observability.CacheOperations.WithLabelValues("get", "miss").Inc()
		return ErrMiss
	}
	if err != nil {
		observability.CacheOperations.WithLabelValues("get", "error").Inc()
		return fmt.Errorf("failed to read %s: %w", key, err)
	}
	if err := json.Unmarshal(data, target); err != nil {
		observability.CacheOperations.WithLabelValues("get", "error").Inc()
		return fmt.Errorf("failed to decode %s: %w", key, err)
	}
	observability.CacheOperations.WithLabelValues("get", "hit").Inc()
	return nil
}

func (c *RedisCache) set(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	if err := c.rdb.Set(ctx, key, data, c.ttl).Err(); err != nil {
		observability.CacheOperations.WithLabelValues("set", "error").Inc()
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	observability.CacheOperations.WithLabelValues("set", "ok").Inc()
	return nil
}

// Ping verifies the Redis connection. Used by the readiness probe.
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.rdb.Close()
}
