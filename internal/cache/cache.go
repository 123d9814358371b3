// Package cache is a Redis cache-aside helper for read-heavy tour data.
// A Cache with a nil client is valid and never hits.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"backend-travelcompanion/internal/logger"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const DefaultTTL = 5 * time.Minute

type Cache struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

func New(client *redis.Client, ttl time.Duration, log *zap.Logger) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{client: client, ttl: ttl, log: logger.OrNop(log)}
}

// GetJSON reports whether key was found and decoded into dest.
func (c *Cache) GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	if c == nil || c.client == nil {
		return false, nil
	}
	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("cache get %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, fmt.Errorf("cache decode %s: %w", key, err)
	}
	return true, nil
}

func (c *Cache) SetJSON(ctx context.Context, key string, v any) error {
	if c == nil || c.client == nil {
		return nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, raw, c.ttl).Err()
}

// Delete drops keys. Failures are logged, not returned: a stale entry
// expires with its TTL.
func (c *Cache) Delete(ctx context.Context, keys ...string) {
	if c == nil || c.client == nil || len(keys) == 0 {
		return
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.log.Warn("cache invalidate failed", zap.Strings("keys", keys), zap.Error(err))
	}
}

// CacheAside loads key into dest, calling fetch to populate dest on a miss.
// Redis errors degrade to a direct fetch. An entry that fails to decode
// may leave dest partly filled, so fetch must replace dest, not extend it.
func (c *Cache) CacheAside(ctx context.Context, key string, dest any, fetch func() error) error {
	found, err := c.GetJSON(ctx, key, dest)
	if err != nil {
		c.log.Warn("cache read failed", zap.String("key", key), zap.Error(err))
	}
	if found {
		return nil
	}

	if err := fetch(); err != nil {
		return err
	}

	if err := c.SetJSON(ctx, key, dest); err != nil {
		c.log.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
	return nil
}

func TourKey(id int64) string       { return fmt.Sprintf("tours:%d", id) }
func TourPointsKey(id int64) string { return fmt.Sprintf("tours:%d:points", id) }
func PointKey(id int64) string      { return fmt.Sprintf("points:%d", id) }
func UserToursKey(id int64) string  { return fmt.Sprintf("users:%d:tours", id) }

const AllToursKey = "tours:all"
