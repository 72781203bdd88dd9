package infra

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Cache key prefixes. Writers invalidate whole prefixes after commit.
const (
	CacheProducts     = "products:"
	CacheOrders       = "orders:"
	CacheConditionals = "conditionals:"
	CacheCustomers    = "customers:"
	CacheDashboard    = "dashboard:"
)

const cacheNamespace = "cache:"

// Cache is a JSON read-through cache over redis. A nil *Cache is valid and
// never hits, which keeps services usable without redis in unit tests.
type Cache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewCache(rdb *redis.Client, ttl time.Duration) *Cache {
	return &Cache{rdb: rdb, ttl: ttl}
}

// GetJSON loads key into dst. It reports false on a miss or any redis error;
// a broken cache must never fail a read.
func (c *Cache) GetJSON(ctx context.Context, key string, dst any) bool {
	if c == nil || c.rdb == nil {
		return false
	}
	raw, err := c.rdb.Get(ctx, cacheNamespace+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Warn().Err(err).Str("key", key).Msg("cache: get failed")
		}
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cache: corrupt entry")
		return false
	}
	return true
}

func (c *Cache) SetJSON(ctx context.Context, key string, v any) {
	if c == nil || c.rdb == nil || c.ttl <= 0 {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, cacheNamespace+key, data, c.ttl).Err(); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cache: set failed")
	}
}

// Invalidate drops every key under the given prefixes.
func (c *Cache) Invalidate(ctx context.Context, prefixes ...string) {
	if c == nil || c.rdb == nil {
		return
	}
	for _, prefix := range prefixes {
		iter := c.rdb.Scan(ctx, 0, cacheNamespace+prefix+"*", 200).Iterator()
		var keys []string
		for iter.Next(ctx) {
			keys = append(keys, iter.Val())
		}
		if err := iter.Err(); err != nil {
			log.Warn().Err(err).Str("prefix", prefix).Msg("cache: scan failed")
			continue
		}
		if len(keys) == 0 {
			continue
		}
		if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
			log.Warn().Err(err).Str("prefix", prefix).Msg("cache: invalidate failed")
		}
	}
}
