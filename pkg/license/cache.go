package license

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrCacheMiss is returned by a Cache when the key is absent.
var ErrCacheMiss = errors.New("cache miss")

// Cache stores serialized lookup results.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// RedisCache is a Cache backed by redis.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache connects lazily to addr.
func NewRedisCache(addr, password string, db int) *RedisCache {
	return &RedisCache{client: redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})}
}

// Get returns the cached value or ErrCacheMiss.
func (c *RedisCache) Get(ctx context.Context, key string) (string, error) {
	v, err := c.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrCacheMiss
	}
	return v, err
}

// Set stores value with an expiry.
func (c *RedisCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return c.client.Set(ctx, key, value, ttl).Err()
}

// Close closes the client.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// CachedProvider answers from the cache and falls back to the wrapped
// provider. Cache errors are logged and never fail a lookup.
type CachedProvider struct {
	Provider PlanProvider
	Cache    Cache
	Key      string
	TTL      time.Duration
}

// AvailablePlans returns the cached result or looks it up and stores it.
func (p *CachedProvider) AvailablePlans(ctx context.Context) (LookupResult, error) {
	if raw, err := p.Cache.Get(ctx, p.Key); err == nil {
		var result LookupResult
		if err := json.Unmarshal([]byte(raw), &result); err == nil {
			return result, nil
		}
		log.Printf("[license] discarding corrupt cache entry %q", p.Key)
	} else if !errors.Is(err, ErrCacheMiss) {
		log.Printf("[license] cache read failed: %v", err)
	}

	result, err := p.Provider.AvailablePlans(ctx)
	if err != nil {
		return result, err
	}

	if raw, err := json.Marshal(result); err == nil {
		if err := p.Cache.Set(ctx, p.Key, string(raw), p.TTL); err != nil {
			log.Printf("[license] cache write failed: %v", err)
		}
	}
	return result, nil
}
