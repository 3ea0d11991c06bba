package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	applocation "github.com/atelier/backend/internal/application/location"
	"github.com/atelier/backend/internal/domain/location"
	"github.com/atelier/backend/internal/infrastructure/config"
)

// defaultResolverTTL applies when callers pass a zero TTL
const defaultResolverTTL = 10 * time.Minute

// RedisResolverCache caches resolved locations in Redis, keyed by
// (kind, id). Resolve is on the hot path of every order, custody and
// transfer write, so lookups are served from cache between location edits.
type RedisResolverCache struct {
	client     *redis.Client
	ownsClient bool // true if we created the client and should close it
	logger     *zap.Logger
}

// RedisResolverCacheOption is a functional option for configuring the cache
type RedisResolverCacheOption func(*RedisResolverCache)

// WithResolverCacheLogger sets the logger for the cache
func WithResolverCacheLogger(logger *zap.Logger) RedisResolverCacheOption {
	return func(c *RedisResolverCache) {
		c.logger = logger
	}
}

// NewRedisResolverCache creates a Redis-backed resolver cache and verifies
// connectivity before returning
func NewRedisResolverCache(cfg config.RedisConfig, opts ...RedisResolverCacheOption) (*RedisResolverCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	cache := &RedisResolverCache{
		client:     client,
		ownsClient: true,
		logger:     zap.NewNop(),
	}

	for _, opt := range opts {
		opt(cache)
	}

	return cache, nil
}

// NewRedisResolverCacheWithClient creates a cache with an existing Redis client.
// The caller retains ownership of the client and is responsible for closing it.
func NewRedisResolverCacheWithClient(client *redis.Client, opts ...RedisResolverCacheOption) *RedisResolverCache {
	cache := &RedisResolverCache{
		client:     client,
		ownsClient: false,
		logger:     zap.NewNop(),
	}

	for _, opt := range opts {
		opt(cache)
	}

	return cache
}

// cacheKey generates the cache key for a location reference
func (c *RedisResolverCache) cacheKey(ref location.Ref) string {
	return fmt.Sprintf("location:%s:%s", ref.Kind, ref.ID.String())
}

// Get retrieves a cached location. A nil location with a nil error is a miss.
func (c *RedisResolverCache) Get(ctx context.Context, ref location.Ref) (*location.Location, error) {
	key := c.cacheKey(ref)

	data, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		c.logger.Debug("Cache miss for location", zap.String("key", key))
		return nil, nil
	}
	if err != nil {
		c.logger.Error("Failed to get location from cache",
			zap.String("key", key),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get location from cache: %w", err)
	}

	var loc location.Location
	if err := json.Unmarshal(data, &loc); err != nil {
		c.logger.Error("Failed to unmarshal cached location",
			zap.String("key", key),
			zap.Error(err))
		// Delete corrupted cache entry
		_ = c.client.Del(ctx, key)
		return nil, fmt.Errorf("failed to unmarshal location: %w", err)
	}

	c.logger.Debug("Cache hit for location", zap.String("key", key))
	return &loc, nil
}

// Set stores a resolved location under its (kind, id) key
func (c *RedisResolverCache) Set(ctx context.Context, loc *location.Location, ttl time.Duration) error {
	if loc == nil {
		return nil
	}

	if ttl == 0 {
		ttl = defaultResolverTTL
	}

	key := c.cacheKey(loc.Ref())

	data, err := json.Marshal(loc)
	if err != nil {
		c.logger.Error("Failed to marshal location",
			zap.String("key", key),
			zap.Error(err))
		return fmt.Errorf("failed to marshal location: %w", err)
	}

	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		c.logger.Error("Failed to set location in cache",
			zap.String("key", key),
			zap.Error(err))
		return fmt.Errorf("failed to set location in cache: %w", err)
	}

	c.logger.Debug("Cached location",
		zap.String("key", key),
		zap.Duration("ttl", ttl))
	return nil
}

// Invalidate removes a location from the cache after an edit
func (c *RedisResolverCache) Invalidate(ctx context.Context, ref location.Ref) error {
	key := c.cacheKey(ref)

	if err := c.client.Del(ctx, key).Err(); err != nil {
		c.logger.Error("Failed to delete location from cache",
			zap.String("key", key),
			zap.Error(err))
		return fmt.Errorf("failed to delete location from cache: %w", err)
	}

	c.logger.Debug("Deleted location from cache", zap.String("key", key))
	return nil
}

// Close releases the Redis client if this cache created it
func (c *RedisResolverCache) Close() error {
	if c.ownsClient {
		return c.client.Close()
	}
	return nil
}

// Ensure RedisResolverCache implements the resolver cache port
var _ applocation.ResolverCache = (*RedisResolverCache)(nil)
