package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/inkpost/inkpost-backend/internal/metrics"
	"github.com/inkpost/inkpost-backend/pkg/kv"
	_ "github.com/inkpost/inkpost-backend/pkg/kv/memory" // register memory backend
	_ "github.com/inkpost/inkpost-backend/pkg/kv/redis"  // register redis backend
)

// Cache wraps the kv store with JSON helpers and hit/miss metrics. It holds
// session tokens and short-lived response data.
type Cache struct {
	store   kv.Store
	logger  *zap.SugaredLogger
	metrics *metrics.Metrics
}

// NewCache creates a cache backed by Redis when reachable, falling back to
// the in-memory store otherwise.
func NewCache(redisAddr string, logger *zap.SugaredLogger, m *metrics.Metrics) (*Cache, error) {
	var logFn kv.LogFunc
	if logger != nil {
		logFn = logger.Warnw
	}

	backend := kv.BackendRedis
	if redisAddr == "" {
		backend = kv.BackendMemory
	}

	store, err := kv.NewStoreFromConfig(kv.Config{
		Backend:   backend,
		RedisAddr: redisAddr,
		Logger:    logFn,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create kv store: %w", err)
	}

	return &Cache{
		store:   store,
		logger:  logger,
		metrics: m,
	}, nil
}

// Ping checks the backing store
func (c *Cache) Ping(ctx context.Context) error {
	return c.store.Ping(ctx)
}

// Close releases the backing store
func (c *Cache) Close() error {
	return c.store.Close()
}

// Set stores a raw string value with a TTL
func (c *Cache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return c.store.SetString(ctx, key, value, ttl)
}

// Get retrieves a raw string value. Returns kv.ErrNotFound on miss.
func (c *Cache) Get(ctx context.Context, key string) (string, error) {
	value, err := c.store.GetString(ctx, key)
	if err != nil {
		if c.metrics != nil {
			c.metrics.RecordCacheMiss(ctx, key)
		}
		return "", err
	}
	if c.metrics != nil {
		c.metrics.RecordCacheHit(ctx, key)
	}
	return value, nil
}

// Delete removes keys and reports how many existed
func (c *Cache) Delete(ctx context.Context, keys ...string) (int64, error) {
	return c.store.Del(ctx, keys...)
}

// SetJSON marshals and stores a value with a TTL
func (c *Cache) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value: %w", err)
	}
	return c.store.Set(ctx, key, data, ttl)
}

// GetJSON retrieves and unmarshals a value into dest
func (c *Cache) GetJSON(ctx context.Context, key string, dest interface{}) error {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if c.metrics != nil {
			c.metrics.RecordCacheMiss(ctx, key)
		}
		return err
	}
	if c.metrics != nil {
		c.metrics.RecordCacheHit(ctx, key)
	}
	return json.Unmarshal(data, dest)
}
