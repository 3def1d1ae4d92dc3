package kv

import (
	"context"
	"fmt"
	"time"
)

// Backend selects the storage backend
type Backend string

const (
	// BackendMemory uses the in-memory store
	BackendMemory Backend = "memory"
	// BackendRedis uses Redis
	BackendRedis Backend = "redis"
)

// LogFunc receives factory events as a message plus key/value pairs,
// matching the zap sugared logger signature.
type LogFunc func(msg string, keysAndValues ...interface{})

// Config holds configuration for creating a Store
type Config struct {
	// Backend specifies which storage backend to use
	Backend Backend

	// RedisAddr is the host:port of the Redis server (required for redis)
	RedisAddr string

	// JanitorInterval controls how often the in-memory store evicts
	// expired keys. Default: 30 seconds.
	JanitorInterval time.Duration

	// StartupProbeTimeout bounds the Redis reachability check at startup.
	// Default: 1 second.
	StartupProbeTimeout time.Duration

	// Logger receives fallback events. Nil disables logging.
	Logger LogFunc
}

// StoreFactory creates a Store from a Config
type StoreFactory func(cfg Config) (Store, error)

var factories = make(map[Backend]StoreFactory)

// RegisterBackend registers a store factory for a backend. Called from the
// backend packages' init functions.
func RegisterBackend(backend Backend, factory StoreFactory) {
	factories[backend] = factory
}

// NewStoreFromConfig creates a Store for the configuration. When the redis
// backend is requested but unreachable, the in-memory store is returned so
// the service keeps working without Redis.
func NewStoreFromConfig(cfg Config) (Store, error) {
	if cfg.JanitorInterval == 0 {
		cfg.JanitorInterval = 30 * time.Second
	}
	if cfg.StartupProbeTimeout == 0 {
		cfg.StartupProbeTimeout = time.Second
	}

	switch cfg.Backend {
	case BackendMemory:
		factory, ok := factories[BackendMemory]
		if !ok {
			return nil, fmt.Errorf("memory backend not registered")
		}
		return factory(cfg)

	case BackendRedis:
		return newRedisOrFallback(cfg)

	default:
		return nil, fmt.Errorf("unsupported backend: %s (supported: %s, %s)",
			cfg.Backend, BackendMemory, BackendRedis)
	}
}

func newRedisOrFallback(cfg Config) (Store, error) {
	redisFactory, ok := factories[BackendRedis]
	if !ok {
		return nil, fmt.Errorf("redis backend not registered")
	}
	memoryFactory, ok := factories[BackendMemory]
	if !ok {
		return nil, fmt.Errorf("memory backend not registered")
	}

	if cfg.RedisAddr == "" {
		return nil, fmt.Errorf("redis address is required when backend is 'redis'")
	}

	redisStore, err := redisFactory(cfg)
	if err == nil {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.StartupProbeTimeout)
		defer cancel()
		if pingErr := redisStore.Ping(ctx); pingErr == nil {
			return redisStore, nil
		} else {
			err = pingErr
			redisStore.Close()
		}
	}

	if cfg.Logger != nil {
		cfg.Logger("Redis unavailable; using in-memory store", "error", err.Error())
	}
	return memoryFactory(cfg)
}
