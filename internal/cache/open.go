package cache

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotilytics/internal/shared"
)

// Open builds the gateway selected by cfg.Backend.
func Open(ctx context.Context, cfg shared.CacheConfig, logger *log.Logger) (*Gateway, error) {
	var store Store
	switch cfg.Backend {
	case "", shared.CacheBackendMemory:
		store = NewMemoryStore()
	case shared.CacheBackendBolt:
		path := cfg.BoltPath
		if path == "" {
			path = "spotilytics.cache"
		}
		bs, err := OpenBoltStore(path)
		if err != nil {
			return nil, err
		}
		store = bs
	case shared.CacheBackendRedis:
		rs := NewRedisStore(RedisConfig{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB, Password: cfg.Redis.Password}, logger)
		if err := rs.Ping(ctx); err != nil {
			rs.Close()
			return nil, fmt.Errorf("failed to reach redis at %s: %w", cfg.Redis.Addr, err)
		}
		store = rs
	default:
		return nil, fmt.Errorf("%w: unknown cache backend %q", shared.ErrInvalidConfig, cfg.Backend)
	}

	return NewGateway(store, cfg.CacheTTL(), logger), nil
}
