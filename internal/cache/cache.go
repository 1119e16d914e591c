package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotilytics/internal/shared"
)

// DefaultTTL is the lifetime of an entry when no TTL is configured.
const DefaultTTL = 24 * time.Hour

const keyPrefix = "spotify"

// Store is a byte-oriented key/value store with per-entry expiry.
//
// Implementations must be safe for concurrent use; concurrent writers to one key resolve last-writer-wins.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	DeletePrefix(ctx context.Context, prefix string) (int, error)
	Close() error
}

// Sweeper is implemented by stores that keep expired entries on disk until removed.
type Sweeper interface {
	Sweep() (int, error)
}

// Gateway namespaces cache entries per user on top of a [Store].
type Gateway struct {
	store  Store
	ttl    time.Duration
	logger *log.Logger
}

// NewGateway returns a gateway over store. A non-positive ttl selects [DefaultTTL].
func NewGateway(store Store, ttl time.Duration, logger *log.Logger) *Gateway {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Gateway{store: store, ttl: ttl, logger: shared.ComponentLogger(logger, "cache")}
}

// TTL returns the default entry lifetime.
func (g *Gateway) TTL() time.Duration { return g.ttl }

// Key builds the cache key for userID and the ordered parts.
func Key(userID string, parts ...any) string {
	var b strings.Builder
	b.WriteString(keyPrefix)
	b.WriteByte('_')
	b.WriteString(userID)
	for _, p := range parts {
		b.WriteByte('_')
		fmt.Fprint(&b, p)
	}
	return b.String()
}

// UserPrefix is the prefix shared by every key of userID.
func UserPrefix(userID string) string {
	return keyPrefix + "_" + userID + "_"
}

// Fetch returns the cached value for (userID, parts) or calls produce and caches its result.
//
// An empty userID or a nil gateway bypasses the cache entirely. A non-positive ttl uses the gateway default.
func Fetch[T any](ctx context.Context, g *Gateway, userID string, parts []any, ttl time.Duration, produce func(context.Context) (T, error)) (T, error) {
	if g == nil || userID == "" {
		return produce(ctx)
	}

	key := Key(userID, parts...)
	if raw, ok, err := g.store.Get(ctx, key); err != nil {
		g.logger.Warn("cache read failed", "key", key, "err", err)
	} else if ok {
		var v T
		if err := json.Unmarshal(raw, &v); err == nil {
			g.logger.Debug("cache hit", "key", key)
			return v, nil
		} else {
			g.logger.Warn("discarding undecodable cache entry", "key", key, "err", err)
		}
	}

	g.logger.Debug("cache miss", "key", key)
	v, err := produce(ctx)
	if err != nil {
		return v, err
	}

	if ttl <= 0 {
		ttl = g.ttl
	}
	raw, err := json.Marshal(v)
	if err != nil {
		g.logger.Warn("cache encode failed", "key", key, "err", err)
		return v, nil
	}
	if err := g.store.Set(ctx, key, raw, ttl); err != nil {
		g.logger.Warn("cache write failed", "key", key, "err", err)
	}
	return v, nil
}

// ClearUser deletes every entry belonging to userID.
func (g *Gateway) ClearUser(ctx context.Context, userID string) (int, error) {
	if userID == "" {
		return 0, nil
	}
	n, err := g.store.DeletePrefix(ctx, UserPrefix(userID))
	if err != nil {
		return n, fmt.Errorf("failed to clear cache for %s: %w", userID, err)
	}
	g.logger.Info("cleared user cache", "user", userID, "entries", n)
	return n, nil
}

// Invalidate deletes the single entry for (userID, parts).
func (g *Gateway) Invalidate(ctx context.Context, userID string, parts ...any) error {
	if userID == "" {
		return nil
	}
	key := Key(userID, parts...)
	if err := g.store.Delete(ctx, key); err != nil {
		return fmt.Errorf("failed to invalidate %s: %w", key, err)
	}
	return nil
}

// Sweep drops expired entries for every user when the store supports it.
func (g *Gateway) Sweep() (int, error) {
	s, ok := g.store.(Sweeper)
	if !ok {
		return 0, nil
	}
	n, err := s.Sweep()
	if err != nil {
		return n, fmt.Errorf("failed to sweep cache: %w", err)
	}
	if n > 0 {
		g.logger.Info("swept expired entries", "entries", n)
	}
	return n, nil
}

// Close releases the underlying store.
func (g *Gateway) Close() error { return g.store.Close() }
