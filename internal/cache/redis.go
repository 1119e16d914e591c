package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotilytics/internal/shared"
	"github.com/redis/go-redis/v9"
)

// RedisConfig holds connection settings for [NewRedisStore].
type RedisConfig struct {
	Addr     string
	DB       int
	Password string
}

// RedisStore keeps entries in Redis so several processes share one cache.
type RedisStore struct {
	rdb    *redis.Client
	logger *log.Logger
}

func NewRedisStore(cfg RedisConfig, logger *log.Logger) *RedisStore {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		DB:       cfg.DB,
		Password: cfg.Password,
	})
	return &RedisStore{rdb: rdb, logger: shared.ComponentLogger(logger, "redis")}
}

// Ping checks connectivity.
func (r *RedisStore) Ping(ctx context.Context) error {
	if err := r.rdb.Ping(ctx).Err(); err != nil {
		r.logger.Warn("PING failed", "err", err)
		return err
	}
	return nil
}

func (r *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := r.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		r.logger.Debug("GET failed", "key", key, "err", err)
		return nil, false, err
	}
	return b, true, nil
}

func (r *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := r.rdb.Set(ctx, key, value, ttl).Err(); err != nil {
		r.logger.Debug("SET failed", "key", key, "err", err)
		return err
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, key string) error {
	return r.rdb.Del(ctx, key).Err()
}

// DeletePrefix scans for keys matching prefix and deletes them in batches.
func (r *RedisStore) DeletePrefix(ctx context.Context, prefix string) (int, error) {
	pattern := escapeGlob(prefix) + "*"

	var (
		cursor uint64
		total  int
	)
	for {
		keys, next, err := r.rdb.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return total, fmt.Errorf("scan %q: %w", pattern, err)
		}
		if len(keys) > 0 {
			n, err := r.rdb.Del(ctx, keys...).Result()
			if err != nil {
				return total, fmt.Errorf("del %d keys: %w", len(keys), err)
			}
			total += int(n)
		}
		if next == 0 {
			break
		}
		cursor = next
	}
	r.logger.Debug("DEL prefix", "prefix", prefix, "deleted", total)
	return total, nil
}

func (r *RedisStore) Close() error {
	if r.rdb == nil {
		return nil
	}
	return r.rdb.Close()
}

// escapeGlob escapes the characters Redis MATCH patterns treat specially.
func escapeGlob(s string) string {
	var b strings.Builder
	for _, c := range s {
		switch c {
		case '*', '?', '[', ']', '\\', '^':
			b.WriteByte('\\')
		}
		b.WriteRune(c)
	}
	return b.String()
}
