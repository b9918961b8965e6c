package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/phrazzld/taskapi/internal/config"
	"github.com/redis/go-redis/v9"
)

const connectTimeout = 5 * time.Second

// RedisCache is a Cache backed by a Redis server.
type RedisCache struct {
	client    *redis.Client
	keyPrefix string
}

var _ Cache = (*RedisCache)(nil)

// NewRedisCache connects to the server described by cfg and verifies the
// connection with a PING. Every key is stored under keyPrefix.
func NewRedisCache(ctx context.Context, cfg config.RedisConfig, keyPrefix string) (*RedisCache, error) {
	c := NewRedisCacheFromConfig(cfg, keyPrefix)

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := c.Ping(pingCtx); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr(), err)
	}

	slog.Info("redis cache connected",
		slog.String("component", "cache"),
		slog.String("addr", cfg.Addr()),
		slog.Int("db", cfg.DB))

	return c, nil
}

// NewRedisCacheFromConfig builds a client for cfg without contacting the
// server. Connections are established lazily on first use.
func NewRedisCacheFromConfig(cfg config.RedisConfig, keyPrefix string) *RedisCache {
	dialer := &net.Dialer{
		Timeout:   cfg.DialTimeout,
		KeepAlive: cfg.KeepAlive,
	}

	client := redis.NewClient(&redis.Options{
		Addr:        cfg.Addr(),
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: cfg.DialTimeout,
		MaxRetries:  cfg.MaxRetries,
		Dialer: func(ctx context.Context, network, addr string) (net.Conn, error) {
			return dialer.DialContext(ctx, network, addr)
		},
	})

	return NewRedisCacheFromClient(client, keyPrefix)
}

// NewRedisCacheFromClient wraps an existing client.
func NewRedisCacheFromClient(client *redis.Client, keyPrefix string) *RedisCache {
	return &RedisCache{client: client, keyPrefix: keyPrefix}
}

// GetString implements Cache. redis.Nil is reported as a miss.
func (r *RedisCache) GetString(ctx context.Context, key string) (string, bool, error) {
	val, err := r.client.Get(ctx, r.fullKey(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("%w: get %s: %w", ErrUnavailable, key, err)
	}
	return val, true, nil
}

// SetString implements Cache.
func (r *RedisCache) SetString(ctx context.Context, key, value string, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	if err := r.client.Set(ctx, r.fullKey(key), value, ttl).Err(); err != nil {
		return fmt.Errorf("%w: set %s: %w", ErrUnavailable, key, err)
	}
	return nil
}

// Delete implements Cache.
func (r *RedisCache) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.fullKey(key)).Err(); err != nil {
		return fmt.Errorf("%w: delete %s: %w", ErrUnavailable, key, err)
	}
	return nil
}

// Ping implements Cache.
func (r *RedisCache) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return nil
}

// Close implements Cache.
func (r *RedisCache) Close() error {
	return r.client.Close()
}

func (r *RedisCache) fullKey(key string) string {
	return r.keyPrefix + key
}
