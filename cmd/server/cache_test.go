package main

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/phrazzld/taskapi/internal/cache"
	"github.com/phrazzld/taskapi/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func redisConfigFor(t *testing.T, mr *miniredis.Miniredis) config.RedisConfig {
	t.Helper()
	port, err := strconv.Atoi(mr.Port())
	require.NoError(t, err)
	return config.RedisConfig{Host: mr.Host(), Port: port, DialTimeout: 200 * time.Millisecond, MaxRetries: -1}
}

func TestSetupAppCache_Memory(t *testing.T) {
	cfg := testConfig()

	c, err := setupAppCache(context.Background(), cfg, testLogger())

	require.NoError(t, err)
	assert.IsType(t, &cache.MemoryCache{}, c)
}

func TestSetupAppCache_Redis(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig()
	cfg.Cache.Driver = "redis"
	cfg.Cache.KeyPrefix = "taskapi:"
	cfg.Redis = redisConfigFor(t, mr)

	c, err := setupAppCache(context.Background(), cfg, testLogger())
	require.NoError(t, err)
	defer func() { _ = c.Close() }()

	require.NoError(t, c.SetString(context.Background(), "TasksCache", "[]", time.Minute))
	assert.True(t, mr.Exists("taskapi:TasksCache"))
}

func TestSetupAppCache_RedisUnreachable(t *testing.T) {
	mr := miniredis.NewMiniRedis()
	require.NoError(t, mr.Start())
	cfg := testConfig()
	cfg.Cache.Driver = "redis"
	cfg.Redis = redisConfigFor(t, mr)
	mr.Close()

	_, err := setupAppCache(context.Background(), cfg, testLogger())
	assert.ErrorIs(t, err, cache.ErrUnavailable)

	cfg.Cache.FailOpen = true
	c, err := setupAppCache(context.Background(), cfg, testLogger())
	require.NoError(t, err)
	assert.NotNil(t, c)
	_ = c.Close()
}

func TestSetupAppCache_UnknownDriver(t *testing.T) {
	cfg := testConfig()
	cfg.Cache.Driver = "memcached"

	_, err := setupAppCache(context.Background(), cfg, testLogger())
	assert.Error(t, err)
}
