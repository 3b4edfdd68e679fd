package xcache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	gocache "github.com/patrickmn/go-cache"

	"github.com/gmcdash/gmcdash/internal/pkg/xredis"
)

func TestNewMemory(t *testing.T) {
	client := gocache.New(5*time.Minute, 10*time.Minute)
	cache := NewMemory[string](client)

	ctx := context.Background()

	err := cache.Set(ctx, "test-key", "test-value")
	require.NoError(t, err)

	value, err := cache.Get(ctx, "test-key")
	require.NoError(t, err)
	require.Equal(t, "test-value", value)

	require.Equal(t, "cache", cache.GetType())
}

func TestNewMemoryWithOptions(t *testing.T) {
	cache := NewMemoryWithOptions[int](5*time.Minute, 10*time.Minute)

	ctx := context.Background()

	err := cache.Set(ctx, "number", 42)
	require.NoError(t, err)

	value, err := cache.Get(ctx, "number")
	require.NoError(t, err)
	require.Equal(t, 42, value)
}

func TestNewRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	defer mr.Close()

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	cache := NewRedis[string](client)

	ctx := context.Background()

	err := cache.Set(ctx, "redis-key", "redis-value")
	require.NoError(t, err)

	value, err := cache.Get(ctx, "redis-key")
	require.NoError(t, err)
	require.Equal(t, "redis-value", value)

	require.Equal(t, "cache", cache.GetType())
}

func TestNewTwoLevel(t *testing.T) {
	memClient := gocache.New(5*time.Minute, 10*time.Minute)
	memCache := NewMemory[string](memClient)

	mr := miniredis.RunT(t)
	defer mr.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	redisCache := NewRedis[string](redisClient)

	cache := NewTwoLevel[string](memCache, redisCache)

	ctx := context.Background()

	// Set should reach both levels.
	err := cache.Set(ctx, "two-level-key", "two-level-value")
	require.NoError(t, err)

	value, err := cache.Get(ctx, "two-level-key")
	require.NoError(t, err)
	require.Equal(t, "two-level-value", value)

	// Clear memory cache to test Redis fallback.
	err = memCache.Clear(ctx)
	require.NoError(t, err)

	value, err = cache.Get(ctx, "two-level-key")
	require.NoError(t, err)
	require.Equal(t, "two-level-value", value)

	require.Equal(t, "chain", cache.GetType())
}

func TestNewFromConfig_Memory(t *testing.T) {
	cfg := Config{
		Mode: ModeMemory,
		Memory: MemoryConfig{
			Expiration:      5 * time.Minute,
			CleanupInterval: 10 * time.Minute,
		},
	}

	cache := NewFromConfig[string](cfg)

	ctx := context.Background()

	err := cache.Set(ctx, "memory-config-key", "memory-config-value")
	require.NoError(t, err)

	value, err := cache.Get(ctx, "memory-config-key")
	require.NoError(t, err)
	require.Equal(t, "memory-config-value", value)

	require.Equal(t, "cache", cache.GetType())
}

func TestNewFromConfig_Redis(t *testing.T) {
	mr := miniredis.RunT(t)
	defer mr.Close()

	cfg := Config{
		Mode: ModeRedis,
		Redis: xredis.Config{
			Addr:       mr.Addr(),
			Expiration: 5 * time.Minute,
		},
	}

	cache := NewFromConfig[string](cfg)

	ctx := context.Background()

	err := cache.Set(ctx, "redis-config-key", "redis-config-value")
	require.NoError(t, err)

	value, err := cache.Get(ctx, "redis-config-key")
	require.NoError(t, err)
	require.Equal(t, "redis-config-value", value)

	require.Equal(t, "cache", cache.GetType())
}

func TestNewFromConfig_RedisWithoutAddr(t *testing.T) {
	cfg := Config{
		Mode: ModeRedis,
	}

	require.Panics(t, func() {
		_ = NewFromConfig[string](cfg)
	})
}
