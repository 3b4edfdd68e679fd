package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	lib_store "github.com/eko/gocache/lib/v4/store"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*RedisStore[bool], *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})

	return NewRedisStore[bool](client), mr
}

func TestRedisStoreRoundTrip(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k1", true))

	value, err := store.Get(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, true, value)
}

func TestRedisStoreMissingKey(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.Get(context.Background(), "absent")

	var notFound *lib_store.NotFound
	assert.ErrorAs(t, err, &notFound)
}

func TestRedisStoreGetWithTTL(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k1", true, lib_store.WithExpiration(time.Minute)))

	value, ttl, err := store.GetWithTTL(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, true, value)
	assert.Greater(t, ttl, time.Duration(0))
}

func TestRedisStoreInvalidateByTag(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k1", true, lib_store.WithTags([]string{"project:p1"})))
	require.NoError(t, store.Set(ctx, "k2", false, lib_store.WithTags([]string{"project:p1"})))
	require.NoError(t, store.Set(ctx, "k3", true, lib_store.WithTags([]string{"project:p2"})))

	require.NoError(t, store.Invalidate(ctx, lib_store.WithInvalidateTags([]string{"project:p1"})))

	var notFound *lib_store.NotFound

	_, err := store.Get(ctx, "k1")
	assert.ErrorAs(t, err, &notFound)

	_, err = store.Get(ctx, "k2")
	assert.ErrorAs(t, err, &notFound)

	// Entries of other tags survive.
	value, err := store.Get(ctx, "k3")
	require.NoError(t, err)
	assert.Equal(t, true, value)
}

func TestRedisStoreDelete(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k1", true))
	require.NoError(t, store.Delete(ctx, "k1"))

	var notFound *lib_store.NotFound

	_, err := store.Get(ctx, "k1")
	assert.ErrorAs(t, err, &notFound)
}

func TestRedisStoreExpiration(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k1", true, lib_store.WithExpiration(time.Second)))

	mr.FastForward(2 * time.Second)

	var notFound *lib_store.NotFound

	_, err := store.Get(ctx, "k1")
	assert.ErrorAs(t, err, &notFound)
}
