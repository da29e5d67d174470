package shipment

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T, ttl time.Duration) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCache(client, ttl), mr
}

func TestCacheRoundTrip(t *testing.T) {
	cache, _ := newTestCache(t, time.Minute)
	ctx := context.Background()

	snap := NewShipment("EXP-2026-0042")
	snap.Products[0].Description = "ceramic tiles"
	require.NoError(t, cache.Set(ctx, snap))

	got, ok := cache.Get(ctx, "EXP-2026-0042")
	require.True(t, ok)
	assert.Equal(t, "EXP-2026-0042", got.JobID)
	assert.Equal(t, "ceramic tiles", got.Products[0].Description)
}

func TestCacheMiss(t *testing.T) {
	cache, _ := newTestCache(t, time.Minute)

	got, ok := cache.Get(context.Background(), "EXP-2026-9999")
	assert.False(t, ok)
	assert.Nil(t, got)
}

func TestCacheEntriesExpire(t *testing.T) {
	cache, mr := newTestCache(t, 10*time.Second)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, NewShipment("EXP-2026-0042")))
	mr.FastForward(11 * time.Second)

	_, ok := cache.Get(ctx, "EXP-2026-0042")
	assert.False(t, ok)
}

func TestCacheInvalidate(t *testing.T) {
	cache, _ := newTestCache(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, NewShipment("EXP-2026-0042")))
	require.NoError(t, cache.Invalidate(ctx, "EXP-2026-0042"))

	_, ok := cache.Get(ctx, "EXP-2026-0042")
	assert.False(t, ok)
}

func TestCacheCorruptPayloadIsAMiss(t *testing.T) {
	cache, mr := newTestCache(t, time.Minute)

	require.NoError(t, mr.Set(cacheKey("EXP-2026-0042"), "{not json"))
	_, ok := cache.Get(context.Background(), "EXP-2026-0042")
	assert.False(t, ok)
}

func TestCacheSetRequiresJobID(t *testing.T) {
	cache, _ := newTestCache(t, time.Minute)
	assert.Error(t, cache.Set(context.Background(), &Shipment{}))
}

func TestNilCacheDegradesToMiss(t *testing.T) {
	var cache *Cache
	ctx := context.Background()

	_, ok := cache.Get(ctx, "EXP-2026-0042")
	assert.False(t, ok)
	assert.NoError(t, cache.Set(ctx, NewShipment("EXP-2026-0042")))
	assert.NoError(t, cache.Invalidate(ctx, "EXP-2026-0042"))
}
