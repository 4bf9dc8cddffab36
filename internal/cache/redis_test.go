package cache_test

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/rueidis"
	"github.com/robalyx/embedder/internal/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type entry struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func setupTest(t *testing.T) (*cache.Redis, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)

	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  []string{mr.Addr()},
		DisableCache: true,
	})
	require.NoError(t, err)
	t.Cleanup(client.Close)

	return cache.NewRedis(client, "test:", zaptest.NewLogger(t)), mr
}

func TestRedisSetGet(t *testing.T) {
	t.Parallel()
	c, mr := setupTest(t)
	ctx := t.Context()

	var missing entry
	found, err := c.Get(ctx, "missing", &missing)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, c.Set(ctx, "entry", entry{Name: "a", Count: 2}, time.Minute))
	assert.True(t, mr.Exists("test:entry"))
	assert.Equal(t, time.Minute, mr.TTL("test:entry"))

	var got entry
	found, err = c.Get(ctx, "entry", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, entry{Name: "a", Count: 2}, got)

	mr.FastForward(2 * time.Minute)

	found, err = c.Get(ctx, "entry", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRedisSetWithoutTTL(t *testing.T) {
	t.Parallel()
	c, mr := setupTest(t)

	require.NoError(t, c.Set(t.Context(), "flag", true, 0))
	assert.Equal(t, time.Duration(0), mr.TTL("test:flag"))
}

func TestRedisDelete(t *testing.T) {
	t.Parallel()
	c, mr := setupTest(t)
	ctx := t.Context()

	require.NoError(t, c.Set(ctx, "a", 1, 0))
	require.NoError(t, c.Set(ctx, "b", 2, 0))
	require.NoError(t, c.Set(ctx, "c", 3, 0))
	require.NoError(t, c.Delete(ctx, "a", "b", "missing"))
	require.NoError(t, c.Delete(ctx))

	assert.False(t, mr.Exists("test:a"))
	assert.False(t, mr.Exists("test:b"))
	assert.True(t, mr.Exists("test:c"))
}

func TestRedisIncrIfExists(t *testing.T) {
	t.Parallel()
	c, _ := setupTest(t)
	ctx := t.Context()

	applied, err := c.IncrIfExists(ctx, "count")
	require.NoError(t, err)
	assert.False(t, applied)

	var count int
	found, err := c.Get(ctx, "count", &count)
	require.NoError(t, err)
	assert.False(t, found, "increment must not create a missing counter")

	require.NoError(t, c.Set(ctx, "count", 2, time.Hour))

	applied, err = c.IncrIfExists(ctx, "count")
	require.NoError(t, err)
	assert.True(t, applied)

	found, err = c.Get(ctx, "count", &count)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 3, count)
}

func TestRedisDropsUndecodableEntries(t *testing.T) {
	t.Parallel()
	c, mr := setupTest(t)

	require.NoError(t, mr.Set("test:broken", "{not json"))

	var got entry
	found, err := c.Get(t.Context(), "broken", &got)
	require.NoError(t, err)
	assert.False(t, found)
	assert.False(t, mr.Exists("test:broken"))
}

func TestNopNeverStores(t *testing.T) {
	t.Parallel()

	c := cache.NewNop()
	ctx := t.Context()

	require.NoError(t, c.Set(ctx, "a", 1, 0))

	var got int
	found, err := c.Get(ctx, "a", &got)
	require.NoError(t, err)
	assert.False(t, found)

	applied, err := c.IncrIfExists(ctx, "a")
	require.NoError(t, err)
	assert.False(t, applied)
}
