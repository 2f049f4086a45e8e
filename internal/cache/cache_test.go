package cache_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/cache"
)

func TestCacheSetGet(t *testing.T) {
	c := cache.New[string, int](time.Minute, time.Minute)
	defer c.Close()

	c.Set("a", 1)
	c.Set("b", 2)

	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, 1, v)

	_, ok = c.Get("missing")
	assert.False(t, ok)
	assert.Equal(t, 2, c.Len())
}

func TestCacheExpiry(t *testing.T) {
	// Long sweep interval so expiry is observed through the lazy prune path.
	c := cache.New[string, int](20*time.Millisecond, time.Hour)
	defer c.Close()

	c.Set("a", 1)
	time.Sleep(40 * time.Millisecond)

	_, ok := c.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len(), "expired entry should be pruned on access")
}

func TestCacheSweep(t *testing.T) {
	c := cache.New[string, int](10*time.Millisecond, 20*time.Millisecond)
	defer c.Close()

	c.Set("a", 1)
	c.Set("b", 2)

	assert.Eventually(t, func() bool { return c.Len() == 0 }, time.Second, 10*time.Millisecond,
		"sweep should remove expired entries without any reads")
}

func TestCacheInvalidate(t *testing.T) {
	c := cache.New[string, string](time.Minute, time.Minute)
	defer c.Close()

	c.Set("a", "x")
	c.Invalidate("a")
	_, ok := c.Get("a")
	assert.False(t, ok)

	// Invalidating an absent key is a no-op.
	c.Invalidate("missing")
}

func TestCacheClear(t *testing.T) {
	c := cache.New[string, int](time.Minute, time.Minute)
	defer c.Close()

	c.Set("a", 1)
	c.Set("b", 2)
	c.Clear()
	assert.Equal(t, 0, c.Len())
}

func TestCacheSetRefreshesTTL(t *testing.T) {
	c := cache.New[string, int](50*time.Millisecond, time.Hour)
	defer c.Close()

	c.Set("a", 1)
	time.Sleep(30 * time.Millisecond)
	c.Set("a", 2)
	time.Sleep(30 * time.Millisecond)

	v, ok := c.Get("a")
	require.True(t, ok, "rewrite should restart the TTL clock")
	assert.Equal(t, 2, v)
}

func TestCacheCloseIsIdempotent(t *testing.T) {
	c := cache.New[string, int](time.Minute, time.Minute)
	c.Close()
	c.Close()
}
