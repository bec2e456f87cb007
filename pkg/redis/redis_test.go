package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisabledClientNoOps(t *testing.T) {
	client := Disabled()

	assert.False(t, client.Enabled())
	assert.NoError(t, client.Close())
}

func TestCacheDisabledDegradesGracefully(t *testing.T) {
	cache := NewCache(Disabled(), "vista")
	ctx := context.Background()

	var out string
	hit, err := cache.Get(ctx, "k", &out)
	require.NoError(t, err)
	assert.False(t, hit)

	assert.NoError(t, cache.Set(ctx, "k", "v", TTLShort))

	stored, err := cache.SetNX(ctx, "k", "v", TTLShort)
	require.NoError(t, err)
	assert.True(t, stored, "disabled dedup must not suppress work")

	assert.NoError(t, cache.Delete(ctx, "k"))
}

func TestLimiterDisabledAlwaysAllows(t *testing.T) {
	limiter := NewLimiter(Disabled(), "test", 1, time.Second)

	for i := 0; i < 10; i++ {
		allowed, err := limiter.Allow(context.Background())
		require.NoError(t, err)
		assert.True(t, allowed)
	}

	assert.NoError(t, limiter.Wait(context.Background()))
}
