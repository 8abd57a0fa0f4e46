package cachex

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
)

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()

	t.Run("set and get", func(t *testing.T) {
		require.NoError(t, c.Set(ctx, "k1", "v1", time.Minute))

		got, ok, err := c.Get(ctx, "k1")
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, "v1", got)
	})

	t.Run("miss", func(t *testing.T) {
		_, ok, err := c.Get(ctx, "absent")
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("overwrite", func(t *testing.T) {
		require.NoError(t, c.Set(ctx, "k1", "v2", time.Minute))

		got, ok, err := c.Get(ctx, "k1")
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, "v2", got)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, c.Delete(ctx, "k1"))

		_, ok, err := c.Get(ctx, "k1")
		require.NoError(t, err)
		require.False(t, ok)

		require.NoError(t, c.Delete(ctx, "k1"))
	})

	t.Run("rejects non-positive ttl", func(t *testing.T) {
		require.ErrorIs(t, c.Set(ctx, "k2", "v", 0), ErrInvalidTTL)
		require.ErrorIs(t, c.Set(ctx, "k2", "v", -time.Second), ErrInvalidTTL)
	})
}

func TestMemoryCache_Expiry(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()

	now := time.Now()
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set(ctx, "staged", "secret", 10*time.Minute))

	now = now.Add(9 * time.Minute)
	_, ok, err := c.Get(ctx, "staged")
	require.NoError(t, err)
	require.True(t, ok)

	now = now.Add(2 * time.Minute)
	_, ok, err = c.Get(ctx, "staged")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestRedisCache(t *testing.T) {
	srv := miniredis.RunT(t)
	ctx := context.Background()

	c, err := NewRedisCache(ctx, srv.Addr(), "", 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	require.NoError(t, c.Set(ctx, "k1", "v1", time.Minute))

	got, ok, err := c.Get(ctx, "k1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "v1", got)

	require.NoError(t, c.Delete(ctx, "k1"))
	_, ok, err = c.Get(ctx, "k1")
	require.NoError(t, err)
	require.False(t, ok)

	t.Run("expiry", func(t *testing.T) {
		require.NoError(t, c.Set(ctx, "staged", "secret", 10*time.Minute))
		srv.FastForward(11 * time.Minute)

		_, ok, err := c.Get(ctx, "staged")
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("rejects non-positive ttl", func(t *testing.T) {
		require.ErrorIs(t, c.Set(ctx, "k2", "v", 0), ErrInvalidTTL)
	})
}

func TestRedisCache_BadAddr(t *testing.T) {
	_, err := NewRedisCache(context.Background(), "127.0.0.1:1", "", 0)
	require.Error(t, err)
}
