package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agora/server/internal/port/outbound"
)

func TestCacheStore(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	store := NewCacheStoreWithClock(func() time.Time { return now })

	t.Run("miss", func(t *testing.T) {
		_, err := store.GetString(ctx, "k")
		assert.ErrorIs(t, err, outbound.ErrCacheMiss)
	})

	t.Run("set and get", func(t *testing.T) {
		require.NoError(t, store.SetString(ctx, "k", "v", outbound.CacheEntryOptions{AbsoluteExpiration: now.Add(time.Minute)}))

		got, err := store.GetString(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, "v", got)
	})

	t.Run("expires at the absolute time", func(t *testing.T) {
		now = now.Add(time.Minute)

		_, err := store.GetString(ctx, "k")
		assert.ErrorIs(t, err, outbound.ErrCacheMiss)
		assert.Equal(t, 0, store.Len())
	})

	t.Run("zero expiration never expires", func(t *testing.T) {
		require.NoError(t, store.SetString(ctx, "forever", "v", outbound.CacheEntryOptions{}))
		now = now.Add(365 * 24 * time.Hour)

		got, err := store.GetString(ctx, "forever")
		require.NoError(t, err)
		assert.Equal(t, "v", got)
	})

	t.Run("remove", func(t *testing.T) {
		require.NoError(t, store.Remove(ctx, "forever"))
		require.NoError(t, store.Remove(ctx, "forever"))

		_, err := store.GetString(ctx, "forever")
		assert.ErrorIs(t, err, outbound.ErrCacheMiss)
	})

	t.Run("canceled context", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		_, err := store.GetString(cctx, "k")
		assert.ErrorIs(t, err, context.Canceled)
	})
}
