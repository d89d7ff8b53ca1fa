package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCache_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()
	defer c.Close()

	_, found := c.Get(ctx, "missing")
	assert.False(t, found)

	require.NoError(t, c.Set(ctx, "k", []byte("v"), 60))
	got, found := c.Get(ctx, "k")
	require.True(t, found)
	assert.Equal(t, []byte("v"), got)

	require.NoError(t, c.Delete(ctx, "k"))
	_, found = c.Get(ctx, "k")
	assert.False(t, found)
}

func TestMemoryCache_ExpiredEntriesAreInvisible(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()
	defer c.Close()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), -1))
	_, found := c.Get(ctx, "k")
	assert.False(t, found)
}

func TestMemoryCache_Clear(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()
	defer c.Close()

	require.NoError(t, c.Set(ctx, "a", []byte("1"), 60))
	require.NoError(t, c.Set(ctx, "b", []byte("2"), 60))
	require.NoError(t, c.Clear(ctx))

	_, found := c.Get(ctx, "a")
	assert.False(t, found)
	_, found = c.Get(ctx, "b")
	assert.False(t, found)
}

func TestMemoryCache_CloseIsIdempotentAndLeavesCacheUsable(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()

	c.Close()
	c.Close()

	// Reads and writes still work; only background cleanup stops.
	require.NoError(t, c.Set(ctx, "k", []byte("v"), 60))
	_, found := c.Get(ctx, "k")
	assert.True(t, found)
}

func TestMemoryCache_CleanupLoopStopsOnClose(t *testing.T) {
	c := NewMemoryCache()

	done := make(chan struct{})
	go func() {
		c.cleanupExpired() // second loop on the same stop channel
		close(done)
	}()

	c.Close()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("cleanup goroutine did not stop after Close")
	}
}
