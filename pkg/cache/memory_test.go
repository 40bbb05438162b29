package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCache_SetNXAndExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewMemoryCache()
	c.now = func() time.Time { return now }

	ok, err := c.SetNX(ctx, "notified:site-1:three_days", 1, time.Hour)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.SetNX(ctx, "notified:site-1:three_days", 1, time.Hour)
	require.NoError(t, err)
	assert.False(t, ok)

	now = now.Add(time.Hour)
	ok, err = c.SetNX(ctx, "notified:site-1:three_days", 1, time.Hour)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMemoryCache_DeleteReleasesKey(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()

	ok, err := c.SetNX(ctx, "k", "v", 0)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, c.Delete(ctx, "k"))
	ok, err = c.SetNX(ctx, "k", "v", 0)
	require.NoError(t, err)
	assert.True(t, ok)
}
