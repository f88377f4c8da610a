package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryGetSet(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	_, ok, err := m.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, m.Set(ctx, "key", "value", time.Minute))
	value, ok, err := m.Get(ctx, "key")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "value", value)
	assert.Equal(t, 1, m.Len())
}

func TestMemoryExpiry(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "stale", "value", -time.Second))
	_, ok, err := m.Get(ctx, "stale")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 0, m.Len(), "expired entries are dropped on read")
}

func TestMemoryOverwrite(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "key", "old", time.Minute))
	require.NoError(t, m.Set(ctx, "key", "new", time.Minute))

	value, ok, _ := m.Get(ctx, "key")
	assert.True(t, ok)
	assert.Equal(t, "new", value)
	assert.Equal(t, 1, m.Len())
}
