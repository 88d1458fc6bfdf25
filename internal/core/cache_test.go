package core

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDatasetCache_KeyedByURLAndEntry(t *testing.T) {
	c := NewDatasetCache()
	ctx := context.Background()

	loads := 0
	load := func(context.Context) (*Dataset, error) {
		loads++
		return &Dataset{SnapshotID: string(rune('a' + loads - 1))}, nil
	}

	k1 := CacheKey{URL: "u", Entry: "a.xlsx"}
	k2 := CacheKey{URL: "u", Entry: "b.xlsx"}

	d1, err := c.Get(ctx, k1, load)
	require.NoError(t, err)
	d2, err := c.Get(ctx, k2, load)
	require.NoError(t, err)
	again, err := c.Get(ctx, k1, load)
	require.NoError(t, err)

	assert.Equal(t, 2, loads)
	assert.NotEqual(t, d1.SnapshotID, d2.SnapshotID)
	assert.Same(t, d1, again)
}

func TestDatasetCache_InvalidateClearsAll(t *testing.T) {
	c := NewDatasetCache()
	ctx := context.Background()
	load := func(context.Context) (*Dataset, error) { return &Dataset{}, nil }

	k1 := CacheKey{URL: "u1"}
	k2 := CacheKey{URL: "u2"}
	_, _ = c.Get(ctx, k1, load)
	_, _ = c.Get(ctx, k2, load)

	c.Invalidate()

	_, ok := c.Peek(k1)
	assert.False(t, ok)
	_, ok = c.Peek(k2)
	assert.False(t, ok)
}

func TestDatasetCache_ErrorsAreNotStored(t *testing.T) {
	c := NewDatasetCache()
	key := CacheKey{URL: "u"}
	boom := errors.New("boom")

	_, err := c.Get(context.Background(), key, func(context.Context) (*Dataset, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)

	_, ok := c.Peek(key)
	assert.False(t, ok)
}

func TestDatasetCache_InvalidateDuringLoadDropsResult(t *testing.T) {
	c := NewDatasetCache()
	key := CacheKey{URL: "u"}

	ds, err := c.Get(context.Background(), key, func(context.Context) (*Dataset, error) {
		c.Invalidate()
		return &Dataset{SnapshotID: "stale"}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "stale", ds.SnapshotID, "callers still get the result")

	_, ok := c.Peek(key)
	assert.False(t, ok, "but it is not cached")
}

func TestDatasetCache_Hooks(t *testing.T) {
	c := NewDatasetCache()
	var hits, misses int
	c.OnHit = func() { hits++ }
	c.OnMiss = func() { misses++ }

	load := func(context.Context) (*Dataset, error) { return &Dataset{}, nil }
	key := CacheKey{URL: "u"}
	_, _ = c.Get(context.Background(), key, load)
	_, _ = c.Get(context.Background(), key, load)
	_, _ = c.Get(context.Background(), key, load)

	assert.Equal(t, 1, misses)
	assert.Equal(t, 2, hits)
}
