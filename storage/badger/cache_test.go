package badger

import (
	"context"
	"testing"

	"github.com/glyphica/iconsearch/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testItems() []core.VectorStoreItem {
	return []core.VectorStoreItem{
		{
			Id:        "feather__home",
			Embedding: []float32{0.1, 0.2, 0.3},
			Metadata:  map[string]string{"name": "home", "library": "feather"},
		},
		{
			Id:        "feather__search",
			Embedding: []float32{-0.4, 0.5, 0.6},
			Metadata:  map[string]string{"name": "search", "library": "feather"},
		},
	}
}

func TestVectorCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	cache := NewVectorCache(NewTestBackend(t))

	items := testItems()
	require.NoError(t, cache.Put(ctx, "icon_vectors_embeddinggemma", items))

	got, found, err := cache.Get(ctx, "icon_vectors_embeddinggemma")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, items, got)
}

func TestVectorCacheMissingKey(t *testing.T) {
	ctx := context.Background()
	cache := NewVectorCache(NewTestBackend(t))

	got, found, err := cache.Get(ctx, "absent")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, got)
}

func TestVectorCachePutReplaces(t *testing.T) {
	ctx := context.Background()
	cache := NewVectorCache(NewTestBackend(t))

	require.NoError(t, cache.Put(ctx, "key", testItems()))

	replacement := []core.VectorStoreItem{
		{Id: "solo", Embedding: []float32{1}, Metadata: map[string]string{"name": "solo"}},
	}
	require.NoError(t, cache.Put(ctx, "key", replacement))

	got, found, err := cache.Get(ctx, "key")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, replacement, got)
}

func TestVectorCacheDelete(t *testing.T) {
	ctx := context.Background()
	cache := NewVectorCache(NewTestBackend(t))

	require.NoError(t, cache.Put(ctx, "key", testItems()))
	require.NoError(t, cache.Delete(ctx, "key"))

	_, found, err := cache.Get(ctx, "key")
	require.NoError(t, err)
	assert.False(t, found)

	// Deleting an absent key is a no-op.
	require.NoError(t, cache.Delete(ctx, "key"))
}

func TestVectorCacheEmptySet(t *testing.T) {
	ctx := context.Background()
	cache := NewVectorCache(NewTestBackend(t))

	require.NoError(t, cache.Put(ctx, "empty", nil))

	got, found, err := cache.Get(ctx, "empty")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Empty(t, got)
}
