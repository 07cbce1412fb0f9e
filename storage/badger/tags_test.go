package badger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTagStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewTagStore(NewTestBackend(t))

	require.NoError(t, store.PutTags(ctx, "feather__home", []string{"home", "house", "building"}))

	tags, found, err := store.GetTags(ctx, "feather__home")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []string{"home", "house", "building"}, tags)
}

func TestTagStoreMissingIcon(t *testing.T) {
	ctx := context.Background()
	store := NewTagStore(NewTestBackend(t))

	_, found, err := store.GetTags(ctx, "feather__absent")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestTagStorePutReplaces(t *testing.T) {
	ctx := context.Background()
	store := NewTagStore(NewTestBackend(t))

	require.NoError(t, store.PutTags(ctx, "feather__home", []string{"home"}))
	require.NoError(t, store.PutTags(ctx, "feather__home", []string{"home", "dwelling"}))

	tags, found, err := store.GetTags(ctx, "feather__home")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []string{"home", "dwelling"}, tags)
}

func TestTagStoreAll(t *testing.T) {
	ctx := context.Background()
	store := NewTagStore(NewTestBackend(t))

	require.NoError(t, store.PutTags(ctx, "feather__home", []string{"home"}))
	require.NoError(t, store.PutTags(ctx, "bootstrap__house-door", []string{"house", "door"}))

	overlays, err := store.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string][]string{
		"feather__home":         {"home"},
		"bootstrap__house-door": {"house", "door"},
	}, overlays)
}

func TestTagStoreAllEmpty(t *testing.T) {
	store := NewTagStore(NewTestBackend(t))

	overlays, err := store.All(context.Background())
	require.NoError(t, err)
	assert.Empty(t, overlays)
}
