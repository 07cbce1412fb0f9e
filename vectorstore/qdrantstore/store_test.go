package qdrantstore

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"

	"github.com/glyphica/iconsearch/core"
	"github.com/glyphica/iconsearch/vectorstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeQdrant is a minimal in-memory stand-in for the Qdrant REST API,
// covering only the endpoints the store uses.
type fakeQdrant struct {
	collection string
	created    bool
	points     map[string]fakePoint // keyed by point uuid
}

type fakePoint struct {
	Vector  []float32      `json:"vector"`
	Payload map[string]any `json:"payload"`
}

func newFakeQdrant(t *testing.T, collection string) (*fakeQdrant, *httptest.Server) {
	t.Helper()
	f := &fakeQdrant{collection: collection, points: make(map[string]fakePoint)}
	server := httptest.NewServer(f)
	t.Cleanup(server.Close)
	return f, server
}

func (f *fakeQdrant) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	base := "/collections/" + f.collection
	path := r.URL.Path

	writeJSON := func(status int, result any) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(map[string]any{"result": result, "status": "ok"})
	}

	switch {
	case path == base && r.Method == http.MethodGet:
		if !f.created {
			writeJSON(http.StatusNotFound, nil)
			return
		}
		writeJSON(http.StatusOK, map[string]any{"status": "green"})

	case path == base && r.Method == http.MethodPut:
		f.created = true
		writeJSON(http.StatusOK, true)

	case path == base && r.Method == http.MethodDelete:
		f.created = false
		f.points = make(map[string]fakePoint)
		writeJSON(http.StatusOK, true)

	case path == base+"/points" && r.Method == http.MethodPut:
		var body struct {
			Points []struct {
				ID      string         `json:"id"`
				Vector  []float32      `json:"vector"`
				Payload map[string]any `json:"payload"`
			} `json:"points"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		for _, p := range body.Points {
			f.points[p.ID] = fakePoint{Vector: p.Vector, Payload: p.Payload}
		}
		writeJSON(http.StatusOK, map[string]any{"status": "completed"})

	case path == base+"/points" && r.Method == http.MethodPost:
		var body struct {
			IDs        []string `json:"ids"`
			WithVector bool     `json:"with_vector"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		var result []map[string]any
		for _, id := range body.IDs {
			p, ok := f.points[id]
			if !ok {
				continue
			}
			entry := map[string]any{"id": id, "payload": p.Payload}
			if body.WithVector {
				entry["vector"] = p.Vector
			}
			result = append(result, entry)
		}
		writeJSON(http.StatusOK, result)

	case path == base+"/points/search" && r.Method == http.MethodPost:
		var body struct {
			Vector []float32 `json:"vector"`
			Limit  int       `json:"limit"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		var result []map[string]any
		for id, p := range f.points {
			result = append(result, map[string]any{
				"id":      id,
				"score":   vectorstore.CosineSimilarity(body.Vector, p.Vector),
				"payload": p.Payload,
			})
		}
		sort.Slice(result, func(i, j int) bool {
			return result[i]["score"].(float32) > result[j]["score"].(float32)
		})
		if len(result) > body.Limit {
			result = result[:body.Limit]
		}
		writeJSON(http.StatusOK, result)

	case path == base+"/points/delete" && r.Method == http.MethodPost:
		var body struct {
			Points []string `json:"points"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		for _, id := range body.Points {
			delete(f.points, id)
		}
		writeJSON(http.StatusOK, map[string]any{"status": "completed"})

	case path == base+"/points/count" && r.Method == http.MethodPost:
		writeJSON(http.StatusOK, map[string]any{"count": len(f.points)})

	default:
		http.NotFound(w, r)
	}
}

func newTestStore(t *testing.T) (*Store, *fakeQdrant) {
	t.Helper()
	fake, server := newFakeQdrant(t, "icons")

	store, err := New(&vectorstore.LocalConfig{URL: server.URL, Collection: "icons"})
	require.NoError(t, err)
	require.NoError(t, store.Initialize(context.Background()))
	return store, fake
}

func TestNewRejectsIncompleteConfig(t *testing.T) {
	_, err := New(nil)
	assert.ErrorIs(t, err, vectorstore.ErrMissingConfig)

	_, err = New(&vectorstore.LocalConfig{URL: "http://localhost:6333"})
	assert.ErrorIs(t, err, vectorstore.ErrMissingConfig)
}

func TestInitializeUnreachableServer(t *testing.T) {
	store, err := New(&vectorstore.LocalConfig{URL: "http://127.0.0.1:1", Collection: "icons"})
	require.NoError(t, err)

	err = store.Initialize(context.Background())
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "reach local vector server"))
}

func TestAddCreatesCollectionLazily(t *testing.T) {
	ctx := context.Background()
	store, fake := newTestStore(t)
	assert.False(t, fake.created)

	err := store.AddVector(ctx, core.VectorStoreItem{
		Id:        "feather__home",
		Embedding: []float32{1, 0},
		Metadata:  map[string]string{"name": "home", "library": "feather"},
	})
	require.NoError(t, err)
	assert.True(t, fake.created)

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestRoundTripPreservesIconID(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	item := core.VectorStoreItem{
		Id:        "feather__home",
		Embedding: []float32{0.6, 0.8},
		Metadata:  map[string]string{"name": "home", "library": "feather", "tags": "home,house"},
	}
	require.NoError(t, store.AddVector(ctx, item))

	got, found, err := store.GetVector(ctx, "feather__home")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, item, got)

	has, err := store.HasVector(ctx, "feather__home")
	require.NoError(t, err)
	assert.True(t, has)
}

func TestGetVectorsPreservesRequestOrder(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	require.NoError(t, store.BatchAddVectors(ctx, []core.VectorStoreItem{
		{Id: "a", Embedding: []float32{1, 0}, Metadata: map[string]string{"name": "a"}},
		{Id: "b", Embedding: []float32{0, 1}, Metadata: map[string]string{"name": "b"}},
	}))

	items, err := store.GetVectors(ctx, []string{"b", "missing", "a"})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "b", items[0].Id)
	assert.Equal(t, "a", items[1].Id)
}

func TestUpdateMergesMetadata(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	require.NoError(t, store.AddVector(ctx, core.VectorStoreItem{
		Id:        "feather__home",
		Embedding: []float32{1, 0},
		Metadata:  map[string]string{"name": "home", "library": "feather"},
	}))
	require.NoError(t, store.UpdateVector(ctx, core.VectorStoreItem{
		Id:        "feather__home",
		Embedding: []float32{0, 1},
		Metadata:  map[string]string{"tags": "home,house"},
	}))

	got, found, err := store.GetVector(ctx, "feather__home")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []float32{0, 1}, got.Embedding)
	assert.Equal(t, "home", got.Metadata["name"])
	assert.Equal(t, "home,house", got.Metadata["tags"])
}

func TestSearchFiltersAndRanks(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	require.NoError(t, store.BatchAddVectors(ctx, []core.VectorStoreItem{
		{Id: "feather__home", Embedding: []float32{1, 0}, Metadata: map[string]string{"name": "home", "library": "feather", "tags": "home,house"}},
		{Id: "bootstrap__house-door", Embedding: []float32{0.9, 0.1}, Metadata: map[string]string{"name": "house-door", "library": "bootstrap", "tags": "house,door"}},
		{Id: "feather__search", Embedding: []float32{0, 1}, Metadata: map[string]string{"name": "search", "library": "feather", "tags": "search"}},
	}))

	hits, err := store.SearchVectors(ctx, []float32{1, 0}, 2, nil)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "feather__home", hits[0].Id)
	assert.Equal(t, "bootstrap__house-door", hits[1].Id)

	// Comma-joined list fields filter on elements.
	hits, err = store.SearchVectors(ctx, []float32{1, 0}, 10, vectorstore.Filters{"tags": {"door"}})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "bootstrap__house-door", hits[0].Id)
}

func TestDeleteAndClear(t *testing.T) {
	ctx := context.Background()
	store, fake := newTestStore(t)

	require.NoError(t, store.BatchAddVectors(ctx, []core.VectorStoreItem{
		{Id: "a", Embedding: []float32{1, 0}, Metadata: map[string]string{"name": "a"}},
		{Id: "b", Embedding: []float32{0, 1}, Metadata: map[string]string{"name": "b"}},
	}))

	require.NoError(t, store.DeleteVector(ctx, "a"))
	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	require.NoError(t, store.Clear(ctx))
	assert.False(t, fake.created)

	// Cleared store is usable again; the collection comes back on write.
	require.NoError(t, store.AddVector(ctx, core.VectorStoreItem{
		Id: "c", Embedding: []float32{1, 1}, Metadata: map[string]string{"name": "c"},
	}))
	count, err = store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestPointIDDeterministic(t *testing.T) {
	assert.Equal(t, pointID("feather__home"), pointID("feather__home"))
	assert.NotEqual(t, pointID("feather__home"), pointID("feather__house"))
}
