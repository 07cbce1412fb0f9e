package cloudstore

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"

	"github.com/glyphica/iconsearch/core"
	"github.com/glyphica/iconsearch/vectorstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeIndex mimics the managed vector API surface the store uses.
type fakeIndex struct {
	apiKey  string
	vectors map[string]cloudVector

	// distanceMode reports distances instead of scores in /query.
	distanceMode bool

	lastAPIKey string
}

func newFakeIndex(t *testing.T) (*fakeIndex, *httptest.Server) {
	t.Helper()
	f := &fakeIndex{apiKey: "sk-test", vectors: make(map[string]cloudVector)}
	server := httptest.NewServer(f)
	t.Cleanup(server.Close)
	return f, server
}

func (f *fakeIndex) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.lastAPIKey = r.Header.Get("Api-Key")
	w.Header().Set("Content-Type", "application/json")

	switch r.URL.Path {
	case "/describe_index_stats":
		_ = json.NewEncoder(w).Encode(map[string]any{
			"totalVectorCount": len(f.vectors),
			"dimension":        2,
		})

	case "/vectors/upsert":
		var body struct {
			Vectors []cloudVector `json:"vectors"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		for _, v := range body.Vectors {
			f.vectors[v.ID] = v
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"upsertedCount": len(body.Vectors)})

	case "/vectors/fetch":
		var body struct {
			IDs []string `json:"ids"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		found := make(map[string]cloudVector)
		for _, id := range body.IDs {
			if v, ok := f.vectors[id]; ok {
				found[id] = v
			}
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"vectors": found})

	case "/vectors/delete":
		var body struct {
			IDs       []string `json:"ids"`
			DeleteAll bool     `json:"deleteAll"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body.DeleteAll {
			f.vectors = make(map[string]cloudVector)
		}
		for _, id := range body.IDs {
			delete(f.vectors, id)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{})

	case "/query":
		var body struct {
			Vector []float32 `json:"vector"`
			TopK   int       `json:"topK"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		type match struct {
			ID       string            `json:"id"`
			Score    *float32          `json:"score,omitempty"`
			Distance *float32          `json:"distance,omitempty"`
			Metadata map[string]string `json:"metadata"`
		}
		var matches []match
		for id, v := range f.vectors {
			score := vectorstore.CosineSimilarity(body.Vector, v.Values)
			m := match{ID: id, Metadata: v.Metadata}
			if f.distanceMode {
				distance := 1 - score
				m.Distance = &distance
			} else {
				s := score
				m.Score = &s
			}
			matches = append(matches, m)
		}
		sort.Slice(matches, func(i, j int) bool {
			si, sj := matches[i], matches[j]
			scoreOf := func(m match) float32 {
				if m.Score != nil {
					return *m.Score
				}
				return 1 - *m.Distance
			}
			return scoreOf(si) > scoreOf(sj)
		})
		if len(matches) > body.TopK {
			matches = matches[:body.TopK]
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"matches": matches})

	default:
		http.NotFound(w, r)
	}
}

func newTestStore(t *testing.T) (*Store, *fakeIndex) {
	t.Helper()
	fake, server := newFakeIndex(t)

	store, err := New(&vectorstore.CloudConfig{
		Endpoint:  server.URL,
		APIKey:    "sk-test",
		IndexName: "icons",
	})
	require.NoError(t, err)
	require.NoError(t, store.Initialize(context.Background()))
	return store, fake
}

func TestNewRejectsIncompleteConfig(t *testing.T) {
	_, err := New(nil)
	assert.ErrorIs(t, err, vectorstore.ErrMissingConfig)

	_, err = New(&vectorstore.CloudConfig{Endpoint: "https://idx.example.net"})
	assert.ErrorIs(t, err, vectorstore.ErrMissingConfig)
}

func TestRoundTripAndAPIKeyHeader(t *testing.T) {
	ctx := context.Background()
	store, fake := newTestStore(t)

	item := core.VectorStoreItem{
		Id:        "feather__home",
		Embedding: []float32{0.6, 0.8},
		Metadata:  map[string]string{"name": "home", "library": "feather", "tags": "home,house"},
	}
	require.NoError(t, store.AddVector(ctx, item))
	assert.Equal(t, "sk-test", fake.lastAPIKey)

	got, found, err := store.GetVector(ctx, "feather__home")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, item, got)

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestGetVectorsOmitsMissing(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	require.NoError(t, store.BatchAddVectors(ctx, []core.VectorStoreItem{
		{Id: "a", Embedding: []float32{1, 0}, Metadata: map[string]string{"name": "a"}},
		{Id: "b", Embedding: []float32{0, 1}, Metadata: map[string]string{"name": "b"}},
	}))

	items, err := store.GetVectors(ctx, []string{"a", "missing", "b"})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "a", items[0].Id)
	assert.Equal(t, "b", items[1].Id)
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
	assert.Equal(t, "feather", got.Metadata["library"])
	assert.Equal(t, "home,house", got.Metadata["tags"])
}

func TestSearchWithScores(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	require.NoError(t, store.BatchAddVectors(ctx, []core.VectorStoreItem{
		{Id: "near", Embedding: []float32{1, 0}, Metadata: map[string]string{"name": "near"}},
		{Id: "far", Embedding: []float32{0, 1}, Metadata: map[string]string{"name": "far"}},
	}))

	hits, err := store.SearchVectors(ctx, []float32{1, 0}, 10, nil)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "near", hits[0].Id)
	assert.InDelta(t, 1.0, float64(hits[0].Score), 1e-4)
}

func TestSearchConvertsDistanceToScore(t *testing.T) {
	ctx := context.Background()
	store, fake := newTestStore(t)
	fake.distanceMode = true

	require.NoError(t, store.AddVector(ctx, core.VectorStoreItem{
		Id:        "near",
		Embedding: []float32{1, 0},
		Metadata:  map[string]string{"name": "near"},
	}))

	hits, err := store.SearchVectors(ctx, []float32{1, 0}, 10, nil)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	// distance 0 becomes score 1.
	assert.InDelta(t, 1.0, float64(hits[0].Score), 1e-4)
}

func TestSearchFiltersCommaJoinedLists(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	require.NoError(t, store.BatchAddVectors(ctx, []core.VectorStoreItem{
		{Id: "feather__home", Embedding: []float32{1, 0}, Metadata: map[string]string{"name": "home", "tags": "home,house"}},
		{Id: "feather__trash", Embedding: []float32{0.9, 0.1}, Metadata: map[string]string{"name": "trash", "tags": "delete,bin"}},
	}))

	hits, err := store.SearchVectors(ctx, []float32{1, 0}, 10, vectorstore.Filters{"tags": {"bin"}})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "feather__trash", hits[0].Id)
}

func TestRelaySearchRoutesThroughBackend(t *testing.T) {
	ctx := context.Background()

	var gotRequest map[string]any
	relay := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/search", r.URL.Path)
		_ = json.NewDecoder(r.Body).Decode(&gotRequest)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"results": []map[string]any{
				{"id": "feather__home", "score": 0.92, "metadata": map[string]string{"name": "home"}},
			},
		})
	}))
	defer relay.Close()

	store, err := New(&vectorstore.CloudConfig{
		Endpoint:  "https://idx.example.net",
		IndexName: "icons",
		RelayURL:  relay.URL,
	})
	require.NoError(t, err)
	require.True(t, store.Relayed())
	require.NoError(t, store.Initialize(ctx))

	hits, err := store.SearchVectors(ctx, []float32{1, 0}, 5, nil)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "feather__home", hits[0].Id)
	assert.InDelta(t, 0.92, float64(hits[0].Score), 1e-4)

	assert.Equal(t, "icons", gotRequest["collectionName"])
	assert.EqualValues(t, 5, gotRequest["limit"])
}

func TestRelaySearchFailure(t *testing.T) {
	relay := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "error": "store offline"})
	}))
	defer relay.Close()

	store, err := New(&vectorstore.CloudConfig{
		Endpoint:  "https://idx.example.net",
		IndexName: "icons",
		RelayURL:  relay.URL,
	})
	require.NoError(t, err)
	require.NoError(t, store.Initialize(context.Background()))

	_, err = store.SearchVectors(context.Background(), []float32{1, 0}, 5, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store offline")
}

func TestClearDeletesAll(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	require.NoError(t, store.AddVector(ctx, core.VectorStoreItem{
		Id: "a", Embedding: []float32{1, 0}, Metadata: map[string]string{"name": "a"},
	}))
	require.NoError(t, store.Clear(ctx))

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}
