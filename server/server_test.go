package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/glyphica/iconsearch/core"
	"github.com/glyphica/iconsearch/search"
	"github.com/glyphica/iconsearch/vectorstore"
	"github.com/glyphica/iconsearch/vectorstore/cloudstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubService struct {
	searchResults []core.SearchResult
	searchMode    search.SearchMode
	lastQuery     string
	lastLimit     int

	hits       []vectorstore.SearchHit
	hitsErr    error
	lastVector []float32
	lastFilter vectorstore.Filters

	filterOptions core.FilterOptions

	switchedTo vectorstore.Config
	switchErr  error

	tagID, tagValue string
	tagErr          error

	reembedded []search.ReembedItem
	reembedErr error
}

func (s *stubService) SearchIcons(ctx context.Context, query string, filters core.FilterOptions, limit int) ([]core.SearchResult, search.SearchMode) {
	s.lastQuery = query
	s.lastLimit = limit
	return s.searchResults, s.searchMode
}

func (s *stubService) SearchByEmbedding(ctx context.Context, embedding []float32, limit int, filters vectorstore.Filters) ([]vectorstore.SearchHit, error) {
	s.lastVector = embedding
	s.lastLimit = limit
	s.lastFilter = filters
	return s.hits, s.hitsErr
}

func (s *stubService) FilterOptions() core.FilterOptions { return s.filterOptions }

func (s *stubService) SwitchVectorStore(ctx context.Context, config vectorstore.Config) error {
	if s.switchErr != nil {
		return s.switchErr
	}
	s.switchedTo = config
	return nil
}

func (s *stubService) UpdateIconTag(ctx context.Context, id, newTag string) error {
	if s.tagErr != nil {
		return s.tagErr
	}
	s.tagID, s.tagValue = id, newTag
	return nil
}

func (s *stubService) ReembedIcons(ctx context.Context, items []search.ReembedItem) error {
	if s.reembedErr != nil {
		return s.reembedErr
	}
	s.reembedded = items
	return nil
}

func newTestServer(t *testing.T, service *stubService, opts ...Option) *httptest.Server {
	t.Helper()
	srv, err := New(Config{ListenAddr: "127.0.0.1:0"}, service, opts...)
	require.NoError(t, err)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(raw))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeInto(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func TestNewValidation(t *testing.T) {
	_, err := New(Config{}, &stubService{})
	assert.Error(t, err)

	_, err = New(Config{ListenAddr: ":0"}, nil)
	assert.Error(t, err)
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, &stubService{})

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	decodeInto(t, resp, &body)
	assert.Equal(t, "ok", body["status"])
}

func TestSearchTextQuery(t *testing.T) {
	service := &stubService{
		searchResults: []core.SearchResult{
			{Icon: core.Icon{Id: "feather__home", Name: "home", Library: "feather"}, Score: 0.92},
		},
		searchMode: search.ModeVector,
	}
	ts := newTestServer(t, service)

	resp := postJSON(t, ts.URL+"/api/search", map[string]any{
		"query": "home",
		"limit": 5,
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body searchResponse
	decodeInto(t, resp, &body)
	assert.True(t, body.Success)
	assert.Equal(t, search.ModeVector, body.Mode)
	require.Len(t, body.Results, 1)
	assert.Equal(t, "feather__home", body.Results[0].Icon.Id)
	assert.InDelta(t, 0.92, body.Results[0].Score, 1e-6)

	assert.Equal(t, "home", service.lastQuery)
	assert.Equal(t, 5, service.lastLimit)
}

func TestSearchDefaultLimit(t *testing.T) {
	service := &stubService{searchMode: search.ModeNone}
	ts := newTestServer(t, service)

	postJSON(t, ts.URL+"/api/search", map[string]any{"query": "x"})
	assert.Equal(t, defaultSearchLimit, service.lastLimit)
}

func TestSearchRelayedEmbedding(t *testing.T) {
	service := &stubService{
		hits: []vectorstore.SearchHit{
			{Id: "feather__home", Score: 0.8, Metadata: map[string]string{"name": "home"}},
		},
	}
	ts := newTestServer(t, service)

	resp := postJSON(t, ts.URL+"/api/search", map[string]any{
		"queryEmbedding": []float32{0.1, 0.2},
		"limit":          3,
		"filters":        map[string]any{"libraries": []string{"feather"}, "tags": []string{"home"}},
		"collectionName": "icons",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body relayResponse
	decodeInto(t, resp, &body)
	assert.True(t, body.Success)
	require.Len(t, body.Results, 1)
	assert.Equal(t, "feather__home", body.Results[0].Id)

	assert.Equal(t, []float32{0.1, 0.2}, service.lastVector)
	assert.Equal(t, []string{"feather"}, service.lastFilter[vectorstore.FieldLibrary])
	assert.Equal(t, []string{"home"}, service.lastFilter[vectorstore.FieldTags])
}

func TestSearchRelayedEmbeddingFailure(t *testing.T) {
	service := &stubService{hitsErr: search.ErrStoreUnavailable}
	ts := newTestServer(t, service)

	// Relay failures come back as success=false with HTTP 200, so the
	// relaying client can fall back without treating it as transport
	// trouble.
	resp := postJSON(t, ts.URL+"/api/search", map[string]any{
		"queryEmbedding": []float32{1},
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body relayResponse
	decodeInto(t, resp, &body)
	assert.False(t, body.Success)
	assert.Contains(t, body.Error, "unavailable")
}

func TestSearchRejectsMalformedBody(t *testing.T) {
	ts := newTestServer(t, &stubService{})

	resp, err := http.Post(ts.URL+"/api/search", "application/json", bytes.NewReader([]byte("{")))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestFilters(t *testing.T) {
	service := &stubService{
		filterOptions: core.FilterOptions{
			Libraries:  []string{"bootstrap", "feather"},
			Categories: []string{"Buildings"},
			Tags:       []string{"home"},
		},
	}
	ts := newTestServer(t, service)

	resp, err := http.Get(ts.URL + "/api/filters")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body core.FilterOptions
	decodeInto(t, resp, &body)
	assert.Equal(t, service.filterOptions, body)
}

func TestVectorConfigSwitch(t *testing.T) {
	service := &stubService{}
	ts := newTestServer(t, service)

	resp := postJSON(t, ts.URL+"/api/vector-config", vectorstore.Config{
		Type:  vectorstore.BackendCloud,
		Cloud: &vectorstore.CloudConfig{Endpoint: "https://idx.example.net", IndexName: "icons"},
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, vectorstore.BackendCloud, service.switchedTo.Type)
}

func TestVectorConfigRejectsBadBackend(t *testing.T) {
	service := &stubService{switchErr: vectorstore.ErrUnsupportedBackend}
	ts := newTestServer(t, service)

	resp := postJSON(t, ts.URL+"/api/vector-config", map[string]any{"Type": "exotic"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestTags(t *testing.T) {
	service := &stubService{}
	ts := newTestServer(t, service)

	resp := postJSON(t, ts.URL+"/api/tags", tagRequest{ID: "feather__home", NewTag: "dwelling"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "feather__home", service.tagID)
	assert.Equal(t, "dwelling", service.tagValue)
}

func TestTagsErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"unknown icon", search.ErrIconNotFound, http.StatusNotFound},
		{"empty tag", search.ErrEmptyTag, http.StatusBadRequest},
		{"store failure", assert.AnError, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t, &stubService{tagErr: tt.err})
			resp := postJSON(t, ts.URL+"/api/tags", tagRequest{ID: "x", NewTag: "y"})
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
		})
	}
}

func TestEmbeddingsRequiresAuth(t *testing.T) {
	service := &stubService{}
	ts := newTestServer(t, service)

	// Default checker denies everything.
	resp := postJSON(t, ts.URL+"/api/embeddings", embeddingsRequest{})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Empty(t, service.reembedded)
}

func TestEmbeddingsWithBearerToken(t *testing.T) {
	service := &stubService{}
	ts := newTestServer(t, service, WithAuth(BearerToken{Token: "s3cret"}))

	payload, err := json.Marshal(embeddingsRequest{Items: []search.ReembedItem{
		{Icon: core.Icon{Id: "feather__home", Name: "home", Library: "feather"}, Embedding: []float32{1, 0}},
	}})
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPost, ts.URL+"/api/embeddings", bytes.NewReader(payload))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer s3cret")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, service.reembedded, 1)
	assert.Equal(t, "feather__home", service.reembedded[0].Icon.Id)

	// Wrong token still bounces.
	req2, err := http.NewRequest(http.MethodPost, ts.URL+"/api/embeddings", bytes.NewReader(payload))
	require.NoError(t, err)
	req2.Header.Set("Authorization", "Bearer wrong")
	resp2, err := http.DefaultClient.Do(req2)
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp2.StatusCode)
}

// The relay loop closes end to end: a cloudstore in relay mode pointed
// at this server gets hits back from the service.
func TestRelayLoopWithCloudStore(t *testing.T) {
	service := &stubService{
		hits: []vectorstore.SearchHit{{Id: "feather__home", Score: 0.9}},
	}
	ts := newTestServer(t, service)

	store, err := cloudstore.New(&vectorstore.CloudConfig{
		Endpoint:  "https://unused.example.net",
		IndexName: "icons",
		RelayURL:  ts.URL,
	})
	require.NoError(t, err)
	require.NoError(t, store.Initialize(context.Background()))

	hits, err := store.SearchVectors(context.Background(), []float32{1, 0}, 5, nil)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "feather__home", hits[0].Id)
}
