// Copyright 2026 Glyphica Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package cloudstore implements the cloud-hosted vector store backend
// against a managed vector-database REST API. Every operation is a
// network call; there is no local persistence. When a relay URL is
// configured, similarity searches are routed through backend HTTP
// endpoints instead of hitting the managed service directly, so
// constrained clients never hold the service API key.
package cloudstore

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/glyphica/iconsearch/core"
	"github.com/glyphica/iconsearch/vectorstore"
)

const defaultRequestTimeout = 30 * time.Second

// Store talks to a managed cloud vector index.
type Store struct {
	config *vectorstore.CloudConfig
	logger *slog.Logger
	client *http.Client

	mu          sync.Mutex
	initialized bool
}

var _ vectorstore.VectorStore = (*Store)(nil)

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the store's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(s *Store) {
		if client != nil {
			s.client = client
		}
	}
}

// New creates a cloud store. No network traffic happens until
// Initialize.
func New(config *vectorstore.CloudConfig, opts ...Option) (*Store, error) {
	if config == nil {
		return nil, fmt.Errorf("%w: cloud settings missing", vectorstore.ErrMissingConfig)
	}
	if config.Endpoint == "" || config.IndexName == "" {
		return nil, fmt.Errorf("%w: cloud endpoint and index name", vectorstore.ErrMissingConfig)
	}

	s := &Store{
		config: &vectorstore.CloudConfig{
			Endpoint:  strings.TrimRight(config.Endpoint, "/"),
			APIKey:    config.APIKey,
			IndexName: config.IndexName,
			RelayURL:  strings.TrimRight(config.RelayURL, "/"),
		},
		logger: slog.Default(),
		client: &http.Client{Timeout: defaultRequestTimeout},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Relayed reports whether searches go through backend endpoints.
func (s *Store) Relayed() bool {
	return s.config.RelayURL != ""
}

// Initialize checks the index is reachable. In relay mode there is
// nothing to verify up front; the relay endpoint is hit on first
// search.
func (s *Store) Initialize(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.initialized {
		return nil
	}
	if s.Relayed() {
		s.initialized = true
		s.logger.Debug("cloud vector store in relay mode", "relay", s.config.RelayURL)
		return nil
	}

	var stats statsResponse
	if err := s.call(ctx, "/describe_index_stats", map[string]any{}, &stats); err != nil {
		return fmt.Errorf("reach cloud index %q: %w", s.config.IndexName, err)
	}

	s.initialized = true
	s.logger.Debug("cloud vector store ready",
		"index", s.config.IndexName,
		"vectors", stats.TotalVectorCount)
	return nil
}

// Close releases nothing; the index is remote.
func (s *Store) Close() error {
	return nil
}

type cloudVector struct {
	ID       string            `json:"id"`
	Values   []float32         `json:"values,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

type statsResponse struct {
	TotalVectorCount int `json:"totalVectorCount"`
	Dimension        int `json:"dimension"`
}

// AddVector upserts one vector.
func (s *Store) AddVector(ctx context.Context, item core.VectorStoreItem) error {
	return s.BatchAddVectors(ctx, []core.VectorStoreItem{item})
}

// BatchAddVectors upserts vectors in one request.
func (s *Store) BatchAddVectors(ctx context.Context, items []core.VectorStoreItem) error {
	if len(items) == 0 {
		return nil
	}
	for i := range items {
		if err := core.ValidateItem(&items[i]); err != nil {
			return err
		}
	}

	vectors := make([]cloudVector, 0, len(items))
	for i := range items {
		vectors = append(vectors, cloudVector{
			ID:       items[i].Id,
			Values:   items[i].Embedding,
			Metadata: items[i].Metadata,
		})
	}
	return s.call(ctx, "/vectors/upsert", map[string]any{
		"vectors":   vectors,
		"namespace": s.config.IndexName,
	}, nil)
}

// GetVector fetches one vector by id.
func (s *Store) GetVector(ctx context.Context, id string) (core.VectorStoreItem, bool, error) {
	items, err := s.GetVectors(ctx, []string{id})
	if err != nil {
		return core.VectorStoreItem{}, false, err
	}
	if len(items) == 0 {
		return core.VectorStoreItem{}, false, nil
	}
	return items[0], true, nil
}

// GetVectors fetches vectors by id; ids the index does not know are
// omitted from the result.
func (s *Store) GetVectors(ctx context.Context, ids []string) ([]core.VectorStoreItem, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var response struct {
		Vectors map[string]cloudVector `json:"vectors"`
	}
	err := s.call(ctx, "/vectors/fetch", map[string]any{
		"ids":       ids,
		"namespace": s.config.IndexName,
	}, &response)
	if err != nil {
		return nil, err
	}

	out := make([]core.VectorStoreItem, 0, len(response.Vectors))
	for _, id := range ids {
		v, ok := response.Vectors[id]
		if !ok {
			continue
		}
		out = append(out, core.VectorStoreItem{
			Id:        v.ID,
			Embedding: v.Values,
			Metadata:  v.Metadata,
		})
	}
	return out, nil
}

// UpdateVector replaces the embedding and merges metadata into the
// stored record.
func (s *Store) UpdateVector(ctx context.Context, item core.VectorStoreItem) error {
	return s.BatchUpdateVectors(ctx, []core.VectorStoreItem{item})
}

// BatchUpdateVectors fetches the current records, merges metadata
// client-side, and re-upserts. The managed API's native update only
// patches single vectors, so merged upsert keeps batches to two calls.
func (s *Store) BatchUpdateVectors(ctx context.Context, items []core.VectorStoreItem) error {
	if len(items) == 0 {
		return nil
	}

	ids := make([]string, 0, len(items))
	for i := range items {
		ids = append(ids, items[i].Id)
	}
	existing, err := s.GetVectors(ctx, ids)
	if err != nil {
		return err
	}
	current := make(map[string]core.VectorStoreItem, len(existing))
	for _, item := range existing {
		current[item.Id] = item
	}

	merged := make([]core.VectorStoreItem, 0, len(items))
	for i := range items {
		update := items[i]
		if prev, ok := current[update.Id]; ok {
			update.Metadata = vectorstore.MergeMetadata(prev.Metadata, items[i].Metadata)
			if len(update.Embedding) == 0 {
				update.Embedding = prev.Embedding
			}
		}
		merged = append(merged, update)
	}
	return s.BatchAddVectors(ctx, merged)
}

// DeleteVector removes one vector. Unknown ids are a no-op.
func (s *Store) DeleteVector(ctx context.Context, id string) error {
	return s.BatchDeleteVectors(ctx, []string{id})
}

// BatchDeleteVectors removes vectors in one request.
func (s *Store) BatchDeleteVectors(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	return s.call(ctx, "/vectors/delete", map[string]any{
		"ids":       ids,
		"namespace": s.config.IndexName,
	}, nil)
}

// SearchVectors runs a similarity query, relayed through backend
// endpoints when configured. Filters are applied client-side as well,
// because list-typed metadata comes back comma-joined and server-side
// filtering cannot match individual elements.
func (s *Store) SearchVectors(ctx context.Context, query []float32, limit int, filters vectorstore.Filters) ([]vectorstore.SearchHit, error) {
	if len(query) == 0 {
		return nil, core.ErrEmptyEmbedding
	}
	if limit <= 0 {
		return nil, nil
	}
	if s.Relayed() {
		return s.relaySearch(ctx, query, limit, filters)
	}
	return s.directSearch(ctx, query, limit, filters)
}

func (s *Store) directSearch(ctx context.Context, query []float32, limit int, filters vectorstore.Filters) ([]vectorstore.SearchHit, error) {
	candidates := limit
	if len(filters) > 0 {
		candidates = limit * 10
	}

	var response struct {
		Matches []struct {
			ID       string            `json:"id"`
			Score    *float32          `json:"score"`
			Distance *float32          `json:"distance"`
			Metadata map[string]string `json:"metadata"`
		} `json:"matches"`
	}
	err := s.call(ctx, "/query", map[string]any{
		"vector":          query,
		"topK":            candidates,
		"includeMetadata": true,
		"namespace":       s.config.IndexName,
	}, &response)
	if err != nil {
		return nil, err
	}

	hits := make([]vectorstore.SearchHit, 0, limit)
	for _, m := range response.Matches {
		if !vectorstore.MatchesFilters(m.Metadata, filters) {
			continue
		}
		var score float32
		switch {
		case m.Score != nil:
			score = *m.Score
		case m.Distance != nil:
			// Distance-reporting indexes: smaller is closer.
			score = 1 - *m.Distance
		}
		hits = append(hits, vectorstore.SearchHit{Id: m.ID, Score: score, Metadata: m.Metadata})
		if len(hits) == limit {
			break
		}
	}
	return hits, nil
}

func (s *Store) relaySearch(ctx context.Context, query []float32, limit int, filters vectorstore.Filters) ([]vectorstore.SearchHit, error) {
	var response struct {
		Success bool                    `json:"success"`
		Error   string                  `json:"error,omitempty"`
		Results []vectorstore.SearchHit `json:"results,omitempty"`
	}
	err := s.post(ctx, s.config.RelayURL+"/api/search", map[string]any{
		"queryEmbedding": query,
		"filters":        filters,
		"limit":          limit,
		"collectionName": s.config.IndexName,
	}, &response)
	if err != nil {
		return nil, err
	}
	if !response.Success {
		return nil, fmt.Errorf("relay search failed: %s", response.Error)
	}

	hits := make([]vectorstore.SearchHit, 0, len(response.Results))
	for _, hit := range response.Results {
		if !vectorstore.MatchesFilters(hit.Metadata, filters) {
			continue
		}
		hits = append(hits, hit)
		if len(hits) == limit {
			break
		}
	}
	return hits, nil
}

// HasVector reports whether the index knows the id.
func (s *Store) HasVector(ctx context.Context, id string) (bool, error) {
	_, found, err := s.GetVector(ctx, id)
	return found, err
}

// Count returns the index's reported vector count.
func (s *Store) Count(ctx context.Context) (int, error) {
	var stats statsResponse
	if err := s.call(ctx, "/describe_index_stats", map[string]any{}, &stats); err != nil {
		return 0, err
	}
	return stats.TotalVectorCount, nil
}

// Clear deletes every vector in the namespace.
func (s *Store) Clear(ctx context.Context) error {
	return s.call(ctx, "/vectors/delete", map[string]any{
		"deleteAll": true,
		"namespace": s.config.IndexName,
	}, nil)
}
