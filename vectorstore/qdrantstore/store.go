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


// Package qdrantstore implements the local-server vector store backend
// against a Qdrant process over its REST API.
package qdrantstore

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
	"github.com/google/uuid"
)

const defaultRequestTimeout = 30 * time.Second

// Qdrant point IDs must be integers or UUIDs, so icon IDs are mapped
// to deterministic UUIDv5 values and the original ID is kept in the
// payload.
const payloadIDField = "_id"

// Store talks to a locally running Qdrant instance.
type Store struct {
	config *vectorstore.LocalConfig
	logger *slog.Logger
	client *http.Client

	mu          sync.Mutex
	initialized bool
	collection  bool // remote collection known to exist
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

// New creates a local-server store. No network traffic happens until
// Initialize.
func New(config *vectorstore.LocalConfig, opts ...Option) (*Store, error) {
	if config == nil {
		return nil, fmt.Errorf("%w: local settings missing", vectorstore.ErrMissingConfig)
	}
	if config.URL == "" || config.Collection == "" {
		return nil, fmt.Errorf("%w: local server url and collection", vectorstore.ErrMissingConfig)
	}

	s := &Store{
		config: &vectorstore.LocalConfig{
			URL:        strings.TrimRight(config.URL, "/"),
			Collection: config.Collection,
		},
		logger: slog.Default(),
		client: &http.Client{Timeout: defaultRequestTimeout},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Initialize verifies the server is reachable and records whether the
// collection already exists. The collection itself is created lazily on
// the first write, when the vector dimension is known.
func (s *Store) Initialize(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.initialized {
		return nil
	}

	var response struct {
		Result struct {
			Status string `json:"status"`
		} `json:"result"`
	}
	status, err := s.doJSON(ctx, http.MethodGet, s.collectionURL(), nil, &response)
	if err != nil {
		return fmt.Errorf("reach local vector server at %s: %w", s.config.URL, err)
	}

	switch status {
	case http.StatusOK:
		s.collection = true
	case http.StatusNotFound:
		s.collection = false
	default:
		return fmt.Errorf("local vector server returned status %d for collection %q", status, s.config.Collection)
	}

	s.initialized = true
	s.logger.Debug("local vector store ready",
		"url", s.config.URL,
		"collection", s.config.Collection,
		"exists", s.collection)
	return nil
}

// Close releases nothing; the server process is owned externally.
func (s *Store) Close() error {
	return nil
}

func (s *Store) ensureCollection(ctx context.Context, dimension int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.collection {
		return nil
	}

	body := map[string]any{
		"vectors": map[string]any{
			"size":     dimension,
			"distance": "Cosine",
		},
	}
	status, err := s.doJSON(ctx, http.MethodPut, s.collectionURL(), body, nil)
	if err != nil {
		return fmt.Errorf("create collection %q: %w", s.config.Collection, err)
	}
	// 409: another writer created it first.
	if status != http.StatusOK && status != http.StatusConflict {
		return fmt.Errorf("create collection %q: status %d", s.config.Collection, status)
	}

	s.collection = true
	return nil
}

func pointID(id string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(id)).String()
}

func payloadFromItem(item core.VectorStoreItem) map[string]any {
	payload := make(map[string]any, len(item.Metadata)+1)
	for k, v := range item.Metadata {
		payload[k] = v
	}
	payload[payloadIDField] = item.Id
	return payload
}

func metadataFromPayload(payload map[string]any) (string, map[string]string) {
	id := ""
	metadata := make(map[string]string, len(payload))
	for k, v := range payload {
		text, ok := v.(string)
		if !ok {
			continue
		}
		if k == payloadIDField {
			id = text
			continue
		}
		metadata[k] = text
	}
	return id, metadata
}

// AddVector upserts one item.
func (s *Store) AddVector(ctx context.Context, item core.VectorStoreItem) error {
	return s.BatchAddVectors(ctx, []core.VectorStoreItem{item})
}

// BatchAddVectors upserts items in one request.
func (s *Store) BatchAddVectors(ctx context.Context, items []core.VectorStoreItem) error {
	if len(items) == 0 {
		return nil
	}
	for i := range items {
		if err := core.ValidateItem(&items[i]); err != nil {
			return err
		}
	}
	if err := s.ensureCollection(ctx, len(items[0].Embedding)); err != nil {
		return err
	}

	points := make([]map[string]any, 0, len(items))
	for i := range items {
		points = append(points, map[string]any{
			"id":      pointID(items[i].Id),
			"vector":  items[i].Embedding,
			"payload": payloadFromItem(items[i]),
		})
	}

	status, err := s.doJSON(ctx, http.MethodPut,
		s.collectionURL()+"/points?wait=true",
		map[string]any{"points": points}, nil)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("upsert points: status %d", status)
	}
	return nil
}

type retrievedPoint struct {
	ID      any            `json:"id"`
	Score   float32        `json:"score"`
	Vector  []float32      `json:"vector"`
	Payload map[string]any `json:"payload"`
}

func (s *Store) retrievePoints(ctx context.Context, ids []string, withVector bool) ([]retrievedPoint, error) {
	pointIDs := make([]string, 0, len(ids))
	for _, id := range ids {
		pointIDs = append(pointIDs, pointID(id))
	}

	var response struct {
		Result []retrievedPoint `json:"result"`
	}
	status, err := s.doJSON(ctx, http.MethodPost,
		s.collectionURL()+"/points",
		map[string]any{
			"ids":          pointIDs,
			"with_payload": true,
			"with_vector":  withVector,
		}, &response)
	if err != nil {
		return nil, err
	}
	// Retrieval from a collection that does not exist yet means
	// nothing has been stored.
	if status == http.StatusNotFound {
		return nil, nil
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("retrieve points: status %d", status)
	}
	return response.Result, nil
}

// GetVector fetches one item by id.
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

// GetVectors fetches items by id; missing ids are omitted.
func (s *Store) GetVectors(ctx context.Context, ids []string) ([]core.VectorStoreItem, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	points, err := s.retrievePoints(ctx, ids, true)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]core.VectorStoreItem, len(points))
	for _, p := range points {
		id, metadata := metadataFromPayload(p.Payload)
		if id == "" {
			continue
		}
		byID[id] = core.VectorStoreItem{Id: id, Embedding: p.Vector, Metadata: metadata}
	}

	// Preserve request order.
	out := make([]core.VectorStoreItem, 0, len(byID))
	for _, id := range ids {
		if item, ok := byID[id]; ok {
			out = append(out, item)
		}
	}
	return out, nil
}

// UpdateVector replaces the embedding and merges metadata into the
// existing item.
func (s *Store) UpdateVector(ctx context.Context, item core.VectorStoreItem) error {
	return s.BatchUpdateVectors(ctx, []core.VectorStoreItem{item})
}

// BatchUpdateVectors applies merge-metadata semantics per item, then
// upserts the merged records.
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

// DeleteVector removes one item. Missing ids are a no-op.
func (s *Store) DeleteVector(ctx context.Context, id string) error {
	return s.BatchDeleteVectors(ctx, []string{id})
}

// BatchDeleteVectors removes items in one request.
func (s *Store) BatchDeleteVectors(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	pointIDs := make([]string, 0, len(ids))
	for _, id := range ids {
		pointIDs = append(pointIDs, pointID(id))
	}

	status, err := s.doJSON(ctx, http.MethodPost,
		s.collectionURL()+"/points/delete?wait=true",
		map[string]any{"points": pointIDs}, nil)
	if err != nil {
		return err
	}
	if status != http.StatusOK && status != http.StatusNotFound {
		return fmt.Errorf("delete points: status %d", status)
	}
	return nil
}

// SearchVectors runs a similarity query. Filters are applied
// client-side because list-typed metadata is stored comma-joined; when
// filters are present, a larger candidate set is requested before
// trimming to limit.
func (s *Store) SearchVectors(ctx context.Context, query []float32, limit int, filters vectorstore.Filters) ([]vectorstore.SearchHit, error) {
	if len(query) == 0 {
		return nil, core.ErrEmptyEmbedding
	}
	if limit <= 0 {
		return nil, nil
	}

	candidates := limit
	if len(filters) > 0 {
		candidates = limit * 10
	}

	var response struct {
		Result []retrievedPoint `json:"result"`
	}
	status, err := s.doJSON(ctx, http.MethodPost,
		s.collectionURL()+"/points/search",
		map[string]any{
			"vector":       query,
			"limit":        candidates,
			"with_payload": true,
		}, &response)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, nil
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("search points: status %d", status)
	}

	hits := make([]vectorstore.SearchHit, 0, limit)
	for _, p := range response.Result {
		id, metadata := metadataFromPayload(p.Payload)
		if id == "" {
			continue
		}
		if !vectorstore.MatchesFilters(metadata, filters) {
			continue
		}
		hits = append(hits, vectorstore.SearchHit{Id: id, Score: p.Score, Metadata: metadata})
		if len(hits) == limit {
			break
		}
	}
	return hits, nil
}

// HasVector reports whether an item exists.
func (s *Store) HasVector(ctx context.Context, id string) (bool, error) {
	points, err := s.retrievePoints(ctx, []string{id}, false)
	if err != nil {
		return false, err
	}
	return len(points) > 0, nil
}

// Count returns the number of stored items.
func (s *Store) Count(ctx context.Context) (int, error) {
	var response struct {
		Result struct {
			Count int `json:"count"`
		} `json:"result"`
	}
	status, err := s.doJSON(ctx, http.MethodPost,
		s.collectionURL()+"/points/count",
		map[string]any{"exact": true}, &response)
	if err != nil {
		return 0, err
	}
	if status == http.StatusNotFound {
		return 0, nil
	}
	if status != http.StatusOK {
		return 0, fmt.Errorf("count points: status %d", status)
	}
	return response.Result.Count, nil
}

// Clear drops the remote collection. It is recreated lazily on the
// next write.
func (s *Store) Clear(ctx context.Context) error {
	status, err := s.doJSON(ctx, http.MethodDelete, s.collectionURL(), nil, nil)
	if err != nil {
		return err
	}
	if status != http.StatusOK && status != http.StatusNotFound {
		return fmt.Errorf("drop collection %q: status %d", s.config.Collection, status)
	}

	s.mu.Lock()
	s.collection = false
	s.mu.Unlock()
	return nil
}

func (s *Store) collectionURL() string {
	return fmt.Sprintf("%s/collections/%s", s.config.URL, s.config.Collection)
}
