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


package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/glyphica/iconsearch/catalog"
	"github.com/glyphica/iconsearch/core"
	"github.com/glyphica/iconsearch/reembed"
	"github.com/glyphica/iconsearch/storage"
	"github.com/glyphica/iconsearch/vectorstore"
	"github.com/google/uuid"
)

// SearchMode reports which path produced a result set, making the
// degradation chain observable instead of silent.
type SearchMode string

const (
	// ModeNone means no search ran: empty query, filtered catalog
	// returned as-is.
	ModeNone SearchMode = "none"

	// ModeVector means vector similarity search produced the results.
	ModeVector SearchMode = "vector"

	// ModeSubstring means the results came from the substring fallback.
	ModeSubstring SearchMode = "substring"
)

// EmbeddingProvider is the capability the orchestrator needs from the
// embedding layer.
type EmbeddingProvider interface {
	Initialize(ctx context.Context) error
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
	UsingFallback() bool
	ModelID() string
}

// ItemGenerator produces vector store items for a catalog in bulk.
type ItemGenerator interface {
	GenerateItems(ctx context.Context, icons []core.Icon) ([]core.VectorStoreItem, error)
}

// Orchestrator is the central icon search service. It owns the
// in-memory catalog snapshot and the active (config, store) pair.
//
// Initialize, ReInitialize, and SwitchVectorStore are serialized by an
// internal mutex; concurrent callers get last-writer-wins semantics.
// Timed-out operations are abandoned, not cancelled mid-flight: a
// model download or remote upsert may keep running after its deadline.
type Orchestrator struct {
	loader     catalog.Loader
	provider   EmbeddingProvider
	factory    vectorstore.StoreFactory
	generator  ItemGenerator
	cache      storage.VectorCache
	tags       storage.TagStore
	execCtx    vectorstore.ExecutionContext
	logger     *slog.Logger
	monitor    SearchMonitor
	httpClient *http.Client

	defaultLibraries []string

	storeInitTimeout time.Duration
	generateTimeout  time.Duration
	upsertTimeout    time.Duration

	mu          sync.Mutex
	initialized bool
	config      vectorstore.Config
	instanceKey string
	store       vectorstore.VectorStore
	storeReady  bool

	catalogMu sync.RWMutex
	catalog   []core.Icon
	iconIndex map[string]int
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithVectorCache attaches a durable vector cache used to skip
// regeneration across restarts.
func WithVectorCache(cache storage.VectorCache) Option {
	return func(o *Orchestrator) {
		o.cache = cache
	}
}

// WithTagStore attaches a tag overlay store so user tag edits survive
// restarts.
func WithTagStore(tags storage.TagStore) Option {
	return func(o *Orchestrator) {
		o.tags = tags
	}
}

// WithMonitor sets a search monitor.
func WithMonitor(monitor SearchMonitor) Option {
	return func(o *Orchestrator) {
		if monitor != nil {
			o.monitor = monitor
		}
	}
}

// WithDefaultLibraries sets the libraries loaded when Initialize gets
// no explicit override.
func WithDefaultLibraries(libraries []string) Option {
	return func(o *Orchestrator) {
		o.defaultLibraries = libraries
	}
}

// WithGenerator overrides the batch item generator.
func WithGenerator(generator ItemGenerator) Option {
	return func(o *Orchestrator) {
		if generator != nil {
			o.generator = generator
		}
	}
}

// WithTimeouts overrides the store-init, batch-generation, and
// bulk-upsert timeouts.
func WithTimeouts(storeInit, generate, upsert time.Duration) Option {
	return func(o *Orchestrator) {
		if storeInit > 0 {
			o.storeInitTimeout = storeInit
		}
		if generate > 0 {
			o.generateTimeout = generate
		}
		if upsert > 0 {
			o.upsertTimeout = upsert
		}
	}
}

// WithHTTPClient overrides the HTTP client used for relay config
// pushes.
func WithHTTPClient(client *http.Client) Option {
	return func(o *Orchestrator) {
		if client != nil {
			o.httpClient = client
		}
	}
}

// NewOrchestrator creates an icon search orchestrator. The vector
// store instance for config is constructed immediately so that
// configuration and deployment mistakes surface here rather than on
// first use.
func NewOrchestrator(
	loader catalog.Loader,
	provider EmbeddingProvider,
	factory vectorstore.StoreFactory,
	config vectorstore.Config,
	execCtx vectorstore.ExecutionContext,
	opts ...Option,
) (*Orchestrator, error) {
	if loader == nil {
		return nil, ErrLoaderRequired
	}
	if provider == nil {
		return nil, ErrProviderRequired
	}
	if factory == nil {
		return nil, ErrFactoryRequired
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	o := &Orchestrator{
		loader:           loader,
		provider:         provider,
		factory:          factory,
		execCtx:          execCtx,
		logger:           slog.Default(),
		monitor:          &noopMonitor{},
		httpClient:       &http.Client{Timeout: 10 * time.Second},
		config:           config,
		instanceKey:      "default",
		storeInitTimeout: 60 * time.Second,
		generateTimeout:  120 * time.Second,
		upsertTimeout:    60 * time.Second,
		iconIndex:        make(map[string]int),
	}
	for _, opt := range opts {
		opt(o)
	}

	if o.generator == nil {
		generator, err := reembed.NewGenerator(provider, reembed.WithLogger(o.logger))
		if err != nil {
			return nil, err
		}
		o.generator = generator
	}

	store, err := factory.Create(config, o.instanceKey)
	if err != nil {
		return nil, err
	}
	o.store = store

	return o, nil
}

// Initialize loads the catalog and prepares vectors. It is a no-op
// when already initialized and forceRegenerate is false. Runtime
// failures in vector preparation are logged and swallowed: the
// orchestrator always becomes initialized, degraded to substring
// search if necessary.
func (o *Orchestrator) Initialize(ctx context.Context, forceRegenerate bool, librariesOverride []string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.initialized && !forceRegenerate {
		return nil
	}

	libraries := librariesOverride
	if len(libraries) == 0 {
		libraries = o.defaultLibraries
	}

	icons, err := o.loader.LoadIcons(ctx, libraries)
	if err != nil {
		o.logger.Error("loading icon catalog failed, keeping previous snapshot", "error", err)
	} else {
		o.replaceCatalog(ctx, icons)
	}

	// Client-side with a cloud backend: vector work is delegated per
	// request, nothing to prepare locally.
	if o.config.Type == vectorstore.BackendCloud && !o.execCtx.CanRunLocalStores {
		o.initialized = true
		return nil
	}

	if err := o.prepareVectors(ctx, forceRegenerate); err != nil {
		o.logger.Error("vector preparation failed, degrading to substring search", "error", err)
	}

	o.initialized = true
	return nil
}

// replaceCatalog installs a fresh snapshot, re-applying persisted tag
// overlays. Caller holds o.mu.
func (o *Orchestrator) replaceCatalog(ctx context.Context, icons []core.Icon) {
	if o.tags != nil {
		overlays, err := o.tags.All(ctx)
		if err != nil {
			o.logger.Warn("loading tag overlays failed", "error", err)
		} else if len(overlays) > 0 {
			for i := range icons {
				for _, tag := range overlays[icons[i].Id] {
					if !icons[i].HasTag(tag) {
						icons[i] = icons[i].WithTag(tag)
					}
				}
			}
		}
	}

	index := make(map[string]int, len(icons))
	for i := range icons {
		index[icons[i].Id] = i
	}

	o.catalogMu.Lock()
	o.catalog = icons
	o.iconIndex = index
	o.catalogMu.Unlock()
}

// prepareVectors runs store init, model init, and vector generation.
// Caller holds o.mu. Every error it returns is swallowed by
// Initialize.
func (o *Orchestrator) prepareVectors(ctx context.Context, forceRegenerate bool) error {
	initCtx, cancel := context.WithTimeout(ctx, o.storeInitTimeout)
	err := o.store.Initialize(initCtx)
	cancel()
	if err != nil {
		o.storeReady = false
		o.logger.Warn("vector store initialization failed", "error", err)
	} else {
		o.storeReady = true
	}

	if err := o.provider.Initialize(ctx); err != nil {
		o.logger.Warn("embedding provider initialization failed", "error", err)
	}
	if o.provider.UsingFallback() {
		o.logger.Info("embedding model in fallback mode, skipping vector generation")
		return nil
	}

	snapshot := o.CatalogSnapshot()
	if len(snapshot) == 0 {
		return nil
	}

	cacheKey := CacheKey(o.provider.ModelID())
	var items []core.VectorStoreItem

	if o.cache != nil && !forceRegenerate {
		cached, found, err := o.cache.Get(ctx, cacheKey)
		if err != nil {
			o.logger.Warn("vector cache read failed", "key", cacheKey, "error", err)
		} else if found {
			if cacheFresh(snapshot, cached) {
				o.logger.Debug("reusing cached vectors", "key", cacheKey, "count", len(cached))
				items = cached
			} else {
				o.logger.Info("catalog changed since vectors were cached, regenerating", "key", cacheKey)
			}
		}
	}

	if items == nil {
		genCtx, cancel := context.WithTimeout(ctx, o.generateTimeout)
		generated, err := o.generator.GenerateItems(genCtx, snapshot)
		cancel()
		if err != nil {
			return fmt.Errorf("generating icon vectors: %w", err)
		}
		items = generated

		if o.cache != nil {
			if err := o.cache.Put(ctx, cacheKey, items); err != nil {
				// The store stays authoritative; a cold cache only
				// costs recomputation next start.
				o.logger.Warn("vector cache write failed", "key", cacheKey, "error", err)
			}
		}
	}

	if len(items) == 0 || !o.storeReady {
		return nil
	}

	upsertCtx, cancel := context.WithTimeout(ctx, o.upsertTimeout)
	defer cancel()
	if err := o.store.BatchAddVectors(upsertCtx, items); err != nil {
		return fmt.Errorf("upserting icon vectors: %w", err)
	}
	return nil
}

// SearchIcons answers a query. It never returns an error: vector
// search degrades to substring search, which degrades to an empty
// result. The returned SearchMode names the path that produced the
// results.
func (o *Orchestrator) SearchIcons(ctx context.Context, query string, filters core.FilterOptions, limit int) ([]core.SearchResult, SearchMode) {
	if limit < 0 {
		limit = 0
	}

	if err := o.Initialize(ctx, false, nil); err != nil {
		o.logger.Error("lazy initialization failed", "error", err)
	}

	o.monitor.Start(query)

	candidates := o.filterCatalog(filters)
	o.monitor.AfterCatalogFilter(len(candidates))

	query = strings.TrimSpace(query)
	if query == "" {
		results := make([]core.SearchResult, 0, limit)
		for _, icon := range candidates {
			if len(results) == limit {
				break
			}
			results = append(results, core.SearchResult{Icon: icon, Score: 0})
		}
		o.monitor.Finish(results, ModeNone)
		return results, ModeNone
	}

	if o.provider.UsingFallback() {
		return o.substringResults(candidates, query, limit)
	}

	results, err := o.vectorSearch(ctx, query, filters, limit)
	if err != nil {
		o.logger.Warn("vector search failed, falling back to substring search",
			"query", query, "error", err)
		o.monitor.VectorSearchFailed(err)
		return o.substringResults(candidates, query, limit)
	}
	if len(results) == 0 {
		return o.substringResults(candidates, query, limit)
	}

	o.monitor.Finish(results, ModeVector)
	return results, ModeVector
}

func (o *Orchestrator) substringResults(candidates []core.Icon, query string, limit int) ([]core.SearchResult, SearchMode) {
	o.monitor.SubstringFallback(query)
	results := SubstringSearch(candidates, query, limit)
	o.monitor.Finish(results, ModeSubstring)
	return results, ModeSubstring
}

func (o *Orchestrator) vectorSearch(ctx context.Context, query string, filters core.FilterOptions, limit int) ([]core.SearchResult, error) {
	o.mu.Lock()
	store := o.store
	ready := o.storeReady
	cloud := o.config.Type == vectorstore.BackendCloud
	o.mu.Unlock()

	// Cloud stores handle their own reachability (including relay);
	// local stores must have initialized.
	if store == nil || (!ready && !cloud) {
		return nil, ErrStoreUnavailable
	}

	embedding, err := o.provider.GenerateEmbedding(ctx, query)
	if err != nil {
		return nil, err
	}
	o.monitor.AfterQueryEmbedding(len(embedding))

	// Libraries and categories are delegated to the store; tag filters
	// are re-applied client-side below.
	storeFilters := vectorstore.Filters{}
	if len(filters.Libraries) > 0 {
		storeFilters[vectorstore.FieldLibrary] = filters.Libraries
	}
	if len(filters.Categories) > 0 {
		storeFilters[vectorstore.FieldCategory] = filters.Categories
	}

	hits, err := store.SearchVectors(ctx, embedding, limit, storeFilters)
	if err != nil {
		return nil, err
	}
	o.monitor.AfterVectorSearch(len(hits))

	o.catalogMu.RLock()
	defer o.catalogMu.RUnlock()

	type ranked struct {
		result core.SearchResult
		order  int
	}
	rankedResults := make([]ranked, 0, len(hits))
	for _, hit := range hits {
		icon, order := o.resolveHit(hit)
		if !filters.Matches(icon) {
			continue
		}
		rankedResults = append(rankedResults, ranked{
			result: core.SearchResult{Icon: icon, Score: hit.Score},
			order:  order,
		})
	}

	// Descending score, catalog order breaking ties.
	sort.Slice(rankedResults, func(i, j int) bool {
		if rankedResults[i].result.Score != rankedResults[j].result.Score {
			return rankedResults[i].result.Score > rankedResults[j].result.Score
		}
		return rankedResults[i].order < rankedResults[j].order
	})
	if len(rankedResults) > limit {
		rankedResults = rankedResults[:limit]
	}

	results := make([]core.SearchResult, 0, len(rankedResults))
	for _, r := range rankedResults {
		results = append(results, r.result)
	}
	return results, nil
}

// resolveHit maps a store hit back to a full icon record: the catalog
// snapshot is authoritative when it knows the id (it carries SVG and
// the current tag overlay); metadata reconstruction covers ids the
// catalog no longer holds. Caller holds catalogMu.
func (o *Orchestrator) resolveHit(hit vectorstore.SearchHit) (core.Icon, int) {
	if idx, ok := o.iconIndex[hit.Id]; ok {
		return o.catalog[idx], idx
	}
	return vectorstore.IconFromMetadata(hit.Id, hit.Metadata), len(o.catalog)
}

func (o *Orchestrator) filterCatalog(filters core.FilterOptions) []core.Icon {
	o.catalogMu.RLock()
	defer o.catalogMu.RUnlock()

	out := make([]core.Icon, 0, len(o.catalog))
	for _, icon := range o.catalog {
		if filters.Matches(icon) {
			out = append(out, icon)
		}
	}
	return out
}

// CatalogSnapshot returns a copy of the current catalog.
func (o *Orchestrator) CatalogSnapshot() []core.Icon {
	o.catalogMu.RLock()
	defer o.catalogMu.RUnlock()

	out := make([]core.Icon, len(o.catalog))
	copy(out, o.catalog)
	return out
}

// FilterOptions returns the distinct libraries, categories, and tags
// observed across the current catalog, each sorted for stable output.
func (o *Orchestrator) FilterOptions() core.FilterOptions {
	o.catalogMu.RLock()
	defer o.catalogMu.RUnlock()

	libraries := make(map[string]struct{})
	categories := make(map[string]struct{})
	tags := make(map[string]struct{})
	for _, icon := range o.catalog {
		libraries[icon.Library] = struct{}{}
		if icon.Category != "" {
			categories[icon.Category] = struct{}{}
		}
		for _, tag := range icon.Tags {
			tags[tag] = struct{}{}
		}
	}

	return core.FilterOptions{
		Libraries:  sortedKeys(libraries),
		Categories: sortedKeys(categories),
		Tags:       sortedKeys(tags),
	}
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// ReInitialize discards the initialized state, allocates a fresh
// vector store instance under a unique key (in-flight users of the old
// instance are unaffected), and re-runs Initialize with forced
// regeneration. On failure initialized stays false so the next call
// retries instead of serving from a half-configured state.
func (o *Orchestrator) ReInitialize(ctx context.Context) error {
	o.mu.Lock()
	o.initialized = false

	newKey := uuid.NewString()
	store, err := o.factory.Create(o.config, newKey)
	if err != nil {
		o.mu.Unlock()
		return err
	}
	o.store = store
	o.instanceKey = newKey
	o.storeReady = false
	o.mu.Unlock()

	return o.Initialize(ctx, true, nil)
}

// SwitchVectorStore replaces the active store configuration and
// re-initializes. When switching to a cloud backend from a relay
// context, the config is first pushed to the backend endpoints so
// server-side searches hit the same index; the push is best-effort.
func (o *Orchestrator) SwitchVectorStore(ctx context.Context, config vectorstore.Config) error {
	if err := config.Validate(); err != nil {
		return err
	}

	if config.Type == vectorstore.BackendCloud && o.execCtx.RelayBaseURL != "" {
		if err := o.pushRelayConfig(ctx, config); err != nil {
			o.logger.Warn("pushing vector store config to backend failed", "error", err)
		}
	}

	o.mu.Lock()
	o.config = config
	o.mu.Unlock()

	return o.ReInitialize(ctx)
}

func (o *Orchestrator) pushRelayConfig(ctx context.Context, config vectorstore.Config) error {
	body, err := json.Marshal(config)
	if err != nil {
		return err
	}

	url := strings.TrimRight(o.execCtx.RelayBaseURL, "/") + "/api/vector-config"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("config push returned status %d", resp.StatusCode)
	}
	return nil
}

// UpdateIconTag appends a normalized tag to an icon, swaps a new
// immutable record into the snapshot, persists the overlay, and
// refreshes the icon's vector best-effort: the tag update succeeds
// even when the vector refresh fails.
func (o *Orchestrator) UpdateIconTag(ctx context.Context, id, newTag string) error {
	tag := core.NormalizeTag(newTag)
	if tag == "" {
		return ErrEmptyTag
	}

	o.catalogMu.Lock()
	idx, ok := o.iconIndex[id]
	if !ok {
		o.catalogMu.Unlock()
		return fmt.Errorf("%w: %q", ErrIconNotFound, id)
	}
	icon := o.catalog[idx]
	if icon.HasTag(tag) {
		o.catalogMu.Unlock()
		return nil
	}
	updated := icon.WithTag(tag)
	o.catalog[idx] = updated
	o.catalogMu.Unlock()

	if o.tags != nil {
		if err := o.tags.PutTags(ctx, id, updated.Tags); err != nil {
			return fmt.Errorf("persisting tag overlay: %w", err)
		}
	}

	if err := o.refreshVector(ctx, updated); err != nil {
		o.logger.Warn("vector refresh after tag update failed", "icon", id, "error", err)
	}
	return nil
}

func (o *Orchestrator) refreshVector(ctx context.Context, icon core.Icon) error {
	o.mu.Lock()
	store := o.store
	ready := o.storeReady
	o.mu.Unlock()

	if store == nil || !ready {
		return ErrStoreUnavailable
	}
	if o.provider.UsingFallback() {
		return nil
	}

	embedding, err := o.provider.GenerateEmbedding(ctx, core.DescribeIcon(icon.Name, icon.Category))
	if err != nil {
		return err
	}
	return store.UpdateVector(ctx, core.VectorStoreItem{
		Id:        icon.Id,
		Embedding: embedding,
		Metadata:  vectorstore.MetadataFromIcon(icon),
	})
}

// SearchByEmbedding searches the active store with a precomputed query
// embedding, serving relayed searches from clients that cannot reach a
// store directly. Filters are applied by the store; no catalog
// resolution or substring fallback happens here.
func (o *Orchestrator) SearchByEmbedding(ctx context.Context, embedding []float32, limit int, filters vectorstore.Filters) ([]vectorstore.SearchHit, error) {
	if err := o.Initialize(ctx, false, nil); err != nil {
		o.logger.Error("lazy initialization failed", "error", err)
	}

	o.mu.Lock()
	store := o.store
	ready := o.storeReady
	cloud := o.config.Type == vectorstore.BackendCloud
	o.mu.Unlock()

	if store == nil || (!ready && !cloud) {
		return nil, ErrStoreUnavailable
	}
	return store.SearchVectors(ctx, embedding, limit, filters)
}

// ReembedItem pairs an icon with an externally computed embedding.
type ReembedItem struct {
	Icon      core.Icon `json:"icon"`
	Embedding []float32 `json:"embedding"`
}

// ReembedIcons upserts the provided icon/embedding pairs into the
// active store. Unlike searches, this is a user-initiated
// administrative action, so failures surface as errors.
func (o *Orchestrator) ReembedIcons(ctx context.Context, items []ReembedItem) error {
	if len(items) == 0 {
		return nil
	}

	o.mu.Lock()
	store := o.store
	ready := o.storeReady
	cloud := o.config.Type == vectorstore.BackendCloud
	o.mu.Unlock()

	if store == nil || (!ready && !cloud) {
		return ErrStoreUnavailable
	}

	storeItems := make([]core.VectorStoreItem, 0, len(items))
	for _, item := range items {
		storeItems = append(storeItems, core.VectorStoreItem{
			Id:        item.Icon.Id,
			Embedding: item.Embedding,
			Metadata:  vectorstore.MetadataFromIcon(item.Icon),
		})
	}

	upsertCtx, cancel := context.WithTimeout(ctx, o.upsertTimeout)
	defer cancel()
	return store.BatchAddVectors(upsertCtx, storeItems)
}

// Initialized reports whether the orchestrator has completed an
// Initialize pass.
func (o *Orchestrator) Initialized() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.initialized
}
