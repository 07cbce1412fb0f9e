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


package vectorstore

import "fmt"

// BackendType discriminates the vector store configuration union.
type BackendType string

const (
	// BackendEmbedded is the in-process persistent store (BadgerDB).
	BackendEmbedded BackendType = "embedded"

	// BackendLocal delegates to a locally running vector-database
	// process (Qdrant).
	BackendLocal BackendType = "local"

	// BackendCloud reaches a managed vector-database service over
	// HTTP, optionally relayed through backend endpoints.
	BackendCloud BackendType = "cloud"
)

// DefaultMinSimilarity is the embedded store's relevance cutoff:
// results scoring below it are dropped entirely, not merely ranked
// low, to avoid returning semantically unrelated icons when model
// confidence has degraded.
const DefaultMinSimilarity float32 = 0.4

// EmbeddedConfig configures the in-process persistent backend.
type EmbeddedConfig struct {
	// Path is the BadgerDB directory. Empty means in-memory.
	Path string `yaml:"path"`

	// StoreName namespaces the keys so several stores can share one
	// database directory.
	StoreName string `yaml:"store_name"`

	// MinSimilarity is the drop threshold for search results.
	// Zero means DefaultMinSimilarity.
	MinSimilarity float32 `yaml:"min_similarity"`
}

// LocalConfig configures the local server backend.
type LocalConfig struct {
	// URL of the local vector-database process,
	// e.g. "http://localhost:6333".
	URL string `yaml:"url"`

	// Collection holds this store's vectors.
	Collection string `yaml:"collection"`
}

// CloudConfig configures the cloud-hosted backend.
type CloudConfig struct {
	// Endpoint is the managed service's index endpoint.
	Endpoint string `yaml:"endpoint"`

	// APIKey authenticates against the managed service.
	APIKey string `yaml:"api_key"`

	// IndexName identifies the remote index/collection.
	IndexName string `yaml:"index_name"`

	// RelayURL, when non-empty, routes searches through backend HTTP
	// endpoints instead of hitting the managed service directly. Used
	// by constrained clients that must not hold the API key.
	RelayURL string `yaml:"relay_url,omitempty"`
}

// Config is the discriminated vector store configuration: Type selects
// the variant, and only that variant's field is consulted. Switching
// config always produces a consistent re-initialization of the store
// it names; configs held for other instance keys stay valid.
type Config struct {
	Type     BackendType     `yaml:"type"`
	Embedded *EmbeddedConfig `yaml:"embedded,omitempty"`
	Local    *LocalConfig    `yaml:"local,omitempty"`
	Cloud    *CloudConfig    `yaml:"cloud,omitempty"`
}

// Validate checks that the selected variant carries its required
// fields. Configuration errors are the one class that is never
// swallowed downstream, so they must be caught here, at construction
// time.
func (c Config) Validate() error {
	switch c.Type {
	case BackendEmbedded:
		if c.Embedded == nil {
			return fmt.Errorf("%w: embedded settings missing", ErrMissingConfig)
		}
		if c.Embedded.StoreName == "" {
			return fmt.Errorf("%w: embedded store name", ErrMissingConfig)
		}
		if c.Embedded.MinSimilarity < 0 || c.Embedded.MinSimilarity > 1 {
			return fmt.Errorf("%w: min similarity must be within [0,1]", ErrMissingConfig)
		}
		return nil
	case BackendLocal:
		if c.Local == nil {
			return fmt.Errorf("%w: local settings missing", ErrMissingConfig)
		}
		if c.Local.URL == "" {
			return fmt.Errorf("%w: local server url", ErrMissingConfig)
		}
		if c.Local.Collection == "" {
			return fmt.Errorf("%w: local collection name", ErrMissingConfig)
		}
		return nil
	case BackendCloud:
		if c.Cloud == nil {
			return fmt.Errorf("%w: cloud settings missing", ErrMissingConfig)
		}
		if c.Cloud.Endpoint == "" {
			return fmt.Errorf("%w: cloud endpoint", ErrMissingConfig)
		}
		if c.Cloud.IndexName == "" {
			return fmt.Errorf("%w: cloud index name", ErrMissingConfig)
		}
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedBackend, c.Type)
	}
}

// EffectiveMinSimilarity returns the embedded drop threshold, applying
// the default when unset.
func (c *EmbeddedConfig) EffectiveMinSimilarity() float32 {
	if c.MinSimilarity == 0 {
		return DefaultMinSimilarity
	}
	return c.MinSimilarity
}

// ExecutionContext declares what the current process is allowed to
// run, replacing implicit environment sniffing. A browser-adjacent or
// sandboxed deployment sets CanRunLocalStores=false and a RelayBaseURL
// so cloud operations go through backend endpoints.
type ExecutionContext struct {
	// CanRunLocalStores permits embedded and local-server backends.
	CanRunLocalStores bool

	// RelayBaseURL, when non-empty, is the base URL of the backend
	// HTTP endpoints that cloud searches and config pushes are relayed
	// through.
	RelayBaseURL string
}

// ServerContext describes a backend-resident process: everything runs
// locally, nothing is relayed.
func ServerContext() ExecutionContext {
	return ExecutionContext{CanRunLocalStores: true}
}

// RelayContext describes a constrained client process that delegates
// to a backend at baseURL.
func RelayContext(baseURL string) ExecutionContext {
	return ExecutionContext{CanRunLocalStores: false, RelayBaseURL: baseURL}
}
