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


// Package factory constructs and memoizes vector store instances. It
// lives below the search layer (which depends only on the
// vectorstore.StoreFactory interface) and above the backends, keeping
// backend packages out of the search layer's import graph.
package factory

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/glyphica/iconsearch/vectorstore"
	"github.com/glyphica/iconsearch/vectorstore/badgerstore"
	"github.com/glyphica/iconsearch/vectorstore/cloudstore"
	"github.com/glyphica/iconsearch/vectorstore/qdrantstore"
)

// Factory memoizes stores by (backend type, instance key): the same
// key always yields the same instance until removed, so concurrent
// callers share connections and the embedded backend never opens the
// same database twice.
type Factory struct {
	execCtx vectorstore.ExecutionContext
	logger  *slog.Logger

	mu     sync.Mutex
	stores map[string]vectorstore.VectorStore
}

var _ vectorstore.StoreFactory = (*Factory)(nil)

// Option configures a Factory.
type Option func(*Factory)

// WithLogger sets the factory's logger, passed through to the stores
// it constructs.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Factory) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// New creates a factory for the given execution context. The context
// is fixed for the factory's lifetime; a process that changes
// capability builds a new factory.
func New(execCtx vectorstore.ExecutionContext, opts ...Option) *Factory {
	f := &Factory{
		execCtx: execCtx,
		logger:  slog.Default(),
		stores:  make(map[string]vectorstore.VectorStore),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func storeKey(backendType vectorstore.BackendType, instanceKey string) string {
	return fmt.Sprintf("%s::%s", backendType, instanceKey)
}

// Create returns the memoized instance for (config.Type, instanceKey),
// constructing it on first use. Construction validates the config and
// the execution context up front; those are the errors that must never
// be swallowed downstream.
func (f *Factory) Create(config vectorstore.Config, instanceKey string) (vectorstore.VectorStore, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	key := storeKey(config.Type, instanceKey)
	if store, ok := f.stores[key]; ok {
		return store, nil
	}

	store, err := f.build(config)
	if err != nil {
		return nil, err
	}

	f.stores[key] = store
	f.logger.Debug("vector store constructed", "type", string(config.Type), "instance", instanceKey)
	return store, nil
}

func (f *Factory) build(config vectorstore.Config) (vectorstore.VectorStore, error) {
	switch config.Type {
	case vectorstore.BackendEmbedded:
		if !f.execCtx.CanRunLocalStores {
			return nil, fmt.Errorf("%w: embedded backend", vectorstore.ErrLocalStoresUnavailable)
		}
		return badgerstore.New(config.Embedded, badgerstore.WithLogger(f.logger))

	case vectorstore.BackendLocal:
		if !f.execCtx.CanRunLocalStores {
			return nil, fmt.Errorf("%w: local server backend", vectorstore.ErrLocalStoresUnavailable)
		}
		return qdrantstore.New(config.Local, qdrantstore.WithLogger(f.logger))

	case vectorstore.BackendCloud:
		cloudConfig := *config.Cloud
		if cloudConfig.RelayURL == "" {
			cloudConfig.RelayURL = f.execCtx.RelayBaseURL
		}
		return cloudstore.New(&cloudConfig, cloudstore.WithLogger(f.logger))

	default:
		return nil, fmt.Errorf("%w: %q", vectorstore.ErrUnsupportedBackend, config.Type)
	}
}

// Remove evicts and closes the instance under the key, if any.
func (f *Factory) Remove(backendType vectorstore.BackendType, instanceKey string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := storeKey(backendType, instanceKey)
	store, ok := f.stores[key]
	if !ok {
		return
	}
	delete(f.stores, key)
	if err := store.Close(); err != nil {
		f.logger.Warn("closing evicted vector store", "type", string(backendType), "instance", instanceKey, "error", err)
	}
}

// ClearAll evicts and closes every live instance.
func (f *Factory) ClearAll() {
	f.mu.Lock()
	defer f.mu.Unlock()

	for key, store := range f.stores {
		if err := store.Close(); err != nil {
			f.logger.Warn("closing vector store", "key", key, "error", err)
		}
	}
	f.stores = make(map[string]vectorstore.VectorStore)
}
