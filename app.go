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


// Package iconsearch assembles the semantic icon search service from
// its parts: catalog loading, embedding, vector storage, and the
// search orchestrator.
package iconsearch

import (
	"io"
	"log/slog"

	"github.com/glyphica/iconsearch/ai"
	"github.com/glyphica/iconsearch/ai/openai"
	"github.com/glyphica/iconsearch/catalog"
	"github.com/glyphica/iconsearch/config"
	"github.com/glyphica/iconsearch/reembed"
	"github.com/glyphica/iconsearch/search"
	"github.com/glyphica/iconsearch/server"
	"github.com/glyphica/iconsearch/storage/badger"
	"github.com/glyphica/iconsearch/vectorstore"
	"github.com/glyphica/iconsearch/vectorstore/factory"
)

// App owns the wired service graph and its durable resources.
type App struct {
	cfg          *config.Config
	backend      *badger.Backend
	provider     *ai.Provider
	factory      *factory.Factory
	orchestrator *search.Orchestrator
	logger       *slog.Logger
}

// AppOption configures an App.
type AppOption func(*appOptions)

type appOptions struct {
	logger   *slog.Logger
	execCtx  vectorstore.ExecutionContext
	loader   catalog.Loader
	progress io.Writer
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) AppOption {
	return func(o *appOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithExecutionContext overrides the execution context.
// Default is a server context.
func WithExecutionContext(execCtx vectorstore.ExecutionContext) AppOption {
	return func(o *appOptions) {
		o.execCtx = execCtx
	}
}

// WithCatalogLoader overrides the catalog loader.
// Default loads from the configured catalog directory.
func WithCatalogLoader(loader catalog.Loader) AppOption {
	return func(o *appOptions) {
		if loader != nil {
			o.loader = loader
		}
	}
}

// WithProgressWriter enables batch-generation progress reporting on w.
// Meant for interactive use; the server runs without it.
func WithProgressWriter(w io.Writer) AppOption {
	return func(o *appOptions) {
		o.progress = w
	}
}

// NewApp wires an application from configuration. The embedding model
// is not loaded here; it loads lazily on first use with fallback on
// failure.
func NewApp(cfg *config.Config, opts ...AppOption) (*App, error) {
	options := &appOptions{
		logger:  slog.Default(),
		execCtx: vectorstore.ServerContext(),
	}
	for _, opt := range opts {
		opt(options)
	}
	if options.loader == nil {
		options.loader = catalog.NewDirLoader(cfg.Catalog.Dir)
	}

	backend, err := badger.OpenBackend(cfg.Storage.DataDir, cfg.Storage.DataDir == "")
	if err != nil {
		return nil, err
	}

	aiConfig := ai.NewConfig(
		ai.WithHost(cfg.Embedding.Host),
		ai.WithModel(cfg.Embedding.Model),
		ai.WithAPIKey(cfg.EmbedAPIKey()),
		ai.WithMaxAttempts(cfg.Embedding.MaxAttempts),
		ai.WithFallbackDimension(cfg.Embedding.FallbackDimension),
	)
	provider, err := ai.NewProvider(aiConfig, openai.Loader(aiConfig), ai.WithLogger(options.logger))
	if err != nil {
		backend.Close()
		return nil, err
	}

	stores := factory.New(options.execCtx, factory.WithLogger(options.logger))

	searchOpts := []search.Option{
		search.WithLogger(options.logger),
		search.WithVectorCache(badger.NewVectorCache(backend)),
		search.WithTagStore(badger.NewTagStore(backend)),
		search.WithDefaultLibraries(cfg.Catalog.Libraries),
	}
	if options.progress != nil {
		generator, err := reembed.NewGenerator(provider,
			reembed.WithLogger(options.logger),
			reembed.WithProgress(options.progress),
		)
		if err != nil {
			backend.Close()
			return nil, err
		}
		searchOpts = append(searchOpts, search.WithGenerator(generator))
	}

	orchestrator, err := search.NewOrchestrator(
		options.loader,
		provider,
		stores,
		cfg.Store,
		options.execCtx,
		searchOpts...,
	)
	if err != nil {
		stores.ClearAll()
		backend.Close()
		return nil, err
	}

	return &App{
		cfg:          cfg,
		backend:      backend,
		provider:     provider,
		factory:      stores,
		orchestrator: orchestrator,
		logger:       options.logger,
	}, nil
}

// Orchestrator returns the search orchestrator.
func (a *App) Orchestrator() *search.Orchestrator {
	return a.orchestrator
}

// Provider returns the embedding provider.
func (a *App) Provider() *ai.Provider {
	return a.provider
}

// NewServer builds the HTTP server over the orchestrator. The
// administrative endpoints are enabled only when an admin token is
// configured.
func (a *App) NewServer() (*server.Server, error) {
	auth := server.AuthChecker(server.DenyAll{})
	if token := a.cfg.AdminToken(); token != "" {
		auth = server.BearerToken{Token: token}
	}

	return server.New(server.Config{
		ListenAddr:   a.cfg.Server.ListenAddr,
		CORSOrigins:  a.cfg.Server.CORSOrigins,
		ReadTimeout:  a.cfg.Server.ReadTimeout,
		WriteTimeout: a.cfg.Server.WriteTimeout,
	}, a.orchestrator,
		server.WithLogger(a.logger),
		server.WithAuth(auth),
	)
}

// Close releases vector store instances and the storage backend.
func (a *App) Close() error {
	a.factory.ClearAll()

	if err := a.backend.Close(); err != nil {
		a.logger.Error("closing storage backend", "err", err)
		return err
	}
	return nil
}
