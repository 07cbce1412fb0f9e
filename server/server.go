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


// Package server exposes the icon search service over HTTP. The API
// doubles as the relay surface: constrained clients post query
// embeddings here instead of reaching a vector store directly.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/glyphica/iconsearch/core"
	"github.com/glyphica/iconsearch/search"
	"github.com/glyphica/iconsearch/vectorstore"
)

// Config holds HTTP server configuration.
type Config struct {
	ListenAddr   string
	CORSOrigins  []string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// SearchService is the capability the HTTP layer needs from the
// search orchestrator.
type SearchService interface {
	SearchIcons(ctx context.Context, query string, filters core.FilterOptions, limit int) ([]core.SearchResult, search.SearchMode)
	SearchByEmbedding(ctx context.Context, embedding []float32, limit int, filters vectorstore.Filters) ([]vectorstore.SearchHit, error)
	FilterOptions() core.FilterOptions
	SwitchVectorStore(ctx context.Context, config vectorstore.Config) error
	UpdateIconTag(ctx context.Context, id, newTag string) error
	ReembedIcons(ctx context.Context, items []search.ReembedItem) error
}

// Server wraps a chi router around a SearchService.
type Server struct {
	router  chi.Router
	cfg     Config
	service SearchService
	auth    AuthChecker
	logger  *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithAuth sets the checker guarding administrative endpoints.
// Default denies every request.
func WithAuth(auth AuthChecker) Option {
	return func(s *Server) {
		if auth != nil {
			s.auth = auth
		}
	}
}

// New creates a Server with routing, CORS, and a health endpoint.
func New(cfg Config, service SearchService, opts ...Option) (*Server, error) {
	if cfg.ListenAddr == "" {
		return nil, fmt.Errorf("listen address is required")
	}
	if service == nil {
		return nil, fmt.Errorf("search service is required")
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 30 * time.Second
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 60 * time.Second
	}

	s := &Server{
		cfg:     cfg,
		service: service,
		auth:    DenyAll{},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(corsMiddleware(cfg.CORSOrigins))

	r.Get("/health", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Post("/search", s.handleSearch)
		r.Get("/filters", s.handleFilters)
		r.Post("/vector-config", s.handleVectorConfig)
		r.Post("/tags", s.handleTags)
		r.With(s.requireAuth).Post("/embeddings", s.handleEmbeddings)
	})
	s.router = r

	return s, nil
}

// Handler returns the underlying http.Handler for testing.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start runs the HTTP server and blocks until the context is
// cancelled, then performs graceful shutdown.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.ListenAddr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.cfg.ListenAddr, err)
	}
	s.logger.Info("icon search server listening", "addr", ln.Addr().String())

	srv := &http.Server{
		Handler:      s.router,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return <-errCh
}

func corsMiddleware(origins []string) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		origins = []string{"http://localhost:5173"}
	}

	return cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	})
}
