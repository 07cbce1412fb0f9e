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


package ai

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Provider wraps a pretrained embedding model behind retry, timeout,
// and fallback logic. Once the model fails to load after the
// configured number of attempts, the provider permanently switches to
// fallback mode for its lifetime; it never retries the real model
// again unless the process restarts.
//
// Fallback mode trades semantic accuracy for availability: the
// deterministic pseudo-embeddings keep exact-match behavior working,
// and the search layer switches to substring matching.
type Provider struct {
	config *Config
	loader ModelLoader
	logger *slog.Logger

	mu          sync.Mutex
	initialized bool
	embedder    Embedder

	fallback atomic.Bool
}

// ProviderOption configures a Provider.
type ProviderOption func(*Provider)

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) ProviderOption {
	return func(p *Provider) {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
	}
}

// NewProvider creates an embedding provider. The loader constructs
// the real model; it is not invoked until Initialize (or the first
// embedding call).
func NewProvider(config *Config, loader ModelLoader, opts ...ProviderOption) (*Provider, error) {
	if loader == nil {
		return nil, ErrLoaderRequired
	}
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	p := &Provider{
		config: config,
		loader: loader,
		logger: slog.Default().With("component", "embedding-provider"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Initialize loads the embedding model. It is idempotent: the
// expensive load happens at most once, and repeated calls are no-ops.
// After MaxAttempts failed attempts the provider switches to fallback
// mode; Initialize still returns nil because the provider remains
// usable, just degraded.
func (p *Provider) Initialize(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.initialized {
		return nil
	}

	for attempt := 0; attempt < p.config.MaxAttempts; attempt++ {
		if attempt > 0 {
			delay := p.config.RetryBaseDelay
			for i := 0; i < attempt; i++ {
				delay *= 2
			}
			p.logger.Debug("retrying model load", "attempt", attempt+1, "delay", delay)

			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				// Treat an abandoned initialization like an exhausted
				// one: the caller gave up waiting.
				p.engageFallback("initialization cancelled", ctx.Err())
				p.initialized = true
				return nil
			case <-timer.C:
			}
		}

		embedder, err := p.loadOnce(ctx)
		if err == nil {
			p.embedder = embedder
			p.initialized = true
			p.logger.Info("embedding model loaded", "model", p.config.Model, "attempt", attempt+1)
			return nil
		}

		p.logger.Warn("model load attempt failed",
			"attempt", attempt+1, "maxAttempts", p.config.MaxAttempts, "err", err)
	}

	p.engageFallback("model unavailable after retries", nil)
	p.initialized = true
	return nil
}

// loadOnce races a single load attempt against the per-attempt timer.
// A timed-out load is abandoned, not cancelled: the loader goroutine
// may keep running (and downloading) in the background.
func (p *Provider) loadOnce(ctx context.Context) (Embedder, error) {
	type loadResult struct {
		embedder Embedder
		err      error
	}

	attemptCtx, cancel := context.WithTimeout(ctx, p.config.AttemptTimeout)
	defer cancel()

	resultCh := make(chan loadResult, 1)
	go func() {
		embedder, err := p.loader(attemptCtx)
		resultCh <- loadResult{embedder: embedder, err: err}
	}()

	select {
	case result := <-resultCh:
		return result.embedder, result.err
	case <-attemptCtx.Done():
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, ErrModelLoadTimeout
	}
}

// GenerateEmbedding produces a fixed-length vector for the text. In
// fallback mode it returns the deterministic pseudo-embedding. A
// runtime failure of the real model flips the provider to fallback
// mode and still returns a usable vector for this call (fail-open).
func (p *Provider) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	if p.UsingFallback() {
		return FallbackEmbedding(text, p.config.FallbackDimension), nil
	}

	if err := p.Initialize(ctx); err != nil {
		return nil, err
	}
	if p.UsingFallback() {
		return FallbackEmbedding(text, p.config.FallbackDimension), nil
	}

	vector, err := p.embedder.EmbedText(ctx, text)
	if err != nil {
		p.engageFallback("embedding generation failed", err)
		return FallbackEmbedding(text, p.config.FallbackDimension), nil
	}
	return NormalizeVector(vector), nil
}

// GenerateEmbeddings is the batch variant of GenerateEmbedding with
// the same fail-open semantics.
func (p *Provider) GenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	if p.UsingFallback() {
		return p.fallbackBatch(texts), nil
	}

	if err := p.Initialize(ctx); err != nil {
		return nil, err
	}
	if p.UsingFallback() {
		return p.fallbackBatch(texts), nil
	}

	vectors, err := p.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		p.engageFallback("batch embedding generation failed", err)
		return p.fallbackBatch(texts), nil
	}

	normalized := make([][]float32, len(vectors))
	for i, v := range vectors {
		normalized[i] = NormalizeVector(v)
	}
	return normalized, nil
}

// UsingFallback reports whether the provider is in fallback mode.
// The search layer uses this to pick a strategy.
func (p *Provider) UsingFallback() bool {
	return p.fallback.Load()
}

// ModelID returns the configured model identifier. Vector cache keys
// are derived from it.
func (p *Provider) ModelID() string {
	return p.config.Model
}

// Dimension returns the vector length produced in fallback mode.
func (p *Provider) Dimension() int {
	return p.config.FallbackDimension
}

func (p *Provider) fallbackBatch(texts []string) [][]float32 {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = FallbackEmbedding(text, p.config.FallbackDimension)
	}
	return vectors
}

func (p *Provider) engageFallback(reason string, err error) {
	if p.fallback.CompareAndSwap(false, true) {
		p.logger.Warn("switching to fallback embeddings", "reason", reason, "err", err)
	}
}
