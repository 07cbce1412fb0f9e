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


package reembed

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/glyphica/iconsearch/core"
	"github.com/glyphica/iconsearch/vectorstore"
	"github.com/panjf2000/ants/v2"
)

// Embedder is the single capability the generator needs from the
// embedding layer.
type Embedder interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// Generator turns a set of catalog icons into vector store items by
// embedding each icon's normalized description. Work is spread over a
// bounded worker pool; each embedding call gets its own timeout and
// retry budget, while the caller bounds the whole batch through ctx.
type Generator struct {
	embedder Embedder
	logger   *slog.Logger
	progress io.Writer

	poolSize    int
	maxRetries  int
	retryDelay  time.Duration
	callTimeout time.Duration
}

// Option configures a Generator.
type Option func(*Generator)

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(g *Generator) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// WithPoolSize sets the worker pool size for concurrent embedding.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(g *Generator) {
		if size < 1 {
			size = 1
		}
		g.poolSize = size
	}
}

// WithProgress sets a writer for progress output (typically
// os.Stderr). Default is no progress reporting.
func WithProgress(w io.Writer) Option {
	return func(g *Generator) {
		g.progress = w
	}
}

// WithRetry sets the per-icon retry budget and base backoff delay.
func WithRetry(maxRetries int, baseDelay time.Duration) Option {
	return func(g *Generator) {
		if maxRetries > 0 {
			g.maxRetries = maxRetries
		}
		if baseDelay > 0 {
			g.retryDelay = baseDelay
		}
	}
}

// WithCallTimeout bounds each individual embedding call.
func WithCallTimeout(timeout time.Duration) Option {
	return func(g *Generator) {
		if timeout > 0 {
			g.callTimeout = timeout
		}
	}
}

// NewGenerator creates a batch embedding generator.
func NewGenerator(embedder Embedder, opts ...Option) (*Generator, error) {
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	g := &Generator{
		embedder:    embedder,
		logger:      slog.Default(),
		poolSize:    poolSize,
		maxRetries:  3,
		retryDelay:  500 * time.Millisecond,
		callTimeout: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// GenerateItems embeds every icon's description and returns one
// vector store item per icon, in catalog order. A failed icon fails
// the whole batch after its retry budget is spent; the caller decides
// whether a partial regeneration is acceptable by retrying at a higher
// level.
func (g *Generator) GenerateItems(ctx context.Context, icons []core.Icon) ([]core.VectorStoreItem, error) {
	if len(icons) == 0 {
		return nil, nil
	}

	pool, err := ants.NewPool(g.poolSize)
	if err != nil {
		return nil, err
	}
	defer pool.Release()

	var tracker *ProgressTracker
	if g.progress != nil {
		tracker = NewProgressTracker(g.progress, len(icons), g.poolSize)
		tracker.Start()
	}

	items := make([]core.VectorStoreItem, len(icons))
	errs := make([]error, len(icons))

	var wg sync.WaitGroup
	for i := range icons {
		i := i
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			items[i], errs[i] = g.generateOne(ctx, icons[i])
			if tracker != nil {
				tracker.Increment(1)
			}
		})
		if submitErr != nil {
			wg.Done()
			errs[i] = submitErr
		}
	}
	wg.Wait()

	if tracker != nil {
		tracker.Finish()
	}

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("embed icon %q: %w", icons[i].Id, err)
		}
	}
	return items, nil
}

func (g *Generator) generateOne(ctx context.Context, icon core.Icon) (core.VectorStoreItem, error) {
	document := core.DescribeIcon(icon.Name, icon.Category)

	var embedding []float32
	err := RetryWithBackoff(ctx, func() error {
		callCtx, cancel := context.WithTimeout(ctx, g.callTimeout)
		defer cancel()

		var embedErr error
		embedding, embedErr = g.embedder.GenerateEmbedding(callCtx, document)
		return embedErr
	}, g.maxRetries, g.retryDelay)
	if err != nil {
		return core.VectorStoreItem{}, err
	}

	return core.VectorStoreItem{
		Id:        icon.Id,
		Embedding: embedding,
		Metadata:  vectorstore.MetadataFromIcon(icon),
	}, nil
}
