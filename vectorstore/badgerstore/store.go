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


// Package badgerstore implements the embedded persistent vector store
// backend on BadgerDB. Similarity search is a brute-force cosine scan;
// at icon-catalog scale (thousands of vectors) that is faster than
// maintaining an index.
package badgerstore

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	badgerdb "github.com/dgraph-io/badger/v4"
	"github.com/glyphica/iconsearch/core"
	"github.com/glyphica/iconsearch/storage"
	storagebadger "github.com/glyphica/iconsearch/storage/badger"
	"github.com/glyphica/iconsearch/vectorstore"
)

// Store is the embedded persistent vector store.
type Store struct {
	config  *vectorstore.EmbeddedConfig
	logger  *slog.Logger
	backend *storagebadger.Backend

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

// New creates an embedded store. The database is not opened until
// Initialize.
func New(config *vectorstore.EmbeddedConfig, opts ...Option) (*Store, error) {
	if config == nil {
		return nil, fmt.Errorf("%w: embedded settings missing", vectorstore.ErrMissingConfig)
	}
	if config.StoreName == "" {
		return nil, fmt.Errorf("%w: embedded store name", vectorstore.ErrMissingConfig)
	}

	s := &Store{
		config: config,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Initialize opens the underlying database. Idempotent.
func (s *Store) Initialize(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.initialized {
		return nil
	}

	backend, err := storagebadger.OpenBackend(s.config.Path, s.config.Path == "")
	if err != nil {
		return fmt.Errorf("open embedded store %q: %w", s.config.StoreName, err)
	}

	s.backend = backend
	s.initialized = true
	s.logger.Debug("embedded vector store opened",
		"store", s.config.StoreName,
		"path", s.config.Path,
		"min_similarity", s.config.EffectiveMinSimilarity())
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return nil
	}
	s.initialized = false
	return s.backend.Close()
}

func (s *Store) ready() (*storagebadger.Backend, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return nil, fmt.Errorf("embedded store %q not initialized", s.config.StoreName)
	}
	return s.backend, nil
}

func (s *Store) itemKey(id string) []byte {
	return []byte(fmt.Sprintf("vec:%s:%s", s.config.StoreName, id))
}

func (s *Store) keyPrefix() []byte {
	return []byte(fmt.Sprintf("vec:%s:", s.config.StoreName))
}

// AddVector stores an item, overwriting any existing item with the
// same id.
func (s *Store) AddVector(ctx context.Context, item core.VectorStoreItem) error {
	return s.BatchAddVectors(ctx, []core.VectorStoreItem{item})
}

// BatchAddVectors stores items in a single transaction.
func (s *Store) BatchAddVectors(ctx context.Context, items []core.VectorStoreItem) error {
	backend, err := s.ready()
	if err != nil {
		return err
	}
	for i := range items {
		if err := core.ValidateItem(&items[i]); err != nil {
			return err
		}
	}

	return backend.WithTx(func(tx *badgerdb.Txn) error {
		for i := range items {
			if err := tx.Set(s.itemKey(items[i].Id), storage.MarshalItem(&items[i])); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// GetVector fetches one item by id.
func (s *Store) GetVector(ctx context.Context, id string) (core.VectorStoreItem, bool, error) {
	backend, err := s.ready()
	if err != nil {
		return core.VectorStoreItem{}, false, err
	}

	var out core.VectorStoreItem
	found := false
	err = backend.WithTx(func(tx *badgerdb.Txn) error {
		item, err := tx.Get(s.itemKey(id))
		if err != nil {
			if err == badgerdb.ErrKeyNotFound {
				return nil
			}
			return err
		}
		return item.Value(func(val []byte) error {
			decoded, decodeErr := storage.UnmarshalItem(val)
			if decodeErr != nil {
				return decodeErr
			}
			out = *decoded
			found = true
			return nil
		})
	}, false)
	if err != nil {
		return core.VectorStoreItem{}, false, err
	}
	return out, found, nil
}

// GetVectors fetches items by id; missing ids are omitted.
func (s *Store) GetVectors(ctx context.Context, ids []string) ([]core.VectorStoreItem, error) {
	backend, err := s.ready()
	if err != nil {
		return nil, err
	}

	out := make([]core.VectorStoreItem, 0, len(ids))
	err = backend.WithTx(func(tx *badgerdb.Txn) error {
		for _, id := range ids {
			item, err := tx.Get(s.itemKey(id))
			if err != nil {
				if err == badgerdb.ErrKeyNotFound {
					continue
				}
				return err
			}
			err = item.Value(func(val []byte) error {
				decoded, decodeErr := storage.UnmarshalItem(val)
				if decodeErr != nil {
					return decodeErr
				}
				out = append(out, *decoded)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateVector replaces the embedding and merges metadata into the
// existing item. Absent items are created.
func (s *Store) UpdateVector(ctx context.Context, item core.VectorStoreItem) error {
	return s.BatchUpdateVectors(ctx, []core.VectorStoreItem{item})
}

// BatchUpdateVectors applies UpdateVector semantics to each item in a
// single transaction.
func (s *Store) BatchUpdateVectors(ctx context.Context, items []core.VectorStoreItem) error {
	backend, err := s.ready()
	if err != nil {
		return err
	}

	return backend.WithTx(func(tx *badgerdb.Txn) error {
		for i := range items {
			update := items[i]
			existing, err := tx.Get(s.itemKey(update.Id))
			if err == nil {
				err = existing.Value(func(val []byte) error {
					decoded, decodeErr := storage.UnmarshalItem(val)
					if decodeErr != nil {
						return decodeErr
					}
					update.Metadata = vectorstore.MergeMetadata(decoded.Metadata, items[i].Metadata)
					if len(update.Embedding) == 0 {
						update.Embedding = decoded.Embedding
					}
					return nil
				})
				if err != nil {
					return err
				}
			} else if err != badgerdb.ErrKeyNotFound {
				return err
			}

			if err := core.ValidateItem(&update); err != nil {
				return err
			}
			if err := tx.Set(s.itemKey(update.Id), storage.MarshalItem(&update)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// DeleteVector removes an item. Missing ids are a no-op.
func (s *Store) DeleteVector(ctx context.Context, id string) error {
	return s.BatchDeleteVectors(ctx, []string{id})
}

// BatchDeleteVectors removes items in a single transaction.
func (s *Store) BatchDeleteVectors(ctx context.Context, ids []string) error {
	backend, err := s.ready()
	if err != nil {
		return err
	}

	return backend.WithTx(func(tx *badgerdb.Txn) error {
		for _, id := range ids {
			if err := tx.Delete(s.itemKey(id)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// SearchVectors scans every stored vector, scores it against the query
// with cosine similarity, drops hits under the configured minimum, and
// returns the top hits in descending score order. Results below the
// threshold are removed entirely rather than ranked low.
func (s *Store) SearchVectors(ctx context.Context, query []float32, limit int, filters vectorstore.Filters) ([]vectorstore.SearchHit, error) {
	backend, err := s.ready()
	if err != nil {
		return nil, err
	}
	if len(query) == 0 {
		return nil, core.ErrEmptyEmbedding
	}
	if limit <= 0 {
		return nil, nil
	}

	minScore := s.config.EffectiveMinSimilarity()
	var hits []vectorstore.SearchHit

	err = backend.WithTx(func(tx *badgerdb.Txn) error {
		opts := badgerdb.DefaultIteratorOptions
		opts.Prefix = s.keyPrefix()
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			err := iter.Item().Value(func(val []byte) error {
				decoded, decodeErr := storage.UnmarshalItem(val)
				if decodeErr != nil {
					return decodeErr
				}
				if !vectorstore.MatchesFilters(decoded.Metadata, filters) {
					return nil
				}
				score := vectorstore.CosineSimilarity(query, decoded.Embedding)
				if score < minScore {
					return nil
				}
				hits = append(hits, vectorstore.SearchHit{
					Id:       decoded.Id,
					Score:    score,
					Metadata: decoded.Metadata,
				})
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	sort.Slice(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})
	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

// HasVector reports whether an item exists.
func (s *Store) HasVector(ctx context.Context, id string) (bool, error) {
	backend, err := s.ready()
	if err != nil {
		return false, err
	}

	found := false
	err = backend.WithTx(func(tx *badgerdb.Txn) error {
		_, err := tx.Get(s.itemKey(id))
		if err == badgerdb.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return nil
	}, false)
	return found, err
}

// Count returns the number of stored items.
func (s *Store) Count(ctx context.Context) (int, error) {
	backend, err := s.ready()
	if err != nil {
		return 0, err
	}

	count := 0
	err = backend.WithTx(func(tx *badgerdb.Txn) error {
		opts := badgerdb.DefaultIteratorOptions
		opts.Prefix = s.keyPrefix()
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	}, false)
	return count, err
}

// Clear removes every item belonging to this store.
func (s *Store) Clear(ctx context.Context) error {
	backend, err := s.ready()
	if err != nil {
		return err
	}
	return backend.DropPrefix(s.keyPrefix())
}
