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


package storage

import (
	"context"

	"github.com/glyphica/iconsearch/core"
)

// VectorCache is a durable key -> vector-item-array store used to
// skip regeneration of embeddings across process restarts. Keys are
// derived from the embedding model identifier.
//
// The cache is purely a regeneration-avoidance optimization, never
// the system of record: the vector store stays authoritative for
// search, and losing the cache only costs recomputation.
type VectorCache interface {
	// Get returns the cached vector set under key. The boolean
	// reports whether the key was present; absence is not an error.
	Get(ctx context.Context, key string) ([]core.VectorStoreItem, bool, error)

	// Put replaces the entire vector set under key.
	Put(ctx context.Context, key string, items []core.VectorStoreItem) error

	// Delete removes the vector set under key. Deleting a missing key
	// is a no-op.
	Delete(ctx context.Context, key string) error

	// Close releases the underlying storage.
	Close() error
}

// TagStore persists user tag edits as an overlay keyed by icon ID, so
// edits survive restarts and re-apply onto freshly loaded catalogs.
type TagStore interface {
	// GetTags returns the persisted tag list for an icon. The boolean
	// reports whether an overlay exists.
	GetTags(ctx context.Context, iconID string) ([]string, bool, error)

	// PutTags replaces the persisted tag list for an icon.
	PutTags(ctx context.Context, iconID string, tags []string) error

	// All returns every persisted overlay, keyed by icon ID.
	All(ctx context.Context) (map[string][]string, error)

	// Close releases the underlying storage.
	Close() error
}
