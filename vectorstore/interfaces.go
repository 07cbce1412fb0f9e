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

import (
	"context"

	"github.com/glyphica/iconsearch/core"
)

// Filters constrains a similarity search at the store level: metadata
// field name to the set of acceptable values (OR within a field, AND
// across fields). Backends apply them server-side when they can and
// client-side otherwise.
type Filters map[string][]string

// SearchHit is one similarity match returned by a store. Metadata is
// whatever the backend persisted for the item; remote backends may
// return list-typed fields comma-joined.
type SearchHit struct {
	Id       string            `json:"id"`
	Score    float32           `json:"score"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// VectorStore is the uniform capability contract every backend
// implements. All operations use upsert/absent-is-not-an-error
// semantics so callers never need backend-specific handling:
//
//   - Add/BatchAdd overwrite embedding and metadata for an existing id.
//   - Get/GetVectors simply omit missing ids from the result.
//   - Update merges metadata into the existing metadata (fields not
//     included are preserved) and always fully replaces the embedding.
//   - Delete of a non-existent id is a no-op.
//
// Implementations must be safe for concurrent use.
type VectorStore interface {
	// Initialize prepares the backend (opens files, creates remote
	// collections). It is idempotent and safe to call multiple times.
	Initialize(ctx context.Context) error

	AddVector(ctx context.Context, item core.VectorStoreItem) error
	BatchAddVectors(ctx context.Context, items []core.VectorStoreItem) error

	GetVector(ctx context.Context, id string) (core.VectorStoreItem, bool, error)
	GetVectors(ctx context.Context, ids []string) ([]core.VectorStoreItem, error)

	UpdateVector(ctx context.Context, item core.VectorStoreItem) error
	BatchUpdateVectors(ctx context.Context, items []core.VectorStoreItem) error

	DeleteVector(ctx context.Context, id string) error
	BatchDeleteVectors(ctx context.Context, ids []string) error

	// SearchVectors returns up to limit hits ordered by descending
	// similarity score. Filters are equality/membership constraints
	// over metadata fields.
	SearchVectors(ctx context.Context, query []float32, limit int, filters Filters) ([]SearchHit, error)

	HasVector(ctx context.Context, id string) (bool, error)
	Count(ctx context.Context) (int, error)
	Clear(ctx context.Context) error

	Close() error
}

// StoreFactory constructs and memoizes VectorStore instances by
// (backend type, instance key). The search layer depends on this
// interface rather than the concrete registry so backends stay out of
// its import graph.
type StoreFactory interface {
	// Create returns the memoized instance for (config.Type,
	// instanceKey), constructing it on first use. The same key always
	// returns the same instance until it is removed.
	Create(config Config, instanceKey string) (VectorStore, error)

	// Remove evicts and closes the instance under the key, if any.
	Remove(backendType BackendType, instanceKey string)

	// ClearAll evicts every live instance.
	ClearAll()
}
