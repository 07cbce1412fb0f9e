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

import "errors"

var (
	// ErrLoaderRequired is returned when a catalog loader is not provided.
	ErrLoaderRequired = errors.New("catalog loader required")

	// ErrProviderRequired is returned when an embedding provider is not provided.
	ErrProviderRequired = errors.New("embedding provider required")

	// ErrFactoryRequired is returned when a vector store factory is not provided.
	ErrFactoryRequired = errors.New("vector store factory required")

	// ErrIconNotFound is returned when a tag update names an unknown icon.
	ErrIconNotFound = errors.New("icon not found in catalog")

	// ErrEmptyTag is returned when a tag update normalizes to nothing.
	ErrEmptyTag = errors.New("tag is empty after normalization")

	// ErrStoreUnavailable indicates the active vector store could not
	// be used; callers fall back to substring search.
	ErrStoreUnavailable = errors.New("vector store unavailable")
)
