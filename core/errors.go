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


package core

import "errors"

// Domain validation errors
var (
	// ErrInvalidIcon indicates an Icon failed validation.
	ErrInvalidIcon = errors.New("invalid icon")

	// ErrInvalidItem indicates a VectorStoreItem failed validation.
	ErrInvalidItem = errors.New("invalid vector store item")

	// ErrEmptyID indicates the Id field is empty.
	ErrEmptyID = errors.New("id cannot be empty")

	// ErrEmptyName indicates the Name field is empty.
	ErrEmptyName = errors.New("name cannot be empty")

	// ErrEmptyLibrary indicates the Library field is empty.
	ErrEmptyLibrary = errors.New("library cannot be empty")

	// ErrMalformedID indicates an icon ID that does not follow the
	// "<library>__<name>" convention.
	ErrMalformedID = errors.New("malformed icon id")

	// ErrEmptyEmbedding indicates an item carries no embedding.
	ErrEmptyEmbedding = errors.New("embedding cannot be empty")
)
