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

import (
	"fmt"
	"strings"
)

// ValidateIcon validates an Icon according to domain rules.
//
// Validation rules:
//   - Id must not be empty and must follow "<library>__<name>"
//   - Name and Library must not be empty
//
// NOT validated:
//   - SVG (may be empty when fetched lazily)
//   - Tags/Synonyms (may be empty)
func ValidateIcon(icon *Icon) error {
	if icon == nil {
		return fmt.Errorf("%w: icon is nil", ErrInvalidIcon)
	}

	if icon.Id == "" {
		return fmt.Errorf("%w: %w", ErrInvalidIcon, ErrEmptyID)
	}
	if icon.Name == "" {
		return fmt.Errorf("%w: %w", ErrInvalidIcon, ErrEmptyName)
	}
	if icon.Library == "" {
		return fmt.Errorf("%w: %w", ErrInvalidIcon, ErrEmptyLibrary)
	}
	if icon.Id != IconID(icon.Library, icon.Name) {
		return fmt.Errorf("%w: %w: %q", ErrInvalidIcon, ErrMalformedID, icon.Id)
	}

	return nil
}

// ValidateItem validates a VectorStoreItem according to domain rules.
//
// Validation rules:
//   - Id must not be empty
//   - Embedding must not be empty
func ValidateItem(item *VectorStoreItem) error {
	if item == nil {
		return fmt.Errorf("%w: item is nil", ErrInvalidItem)
	}

	if item.Id == "" {
		return fmt.Errorf("%w: %w", ErrInvalidItem, ErrEmptyID)
	}
	if len(item.Embedding) == 0 {
		return fmt.Errorf("%w: %w", ErrInvalidItem, ErrEmptyEmbedding)
	}

	return nil
}

// SplitIconID splits a library-qualified ID back into its library and
// name parts. Returns ErrMalformedID if the separator is missing.
func SplitIconID(id string) (library, name string, err error) {
	library, name, ok := strings.Cut(id, IDSeparator)
	if !ok || library == "" || name == "" {
		return "", "", fmt.Errorf("%w: %q", ErrMalformedID, id)
	}
	return library, name, nil
}
