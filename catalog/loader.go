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


package catalog

import (
	"context"

	"github.com/glyphica/iconsearch/core"
)

// Loader materializes icon records for the selected libraries.
// The search layer treats it as a black box and never mutates its
// output in place.
type Loader interface {
	// LoadIcons returns every icon in the named libraries. Icons carry
	// tags derived from their hyphenated names and empty synonyms
	// unless the underlying source provides richer data.
	LoadIcons(ctx context.Context, libraries []string) ([]core.Icon, error)
}

// Static is a Loader over a fixed in-memory icon set, used in tests
// and for preloaded catalogs.
type Static struct {
	Icons []core.Icon
}

var _ Loader = (*Static)(nil)

// LoadIcons returns the subset of the fixed icon set belonging to the
// named libraries, preserving order.
func (s *Static) LoadIcons(ctx context.Context, libraries []string) ([]core.Icon, error) {
	wanted := make(map[string]bool, len(libraries))
	for _, lib := range libraries {
		wanted[lib] = true
	}

	var icons []core.Icon
	for _, icon := range s.Icons {
		if wanted[icon.Library] {
			icons = append(icons, icon)
		}
	}
	return icons, nil
}
