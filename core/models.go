package core

import "strings"

// IDSeparator joins a library identifier and an icon name into a
// library-qualified icon ID.
const IDSeparator = "__"

// Icon is an immutable catalog record. The catalog is a snapshot per
// session: tag edits produce a new record rather than mutating one in
// place.
type Icon struct {
	Id       string   `json:"id"` // Library-qualified, unique: "<library>__<name>"
	Name     string   `json:"name"`
	Library  string   `json:"library"` // Source collection identifier
	Category string   `json:"category,omitempty"`
	Tags     []string `json:"tags,omitempty"` // Ordered, possibly empty
	Synonyms []string `json:"synonyms,omitempty"`
	SVG      string   `json:"svg,omitempty"` // Raw markup, may be empty when fetched lazily
}

// IconID builds the library-qualified ID for an icon by convention.
func IconID(library, name string) string {
	return library + IDSeparator + name
}

// WithTag returns a copy of the icon with the tag appended.
// The receiver is left untouched.
func (i Icon) WithTag(tag string) Icon {
	tags := make([]string, 0, len(i.Tags)+1)
	tags = append(tags, i.Tags...)
	tags = append(tags, tag)
	i.Tags = tags
	return i
}

// HasTag reports whether the icon carries the tag (exact match).
func (i Icon) HasTag(tag string) bool {
	for _, t := range i.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// VectorStoreItem pairs an icon's embedding with its flattened
// metadata projection. Id must equal an Icon's Id. All embeddings in
// one store share the same length, fixed by the active model.
type VectorStoreItem struct {
	Id        string            `json:"id"`
	Embedding []float32         `json:"embedding"`
	Metadata  map[string]string `json:"metadata,omitempty"` // List-typed fields are comma-joined
}

// SearchResult is a transient per-query result. Score is a similarity
// measure in [0,1] for vector search, or 0 for substring-match and
// no-query results.
type SearchResult struct {
	Icon  Icon    `json:"icon"`
	Score float32 `json:"score"`
}

// FilterOptions constrains a search. Each field is an OR-set: an
// empty slice places no constraint on that dimension. Libraries and
// categories use exact membership; tags use any-tag-present
// semantics.
type FilterOptions struct {
	Libraries  []string `json:"libraries,omitempty"`
	Categories []string `json:"categories,omitempty"`
	Tags       []string `json:"tags,omitempty"`
}

// IsEmpty reports whether no dimension is constrained.
func (f FilterOptions) IsEmpty() bool {
	return len(f.Libraries) == 0 && len(f.Categories) == 0 && len(f.Tags) == 0
}

// Matches reports whether the icon satisfies every constrained
// dimension.
func (f FilterOptions) Matches(icon Icon) bool {
	if len(f.Libraries) > 0 && !containsString(f.Libraries, icon.Library) {
		return false
	}
	if len(f.Categories) > 0 && !containsString(f.Categories, icon.Category) {
		return false
	}
	if len(f.Tags) > 0 {
		any := false
		for _, tag := range f.Tags {
			if icon.HasTag(tag) {
				any = true
				break
			}
		}
		if !any {
			return false
		}
	}
	return true
}

// NormalizeTag canonicalizes a user-supplied tag.
func NormalizeTag(tag string) string {
	return strings.ToLower(strings.TrimSpace(tag))
}

func containsString(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
