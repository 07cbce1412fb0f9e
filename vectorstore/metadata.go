package vectorstore

import (
	"strings"

	"github.com/glyphica/iconsearch/core"
)

// Metadata field names shared by every backend.
const (
	FieldName     = "name"
	FieldLibrary  = "library"
	FieldCategory = "category"
	FieldTags     = "tags"
	FieldSynonyms = "synonyms"
	FieldHash     = "contentHash"
)

// MetadataFromIcon projects an icon's filterable attributes into the
// flat key->string metadata shape stores persist. List-typed fields
// are comma-joined. FieldHash digests the icon's embedding document
// so stored vectors can be checked against a later catalog.
func MetadataFromIcon(icon core.Icon) map[string]string {
	return map[string]string{
		FieldName:     icon.Name,
		FieldLibrary:  icon.Library,
		FieldCategory: icon.Category,
		FieldTags:     JoinList(icon.Tags),
		FieldSynonyms: JoinList(icon.Synonyms),
		FieldHash:     core.ContentHash(core.DescribeIcon(icon.Name, icon.Category)),
	}
}

// IconFromMetadata reconstructs an icon record from stored metadata.
// Remote backends may hand back partial metadata; missing fields stay
// zero and the caller falls back to its catalog.
func IconFromMetadata(id string, metadata map[string]string) core.Icon {
	icon := core.Icon{
		Id:       id,
		Name:     metadata[FieldName],
		Library:  metadata[FieldLibrary],
		Category: metadata[FieldCategory],
		Tags:     SplitList(metadata[FieldTags]),
		Synonyms: SplitList(metadata[FieldSynonyms]),
	}
	if icon.Name == "" || icon.Library == "" {
		if library, name, err := core.SplitIconID(id); err == nil {
			if icon.Library == "" {
				icon.Library = library
			}
			if icon.Name == "" {
				icon.Name = name
			}
		}
	}
	return icon
}

// JoinList comma-joins a list-typed metadata value.
func JoinList(values []string) string {
	return strings.Join(values, ",")
}

// SplitList reconstructs a list-typed metadata value by splitting on
// commas. Empty input yields nil; whitespace around elements is
// trimmed.
func SplitList(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// MergeMetadata merges an update into existing metadata: fields
// present in the update overwrite, fields absent from the update are
// preserved. Neither input map is mutated.
func MergeMetadata(existing, update map[string]string) map[string]string {
	merged := make(map[string]string, len(existing)+len(update))
	for k, v := range existing {
		merged[k] = v
	}
	for k, v := range update {
		merged[k] = v
	}
	return merged
}

// MatchesFilters reports whether metadata satisfies every filter
// field. A field matches when its stored value equals one of the
// allowed values, or, for comma-joined list fields, when any list
// element does.
func MatchesFilters(metadata map[string]string, filters Filters) bool {
	for field, allowed := range filters {
		if len(allowed) == 0 {
			continue
		}
		stored, ok := metadata[field]
		if !ok {
			return false
		}
		if !valueMatches(stored, allowed) {
			return false
		}
	}
	return true
}

func valueMatches(stored string, allowed []string) bool {
	for _, want := range allowed {
		if stored == want {
			return true
		}
	}
	for _, element := range SplitList(stored) {
		for _, want := range allowed {
			if element == want {
				return true
			}
		}
	}
	return false
}
