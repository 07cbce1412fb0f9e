package search

import (
	"strings"

	"github.com/glyphica/iconsearch/core"
)

// SubstringSearch is the deterministic, backend-independent fallback:
// each icon's name, tags, and synonyms are lowercased into a single
// haystack, and icons whose haystack contains the lowercase query
// survive. Catalog order is preserved and every hit scores 0.
func SubstringSearch(icons []core.Icon, query string, limit int) []core.SearchResult {
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" || limit <= 0 {
		return []core.SearchResult{}
	}

	results := make([]core.SearchResult, 0, limit)
	for _, icon := range icons {
		if strings.Contains(haystack(icon), needle) {
			results = append(results, core.SearchResult{Icon: icon, Score: 0})
			if len(results) == limit {
				break
			}
		}
	}
	return results
}

func haystack(icon core.Icon) string {
	var b strings.Builder
	b.WriteString(icon.Name)
	for _, tag := range icon.Tags {
		b.WriteByte(' ')
		b.WriteString(tag)
	}
	for _, synonym := range icon.Synonyms {
		b.WriteByte(' ')
		b.WriteString(synonym)
	}
	return strings.ToLower(b.String())
}
