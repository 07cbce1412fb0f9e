package search

import (
	"strings"

	"github.com/glyphica/iconsearch/core"
	"github.com/glyphica/iconsearch/vectorstore"
)

const cacheKeyPrefix = "icon_vectors"

// CacheKey derives the durable vector cache key for an embedding
// model. Vectors from different models are never interchangeable, so
// the model identifier namespaces the cache; slashes are flattened so
// the key stays usable as a plain storage key.
func CacheKey(modelID string) string {
	return cacheKeyPrefix + "_" + strings.ReplaceAll(modelID, "/", "_")
}

// cacheFresh reports whether a cached vector set still covers the
// catalog snapshot. Each cached item carries a digest of the document
// it was embedded from; a renamed or re-categorized icon, or any
// addition or removal, invalidates the whole set.
func cacheFresh(snapshot []core.Icon, cached []core.VectorStoreItem) bool {
	if len(cached) != len(snapshot) {
		return false
	}
	digests := make(map[string]string, len(cached))
	for _, item := range cached {
		digests[item.Id] = item.Metadata[vectorstore.FieldHash]
	}
	for _, icon := range snapshot {
		if digests[icon.Id] != core.ContentHash(core.DescribeIcon(icon.Name, icon.Category)) {
			return false
		}
	}
	return true
}
