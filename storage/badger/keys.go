package badger

import "fmt"

// Key prefixes for different data types
const (
	vectorCachePrefix = "veccache"
	tagOverlayPrefix  = "icontags"
)

// makeCacheKey generates a key for a cached vector set.
func makeCacheKey(cacheKey string) []byte {
	return []byte(fmt.Sprintf("%s:%s", vectorCachePrefix, cacheKey))
}

// makeTagKey generates a key for an icon's tag overlay.
func makeTagKey(iconID string) []byte {
	return []byte(fmt.Sprintf("%s:%s", tagOverlayPrefix, iconID))
}
