// Package storage defines the durable persistence interfaces used by
// icon search: the vector cache that avoids regenerating embeddings
// across restarts, and the tag overlay store that keeps user tag
// edits. Implementations live in subpackages (storage/badger).
package storage
