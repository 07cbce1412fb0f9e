package core

import (
	"encoding/hex"

	"github.com/go-crypt/x/blake2b"
)

// ContentHash generates a deterministic hash of text content using
// BLAKE2b. Identical content always produces an identical digest,
// which is what makes it usable for change detection on icon
// descriptions and cached vector sets.
func ContentHash(text string) string {
	h, _ := blake2b.New(16, nil) // 16 bytes = 128 bits
	h.Write([]byte(text))
	return hex.EncodeToString(h.Sum(nil))
}
