package ai

// fallbackWindow is the character window size for the pseudo-embedding
// hash. Windows of this length slide over the text one byte at a time.
const fallbackWindow = 4

// FNV-1a constants, 32 bit.
const (
	fnvOffset = 2166136261
	fnvPrime  = 16777619
)

// FallbackEmbedding derives a deterministic pseudo-embedding from a
// rolling character hash of fixed-size text windows. The vector is
// not semantically meaningful, but identical text always yields a
// bit-identical vector, so exact-match behaviors keep working when
// the real model is unavailable.
func FallbackEmbedding(text string, dim int) []float32 {
	vector := make([]float32, dim)
	if dim <= 0 {
		return nil
	}

	data := []byte(text)
	if len(data) == 0 {
		return vector
	}

	if len(data) < fallbackWindow {
		h := hashWindow(data)
		vector[h%uint32(dim)] += 1
		return NormalizeVector(vector)
	}

	for i := 0; i+fallbackWindow <= len(data); i++ {
		h := hashWindow(data[i : i+fallbackWindow])
		vector[h%uint32(dim)] += 1
	}

	return NormalizeVector(vector)
}

func hashWindow(window []byte) uint32 {
	var h uint32 = fnvOffset
	for _, b := range window {
		h ^= uint32(b)
		h *= fnvPrime
	}
	return h
}
