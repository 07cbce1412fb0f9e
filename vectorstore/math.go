package vectorstore

import "math"

// DotProduct calculates the dot product of two vectors. Length
// mismatches are tolerated by truncating to the shorter vector.
func DotProduct(a, b []float32) float32 {
	var sum float32
	minLen := len(a)
	if len(b) < minLen {
		minLen = len(b)
	}
	for i := 0; i < minLen; i++ {
		sum += a[i] * b[i]
	}
	return sum
}

// CosineSimilarity calculates the normalized dot product of two
// vectors, in [-1, 1]. A zero vector yields 0.
func CosineSimilarity(a, b []float32) float32 {
	dot := DotProduct(a, b)
	normA := DotProduct(a, a)
	normB := DotProduct(b, b)
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (float32(math.Sqrt(float64(normA))) * float32(math.Sqrt(float64(normB))))
}
