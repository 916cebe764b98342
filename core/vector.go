package core

import "math"

// Cosine computes the cosine similarity dot(a,b) / (|a|*|b|).
// It returns 0 when either vector has zero norm or the lengths differ,
// so degenerate inputs score as unrelated instead of dividing by zero.
// All similarity math in this module goes through this one definition.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
