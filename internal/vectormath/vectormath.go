// Package vectormath provides the similarity math shared by the course
// store backends.
package vectormath

import (
	"errors"
	"math"
)

// ErrDimensionMismatch indicates two vectors of different lengths.
var ErrDimensionMismatch = errors.New("vector dimension mismatch")

// CosineSimilarity returns the cosine similarity of a and b in [-1, 1].
// A zero vector yields similarity 0.
func CosineSimilarity(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, ErrDimensionMismatch
	}

	var dot, normA, normB float64
	for i := range a {
		av, bv := float64(a[i]), float64(b[i])
		dot += av * bv
		normA += av * av
		normB += bv * bv
	}
	if normA == 0 || normB == 0 {
		return 0, nil
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}

// CosineDistance returns 1 minus the cosine similarity of a and b.
// Lower is more similar.
func CosineDistance(a, b []float32) (float64, error) {
	similarity, err := CosineSimilarity(a, b)
	if err != nil {
		return 0, err
	}
	return 1 - similarity, nil
}
