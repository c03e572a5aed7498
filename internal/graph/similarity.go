package graph

import "gonum.org/v1/gonum/floats"

// Cosine returns the cosine similarity of two vectors in [-1, 1]. It is
// symmetric and returns 0 (not an error) for zero-magnitude or
// mismatched-length vectors.
func Cosine(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	na := floats.Norm(a, 2)
	nb := floats.Norm(b, 2)
	if na == 0 || nb == 0 {
		return 0
	}
	return floats.Dot(a, b) / (na * nb)
}
