// ABOUTME: Vector similarity helpers for embeddings and cluster summaries.
// ABOUTME: Cosine similarity, centroids, and cluster cohesion.
package embeddings

import "gonum.org/v1/gonum/floats"

// Cosine computes the cosine similarity between two vectors.
// Mismatched, empty, or zero vectors give 0.
func Cosine(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	na, nb := floats.Norm(a, 2), floats.Norm(b, 2)
	if na == 0 || nb == 0 {
		return 0
	}
	return floats.Dot(a, b) / (na * nb)
}

// Centroid returns the mean of vectors[i] for i in members.
func Centroid(vectors [][]float64, members []int) []float64 {
	if len(members) == 0 || len(vectors) == 0 {
		return nil
	}
	c := make([]float64, len(vectors[members[0]]))
	for _, m := range members {
		floats.Add(c, vectors[m])
	}
	floats.Scale(1/float64(len(members)), c)
	return c
}

// Cohesion is the mean cosine similarity of each member to the centroid.
// A singleton has cohesion 1 unless its vector is all zeros.
func Cohesion(vectors [][]float64, members []int) float64 {
	c := Centroid(vectors, members)
	if c == nil {
		return 0
	}
	var sum float64
	for _, m := range members {
		sum += Cosine(vectors[m], c)
	}
	return sum / float64(len(members))
}
