package services

import (
	"fmt"
	"math"
)

// SimilarityScorer computes a comparable similarity between two embedding
// vectors produced by the same model. Higher means more similar. Out-of-domain
// inputs fail with ErrScoringUnavailable rather than returning a sentinel
// score, so callers can tell "low similarity" from "could not score".
type SimilarityScorer interface {
	Score(a, b []float32) (float64, error)
}

type cosineScorer struct{}

// NewCosineScorer returns a scorer using cosine similarity, the same metric
// the vector index is configured with.
func NewCosineScorer() SimilarityScorer {
	return &cosineScorer{}
}

// Score implements SimilarityScorer. Symmetric; finite for every well-formed
// pair of vectors.
func (s *cosineScorer) Score(a, b []float32) (float64, error) {
	if len(a) == 0 || len(b) == 0 {
		return 0, fmt.Errorf("%w: empty vector", ErrScoringUnavailable)
	}
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: vector lengths differ (%d vs %d)",
			ErrScoringUnavailable, len(a), len(b))
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0, fmt.Errorf("%w: zero-magnitude vector", ErrScoringUnavailable)
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}
