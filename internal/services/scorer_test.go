package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCosineScorer(t *testing.T) {
	scorer := NewCosineScorer()

	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1.0},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0.0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1.0},
		{"scaled", []float32{1, 1}, []float32{5, 5}, 1.0},
		{"partial", []float32{1, 0}, []float32{0.8, 0.6}, 0.8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := scorer.Score(tt.a, tt.b)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-6)
		})
	}
}

func TestCosineScorerSymmetric(t *testing.T) {
	scorer := NewCosineScorer()

	a := []float32{0.2, -0.7, 0.4}
	b := []float32{0.9, 0.1, -0.3}

	ab, err := scorer.Score(a, b)
	require.NoError(t, err)
	ba, err := scorer.Score(b, a)
	require.NoError(t, err)

	assert.InDelta(t, ab, ba, 1e-9)
}

func TestCosineScorerUnavailable(t *testing.T) {
	scorer := NewCosineScorer()

	tests := []struct {
		name string
		a, b []float32
	}{
		{"empty a", nil, []float32{1, 2}},
		{"empty b", []float32{1, 2}, nil},
		{"length mismatch", []float32{1, 2}, []float32{1, 2, 3}},
		{"zero magnitude", []float32{0, 0}, []float32{1, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := scorer.Score(tt.a, tt.b)
			require.ErrorIs(t, err, ErrScoringUnavailable)
		})
	}
}
