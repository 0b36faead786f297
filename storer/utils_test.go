package storer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCosineSimilarity(t *testing.T) {
	require.InDelta(t, 1.0, CosineSimilarity([]float32{1, 2, 3}, []float32{2, 4, 6}), 1e-9)
	require.InDelta(t, 0.0, CosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-9)
	require.InDelta(t, -1.0, CosineSimilarity([]float32{1, 0}, []float32{-1, 0}), 1e-9)

	// mismatched or empty inputs degrade to zero
	require.Equal(t, 0.0, CosineSimilarity([]float32{1, 0}, []float32{1}))
	require.Equal(t, 0.0, CosineSimilarity(nil, nil))
	require.Equal(t, 0.0, CosineSimilarity([]float32{0, 0}, []float32{0, 0}))
}
