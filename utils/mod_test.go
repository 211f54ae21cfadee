package utils

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFindIndex(t *testing.T) {
	require.Equal(t, 1, FindIndex([]string{"a", "b"}, "b"))
	require.Equal(t, -1, FindIndex([]string{"a", "b"}, "c"))
}

func TestNormalize(t *testing.T) {
	t.Run("scales to one", func(t *testing.T) {
		xs := []float64{1, 3}
		require.True(t, Normalize(xs))
		require.InDeltaSlice(t, []float64{0.25, 0.75}, xs, 1e-12)
	})

	t.Run("zero mass becomes uniform", func(t *testing.T) {
		xs := []float64{0, 0, 0, 0}
		require.False(t, Normalize(xs))
		require.InDeltaSlice(t, []float64{0.25, 0.25, 0.25, 0.25}, xs, 1e-12)
	})
}
