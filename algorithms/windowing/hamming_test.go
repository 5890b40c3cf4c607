package windowing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHammingCoefficients(t *testing.T) {
	h := NewHamming(64)
	coeffs := h.GetCoefficients()
	require.Len(t, coeffs, 64)

	// Symmetric definition: endpoints at 0.54-0.46 = 0.08
	assert.InDelta(t, 0.08, coeffs[0], 1e-12)
	assert.InDelta(t, 0.08, coeffs[63], 1e-12)

	// Symmetry about the center
	for i := 0; i < 32; i++ {
		assert.InDelta(t, coeffs[i], coeffs[63-i], 1e-12)
	}

	for _, c := range coeffs {
		assert.Greater(t, c, 0.0)
		assert.LessOrEqual(t, c, 1.0)
	}
}

func TestHammingApply(t *testing.T) {
	h := NewHamming(8)

	signal := []float64{1, 1, 1, 1, 1, 1, 1, 1}
	windowed, err := h.Apply(signal)
	require.NoError(t, err)

	assert.Equal(t, h.GetCoefficients(), windowed)
	// Apply leaves the input alone
	assert.Equal(t, []float64{1, 1, 1, 1, 1, 1, 1, 1}, signal)
}

func TestHammingApplyInPlace(t *testing.T) {
	h := NewHamming(8)

	signal := []float64{1, 1, 1, 1, 1, 1, 1, 1}
	require.NoError(t, h.ApplyInPlace(signal))
	assert.Equal(t, h.GetCoefficients(), signal)
}

func TestHammingSizeMismatch(t *testing.T) {
	h := NewHamming(8)

	_, err := h.Apply(make([]float64, 4))
	assert.Error(t, err)
	assert.Error(t, h.ApplyInPlace(make([]float64, 4)))
}

func TestHammingMetadata(t *testing.T) {
	h := NewHamming(16)
	assert.Equal(t, 16, h.GetSize())
	assert.Equal(t, "hamming", h.GetType())
}
