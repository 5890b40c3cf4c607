package spectral

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpectrogramLogBounds(t *testing.T) {
	signal := sineSignal(1024, 8192, 8192)
	builder := NewSpectrogramBuilder()

	specgram, err := builder.Compute(signal, SpectrogramParams{
		FFTSize:  256,
		StepSize: 16,
		Log:      true,
		Thresh:   4,
	})
	require.NoError(t, err)
	require.NotEmpty(t, specgram)

	maxVal := specgram[0][0]
	for _, row := range specgram {
		require.Len(t, row, 128)
		for _, v := range row {
			assert.GreaterOrEqual(t, v, -4.0)
			assert.LessOrEqual(t, v, 0.0)
			if v > maxVal {
				maxVal = v
			}
		}
	}

	// Peak normalization puts the maximum at exactly 0
	assert.Zero(t, maxVal)
}

func TestSpectrogramSilentSignal(t *testing.T) {
	builder := NewSpectrogramBuilder()

	_, err := builder.Compute(make([]float64, 4096), SpectrogramParams{
		FFTSize:  256,
		StepSize: 16,
		Log:      true,
		Thresh:   4,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSilentSignal)
}

func TestSpectrogramLinearClamp(t *testing.T) {
	builder := NewSpectrogramBuilder()

	// Linear path clamps low values up to the threshold, silent input included
	specgram, err := builder.Compute(make([]float64, 4096), SpectrogramParams{
		FFTSize:  256,
		StepSize: 16,
		Log:      false,
		Thresh:   0.5,
	})
	require.NoError(t, err)

	for _, row := range specgram {
		for _, v := range row {
			assert.GreaterOrEqual(t, v, 0.5)
		}
	}
}

func TestSpectrogramNegativeThreshold(t *testing.T) {
	builder := NewSpectrogramBuilder()
	_, err := builder.Compute(make([]float64, 4096), SpectrogramParams{
		FFTSize:  256,
		StepSize: 16,
		Log:      true,
		Thresh:   -1,
	})
	require.Error(t, err)
}
