package spectral

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterBankShape(t *testing.T) {
	fb, err := NewFilterBank(FilterBankParams{
		NumFilters: 64,
		FFTSize:    2048,
		SampleRate: 16000,
		LowFreq:    300,
		HighFreq:   8000,
	})
	require.NoError(t, err)

	assert.Equal(t, 64, fb.NumFilters())
	assert.Equal(t, 1024, fb.NumBins())
	require.Len(t, fb.Weights, 64)

	for j, row := range fb.Weights {
		require.Len(t, row, 1024)

		sum := 0.0
		for _, w := range row {
			assert.GreaterOrEqual(t, w, 0.0)
			assert.LessOrEqual(t, w, 1.0)
			sum += w
		}
		assert.Greater(t, sum, 0.0, "filter %d has empty support", j)
	}
}

func TestFilterBankHighFreqDefaultsToNyquist(t *testing.T) {
	fb, err := NewFilterBank(FilterBankParams{
		NumFilters: 32,
		FFTSize:    512,
		SampleRate: 16000,
		LowFreq:    0,
	})
	require.NoError(t, err)
	assert.Equal(t, 32, fb.NumFilters())
	assert.Equal(t, 256, fb.NumBins())
}

func TestFilterBankHighFreqAboveNyquist(t *testing.T) {
	_, err := NewFilterBank(FilterBankParams{
		NumFilters: 32,
		FFTSize:    512,
		SampleRate: 16000,
		LowFreq:    0,
		HighFreq:   9000,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidFreqRange)
}

func TestFilterBankDegenerateBins(t *testing.T) {
	// A 64-point FFT can't resolve 20 mel bands between 300 and 8000 Hz:
	// consecutive band edges land on the same FFT bin
	_, err := NewFilterBank(FilterBankParams{
		NumFilters: 20,
		FFTSize:    64,
		SampleRate: 16000,
		LowFreq:    300,
		HighFreq:   8000,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDegenerateFilter)
}

func TestFilterBankContiguousSupport(t *testing.T) {
	fb, err := NewFilterBank(FilterBankParams{
		NumFilters: 16,
		FFTSize:    1024,
		SampleRate: 16000,
		LowFreq:    300,
		HighFreq:   8000,
	})
	require.NoError(t, err)

	for j, row := range fb.Weights {
		first, last := -1, -1
		for i, w := range row {
			if w > 0 {
				if first < 0 {
					first = i
				}
				last = i
			}
		}
		require.GreaterOrEqual(t, first, 0, "filter %d is empty", j)

		// No holes between first and last nonzero bin, except the rising
		// ramp's zero start bin
		for i := first; i <= last; i++ {
			assert.Greater(t, row[i], 0.0, "filter %d has a hole at bin %d", j, i)
		}
	}
}

func TestFilterBankNormalized(t *testing.T) {
	fb, err := NewFilterBank(FilterBankParams{
		NumFilters: 64,
		FFTSize:    2048,
		SampleRate: 16000,
		LowFreq:    300,
		HighFreq:   8000,
	})
	require.NoError(t, err)

	normalized, err := fb.Normalized()
	require.NoError(t, err)

	require.Len(t, normalized, 1024)
	for _, row := range normalized {
		require.Len(t, row, 64)
	}

	// Each filter's column sums to one after normalization
	for j := 0; j < 64; j++ {
		sum := 0.0
		for i := 0; i < 1024; i++ {
			sum += normalized[i][j]
		}
		assert.InDelta(t, 1.0, sum, 1e-9, "filter %d", j)
	}
}

func TestFilterBankInvalidParams(t *testing.T) {
	_, err := NewFilterBank(FilterBankParams{NumFilters: 0, FFTSize: 512, SampleRate: 16000})
	assert.Error(t, err)

	_, err = NewFilterBank(FilterBankParams{NumFilters: 10, FFTSize: 511, SampleRate: 16000})
	assert.Error(t, err)

	_, err = NewFilterBank(FilterBankParams{NumFilters: 10, FFTSize: 512, SampleRate: 0})
	assert.Error(t, err)

	_, err = NewFilterBank(FilterBankParams{
		NumFilters: 10, FFTSize: 512, SampleRate: 16000, LowFreq: 5000, HighFreq: 4000,
	})
	assert.Error(t, err)
}
