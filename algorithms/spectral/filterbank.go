package spectral

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidFreqRange signals a high band edge above the Nyquist frequency
	ErrInvalidFreqRange = errors.New("high frequency exceeds Nyquist")

	// ErrDegenerateFilter signals coincident consecutive FFT-bin boundaries.
	// The triangular ramp denominator would be zero there; failing fast keeps
	// division-by-zero out of the filterbank.
	ErrDegenerateFilter = errors.New("degenerate mel filter: coincident bin boundaries")
)

// FilterBankParams configures mel filterbank construction
type FilterBankParams struct {
	NumFilters int     `json:"num_filters"` // Number of mel bands
	FFTSize    int     `json:"fft_size"`    // FFT size the bank will be applied to
	SampleRate int     `json:"sample_rate"` // Sample rate in Hz
	LowFreq    float64 `json:"low_freq"`    // Lowest band edge in Hz
	HighFreq   float64 `json:"high_freq"`   // Highest band edge in Hz (default SampleRate/2)
}

// FilterBank is a triangular mel-scale filterbank.
//
// Weights has shape (NumFilters x FFTSize/2); each row is one triangular
// weighting function over FFT bins, non-negative with contiguous support.
type FilterBank struct {
	Weights [][]float64
	params  FilterBankParams
}

// NewFilterBank builds a triangular mel filterbank.
//
// NumFilters+2 points are spaced evenly in mel between the band edges,
// converted back to Hz, and mapped to FFT bins via
// floor((fftSize+1)*hz/sampleRate). Filter j rises linearly from 0 at bin[j]
// to 1 at bin[j+1], then falls to 0 at bin[j+2].
func NewFilterBank(params FilterBankParams) (*FilterBank, error) {
	if params.NumFilters <= 0 {
		return nil, fmt.Errorf("number of filters must be positive, got %d", params.NumFilters)
	}
	if params.FFTSize <= 0 || params.FFTSize%2 != 0 {
		return nil, fmt.Errorf("%w: got %d", ErrOddWindowSize, params.FFTSize)
	}
	if params.SampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be positive, got %d", params.SampleRate)
	}

	nyquist := float64(params.SampleRate) / 2.0
	if params.HighFreq <= 0 {
		params.HighFreq = nyquist
	}
	if params.HighFreq > nyquist {
		return nil, fmt.Errorf("%w: %g > %g", ErrInvalidFreqRange, params.HighFreq, nyquist)
	}
	if params.LowFreq < 0 || params.LowFreq >= params.HighFreq {
		return nil, fmt.Errorf("low frequency %g must lie in [0, %g)", params.LowFreq, params.HighFreq)
	}

	ms := NewMelScale()

	lowMel := ms.HzToMel(params.LowFreq)
	highMel := ms.HzToMel(params.HighFreq)

	// NumFilters+2 points evenly spaced in mel, mapped to FFT bins
	bins := make([]int, params.NumFilters+2)
	melStep := (highMel - lowMel) / float64(params.NumFilters+1)
	for i := range bins {
		hz := ms.MelToHz(lowMel + float64(i)*melStep)
		bins[i] = int(float64(params.FFTSize+1) * hz / float64(params.SampleRate))
	}

	weights := make([][]float64, params.NumFilters)
	for j := 0; j < params.NumFilters; j++ {
		left, center, right := bins[j], bins[j+1], bins[j+2]

		if center == left || right == center {
			return nil, fmt.Errorf("%w: filter %d spans bins [%d, %d, %d]",
				ErrDegenerateFilter, j, left, center, right)
		}

		row := make([]float64, params.FFTSize/2)
		for i := left; i < center; i++ {
			row[i] = float64(i-left) / float64(center-left)
		}
		for i := center; i < right; i++ {
			row[i] = float64(right-i) / float64(right-center)
		}
		weights[j] = row
	}

	return &FilterBank{
		Weights: weights,
		params:  params,
	}, nil
}

// NumFilters returns the number of mel bands
func (fb *FilterBank) NumFilters() int {
	return len(fb.Weights)
}

// NumBins returns the number of FFT bins each filter spans
func (fb *FilterBank) NumBins() int {
	if len(fb.Weights) == 0 {
		return 0
	}
	return len(fb.Weights[0])
}

// Normalized returns the (FFTSize/2 x NumFilters) projection matrix: the
// transpose of Weights with each source row divided by its own sum, so every
// filter contributes unit total weight.
func (fb *FilterBank) Normalized() ([][]float64, error) {
	sums := make([]float64, len(fb.Weights))
	for j, row := range fb.Weights {
		for _, w := range row {
			sums[j] += w
		}
		if sums[j] == 0 {
			return nil, fmt.Errorf("%w: filter %d has zero total weight", ErrDegenerateFilter, j)
		}
	}

	normalized := make([][]float64, fb.NumBins())
	for i := range normalized {
		col := make([]float64, len(fb.Weights))
		for j := range fb.Weights {
			col[j] = fb.Weights[j][i] / sums[j]
		}
		normalized[i] = col
	}

	return normalized, nil
}
