package spectral

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	"github.com/beatmachine/melspec/algorithms/common"
)

// ErrSilentSignal signals an all-zero magnitude spectrum. Log compression
// normalizes by the matrix maximum, and a zero maximum would otherwise turn
// into NaN/Inf that poisons everything downstream.
var ErrSilentSignal = errors.New("silent signal: spectrogram maximum is zero")

// SpectrogramParams controls spectrogram construction
type SpectrogramParams struct {
	FFTSize  int     `json:"fft_size"`  // Frame size, must be even
	StepSize int     `json:"step_size"` // Hop between frames in samples
	Log      bool    `json:"log"`       // Log-compress after peak normalization
	Thresh   float64 `json:"thresh"`    // Floor threshold (log scale when Log)
}

// SpectrogramBuilder converts a signal into a magnitude spectrogram
type SpectrogramBuilder struct {
	stft *STFT
}

// NewSpectrogramBuilder creates a new spectrogram builder
func NewSpectrogramBuilder() *SpectrogramBuilder {
	return &SpectrogramBuilder{
		stft: NewSTFT(),
	}
}

// Compute builds a (timeFrames x FFTSize/2) magnitude spectrogram.
//
// With Log set, every value is divided by the matrix-wide maximum (peak maps
// to 1), log10-compressed, and floor-clamped at -Thresh, so the output lies in
// [-Thresh, 0] with the peak at exactly 0. Without Log, values below Thresh
// are raised to Thresh on the linear scale. A silent signal returns
// ErrSilentSignal rather than NaN.
func (sb *SpectrogramBuilder) Compute(signal []float64, params SpectrogramParams) ([][]float64, error) {
	if params.Thresh < 0 {
		return nil, fmt.Errorf("threshold must be non-negative, got %g", params.Thresh)
	}

	result, err := sb.stft.Compute(signal, STFTParams{
		FFTSize:       params.FFTSize,
		Step:          params.StepSize,
		MeanNormalize: true,
		Real:          false,
		OneSided:      true,
	})
	if err != nil {
		return nil, err
	}

	specgram := make([][]float64, result.TimeFrames)
	for t, row := range result.Complex {
		magRow := make([]float64, len(row))
		for i, c := range row {
			magRow[i] = cmplx.Abs(c)
		}
		specgram[t] = magRow
	}

	if !params.Log {
		for _, row := range specgram {
			for i, v := range row {
				if v < params.Thresh {
					row[i] = params.Thresh
				}
			}
		}
		return specgram, nil
	}

	maxVal := common.MatrixMax(specgram)
	if maxVal == 0 {
		return nil, ErrSilentSignal
	}

	for _, row := range specgram {
		for i, v := range row {
			logVal := math.Log10(v / maxVal)
			if logVal < -params.Thresh {
				logVal = -params.Thresh
			}
			row[i] = logVal
		}
	}

	return specgram, nil
}
