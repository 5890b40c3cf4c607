package spectral

import (
	"errors"
	"fmt"
	"math"

	"github.com/beatmachine/melspec/algorithms/common"
)

// ErrTooFewFrames signals a spectrogram too short to survive time-axis
// compression plus the edge trim.
var ErrTooFewFrames = errors.New("too few time frames after resampling")

// MelProjector projects a magnitude spectrogram onto mel bands and compresses
// the time axis.
type MelProjector struct {
	interp *common.Interpolator
}

// NewMelProjector creates a projector using Catmull-Rom cubic resampling
func NewMelProjector() *MelProjector {
	return &MelProjector{
		interp: common.NewInterpolator(common.Cubic),
	}
}

// Project multiplies the (frames x bins) spectrogram through the
// (bins x filters) normalized filterbank matrix, yielding one row per mel
// band, then resamples each row along the time axis by 1/shortenFactor and
// drops the first and last columns to trim interpolation edge artifacts.
//
// The resampled width is math.Round(frames/shortenFactor) (half away from
// zero); the returned width is that minus 2.
func (mp *MelProjector) Project(spectrogram [][]float64, normalizedFilter [][]float64, shortenFactor float64) ([][]float64, error) {
	if len(spectrogram) == 0 {
		return nil, fmt.Errorf("empty spectrogram")
	}
	if shortenFactor < 1 {
		return nil, fmt.Errorf("shorten factor must be >= 1, got %g", shortenFactor)
	}

	numBins := len(spectrogram[0])
	if len(normalizedFilter) != numBins {
		return nil, fmt.Errorf("filterbank rows (%d) don't match spectrogram bins (%d)",
			len(normalizedFilter), numBins)
	}

	numFilters := len(normalizedFilter[0])
	numFrames := len(spectrogram)

	// mel[j][t] = sum_k filter[k][j] * spectrogram[t][k]
	mel := make([][]float64, numFilters)
	for j := range mel {
		row := make([]float64, numFrames)
		for t, specRow := range spectrogram {
			sum := 0.0
			for k, v := range specRow {
				sum += normalizedFilter[k][j] * v
			}
			row[t] = sum
		}
		mel[j] = row
	}

	resampledWidth := int(math.Round(float64(numFrames) / shortenFactor))
	if resampledWidth < 3 {
		return nil, fmt.Errorf("%w: %d frames at factor %g leave %d columns",
			ErrTooFewFrames, numFrames, shortenFactor, resampledWidth)
	}

	out := make([][]float64, numFilters)
	for j, row := range mel {
		resampled := mp.interp.InterpolateArray(row, resampledWidth)
		trimmed := make([]float64, resampledWidth-2)
		copy(trimmed, resampled[1:resampledWidth-1])
		out[j] = trimmed
	}

	return out, nil
}
