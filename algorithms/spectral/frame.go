package spectral

import (
	"errors"
	"fmt"
)

// ErrOddWindowSize signals a frame size that is not even. Downstream shape
// arithmetic (one-sided truncation at windowSize/2) requires even frames.
var ErrOddWindowSize = errors.New("window size must be even")

// Overlap slices a 1D signal into overlapping frames of windowSize samples,
// advancing windowStep samples between frames.
//
// The signal is first zero-padded at the tail by windowSize - len%windowSize
// samples, so a signal whose length is already a multiple of windowSize still
// gains a full window of padding. The frame count is
// (paddedLen - windowSize) / windowStep, truncated. Each frame is a fresh
// slice; the input is never modified.
func Overlap(signal []float64, windowSize, windowStep int) ([][]float64, error) {
	if windowSize <= 0 || windowSize%2 != 0 {
		return nil, fmt.Errorf("%w: got %d", ErrOddWindowSize, windowSize)
	}
	if windowStep <= 0 {
		return nil, fmt.Errorf("window step must be positive, got %d", windowStep)
	}

	padded := make([]float64, len(signal)+windowSize-len(signal)%windowSize)
	copy(padded, signal)

	numWindows := (len(padded) - windowSize) / windowStep
	if numWindows <= 0 {
		return [][]float64{}, nil
	}

	frames := make([][]float64, numWindows)
	for i := 0; i < numWindows; i++ {
		start := i * windowStep
		frame := make([]float64, windowSize)
		copy(frame, padded[start:start+windowSize])
		frames[i] = frame
	}

	return frames, nil
}
