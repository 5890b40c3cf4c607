package spectral

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/beatmachine/melspec/algorithms/common"
	"github.com/beatmachine/melspec/algorithms/windowing"
)

// STFT provides Short-Time Fourier Transform functionality
type STFT struct {
	fft *FFT
}

// STFTParams controls a single STFT computation
type STFTParams struct {
	FFTSize int `json:"fft_size"` // Frame size, must be even
	Step    int `json:"step"`     // Hop between frames in samples

	// MeanNormalize subtracts the global signal mean before framing
	MeanNormalize bool `json:"mean_normalize"`
	// Real requests real-transform truncation (FFTSize/2 bins)
	Real bool `json:"real"`
	// OneSided truncates to the first FFTSize/2 bins, discarding the
	// conjugate-symmetric half. Takes precedence over Real; the two happen
	// to agree on the cut width, and downstream shape assumptions depend on
	// that width staying FFTSize/2.
	OneSided bool `json:"compute_onesided"`
}

// STFTResult holds the result of an STFT computation
type STFTResult struct {
	Complex    [][]complex128 `json:"-"`           // Time x Frequency complex matrix
	TimeFrames int            `json:"time_frames"` // Number of time frames
	FreqBins   int            `json:"freq_bins"`   // Number of frequency bins kept
	WindowSize int            `json:"window_size"` // FFT frame size
	HopSize    int            `json:"hop_size"`    // Hop size between frames
}

// NewSTFT creates a new STFT calculator
func NewSTFT() *STFT {
	return &STFT{
		fft: NewFFT(),
	}
}

// Compute calculates the short-time Fourier transform of a 1D real signal.
// Frames come from Overlap (tail zero-padded), each frame is Hamming-windowed,
// and frames are transformed independently by a bounded worker pool.
func (s *STFT) Compute(signal []float64, params STFTParams) (*STFTResult, error) {
	if len(signal) == 0 {
		return nil, fmt.Errorf("empty signal")
	}

	if params.MeanNormalize {
		mean := common.Mean(signal)
		centered := make([]float64, len(signal))
		for i, v := range signal {
			centered[i] = v - mean
		}
		signal = centered
	}

	frames, err := Overlap(signal, params.FFTSize, params.Step)
	if err != nil {
		return nil, err
	}
	if len(frames) == 0 {
		return nil, fmt.Errorf("signal too short for fft size %d and step %d", params.FFTSize, params.Step)
	}

	freqBins := params.FFTSize
	if params.Real {
		freqBins = params.FFTSize / 2
	}
	if params.OneSided {
		freqBins = params.FFTSize / 2
	}

	window := windowing.NewHamming(params.FFTSize)

	spectrum := make([][]complex128, len(frames))

	numWorkers := optimalWorkerCount(len(frames))
	jobs := make(chan int, len(frames))

	var wg sync.WaitGroup
	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				frame := frames[idx]
				// Frames come from Overlap with exactly FFTSize samples
				_ = window.ApplyInPlace(frame)

				full := s.fft.ComputeReal(frame)

				row := make([]complex128, freqBins)
				copy(row, full[:freqBins])
				spectrum[idx] = row
			}
		}()
	}

	for idx := range frames {
		jobs <- idx
	}
	close(jobs)
	wg.Wait()

	return &STFTResult{
		Complex:    spectrum,
		TimeFrames: len(frames),
		FreqBins:   freqBins,
		WindowSize: params.FFTSize,
		HopSize:    params.Step,
	}, nil
}

// optimalWorkerCount sizes the worker pool to the workload
func optimalWorkerCount(numFrames int) int {
	numCPU := runtime.NumCPU()

	if numFrames < 100 {
		return max(1, min(numCPU/2, numFrames))
	}
	if numFrames < 1000 {
		return min(numCPU, 8)
	}
	return numCPU
}
