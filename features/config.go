package features

import (
	"fmt"
)

// Config is the immutable pipeline configuration. Every stage receives what
// it needs from here; no stage carries ambient state of its own.
type Config struct {
	// Band-pass pre-processing
	LowCut      float64 `json:"lowcut" mapstructure:"lowcut"`
	HighCut     float64 `json:"highcut" mapstructure:"highcut"`
	FilterOrder int     `json:"filter_order" mapstructure:"filter_order"`

	// Spectrogram
	FFTSize    int     `json:"fft_size" mapstructure:"fft_size"`
	SpecThresh float64 `json:"spec_thresh" mapstructure:"spec_thresh"`

	// Mel projection
	NumMelFilters int     `json:"n_mel_filters" mapstructure:"n_mel_filters"`
	ShortenFactor float64 `json:"shorten_factor" mapstructure:"shorten_factor"`
	StartFreq     float64 `json:"start_freq" mapstructure:"start_freq"`
	EndFreq       float64 `json:"end_freq" mapstructure:"end_freq"`

	SampleRate int `json:"sample_rate" mapstructure:"sample_rate"`
}

// DefaultConfig returns the stock pipeline configuration
func DefaultConfig() Config {
	return Config{
		LowCut:        500,
		HighCut:       15000,
		FilterOrder:   5,
		FFTSize:       2048,
		SpecThresh:    4,
		NumMelFilters: 64,
		ShortenFactor: 10,
		StartFreq:     300,
		EndFreq:       8000,
		SampleRate:    16000,
	}
}

// StepSize is the STFT hop, derived from the FFT size rather than stored so
// the two can never disagree.
func (c Config) StepSize() int {
	return c.FFTSize / 16
}

// Validate checks every precondition the pipeline stages rely on
func (c Config) Validate() error {
	if c.FFTSize <= 0 || c.FFTSize%2 != 0 {
		return fmt.Errorf("fft_size must be positive and even, got %d", c.FFTSize)
	}
	if c.StepSize() <= 0 {
		return fmt.Errorf("fft_size %d too small to derive a step", c.FFTSize)
	}
	if c.SampleRate <= 0 {
		return fmt.Errorf("sample_rate must be positive, got %d", c.SampleRate)
	}
	if c.SpecThresh < 0 {
		return fmt.Errorf("spec_thresh must be non-negative, got %g", c.SpecThresh)
	}
	if c.NumMelFilters <= 0 {
		return fmt.Errorf("n_mel_filters must be positive, got %d", c.NumMelFilters)
	}
	if c.ShortenFactor < 1 {
		return fmt.Errorf("shorten_factor must be >= 1, got %g", c.ShortenFactor)
	}

	nyquist := float64(c.SampleRate) / 2.0
	if c.StartFreq < 0 || c.StartFreq >= c.EndFreq {
		return fmt.Errorf("start_freq %g must lie in [0, end_freq %g)", c.StartFreq, c.EndFreq)
	}
	if c.EndFreq > nyquist {
		return fmt.Errorf("end_freq %g exceeds Nyquist %g", c.EndFreq, nyquist)
	}

	return nil
}
