package features

import (
	"fmt"

	"github.com/beatmachine/melspec/algorithms/filters"
	"github.com/beatmachine/melspec/algorithms/spectral"
	"github.com/beatmachine/melspec/logging"
)

// Extractor turns a raw waveform into the two neural-network input
// representations: a log-magnitude spectrogram and its mel-scale compression.
//
// All methods are pure with respect to their input slice; every stage returns
// fresh arrays.
type Extractor struct {
	cfg Config

	builder    *spectral.SpectrogramBuilder
	projector  *spectral.MelProjector
	filterBank *spectral.FilterBank
	melFilter  [][]float64 // (FFTSize/2 x NumMelFilters) sum-normalized transpose

	logger logging.Logger
}

// NewExtractor validates the configuration and builds the mel filterbank up
// front, so degenerate-filter conditions surface at construction rather than
// in the middle of a batch.
func NewExtractor(cfg Config) (*Extractor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	fb, err := spectral.NewFilterBank(spectral.FilterBankParams{
		NumFilters: cfg.NumMelFilters,
		FFTSize:    cfg.FFTSize,
		SampleRate: cfg.SampleRate,
		LowFreq:    cfg.StartFreq,
		HighFreq:   cfg.EndFreq,
	})
	if err != nil {
		return nil, fmt.Errorf("building mel filterbank: %w", err)
	}

	melFilter, err := fb.Normalized()
	if err != nil {
		return nil, fmt.Errorf("normalizing mel filterbank: %w", err)
	}

	return &Extractor{
		cfg:        cfg,
		builder:    spectral.NewSpectrogramBuilder(),
		projector:  spectral.NewMelProjector(),
		filterBank: fb,
		melFilter:  melFilter,
		logger: logging.WithFields(logging.Fields{
			"component": "feature_extractor",
		}),
	}, nil
}

// Config returns the pipeline configuration
func (e *Extractor) Config() Config {
	return e.cfg
}

// FilterBank returns the unnormalized triangular filterbank
func (e *Extractor) FilterBank() *spectral.FilterBank {
	return e.filterBank
}

// Bandpass applies the configured Butterworth band-pass filter to the signal.
// Optional pre-processing; the band edges are validated against Nyquist here,
// at the point of use.
func (e *Extractor) Bandpass(signal []float64) ([]float64, error) {
	bf, err := filters.NewButterworthBandpass(e.cfg.FilterOrder, e.cfg.LowCut, e.cfg.HighCut, e.cfg.SampleRate)
	if err != nil {
		return nil, err
	}

	return bf.Filter(signal), nil
}

// Spectrogram computes the log-compressed magnitude spectrogram,
// shape (timeFrames x FFTSize/2), values in [-SpecThresh, 0].
func (e *Extractor) Spectrogram(signal []float64) ([][]float64, error) {
	specgram, err := e.builder.Compute(signal, spectral.SpectrogramParams{
		FFTSize:  e.cfg.FFTSize,
		StepSize: e.cfg.StepSize(),
		Log:      true,
		Thresh:   e.cfg.SpecThresh,
	})
	if err != nil {
		return nil, err
	}

	e.logger.Debug("computed spectrogram", logging.Fields{
		"frames": len(specgram),
		"bins":   e.cfg.FFTSize / 2,
	})

	return specgram, nil
}

// MelSpectrogram computes the spectrogram and projects it through the
// normalized mel filterbank, compressing the time axis by ShortenFactor.
// Shape: (NumMelFilters x (round(frames/ShortenFactor) - 2)).
func (e *Extractor) MelSpectrogram(signal []float64) ([][]float64, error) {
	specgram, err := e.Spectrogram(signal)
	if err != nil {
		return nil, err
	}

	melSpec, err := e.projector.Project(specgram, e.melFilter, e.cfg.ShortenFactor)
	if err != nil {
		return nil, err
	}

	e.logger.Debug("computed mel spectrogram", logging.Fields{
		"mel_bands": len(melSpec),
		"frames":    len(melSpec[0]),
	})

	return melSpec, nil
}
