package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/beatmachine/melspec/features"
	"github.com/beatmachine/melspec/logging"
	"github.com/beatmachine/melspec/transcode"
)

var (
	configFile  string
	verbose     bool
	useBandpass bool
)

// summary is what gets printed for each processed file. The matrices
// themselves stay in memory for callers of the library; the CLI only reports
// their shapes and ranges.
type summary struct {
	Name             string  `json:"name"`
	SampleRate       int     `json:"sample_rate"`
	Samples          int     `json:"samples"`
	SpectrogramRows  int     `json:"spectrogram_frames"`
	SpectrogramCols  int     `json:"spectrogram_bins"`
	SpectrogramMax   float64 `json:"spectrogram_max"`
	MelRows          int     `json:"mel_bands"`
	MelCols          int     `json:"mel_frames"`
	BandpassApplied  bool    `json:"bandpass_applied"`
	ShortenFactor    float64 `json:"shorten_factor"`
	FFTSize          int     `json:"fft_size"`
	NumMelFilters    int     `json:"n_mel_filters"`
	ConfiguredThresh float64 `json:"spec_thresh"`
}

var rootCmd = &cobra.Command{
	Use:   "melspec <file.wav> [file.wav ...]",
	Short: "Compute spectrogram and mel-spectrogram features from WAV audio",
	Long: `melspec converts WAV audio into the two numeric representations used as
neural-network input features: an STFT log-magnitude spectrogram and a
mel-scaled compression of it.

Pipeline parameters come from flags or a YAML config file; the sample rate is
taken from each input file.`,
	Args: cobra.MinimumNArgs(1),
	RunE: run,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "",
		"YAML config file with pipeline parameters")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"verbose output")
	rootCmd.Flags().Bool("bandpass", false,
		"apply the Butterworth band-pass filter before the spectrogram")

	rootCmd.Flags().Float64("lowcut", 500, "band-pass low cut (Hz)")
	rootCmd.Flags().Float64("highcut", 15000, "band-pass high cut (Hz)")
	rootCmd.Flags().Int("filter-order", 5, "band-pass filter order")
	rootCmd.Flags().Int("fft-size", 2048, "FFT window size (even; step is fft-size/16)")
	rootCmd.Flags().Float64("spec-thresh", 4, "log-spectrogram floor threshold")
	rootCmd.Flags().Int("n-mel-filters", 64, "number of mel bands")
	rootCmd.Flags().Float64("shorten-factor", 10, "time-axis compression factor")
	rootCmd.Flags().Float64("start-freq", 300, "lowest mel band edge (Hz)")
	rootCmd.Flags().Float64("end-freq", 8000, "highest mel band edge (Hz)")

	for flag, key := range map[string]string{
		"lowcut":         "lowcut",
		"highcut":        "highcut",
		"filter-order":   "filter_order",
		"fft-size":       "fft_size",
		"spec-thresh":    "spec_thresh",
		"n-mel-filters":  "n_mel_filters",
		"shorten-factor": "shorten_factor",
		"start-freq":     "start_freq",
		"end-freq":       "end_freq",
	} {
		_ = viper.BindPFlag(key, rootCmd.Flags().Lookup(flag))
	}
}

func loadConfig(sampleRate int) (features.Config, error) {
	cfg := features.DefaultConfig()

	if configFile != "" {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			return cfg, fmt.Errorf("reading config file: %w", err)
		}
	}

	if err := viper.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	cfg.SampleRate = sampleRate
	return cfg, cfg.Validate()
}

func run(cmd *cobra.Command, args []string) error {
	if verbose {
		logging.SetLevel(logging.DebugLevel)
	}
	useBandpass, _ = cmd.Flags().GetBool("bandpass")

	logger := logging.WithFields(logging.Fields{"component": "melspec_cli"})

	for _, path := range args {
		audioData, err := transcode.DecodeWAVFile(path)
		if err != nil {
			return err
		}

		cfg, err := loadConfig(audioData.SampleRate)
		if err != nil {
			return err
		}

		extractor, err := features.NewExtractor(cfg)
		if err != nil {
			return err
		}

		logger.Info("processing file", logging.Fields{
			"path":        path,
			"sample_rate": audioData.SampleRate,
			"duration":    audioData.Duration.String(),
		})

		signal := audioData.PCM
		if useBandpass {
			signal, err = extractor.Bandpass(signal)
			if err != nil {
				return fmt.Errorf("band-pass filtering %s: %w", path, err)
			}
		}

		specgram, err := extractor.Spectrogram(signal)
		if err != nil {
			return fmt.Errorf("spectrogram for %s: %w", path, err)
		}

		melSpec, err := extractor.MelSpectrogram(signal)
		if err != nil {
			return fmt.Errorf("mel spectrogram for %s: %w", path, err)
		}

		maxVal := specgram[0][0]
		for _, row := range specgram {
			for _, v := range row {
				if v > maxVal {
					maxVal = v
				}
			}
		}

		s := summary{
			Name:             fileStem(path),
			SampleRate:       audioData.SampleRate,
			Samples:          len(audioData.PCM),
			SpectrogramRows:  len(specgram),
			SpectrogramCols:  len(specgram[0]),
			SpectrogramMax:   maxVal,
			MelRows:          len(melSpec),
			MelCols:          len(melSpec[0]),
			BandpassApplied:  useBandpass,
			ShortenFactor:    cfg.ShortenFactor,
			FFTSize:          cfg.FFTSize,
			NumMelFilters:    cfg.NumMelFilters,
			ConfiguredThresh: cfg.SpecThresh,
		}

		out, err := json.MarshalIndent(s, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
	}

	return nil
}

// fileStem returns the file name without directory or extension
func fileStem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
