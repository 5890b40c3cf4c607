package transcode

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/go-audio/wav"
)

// AudioData represents a decoded waveform
type AudioData struct {
	PCM        []float64     `json:"-"` // Mono samples in [-1, 1]
	SampleRate int           `json:"sample_rate"`
	Channels   int           `json:"channels"` // Channel count of the source file
	Duration   time.Duration `json:"duration"`
}

// Resampler converts a signal to a different sample rate while preserving its
// semantic content. The feature pipeline never resamples on its own; callers
// that need rate conversion supply an implementation.
type Resampler interface {
	Resample(pcm []float64, fromRate, toRate int) ([]float64, error)
}

// DecodeWAVFile reads and decodes a WAV file from disk
func DecodeWAVFile(path string) (*AudioData, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	data, err := DecodeWAV(f)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}

	return data, nil
}

// DecodeWAV decodes WAV data into mono float64 PCM. Integer samples are
// scaled by the source bit depth into [-1, 1]; multi-channel audio is
// downmixed by averaging across channels.
func DecodeWAV(r io.ReadSeeker) (*AudioData, error) {
	decoder := wav.NewDecoder(r)
	if !decoder.IsValidFile() {
		return nil, fmt.Errorf("not a valid WAV file")
	}

	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("reading PCM: %w", err)
	}
	if buf == nil || len(buf.Data) == 0 {
		return nil, fmt.Errorf("no samples in WAV data")
	}

	if buf.Format == nil {
		return nil, fmt.Errorf("WAV data has no format chunk")
	}

	channels := buf.Format.NumChannels
	if channels <= 0 {
		channels = 1
	}

	bitDepth := buf.SourceBitDepth
	if bitDepth <= 0 {
		bitDepth = 16
	}
	scale := float64(int(1) << (bitDepth - 1))

	numFrames := len(buf.Data) / channels
	pcm := make([]float64, numFrames)
	for i := 0; i < numFrames; i++ {
		sum := 0.0
		for ch := 0; ch < channels; ch++ {
			sum += float64(buf.Data[i*channels+ch])
		}
		pcm[i] = sum / float64(channels) / scale
	}

	sampleRate := buf.Format.SampleRate
	duration := time.Duration(float64(numFrames) / float64(sampleRate) * float64(time.Second))

	return &AudioData{
		PCM:        pcm,
		SampleRate: sampleRate,
		Channels:   channels,
		Duration:   duration,
	}, nil
}
