// Package decoder turns uploaded MP3 and WAV files into mono sample buffers.
package decoder

import (
	"bytes"
	"fmt"

	"github.com/jang1563/worship-vocal-ai/internal/core/domain"
)

// DefaultMaxSeconds bounds the length of a decoded recording.
const DefaultMaxSeconds = 600

// Decoder implements ports.AudioDecoder for MP3 and PCM WAV input.
type Decoder struct {
	maxSeconds float64
}

// New returns a Decoder rejecting recordings longer than maxSeconds.
// A non-positive value selects DefaultMaxSeconds.
func New(maxSeconds float64) *Decoder {
	if maxSeconds <= 0 {
		maxSeconds = DefaultMaxSeconds
	}
	return &Decoder{maxSeconds: maxSeconds}
}

// Decode sniffs the container and returns the recording downmixed to mono
// in [-1, 1]. Every failure wraps domain.ErrInvalidAudio.
func (d *Decoder) Decode(data []byte) (domain.SampleBuffer, error) {
	if len(data) == 0 {
		return domain.SampleBuffer{}, fmt.Errorf("decoder: empty payload: %w", domain.ErrInvalidAudio)
	}

	var (
		buf domain.SampleBuffer
		err error
	)
	if isWAV(data) {
		buf, err = decodeWAV(data)
	} else {
		buf, err = decodeMP3(data)
	}
	if err != nil {
		return domain.SampleBuffer{}, err
	}

	if len(buf.Samples) == 0 {
		return domain.SampleBuffer{}, fmt.Errorf("decoder: recording contains no samples: %w", domain.ErrInvalidAudio)
	}
	if buf.Duration() > d.maxSeconds {
		return domain.SampleBuffer{}, fmt.Errorf("decoder: recording is %.0fs, limit %.0fs: %w", buf.Duration(), d.maxSeconds, domain.ErrInvalidAudio)
	}
	return buf, nil
}

func isWAV(data []byte) bool {
	return len(data) >= 12 && bytes.Equal(data[:4], []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WAVE"))
}

// downmix averages interleaved integer frames into mono floats scaled by
// full, the magnitude of a full-scale sample.
func downmix(interleaved []int, channels int, full float64) []float64 {
	frames := len(interleaved) / channels
	out := make([]float64, frames)
	for i := 0; i < frames; i++ {
		sum := 0
		for c := 0; c < channels; c++ {
			sum += interleaved[i*channels+c]
		}
		out[i] = float64(sum) / float64(channels) / full
	}
	return out
}
