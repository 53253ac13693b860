package decoder

import (
	"bytes"
	"fmt"
	"math"

	"github.com/go-audio/wav"

	"github.com/jang1563/worship-vocal-ai/internal/core/domain"
)

const wavFormatPCM = 1

func decodeWAV(data []byte) (domain.SampleBuffer, error) {
	dec := wav.NewDecoder(bytes.NewReader(data))
	if !dec.IsValidFile() {
		return domain.SampleBuffer{}, fmt.Errorf("decoder: wav: malformed header: %w", domain.ErrInvalidAudio)
	}
	if dec.WavAudioFormat != wavFormatPCM {
		return domain.SampleBuffer{}, fmt.Errorf("decoder: wav: unsupported format %d: %w", dec.WavAudioFormat, domain.ErrInvalidAudio)
	}
	switch dec.BitDepth {
	case 16, 24, 32:
	default:
		return domain.SampleBuffer{}, fmt.Errorf("decoder: wav: unsupported bit depth %d: %w", dec.BitDepth, domain.ErrInvalidAudio)
	}

	pcm, err := dec.FullPCMBuffer()
	if err != nil {
		return domain.SampleBuffer{}, fmt.Errorf("decoder: wav: %w: %w", domain.ErrInvalidAudio, err)
	}
	if pcm.Format == nil || pcm.Format.NumChannels < 1 || pcm.Format.SampleRate <= 0 {
		return domain.SampleBuffer{}, fmt.Errorf("decoder: wav: missing format: %w", domain.ErrInvalidAudio)
	}

	full := math.Exp2(float64(dec.BitDepth) - 1)
	return domain.SampleBuffer{
		Samples:    downmix(pcm.Data, pcm.Format.NumChannels, full),
		SampleRate: pcm.Format.SampleRate,
	}, nil
}
