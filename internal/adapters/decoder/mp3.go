package decoder

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/hajimehoshi/go-mp3"

	"github.com/jang1563/worship-vocal-ai/internal/core/domain"
)

// go-mp3 always emits signed 16-bit little-endian stereo.
const (
	mp3Channels      = 2
	mp3BytesPerFrame = 4
)

func decodeMP3(data []byte) (domain.SampleBuffer, error) {
	dec, err := mp3.NewDecoder(bytes.NewReader(data))
	if err != nil {
		return domain.SampleBuffer{}, fmt.Errorf("decoder: mp3: %w: %w", domain.ErrInvalidAudio, err)
	}

	var ints []int
	if n := dec.Length(); n > 0 {
		ints = make([]int, 0, n/2)
	}
	chunk := make([]byte, 4096)
	var carry []byte
	for {
		n, err := dec.Read(chunk)
		if n > 0 {
			pcm := append(carry, chunk[:n]...)
			whole := len(pcm) - len(pcm)%mp3BytesPerFrame
			for i := 0; i < whole; i += 2 {
				ints = append(ints, int(int16(binary.LittleEndian.Uint16(pcm[i:]))))
			}
			carry = append(carry[:0], pcm[whole:]...)
		}
		if err != nil {
			if err == io.EOF {
				break
			}
			return domain.SampleBuffer{}, fmt.Errorf("decoder: mp3 read: %w: %w", domain.ErrInvalidAudio, err)
		}
	}

	return domain.SampleBuffer{
		Samples:    downmix(ints, mp3Channels, 32768),
		SampleRate: dec.SampleRate(),
	}, nil
}
