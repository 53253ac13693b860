package ports

import (
	"context"

	"github.com/jang1563/worship-vocal-ai/internal/core/domain"
)

// AudioDecoder turns an encoded recording into a mono SampleBuffer.
type AudioDecoder interface {
	Decode(data []byte) (domain.SampleBuffer, error)
}

// AudioFetcher downloads a recording from a remote store.
type AudioFetcher interface {
	Fetch(ctx context.Context, rawURL string) ([]byte, error)
}
