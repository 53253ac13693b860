package analysis

import (
	"math"

	"github.com/jang1563/worship-vocal-ai/internal/core/domain"
)

// resampleZeroCrossings is the half-width of the interpolation kernel, in
// zero crossings of the low-pass sinc.
const resampleZeroCrossings = 8

// resample converts buf to rate with a Hann-windowed sinc kernel. The
// cutoff sits just under the lower of the two Nyquist frequencies, so
// downsampling does not alias.
func resample(buf domain.SampleBuffer, rate int) domain.SampleBuffer {
	if rate <= 0 || buf.SampleRate == rate || len(buf.Samples) == 0 {
		return buf
	}
	ratio := float64(rate) / float64(buf.SampleRate)
	n := int(math.Round(float64(len(buf.Samples)) * ratio))
	if n < 1 {
		n = 1
	}

	// cutoff is a fraction of the input Nyquist; half is in input samples.
	cutoff := 0.95 * math.Min(1, ratio)
	half := resampleZeroCrossings / cutoff
	last := len(buf.Samples) - 1

	out := make([]float64, n)
	for i := range out {
		center := float64(i) / ratio
		lo := int(math.Ceil(center - half))
		hi := int(math.Floor(center + half))
		if lo < 0 {
			lo = 0
		}
		if hi > last {
			hi = last
		}
		sum := 0.0
		for j := lo; j <= hi; j++ {
			x := float64(j) - center
			w := 0.5 + 0.5*math.Cos(math.Pi*x/half)
			sum += buf.Samples[j] * cutoff * sinc(cutoff*x) * w
		}
		out[i] = sum
	}
	return domain.SampleBuffer{Samples: out, SampleRate: rate}
}

func sinc(x float64) float64 {
	if x == 0 {
		return 1
	}
	px := math.Pi * x
	return math.Sin(px) / px
}
