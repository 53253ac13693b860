package analysis

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/dsp/window"
)

// spectralAnalyzer computes per-frame brightness and spectral change.
// It owns an FFT work area and must not be shared between goroutines.
type spectralAnalyzer struct {
	sampleRate float64
	size       int
	fft        *fourier.FFT
	window     []float64
	norm       float64
	buf        []float64
	coeffs     []complex128
}

func newSpectralAnalyzer(sampleRate, frameSize int) *spectralAnalyzer {
	w := make([]float64, frameSize)
	for i := range w {
		w[i] = 1
	}
	window.Hann(w)
	norm := 0.0
	for _, v := range w {
		norm += v
	}
	return &spectralAnalyzer{
		sampleRate: float64(sampleRate),
		size:       frameSize,
		fft:        fourier.NewFFT(frameSize),
		window:     w,
		norm:       norm,
		buf:        make([]float64, frameSize),
	}
}

// tracks returns the spectral centroid (Hz) and positive spectral flux of every frame.
// Magnitudes are normalized by the window sum so flux does not scale with frame size.
func (s *spectralAnalyzer) tracks(frames [][]float64) (centroid, flux []float64) {
	centroid = make([]float64, len(frames))
	flux = make([]float64, len(frames))
	var prev []float64
	for i, frame := range frames {
		mag := s.magnitudes(frame)
		centroid[i] = s.centroid(mag)
		if prev != nil {
			sum := 0.0
			for k, m := range mag {
				if d := m - prev[k]; d > 0 {
					sum += d
				}
			}
			flux[i] = sum
		}
		prev = mag
	}
	return centroid, flux
}

func (s *spectralAnalyzer) magnitudes(frame []float64) []float64 {
	for i := range s.buf {
		if i < len(frame) {
			s.buf[i] = frame[i] * s.window[i]
		} else {
			s.buf[i] = 0
		}
	}
	s.coeffs = s.fft.Coefficients(s.coeffs, s.buf)
	mag := make([]float64, len(s.coeffs))
	for k, c := range s.coeffs {
		mag[k] = 2 * cmplx.Abs(c) / s.norm
	}
	return mag
}

func (s *spectralAnalyzer) centroid(mag []float64) float64 {
	num, den := 0.0, 0.0
	binHz := s.sampleRate / float64(s.size)
	for k, m := range mag {
		num += float64(k) * binHz * m
		den += m
	}
	if den == 0 || math.IsNaN(num) {
		return 0
	}
	return num / den
}
