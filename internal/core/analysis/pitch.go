package analysis

import (
	"math"

	"github.com/jang1563/worship-vocal-ai/internal/core/domain"
)

// pitchTracker estimates the fundamental of one frame with the normalized
// cross-correlation function.
type pitchTracker struct {
	sampleRate float64
	minLag     int
	maxLag     int
	threshold  float64
	nccf       []float64
}

func newPitchTracker(sampleRate int, cal domain.ExtractionCalibration) *pitchTracker {
	minLag := int(math.Floor(float64(sampleRate) / cal.PitchMaxHz))
	maxLag := int(math.Ceil(float64(sampleRate) / cal.PitchMinHz))
	if minLag < 2 {
		minLag = 2
	}
	// Leave at least half a frame of overlap for the correlation.
	if maxLag > cal.FrameSize/2 {
		maxLag = cal.FrameSize / 2
	}
	return &pitchTracker{
		sampleRate: float64(sampleRate),
		minLag:     minLag,
		maxLag:     maxLag,
		threshold:  cal.VoicingThreshold,
		nccf:       make([]float64, maxLag+2),
	}
}

// estimate returns the pitch of frame in Hz and whether the frame is voiced.
func (p *pitchTracker) estimate(frame []float64) (float64, bool) {
	n := len(frame)
	if p.maxLag+1 >= n || p.minLag >= p.maxLag {
		return 0, false
	}

	// prefix[i] is the energy of frame[:i].
	prefix := make([]float64, n+1)
	for i, s := range frame {
		prefix[i+1] = prefix[i] + s*s
	}

	best := 0.0
	for lag := p.minLag - 1; lag <= p.maxLag+1; lag++ {
		m := n - lag
		dot := 0.0
		for i := 0; i < m; i++ {
			dot += frame[i] * frame[i+lag]
		}
		e1 := prefix[m]
		e2 := prefix[n] - prefix[lag]
		r := 0.0
		if e1 > 0 && e2 > 0 {
			r = dot / math.Sqrt(e1*e2)
		}
		p.nccf[lag] = r
		if lag >= p.minLag && lag <= p.maxLag && r > best {
			best = r
		}
	}
	if best < p.threshold {
		return 0, false
	}

	// The first peak close to the global maximum avoids octave errors.
	for lag := p.minLag; lag <= p.maxLag; lag++ {
		r := p.nccf[lag]
		if r < 0.9*best || r < p.nccf[lag-1] || r < p.nccf[lag+1] {
			continue
		}
		shift := parabolicShift(p.nccf[lag-1], r, p.nccf[lag+1])
		return p.sampleRate / (float64(lag) + shift), true
	}
	return 0, false
}

// parabolicShift returns the sub-sample offset of the vertex through three points.
func parabolicShift(left, centre, right float64) float64 {
	denom := left - 2*centre + right
	if denom == 0 {
		return 0
	}
	shift := 0.5 * (left - right) / denom
	if shift > 0.5 || shift < -0.5 {
		return 0
	}
	return shift
}

// meanCentsError is the mean absolute distance to the nearest equal-tempered semitone.
func meanCentsError(voiced []float64) float64 {
	if len(voiced) == 0 {
		return 0
	}
	sum := 0.0
	for _, hz := range voiced {
		note := Semitones(hz)
		sum += math.Abs(note-math.Round(note)) * 100
	}
	return sum / float64(len(voiced))
}

// minVibratoDepthCents is the smallest contour deviation treated as vibrato
// rather than estimator jitter.
const minVibratoDepthCents = 5

// vibratoRegularity measures how periodic the pitch contour is inside the
// vibrato rate window. Weak periodicity counts as no vibrato.
func vibratoRegularity(voiced []float64, frameRate float64, cal domain.ExtractionCalibration) float64 {
	minLag := int(math.Floor(frameRate / cal.VibratoMaxHz))
	maxLag := int(math.Ceil(frameRate / cal.VibratoMinHz))
	if minLag < 1 {
		minLag = 1
	}
	if len(voiced) < 2*maxLag+1 {
		return 0
	}

	mean := Mean(voiced)
	cents := make([]float64, len(voiced))
	for i, hz := range voiced {
		cents[i] = 1200 * math.Log2(hz/mean)
	}
	centre := Mean(cents)
	energy := 0.0
	for i := range cents {
		cents[i] -= centre
		energy += cents[i] * cents[i]
	}
	if math.Sqrt(energy/float64(len(cents))) < minVibratoDepthCents {
		return 0
	}

	peak := 0.0
	for lag := minLag; lag <= maxLag; lag++ {
		dot := 0.0
		for i := 0; i+lag < len(cents); i++ {
			dot += cents[i] * cents[i+lag]
		}
		if r := dot / energy; r > peak {
			peak = r
		}
	}
	if peak <= cal.VibratoMinPeak {
		return 0
	}
	return math.Min(peak, 1)
}
