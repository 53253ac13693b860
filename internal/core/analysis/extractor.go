// Package analysis turns a decoded recording into raw acoustic descriptors.
package analysis

import (
	"fmt"
	"math"

	"github.com/jang1563/worship-vocal-ai/internal/core/domain"
)

// Extractor computes RawDescriptors from a SampleBuffer. It holds no state
// between calls, so one Extractor may serve concurrent recordings.
type Extractor struct {
	cal domain.ExtractionCalibration
}

// NewExtractor creates an Extractor for the given calibration.
func NewExtractor(cal domain.ExtractionCalibration) *Extractor {
	return &Extractor{cal: cal}
}

// Extract runs every descriptor pass over buf. It returns an
// *domain.InsufficientSignalError when the recording is too short or too
// quiet to describe.
func (e *Extractor) Extract(buf domain.SampleBuffer) (domain.RawDescriptors, error) {
	if buf.SampleRate <= 0 || len(buf.Samples) == 0 {
		return domain.RawDescriptors{}, &domain.InsufficientSignalError{Reason: "empty buffer"}
	}
	duration := buf.Duration()
	if duration < e.cal.MinDurationSeconds {
		return domain.RawDescriptors{}, &domain.InsufficientSignalError{
			Reason:          fmt.Sprintf("recording shorter than %.1fs", e.cal.MinDurationSeconds),
			DurationSeconds: duration,
		}
	}

	buf = resample(buf, e.cal.SampleRate)
	frames := frameSignal(buf.Samples, e.cal.FrameSize, e.cal.HopSize)
	frameRate := float64(buf.SampleRate) / float64(e.cal.HopSize)

	d := domain.RawDescriptors{
		FrameRate: frameRate,
		Duration:  duration,
		Pitch:     make([]float64, len(frames)),
		Loudness:  make([]float64, len(frames)),
	}

	rms := make([]float64, len(frames))
	rmsSum, rmsMax := 0.0, 0.0
	for i, frame := range frames {
		rms[i] = frameRMS(frame)
		rmsSum += rms[i]
		rmsMax = math.Max(rmsMax, rms[i])
		d.Loudness[i] = 20 * math.Log10(rms[i]+1e-10)
	}
	d.RMSMean = rmsSum / float64(len(frames))
	floor := voicingFloor(rmsMax, e.cal)

	tracker := newPitchTracker(buf.SampleRate, e.cal)
	for i, frame := range frames {
		if rms[i] < floor {
			continue
		}
		if hz, ok := tracker.estimate(frame); ok {
			d.Pitch[i] = hz
			d.VoicedFrames++
		}
	}

	if voiced := d.VoicedSeconds(); voiced < e.cal.MinVoicedSeconds {
		return domain.RawDescriptors{}, &domain.InsufficientSignalError{
			Reason:          fmt.Sprintf("less than %.1fs of voiced content", e.cal.MinVoicedSeconds),
			DurationSeconds: duration,
			VoicedSeconds:   voiced,
		}
	}

	spectrum := newSpectralAnalyzer(buf.SampleRate, e.cal.FrameSize)
	d.Centroid, d.Flux = spectrum.tracks(frames)

	voicedPitch := voicedValues(d.Pitch)
	d.HighNotes = highNotes(voicedPitch, e.cal.HighNotePercentile)
	d.PitchCentsError = meanCentsError(voicedPitch)
	d.VibratoRegularity = vibratoRegularity(voicedPitch, frameRate, e.cal)

	onsetFrames := detectOnsets(d.Flux, frameRate, e.cal)
	d.Onsets = frameTimes(onsetFrames, buf.SampleRate, e.cal)
	d.TempoBPM, d.Beats = trackBeats(d.Flux, onsetFrames, frameRate, duration, buf.SampleRate, e.cal)

	d.Phrases = segmentPhrases(d.Loudness, frameRate, e.cal)

	return d, nil
}

// voicingFloor is the frame RMS below which no pitch is tracked: the
// absolute floor, or VoicingRelativeDB under the loudest frame if higher.
func voicingFloor(rmsMax float64, cal domain.ExtractionCalibration) float64 {
	return math.Max(cal.VoicingRMSFloor, rmsMax*math.Pow(10, -cal.VoicingRelativeDB/20))
}

// frameSignal slices samples into overlapping frames. A signal shorter than
// one frame yields a single zero-padded frame.
func frameSignal(samples []float64, size, hop int) [][]float64 {
	if len(samples) <= size {
		frame := make([]float64, size)
		copy(frame, samples)
		return [][]float64{frame}
	}
	n := 1 + (len(samples)-size)/hop
	frames := make([][]float64, n)
	for i := range frames {
		start := i * hop
		frames[i] = samples[start : start+size]
	}
	return frames
}

func frameRMS(frame []float64) float64 {
	sum := 0.0
	for _, s := range frame {
		sum += s * s
	}
	return math.Sqrt(sum / float64(len(frame)))
}

// frameTimes converts frame indices to the time of each frame's centre.
func frameTimes(idx []int, sampleRate int, cal domain.ExtractionCalibration) []float64 {
	out := make([]float64, len(idx))
	for i, f := range idx {
		out[i] = frameTime(f, sampleRate, cal)
	}
	return out
}

func frameTime(frame int, sampleRate int, cal domain.ExtractionCalibration) float64 {
	return (float64(frame*cal.HopSize) + float64(cal.FrameSize)/2) / float64(sampleRate)
}

func voicedValues(pitch []float64) []float64 {
	out := make([]float64, 0, len(pitch))
	for _, p := range pitch {
		if p > 0 {
			out = append(out, p)
		}
	}
	return out
}

// highNotes keeps the pitches strictly above the singer's own percentile.
func highNotes(voiced []float64, percentile float64) []float64 {
	if len(voiced) == 0 {
		return nil
	}
	threshold := Percentile(voiced, percentile)
	out := make([]float64, 0, len(voiced)/4+1)
	for _, p := range voiced {
		if p > threshold {
			out = append(out, p)
		}
	}
	return out
}
