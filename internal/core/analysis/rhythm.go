package analysis

import (
	"math"

	"github.com/jang1563/worship-vocal-ai/internal/core/domain"
	"gonum.org/v1/gonum/stat"
)

// detectOnsets peak-picks the flux envelope. A peak must clear mean plus
// OnsetDelta standard deviations; peaks closer than the minimum gap keep the stronger one.
func detectOnsets(flux []float64, frameRate float64, cal domain.ExtractionCalibration) []int {
	if len(flux) < 3 {
		return nil
	}
	mean, std := stat.PopMeanStdDev(flux, nil)
	if std == 0 {
		return nil
	}
	threshold := mean + cal.OnsetDelta*std
	minGap := int(math.Ceil(cal.OnsetMinGapSeconds * frameRate))

	var onsets []int
	for i := 1; i < len(flux)-1; i++ {
		v := flux[i]
		if v <= threshold || v < flux[i-1] || v <= flux[i+1] {
			continue
		}
		if n := len(onsets); n > 0 && i-onsets[n-1] < minGap {
			if v > flux[onsets[n-1]] {
				onsets[n-1] = i
			}
			continue
		}
		onsets = append(onsets, i)
	}
	return onsets
}

// estimateTempo returns the lag, in frames, of the strongest envelope
// periodicity within the tempo window. Zero means no usable periodicity.
func estimateTempo(flux []float64, frameRate float64, cal domain.ExtractionCalibration) int {
	minLag := int(math.Floor(60 / cal.TempoMaxBPM * frameRate))
	maxLag := int(math.Ceil(60 / cal.TempoMinBPM * frameRate))
	if minLag < 1 {
		minLag = 1
	}
	if len(flux) <= maxLag {
		return 0
	}
	mean := stat.Mean(flux, nil)
	bestLag, best := 0, 0.0
	for lag := minLag; lag <= maxLag; lag++ {
		sum := 0.0
		for i := 0; i+lag < len(flux); i++ {
			sum += (flux[i] - mean) * (flux[i+lag] - mean)
		}
		if sum > best {
			best, bestLag = sum, lag
		}
	}
	return bestLag
}

// trackBeats builds a regular beat grid at the estimated tempo, phase
// aligned to the strongest onset.
func trackBeats(flux []float64, onsets []int, frameRate, duration float64, sampleRate int, cal domain.ExtractionCalibration) (float64, []float64) {
	if len(onsets) == 0 {
		return 0, nil
	}
	lag := estimateTempo(flux, frameRate, cal)
	if lag == 0 {
		return 0, nil
	}
	period := float64(lag) / frameRate
	bpm := 60 / period

	anchorFrame := onsets[0]
	for _, f := range onsets[1:] {
		if flux[f] > flux[anchorFrame] {
			anchorFrame = f
		}
	}
	anchor := frameTime(anchorFrame, sampleRate, cal)
	first := anchor - math.Floor(anchor/period)*period

	var beats []float64
	for t := first; t <= duration; t += period {
		beats = append(beats, t)
	}
	return bpm, beats
}

// MeanBeatOffset returns the mean distance in seconds from each onset to its nearest beat.
// ok is false when either list is empty.
func MeanBeatOffset(onsets, beats []float64) (offset float64, ok bool) {
	if len(onsets) == 0 || len(beats) == 0 {
		return 0, false
	}
	sum := 0.0
	for _, o := range onsets {
		nearest := math.Inf(1)
		for _, b := range beats {
			if d := math.Abs(o - b); d < nearest {
				nearest = d
			}
		}
		sum += nearest
	}
	return sum / float64(len(onsets)), true
}
