// Package scoring maps raw descriptors to 0-100 sub-scores and combines
// them into the radar and DNA vectors.
package scoring

import (
	"fmt"
	"math"

	"github.com/jang1563/worship-vocal-ai/internal/core/analysis"
	"github.com/jang1563/worship-vocal-ai/internal/core/domain"
)

// Mapper converts RawDescriptors into SubScores with calibrated piecewise curves.
type Mapper struct {
	cal domain.ScoringCalibration
}

// NewMapper creates a Mapper.
func NewMapper(cal domain.ScoringCalibration) *Mapper {
	return &Mapper{cal: cal}
}

// Map scores every metric. Degenerate descriptors are scored from fallback
// constants and listed in SubScores.Fallbacks.
func (m *Mapper) Map(d domain.RawDescriptors) (domain.SubScores, error) {
	s := domain.SubScores{Values: make(map[domain.Metric]float64, len(domain.Metrics))}

	std := m.cal.FallbackHighNoteStdSemitones
	if len(d.HighNotes) >= m.cal.MinHighNotes {
		std = analysis.SemitoneStdDev(d.HighNotes)
	} else {
		s.Fallbacks = append(s.Fallbacks, domain.MetricPitchStability)
	}
	s.Values[domain.MetricPitchStability] = m.PitchStability(std)

	s.Values[domain.MetricPitchAccuracy] = m.PitchAccuracy(d.PitchCentsError)

	dbRange := analysis.MaxValue(d.Loudness) - analysis.Percentile(d.Loudness, m.cal.DynamicPercentile)
	s.Values[domain.MetricDynamicRange] = m.DynamicRange(dbRange)

	phrase, ok := analysis.MeanPhraseSeconds(d.Phrases)
	if !ok {
		phrase = m.cal.FallbackPhraseSeconds
		s.Fallbacks = append(s.Fallbacks, domain.MetricBreathSupport)
	}
	s.Values[domain.MetricBreathSupport] = m.BreathSupport(phrase)

	offsetMs := m.cal.FallbackRhythmOffsetMs
	if offset, ok := analysis.MeanBeatOffset(d.Onsets, d.Beats); ok {
		offsetMs = offset * 1000
	} else {
		s.Fallbacks = append(s.Fallbacks, domain.MetricRhythmSync)
	}
	s.Values[domain.MetricRhythmSync] = m.RhythmSync(offsetMs)

	centroid := meanCentroid(d)
	s.Values[domain.MetricArticulation] = m.Articulation(centroid, analysis.Mean(d.Flux))
	s.Values[domain.MetricTimbreWarmth] = m.TimbreWarmth(centroid)
	s.Values[domain.MetricVibrato] = clamp(d.VibratoRegularity * 100)

	for _, metric := range domain.Metrics {
		if v := s.Values[metric]; math.IsNaN(v) || v < 0 || v > 100 {
			return domain.SubScores{}, fmt.Errorf("scoring: map: %w", &domain.CalibrationViolationError{
				Stage: "scoring",
				Field: string(metric),
				Value: v,
			})
		}
	}
	return s, nil
}

// PitchStability scores the semitone spread of the high notes.
func (m *Mapper) PitchStability(stdSemitones float64) float64 {
	return clamp(100 * (1 - stdSemitones/m.cal.PitchStdCeilingSemitones))
}

// PitchAccuracy scores the mean cents deviation from the nearest semitone.
func (m *Mapper) PitchAccuracy(cents float64) float64 {
	span := m.cal.PitchAccuracyWorstCents - m.cal.PitchAccuracyBestCents
	return clamp(100 * (1 - (cents-m.cal.PitchAccuracyBestCents)/span))
}

// DynamicRange scores the loudness range in dB: 50 at DynamicLowDB, 100 at
// DynamicHighDB, then decaying towards DynamicFloor.
func (m *Mapper) DynamicRange(db float64) float64 {
	low, high := m.cal.DynamicLowDB, m.cal.DynamicHighDB
	switch {
	case db <= low:
		return clamp(db / low * 50)
	case db <= high:
		return clamp(50 + (db-low)/(high-low)*50)
	default:
		return clamp(math.Max(m.cal.DynamicFloor, 100-m.cal.DynamicDecayPerDB*(db-high)))
	}
}

// BreathSupport scores the average phrase length in seconds.
func (m *Mapper) BreathSupport(seconds float64) float64 {
	return clamp((seconds - m.cal.BreathMinSeconds) / m.cal.BreathSpanSeconds * 100)
}

// RhythmSync scores the mean onset-to-beat offset in milliseconds.
func (m *Mapper) RhythmSync(offsetMs float64) float64 {
	return clamp(100 - (offsetMs-m.cal.RhythmBestMs)*m.cal.RhythmSlope)
}

// Articulation blends spectral centroid closeness to the target with spectral flux.
func (m *Mapper) Articulation(centroidHz, flux float64) float64 {
	target := m.cal.ArticulationTargetHz
	closeness := math.Max(0, 1-math.Abs(centroidHz-target)/target)
	change := math.Min(1, flux/m.cal.FluxCeiling)
	return clamp(100 * (m.cal.ArticulationCentroidWeight*closeness + m.cal.ArticulationFluxWeight*change))
}

// TimbreWarmth rewards a darker spectrum.
func (m *Mapper) TimbreWarmth(centroidHz float64) float64 {
	return clamp((m.cal.WarmthPivotHz - centroidHz) / m.cal.WarmthHzPerPoint)
}

// meanCentroid averages the centroid over voiced frames, or over every
// frame with energy when nothing is voiced.
func meanCentroid(d domain.RawDescriptors) float64 {
	var voiced, all []float64
	for i, c := range d.Centroid {
		if c <= 0 {
			continue
		}
		all = append(all, c)
		if i < len(d.Pitch) && d.Pitch[i] > 0 {
			voiced = append(voiced, c)
		}
	}
	if len(voiced) > 0 {
		return analysis.Mean(voiced)
	}
	return analysis.Mean(all)
}

// clamp limits v to [0,100]. NaN passes through so callers can detect it.
func clamp(v float64) float64 {
	if math.IsNaN(v) {
		return v
	}
	return math.Min(100, math.Max(0, v))
}
