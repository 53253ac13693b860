package scoring

import (
	"math"

	"github.com/jang1563/worship-vocal-ai/internal/core/domain"
)

// separationScore is fixed: recordings are assumed to be solo vocals.
const separationScore = 100

// AssessQuality estimates how far the analysis of one recording can be trusted.
func AssessQuality(d domain.RawDescriptors, s domain.SubScores, cal domain.QualityCalibration) domain.Quality {
	q := domain.Quality{
		VoicedRatio:   d.VoicedRatio(),
		LevelScore:    math.Min(100, d.RMSMean*cal.LevelGain),
		DurationScore: durationScore(d.Duration, cal),
	}
	if q.LevelScore < cal.LowLevelThreshold {
		q.Warnings = append(q.Warnings, domain.WarningLowLevel)
	}
	voicedPct := q.VoicedRatio * 100
	if voicedPct < cal.LowVoicingPercent {
		q.Warnings = append(q.Warnings, domain.WarningLowVoicing)
	}
	if d.Duration < cal.IdealMinSeconds {
		q.Warnings = append(q.Warnings, domain.WarningShortRecording)
	}
	if len(s.Fallbacks) > 0 {
		q.Warnings = append(q.Warnings, domain.WarningFallbackMetric)
	}

	q.Overall = cal.LevelWeight*q.LevelScore +
		cal.SeparationWeight*separationScore +
		cal.VoicingWeight*voicedPct +
		cal.DurationWeight*q.DurationScore
	q.Reliable = q.Overall >= cal.ReliableThreshold
	return q
}

func durationScore(seconds float64, cal domain.QualityCalibration) float64 {
	switch {
	case seconds < cal.IdealMinSeconds:
		return seconds / cal.IdealMinSeconds * 100
	case seconds <= cal.IdealMaxSeconds:
		return 100
	default:
		// Lose 10 points per extra minute, down to 50.
		return math.Max(50, 100-(seconds-cal.IdealMaxSeconds)/60*10)
	}
}
