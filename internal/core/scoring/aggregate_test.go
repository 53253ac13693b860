package scoring

import (
	"errors"
	"testing"

	"github.com/jang1563/worship-vocal-ai/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uniformScores(v float64) domain.SubScores {
	s := domain.SubScores{Values: map[domain.Metric]float64{}}
	for _, m := range domain.Metrics {
		s.Values[m] = v
	}
	return s
}

func TestAggregator_Uniform(t *testing.T) {
	agg := NewAggregator(domain.DefaultCalibration().Aggregation)

	for _, v := range []float64{0, 50, 100} {
		radar, dna, err := agg.Aggregate(uniformScores(v))
		require.NoError(t, err)

		for _, d := range domain.RadarDimensions {
			assert.InDelta(t, v, radar.Get(d), 1e-9, "radar %s at %v", d, v)
		}
		for _, d := range domain.DNADimensions {
			if d == domain.DNAIntimacy {
				continue
			}
			assert.InDelta(t, v, dna.Get(d), 1e-9, "dna %s at %v", d, v)
		}
	}
}

func TestAggregator_InvertedTerm(t *testing.T) {
	agg := NewAggregator(domain.DefaultCalibration().Aggregation)

	quiet := uniformScores(80)
	quiet.Values[domain.MetricDynamicRange] = 10
	loud := uniformScores(80)
	loud.Values[domain.MetricDynamicRange] = 95

	_, quietDNA, err := agg.Aggregate(quiet)
	require.NoError(t, err)
	_, loudDNA, err := agg.Aggregate(loud)
	require.NoError(t, err)

	// 0.5*80 + 0.3*(100-10) + 0.2*80
	assert.InDelta(t, 83, quietDNA.Intimacy, 1e-9)
	assert.Greater(t, quietDNA.Intimacy, loudDNA.Intimacy)
	assert.Less(t, quietDNA.Power, loudDNA.Power)
}

func TestAggregator_Weights(t *testing.T) {
	agg := NewAggregator(domain.DefaultCalibration().Aggregation)
	s := domain.SubScores{Values: map[domain.Metric]float64{
		domain.MetricPitchStability: 90,
		domain.MetricPitchAccuracy:  70,
		domain.MetricDynamicRange:   60,
		domain.MetricBreathSupport:  40,
		domain.MetricRhythmSync:     80,
		domain.MetricArticulation:   50,
		domain.MetricTimbreWarmth:   30,
		domain.MetricVibrato:        20,
	}}

	radar, dna, err := agg.Aggregate(s)
	require.NoError(t, err)

	assert.InDelta(t, 0.5*60+0.3*20+0.2*40, radar.Emotion, 1e-9)
	assert.InDelta(t, 0.4*90+0.35*70+0.25*40, radar.Technique, 1e-9)
	assert.InDelta(t, 0.6*90+0.4*70, dna.Stability, 1e-9)
	assert.InDelta(t, 0.7*80+0.3*20, dna.Groove, 1e-9)
	assert.InDelta(t, 0.5*30+0.3*40+0.2*90, dna.Intimacy, 1e-9)
}

func TestAggregator_MissingMetric(t *testing.T) {
	agg := NewAggregator(domain.DefaultCalibration().Aggregation)
	s := uniformScores(50)
	delete(s.Values, domain.MetricVibrato)

	_, _, err := agg.Aggregate(s)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrCalibrationViolation))
}

func TestAssessQuality(t *testing.T) {
	cal := domain.DefaultCalibration().Quality

	tests := []struct {
		name         string
		d            domain.RawDescriptors
		fallbacks    []domain.Metric
		wantOverall  float64
		wantReliable bool
		wantWarnings []string
	}{
		{
			name: "clean full take",
			d: domain.RawDescriptors{
				Duration: 120, RMSMean: 0.3, Pitch: make([]float64, 10), VoicedFrames: 9,
			},
			wantOverall:  0.25*100 + 0.30*100 + 0.30*90 + 0.15*100,
			wantReliable: true,
		},
		{
			name: "short quiet sketch",
			d: domain.RawDescriptors{
				Duration: 15, RMSMean: 0.05, Pitch: make([]float64, 10), VoicedFrames: 4,
			},
			fallbacks:    []domain.Metric{domain.MetricBreathSupport},
			wantOverall:  0.25*25 + 0.30*100 + 0.30*40 + 0.15*50,
			wantReliable: false,
			wantWarnings: []string{
				domain.WarningLowLevel,
				domain.WarningLowVoicing,
				domain.WarningShortRecording,
				domain.WarningFallbackMetric,
			},
		},
		{
			name: "very long take",
			d: domain.RawDescriptors{
				Duration: 600, RMSMean: 0.2, Pitch: make([]float64, 10), VoicedFrames: 8,
			},
			wantOverall:  0.25*100 + 0.30*100 + 0.30*80 + 0.15*50,
			wantReliable: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			q := AssessQuality(tc.d, domain.SubScores{Fallbacks: tc.fallbacks}, cal)
			assert.InDelta(t, tc.wantOverall, q.Overall, 1e-9)
			assert.Equal(t, tc.wantReliable, q.Reliable)
			assert.Equal(t, tc.wantWarnings, q.Warnings)
		})
	}
}
