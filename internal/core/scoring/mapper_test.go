package scoring

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/jang1563/worship-vocal-ai/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMapper() *Mapper {
	return NewMapper(domain.DefaultCalibration().Scoring)
}

func TestMapper_Curves(t *testing.T) {
	m := newTestMapper()

	tests := []struct {
		name  string
		curve func(float64) float64
		in    float64
		want  float64
		delta float64
	}{
		{name: "pitch stability perfect", curve: m.PitchStability, in: 0, want: 100},
		{name: "pitch stability one semitone", curve: m.PitchStability, in: 1.0, want: 60},
		{name: "pitch stability at ceiling", curve: m.PitchStability, in: 2.5, want: 0},
		{name: "pitch stability past ceiling", curve: m.PitchStability, in: 4, want: 0},

		{name: "dynamic range low knee", curve: m.DynamicRange, in: 12, want: 50},
		{name: "dynamic range high knee", curve: m.DynamicRange, in: 20, want: 100},
		{name: "dynamic range excessive", curve: m.DynamicRange, in: 30, want: 80},
		{name: "dynamic range narrow", curve: m.DynamicRange, in: 8, want: 33.333, delta: 0.01},
		{name: "dynamic range floor", curve: m.DynamicRange, in: 60, want: 60},
		{name: "dynamic range zero", curve: m.DynamicRange, in: 0, want: 0},

		{name: "breath minimum", curve: m.BreathSupport, in: 2, want: 0},
		{name: "breath full", curve: m.BreathSupport, in: 8, want: 100},
		{name: "breath four seconds", curve: m.BreathSupport, in: 4, want: 33.333, delta: 0.01},
		{name: "breath fallback", curve: m.BreathSupport, in: 3, want: 16.667, delta: 0.01},

		{name: "rhythm best", curve: m.RhythmSync, in: 20, want: 100},
		{name: "rhythm tighter than best", curve: m.RhythmSync, in: 5, want: 100},
		{name: "rhythm fallback", curve: m.RhythmSync, in: 50, want: 76.9, delta: 1e-9},
		{name: "rhythm sloppy", curve: m.RhythmSync, in: 150, want: 0, delta: 0.5},

		{name: "accuracy best", curve: m.PitchAccuracy, in: 10, want: 100},
		{name: "accuracy worst", curve: m.PitchAccuracy, in: 40, want: 0},
		{name: "accuracy middle", curve: m.PitchAccuracy, in: 25, want: 50},

		{name: "warmth dark", curve: m.TimbreWarmth, in: 1500, want: 100},
		{name: "warmth mid", curve: m.TimbreWarmth, in: 2250, want: 50},
		{name: "warmth bright", curve: m.TimbreWarmth, in: 4000, want: 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			delta := tc.delta
			if delta == 0 {
				delta = 1e-9
			}
			assert.InDelta(t, tc.want, tc.curve(tc.in), delta)
		})
	}
}

func TestMapper_Monotone(t *testing.T) {
	m := newTestMapper()

	tests := []struct {
		name       string
		curve      func(float64) float64
		from, to   float64
		increasing bool
	}{
		{name: "pitch stability falls with spread", curve: m.PitchStability, from: 0, to: 3},
		{name: "rhythm falls with offset", curve: m.RhythmSync, from: 0, to: 200},
		{name: "breath rises with phrase length", curve: m.BreathSupport, from: 0, to: 10, increasing: true},
		{name: "dynamic range rises to the knee", curve: m.DynamicRange, from: 0, to: 20, increasing: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			prev := tc.curve(tc.from)
			step := (tc.to - tc.from) / 200
			for x := tc.from + step; x <= tc.to; x += step {
				v := tc.curve(x)
				if tc.increasing {
					require.GreaterOrEqual(t, v, prev, "at %v", x)
				} else {
					require.LessOrEqual(t, v, prev, "at %v", x)
				}
				prev = v
			}
		})
	}
}

func TestMapper_Articulation(t *testing.T) {
	m := newTestMapper()
	assert.InDelta(t, 100, m.Articulation(2000, 0.5), 1e-9)
	assert.InDelta(t, 60, m.Articulation(2000, 0), 1e-9)
	assert.InDelta(t, 40, m.Articulation(5000, 1.0), 1e-9)
	assert.InDelta(t, 50, m.Articulation(1000, 0.25), 1e-9)
}

func richDescriptors() domain.RawDescriptors {
	d := domain.RawDescriptors{
		FrameRate:         31.25,
		Duration:          40,
		PitchCentsError:   18,
		VibratoRegularity: 0.55,
		RMSMean:           0.12,
		Onsets:            []float64{1.00, 1.52, 2.01, 2.49},
		Beats:             []float64{1.0, 1.5, 2.0, 2.5},
		Phrases:           []domain.Phrase{{Start: 0, End: 4}, {Start: 5, End: 11}},
	}
	for i := 0; i < 40; i++ {
		d.HighNotes = append(d.HighNotes, 440*math.Pow(2, float64(i%3-1)*0.1/12))
	}
	for i := 0; i < 100; i++ {
		d.Pitch = append(d.Pitch, 300)
		d.Loudness = append(d.Loudness, -30+float64(i%20))
		d.Centroid = append(d.Centroid, 1800)
		d.Flux = append(d.Flux, 0.2)
	}
	d.VoicedFrames = 100
	return d
}

func TestMapper_Map(t *testing.T) {
	s, err := newTestMapper().Map(richDescriptors())
	require.NoError(t, err)

	assert.Len(t, s.Values, len(domain.Metrics))
	assert.Empty(t, s.Fallbacks)
	assert.Greater(t, s.Values[domain.MetricPitchStability], 95.0)
	assert.InDelta(t, 73.333, s.Values[domain.MetricPitchAccuracy], 0.01)
	assert.InDelta(t, 100*(5.0-2)/6, s.Values[domain.MetricBreathSupport], 1e-9)
	assert.InDelta(t, 100.0, s.Values[domain.MetricRhythmSync], 1e-9)
	assert.InDelta(t, 80, s.Values[domain.MetricTimbreWarmth], 1e-9)
	assert.InDelta(t, 55, s.Values[domain.MetricVibrato], 1e-9)
	// 0.6 * 0.9 + 0.4 * 0.4
	assert.InDelta(t, 70, s.Values[domain.MetricArticulation], 1e-9)
}

func TestMapper_Fallbacks(t *testing.T) {
	d := richDescriptors()
	d.HighNotes = d.HighNotes[:9]
	d.Phrases = nil
	d.Onsets = nil

	s, err := newTestMapper().Map(d)
	require.NoError(t, err)

	assert.ElementsMatch(t, []domain.Metric{
		domain.MetricPitchStability,
		domain.MetricBreathSupport,
		domain.MetricRhythmSync,
	}, s.Fallbacks)
	assert.InDelta(t, 60, s.Values[domain.MetricPitchStability], 1e-9)
	assert.InDelta(t, 100*(3.0-2)/6, s.Values[domain.MetricBreathSupport], 1e-9)
	assert.InDelta(t, 76.9, s.Values[domain.MetricRhythmSync], 1e-9)
	assert.True(t, s.UsedFallback(domain.MetricRhythmSync))
}

func TestMapper_NaNIsCalibrationViolation(t *testing.T) {
	d := richDescriptors()
	d.VibratoRegularity = math.NaN()

	_, err := newTestMapper().Map(d)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrCalibrationViolation))

	var cv *domain.CalibrationViolationError
	require.True(t, errors.As(err, &cv))
	assert.Equal(t, string(domain.MetricVibrato), cv.Field)
}

func TestMapper_RandomDescriptorsStayInRange(t *testing.T) {
	m := newTestMapper()
	agg := NewAggregator(domain.DefaultCalibration().Aggregation)
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 500; i++ {
		d := domain.RawDescriptors{
			FrameRate:         43,
			Duration:          rng.Float64() * 600,
			PitchCentsError:   rng.Float64() * 100,
			VibratoRegularity: rng.Float64(),
		}
		frames := rng.Intn(300)
		for f := 0; f < frames; f++ {
			d.Pitch = append(d.Pitch, rng.Float64()*900)
			d.Loudness = append(d.Loudness, -200+rng.Float64()*200)
			d.Centroid = append(d.Centroid, rng.Float64()*8000)
			d.Flux = append(d.Flux, rng.Float64()*3)
		}
		for n := rng.Intn(40); n > 0; n-- {
			d.HighNotes = append(d.HighNotes, 80+rng.Float64()*720)
		}
		for n := rng.Intn(10); n > 0; n-- {
			start := rng.Float64() * 100
			d.Phrases = append(d.Phrases, domain.Phrase{Start: start, End: start + rng.Float64()*30})
		}
		for n := rng.Intn(20); n > 0; n-- {
			d.Onsets = append(d.Onsets, rng.Float64()*60)
			d.Beats = append(d.Beats, rng.Float64()*60)
		}

		if i%5 == 0 {
			d.Onsets, d.Beats, d.Phrases = nil, nil, nil
		}

		s, err := m.Map(d)
		require.NoError(t, err, "iteration %d", i)
		for metric, v := range s.Values {
			require.GreaterOrEqual(t, v, 0.0, "%s iteration %d", metric, i)
			require.LessOrEqual(t, v, 100.0, "%s iteration %d", metric, i)
		}

		radar, dna, err := agg.Aggregate(s)
		require.NoError(t, err, "iteration %d", i)
		for _, dim := range domain.RadarDimensions {
			require.GreaterOrEqual(t, radar.Get(dim), 0.0, "%s iteration %d", dim, i)
			require.LessOrEqual(t, radar.Get(dim), 100.0, "%s iteration %d", dim, i)
		}
		for _, dim := range domain.DNADimensions {
			require.GreaterOrEqual(t, dna.Get(dim), 0.0, "%s iteration %d", dim, i)
			require.LessOrEqual(t, dna.Get(dim), 100.0, "%s iteration %d", dim, i)
		}
	}
}
