package analysis

import (
	"testing"

	"github.com/jang1563/worship-vocal-ai/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pulseTrain returns an envelope of n frames with a unit spike every period frames from offset.
func pulseTrain(n, offset, period int) []float64 {
	env := make([]float64, n)
	for i := offset; i < n; i += period {
		env[i] = 1
	}
	return env
}

func TestDetectOnsets(t *testing.T) {
	cal := domain.DefaultCalibration().Extraction

	t.Run("regular pulses", func(t *testing.T) {
		onsets := detectOnsets(pulseTrain(200, 10, 20), 40, cal)
		assert.Equal(t, []int{10, 30, 50, 70, 90, 110, 130, 150, 170, 190}, onsets)
	})

	t.Run("close peaks keep the stronger", func(t *testing.T) {
		env := make([]float64, 100)
		env[20] = 0.8
		env[22] = 1.0
		env[60] = 1.0
		onsets := detectOnsets(env, 40, cal)
		assert.Equal(t, []int{22, 60}, onsets)
	})

	t.Run("flat envelope", func(t *testing.T) {
		assert.Empty(t, detectOnsets(make([]float64, 50), 40, cal))
	})
}

func TestTrackBeats(t *testing.T) {
	cal := domain.DefaultCalibration().Extraction
	const frameRate = 40.0
	sampleRate := int(frameRate) * cal.HopSize

	env := pulseTrain(200, 10, 20)
	onsets := detectOnsets(env, frameRate, cal)
	require.NotEmpty(t, onsets)

	assert.Equal(t, 20, estimateTempo(env, frameRate, cal))

	bpm, beats := trackBeats(env, onsets, frameRate, 5.0, sampleRate, cal)
	assert.InDelta(t, 120, bpm, 1e-9)
	require.Len(t, beats, 10)
	assert.InDelta(t, 0.3, beats[0], 1e-9)
	assert.InDelta(t, 0.5, beats[1]-beats[0], 1e-9)

	offset, ok := MeanBeatOffset(frameTimes(onsets, sampleRate, cal), beats)
	require.True(t, ok)
	assert.InDelta(t, 0, offset, 1e-6)
}

func TestTrackBeats_NoOnsets(t *testing.T) {
	cal := domain.DefaultCalibration().Extraction
	bpm, beats := trackBeats(make([]float64, 100), nil, 40, 2.5, 40*cal.HopSize, cal)
	assert.Zero(t, bpm)
	assert.Empty(t, beats)
}

func TestMeanBeatOffset(t *testing.T) {
	tests := []struct {
		name   string
		onsets []float64
		beats  []float64
		want   float64
		wantOK bool
	}{
		{name: "on the grid", onsets: []float64{1, 2}, beats: []float64{1, 2}, want: 0, wantOK: true},
		{name: "half off", onsets: []float64{1.0, 2.05}, beats: []float64{1.0, 2.0}, want: 0.025, wantOK: true},
		{name: "no beats", onsets: []float64{1}, wantOK: false},
		{name: "no onsets", beats: []float64{1}, wantOK: false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := MeanBeatOffset(tc.onsets, tc.beats)
			assert.Equal(t, tc.wantOK, ok)
			assert.InDelta(t, tc.want, got, 1e-9)
		})
	}
}
