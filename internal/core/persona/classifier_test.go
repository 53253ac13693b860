package persona

import (
	"errors"
	"math"
	"testing"

	"github.com/jang1563/worship-vocal-ai/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var perfectQuality = domain.Quality{Overall: 100, Reliable: true}

func newTestClassifier() *Classifier {
	return NewClassifier(domain.DefaultCalibration().Persona)
}

func TestClassifier_CanonicalProfilesWin(t *testing.T) {
	c := newTestClassifier()

	for _, p := range Profiles {
		t.Run(string(p.Tag), func(t *testing.T) {
			got, err := c.Classify(p.Vector, perfectQuality, 0)
			require.NoError(t, err)

			assert.Equal(t, p.Tag, got.Tag)
			assert.InDelta(t, 100, got.Fits[p.Tag], 1e-9)
			assert.False(t, got.TieBroken)
			assert.False(t, got.Borderline)
			assert.GreaterOrEqual(t, got.Margin, 12.0)
			for tag, fit := range got.Fits {
				if tag != p.Tag {
					assert.Less(t, fit, 100.0, "%s", tag)
				}
			}
		})
	}
}

func TestClassifier_UniformVectorIsDeterministic(t *testing.T) {
	c := newTestClassifier()

	first, err := c.Classify(domain.Uniform(50), perfectQuality, 0)
	require.NoError(t, err)

	assert.Equal(t, domain.PersonaStoryteller, first.Tag)
	assert.Equal(t, domain.PersonaWorshipLeader, first.RunnerUp)
	assert.True(t, first.TieBroken)
	assert.True(t, first.Borderline)
	assert.InDelta(t, 0, first.Margin, 1e-9)
	assert.InDelta(t, 80.625, first.Fits[domain.PersonaStoryteller], 1e-9)
	assert.InDelta(t, 80.625, first.Fits[domain.PersonaWorshipLeader], 1e-9)

	for i := 0; i < 20; i++ {
		again, err := c.Classify(domain.Uniform(50), perfectQuality, 0)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestClassifier_Confidence(t *testing.T) {
	c := newTestClassifier()
	st, _ := ProfileFor(domain.PersonaStoryteller)

	tests := []struct {
		name      string
		quality   float64
		fallbacks int
	}{
		{name: "perfect", quality: 100},
		{name: "lower quality", quality: 80},
		{name: "fallbacks", quality: 80, fallbacks: 2},
		{name: "many fallbacks", quality: 100, fallbacks: 12},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := c.Classify(st.Vector, domain.Quality{Overall: tc.quality}, tc.fallbacks)
			require.NoError(t, err)

			win := got.Fits[got.Tag]
			runner := got.Fits[got.RunnerUp]
			want := (win - runner) / win * tc.quality / 100 * (1 - 0.1*float64(tc.fallbacks))
			want = math.Min(1, math.Max(0, want))
			assert.InDelta(t, want, got.Confidence, 1e-9)
			assert.GreaterOrEqual(t, got.Confidence, 0.0)
			assert.LessOrEqual(t, got.Confidence, 1.0)
		})
	}
}

func TestClassifier_NaNIsCalibrationViolation(t *testing.T) {
	dna := domain.Uniform(50)
	dna.Groove = math.NaN()

	_, err := newTestClassifier().Classify(dna, perfectQuality, 0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrCalibrationViolation))
}

func TestClassifier_Fit(t *testing.T) {
	c := newTestClassifier()
	st, ok := ProfileFor(domain.PersonaStoryteller)
	require.True(t, ok)

	assert.InDelta(t, 100, c.Fit(st.Vector, st), 1e-9)

	moved := st.Vector
	moved.Warmth -= 10 // privileged
	assert.InDelta(t, 96.5, c.Fit(moved, st), 1e-9)

	moved = st.Vector
	moved.Groove += 10
	assert.InDelta(t, 99.25, c.Fit(moved, st), 1e-9)
}

func TestBeats(t *testing.T) {
	tests := []struct {
		name string
		a, b candidate
		want bool
	}{
		{
			name: "stronger privileged dimensions",
			a:    candidate{order: 3, strength: 80},
			b:    candidate{order: 0, strength: 70},
			want: true,
		},
		{
			name: "equal strength, more extreme",
			a:    candidate{order: 4, strength: 50, extremity: 20},
			b:    candidate{order: 1, strength: 50, extremity: 5},
			want: true,
		},
		{
			name: "declaration order last",
			a:    candidate{order: 2, strength: 60, extremity: 10},
			b:    candidate{order: 1, strength: 60, extremity: 10},
			want: false,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, beats(tc.a, tc.b))
		})
	}
}

func TestProfilesCoverEveryPersona(t *testing.T) {
	require.Len(t, Profiles, len(domain.PersonaTags))
	for i, tag := range domain.PersonaTags {
		assert.Equal(t, tag, Profiles[i].Tag)
		assert.NotEqual(t, Profiles[i].Privileged[0], Profiles[i].Privileged[1])
	}
}
