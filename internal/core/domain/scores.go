package domain

// Metric names a single sub-score.
type Metric string

const (
	MetricPitchStability Metric = "pitch-stability"
	MetricPitchAccuracy  Metric = "pitch-accuracy"
	MetricDynamicRange   Metric = "dynamic-range"
	MetricBreathSupport  Metric = "breath-support"
	MetricRhythmSync     Metric = "rhythm-sync"
	MetricArticulation   Metric = "articulation"
	MetricTimbreWarmth   Metric = "timbre-warmth"
	MetricVibrato        Metric = "vibrato"
)

// Metrics lists every metric in reporting order.
var Metrics = []Metric{
	MetricPitchStability,
	MetricPitchAccuracy,
	MetricDynamicRange,
	MetricBreathSupport,
	MetricRhythmSync,
	MetricArticulation,
	MetricTimbreWarmth,
	MetricVibrato,
}

// Valid reports whether m is a known metric.
func (m Metric) Valid() bool {
	for _, known := range Metrics {
		if m == known {
			return true
		}
	}
	return false
}

// Order returns the reporting position of m, or len(Metrics) if unknown.
func (m Metric) Order() int {
	for i, known := range Metrics {
		if m == known {
			return i
		}
	}
	return len(Metrics)
}

// SubScores maps each metric to a score in [0,100].
type SubScores struct {
	Values map[Metric]float64 `json:"values"`
	// Fallbacks lists metrics whose descriptor was degenerate and scored from a fallback constant.
	Fallbacks []Metric `json:"fallbacks,omitempty"`
}

// Get returns the score for m and whether it is present.
func (s SubScores) Get(m Metric) (float64, bool) {
	v, ok := s.Values[m]
	return v, ok
}

// UsedFallback reports whether m was scored from a fallback constant.
func (s SubScores) UsedFallback(m Metric) bool {
	for _, f := range s.Fallbacks {
		if f == m {
			return true
		}
	}
	return false
}

// RadarDimension names one axis of the presentation radar.
type RadarDimension string

const (
	RadarEmotion    RadarDimension = "emotion"
	RadarTimbre     RadarDimension = "timbre"
	RadarRhythm     RadarDimension = "rhythm"
	RadarTechnique  RadarDimension = "technique"
	RadarLeadership RadarDimension = "leadership"
)

// RadarDimensions lists the radar axes in order.
var RadarDimensions = []RadarDimension{RadarEmotion, RadarTimbre, RadarRhythm, RadarTechnique, RadarLeadership}

// RadarVector is the five-axis presentation profile.
type RadarVector struct {
	Emotion    float64 `json:"emotion"`
	Timbre     float64 `json:"timbre"`
	Rhythm     float64 `json:"rhythm"`
	Technique  float64 `json:"technique"`
	Leadership float64 `json:"leadership"`
}

// Get returns the value of one axis.
func (r RadarVector) Get(d RadarDimension) float64 {
	switch d {
	case RadarEmotion:
		return r.Emotion
	case RadarTimbre:
		return r.Timbre
	case RadarRhythm:
		return r.Rhythm
	case RadarTechnique:
		return r.Technique
	case RadarLeadership:
		return r.Leadership
	}
	return 0
}

// Set assigns one axis.
func (r *RadarVector) Set(d RadarDimension, v float64) {
	switch d {
	case RadarEmotion:
		r.Emotion = v
	case RadarTimbre:
		r.Timbre = v
	case RadarRhythm:
		r.Rhythm = v
	case RadarTechnique:
		r.Technique = v
	case RadarLeadership:
		r.Leadership = v
	}
}

// DNADimension names one axis of the vocal DNA.
type DNADimension string

const (
	DNAWarmth     DNADimension = "warmth"
	DNAPower      DNADimension = "power"
	DNAStability  DNADimension = "stability"
	DNAExpression DNADimension = "expression"
	DNAGroove     DNADimension = "groove"
	DNAIntimacy   DNADimension = "intimacy"
)

// DNADimensions lists the DNA axes in order.
var DNADimensions = []DNADimension{DNAWarmth, DNAPower, DNAStability, DNAExpression, DNAGroove, DNAIntimacy}

// DNAVector is the six-axis profile used for persona classification.
type DNAVector struct {
	Warmth     float64 `json:"warmth"`
	Power      float64 `json:"power"`
	Stability  float64 `json:"stability"`
	Expression float64 `json:"expression"`
	Groove     float64 `json:"groove"`
	Intimacy   float64 `json:"intimacy"`
}

// Get returns the value of one axis.
func (v DNAVector) Get(d DNADimension) float64 {
	switch d {
	case DNAWarmth:
		return v.Warmth
	case DNAPower:
		return v.Power
	case DNAStability:
		return v.Stability
	case DNAExpression:
		return v.Expression
	case DNAGroove:
		return v.Groove
	case DNAIntimacy:
		return v.Intimacy
	}
	return 0
}

// Set assigns one axis.
func (v *DNAVector) Set(d DNADimension, val float64) {
	switch d {
	case DNAWarmth:
		v.Warmth = val
	case DNAPower:
		v.Power = val
	case DNAStability:
		v.Stability = val
	case DNAExpression:
		v.Expression = val
	case DNAGroove:
		v.Groove = val
	case DNAIntimacy:
		v.Intimacy = val
	}
}

// Uniform returns a DNA vector with every axis set to v.
func Uniform(v float64) DNAVector {
	return DNAVector{Warmth: v, Power: v, Stability: v, Expression: v, Groove: v, Intimacy: v}
}
