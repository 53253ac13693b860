package domain

import (
	"fmt"
	"math"
)

// CalibrationVersion tags results with the defaults they were scored against.
const CalibrationVersion = "1.1.0"

// Calibration holds every tunable breakpoint of the pipeline. It is passed
// explicitly into each stage; nothing reads thresholds from globals.
type Calibration struct {
	Version     string                 `yaml:"version" json:"version"`
	Extraction  ExtractionCalibration  `yaml:"extraction" json:"extraction"`
	Scoring     ScoringCalibration     `yaml:"scoring" json:"scoring"`
	Aggregation AggregationCalibration `yaml:"aggregation" json:"aggregation"`
	Persona     PersonaCalibration     `yaml:"persona" json:"persona"`
	Comparison  ComparisonCalibration  `yaml:"comparison" json:"comparison"`
	Quality     QualityCalibration     `yaml:"quality" json:"quality"`
}

// ExtractionCalibration controls framing and descriptor extraction.
type ExtractionCalibration struct {
	// SampleRate is the rate every recording is resampled to before framing.
	SampleRate       int     `yaml:"sample_rate" json:"sample_rate"`
	FrameSize        int     `yaml:"frame_size" json:"frame_size"`
	HopSize          int     `yaml:"hop_size" json:"hop_size"`
	PitchMinHz       float64 `yaml:"pitch_min_hz" json:"pitch_min_hz"`
	PitchMaxHz       float64 `yaml:"pitch_max_hz" json:"pitch_max_hz"`
	VoicingThreshold float64 `yaml:"voicing_threshold" json:"voicing_threshold"`
	VoicingRMSFloor  float64 `yaml:"voicing_rms_floor" json:"voicing_rms_floor"`
	// VoicingRelativeDB drops frames this far below the loudest frame.
	VoicingRelativeDB  float64 `yaml:"voicing_relative_db" json:"voicing_relative_db"`
	HighNotePercentile float64 `yaml:"high_note_percentile" json:"high_note_percentile"`
	PhrasePercentile   float64 `yaml:"phrase_percentile" json:"phrase_percentile"`
	MinSilenceSeconds  float64 `yaml:"min_silence_seconds" json:"min_silence_seconds"`
	MinPhraseSeconds   float64 `yaml:"min_phrase_seconds" json:"min_phrase_seconds"`
	OnsetDelta         float64 `yaml:"onset_delta" json:"onset_delta"`
	OnsetMinGapSeconds float64 `yaml:"onset_min_gap_seconds" json:"onset_min_gap_seconds"`
	TempoMinBPM        float64 `yaml:"tempo_min_bpm" json:"tempo_min_bpm"`
	TempoMaxBPM        float64 `yaml:"tempo_max_bpm" json:"tempo_max_bpm"`
	VibratoMinHz       float64 `yaml:"vibrato_min_hz" json:"vibrato_min_hz"`
	VibratoMaxHz       float64 `yaml:"vibrato_max_hz" json:"vibrato_max_hz"`
	VibratoMinPeak     float64 `yaml:"vibrato_min_peak" json:"vibrato_min_peak"`
	MinDurationSeconds float64 `yaml:"min_duration_seconds" json:"min_duration_seconds"`
	MinVoicedSeconds   float64 `yaml:"min_voiced_seconds" json:"min_voiced_seconds"`
}

// ScoringCalibration holds the breakpoints of every piecewise score curve.
type ScoringCalibration struct {
	PitchStdCeilingSemitones     float64 `yaml:"pitch_std_ceiling_semitones" json:"pitch_std_ceiling_semitones"`
	MinHighNotes                 int     `yaml:"min_high_notes" json:"min_high_notes"`
	FallbackHighNoteStdSemitones float64 `yaml:"fallback_high_note_std_semitones" json:"fallback_high_note_std_semitones"`

	DynamicPercentile float64 `yaml:"dynamic_percentile" json:"dynamic_percentile"`
	DynamicLowDB      float64 `yaml:"dynamic_low_db" json:"dynamic_low_db"`
	DynamicHighDB     float64 `yaml:"dynamic_high_db" json:"dynamic_high_db"`
	DynamicDecayPerDB float64 `yaml:"dynamic_decay_per_db" json:"dynamic_decay_per_db"`
	DynamicFloor      float64 `yaml:"dynamic_floor" json:"dynamic_floor"`

	BreathMinSeconds      float64 `yaml:"breath_min_seconds" json:"breath_min_seconds"`
	BreathSpanSeconds     float64 `yaml:"breath_span_seconds" json:"breath_span_seconds"`
	FallbackPhraseSeconds float64 `yaml:"fallback_phrase_seconds" json:"fallback_phrase_seconds"`

	RhythmBestMs           float64 `yaml:"rhythm_best_ms" json:"rhythm_best_ms"`
	RhythmSlope            float64 `yaml:"rhythm_slope" json:"rhythm_slope"`
	FallbackRhythmOffsetMs float64 `yaml:"fallback_rhythm_offset_ms" json:"fallback_rhythm_offset_ms"`

	ArticulationTargetHz       float64 `yaml:"articulation_target_hz" json:"articulation_target_hz"`
	ArticulationCentroidWeight float64 `yaml:"articulation_centroid_weight" json:"articulation_centroid_weight"`
	ArticulationFluxWeight     float64 `yaml:"articulation_flux_weight" json:"articulation_flux_weight"`
	FluxCeiling                float64 `yaml:"flux_ceiling" json:"flux_ceiling"`

	WarmthPivotHz    float64 `yaml:"warmth_pivot_hz" json:"warmth_pivot_hz"`
	WarmthHzPerPoint float64 `yaml:"warmth_hz_per_point" json:"warmth_hz_per_point"`

	PitchAccuracyBestCents  float64 `yaml:"pitch_accuracy_best_cents" json:"pitch_accuracy_best_cents"`
	PitchAccuracyWorstCents float64 `yaml:"pitch_accuracy_worst_cents" json:"pitch_accuracy_worst_cents"`
}

// WeightTerm is one metric's contribution to an aggregated dimension.
// Inverted terms contribute 100 minus the score.
type WeightTerm struct {
	Metric Metric  `yaml:"metric" json:"metric"`
	Weight float64 `yaml:"weight" json:"weight"`
	Invert bool    `yaml:"invert,omitempty" json:"invert,omitempty"`
}

// DimensionWeights is the linear combination for one radar or DNA axis.
type DimensionWeights struct {
	Dimension string       `yaml:"dimension" json:"dimension"`
	Terms     []WeightTerm `yaml:"terms" json:"terms"`
}

// AggregationCalibration holds the radar and DNA weightings.
type AggregationCalibration struct {
	Radar []DimensionWeights `yaml:"radar" json:"radar"`
	DNA   []DimensionWeights `yaml:"dna" json:"dna"`
}

// PersonaCalibration tunes the persona classifier.
type PersonaCalibration struct {
	PrivilegedWeight float64 `yaml:"privileged_weight" json:"privileged_weight"`
	OtherWeight      float64 `yaml:"other_weight" json:"other_weight"`
	TieEpsilon       float64 `yaml:"tie_epsilon" json:"tie_epsilon"`
	BorderlineMargin float64 `yaml:"borderline_margin" json:"borderline_margin"`
	FallbackPenalty  float64 `yaml:"fallback_penalty" json:"fallback_penalty"`
}

// ComparisonCalibration tunes the cross-song comparator.
type ComparisonCalibration struct {
	StrongThreshold      float64 `yaml:"strong_threshold" json:"strong_threshold"`
	WeakThreshold        float64 `yaml:"weak_threshold" json:"weak_threshold"`
	ConsistencyThreshold float64 `yaml:"consistency_threshold" json:"consistency_threshold"`
	SignatureLimit       int     `yaml:"signature_limit" json:"signature_limit"`
	EnemyLimit           int     `yaml:"enemy_limit" json:"enemy_limit"`
	AgreementBoost       float64 `yaml:"agreement_boost" json:"agreement_boost"`
}

// QualityCalibration tunes the analysis quality estimate.
type QualityCalibration struct {
	LevelGain         float64 `yaml:"level_gain" json:"level_gain"`
	IdealMinSeconds   float64 `yaml:"ideal_min_seconds" json:"ideal_min_seconds"`
	IdealMaxSeconds   float64 `yaml:"ideal_max_seconds" json:"ideal_max_seconds"`
	LevelWeight       float64 `yaml:"level_weight" json:"level_weight"`
	SeparationWeight  float64 `yaml:"separation_weight" json:"separation_weight"`
	VoicingWeight     float64 `yaml:"voicing_weight" json:"voicing_weight"`
	DurationWeight    float64 `yaml:"duration_weight" json:"duration_weight"`
	ReliableThreshold float64 `yaml:"reliable_threshold" json:"reliable_threshold"`
	LowLevelThreshold float64 `yaml:"low_level_threshold" json:"low_level_threshold"`
	LowVoicingPercent float64 `yaml:"low_voicing_percent" json:"low_voicing_percent"`
}

// DefaultCalibration returns the documented defaults.
func DefaultCalibration() Calibration {
	return Calibration{
		Version: CalibrationVersion,
		Extraction: ExtractionCalibration{
			SampleRate:         22050,
			FrameSize:          2048,
			HopSize:            512,
			PitchMinHz:         80,
			PitchMaxHz:         800,
			VoicingThreshold:   0.6,
			VoicingRMSFloor:    0.0001,
			VoicingRelativeDB:  40,
			HighNotePercentile: 75,
			PhrasePercentile:   20,
			MinSilenceSeconds:  0.5,
			MinPhraseSeconds:   0.5,
			OnsetDelta:         1.0,
			OnsetMinGapSeconds: 0.1,
			TempoMinBPM:        60,
			TempoMaxBPM:        200,
			VibratoMinHz:       4,
			VibratoMaxHz:       8,
			VibratoMinPeak:     0.3,
			MinDurationSeconds: 2,
			MinVoicedSeconds:   2,
		},
		Scoring: ScoringCalibration{
			PitchStdCeilingSemitones:     2.5,
			MinHighNotes:                 10,
			FallbackHighNoteStdSemitones: 1.0,

			DynamicPercentile: 10,
			DynamicLowDB:      12,
			DynamicHighDB:     20,
			DynamicDecayPerDB: 2,
			DynamicFloor:      60,

			BreathMinSeconds:      2,
			BreathSpanSeconds:     6,
			FallbackPhraseSeconds: 3,

			RhythmBestMs:           20,
			RhythmSlope:            0.77,
			FallbackRhythmOffsetMs: 50,

			ArticulationTargetHz:       2000,
			ArticulationCentroidWeight: 0.6,
			ArticulationFluxWeight:     0.4,
			FluxCeiling:                0.5,

			WarmthPivotHz:    3000,
			WarmthHzPerPoint: 15,

			PitchAccuracyBestCents:  10,
			PitchAccuracyWorstCents: 40,
		},
		Aggregation: AggregationCalibration{
			Radar: []DimensionWeights{
				{Dimension: string(RadarEmotion), Terms: []WeightTerm{
					{Metric: MetricDynamicRange, Weight: 0.5},
					{Metric: MetricVibrato, Weight: 0.3},
					{Metric: MetricBreathSupport, Weight: 0.2},
				}},
				{Dimension: string(RadarTimbre), Terms: []WeightTerm{
					{Metric: MetricTimbreWarmth, Weight: 0.6},
					{Metric: MetricArticulation, Weight: 0.4},
				}},
				{Dimension: string(RadarRhythm), Terms: []WeightTerm{
					{Metric: MetricRhythmSync, Weight: 0.8},
					{Metric: MetricArticulation, Weight: 0.2},
				}},
				{Dimension: string(RadarTechnique), Terms: []WeightTerm{
					{Metric: MetricPitchStability, Weight: 0.4},
					{Metric: MetricPitchAccuracy, Weight: 0.35},
					{Metric: MetricBreathSupport, Weight: 0.25},
				}},
				{Dimension: string(RadarLeadership), Terms: []WeightTerm{
					{Metric: MetricArticulation, Weight: 0.4},
					{Metric: MetricPitchStability, Weight: 0.3},
					{Metric: MetricDynamicRange, Weight: 0.3},
				}},
			},
			DNA: []DimensionWeights{
				{Dimension: string(DNAWarmth), Terms: []WeightTerm{
					{Metric: MetricTimbreWarmth, Weight: 0.8},
					{Metric: MetricBreathSupport, Weight: 0.2},
				}},
				{Dimension: string(DNAPower), Terms: []WeightTerm{
					{Metric: MetricDynamicRange, Weight: 0.6},
					{Metric: MetricBreathSupport, Weight: 0.4},
				}},
				{Dimension: string(DNAStability), Terms: []WeightTerm{
					{Metric: MetricPitchStability, Weight: 0.6},
					{Metric: MetricPitchAccuracy, Weight: 0.4},
				}},
				{Dimension: string(DNAExpression), Terms: []WeightTerm{
					{Metric: MetricDynamicRange, Weight: 0.4},
					{Metric: MetricVibrato, Weight: 0.4},
					{Metric: MetricArticulation, Weight: 0.2},
				}},
				{Dimension: string(DNAGroove), Terms: []WeightTerm{
					{Metric: MetricRhythmSync, Weight: 0.7},
					{Metric: MetricVibrato, Weight: 0.3},
				}},
				{Dimension: string(DNAIntimacy), Terms: []WeightTerm{
					{Metric: MetricTimbreWarmth, Weight: 0.5},
					{Metric: MetricDynamicRange, Weight: 0.3, Invert: true},
					{Metric: MetricPitchStability, Weight: 0.2},
				}},
			},
		},
		Persona: PersonaCalibration{
			PrivilegedWeight: 0.35,
			OtherWeight:      0.075,
			TieEpsilon:       0.5,
			BorderlineMargin: 5,
			FallbackPenalty:  0.1,
		},
		Comparison: ComparisonCalibration{
			StrongThreshold:      70,
			WeakThreshold:        45,
			ConsistencyThreshold: 15,
			SignatureLimit:       3,
			EnemyLimit:           3,
			AgreementBoost:       10,
		},
		Quality: QualityCalibration{
			LevelGain:         500,
			IdealMinSeconds:   30,
			IdealMaxSeconds:   300,
			LevelWeight:       0.25,
			SeparationWeight:  0.30,
			VoicingWeight:     0.30,
			DurationWeight:    0.15,
			ReliableThreshold: 70,
			LowLevelThreshold: 60,
			LowVoicingPercent: 50,
		},
	}
}

const weightSumTolerance = 1e-6

// Validate checks the structural rules the pipeline relies on.
func (c Calibration) Validate() error {
	e := c.Extraction
	if e.FrameSize <= 0 || e.HopSize <= 0 || e.HopSize > e.FrameSize {
		return fmt.Errorf("%w: frame size %d, hop size %d", ErrInvalidCalibration, e.FrameSize, e.HopSize)
	}
	if e.PitchMinHz <= 0 || e.PitchMaxHz <= e.PitchMinHz {
		return fmt.Errorf("%w: pitch range %v-%v Hz", ErrInvalidCalibration, e.PitchMinHz, e.PitchMaxHz)
	}
	if e.SampleRate <= 0 || e.PitchMaxHz >= float64(e.SampleRate)/2 {
		return fmt.Errorf("%w: sample rate %d Hz cannot carry %v Hz", ErrInvalidCalibration, e.SampleRate, e.PitchMaxHz)
	}
	if float64(e.SampleRate)/e.PitchMinHz > float64(e.FrameSize/2) {
		return fmt.Errorf("%w: frame of %d samples is too short for %v Hz", ErrInvalidCalibration, e.FrameSize, e.PitchMinHz)
	}
	if e.VoicingRMSFloor < 0 || e.VoicingRelativeDB <= 0 {
		return fmt.Errorf("%w: voicing floor %v, relative %v dB", ErrInvalidCalibration, e.VoicingRMSFloor, e.VoicingRelativeDB)
	}
	if !inPercentRange(e.HighNotePercentile) || !inPercentRange(e.PhrasePercentile) || !inPercentRange(c.Scoring.DynamicPercentile) {
		return fmt.Errorf("%w: percentiles must lie in [0,100]", ErrInvalidCalibration)
	}
	s := c.Scoring
	if s.PitchStdCeilingSemitones <= 0 || s.BreathSpanSeconds <= 0 || s.DynamicLowDB <= 0 || s.DynamicHighDB <= s.DynamicLowDB {
		return fmt.Errorf("%w: non-positive score span", ErrInvalidCalibration)
	}
	if s.FluxCeiling <= 0 || s.WarmthHzPerPoint <= 0 || s.ArticulationTargetHz <= 0 {
		return fmt.Errorf("%w: non-positive articulation or warmth scale", ErrInvalidCalibration)
	}
	if s.PitchAccuracyWorstCents <= s.PitchAccuracyBestCents {
		return fmt.Errorf("%w: pitch accuracy breakpoints out of order", ErrInvalidCalibration)
	}
	if math.Abs(s.ArticulationCentroidWeight+s.ArticulationFluxWeight-1) > weightSumTolerance {
		return fmt.Errorf("%w: articulation weights must sum to 1", ErrInvalidCalibration)
	}
	radarNames := make([]string, len(RadarDimensions))
	for i, d := range RadarDimensions {
		radarNames[i] = string(d)
	}
	if err := validateWeights("radar", c.Aggregation.Radar, radarNames); err != nil {
		return err
	}
	dnaNames := make([]string, len(DNADimensions))
	for i, d := range DNADimensions {
		dnaNames[i] = string(d)
	}
	if err := validateWeights("dna", c.Aggregation.DNA, dnaNames); err != nil {
		return err
	}
	p := c.Persona
	if math.Abs(2*p.PrivilegedWeight+4*p.OtherWeight-1) > weightSumTolerance {
		return fmt.Errorf("%w: persona weights must sum to 1", ErrInvalidCalibration)
	}
	if p.TieEpsilon < 0 {
		return fmt.Errorf("%w: negative tie epsilon", ErrInvalidCalibration)
	}
	cmp := c.Comparison
	if cmp.WeakThreshold >= cmp.StrongThreshold {
		return fmt.Errorf("%w: weak threshold %v must be below strong threshold %v", ErrInvalidCalibration, cmp.WeakThreshold, cmp.StrongThreshold)
	}
	if cmp.ConsistencyThreshold < 0 || cmp.SignatureLimit < 1 || cmp.EnemyLimit < 1 {
		return fmt.Errorf("%w: comparison limits", ErrInvalidCalibration)
	}
	return nil
}

func inPercentRange(p float64) bool {
	return p >= 0 && p <= 100
}

func validateWeights(vector string, dims []DimensionWeights, want []string) error {
	if len(dims) != len(want) {
		return fmt.Errorf("%w: %s needs %d dimensions, got %d", ErrInvalidCalibration, vector, len(want), len(dims))
	}
	seen := make(map[string]bool, len(dims))
	signatures := make(map[string]string, len(dims))
	for _, d := range dims {
		if !contains(want, d.Dimension) {
			return fmt.Errorf("%w: %s has unknown dimension %q", ErrInvalidCalibration, vector, d.Dimension)
		}
		if seen[d.Dimension] {
			return fmt.Errorf("%w: %s dimension %q listed twice", ErrInvalidCalibration, vector, d.Dimension)
		}
		seen[d.Dimension] = true

		if len(d.Terms) < 2 || len(d.Terms) > 4 {
			return fmt.Errorf("%w: %s.%s needs 2-4 terms, got %d", ErrInvalidCalibration, vector, d.Dimension, len(d.Terms))
		}
		sum := 0.0
		metrics := make(map[Metric]bool, len(d.Terms))
		for _, t := range d.Terms {
			if !t.Metric.Valid() {
				return fmt.Errorf("%w: %s.%s references unknown metric %q", ErrInvalidCalibration, vector, d.Dimension, t.Metric)
			}
			if metrics[t.Metric] {
				return fmt.Errorf("%w: %s.%s uses %q twice", ErrInvalidCalibration, vector, d.Dimension, t.Metric)
			}
			metrics[t.Metric] = true
			if t.Weight <= 0 {
				return fmt.Errorf("%w: %s.%s has non-positive weight for %q", ErrInvalidCalibration, vector, d.Dimension, t.Metric)
			}
			sum += t.Weight
		}
		if math.Abs(sum-1) > weightSumTolerance {
			return fmt.Errorf("%w: %s.%s weights sum to %v", ErrInvalidCalibration, vector, d.Dimension, sum)
		}

		sig := weightSignature(d.Terms)
		if other, dup := signatures[sig]; dup {
			return fmt.Errorf("%w: %s dimensions %q and %q share a weight vector", ErrInvalidCalibration, vector, other, d.Dimension)
		}
		signatures[sig] = d.Dimension
	}
	return nil
}

// weightSignature renders a term list in metric order so identical weightings compare equal.
func weightSignature(terms []WeightTerm) string {
	sig := ""
	for _, m := range Metrics {
		for _, t := range terms {
			if t.Metric == m {
				sig += fmt.Sprintf("%s:%.6f:%t;", m, t.Weight, t.Invert)
			}
		}
	}
	return sig
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
