package domain

import "time"

// Style is the tempo character of a recording.
type Style string

const (
	StyleUnknown Style = ""
	StyleSlow    Style = "slow"
	StyleFast    Style = "fast"
)

// ParseStyle accepts "slow", "fast" or empty.
func ParseStyle(s string) (Style, bool) {
	switch Style(s) {
	case StyleSlow, StyleFast, StyleUnknown:
		return Style(s), true
	}
	return StyleUnknown, false
}

// Quality summarises how much the analysis of one recording can be trusted.
type Quality struct {
	VoicedRatio   float64  `json:"voiced_ratio"`
	DurationScore float64  `json:"duration_score"`
	LevelScore    float64  `json:"level_score"`
	Overall       float64  `json:"overall"`
	Reliable      bool     `json:"reliable"`
	Warnings      []string `json:"warnings,omitempty"`
}

// Quality warning codes.
const (
	WarningLowLevel       = "low-level"
	WarningLowVoicing     = "low-voicing"
	WarningShortRecording = "short-recording"
	WarningFallbackMetric = "fallback-metric"
)

// DescriptorSummary is the persisted, scalar view of RawDescriptors.
type DescriptorSummary struct {
	Duration          float64 `json:"duration"`
	VoicedRatio       float64 `json:"voiced_ratio"`
	TempoBPM          float64 `json:"tempo_bpm"`
	Onsets            int     `json:"onsets"`
	Beats             int     `json:"beats"`
	Phrases           int     `json:"phrases"`
	HighNotes         int     `json:"high_notes"`
	PitchCentsError   float64 `json:"pitch_cents_error"`
	VibratoRegularity float64 `json:"vibrato_regularity"`
}

// Summarize builds the scalar summary of d.
func Summarize(d RawDescriptors) DescriptorSummary {
	return DescriptorSummary{
		Duration:          d.Duration,
		VoicedRatio:       d.VoicedRatio(),
		TempoBPM:          d.TempoBPM,
		Onsets:            len(d.Onsets),
		Beats:             len(d.Beats),
		Phrases:           len(d.Phrases),
		HighNotes:         len(d.HighNotes),
		PitchCentsError:   d.PitchCentsError,
		VibratoRegularity: d.VibratoRegularity,
	}
}

// Analysis is the finished single-recording result.
type Analysis struct {
	ID          string            `json:"id"`
	SingerID    string            `json:"singer_id,omitempty"`
	Label       string            `json:"label,omitempty"`
	Style       Style             `json:"style,omitempty"`
	Descriptors DescriptorSummary `json:"descriptors"`
	Scores      SubScores         `json:"scores"`
	Radar       RadarVector       `json:"radar"`
	DNA         DNAVector         `json:"dna"`
	Persona     Persona           `json:"persona"`
	Quality     Quality           `json:"quality"`
	CreatedAt   time.Time         `json:"created_at"`
}

// Side identifies one recording of a dual analysis.
type Side string

const (
	SideA Side = "A"
	SideB Side = "B"
)

// SideResult is either a finished analysis or the reason it failed.
type SideResult struct {
	Analysis *Analysis
	Err      error
}

// Failed reports whether this side could not be analyzed.
func (s SideResult) Failed() bool {
	return s.Err != nil || s.Analysis == nil
}

// Remedy is the fixed practice suggestion for a hidden enemy.
type Remedy struct {
	Enemy    string `json:"enemy"`
	Practice string `json:"practice"`
	Exercise string `json:"exercise"`
}

// MetricFinding is one metric that qualified as a signature or hidden enemy.
type MetricFinding struct {
	Metric  Metric  `json:"metric"`
	ScoreA  float64 `json:"score_a"`
	ScoreB  float64 `json:"score_b"`
	Average float64 `json:"average"`
	Delta   float64 `json:"delta"`
	Pattern string  `json:"pattern"`
	Remedy  *Remedy `json:"remedy,omitempty"`
}

// Finding is a ranked list of qualifying metrics. Found is false when none qualified.
type Finding struct {
	Found   bool            `json:"found"`
	Metrics []MetricFinding `json:"metrics"`
}

// Top returns the highest ranked metric, if any.
func (f Finding) Top() (MetricFinding, bool) {
	if !f.Found || len(f.Metrics) == 0 {
		return MetricFinding{}, false
	}
	return f.Metrics[0], true
}

// Has reports whether m is among the findings.
func (f Finding) Has(m Metric) bool {
	for _, mf := range f.Metrics {
		if mf.Metric == m {
			return true
		}
	}
	return false
}

// FusedPersona combines the personas of both recordings.
type FusedPersona struct {
	Tag       PersonaTag `json:"tag"`
	Margin    float64    `json:"margin"`
	Agreement bool       `json:"agreement"`
	// Secondary is the non-winning persona when the two sides disagree.
	Secondary PersonaTag `json:"secondary,omitempty"`
}

// ComparisonResult is the cross-song outcome of a dual analysis.
type ComparisonResult struct {
	Signature   Finding            `json:"signature"`
	HiddenEnemy Finding            `json:"hidden_enemy"`
	Deltas      map[Metric]float64 `json:"deltas,omitempty"`
	Fused       *FusedPersona      `json:"fused,omitempty"`
	Partial     bool               `json:"partial"`
	FailedSides []Side             `json:"failed_sides,omitempty"`
}

// Comparison is a stored dual analysis.
type Comparison struct {
	ID        string           `json:"id"`
	SingerID  string           `json:"singer_id,omitempty"`
	A         *Analysis        `json:"a,omitempty"`
	B         *Analysis        `json:"b,omitempty"`
	Result    ComparisonResult `json:"comparison"`
	Failures  map[Side]string  `json:"failures,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
}

// DimensionChange is the movement of one DNA axis between two analyses.
type DimensionChange struct {
	Before float64 `json:"before"`
	After  float64 `json:"after"`
	Change float64 `json:"change"`
}

// GrowthReport tracks a singer's DNA between their first and latest analysis.
type GrowthReport struct {
	SingerID      string                           `json:"singer_id"`
	TotalAnalyses int                              `json:"total_analyses"`
	From          time.Time                        `json:"from"`
	To            time.Time                        `json:"to"`
	Changes       map[DNADimension]DimensionChange `json:"changes"`
	MostImproved  DNADimension                     `json:"most_improved"`
	NeedsFocus    DNADimension                     `json:"needs_focus"`
	// Streak counts consecutive calendar days, ending on the latest analysis, with at least one analysis.
	Streak int      `json:"streak"`
	Badges []string `json:"badges"`
}
