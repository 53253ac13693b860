package domain

// SampleBuffer is a decoded mono recording. The core only reads it.
type SampleBuffer struct {
	Samples    []float64
	SampleRate int
}

// Duration returns the buffer length in seconds.
func (b SampleBuffer) Duration() float64 {
	if b.SampleRate <= 0 {
		return 0
	}
	return float64(len(b.Samples)) / float64(b.SampleRate)
}

// Phrase is a contiguous voiced segment bounded by long quiet gaps.
type Phrase struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Seconds returns the phrase length.
func (p Phrase) Seconds() float64 {
	return p.End - p.Start
}

// RawDescriptors holds the per-frame acoustic tracks of one recording.
// A zero pitch marks an unvoiced frame.
type RawDescriptors struct {
	FrameRate float64 `json:"frame_rate"`
	Duration  float64 `json:"duration"`

	Pitch    []float64 `json:"-"`
	Loudness []float64 `json:"-"`
	Centroid []float64 `json:"-"`
	Flux     []float64 `json:"-"`

	// HighNotes are voiced pitches above the singer's own high-note percentile.
	HighNotes []float64 `json:"-"`

	Onsets  []float64 `json:"onsets"`
	Beats   []float64 `json:"beats"`
	Phrases []Phrase  `json:"phrases"`

	TempoBPM          float64 `json:"tempo_bpm"`
	VoicedFrames      int     `json:"voiced_frames"`
	PitchCentsError   float64 `json:"pitch_cents_error"`
	VibratoRegularity float64 `json:"vibrato_regularity"`
	RMSMean           float64 `json:"rms_mean"`
}

// VoicedRatio is the share of frames carrying a pitch.
func (d RawDescriptors) VoicedRatio() float64 {
	if len(d.Pitch) == 0 {
		return 0
	}
	return float64(d.VoicedFrames) / float64(len(d.Pitch))
}

// VoicedSeconds converts the voiced frame count to seconds.
func (d RawDescriptors) VoicedSeconds() float64 {
	if d.FrameRate <= 0 {
		return 0
	}
	return float64(d.VoicedFrames) / d.FrameRate
}
