// Package dualcore compares the analyses of a slow and a fast recording by
// the same singer to find consistent strengths and weaknesses.
package dualcore

import "github.com/jang1563/worship-vocal-ai/internal/core/domain"

// SignaturePatterns tags each metric that can be a shared strength.
var SignaturePatterns = map[domain.Metric]string{
	domain.MetricPitchStability: "high-note-master",
	domain.MetricPitchAccuracy:  "pitch-sniper",
	domain.MetricDynamicRange:   "dynamic-painter",
	domain.MetricBreathSupport:  "breath-architect",
	domain.MetricRhythmSync:     "rhythm-guardian",
	domain.MetricArticulation:   "magical-bridge",
	domain.MetricTimbreWarmth:   "tone-identity",
	domain.MetricVibrato:        "emotional-anchor",
}

// EnemyRemedies is the fixed practice suggestion for each shared weakness.
var EnemyRemedies = map[domain.Metric]domain.Remedy{
	domain.MetricPitchStability: {Enemy: "high-note-squeeze", Practice: "open-throat-low-larynx", Exercise: "lip-trill-ascent-2min"},
	domain.MetricPitchAccuracy:  {Enemy: "pitch-drift", Practice: "interval-ear-training", Exercise: "drone-matching-5min"},
	domain.MetricDynamicRange:   {Enemy: "flat-liner", Practice: "intentional-crescendo", Exercise: "pp-ff-pp-phrase"},
	domain.MetricBreathSupport:  {Enemy: "breath-thief", Practice: "diaphragmatic-breathing", Exercise: "sustained-s-30s"},
	domain.MetricRhythmSync:     {Enemy: "rhythm-wanderer", Practice: "metronome-practice", Exercise: "clap-80-120bpm-3min"},
	domain.MetricArticulation:   {Enemy: "word-fog", Practice: "consonant-precision", Exercise: "lyric-reading-accelerando"},
	domain.MetricTimbreWarmth:   {Enemy: "thin-tone", Practice: "resonance-placement", Exercise: "hum-to-open-vowel"},
	domain.MetricVibrato:        {Enemy: "shaky-vibrato", Practice: "diaphragm-control", Exercise: "steady-pulse-vibrato"},
}
