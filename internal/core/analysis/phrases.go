package analysis

import (
	"github.com/jang1563/worship-vocal-ai/internal/core/domain"
)

// segmentPhrases splits the loudness track into phrases. A frame is active
// when it is louder than the recording's own percentile threshold. Quiet
// gaps shorter than MinSilenceSeconds are bridged and runs shorter than
// MinPhraseSeconds are dropped.
func segmentPhrases(loudness []float64, frameRate float64, cal domain.ExtractionCalibration) []domain.Phrase {
	if len(loudness) == 0 || frameRate <= 0 {
		return nil
	}
	threshold := Percentile(loudness, cal.PhrasePercentile)
	frameDur := 1 / frameRate
	minQuiet := cal.MinSilenceSeconds

	var phrases []domain.Phrase
	closePhrase := func(start, last int) {
		p := domain.Phrase{Start: float64(start) * frameDur, End: float64(last+1) * frameDur}
		if p.Seconds() >= cal.MinPhraseSeconds {
			phrases = append(phrases, p)
		}
	}

	inPhrase := false
	start, last, quiet := 0, 0, 0
	for i, db := range loudness {
		if db > threshold {
			if !inPhrase {
				inPhrase = true
				start = i
			}
			last = i
			quiet = 0
			continue
		}
		if !inPhrase {
			continue
		}
		quiet++
		if float64(quiet)*frameDur >= minQuiet {
			closePhrase(start, last)
			inPhrase = false
		}
	}
	if inPhrase {
		closePhrase(start, last)
	}
	return phrases
}

// MeanPhraseSeconds returns the average phrase length. ok is false with no phrases.
func MeanPhraseSeconds(phrases []domain.Phrase) (float64, bool) {
	if len(phrases) == 0 {
		return 0, false
	}
	sum := 0.0
	for _, p := range phrases {
		sum += p.Seconds()
	}
	return sum / float64(len(phrases)), true
}
