package analysis

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Percentile returns the empirical p-th percentile (0-100) of values.
// It does not modify values. An empty slice yields 0.
func Percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	q := math.Min(math.Max(p/100, 0), 1)
	return stat.Quantile(q, stat.Empirical, sorted, nil)
}

// Semitones converts a frequency to a fractional MIDI note number.
func Semitones(hz float64) float64 {
	return 69 + 12*math.Log2(hz/440)
}

// SemitoneStdDev is the population standard deviation of pitches measured in semitones.
func SemitoneStdDev(hz []float64) float64 {
	if len(hz) == 0 {
		return 0
	}
	notes := make([]float64, len(hz))
	for i, f := range hz {
		notes[i] = Semitones(f)
	}
	_, std := stat.PopMeanStdDev(notes, nil)
	return std
}

// Mean returns the arithmetic mean, or 0 for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return floats.Sum(values) / float64(len(values))
}

// MaxValue returns the largest value, or 0 for an empty slice.
func MaxValue(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return floats.Max(values)
}
