package scoring

import (
	"fmt"
	"math"

	"github.com/jang1563/worship-vocal-ai/internal/core/domain"
)

// Aggregator combines SubScores into the radar and DNA vectors.
type Aggregator struct {
	cal domain.AggregationCalibration
}

// NewAggregator creates an Aggregator. The weights are expected to have
// passed Calibration.Validate.
func NewAggregator(cal domain.AggregationCalibration) *Aggregator {
	return &Aggregator{cal: cal}
}

// Aggregate computes both vectors. A metric missing from s is a calibration violation.
func (a *Aggregator) Aggregate(s domain.SubScores) (domain.RadarVector, domain.DNAVector, error) {
	var radar domain.RadarVector
	for _, dim := range a.cal.Radar {
		v, err := combine(s, dim)
		if err != nil {
			return domain.RadarVector{}, domain.DNAVector{}, fmt.Errorf("scoring: aggregate radar: %w", err)
		}
		radar.Set(domain.RadarDimension(dim.Dimension), v)
	}

	var dna domain.DNAVector
	for _, dim := range a.cal.DNA {
		v, err := combine(s, dim)
		if err != nil {
			return domain.RadarVector{}, domain.DNAVector{}, fmt.Errorf("scoring: aggregate dna: %w", err)
		}
		dna.Set(domain.DNADimension(dim.Dimension), v)
	}
	return radar, dna, nil
}

func combine(s domain.SubScores, dim domain.DimensionWeights) (float64, error) {
	total := 0.0
	for _, t := range dim.Terms {
		v, ok := s.Get(t.Metric)
		if !ok {
			return 0, &domain.CalibrationViolationError{Stage: "aggregate", Field: dim.Dimension + "." + string(t.Metric), Value: math.NaN()}
		}
		if t.Invert {
			v = 100 - v
		}
		total += t.Weight * v
	}
	total = clamp(total)
	if math.IsNaN(total) {
		return 0, &domain.CalibrationViolationError{Stage: "aggregate", Field: dim.Dimension, Value: total}
	}
	return total, nil
}
