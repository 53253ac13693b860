package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jang1563/worship-vocal-ai/internal/core/analysis"
	"github.com/jang1563/worship-vocal-ai/internal/core/domain"
	"github.com/jang1563/worship-vocal-ai/internal/core/dualcore"
	"github.com/jang1563/worship-vocal-ai/internal/core/persona"
	"github.com/jang1563/worship-vocal-ai/internal/core/scoring"
)

// Recording is one decoded take plus the metadata stored with its analysis.
type Recording struct {
	Buffer   domain.SampleBuffer
	SingerID string
	Label    string
	Style    domain.Style
}

// Analyzer runs the scoring pipeline: extract, map, aggregate, classify,
// and for two recordings, compare.
type Analyzer struct {
	cal        domain.Calibration
	extractor  *analysis.Extractor
	mapper     *scoring.Mapper
	aggregator *scoring.Aggregator
	classifier *persona.Classifier
	comparator *dualcore.Comparator
	logger     *zap.Logger

	now   func() time.Time
	newID func() string
}

// NewAnalyzer validates cal and wires every pipeline stage with it.
func NewAnalyzer(cal domain.Calibration, logger *zap.Logger) (*Analyzer, error) {
	if err := cal.Validate(); err != nil {
		return nil, fmt.Errorf("service: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Analyzer{
		cal:        cal,
		extractor:  analysis.NewExtractor(cal.Extraction),
		mapper:     scoring.NewMapper(cal.Scoring),
		aggregator: scoring.NewAggregator(cal.Aggregation),
		classifier: persona.NewClassifier(cal.Persona),
		comparator: dualcore.NewComparator(cal.Comparison),
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
		newID:      func() string { return uuid.NewString() },
	}, nil
}

// Calibration returns the calibration the Analyzer was built with.
func (a *Analyzer) Calibration() domain.Calibration {
	return a.cal
}

// AnalyzeSingle scores one recording. An unusable recording returns an
// error matching domain.ErrInsufficientSignal; it is never scored as zero.
func (a *Analyzer) AnalyzeSingle(rec Recording) (*domain.Analysis, error) {
	desc, err := a.extractor.Extract(rec.Buffer)
	if err != nil {
		return nil, fmt.Errorf("service: extract: %w", err)
	}
	scores, err := a.mapper.Map(desc)
	if err != nil {
		return nil, fmt.Errorf("service: %w", err)
	}
	radar, dna, err := a.aggregator.Aggregate(scores)
	if err != nil {
		return nil, fmt.Errorf("service: %w", err)
	}
	quality := scoring.AssessQuality(desc, scores, a.cal.Quality)
	p, err := a.classifier.Classify(dna, quality, len(scores.Fallbacks))
	if err != nil {
		return nil, fmt.Errorf("service: %w", err)
	}

	result := &domain.Analysis{
		ID:          a.newID(),
		SingerID:    rec.SingerID,
		Label:       rec.Label,
		Style:       rec.Style,
		Descriptors: domain.Summarize(desc),
		Scores:      scores,
		Radar:       radar,
		DNA:         dna,
		Persona:     p,
		Quality:     quality,
		CreatedAt:   a.now(),
	}
	a.logger.Debug("analysis complete",
		zap.String("analysis_id", result.ID),
		zap.String("persona", string(p.Tag)),
		zap.Float64("margin", p.Margin),
		zap.Float64("quality", quality.Overall),
		zap.Int("fallbacks", len(scores.Fallbacks)),
	)
	return result, nil
}

// AnalyzeDual scores the slow (A) and fast (B) recordings concurrently and
// compares them. A side that cannot be analyzed is reported in the result
// rather than failing the call; calibration violations and cancellation
// are returned as errors.
func (a *Analyzer) AnalyzeDual(ctx context.Context, slow, fast Recording) (*domain.Comparison, error) {
	if slow.Style == domain.StyleUnknown {
		slow.Style = domain.StyleSlow
	}
	if fast.Style == domain.StyleUnknown {
		fast.Style = domain.StyleFast
	}

	var sides [2]domain.SideResult
	g := new(errgroup.Group)
	for i, rec := range []Recording{slow, fast} {
		i, rec := i, rec
		g.Go(func() error {
			res, err := a.AnalyzeSingle(rec)
			if errors.Is(err, domain.ErrCalibrationViolation) {
				return err
			}
			sides[i] = domain.SideResult{Analysis: res, Err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("service: analyze dual: %w", err)
	}

	cmp := &domain.Comparison{
		ID:        a.newID(),
		SingerID:  slow.SingerID,
		A:         sides[0].Analysis,
		B:         sides[1].Analysis,
		Result:    a.comparator.Compare(sides[0], sides[1]),
		CreatedAt: a.now(),
	}
	if cmp.SingerID == "" {
		cmp.SingerID = fast.SingerID
	}
	for i, side := range []domain.Side{domain.SideA, domain.SideB} {
		if sides[i].Err == nil {
			continue
		}
		if cmp.Failures == nil {
			cmp.Failures = make(map[domain.Side]string, 2)
		}
		cmp.Failures[side] = sides[i].Err.Error()
		a.logger.Warn("side could not be analyzed",
			zap.String("comparison_id", cmp.ID),
			zap.String("side", string(side)),
			zap.Error(sides[i].Err),
		)
	}
	return cmp, nil
}
