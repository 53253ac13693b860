package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/jang1563/worship-vocal-ai/internal/core/domain"
	"github.com/jang1563/worship-vocal-ai/internal/core/ports"
)

// Upload is an encoded recording received from a client.
type Upload struct {
	Data     []byte
	SingerID string
	Label    string
	Style    domain.Style
}

// Orchestrator coordinates decoding, fetching, analysis and persistence.
type Orchestrator struct {
	analyzer *Analyzer
	decoder  ports.AudioDecoder
	fetcher  ports.AudioFetcher
	repo     ports.AnalysisRepository
	logger   *zap.Logger
}

// NewOrchestrator constructs an Orchestrator. fetcher may be nil when
// remote recordings are not supported.
func NewOrchestrator(analyzer *Analyzer, decoder ports.AudioDecoder, fetcher ports.AudioFetcher, repo ports.AnalysisRepository, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		analyzer: analyzer,
		decoder:  decoder,
		fetcher:  fetcher,
		repo:     repo,
		logger:   logger,
	}
}

// Analyzer exposes the scoring pipeline.
func (o *Orchestrator) Analyzer() *Analyzer {
	return o.analyzer
}

// AnalyzeUpload decodes, scores and stores one recording.
func (o *Orchestrator) AnalyzeUpload(ctx context.Context, up Upload) (domain.Analysis, error) {
	rec, err := o.decode(up)
	if err != nil {
		return domain.Analysis{}, err
	}
	a, err := o.analyzer.AnalyzeSingle(rec)
	if err != nil {
		return domain.Analysis{}, err
	}
	if err := o.repo.SaveAnalysis(ctx, *a); err != nil {
		return domain.Analysis{}, fmt.Errorf("service: failed to save analysis: %w", err)
	}
	o.logger.Info("analysis stored",
		zap.String("analysis_id", a.ID),
		zap.String("singer_id", a.SingerID),
		zap.String("persona", string(a.Persona.Tag)),
	)
	return *a, nil
}

// CompareUploads analyzes a slow and a fast recording and stores the
// comparison along with every side that could be analyzed.
func (o *Orchestrator) CompareUploads(ctx context.Context, slow, fast Upload) (domain.Comparison, error) {
	slow.Style, fast.Style = domain.StyleSlow, domain.StyleFast
	recA, err := o.decode(slow)
	if err != nil {
		return domain.Comparison{}, fmt.Errorf("slow recording: %w", err)
	}
	recB, err := o.decode(fast)
	if err != nil {
		return domain.Comparison{}, fmt.Errorf("fast recording: %w", err)
	}
	return o.compare(ctx, recA, recB)
}

// CompareURLs fetches both recordings before comparing them.
func (o *Orchestrator) CompareURLs(ctx context.Context, singerID, slowURL, fastURL string) (domain.Comparison, error) {
	if o.fetcher == nil {
		return domain.Comparison{}, errors.New("service: remote recordings are not configured")
	}
	slow, err := o.fetcher.Fetch(ctx, slowURL)
	if err != nil {
		return domain.Comparison{}, fmt.Errorf("service: failed to fetch slow recording: %w", err)
	}
	fast, err := o.fetcher.Fetch(ctx, fastURL)
	if err != nil {
		return domain.Comparison{}, fmt.Errorf("service: failed to fetch fast recording: %w", err)
	}
	return o.CompareUploads(ctx,
		Upload{Data: slow, SingerID: singerID, Label: slowURL},
		Upload{Data: fast, SingerID: singerID, Label: fastURL},
	)
}

func (o *Orchestrator) compare(ctx context.Context, slow, fast Recording) (domain.Comparison, error) {
	cmp, err := o.analyzer.AnalyzeDual(ctx, slow, fast)
	if err != nil {
		return domain.Comparison{}, err
	}
	for _, a := range []*domain.Analysis{cmp.A, cmp.B} {
		if a == nil {
			continue
		}
		if err := o.repo.SaveAnalysis(ctx, *a); err != nil {
			return domain.Comparison{}, fmt.Errorf("service: failed to save analysis: %w", err)
		}
	}
	if err := o.repo.SaveComparison(ctx, *cmp); err != nil {
		return domain.Comparison{}, fmt.Errorf("service: failed to save comparison: %w", err)
	}
	o.logger.Info("comparison stored",
		zap.String("comparison_id", cmp.ID),
		zap.Bool("partial", cmp.Result.Partial),
		zap.Bool("signature", cmp.Result.Signature.Found),
		zap.Bool("hidden_enemy", cmp.Result.HiddenEnemy.Found),
	)
	return *cmp, nil
}

// GetAnalysis loads a stored analysis.
func (o *Orchestrator) GetAnalysis(ctx context.Context, id string) (domain.Analysis, error) {
	a, err := o.repo.GetAnalysis(ctx, id)
	if err != nil {
		return domain.Analysis{}, fmt.Errorf("service: failed to load analysis: %w", err)
	}
	return a, nil
}

// GetComparison loads a stored comparison.
func (o *Orchestrator) GetComparison(ctx context.Context, id string) (domain.Comparison, error) {
	c, err := o.repo.GetComparison(ctx, id)
	if err != nil {
		return domain.Comparison{}, fmt.Errorf("service: failed to load comparison: %w", err)
	}
	return c, nil
}

// Growth builds the growth report for a singer.
func (o *Orchestrator) Growth(ctx context.Context, singerID string) (domain.GrowthReport, error) {
	history, err := o.repo.ListAnalysesBySinger(ctx, singerID)
	if err != nil {
		return domain.GrowthReport{}, fmt.Errorf("service: failed to load history: %w", err)
	}
	return BuildGrowthReport(singerID, history)
}

func (o *Orchestrator) decode(up Upload) (Recording, error) {
	buf, err := o.decoder.Decode(up.Data)
	if err != nil {
		return Recording{}, fmt.Errorf("service: decode: %w", err)
	}
	return Recording{Buffer: buf, SingerID: up.SingerID, Label: up.Label, Style: up.Style}, nil
}
