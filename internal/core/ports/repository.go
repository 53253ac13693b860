package ports

import (
	"context"

	"github.com/jang1563/worship-vocal-ai/internal/core/domain"
)

// AnalysisRepository persists analyses and comparisons.
type AnalysisRepository interface {
	SaveAnalysis(ctx context.Context, a domain.Analysis) error
	GetAnalysis(ctx context.Context, id string) (domain.Analysis, error)
	// ListAnalysesBySinger returns a singer's analyses oldest first.
	ListAnalysesBySinger(ctx context.Context, singerID string) ([]domain.Analysis, error)
	SaveComparison(ctx context.Context, c domain.Comparison) error
	GetComparison(ctx context.Context, id string) (domain.Comparison, error)
}
