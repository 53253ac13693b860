package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/jang1563/worship-vocal-ai/internal/core/domain"
)

func newTestAdapter(t *testing.T) *Adapter {
	t.Helper()
	a, err := NewAdapter(":memory:")
	if err != nil {
		t.Fatalf("new adapter: %v", err)
	}
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func sampleAnalysis(id, singer string, at time.Time) domain.Analysis {
	return domain.Analysis{
		ID:       id,
		SingerID: singer,
		Label:    "Sunday set",
		Style:    domain.StyleSlow,
		Scores: domain.SubScores{
			Values: map[domain.Metric]float64{
				domain.MetricPitchStability: 71.25,
				domain.MetricBreathSupport:  64.5,
			},
			Fallbacks: []domain.Metric{domain.MetricRhythmSync},
		},
		DNA: domain.DNAVector{Warmth: 62.5, Power: 40, Stability: 55, Expression: 48, Groove: 33, Intimacy: 70},
		Persona: domain.Persona{
			Tag:        domain.PersonaWorshipLeader,
			Confidence: 0.8,
			Fits:       map[domain.PersonaTag]float64{domain.PersonaWorshipLeader: 88.5},
		},
		Quality:   domain.Quality{Overall: 77.5, Reliable: true, Warnings: []string{}},
		CreatedAt: at,
	}
}

func TestAdapter_GetAnalysis(t *testing.T) {
	created := time.Date(2026, 4, 5, 10, 30, 0, 123, time.UTC)

	tests := []struct {
		name    string
		setup   func(t *testing.T, a *Adapter) string
		wantErr error
	}{
		{
			name: "not found",
			setup: func(t *testing.T, a *Adapter) string {
				return "missing"
			},
			wantErr: domain.ErrNotFound,
		},
		{
			name: "round trips payload",
			setup: func(t *testing.T, a *Adapter) string {
				if err := a.SaveAnalysis(context.Background(), sampleAnalysis("an-1", "s1", created)); err != nil {
					t.Fatalf("save analysis: %v", err)
				}
				return "an-1"
			},
		},
		{
			name: "save twice replaces",
			setup: func(t *testing.T, a *Adapter) string {
				first := sampleAnalysis("an-1", "s1", created)
				first.Label = "draft"
				for _, an := range []domain.Analysis{first, sampleAnalysis("an-1", "s1", created)} {
					if err := a.SaveAnalysis(context.Background(), an); err != nil {
						t.Fatalf("save analysis: %v", err)
					}
				}
				return "an-1"
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newTestAdapter(t)
			id := tt.setup(t, a)

			got, err := a.GetAnalysis(context.Background(), id)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected error %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			want := sampleAnalysis("an-1", "s1", created)
			if got.ID != want.ID || got.SingerID != want.SingerID || got.Label != want.Label || got.Style != want.Style {
				t.Fatalf("metadata: got %+v", got)
			}
			if got.DNA != want.DNA {
				t.Fatalf("dna: got %+v, want %+v", got.DNA, want.DNA)
			}
			if v := got.Scores.Values[domain.MetricPitchStability]; v != 71.25 {
				t.Fatalf("pitch stability: got %v", v)
			}
			if !got.Scores.UsedFallback(domain.MetricRhythmSync) {
				t.Fatalf("fallbacks not restored: %+v", got.Scores.Fallbacks)
			}
			if got.Persona.Tag != domain.PersonaWorshipLeader || got.Persona.Fits[domain.PersonaWorshipLeader] != 88.5 {
				t.Fatalf("persona: got %+v", got.Persona)
			}
			if !got.CreatedAt.Equal(created) {
				t.Fatalf("created_at: got %v, want %v", got.CreatedAt, created)
			}
		})
	}
}

func TestAdapter_ListAnalysesBySinger(t *testing.T) {
	a := newTestAdapter(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)

	// Saved out of order on purpose.
	for _, an := range []domain.Analysis{
		sampleAnalysis("late", "s1", base.Add(48*time.Hour)),
		sampleAnalysis("early", "s1", base),
		sampleAnalysis("other", "s2", base.Add(time.Hour)),
		sampleAnalysis("mid", "s1", base.Add(24*time.Hour)),
	} {
		if err := a.SaveAnalysis(ctx, an); err != nil {
			t.Fatalf("save analysis: %v", err)
		}
	}

	got, err := a.ListAnalysesBySinger(ctx, "s1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var ids []string
	for _, an := range got {
		ids = append(ids, an.ID)
	}
	want := []string{"early", "mid", "late"}
	if len(ids) != len(want) {
		t.Fatalf("ids: got %v, want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("ids: got %v, want %v", ids, want)
		}
	}

	empty, err := a.ListAnalysesBySinger(ctx, "nobody")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if empty == nil || len(empty) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", empty)
	}
}

func TestAdapter_Comparison(t *testing.T) {
	a := newTestAdapter(t)
	ctx := context.Background()

	if _, err := a.GetComparison(ctx, "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	slow := sampleAnalysis("an-slow", "s1", time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC))
	c := domain.Comparison{
		ID:       "cmp-1",
		SingerID: "s1",
		A:        &slow,
		Result: domain.ComparisonResult{
			Signature:   domain.Finding{Metrics: []domain.MetricFinding{}},
			HiddenEnemy: domain.Finding{Metrics: []domain.MetricFinding{}},
			Partial:     true,
			FailedSides: []domain.Side{domain.SideB},
		},
		Failures:  map[domain.Side]string{domain.SideB: "insufficient signal: too short"},
		CreatedAt: slow.CreatedAt,
	}
	if err := a.SaveComparison(ctx, c); err != nil {
		t.Fatalf("save comparison: %v", err)
	}

	got, err := a.GetComparison(ctx, "cmp-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Result.Partial || len(got.Result.FailedSides) != 1 || got.Result.FailedSides[0] != domain.SideB {
		t.Fatalf("result: got %+v", got.Result)
	}
	if got.A == nil || got.A.ID != "an-slow" || got.B != nil {
		t.Fatalf("sides: got A=%v B=%v", got.A, got.B)
	}
	if got.Failures[domain.SideB] == "" {
		t.Fatalf("failures not restored: %+v", got.Failures)
	}

	var sideA, sideB sql.NullString
	if err := a.db.QueryRow("SELECT analysis_a, analysis_b FROM comparisons WHERE id = ?", "cmp-1").Scan(&sideA, &sideB); err != nil {
		t.Fatalf("query sides: %v", err)
	}
	if sideA.String != "an-slow" || sideB.Valid {
		t.Fatalf("indexed sides: got %v %v", sideA, sideB)
	}
}

func TestAdapter_MigrateIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vocal.db")

	first, err := NewAdapter(path)
	if err != nil {
		t.Fatalf("new adapter: %v", err)
	}
	if err := first.SaveAnalysis(context.Background(), sampleAnalysis("an-1", "s1", time.Now())); err != nil {
		t.Fatalf("save analysis: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	second, err := NewAdapter(path)
	if err != nil {
		t.Fatalf("reopen adapter: %v", err)
	}
	defer second.Close()
	if _, err := second.GetAnalysis(context.Background(), "an-1"); err != nil {
		t.Fatalf("get after reopen: %v", err)
	}
}

func TestAdapter_SummaryColumns(t *testing.T) {
	a := newTestAdapter(t)
	if err := a.SaveAnalysis(context.Background(), sampleAnalysis("an-1", "s1", time.Now())); err != nil {
		t.Fatalf("save analysis: %v", err)
	}

	var persona string
	var quality float64
	err := a.db.QueryRow("SELECT persona, quality FROM analyses WHERE id = ?", "an-1").Scan(&persona, &quality)
	if err != nil {
		t.Fatalf("query summary columns: %v", err)
	}
	if persona != string(domain.PersonaWorshipLeader) || quality != 77.5 {
		t.Fatalf("summary: got %q %v", persona, quality)
	}
}
