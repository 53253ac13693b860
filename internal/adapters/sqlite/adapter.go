// Package sqlite provides a SQLite-backed implementation of the repository port.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3" // Import the driver anonymously

	"github.com/jang1563/worship-vocal-ai/internal/core/domain"
	"github.com/jang1563/worship-vocal-ai/internal/core/ports"
)

// Fixed-width UTC timestamps keep created_at ordering lexical.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Adapter implements the repository port for SQLite
type Adapter struct {
	db *sql.DB
}

var _ ports.AnalysisRepository = (*Adapter)(nil)

// NewAdapter creates a connection and runs the schema migration
func NewAdapter(storagePath string) (*Adapter, error) {
	db, err := sql.Open("sqlite3", storagePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite db: %w", err)
	}
	// One connection serialises writes and keeps ":memory:" databases whole.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping sqlite db: %w", err)
	}

	adapter := &Adapter{db: db}
	if err := adapter.migrate(); err != nil {
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return adapter, nil
}

// Close ensures the DB connection is closed gracefully
func (a *Adapter) Close() error {
	return a.db.Close()
}

// SaveAnalysis inserts or replaces an analysis.
func (a *Adapter) SaveAnalysis(ctx context.Context, an domain.Analysis) error {
	payload, err := json.Marshal(an)
	if err != nil {
		return fmt.Errorf("failed to encode analysis: %w", err)
	}
	_, err = a.db.ExecContext(ctx, `
		INSERT INTO analyses (id, singer_id, label, style, persona, quality, payload, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			singer_id = excluded.singer_id,
			label = excluded.label,
			style = excluded.style,
			persona = excluded.persona,
			quality = excluded.quality,
			payload = excluded.payload
	`, an.ID, an.SingerID, an.Label, string(an.Style), string(an.Persona.Tag), an.Quality.Overall,
		string(payload), formatTime(an.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to save analysis: %w", err)
	}
	return nil
}

// GetAnalysis loads an analysis by ID.
func (a *Adapter) GetAnalysis(ctx context.Context, id string) (domain.Analysis, error) {
	var payload string
	err := a.db.QueryRowContext(ctx, "SELECT payload FROM analyses WHERE id = ?", id).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Analysis{}, domain.ErrNotFound
		}
		return domain.Analysis{}, fmt.Errorf("failed to load analysis: %w", err)
	}
	var an domain.Analysis
	if err := json.Unmarshal([]byte(payload), &an); err != nil {
		return domain.Analysis{}, fmt.Errorf("failed to decode analysis %s: %w", id, err)
	}
	return an, nil
}

// ListAnalysesBySinger returns every analysis for singerID, oldest first.
func (a *Adapter) ListAnalysesBySinger(ctx context.Context, singerID string) ([]domain.Analysis, error) {
	rows, err := a.db.QueryContext(ctx, `
		SELECT id, payload FROM analyses
		WHERE singer_id = ?
		ORDER BY created_at ASC, rowid ASC
	`, singerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list analyses: %w", err)
	}
	defer rows.Close()

	out := []domain.Analysis{}
	for rows.Next() {
		var id, payload string
		if err := rows.Scan(&id, &payload); err != nil {
			return nil, fmt.Errorf("failed to scan analysis: %w", err)
		}
		var an domain.Analysis
		if err := json.Unmarshal([]byte(payload), &an); err != nil {
			return nil, fmt.Errorf("failed to decode analysis %s: %w", id, err)
		}
		out = append(out, an)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate analyses: %w", err)
	}
	return out, nil
}

// SaveComparison inserts or replaces a comparison. Side analyses travel in
// the payload; their IDs are also indexed.
func (a *Adapter) SaveComparison(ctx context.Context, c domain.Comparison) error {
	payload, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode comparison: %w", err)
	}
	_, err = a.db.ExecContext(ctx, `
		INSERT INTO comparisons (id, singer_id, analysis_a, analysis_b, partial, payload, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			singer_id = excluded.singer_id,
			analysis_a = excluded.analysis_a,
			analysis_b = excluded.analysis_b,
			partial = excluded.partial,
			payload = excluded.payload
	`, c.ID, c.SingerID, analysisID(c.A), analysisID(c.B), c.Result.Partial, string(payload), formatTime(c.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to save comparison: %w", err)
	}
	return nil
}

// GetComparison loads a comparison by ID.
func (a *Adapter) GetComparison(ctx context.Context, id string) (domain.Comparison, error) {
	var payload string
	err := a.db.QueryRowContext(ctx, "SELECT payload FROM comparisons WHERE id = ?", id).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Comparison{}, domain.ErrNotFound
		}
		return domain.Comparison{}, fmt.Errorf("failed to load comparison: %w", err)
	}
	var c domain.Comparison
	if err := json.Unmarshal([]byte(payload), &c); err != nil {
		return domain.Comparison{}, fmt.Errorf("failed to decode comparison %s: %w", id, err)
	}
	return c, nil
}

func analysisID(a *domain.Analysis) sql.NullString {
	if a == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: a.ID, Valid: true}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		t = time.Now()
	}
	return t.UTC().Format(timeLayout)
}

func (a *Adapter) migrate() error {
	query := `
	CREATE TABLE IF NOT EXISTS analyses (
		id TEXT PRIMARY KEY,
		singer_id TEXT NOT NULL DEFAULT '',
		label TEXT,
		style TEXT,
		persona TEXT,
		quality REAL,
		payload TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_analyses_singer ON analyses (singer_id, created_at);

	CREATE TABLE IF NOT EXISTS comparisons (
		id TEXT PRIMARY KEY,
		singer_id TEXT NOT NULL DEFAULT '',
		analysis_a TEXT,
		analysis_b TEXT,
		partial INTEGER NOT NULL DEFAULT 0,
		payload TEXT NOT NULL,
		created_at TEXT NOT NULL
	);
	`
	_, err := a.db.Exec(query)
	return err
}
