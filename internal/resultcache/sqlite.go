// Package resultcache persists completed analyses to SQLite keyed by rounded
// coordinates, so repeated requests for the same property can be served
// without re-running the pipeline.
package resultcache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/tiptopassets/analysis-engine/internal/contracts"
)

var ErrNotFound = errors.New("analysis not found")

// Store is a write-through SQLite cache. One row per coordinate key; a new
// analysis for the same key replaces the old one.
type Store struct {
	db *sqlx.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS analyses (
	coord_key  TEXT PRIMARY KEY,
	id         TEXT NOT NULL,
	address    TEXT NOT NULL DEFAULT '',
	payload    TEXT NOT NULL,
	created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_analyses_id ON analyses(id);
`

func Open(dbPath string) (*Store, error) {
	db, err := sqlx.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Key derives the cache key for a coordinate pair. Coordinates are rounded
// to four decimals (~11m) so trivially different pins on the same property
// share a cache row.
func Key(c contracts.Coordinates) string {
	return fmt.Sprintf("%.4f,%.4f", c.Lat, c.Lng)
}

func (s *Store) Put(ctx context.Context, res contracts.AnalyzeResponse) error {
	payload, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("marshal analysis: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO analyses (coord_key, id, address, payload, created_at) VALUES (?, ?, ?, ?, ?)`,
		Key(res.LocationInfo.Coordinates), res.ID, res.Address, string(payload),
		res.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert analysis: %w", err)
	}
	return nil
}

// Get returns the cached analysis for a coordinate pair, or ErrNotFound.
func (s *Store) Get(ctx context.Context, c contracts.Coordinates) (contracts.AnalyzeResponse, error) {
	var payload string
	err := s.db.GetContext(ctx, &payload, `SELECT payload FROM analyses WHERE coord_key = ?`, Key(c))
	if errors.Is(err, sql.ErrNoRows) {
		return contracts.AnalyzeResponse{}, ErrNotFound
	}
	if err != nil {
		return contracts.AnalyzeResponse{}, fmt.Errorf("query analysis: %w", err)
	}
	return unmarshalResponse(payload)
}

// GetByID looks an analysis up by its response id.
func (s *Store) GetByID(ctx context.Context, id string) (contracts.AnalyzeResponse, error) {
	var payload string
	err := s.db.GetContext(ctx, &payload, `SELECT payload FROM analyses WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return contracts.AnalyzeResponse{}, ErrNotFound
	}
	if err != nil {
		return contracts.AnalyzeResponse{}, fmt.Errorf("query analysis: %w", err)
	}
	return unmarshalResponse(payload)
}

func unmarshalResponse(payload string) (contracts.AnalyzeResponse, error) {
	var res contracts.AnalyzeResponse
	if err := json.Unmarshal([]byte(payload), &res); err != nil {
		return contracts.AnalyzeResponse{}, fmt.Errorf("unmarshal analysis: %w", err)
	}
	return res, nil
}
