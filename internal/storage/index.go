package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

const indexSchema = `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		scenario TEXT NOT NULL,
		kind TEXT NOT NULL,
		preset TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		dt REAL NOT NULL,
		ticks INTEGER NOT NULL,
		errors INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS run_metrics (
		run_id TEXT NOT NULL,
		name TEXT NOT NULL,
		value REAL NOT NULL,
		PRIMARY KEY (run_id, name),
		FOREIGN KEY (run_id) REFERENCES runs(id)
	);

	CREATE INDEX IF NOT EXISTS idx_run_metrics_name ON run_metrics(name, value);
`

// Index is a queryable catalogue of saved runs. The run directories stay
// the source of truth; the index can be rebuilt from them at any time.
type Index struct {
	db *sql.DB
}

// Ranked is one run scored by a single metric.
type Ranked struct {
	ID       string
	Scenario string
	Kind     string
	Preset   string
	Value    float64
}

func OpenIndex(path string) (*Index, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open index: %w", err)
	}
	_, _ = db.Exec("PRAGMA busy_timeout = 5000;")

	if _, err := db.Exec(indexSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Index{db: db}, nil
}

func (ix *Index) Close() error {
	return ix.db.Close()
}

// Add records a run, replacing any earlier entry with the same ID.
func (ix *Index) Add(ctx context.Context, meta RunMetadata) error {
	tx, err := ix.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT OR REPLACE INTO runs (id, scenario, kind, preset, created_at, dt, ticks, errors)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		meta.ID,
		meta.Scenario,
		meta.Kind,
		meta.Preset,
		meta.Timestamp.UTC().Format(time.RFC3339Nano),
		meta.Dt,
		meta.Ticks,
		meta.Errors,
	); err != nil {
		return fmt.Errorf("insert run %s: %w", meta.ID, err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM run_metrics WHERE run_id = ?`, meta.ID); err != nil {
		return err
	}
	for name, value := range meta.Metrics {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO run_metrics (run_id, name, value) VALUES (?, ?, ?)`,
			meta.ID, name, value,
		); err != nil {
			return fmt.Errorf("insert metric %s: %w", name, err)
		}
	}

	return tx.Commit()
}

// Rebuild indexes every run in the store.
func (ix *Index) Rebuild(ctx context.Context, st *Store) (int, error) {
	runs, err := st.List()
	if err != nil {
		return 0, err
	}
	for _, meta := range runs {
		if err := ix.Add(ctx, meta); err != nil {
			return 0, err
		}
	}
	return len(runs), nil
}

// Best returns up to limit runs with the lowest value of metric, optionally
// restricted to one scenario. A non-positive limit returns every match.
func (ix *Index) Best(ctx context.Context, metric, scenario string, limit int) ([]Ranked, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := ix.db.QueryContext(ctx, `
		SELECT r.id, r.scenario, r.kind, r.preset, m.value
		FROM run_metrics m
		JOIN runs r ON r.id = m.run_id
		WHERE m.name = ? AND (? = '' OR r.scenario = ?)
		ORDER BY m.value ASC, r.created_at DESC
		LIMIT ?`,
		metric, scenario, scenario, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ranked := make([]Ranked, 0, max(limit, 0))
	for rows.Next() {
		var r Ranked
		if err := rows.Scan(&r.ID, &r.Scenario, &r.Kind, &r.Preset, &r.Value); err != nil {
			return nil, err
		}
		ranked = append(ranked, r)
	}
	return ranked, rows.Err()
}
