package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	_ "modernc.org/sqlite"
)

// SQLiteStore is a SQLite-backed Store.
// Single-file, zero-setup persistence suited to a local kinetics sweep or a
// CLI driver run (cmd/kinsim).
type SQLiteStore struct {
	db     *sql.DB
	mu     sync.RWMutex
	closed bool
}

// NewSQLiteStore opens (creating if necessary) a SQLite database at path and
// ensures the trajectory/outcome schema exists. path may be ":memory:" for
// an ephemeral database.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite connection: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	ctx := context.Background()
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout=5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.createTables(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) createTables(ctx context.Context) error {
	trajectoryTable := `
		CREATE TABLE IF NOT EXISTS kinetics_trajectory (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL,
			step INTEGER NOT NULL,
			sim_time REAL NOT NULL,
			event_kind TEXT NOT NULL,
			entry_id INTEGER NOT NULL,
			new_entry_id INTEGER NOT NULL,
			total_flux REAL NOT NULL,
			stop_tag TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(run_id, step)
		)
	`
	if _, err := s.db.ExecContext(ctx, trajectoryTable); err != nil {
		return fmt.Errorf("failed to create kinetics_trajectory table: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, "CREATE INDEX IF NOT EXISTS idx_trajectory_run_id ON kinetics_trajectory(run_id)"); err != nil {
		return fmt.Errorf("failed to create idx_trajectory_run_id: %w", err)
	}

	outcomesTable := `
		CREATE TABLE IF NOT EXISTS kinetics_outcomes (
			run_id TEXT NOT NULL PRIMARY KEY,
			state TEXT NOT NULL,
			steps INTEGER NOT NULL,
			sim_time REAL NOT NULL,
			matched_tag TEXT NOT NULL DEFAULT '',
			err TEXT NOT NULL DEFAULT '',
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`
	if _, err := s.db.ExecContext(ctx, outcomesTable); err != nil {
		return fmt.Errorf("failed to create kinetics_outcomes table: %w", err)
	}
	return nil
}

// AppendRow persists row, erroring if (run_id, step) already exists.
func (s *SQLiteStore) AppendRow(ctx context.Context, row TrajectoryRow) error {
	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return fmt.Errorf("store is closed")
	}
	s.mu.RUnlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO kinetics_trajectory
			(run_id, step, sim_time, event_kind, entry_id, new_entry_id, total_flux, stop_tag)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, row.RunID, row.Step, row.SimTime, row.EventKind, row.EntryID, row.NewEntryID, row.TotalFlux, row.StopTag)
	if err != nil {
		return fmt.Errorf("failed to append trajectory row: %w", err)
	}
	return nil
}

// Trajectory returns the rows recorded for runID, ordered by step.
func (s *SQLiteStore) Trajectory(ctx context.Context, runID string) ([]TrajectoryRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, step, sim_time, event_kind, entry_id, new_entry_id, total_flux, stop_tag
		FROM kinetics_trajectory WHERE run_id = ? ORDER BY step ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query trajectory: %w", err)
	}
	defer rows.Close()

	var out []TrajectoryRow
	for rows.Next() {
		var r TrajectoryRow
		if err := rows.Scan(&r.RunID, &r.Step, &r.SimTime, &r.EventKind, &r.EntryID, &r.NewEntryID, &r.TotalFlux, &r.StopTag); err != nil {
			return nil, fmt.Errorf("failed to scan trajectory row: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		if _, err := s.LoadOutcome(ctx, runID); err != nil {
			return nil, ErrNotFound
		}
	}
	return out, nil
}

// SaveOutcome upserts the outcome row for outcome.RunID.
func (s *SQLiteStore) SaveOutcome(ctx context.Context, outcome RunOutcome) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO kinetics_outcomes (run_id, state, steps, sim_time, matched_tag, err)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id) DO UPDATE SET
			state = excluded.state,
			steps = excluded.steps,
			sim_time = excluded.sim_time,
			matched_tag = excluded.matched_tag,
			err = excluded.err,
			updated_at = CURRENT_TIMESTAMP
	`, outcome.RunID, outcome.State, outcome.Steps, outcome.SimTime, outcome.MatchedTag, outcome.Err)
	if err != nil {
		return fmt.Errorf("failed to save outcome: %w", err)
	}
	return nil
}

// LoadOutcome retrieves the outcome saved for runID.
func (s *SQLiteStore) LoadOutcome(ctx context.Context, runID string) (RunOutcome, error) {
	var o RunOutcome
	err := s.db.QueryRowContext(ctx, `
		SELECT run_id, state, steps, sim_time, matched_tag, err
		FROM kinetics_outcomes WHERE run_id = ?
	`, runID).Scan(&o.RunID, &o.State, &o.Steps, &o.SimTime, &o.MatchedTag, &o.Err)
	if err == sql.ErrNoRows {
		return RunOutcome{}, ErrNotFound
	}
	if err != nil {
		return RunOutcome{}, fmt.Errorf("failed to load outcome: %w", err)
	}
	return o, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}
