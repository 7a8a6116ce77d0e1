package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// MySQLStore is a MySQL/MariaDB-backed Store. Intended for kinetic Monte
// Carlo sweeps long enough that a durable, queryable trajectory log across
// process restarts is worth the operational cost of a database.
//
// DSN format: [username[:password]@][protocol[(address)]]/dbname[?params]
type MySQLStore struct {
	db     *sql.DB
	mu     sync.RWMutex
	closed bool
}

// NewMySQLStore opens a connection pool against dsn and ensures the
// trajectory/outcome schema exists.
func NewMySQLStore(dsn string) (*MySQLStore, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL connection: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(10 * time.Minute)

	ctx := context.Background()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping MySQL: %w", err)
	}

	s := &MySQLStore{db: db}
	if err := s.createTables(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return s, nil
}

func (s *MySQLStore) createTables(ctx context.Context) error {
	trajectoryTable := `
		CREATE TABLE IF NOT EXISTS kinetics_trajectory (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			run_id VARCHAR(255) NOT NULL,
			step INT NOT NULL,
			sim_time DOUBLE NOT NULL,
			event_kind VARCHAR(32) NOT NULL,
			entry_id INT NOT NULL,
			new_entry_id INT NOT NULL,
			total_flux DOUBLE NOT NULL,
			stop_tag VARCHAR(255) NOT NULL DEFAULT '',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			UNIQUE KEY uniq_run_step (run_id, step),
			KEY idx_run_id (run_id)
		) ENGINE=InnoDB
	`
	if _, err := s.db.ExecContext(ctx, trajectoryTable); err != nil {
		return fmt.Errorf("failed to create kinetics_trajectory table: %w", err)
	}

	outcomesTable := `
		CREATE TABLE IF NOT EXISTS kinetics_outcomes (
			run_id VARCHAR(255) NOT NULL PRIMARY KEY,
			state VARCHAR(32) NOT NULL,
			steps INT NOT NULL,
			sim_time DOUBLE NOT NULL,
			matched_tag VARCHAR(255) NOT NULL DEFAULT '',
			err TEXT,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
		) ENGINE=InnoDB
	`
	if _, err := s.db.ExecContext(ctx, outcomesTable); err != nil {
		return fmt.Errorf("failed to create kinetics_outcomes table: %w", err)
	}
	return nil
}

// AppendRow persists row.
func (s *MySQLStore) AppendRow(ctx context.Context, row TrajectoryRow) error {
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
func (s *MySQLStore) Trajectory(ctx context.Context, runID string) ([]TrajectoryRow, error) {
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
func (s *MySQLStore) SaveOutcome(ctx context.Context, outcome RunOutcome) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO kinetics_outcomes (run_id, state, steps, sim_time, matched_tag, err)
		VALUES (?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			state = VALUES(state),
			steps = VALUES(steps),
			sim_time = VALUES(sim_time),
			matched_tag = VALUES(matched_tag),
			err = VALUES(err)
	`, outcome.RunID, outcome.State, outcome.Steps, outcome.SimTime, outcome.MatchedTag, outcome.Err)
	if err != nil {
		return fmt.Errorf("failed to save outcome: %w", err)
	}
	return nil
}

// LoadOutcome retrieves the outcome saved for runID.
func (s *MySQLStore) LoadOutcome(ctx context.Context, runID string) (RunOutcome, error) {
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

// Close closes the underlying connection pool.
func (s *MySQLStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}
