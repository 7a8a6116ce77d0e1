package store_test

import (
	"context"
	"testing"

	"github.com/dshills/strandkinetics/kinetics/store"
)

// newMemAndSQLite builds the two always-available store implementations, so
// shared behavior tests run against both without a real database.
func newMemAndSQLite(t *testing.T) map[string]store.Store {
	t.Helper()

	sqliteStore, err := store.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { _ = sqliteStore.Close() })

	return map[string]store.Store{
		"mem":    store.NewMemStore(),
		"sqlite": sqliteStore,
	}
}

func TestStore_AppendAndTrajectory(t *testing.T) {
	for name, s := range newMemAndSQLite(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			runID := "run-1"

			rows := []store.TrajectoryRow{
				{RunID: runID, Step: 1, SimTime: 0.01, EventKind: "move", EntryID: 1, TotalFlux: 3.5},
				{RunID: runID, Step: 2, SimTime: 0.04, EventKind: "join", EntryID: 1, NewEntryID: 0, TotalFlux: 2.1},
				{RunID: runID, Step: 3, SimTime: 0.09, EventKind: "move", EntryID: 2, TotalFlux: 1.0, StopTag: "hairpin"},
			}
			for _, r := range rows {
				if err := s.AppendRow(ctx, r); err != nil {
					t.Fatalf("AppendRow: %v", err)
				}
			}

			got, err := s.Trajectory(ctx, runID)
			if err != nil {
				t.Fatalf("Trajectory: %v", err)
			}
			if len(got) != len(rows) {
				t.Fatalf("got %d rows, want %d", len(got), len(rows))
			}
			for i, r := range got {
				if r.Step != rows[i].Step || r.EventKind != rows[i].EventKind {
					t.Errorf("row %d = %+v, want %+v", i, r, rows[i])
				}
			}
			if got[2].StopTag != "hairpin" {
				t.Errorf("row 2 StopTag = %q, want hairpin", got[2].StopTag)
			}
		})
	}
}

func TestStore_TrajectoryNotFound(t *testing.T) {
	for name, s := range newMemAndSQLite(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			if _, err := s.Trajectory(ctx, "no-such-run"); err != store.ErrNotFound {
				t.Errorf("Trajectory on unknown run = %v, want ErrNotFound", err)
			}
		})
	}
}

func TestStore_OutcomeRoundTrip(t *testing.T) {
	for name, s := range newMemAndSQLite(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			outcome := store.RunOutcome{
				RunID:      "run-2",
				State:      "Stopped",
				Steps:      42,
				SimTime:    1.23,
				MatchedTag: "folded",
			}
			if err := s.SaveOutcome(ctx, outcome); err != nil {
				t.Fatalf("SaveOutcome: %v", err)
			}

			got, err := s.LoadOutcome(ctx, outcome.RunID)
			if err != nil {
				t.Fatalf("LoadOutcome: %v", err)
			}
			if got != outcome {
				t.Errorf("LoadOutcome = %+v, want %+v", got, outcome)
			}

			updated := outcome
			updated.Steps = 100
			updated.State = "Expired"
			if err := s.SaveOutcome(ctx, updated); err != nil {
				t.Fatalf("SaveOutcome (update): %v", err)
			}
			got, err = s.LoadOutcome(ctx, outcome.RunID)
			if err != nil {
				t.Fatalf("LoadOutcome (after update): %v", err)
			}
			if got != updated {
				t.Errorf("LoadOutcome after update = %+v, want %+v", got, updated)
			}
		})
	}
}

func TestStore_LoadOutcomeNotFound(t *testing.T) {
	for name, s := range newMemAndSQLite(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			if _, err := s.LoadOutcome(ctx, "missing"); err != store.ErrNotFound {
				t.Errorf("LoadOutcome on unknown run = %v, want ErrNotFound", err)
			}
		})
	}
}
