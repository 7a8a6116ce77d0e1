package kinetics

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"math"
	"math/rand"
	"time"

	"github.com/dshills/strandkinetics/kinetics/emit"
	"github.com/dshills/strandkinetics/kinetics/store"
)

// RunState is one of the five states in the per-simulation loop's state
// machine.
type RunState int

const (
	RunInitialized RunState = iota
	RunRunning
	RunStopped
	RunExpired
	RunFailed
)

func (s RunState) String() string {
	switch s {
	case RunInitialized:
		return "Initialized"
	case RunRunning:
		return "Running"
	case RunStopped:
		return "Stopped"
	case RunExpired:
		return "Expired"
	case RunFailed:
		return "Error"
	default:
		return "Unknown"
	}
}

// StopCondition names one AND-list of predicates. A run
// may be configured with several; the first one whose predicate list
// matches after a step wins, and its Tag is surfaced on the Outcome.
type StopCondition struct {
	Tag        string
	Predicates *Predicate
}

// Outcome is the terminal (or latest) status of a Run: which state it
// ended in, how many steps and how much simulated time elapsed, and, for a
// Stopped run, which stop condition matched.
type Outcome struct {
	State      RunState
	Steps      int
	SimTime    float64
	MatchedTag string
	Err        error
}

// seedRNG derives a deterministic random source from runID, so that two
// runs sharing a run id reproduce an identical trajectory: sha256(runID),
// first 8 bytes as an int64 seed for math/rand.
func seedRNG(runID string) *rand.Rand {
	sum := sha256.Sum256([]byte(runID))
	seed := int64(binary.BigEndian.Uint64(sum[:8])) // #nosec G115 -- deterministic seeding, not security
	return rand.New(rand.NewSource(seed))           // #nosec G404 -- deterministic RNG for reproducible trajectories
}

// Run drives the per-simulation loop: draw a uniform deviate and a
// waiting time from the ensemble's current total flux, dispatch one step,
// test stop conditions, and repeat until a condition matches, the time
// budget is exhausted, or the ensemble reaches a dead state.
type Run struct {
	ID             string
	Ensemble       *Ensemble
	Dispatcher     *Dispatcher
	Evaluator      *Evaluator
	StopConditions []StopCondition
	TimeBudget     float64
	Emitter        emit.Emitter
	Metrics        *Metrics

	// Store, when non-nil, receives one trajectory row per accepted step
	// and the final outcome. Persistence is best-effort: a failed write is
	// reported through Emitter and the simulation continues, because the
	// trajectory log is a reporting surface, not part of the step
	// transaction.
	Store store.Store

	rng     *rand.Rand
	state   RunState
	step    int
	simTime float64
}

// NewRun creates a Run in the Initialized state. emitter and metrics may
// be nil; a nil emitter is replaced with emit.NewNullEmitter().
func NewRun(id string, en *Ensemble, dispatcher *Dispatcher, evaluator *Evaluator, stopConditions []StopCondition, timeBudget float64, emitter emit.Emitter, metrics *Metrics) *Run {
	if emitter == nil {
		emitter = emit.NewNullEmitter()
	}
	return &Run{
		ID:             id,
		Ensemble:       en,
		Dispatcher:     dispatcher,
		Evaluator:      evaluator,
		StopConditions: stopConditions,
		TimeBudget:     timeBudget,
		Emitter:        emitter,
		Metrics:        metrics,
		rng:            seedRNG(id),
		state:          RunInitialized,
	}
}

// State reports the run's current state.
func (r *Run) State() RunState { return r.state }

// Execute runs the loop to completion: Initialized → Running → one of
// {Stopped, Expired, Error}. It returns a non-nil error only alongside a
// RunError describing why the run aborted; Stopped and Expired are both
// successful completions reported only via Outcome.
func (r *Run) Execute(ctx context.Context) (Outcome, error) {
	if r.state != RunInitialized {
		return Outcome{}, &RunError{Code: "ALREADY_STARTED", Message: "run already started"}
	}
	r.state = RunRunning

	for {
		select {
		case <-ctx.Done():
			return r.fail("CONTEXT_CANCELLED", ctx.Err())
		default:
		}

		total := r.Ensemble.TotalFlux()
		if total <= 0 {
			return r.fail("DEAD_STATE", ErrDeadState)
		}

		choice := r.rng.Float64() * total
		dt := -math.Log(1-r.rng.Float64()) / total
		r.simTime += dt
		r.step++

		stepStart := time.Now()
		res, err := r.Dispatcher.Step(ctx, r.Ensemble, choice)
		if err != nil {
			return r.fail("CONSISTENCY_VIOLATION", err)
		}
		r.emitStep(res)
		if r.Metrics != nil {
			r.Metrics.ObserveStep(r.ID, r.Ensemble, res)
			r.Metrics.ObserveStepLatencyMs(r.ID, float64(time.Since(stepStart))/float64(time.Millisecond))
		}

		tag, matched := r.matchStopConditions()
		r.persistRow(ctx, res, total, tag)
		if matched {
			if r.Metrics != nil {
				r.Metrics.ObserveStopMatch(r.ID, tag)
			}
			return r.succeed(RunStopped, tag), nil
		}
		if r.simTime >= r.TimeBudget {
			return r.succeed(RunExpired, ""), nil
		}
	}
}

// persistRow appends one trajectory row to the configured store, if any.
// Write failures are emitted, not returned.
func (r *Run) persistRow(ctx context.Context, res StepResult, totalFlux float64, stopTag string) {
	if r.Store == nil {
		return
	}
	row := store.TrajectoryRow{
		RunID:     r.ID,
		Step:      r.step,
		SimTime:   r.simTime,
		EventKind: "move",
		TotalFlux: totalFlux,
		StopTag:   stopTag,
	}
	if res.Joined {
		row.EventKind = "join"
	}
	if res.Entry != nil {
		row.EntryID = res.Entry.ID
	}
	if res.NewEntry != nil {
		row.NewEntryID = res.NewEntry.ID
	}
	if err := r.Store.AppendRow(ctx, row); err != nil {
		r.Emitter.Emit(emit.Event{
			RunID:   r.ID,
			Step:    r.step,
			SimTime: r.simTime,
			Msg:     "store_error",
			Meta:    map[string]interface{}{"error": err.Error()},
		})
	}
}

// persistOutcome saves the terminal outcome to the configured store, if any.
func (r *Run) persistOutcome(o Outcome) {
	if r.Store == nil {
		return
	}
	rec := store.RunOutcome{
		RunID:      r.ID,
		State:      o.State.String(),
		Steps:      o.Steps,
		SimTime:    o.SimTime,
		MatchedTag: o.MatchedTag,
	}
	if o.Err != nil {
		rec.Err = o.Err.Error()
	}
	if err := r.Store.SaveOutcome(context.Background(), rec); err != nil {
		r.Emitter.Emit(emit.Event{
			RunID:   r.ID,
			Step:    r.step,
			SimTime: r.simTime,
			Msg:     "store_error",
			Meta:    map[string]interface{}{"error": err.Error()},
		})
	}
}

func (r *Run) matchStopConditions() (string, bool) {
	for _, sc := range r.StopConditions {
		if r.Evaluator.Matches(r.Ensemble, sc.Predicates) {
			return sc.Tag, true
		}
	}
	return "", false
}

func (r *Run) succeed(state RunState, tag string) Outcome {
	r.state = state
	outcome := Outcome{State: state, Steps: r.step, SimTime: r.simTime, MatchedTag: tag}
	r.emitOutcome(outcome)
	r.persistOutcome(outcome)
	return outcome
}

func (r *Run) fail(code string, cause error) (Outcome, error) {
	r.state = RunFailed
	outcome := Outcome{State: RunFailed, Steps: r.step, SimTime: r.simTime, Err: cause}
	r.emitOutcome(outcome)
	r.persistOutcome(outcome)
	return outcome, &RunError{Code: code, Message: cause.Error(), Cause: cause, Outcome: outcome}
}

func (r *Run) emitStep(res StepResult) {
	meta := map[string]interface{}{"joined": res.Joined}
	if res.Entry != nil {
		meta["entry_id"] = res.Entry.ID
	}
	if res.NewEntry != nil {
		meta["new_entry_id"] = res.NewEntry.ID
	}
	r.Emitter.Emit(emit.Event{
		RunID:   r.ID,
		Step:    r.step,
		SimTime: r.simTime,
		Msg:     "step",
		Meta:    meta,
	})
}

func (r *Run) emitOutcome(o Outcome) {
	meta := map[string]interface{}{"state": o.State.String()}
	if o.MatchedTag != "" {
		meta["matched_tag"] = o.MatchedTag
	}
	if o.Err != nil {
		meta["error"] = o.Err.Error()
	}
	r.Emitter.Emit(emit.Event{
		RunID:   r.ID,
		Step:    r.step,
		SimTime: r.simTime,
		Msg:     "outcome",
		Meta:    meta,
	})
}
