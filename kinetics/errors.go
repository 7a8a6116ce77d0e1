// Package kinetics implements a continuous-time kinetic Monte Carlo
// simulator for interacting nucleic-acid strands at the secondary-structure
// level: the complex ensemble manager, the join-flux
// combinatorics, the event dispatcher, and the stop-predicate evaluator.
package kinetics

import "errors"

// ErrDeadState is returned when total flux reaches zero before any stop
// predicate has matched. The simulation cannot make further progress
// and is terminated with an unproductive result.
var ErrDeadState = errors.New("kinetics: total flux is zero, no predicate matched (dead state)")

// ErrConsistencyViolation is returned when the dispatcher's weighted walk
// reaches the end of the entry list without selecting a
// complex. This indicates total_flux and the walk budget
// have diverged and is always a programming error in either this package or
// a caller that mutated the ensemble between total_flux and Step.
var ErrConsistencyViolation = errors.New("kinetics: dispatcher walk exhausted entries without a pick")

// ErrMultiBoundPredicate is the configuration error reported when a Bound
// predicate heads a list with more than one predicate. A Bound predicate
// further down a list is not reported; it never matches, so the list never
// matches either. Evaluator.Matches reports this
// on its diagnostic channel and returns false; it is never returned as a Go
// error from Matches itself: there are no recoverable per-step errors, so
// the evaluator degrades to a false match, not a panic or
// error return.
var ErrMultiBoundPredicate = errors.New("kinetics: Bound predicate may not be combined with other predicates")

// ErrMismatchedStructureLength is the bad-input error reported when a Loose
// or Count predicate's target string length differs from the candidate
// complex's structure. Like ErrMultiBoundPredicate, it flows to the
// evaluator's diagnostic channel and the predicate simply fails to match;
// it is never returned as a Go error from Matches.
var ErrMismatchedStructureLength = errors.New("kinetics: predicate target and structure lengths differ")

// ErrEmptyEnsemble describes an ensemble with no live entries. No function
// in this package returns it; an empty ensemble reaches Run.Execute as zero
// total flux and ends in ErrDeadState.
var ErrEmptyEnsemble = errors.New("kinetics: ensemble has no live entries")

// RunError is returned by Run.Execute when the simulation reaches a
// terminal, non-successful state: ErrDeadState, ErrConsistencyViolation, or
// a join-resolution internal-consistency failure. It carries the partial
// Outcome reached before the failure so callers can still report step count
// and simulated time, attaching a machine-readable Code alongside a human message.
type RunError struct {
	// Code is a short machine-readable identifier, e.g. "DEAD_STATE",
	// "CONSISTENCY_VIOLATION".
	Code string

	// Message is a human-readable description.
	Message string

	// Cause is the underlying sentinel error, suitable for errors.Is.
	Cause error

	// Outcome is the run's state at the point of failure.
	Outcome Outcome
}

// Error implements the error interface.
func (e *RunError) Error() string {
	return "kinetics: " + e.Message
}

// Unwrap returns Cause, enabling errors.Is(err, ErrDeadState) etc.
func (e *RunError) Unwrap() error {
	return e.Cause
}
