// Package emit provides pluggable observability event emission for the
// kinetics simulator: a small Event/Emitter pair with log, null, buffered,
// and OpenTelemetry backends.
package emit

// Event represents one observability event emitted during a simulation run.
//
// Events carry enough structure to reconstruct a trajectory after the fact:
// step selection (join vs. unimolecular move), predicate matches, dead-state
// detection, and diagnostic-channel errors (e.g. a
// multi-Bound predicate configuration error) all flow through here rather
// than a bare fmt.Println or a process-wide stream.
type Event struct {
	// RunID identifies the simulation run that emitted this event.
	RunID string

	// Step is the sequential step number (1-indexed). The run's final
	// "outcome" event carries the last step number reached; evaluator
	// diagnostics, which are not tied to a step, carry zero.
	Step int

	// SimTime is the simulated time at which this event occurred.
	SimTime float64

	// Msg is a short machine-stable event name, e.g. "step", "outcome",
	// "store_error", "multi_bound_predicate", "mismatched_structure_length".
	Msg string

	// Meta carries event-specific structured data, e.g. entry ids touched,
	// total flux, predicate tag.
	Meta map[string]interface{}
}
