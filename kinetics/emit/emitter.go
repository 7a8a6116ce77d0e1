package emit

import "context"

// Emitter receives observability events from a running simulation.
// Implementations should be non-blocking and must never panic; a slow or
// unavailable backend should drop or buffer events rather than stall the
// dispatcher, since package kinetics has no suspension point inside a step.
type Emitter interface {
	// Emit sends a single event to the configured backend.
	Emit(event Event)

	// EmitBatch sends multiple events in one operation. Implementations
	// should preserve event order.
	EmitBatch(ctx context.Context, events []Event) error

	// Flush blocks until all buffered events are delivered, or ctx expires.
	Flush(ctx context.Context) error
}
