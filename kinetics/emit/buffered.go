package emit

import (
	"context"
	"sync"
)

// BufferedEmitter stores events in memory, organized by run id, and
// supports filtered retrieval. Used
// both for tests and as the history a driver can serve to a monitor (see
// cmd/kinsim's /runs/:id/events route).
type BufferedEmitter struct {
	mu     sync.RWMutex
	events map[string][]Event
}

// NewBufferedEmitter creates an empty BufferedEmitter.
func NewBufferedEmitter() *BufferedEmitter {
	return &BufferedEmitter{events: make(map[string][]Event)}
}

// Emit appends event to its run's history.
func (b *BufferedEmitter) Emit(event Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events[event.RunID] = append(b.events[event.RunID], event)
}

// EmitBatch appends events in order.
func (b *BufferedEmitter) EmitBatch(_ context.Context, events []Event) error {
	for _, e := range events {
		b.Emit(e)
	}
	return nil
}

// Flush is a no-op; BufferedEmitter never buffers beyond its own storage.
func (b *BufferedEmitter) Flush(context.Context) error {
	return nil
}

// History returns a copy of the events recorded for runID, in emission
// order.
func (b *BufferedEmitter) History(runID string) []Event {
	b.mu.RLock()
	defer b.mu.RUnlock()
	src := b.events[runID]
	out := make([]Event, len(src))
	copy(out, src)
	return out
}

// HistorySince returns events recorded for runID with Step > afterStep, in
// emission order, so a reader can fetch only the events after the last
// step it already has.
func (b *BufferedEmitter) HistorySince(runID string, afterStep int) []Event {
	all := b.History(runID)
	out := all[:0:0]
	for _, e := range all {
		if e.Step > afterStep {
			out = append(out, e)
		}
	}
	return out
}

// Clear discards all recorded events for runID.
func (b *BufferedEmitter) Clear(runID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.events, runID)
}
