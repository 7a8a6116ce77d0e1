package emit

import "context"

// NullEmitter discards every event. Useful for production runs where
// per-step observability overhead is unwanted, or for tests that only care
// about the returned Outcome.
type NullEmitter struct{}

// NewNullEmitter creates a NullEmitter.
func NewNullEmitter() *NullEmitter {
	return &NullEmitter{}
}

// Emit discards event.
func (n *NullEmitter) Emit(Event) {}

// EmitBatch discards events and always reports success.
func (n *NullEmitter) EmitBatch(context.Context, []Event) error {
	return nil
}

// Flush is a no-op.
func (n *NullEmitter) Flush(context.Context) error {
	return nil
}
