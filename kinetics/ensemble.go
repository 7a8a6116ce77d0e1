package kinetics

import (
	"context"

	"github.com/dshills/strandkinetics/kinetics/contracts"
)

// Ensemble is the intrusive singly-linked collection of live complexes.
// New entries are inserted at the head; list
// order is otherwise an implementation detail, but it is the order the join
// flux engine and the dispatcher's weighted walk both iterate in, and that
// order is load-bearing for bit-reproducible seeded trajectories.
type Ensemble struct {
	head     *Entry
	count    int
	nextID   int
	model    contracts.EnergyModel
	joinFlux float64
	joiner   JoinFluxEngine
}

// NewEnsemble creates an empty ensemble backed by the given energy model.
func NewEnsemble(model contracts.EnergyModel) *Ensemble {
	return &Ensemble{model: model}
}

// Len returns the number of live entries.
func (en *Ensemble) Len() int {
	return en.count
}

// Model returns the ensemble's energy model.
func (en *Ensemble) Model() contracts.EnergyModel {
	return en.model
}

// Add inserts complex c at the head of the list with a freshly allocated,
// never-reused id. The new entry's caches are invalid
// until Initialize or Refresh is called.
func (en *Ensemble) Add(c contracts.Complex) *Entry {
	en.nextID++
	e := &Entry{ID: en.nextID, Complex: c, next: en.head}
	en.head = e
	en.count++
	return e
}

// Initialize triggers loop-graph generation and populates caches for the
// given entry (InitializeAll does this for every entry). It is idempotent immediately after construction: calling it again
// before any move has occurred reproduces the same caches.
func (en *Ensemble) Initialize(ctx context.Context, entry *Entry) {
	entry.Complex.GenerateLoops(ctx)
	entry.Complex.DisplayMoves(ctx)
	entry.refresh(en.model)
}

// InitializeAll runs Initialize over every live entry, in list order.
func (en *Ensemble) InitializeAll(ctx context.Context) {
	for e := en.head; e != nil; e = e.next {
		en.Initialize(ctx, e)
	}
}

// Refresh recomputes an entry's cached energy, flux, and exterior-base
// tally from its current complex state. The dispatcher calls this on every
// entry touched by a move; untouched entries keep their existing, still-
// valid caches.
func (en *Ensemble) Refresh(entry *Entry) {
	entry.refresh(en.model)
}

// Remove unlinks and destroys entry. Callers must ensure entry is not
// referenced elsewhere afterward.
func (en *Ensemble) Remove(entry *Entry) {
	if en.head == entry {
		en.head = entry.next
		en.count--
		return
	}
	for e := en.head; e != nil; e = e.next {
		if e.next == entry {
			e.next = entry.next
			en.count--
			return
		}
	}
}

// Iterate returns the live entries in list order as a stable snapshot slice.
// No concurrent mutation of the ensemble is permitted while the result is in
// use.
func (en *Ensemble) Iterate() []*Entry {
	out := make([]*Entry, 0, en.count)
	for e := en.head; e != nil; e = e.next {
		out = append(out, e)
	}
	return out
}

// Head returns the first entry in list order, or nil if the ensemble is
// empty.
func (en *Ensemble) Head() *Entry {
	return en.head
}

// JoinFlux returns the join flux computed at the last TotalFlux call. It is
// zero before the first call.
func (en *Ensemble) JoinFlux() float64 {
	return en.joinFlux
}

// TotalFlux re-derives the join flux from the current exterior-base
// tallies, caches it, and returns Σ(entry flux) + join flux.
// Floating-point addition proceeds head-to-tail over the live entries,
// which is load-bearing for reproducibility.
func (en *Ensemble) TotalFlux() float64 {
	entries := en.Iterate()
	en.joinFlux = en.joiner.Flux(entries, en.model)

	sum := en.joinFlux
	for _, e := range entries {
		sum += e.Flux
	}
	return sum
}
