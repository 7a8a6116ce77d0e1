// Package contracts defines the external collaborator interfaces consumed by
// package kinetics: the energy model and the strand complex. Both are
// deliberately out of scope for this module, which owns only the
// ensemble-level accounting and event selection that sits on top of them.
package contracts

import "context"

// Base identifies one of the four canonical nucleotide bases. Values are
// assigned 1-4 (A, C, G, T) to match the join-resolution "typed pair"
// alphabet, where 0 is reserved to mean "no base".
type Base int

const (
	// BaseNone is the zero value and never denotes a real base.
	BaseNone Base = iota
	BaseA
	BaseC
	BaseG
	BaseT
)

// String renders the base using the standard single-letter code.
func (b Base) String() string {
	switch b {
	case BaseA:
		return "A"
	case BaseC:
		return "C"
	case BaseG:
		return "G"
	case BaseT:
		return "T"
	default:
		return "?"
	}
}

// Complement returns the Watson-Crick complement of b (A<->T, C<->G).
func (b Base) Complement() Base {
	switch b {
	case BaseA:
		return BaseT
	case BaseT:
		return BaseA
	case BaseC:
		return BaseG
	case BaseG:
		return BaseC
	default:
		return BaseNone
	}
}

// ExteriorBases tallies the currently unpaired bases of a complex that are
// available for intermolecular pairing.
type ExteriorBases struct {
	A, C, G, T int
}

// Add returns the element-wise sum of two tallies.
func (e ExteriorBases) Add(o ExteriorBases) ExteriorBases {
	return ExteriorBases{A: e.A + o.A, C: e.C + o.C, G: e.G + o.G, T: e.T + o.T}
}

// Sub returns the element-wise difference e - o. Callers in package kinetics
// only ever subtract a tally that was previously added to a running total, so
// the result is never negative for well-formed input.
func (e ExteriorBases) Sub(o ExteriorBases) ExteriorBases {
	return ExteriorBases{A: e.A - o.A, C: e.C - o.C, G: e.G - o.G, T: e.T - o.T}
}

// Total returns A+C+G+T.
func (e ExteriorBases) Total() int {
	return e.A + e.C + e.G + e.T
}

// Move is an opaque unimolecular move selected by a Complex. Package kinetics
// never inspects its fields; it only threads the value from SelectMove to
// Apply.
type Move interface {
	// Kind is a short label used for diagnostics and metrics, e.g.
	// "bulge-open", "stack-shift", "dissociate".
	Kind() string
}

// EnergyModel supplies the thermodynamic quantities the ensemble manager
// needs to turn a raw complex energy into a cached, comparable scalar, and
// the rate constant governing bimolecular joins.
type EnergyModel interface {
	// VolumeEnergy returns the per-excess-strand volume correction.
	VolumeEnergy() float64

	// AssocEnergy returns the per-excess-strand association correction.
	AssocEnergy() float64

	// JoinRate returns k_join, the scalar multiplying the combinatorial join
	// count computed by the join flux engine.
	JoinRate() float64
}

// Complex owns one connected structure of paired/unpaired strands.
// Implementations are expected to be mutable, single-owner, and are never
// accessed concurrently by this module.
type Complex interface {
	// GenerateLoops builds the internal loop-graph representation used for
	// move enumeration. Must be called (directly or via DisplayMoves) before
	// TotalFlux/SelectMove are meaningful.
	GenerateLoops(ctx context.Context)

	// DisplayMoves enumerates and caches the available unimolecular moves.
	// Idempotent; safe to call again after a move invalidates the cache.
	DisplayMoves(ctx context.Context)

	// TotalFlux returns the total outgoing unimolecular rate of this complex
	// under the current structure.
	TotalFlux() float64

	// Energy returns the raw loop free energy of this complex, not including
	// any volume/association correction (those are applied by the
	// caller).
	Energy() float64

	// StrandCount returns the number of strands participating in this
	// complex.
	StrandCount() int

	// ExteriorBases returns the tally of currently unpaired, joinable bases.
	ExteriorBases() ExteriorBases

	// SelectMove resolves a uniform deviate in [0, TotalFlux()) to a
	// concrete move. budget is consumed in place; implementations decrement
	// it as they walk their internal move list and the final residual is
	// discarded by the caller.
	SelectMove(budget float64) Move

	// Apply performs the given move. If the move splits the complex
	// (dissociation), the second return value is the newly created
	// complex and ok is true; the receiver becomes the remaining complex.
	// If the move does not split the complex, ok is false.
	Apply(ctx context.Context, m Move) (newComplex Complex, ok bool)

	// Structure returns the dot-bracket structure string.
	Structure() string

	// StrandNames returns a delimited rendering of the participating strand
	// names, in complex order.
	StrandNames() string

	// Sequence returns the concatenated sequence of the complex in complex
	// order.
	Sequence() string

	// CheckIDBound reports whether strandID is currently base-paired
	// anywhere in this complex.
	CheckIDBound(strandID int) bool

	// CheckIDList reports whether this complex's strand-id list equals ids
	// up to circular rotation. count is len(ids) and is passed explicitly
	// so implementations need not recompute it.
	CheckIDList(ids []int, count int) bool
}

// JoinIndex selects a specific exterior-base offset within the aggregate
// count for a (complex, base-type) pair.
type JoinIndex [2]int

// JoinTypes records the ordered pair of base types bound together by a join,
// using the 1-4 alphabet (A=1, C=2, G=3, T=4).
type JoinTypes [2]Base

// PerformComplexJoin is the external primitive that actually binds two
// exterior bases on distinct complexes into one merged complex. complexes[0]
// survives and is mutated in place to become the merged complex;
// complexes[1] is returned as the complex to delete from the ensemble.
type PerformComplexJoin func(ctx context.Context, complexes [2]Complex, types JoinTypes, index JoinIndex) (toDelete Complex)
