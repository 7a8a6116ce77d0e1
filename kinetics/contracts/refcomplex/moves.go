package refcomplex

import (
	"context"

	"github.com/dshills/strandkinetics/kinetics/contracts"
)

// moveKind distinguishes the three move classes this reference model
// enumerates.
type moveKind int

const (
	moveKindPair moveKind = iota
	moveKindUnpair
	moveKindDissociate
)

// refMove is the concrete contracts.Move this package produces. Package
// kinetics never inspects its fields beyond Kind(); it only threads the
// value from SelectMove to Apply.
type refMove struct {
	kind moveKind
	i, j int
}

// Kind renders a short diagnostic label, e.g. "pair", "unpair", "dissociate".
func (m refMove) Kind() string {
	switch m.kind {
	case moveKindPair:
		return "pair"
	case moveKindUnpair:
		return "unpair"
	case moveKindDissociate:
		return "dissociate"
	default:
		return "unknown"
	}
}

// candidateMoves enumerates every currently valid move, in a fixed order:
// all pairable (i, j) positions first (in ascending i, then ascending j),
// then every currently paired (i, j) as an unpair candidate, then a single
// dissociate move if eligible. This order is arbitrary but fixed, which is
// what TotalFlux/SelectMove need to agree with each other.
func (c *RefComplex) candidateMoves() []refMove {
	var moves []refMove

	n := len(c.base)
	for i := 0; i < n; i++ {
		if c.paired[i] >= 0 {
			continue
		}
		for j := i + minLoopSize + 1; j < n; j++ {
			if c.paired[j] >= 0 {
				continue
			}
			if c.base[i].Complement() != c.base[j] {
				continue
			}
			if c.crosses(i, j) {
				continue
			}
			moves = append(moves, refMove{kind: moveKindPair, i: i, j: j})
		}
	}

	for i := 0; i < n; i++ {
		if p := c.paired[i]; p > i {
			moves = append(moves, refMove{kind: moveKindUnpair, i: i, j: p})
		}
	}

	if c.dissociateEligible() {
		moves = append(moves, refMove{kind: moveKindDissociate})
	}

	return moves
}

// crosses reports whether forming a pair (i, j) would cross any existing
// pair, which would produce a pseudoknot. Standard non-crossing rule: for
// every existing pair (k, l) with k < l, either both k and l lie outside
// [i, j], or both lie inside it.
func (c *RefComplex) crosses(i, j int) bool {
	for k := i + 1; k < j; k++ {
		l := c.paired[k]
		if l < 0 {
			continue
		}
		if l < i || l > j {
			return true
		}
	}
	return false
}

// dissociateEligible reports whether this complex is exactly two strands
// with no base pair spanning the strand boundary, the only shape this
// reference model splits back apart.
func (c *RefComplex) dissociateEligible() bool {
	if len(c.strands) != 2 {
		return false
	}
	boundary := len(c.strands[0].Sequence)
	for i := 0; i < boundary; i++ {
		if p := c.paired[i]; p >= boundary {
			return false
		}
	}
	return true
}

func (c *RefComplex) rate(m refMove) float64 {
	switch m.kind {
	case moveKindPair:
		return c.rates.Pair
	case moveKindUnpair:
		return c.rates.Unpair
	case moveKindDissociate:
		return c.rates.Dissociate
	default:
		return 0
	}
}

// TotalFlux sums the rate of every currently valid move.
func (c *RefComplex) TotalFlux() float64 {
	total := 0.0
	for _, m := range c.candidateMoves() {
		total += c.rate(m)
	}
	return total
}

// SelectMove resolves budget, drawn from [0, TotalFlux()), to one of the
// candidate moves in the same fixed order TotalFlux summed over.
func (c *RefComplex) SelectMove(budget float64) contracts.Move {
	for _, m := range c.candidateMoves() {
		r := c.rate(m)
		if budget < r {
			return m
		}
		budget -= r
	}
	// Budget was not drawn from [0, TotalFlux()); fall back to the last
	// candidate rather than returning a nil Move, mirroring the
	// dispatcher's own consistency-violation contract at the ensemble
	// level; here there is no error channel to report
	// through, so the caller's accounting is the thing actually at fault.
	moves := c.candidateMoves()
	if len(moves) == 0 {
		return nil
	}
	return moves[len(moves)-1]
}

// Apply performs m. Pair and unpair moves mutate the receiver in place and
// report ok=false (no split). A dissociate move splits the complex into its
// two original strands: the receiver keeps strand 0 and the second strand
// is returned as a new *RefComplex with ok=true.
func (c *RefComplex) Apply(_ context.Context, m contracts.Move) (contracts.Complex, bool) {
	rm, ok := m.(refMove)
	if !ok {
		return nil, false
	}

	switch rm.kind {
	case moveKindPair:
		c.paired[rm.i] = rm.j
		c.paired[rm.j] = rm.i
		return nil, false
	case moveKindUnpair:
		c.paired[rm.i] = -1
		c.paired[rm.j] = -1
		return nil, false
	case moveKindDissociate:
		return c.split(), true
	default:
		return nil, false
	}
}

// split tears a two-strand complex back into its constituent strands,
// keeping strand 0 on the receiver and returning strand 1 as a new complex.
// Pairs internal to each strand survive the split; dissociateEligible has
// already guaranteed no pair crosses the boundary.
func (c *RefComplex) split() *RefComplex {
	boundary := len(c.strands[0].Sequence)

	other := &RefComplex{
		strands: []Strand{c.strands[1]},
		rates:   c.rates,
	}
	other.rebuildIndex()
	for i := boundary; i < len(c.paired); i++ {
		if p := c.paired[i]; p >= 0 {
			other.paired[i-boundary] = p - boundary
		}
	}

	c.strands = c.strands[:1]
	c.paired = c.paired[:boundary]
	c.rebuildIndex()

	return other
}
