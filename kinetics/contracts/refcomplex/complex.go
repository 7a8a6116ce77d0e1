// Package refcomplex is a small, deterministic reference implementation of
// contracts.Complex and contracts.EnergyModel. It exists so the core
// kinetics package's tests and cmd/kinsim's demo driver can run a real
// (if simplified) secondary-structure move enumerator without depending on
// an actual loop free-energy engine: a faithful-enough stand-in for the external
// collaborator, not a second production implementation.
//
// The model: a complex is a set of strands arranged end-to-end in a fixed
// order, each base either unpaired or paired to exactly one other base
// within the same complex, subject to the usual non-crossing (pseudoknot-
// free) secondary-structure constraint. Two move classes are enumerated
// over base pairs: pair, for each unpaired complementary (i, j) that may
// form, and unpair, for each current pair; plus a dissociate move when a
// two-strand complex currently has no base pair spanning the strand
// boundary. This is sufficient to exercise hairpin folding
// and symmetric joins without modeling loop free energy in any
// real thermodynamic sense.
package refcomplex

import (
	"context"
	"strings"

	"github.com/dshills/strandkinetics/kinetics/contracts"
)

// Strand names one contiguous run of bases within a Complex's current
// ordering.
type Strand struct {
	ID       int
	Name     string
	Sequence []contracts.Base
}

// minLoopSize is the minimum number of unpaired bases enclosed by a new base
// pair (i, j): j - i - 1 >= minLoopSize. 3 is the conventional minimum
// hairpin loop size.
const minLoopSize = 3

// RefComplex is a reference contracts.Complex over one or more Strands laid
// out end to end. It is not safe for concurrent use.
type RefComplex struct {
	strands []Strand
	base    []contracts.Base // concatenated sequence, position order
	strand  []int            // which strands[] index each position belongs to
	paired  []int            // -1 if unpaired, else the partner position

	rates MoveRates
}

// MoveRates assigns a flat rate to each move class. Real engines derive
// these from loop free energies; this reference model uses fixed per-class
// constants so a hairpin's fold/unfold trajectory is reproducible and
// biased toward folding.
type MoveRates struct {
	Pair       float64
	Unpair     float64
	Dissociate float64
}

// DefaultMoveRates biases new-pair formation above breakage, which is what
// drives a hairpin to spend most of its time folded.
var DefaultMoveRates = MoveRates{Pair: 2.0, Unpair: 1.0, Dissociate: 0.5}

// NewSingleStrand builds a one-strand RefComplex from a sequence string
// (letters A, C, G, T) with default move rates.
func NewSingleStrand(id int, name, sequence string) *RefComplex {
	return NewSingleStrandRates(id, name, sequence, DefaultMoveRates)
}

// NewSingleStrandRates is NewSingleStrand with explicit move rates.
func NewSingleStrandRates(id int, name, sequence string, rates MoveRates) *RefComplex {
	bases := make([]contracts.Base, len(sequence))
	for i, c := range []byte(sequence) {
		bases[i] = baseFromByte(c)
	}
	c := &RefComplex{
		strands: []Strand{{ID: id, Name: name, Sequence: bases}},
		rates:   rates,
	}
	c.rebuildIndex()
	return c
}

func (c *RefComplex) rebuildIndex() {
	c.base = c.base[:0]
	c.strand = c.strand[:0]
	for si, s := range c.strands {
		for _, b := range s.Sequence {
			c.base = append(c.base, b)
			c.strand = append(c.strand, si)
		}
	}
	if c.paired == nil || len(c.paired) != len(c.base) {
		paired := make([]int, len(c.base))
		for i := range paired {
			paired[i] = -1
		}
		c.paired = paired
	}
}

func baseFromByte(c byte) contracts.Base {
	switch c {
	case 'A', 'a':
		return contracts.BaseA
	case 'C', 'c':
		return contracts.BaseC
	case 'G', 'g':
		return contracts.BaseG
	case 'T', 't':
		return contracts.BaseT
	default:
		return contracts.BaseNone
	}
}

// GenerateLoops is a no-op: this reference model recomputes its move list on
// demand rather than maintaining a persistent loop graph.
func (c *RefComplex) GenerateLoops(context.Context) {}

// DisplayMoves is a no-op for the same reason; present to satisfy
// contracts.Complex.
func (c *RefComplex) DisplayMoves(context.Context) {}

// StrandCount returns the number of strands currently in this complex.
func (c *RefComplex) StrandCount() int {
	return len(c.strands)
}

// Structure renders the current pairing as a dot-bracket string in position
// order: '(' at the lower index of a pair, ')' at the higher, '.' unpaired.
func (c *RefComplex) Structure() string {
	var sb strings.Builder
	sb.Grow(len(c.base))
	for i, p := range c.paired {
		switch {
		case p < 0:
			sb.WriteByte('.')
		case p > i:
			sb.WriteByte('(')
		default:
			sb.WriteByte(')')
		}
	}
	return sb.String()
}

// Sequence renders the concatenated base sequence in complex order.
func (c *RefComplex) Sequence() string {
	var sb strings.Builder
	sb.Grow(len(c.base))
	for _, b := range c.base {
		sb.WriteString(b.String())
	}
	return sb.String()
}

// StrandNames renders participating strand names, '+'-delimited, in complex
// order.
func (c *RefComplex) StrandNames() string {
	names := make([]string, len(c.strands))
	for i, s := range c.strands {
		names[i] = s.Name
	}
	return strings.Join(names, "+")
}

// CheckIDBound reports whether any base belonging to strandID is currently
// paired.
func (c *RefComplex) CheckIDBound(strandID int) bool {
	for i, si := range c.strand {
		if c.strands[si].ID == strandID && c.paired[i] >= 0 {
			return true
		}
	}
	return false
}

// CheckIDList reports whether this complex's ordered strand-id list equals
// ids up to circular rotation.
func (c *RefComplex) CheckIDList(ids []int, count int) bool {
	if count != len(c.strands) || len(ids) != count {
		return false
	}
	ours := make([]int, len(c.strands))
	for i, s := range c.strands {
		ours[i] = s.ID
	}
	return circularEqual(ours, ids)
}

func circularEqual(a, b []int) bool {
	n := len(a)
	if n != len(b) {
		return false
	}
	if n == 0 {
		return true
	}
	for shift := 0; shift < n; shift++ {
		match := true
		for i := 0; i < n; i++ {
			if a[i] != b[(i+shift)%n] {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

// ExteriorBases tallies currently unpaired bases by type. This
// reference model treats every unpaired base as exterior; it does not
// distinguish interior vs. terminal loop positions.
func (c *RefComplex) ExteriorBases() contracts.ExteriorBases {
	var ex contracts.ExteriorBases
	for i, p := range c.paired {
		if p >= 0 {
			continue
		}
		switch c.base[i] {
		case contracts.BaseA:
			ex.A++
		case contracts.BaseC:
			ex.C++
		case contracts.BaseG:
			ex.G++
		case contracts.BaseT:
			ex.T++
		}
	}
	return ex
}

// Energy returns the raw loop free energy: -1 per current base pair. More
// paired bases means lower (more favorable) energy, matching the intuitive
// notion that a folded hairpin is more stable than an unfolded one. Volume
// and association corrections are applied by the caller, not here.
func (c *RefComplex) Energy() float64 {
	pairs := 0
	for _, p := range c.paired {
		if p >= 0 {
			pairs++
		}
	}
	return -float64(pairs) / 2
}
