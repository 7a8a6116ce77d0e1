package kinetics

import (
	"context"

	"github.com/dshills/strandkinetics/kinetics/contracts"
)

// fakeEnergyModel is a minimal contracts.EnergyModel with fixed values,
// used by every test in this package that needs a caller-supplied energy
// model but doesn't care about realistic thermodynamics.
type fakeEnergyModel struct {
	volume, assoc, joinRate float64
}

func (m fakeEnergyModel) VolumeEnergy() float64 { return m.volume }
func (m fakeEnergyModel) AssocEnergy() float64  { return m.assoc }
func (m fakeEnergyModel) JoinRate() float64     { return m.joinRate }

// fakeMove is the contracts.Move fakeComplex threads from SelectMove to
// Apply: either a plain unimolecular rearrangement or a disassociation that
// splits the complex.
type fakeMove struct {
	label string
	split bool
}

func (m fakeMove) Kind() string { return m.label }

// fakeComplex is a hand-controlled contracts.Complex: every field a test
// cares about is a public, directly-settable value rather than something
// derived from a real structure, so tests can assert exact ensemble/
// dispatcher/join-flux behavior without depending on refcomplex's move
// enumeration.
type fakeComplex struct {
	ids       []int
	structure string
	names     string
	sequence  string
	flux      float64
	energy    float64
	strands   int
	exterior  contracts.ExteriorBases

	// splitInto, if non-nil, is returned by Apply on the next call and the
	// receiver's own fields are left unchanged (tests set them explicitly
	// if they want to model the "remaining" half of a disassociation).
	splitInto *fakeComplex

	// boundIDs lists strand ids CheckIDBound reports as true.
	boundIDs map[int]bool
}

func newFakeComplex(ids []int, structure string, flux float64, exterior contracts.ExteriorBases) *fakeComplex {
	return &fakeComplex{
		ids:       ids,
		structure: structure,
		names:     "fake",
		sequence:  "",
		flux:      flux,
		strands:   len(ids),
		exterior:  exterior,
		boundIDs:  map[int]bool{},
	}
}

func (c *fakeComplex) GenerateLoops(context.Context) {}
func (c *fakeComplex) DisplayMoves(context.Context)  {}
func (c *fakeComplex) TotalFlux() float64            { return c.flux }
func (c *fakeComplex) Energy() float64               { return c.energy }
func (c *fakeComplex) StrandCount() int              { return c.strands }
func (c *fakeComplex) ExteriorBases() contracts.ExteriorBases {
	return c.exterior
}
func (c *fakeComplex) Structure() string    { return c.structure }
func (c *fakeComplex) StrandNames() string  { return c.names }
func (c *fakeComplex) Sequence() string     { return c.sequence }
func (c *fakeComplex) CheckIDBound(id int) bool {
	return c.boundIDs[id]
}
func (c *fakeComplex) CheckIDList(ids []int, count int) bool {
	if count != len(c.ids) || len(ids) != count {
		return false
	}
	return circularEqualInts(c.ids, ids)
}

func (c *fakeComplex) SelectMove(budget float64) contracts.Move {
	if c.splitInto != nil {
		return fakeMove{label: "dissociate", split: true}
	}
	return fakeMove{label: "move", split: false}
}

func (c *fakeComplex) Apply(_ context.Context, m contracts.Move) (contracts.Complex, bool) {
	fm, _ := m.(fakeMove)
	if fm.split && c.splitInto != nil {
		child := c.splitInto
		c.splitInto = nil
		return child, true
	}
	return nil, false
}

func circularEqualInts(a, b []int) bool {
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
