package kinetics

import "github.com/dshills/strandkinetics/kinetics/contracts"

// Entry wraps one live complex with the caches the rest of the package
// depends on: a cached scalar energy (raw energy plus volume/association
// corrections) and a cached total unimolecular flux. Entries are
// linked into an intrusive singly-linked list owned and spliced by Ensemble;
// callers should treat ordering as package-private.
type Entry struct {
	// ID is assigned once, on insertion, and never reused or mutated
	// afterward.
	ID int

	// Complex is the owned structure. Freeing the Entry frees the Complex,
	// except for the survivor of a join, which is re-homed onto the
	// surviving entry.
	Complex contracts.Complex

	// Energy is the cached scalar energy including volume/association
	// corrections. Valid only after Refresh.
	Energy float64

	// Flux is the cached total unimolecular flux out of Complex. Valid only
	// after Refresh.
	Flux float64

	// exterior is the cached exterior-base tally, refreshed alongside
	// Energy/Flux so the join flux engine never has to call back into the
	// complex mid-pass.
	exterior contracts.ExteriorBases

	next *Entry
}

// Next returns the next entry in the manager's intrusive list, or nil at the
// tail. Exposed for read-only iteration; see Ensemble.Iterate.
func (e *Entry) Next() *Entry {
	return e.next
}

// ExteriorBases returns the cached exterior-base tally, valid after Refresh.
func (e *Entry) ExteriorBases() contracts.ExteriorBases {
	return e.exterior
}

// refresh recomputes Energy, Flux, and the cached exterior-base tally from
// the entry's complex and the supplied energy model, applying the volume and
// association correction:
//
//	E_cached = E_raw + (vol + assoc) * (strandCount - 1)
//
// refresh is idempotent: calling it twice with no intervening move on the
// same complex yields byte-identical caches, because it is a pure function
// of the complex's current state and the energy model's (also assumed
// stable) corrections.
func (e *Entry) refresh(model contracts.EnergyModel) {
	strandCount := e.Complex.StrandCount()
	correction := (model.VolumeEnergy() + model.AssocEnergy()) * float64(strandCount-1)
	e.Energy = e.Complex.Energy() + correction
	e.Flux = e.Complex.TotalFlux()
	e.exterior = e.Complex.ExteriorBases()
}
