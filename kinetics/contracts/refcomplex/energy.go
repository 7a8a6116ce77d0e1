package refcomplex

// RefEnergyModel is a reference contracts.EnergyModel with fixed,
// configurable corrections and join rate, standing in for a real
// Boltzmann rate evaluation.
type RefEnergyModel struct {
	Volume     float64
	Assoc      float64
	JoinRateHz float64
}

// NewRefEnergyModel builds a RefEnergyModel with the conventional small
// negative volume/association corrections and a unit join rate.
func NewRefEnergyModel() RefEnergyModel {
	return RefEnergyModel{Volume: -0.1, Assoc: -0.2, JoinRateHz: 1.0}
}

// VolumeEnergy returns the per-excess-strand volume correction.
func (m RefEnergyModel) VolumeEnergy() float64 { return m.Volume }

// AssocEnergy returns the per-excess-strand association correction.
func (m RefEnergyModel) AssocEnergy() float64 { return m.Assoc }

// JoinRate returns k_join, the scalar multiplying the join engine's
// combinatorial count.
func (m RefEnergyModel) JoinRate() float64 { return m.JoinRateHz }
