package kinetics

import "github.com/dshills/strandkinetics/kinetics/contracts"

// JoinFluxEngine computes the aggregate bimolecular join rate over an
// ordered set of entries and, given a uniform deviate
// restricted to that rate, resolves it to a concrete join.
//
// The engine is stateless: every method takes the current entry order as an
// argument and recomputes from scratch. This is deliberate:
// floating-point addition order is load-bearing for bit-reproducible
// trajectories, so nothing here may be allowed to reorder or cache across
// calls in a way that could skew that order.
type JoinFluxEngine struct{}

// moveCount computes Σ over ordered pairs of distinct entries of the
// complementary-base join count, using the "subtract-self-first" two-pass
// algorithm. It returns the combinatorial move count and,
// for free, the total exterior-base tally (useful to resolve).
func (JoinFluxEngine) moveCount(entries []*Entry) (count float64, total contracts.ExteriorBases) {
	for _, e := range entries {
		total = total.Add(e.ExteriorBases())
	}

	remaining := total
	for _, e := range entries {
		ex := e.ExteriorBases()
		// Subtract this entry's own contribution first, so `remaining` holds
		// only the contribution of strictly later entries in the list.
		remaining = remaining.Sub(ex)

		count += float64(remaining.A)*float64(ex.T) +
			float64(remaining.T)*float64(ex.A) +
			float64(remaining.G)*float64(ex.C) +
			float64(remaining.C)*float64(ex.G)
	}

	return count, total
}

// Flux returns the aggregate join rate over entries, weighted by the energy
// model's JoinRate. The result
// is identically zero when fewer than two entries are live.
func (j JoinFluxEngine) Flux(entries []*Entry, model contracts.EnergyModel) float64 {
	if len(entries) <= 1 {
		return 0
	}
	count, _ := j.moveCount(entries)
	return count * model.JoinRate()
}

// joinResolution is the fully-specified outcome of resolving an integer
// join budget to a concrete pair of bases on a concrete pair of entries.
type joinResolution struct {
	first, second *Entry
	types         contracts.JoinTypes
	index         contracts.JoinIndex
}

// channel enumerates one of the four complementary base-pairing channels
// tested, in order, by Resolve.
type channel struct {
	x, y contracts.Base
}

var joinChannels = [4]channel{
	{contracts.BaseA, contracts.BaseT},
	{contracts.BaseT, contracts.BaseA},
	{contracts.BaseG, contracts.BaseC},
	{contracts.BaseC, contracts.BaseG},
}

func fieldOf(e contracts.ExteriorBases, b contracts.Base) int {
	switch b {
	case contracts.BaseA:
		return e.A
	case contracts.BaseC:
		return e.C
	case contracts.BaseG:
		return e.G
	case contracts.BaseT:
		return e.T
	default:
		return 0
	}
}

// Resolve deterministically maps an integer budget intChoice, drawn from
// [0, moveCount), to a concrete (entry, base-offset, entry, base-offset)
// join, by repeating the Pass-2 iteration of the flux count and testing the
// four channels in the fixed order. It returns ErrConsistencyViolation
// if intChoice does not fall within any window, which can only happen if
// the caller's budget was not actually drawn from [0, moveCount).
func (j JoinFluxEngine) Resolve(entries []*Entry, intChoice int) (joinResolution, error) {
	_, total := j.moveCount(entries)
	remaining := total

	for i, e := range entries {
		ex := e.ExteriorBases()
		remaining = remaining.Sub(ex)

		for _, ch := range joinChannels {
			window := fieldOf(remaining, ch.x) * fieldOf(ex, ch.y)
			if intChoice < window {
				res, err := j.resolvePartner(entries[i+1:], e, ex, ch, intChoice)
				if err != nil {
					return joinResolution{}, err
				}
				return res, nil
			}
			intChoice -= window
		}
	}

	return joinResolution{}, ErrConsistencyViolation
}

// resolvePartner walks the later entries (entries strictly after the first
// partner in list order) looking for the one whose sub-window contains
// intChoice, then decomposes the remainder into the two base offsets:
// index[0] selects the first entry's y-type base, index[1] the partner's
// x-type base.
func (j JoinFluxEngine) resolvePartner(later []*Entry, first *Entry, firstEx contracts.ExteriorBases, ch channel, intChoice int) (joinResolution, error) {
	firstY := fieldOf(firstEx, ch.y)
	for _, partner := range later {
		partnerEx := partner.ExteriorBases()
		partnerX := fieldOf(partnerEx, ch.x)
		window := partnerX * firstY
		if intChoice < window {
			idx0 := intChoice / partnerX
			idx1 := intChoice - idx0*partnerX
			return joinResolution{
				first:  first,
				second: partner,
				types:  contracts.JoinTypes{ch.x, ch.y},
				index:  contracts.JoinIndex{idx0, idx1},
			}, nil
		}
		intChoice -= window
	}
	return joinResolution{}, ErrConsistencyViolation
}
