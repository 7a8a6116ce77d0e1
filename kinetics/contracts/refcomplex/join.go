package refcomplex

import (
	"context"

	"github.com/dshills/strandkinetics/kinetics/contracts"
)

// nthUnpairedOfType returns the absolute position of the offset-th (0-based,
// position order) currently-unpaired base of type b in c.
func (c *RefComplex) nthUnpairedOfType(b contracts.Base, offset int) int {
	for i, base := range c.base {
		if c.paired[i] >= 0 || base != b {
			continue
		}
		if offset == 0 {
			return i
		}
		offset--
	}
	return -1
}

// Join is the reference contracts.PerformComplexJoin primitive: it merges
// complexes[1] into complexes[0] in place, binding the base selected by
// (types[1], index[0]) on complexes[0] to the base selected by (types[0],
// index[1]) on complexes[1], and returns complexes[1] as the complex to
// delete from the ensemble.
//
// This ordering (first partner keyed by types[1]/index[0], second partner
// keyed by types[0]/index[1]) mirrors exactly how kinetics.JoinFluxEngine's
// Resolve assembles the pair: the first entry in list order contributes the
// channel's y-type base, the later partner contributes the x-type base.
func Join(_ context.Context, complexes [2]contracts.Complex, types contracts.JoinTypes, index contracts.JoinIndex) contracts.Complex {
	first := complexes[0].(*RefComplex)
	second := complexes[1].(*RefComplex)

	firstPos := first.nthUnpairedOfType(types[1], index[0])
	secondPos := second.nthUnpairedOfType(types[0], index[1])
	offset := len(first.base)

	mergedPaired := make([]int, offset+len(second.base))
	copy(mergedPaired, first.paired)
	for i, p := range second.paired {
		if p < 0 {
			mergedPaired[offset+i] = -1
		} else {
			mergedPaired[offset+i] = offset + p
		}
	}
	mergedPaired[firstPos] = offset + secondPos
	mergedPaired[offset+secondPos] = firstPos

	first.strands = append(first.strands, second.strands...)
	first.base = nil
	first.strand = nil
	first.paired = mergedPaired
	first.rebuildIndex()

	return second
}
