package kinetics

import (
	"fmt"
	"math"
	"strings"
)

// Energy reporting flag bits: which corrections to subtract
// from an entry's cached energy before display.
const (
	ReportVolumeCorrection = 1 << iota
	ReportAssocCorrection
)

// EntrySummary is one line of the diagnostic per-entry dump: id, names,
// sequence, structure, and energy.
type EntrySummary struct {
	ID        int
	Names     string
	Sequence  string
	Structure string
	Energy    float64
}

// DumpEntries returns one EntrySummary per live entry, in ensemble walk
// order, each carrying the entry's cached energy (the convention already
// applied when the entry was last refreshed).
func DumpEntries(en *Ensemble) []EntrySummary {
	entries := en.Iterate()
	out := make([]EntrySummary, 0, len(entries))
	for _, e := range entries {
		out = append(out, EntrySummary{
			ID:        e.ID,
			Names:     e.Complex.StrandNames(),
			Sequence:  e.Complex.Sequence(),
			Structure: e.Complex.Structure(),
			Energy:    e.Energy,
		})
	}
	return out
}

// energyReportModel is the subset of contracts.EnergyModel FormatComplex
// needs to apply either correction bit independently of the other.
type energyReportModel interface {
	VolumeEnergy() float64
	AssocEnergy() float64
}

// FormatComplex pretty-prints one entry using the energy reporting flag to
// select among three conventions: the cached energy as stored, minus the
// volume correction only, or minus both volume and association. Each
// correction is removed at the same per-excess-strand scale Refresh applied
// it, so the fully-subtracted form equals the complex's raw loop energy.
// flag's bits are ReportVolumeCorrection and ReportAssocCorrection.
func FormatComplex(e *Entry, model energyReportModel, flag int) string {
	energy := e.Energy
	excess := float64(e.Complex.StrandCount() - 1)
	if flag&ReportVolumeCorrection != 0 {
		energy -= model.VolumeEnergy() * excess
	}
	if flag&ReportAssocCorrection != 0 {
		energy -= model.AssocEnergy() * excess
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "#%d %s\n", e.ID, e.Complex.StrandNames())
	fmt.Fprintf(&sb, "%s\n", e.Complex.Sequence())
	fmt.Fprintf(&sb, "%s  E=%.4f\n", e.Complex.Structure(), energy)
	return sb.String()
}

// PercentTolerance converts a percentage tolerance (0-100) into an integer
// disagreement count against a structure of the given length, for driver
// layers that accept percentage tolerances and must convert them to
// integer disagreements before handing a predicate to the evaluator.
// Rounds up (ceiling), so a requested percentage never converts to a
// stricter (smaller) tolerance than the caller asked for.
func PercentTolerance(percent float64, length int) int {
	if percent <= 0 || length <= 0 {
		return 0
	}
	return int(math.Ceil(percent / 100 * float64(length)))
}
