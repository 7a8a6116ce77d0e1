package kinetics

import (
	"context"
	"strings"
	"testing"

	"github.com/dshills/strandkinetics/kinetics/contracts"
)

func TestPercentTolerance_CeilsRatherThanFloors(t *testing.T) {
	cases := []struct {
		percent float64
		length  int
		want    int
	}{
		{10, 10, 1},   // exact: 1.0 -> 1
		{15, 10, 2},   // 1.5 -> ceil 2, not floor 1
		{1, 100, 1},   // 1.0 -> 1
		{0.1, 10, 1},  // 0.01 -> ceil 1
		{0, 10, 0},    // zero percent
		{50, 0, 0},    // zero length
		{-5, 10, 0},   // negative percent clamps to 0
		{100, 10, 10}, // full tolerance
	}
	for _, c := range cases {
		if got := PercentTolerance(c.percent, c.length); got != c.want {
			t.Errorf("PercentTolerance(%v, %d) = %d, want %d", c.percent, c.length, got, c.want)
		}
	}
}

func TestFormatComplex_AppliesSelectedCorrections(t *testing.T) {
	model := fakeEnergyModel{volume: -0.1, assoc: -0.2}
	// Two strands, so one excess strand carries the corrections: the cached
	// energy is -2.0 + (-0.1 + -0.2)*1 = -2.3.
	fc := newFakeComplex([]int{1, 2}, "(.).", 1.0, contracts.ExteriorBases{})
	fc.energy = -2.0
	fc.names = "strandA+strandB"
	fc.sequence = "GCAT"
	en := NewEnsemble(model)
	e := en.Add(fc)
	en.Initialize(context.Background(), e)

	cached := FormatComplex(e, model, 0)
	if !strings.Contains(cached, "E=-2.3000") {
		t.Errorf("uncorrected format = %q, want the cached energy -2.3000", cached)
	}

	volumeOnly := FormatComplex(e, model, ReportVolumeCorrection)
	if !strings.Contains(volumeOnly, "E=-2.2000") {
		t.Errorf("volume-corrected format = %q, want energy -2.2000 (-2.3 - (-0.1))", volumeOnly)
	}

	assocOnly := FormatComplex(e, model, ReportAssocCorrection)
	if !strings.Contains(assocOnly, "E=-2.1000") {
		t.Errorf("assoc-corrected format = %q, want energy -2.1000 (-2.3 - (-0.2))", assocOnly)
	}

	both := FormatComplex(e, model, ReportVolumeCorrection|ReportAssocCorrection)
	if !strings.Contains(both, "E=-2.0000") {
		t.Errorf("fully-corrected format = %q, want the raw loop energy -2.0000", both)
	}

	if !strings.Contains(cached, "strandA+strandB") || !strings.Contains(cached, "GCAT") || !strings.Contains(cached, "(.).") {
		t.Errorf("format should include names, sequence, and structure: %q", cached)
	}
}

func TestDumpEntries_WalksInEnsembleOrder(t *testing.T) {
	en := NewEnsemble(fakeEnergyModel{})
	first := en.Add(newFakeComplex([]int{1}, "...", 1, contracts.ExteriorBases{}))
	second := en.Add(newFakeComplex([]int{2}, "()", 1, contracts.ExteriorBases{}))
	en.Initialize(context.Background(), first)
	en.Initialize(context.Background(), second)

	summaries := DumpEntries(en)
	if len(summaries) != 2 {
		t.Fatalf("len(summaries) = %d, want 2", len(summaries))
	}
	// Insertion-reverse order: second was added last, so it walks first.
	if summaries[0].ID != second.ID || summaries[1].ID != first.ID {
		t.Errorf("DumpEntries order = [%d,%d], want [%d,%d]", summaries[0].ID, summaries[1].ID, second.ID, first.ID)
	}
	if summaries[0].Structure != "()" {
		t.Errorf("summaries[0].Structure = %q, want %q", summaries[0].Structure, "()")
	}
}

func TestDumpEntries_EmptyEnsemble(t *testing.T) {
	en := NewEnsemble(fakeEnergyModel{})
	if got := DumpEntries(en); len(got) != 0 {
		t.Errorf("DumpEntries on empty ensemble = %v, want empty slice", got)
	}
}
