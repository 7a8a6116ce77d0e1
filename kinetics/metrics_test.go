package kinetics

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dshills/strandkinetics/kinetics/contracts"
)

// gatherNames collects the metric family names currently registered in reg.
func gatherNames(t *testing.T, reg *prometheus.Registry) map[string]bool {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	names := make(map[string]bool, len(families))
	for _, f := range families {
		names[f.GetName()] = true
	}
	return names
}

func TestMetrics_RecordsAllSeries(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	en := NewEnsemble(fakeEnergyModel{joinRate: 1})
	entry := en.Add(newFakeComplex([]int{1}, "...", 2.0, contracts.ExteriorBases{}))
	en.InitializeAll(context.Background())

	m.ObserveStep("r1", en, StepResult{Joined: true, Entry: entry})
	m.ObserveStepLatencyMs("r1", 0.5)
	m.ObserveStopMatch("r1", "folded")

	names := gatherNames(t, reg)
	for _, want := range []string{
		"strandkinetics_steps_total",
		"strandkinetics_joins_total",
		"strandkinetics_ensemble_size",
		"strandkinetics_join_flux_ratio",
		"strandkinetics_step_latency_ms",
		"strandkinetics_stop_predicate_matches_total",
	} {
		if !names[want] {
			t.Errorf("metric family %q not recorded; got %v", want, names)
		}
	}
}

func TestMetrics_DisableSuppressesRecording(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	m.Disable()

	en := NewEnsemble(fakeEnergyModel{joinRate: 1})
	en.Add(newFakeComplex([]int{1}, "...", 2.0, contracts.ExteriorBases{}))
	en.InitializeAll(context.Background())

	m.ObserveStep("r1", en, StepResult{})
	m.ObserveStepLatencyMs("r1", 0.5)
	m.ObserveStopMatch("r1", "folded")

	if names := gatherNames(t, reg); len(names) != 0 {
		t.Errorf("disabled metrics still recorded series: %v", names)
	}
}

// TestRun_RecordsStepLatency drives a short run with a metrics collector
// attached and checks that the per-step latency histogram gains samples.
func TestRun_RecordsStepLatency(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	en := NewEnsemble(fakeEnergyModel{joinRate: 1})
	en.Add(newFakeComplex([]int{1}, "()", 1.0, contracts.ExteriorBases{}))
	en.InitializeAll(context.Background())

	run, err := NewRunWithOptions("run-latency", en, NewDispatcher(fakeJoin), NewEvaluator(nil),
		WithTimeBudget(1e9),
		WithStopCondition("folded", singlePredicate([]int{1}, Exact, "()", 0)),
		WithMetrics(m),
	)
	if err != nil {
		t.Fatalf("NewRunWithOptions: %v", err)
	}
	outcome, err := run.Execute(context.Background())
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if outcome.Steps < 1 {
		t.Fatal("expected at least one step")
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	for _, f := range families {
		if f.GetName() != "strandkinetics_step_latency_ms" {
			continue
		}
		total := uint64(0)
		for _, metric := range f.GetMetric() {
			total += metric.GetHistogram().GetSampleCount()
		}
		if total != uint64(outcome.Steps) {
			t.Errorf("step_latency_ms sample count = %d, want %d (one per step)", total, outcome.Steps)
		}
		return
	}
	t.Error("step_latency_ms histogram not found in registry")
}
