package kinetics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics collects Prometheus-compatible counters, gauges, and histograms
// for a running simulation. All
// metrics are namespaced "strandkinetics_".
//
//  1. ensemble_size (gauge): live entry count, labeled run_id.
//  2. join_flux_ratio (gauge): join_flux / total_flux at the last step,
//     labeled run_id. Zero when total_flux is zero.
//  3. steps_total (counter): cumulative dispatcher steps, labeled run_id.
//  4. joins_total (counter): cumulative join events, labeled run_id.
//  5. stop_predicate_matches_total (counter): stop conditions matched,
//     labeled run_id, tag.
//  6. step_latency_ms (histogram): wall-clock time to compute one step,
//     labeled run_id.
type Metrics struct {
	ensembleSize         *prometheus.GaugeVec
	joinFluxRatio        *prometheus.GaugeVec
	stepsTotal           *prometheus.CounterVec
	joinsTotal           *prometheus.CounterVec
	stopPredicateMatches *prometheus.CounterVec
	stepLatency          *prometheus.HistogramVec

	mu      sync.RWMutex
	enabled bool
}

// NewMetrics creates and registers a Metrics collector against registry. A
// nil registry uses prometheus.DefaultRegisterer.
func NewMetrics(registry prometheus.Registerer) *Metrics {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}
	factory := promauto.With(registry)

	return &Metrics{
		enabled: true,
		ensembleSize: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "strandkinetics",
			Name:      "ensemble_size",
			Help:      "Current number of live entries in the ensemble",
		}, []string{"run_id"}),
		joinFluxRatio: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "strandkinetics",
			Name:      "join_flux_ratio",
			Help:      "Join flux as a fraction of total flux at the last step",
		}, []string{"run_id"}),
		stepsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "strandkinetics",
			Name:      "steps_total",
			Help:      "Cumulative count of dispatcher steps",
		}, []string{"run_id"}),
		joinsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "strandkinetics",
			Name:      "joins_total",
			Help:      "Cumulative count of bimolecular join events",
		}, []string{"run_id"}),
		stopPredicateMatches: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "strandkinetics",
			Name:      "stop_predicate_matches_total",
			Help:      "Stop conditions matched, by tag",
		}, []string{"run_id", "tag"}),
		stepLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "strandkinetics",
			Name:      "step_latency_ms",
			Help:      "Wall-clock duration of one dispatcher step in milliseconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 50, 100},
		}, []string{"run_id"}),
	}
}

// ObserveStep updates ensemble_size, join_flux_ratio, and steps_total (and
// joins_total, if res was a join) after a dispatcher step. Called from
// Run.Execute once per step; runID is read from en's last Step call
// indirectly via the caller, so ObserveStep takes it explicitly instead to
// avoid a dependency from Ensemble back into Metrics.
func (m *Metrics) ObserveStep(runID string, en *Ensemble, res StepResult) {
	if !m.enabled {
		return
	}
	m.stepsTotal.WithLabelValues(runID).Inc()
	if res.Joined {
		m.joinsTotal.WithLabelValues(runID).Inc()
	}

	total := en.TotalFlux()
	m.ensembleSize.WithLabelValues(runID).Set(float64(en.Len()))
	if total > 0 {
		m.joinFluxRatio.WithLabelValues(runID).Set(en.JoinFlux() / total)
	} else {
		m.joinFluxRatio.WithLabelValues(runID).Set(0)
	}
}

// ObserveStopMatch records a stop condition match for tag.
func (m *Metrics) ObserveStopMatch(runID, tag string) {
	if !m.enabled {
		return
	}
	m.stopPredicateMatches.WithLabelValues(runID, tag).Inc()
}

// ObserveStepLatencyMs records how long one dispatcher step took to compute.
func (m *Metrics) ObserveStepLatencyMs(runID string, ms float64) {
	if !m.enabled {
		return
	}
	m.stepLatency.WithLabelValues(runID).Observe(ms)
}

// Disable stops metric recording; useful for tests that don't want to
// pollute a shared registry's series.
func (m *Metrics) Disable() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.enabled = false
}

// Enable re-enables metric recording after Disable.
func (m *Metrics) Enable() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.enabled = true
}
