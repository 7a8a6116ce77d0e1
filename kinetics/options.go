package kinetics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/dshills/strandkinetics/kinetics/emit"
	"github.com/dshills/strandkinetics/kinetics/store"
)

// Option configures a Run through NewRunWithOptions: a chainable
// functional option over an internal config struct, so callers only specify what they
// need to override.
type Option func(*runConfig) error

type runConfig struct {
	timeBudget     float64
	emitter        emit.Emitter
	metrics        *Metrics
	stopConditions []StopCondition
	store          store.Store
}

// WithTimeBudget sets the simulated-time budget after which a run not
// already Stopped transitions to Expired.
func WithTimeBudget(seconds float64) Option {
	return func(cfg *runConfig) error {
		cfg.timeBudget = seconds
		return nil
	}
}

// WithEmitter sets the Emitter a run reports step and outcome events to.
// Defaults to emit.NewNullEmitter() if never set.
func WithEmitter(emitter emit.Emitter) Option {
	return func(cfg *runConfig) error {
		cfg.emitter = emitter
		return nil
	}
}

// WithMetrics attaches a pre-built Metrics collector. Mutually exclusive
// with WithMetricsRegistry; the last one applied wins.
func WithMetrics(metrics *Metrics) Option {
	return func(cfg *runConfig) error {
		cfg.metrics = metrics
		return nil
	}
}

// WithMetricsRegistry builds a Metrics collector registered against
// registry. A nil registry uses prometheus.DefaultRegisterer.
func WithMetricsRegistry(registry prometheus.Registerer) Option {
	return func(cfg *runConfig) error {
		cfg.metrics = NewMetrics(registry)
		return nil
	}
}

// WithStore attaches a trajectory store: one row per accepted step plus the
// final outcome. Persistence is best-effort; see Run.Store.
func WithStore(s store.Store) Option {
	return func(cfg *runConfig) error {
		cfg.store = s
		return nil
	}
}

// WithStopCondition appends a tagged AND-list of predicates; a run halts
// (state Stopped) as soon as any configured stop condition matches.
func WithStopCondition(tag string, predicates *Predicate) Option {
	return func(cfg *runConfig) error {
		cfg.stopConditions = append(cfg.stopConditions, StopCondition{Tag: tag, Predicates: predicates})
		return nil
	}
}

// NewRunWithOptions builds a Run from functional options, applying them in
// order over a zero-value runConfig before constructing the Run.
func NewRunWithOptions(id string, en *Ensemble, dispatcher *Dispatcher, evaluator *Evaluator, opts ...Option) (*Run, error) {
	cfg := &runConfig{}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}
	run := NewRun(id, en, dispatcher, evaluator, cfg.stopConditions, cfg.timeBudget, cfg.emitter, cfg.metrics)
	run.Store = cfg.store
	return run, nil
}
