// Command kinsim runs a kinetic Monte Carlo simulation of nucleic-acid
// strand complexes over the reference move enumerator and energy model,
// reporting the trajectory through the configured emitter and store. It is
// a demonstration driver for package kinetics: real deployments supply
// their own energy model and complex implementation behind the contracts
// interfaces.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/dshills/strandkinetics/kinetics"
	"github.com/dshills/strandkinetics/kinetics/contracts/refcomplex"
	"github.com/dshills/strandkinetics/kinetics/emit"
	"github.com/dshills/strandkinetics/kinetics/store"
)

func main() {
	var (
		sequences  = flag.String("sequences", "GCATGCAAAAGCATGC", "comma-separated strand sequences (A/C/G/T)")
		stopTarget = flag.String("stop", "", "dot-bracket stop structure for strand 1 (empty: run to time budget)")
		stopKind   = flag.String("stop-kind", "exact", "stop predicate kind: exact, loose, count, disassoc, bound")
		tolerance  = flag.Int("tolerance", 0, "allowed disagreements for loose/count stop predicates")
		percent    = flag.Float64("percent", 0, "tolerance as a percentage of structure length (overrides -tolerance)")
		timeBudget = flag.Float64("time-budget", 1.0, "simulated-time budget in seconds")
		runID      = flag.String("run-id", "", "run identifier (empty: generate a UUID)")
		jsonLogs   = flag.Bool("json", false, "emit events as JSON lines instead of text")
		quiet      = flag.Bool("quiet", false, "suppress per-step events")
		otelSpans  = flag.Bool("otel", false, "emit events as OpenTelemetry spans")
		storeKind  = flag.String("store", "memory", "trajectory store: memory, sqlite, mysql")
		storeDSN   = flag.String("store-dsn", "kinsim.db", "SQLite path or MySQL DSN for -store")
		serveAddr  = flag.String("serve", "", "address for the monitoring HTTP server (empty: disabled)")
	)
	flag.Parse()

	id := *runID
	if id == "" {
		id = uuid.New().String()
	}

	st, err := openStore(*storeKind, *storeDSN)
	if err != nil {
		log.Fatalf("open store: %v", err)
	}
	defer st.Close()

	buffered := emit.NewBufferedEmitter()
	emitters := multiEmitter{buffered}
	if !*quiet {
		emitters = append(emitters, emit.NewLogEmitter(os.Stdout, *jsonLogs))
	}

	var hub *wsHub
	if *serveAddr != "" {
		hub = newWSHub()
		go hub.run()
		emitters = append(emitters, hubEmitter{hub})
	}

	if *otelSpans {
		tp := sdktrace.NewTracerProvider()
		otel.SetTracerProvider(tp)
		defer func() {
			_ = tp.Shutdown(context.Background())
		}()
		emitters = append(emitters, emit.NewOTelEmitter(otel.Tracer("kinsim")))
	}

	registry := prometheus.NewRegistry()
	metrics := kinetics.NewMetrics(registry)

	model := refcomplex.NewRefEnergyModel()
	en := kinetics.NewEnsemble(model)
	for i, seq := range strings.Split(*sequences, ",") {
		seq = strings.TrimSpace(seq)
		if seq == "" {
			continue
		}
		en.Add(refcomplex.NewSingleStrand(i+1, fmt.Sprintf("strand%d", i+1), seq))
	}
	if en.Len() == 0 {
		log.Fatal("no strand sequences supplied")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	en.InitializeAll(ctx)

	opts := []kinetics.Option{
		kinetics.WithTimeBudget(*timeBudget),
		kinetics.WithEmitter(emitters),
		kinetics.WithMetrics(metrics),
		kinetics.WithStore(st),
	}
	if *stopTarget != "" {
		pred, err := buildPredicate(*stopKind, *stopTarget, *tolerance, *percent)
		if err != nil {
			log.Fatalf("stop predicate: %v", err)
		}
		opts = append(opts, kinetics.WithStopCondition("stop", pred))
	}

	dispatcher := kinetics.NewDispatcher(refcomplex.Join)
	evaluator := kinetics.NewEvaluator(emitters)

	run, err := kinetics.NewRunWithOptions(id, en, dispatcher, evaluator, opts...)
	if err != nil {
		log.Fatalf("configure run: %v", err)
	}

	if *serveAddr != "" {
		srv := newMonitorServer(st, buffered, registry, hub, func() runStatus {
			return runStatus{
				RunID:        id,
				State:        run.State().String(),
				EnsembleSize: en.Len(),
			}
		})
		go func() {
			if err := srv.Run(*serveAddr); err != nil {
				log.Printf("monitor server: %v", err)
			}
		}()
	}

	outcome, err := run.Execute(ctx)
	if err != nil {
		log.Printf("run %s aborted: %v", id, err)
	}
	fmt.Printf("run %s: state=%s steps=%d simtime=%g", id, outcome.State, outcome.Steps, outcome.SimTime)
	if outcome.MatchedTag != "" {
		fmt.Printf(" matched=%s", outcome.MatchedTag)
	}
	fmt.Println()

	for _, s := range kinetics.DumpEntries(en) {
		fmt.Printf("  #%d %s %s %s E=%.4f\n", s.ID, s.Names, s.Sequence, s.Structure, s.Energy)
	}
	if outcome.State == kinetics.RunFailed {
		os.Exit(1)
	}
}

func openStore(kind, dsn string) (store.Store, error) {
	switch kind {
	case "memory":
		return store.NewMemStore(), nil
	case "sqlite":
		return store.NewSQLiteStore(dsn)
	case "mysql":
		return store.NewMySQLStore(dsn)
	default:
		return nil, fmt.Errorf("unknown store kind %q", kind)
	}
}

func buildPredicate(kind, target string, tolerance int, percent float64) (*kinetics.Predicate, error) {
	p := &kinetics.Predicate{StrandIDs: []int{1}, Target: target}
	if percent > 0 {
		tolerance = kinetics.PercentTolerance(percent, len(target))
	}
	p.Tolerance = tolerance

	switch kind {
	case "exact":
		p.Kind = kinetics.Exact
	case "loose":
		p.Kind = kinetics.Loose
	case "count":
		p.Kind = kinetics.Count
	case "disassoc":
		p.Kind = kinetics.Disassoc
	case "bound":
		p.Kind = kinetics.Bound
	default:
		return nil, fmt.Errorf("unknown stop predicate kind %q", kind)
	}
	return p, nil
}

// multiEmitter fans every event out to each member emitter, in order.
type multiEmitter []emit.Emitter

func (m multiEmitter) Emit(event emit.Event) {
	for _, e := range m {
		e.Emit(event)
	}
}

func (m multiEmitter) EmitBatch(ctx context.Context, events []emit.Event) error {
	for _, e := range m {
		if err := e.EmitBatch(ctx, events); err != nil {
			return err
		}
	}
	return nil
}

func (m multiEmitter) Flush(ctx context.Context) error {
	for _, e := range m {
		if err := e.Flush(ctx); err != nil {
			return err
		}
	}
	return nil
}
