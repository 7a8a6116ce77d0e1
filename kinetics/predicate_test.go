package kinetics

import (
	"context"
	"testing"

	"github.com/dshills/strandkinetics/kinetics/contracts"
	"github.com/dshills/strandkinetics/kinetics/emit"
)

// captureEmitter records every event it receives, for tests that assert on
// the evaluator's diagnostic channel.
type captureEmitter struct {
	events []emit.Event
}

func (c *captureEmitter) Emit(e emit.Event) { c.events = append(c.events, e) }
func (c *captureEmitter) EmitBatch(_ context.Context, es []emit.Event) error {
	c.events = append(c.events, es...)
	return nil
}
func (c *captureEmitter) Flush(context.Context) error { return nil }

func singlePredicate(ids []int, kind PredicateKind, target string, tolerance int) *Predicate {
	return &Predicate{StrandIDs: ids, Kind: kind, Target: target, Tolerance: tolerance}
}

func buildEnsemble(t *testing.T, complexes ...*fakeComplex) *Ensemble {
	t.Helper()
	en := NewEnsemble(fakeEnergyModel{})
	for _, c := range complexes {
		en.Add(c)
	}
	en.InitializeAll(context.Background())
	return en
}

func TestEvaluator_NilPredicateMatchesVacuously(t *testing.T) {
	en := buildEnsemble(t, newFakeComplex([]int{1}, "...", 1, contracts.ExteriorBases{}))
	ev := NewEvaluator(nil)
	if !ev.Matches(en, nil) {
		t.Error("nil predicate list should match vacuously")
	}
}

func TestEvaluator_Exact(t *testing.T) {
	c := newFakeComplex([]int{1}, "(())", 1, contracts.ExteriorBases{})
	en := buildEnsemble(t, c)
	ev := NewEvaluator(nil)

	if !ev.Matches(en, singlePredicate([]int{1}, Exact, "(())", 0)) {
		t.Error("Exact with identical structure should match")
	}
	if ev.Matches(en, singlePredicate([]int{1}, Exact, "()()", 0)) {
		t.Error("Exact with a different structure should not match")
	}
}

func TestEvaluator_Disassoc(t *testing.T) {
	c := newFakeComplex([]int{1}, "((()))", 0, contracts.ExteriorBases{})
	en := buildEnsemble(t, c)
	ev := NewEvaluator(nil)

	if !ev.Matches(en, singlePredicate([]int{1}, Disassoc, "", 0)) {
		t.Error("Disassoc should match on strand-id membership regardless of structure")
	}
	if ev.Matches(en, singlePredicate([]int{2}, Disassoc, "", 0)) {
		t.Error("Disassoc should not match a complex without the strand id")
	}
}

// TestEvaluator_Loose pins the loose-distance example: our="(())", target="()()",
// tolerance=2. disagreementDistance returns exactly 2, so a tolerance of 2
// matches and a tolerance of 1 does not.
func TestEvaluator_Loose(t *testing.T) {
	c := newFakeComplex([]int{1}, "(())", 0, contracts.ExteriorBases{})
	en := buildEnsemble(t, c)
	ev := NewEvaluator(nil)

	if !ev.Matches(en, singlePredicate([]int{1}, Loose, "()()", 2)) {
		t.Error("Loose with tolerance=2 should match (())/()() (distance 2)")
	}
	if ev.Matches(en, singlePredicate([]int{1}, Loose, "()()", 1)) {
		t.Error("Loose with tolerance=1 should not match (())/()() (distance 2)")
	}
}

func TestEvaluator_LooseWildcard(t *testing.T) {
	c := newFakeComplex([]int{1}, "(.)", 0, contracts.ExteriorBases{})
	en := buildEnsemble(t, c)
	ev := NewEvaluator(nil)

	if !ev.Matches(en, singlePredicate([]int{1}, Loose, "(*)", 0)) {
		t.Error("'*' in a Loose target should match any character at that position with zero tolerance consumed")
	}
}

// TestEvaluator_LooseIsSupersetOfExact checks the monotonicity property:
// any structure Exact matches, Loose with tolerance 0 and
// an identical (wildcard-free) target also matches.
func TestEvaluator_LooseIsSupersetOfExact(t *testing.T) {
	structures := []string{"....", "(())", "()()", "(.).", "((()))"}
	for _, s := range structures {
		c := newFakeComplex([]int{1}, s, 0, contracts.ExteriorBases{})
		en := buildEnsemble(t, c)
		ev := NewEvaluator(nil)
		exact := ev.Matches(en, singlePredicate([]int{1}, Exact, s, 0))
		loose := ev.Matches(en, singlePredicate([]int{1}, Loose, s, 0))
		if exact && !loose {
			t.Errorf("structure %q: Exact matched but Loose(tolerance=0) did not", s)
		}
	}
}

// TestEvaluator_Count behaves like Loose but scores every character,
// including positions a Loose caller might otherwise wildcard away.
func TestEvaluator_Count(t *testing.T) {
	c := newFakeComplex([]int{1}, "((..))", 0, contracts.ExteriorBases{})
	en := buildEnsemble(t, c)
	ev := NewEvaluator(nil)

	if !ev.Matches(en, singlePredicate([]int{1}, Count, "((..))", 0)) {
		t.Error("Count with an identical target and zero tolerance should match")
	}
	if ev.Matches(en, singlePredicate([]int{1}, Count, "(())", 0)) {
		t.Error("Count with a mismatched-length target must fail closed, not match")
	}
}

func TestEvaluator_Bound(t *testing.T) {
	c := newFakeComplex([]int{1, 2}, "()", 0, contracts.ExteriorBases{})
	c.boundIDs[1] = true
	en := buildEnsemble(t, c)
	ev := NewEvaluator(nil)

	if !ev.Matches(en, singlePredicate([]int{1}, Bound, "", 0)) {
		t.Error("Bound should match a strand id reported bound by some live complex")
	}
	if ev.Matches(en, singlePredicate([]int{2}, Bound, "", 0)) {
		t.Error("Bound should not match a strand id not reported bound")
	}
}

// TestEvaluator_MultiBoundPredicateReportsDiagnostic checks that a Bound
// predicate heading a list that holds another predicate is a
// configuration error reported on the diagnostic channel, degrading to
// a false match rather than a Go error return.
func TestEvaluator_MultiBoundPredicateReportsDiagnostic(t *testing.T) {
	capture := &captureEmitter{}
	ev := NewEvaluator(capture)
	c := newFakeComplex([]int{1}, "()", 0, contracts.ExteriorBases{})
	c.boundIDs[1] = true
	en := buildEnsemble(t, c)

	bound := singlePredicate([]int{1}, Bound, "", 0)
	bound.Next = singlePredicate([]int{1}, Exact, "()", 0)

	if ev.Matches(en, bound) {
		t.Error("a Bound predicate combined with another predicate must not match")
	}
	if len(capture.events) == 0 {
		t.Fatal("expected a diagnostic event for the multi-Bound configuration error")
	}
}

// TestEvaluator_PredicateListLongerThanEnsemble checks that
// a stop condition naming more predicates than there are live entries fails
// immediately, even though here the one live complex satisfies both
// predicates on its own.
func TestEvaluator_PredicateListLongerThanEnsemble(t *testing.T) {
	c := newFakeComplex([]int{1}, "()", 0, contracts.ExteriorBases{})
	en := buildEnsemble(t, c)
	ev := NewEvaluator(nil)

	p1 := singlePredicate([]int{1}, Exact, "()", 0)
	p1.Next = singlePredicate([]int{1}, Exact, "()", 0)

	if ev.Matches(en, p1) {
		t.Error("a predicate list longer than the live ensemble must never match")
	}
}

func TestEvaluator_ZeroLengthTarget(t *testing.T) {
	c := newFakeComplex([]int{1}, "", 0, contracts.ExteriorBases{})
	en := buildEnsemble(t, c)
	ev := NewEvaluator(nil)

	if !ev.Matches(en, singlePredicate([]int{1}, Exact, "", 0)) {
		t.Error("zero-length structure and target should match under Exact")
	}
	if !ev.Matches(en, singlePredicate([]int{1}, Loose, "", 0)) {
		t.Error("zero-length structure and target should match under Loose")
	}
}

func TestEvaluator_LooseWildcardEverywhere(t *testing.T) {
	c := newFakeComplex([]int{1}, "(())()..", 0, contracts.ExteriorBases{})
	en := buildEnsemble(t, c)
	ev := NewEvaluator(nil)

	if !ev.Matches(en, singlePredicate([]int{1}, Loose, "********", 0)) {
		t.Error("an all-wildcard Loose target should match any structure of the same length with zero tolerance")
	}
}

// TestEvaluator_CircularRotationInvariance checks that predicate matching
// compares strand-id lists via CheckIDList, which accepts any circular
// rotation of the complex's list, not only its exact positional order.
func TestEvaluator_CircularRotationInvariance(t *testing.T) {
	c := newFakeComplex([]int{1, 2, 3}, "(())", 0, contracts.ExteriorBases{})
	en := buildEnsemble(t, c)
	ev := NewEvaluator(nil)

	if !ev.Matches(en, singlePredicate([]int{2, 3, 1}, Exact, "(())", 0)) {
		t.Error("predicate strand ids in rotated order should still match the same complex")
	}
}

func TestDisagreementDistance_ScenarioFive(t *testing.T) {
	d, ok := disagreementDistance("(())", "()()", 2)
	if !ok || d != 2 {
		t.Errorf("disagreementDistance((())), ()()) = (%d,%v), want (2,true)", d, ok)
	}
	if _, ok := disagreementDistance("(())", "()()", 1); ok {
		t.Error("disagreementDistance should report not-ok once d exceeds tolerance")
	}
}

func TestDisagreementDistance_LengthMismatchFailsClosed(t *testing.T) {
	if _, ok := disagreementDistance("(())", "()", 10); ok {
		t.Error("mismatched-length inputs must fail closed regardless of tolerance")
	}
}

// TestEvaluator_MismatchedLengthReportsDiagnostic checks that a Loose or
// Count target whose length differs from the candidate structure fails
// closed and reports the bad input on the diagnostic channel.
func TestEvaluator_MismatchedLengthReportsDiagnostic(t *testing.T) {
	capture := &captureEmitter{}
	ev := NewEvaluator(capture)
	c := newFakeComplex([]int{1}, "(())", 0, contracts.ExteriorBases{})
	en := buildEnsemble(t, c)

	if ev.Matches(en, singlePredicate([]int{1}, Loose, "()", 10)) {
		t.Error("mismatched-length Loose target must not match, regardless of tolerance")
	}
	if len(capture.events) == 0 {
		t.Fatal("expected a diagnostic event for the mismatched-length target")
	}
	if capture.events[0].Msg != "mismatched_structure_length" {
		t.Errorf("event Msg = %q, want mismatched_structure_length", capture.events[0].Msg)
	}
}
