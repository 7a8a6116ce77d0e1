package kinetics

import (
	"strings"

	"github.com/dshills/strandkinetics/kinetics/contracts"
	"github.com/dshills/strandkinetics/kinetics/emit"
)

// PredicateKind selects how a Predicate's target is compared against a
// candidate complex's structure.
type PredicateKind int

const (
	// Exact requires an identical dot-bracket structure (encoded upstream
	// as STRUCTURE).
	Exact PredicateKind = iota
	// Disassoc matches on strand-id membership alone, ignoring structure
	// (encoded upstream as DISASSOC).
	Disassoc
	// Loose allows up to Tolerance structural disagreements and permits
	// '*' wildcards in Target (encoded upstream as LOOSE_STRUCTURE).
	Loose
	// Count is Loose without wildcards: every target character is scored
	// (encoded upstream as PERCENT_OR_COUNT_STRUCTURE).
	Count
	// Bound requires a single strand id (from the one permitted predicate
	// of this kind) to currently be base-paired in some live complex
	// (encoded upstream as BOUND).
	Bound
)

func (k PredicateKind) String() string {
	switch k {
	case Exact:
		return "Exact"
	case Disassoc:
		return "Disassoc"
	case Loose:
		return "Loose"
	case Count:
		return "Count"
	case Bound:
		return "Bound"
	default:
		return "Unknown"
	}
}

// Predicate is one complex-item clause in a stop condition. Predicates form
// a singly-linked AND list via Next: every predicate in the list must be
// satisfied, each by some live complex, though a single complex may satisfy
// more than one predicate.
type Predicate struct {
	StrandIDs []int
	Kind      PredicateKind
	Target    string
	Tolerance int
	Next      *Predicate
}

func (p *Predicate) len() int {
	n := 0
	for cur := p; cur != nil; cur = cur.Next {
		n++
	}
	return n
}

// Evaluator tests a live ensemble against a stop-predicate list. It is a
// pure reader: Matches never mutates the ensemble.
type Evaluator struct {
	Emitter emit.Emitter
}

// NewEvaluator creates an Evaluator that reports configuration errors to
// emitter. A nil emitter is replaced with emit.NewNullEmitter().
func NewEvaluator(emitter emit.Emitter) *Evaluator {
	if emitter == nil {
		emitter = emit.NewNullEmitter()
	}
	return &Evaluator{Emitter: emitter}
}

// Matches reports whether every predicate in the list rooted at predicates
// is satisfied by the live entries in en. A nil predicate list matches vacuously.
func (ev *Evaluator) Matches(en *Ensemble, predicates *Predicate) bool {
	if predicates == nil {
		return true
	}
	entries := en.Iterate()

	if predicates.Kind == Bound {
		if predicates.Next != nil {
			ev.Emitter.Emit(emit.Event{
				Msg:  "multi_bound_predicate",
				Meta: map[string]interface{}{"error": ErrMultiBoundPredicate.Error()},
			})
			return false
		}
		return ev.matchesBound(entries, predicates)
	}

	if predicates.len() > len(entries) {
		return false
	}
	for p := predicates; p != nil; p = p.Next {
		if !ev.matchesOne(entries, p) {
			return false
		}
	}
	return true
}

func (ev *Evaluator) matchesBound(entries []*Entry, p *Predicate) bool {
	for _, strandID := range p.StrandIDs {
		bound := false
		for _, e := range entries {
			if e.Complex.CheckIDBound(strandID) {
				bound = true
				break
			}
		}
		if !bound {
			return false
		}
	}
	return true
}

func (ev *Evaluator) matchesOne(entries []*Entry, p *Predicate) bool {
	for _, e := range entries {
		if !e.Complex.CheckIDList(p.StrandIDs, len(p.StrandIDs)) {
			continue
		}
		if ev.testKind(e.Complex, p) {
			return true
		}
	}
	return false
}

func (ev *Evaluator) testKind(c contracts.Complex, p *Predicate) bool {
	switch p.Kind {
	case Disassoc:
		return true
	case Exact:
		return c.Structure() == p.Target
	case Loose, Count:
		structure := c.Structure()
		if len(structure) != len(p.Target) {
			ev.Emitter.Emit(emit.Event{
				Msg:  "mismatched_structure_length",
				Meta: map[string]interface{}{"error": ErrMismatchedStructureLength.Error()},
			})
			return false
		}
		tolerance := p.Tolerance
		if p.Kind == Count {
			// '*' is not a wildcard for Count: it differs from every structure
			// character, so each one costs exactly one disagreement.
			tolerance -= strings.Count(p.Target, "*")
			if tolerance < 0 {
				return false
			}
		}
		_, ok := disagreementDistance(structure, p.Target, tolerance)
		return ok
	default:
		return false
	}
}

// disagreementDistance computes the structural disagreement count between
// our (a candidate complex's dot-bracket structure) and target (a
// predicate's dot-bracket target, which may contain '*' wildcards), using a
// single left-to-right pass with two open-paren stacks. It is deliberately
// NOT Hamming distance: pairing topology, not literal character position,
// determines mismatches. Returns false
// immediately (without computing the final count) once d exceeds
// tolerance, and also returns false for mismatched-length inputs.
func disagreementDistance(our, target string, tolerance int) (int, bool) {
	if len(our) != len(target) {
		return 0, false
	}

	var ourStack, targetStack []int
	d := 0

	for i := 0; i < len(our); i++ {
		co, ct := our[i], target[i]
		bothBrackets := isParen(co) && isParen(ct)

		if ct != '*' && co != ct && !bothBrackets {
			d++
		}
		if co == '(' {
			ourStack = append(ourStack, i)
		}
		if ct == '(' {
			targetStack = append(targetStack, i)
		}

		switch {
		case co == ')' && ct == ')':
			o := ourStack[len(ourStack)-1]
			ourStack = ourStack[:len(ourStack)-1]
			s := targetStack[len(targetStack)-1]
			targetStack = targetStack[:len(targetStack)-1]
			if o != s {
				d++
				if our[s] == '(' {
					d++
				}
			}
		case co == ')':
			o := ourStack[len(ourStack)-1]
			ourStack = ourStack[:len(ourStack)-1]
			if target[o] == '(' {
				d++
			}
		case ct == ')':
			s := targetStack[len(targetStack)-1]
			targetStack = targetStack[:len(targetStack)-1]
			if our[s] == '(' {
				d++
			}
		}

		if d > tolerance {
			return d, false
		}
	}
	return d, true
}

func isParen(c byte) bool {
	return c == '(' || c == ')'
}
