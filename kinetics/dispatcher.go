package kinetics

import (
	"context"

	"github.com/dshills/strandkinetics/kinetics/contracts"
)

// StepResult describes what the dispatcher did during one Step: either a
// bimolecular join (no single entry represents the event) or a unimolecular
// move on a picked entry, possibly producing a new entry via
// disassociation.
type StepResult struct {
	Joined   bool
	Entry    *Entry
	NewEntry *Entry
}

// Dispatcher resolves one kinetic Monte Carlo step against an Ensemble: a
// uniform deviate selects either the join engine or a single entry's move,
// and the dispatcher applies it. The dispatcher is time-agnostic; simulated
// time is advanced by the driver (see Run), not here.
type Dispatcher struct {
	PerformJoin contracts.PerformComplexJoin
	joiner      JoinFluxEngine
}

// NewDispatcher creates a Dispatcher that resolves joins via performJoin,
// the external complex-join primitive.
func NewDispatcher(performJoin contracts.PerformComplexJoin) *Dispatcher {
	return &Dispatcher{PerformJoin: performJoin}
}

// Step performs one dispatcher step. choice must lie in [0, en.TotalFlux()).
func (d *Dispatcher) Step(ctx context.Context, en *Ensemble, choice float64) (StepResult, error) {
	en.TotalFlux() // lazily refreshes en.joinFlux before the routing decision
	joinFlux := en.JoinFlux()

	if choice < joinFlux {
		return d.doJoin(ctx, en, choice)
	}
	return d.doUnimolecular(ctx, en, choice-joinFlux)
}

func (d *Dispatcher) doJoin(ctx context.Context, en *Ensemble, choice float64) (StepResult, error) {
	kJoin := en.Model().JoinRate()
	intChoice := int(choice / kJoin)

	entries := en.Iterate()
	res, err := d.joiner.Resolve(entries, intChoice)
	if err != nil {
		return StepResult{}, err
	}

	complexes := [2]contracts.Complex{res.first.Complex, res.second.Complex}
	toDelete := d.PerformJoin(ctx, complexes, res.types, res.index)

	survivor := res.first
	if toDelete == res.first.Complex {
		survivor = res.second
	}

	en.Remove(res.first)
	en.Remove(res.second)
	merged := en.Add(survivor.Complex)
	en.Refresh(merged)

	return StepResult{Joined: true, Entry: merged}, nil
}

func (d *Dispatcher) doUnimolecular(ctx context.Context, en *Ensemble, remaining float64) (StepResult, error) {
	var picked *Entry
	for e := en.Head(); e != nil; e = e.Next() {
		if remaining < e.Flux {
			picked = e
			break
		}
		remaining -= e.Flux
	}
	if picked == nil {
		return StepResult{}, ErrConsistencyViolation
	}

	move := picked.Complex.SelectMove(remaining)
	child, split := picked.Complex.Apply(ctx, move)
	if split {
		childEntry := en.Add(child)
		en.Refresh(childEntry)
		en.Refresh(picked)
		return StepResult{Entry: picked, NewEntry: childEntry}, nil
	}

	en.Refresh(picked)
	return StepResult{Entry: picked}, nil
}
