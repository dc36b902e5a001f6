// Package worker defines the contract every AILS search thread must
// satisfy to participate in the coordinator's lifecycle, plus a default
// implementation driving an injected perturb/repair/local-search hook
// (spec.md §4.5: the inner AILS iteration itself is an opaque
// collaborator, specified only through the hooks it must call).
package worker

import (
	"context"

	"github.com/ailscvrp/core/pkg/cvrp"
)

// LocalSearch is the injected, opaque improvement procedure a worker
// drives every iteration: given the current incumbent, produce a new
// candidate via perturb -> repair -> local search (spec.md §1 Out of
// scope: "per-thread local search operators ... treated as opaque
// improvement procedures with a known contract").
type LocalSearch func(ctx context.Context, inst *cvrp.Instance, current *cvrp.Solution) *cvrp.Solution

// Worker is the black-box contract the coordinator manages (spec.md
// §4.5). Every method must be safe to call from the coordinator's
// goroutine while Run executes on the worker's own goroutine.
type Worker interface {
	// Run drives the iteration loop until ctx is done, terminate() is
	// called, or (for restartable workers) the monitor says to stop.
	Run(ctx context.Context)

	// Terminate sets the cooperative stop flag observed at loop head.
	Terminate()

	// BestSolution returns a snapshot of the worker's current
	// incumbent. Never nil after the first iteration completes.
	BestSolution() *cvrp.Solution

	// NotifyBetterSolution injects a solution discovered elsewhere; the
	// worker adopts it as its new incumbent before its next
	// perturbation (spec.md §9 Open Question, resolved: replacement is
	// unconditional, not gated on f comparison).
	NotifyBetterSolution(sol *cvrp.Solution, f float64)
}
