package worker

import (
	"context"
	"math/rand"
	"sync"
	"sync/atomic"

	"github.com/ailscvrp/core/pkg/cvrp"
	"github.com/ailscvrp/core/pkg/elite"
	"github.com/ailscvrp/core/pkg/monitor"
)

// AILSWorker is the default Worker: it drives an injected LocalSearch
// hook in a loop, reporting through the shared monitor and offering
// accepted candidates to the shared elite set (spec.md §4.5).
type AILSWorker struct {
	id    int
	inst  *cvrp.Instance
	pool  *elite.Pool
	mon   *monitor.ThreadMonitor
	stats *monitor.ThreadStats
	ls    LocalSearch
	rng   *rand.Rand

	mu      sync.Mutex
	current *cvrp.Solution
	best    *cvrp.Solution
	pending *cvrp.Solution

	terminated int32
}

// NewAILSWorker constructs a worker for threadID, optionally seeded
// (initial == nil means "construct your own", per spec.md §4.2 startup
// protocol step 2 for the main worker). baseSeed combined with threadID
// gives each worker a distinct RNG stream (spec.md §5: "seed = base_seed
// XOR threadId").
func NewAILSWorker(threadID int, inst *cvrp.Instance, pool *elite.Pool, mon *monitor.ThreadMonitor, initial *cvrp.Solution, baseSeed int64, ls LocalSearch) *AILSWorker {
	w := &AILSWorker{
		id:    threadID,
		inst:  inst,
		pool:  pool,
		mon:   mon,
		stats: mon.Register(threadID),
		ls:    ls,
		rng:   rand.New(rand.NewSource(baseSeed ^ int64(threadID))), //nolint:gosec
	}
	if initial != nil {
		w.current = initial
	} else {
		w.current = DefaultInitialSolution(inst)
	}
	w.current.Recompute(inst)
	if w.current.Feasible {
		w.best = w.current.Clone()
	}
	return w
}

// Run drives the iteration loop (spec.md §4.5 mandatory hooks) until
// ctx is done, Terminate is called, or (for id > 1) the monitor signals
// a restart.
func (w *AILSWorker) Run(ctx context.Context) {
	w.stats.SetState(monitor.StateRunning)
	defer w.stats.SetState(monitor.StateTerminated)

	for {
		w.stats.RecordIteration()
		if w.best != nil {
			w.stats.UpdateBest(w.best.F)
		}

		if w.id > 1 && w.mon.ShouldRestart(w.id) {
			return
		}
		if atomic.LoadInt32(&w.terminated) == 1 {
			return
		}
		select {
		case <-ctx.Done():
			return
		default:
		}

		w.mu.Lock()
		if w.pending != nil {
			w.current = w.pending
			w.pending = nil
		}
		current := w.current
		w.mu.Unlock()

		candidate := w.ls(ctx, w.inst, current)
		if candidate == nil {
			continue
		}
		candidate.Recompute(w.inst)

		w.mu.Lock()
		w.current = candidate
		if candidate.Feasible && (w.best == nil || candidate.F < w.best.F) {
			w.best = candidate.Clone()
		}
		w.mu.Unlock()

		if !candidate.Feasible {
			continue
		}

		if w.pool.TryInsert(candidate, elite.SourceAILS) {
			w.stats.RecordEliteInsertion()
		}
		if w.mon.UpdateGlobalBest(candidate.F) {
			w.stats.RecordGlobalBestImprovement()
		}
	}
}

// Terminate sets the cooperative stop flag (spec.md §5 "Termination is
// cooperative").
func (w *AILSWorker) Terminate() {
	atomic.StoreInt32(&w.terminated, 1)
}

// BestSolution returns a clone of the worker's current incumbent.
func (w *AILSWorker) BestSolution() *cvrp.Solution {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.best == nil {
		return nil
	}
	return w.best.Clone()
}

// NotifyBetterSolution replaces the worker's incumbent unconditionally
// on its next iteration (spec.md §9 Open Question, resolved in favor of
// unconditional replacement over an f-gated compare-and-swap).
func (w *AILSWorker) NotifyBetterSolution(sol *cvrp.Solution, f float64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.pending = sol.Clone()
}

// DefaultInitialSolution builds a feasible starting point via first-fit:
// customers are walked in id order and packed into the current route
// until it would overflow capacity, at which point a new route opens.
// Construction heuristics are themselves out of this spec's scope
// (spec.md §1); first-fit is the simplest one that always terminates
// with a feasible solution for any instance where every single customer
// fits within capacity.
func DefaultInitialSolution(inst *cvrp.Instance) *cvrp.Solution {
	n := inst.NumCustomers()
	var routes [][]int
	var cur []int
	load := 0.0

	for c := 1; c <= n; c++ {
		d := inst.Demand[c]
		if len(cur) > 0 && load+d > inst.Capacity {
			routes = append(routes, cur)
			cur = nil
			load = 0
		}
		cur = append(cur, c)
		load += d
	}
	if len(cur) > 0 {
		routes = append(routes, cur)
	}
	return cvrp.NewRoutes(n, routes)
}
