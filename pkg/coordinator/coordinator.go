// Package coordinator owns the lifecycle of the AILS-II thread pool: it
// launches the protected main worker and the restartable worker pool,
// runs the monitoring tick loop that restarts stagnated workers, drives
// the optional path-relinking worker, and reports the incumbent once
// the shared deadline is reached. Grounded on orchestrator.go's
// state-machine-driven lifecycle and cleanup/coordinator.go's
// join-everything shutdown shape.
package coordinator

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/ailscvrp/core/pkg/config"
	"github.com/ailscvrp/core/pkg/cvrp"
	"github.com/ailscvrp/core/pkg/elite"
	"github.com/ailscvrp/core/pkg/monitor"
	"github.com/ailscvrp/core/pkg/pathrelink"
	"github.com/ailscvrp/core/pkg/worker"
)

// State is the coordinator's own lifecycle state, distinct from each
// worker's per-thread State (monitor.State).
type State int

const (
	StateCreated State = iota
	StateRunning
	StateTerminating
	StateDeadlineReached
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "CREATED"
	case StateRunning:
		return "RUNNING"
	case StateTerminating:
		return "TERMINATING"
	case StateDeadlineReached:
		return "DEADLINE_REACHED"
	case StateTerminated:
		return "TERMINATED"
	default:
		return "UNKNOWN"
	}
}

// boundedJoinWait caps how long the monitoring loop waits for a
// terminated worker's goroutine to exit before reseeding its slot.
const boundedJoinWait = 2 * time.Second

// monitorTick is the restart-evaluation cadence (spec.md §4.2 "every
// tick (≈1s)").
const monitorTick = 1 * time.Second

// restartImprovementEpsilon gates notifyMainThread injection: a
// worker's best must beat the main's best by more than this margin.
const restartImprovementEpsilon = 1e-9

// slot tracks one restartable worker's running goroutine alongside the
// Worker handle the coordinator uses to terminate/inspect it.
type slot struct {
	id     int
	w      worker.Worker
	cancel context.CancelFunc
	done   chan struct{}
}

// Summary is the final result handed back once the coordinator reaches
// TERMINATED, for the reporting layer to render.
type Summary struct {
	Best            *cvrp.Solution
	EliteSize       int
	TotalIterations int64
	TotalRestarts   int64
	Elapsed         time.Duration
}

// Coordinator drives the AILS-II worker pool to completion under a
// shared deadline (spec.md §4.2).
type Coordinator struct {
	opt      config.Options
	inst     *cvrp.Instance
	ls       worker.LocalSearch
	selector elite.Selector
	polish   pathrelink.Polisher
	log      zerolog.Logger

	pool     *elite.Pool
	mon      *monitor.ThreadMonitor
	deadline *Deadline

	mu    sync.Mutex
	state State

	mainWorker *worker.AILSWorker
	mainDone   chan struct{}
	slots      map[int]*slot
}

// New constructs a Coordinator from validated options, a problem
// instance, the injected local-search collaborator, and an optional
// path-relinking polisher (pathrelink.NoopPolisher{} if none).
func New(opt config.Options, inst *cvrp.Instance, ls worker.LocalSearch, selector elite.Selector, polish pathrelink.Polisher, log zerolog.Logger) *Coordinator {
	if selector == nil {
		selector = elite.QualitySelector{}
	}
	if polish == nil {
		polish = pathrelink.NoopPolisher{}
	}
	return &Coordinator{
		opt:      opt,
		inst:     inst,
		ls:       ls,
		selector: selector,
		polish:   polish,
		log:      log,
		pool:     elite.NewPool(opt.Elite.Capacity, opt.Elite.Beta, opt.Elite.MinDiversity, opt.BaseSeed),
		mon:      monitor.New(int64(opt.Coordinator.StagnationThreshold), opt.Coordinator.CompetitiveThreshold),
		slots:    make(map[int]*slot),
	}
}

func (c *Coordinator) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
	c.log.Info().Str("state", s.String()).Msg("coordinator state transition")
}

// State returns the coordinator's current lifecycle state.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Run executes the full startup protocol, monitoring loop, and shutdown
// sequence described in spec.md §4.2, returning the final Summary.
func (c *Coordinator) Run(ctx context.Context) Summary {
	t0 := time.Now()
	c.deadline = NewDeadline(t0, c.opt.Coordinator.TimeLimit)
	c.deadline.Watch()
	c.setState(StateRunning)

	runCtx, cancelAll := context.WithCancel(ctx)
	defer cancelAll()

	// Step 2: launch the protected main worker with no seed — it builds
	// its own initial solution.
	c.mainWorker = worker.NewAILSWorker(1, c.inst, c.pool, c.mon, nil, c.opt.BaseSeed, c.ls)
	c.mainDone = make(chan struct{})
	go func() {
		defer close(c.mainDone)
		c.mainWorker.Run(runCtx)
	}()

	// Step 3: optional path-relinking worker.
	var prDone chan struct{}
	if c.opt.PathRelinking.Enabled {
		prDone = make(chan struct{})
		go func() {
			defer close(prDone)
			c.runPathRelinkingWorker(runCtx)
		}()
	}

	// Step 4: block until the elite set reaches minEliteSizeForWorkers or
	// the deadline arrives.
	reachedSeedThreshold := c.waitForSeedPool(runCtx)

	// Step 5: launch restartable workers 2..N+1. A slot for which no seed
	// is available is left empty and is not filled later: the monitoring
	// tick only restarts workers that were launched. If the deadline
	// fired before the pool ever reached minEliteSizeForWorkers, no
	// restartable worker launches at
	// all (spec.md §8 B2): the pool having *some* entries is not the same
	// as having reached the configured threshold.
	if reachedSeedThreshold {
		c.mu.Lock()
		for i := 2; i <= c.opt.Coordinator.NumWorkerThreads+1; i++ {
			c.launchRestartableLocked(runCtx, i)
		}
		c.mu.Unlock()
	}

	c.monitorLoop(runCtx)

	c.setState(StateDeadlineReached)
	c.shutdown(cancelAll)
	c.setState(StateTerminated)

	return c.summary(time.Since(t0))
}

// waitForSeedPool implements startup protocol step 4: poll at a fixed
// interval until the elite set is large enough to seed restartable
// workers, or the deadline is reached first. The return value tells the
// caller which happened, since a pool that has merely accumulated some
// entries is not the same as one that reached minEliteSizeForWorkers.
func (c *Coordinator) waitForSeedPool(ctx context.Context) bool {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		if c.pool.Size() >= c.opt.Coordinator.MinEliteSizeForWorkers {
			return true
		}
		select {
		case <-c.deadline.Done():
			return false
		case <-ctx.Done():
			return false
		case <-ticker.C:
		}
	}
}

// launchRestartableLocked launches restartable worker id from a seed
// obtained via the configured selector. Caller must hold c.mu. If no
// seed is available no worker is launched for id. A slot that was never
// launched is not retried: tick only restarts workers registered with
// the monitor, and such a slot never registered one.
func (c *Coordinator) launchRestartableLocked(ctx context.Context, id int) {
	seed, ok := c.pool.SelectForRestart(c.selector)
	if !ok {
		c.log.Warn().Int("worker", id).Msg("no seed available, worker slot left empty")
		return
	}

	workerCtx, cancel := context.WithCancel(ctx)
	w := worker.NewAILSWorker(id, c.inst, c.pool, c.mon, seed, c.opt.BaseSeed, c.ls)
	done := make(chan struct{})
	go func() {
		defer close(done)
		w.Run(workerCtx)
	}()

	c.slots[id] = &slot{id: id, w: w, cancel: cancel, done: done}
}

// monitorLoop runs until the deadline, restarting stagnated workers and
// delivering notifyMainThread injections (spec.md §4.2 "Monitoring loop").
func (c *Coordinator) monitorLoop(ctx context.Context) {
	ticker := time.NewTicker(monitorTick)
	defer ticker.Stop()

	for {
		select {
		case <-c.deadline.Done():
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.tick(ctx)
		}
	}
}

func (c *Coordinator) tick(ctx context.Context) {
	c.mu.Lock()
	ids := make([]int, 0, len(c.slots)+c.opt.Coordinator.NumWorkerThreads)
	for i := 2; i <= c.opt.Coordinator.NumWorkerThreads+1; i++ {
		ids = append(ids, i)
	}
	c.mu.Unlock()

	for _, id := range ids {
		if c.mon.ShouldRestart(id) {
			c.restartWorker(ctx, id)
		}
		c.maybeNotifyMain(id)
	}
}

// restartWorker terminates worker id, joins it with a bounded wait,
// obtains a fresh seed, and relaunches a replacement, bumping its slot's
// restart_count.
func (c *Coordinator) restartWorker(ctx context.Context, id int) {
	c.mu.Lock()
	s, ok := c.slots[id]
	c.mu.Unlock()
	if ok {
		s.w.Terminate()
		s.cancel()
		select {
		case <-s.done:
		case <-time.After(boundedJoinWait):
			c.log.Warn().Int("worker", id).Msg("bounded join timed out, reseeding anyway")
		}
	}

	c.mu.Lock()
	prev := c.slots[id]
	c.launchRestartableLocked(ctx, id)
	if cur, ok := c.slots[id]; ok && cur != prev {
		if stats := c.mon.Stats(id); stats != nil {
			stats.IncrementRestartCount()
		}
	}
	c.mu.Unlock()

	c.log.Info().Int("worker", id).Msg("restarted stagnated worker")
}

// maybeNotifyMain delivers worker id's best solution to the main worker
// if notifyMainThread is enabled and it beats the main's current best by
// more than restartImprovementEpsilon (spec.md §4.2).
func (c *Coordinator) maybeNotifyMain(id int) {
	if !c.opt.Coordinator.NotifyMainThread {
		return
	}
	c.mu.Lock()
	s, ok := c.slots[id]
	c.mu.Unlock()
	if !ok {
		return
	}

	candidate := s.w.BestSolution()
	if candidate == nil || !candidate.Feasible {
		return
	}
	mainBest := c.mainWorker.BestSolution()
	if mainBest != nil && candidate.F >= mainBest.F-restartImprovementEpsilon {
		return
	}
	c.mainWorker.NotifyBetterSolution(candidate, candidate.F)
}

// runPathRelinkingWorker periodically samples two elite solutions and
// relinks them, offering the result back to the elite set (spec.md
// §4.4), honoring pr.startDelay/pr.frequency/pr.minEliteForPR.
func (c *Coordinator) runPathRelinkingWorker(ctx context.Context) {
	rng := rand.New(rand.NewSource(c.opt.BaseSeed ^ 0x5052)) //nolint:gosec
	opt := pathrelink.Options{Polish: c.polish}

	// startDelay is expressed in main-worker iterations; approximate it
	// as a wait until the main worker has iterated at least that many
	// times before the path-relinking worker starts contributing.
	for {
		mainStats := c.mon.Stats(1)
		if mainStats != nil && mainStats.Iterations() >= int64(c.opt.PathRelinking.StartDelay) {
			break
		}
		select {
		case <-ctx.Done():
			return
		case <-c.deadline.Done():
			return
		case <-time.After(50 * time.Millisecond):
		}
	}

	freq := time.Duration(c.opt.PathRelinking.Frequency) * time.Millisecond
	if freq <= 0 {
		freq = 50 * time.Millisecond
	}
	ticker := time.NewTicker(freq)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-c.deadline.Done():
			return
		case <-ticker.C:
			if c.pool.Size() < c.opt.PathRelinking.MinEliteForPR {
				continue
			}
			a, b, ok := c.pool.SampleForRelinking()
			if !ok {
				continue
			}
			best, ok := pathrelink.Run(ctx, c.inst, a, b, rng, opt)
			if !ok || best == nil {
				continue
			}
			c.pool.TryInsert(best, elite.SourcePathRelinking)
		}
	}
}

// shutdown terminates every worker and joins them with a bounded wait
// (spec.md §4.2 Shutdown; grounded on cleanup/coordinator.go's
// join-everything-then-summarize shape).
func (c *Coordinator) shutdown(cancelAll context.CancelFunc) {
	c.setState(StateTerminating)

	c.mainWorker.Terminate()
	cancelAll()

	c.mu.Lock()
	slots := make([]*slot, 0, len(c.slots))
	for _, s := range c.slots {
		slots = append(slots, s)
	}
	c.mu.Unlock()

	for _, s := range slots {
		s.w.Terminate()
		s.cancel()
	}

	select {
	case <-c.mainDone:
	case <-time.After(boundedJoinWait):
		c.log.Warn().Msg("main worker bounded join timed out")
	}
	for _, s := range slots {
		select {
		case <-s.done:
		case <-time.After(boundedJoinWait):
			c.log.Warn().Int("worker", s.id).Msg("worker bounded join timed out")
		}
	}
}

// summary assembles the final Summary from the elite pool's best entry
// and the aggregate thread statistics.
func (c *Coordinator) summary(elapsed time.Duration) Summary {
	var best *cvrp.Solution
	var bestF float64
	hasBest := false
	for _, e := range c.pool.Snapshot() {
		if !hasBest || e.Solution.F < bestF {
			best = e.Solution
			bestF = e.Solution.F
			hasBest = true
		}
	}
	if mb := c.mainWorker.BestSolution(); mb != nil && mb.Feasible && (!hasBest || mb.F < bestF) {
		best = mb
	}

	var totalIter, totalRestarts int64
	for _, id := range c.mon.WorkerIDs() {
		s := c.mon.Stats(id)
		if s == nil {
			continue
		}
		totalIter += s.Iterations()
		totalRestarts += s.RestartCount()
	}

	return Summary{
		Best:            best,
		EliteSize:       c.pool.Size(),
		TotalIterations: totalIter,
		TotalRestarts:   totalRestarts,
		Elapsed:         elapsed,
	}
}

func (s Summary) String() string {
	if s.Best == nil {
		return fmt.Sprintf("Summary{no feasible solution found, elapsed=%s}", s.Elapsed)
	}
	return fmt.Sprintf("Summary{best_f=%.2f routes=%d elite_size=%d iterations=%d restarts=%d elapsed=%s}",
		s.Best.F, s.Best.NumRoutes, s.EliteSize, s.TotalIterations, s.TotalRestarts, s.Elapsed)
}
