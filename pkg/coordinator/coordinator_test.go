package coordinator_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/ailscvrp/core/pkg/config"
	"github.com/ailscvrp/core/pkg/coordinator"
	"github.com/ailscvrp/core/pkg/cvrp"
	"github.com/ailscvrp/core/pkg/pathrelink"
)

func tinyInstance() *cvrp.Instance {
	n := 6
	d := make([][]float64, n+1)
	for i := range d {
		d[i] = make([]float64, n+1)
		for j := range d[i] {
			diff := i - j
			if diff < 0 {
				diff = -diff
			}
			d[i][j] = float64(diff)
		}
	}
	demand := []float64{0, 2, 2, 2, 2, 2, 2}
	return &cvrp.Instance{Name: "tiny", Capacity: 8, Demand: demand, Distance: d}
}

func identityLocalSearch(ctx context.Context, inst *cvrp.Instance, current *cvrp.Solution) *cvrp.Solution {
	return current.Clone()
}

func TestRunReachesDeadlineAndReturnsSummary(t *testing.T) {
	opt := config.Default()
	opt.Coordinator.TimeLimit = 400 * time.Millisecond
	opt.Coordinator.NumWorkerThreads = 1
	opt.Coordinator.MinEliteSizeForWorkers = 1
	opt.Coordinator.StagnationThreshold = 1
	opt.PathRelinking.Enabled = true
	opt.PathRelinking.StartDelay = 0
	opt.PathRelinking.Frequency = 10
	opt.PathRelinking.MinEliteForPR = 1

	inst := tinyInstance()
	c := coordinator.New(opt, inst, identityLocalSearch, nil, pathrelink.NoopPolisher{}, zerolog.Nop())

	summary := c.Run(context.Background())

	if c.State() != coordinator.StateTerminated {
		t.Fatalf("state = %s, want TERMINATED", c.State())
	}
	if summary.Best == nil {
		t.Fatal("expected a best solution in the summary")
	}
	if !summary.Best.Feasible {
		t.Fatalf("expected feasible best, got F=%.2f feasible=%v", summary.Best.F, summary.Best.Feasible)
	}
}

func TestRunHonorsParentContextCancellation(t *testing.T) {
	opt := config.Default()
	opt.Coordinator.TimeLimit = 5 * time.Second
	opt.Coordinator.NumWorkerThreads = 0
	opt.Coordinator.MinEliteSizeForWorkers = 1
	opt.PathRelinking.Enabled = false

	inst := tinyInstance()
	c := coordinator.New(opt, inst, identityLocalSearch, nil, nil, zerolog.Nop())

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	done := make(chan coordinator.Summary, 1)
	go func() { done <- c.Run(ctx) }()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return promptly after parent context cancellation")
	}
}

// A seed threshold the elite pool can never reach (it exceeds the pool's
// own capacity) must mean no restartable worker ever launches, even once
// the deadline fires and the pool has accumulated some entries from the
// main worker. Only worker id 1 (the protected main) may ever run.
func TestRestartableWorkersNeverLaunchWhenSeedThresholdExceedsCapacity(t *testing.T) {
	opt := config.Default()
	opt.Coordinator.TimeLimit = 300 * time.Millisecond
	opt.Coordinator.NumWorkerThreads = 3
	opt.Elite.Capacity = 2
	opt.Coordinator.MinEliteSizeForWorkers = 3 // > Elite.Capacity
	opt.PathRelinking.Enabled = false

	inst := tinyInstance()
	c := coordinator.New(opt, inst, identityLocalSearch, nil, nil, zerolog.Nop())

	summary := c.Run(context.Background())

	if summary.TotalRestarts != 0 {
		t.Fatalf("total restarts = %d, want 0", summary.TotalRestarts)
	}
	if summary.Best == nil {
		t.Fatal("expected the protected main worker to still produce a result")
	}
}

// coordinator.num_worker_threads = 0 must behave as a single protected main with no
// restartable workers and no restarts.
func TestZeroWorkerThreadsRunsSingleProtectedMainOnly(t *testing.T) {
	opt := config.Default()
	opt.Coordinator.TimeLimit = 200 * time.Millisecond
	opt.Coordinator.NumWorkerThreads = 0
	opt.Coordinator.MinEliteSizeForWorkers = 1
	opt.PathRelinking.Enabled = false

	inst := tinyInstance()
	c := coordinator.New(opt, inst, identityLocalSearch, nil, nil, zerolog.Nop())

	summary := c.Run(context.Background())

	if summary.TotalRestarts != 0 {
		t.Fatalf("total restarts = %d, want 0 with zero restartable workers", summary.TotalRestarts)
	}
	if summary.Best == nil {
		t.Fatal("expected the protected main worker to still produce a result")
	}
}

// A zero time limit must not hang or panic: Run should return promptly
// with a (possibly unpopulated) summary.
func TestZeroTimeLimitReturnsPromptlyWithoutError(t *testing.T) {
	opt := config.Default()
	opt.Coordinator.TimeLimit = 0
	opt.Coordinator.NumWorkerThreads = 2
	opt.Coordinator.MinEliteSizeForWorkers = 1
	opt.PathRelinking.Enabled = false

	inst := tinyInstance()
	c := coordinator.New(opt, inst, identityLocalSearch, nil, nil, zerolog.Nop())

	done := make(chan coordinator.Summary, 1)
	go func() { done <- c.Run(context.Background()) }()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return promptly with a zero time limit")
	}
}
