package elite_test

import (
	"sync"
	"testing"

	"github.com/ailscvrp/core/pkg/cvrp"
	"github.com/ailscvrp/core/pkg/elite"
)

func inst() *cvrp.Instance {
	d := [][]float64{
		{0, 1, 2, 1, 2},
		{1, 0, 1, 2, 3},
		{2, 1, 0, 3, 2},
		{1, 2, 3, 0, 1},
		{2, 3, 2, 1, 0},
	}
	return &cvrp.Instance{
		Name:     "square",
		Capacity: 100,
		Demand:   []float64{0, 5, 5, 5, 5},
		Distance: d,
	}
}

func feasible(i *cvrp.Instance, routes [][]int) *cvrp.Solution {
	s := cvrp.NewRoutes(4, routes)
	s.Recompute(i)
	return s
}

func TestTryInsertGrowsUntilCapacity(t *testing.T) {
	i := inst()
	p := elite.NewPool(3, 0.5, 0.1, 1)

	if !p.TryInsert(feasible(i, [][]int{{1, 2}, {3, 4}}), elite.SourceAILS) {
		t.Fatal("expected first insert to succeed")
	}
	if !p.TryInsert(feasible(i, [][]int{{1, 3}, {2, 4}}), elite.SourceAILS) {
		t.Fatal("expected second insert (distinct edges) to succeed")
	}
	if p.Size() != 2 {
		t.Fatalf("pool size = %d, want 2", p.Size())
	}
	if !p.TryInsert(feasible(i, [][]int{{1, 4}, {2, 3}}), elite.SourceAILS) {
		t.Fatal("expected third insert (distinct edges) to succeed")
	}
	if p.Size() != 3 {
		t.Fatalf("pool size = %d, want 3", p.Size())
	}
	p.TryInsert(feasible(i, [][]int{{1, 2, 3}, {4}}), elite.SourceAILS)
	if p.Size() != 3 {
		t.Fatalf("pool size = %d after an insert at capacity, want 3", p.Size())
	}
}

func TestTryInsertRejectsInfeasible(t *testing.T) {
	i := inst()
	p := elite.NewPool(3, 0.5, 0.1, 1)

	s := cvrp.NewRoutes(4, [][]int{{1, 2, 3, 4}})
	s.F = 9999
	s.Feasible = false

	if p.TryInsert(s, elite.SourceAILS) {
		t.Fatal("expected infeasible candidate to be rejected")
	}
	if p.Size() != 0 {
		t.Fatalf("pool size = %d, want 0", p.Size())
	}
	_ = i
}

// Re-inserting the exact same solution a second time must leave the
// pool's size unchanged: the identical edge set has zero diversity
// against its own already-inserted copy, so it is rejected as a rival
// candidate rather than added again.
func TestReinsertingSameSolutionLeavesPoolSizeUnchanged(t *testing.T) {
	i := inst()
	p := elite.NewPool(3, 0.5, 0.1, 1)

	sol := feasible(i, [][]int{{1, 2}, {3, 4}})
	if !p.TryInsert(sol, elite.SourceAILS) {
		t.Fatal("expected first insert to succeed")
	}
	sizeAfterFirst := p.Size()

	again := feasible(i, [][]int{{1, 2}, {3, 4}})
	p.TryInsert(again, elite.SourceAILS)

	if p.Size() != sizeAfterFirst {
		t.Fatalf("pool size changed after re-inserting an identical solution: %d -> %d", sizeAfterFirst, p.Size())
	}
}

// Every pair of entries left in the pool after a sequence of TryInsert
// calls must be at or above the configured diversity floor.
func TestTryInsertMaintainsPairwiseDiversityFloor(t *testing.T) {
	i := inst()
	const minDiv = 0.3
	p := elite.NewPool(4, 0.5, minDiv, 1)

	candidates := [][][]int{
		{{1, 2}, {3, 4}},
		{{1, 3}, {2, 4}},
		{{1, 4}, {2, 3}},
		{{2, 1}, {4, 3}},
		{{1, 2, 3}, {4}},
	}
	for _, routes := range candidates {
		p.TryInsert(feasible(i, routes), elite.SourceAILS)
	}

	snap := p.Snapshot()
	for a := 0; a < len(snap); a++ {
		for b := a + 1; b < len(snap); b++ {
			d := cvrp.Diversity(snap[a].Solution.EdgeSet(), snap[b].Solution.EdgeSet())
			if d < minDiv {
				t.Fatalf("entries %d and %d have diversity %v, want >= %v", a, b, d, minDiv)
			}
		}
	}
}

func TestSampleForRelinkingRequiresEqualRouteCount(t *testing.T) {
	i := inst()
	p := elite.NewPool(4, 0.5, 0.0, 1)

	p.TryInsert(feasible(i, [][]int{{1, 2, 3, 4}}), elite.SourceAILS)
	if _, _, ok := p.SampleForRelinking(); ok {
		t.Fatal("expected no sample with a single entry")
	}

	p.TryInsert(feasible(i, [][]int{{1, 2}, {3, 4}}), elite.SourceAILS)
	if _, _, ok := p.SampleForRelinking(); ok {
		t.Fatal("expected no sample when route counts differ")
	}

	p.TryInsert(feasible(i, [][]int{{2, 1}, {4, 3}}), elite.SourceAILS)
	a, b, ok := p.SampleForRelinking()
	if !ok {
		t.Fatal("expected a sample once two entries share route count")
	}
	if a == nil || b == nil {
		t.Fatal("expected non-nil cloned solutions")
	}
}

func TestSelectForRestartBumpsUsageCount(t *testing.T) {
	i := inst()
	p := elite.NewPool(3, 0.5, 0.0, 1)
	p.TryInsert(feasible(i, [][]int{{1, 2}, {3, 4}}), elite.SourceAILS)
	p.TryInsert(feasible(i, [][]int{{1, 3}, {2, 4}}), elite.SourceAILS)

	sel := elite.QualitySelector{}
	if _, ok := p.SelectForRestart(sel); !ok {
		t.Fatal("expected a seed to be selected")
	}

	snap := p.Snapshot()
	total := 0
	for _, e := range snap {
		total += e.UsageCount
	}
	if total != 1 {
		t.Fatalf("total usage count = %d, want 1", total)
	}
}

func TestRoundRobinSelectorCyclesDistinctEntries(t *testing.T) {
	i := inst()
	p := elite.NewPool(3, 0.5, 0.0, 1)
	p.TryInsert(feasible(i, [][]int{{1, 2}, {3, 4}}), elite.SourceAILS)
	p.TryInsert(feasible(i, [][]int{{1, 3}, {2, 4}}), elite.SourceAILS)

	rr := &elite.RoundRobinSelector{}
	first, ok := p.SelectForRestart(rr)
	if !ok {
		t.Fatal("expected first selection to succeed")
	}
	second, ok := p.SelectForRestart(rr)
	if !ok {
		t.Fatal("expected second selection to succeed")
	}
	if cvrp.Diversity(first.EdgeSet(), second.EdgeSet()) == 0 {
		t.Fatal("expected the second selection to return a distinct entry from the first")
	}
}

// DiversityFirstSelector must not always hand out the same entry: once
// its usage count is bumped, a second call on the same two-entry pool
// must pick the other entry.
func TestDiversityFirstSelectorCyclesDistinctEntries(t *testing.T) {
	i := inst()
	p := elite.NewPool(3, 0.5, 0.0, 1)
	p.TryInsert(feasible(i, [][]int{{1, 2}, {3, 4}}), elite.SourceAILS)
	p.TryInsert(feasible(i, [][]int{{1, 3}, {2, 4}}), elite.SourceAILS)

	sel := elite.DiversityFirstSelector{}
	first, ok := p.SelectForRestart(sel)
	if !ok {
		t.Fatal("expected first selection to succeed")
	}
	second, ok := p.SelectForRestart(sel)
	if !ok {
		t.Fatal("expected second selection to succeed")
	}

	firstEdges := first.EdgeSet()
	secondEdges := second.EdgeSet()
	if cvrp.Diversity(firstEdges, secondEdges) == 0 {
		t.Fatal("expected the second selection to return a distinct entry from the first")
	}
}

// Concurrent SelectForRestart calls against a pool sized to match the
// number of callers must hand out every entry exactly once: usage-count
// bumping happens under the pool's own lock in the same critical section
// as selection, so no two callers can race for the same entry.
func TestConcurrentSelectForRestartReturnsDistinctEntries(t *testing.T) {
	i := inst()
	p := elite.NewPool(4, 0.5, 0.0, 1)
	routes := [][][]int{
		{{1, 2}, {3, 4}},
		{{1, 3}, {2, 4}},
		{{1, 4}, {2, 3}},
	}
	for _, r := range routes {
		if !p.TryInsert(feasible(i, r), elite.SourceAILS) {
			t.Fatal("expected seed candidate to be accepted into the pool")
		}
	}

	sel := elite.QualitySelector{}
	results := make([]*cvrp.Solution, len(routes))
	var wg sync.WaitGroup
	for idx := range routes {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			sol, ok := p.SelectForRestart(sel)
			if !ok {
				t.Error("expected a seed to be selected")
				return
			}
			results[idx] = sol
		}(idx)
	}
	wg.Wait()

	for a := 0; a < len(results); a++ {
		for b := a + 1; b < len(results); b++ {
			if results[a] == nil || results[b] == nil {
				continue
			}
			if cvrp.Diversity(results[a].EdgeSet(), results[b].EdgeSet()) == 0 {
				t.Fatalf("concurrent selections %d and %d returned the same entry", a, b)
			}
		}
	}

	snap := p.Snapshot()
	for _, e := range snap {
		if e.UsageCount != 1 {
			t.Fatalf("entry usage count = %d, want exactly 1 after %d concurrent selections on a pool of the same size", e.UsageCount, len(routes))
		}
	}
}
