package elite

import (
	"math/rand"
	"sync"
	"time"

	"github.com/ailscvrp/core/pkg/cvrp"
)

// Pool is the bounded, thread-safe elite set (spec.md §4.1). One mutex
// protects the whole slice of entries; pool sizes stay small (≤ ~30), so
// a single RWMutex is adapted here the same way the teacher's metrics
// collector guards its sample map with one lock rather than per-key
// striping.
type Pool struct {
	mu       sync.RWMutex
	entries  []*Entry
	capacity int
	beta     float64 // quality/diversity weight, spec.md §4.1
	minDiv   float64 // pairwise diversity floor

	rng *rand.Rand
}

// NewPool constructs an empty elite pool. capacity, beta and minDiversity
// come straight from the coordinator's configuration (spec.md §6).
func NewPool(capacity int, beta, minDiversity float64, seed int64) *Pool {
	return &Pool{
		capacity: capacity,
		beta:     beta,
		minDiv:   minDiversity,
		rng:      rand.New(rand.NewSource(seed)), //nolint:gosec
	}
}

// Size returns the current pool occupancy.
func (p *Pool) Size() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.entries)
}

// Snapshot returns cloned copies of every entry's solution, safe to
// inspect without holding the pool lock (spec.md §4.1 "Consistent
// snapshot").
func (p *Pool) Snapshot() []Entry {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make([]Entry, len(p.entries))
	for i, e := range p.entries {
		out[i] = Entry{
			Solution:   e.Solution.Clone(),
			Source:     e.Source,
			UsageCount: e.UsageCount,
			InsertedAt: e.InsertedAt,
		}
	}
	return out
}

// candidateScore is the combined score S = (1-β)Q + βD for one member of
// a (possibly hypothetical) extended pool, computed against that pool's
// own f extremes and diversity.
type candidateScore struct {
	entry *Entry // nil for an as-yet-uninserted candidate
	score float64
}

// scoreExtended computes S for every item in extended (existing entries
// plus, optionally, a not-yet-inserted candidate appended at the end with
// edges/f given separately). Pool lock must already be held by the
// caller.
func (p *Pool) scoreExtended(candEdges map[cvrp.Edge]struct{}, candF float64) []candidateScore {
	n := len(p.entries)
	allEdges := make([]map[cvrp.Edge]struct{}, n+1)
	allF := make([]float64, n+1)
	for i, e := range p.entries {
		allEdges[i] = e.edges
		allF[i] = e.Solution.F
	}
	allEdges[n] = candEdges
	allF[n] = candF

	fBest, fWorst := allF[0], allF[0]
	for _, f := range allF {
		if f < fBest {
			fBest = f
		}
		if f > fWorst {
			fWorst = f
		}
	}

	out := make([]candidateScore, n+1)
	for i := range allF {
		q := 1.0
		if fWorst != fBest {
			q = (fWorst - allF[i]) / (fWorst - fBest)
		}
		d := minDiversityAgainstOthers(allEdges, i)
		out[i] = candidateScore{score: (1-p.beta)*q + p.beta*d}
		if i < n {
			out[i].entry = p.entries[i]
		}
	}
	return out
}

func minDiversityAgainstOthers(edges []map[cvrp.Edge]struct{}, self int) float64 {
	if len(edges) <= 1 {
		return 1
	}
	min := -1.0
	for j := range edges {
		if j == self {
			continue
		}
		d := cvrp.Diversity(edges[self], edges[j])
		if min < 0 || d < min {
			min = d
		}
	}
	return min
}

// TryInsert applies the insertion policy of spec.md §4.1 atomically.
// Rejects infeasible candidates outright. Returns whether sol entered the
// pool (as a clone; the caller's sol is never retained by reference).
func (p *Pool) TryInsert(sol *cvrp.Solution, source Source) bool {
	if !sol.Feasible {
		return false
	}
	candEdges := sol.EdgeSet()

	p.mu.Lock()
	defer p.mu.Unlock()

	// Step 2: diversity-floor rival check.
	rivalIdx := -1
	rivalDiv := p.minDiv
	for i, e := range p.entries {
		d := cvrp.Diversity(candEdges, e.edges)
		if d < p.minDiv && (rivalIdx == -1 || d < rivalDiv) {
			rivalIdx, rivalDiv = i, d
		}
	}
	if rivalIdx != -1 {
		if sol.F < p.entries[rivalIdx].Solution.F {
			p.entries[rivalIdx] = newEntry(sol, source, candEdges)
			return true
		}
		return false
	}

	// Step 3: room to grow.
	if len(p.entries) < p.capacity {
		p.entries = append(p.entries, newEntry(sol, source, candEdges))
		return true
	}

	// Step 4: bounded pool, drop the weakest combined score.
	scores := p.scoreExtended(candEdges, sol.F)
	worst := 0
	for i, s := range scores {
		if s.score < scores[worst].score {
			worst = i
		}
	}
	if scores[worst].entry == nil {
		// The candidate itself is the weakest; reject.
		return false
	}
	for i, e := range p.entries {
		if e == scores[worst].entry {
			p.entries[i] = newEntry(sol, source, candEdges)
			return true
		}
	}
	return false
}

func newEntry(sol *cvrp.Solution, source Source, edges map[cvrp.Edge]struct{}) *Entry {
	return &Entry{
		Solution:   sol.Clone(),
		Source:     source,
		InsertedAt: time.Now(),
		edges:      edges,
	}
}

// SampleForRelinking returns two distinct entries with equal route count,
// chosen fairly among eligible pairs, or ok=false if no such pair exists
// (spec.md §4.1 sample_for_relinking). Takes the write lock because the
// draw advances the pool's shared rng.
func (p *Pool) SampleForRelinking() (a, b *cvrp.Solution, ok bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	n := len(p.entries)
	if n < 2 {
		return nil, nil, false
	}

	type pair struct{ i, j int }
	var candidates []pair
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if p.entries[i].Solution.NumRoutes == p.entries[j].Solution.NumRoutes {
				candidates = append(candidates, pair{i, j})
			}
		}
	}
	if len(candidates) == 0 {
		return nil, nil, false
	}
	pick := candidates[p.rng.Intn(len(candidates))]
	return p.entries[pick.i].Solution.Clone(), p.entries[pick.j].Solution.Clone(), true
}

// SelectForRestart runs strategy over the current pool and, if it picks
// an entry, bumps that entry's usage count atomically with the selection
// (spec.md §4.2 "Seed allocation race") before returning a clone.
func (p *Pool) SelectForRestart(strategy Selector) (*cvrp.Solution, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.entries) == 0 {
		return nil, false
	}

	scores := p.scoreOwnPool()
	idx, ok := strategy.Select(p.entries, scoreValues(scores))
	if !ok {
		return nil, false
	}
	p.entries[idx].UsageCount++
	return p.entries[idx].Solution.Clone(), true
}

func scoreValues(scores []candidateScore) []float64 {
	out := make([]float64, len(scores))
	for i, s := range scores {
		out[i] = s.score
	}
	return out
}

// scoreOwnPool computes S for every existing entry against the real pool
// (no hypothetical candidate appended).
func (p *Pool) scoreOwnPool() []candidateScore {
	n := len(p.entries)
	allEdges := make([]map[cvrp.Edge]struct{}, n)
	allF := make([]float64, n)
	for i, e := range p.entries {
		allEdges[i] = e.edges
		allF[i] = e.Solution.F
	}
	if n == 0 {
		return nil
	}
	fBest, fWorst := allF[0], allF[0]
	for _, f := range allF {
		if f < fBest {
			fBest = f
		}
		if f > fWorst {
			fWorst = f
		}
	}
	out := make([]candidateScore, n)
	for i := range allF {
		q := 1.0
		if fWorst != fBest {
			q = (fWorst - allF[i]) / (fWorst - fBest)
		}
		d := minDiversityAgainstOthers(allEdges, i)
		out[i] = candidateScore{entry: p.entries[i], score: (1-p.beta)*q + p.beta*d}
	}
	return out
}
