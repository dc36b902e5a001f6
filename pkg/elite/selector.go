package elite

import (
	"sort"

	"github.com/ailscvrp/core/pkg/cvrp"
)

// Selector picks one entry index from entries to serve as the next
// restart seed, given each entry's combined score S (same order as
// entries). It returns ok=false only when entries is empty. Implementing
// Select lets alternative restart strategies plug into Pool.SelectForRestart
// without the pool knowing which policy is active (spec.md §4.2 "Seed
// selection strategy").
type Selector interface {
	Select(entries []*Entry, scores []float64) (int, bool)
}

// QualitySelector is the default strategy: prefer entries with the
// lowest usage count, breaking ties by highest combined score. This
// spreads restart seeds across the pool over time while still favoring
// quality+diversity when usage counts tie (spec.md §4.2 default
// strategy).
type QualitySelector struct{}

func (QualitySelector) Select(entries []*Entry, scores []float64) (int, bool) {
	if len(entries) == 0 {
		return 0, false
	}
	order := make([]int, len(entries))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		ia, ib := order[a], order[b]
		if entries[ia].UsageCount != entries[ib].UsageCount {
			return entries[ia].UsageCount < entries[ib].UsageCount
		}
		return scores[ia] > scores[ib]
	})
	return order[0], true
}

// RoundRobinSelector cycles through the pool in insertion order,
// independent of score or usage count. next is advanced modulo the
// current pool size on every call, so it self-corrects if the pool
// shrinks or grows between calls.
type RoundRobinSelector struct {
	next int
}

func (s *RoundRobinSelector) Select(entries []*Entry, scores []float64) (int, bool) {
	if len(entries) == 0 {
		return 0, false
	}
	idx := s.next % len(entries)
	s.next++
	return idx, true
}

// DiversityFirstSelector prefers, among the entries with the lowest
// usage count, the one whose edge set differs the most on average from
// the rest of the snapshot, spreading restart seeds toward different
// regions of the search space once usage count alone doesn't decide.
// Usage count is still the primary key so that, like QualitySelector,
// repeated calls on a pool whose usage counts are bumped between calls
// (Pool.SelectForRestart does this under its own lock) cycle through
// every entry once before any entry repeats.
type DiversityFirstSelector struct{}

func (DiversityFirstSelector) Select(entries []*Entry, scores []float64) (int, bool) {
	if len(entries) == 0 {
		return 0, false
	}

	minUsage := entries[0].UsageCount
	for _, e := range entries[1:] {
		if e.UsageCount < minUsage {
			minUsage = e.UsageCount
		}
	}

	best := -1
	bestDiversity := -1.0
	for i, e := range entries {
		if e.UsageCount != minUsage {
			continue
		}
		if d := averageDiversity(i, entries); best == -1 || d > bestDiversity {
			best, bestDiversity = i, d
		}
	}
	return best, true
}

// averageDiversity returns entries[idx]'s mean pairwise Diversity
// against every other entry in the snapshot.
func averageDiversity(idx int, entries []*Entry) float64 {
	if len(entries) <= 1 {
		return 0
	}
	total := 0.0
	for j, other := range entries {
		if j == idx {
			continue
		}
		total += cvrp.Diversity(entries[idx].edges, other.edges)
	}
	return total / float64(len(entries)-1)
}
