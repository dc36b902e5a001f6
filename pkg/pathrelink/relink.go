// Package pathrelink implements the path-relinking engine: a structural
// crossover between two elite solutions that pairs routes, transfers
// customers one at a time under a sampled priority criterion, and keeps
// the best feasible intermediate solution seen along the way (spec.md
// §4.4).
package pathrelink

import (
	"context"
	"math/rand"

	"github.com/ailscvrp/core/pkg/cvrp"
)

// Polisher applies a final local-search pass to the best intermediate
// solution path-relinking produced. Implementations should respect
// ctx's deadline (spec.md §9 Open Question, resolved: the polish step
// does honor the coordinator's deadline).
type Polisher interface {
	Polish(ctx context.Context, inst *cvrp.Instance, s *cvrp.Solution)
}

// NoopPolisher performs no polish; useful in tests and as a degenerate
// configuration.
type NoopPolisher struct{}

func (NoopPolisher) Polish(context.Context, *cvrp.Instance, *cvrp.Solution) {}

// Options configures one relink run.
type Options struct {
	DemandScale float64
	CostScale   float64
	Polish      Polisher
}

// Run executes the full path-relinking procedure between sa and sb and
// returns the best feasible solution found, or ok=false if the pair
// could not be relinked (spec.md §4.4 Failure handling: unequal route
// counts or a non-bijective pairing).
func Run(ctx context.Context, inst *cvrp.Instance, sa, sb *cvrp.Solution, rng *rand.Rand, opt Options) (*cvrp.Solution, bool) {
	if sa.NumRoutes != sb.NumRoutes {
		return nil, false
	}
	m := sa.NumRoutes

	si, sg := sa.Clone(), sb.Clone()
	if rng.Intn(2) == 1 {
		si, sg = sg, si
	}

	phi, ok := pairRoutes(si, sg, m)
	if !ok {
		return nil, false
	}

	nf := buildNF(si, sg, phi, m)
	dest := guideDestinations(sg, phi, m)
	criterion := AllCriteria[rng.Intn(len(AllCriteria))]

	si.Recompute(inst)
	var best *cvrp.Solution
	if si.Feasible {
		best = si.Clone()
	}

	for len(nf) > 0 {
		vHat, destRoute, insertAfter := pickTransfer(inst, si, nf, dest, criterion, rng, opt)

		si.Remove(inst, vHat)
		si.InsertAfter(inst, destRoute, insertAfter, vHat)
		si.Recompute(inst)
		delete(nf, vHat)

		if si.Feasible && (best == nil || si.F < best.F) {
			best = si.Clone()
		}
	}

	if best == nil {
		return nil, false
	}
	opt.Polish.Polish(ctx, inst, best)
	best.Recompute(inst)
	return best, true
}

// pairRoutes builds the bijection φ: route index in si -> route index in
// sg, via greedy maximum-overlap matching with lowest-index tiebreak
// (spec.md §4.4 step 2).
func pairRoutes(si, sg *cvrp.Solution, m int) ([]int, bool) {
	siSets := make([]map[int]struct{}, m)
	sgSets := make([]map[int]struct{}, m)
	for r := 0; r < m; r++ {
		siSets[r] = customerSet(si, r)
		sgSets[r] = customerSet(sg, r)
	}

	phi := make([]int, m)
	matched := make([]bool, m)

	for i := 0; i < m; i++ {
		bestJ, bestOverlap := -1, -1
		for j := 0; j < m; j++ {
			if matched[j] {
				continue
			}
			overlap := countOverlap(siSets[i], sgSets[j])
			if overlap > bestOverlap {
				bestOverlap, bestJ = overlap, j
			}
		}
		if bestJ == -1 {
			return nil, false
		}
		phi[i] = bestJ
		matched[bestJ] = true
	}

	seen := make([]bool, m)
	for _, j := range phi {
		if j < 0 || j >= m || seen[j] {
			return nil, false
		}
		seen[j] = true
	}
	return phi, true
}

func customerSet(s *cvrp.Solution, r int) map[int]struct{} {
	out := make(map[int]struct{})
	for _, c := range s.Route(r) {
		out[c] = struct{}{}
	}
	return out
}

func countOverlap(a, b map[int]struct{}) int {
	n := 0
	small, big := a, b
	if len(small) > len(big) {
		small, big = big, small
	}
	for c := range small {
		if _, ok := big[c]; ok {
			n++
		}
	}
	return n
}

// buildNF returns the set of customers whose route in sg is not the
// φ-image of their route in si (spec.md §4.4 step 3): v's route in si is
// k, but v is not in sg.route[φ(k)].
func buildNF(si, sg *cvrp.Solution, phi []int, m int) map[int]struct{} {
	nf := make(map[int]struct{})
	for k := 0; k < m; k++ {
		target := customerSet(sg, phi[k])
		for _, v := range si.Route(k) {
			if _, ok := target[v]; !ok {
				nf[v] = struct{}{}
			}
		}
	}
	return nf
}

// guideDestinations maps every customer to the si route it must end up
// in: the route k whose φ-image sg.route[φ(k)] holds it in the guide.
func guideDestinations(sg *cvrp.Solution, phi []int, m int) map[int]int {
	dest := make(map[int]int)
	for k := 0; k < m; k++ {
		for _, v := range sg.Route(phi[k]) {
			dest[v] = k
		}
	}
	return dest
}

// pickTransfer selects v_hat = argmax priority over NF (ties broken by
// minimum movement cost) and returns it along with where it should land:
// its guide destination dest[v_hat] (the si route paired with the guide
// route holding it) and the customer to insert after for best cost.
func pickTransfer(inst *cvrp.Instance, si *cvrp.Solution, nf map[int]struct{}, dest map[int]int, criterion Criterion, rng *rand.Rand, opt Options) (v, destRoute, insertAfter int) {
	bestV, bestPriority, bestCost, bestDest, bestAfter := -1, 0.0, 0.0, 0, 0
	first := true

	for cand := range nf {
		originRoute := si.RouteOf(cand)
		destRouteIdx := dest[cand]

		o0 := si.RouteDemand[originRoute] <= inst.Capacity
		o1 := si.DemandAfterRemove(inst, cand) <= inst.Capacity
		d0 := si.RouteDemand[destRouteIdx] <= inst.Capacity
		d1 := si.DemandAfterInsert(inst, destRouteIdx, cand) <= inst.Capacity

		cost, after := si.BestInsertionCost(inst, destRouteIdx, cand)

		priority := Evaluate(criterion, CriterionInputs{
			O0: o0, O1: o1, D0: d0, D1: d1,
			Q: inst.Demand[cand], Cost: cost,
			DemandScale: opt.DemandScale, CostScale: opt.CostScale,
		}, rng)

		if first || priority > bestPriority || (priority == bestPriority && cost < bestCost) {
			first = false
			bestV, bestPriority, bestCost = cand, priority, cost
			bestDest, bestAfter = destRouteIdx, after
		}
	}
	return bestV, bestDest, bestAfter
}
