package main

import (
	"context"
	"math/rand"

	"github.com/ailscvrp/core/pkg/cvrp"
	"github.com/ailscvrp/core/pkg/worker"
)

// newRelocateLocalSearch returns a worker.LocalSearch that perturbs the
// incumbent by relocating a random customer to a random route, then
// repeatedly applies the best-improving single-customer relocate move it
// can find until none improves. The core packages treat local search as
// an opaque injected collaborator; this is the CLI's own reference
// instantiation so `ailscoord run` has something to actually search with.
func newRelocateLocalSearch(seed int64) worker.LocalSearch {
	rng := rand.New(rand.NewSource(seed)) //nolint:gosec

	return func(ctx context.Context, inst *cvrp.Instance, current *cvrp.Solution) *cvrp.Solution {
		candidate := current.Clone()
		perturb(rng, inst, candidate)

		for {
			select {
			case <-ctx.Done():
				return candidate
			default:
			}
			if !bestRelocateMove(inst, candidate) {
				break
			}
		}
		candidate.Recompute(inst)
		return candidate
	}
}

// perturb relocates one random customer into a random route, possibly a
// different one, to kick the search out of its current local optimum.
func perturb(rng *rand.Rand, inst *cvrp.Instance, s *cvrp.Solution) {
	n := inst.NumCustomers()
	if n == 0 || s.NumRoutes == 0 {
		return
	}
	c := 1 + rng.Intn(n)
	r := rng.Intn(s.NumRoutes)

	s.Remove(inst, c)
	_, after := s.BestInsertionCost(inst, r, c)
	s.InsertAfter(inst, r, after, c)
}

// bestRelocateMove scans every customer for the cheapest single-customer
// relocation (removal delta plus best reinsertion elsewhere) and applies
// it if it strictly improves total cost. Returns whether a move was
// applied.
func bestRelocateMove(inst *cvrp.Instance, s *cvrp.Solution) bool {
	n := inst.NumCustomers()
	bestGain := 0.0
	bestCustomer := 0
	bestRoute := -1
	bestAfter := cvrp.DepotCustomer

	for c := 1; c <= n; c++ {
		r := s.RouteOf(c)
		if r < 0 {
			continue
		}
		removalGain := removalCost(inst, s, c)

		for dest := 0; dest < s.NumRoutes; dest++ {
			if dest == r {
				continue
			}
			if s.DemandAfterInsert(inst, dest, c) > inst.Capacity {
				continue
			}
			insertCost, after := s.BestInsertionCost(inst, dest, c)
			gain := removalGain - insertCost
			if gain > bestGain+1e-9 {
				bestGain = gain
				bestCustomer = c
				bestRoute = dest
				bestAfter = after
			}
		}
	}

	if bestRoute < 0 {
		return false
	}
	s.Remove(inst, bestCustomer)
	s.InsertAfter(inst, bestRoute, bestAfter, bestCustomer)
	return true
}

// removalCost returns how much total distance is saved by removing c
// from its current route: d(prev,c) + d(c,next) - d(prev,next).
func removalCost(inst *cvrp.Instance, s *cvrp.Solution, c int) float64 {
	r := s.RouteOf(c)
	if r < 0 {
		return 0
	}
	route := s.Route(r)
	prev, next := cvrp.DepotCustomer, cvrp.DepotCustomer
	for i, cust := range route {
		if cust != c {
			continue
		}
		if i > 0 {
			prev = route[i-1]
		}
		if i < len(route)-1 {
			next = route[i+1]
		}
		break
	}
	return inst.Dist(prev, c) + inst.Dist(c, next) - inst.Dist(prev, next)
}
