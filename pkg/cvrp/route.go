package cvrp

import "math"

// Remove detaches customer c from its current route in O(1), decrements
// that route's running demand total, and returns the route index it was
// removed from. The caller re-inserts c elsewhere (or leaves it detached
// mid-transfer, as path-relinking does) and is responsible for updating F
// afterwards via Recompute or an incremental delta.
func (s *Solution) Remove(inst *Instance, c int) int {
	idx := s.CustomerAt[c]
	n := s.Nodes[idx]
	s.Nodes[n.Prev].Next = n.Next
	s.Nodes[n.Next].Prev = n.Prev
	s.RouteDemand[n.Route] -= inst.Demand[c]
	s.CustomerAt[c] = 0
	return n.Route
}

// InsertAfter inserts customer c into route r immediately after the node
// currently holding afterCustomer (DepotCustomer to insert right after
// the anchor, i.e. as the new first stop).
func (s *Solution) InsertAfter(inst *Instance, r int, afterCustomer int, c int) {
	var afterIdx int
	if afterCustomer == DepotCustomer {
		afterIdx = s.RouteAnchor[r]
	} else {
		afterIdx = s.CustomerAt[afterCustomer]
	}
	nextIdx := s.Nodes[afterIdx].Next

	s.Nodes[c] = Node{Customer: c, Route: r, Prev: afterIdx, Next: nextIdx}
	s.Nodes[afterIdx].Next = c
	s.Nodes[nextIdx].Prev = c
	s.CustomerAt[c] = c
	s.RouteDemand[r] += inst.Demand[c]
}

// DemandAfterInsert returns what route r's total demand would be if c were
// inserted into it, without mutating the solution. Used by priority
// criteria to evaluate destination feasibility before committing a move.
func (s *Solution) DemandAfterInsert(inst *Instance, r int, c int) float64 {
	return s.RouteDemand[r] + inst.Demand[c]
}

// DemandAfterRemove returns what c's current route's total demand would
// be if c were removed, without mutating the solution.
func (s *Solution) DemandAfterRemove(inst *Instance, c int) float64 {
	r := s.RouteOf(c)
	if r < 0 {
		return 0
	}
	return s.RouteDemand[r] - inst.Demand[c]
}

// BestInsertionCost returns the minimum, over all positions in route r, of
// d(prev,c) + d(c,next) - d(prev,next), along with the customer after
// which that minimum is achieved (DepotCustomer meaning "right after the
// anchor"). Used by the path-relinking transfer loop (spec.md §4.4 step
// 5) to find a destination position without materializing the insertion.
func (s *Solution) BestInsertionCost(inst *Instance, r int, c int) (bestCost float64, bestAfter int) {
	anchor := s.RouteAnchor[r]
	bestCost = math.Inf(1)
	bestAfter = DepotCustomer

	cur := anchor
	for {
		nxt := s.Nodes[cur].Next
		prevCustomer := s.Nodes[cur].Customer
		nextCustomer := s.Nodes[nxt].Customer
		cost := inst.Dist(prevCustomer, c) + inst.Dist(c, nextCustomer) - inst.Dist(prevCustomer, nextCustomer)
		if cost < bestCost {
			bestCost = cost
			bestAfter = prevCustomer
		}
		cur = nxt
		if cur == anchor {
			break
		}
	}
	return bestCost, bestAfter
}
