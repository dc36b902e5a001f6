// Package cvrp defines the shared data model for the Capacitated Vehicle
// Routing Problem: the read-only problem instance and the mutable Solution
// representation used by the elite set, the thread coordinator, and the
// path-relinking engine.
//
// Routes are modeled as cyclic doubly linked lists anchored at the depot,
// backed by a fixed-size node arena addressed by index rather than
// pointer. This keeps route mutation to index rewiring (O(1) removal,
// O(1) insertion once a target position is known) and avoids aliasing
// hazards when a Solution is deep-copied for the elite set.
package cvrp

import "fmt"

// DepotCustomer is the reserved customer id for the depot.
const DepotCustomer = 0

// Instance is the immutable, read-only CVRP problem description shared by
// reference across all worker goroutines. Parsing an Instance from a file
// is an external collaborator's responsibility (out of scope here).
type Instance struct {
	Name       string
	Capacity   float64
	Demand     []float64   // Demand[c] for customer c, Demand[0] == 0 for the depot
	Distance   [][]float64 // symmetric distance matrix, indices are customer ids
	NumVehicle int         // suggested fleet size, advisory only
}

// NumCustomers returns the count of non-depot customers in the instance.
func (inst *Instance) NumCustomers() int {
	if inst == nil {
		return 0
	}
	return len(inst.Demand) - 1
}

// Dist returns the distance between two customer ids (depot included as 0).
func (inst *Instance) Dist(a, b int) float64 {
	return inst.Distance[a][b]
}

// Node is one slot in the route arena: either a depot anchor (Customer ==
// DepotCustomer) or a customer visit. Prev/Next are arena indices, never
// pointers, so a Solution can be memcpy-cloned without pointer-fixup.
type Node struct {
	Customer int
	Route    int // which route this node currently belongs to
	Prev     int
	Next     int
}

// Solution is an ordered partition of customers into routes. It owns its
// node arena exclusively; callers that want to share a Solution across
// goroutines must Clone it first.
type Solution struct {
	Nodes       []Node // arena; index 0 is unused as a sentinel
	RouteAnchor []int  // RouteAnchor[r] = arena index of route r's depot node
	CustomerAt  []int  // CustomerAt[c] = arena index of customer c's node, 0 if unrouted

	RouteDemand []float64 // per-route total demand, parallel to RouteAnchor

	F         float64 // objective: route cost + capacity penalty
	Feasible  bool
	NumRoutes int
}

// NewEmpty allocates a Solution with no routes, sized for at most
// maxCustomers customers. Workers that build their own initial solution
// populate it via NewRoutes/InsertAfter.
func NewEmpty(maxCustomers int) *Solution {
	return &Solution{
		Nodes:      make([]Node, maxCustomers+1),
		CustomerAt: make([]int, maxCustomers+1),
	}
}

// NewRoutes builds a Solution from an explicit partition of customers into
// routes (each inner slice is one route's visit order, depot excluded).
// Used by tests, by the worker's default initial-solution construction,
// and to rebuild a solution from a persisted run report.
func NewRoutes(numCustomers int, routes [][]int) *Solution {
	s := NewEmpty(numCustomers)
	s.NumRoutes = len(routes)
	s.RouteAnchor = make([]int, len(routes))
	s.RouteDemand = make([]float64, len(routes))

	nextArenaIdx := numCustomers + 1 // arena[1..numCustomers] reserved for customers
	for r, seq := range routes {
		anchor := nextArenaIdx
		nextArenaIdx++
		s.Nodes = append(s.Nodes, Node{Customer: DepotCustomer, Route: r})
		s.RouteAnchor[r] = anchor

		s.Nodes[anchor].Next = anchor
		s.Nodes[anchor].Prev = anchor

		prev := anchor
		for _, c := range seq {
			idx := c
			s.Nodes[idx] = Node{Customer: c, Route: r, Prev: prev, Next: anchor}
			s.Nodes[prev].Next = idx
			s.CustomerAt[c] = idx
			prev = idx
		}
		s.Nodes[anchor].Prev = prev
	}
	return s
}

// Route returns route r's customer visit order (depot excluded), walking
// the cyclic list from its anchor.
func (s *Solution) Route(r int) []int {
	anchor := s.RouteAnchor[r]
	out := make([]int, 0, 8)
	for n := s.Nodes[anchor].Next; n != anchor; n = s.Nodes[n].Next {
		out = append(out, s.Nodes[n].Customer)
	}
	return out
}

// Routes returns all routes as customer-id slices.
func (s *Solution) Routes() [][]int {
	out := make([][]int, s.NumRoutes)
	for r := range out {
		out[r] = s.Route(r)
	}
	return out
}

// RouteOf returns the route index currently holding customer c, or -1 if
// c is unrouted.
func (s *Solution) RouteOf(c int) int {
	idx := s.CustomerAt[c]
	if idx == 0 {
		return -1
	}
	return s.Nodes[idx].Route
}

// Clone returns an independent deep copy. The elite set always stores
// clones so a worker's continued mutation of its own incumbent never
// aliases pool state.
func (s *Solution) Clone() *Solution {
	out := &Solution{
		Nodes:       make([]Node, len(s.Nodes)),
		RouteAnchor: make([]int, len(s.RouteAnchor)),
		CustomerAt:  make([]int, len(s.CustomerAt)),
		RouteDemand: make([]float64, len(s.RouteDemand)),
		F:           s.F,
		Feasible:    s.Feasible,
		NumRoutes:   s.NumRoutes,
	}
	copy(out.Nodes, s.Nodes)
	copy(out.RouteAnchor, s.RouteAnchor)
	copy(out.CustomerAt, s.CustomerAt)
	copy(out.RouteDemand, s.RouteDemand)
	return out
}

func (s *Solution) String() string {
	return fmt.Sprintf("Solution{routes=%d f=%.2f feasible=%v}", s.NumRoutes, s.F, s.Feasible)
}
