package cvrp_test

import (
	"testing"

	"github.com/ailscvrp/core/pkg/cvrp"
)

func squareInstance() *cvrp.Instance {
	// depot at 0, customers 1..4, symmetric distances.
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

func TestRouteRoundTrip(t *testing.T) {
	inst := squareInstance()
	s := cvrp.NewRoutes(4, [][]int{{1, 2}, {3, 4}})

	if got := s.Route(0); !equalInts(got, []int{1, 2}) {
		t.Fatalf("route 0 = %v, want [1 2]", got)
	}
	if got := s.Route(1); !equalInts(got, []int{3, 4}) {
		t.Fatalf("route 1 = %v, want [3 4]", got)
	}

	s.Recompute(inst)
	if !s.Feasible {
		t.Fatalf("expected feasible solution, got F=%.2f", s.F)
	}
}

func TestRemoveInsertPreservesRoundTrip(t *testing.T) {
	inst := squareInstance()
	s := cvrp.NewRoutes(4, [][]int{{1, 2}, {3, 4}})
	s.Recompute(inst)

	s.Remove(inst, 2)
	s.InsertAfter(inst, 1, cvrp.DepotCustomer, 2)
	s.Recompute(inst)

	if got := s.Route(1); !equalInts(got, []int{2, 3, 4}) {
		t.Fatalf("route 1 after transfer = %v, want [2 3 4]", got)
	}
	if got := s.Route(0); !equalInts(got, []int{1}) {
		t.Fatalf("route 0 after transfer = %v, want [1]", got)
	}
}

func TestDiversitySelfIsZeroAndSymmetric(t *testing.T) {
	inst := squareInstance()
	s := cvrp.NewRoutes(4, [][]int{{1, 2}, {3, 4}})
	s.Recompute(inst)

	edges := s.EdgeSet()
	if d := cvrp.Diversity(edges, edges); d != 0 {
		t.Fatalf("diversity(s,s) = %v, want 0", d)
	}

	other := cvrp.NewRoutes(4, [][]int{{1, 3}, {2, 4}})
	other.Recompute(inst)
	oe := other.EdgeSet()

	if a, b := cvrp.Diversity(edges, oe), cvrp.Diversity(oe, edges); a != b {
		t.Fatalf("diversity not symmetric: %v vs %v", a, b)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	inst := squareInstance()
	s := cvrp.NewRoutes(4, [][]int{{1, 2}, {3, 4}})
	s.Recompute(inst)

	clone := s.Clone()
	clone.Remove(inst, 2)
	clone.InsertAfter(inst, 1, cvrp.DepotCustomer, 2)
	clone.Recompute(inst)

	if got := s.Route(0); !equalInts(got, []int{1, 2}) {
		t.Fatalf("original mutated by clone: route 0 = %v", got)
	}
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
