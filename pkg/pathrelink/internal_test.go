package pathrelink

import (
	"context"
	"math"
	"math/rand"
	"testing"

	"github.com/ailscvrp/core/pkg/cvrp"
)

func hexInstanceInternal() *cvrp.Instance {
	n := 7
	d := make([][]float64, n)
	for i := range d {
		d[i] = make([]float64, n)
		for j := range d[i] {
			diff := i - j
			if diff < 0 {
				diff = -diff
			}
			d[i][j] = float64(diff)
		}
	}
	return &cvrp.Instance{
		Name:     "hex",
		Capacity: 100,
		Demand:   []float64{0, 5, 5, 5, 5, 5, 5},
		Distance: d,
	}
}

// pairRoutes and buildNF on the documented scenario ({1,2,3},{4,5,6} vs
// {1,2,4},{3,5,6}) must produce the exact φ and NF values documented in
// spec.md's worked example: φ = [0,1] with overlaps (2,2), NF = {3,4}.
func TestPairRoutesAndBuildNFMatchDocumentedExample(t *testing.T) {
	inst := hexInstanceInternal()
	si := cvrp.NewRoutes(6, [][]int{{1, 2, 3}, {4, 5, 6}})
	sg := cvrp.NewRoutes(6, [][]int{{1, 2, 4}, {3, 5, 6}})
	si.Recompute(inst)
	sg.Recompute(inst)

	phi, ok := pairRoutes(si, sg, 2)
	if !ok {
		t.Fatal("expected route pairing to succeed")
	}
	if len(phi) != 2 || phi[0] != 0 || phi[1] != 1 {
		t.Fatalf("phi = %v, want [0 1]", phi)
	}

	nf := buildNF(si, sg, phi, 2)
	if len(nf) != 2 {
		t.Fatalf("len(nf) = %d, want 2", len(nf))
	}
	if _, ok := nf[3]; !ok {
		t.Errorf("nf = %v, want it to contain customer 3", nf)
	}
	if _, ok := nf[4]; !ok {
		t.Errorf("nf = %v, want it to contain customer 4", nf)
	}
}

// The transfer loop Run performs must, on the documented scenario and under
// every criterion, drain NF entirely and leave si with routes matching the
// guide (each customer ends up in the route its φ-image points to). Run
// itself returns the cheapest feasible point met along that trajectory,
// which need not be its end, so its result is checked for feasibility and
// for costing no more than the solution the trajectory started from.
func TestRunDrainsNFAndMatchesGuideRoutes(t *testing.T) {
	inst := hexInstanceInternal()
	sa := cvrp.NewRoutes(6, [][]int{{1, 2, 3}, {4, 5, 6}})
	sb := cvrp.NewRoutes(6, [][]int{{1, 2, 4}, {3, 5, 6}})
	sa.Recompute(inst)
	sb.Recompute(inst)

	rng := rand.New(rand.NewSource(7))
	for _, criterion := range AllCriteria {
		si, sg := sa.Clone(), sb.Clone()
		phi, ok := pairRoutes(si, sg, 2)
		if !ok {
			t.Fatal("expected route pairing to succeed")
		}
		nf := buildNF(si, sg, phi, 2)
		dest := guideDestinations(sg, phi, 2)
		for len(nf) > 0 {
			vHat, destRoute, insertAfter := pickTransfer(inst, si, nf, dest, criterion, rng, Options{})
			si.Remove(inst, vHat)
			si.InsertAfter(inst, destRoute, insertAfter, vHat)
			si.Recompute(inst)
			delete(nf, vHat)
		}

		guideRoutes := [][]int{{1, 2, 4}, {3, 5, 6}}
		for _, guide := range guideRoutes {
			r := si.RouteOf(guide[0])
			got := customerSet(si, r)
			if len(got) != len(guide) {
				t.Fatalf("%s: route for customer %d has %d customers, want %d matching guide route %v", criterion, guide[0], len(got), len(guide), guide)
			}
			for _, c := range guide {
				if _, ok := got[c]; !ok {
					t.Fatalf("%s: route for customer %d = %v, want it to contain %d per guide %v", criterion, guide[0], got, c, guide)
				}
			}
		}
	}

	best, ok := Run(context.Background(), inst, sa, sb, rng, Options{Polish: NoopPolisher{}})
	if !ok {
		t.Fatal("expected relinking to succeed on equal route counts")
	}
	if !best.Feasible {
		t.Fatalf("expected feasible best solution, got F=%.2f", best.F)
	}
	if startF := math.Max(sa.F, sb.F); best.F > startF {
		t.Fatalf("best F = %.2f, want at most the starting solution's %.2f", best.F, startF)
	}
}
