package pathrelink

import "math/rand"

// Criterion names one of the ten fixed priority rules used to rank
// transfer candidates during the path-relinking transfer loop (spec.md
// §4.4). Modeled as a tagged enumeration with a single dispatch function
// rather than a class hierarchy, the same shape as injection/injector.go's
// switch on fault type, per spec.md §9's explicit guidance against deep
// hierarchies for this kind of dispatch.
type Criterion string

const (
	C1  Criterion = "C1"
	C2  Criterion = "C2"
	C3  Criterion = "C3"
	C4  Criterion = "C4"
	C5  Criterion = "C5"
	C6  Criterion = "C6"
	C7  Criterion = "C7"
	C8  Criterion = "C8"
	C9  Criterion = "C9"
	C10 Criterion = "C10"
)

// AllCriteria is the fixed set path-relinking samples from uniformly at
// the start of each run (spec.md §4.4 step 4).
var AllCriteria = []Criterion{C1, C2, C3, C4, C5, C6, C7, C8, C9, C10}

// CriterionInputs bundles the feasibility/cost signals each criterion
// needs. O0/O1 are the origin route's feasibility before and after v's
// removal; D0/D1 are the destination route's feasibility before and
// after v's insertion. Q is v's demand; Cost is its minimum insertion
// cost at the destination. DemandScale/CostScale are the normalization
// constants C10 divides by (spec.md §9 Open Question: left as
// configurable fields rather than a hardcoded /100).
type CriterionInputs struct {
	O0, O1 bool
	D0, D1 bool
	Q      float64
	Cost   float64

	DemandScale float64
	CostScale   float64
}

// Evaluate computes the priority of a transfer candidate under c. rng
// supplies C9's uniform draw; callers share one seeded *rand.Rand per
// worker rather than constructing one per call.
func Evaluate(c Criterion, in CriterionInputs, rng *rand.Rand) float64 {
	c1 := evalC1(in)

	switch c {
	case C1:
		return c1
	case C2:
		return -c1
	case C3:
		if in.O0 && in.O1 && in.D0 && in.D1 {
			return -in.Cost
		}
		return 1000 * c1
	case C4:
		return in.Q
	case C5:
		return -in.Q
	case C6:
		return -in.Cost
	case C7:
		if !in.O0 && in.O1 {
			return 1
		}
		return 0
	case C8:
		if in.D0 && !in.D1 {
			return -1
		}
		return 0
	case C9:
		return rng.Float64()
	case C10:
		demandScale := in.DemandScale
		if demandScale == 0 {
			demandScale = 100
		}
		costScale := in.CostScale
		if costScale == 0 {
			costScale = 100
		}
		return 0.5*c1 + 0.3*(in.Q/demandScale) - 0.2*(in.Cost/costScale)
	default:
		return 0
	}
}

func evalC1(in CriterionInputs) float64 {
	if !in.O0 && in.O1 {
		return 1
	}
	if in.D0 && !in.D1 {
		return -1
	}
	return 0
}
