// Package elite implements the thread-safe elite-set engine: a bounded
// pool of feasible, pairwise-diverse CVRP solutions combining a quality
// score and a diversity floor, shared by every worker and the
// path-relinking engine.
package elite

import (
	"time"

	"github.com/ailscvrp/core/pkg/cvrp"
)

// Source records which subsystem produced an elite entry.
type Source string

const (
	SourceAILS          Source = "AILS"
	SourcePathRelinking Source = "PATH_RELINKING"
)

// Entry is one pool member: a solution plus the bookkeeping the
// coordinator and seed selector need (spec.md §3 Elite Entry).
type Entry struct {
	Solution   *cvrp.Solution
	Source     Source
	UsageCount int
	InsertedAt time.Time

	edges map[cvrp.Edge]struct{} // cached at insertion, diversity is read-heavy
}

// Clone returns a deep copy of the entry's solution, the form handed out
// as a restart seed or a path-relinking input (spec.md §3 Ownership: "on
// elite insertion, a clone is transferred").
func (e *Entry) Clone() *cvrp.Solution {
	return e.Solution.Clone()
}
