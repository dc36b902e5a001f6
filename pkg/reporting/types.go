package reporting

import (
	"time"

	"github.com/ailscvrp/core/pkg/coordinator"
	"github.com/ailscvrp/core/pkg/cvrp"
)

// RunReport represents a complete AILS-II run.
type RunReport struct {
	// Run metadata
	RunID        string    `json:"run_id"`
	InstanceName string    `json:"instance_name"`
	StartTime    time.Time `json:"start_time"`
	EndTime      time.Time `json:"end_time"`
	Duration     string    `json:"duration"`

	// Run result
	Status  RunStatus `json:"status"`
	Success bool      `json:"success"`
	Message string    `json:"message,omitempty"`

	// Best solution found, flattened for JSON persistence
	BestCost  float64 `json:"best_cost"`
	NumRoutes int     `json:"num_routes"`
	Routes    [][]int `json:"routes,omitempty"`

	// Thread pool aggregates
	EliteSize       int   `json:"elite_size"`
	TotalIterations int64 `json:"total_iterations"`
	TotalRestarts   int64 `json:"total_restarts"`

	// Per-thread breakdown
	Workers []WorkerSummary `json:"workers,omitempty"`

	// Errors encountered
	Errors []string `json:"errors,omitempty"`
}

// RunStatus represents the status of a run.
type RunStatus string

const (
	StatusRunning   RunStatus = "running"
	StatusCompleted RunStatus = "completed"
	StatusFailed    RunStatus = "failed"
	StatusStopped   RunStatus = "stopped"
)

// WorkerSummary contains the per-thread counters at the end of a run.
type WorkerSummary struct {
	ID           int     `json:"id"`
	Iterations   int64   `json:"iterations"`
	Restarts     int64   `json:"restarts"`
	EliteInserts int64   `json:"elite_inserts"`
	BestF        float64 `json:"best_f"`
}

// NewRunReport builds a RunReport from a coordinator.Summary, filling in
// the metadata the coordinator itself doesn't track (run id, instance
// name, wall-clock bounds).
func NewRunReport(runID, instanceName string, startTime time.Time, summary coordinator.Summary, workers []WorkerSummary) RunReport {
	r := RunReport{
		RunID:           runID,
		InstanceName:    instanceName,
		StartTime:       startTime,
		EndTime:         startTime.Add(summary.Elapsed),
		Duration:        summary.Elapsed.Round(time.Millisecond).String(),
		EliteSize:       summary.EliteSize,
		TotalIterations: summary.TotalIterations,
		TotalRestarts:   summary.TotalRestarts,
		Workers:         workers,
	}

	if summary.Best == nil {
		r.Status = StatusFailed
		r.Success = false
		r.Message = "no feasible solution found within the time limit"
		return r
	}

	r.Status = StatusCompleted
	r.Success = true
	r.BestCost = summary.Best.F
	r.NumRoutes = summary.Best.NumRoutes
	r.Routes = summary.Best.Routes()
	return r
}

// BestSolution reconstructs a cvrp.Solution from the report's flattened
// route list, for callers that load a persisted report and want to
// resume analysis against the instance (e.g. re-verify feasibility).
func (r RunReport) BestSolution(numCustomers int) *cvrp.Solution {
	if len(r.Routes) == 0 {
		return nil
	}
	return cvrp.NewRoutes(numCustomers, r.Routes)
}

// LiveRunState represents the current state of a running coordinator,
// sampled periodically for progress reporting.
type LiveRunState struct {
	RunID        string        `json:"run_id"`
	InstanceName string        `json:"instance_name"`
	State        string        `json:"state"`
	StartTime    time.Time     `json:"start_time"`
	Elapsed      time.Duration `json:"elapsed"`

	EliteSize   int     `json:"elite_size"`
	GlobalBestF float64 `json:"global_best_f,omitempty"`
	HasBest     bool    `json:"has_best"`

	Workers []WorkerSummary `json:"workers,omitempty"`
}
