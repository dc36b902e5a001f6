package config

import "fmt"

// Validator accumulates non-fatal Warnings and fatal Errors while
// checking an Options record, the same accumulation pattern as
// scenario/validator/validator.go's Warnings/Errors split.
type Validator struct {
	Warnings []string
	Errors   []string
}

// NewValidator returns an empty Validator.
func NewValidator() *Validator {
	return &Validator{}
}

// Validate checks opt against spec.md §6's field constraints. A
// configuration error surfaces at coordinator construction and is fatal
// (spec.md §7 Error taxonomy).
func (v *Validator) Validate(opt Options) error {
	v.Warnings = nil
	v.Errors = nil

	if opt.Coordinator.NumWorkerThreads < 0 {
		v.Errors = append(v.Errors, "coordinator.num_worker_threads must be >= 0")
	}
	if opt.Coordinator.MinEliteSizeForWorkers < 1 {
		v.Errors = append(v.Errors, "coordinator.min_elite_size_for_workers must be >= 1")
	}
	if opt.Coordinator.StagnationThreshold < 1 {
		v.Errors = append(v.Errors, "coordinator.stagnation_threshold must be >= 1")
	}
	if opt.Coordinator.CompetitiveThreshold < 0 || opt.Coordinator.CompetitiveThreshold > 1 {
		v.Errors = append(v.Errors, "coordinator.competitive_threshold must be in [0,1]")
	}
	if opt.Coordinator.TimeLimit <= 0 {
		v.Errors = append(v.Errors, "coordinator.time_limit must be > 0")
	}
	if opt.Elite.Capacity < 1 {
		v.Errors = append(v.Errors, "elite.capacity must be >= 1")
	}
	if opt.Elite.Beta < 0 || opt.Elite.Beta > 1 {
		v.Errors = append(v.Errors, "elite.beta must be in [0,1]")
	}
	if opt.Elite.MinDiversity < 0 || opt.Elite.MinDiversity > 1 {
		v.Errors = append(v.Errors, "elite.min_diversity must be in [0,1]")
	}
	if opt.PathRelinking.MinEliteForPR < 2 {
		v.Warnings = append(v.Warnings, "path_relinking.min_elite_for_pr below 2 has no effect: a relinking pair always needs at least 2 elite entries")
	}
	if opt.Coordinator.NumWorkerThreads == 0 {
		v.Warnings = append(v.Warnings, "coordinator.num_worker_threads is 0: only the protected main worker will run")
	}
	if opt.Coordinator.MinEliteSizeForWorkers > opt.Elite.Capacity {
		v.Warnings = append(v.Warnings, "coordinator.min_elite_size_for_workers exceeds elite.capacity: restartable workers will never launch")
	}

	if len(v.Errors) > 0 {
		return fmt.Errorf("configuration invalid: %d error(s), first: %s", len(v.Errors), v.Errors[0])
	}
	return nil
}

// HasWarnings reports whether the last Validate call produced warnings.
func (v *Validator) HasWarnings() bool { return len(v.Warnings) > 0 }
