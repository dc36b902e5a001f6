package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ailscvrp/core/pkg/config"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	opt, err := config.Load("/nonexistent/path/ailscoord.yaml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := config.Default()
	if opt != want {
		t.Fatalf("opt = %+v, want defaults %+v", opt, want)
	}
}

// The nested, snake_case YAML shape documented in SPEC_FULL.md §6.1 must
// decode cleanly against the real Options struct under strict
// (KnownFields) parsing; a documented example that the struct itself
// rejects is a schema bug.
func TestLoadDecodesDocumentedConfigExample(t *testing.T) {
	const example = `
coordinator:
  enabled: true
  num_worker_threads: 6
  min_elite_size_for_workers: 3
  stagnation_threshold: 2000
  competitive_threshold: 0.02
  notify_main_thread: true
  time_limit: 60s
elite:
  capacity: 10
  beta: 0.3
  min_diversity: 0.1
path_relinking:
  enabled: true
  start_delay: 100
  frequency: 50
  min_elite_for_pr: 2
logging:
  level: info
  format: text
reporting:
  output_dir: ./reports
  keep_last_n: 20
metrics_addr: ""
`
	path := filepath.Join(t.TempDir(), "ailscoord.yaml")
	if err := os.WriteFile(path, []byte(example), 0o644); err != nil {
		t.Fatalf("write example config: %v", err)
	}

	opt, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load rejected the documented config example: %v", err)
	}

	if !opt.Coordinator.Enabled || opt.Coordinator.NumWorkerThreads != 6 {
		t.Fatalf("coordinator section not decoded: %+v", opt.Coordinator)
	}
	if opt.Elite.Capacity != 10 || opt.Elite.MinDiversity != 0.1 {
		t.Fatalf("elite section not decoded: %+v", opt.Elite)
	}
	if opt.PathRelinking.MinEliteForPR != 2 {
		t.Fatalf("path_relinking section not decoded: %+v", opt.PathRelinking)
	}
	if opt.Coordinator.TimeLimit != 60*time.Second {
		t.Fatalf("coordinator.time_limit = %v, want 60s", opt.Coordinator.TimeLimit)
	}
	if opt.Reporting.OutputDir != "./reports" || opt.Reporting.KeepLastN != 20 {
		t.Fatalf("reporting section not decoded: %+v", opt.Reporting)
	}
}

func TestValidateRejectsOutOfRangeThresholds(t *testing.T) {
	opt := config.Default()
	opt.Coordinator.CompetitiveThreshold = 1.5

	v := config.NewValidator()
	if err := v.Validate(opt); err == nil {
		t.Fatal("expected validation error for out-of-range competitive_threshold")
	}
}

func TestValidateWarnsOnMinEliteForPRBelowTwo(t *testing.T) {
	opt := config.Default()
	opt.PathRelinking.MinEliteForPR = 1

	v := config.NewValidator()
	if err := v.Validate(opt); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !v.HasWarnings() {
		t.Fatal("expected a warning for path_relinking.min_elite_for_pr < 2")
	}
}

func TestValidateWarnsOnSeedThresholdAboveCapacity(t *testing.T) {
	opt := config.Default()
	opt.Elite.Capacity = 5
	opt.Coordinator.MinEliteSizeForWorkers = 10

	v := config.NewValidator()
	if err := v.Validate(opt); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !v.HasWarnings() {
		t.Fatal("expected a warning when min_elite_size_for_workers exceeds elite.capacity")
	}
}

func TestValidateAcceptsDefaults(t *testing.T) {
	v := config.NewValidator()
	if err := v.Validate(config.Default()); err != nil {
		t.Fatalf("expected defaults to validate cleanly, got: %v", err)
	}
}
