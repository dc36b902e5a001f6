package config

import "time"

// Options is the coordinator's full configuration record, matching
// spec.md §6's table grouped into the same kind of concern-sectioned
// sub-structs as the teacher's own Config (Framework/Kurtosis/Docker/...).
type Options struct {
	Coordinator   CoordinatorOptions   `yaml:"coordinator"`
	Elite         EliteOptions         `yaml:"elite"`
	PathRelinking PathRelinkingOptions `yaml:"path_relinking"`
	Logging       LoggingOptions       `yaml:"logging"`
	Reporting     ReportingOptions     `yaml:"reporting"`

	BaseSeed int64 `yaml:"base_seed"`

	// MetricsAddr is the listen address for the Prometheus exposition
	// endpoint (e.g. ":9090"). Empty disables the metrics server.
	MetricsAddr string `yaml:"metrics_addr"`
}

// CoordinatorOptions configures the thread coordinator's lifecycle.
type CoordinatorOptions struct {
	Enabled                bool          `yaml:"enabled"`
	NumWorkerThreads       int           `yaml:"num_worker_threads"`
	MinEliteSizeForWorkers int           `yaml:"min_elite_size_for_workers"`
	StagnationThreshold    int           `yaml:"stagnation_threshold"`
	CompetitiveThreshold   float64       `yaml:"competitive_threshold"`
	NotifyMainThread       bool          `yaml:"notify_main_thread"`
	TimeLimit              time.Duration `yaml:"time_limit"`
}

// EliteOptions configures the bounded elite pool.
type EliteOptions struct {
	Capacity     int     `yaml:"capacity"`
	Beta         float64 `yaml:"beta"`
	MinDiversity float64 `yaml:"min_diversity"`
}

// PathRelinkingOptions configures the optional path-relinking worker.
type PathRelinkingOptions struct {
	Enabled       bool `yaml:"enabled"`
	StartDelay    int  `yaml:"start_delay"`
	Frequency     int  `yaml:"frequency"`
	MinEliteForPR int  `yaml:"min_elite_for_pr"`
}

// LoggingOptions configures the zerolog-backed structured logger.
type LoggingOptions struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// ReportingOptions configures where run reports are persisted.
type ReportingOptions struct {
	OutputDir string `yaml:"output_dir"`
	KeepLastN int    `yaml:"keep_last_n"`
}

// Default returns the option defaults from spec.md §6's table.
func Default() Options {
	return Options{
		Coordinator: CoordinatorOptions{
			Enabled:                false,
			NumWorkerThreads:       2,
			MinEliteSizeForWorkers: 3,
			StagnationThreshold:    2000,
			CompetitiveThreshold:   0.02,
			NotifyMainThread:       true,
			TimeLimit:              60 * time.Second,
		},
		Elite: EliteOptions{
			Capacity:     20,
			Beta:         0.3,
			MinDiversity: 0.1,
		},
		PathRelinking: PathRelinkingOptions{
			Enabled:       true,
			StartDelay:    100,
			Frequency:     50,
			MinEliteForPR: 2,
		},
		BaseSeed: 1,
		Logging: LoggingOptions{
			Level:  "info",
			Format: "text",
		},
		Reporting: ReportingOptions{
			OutputDir: "./reports",
			KeepLastN: 20,
		},
	}
}
