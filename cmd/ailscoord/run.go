package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ailscvrp/core/pkg/config"
	"github.com/ailscvrp/core/pkg/coordinator"
	"github.com/ailscvrp/core/pkg/elite"
	"github.com/ailscvrp/core/pkg/metrics"
	"github.com/ailscvrp/core/pkg/pathrelink"
	"github.com/ailscvrp/core/pkg/reporting"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Args:  cobra.NoArgs,
	Short: "Run the AILS-II coordinator to its deadline",
	Long:  `Loads configuration, constructs (or generates) a CVRP instance, and runs the thread coordinator until its deadline.`,
	RunE:  runCoordinator,
}

func init() {
	runCmd.Flags().String("instance", "", "path to a CVRP instance file (omit to generate a synthetic one)")
	runCmd.Flags().Int("customers", 50, "customer count for a generated instance")
	runCmd.Flags().Float64("capacity", 100, "vehicle capacity for a generated instance")
	runCmd.Flags().String("format", "text", "progress output format (text, json, tui)")
	runCmd.Flags().Int64("seed", 0, "override baseSeed from config (0 keeps the config value)")
}

func runCoordinator(cmd *cobra.Command, args []string) error {
	instancePath, _ := cmd.Flags().GetString("instance")
	numCustomers, _ := cmd.Flags().GetInt("customers")
	capacity, _ := cmd.Flags().GetFloat64("capacity")
	outputFormat, _ := cmd.Flags().GetString("format")
	seedOverride, _ := cmd.Flags().GetInt64("seed")

	opt, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	if seedOverride != 0 {
		opt.BaseSeed = seedOverride
	}

	logLevel := reporting.LogLevel(opt.Logging.Level)
	if verbose {
		logLevel = reporting.LogLevelDebug
	}
	logger := reporting.NewLogger(reporting.LoggerConfig{
		Level:  logLevel,
		Format: reporting.LogFormat(opt.Logging.Format),
		Output: os.Stdout,
	})
	logger.Info("ailscoord starting", "version", version)

	inst, err := loadOrGenerateInstance(instancePath, numCustomers, capacity, opt.BaseSeed)
	if err != nil {
		return fmt.Errorf("load instance: %w", err)
	}
	logger.Info("instance ready", "name", inst.Name, "customers", inst.NumCustomers())

	var exporter *metrics.Exporter
	if opt.MetricsAddr != "" {
		exporter = metrics.New(metrics.Config{ListenAddr: opt.MetricsAddr})
		if err := exporter.Serve(); err != nil {
			return fmt.Errorf("start metrics exporter: %w", err)
		}
		logger.Info("metrics exporter listening", "addr", opt.MetricsAddr)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = exporter.Shutdown(shutdownCtx)
		}()
	}

	coord := coordinator.New(opt, inst, newRelocateLocalSearch(opt.BaseSeed), elite.QualitySelector{}, pathrelink.NoopPolisher{}, logger.GetZerologLogger())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	progress := reporting.NewProgressReporter(reporting.OutputFormat(outputFormat), logger)
	startTime := time.Now()
	summary := coord.Run(ctx)
	logger.Info("coordinator finished", "state", coord.State().String())

	report := reporting.NewRunReport(fmt.Sprintf("run-%d", startTime.Unix()), inst.Name, startTime, summary, nil)
	progress.ReportRunCompleted(&report)

	storage, err := reporting.NewStorage(opt.Reporting.OutputDir, opt.Reporting.KeepLastN, logger)
	if err != nil {
		return fmt.Errorf("create report storage: %w", err)
	}
	if _, err := storage.SaveReport(&report); err != nil {
		logger.Warn("failed to save report", "error", err)
	}

	if exporter != nil {
		exporter.SampleFromSummary(summary)
	}

	if summary.Best == nil {
		return fmt.Errorf("no feasible solution found within the time limit")
	}
	return nil
}
