package reporting

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// OutputFormat represents the progress output format.
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
	FormatTUI  OutputFormat = "tui"
)

// ProgressReporter reports coordinator run progress.
type ProgressReporter struct {
	format OutputFormat
	logger *Logger
}

// NewProgressReporter creates a new progress reporter.
func NewProgressReporter(format OutputFormat, logger *Logger) *ProgressReporter {
	return &ProgressReporter{
		format: format,
		logger: logger,
	}
}

// ReportState reports the current run state.
func (pr *ProgressReporter) ReportState(state LiveRunState) {
	switch pr.format {
	case FormatJSON:
		pr.reportJSON(state)
	case FormatTUI:
		pr.reportTUI(state)
	default:
		pr.reportText(state)
	}
}

// ReportStateTransition reports a coordinator state transition.
func (pr *ProgressReporter) ReportStateTransition(from, to string) {
	switch pr.format {
	case FormatJSON:
		data, _ := json.Marshal(map[string]interface{}{
			"event":      "state_transition",
			"from_state": from,
			"to_state":   to,
			"timestamp":  time.Now(),
		})
		fmt.Println(string(data))
	case FormatTUI:
		pr.clearLine()
		fmt.Printf("🔄 State Transition: %s → %s\n", from, to)
	default:
		fmt.Printf("[STATE] %s → %s\n", from, to)
	}
}

// ReportWorkerRestarted reports a restartable worker being reseeded by
// the coordinator's monitoring loop.
func (pr *ProgressReporter) ReportWorkerRestarted(workerID int, restartCount int64) {
	switch pr.format {
	case FormatJSON:
		data, _ := json.Marshal(map[string]interface{}{
			"event":         "worker_restarted",
			"worker_id":     workerID,
			"restart_count": restartCount,
			"timestamp":     time.Now(),
		})
		fmt.Println(string(data))
	case FormatTUI:
		pr.clearLine()
		fmt.Printf("🔁 Worker %d restarted (restart #%d)\n", workerID, restartCount)
	default:
		fmt.Printf("[RESTART] worker=%d count=%d\n", workerID, restartCount)
	}
}

// ReportEliteInsertion reports a solution entering the elite set.
func (pr *ProgressReporter) ReportEliteInsertion(source string, f float64, eliteSize int) {
	switch pr.format {
	case FormatJSON:
		data, _ := json.Marshal(map[string]interface{}{
			"event":      "elite_insertion",
			"source":     source,
			"f":          f,
			"elite_size": eliteSize,
			"timestamp":  time.Now(),
		})
		fmt.Println(string(data))
	case FormatTUI:
		pr.clearLine()
		fmt.Printf("⭐ Elite insertion from %s: f=%.2f (pool size %d)\n", source, f, eliteSize)
	default:
		fmt.Printf("[ELITE] source=%s f=%.2f size=%d\n", source, f, eliteSize)
	}
}

// ReportRunCompleted reports run completion.
func (pr *ProgressReporter) ReportRunCompleted(report *RunReport) {
	switch pr.format {
	case FormatJSON:
		data, _ := json.Marshal(map[string]interface{}{
			"event":     "run_completed",
			"report":    report,
			"timestamp": time.Now(),
		})
		fmt.Println(string(data))
	case FormatTUI:
		pr.clearLine()
		pr.printRunSummary(report)
	default:
		pr.printTextSummary(report)
	}
}

// reportText outputs progress in plain text format.
func (pr *ProgressReporter) reportText(state LiveRunState) {
	elapsed := state.Elapsed.Round(time.Second)
	fmt.Printf("[%s] %s | Elapsed: %s | elite=%d",
		time.Now().Format("15:04:05"),
		state.State,
		elapsed,
		state.EliteSize,
	)
	if state.HasBest {
		fmt.Printf(" | best_f=%.2f", state.GlobalBestF)
	}
	fmt.Println()
}

// reportJSON outputs progress in JSON format.
func (pr *ProgressReporter) reportJSON(state LiveRunState) {
	data, err := json.Marshal(state)
	if err != nil {
		pr.logger.Error("Failed to marshal state", "error", err)
		return
	}
	fmt.Println(string(data))
}

// reportTUI outputs progress in terminal UI format.
func (pr *ProgressReporter) reportTUI(state LiveRunState) {
	pr.clearScreen()

	fmt.Println(strings.Repeat("=", 80))
	fmt.Printf("   AILS-II Run: %s\n", state.InstanceName)
	fmt.Printf("   Run ID: %s\n", state.RunID)
	fmt.Println(strings.Repeat("=", 80))
	fmt.Println()

	fmt.Printf("📊 State: %s\n", state.State)
	fmt.Printf("⏱️  Elapsed: %s\n", state.Elapsed.Round(time.Second))
	fmt.Printf("🗃️  Elite pool: %d\n", state.EliteSize)
	if state.HasBest {
		fmt.Printf("🏆 Global best f: %.2f\n", state.GlobalBestF)
	}
	fmt.Println()

	if len(state.Workers) > 0 {
		fmt.Printf("👷 Workers (%d):\n", len(state.Workers))
		for _, w := range state.Workers {
			fmt.Printf("   • #%d iterations=%d restarts=%d inserts=%d best_f=%.2f\n",
				w.ID, w.Iterations, w.Restarts, w.EliteInserts, w.BestF)
		}
		fmt.Println()
	}

	fmt.Println(strings.Repeat("─", 80))
}

// printRunSummary prints a run summary in TUI format.
func (pr *ProgressReporter) printRunSummary(report *RunReport) {
	fmt.Println()
	fmt.Println(strings.Repeat("=", 80))
	fmt.Println("   RUN SUMMARY")
	fmt.Println(strings.Repeat("=", 80))
	fmt.Println()

	statusIcon := "✅"
	statusText := "COMPLETED"
	if !report.Success {
		statusIcon = "❌"
		statusText = "FAILED"
	}

	fmt.Printf("%s Run %s\n", statusIcon, statusText)
	fmt.Printf("   Instance: %s\n", report.InstanceName)
	fmt.Printf("   Run ID: %s\n", report.RunID)
	fmt.Printf("   Duration: %s\n", report.Duration)
	fmt.Println()

	if report.Success {
		fmt.Printf("🏆 Best cost: %.2f over %d routes\n", report.BestCost, report.NumRoutes)
		fmt.Println()
	}

	fmt.Printf("🗃️  Elite pool size: %d\n", report.EliteSize)
	fmt.Printf("🔁 Total iterations: %d, total restarts: %d\n", report.TotalIterations, report.TotalRestarts)
	fmt.Println()

	if len(report.Workers) > 0 {
		fmt.Printf("👷 Workers (%d):\n", len(report.Workers))
		for _, w := range report.Workers {
			fmt.Printf("   • #%d iterations=%d restarts=%d inserts=%d best_f=%.2f\n",
				w.ID, w.Iterations, w.Restarts, w.EliteInserts, w.BestF)
		}
		fmt.Println()
	}

	fmt.Println(strings.Repeat("=", 80))
}

// printTextSummary prints a run summary in plain text format.
func (pr *ProgressReporter) printTextSummary(report *RunReport) {
	status := "COMPLETED"
	if !report.Success {
		status = "FAILED"
	}

	fmt.Printf("\n[RUN SUMMARY] %s\n", status)
	fmt.Printf("  Instance: %s\n", report.InstanceName)
	fmt.Printf("  Run ID: %s\n", report.RunID)
	fmt.Printf("  Duration: %s\n", report.Duration)
	if report.Success {
		fmt.Printf("  Best cost: %.2f over %d routes\n", report.BestCost, report.NumRoutes)
	} else if report.Message != "" {
		fmt.Printf("  Message: %s\n", report.Message)
	}
	fmt.Printf("  Elite pool size: %d\n", report.EliteSize)
	fmt.Printf("  Total iterations: %d, total restarts: %d\n", report.TotalIterations, report.TotalRestarts)
	fmt.Println()
}

// clearScreen clears the terminal screen.
func (pr *ProgressReporter) clearScreen() {
	fmt.Print("\033[2J\033[H")
}

// clearLine clears the current line.
func (pr *ProgressReporter) clearLine() {
	fmt.Print("\033[K")
}
