package reporting

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// ReportFormat represents the report output format.
type ReportFormat string

const (
	ReportFormatText ReportFormat = "text"
	ReportFormatJSON ReportFormat = "json"
)

// Formatter generates formatted reports from run data.
type Formatter struct {
	logger *Logger
}

// NewFormatter creates a new report formatter.
func NewFormatter(logger *Logger) *Formatter {
	return &Formatter{
		logger: logger,
	}
}

// GenerateReport generates a report in the specified format.
func (f *Formatter) GenerateReport(report *RunReport, format ReportFormat, outputPath string) error {
	switch format {
	case ReportFormatText:
		return f.generateTextReport(report, outputPath)
	case ReportFormatJSON:
		return fmt.Errorf("JSON format is automatically saved by storage")
	default:
		return fmt.Errorf("unsupported report format: %s", format)
	}
}

// generateTextReport generates a plain text report.
func (f *Formatter) generateTextReport(report *RunReport, outputPath string) error {
	var buf bytes.Buffer

	buf.WriteString(strings.Repeat("=", 80) + "\n")
	buf.WriteString("   AILS-II RUN REPORT\n")
	buf.WriteString(strings.Repeat("=", 80) + "\n\n")

	status := "COMPLETED"
	if !report.Success {
		status = "FAILED"
	}
	if report.Status == StatusStopped {
		status = "STOPPED"
	}

	buf.WriteString("RUN SUMMARY\n")
	buf.WriteString(strings.Repeat("-", 80) + "\n")
	buf.WriteString(fmt.Sprintf("Status:       %s\n", status))
	buf.WriteString(fmt.Sprintf("Run ID:       %s\n", report.RunID))
	buf.WriteString(fmt.Sprintf("Instance:     %s\n", report.InstanceName))
	buf.WriteString(fmt.Sprintf("Start Time:   %s\n", report.StartTime.Format("2006-01-02 15:04:05")))
	buf.WriteString(fmt.Sprintf("End Time:     %s\n", report.EndTime.Format("2006-01-02 15:04:05")))
	buf.WriteString(fmt.Sprintf("Duration:     %s\n", report.Duration))
	if report.Message != "" {
		buf.WriteString(fmt.Sprintf("Message:      %s\n", report.Message))
	}
	buf.WriteString("\n")

	if report.Success {
		buf.WriteString("BEST SOLUTION\n")
		buf.WriteString(strings.Repeat("-", 80) + "\n")
		buf.WriteString(fmt.Sprintf("Cost:   %.2f\n", report.BestCost))
		buf.WriteString(fmt.Sprintf("Routes: %d\n", report.NumRoutes))
		for i, route := range report.Routes {
			buf.WriteString(fmt.Sprintf("  %d: %v\n", i, route))
		}
		buf.WriteString("\n")
	}

	buf.WriteString("THREAD POOL\n")
	buf.WriteString(strings.Repeat("-", 80) + "\n")
	buf.WriteString(fmt.Sprintf("Elite pool size:  %d\n", report.EliteSize))
	buf.WriteString(fmt.Sprintf("Total iterations: %d\n", report.TotalIterations))
	buf.WriteString(fmt.Sprintf("Total restarts:   %d\n", report.TotalRestarts))
	buf.WriteString("\n")

	if len(report.Workers) > 0 {
		buf.WriteString("WORKERS\n")
		buf.WriteString(strings.Repeat("-", 80) + "\n")
		for _, w := range report.Workers {
			buf.WriteString(fmt.Sprintf("#%d  iterations=%-8d restarts=%-4d inserts=%-4d best_f=%.2f\n",
				w.ID, w.Iterations, w.Restarts, w.EliteInserts, w.BestF))
		}
		buf.WriteString("\n")
	}

	if len(report.Errors) > 0 {
		buf.WriteString("ERRORS\n")
		buf.WriteString(strings.Repeat("-", 80) + "\n")
		for i, err := range report.Errors {
			buf.WriteString(fmt.Sprintf("%d. %s\n", i+1, err))
		}
		buf.WriteString("\n")
	}

	buf.WriteString(strings.Repeat("=", 80) + "\n")
	buf.WriteString(fmt.Sprintf("Generated: %s\n", time.Now().Format("2006-01-02 15:04:05")))
	buf.WriteString(strings.Repeat("=", 80) + "\n")

	if err := os.WriteFile(outputPath, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write text report: %w", err)
	}

	f.logger.Info("Text report generated", "path", outputPath)
	return nil
}

// CompareReports generates a comparison report for multiple runs.
func (f *Formatter) CompareReports(reports []*RunReport, outputPath string) error {
	if len(reports) < 2 {
		return fmt.Errorf("need at least 2 reports to compare")
	}

	var buf bytes.Buffer

	buf.WriteString(strings.Repeat("=", 80) + "\n")
	buf.WriteString("   AILS-II RUN COMPARISON\n")
	buf.WriteString(strings.Repeat("=", 80) + "\n\n")

	sort.Slice(reports, func(i, j int) bool {
		return reports[i].StartTime.Before(reports[j].StartTime)
	})

	buf.WriteString("RUN SUMMARY\n")
	buf.WriteString(strings.Repeat("-", 80) + "\n")
	buf.WriteString(fmt.Sprintf("%-20s %-15s %-12s %-10s %-12s\n",
		"Run ID", "Instance", "Status", "Duration", "Best Cost"))
	buf.WriteString(strings.Repeat("-", 80) + "\n")

	for _, report := range reports {
		status := "COMPLETED"
		if !report.Success {
			status = "FAILED"
		}
		buf.WriteString(fmt.Sprintf("%-20s %-15s %-12s %-10s %.2f\n",
			report.RunID[:min(20, len(report.RunID))],
			report.InstanceName[:min(15, len(report.InstanceName))],
			status,
			report.Duration,
			report.BestCost,
		))
	}
	buf.WriteString("\n")

	if err := os.WriteFile(outputPath, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write comparison report: %w", err)
	}

	f.logger.Info("Comparison report generated", "path", outputPath)
	return nil
}

// GetReportPath generates a report file path based on a run report and format.
func GetReportPath(report *RunReport, format ReportFormat, outputDir string) string {
	timestamp := report.StartTime.Format("20060102-150405")
	ext := string(format)
	filename := fmt.Sprintf("report-%s-%s.%s", timestamp, report.RunID, ext)
	return filepath.Join(outputDir, filename)
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
