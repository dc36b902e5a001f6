package reporting

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// Storage handles persistence of run reports.
type Storage struct {
	outputDir string
	keepLastN int
	logger    *Logger
}

// NewStorage creates a new storage instance.
func NewStorage(outputDir string, keepLastN int, logger *Logger) (*Storage, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	return &Storage{
		outputDir: outputDir,
		keepLastN: keepLastN,
		logger:    logger,
	}, nil
}

// SaveReport saves a run report to a JSON file.
func (s *Storage) SaveReport(report *RunReport) (string, error) {
	timestamp := report.StartTime.Format("20060102-150405")
	filename := fmt.Sprintf("run-%s-%s.json", timestamp, report.RunID)
	path := filepath.Join(s.outputDir, filename)

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal report: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write report file: %w", err)
	}

	s.logger.Info("Run report saved", "path", path)

	if s.keepLastN > 0 {
		if err := s.cleanupOldReports(); err != nil {
			s.logger.Warn("Failed to cleanup old reports", "error", err)
		}
	}

	return path, nil
}

// LoadReport loads a run report from a JSON file.
func (s *Storage) LoadReport(path string) (*RunReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read report file: %w", err)
	}

	var report RunReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("failed to unmarshal report: %w", err)
	}

	return &report, nil
}

// ListReports lists all run reports in the output directory.
func (s *Storage) ListReports() ([]ReportSummary, error) {
	entries, err := os.ReadDir(s.outputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read output directory: %w", err)
	}

	summaries := make([]ReportSummary, 0)
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}

		path := filepath.Join(s.outputDir, entry.Name())
		report, err := s.LoadReport(path)
		if err != nil {
			s.logger.Warn("Failed to load report", "path", path, "error", err)
			continue
		}

		summaries = append(summaries, ReportSummary{
			RunID:        report.RunID,
			InstanceName: report.InstanceName,
			StartTime:    report.StartTime,
			Duration:     report.Duration,
			Status:       report.Status,
			Success:      report.Success,
			BestCost:     report.BestCost,
			Filepath:     path,
		})
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].StartTime.After(summaries[j].StartTime)
	})

	return summaries, nil
}

// FindReportByRunID finds a report by run ID.
func (s *Storage) FindReportByRunID(runID string) (*RunReport, error) {
	summaries, err := s.ListReports()
	if err != nil {
		return nil, err
	}

	for _, summary := range summaries {
		if summary.RunID == runID {
			return s.LoadReport(summary.Filepath)
		}
	}

	return nil, fmt.Errorf("report not found for run ID: %s", runID)
}

// cleanupOldReports removes old report files, keeping only the last N.
func (s *Storage) cleanupOldReports() error {
	summaries, err := s.ListReports()
	if err != nil {
		return err
	}

	if len(summaries) <= s.keepLastN {
		return nil
	}

	toDelete := summaries[s.keepLastN:]
	for _, summary := range toDelete {
		if err := os.Remove(summary.Filepath); err != nil {
			s.logger.Warn("Failed to delete old report", "path", summary.Filepath, "error", err)
		} else {
			s.logger.Debug("Deleted old report", "path", summary.Filepath)
		}
	}

	return nil
}

// GetOutputDir returns the output directory path.
func (s *Storage) GetOutputDir() string {
	return s.outputDir
}

// ReportSummary contains a summary of a run report.
type ReportSummary struct {
	RunID        string    `json:"run_id"`
	InstanceName string    `json:"instance_name"`
	StartTime    time.Time `json:"start_time"`
	Duration     string    `json:"duration"`
	Status       RunStatus `json:"status"`
	Success      bool      `json:"success"`
	BestCost     float64   `json:"best_cost"`
	Filepath     string    `json:"filepath"`
}
