package sync

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Report is the persisted record of one batch sync run.
type Report struct {
	StartedAt    time.Time   `yaml:"started_at"`
	FinishedAt   time.Time   `yaml:"finished_at"`
	Organization string      `yaml:"organization"`
	Repository   string      `yaml:"repository"`
	TeamProject  string      `yaml:"team_project"`
	DryRun       bool        `yaml:"dry_run,omitempty"`
	Result       BatchResult `yaml:"result"`
}

// WriteReport serializes a batch report to a YAML file.
func WriteReport(path string, report *Report) error {
	data, err := yaml.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write report to %s: %w", path, err)
	}
	return nil
}

// ReadReport loads a previously written batch report.
func ReadReport(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read report from %s: %w", path, err)
	}
	var report Report
	if err := yaml.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("failed to parse report %s: %w", path, err)
	}
	return &report, nil
}
