package sync

import (
	"path/filepath"
	"testing"
	"time"
)

func TestReportRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.yaml")

	written := &Report{
		StartedAt:    time.Date(2024, 10, 13, 9, 0, 0, 0, time.UTC),
		FinishedAt:   time.Date(2024, 10, 13, 9, 5, 0, 0, time.UTC),
		Organization: "octo",
		Repository:   "widgets",
		TeamProject:  "Siwar",
		Result: BatchResult{
			TotalIssues:     10,
			ProcessedIssues: 10,
			Created:         6,
			Updated:         3,
			Skipped:         1,
			Duration:        5 * time.Minute,
			Errors: []BatchError{
				{IssueKey: "octo/widgets#9", Step: "process", Message: "store unreachable"},
			},
			Skips: []BatchSkip{
				{IssueKey: "octo/widgets#4", Reason: "pull request"},
			},
		},
	}

	if err := WriteReport(path, written); err != nil {
		t.Fatalf("WriteReport() error = %v", err)
	}

	read, err := ReadReport(path)
	if err != nil {
		t.Fatalf("ReadReport() error = %v", err)
	}

	if read.Organization != "octo" || read.TeamProject != "Siwar" {
		t.Errorf("scope = %s/%s", read.Organization, read.TeamProject)
	}
	if read.Result.Created != 6 || read.Result.Skipped != 1 {
		t.Errorf("result = %+v", read.Result)
	}
	if len(read.Result.Errors) != 1 || read.Result.Errors[0].IssueKey != "octo/widgets#9" {
		t.Errorf("errors = %+v", read.Result.Errors)
	}
	if len(read.Result.Skips) != 1 || read.Result.Skips[0].Reason != "pull request" {
		t.Errorf("skips = %+v", read.Result.Skips)
	}
	if !read.StartedAt.Equal(written.StartedAt) {
		t.Errorf("StartedAt = %v", read.StartedAt)
	}
}

func TestReadReport_MissingFile(t *testing.T) {
	if _, err := ReadReport(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing report")
	}
}
