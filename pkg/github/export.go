package github

import (
	"context"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Export is the on-disk shape of an issue export file. It lets the sync
// engine run against a recorded snapshot of a repository without any
// tracker transport.
type Export struct {
	Organization string         `yaml:"organization"`
	Repository   string         `yaml:"repository"`
	Issues       []*Issue       `yaml:"issues"`
	Projects     []ExportedInfo `yaml:"projects,omitempty"`
}

// ExportedInfo binds board metadata to an issue number inside an export.
type ExportedInfo struct {
	IssueNumber int         `yaml:"issue_number"`
	Project     ProjectInfo `yaml:"project"`
}

// ExportReader implements IssueReader and ProjectReader over an export
// file loaded once at construction.
type ExportReader struct {
	export   *Export
	byNumber map[int]*Issue
	projects map[int]*ProjectInfo
	pageSize int
}

// NewExportReader loads an export file and builds the lookup indexes.
func NewExportReader(path string) (*ExportReader, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &SourceError{
			Type:    "export_error",
			Message: "failed to read export file",
			Err:     err,
			Context: path,
		}
	}

	var export Export
	if err := yaml.Unmarshal(data, &export); err != nil {
		return nil, &SourceError{
			Type:    "export_error",
			Message: "failed to parse export file",
			Err:     err,
			Context: path,
		}
	}

	reader := &ExportReader{
		export:   &export,
		byNumber: make(map[int]*Issue, len(export.Issues)),
		projects: make(map[int]*ProjectInfo, len(export.Projects)),
		pageSize: 100,
	}

	for _, issue := range export.Issues {
		// Export-level org/repo are defaults for issues that omit them.
		if issue.Organization == "" {
			issue.Organization = export.Organization
		}
		if issue.Repository == "" {
			issue.Repository = export.Repository
		}
		reader.byNumber[issue.Number] = issue
	}
	for idx := range export.Projects {
		info := export.Projects[idx].Project
		reader.projects[export.Projects[idx].IssueNumber] = &info
	}

	return reader, nil
}

// GetIssue implements the IssueReader interface.
func (r *ExportReader) GetIssue(ctx context.Context, number int) (*Issue, error) {
	issue, exists := r.byNumber[number]
	if !exists {
		return nil, &SourceError{
			Type:    "not_found",
			Message: "issue not in export",
			Context: strconv.Itoa(number),
		}
	}
	return issue, nil
}

// ListIssues implements the IssueReader interface. Issues page in export
// order; the page token is the offset of the next page.
func (r *ExportReader) ListIssues(ctx context.Context, filter ListFilter, pageToken string) ([]*Issue, string, error) {
	start := 0
	if pageToken != "" {
		parsed, err := strconv.Atoi(pageToken)
		if err != nil {
			return nil, "", &SourceError{Type: "invalid_input", Message: "bad page token", Context: pageToken}
		}
		start = parsed
	}

	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = r.pageSize
	}

	filtered := make([]*Issue, 0, len(r.export.Issues))
	for _, issue := range r.export.Issues {
		if !filter.Matches(issue) {
			continue
		}
		filtered = append(filtered, issue)
	}

	if start >= len(filtered) {
		return nil, "", nil
	}

	end := start + pageSize
	next := ""
	if end < len(filtered) {
		next = strconv.Itoa(end)
	} else {
		end = len(filtered)
	}

	return filtered[start:end], next, nil
}

// ListComments implements the IssueReader interface.
func (r *ExportReader) ListComments(ctx context.Context, number int) ([]Comment, error) {
	issue, err := r.GetIssue(ctx, number)
	if err != nil {
		return nil, err
	}
	return issue.Comments, nil
}

// GetProjectInfo implements the ProjectReader interface.
func (r *ExportReader) GetProjectInfo(ctx context.Context, org, repo string, number int) (*ProjectInfo, error) {
	return r.projects[number], nil
}
