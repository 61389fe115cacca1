package github

import (
	"context"
	"fmt"
	"strconv"
)

// MockIssueReader provides a mock IssueReader for testing.
type MockIssueReader struct {
	Issues   map[int]*Issue
	PageSize int

	// Error injection
	GetIssueError   error
	ListIssuesError error

	// Call tracking
	GetIssueCalls   []int
	ListIssuesCalls []ListFilter
}

// NewMockIssueReader creates a mock reader with an empty issue set.
func NewMockIssueReader() *MockIssueReader {
	return &MockIssueReader{
		Issues:   make(map[int]*Issue),
		PageSize: 100,
	}
}

// AddIssue registers an issue with the mock.
func (m *MockIssueReader) AddIssue(issue *Issue) {
	m.Issues[issue.Number] = issue
}

// GetIssue implements the IssueReader interface.
func (m *MockIssueReader) GetIssue(ctx context.Context, number int) (*Issue, error) {
	m.GetIssueCalls = append(m.GetIssueCalls, number)

	if m.GetIssueError != nil {
		return nil, m.GetIssueError
	}

	issue, exists := m.Issues[number]
	if !exists {
		return nil, &SourceError{
			Type:    "not_found",
			Message: "issue not found",
			Context: fmt.Sprintf("#%d", number),
		}
	}
	return issue, nil
}

// ListIssues implements the IssueReader interface with deterministic
// number-ordered pagination.
func (m *MockIssueReader) ListIssues(ctx context.Context, filter ListFilter, pageToken string) ([]*Issue, string, error) {
	m.ListIssuesCalls = append(m.ListIssuesCalls, filter)

	if m.ListIssuesError != nil {
		return nil, "", m.ListIssuesError
	}

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
		pageSize = m.PageSize
	}

	all := m.sortedIssues()
	filtered := make([]*Issue, 0, len(all))
	for _, issue := range all {
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
func (m *MockIssueReader) ListComments(ctx context.Context, number int) ([]Comment, error) {
	issue, exists := m.Issues[number]
	if !exists {
		return nil, &SourceError{
			Type:    "not_found",
			Message: "issue not found",
			Context: fmt.Sprintf("#%d", number),
		}
	}
	return issue.Comments, nil
}

func (m *MockIssueReader) sortedIssues() []*Issue {
	max := 0
	for n := range m.Issues {
		if n > max {
			max = n
		}
	}
	out := make([]*Issue, 0, len(m.Issues))
	for n := 1; n <= max; n++ {
		if issue, ok := m.Issues[n]; ok {
			out = append(out, issue)
		}
	}
	return out
}

// MockIssueWriter provides a mock IssueWriter for testing.
type MockIssueWriter struct {
	AppendError error

	// BackReferences records marker text appended per issue number.
	BackReferences map[int][]string
}

// NewMockIssueWriter creates a mock writer.
func NewMockIssueWriter() *MockIssueWriter {
	return &MockIssueWriter{BackReferences: make(map[int][]string)}
}

// AppendBackReference implements the IssueWriter interface.
func (m *MockIssueWriter) AppendBackReference(ctx context.Context, number int, marker string) error {
	if m.AppendError != nil {
		return m.AppendError
	}
	m.BackReferences[number] = append(m.BackReferences[number], marker)
	return nil
}

// MockProjectReader provides a mock ProjectReader for testing.
type MockProjectReader struct {
	Projects map[int]*ProjectInfo
	GetError error

	// Call tracking
	GetCalls []int
}

// NewMockProjectReader creates a mock project reader.
func NewMockProjectReader() *MockProjectReader {
	return &MockProjectReader{Projects: make(map[int]*ProjectInfo)}
}

// SetProjectInfo registers board membership for an issue number.
func (m *MockProjectReader) SetProjectInfo(number int, info *ProjectInfo) {
	m.Projects[number] = info
}

// GetProjectInfo implements the ProjectReader interface. Issues with no
// registered board return (nil, nil).
func (m *MockProjectReader) GetProjectInfo(ctx context.Context, org, repo string, number int) (*ProjectInfo, error) {
	m.GetCalls = append(m.GetCalls, number)
	if m.GetError != nil {
		return nil, m.GetError
	}
	return m.Projects[number], nil
}
