package iteration

import (
	"context"
	"strings"
	"time"

	"github.com/planbridge/boards-sync/pkg/workitem"
)

// MockResolver provides a mock IterationResolver for testing.
type MockResolver struct {
	Iterations map[string]*workitem.Iteration

	LoadAllError error
	CreateError  error

	// Call tracking
	CreateIfAbsentCalls []string
	FromSprintCalls     []SprintInfo
}

// NewMockResolver creates a mock resolver, optionally pre-seeded.
func NewMockResolver(existing ...*workitem.Iteration) *MockResolver {
	m := &MockResolver{Iterations: make(map[string]*workitem.Iteration)}
	for _, iter := range existing {
		m.Iterations[strings.ToLower(iter.Name)] = iter
	}
	return m
}

// LoadAll implements the IterationResolver interface.
func (m *MockResolver) LoadAll(ctx context.Context) error {
	return m.LoadAllError
}

// Exists implements the IterationResolver interface.
func (m *MockResolver) Exists(ctx context.Context, name string) (bool, error) {
	if m.LoadAllError != nil {
		return false, m.LoadAllError
	}
	_, ok := m.Iterations[strings.ToLower(name)]
	return ok, nil
}

// Get implements the IterationResolver interface.
func (m *MockResolver) Get(ctx context.Context, name string) (*workitem.Iteration, error) {
	if m.LoadAllError != nil {
		return nil, m.LoadAllError
	}
	return m.Iterations[strings.ToLower(name)], nil
}

// CreateIfAbsent implements the IterationResolver interface.
func (m *MockResolver) CreateIfAbsent(ctx context.Context, name string, start, finish time.Time, path string) (*workitem.Iteration, error) {
	m.CreateIfAbsentCalls = append(m.CreateIfAbsentCalls, name)
	if m.CreateError != nil {
		return nil, m.CreateError
	}

	key := strings.ToLower(name)
	if existing, ok := m.Iterations[key]; ok {
		return existing, nil
	}
	if path == "" {
		path = name
	}
	created := &workitem.Iteration{Name: name, Path: path, StartDate: start, FinishDate: finish}
	m.Iterations[key] = created
	return created, nil
}

// CreateFromSprintInfo implements the IterationResolver interface.
func (m *MockResolver) CreateFromSprintInfo(ctx context.Context, info SprintInfo, defaultDurationDays int) (*workitem.Iteration, error) {
	m.FromSprintCalls = append(m.FromSprintCalls, info)
	if info.Name == "" {
		return nil, nil
	}
	start := info.StartDate
	if start.IsZero() {
		start = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	return m.CreateIfAbsent(ctx, info.Name, start, start.AddDate(0, 0, defaultDurationDays), "")
}
