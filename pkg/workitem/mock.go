package workitem

import "context"

// MockStore provides a mock Store implementation for testing.
type MockStore struct {
	QueryFunc      func(ctx context.Context, query Query) ([]*WorkItem, error)
	CreateFunc     func(ctx context.Context, workItemType string, doc PatchDocument) (*WorkItem, error)
	UpdateFunc     func(ctx context.Context, id int, doc PatchDocument) (*WorkItem, error)
	AddCommentFunc func(ctx context.Context, id int, text string) error

	// Call tracking
	QueryCalls   []Query
	CreateCalls  []CreateCall
	UpdateCalls  []UpdateCall
	CommentCalls []CommentCall
}

// CreateCall tracks calls to Create.
type CreateCall struct {
	Type string
	Doc  PatchDocument
}

// UpdateCall tracks calls to Update.
type UpdateCall struct {
	ID  int
	Doc PatchDocument
}

// CommentCall tracks calls to AddComment.
type CommentCall struct {
	ID   int
	Text string
}

// NewMockStore creates a new mock store.
func NewMockStore() *MockStore {
	return &MockStore{}
}

// Query implements the Store interface.
func (m *MockStore) Query(ctx context.Context, query Query) ([]*WorkItem, error) {
	m.QueryCalls = append(m.QueryCalls, query)
	if m.QueryFunc != nil {
		return m.QueryFunc(ctx, query)
	}
	return nil, nil
}

// Create implements the Store interface.
func (m *MockStore) Create(ctx context.Context, workItemType string, doc PatchDocument) (*WorkItem, error) {
	m.CreateCalls = append(m.CreateCalls, CreateCall{Type: workItemType, Doc: doc})
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, workItemType, doc)
	}
	return &WorkItem{ID: len(m.CreateCalls), Rev: 1, Type: workItemType}, nil
}

// Update implements the Store interface.
func (m *MockStore) Update(ctx context.Context, id int, doc PatchDocument) (*WorkItem, error) {
	m.UpdateCalls = append(m.UpdateCalls, UpdateCall{ID: id, Doc: doc})
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, doc)
	}
	return &WorkItem{ID: id, Rev: 2}, nil
}

// AddComment implements the Store interface.
func (m *MockStore) AddComment(ctx context.Context, id int, text string) error {
	m.CommentCalls = append(m.CommentCalls, CommentCall{ID: id, Text: text})
	if m.AddCommentFunc != nil {
		return m.AddCommentFunc(ctx, id, text)
	}
	return nil
}

// MockIterationStore provides a mock IterationStore for testing.
type MockIterationStore struct {
	Iterations []*Iteration

	ListAllError error
	CreateError  error

	// Call tracking
	ListAllCalls int
	CreateCalls  []*Iteration
}

// NewMockIterationStore creates a new mock iteration store.
func NewMockIterationStore(existing ...*Iteration) *MockIterationStore {
	return &MockIterationStore{Iterations: existing}
}

// ListAll implements the IterationStore interface.
func (m *MockIterationStore) ListAll(ctx context.Context) ([]*Iteration, error) {
	m.ListAllCalls++
	if m.ListAllError != nil {
		return nil, m.ListAllError
	}
	return m.Iterations, nil
}

// Create implements the IterationStore interface.
func (m *MockIterationStore) Create(ctx context.Context, iteration *Iteration) (*Iteration, error) {
	m.CreateCalls = append(m.CreateCalls, iteration)
	if m.CreateError != nil {
		return nil, m.CreateError
	}
	stored := *iteration
	if stored.Path == "" {
		stored.Path = stored.Name
	}
	m.Iterations = append(m.Iterations, &stored)
	return &stored, nil
}
