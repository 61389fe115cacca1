package workitem

import "context"

// Store defines the work item operations the sync engine depends on.
// This enables dependency injection and testing with mock implementations.
type Store interface {
	// Query returns all work items satisfying the predicate.
	Query(ctx context.Context, query Query) ([]*WorkItem, error)

	// Create applies a patch document to a new work item of the given
	// type and returns the stored result.
	Create(ctx context.Context, workItemType string, doc PatchDocument) (*WorkItem, error)

	// Update applies a patch document to an existing work item.
	Update(ctx context.Context, id int, doc PatchDocument) (*WorkItem, error)

	// AddComment appends a discussion comment to a work item.
	AddComment(ctx context.Context, id int, text string) error
}

// IterationStore defines the iteration operations consumed by the
// iteration resolver.
type IterationStore interface {
	// ListAll returns every iteration configured for the team project.
	ListAll(ctx context.Context) ([]*Iteration, error)

	// Create adds a new iteration and returns the stored result.
	Create(ctx context.Context, iteration *Iteration) (*Iteration, error)
}
