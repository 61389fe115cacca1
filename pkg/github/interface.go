package github

import "context"

// IssueReader defines the read side of the source tracker.
// Transport (REST/GraphQL clients, authentication) lives behind this
// interface; the sync engine only consumes snapshots.
type IssueReader interface {
	// GetIssue fetches a single issue by number.
	GetIssue(ctx context.Context, number int) (*Issue, error)

	// ListIssues returns one page of issues matching the filter. An empty
	// page token starts from the beginning; the returned token is empty
	// when no pages remain.
	ListIssues(ctx context.Context, filter ListFilter, pageToken string) ([]*Issue, string, error)

	// ListComments fetches all comments for an issue.
	ListComments(ctx context.Context, number int) ([]Comment, error)
}

// IssueWriter defines the (optional) write side of the source tracker,
// used only to append a back-reference marker after a work item is
// created.
type IssueWriter interface {
	AppendBackReference(ctx context.Context, number int, marker string) error
}

// ProjectReader resolves an issue's Projects v2 board membership.
// A nil ProjectInfo with a nil error means the issue is on no board.
type ProjectReader interface {
	GetProjectInfo(ctx context.Context, org, repo string, number int) (*ProjectInfo, error)
}
