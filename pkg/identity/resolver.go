// Package identity decides whether a source issue already has a work
// item counterpart. The lookup key is deterministic: a title marker
// embedding the issue number plus the marker tag and repository tag, so
// a given (repository, issue number) pair matches at most one work item.
package identity

import (
	"context"
	"fmt"

	"github.com/go-logr/logr"

	"github.com/planbridge/boards-sync/pkg/github"
	"github.com/planbridge/boards-sync/pkg/workitem"
)

// DefaultMarkerTag is the tag stamped on every synchronized work item.
const DefaultMarkerTag = "github-issue"

// TitleMarker renders the identity marker embedded in work item titles.
func TitleMarker(issueNumber int) string {
	return fmt.Sprintf("(GitHub Issue #%d)", issueNumber)
}

// Outcome tags the result of an identity lookup. Found and NotFound are
// definitive; Failed means the store could not answer and the caller
// must treat the record as "try later", never as "does not exist" -
// conflating the two is how duplicate work items get created.
type Outcome int

const (
	Found Outcome = iota
	NotFound
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Found:
		return "found"
	case NotFound:
		return "not_found"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// LookupResult is the tagged outcome of Find. Record is set only when
// Outcome is Found; Err only when Outcome is Failed.
type LookupResult struct {
	Outcome Outcome
	Record  *workitem.WorkItem
	Err     error
}

// Resolver finds the existing work item for a source issue.
type Resolver struct {
	store     workitem.Store
	markerTag string
	logger    logr.Logger
}

// NewResolver creates an identity resolver. An empty markerTag falls
// back to DefaultMarkerTag.
func NewResolver(store workitem.Store, markerTag string, logger logr.Logger) *Resolver {
	if markerTag == "" {
		markerTag = DefaultMarkerTag
	}
	return &Resolver{store: store, markerTag: markerTag, logger: logger}
}

// MarkerTag returns the tag this resolver requires on candidates.
func (r *Resolver) MarkerTag() string {
	return r.markerTag
}

// Find queries the store for the issue's counterpart. Zero candidates
// is NotFound; one or more returns the first - patch construction
// guarantees the marker is unique per (repository, issue number), so
// extra candidates indicate outside tampering and are logged.
func (r *Resolver) Find(ctx context.Context, issue *github.Issue) LookupResult {
	query := workitem.Query{
		TitleContains: TitleMarker(issue.Number),
		RequiredTags:  []string{r.markerTag, issue.Repository},
	}

	candidates, err := r.store.Query(ctx, query)
	if err != nil {
		return LookupResult{Outcome: Failed, Err: &LookupError{
			Issue: issue.Key(),
			Err:   err,
		}}
	}

	if len(candidates) == 0 {
		return LookupResult{Outcome: NotFound}
	}
	if len(candidates) > 1 {
		r.logger.Info("multiple work items matched identity lookup, using first",
			"issue", issue.Key(), "candidates", len(candidates))
	}
	return LookupResult{Outcome: Found, Record: candidates[0]}
}
