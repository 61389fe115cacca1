// Package sync orchestrates the one-way flow from source issues to
// target work items: identity lookup, patch construction, paced writes
// and batch accounting.
package sync

import (
	"context"
	"fmt"
	gosync "sync"
	"time"

	"github.com/go-logr/logr"

	"github.com/planbridge/boards-sync/pkg/config"
	"github.com/planbridge/boards-sync/pkg/github"
	"github.com/planbridge/boards-sync/pkg/identity"
	"github.com/planbridge/boards-sync/pkg/patch"
	"github.com/planbridge/boards-sync/pkg/ratelimit"
	"github.com/planbridge/boards-sync/pkg/workitem"
)

// Action is the outcome of processing one issue.
type Action string

const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
	ActionSkipped Action = "skipped"
	ActionFailed  Action = "failed"
)

// RecordResult describes what happened to a single issue.
type RecordResult struct {
	IssueKey   string `json:"issue_key" yaml:"issue_key"`
	Action     Action `json:"action" yaml:"action"`
	WorkItemID int    `json:"work_item_id,omitempty" yaml:"work_item_id,omitempty"`
	// Reason explains skips; empty otherwise.
	Reason string `json:"reason,omitempty" yaml:"reason,omitempty"`
}

// EventAction is a source tracker lifecycle action delivered by webhook.
type EventAction string

const (
	EventOpened     EventAction = "opened"
	EventEdited     EventAction = "edited"
	EventClosed     EventAction = "closed"
	EventReopened   EventAction = "reopened"
	EventLabeled    EventAction = "labeled"
	EventUnlabeled  EventAction = "unlabeled"
	EventAssigned   EventAction = "assigned"
	EventUnassigned EventAction = "unassigned"

	EventCommentCreated EventAction = "comment_created"
)

// Event is one issue lifecycle notification plus the issue snapshot it
// carries. Comment is set only for comment events and holds the single
// comment the notification delivered.
type Event struct {
	Action  EventAction
	Issue   *github.Issue
	Project *github.ProjectInfo
	Comment *github.Comment
}

// BatchResult contains the results of a batch sync operation.
type BatchResult struct {
	TotalIssues     int           `json:"total_issues" yaml:"total_issues"`
	ProcessedIssues int           `json:"processed_issues" yaml:"processed_issues"`
	Created         int           `json:"created" yaml:"created"`
	Updated         int           `json:"updated" yaml:"updated"`
	Skipped         int           `json:"skipped" yaml:"skipped"`
	Failed          int           `json:"failed" yaml:"failed"`
	Errors          []BatchError  `json:"errors,omitempty" yaml:"errors,omitempty"`
	Skips           []BatchSkip   `json:"skips,omitempty" yaml:"skips,omitempty"`
	Duration        time.Duration `json:"duration" yaml:"duration"`
}

// BatchSkip records one skipped issue inside a batch with its reason, so
// a persisted report shows why a record produced no write.
type BatchSkip struct {
	IssueKey string `json:"issue_key" yaml:"issue_key"`
	Reason   string `json:"reason" yaml:"reason"`
}

// BatchError records one failed issue inside a batch.
type BatchError struct {
	IssueKey string `json:"issue_key" yaml:"issue_key"`
	Step     string `json:"step" yaml:"step"`
	Message  string `json:"message" yaml:"message"`
	Err      error  `json:"-" yaml:"-"`
}

// Orchestrator defines the sync operations the CLI drives.
type Orchestrator interface {
	ProcessRecord(ctx context.Context, issue *github.Issue, project *github.ProjectInfo) (*RecordResult, error)
	ProcessEvent(ctx context.Context, event Event) (*RecordResult, error)
	SyncAll(ctx context.Context, filter github.ListFilter) (*BatchResult, error)
}

// Deps are the collaborators an Engine drives. Writer may be nil when
// the source tracker is read-only; Projects may be nil when board
// membership is unavailable.
type Deps struct {
	Reader     github.IssueReader
	Projects   github.ProjectReader
	Writer     github.IssueWriter
	Store      workitem.Store
	Builder    *patch.Builder
	Identities *identity.Resolver
	Pacer      ratelimit.Pacer
	Metrics    *Metrics
	DryRun     bool
}

// Engine implements the Orchestrator interface. Writes to the target
// store are strictly sequential; only read-only board prefetches run
// concurrently.
type Engine struct {
	deps   Deps
	cfg    *config.Config
	logger logr.Logger
}

// NewEngine creates a sync engine.
func NewEngine(deps Deps, cfg *config.Config, logger logr.Logger) *Engine {
	return &Engine{deps: deps, cfg: cfg, logger: logger}
}

var _ Orchestrator = (*Engine)(nil)

// ProcessRecord runs the full state machine for one issue: identity
// lookup, then create or update. A Failed lookup aborts the record
// without writing anything; it is never treated as "does not exist".
func (e *Engine) ProcessRecord(ctx context.Context, issue *github.Issue, project *github.ProjectInfo) (*RecordResult, error) {
	if issue.PullRequest {
		return &RecordResult{IssueKey: issue.Key(), Action: ActionSkipped, Reason: "pull request"}, nil
	}

	lookup := e.deps.Identities.Find(ctx, issue)
	switch lookup.Outcome {
	case identity.Failed:
		e.deps.Metrics.recordError()
		return &RecordResult{IssueKey: issue.Key(), Action: ActionFailed},
			fmt.Errorf("identity lookup for %s: %w", issue.Key(), lookup.Err)

	case identity.NotFound:
		return e.createWorkItem(ctx, issue, project)

	default:
		return e.updateWorkItem(ctx, issue, lookup.Record, project)
	}
}

// ProcessEvent applies one lifecycle notification. Label and assignee
// events touch only their own field when the work item already exists;
// every other action falls through to the full record path.
func (e *Engine) ProcessEvent(ctx context.Context, event Event) (*RecordResult, error) {
	issue := event.Issue

	switch event.Action {
	case EventOpened, EventEdited, EventClosed, EventReopened:
		return e.ProcessRecord(ctx, issue, event.Project)

	case EventLabeled, EventUnlabeled:
		return e.applyFieldEvent(ctx, event, func(existing *workitem.WorkItem) (workitem.PatchOperation, bool) {
			return e.deps.Builder.TagsOperation(issue, existing)
		})

	case EventAssigned, EventUnassigned:
		return e.applyFieldEvent(ctx, event, func(existing *workitem.WorkItem) (workitem.PatchOperation, bool) {
			if event.Action == EventUnassigned && len(issue.Assignees) == 0 {
				return workitem.PatchOperation{Op: workitem.OpRemove, Path: workitem.FieldAssignedTo}, existing.AssignedTo != ""
			}
			return e.deps.Builder.AssigneeOperation(issue, existing)
		})

	case EventCommentCreated:
		return e.applyCommentEvent(ctx, event)

	default:
		return &RecordResult{
			IssueKey: issue.Key(),
			Action:   ActionSkipped,
			Reason:   fmt.Sprintf("unhandled action %q", event.Action),
		}, nil
	}
}

// SyncAll walks every page of issues matching the filter, processing
// records sequentially with a paced delay before each one. Board
// membership for a page is prefetched concurrently before processing
// starts.
func (e *Engine) SyncAll(ctx context.Context, filter github.ListFilter) (*BatchResult, error) {
	startTime := time.Now()
	result := &BatchResult{}

	if filter.PageSize == 0 {
		filter.PageSize = e.cfg.BatchSize
	}

	pageToken := ""
	for {
		page, nextToken, err := e.deps.Reader.ListIssues(ctx, filter, pageToken)
		if err != nil {
			result.Duration = time.Since(startTime)
			return result, fmt.Errorf("failed to list issues: %w", err)
		}
		result.TotalIssues += len(page)

		projects := e.prefetchProjects(ctx, page)

		for _, issue := range page {
			if err := e.deps.Pacer.Wait(ctx); err != nil {
				result.Duration = time.Since(startTime)
				return result, err
			}

			record, err := e.ProcessRecord(ctx, issue, projects[issue.Number])
			result.ProcessedIssues++
			e.tally(result, record, err)

			if err != nil && !e.cfg.ContinueOnError {
				result.Duration = time.Since(startTime)
				return result, err
			}
		}

		if nextToken == "" {
			break
		}
		pageToken = nextToken
	}

	result.Duration = time.Since(startTime)
	e.deps.Metrics.observeBatch(result)
	e.logger.Info("batch sync complete",
		"total", result.TotalIssues,
		"created", result.Created,
		"updated", result.Updated,
		"skipped", result.Skipped,
		"failed", result.Failed,
		"duration", result.Duration.String())
	return result, nil
}

func (e *Engine) createWorkItem(ctx context.Context, issue *github.Issue, project *github.ProjectInfo) (*RecordResult, error) {
	parentURL := e.resolveParentURL(ctx, issue)

	built, err := e.deps.Builder.BuildCreate(ctx, issue, project, parentURL)
	if err != nil {
		if patch.IsValidationGap(err) {
			e.logger.Info("skipping issue with incomplete fields", "issue", issue.Key(), "reason", err.Error())
			return &RecordResult{IssueKey: issue.Key(), Action: ActionSkipped, Reason: err.Error()}, nil
		}
		e.deps.Metrics.recordError()
		return &RecordResult{IssueKey: issue.Key(), Action: ActionFailed},
			fmt.Errorf("failed to build create document for %s: %w", issue.Key(), err)
	}

	if e.deps.DryRun {
		e.logger.Info("dry run: would create work item",
			"issue", issue.Key(), "type", built.Type, "operations", len(built.Document))
		return &RecordResult{IssueKey: issue.Key(), Action: ActionCreated}, nil
	}

	created, err := e.deps.Store.Create(ctx, built.Type, built.Document)
	if err != nil {
		e.deps.Metrics.recordError()
		return &RecordResult{IssueKey: issue.Key(), Action: ActionFailed},
			fmt.Errorf("failed to create work item for %s: %w", issue.Key(), err)
	}

	e.addComments(ctx, issue, created.ID, built.ExtraComments)
	e.addBackReference(ctx, issue, created.ID)

	e.deps.Metrics.recordProcessed(ActionCreated)
	e.logger.Info("created work item", "issue", issue.Key(), "id", created.ID, "type", built.Type)
	return &RecordResult{IssueKey: issue.Key(), Action: ActionCreated, WorkItemID: created.ID}, nil
}

func (e *Engine) updateWorkItem(ctx context.Context, issue *github.Issue, existing *workitem.WorkItem, project *github.ProjectInfo) (*RecordResult, error) {
	doc, err := e.deps.Builder.BuildUpdate(ctx, issue, existing, project)
	if err != nil {
		e.deps.Metrics.recordError()
		return &RecordResult{IssueKey: issue.Key(), Action: ActionFailed},
			fmt.Errorf("failed to build update document for %s: %w", issue.Key(), err)
	}

	if e.cfg.Flags.SyncLabels {
		if op, changed := e.deps.Builder.TagsOperation(issue, existing); changed {
			doc = append(doc, op)
		}
	}
	if e.cfg.Flags.SyncAssignees {
		if op, changed := e.deps.Builder.AssigneeOperation(issue, existing); changed {
			doc = append(doc, op)
		}
	}

	if e.deps.DryRun {
		e.logger.Info("dry run: would update work item",
			"issue", issue.Key(), "id", existing.ID, "operations", len(doc))
		return &RecordResult{IssueKey: issue.Key(), Action: ActionUpdated, WorkItemID: existing.ID}, nil
	}

	if _, err := e.deps.Store.Update(ctx, existing.ID, doc); err != nil {
		e.deps.Metrics.recordError()
		return &RecordResult{IssueKey: issue.Key(), Action: ActionFailed},
			fmt.Errorf("failed to update work item %d for %s: %w", existing.ID, issue.Key(), err)
	}

	e.deps.Metrics.recordProcessed(ActionUpdated)
	e.logger.V(1).Info("updated work item", "issue", issue.Key(), "id", existing.ID)
	return &RecordResult{IssueKey: issue.Key(), Action: ActionUpdated, WorkItemID: existing.ID}, nil
}

// applyFieldEvent handles the single-field lifecycle actions. When the
// work item does not exist yet the event degrades to a full create.
func (e *Engine) applyFieldEvent(ctx context.Context, event Event, buildOp func(*workitem.WorkItem) (workitem.PatchOperation, bool)) (*RecordResult, error) {
	issue := event.Issue

	lookup := e.deps.Identities.Find(ctx, issue)
	switch lookup.Outcome {
	case identity.Failed:
		e.deps.Metrics.recordError()
		return &RecordResult{IssueKey: issue.Key(), Action: ActionFailed},
			fmt.Errorf("identity lookup for %s: %w", issue.Key(), lookup.Err)
	case identity.NotFound:
		return e.createWorkItem(ctx, issue, event.Project)
	}

	op, changed := buildOp(lookup.Record)
	if !changed {
		return &RecordResult{
			IssueKey:   issue.Key(),
			Action:     ActionSkipped,
			WorkItemID: lookup.Record.ID,
			Reason:     "no field change",
		}, nil
	}

	if e.deps.DryRun {
		return &RecordResult{IssueKey: issue.Key(), Action: ActionUpdated, WorkItemID: lookup.Record.ID}, nil
	}

	if _, err := e.deps.Store.Update(ctx, lookup.Record.ID, workitem.PatchDocument{op}); err != nil {
		e.deps.Metrics.recordError()
		return &RecordResult{IssueKey: issue.Key(), Action: ActionFailed},
			fmt.Errorf("failed to apply %s event for %s: %w", event.Action, issue.Key(), err)
	}

	e.deps.Metrics.recordProcessed(ActionUpdated)
	return &RecordResult{IssueKey: issue.Key(), Action: ActionUpdated, WorkItemID: lookup.Record.ID}, nil
}

// applyCommentEvent appends the single comment a comment notification
// carries. The event delivers exactly one new comment, so appending on
// the existing work item cannot duplicate the discussion synced at
// create time. Falls back to a full create when the work item does not
// exist yet.
func (e *Engine) applyCommentEvent(ctx context.Context, event Event) (*RecordResult, error) {
	issue := event.Issue

	if !e.cfg.Flags.SyncComments {
		return &RecordResult{IssueKey: issue.Key(), Action: ActionSkipped, Reason: "comment sync disabled"}, nil
	}

	lookup := e.deps.Identities.Find(ctx, issue)
	switch lookup.Outcome {
	case identity.Failed:
		e.deps.Metrics.recordError()
		return &RecordResult{IssueKey: issue.Key(), Action: ActionFailed},
			fmt.Errorf("identity lookup for %s: %w", issue.Key(), lookup.Err)
	case identity.NotFound:
		return e.createWorkItem(ctx, issue, event.Project)
	}

	comment := event.Comment
	if comment == nil && len(issue.Comments) > 0 {
		comment = &issue.Comments[len(issue.Comments)-1]
	}
	if comment == nil {
		return &RecordResult{
			IssueKey:   issue.Key(),
			Action:     ActionSkipped,
			WorkItemID: lookup.Record.ID,
			Reason:     "event carried no comment",
		}, nil
	}

	if e.deps.DryRun {
		return &RecordResult{IssueKey: issue.Key(), Action: ActionUpdated, WorkItemID: lookup.Record.ID}, nil
	}

	if err := e.deps.Store.AddComment(ctx, lookup.Record.ID, e.deps.Builder.RenderComment(*comment)); err != nil {
		e.deps.Metrics.recordError()
		return &RecordResult{IssueKey: issue.Key(), Action: ActionFailed},
			fmt.Errorf("failed to apply %s event for %s: %w", event.Action, issue.Key(), err)
	}

	e.deps.Metrics.recordProcessed(ActionUpdated)
	return &RecordResult{IssueKey: issue.Key(), Action: ActionUpdated, WorkItemID: lookup.Record.ID}, nil
}

// resolveParentURL finds the work item URL for the issue's tracking
// parent. Linking is best effort: an unsynced or unresolvable parent
// logs and returns empty rather than failing the record.
func (e *Engine) resolveParentURL(ctx context.Context, issue *github.Issue) string {
	if !e.cfg.Flags.SyncHierarchy || issue.ParentNumber == 0 {
		return ""
	}

	parent := &github.Issue{
		Number:       issue.ParentNumber,
		Repository:   issue.Repository,
		Organization: issue.Organization,
	}
	lookup := e.deps.Identities.Find(ctx, parent)
	if lookup.Outcome != identity.Found {
		e.logger.Info("parent work item not found, skipping hierarchy link",
			"issue", issue.Key(), "parent", issue.ParentNumber, "outcome", lookup.Outcome.String())
		return ""
	}
	return lookup.Record.URL
}

// addComments syncs fallback comments and issue discussion onto a newly
// created work item. Comment failures are logged, never fatal.
func (e *Engine) addComments(ctx context.Context, issue *github.Issue, id int, extra []string) {
	for _, text := range extra {
		if err := e.deps.Store.AddComment(ctx, id, text); err != nil {
			e.logger.Error(err, "failed to add field comment", "issue", issue.Key(), "id", id)
		}
	}

	if !e.cfg.Flags.SyncComments {
		return
	}

	comments := issue.Comments
	if len(comments) == 0 && e.deps.Reader != nil {
		listed, err := e.deps.Reader.ListComments(ctx, issue.Number)
		if err != nil {
			e.logger.Error(err, "failed to list issue comments", "issue", issue.Key())
			return
		}
		comments = listed
	}

	for _, c := range comments {
		if err := e.deps.Store.AddComment(ctx, id, e.deps.Builder.RenderComment(c)); err != nil {
			e.logger.Error(err, "failed to add comment", "issue", issue.Key(), "id", id)
		}
	}
}

// addBackReference writes the work item marker back onto the source
// issue. Best effort.
func (e *Engine) addBackReference(ctx context.Context, issue *github.Issue, id int) {
	if !e.cfg.Flags.AddBackReference || e.deps.Writer == nil {
		return
	}
	marker := fmt.Sprintf("Tracked as work item AB#%d", id)
	if err := e.deps.Writer.AppendBackReference(ctx, issue.Number, marker); err != nil {
		e.logger.Error(err, "failed to append back-reference", "issue", issue.Key(), "id", id)
	}
}

// prefetchProjects fetches board membership for a page of issues with a
// bounded worker pool. Only reads run here; failures degrade to a nil
// entry so the record syncs without board signals.
func (e *Engine) prefetchProjects(ctx context.Context, issues []*github.Issue) map[int]*github.ProjectInfo {
	infos := make(map[int]*github.ProjectInfo, len(issues))
	if e.deps.Projects == nil || len(issues) == 0 {
		return infos
	}

	width := e.cfg.PrefetchWidth
	if width < 1 {
		width = 1
	}
	if width > len(issues) {
		width = len(issues)
	}

	type fetched struct {
		number int
		info   *github.ProjectInfo
	}
	tasks := make(chan *github.Issue, len(issues))
	results := make(chan fetched, len(issues))

	var wg gosync.WaitGroup
	for i := 0; i < width; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for issue := range tasks {
				select {
				case <-ctx.Done():
					return
				default:
				}

				info, err := e.deps.Projects.GetProjectInfo(ctx, issue.Organization, issue.Repository, issue.Number)
				if err != nil {
					e.logger.Error(err, "failed to fetch board membership", "issue", issue.Key())
					info = nil
				}
				results <- fetched{number: issue.Number, info: info}
			}
		}()
	}

	for _, issue := range issues {
		tasks <- issue
	}
	close(tasks)
	wg.Wait()
	close(results)

	for r := range results {
		infos[r.number] = r.info
	}
	return infos
}

func (e *Engine) tally(result *BatchResult, record *RecordResult, err error) {
	if err != nil {
		result.Failed++
		result.Errors = append(result.Errors, BatchError{
			IssueKey: record.IssueKey,
			Step:     "process",
			Message:  err.Error(),
			Err:      err,
		})
		return
	}

	switch record.Action {
	case ActionCreated:
		result.Created++
	case ActionUpdated:
		result.Updated++
	case ActionSkipped:
		result.Skipped++
		result.Skips = append(result.Skips, BatchSkip{
			IssueKey: record.IssueKey,
			Reason:   record.Reason,
		})
	default:
		result.Failed++
	}
}
