// Package patch assembles the ordered field-operation documents that
// create and update work items. The builder consumes the state and
// iteration resolvers plus the user map; it never talks to either
// system directly.
package patch

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-logr/logr"

	"github.com/planbridge/boards-sync/pkg/config"
	"github.com/planbridge/boards-sync/pkg/github"
	"github.com/planbridge/boards-sync/pkg/identity"
	"github.com/planbridge/boards-sync/pkg/iteration"
	"github.com/planbridge/boards-sync/pkg/mapping"
	"github.com/planbridge/boards-sync/pkg/markup"
	"github.com/planbridge/boards-sync/pkg/workitem"
)

// Builder assembles patch documents for work item creation and update.
type Builder struct {
	states     *mapping.StateResolver
	iterations iteration.IterationResolver
	users      *mapping.UserMap
	converter  markup.Converter
	cfg        *config.Config
	tables     *mapping.Config
	logger     logr.Logger
}

// NewBuilder creates a patch builder.
func NewBuilder(
	states *mapping.StateResolver,
	iterations iteration.IterationResolver,
	users *mapping.UserMap,
	converter markup.Converter,
	cfg *config.Config,
	tables *mapping.Config,
	logger logr.Logger,
) *Builder {
	return &Builder{
		states:     states,
		iterations: iterations,
		users:      users,
		converter:  converter,
		cfg:        cfg,
		tables:     tables,
		logger:     logger,
	}
}

// CreateResult is a built create document plus the derived work item
// type and any comment text synthesized from custom field fallbacks.
type CreateResult struct {
	Type          string
	Document      workitem.PatchDocument
	ExtraComments []string
}

// BuildCreate assembles the full create document for a source issue.
// parentURL is the already-resolved parent work item URL, empty when
// hierarchy sync is off or the issue has no parent.
func (b *Builder) BuildCreate(ctx context.Context, issue *github.Issue, project *github.ProjectInfo, parentURL string) (*CreateResult, error) {
	if issue.Title == "" {
		return nil, &BuildError{
			Type:    "validation_gap",
			Message: "issue has no title, cannot create work item",
			Context: issue.Key(),
		}
	}

	workItemType := b.states.ResolveWorkItemType(issue.Title, issue.Labels)
	flags := b.cfg.Flags

	custom := b.applyCustomFields(workItemType, project)

	var doc workitem.PatchDocument
	addOp := func(path string, value interface{}) {
		doc = append(doc, workitem.PatchOperation{Op: workitem.OpAdd, Path: path, Value: value})
	}

	// Title always carries the identity marker; everything downstream
	// (identity resolution, de-duplication) depends on it.
	addOp(workitem.FieldTitle, b.renderTitle(issue))

	if flags.SyncDescription && issue.Body != "" {
		addOp(workitem.FieldDescription, b.converter.ToMarkup(issue.Body))
	}

	if flags.SyncState {
		addOp(workitem.FieldState, b.resolveState(workItemType, issue, project))
	}

	if flags.SyncLabels {
		addOp(workitem.FieldTags, workitem.JoinTags(b.buildTags(issue, custom.extraTags)))
	}

	if issue.URL != "" {
		addOp(workitem.PathRelations, workitem.Relation{
			Rel:        workitem.RelationHyperlink,
			URL:        issue.URL,
			Attributes: map[string]string{"comment": "GitHub issue"},
		})
	}

	addOp(workitem.FieldHistory, fmt.Sprintf("Created from GitHub issue #%d in %s/%s",
		issue.Number, issue.Organization, issue.Repository))

	addOp(workitem.FieldAreaPath, b.cfg.AreaPath)

	if flags.CreateIterations && project.Sprint() != nil {
		if err := b.addIteration(ctx, issue, project, addOp); err != nil {
			return nil, err
		}
	}

	if flags.SyncAssignees {
		if assignee, ok := b.users.FirstMapped(issue.Assignees); ok {
			addOp(workitem.FieldAssignedTo, assignee)
		}
	}

	if flags.SyncDates && b.cfg.AllowHistoricalFields {
		addOp(workitem.FieldCreatedDate, issue.CreatedAt.Format(time.RFC3339))
		if author, ok := b.users.Lookup(issue.Author); ok {
			addOp(workitem.FieldCreatedBy, author)
		}
		if issue.ClosedAt != nil {
			addOp(workitem.FieldClosedDate, issue.ClosedAt.Format(time.RFC3339))
		}
	}

	doc = append(doc, custom.operations...)

	if priority := b.states.ResolvePriority(issue.Labels); priority > 0 {
		addOp(workitem.FieldPriority, priority)
	}

	if points, ok := b.estimate(project); ok {
		addOp(workitem.FieldStoryPoints, points)
	}

	if parentURL != "" {
		addOp(workitem.PathRelations, workitem.Relation{
			Rel: workitem.RelationParent,
			URL: parentURL,
		})
	}

	return &CreateResult{
		Type:          workItemType,
		Document:      doc,
		ExtraComments: custom.extraComments,
	}, nil
}

// BuildUpdate assembles the one-way update document: replace operations
// for title, description and state, emitted only when the computed value
// differs from the target snapshot, plus an always-appended history
// entry. History is append-only and never diffed.
func (b *Builder) BuildUpdate(ctx context.Context, issue *github.Issue, existing *workitem.WorkItem, project *github.ProjectInfo) (workitem.PatchDocument, error) {
	flags := b.cfg.Flags

	var doc workitem.PatchDocument
	replaceOp := func(path string, value interface{}) {
		doc = append(doc, workitem.PatchOperation{Op: workitem.OpReplace, Path: path, Value: value})
	}

	if flags.SyncTitle {
		if title := b.renderTitle(issue); title != existing.Title {
			replaceOp(workitem.FieldTitle, title)
		}
	}

	if flags.SyncDescription {
		if description := b.converter.ToMarkup(issue.Body); description != existing.Description {
			replaceOp(workitem.FieldDescription, description)
		}
	}

	if flags.SyncState {
		workItemType := existing.Type
		if workItemType == "" {
			workItemType = b.states.ResolveWorkItemType(issue.Title, issue.Labels)
		}
		if state := b.resolveState(workItemType, issue, project); state != existing.State {
			replaceOp(workitem.FieldState, state)
		}
	}

	doc = append(doc, workitem.PatchOperation{
		Op:   workitem.OpAdd,
		Path: workitem.FieldHistory,
		Value: fmt.Sprintf("Synchronized from GitHub issue #%d in %s/%s",
			issue.Number, issue.Organization, issue.Repository),
	})

	return doc, nil
}

// TagsOperation builds the replace operation for the labeled/unlabeled
// update path. The second return is false when the tag set is unchanged.
func (b *Builder) TagsOperation(issue *github.Issue, existing *workitem.WorkItem) (workitem.PatchOperation, bool) {
	tags := workitem.JoinTags(b.buildTags(issue, nil))
	if tags == workitem.JoinTags(existing.Tags) {
		return workitem.PatchOperation{}, false
	}
	return workitem.PatchOperation{Op: workitem.OpReplace, Path: workitem.FieldTags, Value: tags}, true
}

// AssigneeOperation builds the replace operation for the assigned
// update path. The second return is false when no mapped assignee
// resolves or the value is unchanged.
func (b *Builder) AssigneeOperation(issue *github.Issue, existing *workitem.WorkItem) (workitem.PatchOperation, bool) {
	assignee, ok := b.users.FirstMapped(issue.Assignees)
	if !ok || assignee == existing.AssignedTo {
		return workitem.PatchOperation{}, false
	}
	return workitem.PatchOperation{Op: workitem.OpReplace, Path: workitem.FieldAssignedTo, Value: assignee}, true
}

// RenderComment formats a source issue comment as work item discussion
// text, converting the body through the configured markup converter.
func (b *Builder) RenderComment(c github.Comment) string {
	return fmt.Sprintf("**%s** commented on %s:\n\n%s",
		c.Author, c.CreatedAt.Format("2006-01-02"), b.converter.ToMarkup(c.Body))
}

// renderTitle embeds the identity marker in the work item title.
func (b *Builder) renderTitle(issue *github.Issue) string {
	return fmt.Sprintf("%s %s", issue.Title, identity.TitleMarker(issue.Number))
}

// resolveState feeds the board signals into the state resolver. The
// board column only participates when project status sync is on.
func (b *Builder) resolveState(workItemType string, issue *github.Issue, project *github.ProjectInfo) string {
	projectKey, statusColumn := "", ""
	if b.cfg.Flags.SyncProjectStatus && project != nil {
		projectKey = project.Name
		statusColumn = project.Status()
	}
	return b.states.Resolve(workItemType, string(issue.State), projectKey, statusColumn)
}

// buildTags assembles the work item tag set: marker tag, repository,
// identifier tag, then issue labels minus the ones reserved for
// priority mapping, plus any custom field values routed to tags.
func (b *Builder) buildTags(issue *github.Issue, extra []string) []string {
	tags := []string{
		b.cfg.MarkerTag,
		issue.Repository,
		fmt.Sprintf("issue-%d", issue.Number),
	}
	for _, label := range issue.Labels {
		if b.states.IsPriorityLabel(label) {
			continue
		}
		tags = append(tags, label)
	}
	return append(tags, extra...)
}

// addIteration resolves the board sprint field to an iteration path.
func (b *Builder) addIteration(ctx context.Context, issue *github.Issue, project *github.ProjectInfo, addOp func(string, interface{})) error {
	sprintField := project.Sprint()

	info := iteration.SprintInfo{Name: sprintField.Value}
	if sprintField.StartDate != "" {
		if start, err := time.Parse("2006-01-02", sprintField.StartDate); err == nil {
			info.StartDate = start
		}
	}
	info.DurationDays = sprintField.DurationDays

	iter, err := b.iterations.CreateFromSprintInfo(ctx, info, b.cfg.DefaultIterationDays)
	if err != nil {
		return &BuildError{
			Type:    "iteration_error",
			Message: "failed to resolve iteration",
			Err:     err,
			Context: issue.Key(),
		}
	}
	if iter != nil {
		addOp(workitem.FieldIterationPath, iter.Path)
	}
	return nil
}

// customFieldResult carries the three destinations a board field can
// map to: a direct field operation, the tag set, or a synthesized
// comment.
type customFieldResult struct {
	operations    workitem.PatchDocument
	extraTags     []string
	extraComments []string
}

// applyCustomFields evaluates every configured custom field rule
// against the board snapshot.
func (b *Builder) applyCustomFields(workItemType string, project *github.ProjectInfo) customFieldResult {
	var result customFieldResult
	if project == nil {
		return result
	}

	for i := range b.tables.CustomFields {
		rule := &b.tables.CustomFields[i]
		field := project.Field(rule.SourceField)
		if field == nil || field.Value == "" {
			continue
		}

		if rule.TargetField != "" {
			if !rule.AppliesTo(workItemType) {
				b.logger.V(1).Info("custom field rule skipped for work item type",
					"field", rule.SourceField, "type", workItemType)
				continue
			}
			result.operations = append(result.operations, workitem.PatchOperation{
				Op:    workitem.OpAdd,
				Path:  rule.TargetField,
				Value: rule.Translate(field.Value),
			})
			continue
		}

		switch rule.Fallback {
		case mapping.FallbackTags:
			result.extraTags = append(result.extraTags, rule.Translate(field.Value))
		case mapping.FallbackComment:
			result.extraComments = append(result.extraComments,
				fmt.Sprintf("%s: %s", rule.SourceField, rule.Translate(field.Value)))
		}
	}
	return result
}

// estimate extracts the story point estimate from the configured board
// number field.
func (b *Builder) estimate(project *github.ProjectInfo) (float64, bool) {
	if b.tables.EstimateField == "" || project == nil {
		return 0, false
	}
	field := project.Field(b.tables.EstimateField)
	if field == nil || field.Type != github.FieldTypeNumber {
		return 0, false
	}
	points, err := strconv.ParseFloat(field.Value, 64)
	if err != nil {
		return 0, false
	}
	return points, true
}
