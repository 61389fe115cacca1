package github

import (
	"fmt"
	"strings"
	"time"
)

// Issue is an immutable snapshot of one GitHub issue at processing time.
// Instances are produced by an IssueReader (webhook payload or paginated
// listing) and are never mutated by the sync engine.
type Issue struct {
	Number    int        `json:"number" yaml:"number"`
	Title     string     `json:"title" yaml:"title"`
	Body      string     `json:"body" yaml:"body"`
	State     IssueState `json:"state" yaml:"state"`
	Author    string     `json:"author" yaml:"author"`
	Assignees []string   `json:"assignees,omitempty" yaml:"assignees,omitempty"`
	Labels    []string   `json:"labels,omitempty" yaml:"labels,omitempty"`
	Comments  []Comment  `json:"comments,omitempty" yaml:"comments,omitempty"`
	CreatedAt time.Time  `json:"created_at" yaml:"created_at"`
	ClosedAt  *time.Time `json:"closed_at,omitempty" yaml:"closed_at,omitempty"`
	// ParentNumber is the issue number of the tracking parent, 0 when none.
	ParentNumber int    `json:"parent_number,omitempty" yaml:"parent_number,omitempty"`
	Repository   string `json:"repository" yaml:"repository"`
	Organization string `json:"organization" yaml:"organization"`
	// PullRequest marks records returned by the issues listing that are
	// actually pull requests; the sync engine skips them.
	PullRequest bool   `json:"pull_request,omitempty" yaml:"pull_request,omitempty"`
	URL         string `json:"url,omitempty" yaml:"url,omitempty"`
}

// IssueState is the lifecycle state of a GitHub issue.
type IssueState string

const (
	IssueStateOpen   IssueState = "open"
	IssueStateClosed IssueState = "closed"
)

// Comment is a single issue comment.
type Comment struct {
	Author    string    `json:"author" yaml:"author"`
	Body      string    `json:"body" yaml:"body"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// HasLabel reports whether the issue carries the given label, matched
// case-insensitively.
func (i *Issue) HasLabel(name string) bool {
	for _, l := range i.Labels {
		if strings.EqualFold(l, name) {
			return true
		}
	}
	return false
}

// LastActivityAt returns the time of the issue's most recent recorded
// activity: creation, close, or the latest comment.
func (i *Issue) LastActivityAt() time.Time {
	last := i.CreatedAt
	if i.ClosedAt != nil && i.ClosedAt.After(last) {
		last = *i.ClosedAt
	}
	for _, c := range i.Comments {
		if c.CreatedAt.After(last) {
			last = c.CreatedAt
		}
	}
	return last
}

// Key returns the stable identity of the issue within its organization,
// e.g. "octo/widgets#42". The (repository, number) pair is the identity
// resolution key for de-duplication.
func (i *Issue) Key() string {
	return fmt.Sprintf("%s/%s#%d", i.Organization, i.Repository, i.Number)
}

// ProjectInfo is a snapshot of an issue's membership in a Projects v2
// board. It is optional: a nil ProjectInfo means the issue belongs to no
// board. Lifetime is a single processing cycle.
type ProjectInfo struct {
	Name   string         `json:"name" yaml:"name"`
	Number int            `json:"number" yaml:"number"`
	Fields []ProjectField `json:"fields,omitempty" yaml:"fields,omitempty"`
}

// ProjectField is one field value from a project board, tagged with the
// GraphQL value variant it came from.
type ProjectField struct {
	Name  string           `json:"name" yaml:"name"`
	Type  ProjectFieldType `json:"type" yaml:"type"`
	Value string           `json:"value" yaml:"value"`
	// Iteration metadata, populated only for FieldTypeIteration.
	StartDate    string `json:"start_date,omitempty" yaml:"start_date,omitempty"`
	DurationDays int    `json:"duration_days,omitempty" yaml:"duration_days,omitempty"`
}

// ProjectFieldType enumerates the Projects v2 field value variants.
type ProjectFieldType string

const (
	FieldTypeSingleSelect ProjectFieldType = "single_select"
	FieldTypeText         ProjectFieldType = "text"
	FieldTypeDate         ProjectFieldType = "date"
	FieldTypeNumber       ProjectFieldType = "number"
	FieldTypeIteration    ProjectFieldType = "iteration"
)

// StatusFieldName is the conventional board column field.
const StatusFieldName = "Status"

// SprintFieldName is the conventional iteration field.
const SprintFieldName = "Sprint"

// Field returns the named field (case-insensitive) or nil.
func (p *ProjectInfo) Field(name string) *ProjectField {
	if p == nil {
		return nil
	}
	for idx := range p.Fields {
		if strings.EqualFold(p.Fields[idx].Name, name) {
			return &p.Fields[idx]
		}
	}
	return nil
}

// Status returns the board status column value, or "" when absent.
func (p *ProjectInfo) Status() string {
	if f := p.Field(StatusFieldName); f != nil {
		return f.Value
	}
	return ""
}

// Sprint returns the iteration field, or nil when the board has none.
func (p *ProjectInfo) Sprint() *ProjectField {
	return p.Field(SprintFieldName)
}

// ListFilter narrows a paginated issue listing.
type ListFilter struct {
	State    string // "open", "closed" or "all"
	Labels   []string
	Since    time.Time
	PageSize int
}

// Matches reports whether an issue passes the filter. Every listed
// label must be present, and the issue's last activity (creation,
// close, or latest comment) must not predate Since.
func (f ListFilter) Matches(issue *Issue) bool {
	if f.State != "" && f.State != "all" && string(issue.State) != f.State {
		return false
	}
	for _, label := range f.Labels {
		if !issue.HasLabel(label) {
			return false
		}
	}
	if !f.Since.IsZero() && issue.LastActivityAt().Before(f.Since) {
		return false
	}
	return true
}
