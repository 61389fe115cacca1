// Package workitem defines the engine's view of the Azure Boards work
// item store: the record snapshot it reads, the JSON Patch documents it
// proposes, and the query predicate used for identity resolution.
// Transport (REST clients, authentication) lives behind the Store and
// IterationStore interfaces.
package workitem

import (
	"strings"
	"time"
)

// WorkItem is the existing counterpart of a source issue in the target
// system. The store owns these records; the engine only reads snapshots
// and proposes patches.
type WorkItem struct {
	ID            int        `json:"id" yaml:"id"`
	Rev           int        `json:"rev" yaml:"rev"`
	Type          string     `json:"type" yaml:"type"`
	Title         string     `json:"title" yaml:"title"`
	Description   string     `json:"description,omitempty" yaml:"description,omitempty"`
	State         string     `json:"state" yaml:"state"`
	Tags          []string   `json:"tags,omitempty" yaml:"tags,omitempty"`
	AssignedTo    string     `json:"assigned_to,omitempty" yaml:"assigned_to,omitempty"`
	AreaPath      string     `json:"area_path,omitempty" yaml:"area_path,omitempty"`
	IterationPath string     `json:"iteration_path,omitempty" yaml:"iteration_path,omitempty"`
	URL           string     `json:"url,omitempty" yaml:"url,omitempty"`
	ChangedDate   time.Time  `json:"changed_date,omitempty" yaml:"changed_date,omitempty"`
	Relations     []Relation `json:"relations,omitempty" yaml:"relations,omitempty"`
}

// Relation is a typed link from a work item to another resource.
type Relation struct {
	Rel        string            `json:"rel" yaml:"rel"`
	URL        string            `json:"url" yaml:"url"`
	Attributes map[string]string `json:"attributes,omitempty" yaml:"attributes,omitempty"`
}

// HasTag reports whether the work item carries the tag, matched
// case-insensitively.
func (w *WorkItem) HasTag(tag string) bool {
	for _, t := range w.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

// Op is a JSON Patch operation kind.
type Op string

const (
	OpAdd     Op = "add"
	OpReplace Op = "replace"
	OpRemove  Op = "remove"
)

// PatchOperation is one field operation in a patch document.
type PatchOperation struct {
	Op    Op          `json:"op"`
	Path  string      `json:"path"`
	Value interface{} `json:"value,omitempty"`
}

// PatchDocument is an ordered list of field operations applied strictly
// in sequence by the target system. Duplicate relation-add operations are
// not deduplicated here; callers must avoid double-invocation.
type PatchDocument []PatchOperation

// Well-known work item field paths.
const (
	FieldTitle         = "/fields/System.Title"
	FieldDescription   = "/fields/System.Description"
	FieldState         = "/fields/System.State"
	FieldTags          = "/fields/System.Tags"
	FieldAreaPath      = "/fields/System.AreaPath"
	FieldIterationPath = "/fields/System.IterationPath"
	FieldAssignedTo    = "/fields/System.AssignedTo"
	FieldCreatedDate   = "/fields/System.CreatedDate"
	FieldCreatedBy     = "/fields/System.CreatedBy"
	FieldClosedDate    = "/fields/Microsoft.VSTS.Common.ClosedDate"
	FieldHistory       = "/fields/System.History"
	FieldPriority      = "/fields/Microsoft.VSTS.Common.Priority"
	FieldStoryPoints   = "/fields/Microsoft.VSTS.Scheduling.StoryPoints"
	PathRelations      = "/relations/-"
)

// Relation kinds used by the patch builder.
const (
	RelationHyperlink = "Hyperlink"
	RelationParent    = "System.LinkTypes.Hierarchy-Reverse"
)

// TagSeparator joins the tag list into the System.Tags field value.
const TagSeparator = "; "

// JoinTags renders a tag list as a System.Tags field value.
func JoinTags(tags []string) string {
	return strings.Join(tags, TagSeparator)
}

// SplitTags parses a System.Tags field value.
func SplitTags(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ";")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			tags = append(tags, trimmed)
		}
	}
	return tags
}

// Query is the structured predicate handed to Store.Query for identity
// resolution: all listed conditions must hold.
type Query struct {
	// TitleContains matches work items whose title contains the marker.
	TitleContains string
	// RequiredTags must all be present on the work item.
	RequiredTags []string
	// Team scopes the query to a team project; empty means store default.
	Team string
}

// Iteration is a named, dated sprint in the target system, keyed
// case-insensitively by name inside the resolver cache.
type Iteration struct {
	ID         string    `json:"id,omitempty" yaml:"id,omitempty"`
	Name       string    `json:"name" yaml:"name"`
	Path       string    `json:"path" yaml:"path"`
	StartDate  time.Time `json:"start_date" yaml:"start_date"`
	FinishDate time.Time `json:"finish_date" yaml:"finish_date"`
}
