// Package mapping holds the layered configuration tables that translate
// source tracker signals (issue state, board columns, labels, logins)
// into work item fields, plus the resolvers that evaluate them.
package mapping

// Config is the full mapping file, loaded once at startup and read-only
// thereafter.
type Config struct {
	// DefaultProject is the board key assumed when an issue's project
	// membership does not name one.
	DefaultProject string `yaml:"default_project"`

	// DefaultType is the work item type used when neither a title prefix
	// nor a label resolves one.
	DefaultType string `yaml:"default_type"`

	// GlobalStates maps a source lifecycle state to the fallback target
	// state used whenever no project table applies.
	GlobalStates map[string]string `yaml:"global_states"`

	// TypePrefixes are ordered title-prefix detection rules; the first
	// matching prefix wins.
	TypePrefixes []TypePrefix `yaml:"type_prefixes"`

	// LabelTypes maps a label to a work item type, consulted after the
	// title prefixes.
	LabelTypes map[string]string `yaml:"label_types"`

	// Projects holds the per-board state tables keyed by project key
	// (matched case-insensitively).
	Projects map[string]ProjectStateTable `yaml:"projects"`

	// Users maps a source login (case-insensitive) to a target identity.
	Users map[string]string `yaml:"users"`

	// PriorityLabels are ordered label-to-priority rules; the first label
	// present on the issue wins. Labels named here are excluded from the
	// work item tag set.
	PriorityLabels []PriorityLabel `yaml:"priority_labels"`

	// EstimateField names the board number field carrying the effort
	// estimate (story points).
	EstimateField string `yaml:"estimate_field"`

	// CustomFields configure how remaining board fields map onto work
	// item fields.
	CustomFields []CustomFieldRule `yaml:"custom_fields"`
}

// TypePrefix is one title-prefix detection rule.
type TypePrefix struct {
	Prefix string `yaml:"prefix"`
	Type   string `yaml:"type"`
}

// PriorityLabel is one label-to-priority rule.
type PriorityLabel struct {
	Label    string `yaml:"label"`
	Priority int    `yaml:"priority"`
}

// ProjectStateTable maps a work item type to its state table.
type ProjectStateTable map[string]TypeStateTable

// TypeStateTable maps a source state (lowercase) to its column table.
type TypeStateTable map[string]ColumnTable

// ColumnTable maps a board status column to a target state. Two keys are
// special: WildcardColumn forces a state regardless of column (used to
// push closed issues to a terminal state), and NoStatusColumn applies
// when the column value is not otherwise listed.
type ColumnTable map[string]string

const (
	// WildcardColumn matches every status column.
	WildcardColumn = "*"
	// NoStatusColumn is the sentinel entry for unlisted columns.
	NoStatusColumn = "no status"
)

// CustomFieldFallback selects what happens to a board field with no
// target field configured.
type CustomFieldFallback string

const (
	FallbackSkip    CustomFieldFallback = "skip"
	FallbackTags    CustomFieldFallback = "tags"
	FallbackComment CustomFieldFallback = "comment"
)

// CustomFieldRule maps one board field onto the work item.
type CustomFieldRule struct {
	// SourceField is the board field name (case-insensitive).
	SourceField string `yaml:"source_field"`

	// TargetField is the work item field path; empty means the Fallback
	// applies instead.
	TargetField string `yaml:"target_field,omitempty"`

	// Types restricts the rule to these work item types; empty means all.
	Types []string `yaml:"types,omitempty"`

	// Values translates board values to target values; values not listed
	// pass through unchanged.
	Values map[string]string `yaml:"values,omitempty"`

	// Fallback applies when TargetField is empty: skip, tags or comment.
	Fallback CustomFieldFallback `yaml:"fallback,omitempty"`
}

// AppliesTo reports whether the rule covers the given work item type.
func (r *CustomFieldRule) AppliesTo(workItemType string) bool {
	if len(r.Types) == 0 {
		return true
	}
	for _, t := range r.Types {
		if t == workItemType {
			return true
		}
	}
	return false
}

// Translate applies the value-translation table, passing unknown values
// through unchanged.
func (r *CustomFieldRule) Translate(value string) string {
	if translated, ok := r.Values[value]; ok {
		return translated
	}
	return value
}
