package mapping

import (
	"strings"

	"github.com/go-logr/logr"
)

// StateResolver computes a work item state from heterogeneous source
// signals: issue lifecycle state, board membership and board column. It
// never fails; every resolution path bottoms out in the global fallback.
type StateResolver struct {
	config *Config
	logger logr.Logger
}

// NewStateResolver creates a resolver over a loaded mapping config.
func NewStateResolver(config *Config, logger logr.Logger) *StateResolver {
	return &StateResolver{config: config, logger: logger}
}

// Resolve returns the target state for a work item type, source state,
// project key and board status column. Lookup order, first match wins:
// wildcard entry, explicit column entry, "no status" sentinel, global
// fallback. An empty projectKey falls back to the configured default
// project; an empty statusColumn short-circuits to the global fallback.
func (r *StateResolver) Resolve(workItemType, sourceState, projectKey, statusColumn string) string {
	sourceState = strings.ToLower(sourceState)
	projectKey = strings.ToLower(projectKey)
	if projectKey == "" {
		projectKey = r.config.DefaultProject
	}

	projectTable, hasProject := r.config.Projects[projectKey]
	if statusColumn == "" || !hasProject {
		return r.globalFallback(sourceState)
	}

	typeTable, hasType := projectTable[workItemType]
	if !hasType {
		r.logger.V(1).Info("no state table for work item type, using global fallback",
			"project", projectKey, "type", workItemType)
		return r.globalFallback(sourceState)
	}

	columns, hasState := typeTable[sourceState]
	if !hasState {
		return r.globalFallback(sourceState)
	}

	// A wildcard entry forces the state regardless of column; it is how
	// closed issues reach a terminal state no matter where the board
	// card sits.
	if target, ok := columns[WildcardColumn]; ok {
		return target
	}
	if target, ok := columns[statusColumn]; ok {
		return target
	}
	if target, ok := columns[NoStatusColumn]; ok {
		return target
	}

	return r.globalFallback(sourceState)
}

// globalFallback returns the configured default for a source state,
// bottoming out at Done/New for closed/open.
func (r *StateResolver) globalFallback(sourceState string) string {
	if target, ok := r.config.GlobalStates[sourceState]; ok {
		return target
	}
	if sourceState == "closed" {
		return "Done"
	}
	return "New"
}

// ResolveWorkItemType determines the work item type for an issue from
// its title and labels: ordered title prefixes first, then the label
// table, then the configured default.
func (r *StateResolver) ResolveWorkItemType(title string, labels []string) string {
	for _, rule := range r.config.TypePrefixes {
		if strings.HasPrefix(title, rule.Prefix) {
			return rule.Type
		}
	}
	for _, label := range labels {
		if workItemType, ok := r.config.LabelTypes[strings.ToLower(label)]; ok {
			return workItemType
		}
	}
	return r.config.DefaultType
}

// ResolvePriority returns the priority for the first issue label present
// in the ordered priority table, or 0 when none applies.
func (r *StateResolver) ResolvePriority(labels []string) int {
	for _, rule := range r.config.PriorityLabels {
		for _, label := range labels {
			if strings.EqualFold(label, rule.Label) {
				return rule.Priority
			}
		}
	}
	return 0
}

// IsPriorityLabel reports whether a label is reserved for priority
// mapping and must be excluded from the work item tag set.
func (r *StateResolver) IsPriorityLabel(label string) bool {
	for _, rule := range r.config.PriorityLabels {
		if strings.EqualFold(label, rule.Label) {
			return true
		}
	}
	return false
}
