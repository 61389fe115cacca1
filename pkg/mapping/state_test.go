package mapping

import (
	"testing"

	"github.com/go-logr/logr"
)

func testConfig(t *testing.T) *Config {
	t.Helper()
	config, err := Load([]byte(`
default_project: siwar
default_type: Task
global_states:
  open: New
  closed: Done
type_prefixes:
  - prefix: "[Epic]"
    type: Epic
  - prefix: "[Feature]"
    type: Feature
label_types:
  task: Task
  bug: Bug
priority_labels:
  - label: p1
    priority: 1
  - label: p2
    priority: 2
projects:
  siwar:
    Bug:
      closed:
        "*": Done
      open:
        In Progress: Active
        no status: New
    Task:
      open:
        In Progress: Active
        In Review: Active
        no status: New
`))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	return config
}

func TestStateResolver_Resolve(t *testing.T) {
	resolver := NewStateResolver(testConfig(t), logr.Discard())

	tests := []struct {
		name         string
		workItemType string
		sourceState  string
		projectKey   string
		statusColumn string
		want         string
	}{
		{
			name:         "wildcard ignores status column",
			workItemType: "Bug",
			sourceState:  "closed",
			projectKey:   "siwar",
			statusColumn: "In Production",
			want:         "Done",
		},
		{
			name:         "wildcard beats explicit column",
			workItemType: "Bug",
			sourceState:  "closed",
			projectKey:   "siwar",
			statusColumn: "In Progress",
			want:         "Done",
		},
		{
			name:         "explicit column match",
			workItemType: "Bug",
			sourceState:  "open",
			projectKey:   "siwar",
			statusColumn: "In Progress",
			want:         "Active",
		},
		{
			name:         "no status sentinel for unlisted column",
			workItemType: "Bug",
			sourceState:  "open",
			projectKey:   "siwar",
			statusColumn: "Backlog",
			want:         "New",
		},
		{
			name:         "empty status column uses global fallback",
			workItemType: "Bug",
			sourceState:  "open",
			projectKey:   "siwar",
			statusColumn: "",
			want:         "New",
		},
		{
			name:         "unconfigured project uses global fallback",
			workItemType: "Bug",
			sourceState:  "closed",
			projectKey:   "other",
			statusColumn: "In Progress",
			want:         "Done",
		},
		{
			name:         "empty project key uses default project",
			workItemType: "Bug",
			sourceState:  "closed",
			projectKey:   "",
			statusColumn: "Anything",
			want:         "Done",
		},
		{
			name:         "type without table uses global fallback",
			workItemType: "Epic",
			sourceState:  "open",
			projectKey:   "siwar",
			statusColumn: "In Progress",
			want:         "New",
		},
		{
			name:         "state without sub-table uses global fallback",
			workItemType: "Task",
			sourceState:  "closed",
			projectKey:   "siwar",
			statusColumn: "In Progress",
			want:         "Done",
		},
		{
			name:         "project key matched case-insensitively",
			workItemType: "Bug",
			sourceState:  "open",
			projectKey:   "SIWAR",
			statusColumn: "In Progress",
			want:         "Active",
		},
		{
			name:         "source state matched case-insensitively",
			workItemType: "Bug",
			sourceState:  "CLOSED",
			projectKey:   "siwar",
			statusColumn: "In Production",
			want:         "Done",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := resolver.Resolve(tt.workItemType, tt.sourceState, tt.projectKey, tt.statusColumn)
			if got != tt.want {
				t.Errorf("Resolve(%q, %q, %q, %q) = %q, want %q",
					tt.workItemType, tt.sourceState, tt.projectKey, tt.statusColumn, got, tt.want)
			}
		})
	}
}

func TestStateResolver_ResolveNeverEmpty(t *testing.T) {
	// Even a zero-value config must resolve to a usable state.
	config, err := Load([]byte("default_type: Task"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	resolver := NewStateResolver(config, logr.Discard())

	if got := resolver.Resolve("Bug", "closed", "", ""); got != "Done" {
		t.Errorf("Resolve(closed) = %q, want Done", got)
	}
	if got := resolver.Resolve("Bug", "open", "", ""); got != "New" {
		t.Errorf("Resolve(open) = %q, want New", got)
	}
	if got := resolver.Resolve("Bug", "unknown", "", ""); got != "New" {
		t.Errorf("Resolve(unknown) = %q, want New", got)
	}
}

func TestStateResolver_ResolveWorkItemType(t *testing.T) {
	resolver := NewStateResolver(testConfig(t), logr.Discard())

	tests := []struct {
		name   string
		title  string
		labels []string
		want   string
	}{
		{
			name:  "title prefix wins",
			title: "[Epic] Launch V2",
			want:  "Epic",
		},
		{
			name:   "prefix beats label",
			title:  "[Feature] Dark mode",
			labels: []string{"bug"},
			want:   "Feature",
		},
		{
			name:   "label match when no prefix",
			title:  "Fix login crash",
			labels: []string{"regression", "task"},
			want:   "Task",
		},
		{
			name:   "label matched case-insensitively",
			title:  "Fix login crash",
			labels: []string{"BUG"},
			want:   "Bug",
		},
		{
			name:  "default type when nothing matches",
			title: "Untagged request",
			want:  "Task",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := resolver.ResolveWorkItemType(tt.title, tt.labels)
			if got != tt.want {
				t.Errorf("ResolveWorkItemType(%q, %v) = %q, want %q", tt.title, tt.labels, got, tt.want)
			}
		})
	}
}

func TestStateResolver_ResolvePriority(t *testing.T) {
	resolver := NewStateResolver(testConfig(t), logr.Discard())

	if got := resolver.ResolvePriority([]string{"bug", "p2"}); got != 2 {
		t.Errorf("ResolvePriority() = %d, want 2", got)
	}
	// Table order decides, not label order.
	if got := resolver.ResolvePriority([]string{"p2", "p1"}); got != 1 {
		t.Errorf("ResolvePriority() = %d, want 1 (table order wins)", got)
	}
	if got := resolver.ResolvePriority([]string{"bug"}); got != 0 {
		t.Errorf("ResolvePriority() = %d, want 0 for no priority label", got)
	}

	if !resolver.IsPriorityLabel("P1") {
		t.Error("IsPriorityLabel(P1) = false, want true")
	}
	if resolver.IsPriorityLabel("bug") {
		t.Error("IsPriorityLabel(bug) = true, want false")
	}
}
