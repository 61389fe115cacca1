package mapping

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	config, err := Load([]byte(""))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if config.DefaultType != "Task" {
		t.Errorf("DefaultType = %q, want Task", config.DefaultType)
	}
	if config.GlobalStates["open"] != "New" {
		t.Errorf("GlobalStates[open] = %q, want New", config.GlobalStates["open"])
	}
	if config.GlobalStates["closed"] != "Done" {
		t.Errorf("GlobalStates[closed] = %q, want Done", config.GlobalStates["closed"])
	}
}

func TestLoad_NormalizesKeys(t *testing.T) {
	config, err := Load([]byte(`
default_project: SIWAR
users:
  OctoCat: octo@corp.example
label_types:
  Bug: Bug
projects:
  Siwar:
    Bug:
      CLOSED:
        "*": Done
`))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if config.DefaultProject != "siwar" {
		t.Errorf("DefaultProject = %q, want siwar", config.DefaultProject)
	}
	if _, ok := config.Users["octocat"]; !ok {
		t.Error("Users key not lowercased")
	}
	if _, ok := config.LabelTypes["bug"]; !ok {
		t.Error("LabelTypes key not lowercased")
	}
	table, ok := config.Projects["siwar"]
	if !ok {
		t.Fatal("Projects key not lowercased")
	}
	if _, ok := table["Bug"]["closed"]; !ok {
		t.Error("source state key not lowercased")
	}
}

func TestLoad_ValidationErrors(t *testing.T) {
	_, err := Load([]byte(`
type_prefixes:
  - prefix: ""
    type: Epic
priority_labels:
  - label: p9
    priority: 9
custom_fields:
  - source_field: Severity
    fallback: discard
`))
	if err == nil {
		t.Fatal("Load() error = nil, want validation error")
	}
	if !IsValidationError(err) {
		t.Fatalf("Load() error = %T, want *ValidationError", err)
	}

	message := err.Error()
	for _, fragment := range []string{"empty prefix", "out of range", "invalid fallback"} {
		if !strings.Contains(message, fragment) {
			t.Errorf("validation error missing %q:\n%s", fragment, message)
		}
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mapping.yaml")
	content := "default_project: siwar\ndefault_type: Bug\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	config, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if config.DefaultType != "Bug" {
		t.Errorf("DefaultType = %q, want Bug", config.DefaultType)
	}

	if _, err := LoadFile(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("LoadFile(missing) error = nil, want load error")
	}
}

func TestCustomFieldRule(t *testing.T) {
	rule := CustomFieldRule{
		SourceField: "Severity",
		TargetField: "/fields/Microsoft.VSTS.Common.Severity",
		Types:       []string{"Bug"},
		Values:      map[string]string{"high": "1 - Critical"},
	}

	if !rule.AppliesTo("Bug") {
		t.Error("AppliesTo(Bug) = false, want true")
	}
	if rule.AppliesTo("Task") {
		t.Error("AppliesTo(Task) = true, want false")
	}
	if got := rule.Translate("high"); got != "1 - Critical" {
		t.Errorf("Translate(high) = %q, want 1 - Critical", got)
	}
	if got := rule.Translate("medium"); got != "medium" {
		t.Errorf("Translate(medium) = %q, want pass-through", got)
	}
}
