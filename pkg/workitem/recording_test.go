package workitem

import (
	"context"
	"path/filepath"
	"testing"
)

func createDoc(title string) PatchDocument {
	return PatchDocument{
		{Op: OpAdd, Path: FieldTitle, Value: title},
		{Op: OpAdd, Path: FieldState, Value: "New"},
		{Op: OpAdd, Path: FieldTags, Value: "github-issue; widgets; issue-1"},
		{Op: OpAdd, Path: FieldHistory, Value: "Created from GitHub issue #1 in octo/widgets"},
	}
}

func TestRecordingStore_CreateAppliesDocument(t *testing.T) {
	store := NewRecordingStore()
	ctx := context.Background()

	item, err := store.Create(ctx, "Bug", createDoc("Fix login timeout (GitHub Issue #1)"))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if item.ID != 1 || item.Rev != 1 || item.Type != "Bug" {
		t.Errorf("item = %+v", item)
	}
	if item.Title != "Fix login timeout (GitHub Issue #1)" {
		t.Errorf("Title = %q", item.Title)
	}
	if len(item.Tags) != 3 || item.Tags[0] != "github-issue" {
		t.Errorf("Tags = %v", item.Tags)
	}
	if len(store.History[1]) != 1 {
		t.Errorf("History = %v", store.History[1])
	}
}

func TestRecordingStore_CreateRequiresTitle(t *testing.T) {
	store := NewRecordingStore()

	_, err := store.Create(context.Background(), "Task", PatchDocument{
		{Op: OpAdd, Path: FieldState, Value: "New"},
	})
	if err == nil {
		t.Fatal("expected error for missing title")
	}
	if !IsValidationError(err) {
		t.Errorf("error = %v, want validation error", err)
	}
	if store.NextID != 1 {
		t.Errorf("NextID advanced on failed create")
	}
}

func TestRecordingStore_QueryByMarkerAndTags(t *testing.T) {
	store := NewRecordingStore()
	ctx := context.Background()

	if _, err := store.Create(ctx, "Bug", createDoc("Fix login timeout (GitHub Issue #1)")); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := store.Create(ctx, "Task", PatchDocument{
		{Op: OpAdd, Path: FieldTitle, Value: "Unrelated work"},
	}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	matches, err := store.Query(ctx, Query{
		TitleContains: "(GitHub Issue #1)",
		RequiredTags:  []string{"github-issue", "widgets"},
	})
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(matches) != 1 || matches[0].ID != 1 {
		t.Errorf("matches = %+v, want only the marked item", matches)
	}

	matches, err = store.Query(ctx, Query{TitleContains: "(GitHub Issue #9)"})
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(matches) != 0 {
		t.Errorf("matches = %+v, want none", matches)
	}
}

func TestRecordingStore_UpdateRevisionsAndRemove(t *testing.T) {
	store := NewRecordingStore()
	ctx := context.Background()

	item, err := store.Create(ctx, "Bug", createDoc("Fix login timeout (GitHub Issue #1)"))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	updated, err := store.Update(ctx, item.ID, PatchDocument{
		{Op: OpReplace, Path: FieldState, Value: "Done"},
		{Op: OpAdd, Path: FieldAssignedTo, Value: "octocat@example.com"},
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.Rev != 2 || updated.State != "Done" || updated.AssignedTo != "octocat@example.com" {
		t.Errorf("updated = %+v", updated)
	}

	updated, err = store.Update(ctx, item.ID, PatchDocument{
		{Op: OpRemove, Path: FieldAssignedTo},
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.AssignedTo != "" {
		t.Errorf("AssignedTo = %q after remove", updated.AssignedTo)
	}

	if _, err := store.Update(ctx, 99, nil); !IsNotFoundError(err) {
		t.Errorf("Update(99) error = %v, want not found", err)
	}
}

func TestRecordingStore_SnapshotRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "workitems.yaml")
	ctx := context.Background()

	store := NewRecordingStore()
	if _, err := store.Create(ctx, "Bug", createDoc("Fix login timeout (GitHub Issue #1)")); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := store.CreateIteration(ctx, &Iteration{Name: "Sprint 68"}); err != nil {
		t.Fatalf("CreateIteration() error = %v", err)
	}
	if err := store.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	reloaded, err := LoadRecordingStore(path)
	if err != nil {
		t.Fatalf("LoadRecordingStore() error = %v", err)
	}
	if reloaded.NextID != 2 {
		t.Errorf("NextID = %d, want 2", reloaded.NextID)
	}
	if item := reloaded.Items[1]; item == nil || item.Type != "Bug" {
		t.Errorf("Items[1] = %+v", item)
	}
	if len(reloaded.Iterations) != 1 || reloaded.Iterations[0].Name != "Sprint 68" {
		t.Errorf("Iterations = %+v", reloaded.Iterations)
	}

	// The next create continues the ID sequence.
	item, err := reloaded.Create(ctx, "Task", PatchDocument{
		{Op: OpAdd, Path: FieldTitle, Value: "Next item"},
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if item.ID != 2 {
		t.Errorf("ID = %d, want sequence to continue", item.ID)
	}
}

func TestRecordingStore_MissingSnapshotIsFresh(t *testing.T) {
	store, err := LoadRecordingStore(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadRecordingStore() error = %v", err)
	}
	if store.NextID != 1 || len(store.Items) != 0 {
		t.Errorf("store = %+v, want fresh", store)
	}
}
