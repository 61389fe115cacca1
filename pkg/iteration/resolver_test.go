package iteration

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-logr/logr"

	"github.com/planbridge/boards-sync/pkg/workitem"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func newTestResolver(store workitem.IterationStore) *Resolver {
	r := NewResolver(store, "Siwar", logr.Discard())
	r.now = func() time.Time { return date(2024, time.October, 1) }
	return r
}

func TestResolver_LoadAllOnce(t *testing.T) {
	store := workitem.NewMockIterationStore(
		&workitem.Iteration{Name: "Sprint 67", Path: "Siwar\\Sprint 67"},
	)
	resolver := newTestResolver(store)

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if err := resolver.LoadAll(ctx); err != nil {
			t.Fatalf("LoadAll() error = %v", err)
		}
	}
	if store.ListAllCalls != 1 {
		t.Errorf("ListAll called %d times, want 1", store.ListAllCalls)
	}

	exists, err := resolver.Exists(ctx, "sprint 67")
	if err != nil {
		t.Fatalf("Exists() error = %v", err)
	}
	if !exists {
		t.Error("Exists(sprint 67) = false, want case-insensitive hit")
	}
}

func TestResolver_LoadAllError(t *testing.T) {
	store := workitem.NewMockIterationStore()
	store.ListAllError = errors.New("boom")
	resolver := newTestResolver(store)

	if _, err := resolver.Get(context.Background(), "Sprint 1"); !IsLoadError(err) {
		t.Errorf("Get() error = %v, want load error", err)
	}
}

func TestResolver_CreateIfAbsent_Idempotent(t *testing.T) {
	store := workitem.NewMockIterationStore()
	resolver := newTestResolver(store)
	ctx := context.Background()

	start, finish := date(2024, time.October, 13), date(2024, time.October, 26)
	first, err := resolver.CreateIfAbsent(ctx, "Sprint 68", start, finish, "")
	if err != nil {
		t.Fatalf("CreateIfAbsent() error = %v", err)
	}
	if first.Path != "Siwar\\Sprint 68" {
		t.Errorf("Path = %q, want Siwar\\Sprint 68", first.Path)
	}

	// Same normalized name - cached entry returned, no second create.
	second, err := resolver.CreateIfAbsent(ctx, "SPRINT 68", start.AddDate(0, 0, 7), finish.AddDate(0, 0, 7), "")
	if err != nil {
		t.Fatalf("CreateIfAbsent() second call error = %v", err)
	}
	if second != first {
		t.Error("second CreateIfAbsent returned a different iteration")
	}
	if len(store.CreateCalls) != 1 {
		t.Errorf("store.Create called %d times, want 1", len(store.CreateCalls))
	}
}

func TestResolver_CreateFromSprintInfo(t *testing.T) {
	tests := []struct {
		name       string
		info       SprintInfo
		wantStart  time.Time
		wantFinish time.Time
	}{
		{
			name: "explicit start and duration",
			info: SprintInfo{
				Name:         "Sprint 70",
				StartDate:    date(2024, time.November, 4),
				DurationDays: 14,
			},
			wantStart:  date(2024, time.November, 4),
			wantFinish: date(2024, time.November, 18),
		},
		{
			name:       "dates parsed from label",
			info:       SprintInfo{Name: "Sprint 68 oct 13 - oct 26"},
			wantStart:  date(2024, time.October, 13),
			wantFinish: date(2024, time.October, 26),
		},
		{
			name:       "unparseable label falls back to now plus default",
			info:       SprintInfo{Name: "Next Up"},
			wantStart:  date(2024, time.October, 1),
			wantFinish: date(2024, time.October, 15),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := workitem.NewMockIterationStore()
			resolver := newTestResolver(store)

			got, err := resolver.CreateFromSprintInfo(context.Background(), tt.info, 14)
			if err != nil {
				t.Fatalf("CreateFromSprintInfo() error = %v", err)
			}
			if got == nil {
				t.Fatal("CreateFromSprintInfo() = nil, want iteration")
			}
			if !got.StartDate.Equal(tt.wantStart) {
				t.Errorf("StartDate = %v, want %v", got.StartDate, tt.wantStart)
			}
			if !got.FinishDate.Equal(tt.wantFinish) {
				t.Errorf("FinishDate = %v, want %v", got.FinishDate, tt.wantFinish)
			}
		})
	}
}

func TestResolver_CreateFromSprintInfo_Idempotent(t *testing.T) {
	store := workitem.NewMockIterationStore()
	resolver := newTestResolver(store)
	ctx := context.Background()

	info := SprintInfo{Name: "Sprint 68 oct 13 - oct 26"}
	first, err := resolver.CreateFromSprintInfo(ctx, info, 14)
	if err != nil {
		t.Fatalf("CreateFromSprintInfo() error = %v", err)
	}
	second, err := resolver.CreateFromSprintInfo(ctx, info, 14)
	if err != nil {
		t.Fatalf("CreateFromSprintInfo() second call error = %v", err)
	}

	if second != first {
		t.Error("second call returned a different iteration")
	}
	if len(store.CreateCalls) != 1 {
		t.Errorf("store.Create called %d times, want 1", len(store.CreateCalls))
	}
}

func TestResolver_CreateFromSprintInfo_EmptyName(t *testing.T) {
	resolver := newTestResolver(workitem.NewMockIterationStore())

	got, err := resolver.CreateFromSprintInfo(context.Background(), SprintInfo{}, 14)
	if err != nil {
		t.Fatalf("CreateFromSprintInfo() error = %v", err)
	}
	if got != nil {
		t.Errorf("CreateFromSprintInfo() = %v, want nil for empty name", got)
	}
}
