package workitem

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// RecordingStore is an in-memory Store and IterationStore that applies
// patch documents for real and can snapshot its contents to a YAML file.
// It backs the CLI dry-run mode and the workflow tests: created IDs are
// deterministic, and a reloaded snapshot preserves them so identity
// resolution converges across runs.
type RecordingStore struct {
	NextID     int               `yaml:"next_id"`
	Items      map[int]*WorkItem `yaml:"items"`
	History    map[int][]string  `yaml:"history,omitempty"`
	Comments   map[int][]string  `yaml:"comments,omitempty"`
	Iterations []*Iteration      `yaml:"iterations,omitempty"`
	BaseURL    string            `yaml:"base_url,omitempty"`
}

// NewRecordingStore creates an empty recording store.
func NewRecordingStore() *RecordingStore {
	return &RecordingStore{
		NextID:   1,
		Items:    make(map[int]*WorkItem),
		History:  make(map[int][]string),
		Comments: make(map[int][]string),
		BaseURL:  "local://workitems",
	}
}

// LoadRecordingStore restores a store from a snapshot file. A missing
// file yields a fresh store rather than an error, so first runs need no
// setup.
func LoadRecordingStore(path string) (*RecordingStore, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return NewRecordingStore(), nil
	}
	if err != nil {
		return nil, &StoreError{Type: "snapshot_error", Message: "failed to read snapshot", Err: err, Context: path}
	}

	store := NewRecordingStore()
	if err := yaml.Unmarshal(data, store); err != nil {
		return nil, &StoreError{Type: "snapshot_error", Message: "failed to parse snapshot", Err: err, Context: path}
	}
	if store.Items == nil {
		store.Items = make(map[int]*WorkItem)
	}
	if store.History == nil {
		store.History = make(map[int][]string)
	}
	if store.Comments == nil {
		store.Comments = make(map[int][]string)
	}
	if store.NextID < 1 {
		store.NextID = 1
	}
	return store, nil
}

// Save writes the store contents to a snapshot file.
func (s *RecordingStore) Save(path string) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return &StoreError{Type: "snapshot_error", Message: "failed to marshal snapshot", Err: err, Context: path}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return &StoreError{Type: "snapshot_error", Message: "failed to write snapshot", Err: err, Context: path}
	}
	return nil
}

// Query implements the Store interface.
func (s *RecordingStore) Query(ctx context.Context, query Query) ([]*WorkItem, error) {
	var matches []*WorkItem
	for id := 1; id < s.NextID; id++ {
		item, ok := s.Items[id]
		if !ok {
			continue
		}
		if query.TitleContains != "" && !strings.Contains(item.Title, query.TitleContains) {
			continue
		}
		tagged := true
		for _, tag := range query.RequiredTags {
			if !item.HasTag(tag) {
				tagged = false
				break
			}
		}
		if !tagged {
			continue
		}
		matches = append(matches, item)
	}
	return matches, nil
}

// Create implements the Store interface.
func (s *RecordingStore) Create(ctx context.Context, workItemType string, doc PatchDocument) (*WorkItem, error) {
	if workItemType == "" {
		return nil, &StoreError{Type: "validation_error", Message: "work item type cannot be empty"}
	}

	item := &WorkItem{
		ID:    s.NextID,
		Rev:   1,
		Type:  workItemType,
		State: "New",
	}
	item.URL = fmt.Sprintf("%s/%d", s.BaseURL, item.ID)

	if err := s.apply(item, doc); err != nil {
		return nil, err
	}
	if item.Title == "" {
		return nil, &StoreError{
			Type:    "validation_error",
			Message: "title is required",
			Context: fmt.Sprintf("create %s", workItemType),
		}
	}

	s.NextID++
	s.Items[item.ID] = item
	return item, nil
}

// Update implements the Store interface.
func (s *RecordingStore) Update(ctx context.Context, id int, doc PatchDocument) (*WorkItem, error) {
	item, exists := s.Items[id]
	if !exists {
		return nil, &StoreError{Type: "not_found", Message: "work item not found", Context: fmt.Sprintf("#%d", id)}
	}
	if err := s.apply(item, doc); err != nil {
		return nil, err
	}
	item.Rev++
	item.ChangedDate = time.Now()
	return item, nil
}

// AddComment implements the Store interface.
func (s *RecordingStore) AddComment(ctx context.Context, id int, text string) error {
	if _, exists := s.Items[id]; !exists {
		return &StoreError{Type: "not_found", Message: "work item not found", Context: fmt.Sprintf("#%d", id)}
	}
	s.Comments[id] = append(s.Comments[id], text)
	return nil
}

// IterationClient adapts the store to the IterationStore interface; the
// method set cannot live on RecordingStore directly because Create is
// already taken by the Store interface.
func (s *RecordingStore) IterationClient() IterationStore {
	return &recordingIterations{store: s}
}

type recordingIterations struct {
	store *RecordingStore
}

func (r *recordingIterations) ListAll(ctx context.Context) ([]*Iteration, error) {
	return r.store.Iterations, nil
}

func (r *recordingIterations) Create(ctx context.Context, iteration *Iteration) (*Iteration, error) {
	return r.store.CreateIteration(ctx, iteration)
}

// CreateIteration adds an iteration to the store.
func (s *RecordingStore) CreateIteration(ctx context.Context, iteration *Iteration) (*Iteration, error) {
	if iteration == nil || iteration.Name == "" {
		return nil, &StoreError{Type: "validation_error", Message: "iteration name cannot be empty"}
	}
	stored := *iteration
	if stored.Path == "" {
		stored.Path = stored.Name
	}
	stored.ID = fmt.Sprintf("iter-%d", len(s.Iterations)+1)
	s.Iterations = append(s.Iterations, &stored)
	return &stored, nil
}

// apply replays patch operations onto the item in document order.
func (s *RecordingStore) apply(item *WorkItem, doc PatchDocument) error {
	for _, op := range doc {
		switch op.Path {
		case FieldTitle:
			item.Title = stringValue(op.Value)
		case FieldDescription:
			item.Description = stringValue(op.Value)
		case FieldState:
			item.State = stringValue(op.Value)
		case FieldTags:
			item.Tags = SplitTags(stringValue(op.Value))
		case FieldAreaPath:
			item.AreaPath = stringValue(op.Value)
		case FieldIterationPath:
			item.IterationPath = stringValue(op.Value)
		case FieldAssignedTo:
			if op.Op == OpRemove {
				item.AssignedTo = ""
				continue
			}
			item.AssignedTo = stringValue(op.Value)
		case FieldHistory:
			s.History[item.ID] = append(s.History[item.ID], stringValue(op.Value))
		case PathRelations:
			if op.Op == OpAdd {
				if rel, ok := op.Value.(Relation); ok {
					item.Relations = append(item.Relations, rel)
				}
			}
		default:
			// Custom and scheduling fields are accepted without a typed
			// slot; the snapshot does not need to render them.
		}
	}
	return nil
}

func stringValue(v interface{}) string {
	switch value := v.(type) {
	case string:
		return value
	case fmt.Stringer:
		return value.String()
	default:
		return fmt.Sprintf("%v", value)
	}
}
