// Package iteration resolves sprint names to target-system iterations,
// creating them on demand. A resolver owns a run-scoped cache: it is
// constructed per run, populated lazily from the iteration store, and
// never invalidated intra-run.
package iteration

import (
	"context"
	"strings"
	"time"

	"github.com/go-logr/logr"

	"github.com/planbridge/boards-sync/pkg/sprint"
	"github.com/planbridge/boards-sync/pkg/workitem"
)

// SprintInfo carries the raw sprint signal extracted from a board
// iteration field.
type SprintInfo struct {
	Name string
	// StartDate is the explicit start carried by the field, zero when
	// the board provides none.
	StartDate time.Time
	// DurationDays is the explicit length, 0 when absent.
	DurationDays int
}

// Resolver caches target-system iterations by normalized name and
// creates missing ones idempotently.
type Resolver struct {
	store  workitem.IterationStore
	logger logr.Logger

	// rootPath prefixes the path of iterations this resolver creates.
	rootPath string

	cache  map[string]*workitem.Iteration
	loaded bool

	now func() time.Time
}

// NewResolver creates an iteration resolver. rootPath is the iteration
// tree node new sprints are created under (usually the team project).
func NewResolver(store workitem.IterationStore, rootPath string, logger logr.Logger) *Resolver {
	return &Resolver{
		store:    store,
		logger:   logger,
		rootPath: rootPath,
		cache:    make(map[string]*workitem.Iteration),
		now:      time.Now,
	}
}

// LoadAll populates the cache from the store. It runs at most once per
// resolver; later calls are no-ops.
func (r *Resolver) LoadAll(ctx context.Context) error {
	if r.loaded {
		return nil
	}

	iterations, err := r.store.ListAll(ctx)
	if err != nil {
		return &ResolverError{
			Type:    "load_error",
			Message: "failed to list iterations",
			Err:     err,
		}
	}

	for _, iter := range iterations {
		r.cache[normalizeName(iter.Name)] = iter
	}
	r.loaded = true
	r.logger.V(1).Info("iteration cache loaded", "count", len(r.cache))
	return nil
}

// Exists reports whether an iteration with the given name is known.
func (r *Resolver) Exists(ctx context.Context, name string) (bool, error) {
	if err := r.LoadAll(ctx); err != nil {
		return false, err
	}
	_, ok := r.cache[normalizeName(name)]
	return ok, nil
}

// Get returns the cached iteration for a name, or nil when unknown.
func (r *Resolver) Get(ctx context.Context, name string) (*workitem.Iteration, error) {
	if err := r.LoadAll(ctx); err != nil {
		return nil, err
	}
	return r.cache[normalizeName(name)], nil
}

// CreateIfAbsent creates an iteration unless one with the same
// normalized name is already cached, in which case the cached entry is
// returned unchanged. This is the idempotence guarantee: at most one
// iteration per normalized name per run.
func (r *Resolver) CreateIfAbsent(ctx context.Context, name string, start, finish time.Time, path string) (*workitem.Iteration, error) {
	if name == "" {
		return nil, &ResolverError{Type: "invalid_input", Message: "iteration name cannot be empty"}
	}
	if err := r.LoadAll(ctx); err != nil {
		return nil, err
	}

	key := normalizeName(name)
	if existing, ok := r.cache[key]; ok {
		return existing, nil
	}

	if path == "" {
		path = r.rootPath + "\\" + name
	}
	created, err := r.store.Create(ctx, &workitem.Iteration{
		Name:       name,
		Path:       path,
		StartDate:  start,
		FinishDate: finish,
	})
	if err != nil {
		return nil, &ResolverError{
			Type:    "create_error",
			Message: "failed to create iteration",
			Err:     err,
			Context: name,
		}
	}

	r.cache[key] = created
	r.logger.Info("created iteration", "name", name, "start", start.Format("2006-01-02"), "finish", finish.Format("2006-01-02"))
	return created, nil
}

// CreateFromSprintInfo resolves a board sprint field to an iteration,
// creating it when absent. Dates come from, in order: the field's
// explicit start+duration, the parsed sprint label, and finally a
// low-confidence window starting now and running defaultDurationDays.
func (r *Resolver) CreateFromSprintInfo(ctx context.Context, info SprintInfo, defaultDurationDays int) (*workitem.Iteration, error) {
	if info.Name == "" {
		return nil, nil
	}

	var start, finish time.Time
	switch {
	case !info.StartDate.IsZero() && info.DurationDays > 0:
		start = info.StartDate
		finish = start.AddDate(0, 0, info.DurationDays)

	case info.StartDate.IsZero():
		if parsed := sprint.Parse(info.Name, r.now().Year()); parsed != nil {
			start = parsed.Start
			finish = parsed.End
			if parsed.Approximate {
				r.logger.Info("sprint label month not recognized, dates are approximate", "sprint", info.Name)
			}
		}
	}

	if start.IsZero() {
		start = r.now()
		finish = start.AddDate(0, 0, defaultDurationDays)
		r.logger.Info("sprint dates unresolved, falling back to current date",
			"sprint", info.Name, "duration_days", defaultDurationDays)
	}

	return r.CreateIfAbsent(ctx, info.Name, start, finish, "")
}

// normalizeName folds an iteration name for cache lookups.
func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
