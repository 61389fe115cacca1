package iteration

import (
	"context"
	"time"

	"github.com/planbridge/boards-sync/pkg/workitem"
)

// IterationResolver defines the iteration operations the patch builder
// and sync engine depend on. This enables dependency injection and
// testing with mock implementations.
type IterationResolver interface {
	LoadAll(ctx context.Context) error
	Exists(ctx context.Context, name string) (bool, error)
	Get(ctx context.Context, name string) (*workitem.Iteration, error)
	CreateIfAbsent(ctx context.Context, name string, start, finish time.Time, path string) (*workitem.Iteration, error)
	CreateFromSprintInfo(ctx context.Context, info SprintInfo, defaultDurationDays int) (*workitem.Iteration, error)
}

var _ IterationResolver = (*Resolver)(nil)
