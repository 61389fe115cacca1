// Package ratelimit paces calls against the tracker and work item APIs.
// The engine processes records sequentially, so pacing is a fixed
// inter-call delay rather than adaptive backoff: simple, predictable,
// and sufficient to stay inside both systems' request budgets.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Pacer blocks until it is safe to make the next request.
// This enables dependency injection and testing with mock implementations.
type Pacer interface {
	Wait(ctx context.Context) error
}

// FixedDelayPacer enforces a minimum delay between consecutive calls.
type FixedDelayPacer struct {
	delay    time.Duration
	lastCall time.Time
	mutex    sync.Mutex
}

// NewFixedDelayPacer creates a pacer with the given inter-call delay.
// A non-positive delay disables pacing.
func NewFixedDelayPacer(delay time.Duration) *FixedDelayPacer {
	return &FixedDelayPacer{delay: delay}
}

// Wait implements the Pacer interface.
func (p *FixedDelayPacer) Wait(ctx context.Context) error {
	if p.delay <= 0 {
		return ctx.Err()
	}

	p.mutex.Lock()
	elapsed := time.Since(p.lastCall)
	wait := p.delay - elapsed
	if wait < 0 {
		wait = 0
	}
	p.lastCall = time.Now().Add(wait)
	p.mutex.Unlock()

	if wait == 0 {
		return ctx.Err()
	}

	select {
	case <-time.After(wait):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Delay returns the configured inter-call delay.
func (p *FixedDelayPacer) Delay() time.Duration {
	return p.delay
}
