package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestFixedDelayPacer_EnforcesDelay(t *testing.T) {
	pacer := NewFixedDelayPacer(20 * time.Millisecond)
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 3; i++ {
		if err := pacer.Wait(ctx); err != nil {
			t.Fatalf("Wait() error = %v", err)
		}
	}
	elapsed := time.Since(start)

	// First call is free; the next two each wait the full delay.
	if elapsed < 40*time.Millisecond {
		t.Errorf("three calls took %v, want >= 40ms", elapsed)
	}
}

func TestFixedDelayPacer_ZeroDelayNeverBlocks(t *testing.T) {
	pacer := NewFixedDelayPacer(0)
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 100; i++ {
		if err := pacer.Wait(ctx); err != nil {
			t.Fatalf("Wait() error = %v", err)
		}
	}
	if elapsed := time.Since(start); elapsed > 50*time.Millisecond {
		t.Errorf("100 unpaced calls took %v", elapsed)
	}
}

func TestFixedDelayPacer_CancelledContext(t *testing.T) {
	pacer := NewFixedDelayPacer(time.Hour)
	ctx, cancel := context.WithCancel(context.Background())

	if err := pacer.Wait(ctx); err != nil {
		t.Fatalf("first Wait() error = %v", err)
	}

	cancel()
	if err := pacer.Wait(ctx); err != context.Canceled {
		t.Errorf("Wait() error = %v, want context.Canceled", err)
	}
}
