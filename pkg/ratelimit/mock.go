package ratelimit

import "context"

// MockPacer provides a mock Pacer for testing.
type MockPacer struct {
	WaitError error

	// WaitCalls counts invocations.
	WaitCalls int
}

// NewMockPacer creates a mock pacer that never blocks.
func NewMockPacer() *MockPacer {
	return &MockPacer{}
}

// Wait implements the Pacer interface.
func (m *MockPacer) Wait(ctx context.Context) error {
	m.WaitCalls++
	if m.WaitError != nil {
		return m.WaitError
	}
	return ctx.Err()
}
