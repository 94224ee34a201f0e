package numerator

import (
	"context"
)

// MockSequencer is a test implementation of Sequencer.
// Use in unit tests to avoid database dependencies.
type MockSequencer struct {
	IncrementByFunc func(ctx context.Context, key Key, seed int64, n int64) (int64, error)
	CurrentFunc     func(ctx context.Context, key Key) (int64, bool, error)
	RebaseFunc      func(ctx context.Context, key Key, last int64) (int64, error)

	// Calls counts IncrementBy invocations.
	Calls int
}

// IncrementBy implements Sequencer.
func (m *MockSequencer) IncrementBy(ctx context.Context, key Key, seed int64, n int64) (int64, error) {
	m.Calls++
	if m.IncrementByFunc != nil {
		return m.IncrementByFunc(ctx, key, seed, n)
	}
	// Default: behave as a fresh counter
	return seed - 1, nil
}

// Current implements Sequencer.
func (m *MockSequencer) Current(ctx context.Context, key Key) (int64, bool, error) {
	if m.CurrentFunc != nil {
		return m.CurrentFunc(ctx, key)
	}
	return 0, false, nil
}

// Rebase implements Sequencer.
func (m *MockSequencer) Rebase(ctx context.Context, key Key, last int64) (int64, error) {
	if m.RebaseFunc != nil {
		return m.RebaseFunc(ctx, key, last)
	}
	return last, nil
}

// Ensure compile-time interface compliance.
var _ Sequencer = (*MockSequencer)(nil)
