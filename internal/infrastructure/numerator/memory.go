package numerator

import (
	"context"
	"sync"

	corenumerator "transdoc/internal/core/numerator"
)

// Memory is an in-process Sequencer. Each key has its own lock, so calls for
// different keys never wait on each other. Counters live only as long as the
// process.
type Memory struct {
	mu       sync.Mutex // guards counters map, not the counters themselves
	counters map[corenumerator.Key]*counter
}

type counter struct {
	mu      sync.Mutex
	last    int64
	started bool
}

// Ensure compile-time interface compliance.
var _ corenumerator.Sequencer = (*Memory)(nil)

// NewMemory creates an empty in-memory sequencer.
func NewMemory() *Memory {
	return &Memory{counters: make(map[corenumerator.Key]*counter)}
}

func (m *Memory) slot(key corenumerator.Key) *counter {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.counters[key]
	if !ok {
		c = &counter{}
		m.counters[key] = c
	}
	return c
}

// IncrementBy implements Sequencer.
func (m *Memory) IncrementBy(ctx context.Context, key corenumerator.Key, seed int64, n int64) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	c := m.slot(key)
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.started {
		c.last = seed - 1
		c.started = true
	}
	previous := c.last
	c.last += n
	return previous, nil
}

// Current implements Sequencer.
func (m *Memory) Current(_ context.Context, key corenumerator.Key) (int64, bool, error) {
	c := m.slot(key)
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last, c.started, nil
}

// Rebase implements Sequencer.
func (m *Memory) Rebase(_ context.Context, key corenumerator.Key, last int64) (int64, error) {
	c := m.slot(key)
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.started || last > c.last {
		c.last = last
		c.started = true
	}
	return c.last, nil
}
