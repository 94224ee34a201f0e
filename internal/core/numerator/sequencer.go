package numerator

import (
	"context"

	"transdoc/internal/core/id"
)

// Key identifies one sequence counter. Numbers are unique per key.
type Key struct {
	Kind      DocumentKind
	CarrierID id.ID
}

// String renders the key for logs and metric labels.
func (k Key) String() string {
	return string(k.Kind) + ":" + k.CarrierID.String()
}

// Sequencer is the storage primitive behind number allocation.
// This is the domain contract - implementations live in infrastructure layer.
//
// Every implementation must make IncrementBy a single critical section per key:
// two concurrent calls for the same key never observe the same previous value,
// and calls for different keys do not block each other.
type Sequencer interface {
	// IncrementBy advances the counter for key by n and returns the value it held
	// before the increment. An absent counter starts at seed-1, so the first
	// reserved value equals seed. A failed call leaves the counter untouched.
	IncrementBy(ctx context.Context, key Key, seed int64, n int64) (previous int64, err error)

	// Current returns the last allocated value. ok is false when nothing has been
	// allocated for key yet.
	Current(ctx context.Context, key Key) (last int64, ok bool, err error)

	// Rebase raises the counter to last when it is currently lower and returns the
	// resulting value. It never lowers a counter.
	Rebase(ctx context.Context, key Key, last int64) (int64, error)
}
