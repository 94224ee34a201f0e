package numbering

import (
	"context"

	"transdoc/internal/core/apperror"
	"transdoc/internal/core/numerator"
	"transdoc/pkg/logger"
)

// Range is a reserved run of consecutive sequence values, both ends inclusive.
type Range struct {
	First int64 `json:"first"`
	Last  int64 `json:"last"`
}

// Len returns the number of values in r.
func (r Range) Len() int {
	return int(r.Last - r.First + 1)
}

// Values expands r in increasing order.
func (r Range) Values() []int64 {
	out := make([]int64, 0, r.Len())
	for v := r.First; v <= r.Last; v++ {
		out = append(out, v)
	}
	return out
}

// Allocator reserves ranges from a Sequencer.
type Allocator struct {
	seq     numerator.Sequencer
	opts    Options
	onRetry func(kind numerator.DocumentKind)
}

// NewAllocator creates an allocator over seq.
func NewAllocator(seq numerator.Sequencer, opts Options) *Allocator {
	return &Allocator{seq: seq, opts: opts.normalized()}
}

// ValidateQuantity checks 1 <= quantity <= MaxBatch.
func (a *Allocator) ValidateQuantity(quantity int) error {
	if quantity < 1 || quantity > a.opts.MaxBatch {
		return apperror.NewInvalidQuantity(quantity, 1, a.opts.MaxBatch)
	}
	return nil
}

// Allocate reserves quantity consecutive values for key. An absent counter is
// seeded so that the first value equals start.
//
// Reserved values are consumed even if the caller later fails to use them.
func (a *Allocator) Allocate(ctx context.Context, key numerator.Key, start int64, quantity int) (Range, error) {
	if err := a.ValidateQuantity(quantity); err != nil {
		return Range{}, err
	}
	if start < 1 {
		start = 1
	}

	var err error
	for attempt := 0; attempt <= a.opts.MaxRetries; attempt++ {
		if attempt > 0 {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return Range{}, ctxErr
			}
			logger.Warn(ctx, "sequence allocation conflict, retrying",
				"key", key.String(),
				"attempt", attempt)
			if a.onRetry != nil {
				a.onRetry(key.Kind)
			}
		}

		var previous int64
		previous, err = a.seq.IncrementBy(ctx, key, start, int64(quantity))
		if err == nil {
			return Range{First: previous + 1, Last: previous + int64(quantity)}, nil
		}
		if !apperror.IsAllocationConflict(err) {
			return Range{}, err
		}
	}
	return Range{}, err
}

// Current returns the last allocated value for key.
func (a *Allocator) Current(ctx context.Context, key numerator.Key) (int64, bool, error) {
	return a.seq.Current(ctx, key)
}

// Rebase raises the counter of key to last; lower values are ignored.
func (a *Allocator) Rebase(ctx context.Context, key numerator.Key, last int64) (int64, error) {
	if last < 0 {
		return 0, apperror.NewValidation("sequence value cannot be negative").WithDetail("value", last)
	}
	return a.seq.Rebase(ctx, key, last)
}
