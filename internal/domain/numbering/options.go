// Package numbering is the document number engine: it validates the route,
// resolves the license, reserves a contiguous range of sequence values and
// renders the final document numbers.
package numbering

const (
	// DefaultMaxBatch is the largest quantity a single call may request.
	DefaultMaxBatch = 100
	// DefaultMaxRetries bounds internal retries of ALLOCATION_CONFLICT.
	DefaultMaxRetries = 3
)

// Options tunes the engine.
type Options struct {
	// MaxBatch is the upper bound for quantity (lower bound is always 1).
	MaxBatch int
	// MaxRetries is how many times a conflicting allocation is retried before
	// the conflict is returned to the caller. Zero disables retries.
	MaxRetries int
}

// DefaultOptions returns standard options.
func DefaultOptions() Options {
	return Options{
		MaxBatch:   DefaultMaxBatch,
		MaxRetries: DefaultMaxRetries,
	}
}

func (o Options) normalized() Options {
	if o.MaxBatch < 1 {
		o.MaxBatch = DefaultMaxBatch
	}
	if o.MaxRetries < 0 {
		o.MaxRetries = 0
	}
	return o
}
