package numbering

import (
	"time"

	"transdoc/internal/core/numerator"
)

// Observer receives allocation outcomes; the metrics package implements it.
type Observer interface {
	AllocationSucceeded(kind numerator.DocumentKind, quantity int, elapsed time.Duration)
	AllocationFailed(kind numerator.DocumentKind, code string, elapsed time.Duration)
	AllocationRetried(kind numerator.DocumentKind)
}

type nopObserver struct{}

func (nopObserver) AllocationSucceeded(numerator.DocumentKind, int, time.Duration) {}
func (nopObserver) AllocationFailed(numerator.DocumentKind, string, time.Duration) {}
func (nopObserver) AllocationRetried(numerator.DocumentKind) {}
