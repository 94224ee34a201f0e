package numbering

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"transdoc/internal/core/apperror"
	"transdoc/internal/core/id"
	"transdoc/internal/core/numerator"
	"transdoc/internal/domain/carrier"
	"transdoc/internal/domain/country"
	"transdoc/internal/domain/license"
	"transdoc/pkg/logger"
)

var tracer = otel.Tracer("transdoc/numbering")

// NumberRecord is one allocated document number. It is not persisted here;
// issuers store it as part of the document row.
type NumberRecord struct {
	Kind              numerator.DocumentKind `json:"kind"`
	Sequence          int64                  `json:"sequence"`
	Origin            string                 `json:"origin"`
	Destination       string                 `json:"destination"`
	ComplementaryCode string                 `json:"complementaryCode"`
	Number            string                 `json:"number"`
}

// Service is the single entry point for document numbering. Issuers never
// touch the resolver or the sequencer directly.
type Service struct {
	carriers  carrier.Repository
	resolver  *license.Resolver
	allocator *Allocator
	observer  Observer
}

// NewService creates the numbering service.
func NewService(carriers carrier.Repository, resolver *license.Resolver, seq numerator.Sequencer, opts Options) *Service {
	s := &Service{
		carriers:  carriers,
		resolver:  resolver,
		allocator: NewAllocator(seq, opts),
		observer:  nopObserver{},
	}
	s.allocator.onRetry = func(kind numerator.DocumentKind) { s.observer.AllocationRetried(kind) }
	return s
}

// WithObserver attaches an allocation observer.
func (s *Service) WithObserver(o Observer) *Service {
	if o != nil {
		s.observer = o
	}
	return s
}

// MaxBatch returns the configured upper bound for quantity.
func (s *Service) MaxBatch() int {
	return s.allocator.opts.MaxBatch
}

// AllocateNumbers validates the request, resolves the carrier license for the
// route, reserves quantity consecutive values under (kind, carrier) and renders
// them.
//
// The call is all-or-nothing: any validation or resolution failure happens
// before the counter is touched, and the counter advances exactly once, by
// exactly quantity, on success.
func (s *Service) AllocateNumbers(
	ctx context.Context,
	kind numerator.DocumentKind,
	carrierID id.ID,
	origin, destination string,
	quantity int,
) ([]NumberRecord, error) {
	ctx, span := tracer.Start(ctx, "numbering.allocate",
		trace.WithAttributes(
			attribute.String("document.kind", string(kind)),
			attribute.String("carrier.id", carrierID.String()),
			attribute.String("route", origin+"-"+destination),
			attribute.Int("quantity", quantity),
		))
	defer span.End()

	started := time.Now()
	records, err := s.allocate(ctx, kind, carrierID, origin, destination, quantity)
	if err != nil {
		code := apperror.CodeInternal
		if appErr, ok := apperror.AsAppError(err); ok {
			code = appErr.Code
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, code)
		s.observer.AllocationFailed(kind, code, time.Since(started))
		return nil, err
	}

	s.observer.AllocationSucceeded(kind, len(records), time.Since(started))
	return records, nil
}

func (s *Service) allocate(
	ctx context.Context,
	kind numerator.DocumentKind,
	carrierID id.ID,
	origin, destination string,
	quantity int,
) ([]NumberRecord, error) {
	origin, destination = country.Normalize(origin), country.Normalize(destination)
	if !kind.Valid() {
		return nil, apperror.NewValidation(fmt.Sprintf("unknown document kind %q", kind)).
			WithDetail("field", "kind")
	}
	if err := s.allocator.ValidateQuantity(quantity); err != nil {
		return nil, err
	}
	if err := s.resolver.ValidateRoute(origin, destination); err != nil {
		return nil, err
	}

	c, err := s.carriers.GetByID(ctx, carrierID)
	if err != nil {
		return nil, err
	}

	res, err := s.resolver.Resolve(ctx, c, origin, destination)
	if err != nil {
		return nil, err
	}

	key := numerator.Key{Kind: kind, CarrierID: c.ID}
	rng, err := s.allocator.Allocate(ctx, key, c.StartOffset(kind), quantity)
	if err != nil {
		return nil, fmt.Errorf("allocate %s numbers: %w", kind, err)
	}

	records := make([]NumberRecord, 0, rng.Len())
	for _, seq := range rng.Values() {
		records = append(records, NumberRecord{
			Kind:              kind,
			Sequence:          seq,
			Origin:            origin,
			Destination:       destination,
			ComplementaryCode: res.ComplementaryCode,
			Number:            numerator.Format(origin, res.ComplementaryCode, seq),
		})
	}

	logger.Info(ctx, "document numbers allocated",
		"kind", kind,
		"carrier_id", c.ID,
		"route", origin+"-"+destination,
		"first", rng.First,
		"last", rng.Last,
		"license_source", res.Source)

	return records, nil
}

// SequenceState describes one counter.
type SequenceState struct {
	Kind      numerator.DocumentKind `json:"kind"`
	CarrierID id.ID                  `json:"carrierId"`
	Started   bool                   `json:"started"`
	Last      int64                  `json:"last"`
	Next      int64                  `json:"next"`
}

// Sequence reports the counter state for (kind, carrier).
func (s *Service) Sequence(ctx context.Context, kind numerator.DocumentKind, carrierID id.ID) (*SequenceState, error) {
	c, err := s.carriers.GetByID(ctx, carrierID)
	if err != nil {
		return nil, err
	}
	key := numerator.Key{Kind: kind, CarrierID: c.ID}
	last, ok, err := s.allocator.Current(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("read sequence %s: %w", key, err)
	}
	st := &SequenceState{Kind: kind, CarrierID: c.ID, Started: ok, Last: last, Next: c.StartOffset(kind)}
	if ok {
		st.Next = last + 1
	}
	return st, nil
}

// Rebase raises the (kind, carrier) counter to last, for migrations from
// another numbering system. Counters are never lowered.
func (s *Service) Rebase(ctx context.Context, kind numerator.DocumentKind, carrierID id.ID, last int64) (*SequenceState, error) {
	if !kind.Valid() {
		return nil, apperror.NewValidation(fmt.Sprintf("unknown document kind %q", kind))
	}
	c, err := s.carriers.GetByID(ctx, carrierID)
	if err != nil {
		return nil, err
	}
	key := numerator.Key{Kind: kind, CarrierID: c.ID}
	value, err := s.allocator.Rebase(ctx, key, last)
	if err != nil {
		return nil, err
	}
	logger.Info(ctx, "sequence rebased", "key", key.String(), "requested", last, "value", value)
	return &SequenceState{Kind: kind, CarrierID: c.ID, Started: true, Last: value, Next: value + 1}, nil
}
