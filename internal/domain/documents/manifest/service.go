package manifest

import (
	"context"
	"fmt"
	"strings"
	"time"

	"transdoc/internal/core/apperror"
	appctx "transdoc/internal/core/context"
	"transdoc/internal/core/id"
	"transdoc/internal/core/numerator"
	"transdoc/internal/core/tx"
	"transdoc/internal/domain/audit"
	"transdoc/internal/domain/documents/crt"
	"transdoc/internal/domain/numbering"
	"transdoc/pkg/logger"
)

// CodeRouteMismatch is returned when the CRTs of a loaded manifest do not
// share one route.
const CodeRouteMismatch = "CRT_ROUTE_MISMATCH"

// Service issues manifests.
type Service struct {
	repo      Repository
	crts      CRTReader
	numbers   *numbering.Service
	txManager tx.Manager
	audit     audit.Recorder
	now       func() time.Time
}

// NewService creates a new manifest service.
func NewService(
	repo Repository,
	crts CRTReader,
	numbers *numbering.Service,
	txManager tx.Manager,
	recorder audit.Recorder,
) *Service {
	if recorder == nil {
		recorder = audit.Discard
	}
	return &Service{
		repo:      repo,
		crts:      crts,
		numbers:   numbers,
		txManager: txManager,
		audit:     recorder,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// IssueLoaded issues one manifest covering crtIDs. The CRTs must belong to
// the carrier and share a route, which the manifest inherits.
func (s *Service) IssueLoaded(ctx context.Context, carrierID id.ID, crtIDs []id.ID) (*Manifest, error) {
	crts, err := s.crts.GetForCarrier(ctx, carrierID, crtIDs)
	if err != nil {
		return nil, err
	}
	origin, destination, err := sharedRoute(crts)
	if err != nil {
		return nil, err
	}

	records, err := s.numbers.AllocateNumbers(ctx, numerator.KindManifest, carrierID, origin, destination, 1)
	if err != nil {
		return nil, err
	}

	m := s.newManifest(VariantLoaded, carrierID, records[0])
	for _, c := range crts {
		m.CRTIDs = append(m.CRTIDs, c.ID)
	}

	if err := s.store(ctx, []*Manifest{m}); err != nil {
		return nil, err
	}
	logger.Info(ctx, "loaded manifest issued",
		"number", m.Number,
		"carrier_id", carrierID,
		"crt_count", len(m.CRTIDs))
	return m, nil
}

// IssueEmptyLeg issues quantity manifests for movements without cargo.
func (s *Service) IssueEmptyLeg(ctx context.Context, carrierID id.ID, origin, destination string, quantity int) ([]*Manifest, error) {
	if strings.TrimSpace(origin) == "" || strings.TrimSpace(destination) == "" {
		return nil, apperror.NewValidation("origin and destination are required for empty-leg manifests")
	}

	records, err := s.numbers.AllocateNumbers(ctx, numerator.KindManifest, carrierID, origin, destination, quantity)
	if err != nil {
		return nil, err
	}

	docs := make([]*Manifest, 0, len(records))
	for _, rec := range records {
		docs = append(docs, s.newManifest(VariantEmptyLeg, carrierID, rec))
	}
	if err := s.store(ctx, docs); err != nil {
		return nil, err
	}
	logger.Info(ctx, "empty-leg manifests issued",
		"carrier_id", carrierID,
		"count", len(docs),
		"first", docs[0].Number)
	return docs, nil
}

// GetByID returns a manifest with its CRT links.
func (s *Service) GetByID(ctx context.Context, manifestID id.ID) (*Manifest, error) {
	m, err := s.repo.GetByID(ctx, manifestID)
	if err != nil {
		return nil, err
	}
	m.CRTIDs, err = s.repo.ListCRTIDs(ctx, manifestID)
	if err != nil {
		return nil, fmt.Errorf("list crt links: %w", err)
	}
	return m, nil
}

// LinkCRTs attaches more CRTs to a loaded manifest. They must belong to the
// manifest carrier and travel on the manifest route.
func (s *Service) LinkCRTs(ctx context.Context, manifestID id.ID, crtIDs []id.ID) (*Manifest, error) {
	m, err := s.repo.GetByID(ctx, manifestID)
	if err != nil {
		return nil, err
	}
	if m.Variant == VariantEmptyLeg {
		return nil, apperror.NewBusinessRule(apperror.CodeBusinessRule, "empty-leg manifests carry no CRTs").
			WithDetail("manifest_id", manifestID)
	}

	crts, err := s.crts.GetForCarrier(ctx, m.CarrierID, crtIDs)
	if err != nil {
		return nil, err
	}
	for _, c := range crts {
		if c.Origin != m.Origin || c.Destination != m.Destination {
			return nil, routeMismatch(c)
		}
	}

	ids := make([]id.ID, 0, len(crts))
	for _, c := range crts {
		ids = append(ids, c.ID)
	}
	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.LinkCRTs(ctx, m.ID, ids); err != nil {
			return fmt.Errorf("link crts: %w", err)
		}
		return s.audit.Record(ctx, audit.Entry{
			EntityType: "manifest",
			EntityID:   m.ID,
			Action:     audit.ActionLink,
			Operator:   appctx.GetOperator(ctx),
			Changes:    map[string]any{"crt_ids": ids},
		})
	})
	if err != nil {
		return nil, err
	}
	return s.GetByID(ctx, manifestID)
}

// ListCRTs returns the CRTs linked to a manifest.
func (s *Service) ListCRTs(ctx context.Context, manifestID id.ID) ([]*crt.CRT, error) {
	m, err := s.repo.GetByID(ctx, manifestID)
	if err != nil {
		return nil, err
	}
	ids, err := s.repo.ListCRTIDs(ctx, manifestID)
	if err != nil {
		return nil, fmt.Errorf("list crt links: %w", err)
	}
	if len(ids) == 0 {
		return []*crt.CRT{}, nil
	}
	return s.crts.GetForCarrier(ctx, m.CarrierID, ids)
}

func (s *Service) newManifest(variant Variant, carrierID id.ID, rec numbering.NumberRecord) *Manifest {
	return &Manifest{
		ID:                id.New(),
		Number:            rec.Number,
		Variant:           variant,
		CarrierID:         carrierID,
		Origin:            rec.Origin,
		Destination:       rec.Destination,
		ComplementaryCode: rec.ComplementaryCode,
		Sequence:          rec.Sequence,
		IssuedAt:          s.now(),
	}
}

func (s *Service) store(ctx context.Context, docs []*Manifest) error {
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.CreateBatch(ctx, docs); err != nil {
			return fmt.Errorf("create manifests: %w", err)
		}
		for _, m := range docs {
			if len(m.CRTIDs) > 0 {
				if err := s.repo.LinkCRTs(ctx, m.ID, m.CRTIDs); err != nil {
					return fmt.Errorf("link crts: %w", err)
				}
			}
			if err := s.audit.Record(ctx, audit.Entry{
				EntityType: "manifest",
				EntityID:   m.ID,
				Action:     audit.ActionIssue,
				Operator:   appctx.GetOperator(ctx),
				Changes: map[string]any{
					"number":   m.Number,
					"variant":  m.Variant,
					"sequence": m.Sequence,
					"route":    m.Origin + "-" + m.Destination,
					"crt_ids":  m.CRTIDs,
				},
			}); err != nil {
				return fmt.Errorf("audit manifest %s: %w", m.Number, err)
			}
		}
		return nil
	})
}

func sharedRoute(crts []*crt.CRT) (string, string, error) {
	if len(crts) == 0 {
		return "", "", apperror.NewValidation("at least one CRT is required").WithDetail("field", "crt_ids")
	}
	origin, destination := crts[0].Origin, crts[0].Destination
	for _, c := range crts[1:] {
		if c.Origin != origin || c.Destination != destination {
			return "", "", routeMismatch(c)
		}
	}
	return origin, destination, nil
}

func routeMismatch(c *crt.CRT) error {
	return apperror.NewBusinessRule(CodeRouteMismatch, "all CRTs of a manifest must share its route").
		WithDetail("crt_id", c.ID).
		WithDetail("crt_route", c.Origin+"-"+c.Destination)
}
