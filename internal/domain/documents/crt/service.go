package crt

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
	"transdoc/internal/domain/carrier"
	"transdoc/internal/domain/numbering"
	"transdoc/pkg/logger"
)

// Service issues and reads waybills.
type Service struct {
	repo      Repository
	carriers  carrier.Repository
	numbers   *numbering.Service
	txManager tx.Manager
	audit     audit.Recorder
	now       func() time.Time
}

// NewService creates a new CRT service.
func NewService(
	repo Repository,
	carriers carrier.Repository,
	numbers *numbering.Service,
	txManager tx.Manager,
	recorder audit.Recorder,
) *Service {
	if recorder == nil {
		recorder = audit.Discard
	}
	return &Service{
		repo:      repo,
		carriers:  carriers,
		numbers:   numbers,
		txManager: txManager,
		audit:     recorder,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Issue allocates req.Quantity waybill numbers and stores the documents.
//
// Numbers are allocated before the transaction: if storing fails, the
// allocated values stay consumed and show up as gaps.
func (s *Service) Issue(ctx context.Context, req IssueRequest) ([]*CRT, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Origin) == "" {
		c, err := s.carriers.GetByID(ctx, req.CarrierID)
		if err != nil {
			return nil, err
		}
		req.Origin = c.Country
	}

	records, err := s.numbers.AllocateNumbers(ctx, numerator.KindPrimary, req.CarrierID, req.Origin, req.Destination, req.Quantity)
	if err != nil {
		return nil, err
	}

	now := s.now()
	docs := make([]*CRT, 0, len(records))
	for _, rec := range records {
		docs = append(docs, newCRT(req, rec, req.CarrierID, now))
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.CreateBatch(ctx, docs); err != nil {
			return fmt.Errorf("create crt batch: %w", err)
		}
		for _, d := range docs {
			if err := s.audit.Record(ctx, audit.Entry{
				EntityType: "crt",
				EntityID:   d.ID,
				Action:     audit.ActionIssue,
				Operator:   appctx.GetOperator(ctx),
				Changes: map[string]any{
					"number":             d.Number,
					"sequence":           d.Sequence,
					"route":              d.Origin + "-" + d.Destination,
					"commercial_invoice": d.CommercialInvoice,
				},
			}); err != nil {
				return fmt.Errorf("audit crt %s: %w", d.Number, err)
			}
		}
		return nil
	})
	if err != nil {
		logger.Error(ctx, "crt numbers allocated but not stored",
			"carrier_id", req.CarrierID,
			"first", records[0].Number,
			"last", records[len(records)-1].Number,
			"error", err)
		return nil, err
	}

	logger.Info(ctx, "crt issued",
		"carrier_id", req.CarrierID,
		"count", len(docs),
		"first", docs[0].Number)

	return docs, nil
}

// GetByID retrieves a waybill.
func (s *Service) GetByID(ctx context.Context, crtID id.ID) (*CRT, error) {
	return s.repo.GetByID(ctx, crtID)
}

// ListByCarrier returns the newest waybills of a carrier.
func (s *Service) ListByCarrier(ctx context.Context, carrierID id.ID, limit int) ([]*CRT, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return s.repo.ListByCarrier(ctx, carrierID, limit)
}

// GetForCarrier loads the given waybills and checks that all exist and belong
// to carrierID. Used by the manifest issuer.
func (s *Service) GetForCarrier(ctx context.Context, carrierID id.ID, ids []id.ID) ([]*CRT, error) {
	if len(ids) == 0 {
		return nil, apperror.NewValidation("at least one CRT is required").WithDetail("field", "crt_ids")
	}
	docs, err := s.repo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	found := make(map[id.ID]*CRT, len(docs))
	for _, d := range docs {
		found[d.ID] = d
	}
	ordered := make([]*CRT, 0, len(ids))
	seen := make(map[id.ID]bool, len(ids))
	for _, crtID := range ids {
		if seen[crtID] {
			continue
		}
		seen[crtID] = true
		d, ok := found[crtID]
		if !ok {
			return nil, apperror.NewNotFound("crt", crtID)
		}
		if d.CarrierID != carrierID {
			return nil, apperror.NewBusinessRule(apperror.CodeBusinessRule, "CRT belongs to another carrier").
				WithDetail("crt_id", crtID).
				WithDetail("carrier_id", carrierID)
		}
		ordered = append(ordered, d)
	}
	return ordered, nil
}
