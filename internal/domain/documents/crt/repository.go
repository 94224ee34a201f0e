package crt

import (
	"context"

	"transdoc/internal/core/id"
)

// Repository persists issued waybills.
type Repository interface {
	// CreateBatch inserts all documents; it must run inside the caller's transaction.
	CreateBatch(ctx context.Context, docs []*CRT) error
	GetByID(ctx context.Context, crtID id.ID) (*CRT, error)
	// GetByIDs returns the documents found, in no particular order.
	GetByIDs(ctx context.Context, ids []id.ID) ([]*CRT, error)
	ListByCarrier(ctx context.Context, carrierID id.ID, limit int) ([]*CRT, error)
}
