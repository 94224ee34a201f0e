package manifest

import (
	"context"

	"transdoc/internal/core/id"
	"transdoc/internal/domain/documents/crt"
)

// Repository persists manifests and their CRT links.
type Repository interface {
	CreateBatch(ctx context.Context, docs []*Manifest) error
	GetByID(ctx context.Context, manifestID id.ID) (*Manifest, error)
	// LinkCRTs is idempotent: existing links are kept.
	LinkCRTs(ctx context.Context, manifestID id.ID, crtIDs []id.ID) error
	ListCRTIDs(ctx context.Context, manifestID id.ID) ([]id.ID, error)
}

// CRTReader loads the waybills a manifest refers to.
type CRTReader interface {
	// GetForCarrier fails unless every id exists and belongs to carrierID.
	GetForCarrier(ctx context.Context, carrierID id.ID, ids []id.ID) ([]*crt.CRT, error)
}
