package carrier

import (
	"context"

	"transdoc/internal/core/id"
)

// Repository reads carriers.
type Repository interface {
	// GetByID returns the carrier or a NOT_FOUND AppError.
	GetByID(ctx context.Context, carrierID id.ID) (*Carrier, error)
	List(ctx context.Context) ([]*Carrier, error)
}

// LicenseRepository reads destination licenses.
type LicenseRepository interface {
	// ListForCarrier returns the carrier's licenses; an empty slice when it has none.
	ListForCarrier(ctx context.Context, carrierID id.ID) ([]DestinationLicense, error)
}

// Writer stores carriers and licenses. Used by the seeding tools; the engine
// itself only reads.
type Writer interface {
	// SaveCarrier upserts by registration number and writes the stored id back.
	SaveCarrier(ctx context.Context, c *Carrier) error
	// SaveLicense upserts by (carrier, destination).
	SaveLicense(ctx context.Context, l *DestinationLicense) error
}
