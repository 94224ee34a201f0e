// Package manifest provides the customs transit manifest (MIC/DTA) issuer.
//
// A loaded manifest covers one or more CRTs and inherits their route; an
// empty-leg manifest covers a movement without cargo and states its own route.
// Both draw numbers from the MANIFEST counter of the carrier.
package manifest

import (
	"time"

	"transdoc/internal/core/id"
)

// Variant distinguishes loaded from empty-leg manifests.
type Variant string

const (
	VariantLoaded   Variant = "LOADED"
	VariantEmptyLeg Variant = "EMPTY_LEG"
)

// Manifest is an issued MIC/DTA.
type Manifest struct {
	ID                id.ID     `db:"id" json:"id"`
	Number            string    `db:"number" json:"number"`
	Variant           Variant   `db:"variant" json:"variant"`
	CarrierID         id.ID     `db:"carrier_id" json:"carrierId"`
	Origin            string    `db:"origin_country" json:"origin"`
	Destination       string    `db:"destination_country" json:"destination"`
	ComplementaryCode string    `db:"complementary_code" json:"complementaryCode"`
	Sequence          int64     `db:"sequence" json:"sequence"`
	IssuedAt          time.Time `db:"issued_at" json:"issuedAt"`

	// CRTIDs is filled on reads that load the links.
	CRTIDs []id.ID `db:"-" json:"crtIds,omitempty"`
}
