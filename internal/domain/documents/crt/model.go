// Package crt provides the international road transport waybill (CRT) issuer.
package crt

import (
	"strings"
	"time"

	"transdoc/internal/core/apperror"
	"transdoc/internal/core/id"
	"transdoc/internal/domain/numbering"
)

// CRT is an issued waybill.
type CRT struct {
	ID                id.ID     `db:"id" json:"id"`
	Number            string    `db:"number" json:"number"`
	CarrierID         id.ID     `db:"carrier_id" json:"carrierId"`
	Origin            string    `db:"origin_country" json:"origin"`
	Destination       string    `db:"destination_country" json:"destination"`
	ComplementaryCode string    `db:"complementary_code" json:"complementaryCode"`
	Sequence          int64     `db:"sequence" json:"sequence"`
	CommercialInvoice string    `db:"commercial_invoice" json:"commercialInvoice"`
	Exporter          string    `db:"exporter" json:"exporter"`
	Importer          string    `db:"importer" json:"importer"`
	IssuedAt          time.Time `db:"issued_at" json:"issuedAt"`
}

// IssueRequest asks for Quantity waybills sharing the same commercial data.
type IssueRequest struct {
	CarrierID id.ID
	// Origin defaults to the carrier's home country when empty.
	Origin            string
	Destination       string
	Quantity          int
	CommercialInvoice string
	Exporter          string
	Importer          string
}

// Validate checks presence of the commercial references. Their content is
// not interpreted.
func (r *IssueRequest) Validate() error {
	if id.IsNil(r.CarrierID) {
		return apperror.NewValidation("carrier is required").WithDetail("field", "carrier_id")
	}
	if strings.TrimSpace(r.Destination) == "" {
		return apperror.NewValidation("destination country is required").WithDetail("field", "destination")
	}
	for _, f := range []struct{ name, value string }{
		{"commercial_invoice", r.CommercialInvoice},
		{"exporter", r.Exporter},
		{"importer", r.Importer},
	} {
		if strings.TrimSpace(f.value) == "" {
			return apperror.NewValidation(f.name+" is required").WithDetail("field", f.name)
		}
	}
	return nil
}

func newCRT(req IssueRequest, rec numbering.NumberRecord, carrierID id.ID, now time.Time) *CRT {
	return &CRT{
		ID:                id.New(),
		Number:            rec.Number,
		CarrierID:         carrierID,
		Origin:            rec.Origin,
		Destination:       rec.Destination,
		ComplementaryCode: rec.ComplementaryCode,
		Sequence:          rec.Sequence,
		CommercialInvoice: req.CommercialInvoice,
		Exporter:          req.Exporter,
		Importer:          req.Importer,
		IssuedAt:          now,
	}
}
