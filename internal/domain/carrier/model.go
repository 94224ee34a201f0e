// Package carrier holds the carrier and destination-license records consumed by
// the numbering engine. Both are read-only inputs here; they are maintained by
// the carrier management collaborator (or seeded through the CLI).
package carrier

import (
	"fmt"
	"strings"
	"time"

	"transdoc/internal/core/apperror"
	"transdoc/internal/core/id"
	"transdoc/internal/core/numerator"
)

// Carrier is a registered transport operator.
type Carrier struct {
	ID      id.ID  `db:"id" json:"id" yaml:"id"`
	Name    string `db:"name" json:"name" yaml:"name"`
	Country string `db:"country" json:"country" yaml:"country"`

	// RegistrationNumber doubles as the license code on home-country legs.
	RegistrationNumber string `db:"registration_number" json:"registrationNumber" yaml:"registration_number"`

	// Starting offsets seed the first allocated sequence value per document kind.
	StartPrimary  int64 `db:"start_primary" json:"startPrimary" yaml:"start_primary"`
	StartManifest int64 `db:"start_manifest" json:"startManifest" yaml:"start_manifest"`

	CreatedAt time.Time `db:"created_at" json:"createdAt" yaml:"-"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt" yaml:"-"`
}

// StartOffset returns the configured starting offset for kind (at least 1).
func (c *Carrier) StartOffset(kind numerator.DocumentKind) int64 {
	var v int64
	switch kind {
	case numerator.KindPrimary:
		v = c.StartPrimary
	case numerator.KindManifest:
		v = c.StartManifest
	}
	if v < 1 {
		return 1
	}
	return v
}

// Validate checks the fields required to issue documents for the carrier.
func (c *Carrier) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return apperror.NewValidation("name is required").WithDetail("field", "name")
	}
	if len(c.Country) != 2 {
		return apperror.NewValidation("country must be a two-letter code").WithDetail("field", "country")
	}
	if strings.TrimSpace(c.RegistrationNumber) == "" {
		return apperror.NewValidation("registration number is required").
			WithDetail("field", "registration_number")
	}
	if c.StartPrimary < 0 || c.StartManifest < 0 {
		return apperror.NewValidation("starting offsets cannot be negative")
	}
	return nil
}

// DestinationLicense authorizes a carrier to operate towards one destination
// country. At most one exists per (carrier, destination).
type DestinationLicense struct {
	ID                 id.ID  `db:"id" json:"id"`
	CarrierID          id.ID  `db:"carrier_id" json:"carrierId"`
	DestinationCountry string `db:"destination_country" json:"destinationCountry"`
	Code               string `db:"code" json:"code"`

	// Idoneidade is the foreign-authorization code; empty when absent.
	Idoneidade string     `db:"idoneidade" json:"idoneidade,omitempty"`
	ExpiresAt  *time.Time `db:"expires_at" json:"expiresAt,omitempty"`
}

// Summary is the short carrier projection embedded in reports.
type Summary struct {
	ID      id.ID  `json:"id"`
	Name    string `json:"name"`
	Country string `json:"country"`
}

// Summary returns the short projection of c.
func (c *Carrier) Summary() Summary {
	return Summary{ID: c.ID, Name: c.Name, Country: c.Country}
}

// ParseExpiry accepts DD/MM/YYYY (the format printed on licenses) and ISO dates.
// An empty string means "no expiry" and yields nil.
func ParseExpiry(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	for _, layout := range []string{"02/01/2006", "2006-01-02"} {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("invalid expiry date %q: want DD/MM/YYYY", s)
}
