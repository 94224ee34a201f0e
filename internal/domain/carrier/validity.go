package carrier

import (
	"context"
	"fmt"
	"math"
	"time"
)

// ValidityStatus classifies a license by its expiry date.
type ValidityStatus string

const (
	StatusValid        ValidityStatus = "valid"
	StatusExpiringSoon ValidityStatus = "expiring_soon"
	StatusExpired      ValidityStatus = "expired"
	StatusNoExpiry     ValidityStatus = "no_expiry"
)

// ExpiringSoonDays is the window in which a license is reported as expiring soon.
const ExpiringSoonDays = 180

// Validity is the classification of one license at a point in time.
type Validity struct {
	Status ValidityStatus `json:"status"`
	// DaysRemaining is negative for expired licenses and nil without expiry.
	DaysRemaining *int `json:"daysRemaining,omitempty"`
}

// ClassifyLicense classifies l relative to now. Days are rounded up, so a
// license expiring later today still has 0 days remaining.
func ClassifyLicense(l DestinationLicense, now time.Time) Validity {
	if l.ExpiresAt == nil {
		return Validity{Status: StatusNoExpiry}
	}
	days := int(math.Ceil(l.ExpiresAt.Sub(now).Hours() / 24))
	v := Validity{DaysRemaining: &days}
	switch {
	case days < 0:
		v.Status = StatusExpired
	case days <= ExpiringSoonDays:
		v.Status = StatusExpiringSoon
	default:
		v.Status = StatusValid
	}
	return v
}

// LicenseStatus is one row of the validity report.
type LicenseStatus struct {
	DestinationLicense
	Validity
	Carrier Summary `json:"carrier"`
}

// ValidityReport groups every stored license by status.
type ValidityReport struct {
	All          []LicenseStatus `json:"all"`
	Valid        []LicenseStatus `json:"valid"`
	ExpiringSoon []LicenseStatus `json:"expiringSoon"`
	Expired      []LicenseStatus `json:"expired"`
	NoExpiry     []LicenseStatus `json:"noExpiry"`
}

// BuildValidityReport classifies the licenses of all carriers.
func BuildValidityReport(ctx context.Context, carriers Repository, licenses LicenseRepository, now time.Time) (*ValidityReport, error) {
	list, err := carriers.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list carriers: %w", err)
	}

	report := &ValidityReport{
		All:          []LicenseStatus{},
		Valid:        []LicenseStatus{},
		ExpiringSoon: []LicenseStatus{},
		Expired:      []LicenseStatus{},
		NoExpiry:     []LicenseStatus{},
	}
	for _, c := range list {
		ls, err := licenses.ListForCarrier(ctx, c.ID)
		if err != nil {
			return nil, fmt.Errorf("list licenses of carrier %s: %w", c.ID, err)
		}
		for _, l := range ls {
			row := LicenseStatus{DestinationLicense: l, Validity: ClassifyLicense(l, now), Carrier: c.Summary()}
			report.All = append(report.All, row)
			switch row.Status {
			case StatusExpired:
				report.Expired = append(report.Expired, row)
			case StatusExpiringSoon:
				report.ExpiringSoon = append(report.ExpiringSoon, row)
			case StatusNoExpiry:
				report.NoExpiry = append(report.NoExpiry, row)
			default:
				report.Valid = append(report.Valid, row)
			}
		}
	}
	return report, nil
}
