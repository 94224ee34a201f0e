// Package license resolves which destination license authorizes a carrier on a
// route and derives the complementary code embedded in document numbers.
//
// Both document issuers reach this code only through the numbering service, so
// primary documents and manifests share one rule set.
package license

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"transdoc/internal/core/apperror"
	"transdoc/internal/core/id"
	"transdoc/internal/domain/carrier"
	"transdoc/internal/domain/country"
	"transdoc/pkg/logger"
)

// homeMarketPattern: optional leading letters, then the four digits that form
// the complementary code (e.g. BR6023/1800648 -> 6023).
var homeMarketPattern = regexp.MustCompile(`^[A-Z]*(\d{4})`)

// Source tells which record authorized the route.
type Source string

const (
	// SourceOrigin: stored license whose destination is the route origin.
	SourceOrigin Source = "origin"
	// SourceDestination: stored license whose destination is the route destination.
	SourceDestination Source = "destination"
	// SourceHomeCountry: synthetic license built from the carrier registration
	// because one leg of the route is the carrier's home country.
	SourceHomeCountry Source = "home_country"
)

// Resolution is computed per request and never cached.
type Resolution struct {
	License           carrier.DestinationLicense
	ComplementaryCode string
	Source            Source
}

// Synthetic reports whether the license was derived from the carrier registration.
func (r *Resolution) Synthetic() bool {
	return r.Source == SourceHomeCountry
}

// Resolver implements route license resolution.
type Resolver struct {
	licenses   carrier.LicenseRepository
	countries  *country.Registry
	homeMarket string
	now        func() time.Time
}

// NewResolver creates a resolver. homeMarket is the country whose license codes
// carry the complementary code as digits (BR in production).
func NewResolver(licenses carrier.LicenseRepository, countries *country.Registry, homeMarket string) *Resolver {
	return &Resolver{
		licenses:   licenses,
		countries:  countries,
		homeMarket: homeMarket,
		now:        time.Now,
	}
}

// HomeMarket returns the configured home-market country.
func (r *Resolver) HomeMarket() string {
	return r.homeMarket
}

// ValidateRoute checks that both countries are known and differ.
func (r *Resolver) ValidateRoute(origin, destination string) error {
	if origin == destination {
		return apperror.NewInvalidRoute(origin, destination)
	}
	if err := r.countries.Validate(origin); err != nil {
		return err
	}
	return r.countries.Validate(destination)
}

// Resolve finds the license authorizing c on origin -> destination.
//
// Stored licenses are searched first, by destination == origin and then by
// destination == destination. When none matches and one leg is the carrier's
// home country, the carrier registration is used as a synthetic license.
// Resolution has no side effects.
func (r *Resolver) Resolve(ctx context.Context, c *carrier.Carrier, origin, destination string) (*Resolution, error) {
	if err := r.ValidateRoute(origin, destination); err != nil {
		return nil, err
	}

	licenses, err := r.licenses.ListForCarrier(ctx, c.ID)
	if err != nil {
		return nil, fmt.Errorf("list licenses: %w", err)
	}

	res, ok := match(licenses, origin, destination)
	if !ok {
		if c.Country != origin && c.Country != destination {
			return nil, apperror.NewNoLicenseForRoute(c.ID, origin, destination)
		}
		res = r.homeCountryLicense(c)
	}

	code, err := ComplementaryCode(res.License, c.Country == r.homeMarket, c.ID)
	if err != nil {
		return nil, err
	}
	res.ComplementaryCode = code

	if v := carrier.ClassifyLicense(res.License, r.now()); v.Status == carrier.StatusExpired {
		logger.Warn(ctx, "issuing under an expired license",
			"carrier_id", c.ID,
			"destination", res.License.DestinationCountry,
			"days_remaining", *v.DaysRemaining)
	}

	logger.Debug(ctx, "license resolved",
		"carrier_id", c.ID,
		"origin", origin,
		"destination", destination,
		"source", res.Source,
		"complementary_code", res.ComplementaryCode)

	return res, nil
}

func match(licenses []carrier.DestinationLicense, origin, destination string) (*Resolution, bool) {
	for _, want := range []struct {
		country string
		source  Source
	}{{origin, SourceOrigin}, {destination, SourceDestination}} {
		for _, l := range licenses {
			if l.DestinationCountry == want.country {
				return &Resolution{License: l, Source: want.source}, true
			}
		}
	}
	return nil, false
}

// homeCountryLicense builds the license a carrier holds for its own country:
// its registration number, with the carrier's country as destination.
func (r *Resolver) homeCountryLicense(c *carrier.Carrier) *Resolution {
	l := carrier.DestinationLicense{
		CarrierID:          c.ID,
		DestinationCountry: c.Country,
		Code:               c.RegistrationNumber,
	}
	if c.Country != r.homeMarket {
		l.Idoneidade = c.RegistrationNumber
	}
	return &Resolution{License: l, Source: SourceHomeCountry}
}

// ComplementaryCode derives the code fragment for l.
//
// Home-market carriers: the first four digits after optional leading letters of
// the license code; anything else is MALFORMED_LICENSE.
// Foreign carriers: the idoneidade, else the raw license code, else
// MISSING_IDONEIDADE.
func ComplementaryCode(l carrier.DestinationLicense, homeMarket bool, carrierID id.ID) (string, error) {
	if homeMarket {
		code := strings.ToUpper(strings.TrimSpace(l.Code))
		m := homeMarketPattern.FindStringSubmatch(code)
		if m == nil {
			return "", apperror.NewMalformedLicense(l.Code)
		}
		return m[1], nil
	}

	if v := strings.TrimSpace(l.Idoneidade); v != "" {
		return v, nil
	}
	if v := strings.TrimSpace(l.Code); v != "" {
		return v, nil
	}
	return "", apperror.NewMissingIdoneidade(carrierID, l.DestinationCountry)
}
