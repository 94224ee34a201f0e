package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/sqlscan"

	"transdoc/internal/core/apperror"
	"transdoc/internal/core/id"
	"transdoc/internal/domain/carrier"
)

var (
	_ carrier.Repository        = (*Store)(nil)
	_ carrier.LicenseRepository = (*Store)(nil)
	_ carrier.Writer            = (*Store)(nil)
)

var (
	carrierColumns = []string{
		"id", "name", "country", "registration_number",
		"start_primary", "start_manifest", "created_at", "updated_at",
	}
	licenseColumns = []string{
		"id", "carrier_id", "destination_country", "code", "idoneidade", "expires_at",
	}
)

// GetByID implements carrier.Repository.
func (s *Store) GetByID(ctx context.Context, carrierID id.ID) (*carrier.Carrier, error) {
	query, args, err := builder().
		Select(carrierColumns...).
		From("carriers").
		Where(squirrel.Eq{"id": carrierID.String()}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var c carrier.Carrier
	if err := sqlscan.Get(ctx, s.db, &c, query, args...); err != nil {
		if sqlscan.NotFound(err) {
			return nil, apperror.NewNotFound("carrier", carrierID)
		}
		return nil, fmt.Errorf("get carrier: %w", err)
	}
	return &c, nil
}

// List implements carrier.Repository.
func (s *Store) List(ctx context.Context) ([]*carrier.Carrier, error) {
	query, args, err := builder().
		Select(carrierColumns...).
		From("carriers").
		OrderBy("name", "id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var list []*carrier.Carrier
	if err := sqlscan.Select(ctx, s.db, &list, query, args...); err != nil {
		return nil, fmt.Errorf("list carriers: %w", err)
	}
	return list, nil
}

// ListForCarrier implements carrier.LicenseRepository.
func (s *Store) ListForCarrier(ctx context.Context, carrierID id.ID) ([]carrier.DestinationLicense, error) {
	query, args, err := builder().
		Select(licenseColumns...).
		From("destination_licenses").
		Where(squirrel.Eq{"carrier_id": carrierID.String()}).
		OrderBy("destination_country").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	list := []carrier.DestinationLicense{}
	if err := sqlscan.Select(ctx, s.db, &list, query, args...); err != nil {
		return nil, fmt.Errorf("list licenses: %w", err)
	}
	return list, nil
}

// SaveCarrier implements carrier.Writer.
func (s *Store) SaveCarrier(ctx context.Context, c *carrier.Carrier) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if id.IsNil(c.ID) {
		c.ID = id.New()
	}
	now := time.Now().UTC()

	query, args, err := builder().
		Insert("carriers").
		Columns(carrierColumns...).
		Values(c.ID.String(), c.Name, c.Country, c.RegistrationNumber, c.StartPrimary, c.StartManifest, now, now).
		Suffix(`ON CONFLICT (registration_number) DO UPDATE SET
			name = excluded.name,
			country = excluded.country,
			start_primary = excluded.start_primary,
			start_manifest = excluded.start_manifest,
			updated_at = excluded.updated_at
			RETURNING id`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert: %w", err)
	}

	var stored string
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&stored); err != nil {
		return fmt.Errorf("save carrier: %w", err)
	}
	if c.ID, err = id.Parse(stored); err != nil {
		return fmt.Errorf("save carrier: %w", err)
	}
	return nil
}

// SaveLicense implements carrier.Writer.
func (s *Store) SaveLicense(ctx context.Context, l *carrier.DestinationLicense) error {
	if id.IsNil(l.ID) {
		l.ID = id.New()
	}
	var expires any
	if l.ExpiresAt != nil {
		expires = l.ExpiresAt.UTC()
	}

	query, args, err := builder().
		Insert("destination_licenses").
		Columns(licenseColumns...).
		Values(l.ID.String(), l.CarrierID.String(), l.DestinationCountry, l.Code, l.Idoneidade, expires).
		Suffix(`ON CONFLICT (carrier_id, destination_country) DO UPDATE SET
			code = excluded.code,
			idoneidade = excluded.idoneidade,
			expires_at = excluded.expires_at
			RETURNING id`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert: %w", err)
	}

	var stored string
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&stored); err != nil {
		return fmt.Errorf("save license: %w", err)
	}
	if l.ID, err = id.Parse(stored); err != nil {
		return fmt.Errorf("save license: %w", err)
	}
	return nil
}
