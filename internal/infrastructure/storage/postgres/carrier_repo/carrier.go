// Package carrier_repo provides PostgreSQL implementations of the carrier and
// destination-license repositories.
package carrier_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"transdoc/internal/core/apperror"
	"transdoc/internal/core/id"
	"transdoc/internal/domain/carrier"
	"transdoc/internal/infrastructure/storage/postgres"
)

const (
	carriersTable = "carriers"
	licensesTable = "destination_licenses"
)

var (
	carrierColumns = postgres.ExtractDBColumns[carrier.Carrier]()
	licenseColumns = postgres.ExtractDBColumns[carrier.DestinationLicense]()
)

// Repo reads and writes carriers and their licenses.
type Repo struct {
	txManager *postgres.TxManager
}

var (
	_ carrier.Repository        = (*Repo)(nil)
	_ carrier.LicenseRepository = (*Repo)(nil)
)

// New creates a new carrier repository.
func New(txManager *postgres.TxManager) *Repo {
	return &Repo{txManager: txManager}
}

// Builder returns a new squirrel builder with PostgreSQL placeholder format.
func (r *Repo) Builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// GetByID implements carrier.Repository.
func (r *Repo) GetByID(ctx context.Context, carrierID id.ID) (*carrier.Carrier, error) {
	sql, args, err := r.Builder().
		Select(carrierColumns...).
		From(carriersTable).
		Where(squirrel.Eq{"id": carrierID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var c carrier.Carrier
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &c, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("carrier", carrierID)
		}
		return nil, fmt.Errorf("get carrier: %w", err)
	}
	return &c, nil
}

// List implements carrier.Repository.
func (r *Repo) List(ctx context.Context) ([]*carrier.Carrier, error) {
	sql, args, err := r.Builder().
		Select(carrierColumns...).
		From(carriersTable).
		OrderBy("name", "id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var list []*carrier.Carrier
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &list, sql, args...); err != nil {
		return nil, fmt.Errorf("list carriers: %w", err)
	}
	return list, nil
}

// ListForCarrier implements carrier.LicenseRepository.
func (r *Repo) ListForCarrier(ctx context.Context, carrierID id.ID) ([]carrier.DestinationLicense, error) {
	sql, args, err := r.Builder().
		Select(licenseColumns...).
		From(licensesTable).
		Where(squirrel.Eq{"carrier_id": carrierID}).
		OrderBy("destination_country").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	list := []carrier.DestinationLicense{}
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &list, sql, args...); err != nil {
		return nil, fmt.Errorf("list licenses: %w", err)
	}
	return list, nil
}

// SaveCarrier inserts the carrier or updates it by registration number.
// The stored id is written back into c.
func (r *Repo) SaveCarrier(ctx context.Context, c *carrier.Carrier) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if id.IsNil(c.ID) {
		c.ID = id.New()
	}
	now := time.Now().UTC()

	sql, args, err := r.Builder().
		Insert(carriersTable).
		Columns("id", "name", "country", "registration_number", "start_primary", "start_manifest", "created_at", "updated_at").
		Values(c.ID, c.Name, c.Country, c.RegistrationNumber, c.StartPrimary, c.StartManifest, now, now).
		Suffix(`ON CONFLICT (registration_number) DO UPDATE SET
			name = EXCLUDED.name,
			country = EXCLUDED.country,
			start_primary = EXCLUDED.start_primary,
			start_manifest = EXCLUDED.start_manifest,
			updated_at = EXCLUDED.updated_at
			RETURNING id`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert: %w", err)
	}

	if err := r.txManager.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&c.ID); err != nil {
		return fmt.Errorf("save carrier: %w", err)
	}
	return nil
}

// SaveLicense inserts or replaces the license for (carrier, destination).
func (r *Repo) SaveLicense(ctx context.Context, l *carrier.DestinationLicense) error {
	if id.IsNil(l.ID) {
		l.ID = id.New()
	}
	sql, args, err := r.Builder().
		Insert(licensesTable).
		Columns("id", "carrier_id", "destination_country", "code", "idoneidade", "expires_at").
		Values(l.ID, l.CarrierID, l.DestinationCountry, l.Code, l.Idoneidade, l.ExpiresAt).
		Suffix(`ON CONFLICT (carrier_id, destination_country) DO UPDATE SET
			code = EXCLUDED.code,
			idoneidade = EXCLUDED.idoneidade,
			expires_at = EXCLUDED.expires_at
			RETURNING id`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert: %w", err)
	}

	if err := r.txManager.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&l.ID); err != nil {
		return fmt.Errorf("save license: %w", err)
	}
	return nil
}

var _ carrier.Writer = (*Repo)(nil)
