package cli

import (
	"context"
	"strings"

	"transdoc/internal/core/apperror"
	"transdoc/internal/core/id"
	"transdoc/internal/domain/carrier"
	"transdoc/internal/domain/country"
	"transdoc/internal/domain/license"
	"transdoc/internal/domain/numbering"
	"transdoc/internal/infrastructure/storage/sqlite"
)

// engine is the numbering stack over one SQLite file.
type engine struct {
	store     *sqlite.Store
	countries *country.Registry
	numbers   *numbering.Service
}

func openEngine(opts *RootOptions) (*engine, error) {
	store, err := sqlite.Open(opts.DB)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "cannot open database "+opts.DB, err)
	}
	countries := country.Default()
	resolver := license.NewResolver(store, countries, strings.ToUpper(opts.HomeMarket))
	numbers := numbering.NewService(store, resolver, store, numbering.Options{
		MaxBatch:   opts.MaxBatch,
		MaxRetries: opts.MaxRetries,
	})
	return &engine{store: store, countries: countries, numbers: numbers}, nil
}

func (e *engine) Close() error {
	return e.store.Close()
}

// carrier finds a carrier by id or by registration number.
func (e *engine) carrier(ctx context.Context, ref string) (*carrier.Carrier, error) {
	ref = strings.TrimSpace(ref)
	if carrierID, err := id.Parse(ref); err == nil {
		return e.store.GetByID(ctx, carrierID)
	}
	list, err := e.store.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, c := range list {
		if strings.EqualFold(c.RegistrationNumber, ref) {
			return c, nil
		}
	}
	return nil, apperror.NewNotFound("carrier", ref)
}
