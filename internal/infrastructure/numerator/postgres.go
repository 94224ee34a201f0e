// Package numerator provides the storage implementations of the sequence
// counter: PostgreSQL for the service, and an in-process map for tests and
// single-process tools.
package numerator

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"transdoc/internal/core/apperror"
	corenumerator "transdoc/internal/core/numerator"
)

// Querier interface for database operations.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// SQLSTATEs reported when PostgreSQL could not run the statement atomically.
var conflictStates = map[string]bool{
	"40001": true, // serialization_failure
	"40P01": true, // deadlock_detected
	"55P03": true, // lock_not_available
}

// Postgres keeps counters in number_sequences. Every operation is a single
// statement, so the row lock taken by INSERT ... ON CONFLICT DO UPDATE is the
// critical section: concurrent calls for one key queue on the row, calls for
// other keys touch other rows.
type Postgres struct {
	q Querier
}

// Ensure compile-time interface compliance.
var _ corenumerator.Sequencer = (*Postgres)(nil)

// NewPostgres creates a sequencer bound to one querier (pool or connection).
func NewPostgres(querier Querier) *Postgres {
	return &Postgres{q: querier}
}

// IncrementBy implements Sequencer.
func (p *Postgres) IncrementBy(ctx context.Context, key corenumerator.Key, seed int64, n int64) (int64, error) {
	var last int64
	err := p.q.QueryRow(ctx, `
		INSERT INTO number_sequences (kind, carrier_id, last_value, updated_at)
		VALUES ($1, $2, $3::bigint - 1 + $4::bigint, now())
		ON CONFLICT (kind, carrier_id) DO UPDATE
		SET last_value = number_sequences.last_value + $4::bigint,
		    updated_at = now()
		RETURNING last_value
	`, string(key.Kind), key.CarrierID, seed, n).Scan(&last)
	if err != nil {
		return 0, mapError(key, "increment sequence", err)
	}
	return last - n, nil
}

// Current implements Sequencer.
func (p *Postgres) Current(ctx context.Context, key corenumerator.Key) (int64, bool, error) {
	var last int64
	err := p.q.QueryRow(ctx, `
		SELECT last_value FROM number_sequences
		WHERE kind = $1 AND carrier_id = $2
	`, string(key.Kind), key.CarrierID).Scan(&last)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, mapError(key, "read sequence", err)
	}
	return last, true, nil
}

// Rebase implements Sequencer.
func (p *Postgres) Rebase(ctx context.Context, key corenumerator.Key, last int64) (int64, error) {
	var value int64
	err := p.q.QueryRow(ctx, `
		INSERT INTO number_sequences (kind, carrier_id, last_value, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (kind, carrier_id) DO UPDATE
		SET last_value = GREATEST(number_sequences.last_value, EXCLUDED.last_value),
		    updated_at = now()
		RETURNING last_value
	`, string(key.Kind), key.CarrierID, last).Scan(&value)
	if err != nil {
		return 0, mapError(key, "rebase sequence", err)
	}
	return value, nil
}

func mapError(key corenumerator.Key, op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && conflictStates[pgErr.Code] {
		return apperror.NewAllocationConflict(string(key.Kind), key.CarrierID).WithCause(err)
	}
	return fmt.Errorf("%s %s: %w", op, key, err)
}
