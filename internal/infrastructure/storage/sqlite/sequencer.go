package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	corenumerator "transdoc/internal/core/numerator"
)

var _ corenumerator.Sequencer = (*Store)(nil)

// IncrementBy implements numerator.Sequencer with one UPSERT ... RETURNING
// statement, which SQLite runs under its write lock.
func (s *Store) IncrementBy(ctx context.Context, key corenumerator.Key, seed int64, n int64) (int64, error) {
	var last int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO number_sequences (kind, carrier_id, last_value, updated_at)
		VALUES (?1, ?2, ?3 - 1 + ?4, ?5)
		ON CONFLICT (kind, carrier_id) DO UPDATE
		SET last_value = number_sequences.last_value + ?4,
		    updated_at = ?5
		RETURNING last_value
	`, string(key.Kind), key.CarrierID.String(), seed, n, time.Now().UTC()).Scan(&last)
	if err != nil {
		return 0, mapSequenceError(key, "increment sequence", err)
	}
	return last - n, nil
}

// Current implements numerator.Sequencer.
func (s *Store) Current(ctx context.Context, key corenumerator.Key) (int64, bool, error) {
	var last int64
	err := s.db.QueryRowContext(ctx,
		`SELECT last_value FROM number_sequences WHERE kind = ? AND carrier_id = ?`,
		string(key.Kind), key.CarrierID.String(),
	).Scan(&last)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, mapSequenceError(key, "read sequence", err)
	}
	return last, true, nil
}

// Rebase implements numerator.Sequencer.
func (s *Store) Rebase(ctx context.Context, key corenumerator.Key, last int64) (int64, error) {
	var value int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO number_sequences (kind, carrier_id, last_value, updated_at)
		VALUES (?1, ?2, ?3, ?4)
		ON CONFLICT (kind, carrier_id) DO UPDATE
		SET last_value = MAX(number_sequences.last_value, excluded.last_value),
		    updated_at = ?4
		RETURNING last_value
	`, string(key.Kind), key.CarrierID.String(), last, time.Now().UTC()).Scan(&value)
	if err != nil {
		return 0, mapSequenceError(key, "rebase sequence", err)
	}
	return value, nil
}
