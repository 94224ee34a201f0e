// Package sqlite provides a single-file store for the numgen tool: carriers,
// destination licenses and the sequence counters.
package sqlite

import (
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"net/url"

	"github.com/Masterminds/squirrel"
	"github.com/mattn/go-sqlite3"

	"transdoc/internal/core/apperror"
	corenumerator "transdoc/internal/core/numerator"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 1 - carriers, destination_licenses, number_sequences
// 2 - index on destination_licenses.carrier_id
const currentSchemaVersion = 2

// Store is a SQLite database opened in WAL mode.
type Store struct {
	db *sql.DB
}

// Open creates or opens the database at path and applies the schema.
//
// The database is configured through the DSN, so every connection the pool
// opens gets:
//   - WAL mode so readers do not block the writer
//   - a 5-second busy timeout for lock contention
//   - foreign key enforcement
//
// A single open connection serializes writers inside the process; other
// processes are serialized by SQLite's own file lock.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)
}

// connectionParams are per-connection settings understood by go-sqlite3.
var connectionParams = url.Values{
	"_journal_mode": {"WAL"},
	"_synchronous":  {"NORMAL"},
	"_busy_timeout": {"5000"},
	"_foreign_keys": {"on"},
}

func dsn(path string) string {
	return "file:" + path + "?" + connectionParams.Encode()
}

func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("execute schema: %w", err)
	}
	return runMigrations(db)
}

// runMigrations applies incremental migrations based on user_version.
func runMigrations(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}

	if version < 2 {
		if _, err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_destination_licenses_carrier
			ON destination_licenses (carrier_id)`); err != nil {
			return fmt.Errorf("migrate to v2: %w", err)
		}
	}

	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}
	return nil
}

// isBusy reports SQLITE_BUSY and SQLITE_LOCKED, returned once busy_timeout
// has elapsed with the database still locked by another writer.
func isBusy(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code == sqlite3.ErrBusy || sqliteErr.Code == sqlite3.ErrLocked
	}
	return false
}

func mapSequenceError(key corenumerator.Key, op string, err error) error {
	if isBusy(err) {
		return apperror.NewAllocationConflict(string(key.Kind), key.CarrierID).WithCause(err)
	}
	return fmt.Errorf("%s %s: %w", op, key, err)
}
