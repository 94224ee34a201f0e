// Package id provides UUIDv7 identifiers for carriers, licenses and issued documents.
// UUIDv7 is time-ordered, so documents issued later sort after earlier ones.
package id

import (
	"fmt"

	"github.com/google/uuid"
)

// ID is a type alias for UUID, used across all entities.
type ID = uuid.UUID

// New generates a new UUIDv7.
func New() ID {
	v, err := uuid.NewV7()
	if err != nil {
		return uuid.New()
	}
	return v
}

// Parse converts string to ID with validation.
func Parse(s string) (ID, error) {
	return uuid.Parse(s)
}

// ParseAll parses a list of ids, failing on the first invalid entry.
func ParseAll(values []string) ([]ID, error) {
	ids := make([]ID, 0, len(values))
	for i, v := range values {
		parsed, err := uuid.Parse(v)
		if err != nil {
			return nil, fmt.Errorf("id at position %d: %w", i, err)
		}
		ids = append(ids, parsed)
	}
	return ids, nil
}

// MustParse converts string to ID, panics on error.
// Use only for constants and tests.
func MustParse(s string) ID {
	return uuid.MustParse(s)
}

// IsNil checks if ID is zero-value.
func IsNil(v ID) bool {
	return v == uuid.Nil
}
