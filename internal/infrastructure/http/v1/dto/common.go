// Package dto provides Data Transfer Objects for API requests/responses.
package dto

import (
	"strings"

	"transdoc/internal/core/apperror"
	"transdoc/internal/core/id"
)

// ListResponse wraps a list result.
type ListResponse[T any] struct {
	Items []T `json:"items"`
	Count int `json:"count"`
}

// NewListResponse creates a list response; a nil slice renders as [].
func NewListResponse[T any](items []T) ListResponse[T] {
	if items == nil {
		items = []T{}
	}
	return ListResponse[T]{Items: items, Count: len(items)}
}

// ErrorResponse documents the error body written by the error middleware.
type ErrorResponse struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// ParseID parses a UUID field, reporting the field name on failure.
func ParseID(field, value string) (id.ID, error) {
	parsed, err := id.Parse(strings.TrimSpace(value))
	if err != nil {
		return id.ID{}, apperror.NewValidation("invalid "+field).
			WithDetail("field", field).
			WithDetail("value", value)
	}
	return parsed, nil
}

// ParseIDs parses a list of UUIDs.
func ParseIDs(field string, values []string) ([]id.ID, error) {
	out := make([]id.ID, 0, len(values))
	for _, v := range values {
		parsed, err := ParseID(field, v)
		if err != nil {
			return nil, err
		}
		out = append(out, parsed)
	}
	return out, nil
}
