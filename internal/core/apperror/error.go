// Package apperror provides structured error handling following RFC 7807 Problem Details.
// All business errors must use AppError for consistent API responses.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes following domain-driven design
const (
	// Infrastructure errors (5xx)
	CodeInternal = "INTERNAL_ERROR"
	CodeDatabase = "DATABASE_ERROR"

	// Validation errors (400)
	CodeValidation      = "VALIDATION_ERROR"
	CodeInvalidCountry  = "INVALID_COUNTRY"
	CodeInvalidRoute    = "INVALID_ROUTE"
	CodeInvalidQuantity = "INVALID_QUANTITY"

	// Licensing rule violations (422)
	CodeBusinessRule      = "BUSINESS_RULE_VIOLATION"
	CodeNoLicenseForRoute = "NO_LICENSE_FOR_ROUTE"
	CodeMalformedLicense  = "MALFORMED_LICENSE"
	CodeMissingIdoneidade = "MISSING_IDONEIDADE"

	// Not found (404)
	CodeNotFound = "NOT_FOUND"

	// Conflict (409)
	CodeConflict           = "CONFLICT"
	CodeAllocationConflict = "ALLOCATION_CONFLICT"
)

// AppError is the standard error type for the platform.
// It implements error interface and provides structured details for API responses.
type AppError struct {
	// Code is a machine-readable error identifier
	Code string `json:"code"`

	// Message is a human-readable error description
	Message string `json:"message"`

	// Details contains additional context (countries, carrier, quantities, etc.)
	Details map[string]any `json:"details,omitempty"`

	// HTTPStatus is the suggested HTTP status code
	HTTPStatus int `json:"-"`

	// Err is the underlying error (not exposed in JSON)
	Err error `json:"-"`
}

// Error implements error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetail adds a key-value pair to error details
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// WithCause sets the underlying error
func (e *AppError) WithCause(err error) *AppError {
	e.Err = err
	return e
}

// --- Factory functions ---

// NewValidation creates a validation error (400)
func NewValidation(message string) *AppError {
	return &AppError{
		Code:       CodeValidation,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

// NewInvalidCountry reports a country code unknown to the registry.
func NewInvalidCountry(code string) *AppError {
	return &AppError{
		Code:       CodeInvalidCountry,
		Message:    fmt.Sprintf("unknown country code %q", code),
		HTTPStatus: http.StatusBadRequest,
		Details:    map[string]any{"country": code},
	}
}

// NewInvalidRoute reports a route whose origin equals its destination.
func NewInvalidRoute(origin, destination string) *AppError {
	return &AppError{
		Code:       CodeInvalidRoute,
		Message:    "origin and destination countries must differ",
		HTTPStatus: http.StatusBadRequest,
		Details:    map[string]any{"origin": origin, "destination": destination},
	}
}

// NewInvalidQuantity reports a batch size outside [min, max].
func NewInvalidQuantity(quantity, min, max int) *AppError {
	return &AppError{
		Code:       CodeInvalidQuantity,
		Message:    fmt.Sprintf("quantity must be between %d and %d", min, max),
		HTTPStatus: http.StatusBadRequest,
		Details:    map[string]any{"quantity": quantity, "min": min, "max": max},
	}
}

// NewNotFound creates a not found error (404)
func NewNotFound(entity string, id any) *AppError {
	return &AppError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", entity),
		HTTPStatus: http.StatusNotFound,
		Details:    map[string]any{"entity": entity, "id": id},
	}
}

// NewNoLicenseForRoute reports that neither a stored license nor the home-country
// exemption authorizes the carrier on the route.
func NewNoLicenseForRoute(carrierID any, origin, destination string) *AppError {
	return &AppError{
		Code:       CodeNoLicenseForRoute,
		Message:    fmt.Sprintf("carrier has no license linking %s and %s", origin, destination),
		HTTPStatus: http.StatusUnprocessableEntity,
		Details: map[string]any{
			"carrier_id":  carrierID,
			"origin":      origin,
			"destination": destination,
		},
	}
}

// NewMalformedLicense reports a home-market license code without the leading
// four-digit block.
func NewMalformedLicense(code string) *AppError {
	return &AppError{
		Code:       CodeMalformedLicense,
		Message:    "license code must have at least four digits after the leading letters (e.g. BR1234/56)",
		HTTPStatus: http.StatusUnprocessableEntity,
		Details:    map[string]any{"license": code},
	}
}

// NewMissingIdoneidade reports a foreign carrier license with neither an
// idoneidade nor a license code.
func NewMissingIdoneidade(carrierID any, destination string) *AppError {
	return &AppError{
		Code:       CodeMissingIdoneidade,
		Message:    "foreign carrier license has neither idoneidade nor license code",
		HTTPStatus: http.StatusUnprocessableEntity,
		Details:    map[string]any{"carrier_id": carrierID, "destination": destination},
	}
}

// NewBusinessRule creates a business rule violation error (422)
func NewBusinessRule(code, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: http.StatusUnprocessableEntity,
	}
}

// NewAllocationConflict is returned when the storage layer could not run the
// counter critical section atomically. Callers may retry the whole allocation.
func NewAllocationConflict(kind string, carrierID any) *AppError {
	return &AppError{
		Code:       CodeAllocationConflict,
		Message:    "sequence counter is busy, retry the allocation",
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"kind": kind, "carrier_id": carrierID},
	}
}

// NewInternal creates an internal server error (hides details from client)
func NewInternal(err error) *AppError {
	return &AppError{
		Code:       CodeInternal,
		Message:    "Internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// NewConflict creates a conflict error (409)
func NewConflict(message string) *AppError {
	return &AppError{
		Code:       CodeConflict,
		Message:    message,
		HTTPStatus: http.StatusConflict,
	}
}

// --- Helper functions ---

// IsAppError checks if error is AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// AsAppError extracts AppError from error chain
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// GetHTTPStatus returns appropriate HTTP status for any error
func GetHTTPStatus(err error) int {
	if appErr, ok := AsAppError(err); ok {
		return appErr.HTTPStatus
	}
	return http.StatusInternalServerError
}

// HasCode reports whether err carries an AppError with the given code.
func HasCode(err error, code string) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code == code
	}
	return false
}

// IsNotFound checks if error is CodeNotFound
func IsNotFound(err error) bool {
	return HasCode(err, CodeNotFound)
}

// IsAllocationConflict checks if error is CodeAllocationConflict
func IsAllocationConflict(err error) bool {
	return HasCode(err, CodeAllocationConflict)
}
