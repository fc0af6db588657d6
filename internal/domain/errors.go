// Package domain contains business logic types and errors.
// Domain errors represent business-level failures, NOT HTTP errors.
// They are infrastructure-agnostic and mapped to HTTP status codes by adapters.
package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for use with errors.Is().
var (
	// ErrValidation indicates a scraped quote failed normalization.
	// Always recovered locally by discarding the quote, never surfaced.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidArgument indicates a malformed query, e.g. neither authors
	// nor keywords supplied. Surfaced to the caller as a client error.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrUnsupportedLocale indicates no classifier or source set is bound
	// for the requested locale. Fatal at configuration time, not per-request.
	ErrUnsupportedLocale = errors.New("unsupported locale")

	// ErrUnavailable indicates a required dependency is unreachable.
	ErrUnavailable = errors.New("unavailable")
)

// ValidationError provides context for validation errors.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
	}

	return "validation failed: " + e.Message
}

// Unwrap returns the sentinel error for errors.Is() support.
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// NewValidationError creates a validation error with context.
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// InvalidArgumentError provides context for invalid argument errors.
type InvalidArgumentError struct {
	Message string
}

// Error implements the error interface.
func (e *InvalidArgumentError) Error() string {
	return "invalid argument: " + e.Message
}

// Unwrap returns the sentinel error for errors.Is() support.
func (e *InvalidArgumentError) Unwrap() error {
	return ErrInvalidArgument
}

// NewInvalidArgumentError creates an invalid argument error with context.
func NewInvalidArgumentError(message string) error {
	return &InvalidArgumentError{Message: message}
}

// UnsupportedLocaleError reports a locale with no bound collaborator.
type UnsupportedLocaleError struct {
	Locale Locale
}

// Error implements the error interface.
func (e *UnsupportedLocaleError) Error() string {
	return fmt.Sprintf("locale %q is not supported", string(e.Locale))
}

// Unwrap returns the sentinel error for errors.Is() support.
func (e *UnsupportedLocaleError) Unwrap() error {
	return ErrUnsupportedLocale
}

// NewUnsupportedLocaleError creates an unsupported locale error.
func NewUnsupportedLocaleError(locale Locale) error {
	return &UnsupportedLocaleError{Locale: locale}
}

// UnavailableError provides context for unavailable errors.
type UnavailableError struct {
	Service string
	Reason  string
}

// Error implements the error interface.
func (e *UnavailableError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("service %q unavailable: %s", e.Service, e.Reason)
	}

	return fmt.Sprintf("service %q unavailable", e.Service)
}

// Unwrap returns the sentinel error for errors.Is() support.
func (e *UnavailableError) Unwrap() error {
	return ErrUnavailable
}

// NewUnavailableError creates an unavailable error with context.
func NewUnavailableError(service, reason string) error {
	return &UnavailableError{Service: service, Reason: reason}
}

// IsValidation checks if an error is a validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsInvalidArgument checks if an error is an invalid argument error.
func IsInvalidArgument(err error) bool {
	return errors.Is(err, ErrInvalidArgument)
}

// IsUnsupportedLocale checks if an error is an unsupported locale error.
func IsUnsupportedLocale(err error) bool {
	return errors.Is(err, ErrUnsupportedLocale)
}

// IsUnavailable checks if an error is an unavailable error.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}
