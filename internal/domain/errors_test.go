package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationError(t *testing.T) {
	err := NewValidationError("text", "empty after normalization")

	assert.True(t, IsValidation(err))
	assert.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "text")

	var validationErr *ValidationError
	assert.True(t, errors.As(err, &validationErr))
	assert.Equal(t, "text", validationErr.Field)
}

func TestInvalidArgumentError(t *testing.T) {
	err := NewInvalidArgumentError("at least one of authors or keywords is required")

	assert.True(t, IsInvalidArgument(err))
	assert.False(t, IsValidation(err))
	assert.Contains(t, err.Error(), "authors or keywords")
}

func TestUnsupportedLocaleError(t *testing.T) {
	err := NewUnsupportedLocaleError(Locale("fr"))

	assert.True(t, IsUnsupportedLocale(err))
	assert.Contains(t, err.Error(), "fr")
}

func TestUnavailableError(t *testing.T) {
	err := NewUnavailableError("cache", "connection refused")

	assert.True(t, IsUnavailable(err))
	assert.Contains(t, err.Error(), "cache")
	assert.Contains(t, err.Error(), "connection refused")
}

func TestErrorChecks_WrappedErrors(t *testing.T) {
	// Checks must see through fmt.Errorf wrapping.
	err := fmt.Errorf("fetching suggestions: %w", NewInvalidArgumentError("empty query"))
	assert.True(t, IsInvalidArgument(err))

	err = fmt.Errorf("storing result: %w", NewUnavailableError("cache", "timeout"))
	assert.True(t, IsUnavailable(err))
}

func TestErrorChecks_NilAndUnrelated(t *testing.T) {
	assert.False(t, IsValidation(nil))
	assert.False(t, IsInvalidArgument(errors.New("boom")))
	assert.False(t, IsUnavailable(errors.New("boom")))
}
