package core

import (
	"errors"
	"fmt"
)

// Business failure taxonomy. Every failure crossing the service boundary either
// matches one of these with errors.Is or is treated as an internal error.
var (
	ErrUnauthorized             = errors.New("unauthorized")
	ErrNotFound                 = errors.New("not found")
	ErrValidation               = errors.New("validation error")
	ErrInvalidAmount            = fmt.Errorf("%w: invalid amount", ErrValidation)
	ErrInsufficientBalance      = errors.New("insufficient balance")
	ErrInsufficientPotBalance   = errors.New("insufficient pot balance")
	ErrDuplicateCategoryOrTheme = errors.New("duplicate category or theme")
)

// ValidationError reports a single invalid field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation error: " + e.Message
	}
	return fmt.Sprintf("validation error: %s %s", e.Field, e.Message)
}

// Is lets callers match any ValidationError against ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// NotFoundf builds a not-found error for the named entity.
func NotFoundf(entity, id string) error {
	return fmt.Errorf("%w: %s %s", ErrNotFound, entity, id)
}

// IsBusinessError reports whether err belongs to the taxonomy above rather
// than to infrastructure.
func IsBusinessError(err error) bool {
	switch {
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, ErrNotFound),
		errors.Is(err, ErrValidation),
		errors.Is(err, ErrInsufficientBalance),
		errors.Is(err, ErrInsufficientPotBalance),
		errors.Is(err, ErrDuplicateCategoryOrTheme):
		return true
	}
	return false
}
