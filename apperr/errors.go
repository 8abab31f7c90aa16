// Package apperr defines the error kinds handlers translate into HTTP
// responses. Storage code wraps one of the sentinels with context using
// fmt.Errorf and %w; anything unwrapped is a generic storage failure.
package apperr

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

var (
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	// ErrPartialCompletion marks a multi-statement sequence whose second
	// statement failed. The transaction was rolled back.
	ErrPartialCompletion = errors.New("partial completion")
)

// Kind describes how an error kind is reported
type Kind struct {
	Status  int
	IntCode string
}

var kinds = []struct {
	err  error
	kind Kind
}{
	{ErrValidation, Kind{fiber.StatusBadRequest, "F10"}},
	{ErrUnauthorized, Kind{fiber.StatusUnauthorized, "F20"}},
	{ErrForbidden, Kind{fiber.StatusForbidden, "F21"}},
	{ErrNotFound, Kind{fiber.StatusNotFound, "F30"}},
	{ErrConflict, Kind{fiber.StatusConflict, "F31"}},
	{ErrPartialCompletion, Kind{fiber.StatusInternalServerError, "F50"}},
}

// KindOf returns the reporting kind of err. Unknown errors are storage
// failures.
func KindOf(err error) Kind {
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return Kind{fe.Code, "F99"}
	}
	return Kind{fiber.StatusInternalServerError, "F99"}
}

// Validation builds a validation error with a caller-facing message
func Validation(msg string) error {
	return fmt.Errorf("%w: %s", ErrValidation, msg)
}

// NotFound builds a not-found error naming the missing thing
func NotFound(what string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, what)
}

// Partial reports which step of a sequence failed
func Partial(step string, cause error) error {
	return fmt.Errorf("%w: %s: %v", ErrPartialCompletion, step, cause)
}
