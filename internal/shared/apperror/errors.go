package apperror

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// =====================================================
// ERROR TAXONOMY
// =====================================================
// ValidationError → caller supplied bad input, carries per-field messages
// StorageError    → the backing store failed (connection, constraint, timeout)
// ErrCanceled     → the caller's context was canceled before the store answered
// Not-found conditions are domain sentinels (e.g. model.ErrMovieNotFound).

// ErrCanceled is matched with errors.Is on anything returned by Storage
// for a canceled or expired context.
var ErrCanceled = errors.New("operation canceled")

// ValidationError carries field-level messages.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// NewValidationError builds a single-field validation failure.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

// Add records another field failure and returns the receiver.
func (e *ValidationError) Add(field, message string) *ValidationError {
	if e.Fields == nil {
		e.Fields = map[string]string{}
	}
	e.Fields[field] = message
	return e
}

// FromValidation converts ozzo-validation output into a *ValidationError.
// Internal rule errors are returned unchanged.
func FromValidation(err error) error {
	if err == nil {
		return nil
	}

	var internal validation.InternalError
	if errors.As(err, &internal) {
		return err
	}

	var errs validation.Errors
	if errors.As(err, &errs) {
		out := &ValidationError{Fields: make(map[string]string, len(errs))}
		for field, fieldErr := range errs {
			if fieldErr != nil {
				out.Fields[field] = fieldErr.Error()
			}
		}
		return out
	}

	return &ValidationError{Fields: map[string]string{"request": err.Error()}}
}

// IsValidation reports whether err is (or wraps) a *ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// StorageError is an opaque storage-layer failure.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage failure during %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// Storage classifies err coming out of the store for operation op.
// Context cancellation and deadline errors become ErrCanceled, everything else a *StorageError.
func Storage(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrCanceled) {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w: %w", op, ErrCanceled, err)
	}
	var se *StorageError
	if errors.As(err, &se) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}

// IsStorage reports whether err is (or wraps) a *StorageError.
func IsStorage(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}
