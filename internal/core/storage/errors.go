// Package storage holds the error vocabulary shared by every store backend.
package storage

import (
	"context"
	"errors"
	"fmt"
)

// ErrUnavailable indicates the backing store could not serve the request.
// Callers should treat it as retryable.
var ErrUnavailable = errors.New("store unavailable")

// UnavailableError wraps a driver error from a failed store operation
type UnavailableError struct {
	Err error
	Op  string
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("%s: %v: %v", e.Op, ErrUnavailable, e.Err)
}

func (e *UnavailableError) Unwrap() error {
	return e.Err
}

// Is reports ErrUnavailable as a match so callers can use errors.Is
func (e *UnavailableError) Is(target error) bool {
	return target == ErrUnavailable
}

// Unavailable wraps err as an UnavailableError for the named operation.
// Context cancellation is passed through untouched so callers can tell an
// aborted request from a sick store.
func Unavailable(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return &UnavailableError{Op: op, Err: err}
}

// IsUnavailable checks if an error came from an unreachable or failing store
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}
