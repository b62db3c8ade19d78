package statuses

import (
	"errors"
	"fmt"

	"Murmur/internal/core/storage"
)

var (
	// ErrStatusNotFound indicates the requested status doesn't exist or was deleted
	ErrStatusNotFound = errors.New("status not found")

	// ErrAccountNotFound indicates an account lookup found nothing
	ErrAccountNotFound = errors.New("account not found")

	// ErrMediaNotFound indicates a media lookup found nothing
	ErrMediaNotFound = errors.New("media not found")

	// ErrInvalidBaseURL indicates the public base URL can't be used to build links
	ErrInvalidBaseURL = errors.New("invalid base URL")
)

// InvariantViolationError means a stored status references data that must
// exist but doesn't (owner account, media). Not caller-correctable.
type InvariantViolationError struct {
	StatusID string
	Resource string
	ID       string
}

func (e *InvariantViolationError) Error() string {
	return fmt.Sprintf("status %s references missing %s %s", e.StatusID, e.Resource, e.ID)
}

// NewInvariantViolationError creates a new invariant violation error
func NewInvariantViolationError(statusID, resource, id string) error {
	return &InvariantViolationError{
		StatusID: statusID,
		Resource: resource,
		ID:       id,
	}
}

// IsNotFound checks if an error is a caller-visible not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrStatusNotFound)
}

// IsInvariantViolation checks if error is an invariant violation
func IsInvariantViolation(err error) bool {
	var invErr *InvariantViolationError
	return errors.As(err, &invErr)
}

// IsStoreUnavailable checks if an error came from a failing store
func IsStoreUnavailable(err error) bool {
	return storage.IsUnavailable(err)
}
