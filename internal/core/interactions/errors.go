package interactions

import (
	"errors"

	"Murmur/internal/core/storage"
)

var (
	// ErrStatusNotFound indicates the status being interacted with doesn't exist
	ErrStatusNotFound = errors.New("status not found")

	// ErrInvalidKind indicates an unknown interaction kind
	ErrInvalidKind = errors.New("invalid interaction kind")

	// ErrNotAuthorized indicates the account may not perform this interaction
	// (only the author can pin a status)
	ErrNotAuthorized = errors.New("not authorized")
)

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrStatusNotFound)
}

// IsStoreUnavailable checks if an error came from a failing store
func IsStoreUnavailable(err error) bool {
	return storage.IsUnavailable(err)
}
