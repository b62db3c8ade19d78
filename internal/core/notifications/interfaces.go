package notifications

import "context"

// Service defines notification emission
type Service interface {
	// Notify validates the request and appends a notification.
	// Fails only on invalid input or when the store is unavailable.
	Notify(ctx context.Context, req NotifyRequest) (*Notification, error)
}

// Repository defines the data access interface for notifications
type Repository interface {
	// Insert appends a notification and sets its ID
	Insert(ctx context.Context, n *Notification) error
}
