package postgres

import (
	"context"
	"database/sql"

	"Murmur/internal/core/notifications"
	"Murmur/internal/core/storage"
)

type postgresNotificationRepo struct {
	db *sql.DB
}

// NewNotificationRepository creates a new PostgreSQL notification repository
func NewNotificationRepository(db *sql.DB) notifications.Repository {
	return &postgresNotificationRepo{db: db}
}

// Insert appends a notification
func (r *postgresNotificationRepo) Insert(ctx context.Context, n *notifications.Notification) error {
	recipient, ok := parseID(n.RecipientID)
	if !ok {
		return notifications.NewValidationError("RecipientID", "must be an account id")
	}
	actor, ok := parseID(n.ActorID)
	if !ok {
		return notifications.NewValidationError("ActorID", "must be an account id")
	}

	query := `
		INSERT INTO notifications (
			account_id, from_account_id, activity_id, activity_type, type,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRowContext(ctx, query,
		recipient, actor, n.ActivityID, n.ActivityType, string(n.Kind),
		n.CreatedAt, n.UpdatedAt,
	).Scan(&id)
	if err != nil {
		return storage.Unavailable("insert notification", err)
	}

	n.ID = formatID(id)
	return nil
}
