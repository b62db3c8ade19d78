package notifications

import "time"

// Kind is the client-facing notification type
type Kind string

const (
	KindMention       Kind = "mention"
	KindStatus        Kind = "status"
	KindReblog        Kind = "reblog"
	KindFollow        Kind = "follow"
	KindFollowRequest Kind = "follow_request"
	KindFavourite     Kind = "favourite"
	KindPoll          Kind = "poll"
	KindUpdate        Kind = "update"
)

// Notification is an append-only record of an activity directed at an account
type Notification struct {
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	ID           string    `json:"id"`
	RecipientID  string    `json:"recipient_id"`
	ActorID      string    `json:"actor_id"`
	ActivityID   string    `json:"activity_id"`
	ActivityType string    `json:"activity_type"`
	Kind         Kind      `json:"type"`
}

// NotifyRequest describes a notification to emit.
// CreatedAt defaults to the current time when nil.
type NotifyRequest struct {
	CreatedAt    *time.Time
	RecipientID  string `validate:"required"`
	ActorID      string `validate:"required"`
	ActivityID   string `validate:"required"`
	ActivityType string `validate:"required"`
	Kind         Kind   `validate:"required,oneof=mention status reblog follow follow_request favourite poll update"`
}
