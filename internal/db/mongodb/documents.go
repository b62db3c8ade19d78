package mongodb

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"Murmur/internal/core/interactions"
	"Murmur/internal/core/statuses"
)

// StatusDocument is a status as stored in the statuses collection.
// The embedded poll shares the status id.
type StatusDocument struct {
	CreatedAt          time.Time     `bson:"created_at"`
	EditedAt           *time.Time    `bson:"edited_at,omitempty"`
	Language           *string       `bson:"language,omitempty"`
	InReplyToID        *string       `bson:"in_reply_to_id,omitempty"`
	InReplyToAccountID *string       `bson:"in_reply_to_account_id,omitempty"`
	ReblogOfID         *string       `bson:"reblog_of_id,omitempty"`
	URI                *string       `bson:"uri,omitempty"`
	URL                *string       `bson:"url,omitempty"`
	Poll               *PollDocument `bson:"poll,omitempty"`
	ID                 string        `bson:"_id"`
	AccountID          string        `bson:"account_id"`
	Text               string        `bson:"text"`
	Content            string        `bson:"content"`
	SpoilerText        string        `bson:"spoiler_text"`
	Visibility         string        `bson:"visibility"`
	MediaIDs           []string      `bson:"media_ids"`
	Sensitive          bool          `bson:"sensitive"`
	Deleted            bool          `bson:"deleted"`
}

// PollDocument is embedded in its status
type PollDocument struct {
	ExpiresAt *time.Time `bson:"expires_at,omitempty"`
	Options   []string   `bson:"options"`
	Multiple  bool       `bson:"multiple"`
}

// AccountDocument is an account in the accounts collection
type AccountDocument struct {
	CreatedAt   time.Time       `bson:"created_at"`
	ID          string          `bson:"_id"`
	Username    string          `bson:"username"`
	Acct        string          `bson:"acct"`
	DisplayName string          `bson:"display_name"`
	Note        string          `bson:"note"`
	URL         string          `bson:"url"`
	Fields      []FieldDocument `bson:"fields"`
}

// FieldDocument is a profile metadata pair
type FieldDocument struct {
	Name  string `bson:"name"`
	Value string `bson:"value"`
}

// MediaDocument is a media attachment
type MediaDocument struct {
	Description *string `bson:"description,omitempty"`
	Blurhash    *string `bson:"blurhash,omitempty"`
	ID          string  `bson:"_id"`
	Type        string  `bson:"type"`
	RemoteURL   string  `bson:"remote_url"`
}

// StatusAccountDocument is the per-(status, account) interaction record
type StatusAccountDocument struct {
	CreatedAt time.Time          `bson:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at"`
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	StatusID  string             `bson:"status_id"`
	AccountID string             `bson:"account_id"`
	Favourite bool               `bson:"favourite"`
	Bookmark  bool               `bson:"bookmark"`
	Pin       bool               `bson:"pin"`
	Mute      bool               `bson:"mute"`
	Deleted   bool               `bson:"deleted"`
}

// PollVoteDocument is a single vote; choice is not range checked
type PollVoteDocument struct {
	CreatedAt time.Time          `bson:"created_at"`
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	PollID    string             `bson:"poll_id"`
	AccountID string             `bson:"account_id"`
	Choice    int                `bson:"choice"`
}

// NotificationDocument is an appended notification
type NotificationDocument struct {
	CreatedAt     time.Time          `bson:"created_at"`
	UpdatedAt     time.Time          `bson:"updated_at"`
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	AccountID     string             `bson:"account_id"`
	FromAccountID string             `bson:"from_account_id"`
	ActivityID    string             `bson:"activity_id"`
	ActivityType  string             `bson:"activity_type"`
	Type          string             `bson:"type"`
}

func (d *StatusDocument) toStatus() *statuses.Status {
	s := &statuses.Status{
		ID:                 d.ID,
		AccountID:          d.AccountID,
		Text:               d.Text,
		Content:            d.Content,
		SpoilerText:        d.SpoilerText,
		Sensitive:          d.Sensitive,
		Visibility:         statuses.Visibility(d.Visibility),
		Language:           d.Language,
		InReplyToID:        d.InReplyToID,
		InReplyToAccountID: d.InReplyToAccountID,
		ReblogOfID:         d.ReblogOfID,
		URI:                d.URI,
		URL:                d.URL,
		MediaIDs:           d.MediaIDs,
		CreatedAt:          d.CreatedAt,
		EditedAt:           d.EditedAt,
		Deleted:            d.Deleted,
	}
	if d.Poll != nil {
		s.Poll = &statuses.Poll{
			ID:        d.ID,
			ExpiresAt: d.Poll.ExpiresAt,
			Multiple:  d.Poll.Multiple,
			Options:   d.Poll.Options,
		}
	}
	return s
}

func (d *AccountDocument) toAccount() *statuses.Account {
	a := &statuses.Account{
		ID:          d.ID,
		Username:    d.Username,
		Acct:        d.Acct,
		DisplayName: d.DisplayName,
		Note:        d.Note,
		URL:         d.URL,
		CreatedAt:   d.CreatedAt,
	}
	for _, f := range d.Fields {
		a.Fields = append(a.Fields, statuses.Field{Name: f.Name, Value: f.Value})
	}
	return a
}

func (d *MediaDocument) toMedia() *statuses.Media {
	return &statuses.Media{
		ID:          d.ID,
		Type:        statuses.MediaType(d.Type),
		RemoteURL:   d.RemoteURL,
		Description: d.Description,
		Blurhash:    d.Blurhash,
	}
}

func (d *StatusAccountDocument) toState() *interactions.State {
	return &interactions.State{
		StatusID:  d.StatusID,
		AccountID: d.AccountID,
		Favourite: d.Favourite,
		Bookmark:  d.Bookmark,
		Pin:       d.Pin,
		Mute:      d.Mute,
	}
}

// flagFields maps interaction kinds to status_accounts field names
var flagFields = map[interactions.Kind]string{
	interactions.KindFavourite: "favourite",
	interactions.KindBookmark:  "bookmark",
	interactions.KindPin:       "pin",
	interactions.KindMute:      "mute",
}
