package statuses

import "time"

// Visibility controls who may see a status
type Visibility string

const (
	VisibilityPublic   Visibility = "public"
	VisibilityUnlisted Visibility = "unlisted"
	VisibilityPrivate  Visibility = "private"
	VisibilityDirect   Visibility = "direct"
)

// MediaType is the kind of a media attachment
type MediaType string

const (
	MediaTypeUnknown MediaType = "unknown"
	MediaTypeImage   MediaType = "image"
	MediaTypeGifv    MediaType = "gifv"
	MediaTypeVideo   MediaType = "video"
	MediaTypeAudio   MediaType = "audio"
)

// Status is a stored social post.
// URI and URL are only set for statuses that originated on a remote server.
type Status struct {
	CreatedAt          time.Time
	EditedAt           *time.Time
	Language           *string
	InReplyToID        *string
	InReplyToAccountID *string
	ReblogOfID         *string
	URI                *string
	URL                *string
	Poll               *Poll
	ID                 string
	AccountID          string
	Text               string
	Content            string
	SpoilerText        string
	Visibility         Visibility
	MediaIDs           []string
	Sensitive          bool
	Deleted            bool
}

// Account is the owner of statuses. Read-only for this service.
type Account struct {
	CreatedAt   time.Time
	ID          string
	Username    string
	Acct        string
	DisplayName string
	Note        string
	URL         string
	Fields      []Field
}

// Field is a profile metadata pair
type Field struct {
	Name  string
	Value string
}

// Media is an attachment referenced by a status
type Media struct {
	Description *string
	Blurhash    *string
	ID          string
	Type        MediaType
	RemoteURL   string
}

// Poll is attached to at most one status.
// Options are ordered; a vote's choice indexes into them.
type Poll struct {
	ExpiresAt *time.Time
	ID        string
	Options   []string
	Multiple  bool
}

// Expired reports whether the poll has closed at now
func (p *Poll) Expired(now time.Time) bool {
	return p.ExpiresAt != nil && !now.Before(*p.ExpiresAt)
}

// VoteCount is the number of votes cast for one choice index
type VoteCount struct {
	Choice int
	Count  int64
}
