package statuses

import (
	"encoding/json"
	"time"
)

// StatusView is the client-facing representation of a status.
// Viewer-scoped booleans are nil when hydrated without a viewer.
type StatusView struct {
	CreatedAt          time.Time    `json:"created_at"`
	EditedAt           *time.Time   `json:"edited_at"`
	InReplyToID        *string      `json:"in_reply_to_id"`
	InReplyToAccountID *string      `json:"in_reply_to_account_id"`
	Language           *string      `json:"language"`
	Reblog             *StatusView  `json:"reblog"`
	Account            *AccountView `json:"account"`
	Poll               *PollView    `json:"poll"`
	Favourited         *bool        `json:"favourited,omitempty"`
	Reblogged          *bool        `json:"reblogged,omitempty"`
	Muted              *bool        `json:"muted,omitempty"`
	Bookmarked         *bool        `json:"bookmarked,omitempty"`
	Pinned             *bool        `json:"pinned,omitempty"`
	ID                 string       `json:"id"`
	URI                string       `json:"uri"`
	URL                string       `json:"url"`
	Visibility         Visibility   `json:"visibility"`
	SpoilerText        string       `json:"spoiler_text"`
	Text               string       `json:"text"`
	Content            string       `json:"content"`
	MediaAttachments   []MediaView  `json:"media_attachments"`
	RepliesCount       int64        `json:"replies_count"`
	ReblogsCount       int64        `json:"reblogs_count"`
	FavouritesCount    int64        `json:"favourites_count"`
	Sensitive          bool         `json:"sensitive"`

	stub bool
}

// newStubView returns the placeholder used for unresolvable reblog targets
func newStubView(id string) *StatusView {
	return &StatusView{ID: id, stub: true}
}

// IsStub reports whether the view is a placeholder carrying only an id
func (v *StatusView) IsStub() bool {
	return v.stub
}

// MarshalJSON renders stubs as {"id": ...} and full views with every field
func (v *StatusView) MarshalJSON() ([]byte, error) {
	if v.stub {
		return json.Marshal(struct {
			ID string `json:"id"`
		}{ID: v.ID})
	}
	type view StatusView
	return json.Marshal((*view)(v))
}

// AccountView is the embedded owner of a status
type AccountView struct {
	CreatedAt   time.Time   `json:"created_at"`
	ID          string      `json:"id"`
	Username    string      `json:"username"`
	Acct        string      `json:"acct"`
	DisplayName string      `json:"display_name"`
	Note        string      `json:"note"`
	URL         string      `json:"url"`
	Fields      []FieldView `json:"fields"`
}

// FieldView is a profile metadata pair
type FieldView struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// MediaView is a resolved media attachment
type MediaView struct {
	Description *string   `json:"description"`
	Blurhash    *string   `json:"blurhash"`
	ID          string    `json:"id"`
	Type        MediaType `json:"type"`
	RemoteURL   string    `json:"remote_url"`
}

// PollView carries real tallies. Voted and OwnVotes are viewer-scoped.
type PollView struct {
	ExpiresAt   *time.Time       `json:"expires_at"`
	Voted       *bool            `json:"voted,omitempty"`
	ID          string           `json:"id"`
	Options     []PollOptionView `json:"options"`
	OwnVotes    []int            `json:"own_votes,omitempty"`
	VotesCount  int64            `json:"votes_count"`
	VotersCount int64            `json:"voters_count"`
	Expired     bool             `json:"expired"`
	Multiple    bool             `json:"multiple"`
}

// PollOptionView is one option with its vote count
type PollOptionView struct {
	Title      string `json:"title"`
	VotesCount int64  `json:"votes_count"`
}

func newAccountView(a *Account) *AccountView {
	fields := make([]FieldView, 0, len(a.Fields))
	for _, f := range a.Fields {
		fields = append(fields, FieldView{Name: f.Name, Value: f.Value})
	}
	return &AccountView{
		ID:          a.ID,
		Username:    a.Username,
		Acct:        a.Acct,
		DisplayName: a.DisplayName,
		Note:        a.Note,
		URL:         a.URL,
		CreatedAt:   a.CreatedAt,
		Fields:      fields,
	}
}

func newMediaView(m *Media) MediaView {
	return MediaView{
		ID:          m.ID,
		Type:        m.Type,
		RemoteURL:   m.RemoteURL,
		Description: m.Description,
		Blurhash:    m.Blurhash,
	}
}
