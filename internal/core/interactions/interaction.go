package interactions

import "time"

// Kind names one of the per-viewer interaction flags
type Kind string

const (
	KindFavourite Kind = "favourite"
	KindBookmark  Kind = "bookmark"
	KindPin       Kind = "pin"
	KindMute      Kind = "mute"
)

// Kinds lists every interaction kind in a stable order
var Kinds = []Kind{KindFavourite, KindBookmark, KindPin, KindMute}

// Valid reports whether k is a known interaction kind
func (k Kind) Valid() bool {
	switch k {
	case KindFavourite, KindBookmark, KindPin, KindMute:
		return true
	}
	return false
}

// State is the viewer-scoped interaction record for one (status, account) pair.
// A missing record is equivalent to a State with every flag false.
type State struct {
	StatusID  string
	AccountID string
	Favourite bool
	Bookmark  bool
	Pin       bool
	Mute      bool
}

// NewState returns the default record for a pair
func NewState(statusID, accountID string) *State {
	return &State{StatusID: statusID, AccountID: accountID}
}

// Flag returns the value of a single flag
func (s *State) Flag(kind Kind) bool {
	switch kind {
	case KindFavourite:
		return s.Favourite
	case KindBookmark:
		return s.Bookmark
	case KindPin:
		return s.Pin
	case KindMute:
		return s.Mute
	}
	return false
}

// Relation is a single active interaction of one kind, as created by a
// mutation. Created is false when the relation already existed.
type Relation struct {
	CreatedAt time.Time
	UpdatedAt time.Time
	ID        string
	Kind      Kind
	StatusID  string
	AccountID string
	Created   bool
}
