package interactions

// FlagPatch is a partial update of interaction flags. Only flags that were
// explicitly supplied are applied; the rest keep their stored value.
//
//	patch := NewFlagPatch().Favourite(true).Mute(false)
type FlagPatch struct {
	favourite *bool
	bookmark  *bool
	pin       *bool
	mute      *bool
}

// NewFlagPatch returns an empty patch
func NewFlagPatch() FlagPatch {
	return FlagPatch{}
}

func (p FlagPatch) Favourite(v bool) FlagPatch { p.favourite = &v; return p }
func (p FlagPatch) Bookmark(v bool) FlagPatch  { p.bookmark = &v; return p }
func (p FlagPatch) Pin(v bool) FlagPatch       { p.pin = &v; return p }
func (p FlagPatch) Mute(v bool) FlagPatch      { p.mute = &v; return p }

// Set supplies the flag for kind. Unknown kinds leave the patch unchanged.
func (p FlagPatch) Set(kind Kind, v bool) FlagPatch {
	switch kind {
	case KindFavourite:
		return p.Favourite(v)
	case KindBookmark:
		return p.Bookmark(v)
	case KindPin:
		return p.Pin(v)
	case KindMute:
		return p.Mute(v)
	}
	return p
}

// IsEmpty reports whether no flag was supplied
func (p FlagPatch) IsEmpty() bool {
	return p.favourite == nil && p.bookmark == nil && p.pin == nil && p.mute == nil
}

// Fields returns the supplied flags keyed by kind
func (p FlagPatch) Fields() map[Kind]bool {
	fields := make(map[Kind]bool, 4)
	if p.favourite != nil {
		fields[KindFavourite] = *p.favourite
	}
	if p.bookmark != nil {
		fields[KindBookmark] = *p.bookmark
	}
	if p.pin != nil {
		fields[KindPin] = *p.pin
	}
	if p.mute != nil {
		fields[KindMute] = *p.mute
	}
	return fields
}

// Apply returns a copy of s with the supplied flags overwritten
func (p FlagPatch) Apply(s State) State {
	if p.favourite != nil {
		s.Favourite = *p.favourite
	}
	if p.bookmark != nil {
		s.Bookmark = *p.bookmark
	}
	if p.pin != nil {
		s.Pin = *p.pin
	}
	if p.mute != nil {
		s.Mute = *p.mute
	}
	return s
}
