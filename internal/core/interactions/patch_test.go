package interactions

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFlagPatch_Empty(t *testing.T) {
	patch := NewFlagPatch()

	assert.True(t, patch.IsEmpty())
	assert.Empty(t, patch.Fields())

	state := State{Favourite: true, Mute: true}
	assert.Equal(t, state, patch.Apply(state))
}

func TestFlagPatch_OnlySuppliedFieldsApplied(t *testing.T) {
	patch := NewFlagPatch().Favourite(true).Pin(false)

	assert.False(t, patch.IsEmpty())
	assert.Equal(t, map[Kind]bool{KindFavourite: true, KindPin: false}, patch.Fields())

	before := State{StatusID: "1", AccountID: "2", Bookmark: true, Pin: true, Mute: true}
	after := patch.Apply(before)

	assert.True(t, after.Favourite)
	assert.True(t, after.Bookmark, "bookmark was not supplied and must be preserved")
	assert.False(t, after.Pin)
	assert.True(t, after.Mute, "mute was not supplied and must be preserved")
	assert.Equal(t, "1", after.StatusID)
	assert.Equal(t, "2", after.AccountID)
}

func TestFlagPatch_BuilderDoesNotAlias(t *testing.T) {
	base := NewFlagPatch().Bookmark(true)
	withMute := base.Mute(true)

	assert.Len(t, base.Fields(), 1)
	assert.Len(t, withMute.Fields(), 2)
}

func TestFlagPatch_SetByKind(t *testing.T) {
	for _, kind := range Kinds {
		patch := NewFlagPatch().Set(kind, true)
		assert.Equal(t, map[Kind]bool{kind: true}, patch.Fields(), string(kind))

		state := patch.Apply(State{})
		assert.True(t, state.Flag(kind))
	}

	assert.True(t, NewFlagPatch().Set(Kind("reblog"), true).IsEmpty())
}

func TestKind_Valid(t *testing.T) {
	for _, kind := range Kinds {
		assert.True(t, kind.Valid())
	}
	assert.False(t, Kind("").Valid())
	assert.False(t, Kind("reblog").Valid())
}
