package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserDirectory_RegisterLookup(t *testing.T) {
	d := NewUserDirectory(NewRoomRegistry())
	alice := newTestSession("a", "alice")

	_, ok := d.Lookup(alice)
	assert.False(t, ok)

	d.Register(alice, "alice")
	name, ok := d.Lookup(alice)
	assert.True(t, ok)
	assert.Equal(t, "alice", name)
	assert.Equal(t, 1, d.Count())

	d.Unregister(alice)
	_, ok = d.Lookup(alice)
	assert.False(t, ok)
	assert.Equal(t, 0, d.Count())
}

func TestUserDirectory_LookupByNameIsScopedToRoom(t *testing.T) {
	rooms := NewRoomRegistry()
	d := NewUserDirectory(rooms)
	alice := newTestSession("a", "alice")
	bob := newTestSession("b", "bob")
	d.Register(alice, "alice")
	d.Register(bob, "bob")
	rooms.Join("lobby", alice)
	rooms.Join("games", bob)

	got, ok := d.LookupByName("lobby", "alice")
	assert.True(t, ok)
	assert.Same(t, alice, got)

	_, ok = d.LookupByName("lobby", "bob")
	assert.False(t, ok)

	_, ok = d.LookupByName("empty", "alice")
	assert.False(t, ok)
}

func TestUserDirectory_DuplicateNamesResolveToEarliestMember(t *testing.T) {
	rooms := NewRoomRegistry()
	d := NewUserDirectory(rooms)
	first := newTestSession("z", "ana")
	second := newTestSession("a", "ana")
	d.Register(first, "ana")
	d.Register(second, "ana")
	rooms.Join("lobby", first)
	rooms.Join("lobby", second)

	got, ok := d.LookupByName("lobby", "ana")
	assert.True(t, ok)
	assert.Same(t, first, got)
	assert.Equal(t, []string{"ana", "ana"}, d.NamesIn("lobby"))

	rooms.Leave("lobby", first)
	got, ok = d.LookupByName("lobby", "ana")
	assert.True(t, ok)
	assert.Same(t, second, got)
}

func TestUserDirectory_NamesInSkipsUnregistered(t *testing.T) {
	rooms := NewRoomRegistry()
	d := NewUserDirectory(rooms)
	alice := newTestSession("a", "alice")
	ghost := newTestSession("g", "ghost")
	d.Register(alice, "alice")
	rooms.Join("lobby", alice)
	rooms.Join("lobby", ghost)

	assert.Equal(t, []string{"alice"}, d.NamesIn("lobby"))
	assert.Empty(t, d.NamesIn("nowhere"))
}
