package domain

import (
	"errors"
	"strings"
)

var ErrInvalidRoomName = errors.New("invalid room name")

type RoomService interface {
	Join(room string, session *Session)
	Leave(room string, session *Session)

	ListActive() []string
	ActiveRooms() []RoomInfo
	MembersOf(room string) []*Session

	IsActive(room string) bool
	MemberCount(room string) int
}

type Directory interface {
	Register(session *Session, name string)
	Unregister(session *Session)

	Lookup(session *Session) (string, bool)
	LookupByName(room, name string) (*Session, bool)
	NamesIn(room string) []string
	Count() int
}

// ValidateRoomName rejects names that cannot double as a history file name.
func ValidateRoomName(room string) error {
	if room == "" || room == "." || room == ".." {
		return ErrInvalidRoomName
	}
	if strings.ContainsAny(room, "/\\\x00") {
		return ErrInvalidRoomName
	}
	return nil
}
