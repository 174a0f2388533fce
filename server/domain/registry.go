package domain

import (
	"sort"
	"sync"

	"github.com/rs/zerolog/log"
)

type RoomInfo struct {
	Name    string
	Members int
}

type member struct {
	session *Session
	seq     uint64
}

// RoomRegistry maps room names to their member sessions. A room is present
// exactly while it has at least one member. The lock is only held for map
// access; callers write to members from the snapshots MembersOf returns.
type RoomRegistry struct {
	mu    sync.RWMutex
	rooms map[string]map[string]member
	seq   uint64
}

func NewRoomRegistry() *RoomRegistry {
	return &RoomRegistry{
		rooms: make(map[string]map[string]member),
	}
}

func (r *RoomRegistry) Join(room string, session *Session) {
	r.mu.Lock()
	members, exists := r.rooms[room]
	if !exists {
		members = make(map[string]member)
		r.rooms[room] = members
	}
	r.seq++
	members[session.ID] = member{session: session, seq: r.seq}
	count := len(members)
	r.mu.Unlock()

	if !exists {
		log.Info().Str("module", "core.registry").Str("room", room).Msg("room created")
	}
	log.Debug().Str("module", "core.registry").Str("room", room).Str("sid", session.ID).Int("members", count).Msg("member added")
}

func (r *RoomRegistry) Leave(room string, session *Session) {
	r.mu.Lock()
	members, exists := r.rooms[room]
	if !exists {
		r.mu.Unlock()
		return
	}
	if _, ok := members[session.ID]; !ok {
		r.mu.Unlock()
		return
	}
	delete(members, session.ID)
	deleted := len(members) == 0
	if deleted {
		delete(r.rooms, room)
	}
	r.mu.Unlock()

	log.Debug().Str("module", "core.registry").Str("room", room).Str("sid", session.ID).Msg("member removed")
	if deleted {
		log.Info().Str("module", "core.registry").Str("room", room).Msg("room deleted")
	}
}

// ListActive returns the names of rooms that currently have members, sorted.
func (r *RoomRegistry) ListActive() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rooms := make([]string, 0, len(r.rooms))
	for name := range r.rooms {
		rooms = append(rooms, name)
	}
	sort.Strings(rooms)
	return rooms
}

func (r *RoomRegistry) ActiveRooms() []RoomInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rooms := make([]RoomInfo, 0, len(r.rooms))
	for name, members := range r.rooms {
		rooms = append(rooms, RoomInfo{Name: name, Members: len(members)})
	}
	sort.Slice(rooms, func(i, j int) bool { return rooms[i].Name < rooms[j].Name })
	return rooms
}

// MembersOf returns a snapshot of the room's members in join order.
func (r *RoomRegistry) MembersOf(room string) []*Session {
	r.mu.RLock()
	members, exists := r.rooms[room]
	if !exists {
		r.mu.RUnlock()
		return []*Session{}
	}
	snapshot := make([]member, 0, len(members))
	for _, m := range members {
		snapshot = append(snapshot, m)
	}
	r.mu.RUnlock()

	sort.Slice(snapshot, func(i, j int) bool { return snapshot[i].seq < snapshot[j].seq })
	sessions := make([]*Session, len(snapshot))
	for i, m := range snapshot {
		sessions[i] = m.session
	}
	return sessions
}

func (r *RoomRegistry) IsActive(room string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.rooms[room]
	return exists
}

func (r *RoomRegistry) MemberCount(room string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.rooms[room])
}
