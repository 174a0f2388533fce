package domain

import "sync"

// UserDirectory maps active sessions to their display names. Names are not
// unique; LookupByName resolves to the earliest joined member of the room
// carrying the name.
type UserDirectory struct {
	mu    sync.RWMutex
	names map[string]string
	rooms RoomService
}

func NewUserDirectory(rooms RoomService) *UserDirectory {
	return &UserDirectory{
		names: make(map[string]string),
		rooms: rooms,
	}
}

func (d *UserDirectory) Register(session *Session, name string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.names[session.ID] = name
}

func (d *UserDirectory) Unregister(session *Session) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.names, session.ID)
}

func (d *UserDirectory) Lookup(session *Session) (string, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	name, ok := d.names[session.ID]
	return name, ok
}

func (d *UserDirectory) LookupByName(room, name string) (*Session, bool) {
	for _, candidate := range d.rooms.MembersOf(room) {
		if registered, ok := d.Lookup(candidate); ok && registered == name {
			return candidate, true
		}
	}
	return nil, false
}

// NamesIn lists the display names of the room's members in join order.
func (d *UserDirectory) NamesIn(room string) []string {
	members := d.rooms.MembersOf(room)
	names := make([]string, 0, len(members))
	for _, m := range members {
		if name, ok := d.Lookup(m); ok {
			names = append(names, name)
		}
	}
	return names
}

func (d *UserDirectory) Count() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.names)
}
