package domain

import (
	"errors"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	ErrSinkClosed     = errors.New("sink closed")
	ErrNameAlreadySet = errors.New("display name already set")
)

// Sink is the outbound side of a connection. Send must be safe for
// concurrent use since broadcasts from other sessions write through it.
type Sink interface {
	Send(line string) error
	Close() error
}

type SessionState int

const (
	StateConnecting SessionState = iota
	StateNamed
	StateInRoom
	StateClosed
)

func (s SessionState) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateNamed:
		return "named"
	case StateInRoom:
		return "in-room"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

type Session struct {
	ID          string
	Remote      string
	ConnectedAt time.Time

	mu     sync.RWMutex
	name   string
	named  bool
	room   string
	closed bool
	sink   Sink
}

func NewSessionID() string {
	return ulid.Make().String()
}

func NewSession(id, remote string, sink Sink) *Session {
	return &Session{
		ID:          id,
		Remote:      remote,
		ConnectedAt: time.Now(),
		sink:        sink,
	}
}

// SetName completes the naming handshake. The name is taken verbatim,
// empty included, and cannot change afterwards.
func (s *Session) SetName(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.named {
		return ErrNameAlreadySet
	}
	s.name = name
	s.named = true
	return nil
}

func (s *Session) Name() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.name
}

func (s *Session) Room() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.room
}

func (s *Session) InRoom() bool {
	return s.Room() != ""
}

func (s *Session) SetRoom(room string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.room = room
}

func (s *Session) ClearRoom() {
	s.SetRoom("")
}

func (s *Session) State() SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	switch {
	case s.closed:
		return StateClosed
	case !s.named:
		return StateConnecting
	case s.room != "":
		return StateInRoom
	default:
		return StateNamed
	}
}

func (s *Session) Send(line string) error {
	s.mu.RLock()
	closed := s.closed
	s.mu.RUnlock()
	if closed {
		return ErrSinkClosed
	}
	return s.sink.Send(line)
}

// Close marks the session closed and closes its sink. Calling it again is a no-op.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()
	return s.sink.Close()
}

func (s *Session) String() string {
	room := s.Room()
	if room == "" {
		room = "-"
	}
	return s.Name() + "@" + room + "(" + s.ID + ")"
}
