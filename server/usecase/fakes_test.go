package usecase

import (
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ponyo877/salachat/server/domain"
)

var errDiskFull = errors.New("disk full")

type memHistory struct {
	mu        sync.Mutex
	logs      map[string][]string
	appendErr error
	replayErr error
}

func newMemHistory() *memHistory {
	return &memHistory{logs: make(map[string][]string)}
}

func (h *memHistory) Ensure(room string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.logs[room]; !ok {
		h.logs[room] = []string{}
	}
	return nil
}

func (h *memHistory) Append(room, line string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.appendErr != nil {
		return h.appendErr
	}
	h.logs[room] = append(h.logs[room], line)
	return nil
}

func (h *memHistory) Replay(room string) ([]string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.replayErr != nil {
		return nil, h.replayErr
	}
	return append([]string{}, h.logs[room]...), nil
}

func (h *memHistory) Search(room, term string) ([]string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	lines, ok := h.logs[room]
	if !ok {
		return nil, ErrNoHistory
	}
	matches := []string{}
	for _, line := range lines {
		if strings.Contains(line, term) {
			matches = append(matches, line)
		}
	}
	return matches, nil
}

func (h *memHistory) Rooms() ([]string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	rooms := make([]string, 0, len(h.logs))
	for room := range h.logs {
		rooms = append(rooms, room)
	}
	sort.Strings(rooms)
	return rooms, nil
}

func (h *memHistory) Lines(room string) []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string{}, h.logs[room]...)
}

type recordingSink struct {
	mu     sync.Mutex
	lines  []string
	closed bool
}

func (s *recordingSink) Send(line string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = append(s.lines, line)
	return nil
}

func (s *recordingSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Take returns the lines received so far and forgets them.
func (s *recordingSink) Take() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	lines := s.lines
	s.lines = nil
	return lines
}

type fixture struct {
	uc        *SessionUsecase
	registry  *domain.RoomRegistry
	directory *domain.UserDirectory
	history   *memHistory
	seq       int
}

var fixedNow = time.Date(2024, time.March, 5, 9, 7, 0, 0, time.UTC)

const stamp = "[05-03-2024 09:07] "

func newFixture(opts ...Option) *fixture {
	registry := domain.NewRoomRegistry()
	directory := domain.NewUserDirectory(registry)
	history := newMemHistory()
	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	return &fixture{
		uc:        NewSessionUsecase(registry, directory, history, opts...),
		registry:  registry,
		directory: directory,
		history:   history,
	}
}

// connect runs the handshake for a new session and discards its replies.
func (f *fixture) connect(name string) (*domain.Session, *recordingSink) {
	f.seq++
	sink := &recordingSink{}
	session := domain.NewSession(string(rune('a'+f.seq)), "test", sink)
	f.uc.Welcome(session)
	if err := f.uc.Name(session, name); err != nil {
		panic(err)
	}
	sink.Take()
	return session, sink
}

func (f *fixture) send(session *domain.Session, line string) bool {
	return f.uc.HandleLine(session, line)
}
