package domain

import "sync"

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

func (s *recordingSink) Lines() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.lines...)
}

func newTestSession(id, name string) *Session {
	s := NewSession(id, "test", &recordingSink{})
	if name != "" {
		s.SetName(name)
	}
	return s
}
