package repository

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/ponyo877/salachat/server/usecase"
	"github.com/rs/zerolog/log"
)

var ErrHistoryClosed = errors.New("history closed")

const (
	logExt        = ".txt"
	maxLineLength = 1 << 20
)

// FileHistory keeps one append-only text file per room, named <room>.txt.
// Operations on one room are serialized by that room's lock; different
// rooms never contend.
type FileHistory struct {
	dir string

	mu     sync.Mutex
	logs   map[string]*roomLog
	closed bool
}

type roomLog struct {
	mu     sync.Mutex
	path   string
	file   *os.File
	closed bool
}

func NewFileHistory(dir string) (*FileHistory, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create history directory %s: %w", dir, err)
	}
	return &FileHistory{
		dir:  dir,
		logs: make(map[string]*roomLog),
	}, nil
}

func (h *FileHistory) logFor(room string) (*roomLog, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil, ErrHistoryClosed
	}
	rl, exists := h.logs[room]
	if !exists {
		rl = &roomLog{path: filepath.Join(h.dir, room+logExt)}
		h.logs[room] = rl
	}
	return rl, nil
}

// open must be called with rl.mu held. A closed log is never reopened.
func (rl *roomLog) open() error {
	if rl.closed {
		return ErrHistoryClosed
	}
	if rl.file != nil {
		return nil
	}
	f, err := os.OpenFile(rl.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open history log %s: %w", rl.path, err)
	}
	rl.file = f
	return nil
}

func (h *FileHistory) Ensure(room string) error {
	rl, err := h.logFor(room)
	if err != nil {
		return err
	}
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return rl.open()
}

func (h *FileHistory) Append(room, line string) error {
	rl, err := h.logFor(room)
	if err != nil {
		return err
	}
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if err := rl.open(); err != nil {
		return err
	}
	if _, err := rl.file.WriteString(line + "\n"); err != nil {
		return fmt.Errorf("failed to append to %s: %w", rl.path, err)
	}
	if err := rl.file.Sync(); err != nil {
		return fmt.Errorf("failed to sync %s: %w", rl.path, err)
	}
	return nil
}

func (h *FileHistory) Replay(room string) ([]string, error) {
	lines, err := h.scan(room, func(string) bool { return true })
	if errors.Is(err, usecase.ErrNoHistory) {
		return []string{}, nil
	}
	return lines, err
}

func (h *FileHistory) Search(room, term string) ([]string, error) {
	return h.scan(room, func(line string) bool {
		return strings.Contains(line, term)
	})
}

func (h *FileHistory) scan(room string, keep func(string) bool) ([]string, error) {
	rl, err := h.logFor(room)
	if err != nil {
		return nil, err
	}
	rl.mu.Lock()
	defer rl.mu.Unlock()
	if rl.closed {
		return nil, ErrHistoryClosed
	}

	f, err := os.Open(rl.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, usecase.ErrNoHistory
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open history log %s: %w", rl.path, err)
	}
	defer f.Close()

	lines := []string{}
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineLength)
	for scanner.Scan() {
		if line := scanner.Text(); keep(line) {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read history log %s: %w", rl.path, err)
	}
	return lines, nil
}

func (h *FileHistory) Rooms() ([]string, error) {
	entries, err := os.ReadDir(h.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list history directory %s: %w", h.dir, err)
	}
	rooms := []string{}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, logExt) {
			continue
		}
		rooms = append(rooms, strings.TrimSuffix(name, logExt))
	}
	sort.Strings(rooms)
	return rooms, nil
}

// Close closes every open log. Later calls on h return ErrHistoryClosed.
func (h *FileHistory) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	var errs []error
	for room, rl := range h.logs {
		rl.mu.Lock()
		if rl.file != nil {
			if err := rl.file.Close(); err != nil {
				errs = append(errs, err)
				log.Error().Err(err).Str("module", "history.file").Str("room", room).Msg("failed to close history log")
			}
			rl.file = nil
		}
		rl.closed = true
		rl.mu.Unlock()
	}
	return errors.Join(errs...)
}
