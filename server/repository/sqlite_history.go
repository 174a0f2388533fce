package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/ponyo877/salachat/server/usecase"
)

const schema = `
CREATE TABLE IF NOT EXISTS rooms (
	name       TEXT PRIMARY KEY,
	created_at DATETIME NOT NULL
);
CREATE TABLE IF NOT EXISTS messages (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	room       TEXT NOT NULL REFERENCES rooms(name),
	line       TEXT NOT NULL,
	created_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_messages_room ON messages (room, id);
`

// SQLiteHistory stores room logs as rows ordered by insertion id. A single
// connection serializes every statement, which keeps appends to a room from
// interleaving.
type SQLiteHistory struct {
	db *sql.DB
}

func OpenSQLiteHistory(path string) (*SQLiteHistory, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open db %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	h, err := NewSQLiteHistory(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return h, nil
}

func NewSQLiteHistory(db *sql.DB) (*SQLiteHistory, error) {
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to migrate history schema: %w", err)
	}
	return &SQLiteHistory{db: db}, nil
}

func (r *SQLiteHistory) Ensure(room string) error {
	query := "INSERT OR IGNORE INTO rooms (name, created_at) VALUES (?, ?)"
	if _, err := r.db.Exec(query, room, time.Now()); err != nil {
		return fmt.Errorf("failed to insert room '%s': %w", room, err)
	}
	return nil
}

func (r *SQLiteHistory) Append(room, line string) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()
	if _, err := tx.Exec("INSERT OR IGNORE INTO rooms (name, created_at) VALUES (?, ?)", room, now); err != nil {
		return fmt.Errorf("failed to insert room '%s': %w", room, err)
	}
	if _, err := tx.Exec("INSERT INTO messages (room, line, created_at) VALUES (?, ?, ?)", room, line, now); err != nil {
		return fmt.Errorf("failed to insert message for room '%s': %w", room, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (r *SQLiteHistory) Replay(room string) ([]string, error) {
	return r.queryLines("SELECT line FROM messages WHERE room = ? ORDER BY id", room)
}

func (r *SQLiteHistory) Search(room, term string) ([]string, error) {
	var exists int
	err := r.db.QueryRow("SELECT 1 FROM rooms WHERE name = ?", room).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, usecase.ErrNoHistory
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query room '%s': %w", room, err)
	}
	// instr is case-sensitive, unlike LIKE.
	return r.queryLines("SELECT line FROM messages WHERE room = ? AND instr(line, ?) > 0 ORDER BY id", room, term)
}

func (r *SQLiteHistory) Rooms() ([]string, error) {
	rows, err := r.db.Query("SELECT name FROM rooms ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to query rooms: %w", err)
	}
	defer rows.Close()

	rooms := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan room name: %w", err)
		}
		rooms = append(rooms, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over rooms: %w", err)
	}
	return rooms, nil
}

func (r *SQLiteHistory) Close() error {
	return r.db.Close()
}

func (r *SQLiteHistory) queryLines(query string, args ...any) ([]string, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	lines := []string{}
	for rows.Next() {
		var line string
		if err := rows.Scan(&line); err != nil {
			return nil, fmt.Errorf("failed to scan message line: %w", err)
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over messages: %w", err)
	}
	return lines, nil
}
