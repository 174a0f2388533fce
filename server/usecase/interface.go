package usecase

import "errors"

// ErrNoHistory is returned by Search when the room has never had a log.
var ErrNoHistory = errors.New("no history for room")

type HistoryRepository interface {
	// Ensure creates an empty log for the room if none exists.
	Ensure(room string) error
	// Append adds one line; it is durable once Append returns.
	Append(room, line string) error
	// Replay returns the log in insertion order, empty when absent.
	Replay(room string) ([]string, error)
	// Search returns lines containing term, case-sensitive, in storage order.
	Search(room, term string) ([]string, error)
	// Rooms lists every room that has a log.
	Rooms() ([]string, error)
}
