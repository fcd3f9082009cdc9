package peer

import "errors"

var (
	// ErrInvalidCommand is returned for a command with an unknown action,
	// no rule or no source.
	ErrInvalidCommand = errors.New("peer: invalid command")

	// ErrNotStarted is returned by Send before Start.
	ErrNotStarted = errors.New("peer: link not started")
)
