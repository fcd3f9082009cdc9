package eventlog

import "errors"

// Domain errors for the event log.
var (
	// ErrInvalidSize is returned when the ring is created with fewer than one slot.
	ErrInvalidSize = errors.New("eventlog: size must be at least 1")

	// ErrOutOfRange is returned by Log.Entry for an index past the oldest entry.
	ErrOutOfRange = errors.New("eventlog: index out of range")
)
