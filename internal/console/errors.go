package console

import "errors"

var (
	// ErrServerClosed is returned by Serve after Close.
	ErrServerClosed = errors.New("console: server closed")

	// ErrAlreadyStarted is returned when Start is called twice.
	ErrAlreadyStarted = errors.New("console: server already started")
)
