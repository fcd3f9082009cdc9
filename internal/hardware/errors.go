package hardware

import "errors"

var (
	// ErrRejected is returned when a head refuses a command.
	ErrRejected = errors.New("hardware: head rejected command")

	// ErrNoPublisher is returned by NewMQTTDriver without a publisher.
	ErrNoPublisher = errors.New("hardware: mqtt publisher is required")
)
