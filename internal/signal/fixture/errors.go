package fixture

import "errors"

// Domain errors for the fixture package.
var (
	// ErrNoHeads is returned when an inventory declares no heads.
	ErrNoHeads = errors.New("fixture: no heads declared")

	// ErrInvalidHeadID is returned for a zero or negative head id.
	ErrInvalidHeadID = errors.New("fixture: invalid head id")

	// ErrDuplicateHead is returned when two heads share an id.
	ErrDuplicateHead = errors.New("fixture: duplicate head id")

	// ErrInvalidKind is returned for an unknown fixture kind.
	ErrInvalidKind = errors.New("fixture: invalid kind")

	// ErrNoColors is returned when a light head has no legal colors.
	ErrNoColors = errors.New("fixture: light head has no colors")

	// ErrInvalidAngleRange is returned when a semaphore range is outside [0,90] or inverted.
	ErrInvalidAngleRange = errors.New("fixture: invalid angle range")

	// ErrInvalidIntensity is returned when the default light intensity is outside [0,100].
	ErrInvalidIntensity = errors.New("fixture: invalid default intensity")
)
