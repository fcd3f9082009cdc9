package aspect

import "errors"

// Grammar errors are returned by Parse. Inventory errors are returned by
// Compile and Action.Validate. Compatibility errors are returned by
// CompatibleWith and only mean the aspect is meant for another layout.
var (
	// ErrEmptyAspect is returned when the text holds no clauses.
	ErrEmptyAspect = errors.New("aspect: empty")

	// ErrUnknownFixture is returned when a clause names no fixture keyword.
	ErrUnknownFixture = errors.New("aspect: clause has no fixture keyword")

	// ErrMissingParameter is returned when a required keyword is absent.
	ErrMissingParameter = errors.New("aspect: missing parameter")

	// ErrBadValue is returned when a keyword value cannot be parsed.
	ErrBadValue = errors.New("aspect: bad parameter value")

	// ErrUnknownHead is returned when an action addresses a head the inventory lacks.
	ErrUnknownHead = errors.New("aspect: head not declared")

	// ErrKindMismatch is returned when an action's kind differs from the head's fixture.
	ErrKindMismatch = errors.New("aspect: fixture kind mismatch")

	// ErrUnknownColor is returned when a light color is not legal on the head.
	ErrUnknownColor = errors.New("aspect: color not declared")

	// ErrAngleOutOfRange is returned when a semaphore angle is outside the head's travel.
	ErrAngleOutOfRange = errors.New("aspect: angle out of range")

	// ErrIntensityOutOfRange is returned when a light intensity is outside [0,100].
	ErrIntensityOutOfRange = errors.New("aspect: intensity out of range")

	// ErrDuplicateHead is returned when one aspect addresses a head twice.
	ErrDuplicateHead = errors.New("aspect: head addressed twice")

	// ErrHeadCoverage is returned when the addressed heads differ from the inventory's.
	ErrHeadCoverage = errors.New("aspect: head coverage mismatch")

	// ErrPlateMismatch is returned when the number-plate requirement contradicts the inventory.
	ErrPlateMismatch = errors.New("aspect: number-plate mismatch")
)
