package rule

import "errors"

// Domain errors for the rule package.
var (
	// ErrInvalidLibrary is returned when a rule library cannot be decoded.
	ErrInvalidLibrary = errors.New("rule: invalid library")

	// ErrNoDefaultRule is returned when a library names no default rule.
	ErrNoDefaultRule = errors.New("rule: no default rule")

	// ErrMissingID is returned for a library entry without a rule id.
	ErrMissingID = errors.New("rule: missing rule id")

	// ErrDuplicateID is recorded when two library entries share a rule id.
	ErrDuplicateID = errors.New("rule: duplicate rule id")

	// ErrNoAspect is recorded when a library entry offers no aspect alternative.
	ErrNoAspect = errors.New("rule: no aspect alternatives")

	// ErrNotFound is returned when a rule id or name is not in the catalog.
	ErrNotFound = errors.New("rule: not found")
)
