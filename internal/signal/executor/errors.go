package executor

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidAction is returned when an action fails validation.
	ErrInvalidAction = errors.New("executor: invalid action")

	// ErrHardware is returned when the driver rejects an action.
	ErrHardware = errors.New("executor: hardware rejected action")

	// ErrNoAspect is returned when a rule carries no aspect.
	ErrNoAspect = errors.New("executor: rule has no aspect")
)

// ExecutionError reports where an aspect stopped. Actions before
// ActionIndex were applied and are not undone.
type ExecutionError struct {
	Rule        string
	ActionIndex int
	Applied     int
	Err         error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("rule %s action %d (%d applied): %v", e.Rule, e.ActionIndex, e.Applied, e.Err)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}
