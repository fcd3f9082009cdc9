package executor

import (
	"context"
	"fmt"
	"time"

	"github.com/nerrad567/sigos-core/internal/signal/aspect"
	"github.com/nerrad567/sigos-core/internal/signal/fixture"
	"github.com/nerrad567/sigos-core/internal/signal/rule"
)

// source is the log source used for executor records.
const source = "executor"

// Driver is the hardware collaborator. Implementations own any timeout or
// retry policy; the executor calls each method once.
type Driver interface {
	ApplySemaphore(ctx context.Context, head, angle int) error
	ApplyLight(ctx context.Context, head int, color string, intensity int, flashing bool) error
	BlankAllLights(ctx context.Context) error
}

// Logger defines the logging interface used by the Executor.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Sink receives operator-visible log records.
type Sink interface {
	Record(source, message string)
}

// Executor applies a rule's aspect to hardware.
//
// Execution stops at the first action that fails validation or that the
// driver rejects. Actions already applied stay applied. With preflight
// enabled the whole aspect is validated before the first write, so an
// invalid aspect leaves the hardware untouched.
//
// Executor holds no mutable state and is safe for concurrent use, but the
// arbiter serialises calls so that aspects never interleave on the mast.
type Executor struct {
	inv       *fixture.Inventory
	driver    Driver
	preflight bool
	sink      Sink
	logger    Logger
}

// New creates an Executor for inv driving driver.
//
// Parameters:
//   - inv: Inventory used to validate actions
//   - driver: Hardware collaborator
//   - preflight: Validate the whole aspect before applying any action
func New(inv *fixture.Inventory, driver Driver, preflight bool) *Executor {
	return &Executor{
		inv:       inv,
		driver:    driver,
		preflight: preflight,
		logger:    noopLogger{},
	}
}

// SetLogger sets the logger for the executor.
func (e *Executor) SetLogger(logger Logger) {
	e.logger = logger
}

// SetSink sets the sink that receives failure records.
func (e *Executor) SetSink(sink Sink) {
	e.sink = sink
}

// Preflight reports whether whole-aspect validation is enabled.
func (e *Executor) Preflight() bool {
	return e.preflight
}

// Blank turns every light output off.
func (e *Executor) Blank(ctx context.Context) error {
	if err := e.driver.BlankAllLights(ctx); err != nil {
		e.record("blank all lights failed: " + err.Error())
		return fmt.Errorf("%w: blank all lights: %w", ErrHardware, err)
	}
	return nil
}

// Execute applies every action of def's aspect in order.
//
// Returns:
//   - error: nil on success, otherwise an *ExecutionError wrapping
//     ErrInvalidAction or ErrHardware
func (e *Executor) Execute(ctx context.Context, def *rule.Definition) error {
	if def == nil || def.Aspect == nil {
		return ErrNoAspect
	}

	start := time.Now()
	actions := def.Aspect.Actions

	if e.preflight {
		for i, act := range actions {
			if err := act.Validate(e.inv); err != nil {
				return e.fail(def, i, 0, fmt.Errorf("%w: %w", ErrInvalidAction, err))
			}
		}
	}

	for i, act := range actions {
		if !e.preflight {
			if err := act.Validate(e.inv); err != nil {
				return e.fail(def, i, i, fmt.Errorf("%w: %w", ErrInvalidAction, err))
			}
		}

		if err := e.apply(ctx, act); err != nil {
			return e.fail(def, i, i, fmt.Errorf("%w: %w", ErrHardware, err))
		}
	}

	e.logger.Debug("aspect applied",
		"rule", def.ID,
		"actions", len(actions),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

func (e *Executor) apply(ctx context.Context, act aspect.Action) error {
	switch act.Kind {
	case aspect.KindSemaphore:
		return e.driver.ApplySemaphore(ctx, act.Head, act.Angle)
	case aspect.KindLight:
		return e.driver.ApplyLight(ctx, act.Head, act.Color, act.Intensity, act.Flashing)
	default:
		return fmt.Errorf("unsupported action kind %s", act.Kind)
	}
}

func (e *Executor) fail(def *rule.Definition, index, applied int, err error) error {
	execErr := &ExecutionError{Rule: def.ID, ActionIndex: index, Applied: applied, Err: err}
	e.logger.Error("aspect execution failed",
		"rule", def.ID,
		"action", index,
		"applied", applied,
		"error", err,
	)
	e.record(fmt.Sprintf("execute failed %s: %v", def.ID, err))
	return execErr
}

func (e *Executor) record(msg string) {
	if e.sink != nil {
		e.sink.Record(source, msg)
	}
}
