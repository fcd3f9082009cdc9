package executor

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"testing"

	"github.com/nerrad567/sigos-core/internal/signal/aspect"
	"github.com/nerrad567/sigos-core/internal/signal/fixture"
	"github.com/nerrad567/sigos-core/internal/signal/rule"
)

// mockDriver records calls and rejects heads listed in failHeads.
type mockDriver struct {
	calls     []string
	failHeads map[int]bool
	blankErr  error
}

func (m *mockDriver) ApplySemaphore(_ context.Context, head, angle int) error {
	if m.failHeads[head] {
		return fmt.Errorf("servo %d stalled", head)
	}
	m.calls = append(m.calls, fmt.Sprintf("semaphore %d %d", head, angle))
	return nil
}

func (m *mockDriver) ApplyLight(_ context.Context, head int, color string, intensity int, flashing bool) error {
	if m.failHeads[head] {
		return fmt.Errorf("led %d not responding", head)
	}
	m.calls = append(m.calls, fmt.Sprintf("light %d %s %d %t", head, color, intensity, flashing))
	return nil
}

func (m *mockDriver) BlankAllLights(context.Context) error {
	if m.blankErr != nil {
		return m.blankErr
	}
	m.calls = append(m.calls, "blank")
	return nil
}

type recordingSink struct {
	records []string
}

func (s *recordingSink) Record(source, message string) {
	s.records = append(s.records, source+": "+message)
}

func testInventory(t *testing.T) *fixture.Inventory {
	t.Helper()
	inv, err := fixture.New([]fixture.Head{
		{ID: 1, Kind: fixture.KindLight, Colors: []string{"red", "green"}},
		{ID: 2, Kind: fixture.KindSemaphore, MaxAngle: 45},
		{ID: 3, Kind: fixture.KindLight, Colors: []string{"red", "green"}},
	}, false, 100)
	if err != nil {
		t.Fatalf("fixture.New() error = %v", err)
	}
	return inv
}

func definition(actions ...aspect.Action) *rule.Definition {
	return &rule.Definition{ID: "281", Name: "Clear", Priority: 5, Aspect: &aspect.Aspect{Actions: actions}}
}

func TestExecute_AppliesInOrder(t *testing.T) {
	drv := &mockDriver{}
	e := New(testInventory(t), drv, true)

	def := definition(
		aspect.Action{Head: 1, Kind: aspect.KindLight, Color: "green", Intensity: 80, Flashing: true},
		aspect.Action{Head: 2, Kind: aspect.KindSemaphore, Angle: 45},
		aspect.Action{Head: 3, Kind: aspect.KindLight, Color: "red", Intensity: 100},
	)

	if err := e.Execute(context.Background(), def); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	want := []string{"light 1 green 80 true", "semaphore 2 45", "light 3 red 100 false"}
	if !slices.Equal(drv.calls, want) {
		t.Errorf("calls = %v, want %v", drv.calls, want)
	}
}

func TestExecute_InvalidActionWithPreflightTouchesNothing(t *testing.T) {
	drv := &mockDriver{}
	sink := &recordingSink{}
	e := New(testInventory(t), drv, true)
	e.SetSink(sink)

	def := definition(
		aspect.Action{Head: 1, Kind: aspect.KindLight, Color: "green", Intensity: 100},
		aspect.Action{Head: 2, Kind: aspect.KindSemaphore, Angle: 80},
	)

	err := e.Execute(context.Background(), def)

	var execErr *ExecutionError
	if !errors.As(err, &execErr) {
		t.Fatalf("Execute() error = %v, want *ExecutionError", err)
	}
	if execErr.ActionIndex != 1 || execErr.Applied != 0 {
		t.Errorf("ExecutionError = %+v, want index 1 with nothing applied", execErr)
	}
	if !errors.Is(err, ErrInvalidAction) || !errors.Is(err, aspect.ErrAngleOutOfRange) {
		t.Errorf("error = %v, want ErrInvalidAction wrapping ErrAngleOutOfRange", err)
	}
	if len(drv.calls) != 0 {
		t.Errorf("driver calls = %v, want none", drv.calls)
	}
	if len(sink.records) != 1 {
		t.Errorf("sink records = %v, want one failure", sink.records)
	}
}

func TestExecute_InvalidActionWithoutPreflightStopsMidAspect(t *testing.T) {
	drv := &mockDriver{}
	e := New(testInventory(t), drv, false)

	def := definition(
		aspect.Action{Head: 1, Kind: aspect.KindLight, Color: "green", Intensity: 100},
		aspect.Action{Head: 2, Kind: aspect.KindSemaphore, Angle: 80},
		aspect.Action{Head: 3, Kind: aspect.KindLight, Color: "red", Intensity: 100},
	)

	err := e.Execute(context.Background(), def)

	var execErr *ExecutionError
	if !errors.As(err, &execErr) {
		t.Fatalf("Execute() error = %v, want *ExecutionError", err)
	}
	if execErr.Applied != 1 {
		t.Errorf("Applied = %d, want 1", execErr.Applied)
	}
	if !slices.Equal(drv.calls, []string{"light 1 green 100 false"}) {
		t.Errorf("calls = %v, want only the first light", drv.calls)
	}
}

func TestExecute_HardwareRejectionNoRollback(t *testing.T) {
	drv := &mockDriver{failHeads: map[int]bool{2: true}}
	e := New(testInventory(t), drv, true)

	def := definition(
		aspect.Action{Head: 1, Kind: aspect.KindLight, Color: "green", Intensity: 100},
		aspect.Action{Head: 2, Kind: aspect.KindSemaphore, Angle: 10},
		aspect.Action{Head: 3, Kind: aspect.KindLight, Color: "red", Intensity: 100},
	)

	err := e.Execute(context.Background(), def)
	if !errors.Is(err, ErrHardware) {
		t.Fatalf("Execute() error = %v, want ErrHardware", err)
	}

	var execErr *ExecutionError
	if errors.As(err, &execErr) && (execErr.ActionIndex != 1 || execErr.Applied != 1) {
		t.Errorf("ExecutionError = %+v, want index 1 with one applied", execErr)
	}
	if !slices.Equal(drv.calls, []string{"light 1 green 100 false"}) {
		t.Errorf("calls = %v, want first light left applied", drv.calls)
	}
}

func TestExecute_NoAspect(t *testing.T) {
	e := New(testInventory(t), &mockDriver{}, true)
	if err := e.Execute(context.Background(), &rule.Definition{ID: "1"}); !errors.Is(err, ErrNoAspect) {
		t.Errorf("Execute() error = %v, want ErrNoAspect", err)
	}
}

func TestBlank(t *testing.T) {
	drv := &mockDriver{}
	e := New(testInventory(t), drv, true)

	if err := e.Blank(context.Background()); err != nil {
		t.Fatalf("Blank() error = %v", err)
	}
	if !slices.Equal(drv.calls, []string{"blank"}) {
		t.Errorf("calls = %v, want [blank]", drv.calls)
	}

	drv.blankErr = errors.New("bus down")
	if err := e.Blank(context.Background()); !errors.Is(err, ErrHardware) {
		t.Errorf("Blank() error = %v, want ErrHardware", err)
	}
}
