package aspect

import (
	"fmt"
	"strings"

	"github.com/nerrad567/sigos-core/internal/signal/fixture"
)

// Kind is the fixture an Action drives.
type Kind int

// Action kinds.
const (
	KindSemaphore Kind = iota + 1
	KindLight
)

// String returns the grammar keyword for the kind.
func (k Kind) String() string {
	switch k {
	case KindSemaphore:
		return keywordSemaphore
	case KindLight:
		return keywordLight
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// fixtureKind maps an action kind to the head kind it requires.
func (k Kind) fixtureKind() fixture.Kind {
	switch k {
	case KindSemaphore:
		return fixture.KindSemaphore
	case KindLight:
		return fixture.KindLight
	default:
		return fixture.KindNone
	}
}

// Action is one instruction to one fixture. Construction never validates;
// call Validate before driving hardware.
type Action struct {
	Head int
	Kind Kind

	// Semaphore.
	Angle int

	// Light.
	Color     string
	Intensity int
	Flashing  bool
}

// Validate checks the action against the head it addresses.
//
// Returns:
//   - error: nil if the action may be applied, otherwise one of
//     ErrUnknownHead, ErrKindMismatch, ErrAngleOutOfRange, ErrUnknownColor
//     or ErrIntensityOutOfRange
func (a Action) Validate(inv *fixture.Inventory) error {
	h, ok := inv.Head(a.Head)
	if !ok {
		return fmt.Errorf("%w: head %d", ErrUnknownHead, a.Head)
	}
	if h.Kind != a.Kind.fixtureKind() {
		return fmt.Errorf("%w: head %d is %s, action is %s", ErrKindMismatch, a.Head, h.Kind, a.Kind)
	}

	switch a.Kind {
	case KindSemaphore:
		if a.Angle < fixture.MinAngle || a.Angle > fixture.MaxAngle || !h.AngleInRange(a.Angle) {
			return fmt.Errorf("%w: head %d angle %d (travel %d..%d)", ErrAngleOutOfRange, a.Head, a.Angle, h.MinAngle, h.MaxAngle)
		}
	case KindLight:
		if !h.HasColor(a.Color) {
			return fmt.Errorf("%w: head %d color %q", ErrUnknownColor, a.Head, a.Color)
		}
		if a.Intensity < fixture.MinIntensity || a.Intensity > fixture.MaxIntensity {
			return fmt.Errorf("%w: head %d intensity %d", ErrIntensityOutOfRange, a.Head, a.Intensity)
		}
	}

	return nil
}

// String renders the action in aspect grammar.
func (a Action) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s head-id:%d", a.Kind, a.Head)
	switch a.Kind {
	case KindSemaphore:
		fmt.Fprintf(&b, " angle:%d", a.Angle)
	case KindLight:
		fmt.Fprintf(&b, " color:%s intensity:%d", a.Color, a.Intensity)
		if a.Flashing {
			b.WriteString(" flashing")
		}
	}
	return b.String()
}
