package fixture

import (
	"fmt"
	"strings"
)

// Angle and intensity bounds shared by every fixture.
const (
	MinAngle     = 0
	MaxAngle     = 90
	MinIntensity = 0
	MaxIntensity = 100
)

// Kind is the device mounted on a head.
type Kind int

// Fixture kinds.
const (
	KindNone Kind = iota
	KindSemaphore
	KindLight
)

// String returns the configuration name of the kind.
func (k Kind) String() string {
	switch k {
	case KindSemaphore:
		return "semaphore"
	case KindLight:
		return "light"
	case KindNone:
		return "none"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ParseKind converts a configuration name to a Kind.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "semaphore":
		return KindSemaphore, nil
	case "light":
		return KindLight, nil
	case "none", "":
		return KindNone, nil
	default:
		return KindNone, fmt.Errorf("%w: %q", ErrInvalidKind, s)
	}
}

// Head is one mounting position on the mast, numbered from the top.
type Head struct {
	ID   int
	Kind Kind

	// Colors is the legal color set of a light head, lower-cased.
	Colors []string

	// MinAngle and MaxAngle bound a semaphore head's travel in degrees.
	MinAngle int
	MaxAngle int
}

// HasColor reports whether color is legal on this head. The comparison is
// case-insensitive.
func (h Head) HasColor(color string) bool {
	color = strings.ToLower(color)
	for _, c := range h.Colors {
		if c == color {
			return true
		}
	}
	return false
}

// AngleInRange reports whether angle lies within the head's travel.
func (h Head) AngleInRange(angle int) bool {
	return angle >= h.MinAngle && angle <= h.MaxAngle
}
