package fixture

import (
	"fmt"
	"slices"
	"strings"

	"github.com/nerrad567/sigos-core/internal/infrastructure/config"
)

// Inventory is the read-only description of one physical signal.
//
// It is built once at startup and never mutated, so it is safe to share
// between goroutines without locking.
type Inventory struct {
	heads       []Head
	byID        map[int]int
	numberPlate bool
	intensity   int
}

// New validates heads and returns an Inventory.
//
// Parameters:
//   - heads: Head descriptions, in mast order
//   - numberPlate: Whether a number-plate is physically present
//   - defaultIntensity: Light intensity used when an aspect omits one
//
// Returns:
//   - *Inventory: The validated inventory
//   - error: First validation failure, wrapping one of the package sentinels
func New(heads []Head, numberPlate bool, defaultIntensity int) (*Inventory, error) {
	if len(heads) == 0 {
		return nil, ErrNoHeads
	}
	if defaultIntensity < MinIntensity || defaultIntensity > MaxIntensity {
		return nil, fmt.Errorf("%w: %d", ErrInvalidIntensity, defaultIntensity)
	}

	inv := &Inventory{
		heads:       make([]Head, 0, len(heads)),
		byID:        make(map[int]int, len(heads)),
		numberPlate: numberPlate,
		intensity:   defaultIntensity,
	}

	for _, h := range heads {
		if h.ID < 1 {
			return nil, fmt.Errorf("%w: %d", ErrInvalidHeadID, h.ID)
		}
		if _, dup := inv.byID[h.ID]; dup {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateHead, h.ID)
		}

		h, err := normaliseHead(h)
		if err != nil {
			return nil, err
		}

		inv.byID[h.ID] = len(inv.heads)
		inv.heads = append(inv.heads, h)
	}

	return inv, nil
}

func normaliseHead(h Head) (Head, error) {
	switch h.Kind {
	case KindLight:
		if len(h.Colors) == 0 {
			return h, fmt.Errorf("%w: head %d", ErrNoColors, h.ID)
		}
		colors := make([]string, 0, len(h.Colors))
		for _, c := range h.Colors {
			c = strings.ToLower(strings.TrimSpace(c))
			if c != "" && !slices.Contains(colors, c) {
				colors = append(colors, c)
			}
		}
		h.Colors = colors
		h.MinAngle, h.MaxAngle = 0, 0

	case KindSemaphore:
		// An unset range means full travel.
		if h.MinAngle == 0 && h.MaxAngle == 0 {
			h.MaxAngle = MaxAngle
		}
		if h.MinAngle < MinAngle || h.MaxAngle > MaxAngle || h.MinAngle > h.MaxAngle {
			return h, fmt.Errorf("%w: head %d [%d,%d]", ErrInvalidAngleRange, h.ID, h.MinAngle, h.MaxAngle)
		}
		h.Colors = nil

	case KindNone:
		h.Colors = nil
		h.MinAngle, h.MaxAngle = 0, 0

	default:
		return h, fmt.Errorf("%w: head %d", ErrInvalidKind, h.ID)
	}

	return h, nil
}

// FromConfig builds an Inventory from the signal section of config.yaml.
func FromConfig(cfg config.SignalConfig) (*Inventory, error) {
	heads := make([]Head, 0, len(cfg.Heads))
	for _, hc := range cfg.Heads {
		kind, err := ParseKind(hc.Type)
		if err != nil {
			return nil, fmt.Errorf("head %d: %w", hc.ID, err)
		}
		heads = append(heads, Head{
			ID:       hc.ID,
			Kind:     kind,
			Colors:   hc.Colors,
			MinAngle: hc.MinAngle,
			MaxAngle: hc.MaxAngle,
		})
	}
	return New(heads, cfg.NumberPlate, cfg.LightIntensity)
}

// Head returns the head with the given id.
func (inv *Inventory) Head(id int) (Head, bool) {
	i, ok := inv.byID[id]
	if !ok {
		return Head{}, false
	}
	return inv.heads[i], true
}

// Heads returns a copy of every head in mast order.
func (inv *Inventory) Heads() []Head {
	return slices.Clone(inv.heads)
}

// HeadIDs returns every declared head id in mast order.
func (inv *Inventory) HeadIDs() []int {
	ids := make([]int, len(inv.heads))
	for i, h := range inv.heads {
		ids[i] = h.ID
	}
	return ids
}

// RequiredHeads returns the ids an aspect must address to be displayable:
// every head that carries a fixture. Empty mounting positions (KindNone)
// cannot be addressed and are not required.
func (inv *Inventory) RequiredHeads() []int {
	ids := make([]int, 0, len(inv.heads))
	for _, h := range inv.heads {
		if h.Kind != KindNone {
			ids = append(ids, h.ID)
		}
	}
	return ids
}

// LightHeads returns the ids of every light head.
func (inv *Inventory) LightHeads() []int {
	var ids []int
	for _, h := range inv.heads {
		if h.Kind == KindLight {
			ids = append(ids, h.ID)
		}
	}
	return ids
}

// HasColor reports whether color is legal on head id.
func (inv *Inventory) HasColor(id int, color string) bool {
	h, ok := inv.Head(id)
	return ok && h.Kind == KindLight && h.HasColor(color)
}

// NumberPlate reports whether a number-plate is physically present.
func (inv *Inventory) NumberPlate() bool {
	return inv.numberPlate
}

// DefaultIntensity is the light intensity used when an aspect omits one.
func (inv *Inventory) DefaultIntensity() int {
	return inv.intensity
}

// String renders the inventory for diagnostics.
func (inv *Inventory) String() string {
	var b strings.Builder
	for _, h := range inv.heads {
		fmt.Fprintf(&b, "head %d: %s", h.ID, h.Kind)
		switch h.Kind {
		case KindLight:
			fmt.Fprintf(&b, " colors=%s", strings.Join(h.Colors, ","))
		case KindSemaphore:
			fmt.Fprintf(&b, " angle=%d..%d", h.MinAngle, h.MaxAngle)
		}
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "number-plate: %t\n", inv.numberPlate)
	return b.String()
}
