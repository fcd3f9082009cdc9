package aspect

import (
	"fmt"
	"slices"
	"strings"

	"github.com/nerrad567/sigos-core/internal/signal/fixture"
)

// PlateRequirement is an aspect's number-plate criterion.
type PlateRequirement int

// Number-plate requirements.
const (
	PlateUnspecified PlateRequirement = iota
	PlatePresent
	PlateAbsent
)

// String returns a short name for the requirement.
func (p PlateRequirement) String() string {
	switch p {
	case PlatePresent:
		return "present"
	case PlateAbsent:
		return "absent"
	default:
		return "unspecified"
	}
}

// Aspect is the ordered set of Actions that displays one rule on one
// head layout, plus the criteria used to match it to an Inventory.
// An Aspect is not modified after Parse returns it.
type Aspect struct {
	// Text is the alternative the aspect was compiled from.
	Text    string
	Actions []Action
	Plate   PlateRequirement
}

// Parse compiles aspect text into Actions without consulting an inventory.
// Light actions that omit intensity: get defaultIntensity.
//
// Grammar: clauses separated by ';', each a whitespace separated list of
// keyword or keyword:value tokens, case-insensitive. The fixture keyword is
// one of semaphore, light or number-plate.
func Parse(text string, defaultIntensity int) (*Aspect, error) {
	clauses := splitClauses(text)
	if len(clauses) == 0 {
		return nil, ErrEmptyAspect
	}

	a := &Aspect{Text: strings.TrimSpace(text)}
	for _, s := range clauses {
		c, err := parseClause(s)
		if err != nil {
			return nil, err
		}

		switch c := c.(type) {
		case semaphoreClause:
			a.Actions = append(a.Actions, Action{Head: c.head, Kind: KindSemaphore, Angle: c.angle})
		case lightClause:
			intensity := defaultIntensity
			if c.hasIntensity {
				intensity = c.intensity
			}
			a.Actions = append(a.Actions, Action{
				Head:      c.head,
				Kind:      KindLight,
				Color:     c.color,
				Intensity: intensity,
				Flashing:  c.flashing,
			})
		case numberPlateClause:
			a.Plate = c.plate
		}
	}

	return a, nil
}

// Compile parses text and resolves every action against inv. An action
// that names an undeclared head, a head carrying a different fixture, or a
// color the head cannot show makes the whole alternative malformed.
// Angle and intensity ranges are left to Validate.
func Compile(text string, inv *fixture.Inventory) (*Aspect, error) {
	a, err := Parse(text, inv.DefaultIntensity())
	if err != nil {
		return nil, err
	}

	for _, act := range a.Actions {
		h, ok := inv.Head(act.Head)
		if !ok {
			return nil, fmt.Errorf("%w: head %d", ErrUnknownHead, act.Head)
		}
		if h.Kind != act.Kind.fixtureKind() {
			return nil, fmt.Errorf("%w: head %d is %s, clause is %s", ErrKindMismatch, act.Head, h.Kind, act.Kind)
		}
		if act.Kind == KindLight && !h.HasColor(act.Color) {
			return nil, fmt.Errorf("%w: head %d color %q", ErrUnknownColor, act.Head, act.Color)
		}
	}

	return a, nil
}

// Heads returns the distinct head ids addressed, in action order.
func (a *Aspect) Heads() []int {
	ids := make([]int, 0, len(a.Actions))
	for _, act := range a.Actions {
		if !slices.Contains(ids, act.Head) {
			ids = append(ids, act.Head)
		}
	}
	return ids
}

// CompatibleWith reports whether the aspect can be displayed on inv: it must
// address every fitted head exactly once, and a specified number-plate
// requirement must equal the inventory's presence flag.
func (a *Aspect) CompatibleWith(inv *fixture.Inventory) error {
	seen := make(map[int]bool, len(a.Actions))
	for _, act := range a.Actions {
		if seen[act.Head] {
			return fmt.Errorf("%w: head %d", ErrDuplicateHead, act.Head)
		}
		seen[act.Head] = true
	}

	required := inv.RequiredHeads()
	if len(seen) != len(required) {
		return fmt.Errorf("%w: addresses %v, signal has %v", ErrHeadCoverage, a.Heads(), required)
	}
	for _, id := range required {
		if !seen[id] {
			return fmt.Errorf("%w: head %d not addressed", ErrHeadCoverage, id)
		}
	}

	switch a.Plate {
	case PlatePresent:
		if !inv.NumberPlate() {
			return fmt.Errorf("%w: requires a number-plate", ErrPlateMismatch)
		}
	case PlateAbsent:
		if inv.NumberPlate() {
			return fmt.Errorf("%w: requires no number-plate", ErrPlateMismatch)
		}
	}

	return nil
}

// Validate checks every action against inv and returns the first failure.
func (a *Aspect) Validate(inv *fixture.Inventory) error {
	for i, act := range a.Actions {
		if err := act.Validate(inv); err != nil {
			return fmt.Errorf("action %d: %w", i, err)
		}
	}
	return nil
}

// String renders the compiled aspect in grammar form.
func (a *Aspect) String() string {
	parts := make([]string, 0, len(a.Actions)+1)
	for _, act := range a.Actions {
		parts = append(parts, act.String())
	}
	switch a.Plate {
	case PlatePresent:
		parts = append(parts, "number-plate present:yes")
	case PlateAbsent:
		parts = append(parts, "number-plate present:no")
	}
	return strings.Join(parts, "; ")
}
