package rule

import (
	"errors"
	"fmt"

	"github.com/nerrad567/sigos-core/internal/signal/aspect"
	"github.com/nerrad567/sigos-core/internal/signal/fixture"
)

// catalogSource is the log source used for catalog build records.
const catalogSource = "rules"

// Logger defines the logging interface used by the catalog builder.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Sink receives operator-visible log records.
type Sink interface {
	Record(source, message string)
}

// Rejection describes a library alternative or entry that was dropped
// because it was malformed.
type Rejection struct {
	RuleID string
	// Alternative is the index of the rejected alternative, or -1 when the
	// whole entry was dropped.
	Alternative int
	Text        string
	Err         error
}

// String renders the rejection for log sinks.
func (r Rejection) String() string {
	if r.Alternative < 0 {
		return fmt.Sprintf("rule %s rejected: %v", r.RuleID, r.Err)
	}
	return fmt.Sprintf("rule %s alternative %d rejected: %v", r.RuleID, r.Alternative, r.Err)
}

// Catalog is the ordered set of rules this signal can display.
// It is immutable once built and safe for concurrent reads.
type Catalog struct {
	defs       []*Definition
	byID       map[string]*Definition
	byName     map[string]*Definition
	defaultID  string
	ruleSet    string
	rejections []Rejection
}

// Builder compiles a Library against an Inventory.
type Builder struct {
	inv    *fixture.Inventory
	sink   Sink
	logger Logger
}

// NewBuilder creates a catalog builder for inv.
func NewBuilder(inv *fixture.Inventory) *Builder {
	return &Builder{inv: inv, logger: noopLogger{}}
}

// SetLogger sets the logger for the builder.
func (b *Builder) SetLogger(logger Logger) {
	b.logger = logger
}

// SetSink sets the sink that receives rejection records.
func (b *Builder) SetSink(sink Sink) {
	b.sink = sink
}

// Build compiles lib into a Catalog.
//
// Entries are visited in library order. For each entry the alternatives are
// tried in order and the first one that compiles and fits the inventory
// becomes the rule's aspect. Malformed alternatives are recorded and skipped.
// An entry whose alternatives all target other layouts is left out without
// a record. A repeated rule id keeps the first entry.
func (b *Builder) Build(lib *Library) *Catalog {
	c := &Catalog{
		byID:      make(map[string]*Definition, len(lib.Rules)),
		byName:    make(map[string]*Definition, len(lib.Rules)),
		defaultID: string(lib.DefaultRule),
		ruleSet:   lib.RuleSet,
	}

	seen := make(map[string]bool, len(lib.Rules))
	for _, e := range lib.Rules {
		id := string(e.ID)

		if seen[id] {
			b.reject(c, Rejection{RuleID: id, Alternative: -1, Err: fmt.Errorf("%w: %s", ErrDuplicateID, id)})
			continue
		}
		seen[id] = true

		if len(e.Aspects) == 0 {
			b.reject(c, Rejection{RuleID: id, Alternative: -1, Err: ErrNoAspect})
			continue
		}

		def := b.compile(c, e)
		if def == nil {
			b.logger.Debug("rule not displayable on this signal", "rule", id, "alternatives", len(e.Aspects))
			continue
		}

		c.defs = append(c.defs, def)
		c.byID[def.ID] = def
		if _, taken := c.byName[def.Name]; !taken && def.Name != "" {
			c.byName[def.Name] = def
		}
	}

	b.logger.Info("rule catalog built",
		"rule_set", lib.RuleSet,
		"library_rules", len(lib.Rules),
		"supported", len(c.defs),
		"rejected", len(c.rejections),
	)

	return c
}

// compile returns the definition for the first fitting alternative, or nil.
func (b *Builder) compile(c *Catalog, e Entry) *Definition {
	for i, text := range e.Aspects {
		asp, err := aspect.Compile(text, b.inv)
		if err != nil {
			b.reject(c, Rejection{RuleID: string(e.ID), Alternative: i, Text: text, Err: err})
			continue
		}

		if err := asp.CompatibleWith(b.inv); err != nil {
			// A head addressed twice is an authoring error; any other
			// mismatch means the alternative is for a different mast.
			if errors.Is(err, aspect.ErrDuplicateHead) {
				b.reject(c, Rejection{RuleID: string(e.ID), Alternative: i, Text: text, Err: err})
			}
			continue
		}

		return &Definition{
			ID:          string(e.ID),
			Name:        e.Name,
			Indication:  e.Indication,
			Priority:    e.Priority,
			Aspect:      asp,
			Alternative: i,
		}
	}
	return nil
}

func (b *Builder) reject(c *Catalog, r Rejection) {
	c.rejections = append(c.rejections, r)
	b.logger.Warn("rule alternative rejected", "rule", r.RuleID, "alternative", r.Alternative, "error", r.Err)
	if b.sink != nil {
		b.sink.Record(catalogSource, r.String())
	}
}

// Lookup resolves idOrName by exact id match, then exact name match.
func (c *Catalog) Lookup(idOrName string) (*Definition, bool) {
	if d, ok := c.byID[idOrName]; ok {
		return d, true
	}
	d, ok := c.byName[idOrName]
	return d, ok
}

// ByID returns the rule with the given id.
func (c *Catalog) ByID(id string) (*Definition, bool) {
	d, ok := c.byID[id]
	return d, ok
}

// Default returns the library's default rule, if this signal can display it.
func (c *Catalog) Default() (*Definition, error) {
	d, ok := c.byID[c.defaultID]
	if !ok {
		return nil, fmt.Errorf("%w: default rule %s", ErrNotFound, c.defaultID)
	}
	return d, nil
}

// DefaultID returns the library's default rule id.
func (c *Catalog) DefaultID() string {
	return c.defaultID
}

// RuleSet returns the library's rule-set name.
func (c *Catalog) RuleSet() string {
	return c.ruleSet
}

// List returns every supported rule in library order.
func (c *Catalog) List() []*Definition {
	out := make([]*Definition, len(c.defs))
	copy(out, c.defs)
	return out
}

// Len returns the number of supported rules.
func (c *Catalog) Len() int {
	return len(c.defs)
}

// Rejections returns the build diagnostics.
func (c *Catalog) Rejections() []Rejection {
	out := make([]Rejection, len(c.rejections))
	copy(out, c.rejections)
	return out
}
