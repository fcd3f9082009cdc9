package rule

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"testing"

	"github.com/nerrad567/sigos-core/internal/signal/aspect"
	"github.com/nerrad567/sigos-core/internal/signal/fixture"
)

type recordingSink struct {
	records []string
}

func (s *recordingSink) Record(source, message string) {
	s.records = append(s.records, source+": "+message)
}

func oneLightInventory(t *testing.T) *fixture.Inventory {
	t.Helper()
	inv, err := fixture.New([]fixture.Head{
		{ID: 1, Kind: fixture.KindLight, Colors: []string{"red", "yellow", "green"}},
	}, false, 100)
	if err != nil {
		t.Fatalf("fixture.New() error = %v", err)
	}
	return inv
}

func entry(id string, priority int, aspects ...string) Entry {
	return Entry{ID: ID(id), Name: "rule-" + id, Priority: priority, Aspects: aspects}
}

func TestBuild_FirstCompatibleAlternativeWins(t *testing.T) {
	lib, err := ParseLibrary([]byte(testLibrary))
	if err != nil {
		t.Fatalf("ParseLibrary() error = %v", err)
	}

	c := NewBuilder(oneLightInventory(t)).Build(lib)

	if c.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", c.Len())
	}
	clear, ok := c.Lookup("281A")
	if !ok {
		t.Fatal("Lookup(281A) not found")
	}
	if clear.Alternative != 1 {
		t.Errorf("Alternative = %d, want 1 (single head layout)", clear.Alternative)
	}
	if clear.Aspect.Actions[0].Color != "green" {
		t.Errorf("compiled color = %q, want green", clear.Aspect.Actions[0].Color)
	}
	// Alternative 0 addresses head 2, which this inventory does not declare.
	rej := c.Rejections()
	if len(rej) != 1 {
		t.Fatalf("Rejections() = %v, want one", rej)
	}
	if rej[0].RuleID != "281A" || rej[0].Alternative != 0 || !errors.Is(rej[0].Err, aspect.ErrUnknownHead) {
		t.Errorf("rejection = %+v, want 281A alternative 0 ErrUnknownHead", rej[0])
	}

	def, err := c.Default()
	if err != nil {
		t.Fatalf("Default() error = %v", err)
	}
	if def.ID != "292" {
		t.Errorf("Default().ID = %q, want 292", def.ID)
	}
}

func TestBuild_IncompatibleRulesOmitted(t *testing.T) {
	lib := &Library{
		DefaultRule: "1",
		Rules: []Entry{
			entry("1", 1, "light head-id:1 color:red"),
			entry("2", 2, "light head-id:1 color:red; light head-id:2 color:red"),
			entry("3", 2, "light head-id:1 color:red; number-plate present:yes"),
		},
	}
	sink := &recordingSink{}
	b := NewBuilder(oneLightInventory(t))
	b.SetSink(sink)

	c := b.Build(lib)

	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
	if _, ok := c.ByID("2"); ok {
		t.Error("rule 2 should not be displayable")
	}
	if _, ok := c.ByID("3"); ok {
		t.Error("rule 3 requires a number-plate")
	}

	// Rule 2 references head 2, which is not declared: that is a malformed
	// alternative and is reported. Rule 3 is merely incompatible.
	if len(sink.records) != 1 || !strings.Contains(sink.records[0], "rule 2") {
		t.Errorf("sink records = %v, want one record for rule 2", sink.records)
	}
}

func TestBuild_MalformedAlternativeFallsThrough(t *testing.T) {
	lib := &Library{
		DefaultRule: "1",
		Rules: []Entry{
			entry("1", 1, "lantern head-id:1", "light head-id:1 color:purple", "light head-id:1 color:red"),
		},
	}
	sink := &recordingSink{}
	b := NewBuilder(oneLightInventory(t))
	b.SetSink(sink)

	c := b.Build(lib)

	def, ok := c.ByID("1")
	if !ok {
		t.Fatal("rule 1 should survive on its third alternative")
	}
	if def.Alternative != 2 {
		t.Errorf("Alternative = %d, want 2", def.Alternative)
	}

	rej := c.Rejections()
	if len(rej) != 2 {
		t.Fatalf("len(Rejections()) = %d, want 2", len(rej))
	}
	if !errors.Is(rej[0].Err, aspect.ErrUnknownFixture) {
		t.Errorf("rejection 0 = %v, want ErrUnknownFixture", rej[0].Err)
	}
	if !errors.Is(rej[1].Err, aspect.ErrUnknownColor) {
		t.Errorf("rejection 1 = %v, want ErrUnknownColor", rej[1].Err)
	}
	if len(sink.records) != 2 {
		t.Errorf("sink records = %d, want 2", len(sink.records))
	}
}

func TestBuild_DuplicateIDAndHeadTwice(t *testing.T) {
	lib := &Library{
		DefaultRule: "1",
		Rules: []Entry{
			entry("1", 1, "light head-id:1 color:red"),
			entry("1", 9, "light head-id:1 color:green"),
			entry("2", 3, "light head-id:1 color:red; light head-id:1 color:green"),
			entry("4", 3),
		},
	}

	c := NewBuilder(oneLightInventory(t)).Build(lib)

	def, _ := c.ByID("1")
	if def.Priority != 1 {
		t.Errorf("duplicate id replaced the first entry: priority = %d", def.Priority)
	}

	var errs []error
	for _, r := range c.Rejections() {
		errs = append(errs, r.Err)
	}
	if len(errs) != 3 {
		t.Fatalf("rejections = %v, want 3", errs)
	}
	if !errors.Is(errs[0], ErrDuplicateID) {
		t.Errorf("rejection 0 = %v, want ErrDuplicateID", errs[0])
	}
	if !errors.Is(errs[1], aspect.ErrDuplicateHead) {
		t.Errorf("rejection 1 = %v, want ErrDuplicateHead", errs[1])
	}
	if !errors.Is(errs[2], ErrNoAspect) {
		t.Errorf("rejection 2 = %v, want ErrNoAspect", errs[2])
	}
}

func TestBuild_CoverageProperty(t *testing.T) {
	inventories := map[string][]fixture.Head{
		"single light": {
			{ID: 1, Kind: fixture.KindLight, Colors: []string{"red", "green"}},
		},
		"light over semaphore": {
			{ID: 1, Kind: fixture.KindLight, Colors: []string{"red", "green"}},
			{ID: 2, Kind: fixture.KindSemaphore},
		},
		"two semaphores": {
			{ID: 1, Kind: fixture.KindSemaphore},
			{ID: 2, Kind: fixture.KindSemaphore},
		},
	}

	alternatives := []string{
		"light head-id:1 color:red",
		"light head-id:1 color:green; semaphore head-id:2 angle:45",
		"semaphore head-id:1 angle:0; semaphore head-id:2 angle:0",
		"semaphore head-id:1 angle:0",
		"light head-id:1 color:red; light head-id:2 color:red",
	}

	var rules []Entry
	for i := range alternatives {
		// Each rule offers a rotation of the alternatives so that every
		// layout sees a different first match.
		rotated := append(slices.Clone(alternatives[i:]), alternatives[:i]...)
		rules = append(rules, entry(fmt.Sprint(i+1), i, rotated...))
	}
	lib := &Library{DefaultRule: "1", Rules: rules}

	for name, heads := range inventories {
		t.Run(name, func(t *testing.T) {
			inv, err := fixture.New(heads, false, 100)
			if err != nil {
				t.Fatalf("fixture.New() error = %v", err)
			}

			c := NewBuilder(inv).Build(lib)
			if c.Len() == 0 {
				t.Fatal("expected at least one displayable rule")
			}

			want := inv.RequiredHeads()
			slices.Sort(want)
			for _, def := range c.List() {
				got := def.Aspect.Heads()
				slices.Sort(got)
				if !slices.Equal(got, want) {
					t.Errorf("rule %s addresses %v, signal has %v", def.ID, got, want)
				}
			}
		})
	}
}

func TestCatalog_Lookup(t *testing.T) {
	lib := &Library{
		DefaultRule: "1",
		Rules: []Entry{
			{ID: "1", Name: "Stop", Priority: 1, Aspects: Alternatives{"light head-id:1 color:red"}},
			{ID: "2", Name: "1", Priority: 2, Aspects: Alternatives{"light head-id:1 color:yellow"}},
			{ID: "3", Name: "Clear", Priority: 3, Aspects: Alternatives{"light head-id:1 color:green"}},
		},
	}
	c := NewBuilder(oneLightInventory(t)).Build(lib)

	tests := []struct {
		query  string
		wantID string
		found  bool
	}{
		{query: "3", wantID: "3", found: true},
		{query: "Clear", wantID: "3", found: true},
		// Ids win over names.
		{query: "1", wantID: "1", found: true},
		{query: "clear", found: false},
		{query: "9", found: false},
	}

	for _, tt := range tests {
		def, ok := c.Lookup(tt.query)
		if ok != tt.found {
			t.Errorf("Lookup(%q) found = %v, want %v", tt.query, ok, tt.found)
			continue
		}
		if ok && def.ID != tt.wantID {
			t.Errorf("Lookup(%q) = %s, want %s", tt.query, def.ID, tt.wantID)
		}
	}

	ids := make([]string, 0, c.Len())
	for _, d := range c.List() {
		ids = append(ids, d.ID)
	}
	if !slices.Equal(ids, []string{"1", "2", "3"}) {
		t.Errorf("List() order = %v, want library order", ids)
	}
}

func TestCatalog_DefaultMissing(t *testing.T) {
	lib := &Library{
		DefaultRule: "99",
		Rules:       []Entry{entry("1", 1, "light head-id:1 color:red")},
	}
	c := NewBuilder(oneLightInventory(t)).Build(lib)

	if _, err := c.Default(); !errors.Is(err, ErrNotFound) {
		t.Errorf("Default() error = %v, want ErrNotFound", err)
	}
}
