package arbiter

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/nerrad567/sigos-core/internal/signal/rule"
)

func def(id string, priority int) *rule.Definition {
	return &rule.Definition{ID: id, Name: "rule-" + id, Priority: priority}
}

func ledgerOrder(l *Ledger) string {
	s := ""
	for i, e := range l.Entries() {
		if i > 0 {
			s += " "
		}
		s += e.Rule.ID + "/" + e.Source
	}
	return s
}

func TestLedger_AdmitOrdering(t *testing.T) {
	var l Ledger
	a, b, c, d := def("A", 1), def("B", 5), def("C", 5), def("D", 9)

	steps := []struct {
		entry Entry
		want  string
	}{
		{Entry{Rule: a, Source: "host"}, "A/host"},
		{Entry{Rule: b, Source: "S1"}, "A/host B/S1"},
		// Equal priority queues behind the earlier request.
		{Entry{Rule: c, Source: "S2"}, "A/host C/S2 B/S1"},
		// Strictly higher priority pre-empts.
		{Entry{Rule: d, Source: "S3"}, "A/host C/S2 B/S1 D/S3"},
		// Lowest priority goes behind equal-priority entries at the front.
		{Entry{Rule: a, Source: "S4"}, "A/S4 A/host C/S2 B/S1 D/S3"},
	}

	for i, step := range steps {
		if !l.Admit(step.entry) {
			t.Fatalf("step %d: Admit() = false, want true", i)
		}
		if got := ledgerOrder(&l); got != step.want {
			t.Errorf("step %d: ledger = %q, want %q", i, got, step.want)
		}
	}

	active, _ := l.Active()
	if active.Rule != d {
		t.Errorf("Active() = %s, want D", active.Rule.ID)
	}
}

func TestLedger_AdmitDuplicate(t *testing.T) {
	var l Ledger
	b := def("B", 5)

	l.Admit(Entry{Rule: def("A", 1), Source: "host"})
	l.Admit(Entry{Rule: b, Source: "S1"})
	l.Admit(Entry{Rule: def("D", 9), Source: "S3"})

	if l.Admit(Entry{Rule: b, Source: "S1"}) {
		t.Error("Admit() duplicate = true, want false")
	}
	if l.Len() != 3 {
		t.Errorf("Len() = %d, want 3", l.Len())
	}

	// Same rule from another source is a separate request.
	if !l.Admit(Entry{Rule: b, Source: "S2"}) {
		t.Error("Admit() same rule other source = false, want true")
	}
}

func TestLedger_PriorityMonotonic(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	defs := make([]*rule.Definition, 8)
	for i := range defs {
		defs[i] = def(fmt.Sprint(i), rng.Intn(4))
	}

	var l Ledger
	for i := 0; i < 200; i++ {
		l.Admit(Entry{Rule: defs[rng.Intn(len(defs))], Source: fmt.Sprintf("S%d", rng.Intn(5))})

		entries := l.Entries()
		for j := 1; j < len(entries); j++ {
			if entries[j-1].Priority() > entries[j].Priority() {
				t.Fatalf("after %d admissions ledger not sorted at %d: %s", i+1, j, ledgerOrder(&l))
			}
		}
	}

	seen := make(map[string]bool)
	for _, e := range l.Entries() {
		key := e.Rule.ID + "/" + e.Source
		if seen[key] {
			t.Fatalf("duplicate (rule, source) %s in ledger", key)
		}
		seen[key] = true
	}
}

func TestLedger_Withdraw(t *testing.T) {
	protected := Protection{RuleID: "A", Source: "host"}

	var l Ledger
	a, b := def("A", 1), def("B", 5)
	l.Admit(Entry{Rule: a, Source: "host"})
	l.Admit(Entry{Rule: b, Source: "S1"})
	l.Admit(Entry{Rule: a, Source: "S2"})

	if got := l.Withdraw("B", "S2", protected); got != WithdrawNotFound {
		t.Errorf("Withdraw(B, S2) = %v, want NotFound", got)
	}
	if got := l.Withdraw("A", "host", protected); got != WithdrawRefusedProtected {
		t.Errorf("Withdraw(A, host) = %v, want RefusedProtected", got)
	}
	// The guard is narrow: another source's request for the default goes.
	if got := l.Withdraw("A", "S2", protected); got != WithdrawRemoved {
		t.Errorf("Withdraw(A, S2) = %v, want Removed", got)
	}
	if got := l.Withdraw("B", "S1", protected); got != WithdrawRemoved {
		t.Errorf("Withdraw(B, S1) = %v, want Removed", got)
	}
	if got := ledgerOrder(&l); got != "A/host" {
		t.Errorf("ledger = %q, want A/host", got)
	}
}

func TestLedger_WithdrawLastEntry(t *testing.T) {
	var l Ledger
	l.Admit(Entry{Rule: def("B", 5), Source: "S1"})

	if got := l.Withdraw("B", "S1", Protection{}); got != WithdrawRefusedLast {
		t.Errorf("Withdraw() = %v, want RefusedLast", got)
	}
	if l.Len() != 1 {
		t.Errorf("Len() = %d, want 1", l.Len())
	}
}

func TestLedger_ActiveEmpty(t *testing.T) {
	var l Ledger
	if _, ok := l.Active(); ok {
		t.Error("Active() on empty ledger returned ok")
	}
}
