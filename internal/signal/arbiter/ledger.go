package arbiter

import (
	"time"

	"github.com/nerrad567/sigos-core/internal/signal/rule"
)

// Entry is one outstanding activation request. It references the shared,
// immutable rule definition and carries the per-request identity.
type Entry struct {
	ID         string
	Rule       *rule.Definition
	Source     string
	AdmittedAt time.Time
}

// Priority returns the priority of the requested rule.
func (e Entry) Priority() int {
	return e.Rule.Priority
}

// same reports whether e requests ruleID on behalf of source.
func (e Entry) same(ruleID, source string) bool {
	return e.Rule.ID == ruleID && e.Source == source
}

// WithdrawResult is the outcome of Ledger.Withdraw.
type WithdrawResult int

// Withdraw outcomes.
const (
	WithdrawRemoved WithdrawResult = iota
	WithdrawNotFound
	WithdrawRefusedLast
	WithdrawRefusedProtected
)

// Protection names the one entry that may not be withdrawn by its owner.
type Protection struct {
	RuleID string
	Source string
}

// Ledger holds requests sorted by ascending priority. The tail is active.
// Ledger is not safe for concurrent use; Arbitrator guards it.
type Ledger struct {
	entries []Entry
}

// Admit inserts e, keeping the ledger sorted.
//
// The scan runs from the tail toward the front. An entry for the same rule
// and source makes the call a duplicate and nothing changes. Entries of
// greater or equal priority are passed over, and e is inserted right after
// the first entry of strictly lower priority (or at the front). Among equal
// priorities the earliest admission therefore stays nearest the tail.
//
// Returns:
//   - bool: false if e duplicates an existing (rule, source) entry
func (l *Ledger) Admit(e Entry) bool {
	pos := 0
	for i := len(l.entries) - 1; i >= 0; i-- {
		cur := l.entries[i]
		if cur.same(e.Rule.ID, e.Source) {
			return false
		}
		// A duplicate shares the rule and so the priority; it is always
		// reached before this break.
		if cur.Priority() < e.Priority() {
			pos = i + 1
			break
		}
	}

	l.entries = append(l.entries, Entry{})
	copy(l.entries[pos+1:], l.entries[pos:])
	l.entries[pos] = e
	return true
}

// Withdraw removes the first entry for (ruleID, source).
//
// It refuses to remove the last remaining entry, and refuses to remove the
// protected entry when the caller is its registrant. Other sources are not
// stopped by the protection; they are still bound by the last-entry rule.
func (l *Ledger) Withdraw(ruleID, source string, protected Protection) WithdrawResult {
	idx := -1
	for i, e := range l.entries {
		if e.same(ruleID, source) {
			idx = i
			break
		}
	}
	if idx < 0 {
		return WithdrawNotFound
	}
	if len(l.entries) <= 1 {
		return WithdrawRefusedLast
	}
	if ruleID == protected.RuleID && source == protected.Source {
		return WithdrawRefusedProtected
	}

	l.entries = append(l.entries[:idx], l.entries[idx+1:]...)
	return WithdrawRemoved
}

// Active returns the tail entry.
func (l *Ledger) Active() (Entry, bool) {
	if len(l.entries) == 0 {
		return Entry{}, false
	}
	return l.entries[len(l.entries)-1], true
}

// Entries returns a copy of the ledger, front (lowest priority) to tail.
func (l *Ledger) Entries() []Entry {
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len returns the number of outstanding requests.
func (l *Ledger) Len() int {
	return len(l.entries)
}
