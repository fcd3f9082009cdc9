package arbiter

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nerrad567/sigos-core/internal/signal/rule"
)

// Transition causes.
const (
	CauseStartup = "startup"
	CauseRequest = "request"
	CauseRelease = "release"
)

// Executor applies rules to hardware. *executor.Executor satisfies it.
type Executor interface {
	Blank(ctx context.Context) error
	Execute(ctx context.Context, def *rule.Definition) error
}

// Sink receives operator-visible log records.
type Sink interface {
	Record(source, message string)
}

// Logger defines the logging interface used by the Arbitrator.
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

// Transition describes a change of the displayed rule.
type Transition struct {
	// From is nil for the startup transition.
	From   *rule.Definition
	To     *rule.Definition
	Source string
	Cause  string
	At     time.Time

	// LedgerDepth is the number of outstanding requests after the change.
	LedgerDepth int

	// ExecErr is the executor's error, if the aspect was not fully applied.
	ExecErr error
}

// Observer is notified of every transition. Observers run inside the
// arbiter's critical section and must not call back into the Arbitrator.
type Observer interface {
	OnTransition(ctx context.Context, t Transition)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ctx context.Context, t Transition)

// OnTransition calls f.
func (f ObserverFunc) OnTransition(ctx context.Context, t Transition) {
	f(ctx, t)
}

// Options configures an Arbitrator.
type Options struct {
	Catalog  *rule.Catalog
	Executor Executor

	// StartupSource registers the default rule at Start. It is normally
	// the controller's hostname.
	StartupSource string

	Sink   Sink
	Logger Logger

	// Now overrides the clock for admission timestamps.
	Now func() time.Time
}

// Arbitrator decides which single rule the signal displays.
//
// One mutex covers resolve, ledger mutation, the before/after comparison,
// blanking, execution and observer notification, so concurrent callers
// see each request or release as one step.
type Arbitrator struct {
	mu sync.Mutex

	catalog   *rule.Catalog
	exec      Executor
	ledger    Ledger
	def       *rule.Definition
	protected Protection
	started   bool
	observers []Observer

	sink   Sink
	logger Logger
	now    func() time.Time
}

// New creates an Arbitrator. The default rule must be displayable on this
// signal.
func New(opts Options) (*Arbitrator, error) {
	if opts.Catalog == nil {
		return nil, ErrNoCatalog
	}
	if opts.Executor == nil {
		return nil, ErrNoExecutor
	}
	if opts.StartupSource == "" {
		return nil, ErrNoStartupSource
	}

	def, err := opts.Catalog.Default()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDefaultRuleMissing, err)
	}

	a := &Arbitrator{
		catalog:   opts.Catalog,
		exec:      opts.Executor,
		def:       def,
		protected: Protection{RuleID: def.ID, Source: opts.StartupSource},
		sink:      opts.Sink,
		logger:    opts.Logger,
		now:       opts.Now,
	}
	if a.logger == nil {
		a.logger = noopLogger{}
	}
	if a.now == nil {
		a.now = time.Now
	}
	return a, nil
}

// AddObserver registers o for transition notifications.
func (a *Arbitrator) AddObserver(o Observer) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.observers = append(a.observers, o)
}

// Start registers the default rule for the startup source and displays it.
// An execution failure is recorded and reported to observers; it does not
// stop the arbiter.
func (a *Arbitrator) Start(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.started {
		return ErrAlreadyStarted
	}
	a.started = true

	a.ledger.Admit(a.newEntry(a.def, a.protected.Source))
	a.logger.Info("default rule registered", "rule", a.def.ID, "source", a.protected.Source)
	a.transition(ctx, nil, a.def, a.protected.Source, CauseStartup)
	return nil
}

// Request asks for idOrName to be displayed on behalf of source.
func (a *Arbitrator) Request(ctx context.Context, idOrName, source string) RequestResult {
	a.mu.Lock()
	defer a.mu.Unlock()

	def, ok := a.catalog.Lookup(idOrName)
	if !ok || !a.started {
		a.record(source, fmt.Sprintf("request %s: invalid rule", idOrName))
		return RequestInvalid
	}

	pre := a.activeRule()
	if !a.ledger.Admit(a.newEntry(def, source)) {
		a.record(source, fmt.Sprintf("request %s: already requested", def))
		return RequestDuplicate
	}

	post := a.activeRule()
	if post == pre {
		a.record(source, fmt.Sprintf("request %s: queued behind %s", def, post))
		return RequestUnchanged
	}

	a.transition(ctx, pre, post, source, CauseRequest)
	return RequestActivated
}

// Release withdraws source's request for idOrName.
func (a *Arbitrator) Release(ctx context.Context, idOrName, source string) ReleaseResult {
	a.mu.Lock()
	defer a.mu.Unlock()

	def, ok := a.catalog.Lookup(idOrName)
	if !ok || !a.started {
		a.record(source, fmt.Sprintf("release %s: invalid rule", idOrName))
		return ReleaseInvalid
	}

	pre := a.activeRule()
	switch a.ledger.Withdraw(def.ID, source, a.protected) {
	case WithdrawNotFound:
		a.record(source, fmt.Sprintf("release %s: not requested", def))
		return ReleaseNotFound
	case WithdrawRefusedLast:
		a.record(source, fmt.Sprintf("release %s: not allowed, last request", def))
		return ReleaseRefused
	case WithdrawRefusedProtected:
		a.record(source, fmt.Sprintf("release %s: not allowed, default rule", def))
		return ReleaseRefused
	}

	return a.settle(ctx, pre, source, 1)
}

// ReleaseSource withdraws every request held by source, for example when a
// peer controller goes offline. Protected and last entries are kept.
//
// Returns:
//   - int: Number of requests removed
//   - ReleaseResult: ReleaseNotFound if source held nothing, ReleaseRefused
//     if nothing could be removed, otherwise Unchanged or Changed
func (a *Arbitrator) ReleaseSource(ctx context.Context, source string) (int, ReleaseResult) {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.withdrawMatching(ctx, source, func(e Entry) bool { return e.Source == source })
}

// ReleaseAll withdraws every request for idOrName regardless of source.
// Protected and last entries are kept.
func (a *Arbitrator) ReleaseAll(ctx context.Context, idOrName, source string) (int, ReleaseResult) {
	a.mu.Lock()
	defer a.mu.Unlock()

	def, ok := a.catalog.Lookup(idOrName)
	if !ok || !a.started {
		a.record(source, fmt.Sprintf("release all %s: invalid rule", idOrName))
		return 0, ReleaseInvalid
	}

	return a.withdrawMatching(ctx, source, func(e Entry) bool { return e.Rule.ID == def.ID })
}

func (a *Arbitrator) withdrawMatching(ctx context.Context, source string, match func(Entry) bool) (int, ReleaseResult) {
	pre := a.activeRule()

	found, removed := 0, 0
	for _, e := range a.ledger.Entries() {
		if !match(e) {
			continue
		}
		found++
		if a.ledger.Withdraw(e.Rule.ID, e.Source, a.protected) == WithdrawRemoved {
			removed++
		}
	}

	switch {
	case found == 0:
		return 0, ReleaseNotFound
	case removed == 0:
		a.record(source, "release: not allowed")
		return 0, ReleaseRefused
	}

	return removed, a.settle(ctx, pre, source, removed)
}

// settle compares the active rule after a withdrawal and runs the transition.
func (a *Arbitrator) settle(ctx context.Context, pre *rule.Definition, source string, removed int) ReleaseResult {
	post := a.activeRule()
	if post == pre {
		a.record(source, fmt.Sprintf("released %d request(s), %s still active", removed, post))
		return ReleaseUnchanged
	}

	a.transition(ctx, pre, post, source, CauseRelease)
	return ReleaseChanged
}

// transition logs the change, blanks the lights, applies the new aspect and
// notifies observers. The ledger is never reverted on failure.
func (a *Arbitrator) transition(ctx context.Context, from, to *rule.Definition, source, cause string) {
	if from != nil {
		a.record(source, "released "+from.String())
	}
	a.record(source, "activated "+to.String())

	a.logger.Info("active rule changed",
		"from", ruleID(from),
		"to", to.ID,
		"source", source,
		"cause", cause,
		"depth", a.ledger.Len(),
	)

	var execErr error
	if err := a.exec.Blank(ctx); err != nil {
		a.logger.Warn("blanking lights failed", "error", err)
	}
	if err := a.exec.Execute(ctx, to); err != nil {
		execErr = err
		a.logger.Error("aspect not fully applied", "rule", to.ID, "error", err)
	}

	t := Transition{
		From:        from,
		To:          to,
		Source:      source,
		Cause:       cause,
		At:          a.now(),
		LedgerDepth: a.ledger.Len(),
		ExecErr:     execErr,
	}
	for _, o := range a.observers {
		o.OnTransition(ctx, t)
	}
}

func (a *Arbitrator) newEntry(def *rule.Definition, source string) Entry {
	return Entry{
		ID:         uuid.NewString(),
		Rule:       def,
		Source:     source,
		AdmittedAt: a.now(),
	}
}

func (a *Arbitrator) activeRule() *rule.Definition {
	e, ok := a.ledger.Active()
	if !ok {
		return nil
	}
	return e.Rule
}

func (a *Arbitrator) record(source, msg string) {
	if a.sink != nil {
		a.sink.Record(source, msg)
	}
}

func ruleID(d *rule.Definition) string {
	if d == nil {
		return ""
	}
	return d.ID
}

// ActiveRule returns the displayed rule, or nil before Start.
func (a *Arbitrator) ActiveRule() *rule.Definition {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.activeRule()
}

// Active returns the active ledger entry.
func (a *Arbitrator) Active() (Entry, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.ledger.Active()
}

// Requests returns the ledger, lowest priority first, active entry last.
func (a *Arbitrator) Requests() []Entry {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.ledger.Entries()
}

// SupportedRules returns the catalog in library order.
func (a *Arbitrator) SupportedRules() []*rule.Definition {
	return a.catalog.List()
}

// DefaultRule returns the startup default rule.
func (a *Arbitrator) DefaultRule() *rule.Definition {
	return a.def
}

// StartupSource returns the identity that registered the default rule.
func (a *Arbitrator) StartupSource() string {
	return a.protected.Source
}
