// Package arbiter resolves concurrent rule requests into the single rule a
// signal displays.
//
// The Ledger keeps outstanding requests sorted by ascending priority; its
// tail is the active request. A strictly higher priority request pre-empts
// immediately. Equal priorities are served first come, first served.
//
// The Arbitrator owns the catalog and ledger, resolves rule ids and names,
// and on every change of the active rule records "released"/"activated",
// blanks the lights, runs the executor and notifies observers:
//
//	arb, err := arbiter.New(arbiter.Options{
//	    Catalog:       catalog,
//	    Executor:      exec,
//	    StartupSource: cfg.Signal.Hostname,
//	    Sink:          events,
//	    Logger:        log.Component("arbiter"),
//	})
//	if err := arb.Start(ctx); err != nil {
//	    return err
//	}
//	res := arb.Request(ctx, "281", "10.0.0.7") // arbiter.RequestActivated
//
// # Protection
//
// The startup source registers the default rule at Start and can never
// release it. Any release that would leave the ledger empty is refused.
// Releasing the last non-default request therefore falls back to the
// default rule. Another source may still withdraw its own request for the
// default rule.
//
// # Thread Safety
//
// All Arbitrator methods are safe for concurrent use. Observers run inside
// the critical section and must not call back into the Arbitrator.
package arbiter
