// Package eventlog keeps the operator-visible signal log.
//
// The arbitrator, executor and rule catalog builder report what they did
// (requests queued behind higher priority rules, refused releases, rejected
// aspects, hardware failures) through Log.Record. The log keeps the most
// recent entries in memory for the console and the REST API, mirrors every
// entry to the structured logger, and optionally persists entries to the
// signal_events table and pushes them to WebSocket clients.
//
// TransitionRepository stores every change of the displayed rule in the
// rule_transitions table. It is registered as an arbiter observer.
package eventlog
