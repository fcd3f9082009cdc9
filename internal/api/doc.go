// Package api implements the HTTP REST API and WebSocket server for SigOS Core.
//
// This package provides:
//   - Read-only diagnostics: active rule, request ledger, rule catalog, event log
//   - Request and release endpoints that feed the arbitrator
//   - WebSocket hub broadcasting rule.transition and log.entry events; a
//     rule.transition subscriber first receives a snapshot of the displayed rule
//   - Optional HS256 bearer tokens whose subject is the request source
//   - Prometheus exposition on /metrics
//   - Middleware stack (request ID, logging, recovery, CORS, body limit)
//
// # Sources
//
// Every request in the arbitrator's ledger carries a source. When
// security.jwt.secret is set the source is the token subject and cannot be
// chosen by the caller. Without a secret the body's source field is used,
// falling back to the client IP, which matches the console's behaviour.
//
// # Result codes
//
// Arbitration outcomes are not errors. They map to HTTP statuses:
//
//	invalid              404
//	duplicate, not_found 409
//	refused              403
//	activated, unchanged, changed 200
//
// Each response carries {"result": ..., "active_rule": ...}.
package api
