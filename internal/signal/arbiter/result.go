package arbiter

// RequestResult is the outcome of Arbitrator.Request.
type RequestResult int

// Request outcomes.
const (
	// RequestInvalid means the rule id or name did not resolve.
	RequestInvalid RequestResult = iota
	// RequestDuplicate means the source already requests this rule.
	RequestDuplicate
	// RequestUnchanged means the request was queued behind the active rule.
	RequestUnchanged
	// RequestActivated means the requested rule is now displayed.
	RequestActivated
)

// String returns the wire name of the result.
func (r RequestResult) String() string {
	switch r {
	case RequestInvalid:
		return "invalid"
	case RequestDuplicate:
		return "duplicate"
	case RequestUnchanged:
		return "unchanged"
	case RequestActivated:
		return "activated"
	default:
		return "unknown"
	}
}

// ReleaseResult is the outcome of Arbitrator.Release.
type ReleaseResult int

// Release outcomes.
const (
	// ReleaseInvalid means the rule id or name did not resolve.
	ReleaseInvalid ReleaseResult = iota
	// ReleaseNotFound means the source holds no request for the rule.
	ReleaseNotFound
	// ReleaseRefused means the release would empty the ledger or remove
	// the startup default.
	ReleaseRefused
	// ReleaseUnchanged means the request was removed but the active rule stayed.
	ReleaseUnchanged
	// ReleaseChanged means the active rule was released and another took over.
	ReleaseChanged
)

// String returns the wire name of the result.
func (r ReleaseResult) String() string {
	switch r {
	case ReleaseInvalid:
		return "invalid"
	case ReleaseNotFound:
		return "not_found"
	case ReleaseRefused:
		return "refused"
	case ReleaseUnchanged:
		return "unchanged"
	case ReleaseChanged:
		return "changed"
	default:
		return "unknown"
	}
}
