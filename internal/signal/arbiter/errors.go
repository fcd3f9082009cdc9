package arbiter

import "errors"

// Construction and lifecycle errors. Request and release outcomes are
// result codes, not errors.
var (
	// ErrNoCatalog is returned when New is called without a catalog.
	ErrNoCatalog = errors.New("arbiter: no rule catalog")

	// ErrNoExecutor is returned when New is called without an executor.
	ErrNoExecutor = errors.New("arbiter: no executor")

	// ErrNoStartupSource is returned when New is called without a startup source.
	ErrNoStartupSource = errors.New("arbiter: no startup source")

	// ErrDefaultRuleMissing is returned when this signal cannot display the default rule.
	ErrDefaultRuleMissing = errors.New("arbiter: default rule not in catalog")

	// ErrAlreadyStarted is returned when Start is called twice.
	ErrAlreadyStarted = errors.New("arbiter: already started")
)
