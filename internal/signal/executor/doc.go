// Package executor drives a rule's aspect into the hardware layer.
//
// Each action is validated against the fixture inventory before the
// driver sees it. The first invalid or rejected action stops the aspect
// and there is no rollback: the mast may show part of the new aspect.
// Preflight mode narrows that window to driver rejections by validating
// the whole aspect up front.
package executor
