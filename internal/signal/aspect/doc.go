// Package aspect compiles aspect text into fixture Actions.
//
// An aspect alternative looks like:
//
//	light head-id:1 color:red; semaphore head-id:2 angle:45; number-plate present:yes
//
// Parse handles the grammar, Compile additionally resolves heads and colors
// against a fixture.Inventory, and CompatibleWith decides whether a compiled
// aspect fits the signal's layout. Actions are plain values; Validate is the
// gate before any hardware write.
package aspect
