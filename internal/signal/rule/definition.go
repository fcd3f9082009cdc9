package rule

import (
	"fmt"

	"github.com/nerrad567/sigos-core/internal/signal/aspect"
)

// Definition is a rule this signal can display. It holds exactly one
// compiled Aspect and is never modified after the catalog is built, so
// it may be shared between any number of requests.
type Definition struct {
	ID         string
	Name       string
	Indication string
	Priority   int
	Aspect     *aspect.Aspect

	// Alternative is the index of the library alternative that was compiled.
	Alternative int
}

// String returns "id name" for log lines.
func (d *Definition) String() string {
	if d == nil {
		return "<none>"
	}
	return fmt.Sprintf("%s %s", d.ID, d.Name)
}
