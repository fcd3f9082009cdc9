package rule

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/tidwall/jsonc"
)

// ID is a rule identifier. Libraries may write it as a JSON number (281)
// or a string ("281A"); both decode to the same text form.
type ID string

// UnmarshalJSON accepts a JSON string or number.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(strings.TrimSpace(s))
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("rule id must be a string or number: %w", err)
	}
	if i, err := n.Int64(); err == nil {
		*id = ID(strconv.FormatInt(i, 10))
		return nil
	}
	*id = ID(n.String())
	return nil
}

// Alternatives is the aspect field of a library entry: either one aspect
// string or a list of them, tried in order.
type Alternatives []string

// UnmarshalJSON accepts a JSON string or array of strings.
func (a *Alternatives) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = Alternatives{s}
		return nil
	}

	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("aspect must be a string or list of strings: %w", err)
	}
	*a = list
	return nil
}

// Entry is one rule as written in the library, before compilation.
type Entry struct {
	ID         ID              `json:"rule"`
	Name       string          `json:"name"`
	Indication string          `json:"indication"`
	Priority   int             `json:"priority"`
	Condition  json.RawMessage `json:"condition,omitempty"`
	Aspects    Alternatives    `json:"aspect"`
}

// Library is a hardware-agnostic rule set, e.g. one railroad's rule book.
type Library struct {
	RuleSet     string  `json:"rule-set"`
	Source      string  `json:"source"`
	Author      string  `json:"author"`
	DefaultRule ID      `json:"default-rule"`
	Rules       []Entry `json:"rules"`
}

// LoadLibrary reads and decodes a rule library file.
//
// Parameters:
//   - path: Path to a JSON or JSON-with-comments library
//
// Returns:
//   - *Library: The decoded library
//   - error: If the file cannot be read or decoded
func LoadLibrary(path string) (*Library, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from operator config
	if err != nil {
		return nil, fmt.Errorf("reading rule library: %w", err)
	}

	lib, err := ParseLibrary(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return lib, nil
}

// ParseLibrary decodes library bytes. Comments and trailing commas are
// stripped before decoding.
func ParseLibrary(data []byte) (*Library, error) {
	stripped := jsonc.ToJSON(data)

	var lib Library
	if err := json.Unmarshal(stripped, &lib); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidLibrary, err)
	}

	if lib.DefaultRule == "" {
		return nil, ErrNoDefaultRule
	}
	for i, e := range lib.Rules {
		if e.ID == "" {
			return nil, fmt.Errorf("%w: entry %d (%q)", ErrMissingID, i, e.Name)
		}
	}

	return &lib, nil
}
