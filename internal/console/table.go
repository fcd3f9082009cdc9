package console

import (
	"context"
	"strings"
)

// paramWord marks a parameter position in a command pattern.
const paramWord = "$"

// invalidCommand is printed when no pattern matches.
const invalidCommand = "Invalid command"

// Call is the input passed to a command handler.
type Call struct {
	Source string
	Words  []string
	Params []string
}

// Param returns the i-th parameter, or "" when absent.
func (c Call) Param(i int) string {
	if i < 0 || i >= len(c.Params) {
		return ""
	}
	return c.Params[i]
}

// Handler executes a matched command. It returns whether the command
// succeeded and the lines to print.
type Handler func(ctx context.Context, call Call) (ok bool, lines []string)

// Command is one entry of a Table.
type Command struct {
	Words       []string
	Description string
	Handler     Handler
}

// Pattern returns the words joined by spaces.
func (c Command) Pattern() string {
	return strings.Join(c.Words, " ")
}

// match reports whether words fit c and returns the parameter values.
func (c Command) match(words []string) ([]string, bool) {
	if len(words) != len(c.Words) {
		return nil, false
	}
	var params []string
	for i, w := range c.Words {
		if w == paramWord {
			params = append(params, words[i])
			continue
		}
		if !strings.EqualFold(w, words[i]) {
			return nil, false
		}
	}
	return params, true
}

// Table is an ordered command list. It is built once at startup and is
// read-only afterwards, so Exec is safe for concurrent use.
type Table struct {
	commands []Command
}

// NewTable creates an empty command table.
func NewTable() *Table {
	return &Table{}
}

// Register appends a command. pattern is split on whitespace.
// It panics if handler is nil or pattern is empty.
func (t *Table) Register(pattern, description string, handler Handler) {
	if handler == nil {
		panic("console: nil handler for command " + pattern)
	}
	words := strings.Fields(strings.ToLower(pattern))
	if len(words) == 0 {
		panic("console: empty command pattern")
	}
	t.commands = append(t.commands, Command{Words: words, Description: description, Handler: handler})
}

// Commands returns the registered commands in registration order.
func (t *Table) Commands() []Command {
	out := make([]Command, len(t.commands))
	copy(out, t.commands)
	return out
}

// Help returns one "pattern : description" line per command.
func (t *Table) Help() []string {
	lines := make([]string, 0, len(t.commands))
	for _, c := range t.commands {
		lines = append(lines, c.Pattern()+" : "+c.Description)
	}
	return lines
}

// Exec runs the first command matching words.
//
// Returns:
//   - matched: Whether any pattern matched
//   - ok: The handler's result; false when nothing matched
//   - lines: Output to print; "Invalid command" when nothing matched
func (t *Table) Exec(ctx context.Context, source string, words []string) (matched, ok bool, lines []string) {
	for _, c := range t.commands {
		params, hit := c.match(words)
		if !hit {
			continue
		}
		ok, lines = c.Handler(ctx, Call{Source: source, Words: words, Params: params})
		return true, ok, lines
	}
	return false, false, []string{invalidCommand}
}

// Tokenize splits a line on whitespace. Literal words are matched without
// regard to case; parameters keep the case they were typed in, since rule
// names are looked up exactly.
func Tokenize(line string) []string {
	return strings.Fields(line)
}
