package console

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/nerrad567/sigos-core/internal/eventlog"
	"github.com/nerrad567/sigos-core/internal/signal/arbiter"
	"github.com/nerrad567/sigos-core/internal/signal/rule"
)

// Arbiter is the part of *arbiter.Arbitrator the console drives.
type Arbiter interface {
	Request(ctx context.Context, idOrName, source string) arbiter.RequestResult
	Release(ctx context.Context, idOrName, source string) arbiter.ReleaseResult
	ReleaseAll(ctx context.Context, idOrName, source string) (int, arbiter.ReleaseResult)
	ActiveRule() *rule.Definition
	Active() (arbiter.Entry, bool)
	Requests() []arbiter.Entry
	SupportedRules() []*rule.Definition
	DefaultRule() *rule.Definition
}

// EventLog is the part of *eventlog.Log the console reads.
type EventLog interface {
	Entries() []eventlog.Entry
	Entry(i int) (eventlog.Entry, error)
}

// NewSignalTable builds the standard command table for one signal.
func NewSignalTable(arb Arbiter, log EventLog) *Table {
	t := NewTable()
	c := &signalCommands{arb: arb, log: log, table: t}

	t.Register("help", "Print this help text", c.help)
	t.Register("request $", "Request a rule by id or name", c.request)
	t.Register("release $", "Release your request for a rule", c.release)
	t.Register("release all $", "Release a rule for every source", c.releaseAll)
	t.Register("active", "Show the displayed rule", c.active)
	t.Register("requests", "List outstanding requests, active last", c.requests)
	t.Register("rules", "List the rules this signal supports", c.rules)
	t.Register("log", "Show the event log, oldest first", c.logAll)
	t.Register("log $", "Show log entry n, 0 is the newest", c.logEntry)
	return t
}

type signalCommands struct {
	arb   Arbiter
	log   EventLog
	table *Table
}

func (c *signalCommands) help(context.Context, Call) (bool, []string) {
	return true, c.table.Help()
}

func (c *signalCommands) request(ctx context.Context, call Call) (bool, []string) {
	res := c.arb.Request(ctx, call.Param(0), call.Source)
	ok := res == arbiter.RequestActivated || res == arbiter.RequestUnchanged
	return ok, []string{fmt.Sprintf("request %s: %s, active %s", call.Param(0), res, c.arb.ActiveRule())}
}

func (c *signalCommands) release(ctx context.Context, call Call) (bool, []string) {
	res := c.arb.Release(ctx, call.Param(0), call.Source)
	ok := res == arbiter.ReleaseChanged || res == arbiter.ReleaseUnchanged
	return ok, []string{fmt.Sprintf("release %s: %s, active %s", call.Param(0), res, c.arb.ActiveRule())}
}

func (c *signalCommands) releaseAll(ctx context.Context, call Call) (bool, []string) {
	n, res := c.arb.ReleaseAll(ctx, call.Param(0), call.Source)
	ok := res == arbiter.ReleaseChanged || res == arbiter.ReleaseUnchanged
	return ok, []string{fmt.Sprintf("release all %s: %s, %d removed, active %s", call.Param(0), res, n, c.arb.ActiveRule())}
}

func (c *signalCommands) active(context.Context, Call) (bool, []string) {
	e, ok := c.arb.Active()
	if !ok {
		return false, []string{"no active rule"}
	}
	return true, []string{
		fmt.Sprintf("%s (priority %d)", e.Rule, e.Rule.Priority),
		"aspect: " + e.Rule.Aspect.String(),
		"requested by " + e.Source + " at " + e.AdmittedAt.Format(time.RFC3339),
	}
}

func (c *signalCommands) requests(context.Context, Call) (bool, []string) {
	entries := c.arb.Requests()
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, fmt.Sprintf("%3d  %-24s %s", e.Rule.Priority, e.Rule, e.Source))
	}
	return true, lines
}

func (c *signalCommands) rules(context.Context, Call) (bool, []string) {
	def := c.arb.DefaultRule()
	defs := c.arb.SupportedRules()
	lines := make([]string, 0, len(defs))
	for _, d := range defs {
		marker := " "
		if d == def {
			marker = "*"
		}
		lines = append(lines, fmt.Sprintf("%s %3d  %-24s %s", marker, d.Priority, d, d.Aspect))
	}
	return true, lines
}

func (c *signalCommands) logAll(context.Context, Call) (bool, []string) {
	entries := c.log.Entries()
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, formatEntry(e))
	}
	return true, lines
}

func (c *signalCommands) logEntry(_ context.Context, call Call) (bool, []string) {
	i, err := strconv.Atoi(call.Param(0))
	if err != nil {
		return false, []string{"log index must be a number"}
	}
	e, err := c.log.Entry(i)
	if err != nil {
		return false, []string{err.Error()}
	}
	return true, []string{formatEntry(e)}
}

func formatEntry(e eventlog.Entry) string {
	return e.CreatedAt.Format(time.RFC3339) + " " + e.Source + ": " + e.Message
}
