package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// Measurement names written by SigOS.
const (
	MeasurementRule      = "signal_rule"
	MeasurementExecution = "signal_execution"
)

// RuleSample describes one change of the displayed rule.
type RuleSample struct {
	Host        string
	RuleID      string
	RuleName    string
	Cause       string
	Priority    int
	LedgerDepth int
	ExecutionOK bool
	At          time.Time
}

// RulePoint builds the signal_rule point for s.
//
// Tags (host, rule, cause) are low cardinality: a layout has a handful of
// controllers and a rule library of at most a few hundred entries.
func RulePoint(s RuleSample) *write.Point {
	return write.NewPoint(
		MeasurementRule,
		map[string]string{
			"host":  s.Host,
			"rule":  s.RuleID,
			"cause": s.Cause,
		},
		map[string]interface{}{
			"name":         s.RuleName,
			"priority":     s.Priority,
			"ledger_depth": s.LedgerDepth,
			"execution_ok": s.ExecutionOK,
		},
		s.At,
	)
}

// ExecutionFailurePoint builds the signal_execution point for a rule whose
// aspect was not fully applied.
func ExecutionFailurePoint(host, ruleID, reason string, at time.Time) *write.Point {
	return write.NewPoint(
		MeasurementExecution,
		map[string]string{
			"host": host,
			"rule": ruleID,
		},
		map[string]interface{}{
			"failed": 1,
			"reason": reason,
		},
		at,
	)
}

// WriteRuleTransition records a change of the displayed rule.
//
// The write is non-blocking; data is batched and sent asynchronously.
// A failed execution also writes a signal_execution point.
//
// Example:
//
//	client.WriteRuleTransition(influxdb.RuleSample{
//	    Host: "box-12", RuleID: "300", Priority: 10, LedgerDepth: 2,
//	    ExecutionOK: true, At: time.Now(),
//	})
func (c *Client) WriteRuleTransition(s RuleSample, execErr error) {
	if !c.IsConnected() {
		return
	}
	if s.At.IsZero() {
		s.At = time.Now()
	}

	c.writeAPI.WritePoint(RulePoint(s))
	if execErr != nil {
		c.writeAPI.WritePoint(ExecutionFailurePoint(s.Host, s.RuleID, execErr.Error(), s.At))
	}
}
