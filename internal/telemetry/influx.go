package telemetry

import (
	"context"

	"github.com/nerrad567/sigos-core/internal/infrastructure/influxdb"
	"github.com/nerrad567/sigos-core/internal/signal/arbiter"
)

// RuleWriter is the subset of *influxdb.Client the recorder uses.
type RuleWriter interface {
	WriteRuleTransition(s influxdb.RuleSample, execErr error)
}

// InfluxRecorder writes a signal_rule point per transition.
type InfluxRecorder struct {
	w    RuleWriter
	host string
}

// NewInfluxRecorder creates a recorder tagging points with host.
func NewInfluxRecorder(w RuleWriter, host string) *InfluxRecorder {
	return &InfluxRecorder{w: w, host: host}
}

// OnTransition writes the transition. Writes are batched by the client.
func (r *InfluxRecorder) OnTransition(_ context.Context, t arbiter.Transition) {
	if t.To == nil {
		return
	}
	r.w.WriteRuleTransition(influxdb.RuleSample{
		Host:        r.host,
		RuleID:      t.To.ID,
		RuleName:    t.To.Name,
		Cause:       t.Cause,
		Priority:    t.To.Priority,
		LedgerDepth: t.LedgerDepth,
		ExecutionOK: t.ExecErr == nil,
		At:          t.At,
	}, t.ExecErr)
}
