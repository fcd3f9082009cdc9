package peer

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nerrad567/sigos-core/internal/infrastructure/mqtt"
	"github.com/nerrad567/sigos-core/internal/signal/arbiter"
	"github.com/nerrad567/sigos-core/internal/signal/rule"
)

// Client is the subset of *mqtt.Client the link uses.
type Client interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
}

// Arbiter is the subset of *arbiter.Arbitrator the link drives.
type Arbiter interface {
	Request(ctx context.Context, idOrName, source string) arbiter.RequestResult
	Release(ctx context.Context, idOrName, source string) arbiter.ReleaseResult
	ReleaseSource(ctx context.Context, source string) (int, arbiter.ReleaseResult)
	ActiveRule() *rule.Definition
}

// Logger defines the logging interface used by the Link.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Link connects one arbitrator to its peers.
type Link struct {
	client Client
	arb    Arbiter
	host   string
	qos    byte
	logger Logger
	now    func() time.Time

	mu          sync.RWMutex
	ctx         context.Context
	lastAspect  []byte
	peerAspects map[string]AspectState
}

// New creates a Link for the controller named host.
func New(client Client, arb Arbiter, host string, qos byte) *Link {
	return &Link{
		client: client,
		arb:    arb,
		host:   host,
		qos:    qos,
		logger: noopLogger{},
		now:    time.Now,

		peerAspects: make(map[string]AspectState),
	}
}

// SetLogger sets the logger for the link.
func (l *Link) SetLogger(logger Logger) {
	l.logger = logger
}

// Start subscribes to this controller's command topic and to every peer's
// status and aspect topics. ctx bounds the arbitrator calls made from message handlers.
func (l *Link) Start(ctx context.Context) error {
	l.mu.Lock()
	l.ctx = ctx
	l.mu.Unlock()

	topics := mqtt.Topics{}
	if err := l.client.Subscribe(topics.Command(l.host), l.qos, l.handleCommand); err != nil {
		return fmt.Errorf("subscribing to commands: %w", err)
	}
	if err := l.client.Subscribe(topics.AllStatus(), l.qos, l.handleStatus); err != nil {
		return fmt.Errorf("subscribing to peer status: %w", err)
	}
	if err := l.client.Subscribe(topics.AllAspects(), l.qos, l.handleAspect); err != nil {
		return fmt.Errorf("subscribing to peer aspects: %w", err)
	}
	l.logger.Info("peer link started", "host", l.host)
	return nil
}

func (l *Link) runCtx() context.Context {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.ctx
}

// Send asks the controller named host to request or release rule on behalf
// of this controller. It returns the command id carried by the ack.
func (l *Link) Send(host, action, ruleID string) (string, error) {
	if l.runCtx() == nil {
		return "", ErrNotStarted
	}
	cmd := Command{ID: uuid.NewString(), Action: action, Rule: ruleID, Source: l.host}
	payload, err := json.Marshal(cmd)
	if err != nil {
		return "", fmt.Errorf("encoding command: %w", err)
	}
	if _, err := parseCommand(payload); err != nil {
		return "", err
	}
	if err := l.client.Publish(mqtt.Topics{}.Command(host), payload, l.qos, false); err != nil {
		return "", fmt.Errorf("sending %s to %s: %w", action, host, err)
	}
	return cmd.ID, nil
}

// handleCommand runs a peer's command and publishes the ack.
func (l *Link) handleCommand(_ string, payload []byte) error {
	ctx := l.runCtx()
	if ctx == nil {
		return ErrNotStarted
	}

	ack := Ack{Timestamp: timestamp(l.now())}
	cmd, err := parseCommand(payload)
	ack.CommandID = cmd.ID
	if err != nil {
		ack.Status = AckError
		ack.Error = err.Error()
		l.logger.Warn("rejected peer command", "error", err)
		return l.publishAck(ack)
	}

	switch cmd.Action {
	case ActionRequest:
		ack.Result = l.arb.Request(ctx, cmd.Rule, cmd.Source).String()
	case ActionRelease:
		ack.Result = l.arb.Release(ctx, cmd.Rule, cmd.Source).String()
	}
	ack.Status = AckOK
	if active := l.arb.ActiveRule(); active != nil {
		ack.ActiveRule = active.ID
	}
	l.logger.Debug("peer command handled",
		"action", cmd.Action, "rule", cmd.Rule, "source", cmd.Source, "result", ack.Result)
	return l.publishAck(ack)
}

func (l *Link) publishAck(ack Ack) error {
	payload, err := json.Marshal(ack)
	if err != nil {
		return fmt.Errorf("encoding ack: %w", err)
	}
	return l.client.Publish(mqtt.Topics{}.Ack(l.host), payload, l.qos, false)
}

// handleStatus releases every request from a peer that went offline.
func (l *Link) handleStatus(topic string, payload []byte) error {
	ctx := l.runCtx()
	if ctx == nil {
		return ErrNotStarted
	}
	host, ok := mqtt.HostFromTopic(topic)
	if !ok || host == l.host {
		return nil
	}

	var status mqtt.StatusMessage
	if err := json.Unmarshal(payload, &status); err != nil {
		return fmt.Errorf("decoding status from %s: %w", host, err)
	}
	if status.Status != mqtt.StatusOffline {
		return nil
	}

	n, res := l.arb.ReleaseSource(ctx, host)
	if n > 0 {
		l.logger.Info("released requests of offline peer", "peer", host, "count", n, "result", res.String())
	}
	return nil
}

// handleAspect records the rule a peer displays. A peer going offline keeps
// its last state; the retained message outlives the controller.
func (l *Link) handleAspect(topic string, payload []byte) error {
	host, ok := mqtt.HostFromTopic(topic)
	if !ok || host == l.host {
		return nil
	}

	var state AspectState
	if err := json.Unmarshal(payload, &state); err != nil {
		return fmt.Errorf("decoding aspect from %s: %w", host, err)
	}

	l.mu.Lock()
	prev, seen := l.peerAspects[host]
	l.peerAspects[host] = state
	l.mu.Unlock()

	if !seen || prev.Rule != state.Rule {
		l.logger.Info("peer aspect changed", "peer", host, "rule", state.Rule, "name", state.Name)
	}
	return nil
}

// PeerAspects returns the last aspect state seen from each peer, keyed by host.
func (l *Link) PeerAspects() map[string]AspectState {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make(map[string]AspectState, len(l.peerAspects))
	for k, v := range l.peerAspects {
		out[k] = v
	}
	return out
}

// OnTransition publishes the new displayed rule as retained state.
func (l *Link) OnTransition(_ context.Context, t arbiter.Transition) {
	if t.To == nil {
		return
	}
	state := AspectState{
		Host:        l.host,
		Rule:        t.To.ID,
		Name:        t.To.Name,
		Indication:  t.To.Indication,
		Priority:    t.To.Priority,
		Source:      t.Source,
		Cause:       t.Cause,
		LedgerDepth: t.LedgerDepth,
		ExecutionOK: t.ExecErr == nil,
		Timestamp:   timestamp(t.At),
	}
	payload, err := json.Marshal(state)
	if err != nil {
		l.logger.Error("encoding aspect state failed", "error", err)
		return
	}
	l.mu.Lock()
	l.lastAspect = payload
	l.mu.Unlock()

	if err := l.client.Publish(mqtt.Topics{}.Aspect(l.host), payload, l.qos, true); err != nil {
		l.logger.Warn("publishing aspect state failed", "rule", state.Rule, "error", err)
	}
}

// Resync republishes the last aspect state. The broker may have lost the
// retained copy while this controller was disconnected.
func (l *Link) Resync() {
	l.mu.RLock()
	payload := l.lastAspect
	l.mu.RUnlock()
	if payload == nil {
		return
	}
	if err := l.client.Publish(mqtt.Topics{}.Aspect(l.host), payload, l.qos, true); err != nil {
		l.logger.Warn("republishing aspect state failed", "error", err)
	}
}
