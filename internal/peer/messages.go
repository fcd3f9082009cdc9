package peer

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Command actions.
const (
	ActionRequest = "request"
	ActionRelease = "release"
)

// Ack statuses.
const (
	AckOK    = "ok"
	AckError = "error"
)

// Command is sent to sigos/<host>/command.
type Command struct {
	ID     string `json:"id"`
	Action string `json:"action"`
	Rule   string `json:"rule"`
	Source string `json:"source"`
}

// Ack answers a Command on sigos/<host>/ack.
type Ack struct {
	CommandID  string `json:"command_id"`
	Status     string `json:"status"`
	Result     string `json:"result,omitempty"`
	ActiveRule string `json:"active_rule,omitempty"`
	Error      string `json:"error,omitempty"`
	Timestamp  string `json:"timestamp"`
}

// AspectState is retained on sigos/<host>/aspect.
type AspectState struct {
	Host        string `json:"host"`
	Rule        string `json:"rule"`
	Name        string `json:"name"`
	Indication  string `json:"indication,omitempty"`
	Priority    int    `json:"priority"`
	Source      string `json:"source"`
	Cause       string `json:"cause"`
	LedgerDepth int    `json:"ledger_depth"`
	ExecutionOK bool   `json:"execution_ok"`
	Timestamp   string `json:"timestamp"`
}

// parseCommand decodes and validates a command payload.
func parseCommand(payload []byte) (Command, error) {
	var cmd Command
	if err := json.Unmarshal(payload, &cmd); err != nil {
		return cmd, fmt.Errorf("%w: %w", ErrInvalidCommand, err)
	}
	cmd.Action = strings.ToLower(strings.TrimSpace(cmd.Action))
	cmd.Rule = strings.TrimSpace(cmd.Rule)
	cmd.Source = strings.TrimSpace(cmd.Source)

	switch {
	case cmd.Action != ActionRequest && cmd.Action != ActionRelease:
		return cmd, fmt.Errorf("%w: action %q", ErrInvalidCommand, cmd.Action)
	case cmd.Rule == "":
		return cmd, fmt.Errorf("%w: rule is required", ErrInvalidCommand)
	case cmd.Source == "":
		return cmd, fmt.Errorf("%w: source is required", ErrInvalidCommand)
	}
	return cmd, nil
}

func timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
