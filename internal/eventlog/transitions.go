package eventlog

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nerrad567/sigos-core/internal/signal/arbiter"
)

// TransitionRecord is a persisted change of the displayed rule.
type TransitionRecord struct {
	ID          string    `json:"id"`
	FromRule    string    `json:"from_rule,omitempty"`
	ToRule      string    `json:"to_rule"`
	Source      string    `json:"source"`
	Cause       string    `json:"cause"`
	LedgerDepth int       `json:"ledger_depth"`
	ExecError   string    `json:"exec_error,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// TransitionRepository stores arbiter transitions in rule_transitions.
// It implements arbiter.Observer.
type TransitionRepository struct {
	db     *sql.DB
	logger Logger
}

// NewTransitionRepository creates a repository over an open, migrated database.
func NewTransitionRepository(db *sql.DB) *TransitionRepository {
	return &TransitionRepository{db: db, logger: noopLogger{}}
}

// SetLogger sets the logger used to report write failures from OnTransition.
func (r *TransitionRepository) SetLogger(logger Logger) {
	r.logger = logger
}

// OnTransition persists t. A write failure is logged, not propagated.
func (r *TransitionRepository) OnTransition(ctx context.Context, t arbiter.Transition) {
	rec := RecordFromTransition(t)
	if err := r.Create(ctx, &rec); err != nil {
		r.logger.Warn("persisting rule transition failed", "to", rec.ToRule, "error", err)
	}
}

// RecordFromTransition flattens an arbiter transition for storage.
func RecordFromTransition(t arbiter.Transition) TransitionRecord {
	rec := TransitionRecord{
		Source:      t.Source,
		Cause:       t.Cause,
		LedgerDepth: t.LedgerDepth,
		CreatedAt:   t.At.UTC(),
	}
	if t.From != nil {
		rec.FromRule = t.From.ID
	}
	if t.To != nil {
		rec.ToRule = t.To.ID
	}
	if t.ExecErr != nil {
		rec.ExecError = t.ExecErr.Error()
	}
	return rec
}

// Create inserts rec. The ID and CreatedAt are generated if empty.
func (r *TransitionRepository) Create(ctx context.Context, rec *TransitionRecord) error {
	if rec.ID == "" {
		rec.ID = "trn-" + uuid.NewString()[:8]
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO rule_transitions (id, from_rule, to_rule, source, cause, ledger_depth, exec_error, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, nullableString(rec.FromRule), rec.ToRule, rec.Source, rec.Cause,
		rec.LedgerDepth, nullableString(rec.ExecError),
		rec.CreatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("inserting rule transition: %w", err)
	}
	return nil
}

// Recent returns up to limit transitions, most recent first.
func (r *TransitionRepository) Recent(ctx context.Context, limit int) ([]TransitionRecord, error) {
	if limit <= 0 || limit > maxLimit {
		limit = defaultLimit
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, from_rule, to_rule, source, cause, ledger_depth, exec_error, created_at
		 FROM rule_transitions ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying rule transitions: %w", err)
	}
	defer rows.Close()

	records := []TransitionRecord{}
	for rows.Next() {
		var rec TransitionRecord
		var from, execErr sql.NullString
		var createdAt string
		if err := rows.Scan(&rec.ID, &from, &rec.ToRule, &rec.Source, &rec.Cause,
			&rec.LedgerDepth, &execErr, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning rule transition: %w", err)
		}
		rec.FromRule = from.String
		rec.ExecError = execErr.String
		if rec.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rule transitions: %w", err)
	}
	return records, nil
}
