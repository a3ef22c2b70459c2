package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/release-league/internal/domain/jobrun"
	qb "github.com/riskibarqy/release-league/internal/platform/querybuilder"
)

type scoringRunRow struct {
	RunID           string     `db:"run_id"`
	Mode            string     `db:"mode"`
	SlotAt          *time.Time `db:"slot_at"`
	Status          string     `db:"status"`
	Payload         string     `db:"payload"`
	Attempts        int        `db:"attempts"`
	LastError       *string    `db:"last_error"`
	QueuedAt        *time.Time `db:"queued_at"`
	FinishedAt      *time.Time `db:"finished_at"`
	QueuedTraceID   *string    `db:"queued_trace_id"`
	FinishedTraceID *string    `db:"finished_trace_id"`
}

// A queued transition never clears what a finished one wrote, so a late
// re-enqueue of the same slot keeps the outcome.
const scoringRunUpsert = `ON CONFLICT (run_id) DO UPDATE SET
    mode = COALESCE(NULLIF(EXCLUDED.mode, ''), scoring_runs.mode),
    slot_at = COALESCE(EXCLUDED.slot_at, scoring_runs.slot_at),
    payload = CASE WHEN EXCLUDED.payload = '{}'::jsonb THEN scoring_runs.payload ELSE EXCLUDED.payload END,
    status = CASE
        WHEN EXCLUDED.status = 'queued' AND scoring_runs.finished_at IS NOT NULL THEN scoring_runs.status
        ELSE EXCLUDED.status
    END,
    attempts = scoring_runs.attempts + EXCLUDED.attempts,
    last_error = CASE WHEN EXCLUDED.status = 'queued' THEN scoring_runs.last_error ELSE EXCLUDED.last_error END,
    queued_at = COALESCE(scoring_runs.queued_at, EXCLUDED.queued_at),
    finished_at = COALESCE(EXCLUDED.finished_at, scoring_runs.finished_at),
    queued_trace_id = COALESCE(scoring_runs.queued_trace_id, EXCLUDED.queued_trace_id),
    finished_trace_id = COALESCE(EXCLUDED.finished_trace_id, scoring_runs.finished_trace_id),
    updated_at = NOW()`

// ScoringRunLedger implements jobrun.Ledger on the scoring_runs table.
type ScoringRunLedger struct {
	db *sqlx.DB
}

func NewScoringRunLedger(db *sqlx.DB) *ScoringRunLedger {
	return &ScoringRunLedger{db: db}
}

func (l *ScoringRunLedger) Append(ctx context.Context, rec jobrun.Record) error {
	row, err := scoringRunRowFrom(rec)
	if err != nil {
		return err
	}

	query, args, err := qb.InsertModel("scoring_runs", row, scoringRunUpsert)
	if err != nil {
		return fmt.Errorf("build scoring run upsert: %w", err)
	}
	if _, err := l.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("append scoring run run_id=%s status=%s: %w", row.RunID, row.Status, err)
	}
	return nil
}

func scoringRunRowFrom(rec jobrun.Record) (scoringRunRow, error) {
	runID := strings.TrimSpace(rec.RunID)
	if runID == "" {
		return scoringRunRow{}, fmt.Errorf("scoring run id is required")
	}

	payload := "{}"
	if len(rec.Payload) > 0 {
		encoded, err := encodeJSON(rec.Payload)
		if err != nil {
			return scoringRunRow{}, fmt.Errorf("encode scoring run payload: %w", err)
		}
		payload = encoded
	}

	at := rec.At.UTC()
	if rec.At.IsZero() {
		at = time.Now().UTC()
	}

	row := scoringRunRow{
		RunID:   runID,
		Mode:    strings.TrimSpace(rec.Mode),
		Status:  string(rec.Status),
		Payload: payload,
	}
	if !rec.Slot.IsZero() {
		slot := rec.Slot.UTC()
		row.SlotAt = &slot
	}

	if rec.Finished() {
		row.Attempts = 1
		row.FinishedAt = &at
		row.FinishedTraceID = optionalString(rec.TraceID)
		if rec.Status == jobrun.StatusFailed {
			row.LastError = optionalString(rec.Err)
		}
	} else {
		row.QueuedAt = &at
		row.QueuedTraceID = optionalString(rec.TraceID)
		row.LastError = optionalString(rec.Err)
	}
	return row, nil
}
