package postgres

import (
	"testing"
	"time"

	"github.com/riskibarqy/release-league/internal/domain/jobrun"
)

func TestScoringRunRowFrom_Queued(t *testing.T) {
	t.Parallel()

	slot := time.Date(2026, time.March, 2, 1, 0, 0, 0, time.UTC)
	row, err := scoringRunRowFrom(jobrun.Record{
		RunID:   " scoring-full-20260302T010000Z ",
		Mode:    "full",
		Slot:    slot,
		Status:  jobrun.StatusQueued,
		Payload: map[string]any{"mode": "full", "chain": true},
		At:      slot.Add(-time.Hour),
		TraceID: "0af7651916cd43dd8448eb211c80319c",
	})
	if err != nil {
		t.Fatalf("map queued record: %v", err)
	}
	if row.RunID != "scoring-full-20260302T010000Z" {
		t.Fatalf("run id was not trimmed: %q", row.RunID)
	}
	if row.Attempts != 0 || row.FinishedAt != nil || row.QueuedAt == nil {
		t.Fatalf("queued record must only stamp queued_at: %+v", row)
	}
	if row.SlotAt == nil || !row.SlotAt.Equal(slot) {
		t.Fatalf("unexpected slot: %v", row.SlotAt)
	}
	if row.Payload == "{}" {
		t.Fatalf("payload was dropped")
	}
}

func TestScoringRunRowFrom_Finished(t *testing.T) {
	t.Parallel()

	row, err := scoringRunRowFrom(jobrun.Record{RunID: "r1", Status: jobrun.StatusFailed, Err: "steam 503"})
	if err != nil {
		t.Fatalf("map failed record: %v", err)
	}
	if row.Attempts != 1 || row.FinishedAt == nil || row.QueuedAt != nil {
		t.Fatalf("failed record must count an attempt and stamp finished_at: %+v", row)
	}
	if row.LastError == nil || *row.LastError != "steam 503" {
		t.Fatalf("unexpected last error: %v", row.LastError)
	}
	if row.SlotAt != nil || row.Payload != "{}" {
		t.Fatalf("unknown slot and payload must stay empty: %+v", row)
	}

	row, err = scoringRunRowFrom(jobrun.Record{RunID: "r1", Status: jobrun.StatusSucceeded, Err: "ignored"})
	if err != nil {
		t.Fatalf("map succeeded record: %v", err)
	}
	if row.LastError != nil {
		t.Fatalf("success must not carry an error")
	}
}

func TestScoringRunRowFrom_Rejected(t *testing.T) {
	t.Parallel()

	row, err := scoringRunRowFrom(jobrun.Record{RunID: "r2", Status: jobrun.StatusRejected, Err: "qstash 401"})
	if err != nil {
		t.Fatalf("map rejected record: %v", err)
	}
	if row.Attempts != 0 || row.FinishedAt != nil {
		t.Fatalf("rejected run never started: %+v", row)
	}
	if row.LastError == nil || *row.LastError != "qstash 401" {
		t.Fatalf("unexpected last error: %v", row.LastError)
	}

	if _, err := scoringRunRowFrom(jobrun.Record{Status: jobrun.StatusQueued}); err == nil {
		t.Fatalf("expected error for empty run id")
	}
}
