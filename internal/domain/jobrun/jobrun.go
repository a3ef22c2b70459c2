// Package jobrun records queued scoring runs so an operator can tell a run
// that never arrived from one that arrived and failed.
package jobrun

import (
	"context"
	"time"
)

type Status string

const (
	StatusQueued    Status = "queued"
	StatusRejected  Status = "rejected"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// StatusRejected means the job queue refused the message; the run never
// started.

// Record is one transition of a run, keyed by the deduplication id the job
// queue was given. Mode, Slot and Payload are only known when queueing and
// may be empty on later transitions.
type Record struct {
	RunID   string
	Mode    string
	Slot    time.Time
	Status  Status
	Payload map[string]any
	Err     string
	At      time.Time
	TraceID string
}

// Finished reports whether the run has reached a terminal state.
func (r Record) Finished() bool {
	return r.Status == StatusSucceeded || r.Status == StatusFailed
}

type Ledger interface {
	Append(ctx context.Context, rec Record) error
}
