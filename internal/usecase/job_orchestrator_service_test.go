package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/riskibarqy/release-league/internal/domain/jobrun"
)

func TestScoringRunID_IsQStashSafe(t *testing.T) {
	t.Parallel()

	at := time.Date(2026, time.February, 25, 4, 25, 42, 0, time.UTC)
	got := scoringRunID("ccu:snapshot 1", at)

	if strings.Contains(got, ":") {
		t.Fatalf("run id must not contain colon, got=%q", got)
	}
	if want := "scoring-ccu-snapshot-1-20260225T040000Z"; got != want {
		t.Fatalf("unexpected run id: got=%q want=%q", got, want)
	}
	if got := dedupSafe(" \t "); got != "unknown" {
		t.Fatalf("unexpected empty fallback: got=%q", got)
	}
}

func TestNextDailySlot(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{
			name: "later today",
			now:  time.Date(2026, time.March, 1, 0, 15, 0, 0, time.UTC),
			want: time.Date(2026, time.March, 1, 1, 0, 0, 0, time.UTC),
		},
		{
			name: "exactly on slot rolls over",
			now:  time.Date(2026, time.March, 1, 1, 0, 0, 0, time.UTC),
			want: time.Date(2026, time.March, 2, 1, 0, 0, 0, time.UTC),
		},
		{
			name: "after slot rolls over",
			now:  time.Date(2026, time.March, 1, 22, 0, 0, 0, time.UTC),
			want: time.Date(2026, time.March, 2, 1, 0, 0, 0, time.UTC),
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := nextDailySlot(tc.now, time.Hour); !got.Equal(tc.want) {
				t.Fatalf("unexpected slot: got=%s want=%s", got, tc.want)
			}
		})
	}
}

type stubScoringRunner struct {
	inputs []ScoringRunInput
	err    error
}

func (s *stubScoringRunner) Run(_ context.Context, input ScoringRunInput) (ScoringRunSummary, error) {
	s.inputs = append(s.inputs, input)
	return ScoringRunSummary{Mode: string(input.Mode), Processed: 2}, s.err
}

type recordedEnqueue struct {
	path    string
	delay   time.Duration
	dedupID string
}

type stubJobQueue struct {
	calls []recordedEnqueue
}

func (q *stubJobQueue) Enqueue(_ context.Context, path string, _ any, delay time.Duration, dedupID string) error {
	q.calls = append(q.calls, recordedEnqueue{path: path, delay: delay, dedupID: dedupID})
	return nil
}

func TestJobOrchestratorService_RunScoringJobChainsNextRun(t *testing.T) {
	t.Parallel()

	runner := &stubScoringRunner{}
	queue := &stubJobQueue{}
	svc := NewJobOrchestratorService(newTestLeagueRepo(), runner, nil, nil, queue, nil, JobOrchestratorConfig{}, nil)
	svc.now = func() time.Time { return time.Date(2026, time.March, 1, 1, 5, 0, 0, time.UTC) }

	result, err := svc.RunScoringJob(context.Background(), ScoringJobInput{Mode: ScoringModeFull, Date: "2026-03-01", Chain: true})
	if err != nil {
		t.Fatalf("run scoring job: %v", err)
	}
	if result.Summary.Processed != 2 {
		t.Fatalf("unexpected processed: got=%d want=%d", result.Summary.Processed, 2)
	}
	if len(runner.inputs) != 1 || runner.inputs[0].Date.Format("2006-01-02") != "2026-03-01" {
		t.Fatalf("unexpected runner input: %+v", runner.inputs)
	}
	if len(queue.calls) != 1 {
		t.Fatalf("unexpected enqueue count: got=%d want=%d", len(queue.calls), 1)
	}
	if queue.calls[0].path != scoringJobPath {
		t.Fatalf("unexpected path: got=%s want=%s", queue.calls[0].path, scoringJobPath)
	}
	if want := 23*time.Hour + 55*time.Minute; queue.calls[0].delay != want {
		t.Fatalf("unexpected delay: got=%s want=%s", queue.calls[0].delay, want)
	}
}

func TestJobOrchestratorService_RunScoringJobFailureSkipsChain(t *testing.T) {
	t.Parallel()

	runner := &stubScoringRunner{err: ErrPersistenceConflict}
	queue := &stubJobQueue{}
	svc := NewJobOrchestratorService(newTestLeagueRepo(), runner, nil, nil, queue, nil, JobOrchestratorConfig{}, nil)

	_, err := svc.RunScoringJob(context.Background(), ScoringJobInput{Mode: ScoringModeFull, Chain: true})
	if !errors.Is(err, ErrPersistenceConflict) {
		t.Fatalf("expected ErrPersistenceConflict, got %v", err)
	}
	if len(queue.calls) != 0 {
		t.Fatalf("failed run must not chain, got %d enqueues", len(queue.calls))
	}
}

func TestJobOrchestratorService_RejectsUnknownMode(t *testing.T) {
	t.Parallel()

	svc := NewJobOrchestratorService(newTestLeagueRepo(), &stubScoringRunner{}, nil, nil, nil, nil, JobOrchestratorConfig{}, nil)
	_, err := svc.RunScoringJob(context.Background(), ScoringJobInput{Mode: "hourly"})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestJobOrchestratorService_BootstrapQueuesBothModes(t *testing.T) {
	t.Parallel()

	queue := &stubJobQueue{}
	svc := NewJobOrchestratorService(newTestLeagueRepo(), &stubScoringRunner{}, nil, nil, queue, nil, JobOrchestratorConfig{}, nil)
	svc.now = func() time.Time { return time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC) }

	result, err := svc.Bootstrap(context.Background())
	if err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	if len(result.QueuedOperations) != 2 || len(queue.calls) != 2 {
		t.Fatalf("unexpected queued operations: %v", result.QueuedOperations)
	}
	if queue.calls[0].dedupID == queue.calls[1].dedupID {
		t.Fatalf("modes must not share a dedup id: %s", queue.calls[0].dedupID)
	}
	if want := time.Hour; queue.calls[1].delay != want {
		t.Fatalf("unexpected snapshot delay: got=%s want=%s", queue.calls[1].delay, want)
	}
}

type stubLedger struct {
	records []jobrun.Record
	err     error
}

func (l *stubLedger) Append(_ context.Context, rec jobrun.Record) error {
	l.records = append(l.records, rec)
	return l.err
}

type failingJobQueue struct{}

func (failingJobQueue) Enqueue(context.Context, string, any, time.Duration, string) error {
	return errors.New("qstash 401")
}

func TestJobOrchestratorService_LedgerTracksRunLifecycle(t *testing.T) {
	t.Parallel()

	ledger := &stubLedger{}
	svc := NewJobOrchestratorService(newTestLeagueRepo(), &stubScoringRunner{}, nil, nil, &stubJobQueue{}, ledger, JobOrchestratorConfig{}, nil)
	svc.now = func() time.Time { return time.Date(2026, time.March, 1, 1, 5, 0, 0, time.UTC) }

	_, err := svc.RunScoringJob(context.Background(), ScoringJobInput{
		Mode:       ScoringModeFull,
		DispatchID: "scoring-full-20260301T010000Z",
		Chain:      true,
	})
	if err != nil {
		t.Fatalf("run scoring job: %v", err)
	}

	if len(ledger.records) != 2 {
		t.Fatalf("expected completion and next queue records, got %+v", ledger.records)
	}
	done, next := ledger.records[0], ledger.records[1]
	if done.RunID != "scoring-full-20260301T010000Z" || done.Status != jobrun.StatusSucceeded {
		t.Fatalf("unexpected completion record: %+v", done)
	}
	if next.Status != jobrun.StatusQueued || next.RunID != "scoring-full-20260302T010000Z" {
		t.Fatalf("unexpected queue record: %+v", next)
	}
	if !next.Slot.Equal(time.Date(2026, time.March, 2, 1, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected slot: %s", next.Slot)
	}
}

func TestJobOrchestratorService_RejectedEnqueueIsRecorded(t *testing.T) {
	t.Parallel()

	ledger := &stubLedger{err: errors.New("ledger down")}
	svc := NewJobOrchestratorService(newTestLeagueRepo(), &stubScoringRunner{}, nil, nil, failingJobQueue{}, ledger, JobOrchestratorConfig{}, nil)

	if _, err := svc.Bootstrap(context.Background()); err == nil {
		t.Fatalf("expected bootstrap to surface the queue error")
	}
	if len(ledger.records) != 1 || ledger.records[0].Status != jobrun.StatusRejected || ledger.records[0].Err != "qstash 401" {
		t.Fatalf("unexpected ledger records: %+v", ledger.records)
	}
}
