package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/release-league/internal/domain/game"
	"github.com/riskibarqy/release-league/internal/domain/jobrun"
	"github.com/riskibarqy/release-league/internal/domain/league"
	"github.com/riskibarqy/release-league/internal/platform/logging"
	"go.opentelemetry.io/otel/trace"
)

const (
	scoringJobName = "scoring"
	scoringJobPath = "/v1/internal/jobs/scoring"
)

type JobQueue interface {
	Enqueue(ctx context.Context, path string, payload any, delay time.Duration, deduplicationID string) error
}

type noopJobQueue struct{}

func (noopJobQueue) Enqueue(_ context.Context, _ string, _ any, _ time.Duration, _ string) error {
	return nil
}

func NewNoopJobQueue() JobQueue {
	return noopJobQueue{}
}

// JobOrchestratorConfig holds the UTC time-of-day offsets of the daily runs.
type JobOrchestratorConfig struct {
	FullRunAt     time.Duration
	SnapshotRunAt time.Duration
}

type ScoringJobInput struct {
	Mode        ScoringMode
	DryRun      bool
	Concurrency int
	Delay       time.Duration
	Date        string
	DispatchID  string
	// Chain enqueues the next run of the same mode after this one.
	Chain bool
}

type ScoringJobResult struct {
	Summary          ScoringRunSummary `json:"summary"`
	LeaguesRefreshed int               `json:"leagues_refreshed"`
	QueuedOperations []string          `json:"queued_operations"`
}

type ScoringRunner interface {
	Run(ctx context.Context, input ScoringRunInput) (ScoringRunSummary, error)
}

type LeagueMaintainer interface {
	RefreshTeamScores(ctx context.Context, leagueID string) (map[string]float64, error)
}

type PhaseSyncer interface {
	SyncCurrentPhase(ctx context.Context, leagueID string) (league.League, error)
}

// JobOrchestratorService runs the daily scoring jobs delivered by the job
// queue and schedules their next occurrence.
type JobOrchestratorService struct {
	leagueRepo   league.Repository
	runner       ScoringRunner
	maintainer   LeagueMaintainer
	phases       PhaseSyncer
	queue        JobQueue
	ledger       jobrun.Ledger
	cfg          JobOrchestratorConfig
	logger       *logging.Logger
	now          func() time.Time
}

func NewJobOrchestratorService(
	leagueRepo league.Repository,
	runner ScoringRunner,
	maintainer LeagueMaintainer,
	phases PhaseSyncer,
	queue JobQueue,
	ledger jobrun.Ledger,
	cfg JobOrchestratorConfig,
	logger *logging.Logger,
) *JobOrchestratorService {
	if queue == nil {
		queue = NewNoopJobQueue()
	}
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.FullRunAt <= 0 || cfg.FullRunAt >= 24*time.Hour {
		cfg.FullRunAt = time.Hour
	}
	if cfg.SnapshotRunAt <= 0 || cfg.SnapshotRunAt >= 24*time.Hour {
		cfg.SnapshotRunAt = 13 * time.Hour
	}

	return &JobOrchestratorService{
		leagueRepo:   leagueRepo,
		runner:       runner,
		maintainer:   maintainer,
		phases:       phases,
		queue:        queue,
		ledger:       ledger,
		cfg:          cfg,
		logger:       logger,
		now:          time.Now,
	}
}

// RunScoringJob runs one scoring pass. A full, non-dry run is followed by
// team score refresh and phase repair for every running league.
func (s *JobOrchestratorService) RunScoringJob(ctx context.Context, input ScoringJobInput) (ScoringJobResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.JobOrchestratorService.RunScoringJob")
	defer span.End()

	mode, err := ParseScoringMode(string(input.Mode))
	if err != nil {
		return ScoringJobResult{}, err
	}
	runInput := ScoringRunInput{
		Mode:        mode,
		DryRun:      input.DryRun,
		Concurrency: input.Concurrency,
		Delay:       input.Delay,
	}
	if strings.TrimSpace(input.Date) != "" {
		day, err := time.Parse(game.DateLayout, strings.TrimSpace(input.Date))
		if err != nil {
			return ScoringJobResult{}, fmt.Errorf("%w: invalid date %q", ErrInvalidInput, input.Date)
		}
		runInput.Date = day
	}

	result := ScoringJobResult{QueuedOperations: make([]string, 0, 1)}
	summary, runErr := s.runner.Run(ctx, runInput)
	result.Summary = summary
	s.recordCompletion(ctx, input.DispatchID, mode, runErr)
	if runErr != nil {
		return result, runErr
	}

	if mode == ScoringModeFull && !input.DryRun {
		refreshed, err := s.maintainLeagues(ctx)
		if err != nil {
			return result, err
		}
		result.LeaguesRefreshed = refreshed
	}

	if input.Chain {
		if err := s.enqueueNext(ctx, mode, s.now().UTC()); err != nil {
			return result, err
		}
		result.QueuedOperations = append(result.QueuedOperations, scoringJobName+":"+string(mode))
	}
	return result, nil
}

// Bootstrap schedules the next full run and the next snapshot run.
func (s *JobOrchestratorService) Bootstrap(ctx context.Context) (ScoringJobResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.JobOrchestratorService.Bootstrap")
	defer span.End()

	now := s.now().UTC()
	result := ScoringJobResult{QueuedOperations: make([]string, 0, 2)}
	for _, mode := range []ScoringMode{ScoringModeFull, ScoringModeCCUSnapshot} {
		if err := s.enqueueNext(ctx, mode, now); err != nil {
			return result, err
		}
		result.QueuedOperations = append(result.QueuedOperations, scoringJobName+":"+string(mode))
	}
	return result, nil
}

func (s *JobOrchestratorService) maintainLeagues(ctx context.Context) (int, error) {
	leagues, err := s.leagueRepo.ListByStatus(ctx, league.StatusDraft, league.StatusActive)
	if err != nil {
		return 0, fmt.Errorf("list leagues for maintenance: %w", err)
	}

	refreshed := 0
	for _, item := range leagues {
		if s.phases != nil {
			if _, err := s.phases.SyncCurrentPhase(ctx, item.ID); err != nil {
				s.logger.WarnContext(ctx, "sync league phase failed", "league_id", item.ID, "error", err)
			}
		}
		if s.maintainer == nil {
			continue
		}
		if _, err := s.maintainer.RefreshTeamScores(ctx, item.ID); err != nil {
			s.logger.WarnContext(ctx, "refresh team scores failed", "league_id", item.ID, "error", err)
			continue
		}
		refreshed++
	}
	return refreshed, nil
}

func (s *JobOrchestratorService) enqueueNext(ctx context.Context, mode ScoringMode, now time.Time) error {
	offset := s.cfg.FullRunAt
	if mode == ScoringModeCCUSnapshot {
		offset = s.cfg.SnapshotRunAt
	}
	slot := nextDailySlot(now, offset)
	runID := scoringRunID(mode, slot)
	payload := map[string]any{
		"mode":        string(mode),
		"dispatch_id": runID,
		"chain":       true,
	}

	rec := jobrun.Record{
		RunID:   runID,
		Mode:    string(mode),
		Slot:    slot,
		Status:  jobrun.StatusQueued,
		Payload: payload,
		At:      now,
	}
	err := s.queue.Enqueue(ctx, scoringJobPath, payload, slot.Sub(now), runID)
	if err != nil {
		rec.Status = jobrun.StatusRejected
		rec.Err = err.Error()
	}
	s.appendRun(ctx, rec)
	if err != nil {
		return fmt.Errorf("enqueue scoring mode=%s: %w", mode, err)
	}
	return nil
}

func (s *JobOrchestratorService) recordCompletion(ctx context.Context, runID string, mode ScoringMode, runErr error) {
	rec := jobrun.Record{RunID: runID, Mode: string(mode), Status: jobrun.StatusSucceeded}
	if runErr != nil {
		rec.Status = jobrun.StatusFailed
		rec.Err = runErr.Error()
	}
	s.appendRun(ctx, rec)
}

// nextDailySlot returns the first instant strictly after now that sits at
// offset past a UTC midnight.
func nextDailySlot(now time.Time, offset time.Duration) time.Time {
	now = now.UTC()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	at := midnight.Add(offset)
	if !at.After(now) {
		at = midnight.AddDate(0, 0, 1).Add(offset)
	}
	return at
}

// scoringRunID doubles as the queue deduplication id, so it is stable per
// mode and hour and only uses characters QStash accepts.
func scoringRunID(mode ScoringMode, slot time.Time) string {
	return "scoring-" + dedupSafe(string(mode)) + "-" + slot.UTC().Truncate(time.Hour).Format("20060102T150405Z")
}

func dedupSafe(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "unknown"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			return r
		}
		return '-'
	}, value)
}

// appendRun is best effort; a ledger outage must not fail the run itself.
func (s *JobOrchestratorService) appendRun(ctx context.Context, rec jobrun.Record) {
	if s.ledger == nil || strings.TrimSpace(rec.RunID) == "" {
		return
	}
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		rec.TraceID = sc.TraceID().String()
	}
	if rec.At.IsZero() {
		rec.At = s.now().UTC()
	}
	if err := s.ledger.Append(ctx, rec); err != nil {
		s.logger.WarnContext(ctx, "append scoring run failed",
			"run_id", rec.RunID,
			"status", rec.Status,
			"error", err,
		)
	}
}
