package usecase

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/release-league/internal/domain/game"
	"github.com/riskibarqy/release-league/internal/domain/gamescore"
	"github.com/riskibarqy/release-league/internal/domain/league"
	"github.com/riskibarqy/release-league/internal/domain/leaguescoring"
	"github.com/riskibarqy/release-league/internal/domain/team"
	"github.com/riskibarqy/release-league/internal/platform/logging"
	"github.com/riskibarqy/release-league/internal/platform/resilience"
	"go.opentelemetry.io/otel/attribute"
)

// TelemetryProvider reads storefront popularity signals. Implementations wrap
// ErrRateLimited, ErrUpstreamUnavailable and ErrDelisted.
type TelemetryProvider interface {
	FetchTelemetry(ctx context.Context, appID string) (gamescore.Telemetry, error)
	FetchCCU(ctx context.Context, appID string) (int64, error)
}

type ScoringMode string

const (
	ScoringModeFull        ScoringMode = "full"
	ScoringModeCCUSnapshot ScoringMode = "ccu_snapshot"
)

func ParseScoringMode(raw string) (ScoringMode, error) {
	switch ScoringMode(raw) {
	case "", ScoringModeFull:
		return ScoringModeFull, nil
	case ScoringModeCCUSnapshot:
		return ScoringModeCCUSnapshot, nil
	}
	return "", fmt.Errorf("%w: unknown scoring mode %q", ErrInvalidInput, raw)
}

type ScoringEngineConfig struct {
	Concurrency int
	Delay       time.Duration
	BatchSize   int
	Fetch       resilience.RetryConfig
	Commit      resilience.RetryConfig
}

func DefaultScoringEngineConfig() ScoringEngineConfig {
	return ScoringEngineConfig{
		Concurrency: 3,
		Delay:       1500 * time.Millisecond,
		BatchSize:   200,
		Fetch:       resilience.DefaultRetryConfig(),
		Commit: resilience.RetryConfig{
			MaxAttempts:     5,
			InitialInterval: time.Second,
			MaxInterval:     30 * time.Second,
			Multiplier:      2,
		},
	}
}

type ScoringRunInput struct {
	Mode        ScoringMode
	DryRun      bool
	Concurrency int
	Delay       time.Duration
	// Date overrides the scoring day. Zero means today.
	Date time.Time
}

type ScoringRunSummary struct {
	Mode                string    `json:"mode"`
	Date                string    `json:"date"`
	DryRun              bool      `json:"dry_run"`
	Processed           int       `json:"processed"`
	Skipped             int       `json:"skipped"`
	Failed              int       `json:"failed"`
	Delisted            int       `json:"delisted"`
	TotalPoints         float64   `json:"total_points"`
	MilestoneBonusTotal float64   `json:"milestone_bonus_total"`
	BreakoutBonusTotal  float64   `json:"breakout_bonus_total"`
	BombThreshold       float64   `json:"bomb_threshold"`
	TotalBombDamage     float64   `json:"total_bomb_damage"`
	LeaguesProcessed    int       `json:"leagues_processed"`
	StartedAt           time.Time `json:"started_at"`
	FinishedAt          time.Time `json:"finished_at"`
}

type gameOutcomeStatus string

const (
	gameOutcomeScored   gameOutcomeStatus = "scored"
	gameOutcomeExisting gameOutcomeStatus = "existing"
	gameOutcomeSkipped  gameOutcomeStatus = "skipped"
	gameOutcomeFailed   gameOutcomeStatus = "failed"
	gameOutcomeDelisted gameOutcomeStatus = "delisted"
)

type gameOutcome struct {
	gameID string
	status gameOutcomeStatus
	points float64
	update *gamescore.Update
}

// ScoringEngine turns daily telemetry into idempotent point awards and then
// settles bomb damage per league.
type ScoringEngine struct {
	catalog       game.Catalog
	scores        gamescore.Repository
	leagueRepo    league.Repository
	teamRepo      team.Repository
	leagueScoring leaguescoring.Repository
	telemetry     TelemetryProvider
	cfg           ScoringEngineConfig
	fetchRetry    *resilience.Retrier
	commitRetry   *resilience.Retrier
	clock         clockwork.Clock
	logger        *logging.Logger
}

func NewScoringEngine(
	catalog game.Catalog,
	scores gamescore.Repository,
	leagueRepo league.Repository,
	teamRepo team.Repository,
	leagueScoring leaguescoring.Repository,
	telemetry TelemetryProvider,
	cfg ScoringEngineConfig,
	clock clockwork.Clock,
	logger *logging.Logger,
) *ScoringEngine {
	defaults := DefaultScoringEngineConfig()
	if cfg.Concurrency < 1 {
		cfg.Concurrency = defaults.Concurrency
	}
	if cfg.Delay < 0 {
		cfg.Delay = 0
	}
	if cfg.BatchSize < 1 {
		cfg.BatchSize = defaults.BatchSize
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = logging.Default()
	}

	return &ScoringEngine{
		catalog:       catalog,
		scores:        scores,
		leagueRepo:    leagueRepo,
		teamRepo:      teamRepo,
		leagueScoring: leagueScoring,
		telemetry:     telemetry,
		cfg:           cfg,
		fetchRetry:    resilience.NewRetrier(cfg.Fetch, isTransientTelemetryError, clock),
		commitRetry:   resilience.NewRetrier(cfg.Commit, nil, clock),
		clock:         clock,
		logger:        logger,
	}
}

func isTransientTelemetryError(err error) bool {
	return errors.Is(err, ErrRateLimited) || errors.Is(err, ErrUpstreamUnavailable)
}

// Run executes one scoring run. Per-game failures are counted, never fatal.
// A batch that cannot be committed after retries aborts the run with
// ErrPersistenceConflict; batches committed before it stay.
func (e *ScoringEngine) Run(ctx context.Context, input ScoringRunInput) (ScoringRunSummary, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoringEngine.Run",
		attribute.String("release_league.scoring_mode", string(input.Mode)),
		attribute.Bool("release_league.dry_run", input.DryRun),
	)
	defer span.End()

	if input.Mode == "" {
		input.Mode = ScoringModeFull
	}
	if input.Concurrency < 1 {
		input.Concurrency = e.cfg.Concurrency
	}
	if input.Delay <= 0 {
		input.Delay = e.cfg.Delay
	}
	day := input.Date
	if day.IsZero() {
		day = e.clock.Now()
	}
	day = day.UTC()
	today := day.Format(game.DateLayout)

	summary := ScoringRunSummary{
		Mode:      string(input.Mode),
		Date:      today,
		DryRun:    input.DryRun,
		StartedAt: e.clock.Now().UTC(),
	}

	games, err := e.catalog.ListScorable(ctx)
	if err != nil {
		return summary, fmt.Errorf("list scorable games: %w", err)
	}

	eligible := make([]game.Game, 0, len(games))
	for _, g := range games {
		if !g.Scorable(day) {
			summary.Skipped++
			continue
		}
		eligible = append(eligible, g)
	}

	e.logger.InfoContext(ctx, "scoring run started",
		"mode", input.Mode,
		"date", today,
		"dry_run", input.DryRun,
		"games", len(eligible),
		"concurrency", input.Concurrency,
		"delay", input.Delay.String(),
	)

	task := func(ctx context.Context, g game.Game) gameOutcome {
		return e.scoreGame(ctx, g, day, today)
	}
	if input.Mode == ScoringModeCCUSnapshot {
		task = func(ctx context.Context, g game.Game) gameOutcome {
			return e.sampleCCU(ctx, g, today, input.DryRun)
		}
	}

	outcomes, err := e.runPool(ctx, eligible, input.Concurrency, input.Delay, task)
	if err != nil {
		return summary, err
	}

	pointsByGame := make(map[string]float64, len(outcomes))
	updates := make([]gamescore.Update, 0, len(outcomes))
	delisted := make([]string, 0)
	for _, o := range outcomes {
		switch o.status {
		case gameOutcomeScored:
			summary.Processed++
			pointsByGame[o.gameID] = o.points
			if o.update != nil {
				updates = append(updates, *o.update)
				summary.TotalPoints += o.update.Entry.Points
				summary.MilestoneBonusTotal += o.update.Entry.MilestoneBonus
				summary.BreakoutBonusTotal += o.update.Entry.BreakoutBonus
			}
		case gameOutcomeExisting:
			summary.Skipped++
			pointsByGame[o.gameID] = o.points
		case gameOutcomeSkipped:
			summary.Skipped++
		case gameOutcomeDelisted:
			summary.Delisted++
			delisted = append(delisted, o.gameID)
		default:
			summary.Failed++
		}
	}

	if input.Mode == ScoringModeFull {
		if !input.DryRun {
			if err := e.commitUpdates(ctx, updates); err != nil {
				summary.FinishedAt = e.clock.Now().UTC()
				return summary, err
			}
		}
		if err := e.settleLeagues(ctx, today, pointsByGame, delisted, input.DryRun, &summary); err != nil {
			summary.FinishedAt = e.clock.Now().UTC()
			return summary, err
		}
	}

	summary.FinishedAt = e.clock.Now().UTC()
	e.logger.InfoContext(ctx, "scoring run finished",
		"mode", input.Mode,
		"date", today,
		"processed", summary.Processed,
		"skipped", summary.Skipped,
		"failed", summary.Failed,
		"delisted", summary.Delisted,
		"total_points", summary.TotalPoints,
		"leagues_processed", summary.LeaguesProcessed,
	)
	return summary, nil
}

// runPool scores games on a bounded ants pool. Consecutive task starts are at
// least delay apart. Cancelling ctx stops new games from being started.
func (e *ScoringEngine) runPool(ctx context.Context, games []game.Game, workers int, delay time.Duration, task func(context.Context, game.Game) gameOutcome) ([]gameOutcome, error) {
	if len(games) == 0 {
		return nil, nil
	}

	pool, err := ants.NewPool(min(workers, len(games)))
	if err != nil {
		return nil, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	results := make(chan gameOutcome, len(games))
	var submitted atomic.Int32
	var wg sync.WaitGroup

submit:
	for i, g := range games {
		if i > 0 && delay > 0 {
			select {
			case <-ctx.Done():
				break submit
			case <-e.clock.After(delay):
			}
		}
		if ctx.Err() != nil {
			break
		}

		wg.Add(1)
		if err := pool.Submit(func() {
			defer wg.Done()
			results <- task(ctx, g)
		}); err != nil {
			wg.Done()
			return nil, fmt.Errorf("submit scoring task: %w", err)
		}
		submitted.Add(1)
	}

	wg.Wait()
	close(results)

	out := make([]gameOutcome, 0, submitted.Load())
	for o := range results {
		out = append(out, o)
	}
	if ctx.Err() != nil {
		e.logger.WarnContext(ctx, "scoring run cancelled", "started", len(out), "total", len(games))
	}
	return out, nil
}

func (e *ScoringEngine) scoreGame(ctx context.Context, g game.Game, day time.Time, today string) gameOutcome {
	out := gameOutcome{gameID: g.ID}

	history, err := e.scores.ListHistory(ctx, g.ID)
	if err != nil {
		e.logger.WarnContext(ctx, "load game history failed", "game_id", g.ID, "error", err)
		out.status = gameOutcomeFailed
		return out
	}

	prior := make([]gamescore.HistoryEntry, 0, len(history))
	for _, h := range history {
		if h.Date == today {
			out.status = gameOutcomeExisting
			out.points = h.Points
			return out
		}
		if h.Date < today {
			prior = append(prior, h)
		}
	}

	var telemetry gamescore.Telemetry
	err = e.fetchRetry.Do(ctx, func(ctx context.Context, attempt int) error {
		t, fetchErr := e.telemetry.FetchTelemetry(ctx, g.SteamAppID)
		if fetchErr != nil {
			if isTransientTelemetryError(fetchErr) {
				e.logger.WarnContext(ctx, "telemetry fetch retrying", "game_id", g.ID, "attempt", attempt, "error", fetchErr)
			}
			return fetchErr
		}
		telemetry = t
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrDelisted) {
			e.logger.WarnContext(ctx, "game delisted", "game_id", g.ID, "app_id", g.SteamAppID)
			out.status = gameOutcomeDelisted
			return out
		}
		e.logger.WarnContext(ctx, "telemetry fetch failed", "game_id", g.ID, "app_id", g.SteamAppID, "error", err)
		out.status = gameOutcomeFailed
		return out
	}

	sample, _, err := e.scores.GetCCUSample(ctx, g.ID, today)
	if err != nil {
		e.logger.WarnContext(ctx, "load ccu sample failed", "game_id", g.ID, "error", err)
	}
	metrics, _, err := e.scores.GetMetrics(ctx, g.ID)
	if err != nil {
		e.logger.WarnContext(ctx, "load game metrics failed", "game_id", g.ID, "error", err)
		out.status = gameOutcomeFailed
		return out
	}

	var previous *gamescore.HistoryEntry
	if len(prior) > 0 {
		previous = &prior[len(prior)-1]
	}
	days, _ := g.DaysSinceRelease(day)
	delta := gamescore.ComputeDelta(telemetry, previous, sample.CCU, days)
	base := gamescore.BasePoints(delta)

	newMilestones, milestoneBonus := gamescore.EvaluateMilestones(gamescore.Cumulative{
		ReviewsTotal:  telemetry.ReviewsTotal,
		PeakCCU:       delta.PeakCCU,
		PositiveRatio: delta.PositiveRatio,
	}, metrics.Milestones)
	breakoutBonus, breakout := gamescore.DetectBreakout(delta.PeakCCU, prior, metrics.BreakoutAwarded)

	points := base + milestoneBonus + breakoutBonus
	out.status = gameOutcomeScored
	out.points = points
	out.update = &gamescore.Update{
		Metrics: gamescore.Metrics{
			GameID:          g.ID,
			EstimatedOwners: delta.EstimatedOwners,
			CCU:             delta.PeakCCU,
			ReviewsTotal:    telemetry.ReviewsTotal,
			ReviewsPositive: telemetry.ReviewsPositive,
			Status:          gamescore.StatusFor(delta),
			Score:           points,
			Milestones:      slices.Concat(metrics.Milestones, newMilestones),
			BreakoutAwarded: metrics.BreakoutAwarded || breakout,
			UpdatedAt:       e.clock.Now().UTC(),
		},
		Entry: gamescore.HistoryEntry{
			GameID:           g.ID,
			Date:             today,
			EstimatedOwners:  delta.EstimatedOwners,
			SalesDelta:       delta.SalesDelta,
			CCU:              delta.PeakCCU,
			ReviewsTotal:     telemetry.ReviewsTotal,
			ReviewsDelta:     delta.ReviewsDelta,
			PositiveRatio:    delta.PositiveRatio,
			Points:           points,
			BasePoints:       base,
			MilestoneBonus:   milestoneBonus,
			BreakoutBonus:    breakoutBonus,
			DaysSinceRelease: days,
		},
		NewMilestones: newMilestones,
		Breakout:      breakout,
	}

	e.logger.DebugContext(ctx, "game scored",
		"game_id", g.ID,
		"days_since_release", days,
		"points", points,
		"sales_delta", delta.SalesDelta,
		"peak_ccu", delta.PeakCCU,
	)
	return out
}

func (e *ScoringEngine) sampleCCU(ctx context.Context, g game.Game, today string, dryRun bool) gameOutcome {
	out := gameOutcome{gameID: g.ID}

	var ccu int64
	err := e.fetchRetry.Do(ctx, func(ctx context.Context, _ int) error {
		v, fetchErr := e.telemetry.FetchCCU(ctx, g.SteamAppID)
		if fetchErr != nil {
			return fetchErr
		}
		ccu = v
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrDelisted) {
			out.status = gameOutcomeDelisted
			return out
		}
		e.logger.WarnContext(ctx, "ccu sample failed", "game_id", g.ID, "error", err)
		out.status = gameOutcomeFailed
		return out
	}

	if !dryRun {
		if err := e.scores.UpsertCCUSample(ctx, gamescore.CCUSample{GameID: g.ID, Date: today, CCU: ccu}); err != nil {
			e.logger.WarnContext(ctx, "store ccu sample failed", "game_id", g.ID, "error", err)
			out.status = gameOutcomeFailed
			return out
		}
	}
	out.status = gameOutcomeScored
	return out
}

func (e *ScoringEngine) commitUpdates(ctx context.Context, updates []gamescore.Update) error {
	for start := 0; start < len(updates); start += e.cfg.BatchSize {
		batch := updates[start:min(start+e.cfg.BatchSize, len(updates))]

		var applied int
		err := e.commitRetry.Do(ctx, func(ctx context.Context, attempt int) error {
			n, applyErr := e.scores.ApplyUpdates(ctx, batch)
			if applyErr != nil {
				e.logger.WarnContext(ctx, "score batch commit failed", "batch_start", start, "attempt", attempt, "error", applyErr)
				return applyErr
			}
			applied = n
			return nil
		})
		if err != nil {
			return fmt.Errorf("%w: batch starting at %d: %w", ErrPersistenceConflict, start, err)
		}
		if applied < len(batch) {
			e.logger.InfoContext(ctx, "score batch had existing entries", "batch_start", start, "applied", applied, "size", len(batch))
		}
	}
	return nil
}

// settleLeagues propagates delistings and allocates bomb damage for every
// league that has drafted games.
func (e *ScoringEngine) settleLeagues(ctx context.Context, today string, pointsByGame map[string]float64, delisted []string, dryRun bool, summary *ScoringRunSummary) error {
	leagues, err := e.leagueRepo.ListByStatus(ctx, league.StatusDraft, league.StatusActive)
	if err != nil {
		return fmt.Errorf("list leagues for scoring: %w", err)
	}

	for _, l := range leagues {
		teams, err := e.teamRepo.ListByLeague(ctx, l.ID)
		if err != nil {
			return fmt.Errorf("list teams for league %s: %w", l.ID, err)
		}

		poolIDs := make(map[string]struct{})
		bombs := make([]leaguescoring.BombPick, 0, len(teams))
		for _, t := range teams {
			for _, gameID := range t.Picks.AllGameIDs() {
				poolIDs[gameID] = struct{}{}
			}
			bombs = append(bombs, leaguescoring.BombPick{UserID: t.UserID, GameID: t.Picks.BombPick})
		}
		if len(poolIDs) == 0 {
			continue
		}

		held := make([]string, 0)
		for _, gameID := range delisted {
			if _, ok := poolIDs[gameID]; ok {
				held = append(held, gameID)
			}
		}
		if len(held) > 0 && !dryRun {
			added, err := e.leagueRepo.AddDelistedGames(ctx, l.ID, held)
			if err != nil {
				return fmt.Errorf("mark delisted games for league %s: %w", l.ID, err)
			}
			if len(added) > 0 {
				e.logger.WarnContext(ctx, "league games delisted", "league_id", l.ID, "game_ids", added)
			}
		}

		points := make([]float64, 0, len(poolIDs))
		for gameID := range poolIDs {
			if p, ok := pointsByGame[gameID]; ok {
				points = append(points, p)
			}
		}
		threshold := leaguescoring.BombThreshold(points)
		adjustments := leaguescoring.AllocateBombDamage(bombs, pointsByGame, threshold)
		damage := leaguescoring.TotalDamage(adjustments)

		created := true
		if !dryRun {
			day := leaguescoring.ScoringDay{
				LeagueID:        l.ID,
				Date:            today,
				BombAdjustments: adjustments,
				BombThreshold:   threshold,
				CreatedAt:       e.clock.Now().UTC(),
			}
			err := e.commitRetry.Do(ctx, func(ctx context.Context, _ int) error {
				var saveErr error
				created, saveErr = e.leagueScoring.SaveDay(ctx, day)
				return saveErr
			})
			if err != nil {
				return fmt.Errorf("%w: league scoring day %s/%s: %w", ErrPersistenceConflict, l.ID, today, err)
			}
		}

		summary.LeaguesProcessed++
		summary.BombThreshold = max(summary.BombThreshold, threshold)
		if created {
			summary.TotalBombDamage += damage
		}
		e.logger.InfoContext(ctx, "league scoring settled",
			"league_id", l.ID,
			"bomb_threshold", threshold,
			"bomb_damage", damage,
			"already_settled", !created,
		)
	}
	return nil
}
