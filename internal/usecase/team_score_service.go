package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/riskibarqy/release-league/internal/domain/gamescore"
	"github.com/riskibarqy/release-league/internal/domain/league"
	"github.com/riskibarqy/release-league/internal/domain/leaguescoring"
	"github.com/riskibarqy/release-league/internal/domain/season"
	"github.com/riskibarqy/release-league/internal/domain/team"
	"github.com/riskibarqy/release-league/internal/platform/logging"
	"github.com/sourcegraph/conc/pool"
)

const defaultHistoryFetchConcurrency = 8

// TeamScoreService rebuilds cumulative team scores from per-game history.
// Points are never read from the cached team score.
type TeamScoreService struct {
	leagueRepo    league.Repository
	teamRepo      team.Repository
	scores        gamescore.Repository
	leagueScoring leaguescoring.Repository
	snapshots     season.Repository
	logger        *logging.Logger
	now           func() time.Time
	concurrency   int
}

func NewTeamScoreService(
	leagueRepo league.Repository,
	teamRepo team.Repository,
	scores gamescore.Repository,
	leagueScoring leaguescoring.Repository,
	snapshots season.Repository,
	logger *logging.Logger,
) *TeamScoreService {
	if logger == nil {
		logger = logging.Default()
	}

	return &TeamScoreService{
		leagueRepo:    leagueRepo,
		teamRepo:      teamRepo,
		scores:        scores,
		leagueScoring: leagueScoring,
		snapshots:     snapshots,
		logger:        logger,
		now:           time.Now,
		concurrency:   defaultHistoryFetchConcurrency,
	}
}

func (s *TeamScoreService) GetScoreHistory(ctx context.Context, leagueID string) (season.ScoreHistory, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TeamScoreService.GetScoreHistory")
	defer span.End()

	item, err := s.requireLeague(ctx, leagueID)
	if err != nil {
		return season.ScoreHistory{}, err
	}
	history, _, err := s.buildHistory(ctx, item, "")
	return history, err
}

// RefreshTeamScores writes each team's final cumulative score back to the
// cached team score.
func (s *TeamScoreService) RefreshTeamScores(ctx context.Context, leagueID string) (map[string]float64, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TeamScoreService.RefreshTeamScores")
	defer span.End()

	item, err := s.requireLeague(ctx, leagueID)
	if err != nil {
		return nil, err
	}
	history, _, err := s.buildHistory(ctx, item, "")
	if err != nil {
		return nil, err
	}

	final := history.Final()
	if err := s.teamRepo.UpdateScores(ctx, item.ID, final); err != nil {
		return nil, fmt.Errorf("update team scores: %w", err)
	}
	s.logger.InfoContext(ctx, "team scores refreshed", "league_id", item.ID, "teams", len(final), "dates", len(history.Dates))
	return final, nil
}

// GetSeasonSnapshot returns the frozen leaderboard of a finished season,
// computing and storing it on first request.
func (s *TeamScoreService) GetSeasonSnapshot(ctx context.Context, leagueID, seasonID string) (season.Snapshot, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TeamScoreService.GetSeasonSnapshot")
	defer span.End()

	item, err := s.requireLeague(ctx, leagueID)
	if err != nil {
		return season.Snapshot{}, err
	}
	if seasonID == "" {
		seasonID = item.Season
	}
	if _, err := league.ParseSeason(seasonID); err != nil {
		return season.Snapshot{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	existing, exists, err := s.snapshots.Get(ctx, item.ID, seasonID)
	if err != nil {
		return season.Snapshot{}, fmt.Errorf("get season snapshot: %w", err)
	}
	if exists {
		return existing, nil
	}

	end := league.SeasonEndDate(seasonID)
	today := s.now().UTC().Format(time.DateOnly)
	if today <= end {
		return season.Snapshot{}, fmt.Errorf("%w: season %s ends %s", ErrSeasonNotEnded, seasonID, end)
	}

	history, teamIDs, err := s.buildHistory(ctx, item, end)
	if err != nil {
		return season.Snapshot{}, err
	}
	snapshot := season.BuildSnapshot(item.ID, seasonID, teamIDs, history, s.now().UTC())

	created, err := s.snapshots.Create(ctx, snapshot)
	if err != nil {
		return season.Snapshot{}, fmt.Errorf("create season snapshot: %w", err)
	}
	if created {
		s.logger.InfoContext(ctx, "season snapshot created", "league_id", item.ID, "season", seasonID, "teams", len(teamIDs))
		return snapshot, nil
	}

	// A concurrent request won the insert. Serve the stored copy.
	stored, exists, err := s.snapshots.Get(ctx, item.ID, seasonID)
	if err != nil {
		return season.Snapshot{}, fmt.Errorf("get season snapshot: %w", err)
	}
	if !exists {
		return season.Snapshot{}, fmt.Errorf("%w: season snapshot vanished after insert", ErrPersistenceConflict)
	}
	return stored, nil
}

func (s *TeamScoreService) buildHistory(ctx context.Context, item league.League, seasonEnd string) (season.ScoreHistory, []string, error) {
	teams, err := s.teamRepo.ListByLeague(ctx, item.ID)
	if err != nil {
		return season.ScoreHistory{}, nil, fmt.Errorf("list teams by league: %w", err)
	}

	teamGames := make([]season.TeamGames, 0, len(teams))
	teamIDs := make([]string, 0, len(teams))
	for _, t := range teams {
		teamGames = append(teamGames, season.TeamGames{
			UserID:  t.UserID,
			GameIDs: t.Picks.ScoringGameIDs(item.DelistedGames),
		})
		teamIDs = append(teamIDs, t.UserID)
	}

	histories, err := s.loadHistories(ctx, season.UnionGameIDs(teamGames))
	if err != nil {
		return season.ScoreHistory{}, nil, err
	}

	days, err := s.leagueScoring.ListDays(ctx, item.ID)
	if err != nil {
		return season.ScoreHistory{}, nil, fmt.Errorf("list league scoring days: %w", err)
	}
	bombDays := make(map[string]map[string]float64, len(days))
	for _, d := range days {
		bombDays[d.Date] = d.BombAdjustments
	}

	return season.Accumulate(teamGames, histories, bombDays, seasonEnd), teamIDs, nil
}

type gameHistoryResult struct {
	gameID string
	points []season.DailyPoints
}

// loadHistories reads every game's history once, with bounded fan-out.
func (s *TeamScoreService) loadHistories(ctx context.Context, gameIDs []string) (map[string][]season.DailyPoints, error) {
	out := make(map[string][]season.DailyPoints, len(gameIDs))
	if len(gameIDs) == 0 {
		return out, nil
	}

	p := pool.NewWithResults[gameHistoryResult]().
		WithContext(ctx).
		WithCancelOnError().
		WithMaxGoroutines(max(1, s.concurrency))
	for _, gameID := range gameIDs {
		p.Go(func(ctx context.Context) (gameHistoryResult, error) {
			entries, err := s.scores.ListHistory(ctx, gameID)
			if err != nil {
				return gameHistoryResult{}, fmt.Errorf("list history game=%s: %w", gameID, err)
			}
			points := make([]season.DailyPoints, 0, len(entries))
			for _, e := range entries {
				points = append(points, season.DailyPoints{Date: e.Date, Points: e.Points})
			}
			return gameHistoryResult{gameID: gameID, points: points}, nil
		})
	}

	results, err := p.Wait()
	if err != nil {
		return nil, err
	}
	for _, r := range results {
		out[r.gameID] = r.points
	}
	return out, nil
}

func (s *TeamScoreService) requireLeague(ctx context.Context, leagueID string) (league.League, error) {
	if leagueID == "" {
		return league.League{}, fmt.Errorf("%w: league id is required", ErrInvalidInput)
	}
	item, exists, err := s.leagueRepo.GetByID(ctx, leagueID)
	if err != nil {
		return league.League{}, fmt.Errorf("get league: %w", err)
	}
	if !exists {
		return league.League{}, fmt.Errorf("%w: league=%s", ErrLeagueNotFound, leagueID)
	}
	return item, nil
}
