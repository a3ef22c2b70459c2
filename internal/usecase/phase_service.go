package usecase

import (
	"context"
	"fmt"

	"github.com/jonboulle/clockwork"
	"github.com/riskibarqy/release-league/internal/domain/draft"
	"github.com/riskibarqy/release-league/internal/domain/league"
	"github.com/riskibarqy/release-league/internal/platform/logging"
)

// PhaseService is the only writer of a league's phase. Both entry points go
// through league.NextPhase.
type PhaseService struct {
	leagueRepo league.Repository
	draftRepo  draft.Repository
	logger     *logging.Logger
	clock      clockwork.Clock
}

func NewPhaseService(leagueRepo league.Repository, draftRepo draft.Repository, clock clockwork.Clock, logger *logging.Logger) *PhaseService {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = logging.Default()
	}

	return &PhaseService{
		leagueRepo: leagueRepo,
		draftRepo:  draftRepo,
		logger:     logger,
		clock:      clock,
	}
}

// AdvancePhase steps the league to the phase after its current one when
// completed is that phase. Empty completed and season mean the league's
// own. A draft from another phase or season leaves the league as is.
func (s *PhaseService) AdvancePhase(ctx context.Context, leagueID string, completed league.Phase, season string) (league.League, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PhaseService.AdvancePhase")
	defer span.End()

	item, err := s.getLeague(ctx, leagueID)
	if err != nil {
		return league.League{}, err
	}
	if season != "" && season != item.Season {
		s.logger.WarnContext(ctx, "draft completion for another season ignored",
			"league_id", item.ID,
			"league_season", item.Season,
			"draft_season", season,
		)
		return item, nil
	}

	return s.apply(ctx, item, league.DraftCompleted{Phase: completed})
}

// SyncCurrentPhase repairs a missed advance from the calendar and the
// completed drafts of the season.
func (s *PhaseService) SyncCurrentPhase(ctx context.Context, leagueID string) (league.League, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PhaseService.SyncCurrentPhase")
	defer span.End()

	item, err := s.getLeague(ctx, leagueID)
	if err != nil {
		return league.League{}, err
	}

	drafts, err := s.draftRepo.ListBySeason(ctx, item.ID, item.Season)
	if err != nil {
		return league.League{}, fmt.Errorf("list drafts: %w", err)
	}
	completed := make(map[league.Phase]bool, len(drafts))
	for _, d := range drafts {
		completed[d.Phase] = d.Status == draft.StatusCompleted
	}

	return s.apply(ctx, item, league.CalendarSync{Today: s.clock.Now(), Completed: completed})
}

func (s *PhaseService) apply(ctx context.Context, item league.League, event league.Event) (league.League, error) {
	current := item.State()
	next := league.NextPhase(current, event)
	if next == current {
		return item, nil
	}

	if err := s.leagueRepo.UpdateState(ctx, item.ID, next); err != nil {
		return league.League{}, fmt.Errorf("update league state: %w", err)
	}

	s.logger.InfoContext(ctx, "league phase changed",
		"league_id", item.ID,
		"from_phase", current.Phase,
		"to_phase", next.Phase,
		"status", next.Status,
	)
	item.CurrentPhase = next.Phase
	item.Status = next.Status
	return item, nil
}

func (s *PhaseService) getLeague(ctx context.Context, leagueID string) (league.League, error) {
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
