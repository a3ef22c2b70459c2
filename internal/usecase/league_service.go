package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/release-league/internal/domain/draft"
	"github.com/riskibarqy/release-league/internal/domain/league"
	"github.com/riskibarqy/release-league/internal/domain/team"
	"github.com/riskibarqy/release-league/internal/platform/id"
	"github.com/riskibarqy/release-league/internal/platform/logging"
)

type LeagueService struct {
	leagueRepo league.Repository
	teamRepo   team.Repository
	draftRepo  draft.Repository
	idGen      id.Generator
	logger     *logging.Logger
	now        func() time.Time
}

func NewLeagueService(
	leagueRepo league.Repository,
	teamRepo team.Repository,
	draftRepo draft.Repository,
	idGen id.Generator,
	logger *logging.Logger,
) *LeagueService {
	if logger == nil {
		logger = logging.Default()
	}

	return &LeagueService{
		leagueRepo: leagueRepo,
		teamRepo:   teamRepo,
		draftRepo:  draftRepo,
		idGen:      idGen,
		logger:     logger,
		now:        time.Now,
	}
}

type CreateLeagueInput struct {
	CommissionerID string
	Name           string
	Code           string
	TeamName       string
}

func (s *LeagueService) CreateLeague(ctx context.Context, input CreateLeagueInput) (league.League, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeagueService.CreateLeague")
	defer span.End()

	code := league.NormalizeCode(input.Code)
	if strings.TrimSpace(input.CommissionerID) == "" {
		return league.League{}, fmt.Errorf("%w: commissioner is required", ErrInvalidInput)
	}

	_, exists, err := s.leagueRepo.GetByCode(ctx, code)
	if err != nil {
		return league.League{}, fmt.Errorf("get league by code: %w", err)
	}
	if exists {
		return league.League{}, fmt.Errorf("%w: %s", ErrConflict, league.ErrCodeInUse)
	}

	leagueID, err := s.idGen.NewID()
	if err != nil {
		return league.League{}, fmt.Errorf("generate league id: %w", err)
	}

	now := s.now().UTC()
	item := league.League{
		ID:             leagueID,
		Name:           strings.TrimSpace(input.Name),
		Code:           code,
		CommissionerID: input.CommissionerID,
		Season:         league.DefaultSeason(now),
		Status:         league.StatusDraft,
		CurrentPhase:   league.PhaseWinter,
		Members:        []string{input.CommissionerID},
		DelistedGames:  []string{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := item.Validate(); err != nil {
		return league.League{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if err := s.leagueRepo.Create(ctx, item, team.NormalizeName(input.TeamName)); err != nil {
		if errors.Is(err, league.ErrCodeInUse) {
			return league.League{}, fmt.Errorf("%w: %v", ErrConflict, err)
		}
		return league.League{}, fmt.Errorf("create league: %w", err)
	}

	s.logger.InfoContext(ctx, "league created", "league_id", item.ID, "season", item.Season, "commissioner_id", item.CommissionerID)
	return item, nil
}

type JoinLeagueInput struct {
	LeagueID string
	Code     string
	UserID   string
	TeamName string
}

// JoinLeague is a no-op for existing members. Joining is closed once any
// draft of the season has completed.
func (s *LeagueService) JoinLeague(ctx context.Context, input JoinLeagueInput) (league.League, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeagueService.JoinLeague")
	defer span.End()

	if strings.TrimSpace(input.UserID) == "" {
		return league.League{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}

	var (
		item   league.League
		exists bool
		err    error
	)
	switch {
	case strings.TrimSpace(input.LeagueID) != "":
		item, exists, err = s.leagueRepo.GetByID(ctx, strings.TrimSpace(input.LeagueID))
	case strings.TrimSpace(input.Code) != "":
		item, exists, err = s.leagueRepo.GetByCode(ctx, league.NormalizeCode(input.Code))
	default:
		return league.League{}, fmt.Errorf("%w: league id or code is required", ErrInvalidInput)
	}
	if err != nil {
		return league.League{}, fmt.Errorf("get league: %w", err)
	}
	if !exists {
		return league.League{}, ErrLeagueNotFound
	}
	if item.IsMember(input.UserID) {
		return item, nil
	}

	drafts, err := s.draftRepo.ListBySeason(ctx, item.ID, item.Season)
	if err != nil {
		return league.League{}, fmt.Errorf("list drafts: %w", err)
	}
	for _, d := range drafts {
		if d.Status == draft.StatusCompleted {
			return league.League{}, fmt.Errorf("%w: league is already in progress", ErrConflict)
		}
	}

	if err := s.leagueRepo.AddMember(ctx, item.ID, input.UserID, team.NormalizeName(input.TeamName)); err != nil {
		return league.League{}, fmt.Errorf("add league member: %w", err)
	}
	item.Members = append(item.Members, input.UserID)

	s.logger.InfoContext(ctx, "league joined", "league_id", item.ID, "user_id", input.UserID)
	return item, nil
}

func (s *LeagueService) GetLeague(ctx context.Context, leagueID string) (league.League, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeagueService.GetLeague")
	defer span.End()

	return s.requireLeague(ctx, leagueID)
}

func (s *LeagueService) ListLeaguesForUser(ctx context.Context, userID string) ([]league.League, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeagueService.ListLeaguesForUser")
	defer span.End()

	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	items, err := s.leagueRepo.ListByMember(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list leagues by member: %w", err)
	}
	return items, nil
}

func (s *LeagueService) ListTeams(ctx context.Context, leagueID string) ([]team.Team, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeagueService.ListTeams")
	defer span.End()

	if _, err := s.requireLeague(ctx, leagueID); err != nil {
		return nil, err
	}

	teams, err := s.teamRepo.ListByLeague(ctx, leagueID)
	if err != nil {
		return nil, fmt.Errorf("list teams by league: %w", err)
	}
	return teams, nil
}

func (s *LeagueService) UpdateTeamName(ctx context.Context, leagueID, userID, name string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeagueService.UpdateTeamName")
	defer span.End()

	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: team name is required", ErrInvalidInput)
	}

	l, err := s.requireLeague(ctx, leagueID)
	if err != nil {
		return err
	}
	if !l.IsMember(userID) {
		return fmt.Errorf("%w: not a league member", ErrForbidden)
	}

	if err := s.teamRepo.UpdateName(ctx, leagueID, userID, strings.TrimSpace(name)); err != nil {
		return fmt.Errorf("update team name: %w", err)
	}
	return nil
}

// MarkGameDelisted flags a game for alt substitution. The delisted set only
// grows during a season.
func (s *LeagueService) MarkGameDelisted(ctx context.Context, leagueID, gameID string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeagueService.MarkGameDelisted")
	defer span.End()

	if strings.TrimSpace(gameID) == "" {
		return fmt.Errorf("%w: game id is required", ErrInvalidInput)
	}
	if _, err := s.requireLeague(ctx, leagueID); err != nil {
		return err
	}

	added, err := s.leagueRepo.AddDelistedGames(ctx, leagueID, []string{gameID})
	if err != nil {
		return fmt.Errorf("add delisted game: %w", err)
	}
	if len(added) > 0 {
		s.logger.InfoContext(ctx, "game marked delisted", "league_id", leagueID, "game_id", gameID)
	}
	return nil
}

type UpdateSeasonInput struct {
	LeagueID string
	ActorID  string
	Season   string
}

// UpdateSeason retargets a league at another season year. It is closed once
// any draft exists for the current season, since drafts and scores are keyed
// by season.
func (s *LeagueService) UpdateSeason(ctx context.Context, input UpdateSeasonInput) (league.League, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeagueService.UpdateSeason")
	defer span.End()

	seasonID := strings.TrimSpace(input.Season)
	if _, err := league.ParseSeason(seasonID); err != nil {
		return league.League{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	item, err := s.requireCommissioner(ctx, input.LeagueID, input.ActorID)
	if err != nil {
		return league.League{}, err
	}
	if item.Season == seasonID {
		return item, nil
	}

	drafts, err := s.draftRepo.ListBySeason(ctx, item.ID, item.Season)
	if err != nil {
		return league.League{}, fmt.Errorf("list drafts: %w", err)
	}
	if len(drafts) > 0 {
		return league.League{}, fmt.Errorf("%w: season %s already has drafts", ErrConflict, item.Season)
	}

	if err := s.leagueRepo.UpdateSeason(ctx, item.ID, seasonID); err != nil {
		return league.League{}, fmt.Errorf("update league season: %w", err)
	}

	s.logger.InfoContext(ctx, "league season updated", "league_id", item.ID, "from", item.Season, "to", seasonID)
	item.Season = seasonID
	item.UpdatedAt = s.now().UTC()
	return item, nil
}

// DeleteLeague soft-deletes the league. Teams, drafts and score history are
// kept but no longer reachable.
func (s *LeagueService) DeleteLeague(ctx context.Context, leagueID, actorID string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeagueService.DeleteLeague")
	defer span.End()

	item, err := s.requireCommissioner(ctx, leagueID, actorID)
	if err != nil {
		return err
	}
	if err := s.leagueRepo.Delete(ctx, item.ID); err != nil {
		return fmt.Errorf("delete league: %w", err)
	}

	s.logger.InfoContext(ctx, "league deleted", "league_id", item.ID, "commissioner_id", actorID)
	return nil
}

func (s *LeagueService) requireCommissioner(ctx context.Context, leagueID, actorID string) (league.League, error) {
	item, err := s.requireLeague(ctx, leagueID)
	if err != nil {
		return league.League{}, err
	}
	if actorID == "" || item.CommissionerID != actorID {
		return league.League{}, fmt.Errorf("%w: only the commissioner can change the league", ErrForbidden)
	}
	return item, nil
}

func (s *LeagueService) requireLeague(ctx context.Context, leagueID string) (league.League, error) {
	leagueID = strings.TrimSpace(leagueID)
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
