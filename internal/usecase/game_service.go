package usecase

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/riskibarqy/release-league/internal/domain/bookmark"
	"github.com/riskibarqy/release-league/internal/domain/game"
	"github.com/riskibarqy/release-league/internal/domain/league"
	"github.com/riskibarqy/release-league/internal/platform/logging"
)

const (
	defaultDraftableLimit = 100
	maxDraftableLimit     = 500

	defaultGameListLimit = 50
	maxGameListLimit     = 200
)

type GameService struct {
	catalog    game.Catalog
	leagueRepo league.Repository
	bookmarks  bookmark.Repository
	logger     *logging.Logger
}

func NewGameService(catalog game.Catalog, leagueRepo league.Repository, bookmarks bookmark.Repository, logger *logging.Logger) *GameService {
	if logger == nil {
		logger = logging.Default()
	}

	return &GameService{
		catalog:    catalog,
		leagueRepo: leagueRepo,
		bookmarks:  bookmarks,
		logger:     logger,
	}
}

type ListDraftableInput struct {
	// LeagueID scopes the release window to the league's season and the
	// given phase (or the league's current phase when Phase is empty).
	LeagueID    string
	Phase       string
	Search      string
	Genre       string
	ReleaseFrom string
	ReleaseTo   string
	Limit       int
}

// ListDraftable feeds the draft board. Hidden games are never returned.
func (s *GameService) ListDraftable(ctx context.Context, input ListDraftableInput) ([]game.Game, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.GameService.ListDraftable")
	defer span.End()

	filter := game.Filter{
		Search:      strings.TrimSpace(input.Search),
		Genre:       strings.TrimSpace(input.Genre),
		ReleaseFrom: strings.TrimSpace(input.ReleaseFrom),
		ReleaseTo:   strings.TrimSpace(input.ReleaseTo),
		Limit:       input.Limit,
	}
	switch {
	case filter.Limit <= 0:
		filter.Limit = defaultDraftableLimit
	case filter.Limit > maxDraftableLimit:
		filter.Limit = maxDraftableLimit
	}

	if leagueID := strings.TrimSpace(input.LeagueID); leagueID != "" {
		from, to, err := s.leagueWindow(ctx, leagueID, input.Phase)
		if err != nil {
			return nil, err
		}
		if filter.ReleaseFrom == "" {
			filter.ReleaseFrom = from
		}
		if filter.ReleaseTo == "" {
			filter.ReleaseTo = to
		}
	}
	if filter.ReleaseFrom != "" && filter.ReleaseTo != "" && filter.ReleaseFrom > filter.ReleaseTo {
		return nil, fmt.Errorf("%w: release_from must not be after release_to", ErrInvalidInput)
	}

	items, err := s.catalog.ListDraftable(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list draftable games: %w", err)
	}
	return items, nil
}

func (s *GameService) leagueWindow(ctx context.Context, leagueID, rawPhase string) (string, string, error) {
	item, exists, err := s.leagueRepo.GetByID(ctx, leagueID)
	if err != nil {
		return "", "", fmt.Errorf("get league: %w", err)
	}
	if !exists {
		return "", "", fmt.Errorf("%w: league=%s", ErrLeagueNotFound, leagueID)
	}

	phase := item.CurrentPhase
	if strings.TrimSpace(rawPhase) != "" {
		phase, err = league.ParsePhase(rawPhase)
		if err != nil {
			return "", "", fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
	}
	year, err := league.ParseSeason(item.Season)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	from, to := league.ReleaseWindow(phase, year)
	return from, to, nil
}

type ListGamesInput struct {
	// Year defaults to the newest release year in the catalog.
	Year        string
	Search      string
	SortBy      string
	Order       string
	ReleaseFrom string
	Limit       int
	Offset      int
}

// ListGames pages through one release year of the visible catalog with each
// game's running score.
func (s *GameService) ListGames(ctx context.Context, input ListGamesInput) (game.Page, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.GameService.ListGames")
	defer span.End()

	sortBy, err := game.ParseSortField(input.SortBy)
	if err != nil {
		return game.Page{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	order, err := game.ParseSortOrder(input.Order)
	if err != nil {
		return game.Page{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if input.Offset < 0 {
		return game.Page{}, fmt.Errorf("%w: offset must not be negative", ErrInvalidInput)
	}

	query := game.ListQuery{
		Search:      strings.TrimSpace(input.Search),
		ReleaseFrom: strings.TrimSpace(input.ReleaseFrom),
		SortBy:      sortBy,
		Order:       order,
		Limit:       input.Limit,
		Offset:      input.Offset,
	}
	switch {
	case query.Limit <= 0:
		query.Limit = defaultGameListLimit
	case query.Limit > maxGameListLimit:
		query.Limit = maxGameListLimit
	}

	if raw := strings.TrimSpace(input.Year); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil || year <= 0 {
			return game.Page{}, fmt.Errorf("%w: invalid year %q", ErrInvalidInput, raw)
		}
		query.Year = year
	} else {
		years, err := s.catalog.ListReleaseYears(ctx)
		if err != nil {
			return game.Page{}, fmt.Errorf("list release years: %w", err)
		}
		if len(years) == 0 {
			return game.Page{Games: []game.ListEntry{}}, nil
		}
		query.Year = years[0]
	}

	page, err := s.catalog.ListPage(ctx, query)
	if err != nil {
		return game.Page{}, fmt.Errorf("list game page: %w", err)
	}
	return page, nil
}

func (s *GameService) ListGameYears(ctx context.Context) ([]int, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.GameService.ListGameYears")
	defer span.End()

	years, err := s.catalog.ListReleaseYears(ctx)
	if err != nil {
		return nil, fmt.Errorf("list release years: %w", err)
	}
	return years, nil
}

func (s *GameService) ListBookmarks(ctx context.Context, userID string) ([]string, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.GameService.ListBookmarks")
	defer span.End()

	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	ids, err := s.bookmarks.ListGameIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list bookmarks: %w", err)
	}
	return ids, nil
}

// AddBookmark is a no-op when the game is already bookmarked. Hidden games
// can be bookmarked; unknown ones cannot.
func (s *GameService) AddBookmark(ctx context.Context, userID, gameID string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.GameService.AddBookmark")
	defer span.End()

	userID, gameID = strings.TrimSpace(userID), strings.TrimSpace(gameID)
	if userID == "" || gameID == "" {
		return fmt.Errorf("%w: user id and game id are required", ErrInvalidInput)
	}

	_, exists, err := s.catalog.GetByID(ctx, gameID)
	if err != nil {
		return fmt.Errorf("get game: %w", err)
	}
	if !exists {
		return fmt.Errorf("%w: game=%s", ErrNotFound, gameID)
	}

	if err := s.bookmarks.Add(ctx, userID, gameID); err != nil {
		return fmt.Errorf("add bookmark: %w", err)
	}
	return nil
}

// RemoveBookmark succeeds whether or not the bookmark existed.
func (s *GameService) RemoveBookmark(ctx context.Context, userID, gameID string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.GameService.RemoveBookmark")
	defer span.End()

	userID, gameID = strings.TrimSpace(userID), strings.TrimSpace(gameID)
	if userID == "" || gameID == "" {
		return fmt.Errorf("%w: user id and game id are required", ErrInvalidInput)
	}
	if err := s.bookmarks.Remove(ctx, userID, gameID); err != nil {
		return fmt.Errorf("remove bookmark: %w", err)
	}
	return nil
}
