package game

import (
	"context"
	"fmt"
	"time"
)

const DateLayout = "2006-01-02"

// Game is a catalog entry. The catalog is read-only to this service.
type Game struct {
	ID          string
	Name        string
	CoverURL    string
	ReleaseDate string
	SteamAppID  string
	IsHidden    bool
	Genres      []string
}

func (g Game) Validate() error {
	if g.ID == "" {
		return fmt.Errorf("game id is required")
	}
	if g.Name == "" {
		return fmt.Errorf("game name is required")
	}
	if g.ReleaseDate != "" {
		if _, err := time.Parse(DateLayout, g.ReleaseDate); err != nil {
			return fmt.Errorf("invalid release date %q: %w", g.ReleaseDate, err)
		}
	}

	return nil
}

// DaysSinceRelease is negative for unreleased games. ok is false when the
// release date is unknown.
func (g Game) DaysSinceRelease(today time.Time) (days int, ok bool) {
	if g.ReleaseDate == "" {
		return 0, false
	}
	released, err := time.Parse(DateLayout, g.ReleaseDate)
	if err != nil {
		return 0, false
	}
	y, m, d := today.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return int(day.Sub(released).Hours() / 24), true
}

// Scorable reports whether the scoring run should fetch telemetry today.
func (g Game) Scorable(today time.Time) bool {
	if g.SteamAppID == "" {
		return false
	}
	days, ok := g.DaysSinceRelease(today)
	return ok && days >= 0
}

type Filter struct {
	Search      string
	Genre       string
	ReleaseFrom string
	ReleaseTo   string
	Limit       int
}

// Catalog is the read-only game lookup.
type Catalog interface {
	GetByID(ctx context.Context, gameID string) (Game, bool, error)
	IsHidden(ctx context.Context, gameID string) (bool, error)
	ListDraftable(ctx context.Context, filter Filter) ([]Game, error)
	// ListScorable returns games with a Steam app id and a release date.
	ListScorable(ctx context.Context) ([]Game, error)
	// ListPage returns one page of visible games and the total match count.
	ListPage(ctx context.Context, query ListQuery) (Page, error)
	// ListReleaseYears returns the distinct release years of visible games,
	// newest first.
	ListReleaseYears(ctx context.Context) ([]int, error)
}
