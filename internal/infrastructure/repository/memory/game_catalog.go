package memory

import (
	"context"
	"slices"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/riskibarqy/release-league/internal/domain/game"
)

type GameCatalog struct {
	mu     sync.RWMutex
	order  []string
	index  map[string]game.Game
	scores *Store
}

func NewGameCatalog(games []game.Game) *GameCatalog {
	index := make(map[string]game.Game, len(games))
	order := make([]string, 0, len(games))
	for _, g := range games {
		if _, dup := index[g.ID]; !dup {
			order = append(order, g.ID)
		}
		index[g.ID] = g
	}

	return &GameCatalog{order: order, index: index}
}

// WithScores joins running scores from the store's game metrics into
// ListPage results.
func (c *GameCatalog) WithScores(store *Store) *GameCatalog {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.scores = store
	return c
}

// Put adds or replaces a game. Used by fixtures and tests.
func (c *GameCatalog) Put(g game.Game) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.index[g.ID]; !exists {
		c.order = append(c.order, g.ID)
	}
	c.index[g.ID] = g
}

func (c *GameCatalog) GetByID(_ context.Context, gameID string) (game.Game, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	g, ok := c.index[gameID]
	return g, ok, nil
}

func (c *GameCatalog) IsHidden(_ context.Context, gameID string) (bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.index[gameID].IsHidden, nil
}

func (c *GameCatalog) ListDraftable(_ context.Context, filter game.Filter) ([]game.Game, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	search := strings.ToLower(strings.TrimSpace(filter.Search))
	out := make([]game.Game, 0)
	for _, id := range c.order {
		g := c.index[id]
		if g.IsHidden {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(g.Name), search) {
			continue
		}
		if filter.Genre != "" && !slices.Contains(g.Genres, filter.Genre) {
			continue
		}
		if filter.ReleaseFrom != "" && (g.ReleaseDate == "" || g.ReleaseDate < filter.ReleaseFrom) {
			continue
		}
		if filter.ReleaseTo != "" && (g.ReleaseDate == "" || g.ReleaseDate > filter.ReleaseTo) {
			continue
		}
		out = append(out, g)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].ReleaseDate < out[j].ReleaseDate })
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (c *GameCatalog) ListScorable(_ context.Context) ([]game.Game, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]game.Game, 0, len(c.order))
	for _, id := range c.order {
		g := c.index[id]
		if g.SteamAppID == "" || g.ReleaseDate == "" {
			continue
		}
		out = append(out, g)
	}
	return out, nil
}

func (c *GameCatalog) ListPage(_ context.Context, query game.ListQuery) (game.Page, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	from, until := query.YearBounds()
	search := strings.ToLower(strings.TrimSpace(query.Search))
	matches := make([]game.ListEntry, 0)
	for _, id := range c.order {
		g := c.index[id]
		if g.IsHidden || g.ReleaseDate == "" || g.ReleaseDate < from || g.ReleaseDate >= until {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(g.Name), search) {
			continue
		}
		if query.ReleaseFrom != "" && g.ReleaseDate < query.ReleaseFrom {
			continue
		}
		matches = append(matches, game.ListEntry{Game: g, Score: c.scoreOf(id)})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return entryLess(matches[i], matches[j], query.SortBy, query.Order)
	})

	total := len(matches)
	start := min(max(query.Offset, 0), total)
	end := total
	if query.Limit > 0 {
		end = min(start+query.Limit, total)
	}
	return game.Page{Games: slices.Clone(matches[start:end]), Total: total}, nil
}

func (c *GameCatalog) ListReleaseYears(_ context.Context) ([]int, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	years := make([]int, 0)
	for _, id := range c.order {
		g := c.index[id]
		if g.IsHidden {
			continue
		}
		y, ok := releaseYear(g.ReleaseDate)
		if ok && !slices.Contains(years, y) {
			years = append(years, y)
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))
	return years, nil
}

func (c *GameCatalog) scoreOf(gameID string) *float64 {
	if c.scores == nil {
		return nil
	}
	c.scores.mu.RLock()
	defer c.scores.mu.RUnlock()

	m, ok := c.scores.metrics[gameID]
	if !ok {
		return nil
	}
	score := m.Score
	return &score
}

func releaseYear(date string) (int, bool) {
	if len(date) < 4 {
		return 0, false
	}
	y, err := strconv.Atoi(date[:4])
	if err != nil || y <= 0 {
		return 0, false
	}
	return y, true
}

// entryLess orders by the requested field with nil scores last in both
// directions and the game id as tie breaker.
func entryLess(a, b game.ListEntry, by game.SortField, order game.SortOrder) bool {
	if by == game.SortByScore && (a.Score == nil) != (b.Score == nil) {
		return a.Score != nil
	}

	var cmp int
	switch by {
	case game.SortByID:
		cmp = strings.Compare(a.ID, b.ID)
	case game.SortByName:
		cmp = strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	case game.SortByScore:
		if a.Score != nil && b.Score != nil {
			switch {
			case *a.Score < *b.Score:
				cmp = -1
			case *a.Score > *b.Score:
				cmp = 1
			}
		}
	default:
		cmp = strings.Compare(a.ReleaseDate, b.ReleaseDate)
	}
	if order == game.OrderDesc {
		cmp = -cmp
	}
	if cmp != 0 {
		return cmp < 0
	}
	return a.ID < b.ID
}
