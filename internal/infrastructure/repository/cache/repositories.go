package cache

import (
	"context"
	"slices"
	"time"

	"github.com/riskibarqy/release-league/internal/domain/game"
	"github.com/riskibarqy/release-league/internal/domain/gamescore"
	"github.com/jonboulle/clockwork"
	basecache "github.com/riskibarqy/release-league/internal/platform/cache"
)

// GameScoreRepository caches per-game history reads. Writes go straight
// through and drop the cached history of every touched game.
type GameScoreRepository struct {
	next    gamescore.Repository
	history *basecache.Store[[]gamescore.HistoryEntry]
}

func NewGameScoreRepository(next gamescore.Repository, ttl time.Duration, clock clockwork.Clock) *GameScoreRepository {
	return &GameScoreRepository{
		next:    next,
		history: basecache.NewStore[[]gamescore.HistoryEntry](ttl, clock),
	}
}

func historyKey(gameID string) string {
	return "gamescore:history:" + gameID
}

func (r *GameScoreRepository) GetMetrics(ctx context.Context, gameID string) (gamescore.Metrics, bool, error) {
	return r.next.GetMetrics(ctx, gameID)
}

func (r *GameScoreRepository) ListHistory(ctx context.Context, gameID string) ([]gamescore.HistoryEntry, error) {
	items, err := r.history.Load(ctx, historyKey(gameID), func(ctx context.Context) ([]gamescore.HistoryEntry, error) {
		items, err := r.next.ListHistory(ctx, gameID)
		return slices.Clone(items), err
	})
	if err != nil {
		return nil, err
	}
	return slices.Clone(items), nil
}

func (r *GameScoreRepository) GetCCUSample(ctx context.Context, gameID, date string) (gamescore.CCUSample, bool, error) {
	return r.next.GetCCUSample(ctx, gameID, date)
}

func (r *GameScoreRepository) UpsertCCUSample(ctx context.Context, sample gamescore.CCUSample) error {
	return r.next.UpsertCCUSample(ctx, sample)
}

func (r *GameScoreRepository) ApplyUpdates(ctx context.Context, updates []gamescore.Update) (int, error) {
	applied, err := r.next.ApplyUpdates(ctx, updates)
	keys := make([]string, 0, len(updates))
	for _, u := range updates {
		keys = append(keys, historyKey(u.Entry.GameID))
	}
	r.history.Forget(keys...)
	return applied, err
}

// GameCatalog caches single-game lookups. The catalog is read-only here, so
// entries only leave by ttl.
type GameCatalog struct {
	next  game.Catalog
	games *basecache.Store[catalogHit]
}

func NewGameCatalog(next game.Catalog, ttl time.Duration, clock clockwork.Clock) *GameCatalog {
	return &GameCatalog{next: next, games: basecache.NewStore[catalogHit](ttl, clock)}
}

// catalogHit remembers misses too so unknown ids in a pick storm stay cheap.
type catalogHit struct {
	game   game.Game
	exists bool
}

func (r *GameCatalog) GetByID(ctx context.Context, gameID string) (game.Game, bool, error) {
	hit, err := r.games.Load(ctx, "game:id:"+gameID, func(ctx context.Context) (catalogHit, error) {
		item, exists, err := r.next.GetByID(ctx, gameID)
		return catalogHit{game: item, exists: exists}, err
	})
	if err != nil {
		return game.Game{}, false, err
	}

	out := hit.game
	out.Genres = slices.Clone(out.Genres)
	return out, hit.exists, nil
}

func (r *GameCatalog) IsHidden(ctx context.Context, gameID string) (bool, error) {
	item, exists, err := r.GetByID(ctx, gameID)
	if err != nil {
		return false, err
	}
	return exists && item.IsHidden, nil
}

func (r *GameCatalog) ListDraftable(ctx context.Context, filter game.Filter) ([]game.Game, error) {
	return r.next.ListDraftable(ctx, filter)
}

func (r *GameCatalog) ListScorable(ctx context.Context) ([]game.Game, error) {
	return r.next.ListScorable(ctx)
}

// ListPage and ListReleaseYears carry scores that move every run, so they
// bypass the cache.
func (r *GameCatalog) ListPage(ctx context.Context, query game.ListQuery) (game.Page, error) {
	return r.next.ListPage(ctx, query)
}

func (r *GameCatalog) ListReleaseYears(ctx context.Context) ([]int, error) {
	return r.next.ListReleaseYears(ctx)
}
