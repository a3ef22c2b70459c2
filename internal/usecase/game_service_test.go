package usecase

import (
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/release-league/internal/domain/game"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGameService_ListDraftableUsesPhaseWindow(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, time.Date(2026, time.January, 10, 0, 0, 0, 0, time.UTC))
	env.seedLeague(t, "lg-1", "alice", "bob")
	env.catalog.Put(game.Game{ID: "g-late", Name: "Late Winter", ReleaseDate: "2026-04-20"})
	env.catalog.Put(game.Game{ID: "g-early", Name: "Early Winter", ReleaseDate: "2026-01-05"})
	env.catalog.Put(game.Game{ID: "g-summer", Name: "Summer Hit", ReleaseDate: "2026-06-01"})
	env.catalog.Put(game.Game{ID: "g-hidden", Name: "Hidden", ReleaseDate: "2026-02-01", IsHidden: true})

	svc := NewGameService(env.catalog, env.leagues, env.bookmarks, env.logger)

	got, err := svc.ListDraftable(t.Context(), ListDraftableInput{LeagueID: "lg-1"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "g-early", got[0].ID)
	assert.Equal(t, "g-late", got[1].ID)

	got, err = svc.ListDraftable(t.Context(), ListDraftableInput{LeagueID: "lg-1", Phase: "summer", Search: "HIT"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "g-summer", got[0].ID)
}

func TestGameService_ListDraftableRejectsBadInput(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, time.Now())
	env.seedLeague(t, "lg-1", "alice")
	svc := NewGameService(env.catalog, env.leagues, env.bookmarks, env.logger)

	_, err := svc.ListDraftable(t.Context(), ListDraftableInput{LeagueID: "lg-1", Phase: "spring"})
	assert.True(t, errors.Is(err, ErrInvalidInput), "got %v", err)

	_, err = svc.ListDraftable(t.Context(), ListDraftableInput{ReleaseFrom: "2026-05-01", ReleaseTo: "2026-01-01"})
	assert.True(t, errors.Is(err, ErrInvalidInput), "got %v", err)

	_, err = svc.ListDraftable(t.Context(), ListDraftableInput{LeagueID: "missing"})
	assert.True(t, errors.Is(err, ErrLeagueNotFound), "got %v", err)
}

func seedGameList(t *testing.T, env *testEnv) *GameService {
	t.Helper()

	env.catalog.Put(game.Game{ID: "g-a", Name: "Aurora", ReleaseDate: "2026-03-01"})
	env.catalog.Put(game.Game{ID: "g-b", Name: "brightfall", ReleaseDate: "2026-01-20"})
	env.catalog.Put(game.Game{ID: "g-c", Name: "Cinder", ReleaseDate: "2026-07-04"})
	env.catalog.Put(game.Game{ID: "g-d", Name: "Dusk", ReleaseDate: "2026-09-09"})
	env.catalog.Put(game.Game{ID: "g-h", Name: "Hidden", ReleaseDate: "2026-02-02", IsHidden: true})
	env.catalog.Put(game.Game{ID: "g-old", Name: "Relic", ReleaseDate: "2024-05-05"})
	env.catalog.Put(game.Game{ID: "g-none", Name: "Someday"})

	seedHistory(t, env, "g-a", map[string]float64{"2026-03-02": 40})
	seedHistory(t, env, "g-c", map[string]float64{"2026-07-05": 90})
	seedHistory(t, env, "g-d", map[string]float64{"2026-09-10": 5})

	return NewGameService(env.catalog, env.leagues, env.bookmarks, env.logger)
}

func entryIDs(entries []game.ListEntry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.ID)
	}
	return out
}

func TestGameService_ListGamesSortsAndPages(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, time.Date(2026, time.October, 1, 0, 0, 0, 0, time.UTC))
	svc := seedGameList(t, env)

	page, err := svc.ListGames(t.Context(), ListGamesInput{Year: "2026"})
	require.NoError(t, err)
	assert.Equal(t, 4, page.Total)
	assert.Equal(t, []string{"g-b", "g-a", "g-c", "g-d"}, entryIDs(page.Games))

	page, err = svc.ListGames(t.Context(), ListGamesInput{Year: "2026", SortBy: "score", Order: "desc"})
	require.NoError(t, err)
	assert.Equal(t, []string{"g-c", "g-a", "g-d", "g-b"}, entryIDs(page.Games))
	require.NotNil(t, page.Games[0].Score)
	assert.InDelta(t, 90, *page.Games[0].Score, 1e-9)
	assert.Nil(t, page.Games[3].Score)

	page, err = svc.ListGames(t.Context(), ListGamesInput{Year: "2026", SortBy: "score", Order: "asc"})
	require.NoError(t, err)
	assert.Equal(t, []string{"g-d", "g-a", "g-c", "g-b"}, entryIDs(page.Games), "unscored games stay last")

	page, err = svc.ListGames(t.Context(), ListGamesInput{Year: "2026", SortBy: "name", Limit: 2, Offset: 1})
	require.NoError(t, err)
	assert.Equal(t, 4, page.Total)
	assert.Equal(t, []string{"g-b", "g-c"}, entryIDs(page.Games))

	page, err = svc.ListGames(t.Context(), ListGamesInput{Year: "2026", Offset: 10})
	require.NoError(t, err)
	assert.Equal(t, 4, page.Total)
	assert.Empty(t, page.Games)

	page, err = svc.ListGames(t.Context(), ListGamesInput{Year: "2026", Search: "DUS", ReleaseFrom: "2026-06-01"})
	require.NoError(t, err)
	assert.Equal(t, []string{"g-d"}, entryIDs(page.Games))
}

func TestGameService_ListGamesDefaultsToNewestYear(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, time.Now())
	svc := seedGameList(t, env)

	years, err := svc.ListGameYears(t.Context())
	require.NoError(t, err)
	assert.Equal(t, []int{2026, 2024}, years)

	page, err := svc.ListGames(t.Context(), ListGamesInput{})
	require.NoError(t, err)
	assert.Equal(t, 4, page.Total)

	page, err = svc.ListGames(t.Context(), ListGamesInput{Year: "2024"})
	require.NoError(t, err)
	assert.Equal(t, []string{"g-old"}, entryIDs(page.Games))

	empty := NewGameService(newTestEnv(t, time.Now()).catalog, env.leagues, env.bookmarks, env.logger)
	page, err = empty.ListGames(t.Context(), ListGamesInput{})
	require.NoError(t, err)
	assert.Zero(t, page.Total)
	assert.Empty(t, page.Games)
}

func TestGameService_ListGamesRejectsBadInput(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, time.Now())
	svc := seedGameList(t, env)

	for _, input := range []ListGamesInput{
		{Year: "twenty"},
		{Year: "2026", SortBy: "popularity"},
		{Year: "2026", Order: "up"},
		{Year: "2026", Offset: -1},
	} {
		_, err := svc.ListGames(t.Context(), input)
		assert.True(t, errors.Is(err, ErrInvalidInput), "input=%+v got %v", input, err)
	}
}

func TestGameService_BookmarksAreIdempotent(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, time.Now())
	svc := seedGameList(t, env)
	ctx := t.Context()

	ids, err := svc.ListBookmarks(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, ids)

	require.NoError(t, svc.AddBookmark(ctx, "alice", "g-c"))
	require.NoError(t, svc.AddBookmark(ctx, "alice", "g-a"))
	require.NoError(t, svc.AddBookmark(ctx, "alice", "g-c"))
	require.NoError(t, svc.AddBookmark(ctx, "bob", "g-d"))

	ids, err = svc.ListBookmarks(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"g-c", "g-a"}, ids)

	require.NoError(t, svc.RemoveBookmark(ctx, "alice", "g-c"))
	require.NoError(t, svc.RemoveBookmark(ctx, "alice", "g-c"))
	ids, err = svc.ListBookmarks(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"g-a"}, ids)

	ids, err = svc.ListBookmarks(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, []string{"g-d"}, ids)

	err = svc.AddBookmark(ctx, "alice", "g-missing")
	assert.True(t, errors.Is(err, ErrNotFound), "got %v", err)
	err = svc.AddBookmark(ctx, "", "g-a")
	assert.True(t, errors.Is(err, ErrInvalidInput), "got %v", err)
}
