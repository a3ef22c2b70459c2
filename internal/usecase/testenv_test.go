package usecase

import (
	"fmt"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/riskibarqy/release-league/internal/domain/game"
	"github.com/riskibarqy/release-league/internal/domain/league"
	"github.com/riskibarqy/release-league/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/release-league/internal/platform/logging"
)

type testEnv struct {
	store         *memory.Store
	leagues       *memory.LeagueRepository
	teams         *memory.TeamRepository
	drafts        *memory.DraftRepository
	catalog       *memory.GameCatalog
	bookmarks     *memory.BookmarkRepository
	scores        *memory.GameScoreRepository
	leagueScoring *memory.LeagueScoringRepository
	snapshots     *memory.SeasonSnapshotRepository
	clock         *clockwork.FakeClock
	logger        *logging.Logger
}

func newTestEnv(t *testing.T, now time.Time) *testEnv {
	t.Helper()

	store := memory.NewStore()
	return &testEnv{
		store:         store,
		leagues:       memory.NewLeagueRepository(store),
		teams:         memory.NewTeamRepository(store),
		drafts:        memory.NewDraftRepository(store),
		catalog:       memory.NewGameCatalog(nil).WithScores(store),
		bookmarks:     memory.NewBookmarkRepository(store),
		scores:        memory.NewGameScoreRepository(store),
		leagueScoring: memory.NewLeagueScoringRepository(store),
		snapshots:     memory.NewSeasonSnapshotRepository(store),
		clock:         clockwork.NewFakeClockAt(now),
		logger:        logging.NewNop(),
	}
}

func newTestLeagueRepo() league.Repository {
	return memory.NewLeagueRepository(memory.NewStore())
}

// seedLeague stores a league whose first member is the commissioner.
func (e *testEnv) seedLeague(t *testing.T, leagueID string, members ...string) league.League {
	t.Helper()

	item := league.League{
		ID:             leagueID,
		Name:           "League " + leagueID,
		Code:           "CODE-" + leagueID,
		CommissionerID: members[0],
		Season:         "2026",
		Status:         league.StatusDraft,
		CurrentPhase:   league.PhaseWinter,
		Members:        []string{members[0]},
		DelistedGames:  []string{},
	}
	if err := e.leagues.Create(t.Context(), item, ""); err != nil {
		t.Fatalf("seed league: %v", err)
	}
	for _, userID := range members[1:] {
		if err := e.leagues.AddMember(t.Context(), leagueID, userID, ""); err != nil {
			t.Fatalf("seed member %s: %v", userID, err)
		}
	}

	out, _, err := e.leagues.GetByID(t.Context(), leagueID)
	if err != nil {
		t.Fatalf("reload league: %v", err)
	}
	return out
}

// seedGames adds n visible, released games named game-01..game-n.
func (e *testEnv) seedGames(n int) []string {
	ids := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		id := e.gameID(i)
		e.catalog.Put(game.Game{
			ID:          id,
			Name:        fmt.Sprintf("Game %02d", i),
			ReleaseDate: "2026-01-15",
			SteamAppID:  fmt.Sprintf("%d", 1000+i),
		})
		ids = append(ids, id)
	}
	return ids
}

func (e *testEnv) gameID(n int) string {
	return fmt.Sprintf("game-%02d", n)
}
