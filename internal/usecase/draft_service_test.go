package usecase

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/riskibarqy/release-league/internal/domain/draft"
	"github.com/riskibarqy/release-league/internal/domain/game"
	"github.com/riskibarqy/release-league/internal/domain/league"
	"github.com/riskibarqy/release-league/internal/domain/team"
)

var draftTestNow = time.Date(2026, time.February, 10, 18, 0, 0, 0, time.UTC)

type recordingPublisher struct {
	mu     sync.Mutex
	events []DraftEvent
}

func (p *recordingPublisher) PublishDraftEvent(_ context.Context, event DraftEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func newDraftFixture(t *testing.T, phase league.Phase, members ...string) (*testEnv, *DraftService, *recordingPublisher, draft.Draft) {
	t.Helper()

	env := newTestEnv(t, draftTestNow)
	env.seedLeague(t, "lg-1", members...)
	env.seedGames(40)

	phases := NewPhaseService(env.leagues, env.drafts, env.clock, env.logger)
	events := &recordingPublisher{}
	svc := NewDraftService(env.leagues, env.drafts, env.catalog, phases, events, env.logger)
	svc.now = func() time.Time { return draftTestNow }

	created, err := svc.CreateDraft(t.Context(), CreateDraftInput{
		LeagueID: "lg-1",
		ActorID:  members[0],
		Phase:    string(phase),
		Order:    members,
	})
	if err != nil {
		t.Fatalf("create draft: %v", err)
	}
	started, err := svc.StartDraft(t.Context(), "lg-1", created.ID(), members[0])
	if err != nil {
		t.Fatalf("start draft: %v", err)
	}
	return env, svc, events, started
}

func TestDraftService_SubmitPick_NotYourTurnLeavesStateUnchanged(t *testing.T) {
	t.Parallel()

	env, svc, _, started := newDraftFixture(t, league.PhaseWinter, "alice", "bob")

	beforeTeam, _, _ := env.teams.GetByUser(t.Context(), "lg-1", "bob")
	_, err := svc.SubmitPick(t.Context(), SubmitPickInput{
		LeagueID: "lg-1",
		DraftID:  started.ID(),
		UserID:   "bob",
		GameID:   "game-01",
		PickType: string(team.PickHit),
	})
	if !errors.Is(err, ErrNotYourTurn) {
		t.Fatalf("expected ErrNotYourTurn, got %v", err)
	}

	after, err := svc.GetDraft(t.Context(), "lg-1", started.ID())
	if err != nil {
		t.Fatalf("get draft: %v", err)
	}
	if !reflect.DeepEqual(after, started) {
		t.Fatalf("draft changed after rejected pick: got=%+v want=%+v", after, started)
	}
	afterTeam, _, _ := env.teams.GetByUser(t.Context(), "lg-1", "bob")
	if !reflect.DeepEqual(afterTeam, beforeTeam) {
		t.Fatalf("team changed after rejected pick: got=%+v want=%+v", afterTeam, beforeTeam)
	}
}

func TestDraftService_SubmitPick_SnakeTurnsAndRosterMirror(t *testing.T) {
	t.Parallel()

	env, svc, events, started := newDraftFixture(t, league.PhaseWinter, "alice", "bob")

	steps := []struct {
		userID   string
		gameID   string
		pickType team.PickType
	}{
		{"alice", "game-01", team.PickHit},
		{"bob", "game-02", team.PickBomb},
		{"bob", "game-03", team.PickHit},
		{"alice", "game-04", team.PickBomb},
		{"alice", "game-05", team.PickSeasonal},
	}

	current := started
	for i, step := range steps {
		next, err := svc.SubmitPick(t.Context(), SubmitPickInput{
			LeagueID: "lg-1",
			DraftID:  current.ID(),
			UserID:   step.userID,
			GameID:   step.gameID,
			PickType: string(step.pickType),
		})
		if err != nil {
			t.Fatalf("pick %d by %s: %v", i, step.userID, err)
		}

		want, complete := draft.CalculateNextPick(next.Order, i+1, next.Phase, next.SeasonalPicks())
		if complete {
			t.Fatalf("draft completed early at pick %d", i)
		}
		if !reflect.DeepEqual(next.CurrentPick, want) {
			t.Fatalf("unexpected current pick after %d: got=%+v want=%+v", i, next.CurrentPick, want)
		}
		current = next
	}

	alice, _, _ := env.teams.GetByUser(t.Context(), "lg-1", "alice")
	if alice.Picks.HitPick != "game-01" || alice.Picks.BombPick != "game-04" {
		t.Fatalf("unexpected alice singletons: %+v", alice.Picks)
	}
	if !reflect.DeepEqual(alice.Picks.WinterPicks, []string{"game-05"}) {
		t.Fatalf("unexpected alice winter picks: got=%v", alice.Picks.WinterPicks)
	}
	bob, _, _ := env.teams.GetByUser(t.Context(), "lg-1", "bob")
	if bob.Picks.HitPick != "game-03" || bob.Picks.BombPick != "game-02" {
		t.Fatalf("unexpected bob singletons: %+v", bob.Picks)
	}

	var picks int
	for _, ev := range events.events {
		if ev.Type == DraftEventPick {
			picks++
		}
	}
	if picks != len(steps) {
		t.Fatalf("unexpected pick events: got=%d want=%d", picks, len(steps))
	}
}

func TestDraftService_SubmitPick_Rejections(t *testing.T) {
	t.Parallel()

	env, svc, _, started := newDraftFixture(t, league.PhaseWinter, "alice", "bob")
	env.catalog.Put(game.Game{ID: "hidden-1", Name: "Hidden", ReleaseDate: "2026-01-01", IsHidden: true})

	if _, err := svc.SubmitPick(t.Context(), SubmitPickInput{
		LeagueID: "lg-1", DraftID: started.ID(), UserID: "alice", GameID: "game-01", PickType: string(team.PickSeasonal),
	}); !errors.Is(err, ErrInvalidPickType) {
		t.Fatalf("expected ErrInvalidPickType for early seasonal, got %v", err)
	}
	if _, err := svc.SubmitPick(t.Context(), SubmitPickInput{
		LeagueID: "lg-1", DraftID: started.ID(), UserID: "alice", GameID: "game-01", PickType: "wildcard",
	}); !errors.Is(err, ErrInvalidPickType) {
		t.Fatalf("expected ErrInvalidPickType for unknown type, got %v", err)
	}
	if _, err := svc.SubmitPick(t.Context(), SubmitPickInput{
		LeagueID: "lg-1", DraftID: started.ID(), UserID: "alice", GameID: "hidden-1", PickType: string(team.PickHit),
	}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for hidden game, got %v", err)
	}

	if _, err := svc.SubmitPick(t.Context(), SubmitPickInput{
		LeagueID: "lg-1", DraftID: started.ID(), UserID: "alice", GameID: "game-01", PickType: string(team.PickHit),
	}); err != nil {
		t.Fatalf("valid pick: %v", err)
	}
	if _, err := svc.SubmitPick(t.Context(), SubmitPickInput{
		LeagueID: "lg-1", DraftID: started.ID(), UserID: "bob", GameID: "game-01", PickType: string(team.PickHit),
	}); !errors.Is(err, ErrGameAlreadyDrafted) {
		t.Fatalf("expected ErrGameAlreadyDrafted, got %v", err)
	}
	if _, err := svc.SubmitPick(t.Context(), SubmitPickInput{
		LeagueID: "lg-1", DraftID: "summer-2026", UserID: "bob", GameID: "game-02", PickType: string(team.PickSeasonal),
	}); !errors.Is(err, ErrDraftNotFound) {
		t.Fatalf("expected ErrDraftNotFound, got %v", err)
	}
}

// completeDraft fills every slot with the first eligible pick type and
// returns the final draft and the last game number used.
func completeDraft(t *testing.T, env *testEnv, svc *DraftService, started draft.Draft) (draft.Draft, int) {
	t.Helper()

	total := draft.TotalRounds(started.Phase, started.SeasonalPicks()) * len(started.Order)
	current := started
	gameNo := 0
	for i := 0; i < total; i++ {
		userID, ok := current.Turn()
		if !ok {
			t.Fatalf("draft closed early at slot %d", i)
		}
		eligible := draft.EligiblePickTypes(current.Phase, current.SeasonalPicks(), current.PickTypesOf(userID))
		gameNo++
		next, err := svc.SubmitPick(t.Context(), SubmitPickInput{
			LeagueID: "lg-1",
			DraftID:  current.ID(),
			UserID:   userID,
			GameID:   env.gameID(gameNo),
			PickType: string(eligible[0]),
		})
		if err != nil {
			t.Fatalf("pick %d: %v", i, err)
		}
		current = next
	}
	return current, gameNo
}

func TestDraftService_CompletingDraftAdvancesPhase(t *testing.T) {
	t.Parallel()

	env, svc, events, started := newDraftFixture(t, league.PhaseSummer, "alice", "bob")
	if err := env.leagues.UpdateState(t.Context(), "lg-1", league.State{Phase: league.PhaseSummer, Status: league.StatusActive}); err != nil {
		t.Fatalf("move league to summer: %v", err)
	}

	current, gameNo := completeDraft(t, env, svc, started)

	if current.Status != draft.StatusCompleted || current.CurrentPick != nil {
		t.Fatalf("expected completed draft, got status=%s current=%+v", current.Status, current.CurrentPick)
	}

	l, _, _ := env.leagues.GetByID(t.Context(), "lg-1")
	if l.CurrentPhase != league.PhaseFall || l.Status != league.StatusActive {
		t.Fatalf("unexpected league state: phase=%s status=%s", l.CurrentPhase, l.Status)
	}

	alice, _, _ := env.teams.GetByUser(t.Context(), "lg-1", "alice")
	if len(alice.Picks.SummerPicks) != started.SeasonalPicks() || len(alice.Picks.AltPicks) != 1 {
		t.Fatalf("unexpected alice roster: %+v", alice.Picks)
	}

	if last := events.events[len(events.events)-1]; last.Type != DraftEventCompleted {
		t.Fatalf("unexpected last event: got=%s want=%s", last.Type, DraftEventCompleted)
	}

	if _, err := svc.SubmitPick(t.Context(), SubmitPickInput{
		LeagueID: "lg-1", DraftID: current.ID(), UserID: "alice", GameID: env.gameID(gameNo + 1), PickType: string(team.PickAlt),
	}); !errors.Is(err, ErrNotYourTurn) {
		t.Fatalf("expected ErrNotYourTurn on completed draft, got %v", err)
	}
}

func TestDraftService_ConcurrentPicksForOneSlot(t *testing.T) {
	t.Parallel()

	env, svc, events, started := newDraftFixture(t, league.PhaseWinter, "alice", "bob", "carol")

	// Half the callers retry the same request, the rest race with other games.
	const callers = 16
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := range callers {
		gameID := env.gameID(1)
		if i%2 == 1 {
			gameID = env.gameID(i + 1)
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = svc.SubmitPick(t.Context(), SubmitPickInput{
				LeagueID: "lg-1",
				DraftID:  started.ID(),
				UserID:   "alice",
				GameID:   gameID,
				PickType: string(team.PickHit),
			})
		}()
	}
	wg.Wait()

	accepted := 0
	for i, err := range errs {
		switch {
		case err == nil:
			accepted++
		case errors.Is(err, ErrNotYourTurn), errors.Is(err, ErrGameAlreadyDrafted):
		default:
			t.Fatalf("caller %d: unexpected error %v", i, err)
		}
	}
	if accepted != 1 {
		t.Fatalf("expected exactly one accepted pick, got %d", accepted)
	}

	after, err := svc.GetDraft(t.Context(), "lg-1", started.ID())
	if err != nil {
		t.Fatalf("get draft: %v", err)
	}
	if len(after.Picks) != 1 || after.Picks[0].UserID != "alice" || after.Picks[0].SlotIndex != 0 {
		t.Fatalf("unexpected draft log: %+v", after.Picks)
	}
	if turn, _ := after.Turn(); turn != "bob" {
		t.Fatalf("expected bob on the clock, got %s", turn)
	}

	alice, _, _ := env.teams.GetByUser(t.Context(), "lg-1", "alice")
	if got := alice.Picks.AllGameIDs(); len(got) != 1 || got[0] != after.Picks[0].GameID {
		t.Fatalf("expected one mirrored pick %s, got %v", after.Picks[0].GameID, got)
	}
	if len(events.events) != 1 {
		t.Fatalf("expected one pick event, got %d", len(events.events))
	}
}

func TestDraftService_OutOfSequenceDraftLeavesPhase(t *testing.T) {
	t.Parallel()

	env, svc, _, started := newDraftFixture(t, league.PhaseSummer, "alice", "bob")

	current, _ := completeDraft(t, env, svc, started)
	if current.Status != draft.StatusCompleted {
		t.Fatalf("expected completed draft, got %s", current.Status)
	}

	l, _, _ := env.leagues.GetByID(t.Context(), "lg-1")
	if l.CurrentPhase != league.PhaseWinter || l.Status != league.StatusDraft {
		t.Fatalf("summer draft moved a winter league to %s/%s", l.CurrentPhase, l.Status)
	}
}

func TestDraftService_CreateDraftRejectsOtherSeasonAndPastPhase(t *testing.T) {
	t.Parallel()

	env, svc, _, _ := newDraftFixture(t, league.PhaseWinter, "alice", "bob")

	if _, err := svc.CreateDraft(t.Context(), CreateDraftInput{
		LeagueID: "lg-1", ActorID: "alice", Phase: string(league.PhaseSummer), Season: "2025",
	}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for other season, got %v", err)
	}

	if err := env.leagues.UpdateState(t.Context(), "lg-1", league.State{Phase: league.PhaseFall, Status: league.StatusActive}); err != nil {
		t.Fatalf("move league to fall: %v", err)
	}
	if _, err := svc.CreateDraft(t.Context(), CreateDraftInput{
		LeagueID: "lg-1", ActorID: "alice", Phase: string(league.PhaseSummer),
	}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for past phase, got %v", err)
	}
}

func TestDraftService_SkipCurrentPickUsesSameClock(t *testing.T) {
	t.Parallel()

	_, svc, _, started := newDraftFixture(t, league.PhaseWinter, "alice", "bob", "carol")

	if _, err := svc.SkipCurrentPick(t.Context(), "lg-1", started.ID(), "bob"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for non-commissioner, got %v", err)
	}

	skipped, err := svc.SkipCurrentPick(t.Context(), "lg-1", started.ID(), "alice")
	if err != nil {
		t.Fatalf("skip: %v", err)
	}
	want, _ := draft.CalculateNextPick(skipped.Order, 1, skipped.Phase, skipped.SeasonalPicks())
	if !reflect.DeepEqual(skipped.CurrentPick, want) {
		t.Fatalf("unexpected current pick after skip: got=%+v want=%+v", skipped.CurrentPick, want)
	}
	if len(skipped.Picks) != 0 || len(skipped.Skips) != 1 || skipped.Skips[0].UserID != "alice" {
		t.Fatalf("unexpected draft log after skip: picks=%v skips=%v", skipped.Picks, skipped.Skips)
	}

	if _, err := svc.SubmitPick(t.Context(), SubmitPickInput{
		LeagueID: "lg-1", DraftID: started.ID(), UserID: "bob", GameID: "game-01", PickType: string(team.PickBomb),
	}); err != nil {
		t.Fatalf("pick after skip: %v", err)
	}
}

func TestDraftService_Presence(t *testing.T) {
	t.Parallel()

	_, svc, _, started := newDraftFixture(t, league.PhaseWinter, "alice", "bob")

	for _, userID := range []string{"bob", "alice", "bob"} {
		if err := svc.SetPresence(t.Context(), "lg-1", started.ID(), userID); err != nil {
			t.Fatalf("set presence %s: %v", userID, err)
		}
	}
	if err := svc.RemovePresence(t.Context(), "lg-1", started.ID(), "bob"); err != nil {
		t.Fatalf("remove presence: %v", err)
	}

	got, err := svc.GetDraft(t.Context(), "lg-1", started.ID())
	if err != nil {
		t.Fatalf("get draft: %v", err)
	}
	if !reflect.DeepEqual(got.PresentUserIDs, []string{"alice"}) {
		t.Fatalf("unexpected presence: got=%v want=%v", got.PresentUserIDs, []string{"alice"})
	}
}

func TestDraftService_SetDraftOrderLockedAfterStart(t *testing.T) {
	t.Parallel()

	_, svc, _, started := newDraftFixture(t, league.PhaseWinter, "alice", "bob")

	_, err := svc.SetDraftOrder(t.Context(), "lg-1", started.ID(), "alice", []string{"bob", "alice"})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}
