package usecase

import (
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/riskibarqy/release-league/internal/domain/draft"
	"github.com/riskibarqy/release-league/internal/domain/league"
)

func TestPhaseService_AdvancePhaseWalksSeason(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC))
	env.seedLeague(t, "lg-1", "alice", "bob")
	svc := NewPhaseService(env.leagues, env.drafts, env.clock, env.logger)

	steps := []struct {
		completed  league.Phase
		wantPhase  league.Phase
		wantStatus league.Status
	}{
		{league.PhaseFall, league.PhaseWinter, league.StatusDraft},
		{league.PhaseWinter, league.PhaseSummer, league.StatusActive},
		{league.PhaseWinter, league.PhaseSummer, league.StatusActive},
		{league.PhaseSummer, league.PhaseFall, league.StatusActive},
		{league.PhaseFall, league.PhaseFall, league.StatusCompleted},
		{league.PhaseWinter, league.PhaseFall, league.StatusCompleted},
	}
	for i, step := range steps {
		got, err := svc.AdvancePhase(t.Context(), "lg-1", step.completed, "")
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		if got.CurrentPhase != step.wantPhase || got.Status != step.wantStatus {
			t.Fatalf("step %d: got=%s/%s want=%s/%s", i, got.CurrentPhase, got.Status, step.wantPhase, step.wantStatus)
		}
	}
}

func TestPhaseService_AdvancePhaseIgnoresOtherSeason(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC))
	seeded := env.seedLeague(t, "lg-1", "alice", "bob")
	svc := NewPhaseService(env.leagues, env.drafts, env.clock, env.logger)

	got, err := svc.AdvancePhase(t.Context(), "lg-1", league.PhaseWinter, "2025")
	if err != nil {
		t.Fatalf("advance phase: %v", err)
	}
	if got.CurrentPhase != seeded.CurrentPhase || got.Status != seeded.Status {
		t.Fatalf("other-season draft moved league to %s/%s", got.CurrentPhase, got.Status)
	}

	got, err = svc.AdvancePhase(t.Context(), "lg-1", league.PhaseWinter, seeded.Season)
	if err != nil {
		t.Fatalf("advance phase: %v", err)
	}
	if got.CurrentPhase != league.PhaseSummer {
		t.Fatalf("expected summer after own winter draft, got %s", got.CurrentPhase)
	}
}

func TestPhaseService_SyncCurrentPhaseRepairsMissedAdvance(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, time.Date(2026, time.June, 15, 0, 0, 0, 0, time.UTC))
	env.seedLeague(t, "lg-1", "alice", "bob")
	if err := env.drafts.Create(t.Context(), draft.Draft{
		LeagueID: "lg-1",
		Phase:    league.PhaseSummer,
		Season:   "2026",
		Status:   draft.StatusCompleted,
		Order:    []string{"alice", "bob"},
	}); err != nil {
		t.Fatalf("seed draft: %v", err)
	}
	svc := NewPhaseService(env.leagues, env.drafts, env.clock, env.logger)

	got, err := svc.SyncCurrentPhase(t.Context(), "lg-1")
	if err != nil {
		t.Fatalf("sync phase: %v", err)
	}
	if got.CurrentPhase != league.PhaseFall || got.Status != league.StatusActive {
		t.Fatalf("unexpected state: %s/%s", got.CurrentPhase, got.Status)
	}

	earlier := clockwork.NewFakeClockAt(time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC))
	svc = NewPhaseService(env.leagues, env.drafts, earlier, env.logger)
	got, err = svc.SyncCurrentPhase(t.Context(), "lg-1")
	if err != nil {
		t.Fatalf("sync phase again: %v", err)
	}
	if got.CurrentPhase != league.PhaseFall {
		t.Fatalf("phase moved backward to %s", got.CurrentPhase)
	}
}

func TestPhaseService_UnknownLeague(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, time.Now())
	svc := NewPhaseService(env.leagues, env.drafts, env.clock, env.logger)
	if _, err := svc.AdvancePhase(t.Context(), "missing", "", ""); !errors.Is(err, ErrLeagueNotFound) {
		t.Fatalf("expected ErrLeagueNotFound, got %v", err)
	}
}
