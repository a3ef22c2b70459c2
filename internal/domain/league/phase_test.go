package league

import (
	"testing"
	"time"
)

func TestPhaseForDate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		month time.Month
		want  Phase
	}{
		{time.January, PhaseWinter},
		{time.April, PhaseWinter},
		{time.May, PhaseSummer},
		{time.August, PhaseSummer},
		{time.September, PhaseFall},
		{time.December, PhaseFall},
	}
	for _, tc := range tests {
		got := PhaseForDate(time.Date(2026, tc.month, 15, 0, 0, 0, 0, time.UTC))
		if got != tc.want {
			t.Fatalf("unexpected phase for %s: got=%s want=%s", tc.month, got, tc.want)
		}
	}
}

func TestNextPhase_DraftCompletedAdvancesThroughSequence(t *testing.T) {
	t.Parallel()

	state := State{Phase: PhaseWinter, Status: StatusDraft}

	state = NextPhase(state, DraftCompleted{Phase: PhaseWinter})
	if state != (State{Phase: PhaseSummer, Status: StatusActive}) {
		t.Fatalf("unexpected state after winter: %+v", state)
	}

	state = NextPhase(state, DraftCompleted{Phase: PhaseSummer})
	if state != (State{Phase: PhaseFall, Status: StatusActive}) {
		t.Fatalf("unexpected state after summer: %+v", state)
	}

	state = NextPhase(state, DraftCompleted{Phase: PhaseFall})
	if state != (State{Phase: PhaseFall, Status: StatusCompleted}) {
		t.Fatalf("unexpected state after fall: %+v", state)
	}

	if again := NextPhase(state, DraftCompleted{Phase: PhaseFall}); again != state {
		t.Fatalf("completed league must not change: %+v", again)
	}
}

func TestNextPhase_DraftCompletedForPastPhaseIsNoop(t *testing.T) {
	t.Parallel()

	current := State{Phase: PhaseFall, Status: StatusActive}
	got := NextPhase(current, DraftCompleted{Phase: PhaseWinter})
	if got != current {
		t.Fatalf("expected no backward move, got %+v", got)
	}
}

func TestNextPhase_DraftCompletedOutOfSequenceIsNoop(t *testing.T) {
	t.Parallel()

	current := State{Phase: PhaseWinter, Status: StatusDraft}
	for _, completed := range []Phase{PhaseSummer, PhaseFall} {
		if got := NextPhase(current, DraftCompleted{Phase: completed}); got != current {
			t.Fatalf("%s draft moved a winter league to %+v", completed, got)
		}
	}

	if got := NextPhase(current, DraftCompleted{}); got != (State{Phase: PhaseSummer, Status: StatusActive}) {
		t.Fatalf("empty phase should advance from current, got %+v", got)
	}
}

func TestNextPhase_CalendarSyncNeverMovesBackward(t *testing.T) {
	t.Parallel()

	march := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	current := State{Phase: PhaseSummer, Status: StatusActive}

	got := NextPhase(current, CalendarSync{Today: march})
	if got != current {
		t.Fatalf("expected phase to stay at summer, got %+v", got)
	}
}

func TestNextPhase_CalendarSyncRepairsMissedAdvance(t *testing.T) {
	t.Parallel()

	june := time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)
	current := State{Phase: PhaseWinter, Status: StatusDraft}

	got := NextPhase(current, CalendarSync{Today: june, Completed: map[Phase]bool{PhaseWinter: true}})
	if got != (State{Phase: PhaseSummer, Status: StatusActive}) {
		t.Fatalf("unexpected repaired state: %+v", got)
	}

	got = NextPhase(current, CalendarSync{Today: june, Completed: map[Phase]bool{PhaseSummer: true}})
	if got != (State{Phase: PhaseFall, Status: StatusActive}) {
		t.Fatalf("expected completed summer to be skipped, got %+v", got)
	}
}

func TestEffectivePhase_AllCompleted(t *testing.T) {
	t.Parallel()

	_, ok := EffectivePhase(time.Date(2026, time.October, 1, 0, 0, 0, 0, time.UTC), map[Phase]bool{PhaseFall: true})
	if ok {
		t.Fatalf("expected no effective phase when fall is completed in october")
	}
}

func TestDefaultSeason(t *testing.T) {
	t.Parallel()

	if got := DefaultSeason(time.Date(2025, time.December, 3, 0, 0, 0, 0, time.UTC)); got != "2026" {
		t.Fatalf("unexpected december season: %s", got)
	}
	if got := DefaultSeason(time.Date(2026, time.March, 3, 0, 0, 0, 0, time.UTC)); got != "2026" {
		t.Fatalf("unexpected march season: %s", got)
	}
}
