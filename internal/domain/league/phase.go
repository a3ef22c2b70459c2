package league

import (
	"fmt"
	"slices"
	"strconv"
	"time"
)

type Phase string

const (
	PhaseWinter Phase = "winter"
	PhaseSummer Phase = "summer"
	PhaseFall   Phase = "fall"
)

// Phases is the fixed order a season moves through.
var Phases = []Phase{PhaseWinter, PhaseSummer, PhaseFall}

func ParsePhase(raw string) (Phase, error) {
	p := Phase(raw)
	if !p.Valid() {
		return "", fmt.Errorf("invalid phase: %q", raw)
	}
	return p, nil
}

func (p Phase) Valid() bool {
	return slices.Contains(Phases, p)
}

func (p Phase) index() int {
	return slices.Index(Phases, p)
}

// Before reports whether p comes earlier in the season than o.
func (p Phase) Before(o Phase) bool {
	return p.index() < o.index()
}

// Next returns the phase that follows p, or false after fall.
func (p Phase) Next() (Phase, bool) {
	idx := p.index()
	if idx < 0 || idx >= len(Phases)-1 {
		return "", false
	}
	return Phases[idx+1], true
}

// PhaseForDate maps a calendar month onto its release window.
// Jan-Apr is winter, May-Aug is summer, Sep-Dec is fall.
func PhaseForDate(t time.Time) Phase {
	switch m := t.Month(); {
	case m <= time.April:
		return PhaseWinter
	case m <= time.August:
		return PhaseSummer
	default:
		return PhaseFall
	}
}

// ReleaseWindow returns the inclusive release-date range a phase drafts from.
func ReleaseWindow(p Phase, year int) (start, end string) {
	switch p {
	case PhaseWinter:
		return fmt.Sprintf("%04d-01-01", year), fmt.Sprintf("%04d-04-30", year)
	case PhaseSummer:
		return fmt.Sprintf("%04d-05-01", year), fmt.Sprintf("%04d-08-31", year)
	default:
		return fmt.Sprintf("%04d-09-01", year), fmt.Sprintf("%04d-12-31", year)
	}
}

func ParseSeason(season string) (int, error) {
	if len(season) != 4 {
		return 0, fmt.Errorf("invalid season: %q", season)
	}
	year, err := strconv.Atoi(season)
	if err != nil || year < 1970 {
		return 0, fmt.Errorf("invalid season: %q", season)
	}
	return year, nil
}

// DefaultSeason is next year during December and the current year otherwise.
func DefaultSeason(now time.Time) string {
	year := now.Year()
	if now.Month() == time.December {
		year++
	}
	return strconv.Itoa(year)
}

// SeasonEndDate is the last scoring date of a season, as YYYY-MM-DD.
func SeasonEndDate(season string) string {
	return season + "-12-31"
}

// State is the part of a league that phase transitions own.
type State struct {
	Phase  Phase
	Status Status
}

// Event drives NextPhase.
type Event interface {
	isPhaseEvent()
}

// DraftCompleted is raised after the draft for Phase commits its last slot.
// An empty Phase means the league's current phase.
type DraftCompleted struct {
	Phase Phase
}

// CalendarSync recomputes the phase from wall-clock date and draft completion.
type CalendarSync struct {
	Today     time.Time
	Completed map[Phase]bool
}

func (DraftCompleted) isPhaseEvent() {}
func (CalendarSync) isPhaseEvent()   {}

// NextPhase is the only transition function for a league's phase. It never
// moves a league backward through the season.
func NextPhase(current State, event Event) State {
	if current.Status == StatusCompleted {
		return current
	}

	switch e := event.(type) {
	case DraftCompleted:
		// Only the draft of the current phase moves the league, one step.
		if e.Phase.Valid() && e.Phase != current.Phase {
			return current
		}
		next, ok := current.Phase.Next()
		if !ok {
			return State{Phase: current.Phase, Status: StatusCompleted}
		}
		return State{Phase: next, Status: StatusActive}

	case CalendarSync:
		effective, ok := EffectivePhase(e.Today, e.Completed)
		if !ok || effective.index() <= current.Phase.index() {
			return current
		}
		status := current.Status
		if status == StatusDraft {
			status = StatusActive
		}
		return State{Phase: effective, Status: status}
	}

	return current
}

// EffectivePhase starts at the phase for today and skips phases whose draft
// already completed. It returns false when every remaining phase is done.
func EffectivePhase(today time.Time, completed map[Phase]bool) (Phase, bool) {
	phase := PhaseForDate(today)
	for {
		if !completed[phase] {
			return phase, true
		}
		next, ok := phase.Next()
		if !ok {
			return "", false
		}
		phase = next
	}
}
