package draft

import (
	"slices"

	"github.com/riskibarqy/release-league/internal/domain/league"
	"github.com/riskibarqy/release-league/internal/domain/team"
)

var seasonalPicksByPlayerCount = map[int]int{
	2: 8,
	3: 6,
	4: 4,
	5: 3,
	6: 2,
	7: 2,
	8: 2,
}

// SeasonalPicksForPlayerCount bounds the drafted pool: more players, fewer
// seasonal picks each.
func SeasonalPicksForPlayerCount(players int) int {
	if n, ok := seasonalPicksByPlayerCount[players]; ok {
		return n
	}
	return 2
}

// TotalRounds is hit + bomb + seasonal + alt in winter and seasonal + alt
// otherwise.
func TotalRounds(phase league.Phase, seasonal int) int {
	if phase == league.PhaseWinter {
		return seasonal + 3
	}
	return seasonal + 1
}

// SnakeOrder returns the pick order for a 1-indexed round. Odd rounds use
// order as given and even rounds reverse it.
func SnakeOrder(order []string, round int) []string {
	if round%2 == 0 {
		reversed := slices.Clone(order)
		slices.Reverse(reversed)
		return reversed
	}
	return order
}

// CalculateNextPick maps a flat slot index to the pick on the clock. It
// returns complete=true once the index passes the last slot of the phase.
func CalculateNextPick(order []string, index int, phase league.Phase, seasonal int) (*CurrentPick, bool) {
	n := len(order)
	if n == 0 || index < 0 || index >= TotalRounds(phase, seasonal)*n {
		return nil, true
	}

	round := index/n + 1
	position := index % n
	return &CurrentPick{
		Round:    round,
		Position: position,
		UserID:   SnakeOrder(order, round)[position],
	}, false
}

// EligiblePickTypes returns what a user may pick next given the types they
// already picked in this draft.
func EligiblePickTypes(phase league.Phase, seasonal int, prior []team.PickType) []team.PickType {
	k := len(prior)

	if phase == league.PhaseWinter {
		switch {
		case k == 0:
			return []team.PickType{team.PickHit, team.PickBomb}
		case k == 1:
			if prior[0] == team.PickHit {
				return []team.PickType{team.PickBomb}
			}
			return []team.PickType{team.PickHit}
		case k < 2+seasonal:
			return []team.PickType{team.PickSeasonal}
		case k < 3+seasonal:
			return []team.PickType{team.PickAlt}
		}
		return nil
	}

	switch {
	case k < seasonal:
		return []team.PickType{team.PickSeasonal}
	case k < seasonal+1:
		return []team.PickType{team.PickAlt}
	}
	return nil
}

// Advance moves the clock to the slot after the last recorded pick or skip,
// completing the draft when no slot is left.
func (d *Draft) Advance() {
	next, complete := CalculateNextPick(d.Order, d.NextSlotIndex(), d.Phase, d.SeasonalPicks())
	if complete {
		d.Status = StatusCompleted
		d.CurrentPick = nil
		return
	}
	d.CurrentPick = next
}

// Start opens the draft at round 1, position 0.
func (d *Draft) Start() {
	d.Status = StatusActive
	d.Advance()
}
