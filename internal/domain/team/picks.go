package team

import (
	"errors"
	"fmt"
	"slices"

	"github.com/riskibarqy/release-league/internal/domain/league"
)

var (
	ErrUnknownPickType = errors.New("unknown pick type")
	ErrSlotTaken       = errors.New("pick slot already filled")
)

type PickType string

const (
	PickHit      PickType = "hitPick"
	PickBomb     PickType = "bombPick"
	PickSeasonal PickType = "seasonalPick"
	PickAlt      PickType = "altPick"
)

// Slot is where a pick type is stored on a roster.
type Slot int

const (
	SlotHit Slot = iota + 1
	SlotBomb
	SlotPhase
	SlotAlt
)

func ParsePickType(raw string) (PickType, error) {
	p := PickType(raw)
	if _, err := p.Slot(); err != nil {
		return "", err
	}
	return p, nil
}

// Slot maps every pick type to exactly one storage slot.
func (p PickType) Slot() (Slot, error) {
	switch p {
	case PickHit:
		return SlotHit, nil
	case PickBomb:
		return SlotBomb, nil
	case PickSeasonal:
		return SlotPhase, nil
	case PickAlt:
		return SlotAlt, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownPickType, string(p))
}

// Picks is the roster. Phase arrays are append-only during their draft.
type Picks struct {
	HitPick     string   `json:"hitPick,omitempty"`
	BombPick    string   `json:"bombPick,omitempty"`
	WinterPicks []string `json:"winterPicks"`
	SummerPicks []string `json:"summerPicks"`
	FallPicks   []string `json:"fallPicks"`
	AltPicks    []string `json:"altPicks"`
}

func EmptyPicks() Picks {
	return Picks{
		WinterPicks: []string{},
		SummerPicks: []string{},
		FallPicks:   []string{},
		AltPicks:    []string{},
	}
}

func (p Picks) Clone() Picks {
	return Picks{
		HitPick:     p.HitPick,
		BombPick:    p.BombPick,
		WinterPicks: slices.Clone(p.WinterPicks),
		SummerPicks: slices.Clone(p.SummerPicks),
		FallPicks:   slices.Clone(p.FallPicks),
		AltPicks:    slices.Clone(p.AltPicks),
	}
}

// Apply mirrors a draft pick into its slot.
func (p *Picks) Apply(phase league.Phase, pickType PickType, gameID string) error {
	slot, err := pickType.Slot()
	if err != nil {
		return err
	}

	switch slot {
	case SlotHit:
		if p.HitPick != "" {
			return fmt.Errorf("%w: hit", ErrSlotTaken)
		}
		p.HitPick = gameID
	case SlotBomb:
		if p.BombPick != "" {
			return fmt.Errorf("%w: bomb", ErrSlotTaken)
		}
		p.BombPick = gameID
	case SlotPhase:
		phasePicks, err := p.phasePicks(phase)
		if err != nil {
			return err
		}
		*phasePicks = append(*phasePicks, gameID)
	case SlotAlt:
		p.AltPicks = append(p.AltPicks, gameID)
	}

	return nil
}

func (p *Picks) phasePicks(phase league.Phase) (*[]string, error) {
	switch phase {
	case league.PhaseWinter:
		return &p.WinterPicks, nil
	case league.PhaseSummer:
		return &p.SummerPicks, nil
	case league.PhaseFall:
		return &p.FallPicks, nil
	}
	return nil, fmt.Errorf("invalid phase: %s", phase)
}

// SeasonalGameIDs lists seasonal picks in winter, summer, fall order.
func (p Picks) SeasonalGameIDs() []string {
	out := make([]string, 0, len(p.WinterPicks)+len(p.SummerPicks)+len(p.FallPicks))
	out = append(out, p.WinterPicks...)
	out = append(out, p.SummerPicks...)
	out = append(out, p.FallPicks...)
	return out
}

// AllGameIDs lists every drafted id including the bomb and alt picks.
func (p Picks) AllGameIDs() []string {
	out := make([]string, 0, 2+len(p.WinterPicks)+len(p.SummerPicks)+len(p.FallPicks)+len(p.AltPicks))
	if p.HitPick != "" {
		out = append(out, p.HitPick)
	}
	if p.BombPick != "" {
		out = append(out, p.BombPick)
	}
	out = append(out, p.SeasonalGameIDs()...)
	out = append(out, p.AltPicks...)
	return out
}

// ScoringGameIDs returns the games that add to the team's score. Each
// delisted seasonal pick consumes the next alt pick, in phase order. The bomb
// pick never scores for its own team.
func (p Picks) ScoringGameIDs(delisted []string) []string {
	delistedSet := make(map[string]struct{}, len(delisted))
	for _, id := range delisted {
		delistedSet[id] = struct{}{}
	}

	out := make([]string, 0, 1+len(p.WinterPicks)+len(p.SummerPicks)+len(p.FallPicks))
	if p.HitPick != "" {
		out = append(out, p.HitPick)
	}

	altIdx := 0
	for _, gameID := range p.SeasonalGameIDs() {
		if _, gone := delistedSet[gameID]; !gone {
			out = append(out, gameID)
			continue
		}
		if altIdx < len(p.AltPicks) {
			out = append(out, p.AltPicks[altIdx])
		}
		altIdx++
	}

	return out
}
