package draft

import (
	"fmt"
	"regexp"
	"slices"
	"time"

	"github.com/riskibarqy/release-league/internal/domain/league"
	"github.com/riskibarqy/release-league/internal/domain/team"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
)

// Pick is one recorded selection. SlotIndex is the flat pick index it filled.
type Pick struct {
	UserID    string        `json:"userId"`
	GameID    string        `json:"gameId"`
	PickType  team.PickType `json:"pickType"`
	SlotIndex int           `json:"slotIndex"`
	CreatedAt time.Time     `json:"timestamp"`
}

// Skip records a slot that was passed over without a pick.
type Skip struct {
	UserID    string    `json:"userId"`
	SlotIndex int       `json:"slotIndex"`
	CreatedAt time.Time `json:"timestamp"`
}

type CurrentPick struct {
	Round    int    `json:"round"`
	Position int    `json:"position"`
	UserID   string `json:"userId"`
}

// Draft is one phase draft of one league season, keyed by ID() of its phase
// and season.
type Draft struct {
	LeagueID       string
	Phase          league.Phase
	Season         string
	Status         Status
	Order          []string
	CurrentPick    *CurrentPick
	Picks          []Pick
	Skips          []Skip
	PresentUserIDs []string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (d Draft) ID() string {
	return ID(d.Phase, d.Season)
}

func (d Draft) Validate() error {
	if d.LeagueID == "" {
		return fmt.Errorf("draft league id is required")
	}
	if !d.Phase.Valid() {
		return fmt.Errorf("invalid draft phase: %s", d.Phase)
	}
	if _, err := league.ParseSeason(d.Season); err != nil {
		return err
	}
	if len(d.Order) == 0 {
		return fmt.Errorf("draft order is required")
	}
	seen := make(map[string]struct{}, len(d.Order))
	for _, userID := range d.Order {
		if _, dup := seen[userID]; dup {
			return fmt.Errorf("duplicate user in draft order: %s", userID)
		}
		seen[userID] = struct{}{}
	}

	return nil
}

// NextSlotIndex is the flat index of the slot currently on the clock.
func (d Draft) NextSlotIndex() int {
	return len(d.Picks) + len(d.Skips)
}

func (d Draft) HasGame(gameID string) bool {
	return slices.ContainsFunc(d.Picks, func(p Pick) bool { return p.GameID == gameID })
}

// PickTypesOf returns the pick types userID already used in this draft.
func (d Draft) PickTypesOf(userID string) []team.PickType {
	out := make([]team.PickType, 0, 4)
	for _, p := range d.Picks {
		if p.UserID == userID {
			out = append(out, p.PickType)
		}
	}
	return out
}

// Turn returns the user on the clock, or false when none is.
func (d Draft) Turn() (string, bool) {
	if d.Status != StatusActive || d.CurrentPick == nil {
		return "", false
	}
	return d.CurrentPick.UserID, d.CurrentPick.UserID != ""
}

func (d Draft) SeasonalPicks() int {
	return SeasonalPicksForPlayerCount(len(d.Order))
}

func (d Draft) Clone() Draft {
	out := d
	out.Order = slices.Clone(d.Order)
	out.Picks = slices.Clone(d.Picks)
	out.Skips = slices.Clone(d.Skips)
	out.PresentUserIDs = slices.Clone(d.PresentUserIDs)
	if d.CurrentPick != nil {
		cp := *d.CurrentPick
		out.CurrentPick = &cp
	}
	return out
}

var idPattern = regexp.MustCompile(`^(winter|summer|fall)-(\d{4})$`)

// ID builds the draft key, for example "winter-2026".
func ID(phase league.Phase, season string) string {
	return string(phase) + "-" + season
}

func ParseID(draftID string) (league.Phase, string, error) {
	match := idPattern.FindStringSubmatch(draftID)
	if match == nil {
		return "", "", fmt.Errorf("invalid draft id: %q", draftID)
	}
	return league.Phase(match[1]), match[2], nil
}
