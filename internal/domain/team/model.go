package team

import (
	"fmt"
	"strings"
	"time"
)

const DefaultName = "My Studio"

// Team is one member's roster inside a league. UserID is unique per league.
type Team struct {
	LeagueID       string
	UserID         string
	Name           string
	Picks          Picks
	Score          float64
	BombAdjustment float64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (t Team) Validate() error {
	if t.LeagueID == "" {
		return fmt.Errorf("team league id is required")
	}
	if t.UserID == "" {
		return fmt.Errorf("team user id is required")
	}
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("team name is required")
	}

	return nil
}

// NormalizeName falls back to DefaultName for blank input.
func NormalizeName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return DefaultName
	}
	return name
}
