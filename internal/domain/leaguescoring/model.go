package leaguescoring

import (
	"context"
	"time"
)

// ScoringDay is the per-league bomb outcome of one scoring run.
type ScoringDay struct {
	LeagueID        string             `json:"leagueId"`
	Date            string             `json:"date"`
	BombAdjustments map[string]float64 `json:"bombAdjustments"`
	BombThreshold   float64            `json:"bombThreshold"`
	CreatedAt       time.Time          `json:"createdAt"`
}

// Repository describes league scoring persistence needs from use cases.
type Repository interface {
	// SaveDay inserts the day once. On first insert it also adds every
	// non-zero adjustment to the matching team's running bomb adjustment, in
	// the same transaction. created is false when the day already existed.
	SaveDay(ctx context.Context, day ScoringDay) (created bool, err error)
	ListDays(ctx context.Context, leagueID string) ([]ScoringDay, error)
}
