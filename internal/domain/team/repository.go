package team

import "context"

// Repository describes team persistence needs from use cases.
type Repository interface {
	ListByLeague(ctx context.Context, leagueID string) ([]Team, error)
	GetByUser(ctx context.Context, leagueID, userID string) (Team, bool, error)
	UpdateName(ctx context.Context, leagueID, userID, name string) error
	// UpdateScores writes the cached cumulative score per user id.
	UpdateScores(ctx context.Context, leagueID string, scores map[string]float64) error
}
