package league

import (
	"context"
	"errors"
)

var ErrCodeInUse = errors.New("league code already in use")

// Repository describes league persistence needs from use cases.
type Repository interface {
	// Create stores the league and an empty team for its commissioner.
	Create(ctx context.Context, item League, commissionerTeamName string) error
	GetByID(ctx context.Context, leagueID string) (League, bool, error)
	GetByCode(ctx context.Context, code string) (League, bool, error)
	ListByMember(ctx context.Context, userID string) ([]League, error)
	ListByStatus(ctx context.Context, statuses ...Status) ([]League, error)
	// AddMember appends the member and creates an empty team in one write.
	AddMember(ctx context.Context, leagueID, userID, teamName string) error
	UpdateState(ctx context.Context, leagueID string, state State) error
	UpdateSeason(ctx context.Context, leagueID, season string) error
	// Delete soft-deletes the league. Deleted leagues are invisible to every
	// read, including the scoring run's status listing.
	Delete(ctx context.Context, leagueID string) error
	// AddDelistedGames appends ids not yet present and returns the ids added.
	AddDelistedGames(ctx context.Context, leagueID string, gameIDs []string) ([]string, error)
}
