package bookmark

import "context"

// Repository stores the games a user follows. Add and Remove are idempotent.
type Repository interface {
	// ListGameIDs returns ids in the order they were bookmarked.
	ListGameIDs(ctx context.Context, userID string) ([]string, error)
	Add(ctx context.Context, userID, gameID string) error
	Remove(ctx context.Context, userID, gameID string) error
}
