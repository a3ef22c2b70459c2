package draft

import (
	"context"
	"errors"

	"github.com/riskibarqy/release-league/internal/domain/team"
)

var (
	ErrAlreadyExists = errors.New("draft already exists")
	// ErrSlotConflict is returned when a concurrent writer filled the same
	// slot or drafted the same game first.
	ErrSlotConflict = errors.New("draft slot conflict")
	ErrGameConflict = errors.New("draft game conflict")
)

// PickTxFunc mutates a locked draft and the locked team of userID. Returning
// an error aborts the transaction with no writes.
type PickTxFunc func(d *Draft, t *team.Team) error

// MutateFunc mutates a locked draft. Returning an error aborts with no writes.
type MutateFunc func(d *Draft) error

// Repository describes draft persistence needs from use cases.
type Repository interface {
	Create(ctx context.Context, item Draft) error
	Get(ctx context.Context, leagueID, draftID string) (Draft, bool, error)
	ListBySeason(ctx context.Context, leagueID, season string) ([]Draft, error)
	// Mutate runs fn on the draft under a row lock and persists the result.
	Mutate(ctx context.Context, leagueID, draftID string, fn MutateFunc) (Draft, bool, error)
	// MutateWithTeam runs fn on the draft and the team of userID inside one
	// transaction. The team is nil when the user has no team in the league.
	MutateWithTeam(ctx context.Context, leagueID, draftID, userID string, fn PickTxFunc) (Draft, bool, error)
	AddPresence(ctx context.Context, leagueID, draftID, userID string) error
	RemovePresence(ctx context.Context, leagueID, draftID, userID string) error
}
