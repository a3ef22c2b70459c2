package usecase

import "errors"

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrForbidden             = errors.New("forbidden")
	ErrConflict              = errors.New("conflict")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
)

// Draft and scoring failures the caller is expected to branch on.
var (
	ErrLeagueNotFound      = errors.New("league not found")
	ErrDraftNotFound       = errors.New("draft not found")
	ErrNotYourTurn         = errors.New("not your turn")
	ErrGameAlreadyDrafted  = errors.New("game already drafted")
	ErrInvalidPickType     = errors.New("invalid pick type")
	ErrPersistenceConflict = errors.New("persistence conflict")
	ErrSeasonNotEnded      = errors.New("season has not ended")
)

// Telemetry failures. Rate limits and upstream outages are transient.
var (
	ErrRateLimited         = errors.New("rate limited")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	ErrDelisted            = errors.New("game delisted")
)
