package gamescore

import "context"

// Repository describes per-game score persistence needs from use cases.
type Repository interface {
	GetMetrics(ctx context.Context, gameID string) (Metrics, bool, error)
	// ListHistory returns entries ordered by date ascending.
	ListHistory(ctx context.Context, gameID string) ([]HistoryEntry, error)
	GetCCUSample(ctx context.Context, gameID, date string) (CCUSample, bool, error)
	// UpsertCCUSample keeps the larger of the stored and given readings.
	UpsertCCUSample(ctx context.Context, sample CCUSample) error
	// ApplyUpdates commits a batch atomically. An update whose history date
	// already exists is skipped without touching the running score.
	ApplyUpdates(ctx context.Context, updates []Update) (applied int, err error)
}
