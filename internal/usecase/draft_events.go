package usecase

import (
	"context"
	"time"
)

type DraftEventType string

const (
	DraftEventStarted   DraftEventType = "draft.started"
	DraftEventPick      DraftEventType = "draft.pick"
	DraftEventSkip      DraftEventType = "draft.skip"
	DraftEventCompleted DraftEventType = "draft.completed"
	DraftEventPresence  DraftEventType = "draft.presence"
)

// DraftEvent is fanned out to live draft subscribers after a commit.
type DraftEvent struct {
	Type       DraftEventType `json:"type"`
	LeagueID   string         `json:"league_id"`
	DraftID    string         `json:"draft_id"`
	UserID     string         `json:"user_id,omitempty"`
	GameID     string         `json:"game_id,omitempty"`
	PickType   string         `json:"pick_type,omitempty"`
	SlotIndex  int            `json:"slot_index"`
	NextUserID string         `json:"next_user_id,omitempty"`
	Status     string         `json:"status"`
	OccurredAt time.Time      `json:"occurred_at"`
}

type DraftEventPublisher interface {
	PublishDraftEvent(ctx context.Context, event DraftEvent) error
}

type noopDraftEventPublisher struct{}

func (noopDraftEventPublisher) PublishDraftEvent(context.Context, DraftEvent) error {
	return nil
}

func NewNoopDraftEventPublisher() DraftEventPublisher {
	return noopDraftEventPublisher{}
}
