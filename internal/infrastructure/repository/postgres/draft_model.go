package postgres

import (
	"database/sql"
	"time"

	"github.com/lib/pq"
)

const (
	draftEntryPick = "pick"
	draftEntrySkip = "skip"

	draftPickSlotConstraint = "draft_picks_slot_uidx"
	draftPickGameConstraint = "draft_picks_game_uidx"
	draftConstraint         = "drafts_league_draft_uidx"
)

type draftTableModel struct {
	ID              int64          `db:"id"`
	LeagueID        string         `db:"league_public_id"`
	DraftID         string         `db:"draft_id"`
	Phase           string         `db:"phase"`
	Season          string         `db:"season"`
	Status          string         `db:"status"`
	Order           pq.StringArray `db:"draft_order"`
	CurrentRound    sql.NullInt64  `db:"current_round"`
	CurrentPosition sql.NullInt64  `db:"current_position"`
	CurrentUserID   sql.NullString `db:"current_user_id"`
	PresentUserIDs  pq.StringArray `db:"present_user_ids"`
	CreatedAt       time.Time      `db:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at"`
	DeletedAt       *time.Time     `db:"deleted_at"`
}

type draftInsertModel struct {
	LeagueID       string         `db:"league_public_id"`
	DraftID        string         `db:"draft_id"`
	Phase          string         `db:"phase"`
	Season         string         `db:"season"`
	Status         string         `db:"status"`
	Order          pq.StringArray `db:"draft_order"`
	PresentUserIDs pq.StringArray `db:"present_user_ids"`
	CreatedAt      time.Time      `db:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at"`
}

type draftPickTableModel struct {
	ID        int64          `db:"id"`
	LeagueID  string         `db:"league_public_id"`
	DraftID   string         `db:"draft_id"`
	SlotIndex int            `db:"slot_index"`
	EntryType string         `db:"entry_type"`
	UserID    string         `db:"user_id"`
	GameID    sql.NullString `db:"game_id"`
	PickType  sql.NullString `db:"pick_type"`
	CreatedAt time.Time      `db:"created_at"`
}

type draftPickInsertModel struct {
	LeagueID  string    `db:"league_public_id"`
	DraftID   string    `db:"draft_id"`
	SlotIndex int       `db:"slot_index"`
	EntryType string    `db:"entry_type"`
	UserID    string    `db:"user_id"`
	GameID    *string   `db:"game_id"`
	PickType  *string   `db:"pick_type"`
	CreatedAt time.Time `db:"created_at"`
}
