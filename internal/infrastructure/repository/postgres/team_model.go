package postgres

import (
	"database/sql"
	"time"

	"github.com/lib/pq"
)

type teamTableModel struct {
	ID             int64          `db:"id"`
	LeagueID       string         `db:"league_public_id"`
	UserID         string         `db:"user_id"`
	Name           string         `db:"name"`
	HitPick        sql.NullString `db:"hit_pick"`
	BombPick       sql.NullString `db:"bomb_pick"`
	WinterPicks    pq.StringArray `db:"winter_picks"`
	SummerPicks    pq.StringArray `db:"summer_picks"`
	FallPicks      pq.StringArray `db:"fall_picks"`
	AltPicks       pq.StringArray `db:"alt_picks"`
	Score          float64        `db:"score"`
	BombAdjustment float64        `db:"bomb_adjustment"`
	CreatedAt      time.Time      `db:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at"`
	DeletedAt      *time.Time     `db:"deleted_at"`
}

type teamInsertModel struct {
	LeagueID  string    `db:"league_public_id"`
	UserID    string    `db:"user_id"`
	Name      string    `db:"name"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}
