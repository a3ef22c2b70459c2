package postgres

import (
	"time"

	"github.com/lib/pq"
)

type leagueTableModel struct {
	ID             int64          `db:"id"`
	PublicID       string         `db:"public_id"`
	Name           string         `db:"name"`
	Code           string         `db:"code"`
	CommissionerID string         `db:"commissioner_id"`
	Season         string         `db:"season"`
	Status         string         `db:"status"`
	CurrentPhase   string         `db:"current_phase"`
	Members        pq.StringArray `db:"members"`
	DelistedGames  pq.StringArray `db:"delisted_games"`
	CreatedAt      time.Time      `db:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at"`
	DeletedAt      *time.Time     `db:"deleted_at"`
}

type leagueInsertModel struct {
	PublicID       string         `db:"public_id"`
	Name           string         `db:"name"`
	Code           string         `db:"code"`
	CommissionerID string         `db:"commissioner_id"`
	Season         string         `db:"season"`
	Status         string         `db:"status"`
	CurrentPhase   string         `db:"current_phase"`
	Members        pq.StringArray `db:"members"`
	DelistedGames  pq.StringArray `db:"delisted_games"`
	CreatedAt      time.Time      `db:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at"`
}
