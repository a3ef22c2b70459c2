package postgres

import "time"

type bookmarkInsertModel struct {
	UserID    string    `db:"user_id"`
	GameID    string    `db:"game_public_id"`
	CreatedAt time.Time `db:"created_at"`
}
