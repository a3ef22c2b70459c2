package postgres

import "time"

type leagueScoringDayTableModel struct {
	ID              int64     `db:"id"`
	LeagueID        string    `db:"league_public_id"`
	ScoreDate       time.Time `db:"score_date"`
	BombAdjustments string    `db:"bomb_adjustments"`
	BombThreshold   float64   `db:"bomb_threshold"`
	CreatedAt       time.Time `db:"created_at"`
}

type leagueScoringDayInsertModel struct {
	LeagueID        string    `db:"league_public_id"`
	ScoreDate       string    `db:"score_date"`
	BombAdjustments string    `db:"bomb_adjustments"`
	BombThreshold   float64   `db:"bomb_threshold"`
	CreatedAt       time.Time `db:"created_at"`
}

type seasonSnapshotTableModel struct {
	ID          int64     `db:"id"`
	LeagueID    string    `db:"league_public_id"`
	Season      string    `db:"season"`
	FinalScores string    `db:"final_scores"`
	FinalRanks  string    `db:"final_ranks"`
	GraphData   string    `db:"graph_data"`
	ComputedAt  time.Time `db:"computed_at"`
}

type seasonSnapshotInsertModel struct {
	LeagueID    string    `db:"league_public_id"`
	Season      string    `db:"season"`
	FinalScores string    `db:"final_scores"`
	FinalRanks  string    `db:"final_ranks"`
	GraphData   string    `db:"graph_data"`
	ComputedAt  time.Time `db:"computed_at"`
}
