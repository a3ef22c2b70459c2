package postgres

import (
	"database/sql"
	"time"

	"github.com/lib/pq"
)

type gameTableModel struct {
	ID          int64          `db:"id"`
	PublicID    string         `db:"public_id"`
	Name        string         `db:"name"`
	CoverURL    sql.NullString `db:"cover_url"`
	ReleaseDate sql.NullTime   `db:"release_date"`
	SteamAppID  sql.NullString `db:"steam_app_id"`
	IsHidden    bool           `db:"is_hidden"`
	Genres      pq.StringArray `db:"genres"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
	DeletedAt   *time.Time     `db:"deleted_at"`
}

// gameListRow is a games row with the running score of its metrics row.
type gameListRow struct {
	gameTableModel
	Score sql.NullFloat64 `db:"score"`
}

type gameMetricsTableModel struct {
	GameID          string         `db:"game_public_id"`
	EstimatedOwners int64          `db:"estimated_owners"`
	CCU             int64          `db:"ccu"`
	ReviewsTotal    int64          `db:"reviews_total"`
	ReviewsPositive int64          `db:"reviews_positive"`
	Status          string         `db:"status"`
	Score           float64        `db:"score"`
	Milestones      pq.StringArray `db:"milestones"`
	BreakoutAwarded bool           `db:"breakout_awarded"`
	UpdatedAt       time.Time      `db:"updated_at"`
}

type gameScoreHistoryTableModel struct {
	ID               int64     `db:"id"`
	GameID           string    `db:"game_public_id"`
	ScoreDate        time.Time `db:"score_date"`
	EstimatedOwners  int64     `db:"estimated_owners"`
	SalesDelta       int64     `db:"sales_delta"`
	CCU              int64     `db:"ccu"`
	ReviewsTotal     int64     `db:"reviews_total"`
	ReviewsDelta     int64     `db:"reviews_delta"`
	PositiveRatio    float64   `db:"positive_ratio"`
	Points           float64   `db:"points"`
	BasePoints       float64   `db:"base_points"`
	MilestoneBonus   float64   `db:"milestone_bonus"`
	BreakoutBonus    float64   `db:"breakout_bonus"`
	DaysSinceRelease int       `db:"days_since_release"`
	CreatedAt        time.Time `db:"created_at"`
}

type gameScoreHistoryInsertModel struct {
	GameID           string  `db:"game_public_id"`
	ScoreDate        string  `db:"score_date"`
	EstimatedOwners  int64   `db:"estimated_owners"`
	SalesDelta       int64   `db:"sales_delta"`
	CCU              int64   `db:"ccu"`
	ReviewsTotal     int64   `db:"reviews_total"`
	ReviewsDelta     int64   `db:"reviews_delta"`
	PositiveRatio    float64 `db:"positive_ratio"`
	Points           float64 `db:"points"`
	BasePoints       float64 `db:"base_points"`
	MilestoneBonus   float64 `db:"milestone_bonus"`
	BreakoutBonus    float64 `db:"breakout_bonus"`
	DaysSinceRelease int     `db:"days_since_release"`
}

type gameMetricsInsertModel struct {
	GameID          string         `db:"game_public_id"`
	EstimatedOwners int64          `db:"estimated_owners"`
	CCU             int64          `db:"ccu"`
	ReviewsTotal    int64          `db:"reviews_total"`
	ReviewsPositive int64          `db:"reviews_positive"`
	Status          string         `db:"status"`
	Score           float64        `db:"score"`
	Milestones      pq.StringArray `db:"milestones"`
	BreakoutAwarded bool           `db:"breakout_awarded"`
	UpdatedAt       time.Time      `db:"updated_at"`
}

type gameCCUSampleTableModel struct {
	GameID     string    `db:"game_public_id"`
	SampleDate time.Time `db:"sample_date"`
	CCU        int64     `db:"ccu"`
	UpdatedAt  time.Time `db:"updated_at"`
}
