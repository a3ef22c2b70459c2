package postgres

import (
	"context"
	"fmt"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/release-league/internal/domain/game"
	"github.com/riskibarqy/release-league/internal/domain/leaguescoring"
	"github.com/riskibarqy/release-league/internal/domain/season"
	qb "github.com/riskibarqy/release-league/internal/platform/querybuilder"
)

type LeagueScoringRepository struct {
	db *sqlx.DB
}

func NewLeagueScoringRepository(db *sqlx.DB) *LeagueScoringRepository {
	return &LeagueScoringRepository{db: db}
}

// SaveDay inserts the day and, only when the insert wins, folds the
// adjustments into teams.bomb_adjustment in the same transaction.
func (r *LeagueScoringRepository) SaveDay(ctx context.Context, day leaguescoring.ScoringDay) (bool, error) {
	adjustments, err := encodeJSON(day.BombAdjustments)
	if err != nil {
		return false, fmt.Errorf("marshal bomb adjustments: %w", err)
	}
	createdAt := day.CreatedAt.UTC()
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	created := false
	err = inTx(ctx, r.db, "save league scoring day", func(tx *sqlx.Tx) error {
		insertModel := leagueScoringDayInsertModel{
			LeagueID:        day.LeagueID,
			ScoreDate:       day.Date,
			BombAdjustments: adjustments,
			BombThreshold:   day.BombThreshold,
			CreatedAt:       createdAt,
		}
		query, args, err := qb.InsertModel("league_scoring_days", insertModel, `ON CONFLICT (league_public_id, score_date) DO NOTHING`)
		if err != nil {
			return fmt.Errorf("build insert league scoring day query: %w", err)
		}
		result, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("insert league scoring day: %w", err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected insert league scoring day: %w", err)
		}
		if affected == 0 {
			return nil
		}
		created = true

		for userID, delta := range day.BombAdjustments {
			if delta == 0 {
				continue
			}
			query, args, err := qb.Update("teams").
				SetExpr("bomb_adjustment", "bomb_adjustment + ?", delta).
				SetExpr("updated_at", "NOW()").
				Where(
					qb.Eq("league_public_id", day.LeagueID),
					qb.Eq("user_id", userID),
					qb.IsNull("deleted_at"),
				).
				ToSQL()
			if err != nil {
				return fmt.Errorf("build apply bomb adjustment query: %w", err)
			}
			if _, err := tx.ExecContext(ctx, query, args...); err != nil {
				return fmt.Errorf("apply bomb adjustment user=%s: %w", userID, err)
			}
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return created, nil
}

func (r *LeagueScoringRepository) ListDays(ctx context.Context, leagueID string) ([]leaguescoring.ScoringDay, error) {
	query, args, err := qb.Select("*").From("league_scoring_days").
		Where(qb.Eq("league_public_id", leagueID)).
		OrderBy("score_date").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list league scoring days query: %w", err)
	}

	var rows []leagueScoringDayTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list league scoring days: %w", err)
	}

	out := make([]leaguescoring.ScoringDay, 0, len(rows))
	for _, row := range rows {
		adjustments := make(map[string]float64)
		if err := decodeJSON(row.BombAdjustments, &adjustments); err != nil {
			return nil, fmt.Errorf("decode bomb adjustments league=%s: %w", leagueID, err)
		}
		out = append(out, leaguescoring.ScoringDay{
			LeagueID:        row.LeagueID,
			Date:            row.ScoreDate.UTC().Format(game.DateLayout),
			BombAdjustments: adjustments,
			BombThreshold:   row.BombThreshold,
			CreatedAt:       row.CreatedAt,
		})
	}
	return out, nil
}

type SeasonSnapshotRepository struct {
	db *sqlx.DB
}

func NewSeasonSnapshotRepository(db *sqlx.DB) *SeasonSnapshotRepository {
	return &SeasonSnapshotRepository{db: db}
}

func (r *SeasonSnapshotRepository) Get(ctx context.Context, leagueID, seasonID string) (season.Snapshot, bool, error) {
	query, args, err := qb.Select("*").From("season_snapshots").
		Where(
			qb.Eq("league_public_id", leagueID),
			qb.Eq("season", seasonID),
		).
		ToSQL()
	if err != nil {
		return season.Snapshot{}, false, fmt.Errorf("build get season snapshot query: %w", err)
	}

	var row seasonSnapshotTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return season.Snapshot{}, false, nil
		}
		return season.Snapshot{}, false, fmt.Errorf("get season snapshot: %w", err)
	}

	out := season.Snapshot{
		LeagueID:   row.LeagueID,
		Season:     row.Season,
		ComputedAt: row.ComputedAt,
	}
	if err := decodeJSON(row.FinalScores, &out.FinalScores); err != nil {
		return season.Snapshot{}, false, fmt.Errorf("decode final scores: %w", err)
	}
	if err := decodeJSON(row.FinalRanks, &out.FinalRanks); err != nil {
		return season.Snapshot{}, false, fmt.Errorf("decode final ranks: %w", err)
	}
	if err := decodeJSON(row.GraphData, &out.GraphData); err != nil {
		return season.Snapshot{}, false, fmt.Errorf("decode graph data: %w", err)
	}
	return out, true, nil
}

func (r *SeasonSnapshotRepository) Create(ctx context.Context, snapshot season.Snapshot) (bool, error) {
	finalScores, err := encodeJSON(snapshot.FinalScores)
	if err != nil {
		return false, fmt.Errorf("marshal final scores: %w", err)
	}
	finalRanks, err := encodeJSON(snapshot.FinalRanks)
	if err != nil {
		return false, fmt.Errorf("marshal final ranks: %w", err)
	}
	graphData, err := encodeJSON(snapshot.GraphData)
	if err != nil {
		return false, fmt.Errorf("marshal graph data: %w", err)
	}

	insertModel := seasonSnapshotInsertModel{
		LeagueID:    snapshot.LeagueID,
		Season:      snapshot.Season,
		FinalScores: finalScores,
		FinalRanks:  finalRanks,
		GraphData:   graphData,
		ComputedAt:  snapshot.ComputedAt.UTC(),
	}
	query, args, err := qb.InsertModel("season_snapshots", insertModel, `ON CONFLICT (league_public_id, season) DO NOTHING`)
	if err != nil {
		return false, fmt.Errorf("build insert season snapshot query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("insert season snapshot: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected insert season snapshot: %w", err)
	}
	return affected > 0, nil
}

func encodeJSON(value any) (string, error) {
	raw, err := sonic.Marshal(value)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func decodeJSON(raw string, target any) error {
	if raw == "" {
		return nil
	}
	return sonic.Unmarshal([]byte(raw), target)
}
