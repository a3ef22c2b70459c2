package postgres

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/release-league/internal/domain/game"
	"github.com/riskibarqy/release-league/internal/domain/gamescore"
	qb "github.com/riskibarqy/release-league/internal/platform/querybuilder"
)

type GameScoreRepository struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewGameScoreRepository(db *sqlx.DB) *GameScoreRepository {
	return &GameScoreRepository{db: db, now: time.Now}
}

func (r *GameScoreRepository) GetMetrics(ctx context.Context, gameID string) (gamescore.Metrics, bool, error) {
	return getMetrics(ctx, r.db, gameID, false)
}

func (r *GameScoreRepository) ListHistory(ctx context.Context, gameID string) ([]gamescore.HistoryEntry, error) {
	query, args, err := qb.Select("*").From("game_score_history").
		Where(qb.Eq("game_public_id", gameID)).
		OrderBy("score_date").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list game history query: %w", err)
	}

	var rows []gameScoreHistoryTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list game history: %w", err)
	}

	out := make([]gamescore.HistoryEntry, 0, len(rows))
	for _, row := range rows {
		out = append(out, gamescore.HistoryEntry{
			GameID:           row.GameID,
			Date:             row.ScoreDate.UTC().Format(game.DateLayout),
			EstimatedOwners:  row.EstimatedOwners,
			SalesDelta:       row.SalesDelta,
			CCU:              row.CCU,
			ReviewsTotal:     row.ReviewsTotal,
			ReviewsDelta:     row.ReviewsDelta,
			PositiveRatio:    row.PositiveRatio,
			Points:           row.Points,
			BasePoints:       row.BasePoints,
			MilestoneBonus:   row.MilestoneBonus,
			BreakoutBonus:    row.BreakoutBonus,
			DaysSinceRelease: row.DaysSinceRelease,
		})
	}
	return out, nil
}

func (r *GameScoreRepository) GetCCUSample(ctx context.Context, gameID, date string) (gamescore.CCUSample, bool, error) {
	query, args, err := qb.Select("*").From("game_ccu_samples").
		Where(
			qb.Eq("game_public_id", gameID),
			qb.Eq("sample_date", date),
		).
		ToSQL()
	if err != nil {
		return gamescore.CCUSample{}, false, fmt.Errorf("build get ccu sample query: %w", err)
	}

	var row gameCCUSampleTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return gamescore.CCUSample{}, false, nil
		}
		return gamescore.CCUSample{}, false, fmt.Errorf("get ccu sample: %w", err)
	}
	return gamescore.CCUSample{
		GameID: row.GameID,
		Date:   row.SampleDate.UTC().Format(game.DateLayout),
		CCU:    row.CCU,
	}, true, nil
}

func (r *GameScoreRepository) UpsertCCUSample(ctx context.Context, sample gamescore.CCUSample) error {
	query, args, err := qb.InsertInto("game_ccu_samples").
		Columns("game_public_id", "sample_date", "ccu", "updated_at").
		Values(sample.GameID, sample.Date, sample.CCU, r.now().UTC()).
		Suffix(`ON CONFLICT (game_public_id, sample_date)
DO UPDATE SET
    ccu = GREATEST(game_ccu_samples.ccu, EXCLUDED.ccu),
    updated_at = EXCLUDED.updated_at`).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build upsert ccu sample query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert ccu sample game=%s date=%s: %w", sample.GameID, sample.Date, err)
	}
	return nil
}

// ApplyUpdates writes the batch in one transaction. The history unique index
// decides whether a day is new; only new days touch the running metrics.
func (r *GameScoreRepository) ApplyUpdates(ctx context.Context, updates []gamescore.Update) (int, error) {
	if len(updates) == 0 {
		return 0, nil
	}

	applied := 0
	err := inTx(ctx, r.db, "apply game score updates", func(tx *sqlx.Tx) error {
		applied = 0
		for _, u := range updates {
			inserted, err := insertHistoryEntry(ctx, tx, u.Entry)
			if err != nil {
				return err
			}
			if !inserted {
				continue
			}

			prev, _, err := getMetrics(ctx, tx, u.Entry.GameID, true)
			if err != nil {
				return err
			}
			if err := r.upsertMetrics(ctx, tx, mergeMetrics(prev, u)); err != nil {
				return err
			}
			applied++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return applied, nil
}

func (r *GameScoreRepository) upsertMetrics(ctx context.Context, tx *sqlx.Tx, m gamescore.Metrics) error {
	insertModel := gameMetricsInsertModel{
		GameID:          m.GameID,
		EstimatedOwners: m.EstimatedOwners,
		CCU:             m.CCU,
		ReviewsTotal:    m.ReviewsTotal,
		ReviewsPositive: m.ReviewsPositive,
		Status:          string(m.Status),
		Score:           m.Score,
		Milestones:      nonNilStrings(m.Milestones),
		BreakoutAwarded: m.BreakoutAwarded,
		UpdatedAt:       r.now().UTC(),
	}
	query, args, err := qb.InsertModel("game_metrics", insertModel, `ON CONFLICT (game_public_id)
DO UPDATE SET
    estimated_owners = EXCLUDED.estimated_owners,
    ccu = EXCLUDED.ccu,
    reviews_total = EXCLUDED.reviews_total,
    reviews_positive = EXCLUDED.reviews_positive,
    status = EXCLUDED.status,
    score = EXCLUDED.score,
    milestones = EXCLUDED.milestones,
    breakout_awarded = EXCLUDED.breakout_awarded,
    updated_at = EXCLUDED.updated_at`)
	if err != nil {
		return fmt.Errorf("build upsert game metrics query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert game metrics game=%s: %w", m.GameID, err)
	}
	return nil
}

func insertHistoryEntry(ctx context.Context, tx *sqlx.Tx, e gamescore.HistoryEntry) (bool, error) {
	insertModel := gameScoreHistoryInsertModel{
		GameID:           e.GameID,
		ScoreDate:        e.Date,
		EstimatedOwners:  e.EstimatedOwners,
		SalesDelta:       e.SalesDelta,
		CCU:              e.CCU,
		ReviewsTotal:     e.ReviewsTotal,
		ReviewsDelta:     e.ReviewsDelta,
		PositiveRatio:    e.PositiveRatio,
		Points:           e.Points,
		BasePoints:       e.BasePoints,
		MilestoneBonus:   e.MilestoneBonus,
		BreakoutBonus:    e.BreakoutBonus,
		DaysSinceRelease: e.DaysSinceRelease,
	}
	query, args, err := qb.InsertModel("game_score_history", insertModel, `ON CONFLICT (game_public_id, score_date) DO NOTHING`)
	if err != nil {
		return false, fmt.Errorf("build insert game history query: %w", err)
	}

	result, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("insert game history game=%s date=%s: %w", e.GameID, e.Date, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected insert game history: %w", err)
	}
	return affected > 0, nil
}

func getMetrics(ctx context.Context, q sqlx.QueryerContext, gameID string, lock bool) (gamescore.Metrics, bool, error) {
	builder := qb.Select("*").From("game_metrics").
		Where(qb.Eq("game_public_id", gameID))
	if lock {
		builder = builder.ForUpdate()
	}
	query, args, err := builder.ToSQL()
	if err != nil {
		return gamescore.Metrics{}, false, fmt.Errorf("build get game metrics query: %w", err)
	}

	var row gameMetricsTableModel
	if err := sqlx.GetContext(ctx, q, &row, query, args...); err != nil {
		if isNotFound(err) {
			return gamescore.Metrics{GameID: gameID}, false, nil
		}
		return gamescore.Metrics{}, false, fmt.Errorf("get game metrics: %w", err)
	}

	return gamescore.Metrics{
		GameID:          row.GameID,
		EstimatedOwners: row.EstimatedOwners,
		CCU:             row.CCU,
		ReviewsTotal:    row.ReviewsTotal,
		ReviewsPositive: row.ReviewsPositive,
		Status:          gamescore.Status(row.Status),
		Score:           row.Score,
		Milestones:      nonNilStrings(row.Milestones),
		BreakoutAwarded: row.BreakoutAwarded,
		UpdatedAt:       row.UpdatedAt,
	}, true, nil
}

// mergeMetrics adds the day's points to the stored score. Milestones and the
// breakout flag are sticky.
func mergeMetrics(prev gamescore.Metrics, u gamescore.Update) gamescore.Metrics {
	m := u.Metrics
	m.GameID = u.Entry.GameID
	m.Score = prev.Score + u.Entry.Points
	m.Milestones = slices.Clone(prev.Milestones)
	for _, id := range u.NewMilestones {
		if !slices.Contains(m.Milestones, id) {
			m.Milestones = append(m.Milestones, id)
		}
	}
	m.BreakoutAwarded = prev.BreakoutAwarded || u.Breakout
	return m
}
