package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/release-league/internal/domain/team"
	qb "github.com/riskibarqy/release-league/internal/platform/querybuilder"
)

type TeamRepository struct {
	db *sqlx.DB
}

func NewTeamRepository(db *sqlx.DB) *TeamRepository {
	return &TeamRepository{db: db}
}

func (r *TeamRepository) ListByLeague(ctx context.Context, leagueID string) ([]team.Team, error) {
	query, args, err := qb.Select("*").From("teams").
		Where(
			qb.Eq("league_public_id", leagueID),
			qb.IsNull("deleted_at"),
		).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list teams by league query: %w", err)
	}

	var rows []teamTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list teams by league: %w", err)
	}

	out := make([]team.Team, 0, len(rows))
	for _, row := range rows {
		out = append(out, teamFromRow(row))
	}
	return out, nil
}

func (r *TeamRepository) GetByUser(ctx context.Context, leagueID, userID string) (team.Team, bool, error) {
	query, args, err := qb.Select("*").From("teams").
		Where(
			qb.Eq("league_public_id", leagueID),
			qb.Eq("user_id", userID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return team.Team{}, false, fmt.Errorf("build get team by user query: %w", err)
	}

	var row teamTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return team.Team{}, false, nil
		}
		return team.Team{}, false, fmt.Errorf("get team by user: %w", err)
	}
	return teamFromRow(row), true, nil
}

func (r *TeamRepository) UpdateName(ctx context.Context, leagueID, userID, name string) error {
	query, args, err := qb.Update("teams").
		Set("name", name).
		SetExpr("updated_at", "NOW()").
		Where(
			qb.Eq("league_public_id", leagueID),
			qb.Eq("user_id", userID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update team name query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update team name: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected update team name: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("update team name: team league=%s user=%s not found", leagueID, userID)
	}
	return nil
}

func (r *TeamRepository) UpdateScores(ctx context.Context, leagueID string, scores map[string]float64) error {
	if len(scores) == 0 {
		return nil
	}

	return inTx(ctx, r.db, "update team scores", func(tx *sqlx.Tx) error {
		for userID, score := range scores {
			query, args, err := qb.Update("teams").
				Set("score", score).
				SetExpr("updated_at", "NOW()").
				Where(
					qb.Eq("league_public_id", leagueID),
					qb.Eq("user_id", userID),
					qb.IsNull("deleted_at"),
				).
				ToSQL()
			if err != nil {
				return fmt.Errorf("build update team score query: %w", err)
			}
			if _, err := tx.ExecContext(ctx, query, args...); err != nil {
				return fmt.Errorf("update team score user=%s: %w", userID, err)
			}
		}
		return nil
	})
}

// writeTeamPicks persists the roster slots of t inside an open transaction.
func writeTeamPicks(ctx context.Context, tx *sqlx.Tx, t team.Team) error {
	query, args, err := qb.Update("teams").
		Set("hit_pick", optionalString(t.Picks.HitPick)).
		Set("bomb_pick", optionalString(t.Picks.BombPick)).
		Set("winter_picks", nonNilStrings(t.Picks.WinterPicks)).
		Set("summer_picks", nonNilStrings(t.Picks.SummerPicks)).
		Set("fall_picks", nonNilStrings(t.Picks.FallPicks)).
		Set("alt_picks", nonNilStrings(t.Picks.AltPicks)).
		SetExpr("updated_at", "NOW()").
		Where(
			qb.Eq("league_public_id", t.LeagueID),
			qb.Eq("user_id", t.UserID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update team picks query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update team picks: %w", err)
	}
	return nil
}

func lockTeam(ctx context.Context, tx *sqlx.Tx, leagueID, userID string) (team.Team, bool, error) {
	query, args, err := qb.Select("*").From("teams").
		Where(
			qb.Eq("league_public_id", leagueID),
			qb.Eq("user_id", userID),
			qb.IsNull("deleted_at"),
		).
		ForUpdate().
		ToSQL()
	if err != nil {
		return team.Team{}, false, fmt.Errorf("build lock team query: %w", err)
	}

	var row teamTableModel
	if err := tx.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return team.Team{}, false, nil
		}
		return team.Team{}, false, fmt.Errorf("lock team: %w", err)
	}
	return teamFromRow(row), true, nil
}

func teamFromRow(row teamTableModel) team.Team {
	return team.Team{
		LeagueID: row.LeagueID,
		UserID:   row.UserID,
		Name:     row.Name,
		Picks: team.Picks{
			HitPick:     nullStringValue(row.HitPick),
			BombPick:    nullStringValue(row.BombPick),
			WinterPicks: nonNilStrings(row.WinterPicks),
			SummerPicks: nonNilStrings(row.SummerPicks),
			FallPicks:   nonNilStrings(row.FallPicks),
			AltPicks:    nonNilStrings(row.AltPicks),
		},
		Score:          row.Score,
		BombAdjustment: row.BombAdjustment,
		CreatedAt:      row.CreatedAt,
		UpdatedAt:      row.UpdatedAt,
	}
}
