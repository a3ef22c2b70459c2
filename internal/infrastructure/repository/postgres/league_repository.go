package postgres

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/release-league/internal/domain/league"
	"github.com/riskibarqy/release-league/internal/domain/team"
	qb "github.com/riskibarqy/release-league/internal/platform/querybuilder"
)

const leagueCodeConstraint = "leagues_code_uidx"

type LeagueRepository struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewLeagueRepository(db *sqlx.DB) *LeagueRepository {
	return &LeagueRepository{db: db, now: time.Now}
}

func (r *LeagueRepository) Create(ctx context.Context, item league.League, commissionerTeamName string) error {
	return inTx(ctx, r.db, "create league", func(tx *sqlx.Tx) error {
		insertModel := leagueInsertModel{
			PublicID:       item.ID,
			Name:           item.Name,
			Code:           item.Code,
			CommissionerID: item.CommissionerID,
			Season:         item.Season,
			Status:         string(item.Status),
			CurrentPhase:   string(item.CurrentPhase),
			Members:        nonNilStrings(item.Members),
			DelistedGames:  nonNilStrings(item.DelistedGames),
			CreatedAt:      item.CreatedAt,
			UpdatedAt:      item.UpdatedAt,
		}
		query, args, err := qb.InsertModel("leagues", insertModel, "")
		if err != nil {
			return fmt.Errorf("build create league query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			if constraint, ok := uniqueViolation(err); ok && constraint == leagueCodeConstraint {
				return league.ErrCodeInUse
			}
			return fmt.Errorf("create league: %w", err)
		}

		return r.insertTeam(ctx, tx, item.ID, item.CommissionerID, commissionerTeamName)
	})
}

func (r *LeagueRepository) GetByID(ctx context.Context, leagueID string) (league.League, bool, error) {
	return r.getOne(ctx, "id", qb.Eq("public_id", leagueID))
}

func (r *LeagueRepository) GetByCode(ctx context.Context, code string) (league.League, bool, error) {
	return r.getOne(ctx, "code", qb.Eq("code", code))
}

func (r *LeagueRepository) getOne(ctx context.Context, by string, cond qb.Condition) (league.League, bool, error) {
	query, args, err := qb.Select("*").From("leagues").
		Where(cond, qb.IsNull("deleted_at")).
		ToSQL()
	if err != nil {
		return league.League{}, false, fmt.Errorf("build get league by %s query: %w", by, err)
	}

	var row leagueTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return league.League{}, false, nil
		}
		return league.League{}, false, fmt.Errorf("get league by %s: %w", by, err)
	}

	return leagueFromRow(row), true, nil
}

func (r *LeagueRepository) ListByMember(ctx context.Context, userID string) ([]league.League, error) {
	query, args, err := qb.Select("*").From("leagues").
		Where(
			qb.Any("members", userID),
			qb.IsNull("deleted_at"),
		).
		OrderBy("created_at DESC", "id DESC").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list leagues by member query: %w", err)
	}

	return r.selectLeagues(ctx, "list leagues by member", query, args)
}

func (r *LeagueRepository) ListByStatus(ctx context.Context, statuses ...league.Status) ([]league.League, error) {
	conds := []qb.Condition{qb.IsNull("deleted_at")}
	if len(statuses) > 0 {
		values := make([]any, 0, len(statuses))
		for _, s := range statuses {
			values = append(values, string(s))
		}
		conds = append(conds, qb.In("status", values))
	}

	query, args, err := qb.Select("*").From("leagues").
		Where(conds...).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list leagues by status query: %w", err)
	}

	return r.selectLeagues(ctx, "list leagues by status", query, args)
}

func (r *LeagueRepository) selectLeagues(ctx context.Context, op, query string, args []any) ([]league.League, error) {
	var rows []leagueTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := make([]league.League, 0, len(rows))
	for _, row := range rows {
		out = append(out, leagueFromRow(row))
	}
	return out, nil
}

func (r *LeagueRepository) AddMember(ctx context.Context, leagueID, userID, teamName string) error {
	return inTx(ctx, r.db, "add league member", func(tx *sqlx.Tx) error {
		item, err := lockLeague(ctx, tx, leagueID)
		if err != nil {
			return err
		}
		if item.IsMember(userID) {
			return nil
		}

		query, args, err := qb.Update("leagues").
			SetExpr("members", "array_append(members, ?)", userID).
			SetExpr("updated_at", "NOW()").
			Where(qb.Eq("public_id", leagueID), qb.IsNull("deleted_at")).
			ToSQL()
		if err != nil {
			return fmt.Errorf("build add league member query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("add league member: %w", err)
		}

		return r.insertTeam(ctx, tx, leagueID, userID, teamName)
	})
}

func (r *LeagueRepository) UpdateState(ctx context.Context, leagueID string, state league.State) error {
	return r.updateOne(ctx, "update league state", leagueID, qb.Update("leagues").
		Set("current_phase", string(state.Phase)).
		Set("status", string(state.Status)))
}

func (r *LeagueRepository) UpdateSeason(ctx context.Context, leagueID, season string) error {
	return r.updateOne(ctx, "update league season", leagueID, qb.Update("leagues").
		Set("season", season))
}

func (r *LeagueRepository) Delete(ctx context.Context, leagueID string) error {
	return r.updateOne(ctx, "delete league", leagueID, qb.Update("leagues").
		SetExpr("deleted_at", "NOW()"))
}

// updateOne applies b to the live league row and fails when none matched.
func (r *LeagueRepository) updateOne(ctx context.Context, op, leagueID string, b *qb.UpdateBuilder) error {
	query, args, err := b.
		SetExpr("updated_at", "NOW()").
		Where(qb.Eq("public_id", leagueID), qb.IsNull("deleted_at")).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build %s query: %w", op, err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected %s: %w", op, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s: league %s not found", op, leagueID)
	}
	return nil
}

// AddDelistedGames locks the league row so concurrent runs never lose an id.
func (r *LeagueRepository) AddDelistedGames(ctx context.Context, leagueID string, gameIDs []string) ([]string, error) {
	var added []string
	err := inTx(ctx, r.db, "add delisted games", func(tx *sqlx.Tx) error {
		item, err := lockLeague(ctx, tx, leagueID)
		if err != nil {
			return err
		}

		delisted := slices.Clone(item.DelistedGames)
		added = make([]string, 0, len(gameIDs))
		for _, id := range gameIDs {
			if id == "" || slices.Contains(delisted, id) {
				continue
			}
			delisted = append(delisted, id)
			added = append(added, id)
		}
		if len(added) == 0 {
			return nil
		}

		query, args, err := qb.Update("leagues").
			Set("delisted_games", nonNilStrings(delisted)).
			SetExpr("updated_at", "NOW()").
			Where(qb.Eq("public_id", leagueID), qb.IsNull("deleted_at")).
			ToSQL()
		if err != nil {
			return fmt.Errorf("build add delisted games query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("add delisted games: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return added, nil
}

func (r *LeagueRepository) insertTeam(ctx context.Context, tx *sqlx.Tx, leagueID, userID, name string) error {
	now := r.now().UTC()
	insertModel := teamInsertModel{
		LeagueID:  leagueID,
		UserID:    userID,
		Name:      team.NormalizeName(name),
		CreatedAt: now,
		UpdatedAt: now,
	}
	query, args, err := qb.InsertModel("teams", insertModel, `ON CONFLICT (league_public_id, user_id) WHERE deleted_at IS NULL DO NOTHING`)
	if err != nil {
		return fmt.Errorf("build insert team query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert team: %w", err)
	}
	return nil
}

func lockLeague(ctx context.Context, tx *sqlx.Tx, leagueID string) (league.League, error) {
	query, args, err := qb.Select("*").From("leagues").
		Where(qb.Eq("public_id", leagueID), qb.IsNull("deleted_at")).
		ForUpdate().
		ToSQL()
	if err != nil {
		return league.League{}, fmt.Errorf("build lock league query: %w", err)
	}

	var row leagueTableModel
	if err := tx.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return league.League{}, fmt.Errorf("league %s not found", leagueID)
		}
		return league.League{}, fmt.Errorf("lock league: %w", err)
	}
	return leagueFromRow(row), nil
}

func leagueFromRow(row leagueTableModel) league.League {
	return league.League{
		ID:             row.PublicID,
		Name:           row.Name,
		Code:           row.Code,
		CommissionerID: row.CommissionerID,
		Season:         row.Season,
		Status:         league.Status(row.Status),
		CurrentPhase:   league.Phase(row.CurrentPhase),
		Members:        []string(row.Members),
		DelistedGames:  []string(row.DelistedGames),
		CreatedAt:      row.CreatedAt,
		UpdatedAt:      row.UpdatedAt,
	}
}
