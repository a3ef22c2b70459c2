package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/release-league/internal/domain/game"
	qb "github.com/riskibarqy/release-league/internal/platform/querybuilder"
)

type GameCatalog struct {
	db *sqlx.DB
}

func NewGameCatalog(db *sqlx.DB) *GameCatalog {
	return &GameCatalog{db: db}
}

func (r *GameCatalog) GetByID(ctx context.Context, gameID string) (game.Game, bool, error) {
	query, args, err := qb.Select("*").From("games").
		Where(
			qb.Eq("public_id", gameID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return game.Game{}, false, fmt.Errorf("build get game by id query: %w", err)
	}

	var row gameTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return game.Game{}, false, nil
		}
		return game.Game{}, false, fmt.Errorf("get game by id: %w", err)
	}
	return gameFromRow(row), true, nil
}

// IsHidden treats unknown ids as visible; the draft rejects them elsewhere.
func (r *GameCatalog) IsHidden(ctx context.Context, gameID string) (bool, error) {
	item, ok, err := r.GetByID(ctx, gameID)
	if err != nil {
		return false, err
	}
	return ok && item.IsHidden, nil
}

func (r *GameCatalog) ListDraftable(ctx context.Context, filter game.Filter) ([]game.Game, error) {
	conds := []qb.Condition{
		qb.Eq("is_hidden", false),
		qb.IsNull("deleted_at"),
	}
	if filter.Search != "" {
		conds = append(conds, qb.Expr("name ILIKE ?", "%"+filter.Search+"%"))
	}
	if filter.Genre != "" {
		conds = append(conds, qb.Any("genres", filter.Genre))
	}
	if filter.ReleaseFrom != "" {
		conds = append(conds, qb.Expr("release_date >= ?", filter.ReleaseFrom))
	}
	if filter.ReleaseTo != "" {
		conds = append(conds, qb.Expr("release_date <= ?", filter.ReleaseTo))
	}

	query, args, err := qb.Select("*").From("games").
		Where(conds...).
		OrderBy("release_date NULLS LAST", "id").
		Limit(filter.Limit).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list draftable games query: %w", err)
	}

	return r.selectGames(ctx, "list draftable games", query, args)
}

func (r *GameCatalog) ListScorable(ctx context.Context) ([]game.Game, error) {
	query, args, err := qb.Select("*").From("games").
		Where(
			qb.Expr("steam_app_id IS NOT NULL"),
			qb.Expr("steam_app_id <> ''"),
			qb.Expr("release_date IS NOT NULL"),
			qb.IsNull("deleted_at"),
		).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list scorable games query: %w", err)
	}

	return r.selectGames(ctx, "list scorable games", query, args)
}

// ListPage left-joins game_metrics so unscored games keep a null score.
func (r *GameCatalog) ListPage(ctx context.Context, query game.ListQuery) (game.Page, error) {
	conds := gameListConditions(query)

	countQuery, countArgs, err := qb.Select("COUNT(*)").From("games g").Where(conds...).ToSQL()
	if err != nil {
		return game.Page{}, fmt.Errorf("build count game list query: %w", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, countArgs...); err != nil {
		return game.Page{}, fmt.Errorf("count game list: %w", err)
	}

	pageQuery, pageArgs, err := qb.Select("g.*", "m.score AS score").From("games g").
		LeftJoin("game_metrics m", "m.game_public_id = g.public_id").
		Where(conds...).
		OrderBy(gameListOrder(query.SortBy, query.Order), "g.public_id").
		Limit(query.Limit).
		Offset(query.Offset).
		ToSQL()
	if err != nil {
		return game.Page{}, fmt.Errorf("build game list page query: %w", err)
	}

	var rows []gameListRow
	if err := r.db.SelectContext(ctx, &rows, pageQuery, pageArgs...); err != nil {
		return game.Page{}, fmt.Errorf("list game page: %w", err)
	}

	out := game.Page{Games: make([]game.ListEntry, 0, len(rows)), Total: total}
	for _, row := range rows {
		out.Games = append(out.Games, gameListEntryFromRow(row))
	}
	return out, nil
}

func (r *GameCatalog) ListReleaseYears(ctx context.Context) ([]int, error) {
	query, args, err := qb.Select("DISTINCT EXTRACT(YEAR FROM release_date)::int AS year").From("games").
		Where(
			qb.Expr("release_date IS NOT NULL"),
			qb.Eq("is_hidden", false),
			qb.IsNull("deleted_at"),
		).
		OrderBy("year DESC").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list release years query: %w", err)
	}

	years := make([]int, 0)
	if err := r.db.SelectContext(ctx, &years, query, args...); err != nil {
		return nil, fmt.Errorf("list release years: %w", err)
	}
	return years, nil
}

func gameListConditions(query game.ListQuery) []qb.Condition {
	from, until := query.YearBounds()
	conds := []qb.Condition{
		qb.Eq("g.is_hidden", false),
		qb.IsNull("g.deleted_at"),
		qb.Expr("g.release_date >= ?", from),
		qb.Expr("g.release_date < ?", until),
	}
	if query.Search != "" {
		conds = append(conds, qb.Expr("g.name ILIKE ?", "%"+query.Search+"%"))
	}
	if query.ReleaseFrom != "" {
		conds = append(conds, qb.Expr("g.release_date >= ?", query.ReleaseFrom))
	}
	return conds
}

// gameListOrder renders a whitelisted ORDER BY term. Nulls sort last in
// both directions.
func gameListOrder(by game.SortField, order game.SortOrder) string {
	column := "g.release_date"
	switch by {
	case game.SortByID:
		column = "g.public_id"
	case game.SortByName:
		column = "LOWER(g.name)"
	case game.SortByScore:
		column = "m.score"
	}
	direction := "ASC"
	if order == game.OrderDesc {
		direction = "DESC"
	}
	return column + " " + direction + " NULLS LAST"
}

func gameListEntryFromRow(row gameListRow) game.ListEntry {
	out := game.ListEntry{Game: gameFromRow(row.gameTableModel)}
	if row.Score.Valid {
		score := row.Score.Float64
		out.Score = &score
	}
	return out
}

func (r *GameCatalog) selectGames(ctx context.Context, op, query string, args []any) ([]game.Game, error) {
	var rows []gameTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := make([]game.Game, 0, len(rows))
	for _, row := range rows {
		out = append(out, gameFromRow(row))
	}
	return out, nil
}

func gameFromRow(row gameTableModel) game.Game {
	out := game.Game{
		ID:         row.PublicID,
		Name:       row.Name,
		CoverURL:   nullStringValue(row.CoverURL),
		SteamAppID: nullStringValue(row.SteamAppID),
		IsHidden:   row.IsHidden,
		Genres:     nonNilStrings(row.Genres),
	}
	if row.ReleaseDate.Valid {
		out.ReleaseDate = row.ReleaseDate.Time.UTC().Format(game.DateLayout)
	}
	return out
}
