package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	qb "github.com/riskibarqy/release-league/internal/platform/querybuilder"
)

type BookmarkRepository struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewBookmarkRepository(db *sqlx.DB) *BookmarkRepository {
	return &BookmarkRepository{db: db, now: time.Now}
}

func (r *BookmarkRepository) ListGameIDs(ctx context.Context, userID string) ([]string, error) {
	query, args, err := qb.Select("game_public_id").From("game_bookmarks").
		Where(qb.Eq("user_id", userID)).
		OrderBy("created_at", "game_public_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list bookmarks query: %w", err)
	}

	ids := make([]string, 0)
	if err := r.db.SelectContext(ctx, &ids, query, args...); err != nil {
		return nil, fmt.Errorf("list bookmarks: %w", err)
	}
	return ids, nil
}

func (r *BookmarkRepository) Add(ctx context.Context, userID, gameID string) error {
	insertModel := bookmarkInsertModel{
		UserID:    userID,
		GameID:    gameID,
		CreatedAt: r.now().UTC(),
	}
	query, args, err := qb.InsertModel("game_bookmarks", insertModel, "ON CONFLICT (user_id, game_public_id) DO NOTHING")
	if err != nil {
		return fmt.Errorf("build add bookmark query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("add bookmark: %w", err)
	}
	return nil
}

func (r *BookmarkRepository) Remove(ctx context.Context, userID, gameID string) error {
	query, args, err := qb.DeleteFrom("game_bookmarks").
		Where(qb.Eq("user_id", userID), qb.Eq("game_public_id", gameID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build remove bookmark query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("remove bookmark: %w", err)
	}
	return nil
}
