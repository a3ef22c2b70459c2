package postgres

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/release-league/internal/domain/draft"
	"github.com/riskibarqy/release-league/internal/domain/league"
	"github.com/riskibarqy/release-league/internal/domain/team"
	qb "github.com/riskibarqy/release-league/internal/platform/querybuilder"
)

var errDraftMissing = errors.New("draft missing")

type DraftRepository struct {
	db *sqlx.DB
}

func NewDraftRepository(db *sqlx.DB) *DraftRepository {
	return &DraftRepository{db: db}
}

func (r *DraftRepository) Create(ctx context.Context, item draft.Draft) error {
	insertModel := draftInsertModel{
		LeagueID:       item.LeagueID,
		DraftID:        item.ID(),
		Phase:          string(item.Phase),
		Season:         item.Season,
		Status:         string(item.Status),
		Order:          nonNilStrings(item.Order),
		PresentUserIDs: nonNilStrings(item.PresentUserIDs),
		CreatedAt:      item.CreatedAt,
		UpdatedAt:      item.UpdatedAt,
	}
	query, args, err := qb.InsertModel("drafts", insertModel, "")
	if err != nil {
		return fmt.Errorf("build create draft query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if constraint, ok := uniqueViolation(err); ok && constraint == draftConstraint {
			return draft.ErrAlreadyExists
		}
		return fmt.Errorf("create draft: %w", err)
	}
	return nil
}

func (r *DraftRepository) Get(ctx context.Context, leagueID, draftID string) (draft.Draft, bool, error) {
	query, args, err := qb.Select("*").From("drafts").
		Where(
			qb.Eq("league_public_id", leagueID),
			qb.Eq("draft_id", draftID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return draft.Draft{}, false, fmt.Errorf("build get draft query: %w", err)
	}

	var row draftTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return draft.Draft{}, false, nil
		}
		return draft.Draft{}, false, fmt.Errorf("get draft: %w", err)
	}

	entries, err := selectDraftLog(ctx, r.db, leagueID, draftID)
	if err != nil {
		return draft.Draft{}, false, err
	}
	return draftFromRows(row, entries), true, nil
}

func (r *DraftRepository) ListBySeason(ctx context.Context, leagueID, season string) ([]draft.Draft, error) {
	query, args, err := qb.Select("*").From("drafts").
		Where(
			qb.Eq("league_public_id", leagueID),
			qb.Eq("season", season),
			qb.IsNull("deleted_at"),
		).
		OrderBy("created_at", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list drafts by season query: %w", err)
	}

	var rows []draftTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list drafts by season: %w", err)
	}

	out := make([]draft.Draft, 0, len(rows))
	for _, row := range rows {
		entries, err := selectDraftLog(ctx, r.db, leagueID, row.DraftID)
		if err != nil {
			return nil, err
		}
		out = append(out, draftFromRows(row, entries))
	}
	return out, nil
}

func (r *DraftRepository) Mutate(ctx context.Context, leagueID, draftID string, fn draft.MutateFunc) (draft.Draft, bool, error) {
	return r.mutate(ctx, leagueID, draftID, "", func(d *draft.Draft, _ *team.Team) error {
		return fn(d)
	})
}

// MutateWithTeam locks the draft row, then the team row, so concurrent
// submissions for the same draft serialize on the draft lock.
func (r *DraftRepository) MutateWithTeam(ctx context.Context, leagueID, draftID, userID string, fn draft.PickTxFunc) (draft.Draft, bool, error) {
	return r.mutate(ctx, leagueID, draftID, userID, fn)
}

func (r *DraftRepository) mutate(ctx context.Context, leagueID, draftID, userID string, fn draft.PickTxFunc) (draft.Draft, bool, error) {
	var next draft.Draft
	err := inTx(ctx, r.db, "mutate draft", func(tx *sqlx.Tx) error {
		current, err := lockDraft(ctx, tx, leagueID, draftID)
		if err != nil {
			return err
		}

		var t *team.Team
		if userID != "" {
			locked, ok, err := lockTeam(ctx, tx, leagueID, userID)
			if err != nil {
				return err
			}
			if ok {
				t = &locked
			}
		}

		next = current.Clone()
		if err := fn(&next, t); err != nil {
			return err
		}
		if err := appendDraftLog(ctx, tx, current, next); err != nil {
			return err
		}
		if err := updateDraftRow(ctx, tx, next); err != nil {
			return err
		}
		if t != nil {
			return writeTeamPicks(ctx, tx, *t)
		}
		return nil
	})
	if errors.Is(err, errDraftMissing) {
		return draft.Draft{}, false, nil
	}
	if err != nil {
		return draft.Draft{}, true, err
	}
	return next, true, nil
}

func (r *DraftRepository) AddPresence(ctx context.Context, leagueID, draftID, userID string) error {
	return r.updatePresence(ctx, leagueID, draftID,
		"CASE WHEN ? = ANY(present_user_ids) THEN present_user_ids ELSE array_append(present_user_ids, ?) END",
		userID, userID)
}

func (r *DraftRepository) RemovePresence(ctx context.Context, leagueID, draftID, userID string) error {
	return r.updatePresence(ctx, leagueID, draftID, "array_remove(present_user_ids, ?)", userID)
}

func (r *DraftRepository) updatePresence(ctx context.Context, leagueID, draftID, expr string, args ...any) error {
	query, queryArgs, err := qb.Update("drafts").
		SetExpr("present_user_ids", expr, args...).
		Where(
			qb.Eq("league_public_id", leagueID),
			qb.Eq("draft_id", draftID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update draft presence query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, queryArgs...)
	if err != nil {
		return fmt.Errorf("update draft presence: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected update draft presence: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("draft league=%s id=%s not found", leagueID, draftID)
	}
	return nil
}

func lockDraft(ctx context.Context, tx *sqlx.Tx, leagueID, draftID string) (draft.Draft, error) {
	query, args, err := qb.Select("*").From("drafts").
		Where(
			qb.Eq("league_public_id", leagueID),
			qb.Eq("draft_id", draftID),
			qb.IsNull("deleted_at"),
		).
		ForUpdate().
		ToSQL()
	if err != nil {
		return draft.Draft{}, fmt.Errorf("build lock draft query: %w", err)
	}

	var row draftTableModel
	if err := tx.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return draft.Draft{}, errDraftMissing
		}
		return draft.Draft{}, fmt.Errorf("lock draft: %w", err)
	}

	entries, err := selectDraftLog(ctx, tx, leagueID, draftID)
	if err != nil {
		return draft.Draft{}, err
	}
	return draftFromRows(row, entries), nil
}

func selectDraftLog(ctx context.Context, q sqlx.QueryerContext, leagueID, draftID string) ([]draftPickTableModel, error) {
	query, args, err := qb.Select("*").From("draft_picks").
		Where(
			qb.Eq("league_public_id", leagueID),
			qb.Eq("draft_id", draftID),
		).
		OrderBy("slot_index").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select draft log query: %w", err)
	}

	var rows []draftPickTableModel
	if err := sqlx.SelectContext(ctx, q, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select draft log: %w", err)
	}
	return rows, nil
}

// appendDraftLog inserts the picks and skips next added on top of current.
// The slot and game unique indexes reject a concurrent duplicate.
func appendDraftLog(ctx context.Context, tx *sqlx.Tx, current, next draft.Draft) error {
	if len(next.Picks) < len(current.Picks) || len(next.Skips) < len(current.Skips) {
		return fmt.Errorf("draft log must be append-only")
	}

	entries := make([]draftPickInsertModel, 0, 2)
	for _, p := range next.Picks[len(current.Picks):] {
		gameID := p.GameID
		pickType := string(p.PickType)
		entries = append(entries, draftPickInsertModel{
			LeagueID:  next.LeagueID,
			DraftID:   next.ID(),
			SlotIndex: p.SlotIndex,
			EntryType: draftEntryPick,
			UserID:    p.UserID,
			GameID:    &gameID,
			PickType:  &pickType,
			CreatedAt: p.CreatedAt,
		})
	}
	for _, sk := range next.Skips[len(current.Skips):] {
		entries = append(entries, draftPickInsertModel{
			LeagueID:  next.LeagueID,
			DraftID:   next.ID(),
			SlotIndex: sk.SlotIndex,
			EntryType: draftEntrySkip,
			UserID:    sk.UserID,
			CreatedAt: sk.CreatedAt,
		})
	}

	for _, entry := range entries {
		query, args, err := qb.InsertModel("draft_picks", entry, "")
		if err != nil {
			return fmt.Errorf("build insert draft log query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			switch constraint, ok := uniqueViolation(err); {
			case ok && constraint == draftPickGameConstraint:
				return draft.ErrGameConflict
			case ok && constraint == draftPickSlotConstraint:
				return draft.ErrSlotConflict
			}
			return fmt.Errorf("insert draft log slot=%d: %w", entry.SlotIndex, err)
		}
	}
	return nil
}

func updateDraftRow(ctx context.Context, tx *sqlx.Tx, d draft.Draft) error {
	var round, position, userID any
	if d.CurrentPick != nil {
		round = d.CurrentPick.Round
		position = d.CurrentPick.Position
		userID = d.CurrentPick.UserID
	}

	query, args, err := qb.Update("drafts").
		Set("status", string(d.Status)).
		Set("draft_order", nonNilStrings(d.Order)).
		Set("current_round", round).
		Set("current_position", position).
		Set("current_user_id", userID).
		Set("present_user_ids", nonNilStrings(d.PresentUserIDs)).
		SetExpr("updated_at", "NOW()").
		Where(
			qb.Eq("league_public_id", d.LeagueID),
			qb.Eq("draft_id", d.ID()),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update draft query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update draft: %w", err)
	}
	return nil
}

func draftFromRows(row draftTableModel, entries []draftPickTableModel) draft.Draft {
	out := draft.Draft{
		LeagueID:       row.LeagueID,
		Phase:          league.Phase(row.Phase),
		Season:         row.Season,
		Status:         draft.Status(row.Status),
		Order:          slices.Clone([]string(row.Order)),
		Picks:          make([]draft.Pick, 0, len(entries)),
		Skips:          make([]draft.Skip, 0),
		PresentUserIDs: nonNilStrings(row.PresentUserIDs),
		CreatedAt:      row.CreatedAt,
		UpdatedAt:      row.UpdatedAt,
	}
	if row.CurrentRound.Valid {
		out.CurrentPick = &draft.CurrentPick{
			Round:    int(row.CurrentRound.Int64),
			Position: int(row.CurrentPosition.Int64),
			UserID:   nullStringValue(row.CurrentUserID),
		}
	}

	sort.SliceStable(entries, func(i, j int) bool { return entries[i].SlotIndex < entries[j].SlotIndex })
	for _, e := range entries {
		switch e.EntryType {
		case draftEntrySkip:
			out.Skips = append(out.Skips, draft.Skip{UserID: e.UserID, SlotIndex: e.SlotIndex, CreatedAt: e.CreatedAt})
		default:
			out.Picks = append(out.Picks, draft.Pick{
				UserID:    e.UserID,
				GameID:    nullStringValue(e.GameID),
				PickType:  team.PickType(nullStringValue(e.PickType)),
				SlotIndex: e.SlotIndex,
				CreatedAt: e.CreatedAt,
			})
		}
	}
	return out
}
