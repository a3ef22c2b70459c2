package memory

import (
	"context"
	"fmt"
	"slices"
	"sort"

	"github.com/riskibarqy/release-league/internal/domain/draft"
	"github.com/riskibarqy/release-league/internal/domain/team"
)

type DraftRepository struct {
	store *Store
}

func NewDraftRepository(store *Store) *DraftRepository {
	return &DraftRepository{store: store}
}

func (r *DraftRepository) Create(_ context.Context, item draft.Draft) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key(item.LeagueID, item.ID())
	if _, exists := s.drafts[k]; exists {
		return draft.ErrAlreadyExists
	}
	s.drafts[k] = item.Clone()
	return nil
}

func (r *DraftRepository) Get(_ context.Context, leagueID, draftID string) (draft.Draft, bool, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.drafts[key(leagueID, draftID)]
	if !ok {
		return draft.Draft{}, false, nil
	}
	return item.Clone(), true, nil
}

func (r *DraftRepository) ListBySeason(_ context.Context, leagueID, seasonID string) ([]draft.Draft, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]draft.Draft, 0, 3)
	for _, item := range s.drafts {
		if item.LeagueID == leagueID && item.Season == seasonID {
			out = append(out, item.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// Mutate applies fn to a copy and stores it only when fn succeeds.
func (r *DraftRepository) Mutate(_ context.Context, leagueID, draftID string, fn draft.MutateFunc) (draft.Draft, bool, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key(leagueID, draftID)
	current, ok := s.drafts[k]
	if !ok {
		return draft.Draft{}, false, nil
	}
	next := current.Clone()
	if err := fn(&next); err != nil {
		return draft.Draft{}, true, err
	}
	if err := checkAppendOnly(current, next); err != nil {
		return draft.Draft{}, true, err
	}
	s.drafts[k] = next
	return next.Clone(), true, nil
}

// MutateWithTeam commits the draft and the team together or not at all.
func (r *DraftRepository) MutateWithTeam(_ context.Context, leagueID, draftID, userID string, fn draft.PickTxFunc) (draft.Draft, bool, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key(leagueID, draftID)
	current, ok := s.drafts[k]
	if !ok {
		return draft.Draft{}, false, nil
	}
	next := current.Clone()

	idx := s.teamIndex(leagueID, userID)
	var t *team.Team
	if idx >= 0 {
		copied := cloneTeam(s.teams[leagueID][idx])
		t = &copied
	}

	if err := fn(&next, t); err != nil {
		return draft.Draft{}, true, err
	}
	if err := checkAppendOnly(current, next); err != nil {
		return draft.Draft{}, true, err
	}

	s.drafts[k] = next
	if t != nil {
		s.teams[leagueID][idx] = *t
	}
	return next.Clone(), true, nil
}

func (r *DraftRepository) AddPresence(_ context.Context, leagueID, draftID, userID string) error {
	return r.updatePresence(leagueID, draftID, func(ids []string) []string {
		if slices.Contains(ids, userID) {
			return ids
		}
		return append(ids, userID)
	})
}

func (r *DraftRepository) RemovePresence(_ context.Context, leagueID, draftID, userID string) error {
	return r.updatePresence(leagueID, draftID, func(ids []string) []string {
		return slices.DeleteFunc(ids, func(id string) bool { return id == userID })
	})
}

func (r *DraftRepository) updatePresence(leagueID, draftID string, fn func([]string) []string) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key(leagueID, draftID)
	item, ok := s.drafts[k]
	if !ok {
		return fmt.Errorf("draft league=%s id=%s not found", leagueID, draftID)
	}
	item.PresentUserIDs = fn(slices.Clone(item.PresentUserIDs))
	s.drafts[k] = item
	return nil
}

// checkAppendOnly mirrors the unique constraints of the sql store: picks and
// skips only grow and no slot or game is recorded twice.
func checkAppendOnly(before, after draft.Draft) error {
	if len(after.Picks) < len(before.Picks) || len(after.Skips) < len(before.Skips) {
		return fmt.Errorf("draft log must be append-only")
	}
	slots := make(map[int]struct{}, len(after.Picks)+len(after.Skips))
	games := make(map[string]struct{}, len(after.Picks))
	for _, p := range after.Picks {
		if _, dup := slots[p.SlotIndex]; dup {
			return draft.ErrSlotConflict
		}
		if _, dup := games[p.GameID]; dup {
			return draft.ErrGameConflict
		}
		slots[p.SlotIndex] = struct{}{}
		games[p.GameID] = struct{}{}
	}
	for _, sk := range after.Skips {
		if _, dup := slots[sk.SlotIndex]; dup {
			return draft.ErrSlotConflict
		}
		slots[sk.SlotIndex] = struct{}{}
	}
	return nil
}
