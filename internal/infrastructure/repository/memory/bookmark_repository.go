package memory

import (
	"context"
	"slices"
)

type BookmarkRepository struct {
	store *Store
}

func NewBookmarkRepository(store *Store) *BookmarkRepository {
	return &BookmarkRepository{store: store}
}

func (r *BookmarkRepository) ListGameIDs(_ context.Context, userID string) ([]string, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := slices.Clone(s.bookmarks[userID])
	if out == nil {
		out = []string{}
	}
	return out, nil
}

func (r *BookmarkRepository) Add(_ context.Context, userID, gameID string) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if !slices.Contains(s.bookmarks[userID], gameID) {
		s.bookmarks[userID] = append(s.bookmarks[userID], gameID)
	}
	return nil
}

func (r *BookmarkRepository) Remove(_ context.Context, userID, gameID string) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := s.bookmarks[userID]
	if i := slices.Index(ids, gameID); i >= 0 {
		s.bookmarks[userID] = slices.Delete(slices.Clone(ids), i, i+1)
	}
	return nil
}
