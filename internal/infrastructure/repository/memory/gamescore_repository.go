package memory

import (
	"context"
	"slices"
	"sort"

	"github.com/riskibarqy/release-league/internal/domain/gamescore"
)

type GameScoreRepository struct {
	store *Store
}

func NewGameScoreRepository(store *Store) *GameScoreRepository {
	return &GameScoreRepository{store: store}
}

func (r *GameScoreRepository) GetMetrics(_ context.Context, gameID string) (gamescore.Metrics, bool, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.metrics[gameID]
	if !ok {
		return gamescore.Metrics{}, false, nil
	}
	m.Milestones = slices.Clone(m.Milestones)
	return m, true, nil
}

func (r *GameScoreRepository) ListHistory(_ context.Context, gameID string) ([]gamescore.HistoryEntry, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Clone(s.history[gameID]), nil
}

func (r *GameScoreRepository) GetCCUSample(_ context.Context, gameID, date string) (gamescore.CCUSample, bool, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	sample, ok := s.ccuSamples[key(gameID, date)]
	return sample, ok, nil
}

func (r *GameScoreRepository) UpsertCCUSample(_ context.Context, sample gamescore.CCUSample) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key(sample.GameID, sample.Date)
	if existing, ok := s.ccuSamples[k]; ok && existing.CCU >= sample.CCU {
		return nil
	}
	s.ccuSamples[k] = sample
	return nil
}

// ApplyUpdates increments the running score only for dates not yet recorded.
func (r *GameScoreRepository) ApplyUpdates(_ context.Context, updates []gamescore.Update) (int, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	applied := 0
	for _, u := range updates {
		gameID := u.Entry.GameID
		if slices.ContainsFunc(s.history[gameID], func(e gamescore.HistoryEntry) bool { return e.Date == u.Entry.Date }) {
			continue
		}

		entries := append(s.history[gameID], u.Entry)
		sort.SliceStable(entries, func(i, j int) bool { return entries[i].Date < entries[j].Date })
		s.history[gameID] = entries

		m := u.Metrics
		prev := s.metrics[gameID]
		m.Score = prev.Score + u.Entry.Points
		m.Milestones = slices.Clone(prev.Milestones)
		for _, id := range u.NewMilestones {
			if !slices.Contains(m.Milestones, id) {
				m.Milestones = append(m.Milestones, id)
			}
		}
		m.BreakoutAwarded = prev.BreakoutAwarded || u.Breakout
		s.metrics[gameID] = m
		applied++
	}
	return applied, nil
}
