package memory

import (
	"context"
	"maps"
	"slices"
	"sort"

	"github.com/riskibarqy/release-league/internal/domain/leaguescoring"
	"github.com/riskibarqy/release-league/internal/domain/season"
)

type LeagueScoringRepository struct {
	store *Store
}

func NewLeagueScoringRepository(store *Store) *LeagueScoringRepository {
	return &LeagueScoringRepository{store: store}
}

func (r *LeagueScoringRepository) SaveDay(_ context.Context, day leaguescoring.ScoringDay) (bool, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	days := s.scoringDays[day.LeagueID]
	if slices.ContainsFunc(days, func(d leaguescoring.ScoringDay) bool { return d.Date == day.Date }) {
		return false, nil
	}

	day.BombAdjustments = maps.Clone(day.BombAdjustments)
	days = append(days, day)
	sort.SliceStable(days, func(i, j int) bool { return days[i].Date < days[j].Date })
	s.scoringDays[day.LeagueID] = days

	for i := range s.teams[day.LeagueID] {
		if delta := day.BombAdjustments[s.teams[day.LeagueID][i].UserID]; delta != 0 {
			s.teams[day.LeagueID][i].BombAdjustment += delta
		}
	}
	return true, nil
}

func (r *LeagueScoringRepository) ListDays(_ context.Context, leagueID string) ([]leaguescoring.ScoringDay, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	days := s.scoringDays[leagueID]
	out := make([]leaguescoring.ScoringDay, 0, len(days))
	for _, d := range days {
		d.BombAdjustments = maps.Clone(d.BombAdjustments)
		out = append(out, d)
	}
	return out, nil
}

type SeasonSnapshotRepository struct {
	store *Store
}

func NewSeasonSnapshotRepository(store *Store) *SeasonSnapshotRepository {
	return &SeasonSnapshotRepository{store: store}
}

func (r *SeasonSnapshotRepository) Get(_ context.Context, leagueID, seasonID string) (season.Snapshot, bool, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap, ok := s.snapshots[key(leagueID, seasonID)]
	return snap, ok, nil
}

func (r *SeasonSnapshotRepository) Create(_ context.Context, snapshot season.Snapshot) (bool, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key(snapshot.LeagueID, snapshot.Season)
	if _, exists := s.snapshots[k]; exists {
		return false, nil
	}
	s.snapshots[k] = snapshot
	return true, nil
}
