package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/riskibarqy/release-league/internal/domain/team"
)

type TeamRepository struct {
	store *Store
	now   func() time.Time
}

func NewTeamRepository(store *Store) *TeamRepository {
	return &TeamRepository{store: store, now: time.Now}
}

func (r *TeamRepository) ListByLeague(_ context.Context, leagueID string) ([]team.Team, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	teams := s.teams[leagueID]
	out := make([]team.Team, 0, len(teams))
	for _, t := range teams {
		out = append(out, cloneTeam(t))
	}
	return out, nil
}

func (r *TeamRepository) GetByUser(_ context.Context, leagueID, userID string) (team.Team, bool, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.teamIndex(leagueID, userID)
	if idx < 0 {
		return team.Team{}, false, nil
	}
	return cloneTeam(s.teams[leagueID][idx]), true, nil
}

func (r *TeamRepository) UpdateName(_ context.Context, leagueID, userID, name string) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.teamIndex(leagueID, userID)
	if idx < 0 {
		return fmt.Errorf("team league=%s user=%s not found", leagueID, userID)
	}
	s.teams[leagueID][idx].Name = name
	s.teams[leagueID][idx].UpdatedAt = r.now().UTC()
	return nil
}

func (r *TeamRepository) UpdateScores(_ context.Context, leagueID string, scores map[string]float64) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	now := r.now().UTC()
	for i := range s.teams[leagueID] {
		score, ok := scores[s.teams[leagueID][i].UserID]
		if !ok {
			continue
		}
		s.teams[leagueID][i].Score = score
		s.teams[leagueID][i].UpdatedAt = now
	}
	return nil
}
