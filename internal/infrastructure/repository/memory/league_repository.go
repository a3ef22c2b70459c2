package memory

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/riskibarqy/release-league/internal/domain/league"
	"github.com/riskibarqy/release-league/internal/domain/team"
)

type LeagueRepository struct {
	store *Store
	now   func() time.Time
}

func NewLeagueRepository(store *Store) *LeagueRepository {
	return &LeagueRepository{store: store, now: time.Now}
}

func (r *LeagueRepository) Create(_ context.Context, item league.League, commissionerTeamName string) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.leagues[item.ID]; exists {
		return fmt.Errorf("league %s already exists", item.ID)
	}
	for _, l := range s.leagues {
		if l.Code == item.Code {
			return league.ErrCodeInUse
		}
	}

	s.leagues[item.ID] = cloneLeague(item)
	s.leagueOrder = append(s.leagueOrder, item.ID)
	s.teams[item.ID] = append(s.teams[item.ID], r.newTeam(item.ID, item.CommissionerID, commissionerTeamName))
	return nil
}

func (r *LeagueRepository) GetByID(_ context.Context, leagueID string) (league.League, bool, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	l, ok := s.leagues[leagueID]
	if !ok {
		return league.League{}, false, nil
	}
	return cloneLeague(l), true, nil
}

func (r *LeagueRepository) GetByCode(_ context.Context, code string) (league.League, bool, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, id := range s.leagueOrder {
		if l := s.leagues[id]; l.Code == code {
			return cloneLeague(l), true, nil
		}
	}
	return league.League{}, false, nil
}

func (r *LeagueRepository) ListByMember(_ context.Context, userID string) ([]league.League, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]league.League, 0)
	for _, id := range s.leagueOrder {
		if l := s.leagues[id]; l.IsMember(userID) {
			out = append(out, cloneLeague(l))
		}
	}
	return out, nil
}

func (r *LeagueRepository) ListByStatus(_ context.Context, statuses ...league.Status) ([]league.League, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]league.League, 0)
	for _, id := range s.leagueOrder {
		l := s.leagues[id]
		if len(statuses) == 0 || slices.Contains(statuses, l.Status) {
			out = append(out, cloneLeague(l))
		}
	}
	return out, nil
}

func (r *LeagueRepository) AddMember(_ context.Context, leagueID, userID, teamName string) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.leagues[leagueID]
	if !ok {
		return fmt.Errorf("league %s not found", leagueID)
	}
	if l.IsMember(userID) {
		return nil
	}
	l.Members = append(slices.Clone(l.Members), userID)
	l.UpdatedAt = r.now().UTC()
	s.leagues[leagueID] = l
	s.teams[leagueID] = append(s.teams[leagueID], r.newTeam(leagueID, userID, teamName))
	return nil
}

func (r *LeagueRepository) UpdateState(_ context.Context, leagueID string, state league.State) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.leagues[leagueID]
	if !ok {
		return fmt.Errorf("league %s not found", leagueID)
	}
	l.CurrentPhase = state.Phase
	l.Status = state.Status
	l.UpdatedAt = r.now().UTC()
	s.leagues[leagueID] = l
	return nil
}

func (r *LeagueRepository) UpdateSeason(_ context.Context, leagueID, season string) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.leagues[leagueID]
	if !ok {
		return fmt.Errorf("league %s not found", leagueID)
	}
	l.Season = season
	l.UpdatedAt = r.now().UTC()
	s.leagues[leagueID] = l
	return nil
}

// Delete drops the league from every listing. Teams and drafts stay behind
// the way the soft-deleted postgres row keeps them.
func (r *LeagueRepository) Delete(_ context.Context, leagueID string) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.leagues[leagueID]; !ok {
		return fmt.Errorf("league %s not found", leagueID)
	}
	delete(s.leagues, leagueID)
	s.leagueOrder = slices.DeleteFunc(slices.Clone(s.leagueOrder), func(id string) bool { return id == leagueID })
	return nil
}

func (r *LeagueRepository) AddDelistedGames(_ context.Context, leagueID string, gameIDs []string) ([]string, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.leagues[leagueID]
	if !ok {
		return nil, fmt.Errorf("league %s not found", leagueID)
	}
	added := make([]string, 0, len(gameIDs))
	delisted := slices.Clone(l.DelistedGames)
	for _, id := range gameIDs {
		if id == "" || slices.Contains(delisted, id) {
			continue
		}
		delisted = append(delisted, id)
		added = append(added, id)
	}
	if len(added) > 0 {
		l.DelistedGames = delisted
		l.UpdatedAt = r.now().UTC()
		s.leagues[leagueID] = l
	}
	return added, nil
}

func (r *LeagueRepository) newTeam(leagueID, userID, name string) team.Team {
	now := r.now().UTC()
	return team.Team{
		LeagueID:  leagueID,
		UserID:    userID,
		Name:      team.NormalizeName(name),
		Picks:     team.EmptyPicks(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}
