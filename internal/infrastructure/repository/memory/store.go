package memory

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/riskibarqy/release-league/internal/domain/draft"
	"github.com/riskibarqy/release-league/internal/domain/gamescore"
	"github.com/riskibarqy/release-league/internal/domain/league"
	"github.com/riskibarqy/release-league/internal/domain/leaguescoring"
	"github.com/riskibarqy/release-league/internal/domain/season"
	"github.com/riskibarqy/release-league/internal/domain/team"
)

// Store is the shared state behind the in-memory repositories. One mutex
// covers every collection so cross-collection writes are atomic.
type Store struct {
	mu sync.RWMutex

	leagues     map[string]league.League
	leagueOrder []string
	teams       map[string][]team.Team
	drafts      map[string]draft.Draft
	metrics     map[string]gamescore.Metrics
	history     map[string][]gamescore.HistoryEntry
	ccuSamples  map[string]gamescore.CCUSample
	scoringDays map[string][]leaguescoring.ScoringDay
	snapshots   map[string]season.Snapshot
	bookmarks   map[string][]string
}

func NewStore() *Store {
	return &Store{
		leagues:     make(map[string]league.League),
		teams:       make(map[string][]team.Team),
		drafts:      make(map[string]draft.Draft),
		metrics:     make(map[string]gamescore.Metrics),
		history:     make(map[string][]gamescore.HistoryEntry),
		ccuSamples:  make(map[string]gamescore.CCUSample),
		scoringDays: make(map[string][]leaguescoring.ScoringDay),
		snapshots:   make(map[string]season.Snapshot),
		bookmarks:   make(map[string][]string),
	}
}

func key(parts ...string) string {
	return strings.Join(parts, "/")
}

func cloneLeague(l league.League) league.League {
	l.Members = slices.Clone(l.Members)
	l.DelistedGames = slices.Clone(l.DelistedGames)
	return l
}

func cloneTeam(t team.Team) team.Team {
	t.Picks = t.Picks.Clone()
	return t
}

// teamIndex returns the position of userID in the league's team list, or -1.
// Callers hold the lock.
func (s *Store) teamIndex(leagueID, userID string) int {
	for i, t := range s.teams[leagueID] {
		if t.UserID == userID {
			return i
		}
	}
	return -1
}

// SetTeamPicks replaces a roster outside of a draft. Used by seeds and tests.
func (s *Store) SetTeamPicks(leagueID, userID string, picks team.Picks) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.teamIndex(leagueID, userID)
	if idx < 0 {
		return fmt.Errorf("team league=%s user=%s not found", leagueID, userID)
	}
	s.teams[leagueID][idx].Picks = picks.Clone()
	return nil
}
