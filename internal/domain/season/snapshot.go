package season

import (
	"context"
	"sort"
	"time"
)

type Series struct {
	TeamID string    `json:"teamId"`
	Data   []float64 `json:"data"`
}

type GraphData struct {
	Dates  []string `json:"dates"`
	Series []Series `json:"series"`
}

// Snapshot is the frozen end-of-season leaderboard. It is written once.
type Snapshot struct {
	LeagueID    string             `json:"leagueId"`
	Season      string             `json:"season"`
	FinalScores map[string]float64 `json:"finalScores"`
	FinalRanks  map[string]int     `json:"finalRanks"`
	GraphData   GraphData          `json:"graphData"`
	ComputedAt  time.Time          `json:"computedAt"`
}

// BuildSnapshot ranks teams by final score descending, ties by team id.
// Series follow rank order.
func BuildSnapshot(leagueID, seasonID string, teamIDs []string, history ScoreHistory, now time.Time) Snapshot {
	final := history.Final()
	ranked := make([]string, len(teamIDs))
	copy(ranked, teamIDs)
	sort.SliceStable(ranked, func(i, j int) bool {
		si, sj := final[ranked[i]], final[ranked[j]]
		if si != sj {
			return si > sj
		}
		return ranked[i] < ranked[j]
	})

	scores := make(map[string]float64, len(ranked))
	ranks := make(map[string]int, len(ranked))
	series := make([]Series, 0, len(ranked))
	for i, teamID := range ranked {
		scores[teamID] = final[teamID]
		ranks[teamID] = i + 1
		data := history.Scores[teamID]
		if data == nil {
			data = make([]float64, len(history.Dates))
		}
		series = append(series, Series{TeamID: teamID, Data: data})
	}

	dates := history.Dates
	if dates == nil {
		dates = []string{}
	}

	return Snapshot{
		LeagueID:    leagueID,
		Season:      seasonID,
		FinalScores: scores,
		FinalRanks:  ranks,
		GraphData:   GraphData{Dates: dates, Series: series},
		ComputedAt:  now,
	}
}

// Repository describes snapshot persistence needs from use cases.
type Repository interface {
	Get(ctx context.Context, leagueID, season string) (Snapshot, bool, error)
	// Create inserts the snapshot unless one exists. created reports which.
	Create(ctx context.Context, snapshot Snapshot) (created bool, err error)
}
