package season

import (
	"slices"
	"sort"
)

// DailyPoints is one history point of one game.
type DailyPoints struct {
	Date   string
	Points float64
}

// TeamGames is the scoring game set of one team.
type TeamGames struct {
	UserID  string
	GameIDs []string
}

// ScoreHistory is the cumulative score of each team on each date.
type ScoreHistory struct {
	Dates  []string
	Scores map[string][]float64
}

// Final returns the last cumulative score of each team, 0 when no dates.
func (h ScoreHistory) Final() map[string]float64 {
	out := make(map[string]float64, len(h.Scores))
	for userID, series := range h.Scores {
		if len(series) == 0 {
			out[userID] = 0
			continue
		}
		out[userID] = series[len(series)-1]
	}
	return out
}

// Accumulate walks every date seen in any history, in order. Each team's score
// on a date is the previous score plus that date's points across its games
// plus its bomb adjustment for the date. Dates after seasonEnd are dropped
// when seasonEnd is set.
func Accumulate(teams []TeamGames, histories map[string][]DailyPoints, bombDays map[string]map[string]float64, seasonEnd string) ScoreHistory {
	pointsByGameDate := make(map[string]map[string]float64, len(histories))
	dateSet := make(map[string]struct{})
	for gameID, entries := range histories {
		byDate := make(map[string]float64, len(entries))
		for _, e := range entries {
			if e.Date == "" || (seasonEnd != "" && e.Date > seasonEnd) {
				continue
			}
			byDate[e.Date] += e.Points
			dateSet[e.Date] = struct{}{}
		}
		pointsByGameDate[gameID] = byDate
	}

	dates := make([]string, 0, len(dateSet))
	for d := range dateSet {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	out := ScoreHistory{
		Dates:  dates,
		Scores: make(map[string][]float64, len(teams)),
	}
	for _, t := range teams {
		series := make([]float64, len(dates))
		running := 0.0
		for i, date := range dates {
			for _, gameID := range t.GameIDs {
				running += pointsByGameDate[gameID][date]
			}
			running += bombDays[date][t.UserID]
			series[i] = running
		}
		out.Scores[t.UserID] = series
	}
	return out
}

// UnionGameIDs returns each game id once, in first-seen order.
func UnionGameIDs(teams []TeamGames) []string {
	out := make([]string, 0)
	for _, t := range teams {
		for _, id := range t.GameIDs {
			if !slices.Contains(out, id) {
				out = append(out, id)
			}
		}
	}
	return out
}
