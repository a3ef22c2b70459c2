package season

import (
	"slices"
	"testing"
	"time"
)

func TestAccumulate(t *testing.T) {
	t.Parallel()

	teams := []TeamGames{
		{UserID: "a", GameIDs: []string{"g1", "g2"}},
		{UserID: "b", GameIDs: []string{"g3"}},
	}
	histories := map[string][]DailyPoints{
		"g1": {{Date: "2026-01-01", Points: 5}, {Date: "2026-01-03", Points: 2}},
		"g2": {{Date: "2026-01-02", Points: 1}},
		"g3": {{Date: "2026-01-01", Points: 4}, {Date: "2027-01-01", Points: 100}},
	}
	bombDays := map[string]map[string]float64{
		"2026-01-02": {"b": -1.5},
	}

	got := Accumulate(teams, histories, bombDays, "2026-12-31")

	wantDates := []string{"2026-01-01", "2026-01-02", "2026-01-03"}
	if !slices.Equal(got.Dates, wantDates) {
		t.Fatalf("unexpected dates: got=%v want=%v", got.Dates, wantDates)
	}
	if !slices.Equal(got.Scores["a"], []float64{5, 6, 8}) {
		t.Fatalf("unexpected series for a: %v", got.Scores["a"])
	}
	if !slices.Equal(got.Scores["b"], []float64{4, 2.5, 2.5}) {
		t.Fatalf("unexpected series for b: %v", got.Scores["b"])
	}
}

func TestBuildSnapshot_RanksWithTieBreak(t *testing.T) {
	t.Parallel()

	history := ScoreHistory{
		Dates: []string{"2026-01-01"},
		Scores: map[string][]float64{
			"zed":   {10},
			"alpha": {10},
			"mid":   {12},
		},
	}
	snap := BuildSnapshot("l1", "2026", []string{"zed", "alpha", "mid", "empty"}, history, time.Unix(0, 0))

	want := map[string]int{"mid": 1, "alpha": 2, "zed": 3, "empty": 4}
	for teamID, rank := range want {
		if snap.FinalRanks[teamID] != rank {
			t.Fatalf("unexpected rank for %s: got=%d want=%d", teamID, snap.FinalRanks[teamID], rank)
		}
	}
	if snap.GraphData.Series[0].TeamID != "mid" || len(snap.GraphData.Series[3].Data) != 1 {
		t.Fatalf("unexpected series: %+v", snap.GraphData.Series)
	}
	if snap.FinalScores["empty"] != 0 {
		t.Fatalf("team without history must score 0")
	}
}
