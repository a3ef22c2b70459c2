package gamescore

// Cumulative is the running state milestone rules look at.
type Cumulative struct {
	ReviewsTotal  int64
	PeakCCU       int64
	PositiveRatio float64
}

type Milestone struct {
	ID    string
	Bonus float64
	Hit   func(c Cumulative) bool
}

// Milestones are checked in this order. Each one pays once per game, ever.
var Milestones = []Milestone{
	{ID: "reviews_100", Bonus: 10, Hit: func(c Cumulative) bool { return c.ReviewsTotal >= 100 }},
	{ID: "reviews_1k", Bonus: 25, Hit: func(c Cumulative) bool { return c.ReviewsTotal >= 1_000 }},
	{ID: "reviews_10k", Bonus: 50, Hit: func(c Cumulative) bool { return c.ReviewsTotal >= 10_000 }},
	{ID: "ccu_1k", Bonus: 20, Hit: func(c Cumulative) bool { return c.PeakCCU >= 1_000 }},
	{ID: "ccu_10k", Bonus: 40, Hit: func(c Cumulative) bool { return c.PeakCCU >= 10_000 }},
	{ID: "ccu_100k", Bonus: 80, Hit: func(c Cumulative) bool { return c.PeakCCU >= 100_000 }},
	{ID: "acclaimed", Bonus: 30, Hit: func(c Cumulative) bool { return c.PositiveRatio >= 0.9 && c.ReviewsTotal >= 500 }},
}

// EvaluateMilestones returns the milestones newly reached and their bonus sum.
func EvaluateMilestones(c Cumulative, awarded []string) ([]string, float64) {
	done := make(map[string]struct{}, len(awarded))
	for _, id := range awarded {
		done[id] = struct{}{}
	}

	var (
		ids   []string
		bonus float64
	)
	for _, m := range Milestones {
		if _, ok := done[m.ID]; ok {
			continue
		}
		if m.Hit(c) {
			ids = append(ids, m.ID)
			bonus += m.Bonus
		}
	}
	return ids, bonus
}
