package leaguescoring

import (
	"math"
	"sort"
)

const (
	bombPercentile = 0.25
	minBombSample  = 4
)

// BombThreshold is the 25th percentile of the positive daily points. Fewer
// than four positive values give 0, which disables damage for the day.
func BombThreshold(points []float64) float64 {
	positive := make([]float64, 0, len(points))
	for _, p := range points {
		if p > 0 {
			positive = append(positive, p)
		}
	}
	if len(positive) < minBombSample {
		return 0
	}
	sort.Float64s(positive)
	return positive[int(math.Floor(float64(len(positive))*bombPercentile))]
}

// BombPick is one team's bomb designation. GameID is empty when unset.
type BombPick struct {
	UserID string
	GameID string
}

// AllocateBombDamage splits each bomb's shortfall under threshold evenly over
// every other team. The bomb owner is unaffected. Teams with no adjustment
// are omitted from the result.
func AllocateBombDamage(teams []BombPick, points map[string]float64, threshold float64) map[string]float64 {
	out := make(map[string]float64)
	if threshold <= 0 || len(teams) < 2 {
		return out
	}

	others := float64(len(teams) - 1)
	for _, bomb := range teams {
		if bomb.GameID == "" {
			continue
		}
		damage := math.Max(0, threshold-points[bomb.GameID])
		if damage <= 0 {
			continue
		}
		share := damage / others
		for _, victim := range teams {
			if victim.UserID == bomb.UserID {
				continue
			}
			out[victim.UserID] -= share
		}
	}
	return out
}

// TotalDamage sums the magnitude of all adjustments.
func TotalDamage(adjustments map[string]float64) float64 {
	var total float64
	for _, v := range adjustments {
		total += math.Abs(v)
	}
	return total
}
