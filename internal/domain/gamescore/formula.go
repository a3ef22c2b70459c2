package gamescore

import "math"

// SalesPerReview estimates copies sold from the public review count.
const SalesPerReview = 40

const (
	ownersWeight  = 4
	ccuWeight     = 3
	reviewsWeight = 1
	qualityWeight = 5
)

// Telemetry is one fresh reading from the storefront.
type Telemetry struct {
	ReviewsTotal    int64
	ReviewsPositive int64
	CCU             int64
}

// Delta is the day's growth against the previous recorded day.
type Delta struct {
	EstimatedOwners  int64
	SalesDelta       int64
	ReviewsDelta     int64
	PositiveRatio    float64
	PeakCCU          int64
	DaysSinceRelease int
}

func EstimatedOwners(reviewsTotal int64) int64 {
	return reviewsTotal * SalesPerReview
}

// ComputeDelta derives today's growth. previous is nil on the first day.
// offPeak is an earlier same-day CCU sample, zero when none was taken.
func ComputeDelta(current Telemetry, previous *HistoryEntry, offPeak int64, daysSinceRelease int) Delta {
	owners := EstimatedOwners(current.ReviewsTotal)

	var prevOwners, prevReviews int64
	if previous != nil {
		prevOwners = previous.EstimatedOwners
		prevReviews = previous.ReviewsTotal
	}

	ratio := 0.0
	if current.ReviewsTotal > 0 {
		ratio = float64(current.ReviewsPositive) / float64(current.ReviewsTotal)
	}

	return Delta{
		EstimatedOwners:  owners,
		SalesDelta:       max(0, owners-prevOwners),
		ReviewsDelta:     max(0, current.ReviewsTotal-prevReviews),
		PositiveRatio:    ratio,
		PeakCCU:          max(current.CCU, offPeak),
		DaysSinceRelease: daysSinceRelease,
	}
}

func logScore(v float64, scale float64) float64 {
	return math.Log10(math.Max(1, v)) * scale
}

// TimeMultiplier decays points by days since release in four bands.
func TimeMultiplier(days int) float64 {
	switch {
	case days <= 14:
		return 2.0
	case days <= 90:
		return 1.0
	case days <= 180:
		return 0.75
	default:
		return 0.5
	}
}

// BasePoints is the concave growth score for one day, before bonuses.
func BasePoints(d Delta) float64 {
	owners := logScore(float64(d.SalesDelta), ownersWeight)
	ccu := logScore(float64(d.PeakCCU), ccuWeight)
	reviews := 0.0
	if d.ReviewsDelta > 0 {
		reviews = logScore(float64(d.ReviewsDelta), reviewsWeight) * d.PositiveRatio * qualityWeight
	}
	return (owners + ccu + reviews) * TimeMultiplier(d.DaysSinceRelease)
}

func StatusFor(d Delta) Status {
	if d.EstimatedOwners > 1000 || d.SalesDelta > 100 || d.PeakCCU > 20 {
		return StatusActive
	}
	return StatusInactive
}
