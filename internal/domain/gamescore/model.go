package gamescore

import (
	"slices"
	"time"
)

type Status string

const (
	StatusActive   Status = "Active"
	StatusInactive Status = "Inactive"
)

// Metrics is the mutable running state of one game. Score only grows.
type Metrics struct {
	GameID          string
	EstimatedOwners int64
	CCU             int64
	ReviewsTotal    int64
	ReviewsPositive int64
	Status          Status
	Score           float64
	Milestones      []string
	BreakoutAwarded bool
	UpdatedAt       time.Time
}

func (m Metrics) HasMilestone(id string) bool {
	return slices.Contains(m.Milestones, id)
}

// HistoryEntry is the immutable record of one scoring day.
type HistoryEntry struct {
	GameID           string  `json:"gameId"`
	Date             string  `json:"date"`
	EstimatedOwners  int64   `json:"estimatedOwners"`
	SalesDelta       int64   `json:"salesDelta"`
	CCU              int64   `json:"ccu"`
	ReviewsTotal     int64   `json:"reviewsTotal"`
	ReviewsDelta     int64   `json:"reviewsDelta"`
	PositiveRatio    float64 `json:"positiveRatio"`
	Points           float64 `json:"points"`
	BasePoints       float64 `json:"basePoints"`
	MilestoneBonus   float64 `json:"milestoneBonus"`
	BreakoutBonus    float64 `json:"breakoutBonus"`
	DaysSinceRelease int     `json:"daysSinceRelease"`
}

// CCUSample is the off-peak concurrent-user reading taken earlier in a day.
type CCUSample struct {
	GameID string
	Date   string
	CCU    int64
}

// Update is everything one scoring run writes for one game.
type Update struct {
	Metrics       Metrics
	Entry         HistoryEntry
	NewMilestones []string
	Breakout      bool
}
