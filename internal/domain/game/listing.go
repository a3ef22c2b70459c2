package game

import (
	"fmt"
	"strings"
)

type SortField string

const (
	SortByID    SortField = "id"
	SortByName  SortField = "name"
	SortByDate  SortField = "date"
	SortByScore SortField = "score"
)

func ParseSortField(raw string) (SortField, error) {
	switch f := SortField(strings.ToLower(strings.TrimSpace(raw))); f {
	case "":
		return SortByDate, nil
	case SortByID, SortByName, SortByDate, SortByScore:
		return f, nil
	default:
		return "", fmt.Errorf("unknown sort field %q", raw)
	}
}

type SortOrder string

const (
	OrderAsc  SortOrder = "asc"
	OrderDesc SortOrder = "desc"
)

func ParseSortOrder(raw string) (SortOrder, error) {
	switch o := SortOrder(strings.ToLower(strings.TrimSpace(raw))); o {
	case "":
		return OrderAsc, nil
	case OrderAsc, OrderDesc:
		return o, nil
	default:
		return "", fmt.Errorf("unknown sort order %q", raw)
	}
}

// ListQuery pages through the visible catalog of one release year.
type ListQuery struct {
	Year        int
	Search      string
	ReleaseFrom string
	SortBy      SortField
	Order       SortOrder
	Limit       int
	Offset      int
}

// YearBounds returns the first day of the year and of the year after.
func (q ListQuery) YearBounds() (from, until string) {
	return fmt.Sprintf("%04d-01-01", q.Year), fmt.Sprintf("%04d-01-01", q.Year+1)
}

// ListEntry is a catalog row with its running score. Score is nil for games
// that were never scored; such rows sort last in either direction.
type ListEntry struct {
	Game
	Score *float64
}

type Page struct {
	Games []ListEntry
	Total int
}
