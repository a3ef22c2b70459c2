package league

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

type Status string

const (
	StatusDraft     Status = "draft"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
)

// League is a private fantasy league that drafts one season of releases.
type League struct {
	ID             string
	Name           string
	Code           string
	CommissionerID string
	Season         string
	Status         Status
	CurrentPhase   Phase
	Members        []string
	DelistedGames  []string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (l League) Validate() error {
	if l.ID == "" {
		return fmt.Errorf("league id is required")
	}
	if strings.TrimSpace(l.Name) == "" {
		return fmt.Errorf("league name is required")
	}
	if strings.TrimSpace(l.Code) == "" {
		return fmt.Errorf("league code is required")
	}
	if l.CommissionerID == "" {
		return fmt.Errorf("league commissioner is required")
	}
	if _, err := ParseSeason(l.Season); err != nil {
		return err
	}
	if !l.CurrentPhase.Valid() {
		return fmt.Errorf("invalid league phase: %s", l.CurrentPhase)
	}
	switch l.Status {
	case StatusDraft, StatusActive, StatusCompleted:
	default:
		return fmt.Errorf("invalid league status: %s", l.Status)
	}

	return nil
}

func (l League) IsMember(userID string) bool {
	return slices.Contains(l.Members, userID)
}

func (l League) IsDelisted(gameID string) bool {
	return slices.Contains(l.DelistedGames, gameID)
}

func (l League) State() State {
	return State{Phase: l.CurrentPhase, Status: l.Status}
}

// NormalizeCode upper-cases and trims a join code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
