package httpapi

import (
	"time"

	"github.com/riskibarqy/release-league/internal/domain/draft"
	"github.com/riskibarqy/release-league/internal/domain/game"
	"github.com/riskibarqy/release-league/internal/domain/league"
	"github.com/riskibarqy/release-league/internal/domain/season"
	"github.com/riskibarqy/release-league/internal/domain/team"
)

type createLeagueRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Code     string `json:"code" validate:"required,min=4,max=16"`
	TeamName string `json:"team_name" validate:"omitempty,max=100"`
}

type joinLeagueRequest struct {
	Code     string `json:"code" validate:"required,max=16"`
	TeamName string `json:"team_name" validate:"omitempty,max=100"`
}

type updateTeamNameRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

type updateSeasonRequest struct {
	Season string `json:"season" validate:"required,len=4,numeric"`
}

type createDraftRequest struct {
	Phase  string   `json:"phase" validate:"omitempty,oneof=winter summer fall"`
	Season string   `json:"season" validate:"omitempty,len=4,numeric"`
	Order  []string `json:"order" validate:"omitempty,dive,required"`
}

type setDraftOrderRequest struct {
	Order []string `json:"order" validate:"required,min=1,dive,required"`
}

type submitPickRequest struct {
	GameID   string `json:"game_id" validate:"required"`
	PickType string `json:"pick_type" validate:"required"`
}

type scoringJobRequest struct {
	Mode        string `json:"mode" validate:"omitempty,oneof=full ccu_snapshot"`
	DryRun      bool   `json:"dry_run"`
	Concurrency int    `json:"concurrency" validate:"omitempty,min=1,max=64"`
	DelayMS     int    `json:"delay_ms" validate:"omitempty,min=0,max=60000"`
	Date        string `json:"date" validate:"omitempty,datetime=2006-01-02"`
	DispatchID  string `json:"dispatch_id" validate:"omitempty,max=128"`
	Chain       bool   `json:"chain"`
}

type leagueDTO struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Code           string    `json:"code,omitempty"`
	CommissionerID string    `json:"commissionerId"`
	Season         string    `json:"season"`
	Status         string    `json:"status"`
	CurrentPhase   string    `json:"currentPhase"`
	Members        []string  `json:"members"`
	DelistedGames  []string  `json:"delistedGames"`
	CreatedAt      time.Time `json:"createdAt"`
}

type teamDTO struct {
	UserID         string     `json:"userId"`
	Name           string     `json:"name"`
	Picks          team.Picks `json:"picks"`
	Score          float64    `json:"score"`
	BombAdjustment float64    `json:"bombAdjustment"`
}

type draftDTO struct {
	ID             string             `json:"id"`
	LeagueID       string             `json:"leagueId"`
	Phase          string             `json:"phase"`
	Season         string             `json:"season"`
	Status         string             `json:"status"`
	Order          []string           `json:"order"`
	SeasonalPicks  int                `json:"seasonalPicks"`
	CurrentPick    *draft.CurrentPick `json:"currentPick"`
	Picks          []draft.Pick       `json:"picks"`
	Skips          []draft.Skip       `json:"skips"`
	PresentUserIDs []string           `json:"presentUserIds"`
}

type gameDTO struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	CoverURL    string   `json:"coverUrl,omitempty"`
	ReleaseDate string   `json:"releaseDate,omitempty"`
	SteamAppID  string   `json:"steamAppId,omitempty"`
	Genres      []string `json:"genres"`
}

type gameListEntryDTO struct {
	gameDTO
	Score *float64 `json:"score"`
}

type gamePageDTO struct {
	Games []gameListEntryDTO `json:"games"`
	Total int                `json:"total"`
}

type bookmarksDTO struct {
	GameIDs []string `json:"gameIds"`
}

type scoreHistoryDTO struct {
	Dates  []string           `json:"dates"`
	Series []season.Series    `json:"series"`
	Final  map[string]float64 `json:"final"`
	Ranks  map[string]int     `json:"ranks"`
}

// leagueToDTO hides the join code from non-members.
func leagueToDTO(v league.League, viewerID string) leagueDTO {
	out := leagueDTO{
		ID:             v.ID,
		Name:           v.Name,
		CommissionerID: v.CommissionerID,
		Season:         v.Season,
		Status:         string(v.Status),
		CurrentPhase:   string(v.CurrentPhase),
		Members:        nonNilStrings(v.Members),
		DelistedGames:  nonNilStrings(v.DelistedGames),
		CreatedAt:      v.CreatedAt,
	}
	if v.IsMember(viewerID) {
		out.Code = v.Code
	}
	return out
}

func teamToDTO(v team.Team) teamDTO {
	return teamDTO{
		UserID:         v.UserID,
		Name:           v.Name,
		Picks:          v.Picks,
		Score:          v.Score,
		BombAdjustment: v.BombAdjustment,
	}
}

func draftToDTO(v draft.Draft) draftDTO {
	out := draftDTO{
		ID:             v.ID(),
		LeagueID:       v.LeagueID,
		Phase:          string(v.Phase),
		Season:         v.Season,
		Status:         string(v.Status),
		Order:          nonNilStrings(v.Order),
		SeasonalPicks:  v.SeasonalPicks(),
		CurrentPick:    v.CurrentPick,
		Picks:          v.Picks,
		Skips:          v.Skips,
		PresentUserIDs: nonNilStrings(v.PresentUserIDs),
	}
	if out.Picks == nil {
		out.Picks = []draft.Pick{}
	}
	if out.Skips == nil {
		out.Skips = []draft.Skip{}
	}
	return out
}

func gameToDTO(v game.Game) gameDTO {
	return gameDTO{
		ID:          v.ID,
		Name:        v.Name,
		CoverURL:    v.CoverURL,
		ReleaseDate: v.ReleaseDate,
		SteamAppID:  v.SteamAppID,
		Genres:      nonNilStrings(v.Genres),
	}
}

func gamePageToDTO(v game.Page) gamePageDTO {
	out := gamePageDTO{Games: make([]gameListEntryDTO, 0, len(v.Games)), Total: v.Total}
	for _, entry := range v.Games {
		out.Games = append(out.Games, gameListEntryDTO{gameDTO: gameToDTO(entry.Game), Score: entry.Score})
	}
	return out
}

// scoreHistoryToDTO orders series the same way a season snapshot does.
func scoreHistoryToDTO(leagueID string, v season.ScoreHistory) scoreHistoryDTO {
	teamIDs := make([]string, 0, len(v.Scores))
	for teamID := range v.Scores {
		teamIDs = append(teamIDs, teamID)
	}
	ranked := season.BuildSnapshot(leagueID, "", teamIDs, v, time.Time{})
	return scoreHistoryDTO{
		Dates:  ranked.GraphData.Dates,
		Series: ranked.GraphData.Series,
		Final:  ranked.FinalScores,
		Ranks:  ranked.FinalRanks,
	}
}

func nonNilStrings(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}
