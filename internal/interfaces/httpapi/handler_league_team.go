package httpapi

import (
	"net/http"

	"github.com/riskibarqy/release-league/internal/usecase"
)

func (h *Handler) CreateLeague(w http.ResponseWriter, r *http.Request) {
	ctx, span := handlerSpan(r, "CreateLeague")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req createLeagueRequest
	if err := decodeJSON(r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.leagueService.CreateLeague(ctx, usecase.CreateLeagueInput{
		CommissionerID: principal.UserID,
		Name:           req.Name,
		Code:           req.Code,
		TeamName:       req.TeamName,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "create league failed", "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, leagueToDTO(item, principal.UserID))
}

func (h *Handler) JoinLeague(w http.ResponseWriter, r *http.Request) {
	ctx, span := handlerSpan(r, "JoinLeague")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req joinLeagueRequest
	if err := decodeJSON(r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.leagueService.JoinLeague(ctx, usecase.JoinLeagueInput{
		Code:     req.Code,
		UserID:   principal.UserID,
		TeamName: req.TeamName,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "join league failed", "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, leagueToDTO(item, principal.UserID))
}

func (h *Handler) GetLeague(w http.ResponseWriter, r *http.Request) {
	ctx, span := handlerSpan(r, "GetLeague")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	leagueID := r.PathValue("leagueID")
	item, err := h.leagueService.GetLeague(ctx, leagueID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, leagueToDTO(item, principal.UserID))
}

func (h *Handler) ListMyLeagues(w http.ResponseWriter, r *http.Request) {
	ctx, span := handlerSpan(r, "ListMyLeagues")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	leagues, err := h.leagueService.ListLeaguesForUser(ctx, principal.UserID)
	if err != nil {
		h.logger.WarnContext(ctx, "list my leagues failed", "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]leagueDTO, 0, len(leagues))
	for _, item := range leagues {
		items = append(items, leagueToDTO(item, principal.UserID))
	}
	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) ListTeams(w http.ResponseWriter, r *http.Request) {
	ctx, span := handlerSpan(r, "ListTeams")
	defer span.End()

	leagueID := r.PathValue("leagueID")
	teams, err := h.leagueService.ListTeams(ctx, leagueID)
	if err != nil {
		h.logger.WarnContext(ctx, "list teams failed", "league_id", leagueID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]teamDTO, 0, len(teams))
	for _, item := range teams {
		items = append(items, teamToDTO(item))
	}
	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) UpdateMyTeam(w http.ResponseWriter, r *http.Request) {
	ctx, span := handlerSpan(r, "UpdateMyTeam")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req updateTeamNameRequest
	if err := decodeJSON(r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	leagueID := r.PathValue("leagueID")
	if err := h.leagueService.UpdateTeamName(ctx, leagueID, principal.UserID, req.Name); err != nil {
		h.logger.WarnContext(ctx, "update team name failed", "league_id", leagueID, "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"name": req.Name})
}

func (h *Handler) SyncPhase(w http.ResponseWriter, r *http.Request) {
	ctx, span := handlerSpan(r, "SyncPhase")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	leagueID := r.PathValue("leagueID")
	item, err := h.phaseService.SyncCurrentPhase(ctx, leagueID)
	if err != nil {
		h.logger.WarnContext(ctx, "sync phase failed", "league_id", leagueID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, leagueToDTO(item, principal.UserID))
}

func (h *Handler) UpdateLeagueSeason(w http.ResponseWriter, r *http.Request) {
	ctx, span := handlerSpan(r, "UpdateLeagueSeason")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req updateSeasonRequest
	if err := decodeJSON(r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	leagueID := r.PathValue("leagueID")
	item, err := h.leagueService.UpdateSeason(ctx, usecase.UpdateSeasonInput{
		LeagueID: leagueID,
		ActorID:  principal.UserID,
		Season:   req.Season,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "update league season failed", "league_id", leagueID, "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, leagueToDTO(item, principal.UserID))
}

func (h *Handler) DeleteLeague(w http.ResponseWriter, r *http.Request) {
	ctx, span := handlerSpan(r, "DeleteLeague")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	leagueID := r.PathValue("leagueID")
	if err := h.leagueService.DeleteLeague(ctx, leagueID, principal.UserID); err != nil {
		h.logger.WarnContext(ctx, "delete league failed", "league_id", leagueID, "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]any{"id": leagueID, "deleted": true})
}
