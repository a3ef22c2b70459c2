package httpapi

import (
	"net/http"

	"github.com/riskibarqy/release-league/internal/usecase"
)

func (h *Handler) CreateDraft(w http.ResponseWriter, r *http.Request) {
	ctx, span := handlerSpan(r, "CreateDraft")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req createDraftRequest
	if err := decodeJSON(r, &req, true); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	leagueID := r.PathValue("leagueID")
	item, err := h.draftService.CreateDraft(ctx, usecase.CreateDraftInput{
		LeagueID: leagueID,
		ActorID:  principal.UserID,
		Phase:    req.Phase,
		Season:   req.Season,
		Order:    req.Order,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "create draft failed", "league_id", leagueID, "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, draftToDTO(item))
}

func (h *Handler) GetDraft(w http.ResponseWriter, r *http.Request) {
	ctx, span := handlerSpan(r, "GetDraft")
	defer span.End()

	leagueID := r.PathValue("leagueID")
	draftID := r.PathValue("draftID")
	item, err := h.draftService.GetDraft(ctx, leagueID, draftID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, draftToDTO(item))
}

func (h *Handler) SetDraftOrder(w http.ResponseWriter, r *http.Request) {
	ctx, span := handlerSpan(r, "SetDraftOrder")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req setDraftOrderRequest
	if err := decodeJSON(r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	leagueID := r.PathValue("leagueID")
	draftID := r.PathValue("draftID")
	item, err := h.draftService.SetDraftOrder(ctx, leagueID, draftID, principal.UserID, req.Order)
	if err != nil {
		h.logger.WarnContext(ctx, "set draft order failed", "league_id", leagueID, "draft_id", draftID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, draftToDTO(item))
}

func (h *Handler) StartDraft(w http.ResponseWriter, r *http.Request) {
	ctx, span := handlerSpan(r, "StartDraft")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	leagueID := r.PathValue("leagueID")
	draftID := r.PathValue("draftID")
	item, err := h.draftService.StartDraft(ctx, leagueID, draftID, principal.UserID)
	if err != nil {
		h.logger.WarnContext(ctx, "start draft failed", "league_id", leagueID, "draft_id", draftID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, draftToDTO(item))
}

func (h *Handler) SubmitPick(w http.ResponseWriter, r *http.Request) {
	ctx, span := handlerSpan(r, "SubmitPick")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req submitPickRequest
	if err := decodeJSON(r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	leagueID := r.PathValue("leagueID")
	draftID := r.PathValue("draftID")
	item, err := h.draftService.SubmitPick(ctx, usecase.SubmitPickInput{
		LeagueID: leagueID,
		DraftID:  draftID,
		UserID:   principal.UserID,
		GameID:   req.GameID,
		PickType: req.PickType,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "submit pick failed",
			"league_id", leagueID,
			"draft_id", draftID,
			"user_id", principal.UserID,
			"game_id", req.GameID,
			"pick_type", req.PickType,
			"error", err,
		)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, draftToDTO(item))
}

func (h *Handler) SkipPick(w http.ResponseWriter, r *http.Request) {
	ctx, span := handlerSpan(r, "SkipPick")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	leagueID := r.PathValue("leagueID")
	draftID := r.PathValue("draftID")
	item, err := h.draftService.SkipCurrentPick(ctx, leagueID, draftID, principal.UserID)
	if err != nil {
		h.logger.WarnContext(ctx, "skip pick failed", "league_id", leagueID, "draft_id", draftID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, draftToDTO(item))
}

func (h *Handler) JoinDraftRoom(w http.ResponseWriter, r *http.Request) {
	ctx, span := handlerSpan(r, "JoinDraftRoom")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	if err := h.draftService.SetPresence(ctx, r.PathValue("leagueID"), r.PathValue("draftID"), principal.UserID); err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]bool{"present": true})
}

func (h *Handler) LeaveDraftRoom(w http.ResponseWriter, r *http.Request) {
	ctx, span := handlerSpan(r, "LeaveDraftRoom")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	if err := h.draftService.RemovePresence(ctx, r.PathValue("leagueID"), r.PathValue("draftID"), principal.UserID); err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]bool{"present": false})
}
