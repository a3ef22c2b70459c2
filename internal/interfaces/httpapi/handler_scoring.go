package httpapi

import (
	"net/http"

	"github.com/riskibarqy/release-league/internal/usecase"
)

func (h *Handler) GetScoreHistory(w http.ResponseWriter, r *http.Request) {
	ctx, span := handlerSpan(r, "GetScoreHistory")
	defer span.End()

	leagueID := r.PathValue("leagueID")
	history, err := h.teamScoreService.GetScoreHistory(ctx, leagueID)
	if err != nil {
		h.logger.WarnContext(ctx, "get score history failed", "league_id", leagueID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, scoreHistoryToDTO(leagueID, history))
}

func (h *Handler) GetSeasonSnapshot(w http.ResponseWriter, r *http.Request) {
	ctx, span := handlerSpan(r, "GetSeasonSnapshot")
	defer span.End()

	leagueID := r.PathValue("leagueID")
	seasonID := r.PathValue("season")
	snapshot, err := h.teamScoreService.GetSeasonSnapshot(ctx, leagueID, seasonID)
	if err != nil {
		h.logger.WarnContext(ctx, "get season snapshot failed", "league_id", leagueID, "season", seasonID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, snapshot)
}

func (h *Handler) ListDraftableGames(w http.ResponseWriter, r *http.Request) {
	ctx, span := handlerSpan(r, "ListDraftableGames")
	defer span.End()

	query := r.URL.Query()
	limit, err := nonNegativeQueryInt(query, "limit")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	games, err := h.gameService.ListDraftable(ctx, usecase.ListDraftableInput{
		LeagueID:    query.Get("league_id"),
		Phase:       query.Get("phase"),
		Search:      query.Get("q"),
		Genre:       query.Get("genre"),
		ReleaseFrom: query.Get("release_from"),
		ReleaseTo:   query.Get("release_to"),
		Limit:       limit,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "list draftable games failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]gameDTO, 0, len(games))
	for _, item := range games {
		items = append(items, gameToDTO(item))
	}
	writeSuccess(ctx, w, http.StatusOK, items)
}
