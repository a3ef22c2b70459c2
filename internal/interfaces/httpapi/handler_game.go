package httpapi

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/riskibarqy/release-league/internal/usecase"
)

func (h *Handler) ListGames(w http.ResponseWriter, r *http.Request) {
	ctx, span := handlerSpan(r, "ListGames")
	defer span.End()

	query := r.URL.Query()
	limit, err := nonNegativeQueryInt(query, "limit")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	offset, err := nonNegativeQueryInt(query, "offset")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	page, err := h.gameService.ListGames(ctx, usecase.ListGamesInput{
		Year:        query.Get("year"),
		Search:      query.Get("q"),
		SortBy:      query.Get("sort"),
		Order:       query.Get("order"),
		ReleaseFrom: query.Get("release_from"),
		Limit:       limit,
		Offset:      offset,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "list games failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, gamePageToDTO(page))
}

func (h *Handler) ListGameYears(w http.ResponseWriter, r *http.Request) {
	ctx, span := handlerSpan(r, "ListGameYears")
	defer span.End()

	years, err := h.gameService.ListGameYears(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "list game years failed", "error", err)
		writeError(ctx, w, err)
		return
	}
	if years == nil {
		years = []int{}
	}

	writeSuccess(ctx, w, http.StatusOK, years)
}

func (h *Handler) ListMyBookmarks(w http.ResponseWriter, r *http.Request) {
	ctx, span := handlerSpan(r, "ListMyBookmarks")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	ids, err := h.gameService.ListBookmarks(ctx, principal.UserID)
	if err != nil {
		h.logger.WarnContext(ctx, "list bookmarks failed", "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, bookmarksDTO{GameIDs: nonNilStrings(ids)})
}

func (h *Handler) AddBookmark(w http.ResponseWriter, r *http.Request) {
	ctx, span := handlerSpan(r, "AddBookmark")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	gameID := r.PathValue("gameID")
	if err := h.gameService.AddBookmark(ctx, principal.UserID, gameID); err != nil {
		h.logger.WarnContext(ctx, "add bookmark failed", "user_id", principal.UserID, "game_id", gameID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]any{"gameId": gameID, "bookmarked": true})
}

func (h *Handler) RemoveBookmark(w http.ResponseWriter, r *http.Request) {
	ctx, span := handlerSpan(r, "RemoveBookmark")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	gameID := r.PathValue("gameID")
	if err := h.gameService.RemoveBookmark(ctx, principal.UserID, gameID); err != nil {
		h.logger.WarnContext(ctx, "remove bookmark failed", "user_id", principal.UserID, "game_id", gameID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]any{"gameId": gameID, "bookmarked": false})
}

// nonNegativeQueryInt returns zero for a missing parameter.
func nonNegativeQueryInt(query url.Values, name string) (int, error) {
	raw := strings.TrimSpace(query.Get(name))
	if raw == "" {
		return 0, nil
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed < 0 {
		return 0, fmt.Errorf("%w: %s must be a non-negative integer", usecase.ErrInvalidInput, name)
	}
	return parsed, nil
}
