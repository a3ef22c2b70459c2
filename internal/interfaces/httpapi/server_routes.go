package httpapi

import "net/http"

type route struct {
	pattern string
	handle  http.HandlerFunc
	guard   middleware
}

func mountRoutes(mux *http.ServeMux, h *Handler, user, job middleware) {
	routes := []route{
		{"GET /healthz", h.Healthz, nil},

		{"GET /v1/games", h.ListGames, nil},
		{"GET /v1/games/years", h.ListGameYears, nil},
		{"GET /v1/games/draftable", h.ListDraftableGames, nil},
		{"GET /v1/leagues/{leagueID}/teams", h.ListTeams, nil},
		{"GET /v1/leagues/{leagueID}/scores/history", h.GetScoreHistory, nil},
		{"GET /v1/leagues/{leagueID}/seasons/{season}/snapshot", h.GetSeasonSnapshot, nil},
		{"GET /v1/leagues/{leagueID}/drafts/{draftID}", h.GetDraft, nil},

		{"POST /v1/leagues", h.CreateLeague, user},
		{"POST /v1/leagues/join", h.JoinLeague, user},
		{"GET /v1/leagues/me", h.ListMyLeagues, user},
		{"GET /v1/leagues/{leagueID}", h.GetLeague, user},
		{"DELETE /v1/leagues/{leagueID}", h.DeleteLeague, user},
		{"PUT /v1/leagues/{leagueID}/season", h.UpdateLeagueSeason, user},
		{"PUT /v1/leagues/{leagueID}/teams/me", h.UpdateMyTeam, user},
		{"POST /v1/leagues/{leagueID}/phase/sync", h.SyncPhase, user},

		{"GET /v1/me/bookmarks", h.ListMyBookmarks, user},
		{"PUT /v1/me/bookmarks/{gameID}", h.AddBookmark, user},
		{"DELETE /v1/me/bookmarks/{gameID}", h.RemoveBookmark, user},

		{"POST /v1/leagues/{leagueID}/drafts", h.CreateDraft, user},
		{"PUT /v1/leagues/{leagueID}/drafts/{draftID}/order", h.SetDraftOrder, user},
		{"POST /v1/leagues/{leagueID}/drafts/{draftID}/start", h.StartDraft, user},
		{"POST /v1/leagues/{leagueID}/drafts/{draftID}/picks", h.SubmitPick, user},
		{"POST /v1/leagues/{leagueID}/drafts/{draftID}/skip", h.SkipPick, user},
		{"PUT /v1/leagues/{leagueID}/drafts/{draftID}/presence", h.JoinDraftRoom, user},
		{"DELETE /v1/leagues/{leagueID}/drafts/{draftID}/presence", h.LeaveDraftRoom, user},

		{"POST /v1/internal/jobs/scoring", h.RunScoringJob, job},
		{"POST /v1/internal/jobs/bootstrap", h.RunBootstrapJob, job},
	}

	for _, rt := range routes {
		var handler http.Handler = rt.handle
		if rt.guard != nil {
			handler = rt.guard(handler)
		}
		mux.Handle(rt.pattern, handler)
	}
}
