package httpapi

import "net/http"

type guard func(next http.HandlerFunc) http.Handler

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerPublicRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/weeks", handler.ListWeeks)
	mux.HandleFunc("GET /v1/players", handler.ListPlayers)
	mux.HandleFunc("GET /v1/players/{playerID}/breakdown", handler.GetPlayerBreakdown)
	mux.HandleFunc("GET /v1/standings", handler.ListWeekStandings)
	mux.HandleFunc("GET /v1/standings/cumulative", handler.ListCumulativeStandings)
	mux.HandleFunc("GET /v1/scoring/rules", handler.GetScoringRules)
}

func registerUserRoutes(mux *http.ServeMux, handler *Handler, auth guard) {
	mux.Handle("GET /v1/rosters/{week}", auth(handler.GetRoster))
	mux.Handle("PUT /v1/rosters/{week}/slots/{slot}", auth(handler.SetRosterSlot))
	mux.Handle("POST /v1/rosters/{week}/lock", auth(handler.LockRoster))
	mux.Handle("GET /v1/rosters/{week}/eligible/{slot}", auth(handler.ListEligiblePlayers))
	mux.Handle("GET /v1/used-players/me", auth(handler.ListMyUsedPlayers))
}

func registerAdminRoutes(mux *http.ServeMux, handler *Handler, admin guard) {
	mux.Handle("PUT /v1/admin/scoring/rules", admin(handler.UpdateScoringRules))
	mux.Handle("POST /v1/admin/scoring/rules/reset", admin(handler.ResetScoringRules))

	mux.Handle("PUT /v1/admin/weeks/{week}/playoff", admin(handler.SetWeekPlayoff))
	mux.Handle("PUT /v1/admin/current-week", admin(handler.SetCurrentWeek))
	mux.Handle("POST /v1/admin/weeks/{week}/lock", admin(handler.BulkLockWeek))

	mux.Handle("POST /v1/admin/used-players/repair", admin(handler.RepairUsedPlayers))
	mux.Handle("DELETE /v1/admin/used-players/{userID}", admin(handler.ResetUsedPlayers))

	mux.Handle("POST /v1/admin/weeks/{week}/stats/sync", admin(handler.SyncWeekStats))
	mux.Handle("PUT /v1/admin/weeks/{week}/stats/{playerID}", admin(handler.UpsertManualStats))
	mux.Handle("POST /v1/admin/weeks/{week}/stats/map", admin(handler.MapUnmatchedStats))
	mux.Handle("GET /v1/admin/weeks/{week}/stats/unmatched", admin(handler.ListUnmatchedStats))

	mux.Handle("POST /v1/admin/players/import", admin(handler.ImportPlayers))
	mux.Handle("POST /v1/admin/players/sync", admin(handler.SyncPlayerRosters))
	mux.Handle("PATCH /v1/admin/players/{playerID}", admin(handler.UpdatePlayer))
	mux.Handle("DELETE /v1/admin/players/{playerID}", admin(handler.DeletePlayer))

	mux.Handle("GET /v1/admin/users", admin(handler.ListUsers))
	mux.Handle("GET /v1/admin/jobs", admin(handler.ListJobDispatches))
}

func registerInternalJobRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("POST /v1/internal/jobs/weeks/{week}/lock", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunWeekLockJob)))
	mux.Handle("POST /v1/internal/jobs/weeks/{week}/stats/sync", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunWeekSyncJob)))
}
