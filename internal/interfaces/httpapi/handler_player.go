package httpapi

import (
	"net/http"
	"strings"

	"github.com/riskibarqy/playoff-pool/internal/usecase"
)

const maxCSVBodyBytes = 4 << 20

type syncPlayerRostersRequest struct {
	Teams []string `json:"teams" validate:"omitempty,dive,required"`
}

type updatePlayerRequest struct {
	Name         *string `json:"name" validate:"omitempty,min=1,max=120"`
	Team         *string `json:"team" validate:"omitempty,min=2,max=4"`
	ImageURL     *string `json:"image_url" validate:"omitempty,url"`
	Rank         *int    `json:"rank" validate:"omitempty,min=0"`
	InjuryStatus *string `json:"injury_status"`
}

func (h *Handler) ListPlayers(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListPlayers")
	defer span.End()

	query := r.URL.Query()
	filter := usecase.ListPlayersFilter{
		Position: strings.TrimSpace(query.Get("position")),
		Team:     strings.TrimSpace(query.Get("team")),
	}
	players, err := h.playerService.List(ctx, filter)
	if err != nil {
		h.logger.WarnContext(ctx, "list players failed", "position", filter.Position, "team", filter.Team, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, playersToDTO(players))
}

func (h *Handler) GetPlayerBreakdown(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetPlayerBreakdown")
	defer span.End()

	playerID := strings.TrimSpace(r.PathValue("playerID"))
	week, err := queryWeek(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	breakdown, err := h.standingsService.PlayerBreakdown(ctx, playerID, week)
	if err != nil {
		h.logger.WarnContext(ctx, "player breakdown failed", "player_id", playerID, "week", week, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, breakdownToDTO(breakdown))
}

// ImportPlayers takes a CSV body of name,position,team,rank rows. The week
// query parameter names the round whose alive teams the import extends and
// defaults to the current week.
func (h *Handler) ImportPlayers(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ImportPlayers")
	defer span.End()

	week, err := queryWeek(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	if week == 0 {
		if week, err = h.playoffService.CurrentWeek(ctx); err != nil {
			writeError(ctx, w, err)
			return
		}
	}

	report, err := h.playerService.ImportCSV(ctx, http.MaxBytesReader(w, r.Body, maxCSVBodyBytes), week)
	if err != nil {
		h.logger.WarnContext(ctx, "import players failed", "week", week, "error", err)
		writeError(ctx, w, err)
		return
	}

	h.logger.InfoContext(ctx, "players imported",
		"week", report.Week,
		"rows", report.Rows,
		"created", report.Created,
		"updated", report.Updated,
		"errors", len(report.Errors),
	)
	writeSuccess(ctx, w, http.StatusOK, report)
}

func (h *Handler) SyncPlayerRosters(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SyncPlayerRosters")
	defer span.End()

	var req syncPlayerRostersRequest
	if err := decodeJSON(w, r, &req, true); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	report, err := h.playerService.SyncRoster(ctx, req.Teams)
	if err != nil {
		h.logger.WarnContext(ctx, "sync player rosters failed", "teams", len(req.Teams), "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, report)
}

func (h *Handler) UpdatePlayer(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UpdatePlayer")
	defer span.End()

	playerID := strings.TrimSpace(r.PathValue("playerID"))
	var req updatePlayerRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.playerService.Update(ctx, playerID, usecase.UpdatePlayerInput{
		Name:         req.Name,
		Team:         req.Team,
		ImageURL:     req.ImageURL,
		Rank:         req.Rank,
		InjuryStatus: req.InjuryStatus,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "update player failed", "player_id", playerID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, playerToDTO(item))
}

func (h *Handler) DeletePlayer(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.DeletePlayer")
	defer span.End()

	playerID := strings.TrimSpace(r.PathValue("playerID"))
	if err := h.playerService.Delete(ctx, playerID); err != nil {
		h.logger.WarnContext(ctx, "delete player failed", "player_id", playerID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"player_id": playerID, "status": "deleted"})
}
