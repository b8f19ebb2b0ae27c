package httpapi

import (
	"net/http"
	"strings"

	"github.com/riskibarqy/playoff-pool/internal/usecase"
)

type mapUnmatchedRequest struct {
	ExternalKey string `json:"external_key" validate:"required"`
	PlayerID    string `json:"player_id" validate:"required"`
}

func (h *Handler) SyncWeekStats(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SyncWeekStats")
	defer span.End()

	week, err := pathWeek(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	report, err := h.statSyncService.SyncWeek(ctx, week)
	if err != nil {
		h.logger.WarnContext(ctx, "sync week stats failed", "week", week, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, statSyncReportToDTO(report))
}

// UpsertManualStats stores an operator-entered stat line. It replaces the
// synced line of the same player and week.
func (h *Handler) UpsertManualStats(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UpsertManualStats")
	defer span.End()

	week, err := pathWeek(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	playerID := strings.TrimSpace(r.PathValue("playerID"))

	var req statLineDTO
	if err := decodeJSON(w, r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}

	line, err := h.statSyncService.UpsertManual(ctx, usecase.ManualStatInput{
		Week:     week,
		PlayerID: playerID,
		Line:     req.toDomain(),
	})
	if err != nil {
		h.logger.WarnContext(ctx, "upsert manual stats failed", "week", week, "player_id", playerID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, statLineToDTO(line))
}

func (h *Handler) MapUnmatchedStats(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.MapUnmatchedStats")
	defer span.End()

	week, err := pathWeek(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	var req mapUnmatchedRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	line, err := h.statSyncService.MapUnmatched(ctx, week, req.ExternalKey, req.PlayerID)
	if err != nil {
		h.logger.WarnContext(ctx, "map unmatched stats failed",
			"week", week,
			"external_key", req.ExternalKey,
			"player_id", req.PlayerID,
			"error", err,
		)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, statLineToDTO(line))
}

func (h *Handler) ListUnmatchedStats(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListUnmatchedStats")
	defer span.End()

	week, err := pathWeek(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	items, err := h.statSyncService.ListUnmatched(ctx, week)
	if err != nil {
		h.logger.WarnContext(ctx, "list unmatched stats failed", "week", week, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, unmatchedToDTO(items))
}
