package httpapi

import (
	"net/http"
	"strconv"
)

func (h *Handler) ListWeekStandings(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListWeekStandings")
	defer span.End()

	week, err := queryWeek(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	entries, err := h.standingsService.WeekStandings(ctx, week)
	if err != nil {
		h.logger.WarnContext(ctx, "week standings failed", "week", week, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, standingsToDTO(entries, includePlayers(r)))
}

func (h *Handler) ListCumulativeStandings(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListCumulativeStandings")
	defer span.End()

	week, err := queryWeek(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	entries, err := h.standingsService.Cumulative(ctx, week)
	if err != nil {
		h.logger.WarnContext(ctx, "cumulative standings failed", "through_week", week, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, standingsToDTO(entries, includePlayers(r)))
}

// includePlayers reads the players flag. Per-player rows default to on.
func includePlayers(r *http.Request) bool {
	raw := r.URL.Query().Get("players")
	if raw == "" {
		return true
	}
	v, err := strconv.ParseBool(raw)
	return err != nil || v
}
