package httpapi

import "net/http"

func (h *Handler) GetScoringRules(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetScoringRules")
	defer span.End()

	rules, err := h.scoringService.Get(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "get scoring rules failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, rulesToDTO(rules))
}

func (h *Handler) UpdateScoringRules(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UpdateScoringRules")
	defer span.End()

	var req scoringRulesDTO
	if err := decodeJSON(w, r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	rules, err := h.scoringService.Update(ctx, req.toDomain())
	if err != nil {
		h.logger.WarnContext(ctx, "update scoring rules failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, rulesToDTO(rules))
}

func (h *Handler) ResetScoringRules(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ResetScoringRules")
	defer span.End()

	rules, err := h.scoringService.Reset(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "reset scoring rules failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, rulesToDTO(rules))
}
