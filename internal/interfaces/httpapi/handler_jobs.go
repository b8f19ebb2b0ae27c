package httpapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/riskibarqy/playoff-pool/internal/usecase"
)

type internalJobRequest struct {
	Week       int    `json:"week"`
	DispatchID string `json:"dispatch_id" validate:"max=200"`
}

// RunWeekLockJob is the deadline callback. QStash redelivers on non-2xx, so
// per-roster failures stay in the result body and only whole-job errors fail.
func (h *Handler) RunWeekLockJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunWeekLockJob")
	defer span.End()

	input, err := h.decodeInternalJob(w, r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.jobService.RunWeekLock(ctx, input)
	if err != nil {
		h.logger.WarnContext(ctx, "run week lock job failed", "week", input.Week, "dispatch_id", input.DispatchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}

func (h *Handler) RunWeekSyncJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunWeekSyncJob")
	defer span.End()

	input, err := h.decodeInternalJob(w, r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	report, err := h.jobService.RunWeekSync(ctx, input)
	if err != nil {
		h.logger.WarnContext(ctx, "run week sync job failed", "week", input.Week, "dispatch_id", input.DispatchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, statSyncReportToDTO(report))
}

func (h *Handler) ListJobDispatches(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListJobDispatches")
	defer span.End()

	limit := 50
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeError(ctx, w, errInvalidLimit(raw))
			return
		}
		limit = parsed
	}

	items, err := h.jobService.ListDispatches(ctx, limit)
	if err != nil {
		h.logger.WarnContext(ctx, "list job dispatches failed", "limit", limit, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, dispatchesToDTO(items))
}

// decodeInternalJob takes the week from the path. A body week, when present,
// must agree with it.
func (h *Handler) decodeInternalJob(w http.ResponseWriter, r *http.Request) (usecase.JobRunInput, error) {
	week, err := pathWeek(r)
	if err != nil {
		return usecase.JobRunInput{}, err
	}
	var req internalJobRequest
	if err := decodeJSON(w, r, &req, true); err != nil {
		return usecase.JobRunInput{}, err
	}
	if err := h.validateRequest(r.Context(), req); err != nil {
		return usecase.JobRunInput{}, err
	}
	if req.Week != 0 && req.Week != week {
		return usecase.JobRunInput{}, errWeekMismatch(req.Week, week)
	}
	return usecase.JobRunInput{Week: week, DispatchID: strings.TrimSpace(req.DispatchID)}, nil
}
