package httpapi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/riskibarqy/playoff-pool/internal/usecase"
)

type setWeekPlayoffRequest struct {
	Teams    []string `json:"teams" validate:"omitempty,dive,required,max=4"`
	Deadline *string  `json:"deadline"`
}

type setCurrentWeekRequest struct {
	Week int `json:"week" validate:"min=0,max=4"`
}

type weeksDTO struct {
	CurrentWeek int       `json:"current_week"`
	Weeks       []weekDTO `json:"weeks"`
}

func (h *Handler) ListWeeks(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListWeeks")
	defer span.End()

	weeks, err := h.playoffService.ListWeeks(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "list weeks failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	out := weeksDTO{Weeks: make([]weekDTO, 0, len(weeks))}
	for _, week := range weeks {
		if week.Current {
			out.CurrentWeek = week.Number
		}
		out.Weeks = append(out.Weeks, weekToDTO(week))
	}
	writeSuccess(ctx, w, http.StatusOK, out)
}

func (h *Handler) SetWeekPlayoff(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SetWeekPlayoff")
	defer span.End()

	week, err := pathWeek(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	var req setWeekPlayoffRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	var deadline *time.Time
	if req.Deadline != nil && *req.Deadline != "" {
		parsed, err := time.Parse(time.RFC3339, *req.Deadline)
		if err != nil {
			writeError(ctx, w, fmt.Errorf("%w: deadline must be RFC3339: %v", usecase.ErrInvalidInput, err))
			return
		}
		deadline = &parsed
	}

	cfg, err := h.playoffService.SetWeekConfig(ctx, usecase.SetWeekConfigInput{
		Week:     week,
		Teams:    req.Teams,
		Deadline: deadline,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "set week playoff config failed", "week", week, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, weekDTO{
		Number:   week,
		Name:     cfg.WeekName,
		Teams:    cfg.Teams,
		Deadline: formatTimePtr(cfg.Deadline),
	})
}

func (h *Handler) SetCurrentWeek(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SetCurrentWeek")
	defer span.End()

	var req setCurrentWeekRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.playoffService.SetCurrentWeekOverride(ctx, req.Week); err != nil {
		h.logger.WarnContext(ctx, "set current week failed", "week", req.Week, "error", err)
		writeError(ctx, w, err)
		return
	}

	current, err := h.playoffService.CurrentWeek(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, map[string]int{"current_week": current})
}
