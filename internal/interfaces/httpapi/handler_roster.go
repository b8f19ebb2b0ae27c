package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/riskibarqy/playoff-pool/internal/domain/player"
	"github.com/riskibarqy/playoff-pool/internal/usecase"
)

type setRosterSlotRequest struct {
	PlayerID string `json:"player_id" validate:"max=128"`
}

type repairUsedPlayersRequest struct {
	UserID string `json:"user_id" validate:"max=128"`
}

func (h *Handler) GetRoster(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetRoster")
	defer span.End()

	principal, err := principalFromRequest(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	week, err := pathWeek(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	view, err := h.rosterService.Get(ctx, principal.UserID, week)
	if err != nil {
		h.logger.WarnContext(ctx, "get roster failed", "user_id", principal.UserID, "week", week, "error", err)
		writeError(ctx, w, err)
		return
	}

	h.writeRoster(ctx, w, http.StatusOK, view)
}

// SetRosterSlot fills a slot. An empty player_id clears it.
func (h *Handler) SetRosterSlot(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SetRosterSlot")
	defer span.End()

	principal, err := principalFromRequest(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	week, err := pathWeek(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	var req setRosterSlotRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	slot := r.PathValue("slot")
	view, err := h.rosterService.SetSlot(ctx, usecase.SetSlotInput{
		UserID:   principal.UserID,
		Week:     week,
		Slot:     slot,
		PlayerID: req.PlayerID,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "set roster slot failed",
			"user_id", principal.UserID,
			"week", week,
			"slot", slot,
			"player_id", req.PlayerID,
			"error", err,
		)
		writeError(ctx, w, err)
		return
	}

	h.writeRoster(ctx, w, http.StatusOK, view)
}

// LockRoster answers 202 with a warning when the roster locked but the used
// players ledger could not be updated.
func (h *Handler) LockRoster(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.LockRoster")
	defer span.End()

	principal, err := principalFromRequest(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	week, err := pathWeek(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	view, err := h.rosterService.Lock(ctx, principal.UserID, week)
	if errors.Is(err, usecase.ErrUsedPlayersLag) {
		h.logger.ErrorContext(ctx, "roster locked with used players lag", "user_id", principal.UserID, "week", week, "error", err)
		players := h.lookupPlayers(ctx, view.Roster.PlayerIDs())
		writeSuccessWithWarning(ctx, w, http.StatusAccepted, rosterToDTO(view, players), err)
		return
	}
	if err != nil {
		h.logger.WarnContext(ctx, "lock roster failed", "user_id", principal.UserID, "week", week, "error", err)
		writeError(ctx, w, err)
		return
	}

	h.writeRoster(ctx, w, http.StatusOK, view)
}

func (h *Handler) ListEligiblePlayers(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListEligiblePlayers")
	defer span.End()

	principal, err := principalFromRequest(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	week, err := pathWeek(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	slot := r.PathValue("slot")
	players, err := h.rosterService.EligiblePlayers(ctx, principal.UserID, week, slot)
	if err != nil {
		h.logger.WarnContext(ctx, "list eligible players failed", "user_id", principal.UserID, "week", week, "slot", slot, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, playersToDTO(players))
}

func (h *Handler) ListMyUsedPlayers(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListMyUsedPlayers")
	defer span.End()

	principal, err := principalFromRequest(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	ids, err := h.rosterService.UsedPlayers(ctx, principal.UserID)
	if err != nil {
		h.logger.WarnContext(ctx, "list used players failed", "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	players := h.lookupPlayers(ctx, ids)
	items := make([]playerDTO, 0, len(ids))
	for _, id := range ids {
		if p, ok := players[id]; ok {
			items = append(items, playerToDTO(p))
			continue
		}
		items = append(items, playerDTO{ID: id})
	}
	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) BulkLockWeek(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.BulkLockWeek")
	defer span.End()

	week, err := pathWeek(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.rosterService.BulkLock(ctx, week)
	if err != nil {
		h.logger.WarnContext(ctx, "bulk lock failed", "week", week, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}

func (h *Handler) RepairUsedPlayers(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RepairUsedPlayers")
	defer span.End()

	var req repairUsedPlayersRequest
	if err := decodeJSON(w, r, &req, true); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.rosterService.RepairUsedPlayers(ctx, strings.TrimSpace(req.UserID))
	if err != nil {
		h.logger.WarnContext(ctx, "repair used players failed", "user_id", req.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}

func (h *Handler) ResetUsedPlayers(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ResetUsedPlayers")
	defer span.End()

	userID := strings.TrimSpace(r.PathValue("userID"))
	if err := h.rosterService.ResetUsedPlayers(ctx, userID); err != nil {
		h.logger.WarnContext(ctx, "reset used players failed", "user_id", userID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"user_id": userID, "status": "reset"})
}

func (h *Handler) writeRoster(ctx context.Context, w http.ResponseWriter, status int, view usecase.RosterView) {
	players := h.lookupPlayers(ctx, view.Roster.PlayerIDs())
	writeSuccess(ctx, w, status, rosterToDTO(view, players))
}

// lookupPlayers decorates responses with player details. A failed lookup
// leaves bare ids.
func (h *Handler) lookupPlayers(ctx context.Context, ids []string) map[string]player.Player {
	players, err := h.playerService.Lookup(ctx, ids)
	if err != nil {
		h.logger.WarnContext(ctx, "player lookup failed", "players", len(ids), "error", err)
		return map[string]player.Player{}
	}
	return players
}
