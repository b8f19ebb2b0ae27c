package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/playoff-pool/internal/domain/roster"
	"github.com/riskibarqy/playoff-pool/internal/usecase"
)

func TestWriteSuccess_GoogleEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	writeSuccess(context.Background(), rec, http.StatusOK, map[string]string{"status": "ok"})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var body map[string]any
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response body: %v", err)
	}

	if got, _ := body["apiVersion"].(string); got != "2.0" {
		t.Fatalf("expected apiVersion=2.0, got %v", body["apiVersion"])
	}
	if _, ok := body["data"]; !ok {
		t.Fatalf("expected data key in success response")
	}
	if _, ok := body["error"]; ok {
		t.Fatalf("did not expect error key in success response")
	}
}

func TestWriteError_GoogleEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(context.Background(), rec, fmt.Errorf("%w: bad payload", usecase.ErrInvalidInput))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}

	var body map[string]any
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response body: %v", err)
	}

	if got, _ := body["apiVersion"].(string); got != "2.0" {
		t.Fatalf("expected apiVersion=2.0, got %v", body["apiVersion"])
	}
	errorObj, ok := body["error"].(map[string]any)
	if !ok {
		t.Fatalf("expected error object in response")
	}
	if got, _ := errorObj["status"].(string); got != "INVALID_ARGUMENT" {
		t.Fatalf("expected error status INVALID_ARGUMENT, got %v", errorObj["status"])
	}
}

func TestMapError_DomainErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		reason string
	}{
		{name: "forbidden", err: usecase.ErrForbidden, status: http.StatusForbidden, reason: "forbidden"},
		{name: "unknown slot", err: fmt.Errorf("set slot: %w", roster.ErrUnknownSlot), status: http.StatusBadRequest, reason: "invalidRosterSlot"},
		{name: "position mismatch", err: roster.ErrPositionMismatch, status: http.StatusBadRequest, reason: "invalidRosterSlot"},
		{name: "locked", err: roster.ErrRosterLocked, status: http.StatusConflict, reason: "rosterLocked"},
		{name: "used player", err: roster.ErrPlayerUsed, status: http.StatusConflict, reason: "ineligiblePick"},
		{name: "eliminated team", err: roster.ErrTeamEliminated, status: http.StatusConflict, reason: "ineligiblePick"},
		{name: "conflict", err: usecase.ErrConflict, status: http.StatusConflict, reason: "conflict"},
		{name: "provider down", err: usecase.ErrDependencyUnavailable, status: http.StatusServiceUnavailable, reason: "dependencyUnavailable"},
		{name: "unknown", err: fmt.Errorf("boom"), status: http.StatusInternalServerError, reason: "internalError"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := mapError(context.Background(), tc.err)
			if got.HTTPStatus != tc.status || got.Reason != tc.reason {
				t.Fatalf("expected %d/%s, got %d/%s", tc.status, tc.reason, got.HTTPStatus, got.Reason)
			}
		})
	}
}

func TestWriteSuccessWithWarning_AddsWarnings(t *testing.T) {
	rec := httptest.NewRecorder()
	writeSuccessWithWarning(context.Background(), rec, http.StatusAccepted, map[string]string{"status": "locked"}, usecase.ErrUsedPlayersLag)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected status 202, got %d", rec.Code)
	}

	var body struct {
		Warnings []string `json:"warnings"`
	}
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response body: %v", err)
	}
	if len(body.Warnings) != 1 || body.Warnings[0] != usecase.ErrUsedPlayersLag.Error() {
		t.Fatalf("unexpected warnings: %v", body.Warnings)
	}
}
