package httpapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	sonic "github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/playoff-pool/internal/domain/playoff"
	"github.com/riskibarqy/playoff-pool/internal/platform/logging"
	"github.com/riskibarqy/playoff-pool/internal/usecase"
)

const maxJSONBodyBytes = 1 << 20

type Handler struct {
	playoffService   *usecase.PlayoffService
	playerService    *usecase.PlayerService
	rosterService    *usecase.RosterService
	standingsService *usecase.StandingsService
	scoringService   *usecase.ScoringRulesService
	statSyncService  *usecase.StatSyncService
	userService      *usecase.UserService
	jobService       *usecase.JobService
	logger           *logging.Logger
	validator        *validator.Validate
}

func NewHandler(
	playoffService *usecase.PlayoffService,
	playerService *usecase.PlayerService,
	rosterService *usecase.RosterService,
	standingsService *usecase.StandingsService,
	scoringService *usecase.ScoringRulesService,
	statSyncService *usecase.StatSyncService,
	userService *usecase.UserService,
	jobService *usecase.JobService,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		playoffService:   playoffService,
		playerService:    playerService,
		rosterService:    rosterService,
		standingsService: standingsService,
		scoringService:   scoringService,
		statSyncService:  statSyncService,
		userService:      userService,
		jobService:       jobService,
		logger:           logger,
		validator:        validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

// decodeJSON reads a JSON body into dst. An empty body is accepted only when
// allowEmpty is set.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any, allowEmpty bool) error {
	if r.Body == nil || r.Body == http.NoBody || r.ContentLength == 0 {
		if allowEmpty {
			return nil
		}
		return fmt.Errorf("%w: request body is required", usecase.ErrInvalidInput)
	}

	decoder := sonic.ConfigDefault.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		if allowEmpty && errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}
	return nil
}

func pathWeek(r *http.Request) (int, error) {
	return parseWeek(r.PathValue("week"))
}

// queryWeek returns 0 when the week query parameter is absent.
func queryWeek(r *http.Request) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("week"))
	if raw == "" {
		return 0, nil
	}
	return parseWeek(raw)
}

// parseWeek accepts a round number or a round name such as "divisional".
func parseWeek(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	week, err := strconv.Atoi(raw)
	if err != nil {
		week, err = playoff.WeekNumber(raw)
		if err != nil {
			return 0, fmt.Errorf("%w: unknown week %q", usecase.ErrInvalidInput, raw)
		}
		return week, nil
	}
	if _, err := playoff.WeekName(week); err != nil {
		return 0, fmt.Errorf("%w: unknown week %d", usecase.ErrInvalidInput, week)
	}
	return week, nil
}

func errInvalidLimit(raw string) error {
	return fmt.Errorf("%w: limit must be a positive integer, got %q", usecase.ErrInvalidInput, raw)
}

func errWeekMismatch(body, path int) error {
	return fmt.Errorf("%w: payload week %d does not match path week %d", usecase.ErrInvalidInput, body, path)
}
