package httpapi

import (
	"net/http"

	"github.com/riskibarqy/playoff-pool/internal/platform/logging"
)

// RouterConfig carries the access settings the router enforces.
type RouterConfig struct {
	CORSAllowedOrigins []string
	AdminUserIDs       []string
	InternalJobToken   string
}

func NewRouter(handler *Handler, verifier TokenVerifier, logger *logging.Logger, cfg RouterConfig) http.Handler {
	if logger == nil {
		logger = logging.Default()
	}

	mux := http.NewServeMux()
	registerSystemRoutes(mux, handler)
	registerPublicRoutes(mux, handler)

	var recorder UserRecorder
	if handler.userService != nil {
		recorder = handler.userService
	}
	auth := func(next http.HandlerFunc) http.Handler {
		return RequireAuth(verifier, TrackUser(recorder, logger, next))
	}
	admin := func(next http.HandlerFunc) http.Handler {
		return RequireAuth(verifier, TrackUser(recorder, logger, RequireAdmin(cfg.AdminUserIDs, next)))
	}
	registerUserRoutes(mux, handler, auth)
	registerAdminRoutes(mux, handler, admin)
	registerInternalJobRoutes(mux, handler, cfg.InternalJobToken)

	return RequestTracing(RequestLogging(logger, CORS(cfg.CORSAllowedOrigins, recoverPanic(logger, mux))))
}

func recoverPanic(logger *logging.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := startSpan(r.Context(), "httpapi.recoverPanic")
		defer span.End()

		defer func() {
			if rec := recover(); rec != nil {
				logger.ErrorContext(ctx, "panic recovered", "panic", rec)
				writeInternalError(ctx, w)
			}
		}()
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
