package httpapi

import (
	"net/http"

	"github.com/riskibarqy/release-league/internal/platform/logging"
)

// NewRouter mounts every route behind the shared middleware stack. Routes
// are matched by the mux before logRequests reads r.Pattern, so nothing
// between the two may replace the request.
func NewRouter(
	handler *Handler,
	verifier TokenVerifier,
	logger *logging.Logger,
	corsAllowedOrigins []string,
	internalJobToken string,
) http.Handler {
	if logger == nil {
		logger = logging.Default()
	}

	mux := http.NewServeMux()
	mountRoutes(mux, handler, requireUser(verifier), requireJobToken(internalJobToken))

	return chain(mux,
		traceRequests(),
		assignRequestID(),
		logRequests(logger),
		allowOrigins(corsAllowedOrigins),
		recoverPanics(logger),
	)
}
