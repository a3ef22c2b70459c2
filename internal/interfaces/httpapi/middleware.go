package httpapi

import (
	"context"
	"crypto/subtle"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/riskibarqy/release-league/internal/domain/user"
	"github.com/riskibarqy/release-league/internal/platform/logging"
	"github.com/riskibarqy/release-league/internal/usecase"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	requestIDHeader        = "X-Request-ID"
	internalJobTokenHeader = "X-Internal-Job-Token"
)

// TokenVerifier resolves a bearer token to the calling user.
type TokenVerifier interface {
	VerifyAccessToken(ctx context.Context, token string) (user.Principal, error)
}

type middleware func(http.Handler) http.Handler

// chain wraps h so the first middleware sees the request first.
func chain(h http.Handler, mws ...middleware) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

// healthPaths are never traced; load balancers hit them every few seconds.
var healthPaths = map[string]bool{
	"/healthz": true,
	"/health":  true,
	"/livez":   true,
	"/readyz":  true,
}

func traceRequests() middleware {
	return func(next http.Handler) http.Handler {
		return otelhttp.NewHandler(next, "release-league-http",
			otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
				return r.Method + " " + r.URL.Path
			}),
			otelhttp.WithFilter(func(r *http.Request) bool {
				return !healthPaths[strings.ToLower(strings.TrimSpace(r.URL.Path))]
			}),
		)
	}
}

// assignRequestID keeps a caller supplied id when it looks sane and echoes
// it back so draft room clients can quote it in bug reports.
func assignRequestID() middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := strings.TrimSpace(r.Header.Get(requestIDHeader))
			if id == "" || len(id) > 128 {
				id = uuid.NewString()
			}
			w.Header().Set(requestIDHeader, id)
			next.ServeHTTP(w, r.WithContext(withRequestID(r.Context(), id)))
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func logRequests(logger *logging.Logger) middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			started := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			ctx := r.Context()
			args := []any{
				"method", r.Method,
				"path", r.URL.Path,
				"route", r.Pattern,
				"status", rec.status,
				"client_ip", clientIP(r),
				"request_id", requestIDFromContext(ctx),
				"duration", time.Since(started),
			}
			switch {
			case rec.status >= http.StatusInternalServerError:
				logger.WarnContext(ctx, "http request", args...)
			case healthPaths[r.URL.Path]:
				logger.DebugContext(ctx, "http request", args...)
			default:
				logger.InfoContext(ctx, "http request", args...)
			}
		})
	}
}

func recoverPanics(logger *logging.Logger) middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.ErrorContext(r.Context(), "panic recovered", "panic", rec, "path", r.URL.Path)
					writeInternalError(r.Context(), w)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// corsPolicy answers browser preflights for the league web client.
type corsPolicy struct {
	any     bool
	origins map[string]bool
}

func newCORSPolicy(allowed []string) corsPolicy {
	p := corsPolicy{origins: make(map[string]bool, len(allowed))}
	for _, origin := range allowed {
		switch origin = strings.TrimSpace(origin); origin {
		case "":
		case "*":
			p.any = true
		default:
			p.origins[origin] = true
		}
	}
	return p
}

func (p corsPolicy) allowOrigin(origin string) (string, bool) {
	if p.any {
		return "*", true
	}
	if p.origins[origin] {
		return origin, true
	}
	return "", false
}

func allowOrigins(allowed []string) middleware {
	policy := newCORSPolicy(allowed)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := strings.TrimSpace(r.Header.Get("Origin"))
			if origin == "" {
				next.ServeHTTP(w, r)
				return
			}

			if value, ok := policy.allowOrigin(origin); ok {
				h := w.Header()
				h.Set("Access-Control-Allow-Origin", value)
				if value != "*" {
					h.Add("Vary", "Origin")
				}
				h.Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
				h.Set("Access-Control-Allow-Headers", "Authorization,Content-Type,Accept,"+requestIDHeader)
				h.Set("Access-Control-Expose-Headers", requestIDHeader)
				h.Set("Access-Control-Max-Age", "600")
			}
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", fmt.Errorf("%w: missing Authorization header", usecase.ErrUnauthorized)
	}
	scheme, token, ok := strings.Cut(header, " ")
	token = strings.TrimSpace(token)
	if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", fmt.Errorf("%w: invalid Authorization header format", usecase.ErrUnauthorized)
	}
	return token, nil
}

// requireUser resolves the bearer token to a principal before the handler
// runs.
func requireUser(verifier TokenVerifier) middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			token, err := bearerToken(r.Header.Get("Authorization"))
			if err != nil {
				writeError(ctx, w, err)
				return
			}
			principal, err := verifier.VerifyAccessToken(ctx, token)
			if err != nil {
				writeError(ctx, w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(withPrincipal(ctx, principal)))
		})
	}
}

// requireJobToken guards the routes the job queue calls back into. An
// unset token closes the routes rather than opening them.
func requireJobToken(token string) middleware {
	expected := []byte(strings.TrimSpace(token))
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(expected) == 0 {
				writeError(r.Context(), w, fmt.Errorf("%w: internal job token is not configured", usecase.ErrDependencyUnavailable))
				return
			}
			provided := []byte(strings.TrimSpace(r.Header.Get(internalJobTokenHeader)))
			if subtle.ConstantTimeCompare(provided, expected) != 1 {
				writeError(r.Context(), w, fmt.Errorf("%w: invalid internal job token", usecase.ErrUnauthorized))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
