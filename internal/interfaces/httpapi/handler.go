package httpapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	sonic "github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/release-league/internal/domain/user"
	"github.com/riskibarqy/release-league/internal/platform/logging"
	"github.com/riskibarqy/release-league/internal/usecase"
)

type Handler struct {
	leagueService    *usecase.LeagueService
	draftService     *usecase.DraftService
	phaseService     *usecase.PhaseService
	teamScoreService *usecase.TeamScoreService
	gameService      *usecase.GameService
	jobOrchestrator  *usecase.JobOrchestratorService
	logger           *logging.Logger
	validator        *validator.Validate
}

func NewHandler(
	leagueService *usecase.LeagueService,
	draftService *usecase.DraftService,
	phaseService *usecase.PhaseService,
	teamScoreService *usecase.TeamScoreService,
	gameService *usecase.GameService,
	jobOrchestrator *usecase.JobOrchestratorService,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		leagueService:    leagueService,
		draftService:     draftService,
		phaseService:     phaseService,
		teamScoreService: teamScoreService,
		gameService:      gameService,
		jobOrchestrator:  jobOrchestrator,
		logger:           logger,
		validator:        validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := handlerSpan(r, "Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

// decodeJSON rejects unknown fields. An empty body is allowed when
// allowEmpty is set and leaves dst untouched.
func decodeJSON(r *http.Request, dst any, allowEmpty bool) error {
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		if allowEmpty && errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

func requirePrincipal(ctx context.Context) (user.Principal, error) {
	principal, ok := principalFromContext(ctx)
	if !ok || principal.UserID == "" {
		return user.Principal{}, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized)
	}
	return principal, nil
}
