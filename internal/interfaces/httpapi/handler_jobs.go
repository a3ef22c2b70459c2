package httpapi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/riskibarqy/release-league/internal/usecase"
)

// RunScoringJob is the target of queued daily runs and of manual triggers.
// Queued runs carry dispatch_id and chain=true.
func (h *Handler) RunScoringJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := handlerSpan(r, "RunScoringJob")
	defer span.End()

	if h.jobOrchestrator == nil {
		writeError(ctx, w, fmt.Errorf("%w: job orchestrator is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	var req scoringJobRequest
	if err := decodeJSON(r, &req, true); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if req.Mode == "" {
		req.Mode = string(usecase.ScoringModeFull)
	}

	result, err := h.jobOrchestrator.RunScoringJob(ctx, usecase.ScoringJobInput{
		Mode:        usecase.ScoringMode(req.Mode),
		DryRun:      req.DryRun,
		Concurrency: req.Concurrency,
		Delay:       time.Duration(req.DelayMS) * time.Millisecond,
		Date:        req.Date,
		DispatchID:  req.DispatchID,
		Chain:       req.Chain,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "run scoring job failed",
			"mode", req.Mode,
			"dry_run", req.DryRun,
			"dispatch_id", req.DispatchID,
			"error", err,
		)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}

func (h *Handler) RunBootstrapJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := handlerSpan(r, "RunBootstrapJob")
	defer span.End()

	if h.jobOrchestrator == nil {
		writeError(ctx, w, fmt.Errorf("%w: job orchestrator is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	result, err := h.jobOrchestrator.Bootstrap(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "run bootstrap job failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}
