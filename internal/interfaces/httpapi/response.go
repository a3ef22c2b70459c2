package httpapi

import (
	"context"
	"errors"
	"net/http"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/release-league/internal/usecase"
)

// Responses follow the Google JSON style guide envelope.
const (
	apiVersion  = "2.0"
	errorDomain = "release-league"
)

type responseEnvelope struct {
	APIVersion string     `json:"apiVersion"`
	Data       any        `json:"data,omitempty"`
	Error      *errorBody `json:"error,omitempty"`
}

type errorBody struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Status  string      `json:"status"`
	Errors  []errorItem `json:"errors,omitempty"`
}

type errorItem struct {
	Domain  string `json:"domain"`
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

type apiError struct {
	HTTPStatus int
	Status     string
	Reason     string
}

var internalAPIError = apiError{http.StatusInternalServerError, "INTERNAL", "internalError"}

// errorTable is matched top to bottom, so specific sentinels come before
// the generic ones they wrap.
var errorTable = []struct {
	target error
	api    apiError
}{
	{usecase.ErrInvalidPickType, apiError{http.StatusBadRequest, "INVALID_ARGUMENT", "invalidPickType"}},
	{usecase.ErrInvalidInput, apiError{http.StatusBadRequest, "INVALID_ARGUMENT", "invalidInput"}},
	{usecase.ErrLeagueNotFound, apiError{http.StatusNotFound, "NOT_FOUND", "leagueNotFound"}},
	{usecase.ErrDraftNotFound, apiError{http.StatusNotFound, "NOT_FOUND", "draftNotFound"}},
	{usecase.ErrNotFound, apiError{http.StatusNotFound, "NOT_FOUND", "notFound"}},
	{usecase.ErrUnauthorized, apiError{http.StatusUnauthorized, "UNAUTHENTICATED", "unauthorized"}},
	{usecase.ErrForbidden, apiError{http.StatusForbidden, "PERMISSION_DENIED", "forbidden"}},
	{usecase.ErrNotYourTurn, apiError{http.StatusConflict, "FAILED_PRECONDITION", "notYourTurn"}},
	{usecase.ErrGameAlreadyDrafted, apiError{http.StatusConflict, "ALREADY_EXISTS", "gameAlreadyDrafted"}},
	{usecase.ErrSeasonNotEnded, apiError{http.StatusConflict, "FAILED_PRECONDITION", "seasonNotEnded"}},
	{usecase.ErrConflict, apiError{http.StatusConflict, "ABORTED", "conflict"}},
	{usecase.ErrPersistenceConflict, apiError{http.StatusServiceUnavailable, "UNAVAILABLE", "persistenceConflict"}},
	{usecase.ErrDependencyUnavailable, apiError{http.StatusServiceUnavailable, "UNAVAILABLE", "dependencyUnavailable"}},
	{usecase.ErrUpstreamUnavailable, apiError{http.StatusServiceUnavailable, "UNAVAILABLE", "dependencyUnavailable"}},
	{usecase.ErrRateLimited, apiError{http.StatusServiceUnavailable, "UNAVAILABLE", "dependencyUnavailable"}},
}

func mapError(err error) apiError {
	for _, row := range errorTable {
		if errors.Is(err, row.target) {
			return row.api
		}
	}
	return internalAPIError
}

func writeJSON(w http.ResponseWriter, status int, payload responseEnvelope) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = sonic.ConfigDefault.NewEncoder(w).Encode(payload)
}

func writeSuccess(_ context.Context, w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, responseEnvelope{APIVersion: apiVersion, Data: data})
}

func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	api := mapError(err)
	markSpanError(ctx, api.HTTPStatus, err)

	// Unmapped errors may carry sql or upstream detail; callers only get the
	// generic message.
	msg := err.Error()
	if api == internalAPIError {
		msg = http.StatusText(http.StatusInternalServerError)
	}
	writeAPIError(w, api, msg)
}

func writeInternalError(_ context.Context, w http.ResponseWriter) {
	writeAPIError(w, internalAPIError, http.StatusText(http.StatusInternalServerError))
}

func writeAPIError(w http.ResponseWriter, api apiError, msg string) {
	writeJSON(w, api.HTTPStatus, responseEnvelope{
		APIVersion: apiVersion,
		Error: &errorBody{
			Code:    api.HTTPStatus,
			Message: msg,
			Status:  api.Status,
			Errors:  []errorItem{{Domain: errorDomain, Reason: api.Reason, Message: msg}},
		},
	})
}
