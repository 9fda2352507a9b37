package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/daily-pick/internal/domain/pick"
	"github.com/riskibarqy/daily-pick/internal/usecase"
	"github.com/valyala/bytebufferpool"
)

const (
	googleAPIVersion = "2.0"
	errorDomain      = "daily-pick"
)

type googleResponseEnvelope struct {
	APIVersion string           `json:"apiVersion"`
	Data       any              `json:"data,omitempty"`
	Error      *googleErrorBody `json:"error,omitempty"`
}

type googleErrorBody struct {
	Code    int               `json:"code"`
	Message string            `json:"message"`
	Status  string            `json:"status"`
	Errors  []googleErrorItem `json:"errors,omitempty"`
}

type googleErrorItem struct {
	Domain  string `json:"domain"`
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

type mappedError struct {
	HTTPStatus int
	Reason     string
	Status     string
}

// writeJSON encodes into a pooled buffer first so an encoding failure can still
// produce a clean 500.
func writeJSON(_ context.Context, w http.ResponseWriter, status int, payload any) {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	if err := sonic.ConfigDefault.NewEncoder(buf).Encode(payload); err != nil {
		http.Error(w, `{"apiVersion":"2.0","error":{"code":500,"message":"encode response","status":"INTERNAL"}}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(status)
	_, _ = w.Write(buf.B)
}

func writeSuccess(ctx context.Context, w http.ResponseWriter, status int, data any) {
	writeJSON(ctx, w, status, googleResponseEnvelope{
		APIVersion: googleAPIVersion,
		Data:       data,
	})
}

func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	mapped := mapError(err)
	message := err.Error()
	if mapped.HTTPStatus == http.StatusInternalServerError {
		message = "internal server error"
	}

	writeJSON(ctx, w, mapped.HTTPStatus, googleResponseEnvelope{
		APIVersion: googleAPIVersion,
		Error: &googleErrorBody{
			Code:    mapped.HTTPStatus,
			Message: message,
			Status:  mapped.Status,
			Errors: []googleErrorItem{
				{
					Domain:  errorDomain,
					Reason:  mapped.Reason,
					Message: message,
				},
			},
		},
	})
}

func writeInternalError(ctx context.Context, w http.ResponseWriter) {
	writeError(ctx, w, errors.New("panic"))
}

// mapError checks ErrProjectionUnavailable first because it also unwraps to the
// errors of both projectors.
func mapError(err error) mappedError {
	switch {
	case errors.Is(err, usecase.ErrProjectionUnavailable):
		return mappedError{http.StatusServiceUnavailable, "projectionUnavailable", "UNAVAILABLE"}
	case errors.Is(err, usecase.ErrInvalidInput):
		return mappedError{http.StatusBadRequest, "invalidInput", "INVALID_ARGUMENT"}
	case errors.Is(err, usecase.ErrNotFound):
		return mappedError{http.StatusNotFound, "notFound", "NOT_FOUND"}
	case errors.Is(err, usecase.ErrPickLocked):
		return mappedError{http.StatusConflict, "pickLocked", "FAILED_PRECONDITION"}
	case errors.Is(err, usecase.ErrGameNotFinal):
		return mappedError{http.StatusConflict, "gameNotFinal", "FAILED_PRECONDITION"}
	case errors.Is(err, usecase.ErrConflict), errors.Is(err, pick.ErrDuplicatePick):
		return mappedError{http.StatusConflict, "conflict", "ALREADY_EXISTS"}
	case errors.Is(err, usecase.ErrInsufficientHistory):
		return mappedError{http.StatusUnprocessableEntity, "insufficientHistory", "FAILED_PRECONDITION"}
	case errors.Is(err, usecase.ErrNoProviderConfigured):
		return mappedError{http.StatusUnprocessableEntity, "noProviderConfigured", "FAILED_PRECONDITION"}
	case errors.Is(err, usecase.ErrLineUnavailable):
		return mappedError{http.StatusServiceUnavailable, "lineUnavailable", "UNAVAILABLE"}
	case errors.Is(err, usecase.ErrUpstreamUnavailable):
		return mappedError{http.StatusServiceUnavailable, "upstreamUnavailable", "UNAVAILABLE"}
	default:
		return mappedError{http.StatusInternalServerError, "internalError", "INTERNAL"}
	}
}
