package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/jonathan/voicedna/internal/calibration"
	"github.com/jonathan/voicedna/internal/composer"
	"github.com/jonathan/voicedna/internal/engine"
	"github.com/jonathan/voicedna/internal/ingestion"
	"github.com/jonathan/voicedna/internal/profile"
	"github.com/jonathan/voicedna/internal/types"
)

// HTTPStatus returns the status code for an engine error.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, types.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, engine.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, calibration.ErrRoundAlreadyRated), errors.Is(err, calibration.ErrRoundNotAnswered):
		return http.StatusConflict
	case errors.Is(err, composer.ErrComposerInputIncomplete), errors.Is(err, ingestion.ErrContentExtractionFailed):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ingestion.ErrHTTPRequestFailed):
		return http.StatusBadGateway
	case errors.Is(err, engine.ErrGenerationUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, profile.ErrAggregationFailed):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// errorCode is the machine-readable code sent with each status.
func errorCode(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "validation_error"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusConflict:
		return "conflict"
	case http.StatusUnprocessableEntity:
		return "input_incomplete"
	case http.StatusBadGateway:
		return "upstream_error"
	case http.StatusServiceUnavailable:
		return "unavailable"
	case http.StatusGatewayTimeout:
		return "timeout"
	case http.StatusTooManyRequests:
		return "rate_limit_exceeded"
	default:
		return "internal_error"
	}
}

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
