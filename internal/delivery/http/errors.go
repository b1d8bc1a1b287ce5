package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/scentpair/backend/internal/domain"
	"github.com/scentpair/backend/internal/logging"
)

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// errorStatus maps a domain error to an HTTP status and a stable code.
// Operators see not_configured; end users see not_found or upstream_error.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		return http.StatusBadRequest, "invalid_request"
	case errors.Is(err, domain.ErrConfiguration):
		return http.StatusServiceUnavailable, "not_configured"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, domain.ErrSuperseded):
		return http.StatusConflict, "superseded"
	case errors.Is(err, domain.ErrGenerationUnavailable):
		return http.StatusBadGateway, "generation_unavailable"
	case errors.Is(err, domain.ErrUpstream):
		return http.StatusBadGateway, "upstream_error"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "timeout"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

func respondError(c *gin.Context, err error) {
	status, code := errorStatus(err)

	event := logging.Warn()
	if status >= http.StatusInternalServerError && status != http.StatusServiceUnavailable {
		event = logging.Error()
	}
	event.Err(err).Str("path", c.FullPath()).Int("status", status).Msg("request failed")

	c.JSON(status, ErrorResponse{Error: err.Error(), Code: code})
}

func respondBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "invalid_request"})
}
