package rest

import (
	"context"
	"errors"
	"net/http"

	"recoInsight/domain"
	"recoInsight/pkg/logger"

	"github.com/labstack/echo/v4"
)

// ResponseError represent the response error struct
type ResponseError struct {
	Message string `json:"message"`
}

// statusFor maps service errors to HTTP status codes. ErrConfiguration is a
// server fault here; the admin handler maps it to 400 itself.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrSnapshotNotReady):
		return http.StatusServiceUnavailable
	case errors.Is(err, domain.ErrInsufficientData):
		return http.StatusConflict
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c echo.Context, err error) error {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		logger.Error("request failed", err, "path", c.Path())
	}
	return c.JSON(code, ResponseError{Message: err.Error()})
}
