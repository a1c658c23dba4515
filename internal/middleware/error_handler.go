package middleware

import (
	"errors"
	"net/http"

	"recoInsight/pkg/logger"

	"github.com/labstack/echo/v4"
)

// ErrorHandler renders errors that escaped a handler, including echo's own
// 404 and 405, as {"message": ...}.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	msg := http.StatusText(code)

	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		if m, ok := he.Message.(string); ok {
			msg = m
		} else {
			msg = http.StatusText(code)
		}
	} else {
		logger.Error("unhandled error", err, "path", c.Path(), "method", c.Request().Method)
	}

	var writeErr error
	if c.Request().Method == http.MethodHead {
		writeErr = c.NoContent(code)
	} else {
		writeErr = c.JSON(code, echo.Map{"message": msg})
	}
	if writeErr != nil {
		logger.Error("failed to write error response", writeErr)
	}
}
