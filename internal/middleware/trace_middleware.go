package middleware

import (
	"recoInsight/business/insight"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// TraceID reuses an incoming X-Request-ID or generates one, echoes it back
// and puts it into the request context for service logs.
func TraceID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			id := req.Header.Get(echo.HeaderXRequestID)
			if id == "" {
				id = uuid.NewString()
			}

			c.Response().Header().Set(echo.HeaderXRequestID, id)
			c.SetRequest(req.WithContext(insight.WithTraceID(req.Context(), id)))

			return next(c)
		}
	}
}
