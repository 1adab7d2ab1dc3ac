package middleware

import (
	"context"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type traceIDKey struct{}

const TraceHeader = "X-Trace-Id"

// Trace assigns each request a trace id, honoring one the caller already
// sent, and echoes it back in the response header.
func Trace() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			traceID := c.Request().Header.Get(TraceHeader)
			if traceID == "" {
				traceID = uuid.NewString()
			}

			ctx := context.WithValue(c.Request().Context(), traceIDKey{}, traceID)
			c.SetRequest(c.Request().WithContext(ctx))
			c.Response().Header().Set(TraceHeader, traceID)

			return next(c)
		}
	}
}

// TraceIDFromContext returns the request's trace id, empty if none was set.
func TraceIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(traceIDKey{}).(string); ok {
		return v
	}
	return ""
}
