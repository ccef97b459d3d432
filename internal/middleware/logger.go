package middleware

import (
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/filmorate/internal/logging"
	"github.com/iliyamo/filmorate/internal/metrics"
)

// RequestIDKey is the echo.Context key holding the request id.
const RequestIDKey = "request_id"

// RequestLogger assigns a request id (honouring an incoming X-Request-ID),
// logs one line per request and records the HTTP metrics. Handler errors
// are passed to the Echo error handler first so the logged status is final.
func RequestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()

			id := req.Header.Get(echo.HeaderXRequestID)
			if id == "" {
				id = uuid.NewString()
			}
			c.Set(RequestIDKey, id)
			c.Response().Header().Set(echo.HeaderXRequestID, id)

			if err := next(c); err != nil {
				c.Error(err)
			}

			status := c.Response().Status
			elapsed := time.Since(start)
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			metrics.ObserveHTTP(req.Method, route, status, elapsed)

			ev := logging.Info()
			if status >= 500 {
				ev = logging.Error()
			}
			ev.Str("request_id", id).
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Str("route", route).
				Int("status", status).
				Dur("latency", elapsed).
				Str("remote_ip", c.RealIP()).
				Msg("request")
			return nil
		}
	}
}
