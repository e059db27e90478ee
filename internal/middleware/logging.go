// Package middleware provides HTTP middleware shared by the Posterdesk web
// front end and the poster API. Middleware is applied globally or per
// route; see internal/app/app.go and internal/posterapi for registration.
package middleware

import (
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"
)

// quietPaths are polled by orchestrators and logged at DEBUG only.
var quietPaths = map[string]bool{
	"/healthz": true,
}

// RequestLogger returns middleware that logs every HTTP request with
// structured fields: method, path, status, latency, size and remote IP.
// Query strings are left out because they carry user IDs and prompts.
func RequestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				// Let the error handler write the response first so the
				// logged status is the one the client sees.
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()

			level := slog.LevelInfo
			switch {
			case res.Status >= 500:
				level = slog.LevelError
			case res.Status >= 400:
				level = slog.LevelWarn
			case quietPaths[req.URL.Path]:
				level = slog.LevelDebug
			}

			slog.LogAttrs(req.Context(), level, "request",
				slog.String("method", req.Method),
				slog.String("path", req.URL.Path),
				slog.Int("status", res.Status),
				slog.Duration("latency", time.Since(start)),
				slog.Int64("bytes", res.Size),
				slog.String("remote_ip", c.RealIP()),
			)

			return nil
		}
	}
}
