// Package app is the web front end's bootstrap and dependency injection
// root. It holds the shared infrastructure (session store, Redis client,
// collaborator HTTP client, Echo instance) and wires the plugins together.
package app

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/keyxmakerx/posterdesk/internal/apperror"
	"github.com/keyxmakerx/posterdesk/internal/config"
	"github.com/keyxmakerx/posterdesk/internal/middleware"
	"github.com/keyxmakerx/posterdesk/internal/plugins/auth"
	"github.com/keyxmakerx/posterdesk/internal/templates/pages"
	"github.com/keyxmakerx/posterdesk/internal/upstream"
)

// App holds all shared dependencies and the Echo HTTP server instance.
// Created once at startup in main.go and used to register all routes.
type App struct {
	// Config holds the loaded application configuration.
	Config *config.Config

	// Redis backs the session store. Nil when SESSION_STORE=memory.
	Redis *redis.Client

	// Sessions tracks who is logged in.
	Sessions *auth.SessionManager

	// Upstream is the HTTP client shared by all collaborator calls.
	Upstream *upstream.Client

	// Echo is the HTTP server instance.
	Echo *echo.Echo
}

// New creates a new App with the given session store and configures the
// Echo server with global middleware and error handling. rdb may be nil.
func New(cfg *config.Config, store auth.SessionStore, rdb *redis.Client) *App {
	e := echo.New()

	// Disable Echo's default banner and startup message -- we log our own.
	e.HideBanner = true
	e.HidePort = true

	// Resolve the real client IP behind the reverse proxy so rate limiting
	// counts browsers, not the proxy.
	middleware.TrustedProxies(e, cfg.TrustedProxies)

	app := &App{
		Config:   cfg,
		Redis:    rdb,
		Sessions: auth.NewSessionManager(store, cfg.Auth.SessionTTL),
		Upstream: upstream.NewClient(cfg.Upstream.Timeout),
		Echo:     e,
	}

	app.setupMiddleware()
	e.HTTPErrorHandler = app.errorHandler

	return app
}

// setupMiddleware registers global middleware on the Echo instance.
// Order matters: outermost (recovery) runs first, innermost (CSRF) runs last.
func (a *App) setupMiddleware() {
	// Panic recovery -- must be outermost to catch panics from all other middleware.
	a.Echo.Use(middleware.Recovery())

	a.Echo.Use(middleware.RequestLogger())
	a.Echo.Use(middleware.SecurityHeaders(a.Config.Upstream.ImageSources...))

	// Flash messages ride in a cookie signed with the app secret.
	a.Echo.Use(middleware.Flash([]byte(a.Config.Auth.SecretKey)))

	// CSRF -- hands out double-submit tokens. Each POST route verifies
	// them itself, after its session check.
	a.Echo.Use(middleware.CSRF())
}

// errorHandler is the custom Echo error handler. It maps domain errors
// (AppError) to HTTP responses and renders an error page. Collaborator
// failures never get here; handlers turn them into flash messages.
//
// 401 errors redirect to the login page; paths under /api/ get JSON.
func (a *App) errorHandler(err error, c echo.Context) {
	// Don't double-write if response is already committed.
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	message := defaultErrorMessage(code)

	var appErr *apperror.AppError
	var echoErr *echo.HTTPError
	switch {
	case errors.As(err, &appErr):
		code = appErr.Code
		message = appErr.Message

		// Log internal errors with the underlying cause.
		if appErr.Internal != nil {
			slog.Error("internal error",
				slog.String("type", appErr.Type),
				slog.String("message", appErr.Message),
				slog.Any("internal", appErr.Internal),
				slog.String("path", c.Request().URL.Path),
			)
		}
	case errors.As(err, &echoErr):
		// Echo's built-in HTTP errors (404 from the router, 403 from CSRF,
		// 429 from the rate limiter).
		code = echoErr.Code
		if msg, ok := echoErr.Message.(string); ok {
			message = msg
		} else {
			message = defaultErrorMessage(code)
		}
	default:
		slog.Error("unhandled error",
			slog.Any("error", err),
			slog.String("path", c.Request().URL.Path),
		)
	}

	// Machine clients get JSON instead of a page or a redirect.
	if strings.HasPrefix(c.Request().URL.Path, "/api/") {
		c.JSON(code, map[string]string{"error": message})
		return
	}

	if code == http.StatusUnauthorized {
		c.Redirect(http.StatusSeeOther, "/login")
		return
	}

	if c.Request().Method == http.MethodHead {
		c.NoContent(code)
		return
	}

	if err := middleware.Render(c, code, pages.ErrorPage(code, message)); err != nil {
		slog.Error("rendering error page", slog.Any("error", err))
	}
}

// defaultErrorMessage returns a user-friendly message for common HTTP status codes
// when no specific message was provided by the error.
func defaultErrorMessage(code int) string {
	switch code {
	case http.StatusBadRequest:
		return "The request was invalid or cannot be processed."
	case http.StatusForbidden:
		return "Your form expired. Go back, reload the page and try again."
	case http.StatusNotFound:
		return "The page you're looking for doesn't exist."
	case http.StatusMethodNotAllowed:
		return "This action is not allowed."
	case http.StatusTooManyRequests:
		return "You're making too many requests. Please slow down."
	case http.StatusBadGateway, http.StatusServiceUnavailable:
		return "The poster service is temporarily unavailable. Please try again later."
	default:
		return "Something went wrong on our end. Please try again."
	}
}

// Start begins listening for HTTP requests on the configured port.
func (a *App) Start() error {
	addr := fmt.Sprintf(":%d", a.Config.Port)
	slog.Info("starting Posterdesk web server",
		slog.String("addr", addr),
		slog.String("env", a.Config.Env),
		slog.String("session_store", a.Config.Auth.SessionStore),
	)
	return a.Echo.Start(addr)
}
