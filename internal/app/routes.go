package app

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/keyxmakerx/posterdesk/internal/middleware"
	"github.com/keyxmakerx/posterdesk/internal/plugins/auth"
	"github.com/keyxmakerx/posterdesk/internal/plugins/posters"
	"github.com/keyxmakerx/posterdesk/internal/templates/layouts"
)

// RegisterRoutes sets up all application routes. It registers the health
// check directly and delegates to each plugin's route registration function.
//
// This is the single place where all routes are aggregated.
func (a *App) RegisterRoutes() {
	e := a.Echo

	middleware.LayoutInjector = a.injectLayout

	// Health check for container orchestration. Reports the session store,
	// the only stateful dependency of the front end.
	e.GET("/healthz", a.healthz)

	// auth plugin (/, login, signup, logout, account)
	identity := auth.NewIdentityClient(a.Upstream, a.Config.Upstream.UserAPIURL)
	authHandler := auth.NewHandler(auth.NewAuthService(identity), a.Sessions)
	auth.RegisterRoutes(e, authHandler, a.Sessions)

	// posters plugin (dashboard, generate, unlock)
	posterClient := posters.NewPosterClient(a.Upstream, a.Config.Upstream.PosterAPIBase)
	postersHandler := posters.NewHandler(posters.NewPosterService(posterClient))
	posters.RegisterRoutes(e, postersHandler, a.Sessions)
}

// injectLayout copies session, CSRF and flash data into the render context.
// Flashes are consumed here, so every rendered page shows them once.
func (a *App) injectLayout(c echo.Context, ctx context.Context) context.Context {
	if session, ok := a.Sessions.Current(c); ok {
		ctx = layouts.SetIsAuthenticated(ctx, true)
		ctx = layouts.SetUserID(ctx, session.UserID)
	}
	ctx = layouts.SetCSRFToken(ctx, middleware.GetCSRFToken(c))
	ctx = layouts.SetActivePath(ctx, c.Request().URL.Path)
	return layouts.SetFlashes(ctx, middleware.TakeFlashes(c))
}

// healthz answers 200 when the session store is reachable.
func (a *App) healthz(c echo.Context) error {
	if a.Redis != nil {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		if err := a.Redis.Ping(ctx).Err(); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{
				"status": "unavailable",
				"redis":  err.Error(),
			})
		}
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
