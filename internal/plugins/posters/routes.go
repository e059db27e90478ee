package posters

import (
	"github.com/labstack/echo/v4"

	"github.com/keyxmakerx/posterdesk/internal/middleware"
	"github.com/keyxmakerx/posterdesk/internal/plugins/auth"
)

// RegisterRoutes sets up the dashboard routes. All of them require a
// session; the check runs before CSRF verification and any collaborator
// call.
func RegisterRoutes(e *echo.Echo, h *Handler, sessions *auth.SessionManager) {
	requireAuth := auth.RequireAuth(sessions)
	e.GET("/dashboard", h.Dashboard, requireAuth)
	verifyCSRF := middleware.VerifyCSRF()
	e.POST("/generate", h.Generate, requireAuth, verifyCSRF)
	e.POST("/unlock", h.Unlock, requireAuth, verifyCSRF)
}
