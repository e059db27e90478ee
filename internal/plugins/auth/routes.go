package auth

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/keyxmakerx/posterdesk/internal/middleware"
)

// RegisterRoutes sets up all auth-related routes on the given Echo instance.
// Login and signup are public; account maintenance needs a session.
//
// POST endpoints verify the CSRF token. Login and signup are rate-limited
// to slow down password guessing: 10 attempts per IP per minute for login,
// 5 for signup.
func RegisterRoutes(e *echo.Echo, h *Handler, sessions *SessionManager) {
	e.GET("/", h.Index)
	e.GET("/login", h.LoginForm)
	e.POST("/login", h.Login, middleware.RateLimit(10, time.Minute), middleware.VerifyCSRF())
	e.GET("/signup", h.SignupForm)
	e.POST("/signup", h.Signup, middleware.RateLimit(5, time.Minute), middleware.VerifyCSRF())
	e.GET("/logout", h.Logout)

	// The session check runs before CSRF verification, so an anonymous
	// POST is sent to /login instead of getting a 403.
	account := e.Group("/account", RequireAuth(sessions), middleware.VerifyCSRF())
	account.POST("/password", h.ChangePassword)
	account.POST("/delete", h.DeleteAccount)
}
