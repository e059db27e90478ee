package auth

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/keyxmakerx/posterdesk/internal/apperror"
	"github.com/keyxmakerx/posterdesk/internal/middleware"
)

// Flash texts shown on the login and signup pages.
const (
	msgSessionExpired  = "Session expired. Please login again."
	msgSignupSucceeded = "Signup successful! Please login."
	msgPasswordChanged = "Password updated."
	msgAccountDeleted  = "Account deleted."
)

// Handler handles HTTP requests for authentication (login, signup, logout,
// account maintenance). Handlers are thin: they bind the request, call the
// service, flash the outcome and redirect. No business logic lives here.
type Handler struct {
	service  AuthService
	sessions *SessionManager
}

// NewHandler creates a new auth handler with the given service.
func NewHandler(service AuthService, sessions *SessionManager) *Handler {
	return &Handler{service: service, sessions: sessions}
}

// Index renders the landing page, or sends logged-in users to their
// dashboard (GET /).
func (h *Handler) Index(c echo.Context) error {
	if _, ok := h.sessions.Current(c); ok {
		return c.Redirect(http.StatusSeeOther, "/dashboard")
	}
	return middleware.Render(c, http.StatusOK, LandingPage())
}

// LoginForm renders the login page (GET /login). A browser whose session
// ran out on its own gets a one-time "expired" notice.
func (h *Handler) LoginForm(c echo.Context) error {
	if _, ok := h.sessions.Current(c); ok {
		return c.Redirect(http.StatusSeeOther, "/dashboard")
	}

	if h.sessions.DetectStale(c) {
		middleware.AddFlash(c, msgSessionExpired)
	}

	return middleware.Render(c, http.StatusOK, LoginPage(middleware.GetCSRFToken(c)))
}

// Login processes the login form submission (POST /login).
func (h *Handler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request")
	}

	user, err := h.service.Login(c.Request().Context(), LoginInput{
		UserID:   req.Email,
		Password: req.Password,
	})
	if err != nil {
		middleware.AddFlash(c, loginFailureMessage(err))
		return c.Redirect(http.StatusSeeOther, "/login")
	}

	if _, err := h.sessions.Begin(c, user.UserID); err != nil {
		slog.Error("starting session", slog.String("user_id", user.UserID), slog.Any("error", err))
		middleware.AddFlash(c, "Error logging in: "+apperror.SafeMessage(err))
		return c.Redirect(http.StatusSeeOther, "/login")
	}

	return c.Redirect(http.StatusSeeOther, "/dashboard")
}

// SignupForm renders the signup page (GET /signup).
func (h *Handler) SignupForm(c echo.Context) error {
	if _, ok := h.sessions.Current(c); ok {
		return c.Redirect(http.StatusSeeOther, "/dashboard")
	}
	return middleware.Render(c, http.StatusOK, SignupPage(middleware.GetCSRFToken(c)))
}

// Signup processes the signup form submission (POST /signup). Success does
// not log the user in; they are sent to the login page.
func (h *Handler) Signup(c echo.Context) error {
	var req SignupRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request")
	}

	err := h.service.Signup(c.Request().Context(), SignupInput{
		UserID:   req.Email,
		Password: req.Password,
	})
	if err != nil {
		middleware.AddFlash(c, signupFailureMessage(err))
		return c.Redirect(http.StatusSeeOther, "/signup")
	}

	middleware.AddFlash(c, msgSignupSucceeded)
	return c.Redirect(http.StatusSeeOther, "/login")
}

// Logout ends the session and clears the expiry sentinel (GET /logout).
func (h *Handler) Logout(c echo.Context) error {
	if err := h.sessions.End(c); err != nil {
		slog.Warn("failed to delete session on logout", slog.Any("error", err))
	}
	return c.Redirect(http.StatusSeeOther, "/login")
}

// ChangePassword updates the logged-in user's password
// (POST /account/password).
func (h *Handler) ChangePassword(c echo.Context) error {
	var req ChangePasswordRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request")
	}

	err := h.service.ChangePassword(c.Request().Context(), GetUserID(c), req.Password, req.Confirm)
	if err != nil {
		middleware.AddFlash(c, "Password change failed: "+failureDetail(err))
	} else {
		middleware.AddFlash(c, msgPasswordChanged)
	}
	return c.Redirect(http.StatusSeeOther, "/dashboard")
}

// DeleteAccount removes the identity and ends the session
// (POST /account/delete).
func (h *Handler) DeleteAccount(c echo.Context) error {
	if err := h.service.DeleteAccount(c.Request().Context(), GetUserID(c)); err != nil {
		middleware.AddFlash(c, "Account deletion failed: "+failureDetail(err))
		return c.Redirect(http.StatusSeeOther, "/dashboard")
	}

	if err := h.sessions.End(c); err != nil {
		slog.Warn("failed to delete session after account deletion", slog.Any("error", err))
	}
	middleware.AddFlash(c, msgAccountDeleted)
	return c.Redirect(http.StatusSeeOther, "/login")
}

// --- Flash text mapping ---

// loginFailureMessage turns a Login error into the text shown to the user.
func loginFailureMessage(err error) string {
	switch apperror.TypeOf(err) {
	case apperror.TypeValidation:
		return apperror.SafeMessage(err)
	case apperror.TypeUnauthorized:
		return "Invalid password"
	case apperror.TypeUpstream:
		return "Login failed: " + apperror.SafeMessage(err)
	case apperror.TypeUpstreamStatus:
		return "User not found"
	default:
		return "Error logging in: " + apperror.SafeMessage(err)
	}
}

// signupFailureMessage turns a Signup error into the text shown to the user.
func signupFailureMessage(err error) string {
	switch apperror.TypeOf(err) {
	case apperror.TypeValidation:
		return apperror.SafeMessage(err)
	case apperror.TypeUpstream:
		return "Signup failed: " + apperror.SafeMessage(err)
	case apperror.TypeUpstreamStatus:
		return "Error creating account"
	default:
		return "Error signing up: " + apperror.SafeMessage(err)
	}
}

// failureDetail is the user-facing part of an account maintenance error.
// Raw upstream bodies are not shown.
func failureDetail(err error) string {
	if apperror.TypeOf(err) == apperror.TypeUpstreamStatus {
		return http.StatusText(apperror.UpstreamStatus(err))
	}
	return apperror.SafeMessage(err)
}
