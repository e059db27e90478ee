package posters

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/keyxmakerx/posterdesk/internal/apperror"
	"github.com/keyxmakerx/posterdesk/internal/middleware"
	"github.com/keyxmakerx/posterdesk/internal/plugins/auth"
)

// Handler serves the dashboard and its two form actions. Every route sits
// behind auth.RequireAuth, so the user ID is always present.
type Handler struct {
	service PosterService
}

// NewHandler creates a new posters handler.
func NewHandler(service PosterService) *Handler {
	return &Handler{service: service}
}

// Dashboard renders the generation form and the user's history
// (GET /dashboard). A failed history call still renders the page.
func (h *Handler) Dashboard(c echo.Context) error {
	views, err := h.service.Dashboard(c.Request().Context(), auth.GetUserID(c))
	if err != nil {
		middleware.AddFlash(c, "Error fetching history: "+apperror.SafeMessage(err))
	}
	return middleware.Render(c, http.StatusOK, DashboardPage(middleware.GetCSRFToken(c), views))
}

// Generate submits a prompt and returns to the dashboard (POST /generate).
func (h *Handler) Generate(c echo.Context) error {
	var req GenerateRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request")
	}

	if err := h.service.Generate(c.Request().Context(), auth.GetUserID(c), req.Prompt); err != nil {
		middleware.AddFlash(c, failureMessage(err, "Generation failed: ", "Error generating poster: "))
	}
	return c.Redirect(http.StatusSeeOther, "/dashboard")
}

// Unlock marks a poster as paid and returns to the dashboard (POST /unlock).
func (h *Handler) Unlock(c echo.Context) error {
	var req UnlockRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request")
	}

	if err := h.service.Unlock(c.Request().Context(), auth.GetUserID(c), req.PromptUsed); err != nil {
		middleware.AddFlash(c, failureMessage(err, "Unlock failed: ", "Error unlocking poster: "))
	}
	return c.Redirect(http.StatusSeeOther, "/dashboard")
}

// failureMessage picks the flash text for a collaborator error. Rejections
// by the collaborator use rejected; transport problems use broken.
func failureMessage(err error, rejected, broken string) string {
	switch apperror.TypeOf(err) {
	case apperror.TypeValidation:
		return apperror.SafeMessage(err)
	case apperror.TypeUpstream, apperror.TypeUpstreamStatus:
		return rejected + apperror.SafeMessage(err)
	default:
		return broken + apperror.SafeMessage(err)
	}
}
