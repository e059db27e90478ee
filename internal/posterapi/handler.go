package posterapi

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/keyxmakerx/posterdesk/internal/apperror"
)

// maxBodyBytes caps request bodies; every payload is a couple of fields.
const maxBodyBytes = 64 << 10

// Handler serves the collaborator endpoints. Replies are plain JSON, or,
// with envelopes on, {"statusCode": N, "body": "<json>"} sent with HTTP 200
// the way a function gateway returns them.
type Handler struct {
	service   Service
	envelopes bool
}

// NewHandler creates a new collaborator handler.
func NewHandler(service Service, envelopes bool) *Handler {
	return &Handler{service: service, envelopes: envelopes}
}

// GetUser returns an identity (GET /user?user_id=).
func (h *Handler) GetUser(c echo.Context) error {
	user, err := h.service.GetUser(c.Request().Context(), c.QueryParam("user_id"))
	if err != nil {
		return h.fail(c, err)
	}
	return h.respond(c, http.StatusOK, map[string]string{
		"user_id":         user.UserID,
		"password_digest": user.PasswordDigest,
	})
}

// CreateUser stores a new identity (POST /user).
func (h *Handler) CreateUser(c echo.Context) error {
	var p userPayload
	decodePayload(c, &p)

	digest := p.PasswordDigest
	if digest == "" {
		digest = p.Password
	}
	if err := h.service.CreateUser(c.Request().Context(), p.UserID, digest); err != nil {
		return h.fail(c, err)
	}
	return h.respond(c, http.StatusOK, map[string]string{"message": "User created"})
}

// UpdateUser replaces the password (PUT /user).
func (h *Handler) UpdateUser(c echo.Context) error {
	var p userPayload
	decodePayload(c, &p)

	if err := h.service.UpdatePassword(c.Request().Context(), p.UserID, p.Password); err != nil {
		return h.fail(c, err)
	}
	return h.respond(c, http.StatusOK, map[string]string{"message": "Password updated successfully"})
}

// DeleteUser removes an identity (DELETE /user?user_id=).
func (h *Handler) DeleteUser(c echo.Context) error {
	if err := h.service.DeleteUser(c.Request().Context(), c.QueryParam("user_id")); err != nil {
		return h.fail(c, err)
	}
	return h.respond(c, http.StatusOK, map[string]string{"message": "User deleted successfully"})
}

// History lists a user's posters (GET /history?user_id=).
func (h *Handler) History(c echo.Context) error {
	items, err := h.service.History(c.Request().Context(), c.QueryParam("user_id"))
	if err != nil {
		return h.fail(c, err)
	}
	return h.respond(c, http.StatusOK, items)
}

// Pay marks a poster paid (POST /pay).
func (h *Handler) Pay(c echo.Context) error {
	var p paymentPayload
	decodePayload(c, &p)

	if err := h.service.MarkPaid(c.Request().Context(), p.UserID, p.PromptUsed); err != nil {
		return h.fail(c, err)
	}
	return h.respond(c, http.StatusOK, map[string]string{
		"message": "Payment marked successful for the specific poster.",
	})
}

// Generate renders a poster (GET or POST /movie-poster-api-design). The
// query string wins; the body is read only when it has no prompt.
func (h *Handler) Generate(c echo.Context) error {
	p := generatePayload{
		UserID: c.QueryParam("user_id"),
		Prompt: c.QueryParam("prompt"),
	}
	if p.Prompt == "" {
		decodePayload(c, &p)
	}

	url, err := h.service.Generate(c.Request().Context(), p.UserID, p.Prompt)
	if err != nil {
		return h.fail(c, err)
	}
	return h.respond(c, http.StatusOK, map[string]string{"poster_url": url})
}

// Healthz reports liveness (GET /healthz).
func (h *Handler) Healthz(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// ErrorHandler renders router errors (404, 405) in the same format as
// handler errors.
func (h *Handler) ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	var echoErr *echo.HTTPError
	if errors.As(err, &echoErr) {
		msg, ok := echoErr.Message.(string)
		if !ok {
			msg = http.StatusText(echoErr.Code)
		}
		h.respond(c, echoErr.Code, map[string]string{"error": msg})
		return
	}
	h.fail(c, err)
}

// fail writes err as {"error": message}. Internal causes are logged, not sent.
func (h *Handler) fail(c echo.Context, err error) error {
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		appErr = apperror.NewInternal(err)
	}
	if appErr.Code >= http.StatusInternalServerError {
		slog.Error("poster api request failed",
			slog.String("path", c.Path()),
			slog.Any("error", err),
		)
	}

	message := appErr.Message
	if appErr.Type == apperror.TypeInternal {
		message = "Internal server error. Please try again later."
	}
	return h.respond(c, appErr.Code, map[string]string{"error": message})
}

// respond writes payload directly or wrapped in an envelope.
func (h *Handler) respond(c echo.Context, code int, payload any) error {
	if !h.envelopes {
		return c.JSON(code, payload)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{
		"statusCode": code,
		"body":       string(body),
	})
}

// decodePayload reads a JSON object body, or a JSON string holding one.
// Anything else leaves dst untouched, so missing fields surface as
// validation errors instead of decode errors.
func decodePayload(c echo.Context, dst any) {
	raw, err := io.ReadAll(io.LimitReader(c.Request().Body, maxBodyBytes))
	if err != nil || len(raw) == 0 {
		return
	}
	if json.Unmarshal(raw, dst) == nil {
		return
	}

	var inner string
	if json.Unmarshal(raw, &inner) != nil {
		return
	}
	if err := json.Unmarshal([]byte(inner), dst); err != nil {
		slog.Debug("ignoring undecodable request body", slog.String("path", c.Path()))
	}
}
