package middleware

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo/v4"
)

// flashCookieName is the signed cookie that carries one-shot flash messages
// across a redirect.
const flashCookieName = "posterdesk_flash"

// contextKeyFlashStore holds the cookie store for the current request.
const contextKeyFlashStore = "flash_store"

// Flash returns middleware that makes AddFlash and TakeFlashes available to
// handlers. Messages are kept in a cookie signed with secret, so they survive
// the POST/redirect/GET cycle without server-side state.
func Flash(secret []byte) echo.MiddlewareFunc {
	store := sessions.NewCookieStore(secret)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   0,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(contextKeyFlashStore, store)
			return next(c)
		}
	}
}

// flashSession returns the request's flash session. A cookie that fails to
// verify (for example after a secret change) yields a fresh, empty session.
func flashSession(c echo.Context) *sessions.Session {
	store, ok := c.Get(contextKeyFlashStore).(*sessions.CookieStore)
	if !ok {
		return nil
	}

	req := c.Request()
	sess, err := store.Get(req, flashCookieName)
	if err != nil {
		slog.Debug("discarding unreadable flash cookie", slog.Any("error", err))
	}
	if sess == nil {
		return nil
	}
	sess.Options.Secure = req.TLS != nil || req.Header.Get("X-Forwarded-Proto") == "https"
	return sess
}

// AddFlash queues a message for the next rendered page. It writes a cookie,
// so call it before the response body is written.
func AddFlash(c echo.Context, message string) {
	sess := flashSession(c)
	if sess == nil {
		slog.Warn("flash middleware not installed; dropping message", slog.String("message", message))
		return
	}

	sess.AddFlash(message)
	if err := sess.Save(c.Request(), c.Response()); err != nil {
		slog.Error("saving flash message", slog.Any("error", err))
	}
}

// TakeFlashes returns the queued messages in order and clears them.
func TakeFlashes(c echo.Context) []string {
	sess := flashSession(c)
	if sess == nil {
		return nil
	}

	raw := sess.Flashes()
	if len(raw) == 0 {
		return nil
	}
	if err := sess.Save(c.Request(), c.Response()); err != nil {
		slog.Error("clearing flash messages", slog.Any("error", err))
	}

	messages := make([]string, 0, len(raw))
	for _, f := range raw {
		if s, ok := f.(string); ok {
			messages = append(messages, s)
		}
	}
	return messages
}
