package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/keyxmakerx/posterdesk/internal/apperror"
)

const (
	// sessionCookieName is the HTTP cookie used to store the session token.
	sessionCookieName = "posterdesk_session"

	// SentinelCookieName marks that this browser had a session. It carries
	// no authorization; it only lets the login page tell "expired" apart
	// from "never logged in".
	SentinelCookieName = "was_logged_in"

	// contextKeySessionState caches the resolved session for one request.
	contextKeySessionState = "auth_session_state"
)

// sessionTokenBytes is the number of random bytes in a session token.
// 32 bytes = 256 bits of entropy, hex-encoded to 64 characters.
const sessionTokenBytes = 32

// DefaultSessionTTL is the absolute lifetime of a login session.
const DefaultSessionTTL = time.Hour

// sessionState is what Current has resolved for the request so far.
type sessionState struct {
	session *Session

	// sentinelCleared is set once the sentinel was removed in this request;
	// the request still carries the old cookie.
	sentinelCleared bool
}

// state returns the request's cached session state, resolving it from the
// cookie on first use.
func (m *SessionManager) state(c echo.Context) *sessionState {
	if st, ok := c.Get(contextKeySessionState).(*sessionState); ok && st != nil {
		return st
	}
	st := &sessionState{session: m.resolve(c)}
	c.Set(contextKeySessionState, st)
	return st
}

// SessionManager tracks who is logged in. Sessions live in the injected
// store under a random token carried in a cookie; a separate sentinel
// cookie with the same lifetime records that a session existed.
//
// States: Anonymous -> Authenticated (Begin); Authenticated -> Anonymous
// (End or store expiry); Anonymous with sentinel -> expired detected ->
// Anonymous (DetectStale clears the sentinel).
type SessionManager struct {
	store SessionStore
	ttl   time.Duration
	now   func() time.Time
}

// NewSessionManager creates a manager over store. A non-positive ttl falls
// back to DefaultSessionTTL.
func NewSessionManager(store SessionStore, ttl time.Duration) *SessionManager {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionManager{store: store, ttl: ttl, now: time.Now}
}

// TTL returns the configured session lifetime.
func (m *SessionManager) TTL() time.Duration {
	return m.ttl
}

// Begin authenticates the request as userID: it stores a new permanent
// session expiring TTL from now, sets the session cookie, and sets the
// expiry sentinel with the same lifetime. Any session already attached to
// the request is discarded first.
func (m *SessionManager) Begin(c echo.Context, userID string) (*Session, error) {
	if userID == "" {
		return nil, apperror.NewBadRequest("cannot start a session without a user")
	}

	ctx := c.Request().Context()
	if old := getSessionToken(c); old != "" {
		if err := m.store.Delete(ctx, old); err != nil {
			slog.Warn("failed to discard previous session", slog.Any("error", err))
		}
	}

	token, err := generateSessionToken()
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("generating session token: %w", err))
	}

	now := m.now().UTC()
	session := &Session{
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(m.ttl),
		Permanent: true,
	}
	if err := m.store.Save(ctx, token, session, m.ttl); err != nil {
		return nil, err
	}

	m.setSessionCookie(c, token)
	m.setSentinelCookie(c)
	c.Set(contextKeySessionState, &sessionState{session: session})

	return session, nil
}

// Current returns the authenticated session for the request, if any.
// Missing, unknown, expired and anonymous sessions all report false. The
// result is cached on the echo context, and Begin/End update that cache so
// a later Current in the same request sees the change.
func (m *SessionManager) Current(c echo.Context) (*Session, bool) {
	st := m.state(c)
	if st.session.IsAnonymous() {
		return nil, false
	}
	return st.session, true
}

// resolve loads the session named by the request cookie.
func (m *SessionManager) resolve(c echo.Context) *Session {
	token := getSessionToken(c)
	if token == "" {
		return nil
	}

	session, err := m.store.Load(c.Request().Context(), token)
	if err != nil {
		if apperror.TypeOf(err) != apperror.TypeUnauthorized {
			slog.Error("loading session", slog.Any("error", err))
		}
		return nil
	}
	if session.IsAnonymous() || session.Expired(m.now()) {
		return nil
	}
	return session
}

// End clears all session state: the stored session, the session cookie,
// and the sentinel cookie.
func (m *SessionManager) End(c echo.Context) error {
	var err error
	if token := getSessionToken(c); token != "" {
		err = m.store.Delete(c.Request().Context(), token)
	}

	clearSessionCookie(c)
	clearSentinelCookie(c)
	c.Set(contextKeySessionState, &sessionState{sentinelCleared: true})

	return err
}

// DetectStale reports a session that expired on its own: no current
// session, but the sentinel cookie is still present. In that case the
// sentinel is cleared so the message shows only once. In every other case
// there is no side effect.
func (m *SessionManager) DetectStale(c echo.Context) bool {
	st := m.state(c)
	if !st.session.IsAnonymous() {
		return false
	}
	if st.sentinelCleared || !hasSentinel(c) {
		return false
	}
	clearSentinelCookie(c)
	st.sentinelCleared = true
	return true
}

// --- Cookie helpers ---

// getSessionToken reads the session token from the cookie.
func getSessionToken(c echo.Context) string {
	cookie, err := c.Cookie(sessionCookieName)
	if err != nil || cookie.Value == "" {
		return ""
	}
	return cookie.Value
}

func hasSentinel(c echo.Context) bool {
	cookie, err := c.Cookie(SentinelCookieName)
	return err == nil && cookie.Value != ""
}

// isSecure reports whether the request arrived over TLS, directly or via
// a terminating proxy.
func isSecure(c echo.Context) bool {
	req := c.Request()
	return req.TLS != nil || req.Header.Get("X-Forwarded-Proto") == "https"
}

// setSessionCookie sets the session cookie on the response. The cookie is
// HttpOnly (JS can't read it), Secure if behind TLS, and SameSite=Lax.
// MaxAge makes it survive browser restarts for the session's lifetime.
func (m *SessionManager) setSessionCookie(c echo.Context, token string) {
	c.SetCookie(&http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   isSecure(c),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(m.ttl / time.Second),
	})
}

// setSentinelCookie sets the expiry sentinel with the session's lifetime.
func (m *SessionManager) setSentinelCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     SentinelCookieName,
		Value:    "true",
		Path:     "/",
		HttpOnly: true,
		Secure:   isSecure(c),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(m.ttl / time.Second),
	})
}

// clearSessionCookie removes the session cookie by setting MaxAge to -1.
func clearSessionCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}

// clearSentinelCookie removes the expiry sentinel.
func clearSentinelCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     SentinelCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}

// generateSessionToken creates a cryptographically random hex-encoded token.
func generateSessionToken() (string, error) {
	b := make([]byte, sessionTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
