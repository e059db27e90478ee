package middleware

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"net/http"

	"github.com/labstack/echo/v4"
)

// csrfTokenLength is the number of random bytes in a CSRF token (32 bytes = 64 hex chars).
const csrfTokenLength = 32

// CSRFCookieName is the name of the cookie that stores the CSRF token.
const CSRFCookieName = "posterdesk_csrf"

// csrfHeaderName lets scripted clients send the token without a form body.
const csrfHeaderName = "X-CSRF-Token"

// CSRFFormField is the hidden form field every POST form carries.
const CSRFFormField = "csrf_token"

// contextKeyCSRFToken holds the request's token for templates.
const contextKeyCSRFToken = "csrf_token"

// CSRF returns global middleware for the double-submit cookie pattern. It
// only hands out tokens: a safe request without a CSRF cookie gets a fresh
// one, and the token is stored for GetCSRFToken so forms can embed it.
//
// Verification is per route (VerifyCSRF) so that session-gated routes can
// run their auth check first.
func CSRF() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()

			if token := csrfCookie(c); token != "" {
				c.Set(contextKeyCSRFToken, token)
				return next(c)
			}

			// A mutating request without a cookie fails verification anyway;
			// issuing one here would be a side effect before the auth check.
			if !isSafeMethod(req.Method) {
				return next(c)
			}

			token, err := generateCSRFToken()
			if err != nil {
				return echo.NewHTTPError(http.StatusInternalServerError, "failed to generate CSRF token")
			}
			c.SetCookie(&http.Cookie{
				Name:     CSRFCookieName,
				Value:    token,
				Path:     "/",
				HttpOnly: true,
				Secure:   req.TLS != nil || req.Header.Get("X-Forwarded-Proto") == "https",
				SameSite: http.SameSiteLaxMode,
			})
			c.Set(contextKeyCSRFToken, token)
			return next(c)
		}
	}
}

// VerifyCSRF returns route middleware that rejects a mutating request with
// 403 unless the csrf_token form field or the X-CSRF-Token header equals
// the CSRF cookie. Safe methods pass through.
func VerifyCSRF() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if isSafeMethod(req.Method) {
				return next(c)
			}

			cookieToken := csrfCookie(c)
			submitted := req.Header.Get(csrfHeaderName)
			if submitted == "" {
				submitted = req.FormValue(CSRFFormField)
			}

			if cookieToken == "" || submitted == "" ||
				subtle.ConstantTimeCompare([]byte(submitted), []byte(cookieToken)) != 1 {
				return echo.NewHTTPError(http.StatusForbidden, "invalid or missing CSRF token")
			}

			return next(c)
		}
	}
}

// csrfCookie returns the request's CSRF cookie value, or "".
func csrfCookie(c echo.Context) string {
	cookie, err := c.Cookie(CSRFCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// isSafeMethod returns true for HTTP methods that should not change state.
func isSafeMethod(method string) bool {
	return method == http.MethodGet ||
		method == http.MethodHead ||
		method == http.MethodOptions
}

// generateCSRFToken generates a cryptographically random hex-encoded token.
func generateCSRFToken() (string, error) {
	b := make([]byte, csrfTokenLength)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// GetCSRFToken retrieves the CSRF token from the Echo context for embedding
// in forms.
func GetCSRFToken(c echo.Context) string {
	if token, ok := c.Get(contextKeyCSRFToken).(string); ok {
		return token
	}
	return ""
}
