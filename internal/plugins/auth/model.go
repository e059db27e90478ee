// Package auth handles signup, login, logout and session tracking for
// Posterdesk. Identities live in the external identity collaborator; this
// package only hashes passwords, compares digests, and keeps track of who is
// logged in through a token-keyed session store plus an expiry-sentinel
// cookie.
package auth

import (
	"time"
)

// User is an identity record as returned by the identity collaborator.
// PasswordDigest is the hex SHA-256 digest produced by HashPassword.
type User struct {
	UserID         string `json:"user_id"`
	PasswordDigest string `json:"-"` // Never expose in JSON responses.
}

// --- Request DTOs (bound from HTTP requests) ---

// LoginRequest holds the data submitted by the login form. The form field
// is named "email" but the value is used as an opaque user identifier.
type LoginRequest struct {
	Email    string `form:"email"`
	Password string `form:"password"`
}

// SignupRequest holds the data submitted by the signup form.
type SignupRequest struct {
	Email    string `form:"email"`
	Password string `form:"password"`
}

// ChangePasswordRequest holds the data submitted by the password form.
type ChangePasswordRequest struct {
	Password string `form:"password"`
	Confirm  string `form:"confirm"`
}

// --- Service Input DTOs (passed from handler to service) ---

// SignupInput is the input for creating a new identity.
type SignupInput struct {
	UserID   string
	Password string
}

// LoginInput is the input for authenticating a user.
type LoginInput struct {
	UserID   string
	Password string
}

// --- Session ---

// Session represents a logged-in browser session stored under a random
// token. A session with an empty UserID is anonymous and is never treated
// as authenticated.
type Session struct {
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`

	// Permanent means the expiry is enforced by duration (persistent cookie
	// with MaxAge) rather than by the browser closing.
	Permanent bool `json:"permanent"`
}

// IsAnonymous reports whether the session carries no user.
func (s *Session) IsAnonymous() bool {
	return s == nil || s.UserID == ""
}

// Expired reports whether the session's absolute lifetime has passed.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}
