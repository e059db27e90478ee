package auth

import (
	"context"
	"log/slog"
	"strings"

	"github.com/keyxmakerx/posterdesk/internal/apperror"
)

// AuthService defines the business logic contract for authentication.
// Handlers call these methods -- they never talk to the identity
// collaborator directly. Session state is handled by SessionManager.
type AuthService interface {
	Signup(ctx context.Context, input SignupInput) error
	Login(ctx context.Context, input LoginInput) (*User, error)
	ChangePassword(ctx context.Context, userID, password, confirm string) error
	DeleteAccount(ctx context.Context, userID string) error
}

// authService implements AuthService over an IdentityClient.
type authService struct {
	identity IdentityClient
}

// NewAuthService creates a new auth service with the given dependencies.
func NewAuthService(identity IdentityClient) AuthService {
	return &authService{identity: identity}
}

// Signup hashes the password and stores a new identity. Missing fields are
// rejected before the collaborator is called.
func (s *authService) Signup(ctx context.Context, input SignupInput) error {
	userID := strings.TrimSpace(input.UserID)
	if userID == "" || input.Password == "" {
		return apperror.NewValidation("email and password are required")
	}

	if err := s.identity.CreateUser(ctx, userID, HashPassword(input.Password)); err != nil {
		return err
	}

	slog.Info("user signed up", slog.String("user_id", userID))
	return nil
}

// Login fetches the identity and compares digests. A mismatch is an
// Unauthorized error; collaborator failures are returned unchanged so the
// handler can tell "not found" apart from "unreachable".
func (s *authService) Login(ctx context.Context, input LoginInput) (*User, error) {
	userID := strings.TrimSpace(input.UserID)
	if userID == "" || input.Password == "" {
		return nil, apperror.NewValidation("email and password are required")
	}

	user, err := s.identity.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if !VerifyPassword(input.Password, user.PasswordDigest) {
		slog.Info("login rejected", slog.String("user_id", userID))
		return nil, apperror.NewUnauthorized("Invalid password")
	}

	// The session is keyed on the identifier the user typed.
	user.UserID = userID
	return user, nil
}

// ChangePassword replaces the user's password. The collaborator receives the
// plaintext and rehashes it.
func (s *authService) ChangePassword(ctx context.Context, userID, password, confirm string) error {
	if userID == "" {
		return apperror.NewUnauthorized("authentication required")
	}
	if password == "" {
		return apperror.NewValidation("new password is required")
	}
	if password != confirm {
		return apperror.NewValidation("passwords do not match")
	}

	if err := s.identity.UpdatePassword(ctx, userID, password); err != nil {
		return err
	}

	slog.Info("password changed", slog.String("user_id", userID))
	return nil
}

// DeleteAccount removes the identity. Poster history stays with the
// history collaborator.
func (s *authService) DeleteAccount(ctx context.Context, userID string) error {
	if userID == "" {
		return apperror.NewUnauthorized("authentication required")
	}

	if err := s.identity.DeleteUser(ctx, userID); err != nil {
		return err
	}

	slog.Info("account deleted", slog.String("user_id", userID))
	return nil
}
