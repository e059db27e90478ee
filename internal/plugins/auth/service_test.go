package auth

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/keyxmakerx/posterdesk/internal/apperror"
)

// --- Mock identity collaborator ---

// mockIdentity implements IdentityClient for testing.
type mockIdentity struct {
	getUserFn        func(ctx context.Context, userID string) (*User, error)
	createUserFn     func(ctx context.Context, userID, passwordDigest string) error
	updatePasswordFn func(ctx context.Context, userID, newPassword string) error
	deleteUserFn     func(ctx context.Context, userID string) error

	calls int
}

func (m *mockIdentity) GetUser(ctx context.Context, userID string) (*User, error) {
	m.calls++
	if m.getUserFn != nil {
		return m.getUserFn(ctx, userID)
	}
	return nil, apperror.NewUpstreamStatus(http.StatusNotFound, `{"error": "User not found"}`)
}

func (m *mockIdentity) CreateUser(ctx context.Context, userID, passwordDigest string) error {
	m.calls++
	if m.createUserFn != nil {
		return m.createUserFn(ctx, userID, passwordDigest)
	}
	return nil
}

func (m *mockIdentity) UpdatePassword(ctx context.Context, userID, newPassword string) error {
	m.calls++
	if m.updatePasswordFn != nil {
		return m.updatePasswordFn(ctx, userID, newPassword)
	}
	return nil
}

func (m *mockIdentity) DeleteUser(ctx context.Context, userID string) error {
	m.calls++
	if m.deleteUserFn != nil {
		return m.deleteUserFn(ctx, userID)
	}
	return nil
}

// assertAppError checks that err is an *apperror.AppError of the expected type.
func assertAppError(t *testing.T, err error, expectedType string) *apperror.AppError {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error of type %s, got nil", expectedType)
	}
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *apperror.AppError, got %T: %v", err, err)
	}
	if appErr.Type != expectedType {
		t.Errorf("expected type %s, got %s (message: %s)", expectedType, appErr.Type, appErr.Message)
	}
	return appErr
}

// --- Signup ---

func TestSignup_SendsDigest(t *testing.T) {
	var gotID, gotDigest string
	identity := &mockIdentity{
		createUserFn: func(_ context.Context, userID, digest string) error {
			gotID, gotDigest = userID, digest
			return nil
		},
	}
	svc := NewAuthService(identity)

	if err := svc.Signup(context.Background(), SignupInput{UserID: "  a@b.com ", Password: "secret"}); err != nil {
		t.Fatalf("Signup: %v", err)
	}
	if gotID != "a@b.com" {
		t.Errorf("expected trimmed user id, got %q", gotID)
	}
	if gotDigest != HashPassword("secret") {
		t.Errorf("expected digest of the password, got %q", gotDigest)
	}
	if gotDigest == "secret" {
		t.Error("plaintext must never be sent on signup")
	}
}

func TestSignup_Validation(t *testing.T) {
	tests := []struct {
		name  string
		input SignupInput
	}{
		{"missing email", SignupInput{Password: "secret"}},
		{"blank email", SignupInput{UserID: "   ", Password: "secret"}},
		{"missing password", SignupInput{UserID: "a@b.com"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			identity := &mockIdentity{}
			err := NewAuthService(identity).Signup(context.Background(), tt.input)
			assertAppError(t, err, apperror.TypeValidation)
			if identity.calls != 0 {
				t.Error("validation must happen before any collaborator call")
			}
		})
	}
}

func TestSignup_CollaboratorError(t *testing.T) {
	identity := &mockIdentity{
		createUserFn: func(context.Context, string, string) error {
			return apperror.NewUpstream("user already exists")
		},
	}
	err := NewAuthService(identity).Signup(context.Background(), SignupInput{UserID: "a@b.com", Password: "x"})
	appErr := assertAppError(t, err, apperror.TypeUpstream)
	if appErr.Message != "user already exists" {
		t.Errorf("expected collaborator message, got %q", appErr.Message)
	}
}

// --- Login ---

func TestLogin_Success(t *testing.T) {
	identity := &mockIdentity{
		getUserFn: func(_ context.Context, userID string) (*User, error) {
			return &User{UserID: userID, PasswordDigest: HashPassword("secret")}, nil
		},
	}

	user, err := NewAuthService(identity).Login(context.Background(), LoginInput{UserID: "a@b.com", Password: "secret"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if user.UserID != "a@b.com" {
		t.Errorf("expected a@b.com, got %q", user.UserID)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	identity := &mockIdentity{
		getUserFn: func(_ context.Context, userID string) (*User, error) {
			return &User{UserID: userID, PasswordDigest: HashPassword("secret")}, nil
		},
	}

	_, err := NewAuthService(identity).Login(context.Background(), LoginInput{UserID: "a@b.com", Password: "nope"})
	appErr := assertAppError(t, err, apperror.TypeUnauthorized)
	if appErr.Message != "Invalid password" {
		t.Errorf("unexpected message %q", appErr.Message)
	}
}

func TestLogin_MissingDigest(t *testing.T) {
	identity := &mockIdentity{
		getUserFn: func(_ context.Context, userID string) (*User, error) {
			return &User{UserID: userID}, nil
		},
	}
	_, err := NewAuthService(identity).Login(context.Background(), LoginInput{UserID: "a@b.com", Password: "x"})
	assertAppError(t, err, apperror.TypeUnauthorized)
}

func TestLogin_PassesThroughCollaboratorErrors(t *testing.T) {
	for _, typ := range []string{apperror.TypeUpstream, apperror.TypeUpstreamStatus, apperror.TypeTransport} {
		t.Run(typ, func(t *testing.T) {
			var want error
			switch typ {
			case apperror.TypeUpstream:
				want = apperror.NewUpstream("User not found")
			case apperror.TypeUpstreamStatus:
				want = apperror.NewUpstreamStatus(http.StatusNotFound, "")
			default:
				want = apperror.NewUnavailable(errors.New("connection refused"))
			}
			identity := &mockIdentity{
				getUserFn: func(context.Context, string) (*User, error) { return nil, want },
			}
			_, err := NewAuthService(identity).Login(context.Background(), LoginInput{UserID: "a@b.com", Password: "x"})
			assertAppError(t, err, typ)
		})
	}
}

func TestLogin_Validation(t *testing.T) {
	identity := &mockIdentity{}
	_, err := NewAuthService(identity).Login(context.Background(), LoginInput{UserID: "a@b.com"})
	assertAppError(t, err, apperror.TypeValidation)
	if identity.calls != 0 {
		t.Error("validation must happen before any collaborator call")
	}
}

// --- Account maintenance ---

func TestChangePassword(t *testing.T) {
	var sent string
	identity := &mockIdentity{
		updatePasswordFn: func(_ context.Context, _, newPassword string) error {
			sent = newPassword
			return nil
		},
	}
	svc := NewAuthService(identity)

	assertAppError(t, svc.ChangePassword(context.Background(), "a@b.com", "", ""), apperror.TypeValidation)
	assertAppError(t, svc.ChangePassword(context.Background(), "a@b.com", "one", "two"), apperror.TypeValidation)
	assertAppError(t, svc.ChangePassword(context.Background(), "", "one", "one"), apperror.TypeUnauthorized)
	if identity.calls != 0 {
		t.Fatal("rejected changes must not reach the collaborator")
	}

	if err := svc.ChangePassword(context.Background(), "a@b.com", "new", "new"); err != nil {
		t.Fatalf("ChangePassword: %v", err)
	}
	if sent != "new" {
		t.Errorf("expected plaintext to be sent for rehashing, got %q", sent)
	}
}

func TestDeleteAccount(t *testing.T) {
	var deleted string
	identity := &mockIdentity{
		deleteUserFn: func(_ context.Context, userID string) error {
			deleted = userID
			return nil
		},
	}
	svc := NewAuthService(identity)

	assertAppError(t, svc.DeleteAccount(context.Background(), ""), apperror.TypeUnauthorized)
	if err := svc.DeleteAccount(context.Background(), "a@b.com"); err != nil {
		t.Fatalf("DeleteAccount: %v", err)
	}
	if deleted != "a@b.com" {
		t.Errorf("expected a@b.com to be deleted, got %q", deleted)
	}
}
