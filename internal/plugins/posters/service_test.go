package posters

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/keyxmakerx/posterdesk/internal/apperror"
)

// mockPosterClient implements PosterClient for testing.
type mockPosterClient struct {
	historyFn  func(ctx context.Context, userID string) ([]Record, error)
	generateFn func(ctx context.Context, userID, prompt string) (string, error)
	unlockFn   func(ctx context.Context, userID, promptUsed string) error

	calls int
}

func (m *mockPosterClient) History(ctx context.Context, userID string) ([]Record, error) {
	m.calls++
	if m.historyFn != nil {
		return m.historyFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockPosterClient) Generate(ctx context.Context, userID, prompt string) (string, error) {
	m.calls++
	if m.generateFn != nil {
		return m.generateFn(ctx, userID, prompt)
	}
	return "https://bucket.s3.amazonaws.com/poster.png", nil
}

func (m *mockPosterClient) Unlock(ctx context.Context, userID, promptUsed string) error {
	m.calls++
	if m.unlockFn != nil {
		return m.unlockFn(ctx, userID, promptUsed)
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

func TestDashboard_BuildsView(t *testing.T) {
	client := &mockPosterClient{
		historyFn: func(_ context.Context, userID string) ([]Record, error) {
			if userID != "a@b.com" {
				t.Errorf("unexpected user %q", userID)
			}
			return []Record{{PromptUsed: "x", PosterURL: strPtr("http://x"), Paid: false}}, nil
		},
	}

	views, err := NewPosterService(client).Dashboard(context.Background(), "a@b.com")
	if err != nil {
		t.Fatalf("Dashboard: %v", err)
	}
	if len(views) != 1 || !views[0].Locked || views[0].PosterURL != nil {
		t.Errorf("expected one locked view, got %+v", views)
	}
}

func TestDashboard_ErrorStillReturnsEmptyList(t *testing.T) {
	client := &mockPosterClient{
		historyFn: func(context.Context, string) ([]Record, error) {
			return nil, apperror.NewUnavailable(errors.New("dial tcp: refused"))
		},
	}

	views, err := NewPosterService(client).Dashboard(context.Background(), "a@b.com")
	assertAppError(t, err, apperror.TypeTransport)
	if views == nil || len(views) != 0 {
		t.Errorf("expected empty list alongside the error, got %#v", views)
	}
}

func TestGenerate_SendsPromptAsTyped(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"  a castle  ", "a castle"},
		{"Alien vs <Predator> in space", "Alien vs <Predator> in space"},
		{"line one\nline two", "line one\nline two"},
		{"\t<b>bold</b> & more\n", "<b>bold</b> & more"},
	}
	for _, tt := range tests {
		var sent string
		client := &mockPosterClient{
			generateFn: func(_ context.Context, _, prompt string) (string, error) {
				sent = prompt
				return "u", nil
			},
		}
		if err := NewPosterService(client).Generate(context.Background(), "a@b.com", tt.in); err != nil {
			t.Fatalf("Generate(%q): %v", tt.in, err)
		}
		if sent != tt.want {
			t.Errorf("Generate(%q) sent %q, want %q", tt.in, sent, tt.want)
		}
	}
}

func TestGenerate_EmptyPrompt(t *testing.T) {
	for _, prompt := range []string{"", "   ", "\n\t "} {
		client := &mockPosterClient{}
		err := NewPosterService(client).Generate(context.Background(), "a@b.com", prompt)
		assertAppError(t, err, apperror.TypeValidation)
		if client.calls != 0 {
			t.Errorf("prompt %q must be rejected before the collaborator call", prompt)
		}
	}
}

func TestGenerate_Unauthenticated(t *testing.T) {
	client := &mockPosterClient{}
	err := NewPosterService(client).Generate(context.Background(), "", "a castle")
	assertAppError(t, err, apperror.TypeUnauthorized)
	if client.calls != 0 {
		t.Error("anonymous requests must not reach the collaborator")
	}
}

func TestUnlock_SendsPromptVerbatim(t *testing.T) {
	var sent string
	client := &mockPosterClient{
		unlockFn: func(_ context.Context, _, promptUsed string) error {
			sent = promptUsed
			return nil
		},
	}

	prompt := "  Tom & Jerry  "
	if err := NewPosterService(client).Unlock(context.Background(), "a@b.com", prompt); err != nil {
		t.Fatalf("Unlock: %v", err)
	}
	if sent != prompt {
		t.Errorf("expected exact prompt %q, got %q", prompt, sent)
	}
}

func TestUnlock_Errors(t *testing.T) {
	client := &mockPosterClient{}
	assertAppError(t, NewPosterService(client).Unlock(context.Background(), "a@b.com", " "), apperror.TypeValidation)
	if client.calls != 0 {
		t.Error("empty prompt must be rejected before the collaborator call")
	}

	client.unlockFn = func(context.Context, string, string) error {
		return apperror.NewUpstreamStatus(http.StatusNotFound, `{"error": "Poster not found"}`)
	}
	err := NewPosterService(client).Unlock(context.Background(), "a@b.com", "a castle")
	assertAppError(t, err, apperror.TypeUpstreamStatus)
}
