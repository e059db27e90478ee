package posterapi

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/keyxmakerx/posterdesk/internal/apperror"
	"github.com/keyxmakerx/posterdesk/internal/plugins/auth"
	"github.com/keyxmakerx/posterdesk/internal/sanitize"
)

// Service holds the business logic behind every collaborator endpoint.
type Service interface {
	CreateUser(ctx context.Context, userID, passwordDigest string) error
	GetUser(ctx context.Context, userID string) (*User, error)
	UpdatePassword(ctx context.Context, userID, password string) error
	DeleteUser(ctx context.Context, userID string) error

	History(ctx context.Context, userID string) ([]HistoryItem, error)
	MarkPaid(ctx context.Context, userID, promptUsed string) error
	Generate(ctx context.Context, userID, prompt string) (posterURL string, err error)
}

// service implements Service.
type service struct {
	users        UserRepository
	posters      PosterRepository
	renderer     Renderer
	store        PosterStore
	maxPromptLen int
	now          func() time.Time
}

// NewService creates the collaborator service. Prompts are cut to
// maxPromptLen characters before rendering.
func NewService(users UserRepository, posters PosterRepository, renderer Renderer, store PosterStore, maxPromptLen int) Service {
	return &service{
		users:        users,
		posters:      posters,
		renderer:     renderer,
		store:        store,
		maxPromptLen: maxPromptLen,
		now:          time.Now,
	}
}

// CreateUser stores a new identity. The digest arrives already hashed.
func (s *service) CreateUser(ctx context.Context, userID, passwordDigest string) error {
	userID = strings.TrimSpace(userID)
	if userID == "" || passwordDigest == "" {
		return apperror.NewBadRequest("user_id and password are required")
	}

	user := &User{
		UserID:         userID,
		PasswordDigest: passwordDigest,
		CreatedAt:      s.now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return err
	}

	slog.Info("user created", slog.String("user_id", userID))
	return nil
}

// GetUser returns the identity including its digest.
func (s *service) GetUser(ctx context.Context, userID string) (*User, error) {
	if userID == "" {
		return nil, apperror.NewBadRequest("user_id required")
	}
	return s.users.FindByID(ctx, userID)
}

// UpdatePassword rehashes the plaintext with the same digest function the
// front end uses at signup.
func (s *service) UpdatePassword(ctx context.Context, userID, password string) error {
	if userID == "" || password == "" {
		return apperror.NewBadRequest("user_id and new password required")
	}
	return s.users.UpdateDigest(ctx, userID, auth.HashPassword(password))
}

// DeleteUser removes the identity. History rows stay behind.
func (s *service) DeleteUser(ctx context.Context, userID string) error {
	if userID == "" {
		return apperror.NewBadRequest("user_id required")
	}
	if err := s.users.Delete(ctx, userID); err != nil {
		return err
	}
	slog.Info("user deleted", slog.String("user_id", userID))
	return nil
}

// History lists a registered user's posters with unpaid URLs hidden.
func (s *service) History(ctx context.Context, userID string) ([]HistoryItem, error) {
	if userID == "" {
		return nil, apperror.NewBadRequest("User ID is required.")
	}

	if _, err := s.users.FindByID(ctx, userID); err != nil {
		if apperror.TypeOf(err) == apperror.TypeNotFound {
			slog.Warn("history requested for unknown user", slog.String("user_id", userID))
			return nil, apperror.NewForbidden("User does not exist. Access denied.")
		}
		return nil, err
	}

	posters, err := s.posters.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	items := make([]HistoryItem, 0, len(posters))
	for _, p := range posters {
		items = append(items, p.toHistoryItem())
	}
	return items, nil
}

// MarkPaid records a payment for the poster generated from promptUsed.
func (s *service) MarkPaid(ctx context.Context, userID, promptUsed string) error {
	if userID == "" || promptUsed == "" {
		return apperror.NewBadRequest("User ID and prompt are required.")
	}
	if err := s.posters.MarkPaid(ctx, userID, promptUsed); err != nil {
		return err
	}
	slog.Info("poster paid", slog.String("user_id", userID))
	return nil
}

// Generate renders a poster for prompt, stores it and records an unpaid
// history row. An empty userID files the poster under DefaultUserID.
func (s *service) Generate(ctx context.Context, userID, prompt string) (string, error) {
	prompt = sanitize.Prompt(prompt, s.maxPromptLen)
	if prompt == "" {
		return "", apperror.NewBadRequest("Prompt is required.")
	}
	if userID = strings.TrimSpace(userID); userID == "" {
		userID = DefaultUserID
	}

	png, err := s.renderer.Render(ctx, prompt)
	if err != nil {
		return "", apperror.NewInternal(fmt.Errorf("rendering poster: %w", err))
	}

	now := s.now().UTC()
	url, err := s.store.Put(ctx, NewPosterKey(now), png)
	if err != nil {
		return "", apperror.NewInternal(err)
	}

	poster := &Poster{
		UserID:     userID,
		PromptUsed: prompt,
		PosterURL:  url,
		Paid:       false,
		CreatedAt:  now,
	}
	if err := s.posters.Create(ctx, poster); err != nil {
		return "", err
	}

	slog.Info("poster generated",
		slog.String("user_id", userID),
		slog.Int64("poster_id", poster.ID),
		slog.Int("bytes", len(png)),
	)
	return url, nil
}
