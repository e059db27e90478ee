package posters

import (
	"context"
	"log/slog"
	"strings"

	"github.com/keyxmakerx/posterdesk/internal/apperror"
)

// PosterService defines the business logic for the poster dashboard.
type PosterService interface {
	Dashboard(ctx context.Context, userID string) ([]ViewRecord, error)
	Generate(ctx context.Context, userID, prompt string) error
	Unlock(ctx context.Context, userID, promptUsed string) error
}

// posterService implements PosterService over a PosterClient.
type posterService struct {
	client PosterClient
}

// NewPosterService creates a new poster service.
func NewPosterService(client PosterClient) PosterService {
	return &posterService{client: client}
}

// Dashboard loads the user's history and hides the URLs of unpaid posters.
func (s *posterService) Dashboard(ctx context.Context, userID string) ([]ViewRecord, error) {
	if userID == "" {
		return nil, apperror.NewUnauthorized("authentication required")
	}

	records, err := s.client.History(ctx, userID)
	if err != nil {
		return []ViewRecord{}, err
	}
	return BuildView(records), nil
}

// Generate trims the prompt and requests a poster. The prompt is otherwise
// sent as typed, since it is later matched by equality on unlock. An empty
// prompt never reaches the collaborator.
func (s *posterService) Generate(ctx context.Context, userID, prompt string) error {
	if userID == "" {
		return apperror.NewUnauthorized("authentication required")
	}
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return apperror.NewValidation("Please describe the poster you want.")
	}

	url, err := s.client.Generate(ctx, userID, prompt)
	if err != nil {
		return err
	}

	slog.Info("poster generated",
		slog.String("user_id", userID),
		slog.Bool("has_url", url != ""),
	)
	return nil
}

// Unlock pays for the poster generated from promptUsed. The prompt is sent
// exactly as it was stored, since the collaborator matches on equality.
func (s *posterService) Unlock(ctx context.Context, userID, promptUsed string) error {
	if userID == "" {
		return apperror.NewUnauthorized("authentication required")
	}
	if strings.TrimSpace(promptUsed) == "" {
		return apperror.NewValidation("No poster selected.")
	}

	if err := s.client.Unlock(ctx, userID, promptUsed); err != nil {
		return err
	}

	slog.Info("poster unlocked", slog.String("user_id", userID))
	return nil
}
