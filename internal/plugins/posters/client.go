package posters

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/keyxmakerx/posterdesk/internal/upstream"
)

// PosterClient is the contract of the generation, payment and history
// collaborators. All errors are *apperror.AppError values produced by
// upstream.Client.
type PosterClient interface {
	History(ctx context.Context, userID string) ([]Record, error)
	Generate(ctx context.Context, userID, prompt string) (posterURL string, err error)
	Unlock(ctx context.Context, userID, promptUsed string) error
}

// httpPosterClient calls the poster collaborators under one base URL.
type httpPosterClient struct {
	client *upstream.Client
	base   string
}

// NewPosterClient creates a client for the collaborators rooted at base.
func NewPosterClient(client *upstream.Client, base string) PosterClient {
	return &httpPosterClient{client: client, base: base}
}

// History returns the user's records in collaborator order. Elements that
// could not be decoded were already dropped by the normalizer.
func (c *httpPosterClient) History(ctx context.Context, userID string) ([]Record, error) {
	res, err := c.client.Do(ctx, upstream.Request{
		Name:   "history",
		Method: http.MethodGet,
		URL:    c.base + "/history",
		Query:  url.Values{"user_id": {userID}},
		Shape:  upstream.ShapeList,
	})
	if err != nil {
		return nil, err
	}

	records := make([]Record, 0, len(res.List))
	for _, m := range res.List {
		records = append(records, recordFromMap(m))
	}
	return records, nil
}

// Generate asks for a new poster. The collaborator records an unpaid
// history entry as a side effect.
func (c *httpPosterClient) Generate(ctx context.Context, userID, prompt string) (string, error) {
	res, err := c.client.Do(ctx, upstream.Request{
		Name:   "generate",
		Method: http.MethodGet,
		URL:    c.base + "/movie-poster-api-design",
		Query:  url.Values{"user_id": {userID}, "prompt": {prompt}},
		Shape:  upstream.ShapeObject,
	})
	if err != nil {
		return "", err
	}

	posterURL, _ := res.Object["poster_url"].(string)
	if posterURL == "" {
		slog.Warn("generation succeeded without a poster_url", slog.String("user_id", userID))
	}
	return posterURL, nil
}

// Unlock marks the first unpaid record with this exact prompt as paid.
func (c *httpPosterClient) Unlock(ctx context.Context, userID, promptUsed string) error {
	_, err := c.client.Do(ctx, upstream.Request{
		Name:   "pay",
		Method: http.MethodPost,
		URL:    c.base + "/pay",
		Body: map[string]string{
			"user_id":     userID,
			"prompt_used": promptUsed,
		},
		Shape: upstream.ShapeObject,
	})
	return err
}
