package auth

import (
	"context"
	"net/http"
	"net/url"

	"github.com/keyxmakerx/posterdesk/internal/upstream"
)

// IdentityClient is the contract of the identity collaborator. All errors
// are *apperror.AppError values produced by upstream.Client.
type IdentityClient interface {
	GetUser(ctx context.Context, userID string) (*User, error)
	CreateUser(ctx context.Context, userID, passwordDigest string) error
	UpdatePassword(ctx context.Context, userID, newPassword string) error
	DeleteUser(ctx context.Context, userID string) error
}

// httpIdentityClient calls the identity collaborator over HTTP.
type httpIdentityClient struct {
	client  *upstream.Client
	userURL string
}

// NewIdentityClient creates an identity client for the given /user endpoint.
func NewIdentityClient(client *upstream.Client, userURL string) IdentityClient {
	return &httpIdentityClient{client: client, userURL: userURL}
}

// GetUser fetches an identity record. The digest is read from
// "password_digest", falling back to the legacy "password" key.
func (c *httpIdentityClient) GetUser(ctx context.Context, userID string) (*User, error) {
	res, err := c.client.Do(ctx, upstream.Request{
		Name:   "identity.get",
		Method: http.MethodGet,
		URL:    c.userURL,
		Query:  url.Values{"user_id": {userID}},
		Shape:  upstream.ShapeObject,
	})
	if err != nil {
		return nil, err
	}

	user := &User{UserID: userID}
	if res.Object == nil {
		return user, nil
	}
	if id, ok := res.Object["user_id"].(string); ok && id != "" {
		user.UserID = id
	}
	if digest, ok := res.Object["password_digest"].(string); ok {
		user.PasswordDigest = digest
	} else if digest, ok := res.Object["password"].(string); ok {
		user.PasswordDigest = digest
	}

	return user, nil
}

// CreateUser stores a new identity with an already-hashed password.
func (c *httpIdentityClient) CreateUser(ctx context.Context, userID, passwordDigest string) error {
	_, err := c.client.Do(ctx, upstream.Request{
		Name:   "identity.create",
		Method: http.MethodPost,
		URL:    c.userURL,
		Body: map[string]string{
			"user_id":         userID,
			"password_digest": passwordDigest,
		},
		Shape: upstream.ShapeObject,
	})
	return err
}

// UpdatePassword sends the new plaintext password; the collaborator
// rehashes it with the same digest function before overwriting.
func (c *httpIdentityClient) UpdatePassword(ctx context.Context, userID, newPassword string) error {
	_, err := c.client.Do(ctx, upstream.Request{
		Name:   "identity.update",
		Method: http.MethodPut,
		URL:    c.userURL,
		Body: map[string]string{
			"user_id":  userID,
			"password": newPassword,
		},
		Shape: upstream.ShapeObject,
	})
	return err
}

// DeleteUser removes the identity record.
func (c *httpIdentityClient) DeleteUser(ctx context.Context, userID string) error {
	_, err := c.client.Do(ctx, upstream.Request{
		Name:   "identity.delete",
		Method: http.MethodDelete,
		URL:    c.userURL,
		Query:  url.Values{"user_id": {userID}},
		Shape:  upstream.ShapeObject,
	})
	return err
}
