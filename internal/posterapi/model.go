// Package posterapi is the poster collaborator service: identity records,
// poster history, payment marking and poster generation, served over HTTP
// and backed by MariaDB. The web front end talks to it only through its
// HTTP interface.
package posterapi

import "time"

// TimestampLayout is how history timestamps are rendered on the wire.
// Microsecond precision keeps (user_id, timestamp) unique in practice.
const TimestampLayout = "2006-01-02T15:04:05.000000"

// DefaultUserID owns posters generated without a user_id.
const DefaultUserID = "anonymous_user"

// User is a stored identity. PasswordDigest is the hex SHA-256 of the
// password; the service never sees the plaintext except on update.
type User struct {
	UserID         string
	PasswordDigest string
	CreatedAt      time.Time
}

// Poster is one row of poster history.
type Poster struct {
	ID         int64
	UserID     string
	PromptUsed string
	PosterURL  string
	Paid       bool
	CreatedAt  time.Time
}

// HistoryItem is the wire form of a history row. PosterURL is null for
// unpaid posters.
type HistoryItem struct {
	UserID     string  `json:"user_id"`
	PromptUsed string  `json:"prompt_used"`
	PosterURL  *string `json:"poster_url"`
	Paid       bool    `json:"paid"`
	Locked     bool    `json:"locked"`
	Timestamp  string  `json:"timestamp"`
}

// toHistoryItem hides the URL of unpaid posters.
func (p Poster) toHistoryItem() HistoryItem {
	item := HistoryItem{
		UserID:     p.UserID,
		PromptUsed: p.PromptUsed,
		Paid:       p.Paid,
		Locked:     !p.Paid,
		Timestamp:  p.CreatedAt.UTC().Format(TimestampLayout),
	}
	if p.Paid {
		url := p.PosterURL
		item.PosterURL = &url
	}
	return item
}

// userPayload is the body accepted by create and update. Create takes the
// digest under "password_digest" or the legacy "password" key; update takes
// the new plaintext under "password".
type userPayload struct {
	UserID         string `json:"user_id"`
	Password       string `json:"password"`
	PasswordDigest string `json:"password_digest"`
}

// paymentPayload is the body accepted by /pay.
type paymentPayload struct {
	UserID     string `json:"user_id"`
	PromptUsed string `json:"prompt_used"`
}

// generatePayload is the body accepted by generation when the prompt is
// not in the query string.
type generatePayload struct {
	UserID string `json:"user_id"`
	Prompt string `json:"prompt"`
}
