package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/keyxmakerx/posterdesk/internal/apperror"
)

// maxResponseBytes caps how much of a collaborator reply is read.
const maxResponseBytes = 4 << 20

// Request describes one collaborator call.
type Request struct {
	// Name labels the call in logs (e.g., "identity.get").
	Name string

	Method string
	URL    string

	// Query is appended to URL when non-empty.
	Query url.Values

	// Body is JSON-encoded as the request body when non-nil.
	Body any

	// Shape is the payload shape expected on success.
	Shape Shape
}

// Client performs collaborator calls and normalizes their replies. Every
// failure it returns is an *apperror.AppError of type TypeTransport,
// TypeUpstreamStatus or TypeUpstream.
type Client struct {
	http *http.Client
}

// NewClient creates a client whose requests are bounded by timeout at the
// transport layer.
func NewClient(timeout time.Duration) *Client {
	return &Client{http: &http.Client{Timeout: timeout}}
}

// NewClientWithHTTP wraps an existing *http.Client (tests, custom transports).
func NewClientWithHTTP(hc *http.Client) *Client {
	return &Client{http: hc}
}

// Do sends req and returns the normalized reply. Shape anomalies are logged
// and returned as a StatusPartial result with a nil error.
func (c *Client) Do(ctx context.Context, req Request) (Result, error) {
	target := req.URL
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	var body io.Reader
	if req.Body != nil {
		data, err := json.Marshal(req.Body)
		if err != nil {
			return Result{}, apperror.NewInternal(fmt.Errorf("encoding %s request: %w", req.Name, err))
		}
		body = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return Result{}, apperror.NewInternal(fmt.Errorf("building %s request: %w", req.Name, err))
	}
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		return Result{}, apperror.NewUnavailable(fmt.Errorf("calling %s: %w", req.Name, err))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return Result{}, apperror.NewUnavailable(fmt.Errorf("reading %s response: %w", req.Name, err))
	}

	slog.Debug("upstream call",
		slog.String("call", req.Name),
		slog.String("method", req.Method),
		slog.Int("status", resp.StatusCode),
		slog.Duration("latency", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Prefer the collaborator's own error text over the raw envelope.
		message := strings.TrimSpace(string(raw))
		if res := Normalize(raw, ShapeObject); res.IsError() {
			message = res.Message
		}
		return Result{}, apperror.NewUpstreamStatus(resp.StatusCode, message)
	}

	res := Normalize(raw, req.Shape)
	if len(res.Warnings) > 0 {
		slog.Warn("upstream payload normalized with anomalies",
			slog.String("call", req.Name),
			slog.String("status", res.Status.String()),
			slog.Any("warnings", res.Warnings),
		)
	}
	if res.IsError() {
		return res, apperror.NewUpstream(res.Message)
	}

	return res, nil
}
