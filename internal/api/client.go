// Package api contains all HTTP access to the CampEase backend.
// Each resource has its own file with the endpoint methods and the tolerant
// decoding of its wire shapes. No business logic lives here — only requests,
// status mapping, and type normalization.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/campease/client/internal/domain"
)

// TokenSource supplies the bearer token for authenticated requests.
// The session store implements it; an empty string means "no session" and
// the request is sent unauthenticated.
type TokenSource interface {
	Token() string
}

// StaticToken is a TokenSource returning a fixed token. Useful in tests and
// for one-off authenticated calls.
type StaticToken string

func (s StaticToken) Token() string { return string(s) }

// TokenFunc adapts a plain function to a TokenSource, the way
// http.HandlerFunc adapts functions to http.Handler. Lets wiring code break
// the client ↔ session construction cycle with a late-bound lookup.
type TokenFunc func() string

func (f TokenFunc) Token() string { return f() }

// Client talks to the CampEase backend REST API.
// It is safe for concurrent use: the poller goroutine and UI calls share one
// instance.
type Client struct {
	baseURL string
	http    *http.Client
	log     *slog.Logger
	token   TokenSource
}

// New constructs a Client for the given base URL.
// The supplied http.Client's transport is wrapped with request logging;
// pass nil to use a default client. token may be nil for a client that only
// ever calls public endpoints.
func New(baseURL string, httpClient *http.Client, token TokenSource, log *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	// Copy so wrapping the transport does not mutate the caller's client.
	hc := *httpClient
	hc.Transport = newLoggingTransport(hc.Transport, log)

	if token == nil {
		token = StaticToken("")
	}

	return &Client{
		baseURL: baseURL,
		http:    &hc,
		log:     log,
		token:   token,
	}
}

// do issues one request and decodes the response body into out (unless out
// is nil). Error statuses are mapped to domain sentinels before out is
// considered, so callers can errors.Is on the result.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("api.Client.do: marshal body: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("api.Client.do: build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok := c.token.Token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("api.Client.do: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if err := mapStatus(resp.StatusCode); err != nil {
		// Drain so the connection can be reused.
		io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("api.Client.do: %s %s: %w", method, path, err)
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("api.Client.do: %s %s: %w: %v", method, path, domain.ErrDecode, err)
	}
	return nil
}

// mapStatus converts HTTP error statuses to domain sentinel errors.
func mapStatus(code int) error {
	switch {
	case code < 400:
		return nil
	case code == http.StatusUnauthorized:
		return domain.ErrUnauthorized
	case code == http.StatusForbidden:
		return domain.ErrAccessDenied
	case code == http.StatusNotFound:
		return domain.ErrNotFound
	default:
		return fmt.Errorf("unexpected status %d", code)
	}
}

// envelope is the backend's canonical response wrapper.
// Endpoint-specific fields (unreadCount, notifications, …) live on the
// endpoint response structs, which embed this.
type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// check converts an unsuccessful envelope into an error carrying the
// backend's message, or nil when the envelope reports success.
func (e envelope) check() error {
	if e.Success {
		return nil
	}
	if e.Message == "" {
		return fmt.Errorf("backend reported failure")
	}
	return fmt.Errorf("backend reported failure: %s", e.Message)
}
