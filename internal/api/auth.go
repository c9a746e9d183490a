package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/campease/client/internal/domain"
)

// wireUser is the backend's user shape.
type wireUser struct {
	wireID
	Email       string            `json:"email"`
	Name        string            `json:"name"`
	Role        string            `json:"role"`
	Preferences map[string]string `json:"preferences"`
}

func (w wireUser) toDomain() domain.User {
	return domain.User{
		ID:          w.value(),
		Email:       w.Email,
		DisplayName: w.Name,
		Role:        userRole(w.Role),
		Preferences: w.Preferences,
	}
}

// authResponse is the envelope for POST /auth/login and /auth/register.
type authResponse struct {
	envelope
	Data struct {
		User  wireUser `json:"user"`
		Token string   `json:"token"`
	} `json:"data"`
}

// Login exchanges credentials for a session.
// Invalid credentials surface as domain.ErrUnauthorized.
func (c *Client) Login(ctx context.Context, email, password string) (domain.Session, error) {
	return c.authenticate(ctx, "/auth/login", map[string]string{
		"email":    email,
		"password": password,
	})
}

// Register creates an account and establishes a session identically to Login.
// extra carries optional profile fields (e.g. phone) passed through verbatim.
func (c *Client) Register(ctx context.Context, name, email, password string, extra map[string]string) (domain.Session, error) {
	body := map[string]string{
		"name":     name,
		"email":    email,
		"password": password,
	}
	for k, v := range extra {
		if _, reserved := body[k]; !reserved {
			body[k] = v
		}
	}
	return c.authenticate(ctx, "/auth/register", body)
}

func (c *Client) authenticate(ctx context.Context, path string, body map[string]string) (domain.Session, error) {
	var resp authResponse
	if err := c.do(ctx, http.MethodPost, path, body, &resp); err != nil {
		return domain.Session{}, fmt.Errorf("api.Client.authenticate: %w", err)
	}
	if err := resp.check(); err != nil {
		return domain.Session{}, fmt.Errorf("api.Client.authenticate: %w: %v", domain.ErrUnauthorized, err)
	}
	if resp.Data.Token == "" {
		return domain.Session{}, fmt.Errorf("api.Client.authenticate: %w: response carries no token", domain.ErrDecode)
	}
	return domain.Session{User: resp.Data.User.toDomain(), Token: resp.Data.Token}, nil
}

// profileResponse is the envelope for GET /profile.
type profileResponse struct {
	envelope
	Data wireUser `json:"data"`
}

// Profile validates the current token and returns the authenticated user.
// An invalid or expired token surfaces as domain.ErrUnauthorized, whether
// the backend signals it via HTTP 401 or a success=false envelope.
func (c *Client) Profile(ctx context.Context) (domain.User, error) {
	var resp profileResponse
	if err := c.do(ctx, http.MethodGet, "/profile", nil, &resp); err != nil {
		return domain.User{}, fmt.Errorf("api.Client.Profile: %w", err)
	}
	if err := resp.check(); err != nil {
		return domain.User{}, fmt.Errorf("api.Client.Profile: %w: %v", domain.ErrUnauthorized, err)
	}
	return resp.Data.toDomain(), nil
}
