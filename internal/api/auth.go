package api

import (
	"context" // Request contexts

	"payportal/internal/domain" // Domain models
)

// Login exchanges credentials for a token
func (c *Client) Login(ctx context.Context, req domain.LoginRequest) (*domain.AuthResponse, error) {
	var out domain.AuthResponse
	if err := c.http.Post(ctx, "/auth/login", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Register creates an account and returns a token for it
func (c *Client) Register(ctx context.Context, req domain.RegisterRequest) (*domain.AuthResponse, error) {
	var out domain.AuthResponse
	if err := c.http.Post(ctx, "/auth/register", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout revokes the current token server-side
func (c *Client) Logout(ctx context.Context) error {
	return c.http.Post(ctx, "/auth/logout", nil, nil)
}

// Me fetches the authenticated user's profile
func (c *Client) Me(ctx context.Context) (*domain.User, error) {
	var out domain.User
	if err := c.http.Get(ctx, "/auth/me", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateProfile applies a partial profile update
func (c *Client) UpdateProfile(ctx context.Context, req domain.ProfileUpdate) (*domain.User, error) {
	var out domain.User
	if err := c.http.Put(ctx, "/auth/me", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Refresh trades the current token for a fresh one
func (c *Client) Refresh(ctx context.Context) (*domain.AuthResponse, error) {
	var out domain.AuthResponse
	if err := c.http.Post(ctx, "/auth/refresh", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListUsers lists all users (admin)
func (c *Client) ListUsers(ctx context.Context, q domain.PageQuery) (*domain.Page[domain.User], error) {
	var out domain.Page[domain.User]
	if err := c.http.Get(ctx, "/auth/users", pageValues(q), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// LoginAttempts lists recent login attempts (admin)
func (c *Client) LoginAttempts(ctx context.Context, q domain.PageQuery) (*domain.Page[domain.LoginAttempt], error) {
	var out domain.Page[domain.LoginAttempt]
	if err := c.http.Get(ctx, "/auth/login-attempts", pageValues(q), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// TokenStats reports issued and revoked token counts (admin)
func (c *Client) TokenStats(ctx context.Context) (*domain.TokenStats, error) {
	var out domain.TokenStats
	if err := c.http.Get(ctx, "/auth/token-stats", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
