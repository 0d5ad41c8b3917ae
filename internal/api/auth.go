package api

import (
	"context"
	"net/http"

	"linguacall/internal/domain/user"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string    `json:"access_token"`
	User        user.User `json:"user"`
}

// Login exchanges credentials for a bearer token and persists it.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	var out LoginResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", LoginRequest{Email: email, Password: password}, &out); err != nil {
		return nil, err
	}
	if err := c.tokens.Save(out.AccessToken); err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout tells the server to drop the session, then clears the local
// credential regardless of the outcome.
func (c *Client) Logout(ctx context.Context) {
	_ = c.do(ctx, http.MethodPost, "/auth/logout", nil, nil)
	c.tokens.Clear()
}

// CurrentUser fetches the authenticated user's profile.
func (c *Client) CurrentUser(ctx context.Context) (*user.User, error) {
	var out user.User
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
