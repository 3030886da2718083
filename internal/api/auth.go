package api

import (
	"context"
	"net/http"

	"github.com/jonathan/careermatch/internal/schemas"
	"github.com/jonathan/careermatch/internal/types"
)

// Signup registers a new account.
func (c *Client) Signup(ctx context.Context, email, password string) error {
	req := types.SignupRequest{Email: email, Password: password}
	if err := req.Validate(); err != nil {
		return err
	}
	return c.sendJSON(ctx, http.MethodPost, "/auth/signup", req, "", nil, true)
}

// Login exchanges credentials for an access token.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	req := types.LoginRequest{Email: email, Password: password}
	if err := req.Validate(); err != nil {
		return "", err
	}
	var resp types.LoginResponse
	if err := c.sendJSON(ctx, http.MethodPost, "/auth/login", req, schemas.Login, &resp, true); err != nil {
		return "", err
	}
	return resp.AccessToken, nil
}
